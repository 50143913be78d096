package postings

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnd(t *testing.T) {
	assert.Equal(t, List{2, 5}, And(List{1, 2, 5, 9}, List{2, 3, 5, 10}))
	assert.Equal(t, List{}, And(List{1, 2}, List{}))
	assert.Equal(t, List{}, And(List{1, 3}, List{2, 4}))
}

func TestOr(t *testing.T) {
	assert.Equal(t, List{1, 2, 3, 5, 9, 10}, Or(List{1, 2, 5, 9}, List{2, 3, 5, 10}))
	assert.Equal(t, List{1, 2}, Or(List{1, 2}, List{}))
	assert.Equal(t, List{1, 2, 3}, Or(nil, List{1, 2, 3}))
}

func TestComplement(t *testing.T) {
	universe := List{0, 1, 2, 3, 4}
	assert.Equal(t, List{0, 2, 4}, Complement(universe, List{1, 3}))
	assert.Equal(t, universe, Complement(universe, List{}))
	assert.Equal(t, List{}, Complement(universe, universe))
}

func TestAndAllOrAll(t *testing.T) {
	a, b, c := List{1, 2, 3, 4}, List{2, 4, 6}, List{4, 8}
	assert.Equal(t, List{4}, AndAll(a, b, c))
	assert.Equal(t, List{1, 2, 3, 4, 6, 8}, OrAll(a, b, c))
	assert.Equal(t, List{}, AndAll())
	assert.Equal(t, List{}, OrAll())
}

func TestContains(t *testing.T) {
	p := List{1, 4, 9, 16}
	assert.True(t, p.Contains(9))
	assert.False(t, p.Contains(10))
	assert.False(t, List{}.Contains(0))
}

func TestInputsNotModified(t *testing.T) {
	p, q := List{1, 3, 5}, List{1, 2, 3}
	And(p, q)
	Or(p, q)
	Complement(List{0, 1, 2, 3, 4, 5}, p)
	AndAll(p, q)
	assert.Equal(t, List{1, 3, 5}, p)
	assert.Equal(t, List{1, 2, 3}, q)
}

func randomList(r *rand.Rand, universe int) List {
	seen := make(map[int]struct{})
	for i := 0; i < r.Intn(universe); i++ {
		seen[r.Intn(universe)] = struct{}{}
	}
	l := make(List, 0, len(seen))
	for id := range seen {
		l = append(l, id)
	}
	sort.Ints(l)
	return l
}

func TestAlgebraProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	const size = 60
	universe := make(List, size)
	for i := range universe {
		universe[i] = i
	}

	for n := 0; n < 200; n++ {
		p, q, s := randomList(r, size), randomList(r, size), randomList(r, size)

		assert.Equal(t, And(p, q), And(q, p), "AND commutes")
		assert.Equal(t, Or(p, q), Or(q, p), "OR commutes")
		assert.Equal(t, And(p, And(q, s)), And(And(p, q), s), "AND associates")
		assert.Equal(t, Or(p, Or(q, s)), Or(Or(p, q), s), "OR associates")
		assert.Equal(t, append(List{}, p...), And(p, p), "AND idempotent")
		assert.Equal(t, append(List{}, p...), Or(p, p), "OR idempotent")
		assert.Empty(t, And(p, List{}))
		assert.Equal(t, append(List{}, p...), Or(p, List{}))
		assert.Equal(t, append(List{}, p...), Complement(universe, Complement(universe, p)), "double complement")
		assert.Empty(t, And(p, Complement(universe, p)))
	}
}

func BenchmarkAnd(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	p, q := randomList(r, 100000), randomList(r, 100000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = And(p, q)
	}
}

func BenchmarkOr(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	p, q := randomList(r, 100000), randomList(r, 100000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Or(p, q)
	}
}
