package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/postings"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/searcher/parser"
	apperrors "github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/errors"
)

func newIndex(t *testing.T, opts indexer.Options, articles ...*ingestion.Article) *indexer.Index {
	t.Helper()
	b, err := indexer.NewBuilder(opts, nil)
	require.NoError(t, err)
	_, err = b.AddDocument(ingestion.Document{Path: "corpus.json", Articles: articles})
	require.NoError(t, err)
	ix, err := b.Build()
	require.NoError(t, err)
	return ix
}

func bodies(texts ...string) []*ingestion.Article {
	out := make([]*ingestion.Article, len(texts))
	for i, text := range texts {
		out[i] = &ingestion.Article{Body: text}
	}
	return out
}

func evaluate(t *testing.T, e *Executor, query string, opts Options) postings.List {
	t.Helper()
	n, err := parser.Parse(query)
	require.NoError(t, err)
	got, err := e.Evaluate(context.Background(), n, opts)
	require.NoError(t, err)
	return got
}

var full = indexer.Options{Positional: true, Stemming: true, Permuterm: true}

func TestEvaluateBoolean(t *testing.T) {
	ix := newIndex(t, full, bodies(
		"the central bank raised rates",
		"the central committee met today",
	)...)
	e := New(ix)

	tests := []struct {
		query string
		want  postings.List
	}{
		{"central AND bank", postings.List{0}},
		{"central OR committee", postings.List{0, 1}},
		{"NOT bank", postings.List{1}},
		{`"central bank"`, postings.List{0}},
		{`"central committee"`, postings.List{1}},
		{"central AND NOT committee", postings.List{0}},
		{"bank OR committee AND today", postings.List{0, 1}},
		{"(bank OR committee) AND today", postings.List{1}},
		{"NOT (bank OR committee)", postings.List{}},
		{"NOT NOT bank", postings.List{0}},
		{"missing", postings.List{}},
		{"missing OR bank", postings.List{0}},
		{"NOT missing", postings.List{0, 1}},
		{"zz*", postings.List{}},
		{"ra*", postings.List{0}},
		{"t*", postings.List{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, evaluate(t, e, tt.query, Options{}))
		})
	}
}

func TestEvaluateNil(t *testing.T) {
	e := New(newIndex(t, indexer.Options{}, bodies("bank")...))
	got, err := e.Evaluate(context.Background(), nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEvaluateStemming(t *testing.T) {
	ix := newIndex(t, full, bodies(
		"banks lend money",
		"investment banking grows",
		"river bank erosion",
		"committee met",
	)...)
	e := New(ix)

	assert.Equal(t, postings.List{2}, evaluate(t, e, "bank", Options{}))
	assert.Equal(t, postings.List{0, 1, 2}, evaluate(t, e, "bank", Options{Stemming: true}))
	assert.Equal(t, postings.List{3}, evaluate(t, e, "NOT bank", Options{Stemming: true}))
	assert.Equal(t, postings.List{1}, evaluate(t, e, "banking AND grows", Options{}))
}

func TestEvaluateWildcard(t *testing.T) {
	ix := newIndex(t, full, bodies("bank", "banks", "ball", "river")...)
	e := New(ix)

	assert.Equal(t, postings.List{0, 1, 2}, evaluate(t, e, "ba*", Options{}))
	assert.Equal(t, postings.List{0}, evaluate(t, e, "ba?k", Options{}))
	assert.Equal(t, postings.List{3}, evaluate(t, e, "NOT ba*", Options{}))
}

func TestEvaluateFields(t *testing.T) {
	ix := newIndex(t, indexer.Options{Multifield: true, Stemming: true, Permuterm: true},
		&ingestion.Article{Title: "Banks rally", Date: "2015-03-01", Body: "markets rose"},
		&ingestion.Article{Title: "Weather", Date: "2015-03-02", Body: "the banks of the river"},
	)
	e := New(ix)

	assert.Equal(t, postings.List{0}, evaluate(t, e, "title:banks", Options{}))
	assert.Equal(t, postings.List{1}, evaluate(t, e, "banks", Options{}))
	assert.Equal(t, postings.List{1}, evaluate(t, e, "date:2015-03-02", Options{Stemming: true}))
	assert.Equal(t, postings.List{0, 1}, evaluate(t, e, "date:2015-03-*", Options{}))
	assert.Equal(t, postings.List{0}, evaluate(t, e, "title:bank", Options{Stemming: true}))
}

func TestEvaluateUnsupported(t *testing.T) {
	ix := newIndex(t, indexer.Options{}, bodies("central bank")...)
	e := New(ix)

	for _, q := range []string{`"central bank"`, "ban*", "u.s."} {
		n, err := parser.Parse(q)
		require.NoError(t, err)
		_, err = e.Evaluate(context.Background(), n, Options{})
		assert.True(t, errors.Is(err, apperrors.ErrUnsupportedQuery), "%s: %v", q, err)
	}

	n, err := parser.Parse("bank")
	require.NoError(t, err)
	_, err = e.Evaluate(context.Background(), n, Options{Stemming: true})
	assert.True(t, errors.Is(err, apperrors.ErrUnsupportedQuery))
}

func TestVocabulary(t *testing.T) {
	ix := newIndex(t, full, bodies(
		"banks lend money",
		"investment banking grows",
		"the central bank raised rates",
	)...)
	e := New(ix)

	vocabulary := func(query string, opts Options) []string {
		t.Helper()
		n, err := parser.Parse(query)
		require.NoError(t, err)
		terms, err := e.Vocabulary(n, opts)
		require.NoError(t, err)
		return terms
	}

	assert.Equal(t, []string{"central", "interest", "rate"},
		vocabulary(`(central OR zz*) AND NOT rates AND "interest rate"`, Options{}))
	assert.ElementsMatch(t, []string{"bank", "banks", "banking", "lend"},
		vocabulary("bank OR lend", Options{Stemming: true}))
	assert.ElementsMatch(t, []string{"banks", "banking", "bank", "committee"},
		vocabulary("ban* OR committee OR banks", Options{}))
	assert.Equal(t, []string{"missing"}, vocabulary("missing", Options{Stemming: true}))

	terms, err := e.Vocabulary(nil, Options{})
	require.NoError(t, err)
	assert.Nil(t, terms)
}

func TestUnindexedField(t *testing.T) {
	e := New(newIndex(t, indexer.Options{Positional: true}, bodies("rates up")...))
	for _, q := range []string{"title:rates", "NOT title:rates", `title:"rates up"`, "rates OR keywords:bank"} {
		n, err := parser.Parse(q)
		require.NoError(t, err)
		_, err = e.Evaluate(context.Background(), n, Options{})
		assert.True(t, errors.Is(err, apperrors.ErrUnsupportedQuery), "%s: %v", q, err)
	}
}

func TestEvaluateCanceled(t *testing.T) {
	e := New(newIndex(t, indexer.Options{}, bodies("central bank")...))
	n, err := parser.Parse("central AND bank")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Evaluate(ctx, n, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func BenchmarkEvaluate(b *testing.B) {
	texts := make([]string, 0, 5000)
	for i := 0; i < 5000; i++ {
		switch i % 3 {
		case 0:
			texts = append(texts, "the central bank raised interest rates")
		case 1:
			texts = append(texts, "the central committee met today")
		default:
			texts = append(texts, "banking regulators issued new rules")
		}
	}
	builder, err := indexer.NewBuilder(full, nil)
	if err != nil {
		b.Fatal(err)
	}
	if _, err := builder.AddDocument(ingestion.Document{Path: "bench.json", Articles: bodies(texts...)}); err != nil {
		b.Fatal(err)
	}
	ix, err := builder.Build()
	if err != nil {
		b.Fatal(err)
	}
	e := New(ix)
	n, err := parser.Parse(`("central bank" OR bank*) AND NOT committee`)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Evaluate(ctx, n, Options{Stemming: true}); err != nil {
			b.Fatal(err)
		}
	}
}
