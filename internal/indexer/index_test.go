package indexer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/postings"
	apperrors "github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/metrics"
)

func build(t testing.TB, opts Options, bodies ...string) *Index {
	t.Helper()
	b, err := NewBuilder(opts, nil)
	require.NoError(t, err)
	doc := ingestion.Document{Path: "test.json"}
	for _, body := range bodies {
		doc.Articles = append(doc.Articles, &ingestion.Article{Body: body})
	}
	_, err = b.AddDocument(doc)
	require.NoError(t, err)
	ix, err := b.Build()
	require.NoError(t, err)
	return ix
}

var allExtensions = Options{Positional: true, Stemming: true, Permuterm: true, StemLanguage: "english"}

func TestLookup(t *testing.T) {
	ix := build(t, Options{},
		"the central bank raised rates",
		"the central committee met today",
	)
	require.NoError(t, ix.Ready())

	assert.Equal(t, postings.List{0, 1}, ix.Postings("article", "central"))
	assert.Equal(t, postings.List{0}, ix.Postings("article", "bank"))
	assert.Empty(t, ix.Postings("article", "missing"))
	assert.Equal(t, postings.List{0, 1}, ix.Universe())
	assert.Equal(t, 2, ix.DocumentFrequency("article", "the"))
	assert.Nil(t, ix.Lookup("article", "bank")[0].Positions, "non-positional postings carry no positions")
}

func TestPhrase(t *testing.T) {
	ix := build(t, allExtensions,
		"the central bank raised rates",
		"the central committee met today",
		"bank central officials",
		"central central bank",
	)

	tests := []struct {
		terms []string
		want  postings.List
	}{
		{[]string{"central", "bank"}, postings.List{0, 3}},
		{[]string{"central", "committee"}, postings.List{1}},
		{[]string{"bank", "central"}, postings.List{2}},
		{[]string{"the", "central", "bank"}, postings.List{0}},
		{[]string{"central"}, postings.List{0, 1, 2, 3}},
		{[]string{"central", "missing"}, postings.List{}},
		{[]string{}, postings.List{}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.terms), func(t *testing.T) {
			got, err := ix.Phrase("article", tt.terms)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPhraseSubsetOfAnd(t *testing.T) {
	ix := build(t, allExtensions,
		"rates rise as the central bank acts",
		"bank rates and central planning",
		"central bank rates",
		"rates central bank",
	)
	pairs := [][2]string{{"central", "bank"}, {"bank", "rates"}, {"rates", "central"}}
	for _, p := range pairs {
		phrase, err := ix.Phrase("article", p[:])
		require.NoError(t, err)
		conj := postings.And(ix.Postings("article", p[0]), ix.Postings("article", p[1]))
		for _, id := range phrase {
			assert.True(t, conj.Contains(id), "%v: %d not in AND", p, id)
		}
	}
}

func TestPhraseNeedsPositionalIndex(t *testing.T) {
	ix := build(t, Options{}, "central bank")
	_, err := ix.Phrase("article", []string{"central", "bank"})
	assert.True(t, errors.Is(err, apperrors.ErrUnsupportedQuery))
}

func TestStemmed(t *testing.T) {
	ix := build(t, allExtensions,
		"banks lend money",
		"investment banking grows",
		"river side walk",
	)

	got, err := ix.Stemmed("article", "bank")
	require.NoError(t, err)
	assert.Equal(t, postings.List{0, 1}, got)
	assert.Empty(t, ix.Postings("article", "bank"), "bank itself was never indexed")

	got, err = ix.Stemmed("article", "committee")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStemmedSupersetOfExact(t *testing.T) {
	ix := build(t, allExtensions,
		"banks lend money to banking groups",
		"the bank lends",
		"lending is banking",
	)
	for _, term := range []string{"banks", "bank", "lend", "lends", "lending", "banking"} {
		stemmed, err := ix.Stemmed("article", term)
		require.NoError(t, err)
		for _, id := range ix.Postings("article", term) {
			assert.True(t, stemmed.Contains(id), "%s: %d missing", term, id)
		}
	}
}

func TestStemmedWithoutStemIndex(t *testing.T) {
	ix := build(t, Options{}, "banks")
	_, err := ix.Stemmed("article", "bank")
	assert.True(t, errors.Is(err, apperrors.ErrUnsupportedQuery))
}

func TestExpansionTerms(t *testing.T) {
	ix := build(t, allExtensions, "banks lend money", "investment banking grows", "bark")

	terms, err := ix.StemTerms("article", "bank")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"banks", "banking"}, terms)

	terms, err = ix.WildcardTerms("article", "ba*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"banks", "banking", "bark"}, terms)

	_, err = build(t, Options{}, "banks").WildcardTerms("article", "ba*")
	assert.True(t, errors.Is(err, apperrors.ErrUnsupportedQuery))
}

func TestWildcard(t *testing.T) {
	ix := build(t, allExtensions,
		"bank",
		"banks",
		"ball",
		"bark",
	)

	got, err := ix.Wildcard("article", "ba*")
	require.NoError(t, err)
	assert.Equal(t, postings.List{0, 1, 2, 3}, got)

	got, err = ix.Wildcard("article", "ba?k")
	require.NoError(t, err)
	assert.Equal(t, postings.List{0, 3}, got)

	got, err = ix.Wildcard("article", "zz*")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ix.Wildcard("article", "bank?")
	require.NoError(t, err)
	assert.Equal(t, postings.List{1}, got, "single match short-circuits to a direct lookup")

	_, err = ix.Wildcard("article", "b*n?")
	assert.True(t, errors.Is(err, apperrors.ErrMalformedQuery))
}

func TestWildcardRoundTrip(t *testing.T) {
	ix := build(t, allExtensions,
		"central bank raised rates",
		"committee met today about rates",
	)
	for _, term := range []string{"central", "bank", "raised", "rates", "committee", "met", "today", "about"} {
		exact := ix.Postings("article", term)
		trivial, err := ix.Wildcard("article", term[:len(term)-1]+"*")
		require.NoError(t, err)
		for _, id := range exact {
			assert.True(t, trivial.Contains(id), "%s: %d missing", term, id)
		}
		self, err := ix.Wildcard("article", term)
		require.NoError(t, err)
		assert.Equal(t, exact, self)
	}
}

func TestWildcardWithoutPermuterm(t *testing.T) {
	ix := build(t, Options{}, "bank")
	_, err := ix.Wildcard("article", "ba*")
	assert.True(t, errors.Is(err, apperrors.ErrUnsupportedQuery))
}

func TestMultifield(t *testing.T) {
	b, err := NewBuilder(Options{Multifield: true, Permuterm: true, Stemming: true}, nil)
	require.NoError(t, err)
	_, err = b.AddDocument(ingestion.Document{Path: "a.json", Articles: []*ingestion.Article{
		{Title: "Economy grows", Date: "2015-03-01", Keywords: "economy, growth", Body: "the economy grew", Summary: "growth"},
		{Title: "Football", Date: "2015-03-02", Keywords: "sport", Body: "economy of the club", Summary: "match"},
	}})
	require.NoError(t, err)
	ix, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, postings.List{0}, ix.Postings("title", "economy"))
	assert.Equal(t, postings.List{0, 1}, ix.Postings("article", "economy"))
	assert.Equal(t, postings.List{1}, ix.Postings("date", "2015-03-02"))
	assert.Equal(t, postings.List{0}, ix.Postings("keywords", "growth"))
	assert.True(t, ix.HasField("summary"))

	got, err := ix.Wildcard("title", "foot*")
	require.NoError(t, err)
	assert.Equal(t, postings.List{1}, got)

	got, err = ix.Wildcard("article", "foot*")
	require.NoError(t, err)
	assert.Empty(t, got, "wildcards stay within their field")

	_, err = ix.Stemmed("date", "2015")
	assert.True(t, errors.Is(err, apperrors.ErrUnsupportedQuery), "untokenised fields have no stem classes")
}

func TestSkippedArticlesKeepOrdinals(t *testing.T) {
	b, err := NewBuilder(Options{}, nil)
	require.NoError(t, err)
	_, err = b.AddDocument(ingestion.Document{Path: "a.json", Articles: []*ingestion.Article{
		{Body: "first"}, nil, {Body: "third"},
	}})
	require.NoError(t, err)
	ix, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, 2, ix.ArticleCount())
	art, ok := ix.Article(1)
	require.True(t, ok)
	assert.Equal(t, 2, art.Ordinal)
	assert.Equal(t, "third", art.Body)
}

func TestBuilderFreezes(t *testing.T) {
	b, err := NewBuilder(Options{}, nil)
	require.NoError(t, err)
	_, err = b.Build()
	require.NoError(t, err)

	_, err = b.AddDocument(ingestion.Document{Path: "late.json"})
	assert.True(t, errors.Is(err, apperrors.ErrIndexFrozen))
	_, err = b.Build()
	assert.True(t, errors.Is(err, apperrors.ErrIndexFrozen))
}

func TestNewBuilderRejectsUnknownStemLanguage(t *testing.T) {
	_, err := NewBuilder(Options{Stemming: true, StemLanguage: "klingon"}, nil)
	assert.Error(t, err)
}

func TestZeroIndexNotReady(t *testing.T) {
	var ix *Index
	assert.True(t, errors.Is(ix.Ready(), apperrors.ErrIndexNotBuilt))
	assert.True(t, errors.Is((&Index{}).Ready(), apperrors.ErrIndexNotBuilt))
}

func TestStats(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	b, err := NewBuilder(Options{Positional: true, Permuterm: true, Stemming: true}, m)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = b.AddDocument(ingestion.Document{
			Path:     fmt.Sprintf("doc%d.json", i),
			Articles: []*ingestion.Article{{Body: "bank banks"}, {Body: "rates"}},
		})
		require.NoError(t, err)
	}
	ix, err := b.Build()
	require.NoError(t, err)

	s := ix.Stats()
	assert.Equal(t, 2, s.Documents)
	assert.Equal(t, 4, s.Articles)
	assert.True(t, s.Positional)
	assert.Equal(t, 3, s.Terms())
	// bank$ -> 5 keys, banks$ -> 6 keys, rates$ -> 6 keys
	assert.Equal(t, 17, s.PermutermKeys())
	assert.Equal(t, 2, s.StemClasses())
	require.Len(t, s.Fields, 1)
	assert.Equal(t, "article", s.Fields[0].Field)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.ArticlesIndexedTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.IndexKeys.WithLabelValues("terms")))
}

func BenchmarkBuild(b *testing.B) {
	terms := []string{"distributed", "search", "central", "bank", "rates", "query", "engine", "ranking"}
	articles := make([]*ingestion.Article, 0, 1000)
	for i := 0; i < 1000; i++ {
		articles = append(articles, &ingestion.Article{
			Body: fmt.Sprintf("this article covers %s %s %s in production",
				terms[i%len(terms)], terms[(i+2)%len(terms)], terms[(i+3)%len(terms)]),
		})
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		builder, err := NewBuilder(allExtensions, nil)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := builder.AddDocument(ingestion.Document{Path: "bench.json", Articles: articles}); err != nil {
			b.Fatal(err)
		}
		if _, err := builder.Build(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPhrase(b *testing.B) {
	bodies := make([]string, 0, 2000)
	for i := 0; i < 2000; i++ {
		if i%3 == 0 {
			bodies = append(bodies, "the central bank raised rates again")
		} else {
			bodies = append(bodies, "bank officials met the central committee")
		}
	}
	ix := build(b, allExtensions, bodies...)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ix.Phrase("article", []string{"central", "bank"})
	}
}
