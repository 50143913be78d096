package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/searcher"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	b, err := indexer.NewBuilder(indexer.Options{Positional: true, Permuterm: true}, nil)
	require.NoError(t, err)
	_, err = b.AddDocument(ingestion.Document{Path: "a.json", Articles: []*ingestion.Article{
		{Title: "Rates", Body: "the central bank raised rates"},
		{Title: "Committee", Body: "the central committee met today"},
	}})
	require.NoError(t, err)
	ix, err := b.Build()
	require.NoError(t, err)
	s, err := searcher.New(ix, searcher.Options{}, nil)
	require.NoError(t, err)
	return New(s)
}

func get(t *testing.T, h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestSearch(t *testing.T) {
	h := newHandler(t)
	rec := get(t, h.Search, "/api/v1/search?q="+url.QueryEscape("central AND bank"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var page searcher.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Hits, 1)
	assert.Equal(t, 0, page.Hits[0].ArticleID)
	assert.Equal(t, "Rates", page.Hits[0].Title)
	assert.Empty(t, page.Hits[0].Snippet)
}

func TestSearchOverrides(t *testing.T) {
	h := newHandler(t)
	rec := get(t, h.Search, "/api/v1/search?snippet=true&rank=1&q="+url.QueryEscape("central OR bank"))
	require.Equal(t, http.StatusOK, rec.Code)

	var page searcher.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.True(t, page.Ranked)
	require.Len(t, page.Hits, 2)
	assert.Equal(t, 0, page.Hits[0].ArticleID)
	assert.NotEmpty(t, page.Hits[0].Snippet)
}

func TestSearchCount(t *testing.T) {
	h := newHandler(t)
	rec := get(t, h.Search, "/api/v1/search?count=true&q=central")
	require.Equal(t, http.StatusOK, rec.Code)

	var body countResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, countResponse{Query: "central", Count: 2}, body)
}

func TestSearchErrors(t *testing.T) {
	h := newHandler(t)
	tests := []struct {
		name   string
		target string
		status int
	}{
		{"missing q", "/api/v1/search", http.StatusBadRequest},
		{"malformed", "/api/v1/search?q=" + url.QueryEscape("(central"), http.StatusBadRequest},
		{"bad bool", "/api/v1/search?q=bank&all=maybe", http.StatusBadRequest},
		{"bad count", "/api/v1/search?q=bank&count=sure", http.StatusBadRequest},
		{"no stem index", "/api/v1/search?q=bank&stem=true", http.StatusBadRequest},
		{"malformed count", "/api/v1/search?count=1&q=" + url.QueryEscape("bank AND"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h.Search, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestStats(t *testing.T) {
	h := newHandler(t)
	rec := get(t, h.Stats, "/api/v1/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var body stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Documents)
	assert.Equal(t, 2, body.Articles)
	assert.Equal(t, 8, body.Terms)
	assert.True(t, body.Phrases)
	require.NotNil(t, body.PermutermKeys)
	assert.Nil(t, body.StemClasses)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "article", body.Fields[0].Field)
}
