// Package ranker orders matched articles by TF-IDF cosine similarity
// between each article body and the query.
package ranker

import (
	"log/slog"
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/indexer/store"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/postings"
)

type ScoredArticle struct {
	ArticleID int     `json:"article_id"`
	Score     float64 `json:"score"`
}

// Corpus supplies article text and collection statistics.
type Corpus interface {
	Article(id int) (store.Article, bool)
	DocumentFrequency(field, term string) int
	ArticleCount() int
}

type Ranker struct {
	corpus   Corpus
	language string
	logger   *slog.Logger
}

// New returns a ranker removing the stop-words of language before
// vectorising.
func New(corpus Corpus, language string) *Ranker {
	return &Ranker{
		corpus:   corpus,
		language: language,
		logger:   slog.Default().With("component", "ranker"),
	}
}

type vector map[string]float64

// Rank returns ids reordered by descending similarity to the query
// vocabulary terms, the indexed terms the query resolved to. Equal scores
// keep their order in ids. The scores are local to the call.
func (r *Ranker) Rank(ids postings.List, terms []string) []ScoredArticle {
	result := make([]ScoredArticle, len(ids))
	if len(ids) == 0 {
		return result
	}
	idf := make(map[string]float64)
	q := r.vectorize(terms, idf)
	qNorm := norm(q)
	for i, id := range ids {
		result[i] = ScoredArticle{ArticleID: id}
		if qNorm == 0 {
			continue
		}
		art, ok := r.corpus.Article(id)
		if !ok {
			continue
		}
		d := r.vectorize(tokenizer.Terms(art.Body), idf)
		result[i].Score = cosine(q, qNorm, d)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Score > result[j].Score
	})
	r.logger.Debug("ranked results", "terms", len(terms), "results", len(result))
	return result
}

// vectorize builds the tf-idf vector of terms after stop-word removal. idf
// memoises inverse document frequencies across one Rank call.
func (r *Ranker) vectorize(terms []string, idf map[string]float64) vector {
	terms = tokenizer.Filter(r.language, terms)
	v := make(vector, len(terms))
	for _, t := range terms {
		v[t]++
	}
	for t, tf := range v {
		w, ok := idf[t]
		if !ok {
			w = r.inverseFrequency(t)
			idf[t] = w
		}
		v[t] = tf * w
	}
	return v
}

// inverseFrequency is the smoothed idf ln((1+N)/(1+df)) + 1, which stays
// positive for terms present in every article.
func (r *Ranker) inverseFrequency(term string) float64 {
	n := float64(r.corpus.ArticleCount())
	df := float64(r.corpus.DocumentFrequency(ingestion.BodyField, term))
	return math.Log((1+n)/(1+df)) + 1
}

func norm(v vector) float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// cosine returns 0 when either vector has zero magnitude.
func cosine(q vector, qNorm float64, d vector) float64 {
	dNorm := norm(d)
	if qNorm == 0 || dNorm == 0 {
		return 0
	}
	var dot float64
	for t, w := range q {
		dot += w * d[t]
	}
	return dot / (qNorm * dNorm)
}
