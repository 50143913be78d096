// Package indexer builds the news index and serves read-only lookups over
// it: exact terms, stem classes, wildcard patterns and positional phrases.
package indexer

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/indexer/permuterm"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/indexer/stem"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/indexer/store"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/postings"
	apperrors "github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/errors"
)

// Index is the frozen result of a build. None of its methods mutate state,
// so it can serve concurrent queries without locking.
type Index struct {
	opts       Options
	fields     []ingestion.Field
	inverted   *index.Inverted
	store      *store.Store
	stemmer    *stem.Stemmer
	stems      map[string]*stem.Index
	permuterms map[string]*permuterm.Index
	universe   postings.List
	terms      map[string][]string
}

// Ready returns ErrIndexNotBuilt unless ix came out of Builder.Build.
func (ix *Index) Ready() error {
	if ix == nil || ix.inverted == nil {
		return apperrors.ErrIndexNotBuilt
	}
	return nil
}

// Options returns the options the index was built with.
func (ix *Index) Options() Options {
	return ix.opts
}

// HasField reports whether field was indexed.
func (ix *Index) HasField(field string) bool {
	for _, f := range ix.fields {
		if f.Name == field {
			return true
		}
	}
	return false
}

// Lookup returns the exact postings of term in field.
func (ix *Index) Lookup(field, term string) index.PostingList {
	return ix.inverted.Search(index.Key(field, term))
}

// Postings returns the article ids containing term in field.
func (ix *Index) Postings(field, term string) postings.List {
	return ix.Lookup(field, term).IDs()
}

// DocumentFrequency is the number of articles containing term in field.
func (ix *Index) DocumentFrequency(field, term string) int {
	return len(ix.Lookup(field, term))
}

// Universe returns every article id in ascending order.
func (ix *Index) Universe() postings.List {
	return ix.universe
}

// Article returns the stored article with the given id.
func (ix *Index) Article(id int) (store.Article, bool) {
	return ix.store.Article(id)
}

// Document returns the stored document with the given id.
func (ix *Index) Document(id int) (store.Document, bool) {
	return ix.store.Document(id)
}

// ArticleCount is the size of the universe.
func (ix *Index) ArticleCount() int {
	return ix.store.ArticleCount()
}

// Stemmed unions the postings of every term in field sharing the stem of
// word. A stem without a class yields an empty list.
func (ix *Index) Stemmed(field, word string) (postings.List, error) {
	terms, err := ix.StemTerms(field, word)
	if err != nil {
		return nil, err
	}
	return ix.union(field, terms), nil
}

// StemTerms returns the indexed terms of field sharing word's stem.
func (ix *Index) StemTerms(field, word string) ([]string, error) {
	sx, ok := ix.stems[field]
	if !ok {
		return nil, apperrors.Unsupported("stemming is not indexed for field %q", field)
	}
	return sx.Expand(word), nil
}

// Wildcard unions the postings of every term in field matching pattern.
func (ix *Index) Wildcard(field, pattern string) (postings.List, error) {
	terms, err := ix.WildcardTerms(field, pattern)
	if err != nil {
		return nil, err
	}
	return ix.union(field, terms), nil
}

// WildcardTerms returns the indexed terms of field matching pattern.
func (ix *Index) WildcardTerms(field, pattern string) ([]string, error) {
	px, ok := ix.permuterms[field]
	if !ok {
		return nil, apperrors.Unsupported("wildcard queries need a permuterm index for field %q", field)
	}
	terms, err := px.Match(pattern)
	if err != nil {
		return nil, apperrors.Malformed("%v", err)
	}
	return terms, nil
}

// union ORs the postings of terms, short-circuiting the single-term case.
func (ix *Index) union(field string, terms []string) postings.List {
	switch len(terms) {
	case 0:
		return postings.List{}
	case 1:
		return ix.Postings(field, terms[0])
	}
	lists := make([]postings.List, len(terms))
	for i, term := range terms {
		lists[i] = ix.Postings(field, term)
	}
	return postings.OrAll(lists...)
}

// Phrase returns the articles where terms occur at consecutive positions in
// field, in order.
func (ix *Index) Phrase(field string, terms []string) (postings.List, error) {
	if !ix.inverted.Positional() {
		return nil, apperrors.Unsupported("phrase queries need a positional index")
	}
	switch len(terms) {
	case 0:
		return postings.List{}, nil
	case 1:
		return ix.Postings(field, terms[0]), nil
	}

	lists := make([]index.PostingList, len(terms))
	ids := make([]postings.List, len(terms))
	for i, term := range terms {
		lists[i] = ix.Lookup(field, term)
		if len(lists[i]) == 0 {
			return postings.List{}, nil
		}
		ids[i] = lists[i].IDs()
	}

	candidates := postings.AndAll(ids...)
	result := make(postings.List, 0, len(candidates))
	for _, articleID := range candidates {
		if phraseAt(lists, articleID) {
			result = append(result, articleID)
		}
	}
	return result, nil
}

// phraseAt reports whether some occurrence p of the first term is followed
// by term i at p+i for every i. Each term's positions are shifted back by
// its offset so the surviving bits are the valid phrase starts.
func phraseAt(lists []index.PostingList, articleID int) bool {
	var starts *roaring.Bitmap
	for offset, list := range lists {
		posting, ok := find(list, articleID)
		if !ok {
			return false
		}
		shifted := roaring.New()
		for _, pos := range posting.Positions {
			if pos >= offset {
				shifted.Add(uint32(pos - offset))
			}
		}
		if starts == nil {
			starts = shifted
		} else {
			starts.And(shifted)
		}
		if starts.IsEmpty() {
			return false
		}
	}
	return starts != nil && !starts.IsEmpty()
}

func find(list index.PostingList, articleID int) (index.Posting, bool) {
	i := sort.Search(len(list), func(i int) bool {
		return list[i].ArticleID >= articleID
	})
	if i < len(list) && list[i].ArticleID == articleID {
		return list[i], true
	}
	return index.Posting{}, false
}

// Stats describes the built index.
type Stats struct {
	Documents  int
	Articles   int
	Positional bool
	Stemming   bool
	Permuterm  bool
	Fields     []FieldStats
}

// FieldStats counts the keys of one indexed field.
type FieldStats struct {
	Field         string
	Terms         int
	PermutermKeys int
	StemClasses   int
}

// Terms is the number of indexed terms across all fields.
func (s Stats) Terms() int {
	n := 0
	for _, f := range s.Fields {
		n += f.Terms
	}
	return n
}

// PermutermKeys is the number of rotation keys across all fields.
func (s Stats) PermutermKeys() int {
	n := 0
	for _, f := range s.Fields {
		n += f.PermutermKeys
	}
	return n
}

// StemClasses is the number of stem classes across all fields.
func (s Stats) StemClasses() int {
	n := 0
	for _, f := range s.Fields {
		n += f.StemClasses
	}
	return n
}

// Stats reports document, article and key counts.
func (ix *Index) Stats() Stats {
	s := Stats{
		Documents:  ix.store.DocumentCount(),
		Articles:   ix.store.ArticleCount(),
		Positional: ix.inverted.Positional(),
		Stemming:   ix.opts.Stemming,
		Permuterm:  ix.opts.Permuterm,
		Fields:     make([]FieldStats, 0, len(ix.fields)),
	}
	for _, f := range ix.fields {
		fs := FieldStats{Field: f.Name, Terms: len(ix.terms[f.Name])}
		if px, ok := ix.permuterms[f.Name]; ok {
			fs.PermutermKeys = px.Len()
		}
		if sx, ok := ix.stems[f.Name]; ok {
			fs.StemClasses = sx.Len()
		}
		s.Fields = append(s.Fields, fs)
	}
	return s
}
