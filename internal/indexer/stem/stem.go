// Package stem groups indexed terms into stem classes so a query word can be
// expanded to every surface form sharing its stem.
package stem

import (
	"fmt"
	"sort"

	"github.com/kljensen/snowball"
)

// Stemmer reduces a word to its stem.
type Stemmer struct {
	language string
}

// NewStemmer returns a snowball stemmer for language. It fails for languages
// snowball does not support.
func NewStemmer(language string) (*Stemmer, error) {
	if _, err := snowball.Stem("test", language, true); err != nil {
		return nil, fmt.Errorf("unsupported stem language %q: %w", language, err)
	}
	return &Stemmer{language: language}, nil
}

// Language is the snowball language name.
func (s *Stemmer) Language() string {
	return s.language
}

// Stem returns the stem of word. Words snowball cannot handle are their own
// stem.
func (s *Stemmer) Stem(word string) string {
	stemmed, err := snowball.Stem(word, s.language, true)
	if err != nil || stemmed == "" {
		return word
	}
	return stemmed
}

// Index maps a stem to the sorted set of surface terms reducing to it.
type Index struct {
	stemmer *Stemmer
	classes map[string][]string
}

// Build stems every term and groups terms by stem.
func Build(stemmer *Stemmer, terms []string) *Index {
	sets := make(map[string]map[string]struct{})
	for _, term := range terms {
		s := stemmer.Stem(term)
		set, ok := sets[s]
		if !ok {
			set = make(map[string]struct{}, 1)
			sets[s] = set
		}
		set[term] = struct{}{}
	}
	ix := &Index{
		stemmer: stemmer,
		classes: make(map[string][]string, len(sets)),
	}
	for s, set := range sets {
		list := make([]string, 0, len(set))
		for term := range set {
			list = append(list, term)
		}
		sort.Strings(list)
		ix.classes[s] = list
	}
	return ix
}

// Expand returns every indexed term sharing the stem of word, or nil when
// the stem has no class.
func (ix *Index) Expand(word string) []string {
	return ix.classes[ix.stemmer.Stem(word)]
}

// Class returns the terms registered under stem.
func (ix *Index) Class(stem string) []string {
	return ix.classes[stem]
}

// Len is the number of stem classes.
func (ix *Index) Len() int {
	return len(ix.classes)
}
