// Package permuterm resolves single-wildcard term patterns. Every rotation
// of term+Sentinel is stored as a key pointing back at the terms that
// produce it; a pattern is rotated until its wildcard is last and resolved
// with a prefix range scan over the sorted keys.
package permuterm

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Sentinel marks the end of a term inside a rotation. Terms are
// alphanumeric, so it never occurs in one.
const Sentinel = '$'

// Wildcard characters.
const (
	Any    = '*'
	Single = '?'
)

// Index maps rotation keys to the sorted set of terms producing them.
type Index struct {
	keys  []string
	terms map[string][]string
}

// Build creates the permuterm index for terms.
func Build(terms []string) *Index {
	sets := make(map[string]map[string]struct{})
	for _, term := range terms {
		for _, key := range Rotations(term) {
			set, ok := sets[key]
			if !ok {
				set = make(map[string]struct{}, 1)
				sets[key] = set
			}
			set[term] = struct{}{}
		}
	}
	ix := &Index{
		keys:  make([]string, 0, len(sets)),
		terms: make(map[string][]string, len(sets)),
	}
	for key, set := range sets {
		ix.keys = append(ix.keys, key)
		list := make([]string, 0, len(set))
		for term := range set {
			list = append(list, term)
		}
		sort.Strings(list)
		ix.terms[key] = list
	}
	sort.Strings(ix.keys)
	return ix
}

// Rotations returns the len(term)+1 rotations of term+Sentinel, counted in
// runes, starting with the zero rotation.
func Rotations(term string) []string {
	r := []rune(term + string(Sentinel))
	out := make([]string, len(r))
	for i := range r {
		out[i] = string(r[i:]) + string(r[:i])
	}
	return out
}

// Len is the number of distinct rotation keys.
func (ix *Index) Len() int {
	return len(ix.keys)
}

// Terms returns the terms registered under an exact rotation key.
func (ix *Index) Terms(key string) []string {
	return ix.terms[key]
}

// HasWildcard reports whether pattern contains a wildcard character.
func HasWildcard(pattern string) bool {
	return strings.ContainsRune(pattern, Any) || strings.ContainsRune(pattern, Single)
}

// Validate rejects patterns with more than one wildcard character.
func Validate(pattern string) error {
	n := strings.Count(pattern, string(Any)) + strings.Count(pattern, string(Single))
	if n > 1 {
		return fmt.Errorf("pattern %q has %d wildcards, at most one is supported", pattern, n)
	}
	return nil
}

// Match returns the sorted distinct terms matching pattern. A pattern
// without wildcard matches itself when indexed. '*' matches any run of
// characters, including none; '?' matches exactly one character.
func (ix *Index) Match(pattern string) ([]string, error) {
	if err := Validate(pattern); err != nil {
		return nil, err
	}
	r := []rune(pattern + string(Sentinel))
	pos := -1
	for i, c := range r {
		if c == Any || c == Single {
			pos = i
			break
		}
	}
	if pos < 0 {
		return ix.terms[string(r)], nil
	}
	wildcard := r[pos]
	rotated := append(append([]rune{}, r[pos+1:]...), r[:pos]...)
	prefix := string(rotated)

	wantLen := -1
	if wildcard == Single {
		wantLen = len(rotated) + 1
	}
	seen := make(map[string]struct{})
	var matched []string
	start := sort.SearchStrings(ix.keys, prefix)
	for _, key := range ix.keys[start:] {
		if !strings.HasPrefix(key, prefix) {
			break
		}
		if wantLen >= 0 && utf8.RuneCountInString(key) != wantLen {
			continue
		}
		for _, term := range ix.terms[key] {
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			matched = append(matched, term)
		}
	}
	sort.Strings(matched)
	return matched, nil
}
