package index

import (
	"fmt"
	"sort"
)

// Inverted maps index keys to postings lists. It is filled during the build
// phase by a single writer and is read-only afterwards, so it carries no
// lock of its own.
type Inverted struct {
	postings   map[string]PostingList
	positional bool
	size       int64
}

// NewInverted creates an empty index. When positional is true every
// occurrence position is retained.
func NewInverted(positional bool) *Inverted {
	return &Inverted{
		postings:   make(map[string]PostingList),
		positional: positional,
	}
}

// Positional reports whether occurrence positions are retained.
func (ix *Inverted) Positional() bool {
	return ix.positional
}

// Add records an occurrence of key at position in article. Articles must be
// added in ascending id order; an id lower than the last one recorded for
// key is rejected.
func (ix *Inverted) Add(key string, articleID int, position int) error {
	list := ix.getOrCreate(key)
	n := len(list)
	switch {
	case n > 0 && list[n-1].ArticleID == articleID:
		if ix.positional {
			list[n-1].Positions = append(list[n-1].Positions, position)
			ix.size += 8
		}
	case n > 0 && list[n-1].ArticleID > articleID:
		return fmt.Errorf("article %d added after article %d for key %q", articleID, list[n-1].ArticleID, key)
	default:
		p := Posting{ArticleID: articleID}
		if ix.positional {
			p.Positions = []int{position}
		}
		list = append(list, p)
		ix.size += int64(len(key) + 24)
	}
	ix.postings[key] = list
	return nil
}

// getOrCreate returns the stored list for key, creating an empty entry on
// first use.
func (ix *Inverted) getOrCreate(key string) PostingList {
	list, ok := ix.postings[key]
	if !ok {
		list = make(PostingList, 0, 1)
		ix.postings[key] = list
	}
	return list
}

// Search returns the postings for key, or nil when the key is unknown.
func (ix *Inverted) Search(key string) PostingList {
	return ix.postings[key]
}

// Len is the number of distinct keys.
func (ix *Inverted) Len() int {
	return len(ix.postings)
}

// Size is an approximate in-memory footprint in bytes.
func (ix *Inverted) Size() int64 {
	return ix.size
}

// Keys returns every key in ascending order.
func (ix *Inverted) Keys() []string {
	keys := make([]string, 0, len(ix.postings))
	for k := range ix.postings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns every key with its postings, ordered by key.
func (ix *Inverted) Snapshot() []TermEntry {
	keys := ix.Keys()
	entries := make([]TermEntry, len(keys))
	for i, k := range keys {
		entries[i] = TermEntry{Term: k, Postings: ix.postings[k]}
	}
	return entries
}
