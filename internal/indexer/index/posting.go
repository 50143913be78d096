package index

import "github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/postings"

// Posting records one article containing a term. Positions holds the
// ascending token offsets of every occurrence when the index is positional
// and is nil otherwise.
type Posting struct {
	ArticleID int
	Positions []int
}

// Frequency is the number of recorded occurrences, at least 1.
func (p Posting) Frequency() int {
	if len(p.Positions) == 0 {
		return 1
	}
	return len(p.Positions)
}

// PostingList is ordered by strictly ascending ArticleID.
type PostingList []Posting

// IDs projects the list onto its article ids.
func (pl PostingList) IDs() postings.List {
	ids := make(postings.List, len(pl))
	for i, p := range pl {
		ids[i] = p.ArticleID
	}
	return ids
}

// TermEntry pairs a key with its postings, used for ordered snapshots.
type TermEntry struct {
	Term     string
	Postings PostingList
}
