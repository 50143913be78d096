package searcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/indexer/tokenizer"
)

// DefaultSnippetWidth is the number of words kept on each side of the first
// query term in a snippet.
const DefaultSnippetWidth = 20

// Hit is one displayed result.
type Hit struct {
	Rank      int     `json:"rank"`
	ArticleID int     `json:"article_id"`
	Score     float64 `json:"score,omitempty"`
	Path      string  `json:"path"`
	Ordinal   int     `json:"ordinal"`
	Title     string  `json:"title"`
	Date      string  `json:"date"`
	Keywords  string  `json:"keywords"`
	Snippet   string  `json:"snippet,omitempty"`
}

// Page is the displayed portion of a query's results.
type Page struct {
	Query  string `json:"query"`
	Total  int    `json:"total"`
	Ranked bool   `json:"ranked"`
	Hits   []Hit  `json:"hits"`
}

// Show resolves query and describes its first ShowMax results, or all of
// them when ShowAll is set.
func (s *Searcher) Show(ctx context.Context, query string) (*Page, error) {
	return s.ShowWith(ctx, query, s.Options())
}

// ShowWith is Show with per-call display options. Stemming still requires
// an index built with stem classes.
func (s *Searcher) ShowWith(ctx context.Context, query string, opts Options) (*Page, error) {
	opts, err := s.normalize(opts)
	if err != nil {
		return nil, err
	}
	res, err := s.resolve(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	ids := res.ids
	if !opts.ShowAll && len(ids) > opts.ShowMax {
		ids = ids[:opts.ShowMax]
	}
	page := &Page{
		Query:  query,
		Total:  len(res.ids),
		Ranked: opts.UseRanking,
		Hits:   make([]Hit, 0, len(ids)),
	}
	for i, id := range ids {
		art, ok := s.index.Article(id)
		if !ok {
			return nil, fmt.Errorf("article %d matched but is not stored", id)
		}
		doc, _ := s.index.Document(art.DocumentID)
		hit := Hit{
			Rank:      i + 1,
			ArticleID: id,
			Score:     res.scores[id],
			Path:      doc.Path,
			Ordinal:   art.Ordinal,
			Title:     art.Title,
			Date:      art.Date,
			Keywords:  art.Keywords,
		}
		if opts.ShowSnippet {
			hit.Snippet = Snippet(art.Body, res.terms, opts.SnippetWidth)
		}
		page.Hits = append(page.Hits, hit)
	}
	return page, nil
}

// Snippet returns the words of body around the first occurrence of any of
// terms, typically the expanded query vocabulary, width words on each side, marking cut ends with "...". Without a
// hit it returns the opening of body.
func Snippet(body string, terms []string, width int) string {
	words := strings.Fields(body)
	if len(words) == 0 {
		return ""
	}
	want := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		want[t] = struct{}{}
	}
	hit := -1
	for i, w := range words {
		for _, t := range tokenizer.Terms(w) {
			if _, ok := want[t]; ok {
				hit = i
				break
			}
		}
		if hit >= 0 {
			break
		}
	}
	start, end := 0, min(len(words), 2*width+1)
	if hit >= 0 {
		start = max(0, hit-width)
		end = min(len(words), hit+width+1)
	}
	var b strings.Builder
	if start > 0 {
		b.WriteString("...")
	}
	b.WriteString(strings.Join(words[start:end], " "))
	if end < len(words) {
		b.WriteString("...")
	}
	return b.String()
}
