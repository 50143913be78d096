// Package report renders index statistics and query results for the
// console, and checks query result counts against expectation files.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/searcher"
)

const (
	heavyRule = "========================================"
	lightRule = "----------------------------------------"
)

// WriteStats prints the index statistics report.
func WriteStats(w io.Writer, s indexer.Stats) error {
	ew := &errWriter{w: w}
	ew.println(heavyRule)
	ew.printf("Number of indexed documents: %d\n", s.Documents)
	ew.println(lightRule)
	ew.printf("Number of indexed articles: %d\n", s.Articles)
	ew.println(lightRule)
	ew.println("TERMS:")
	for _, f := range s.Fields {
		ew.printf("\t# of terms in '%s': %d\n", f.Field, f.Terms)
	}
	if s.Permuterm {
		ew.println(lightRule)
		ew.println("PERMUTERMS:")
		for _, f := range s.Fields {
			ew.printf("\t# of permuterm keys in '%s': %d\n", f.Field, f.PermutermKeys)
		}
	}
	if s.Stemming {
		ew.println(lightRule)
		ew.println("STEMS:")
		for _, f := range s.Fields {
			ew.printf("\t# of stem classes in '%s': %d\n", f.Field, f.StemClasses)
		}
	}
	ew.println(lightRule)
	if s.Positional {
		ew.println("Phrase queries are allowed.")
	} else {
		ew.println("Phrase queries are NOT allowed.")
	}
	ew.println(heavyRule)
	return ew.err
}

// WriteCount prints one "query<TAB>count" line.
func WriteCount(w io.Writer, query string, n int) error {
	_, err := fmt.Fprintf(w, "%s\t%d\n", query, n)
	return err
}

// WritePage prints a result page: a header with the total, then one line
// per hit and its snippet when present.
func WritePage(w io.Writer, page *searcher.Page) error {
	ew := &errWriter{w: w}
	ew.println(heavyRule)
	ew.printf("Query: '%s'\n", page.Query)
	ew.printf("Number of results: %d\n", page.Total)
	for _, hit := range page.Hits {
		ew.println(lightRule)
		score := ""
		if page.Ranked {
			score = fmt.Sprintf("(%.4f) ", hit.Score)
		}
		ew.printf("#%d\t%s(%d) %s#%d\t%s\t%s:\t%s\n",
			hit.Rank, score, hit.ArticleID, hit.Path, hit.Ordinal,
			orDash(hit.Date), orDash(hit.Title), orDash(hit.Keywords))
		if hit.Snippet != "" {
			ew.printf("\t%s\n", hit.Snippet)
		}
	}
	if len(page.Hits) < page.Total {
		ew.println(lightRule)
		ew.printf("... %d more results not shown\n", page.Total-len(page.Hits))
	}
	ew.println(heavyRule)
	return ew.err
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// errWriter keeps the first write error and turns later writes into no-ops.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err == nil {
		_, ew.err = fmt.Fprintf(ew.w, format, args...)
	}
}

func (ew *errWriter) println(s string) {
	if ew.err == nil {
		_, ew.err = fmt.Fprintln(ew.w, s)
	}
}
