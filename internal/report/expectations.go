package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/searcher"
)

// Expectation is one line of a query test file: a query and the number of
// articles it should match.
type Expectation struct {
	Line  int
	Query string
	Count int
}

// ReadExpectations parses lines of the form "query<TAB>count". Blank lines
// and lines starting with '#' are ignored.
func ReadExpectations(r io.Reader) ([]Expectation, error) {
	var out []Expectation
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		i := strings.LastIndexByte(line, '\t')
		if i < 0 {
			return nil, fmt.Errorf("line %d: expected \"query<TAB>count\"", n)
		}
		count, err := strconv.Atoi(strings.TrimSpace(line[i+1:]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid count: %w", n, err)
		}
		out = append(out, Expectation{Line: n, Query: line[:i], Count: count})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading expectations: %w", err)
	}
	return out, nil
}

// ReadQueries returns the non-blank lines of r, one query per line.
func ReadQueries(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		q := strings.TrimSpace(sc.Text())
		if q == "" || strings.HasPrefix(q, "#") {
			continue
		}
		out = append(out, q)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading queries: %w", err)
	}
	return out, nil
}

// Check compares results with their expectations, positionally, printing
// one line per mismatch or failed query followed by a summary. It returns
// the number of mismatches.
func Check(w io.Writer, exps []Expectation, results []searcher.CountResult) (int, error) {
	if len(results) != len(exps) {
		return 0, fmt.Errorf("%d results for %d expectations", len(results), len(exps))
	}
	ew := &errWriter{w: w}
	failed := 0
	for i, exp := range exps {
		res := results[i]
		switch {
		case res.Err != nil:
			failed++
			ew.printf("line %d: %s\terror: %v\n", exp.Line, exp.Query, res.Err)
		case res.Count != exp.Count:
			failed++
			ew.printf("line %d: %s\texpected %d, got %d\n", exp.Line, exp.Query, exp.Count, res.Count)
		}
	}
	if failed == 0 {
		ew.printf("Parsed OK: all %d queries match\n", len(exps))
	} else {
		ew.printf("Parsed with errors: %d of %d queries do not match\n", failed, len(exps))
	}
	return failed, ew.err
}
