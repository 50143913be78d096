// Package executor evaluates parsed queries against a built index.
package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/postings"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/searcher/parser"
	apperrors "github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/errors"
)

// Index is the read-only lookup surface the executor needs.
type Index interface {
	HasField(field string) bool
	Postings(field, term string) postings.List
	Stemmed(field, word string) (postings.List, error)
	StemTerms(field, word string) ([]string, error)
	Wildcard(field, pattern string) (postings.List, error)
	WildcardTerms(field, pattern string) ([]string, error)
	Phrase(field string, terms []string) (postings.List, error)
	Universe() postings.List
}

type Options struct {
	// Stemming routes plain terms in tokenised fields through their stem
	// class instead of an exact lookup.
	Stemming bool
}

type Executor struct {
	index  Index
	logger *slog.Logger
}

func New(ix Index) *Executor {
	return &Executor{
		index:  ix,
		logger: slog.Default().With("component", "query-executor"),
	}
}

// Evaluate reduces n to the sorted ids of the articles it matches. Unknown
// terms and empty wildcard expansions yield empty lists, not errors. A nil
// node matches nothing.
func (e *Executor) Evaluate(ctx context.Context, n parser.Node, opts Options) (postings.List, error) {
	if n == nil {
		return postings.List{}, nil
	}
	result, err := e.eval(ctx, n, opts)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("query evaluated",
		"query", n.String(),
		"stemming", opts.Stemming,
		"results", len(result),
	)
	return result, nil
}

func (e *Executor) eval(ctx context.Context, n parser.Node, opts Options) (postings.List, error) {
	if field, ok := leafField(n); ok && !e.index.HasField(field) {
		return nil, apperrors.Unsupported("field %q is not indexed", field)
	}
	switch n := n.(type) {
	case *parser.Term:
		if opts.Stemming && tokenized(n.Field) {
			return e.index.Stemmed(n.Field, n.Text)
		}
		return e.index.Postings(n.Field, n.Text), nil
	case *parser.Wildcard:
		return e.index.Wildcard(n.Field, n.Pattern)
	case *parser.Phrase:
		return e.index.Phrase(n.Field, n.Terms)
	case *parser.Not:
		operand, err := e.eval(ctx, n.Operand, opts)
		if err != nil {
			return nil, err
		}
		return postings.Complement(e.index.Universe(), operand), nil
	case *parser.And:
		left, right, err := e.pair(ctx, n.Left, n.Right, opts)
		if err != nil {
			return nil, err
		}
		return postings.And(left, right), nil
	case *parser.Or:
		left, right, err := e.pair(ctx, n.Left, n.Right, opts)
		if err != nil {
			return nil, err
		}
		return postings.Or(left, right), nil
	case *parser.Group:
		return e.eval(ctx, n.Inner, opts)
	default:
		return nil, fmt.Errorf("unexpected query node %T", n)
	}
}

func (e *Executor) pair(ctx context.Context, l, r parser.Node, opts Options) (postings.List, postings.List, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	left, err := e.eval(ctx, l, opts)
	if err != nil {
		return nil, nil, err
	}
	right, err := e.eval(ctx, r, opts)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// Vocabulary returns the indexed terms the positive leaves of n resolve to:
// stem-class members for stemmed terms and the matches of each wildcard.
// Negated subtrees contribute nothing. Terms are deduplicated in first-seen
// order.
func (e *Executor) Vocabulary(n parser.Node, opts Options) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	add := func(terms ...string) {
		for _, t := range terms {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				out = append(out, t)
			}
		}
	}
	var walk func(parser.Node) error
	walk = func(n parser.Node) error {
		if field, ok := leafField(n); ok && !e.index.HasField(field) {
			return apperrors.Unsupported("field %q is not indexed", field)
		}
		switch n := n.(type) {
		case *parser.Term:
			if opts.Stemming && tokenized(n.Field) {
				terms, err := e.index.StemTerms(n.Field, n.Text)
				if err != nil {
					return err
				}
				if len(terms) == 0 {
					terms = []string{n.Text}
				}
				add(terms...)
				return nil
			}
			add(n.Text)
		case *parser.Wildcard:
			terms, err := e.index.WildcardTerms(n.Field, n.Pattern)
			if err != nil {
				return err
			}
			add(terms...)
		case *parser.Phrase:
			add(n.Terms...)
		case *parser.And:
			if err := walk(n.Left); err != nil {
				return err
			}
			return walk(n.Right)
		case *parser.Or:
			if err := walk(n.Left); err != nil {
				return err
			}
			return walk(n.Right)
		case *parser.Group:
			return walk(n.Inner)
		}
		return nil
	}
	if n == nil {
		return nil, nil
	}
	if err := walk(n); err != nil {
		return nil, err
	}
	return out, nil
}

// leafField returns the field a term, wildcard or phrase node searches.
func leafField(n parser.Node) (string, bool) {
	switch n := n.(type) {
	case *parser.Term:
		return n.Field, true
	case *parser.Wildcard:
		return n.Field, true
	case *parser.Phrase:
		return n.Field, true
	}
	return "", false
}

func tokenized(field string) bool {
	f, ok := ingestion.FieldByName(field)
	return ok && f.Tokenize
}
