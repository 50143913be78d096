// Package parser turns boolean query strings into an expression tree.
//
// Grammar, with NOT binding tighter than AND and AND tighter than OR:
//
//	query  := or
//	or     := and { OR and }
//	and    := not { AND not }
//	not    := NOT not | atom
//	atom   := word | phrase | '(' query ')'
//
// Operators are left-associative. Adjacent atoms without an operator are
// rejected rather than joined by an implicit AND.
package parser

import (
	"strings"
	"unicode"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/indexer/permuterm"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/errors"
)

// Parse parses query. A blank query yields a nil Node and no error.
// Syntax errors wrap apperrors.ErrMalformedQuery.
func Parse(query string) (Node, error) {
	toks, err := lex(query)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.peek().kind == tokEOF {
		return nil, nil
	}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	switch tok := p.peek(); tok.kind {
	case tokEOF:
		return n, nil
	case tokRParen:
		return nil, apperrors.Malformed("unbalanced ')' at offset %d", tok.pos)
	default:
		return nil, apperrors.Malformed("missing operator before %s at offset %d", tok.kind, tok.pos)
	}
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &And{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Node, error) {
	if p.peek().kind != tokNot {
		return p.parseAtom()
	}
	p.next()
	operand, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	return &Not{Operand: operand}, nil
}

func (p *parser) parseAtom() (Node, error) {
	tok := p.next()
	switch tok.kind {
	case tokWord:
		return wordNode(tok)
	case tokPhrase:
		return phraseNode(tok)
	case tokLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, apperrors.Malformed("unbalanced '(' at offset %d", tok.pos)
		}
		return &Group{Inner: inner}, nil
	case tokEOF:
		return nil, apperrors.Malformed("missing operand at end of query")
	default:
		return nil, apperrors.Malformed("missing operand before %s at offset %d", tok.kind, tok.pos)
	}
}

func resolveField(tok token) (ingestion.Field, error) {
	name := tok.field
	if name == "" {
		name = ingestion.BodyField
	}
	f, ok := ingestion.FieldByName(name)
	if !ok {
		return ingestion.Field{}, apperrors.Malformed("unknown field %q at offset %d", tok.field, tok.pos)
	}
	return f, nil
}

// wordNode classifies a bare word. Untokenised fields keep the whole value
// as one term. A word that splits into several terms, such as "u.s.", is
// treated as a phrase.
func wordNode(tok token) (Node, error) {
	field, err := resolveField(tok)
	if err != nil {
		return nil, err
	}
	text := strings.ToLower(tok.text)
	if text == "" {
		return nil, apperrors.Malformed("empty term at offset %d", tok.pos)
	}
	if permuterm.HasWildcard(text) {
		if err := permuterm.Validate(text); err != nil {
			return nil, apperrors.Malformed("%v", err)
		}
		if field.Tokenize {
			for _, r := range text {
				if r != permuterm.Any && r != permuterm.Single && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
					return nil, apperrors.Malformed("invalid character %q in wildcard %q", r, tok.text)
				}
			}
		}
		return &Wildcard{Field: field.Name, Pattern: text}, nil
	}
	if !field.Tokenize {
		return &Term{Field: field.Name, Text: text}, nil
	}
	terms := tokenizer.Terms(text)
	switch len(terms) {
	case 0:
		return nil, apperrors.Malformed("no searchable characters in %q at offset %d", tok.text, tok.pos)
	case 1:
		return &Term{Field: field.Name, Text: terms[0]}, nil
	default:
		return &Phrase{Field: field.Name, Terms: terms}, nil
	}
}

func phraseNode(tok token) (Node, error) {
	field, err := resolveField(tok)
	if err != nil {
		return nil, err
	}
	if permuterm.HasWildcard(tok.text) {
		return nil, apperrors.Malformed("wildcards are not allowed inside phrases (offset %d)", tok.pos)
	}
	if !field.Tokenize {
		text := strings.ToLower(strings.TrimSpace(tok.text))
		if text == "" {
			return nil, apperrors.Malformed("empty phrase at offset %d", tok.pos)
		}
		return &Term{Field: field.Name, Text: text}, nil
	}
	terms := tokenizer.Terms(tok.text)
	switch len(terms) {
	case 0:
		return nil, apperrors.Malformed("empty phrase at offset %d", tok.pos)
	case 1:
		return &Term{Field: field.Name, Text: terms[0]}, nil
	default:
		return &Phrase{Field: field.Name, Terms: terms}, nil
	}
}
