package parser

import (
	"strings"
	"unicode"

	apperrors "github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/errors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokPhrase
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of query"
	case tokWord:
		return "term"
	case tokPhrase:
		return "phrase"
	case tokAnd:
		return "AND"
	case tokOr:
		return "OR"
	case tokNot:
		return "NOT"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	}
	return "unknown"
}

// token is one lexical unit. For words and phrases, field holds an optional
// "field:" prefix and text the raw remainder.
type token struct {
	kind  tokenKind
	field string
	text  string
	pos   int
}

// lex splits query into tokens. Parentheses and quotes are structural
// wherever they appear, so "(central" and "bank)" lex the same as their
// space-separated forms. Operators are recognised only in upper case.
func lex(query string) ([]token, error) {
	var toks []token
	runes := []rune(query)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, pos: i})
			i++
		case r == '"':
			end, err := closingQuote(runes, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokPhrase, text: string(runes[i+1 : end]), pos: i})
			i = end + 1
		default:
			start := i
			for i < len(runes) && !isStructural(runes[i]) {
				i++
			}
			word := string(runes[start:i])
			if kind, ok := operator(word); ok {
				toks = append(toks, token{kind: kind, text: word, pos: start})
				continue
			}
			field, rest := splitField(word)
			if rest == "" && field != "" && i < len(runes) && runes[i] == '"' {
				end, err := closingQuote(runes, i)
				if err != nil {
					return nil, err
				}
				toks = append(toks, token{kind: tokPhrase, field: field, text: string(runes[i+1 : end]), pos: start})
				i = end + 1
				continue
			}
			toks = append(toks, token{kind: tokWord, field: field, text: rest, pos: start})
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(runes)}), nil
}

func closingQuote(runes []rune, open int) (int, error) {
	for j := open + 1; j < len(runes); j++ {
		if runes[j] == '"' {
			return j, nil
		}
	}
	return 0, apperrors.Malformed("unbalanced quote at offset %d", open)
}

func isStructural(r rune) bool {
	return unicode.IsSpace(r) || r == '(' || r == ')' || r == '"'
}

func operator(word string) (tokenKind, bool) {
	switch word {
	case "AND":
		return tokAnd, true
	case "OR":
		return tokOr, true
	case "NOT":
		return tokNot, true
	}
	return 0, false
}

// splitField separates a "field:" prefix made of letters. Anything else
// containing a colon, such as "10:30", is left whole.
func splitField(word string) (field, rest string) {
	i := strings.IndexByte(word, ':')
	if i <= 0 {
		return "", word
	}
	for _, r := range word[:i] {
		if !unicode.IsLetter(r) {
			return "", word
		}
	}
	return strings.ToLower(word[:i]), word[i+1:]
}
