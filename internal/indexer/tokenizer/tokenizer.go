// Package tokenizer provides text tokenisation for the news index. It
// lower-cases input and splits on non-alphanumeric boundaries. Stop-words are
// kept in the index so occurrence positions stay faithful to the text; the
// ranker filters them with Filter.
package tokenizer

import (
	"strings"
	"unicode"
)

// Token represents a single normalised term and its position in the
// original text.
type Token struct {
	Term     string
	Position int
}

// Tokenize breaks text into lowercased Tokens with consecutive positions.
func Tokenize(text string) []Token {
	words := Terms(text)
	tokens := make([]Token, len(words))
	for i, word := range words {
		tokens[i] = Token{Term: word, Position: i}
	}
	return tokens
}

// Terms returns the lowercased alphanumeric runs of text in order.
func Terms(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), isSeparator)
}

// IsTerm reports whether s is already a normalised term.
func IsTerm(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if isSeparator(r) || unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
