package tokenizer

import (
	"strings"
	"sync"
	"unicode"

	"github.com/bbalet/stopwords"
)

// languageCodes maps snowball language names to the ISO 639-1 codes of the
// stop-word lists.
var languageCodes = map[string]string{
	"english":   "en",
	"spanish":   "es",
	"french":    "fr",
	"russian":   "ru",
	"swedish":   "sv",
	"norwegian": "no",
	"hungarian": "hu",
}

// verdicts caches IsStopWord by "code:term"; the lists never change.
var verdicts sync.Map

// IsStopWord reports whether term is a stop-word of language. Unknown
// languages have none, and terms without a letter never are.
func IsStopWord(language, term string) bool {
	code, ok := languageCodes[language]
	if !ok || !strings.ContainsFunc(term, unicode.IsLetter) {
		return false
	}
	key := code + ":" + term
	if v, ok := verdicts.Load(key); ok {
		return v.(bool)
	}
	stop := strings.TrimSpace(stopwords.CleanString(term, code, false)) == ""
	verdicts.Store(key, stop)
	return stop
}

// Filter returns terms without the stop-words of language. The input slice
// is not modified.
func Filter(language string, terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if !IsStopWord(language, t) {
			out = append(out, t)
		}
	}
	return out
}
