// Package validator checks article records before they reach the index. The
// article body is the only mandatory field.
package validator

import (
	"fmt"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion"
)

const (
	maxTitleLength = 1024
	maxBodyLength  = 1048576
	minBodyLength  = 1
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// ValidateArticle checks that the article body is present and that the
// title and body meet the length constraints.
func ValidateArticle(a *ingestion.Article) error {
	errs := make(map[string]string)

	if len(a.Title) > maxTitleLength {
		errs["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	}
	body := strings.TrimSpace(a.Body)
	if len(body) < minBodyLength {
		errs["article"] = "article body is required and must not be empty"
	} else if len(body) > maxBodyLength {
		errs["article"] = fmt.Sprintf("article body must be at most %d characters", maxBodyLength)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
