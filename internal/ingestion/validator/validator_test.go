package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion"
)

func TestValidateArticle(t *testing.T) {
	tests := []struct {
		name    string
		article ingestion.Article
		field   string
	}{
		{"valid", ingestion.Article{Title: "t", Body: "body"}, ""},
		{"body only", ingestion.Article{Body: "body"}, ""},
		{"empty body", ingestion.Article{Title: "t", Body: "   "}, "article"},
		{"long title", ingestion.Article{Title: strings.Repeat("x", maxTitleLength+1), Body: "b"}, "title"},
		{"long body", ingestion.Article{Body: strings.Repeat("x", maxBodyLength+1)}, "article"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArticle(&tt.article)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.field)
			assert.Contains(t, verr.Error(), tt.field+":")
		})
	}
}
