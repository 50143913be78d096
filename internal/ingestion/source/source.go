// Package source loads the corpus for the index build. Every source emits
// whole documents in a deterministic order so article ids are stable across
// builds of the same corpus.
package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/config"
)

// EmitFunc receives each loaded document. Returning an error stops the load.
type EmitFunc func(doc ingestion.Document) error

// Source loads a corpus.
type Source interface {
	Load(ctx context.Context, emit EmitFunc) error
}

// New returns the source selected by cfg.Source.Kind.
func New(cfg *config.Config) (Source, error) {
	switch cfg.Source.Kind {
	case config.SourceDir:
		return NewDir(cfg.Source.Dir, cfg.Source.Workers), nil
	case config.SourceKafka:
		return NewKafka(cfg.Kafka), nil
	case config.SourcePostgres:
		return NewPostgres(cfg.Postgres), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
}

// validated returns pointers to the valid articles of a document, leaving
// nil in the slots of rejected ones so later ordinals do not shift. When
// present is non-nil, slots it marks false are left nil without validation.
func validated(path string, articles []ingestion.Article, present []bool, logger *slog.Logger) []*ingestion.Article {
	out := make([]*ingestion.Article, len(articles))
	for i := range articles {
		if present != nil && !present[i] {
			continue
		}
		if err := validator.ValidateArticle(&articles[i]); err != nil {
			logger.Warn("skipping invalid article", "path", path, "ordinal", i, "error", err)
			continue
		}
		out[i] = &articles[i]
	}
	return out
}
