// Package publisher ships a loaded corpus to the Kafka topic and the
// PostgreSQL articles table read by the kafka and postgres sources.
package publisher

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/postgres"
)

// batchSize is the number of documents per Kafka write.
const batchSize = 100

// BatchPublisher is satisfied by *kafka.Producer.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Publisher writes documents to Kafka, PostgreSQL, or both. Either sink may
// be nil.
type Publisher struct {
	db       *postgres.Client
	producer BatchPublisher
	logger   *slog.Logger
	now      func() time.Time
}

func New(db *postgres.Client, producer BatchPublisher) *Publisher {
	return &Publisher{
		db:       db,
		producer: producer,
		logger:   slog.Default().With("component", "publisher"),
		now:      time.Now,
	}
}

// Publish sends docs to every configured sink.
func (p *Publisher) Publish(ctx context.Context, docs []ingestion.Document) error {
	if p.db != nil {
		if err := p.store(ctx, docs); err != nil {
			return err
		}
	}
	if p.producer != nil {
		for start := 0; start < len(docs); start += batchSize {
			end := min(start+batchSize, len(docs))
			if err := p.producer.PublishBatch(ctx, p.events(docs[start:end])); err != nil {
				return fmt.Errorf("publishing documents %d-%d: %w", start, end-1, err)
			}
		}
	}
	p.logger.Info("corpus published",
		"documents", len(docs),
		"kafka", p.producer != nil,
		"postgres", p.db != nil,
	)
	return nil
}

// events builds one DocumentEvent per document, keyed by path. Rejected
// articles travel as empty records so the consumer keeps their ordinals
// and rejects them again.
func (p *Publisher) events(docs []ingestion.Document) []kafka.Event {
	publishedAt := p.now().UTC()
	events := make([]kafka.Event, len(docs))
	for i, doc := range docs {
		articles := make([]ingestion.Article, len(doc.Articles))
		for j, a := range doc.Articles {
			if a != nil {
				articles[j] = *a
			}
		}
		events[i] = kafka.Event{
			Key: doc.Path,
			Value: ingestion.DocumentEvent{
				Path:        doc.Path,
				Articles:    articles,
				PublishedAt: publishedAt,
			},
		}
	}
	return events
}

// store replaces the rows of every document in one transaction. Rejected
// articles are not stored; their positions stay as gaps.
func (p *Publisher) store(ctx context.Context, docs []ingestion.Document) error {
	if err := p.db.EnsureSchema(ctx); err != nil {
		return err
	}
	err := p.db.InTx(ctx, func(tx *sql.Tx) error {
		insert, err := tx.PrepareContext(ctx,
			`INSERT INTO articles (doc_path, position, title, date, keywords, body, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer insert.Close()
		for _, doc := range docs {
			if _, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE doc_path = $1`, doc.Path); err != nil {
				return fmt.Errorf("clearing %s: %w", doc.Path, err)
			}
			for position, a := range doc.Articles {
				if a == nil {
					continue
				}
				if _, err := insert.ExecContext(ctx, doc.Path, position,
					a.Title, a.Date, a.Keywords, a.Body, a.Summary); err != nil {
					return fmt.Errorf("inserting %s#%d: %w", doc.Path, position, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("storing articles: %w", err)
	}
	return nil
}
