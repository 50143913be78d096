package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/postgres"
)

const selectArticles = `SELECT doc_path, position, title, date, keywords, body, summary
FROM articles
ORDER BY doc_path, position`

// Postgres loads the articles table, grouping rows by doc_path into
// documents.
type Postgres struct {
	cfg    config.PostgresConfig
	logger *slog.Logger
}

func NewPostgres(cfg config.PostgresConfig) *Postgres {
	return &Postgres{
		cfg:    cfg,
		logger: slog.Default().With("component", "postgres-source", "database", cfg.Database),
	}
}

func (p *Postgres) Load(ctx context.Context, emit EmitFunc) error {
	client, err := postgres.New(ctx, p.cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	rows, err := client.DB.QueryContext(ctx, selectArticles)
	if err != nil {
		return fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	g := grouper{emit: emit, logger: p.logger}
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.path, &r.position, &r.article.Title, &r.article.Date,
			&r.article.Keywords, &r.article.Body, &r.article.Summary); err != nil {
			return fmt.Errorf("scanning article row: %w", err)
		}
		if err := g.add(r); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating article rows: %w", err)
	}
	if err := g.flush(); err != nil {
		return err
	}
	p.logger.Info("corpus loaded", "documents", g.documents, "articles", g.articles)
	return nil
}

type row struct {
	path     string
	position int
	article  ingestion.Article
}

// grouper turns rows ordered by (path, position) into documents. Missing
// positions become nil slots so article ordinals match the source file.
type grouper struct {
	emit      EmitFunc
	logger    *slog.Logger
	path      string
	pending   []ingestion.Article
	present   []bool
	documents int
	articles  int
}

func (g *grouper) add(r row) error {
	if r.position < 0 {
		return fmt.Errorf("article %s#%d has a negative position", r.path, r.position)
	}
	if r.path != g.path && g.pending != nil {
		if err := g.flush(); err != nil {
			return err
		}
	}
	g.path = r.path
	for len(g.pending) <= r.position {
		g.pending = append(g.pending, ingestion.Article{})
		g.present = append(g.present, false)
	}
	g.pending[r.position] = r.article
	g.present[r.position] = true
	return nil
}

func (g *grouper) flush() error {
	if g.pending == nil {
		return nil
	}
	articles := validated(g.path, g.pending, g.present, g.logger)
	doc := ingestion.Document{Path: g.path, Articles: articles}
	g.pending, g.present = nil, nil
	g.documents++
	for _, a := range articles {
		if a != nil {
			g.articles++
		}
	}
	return g.emit(doc)
}
