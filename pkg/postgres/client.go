// Package postgres wraps a database/sql pool on lib/pq and owns the schema
// of the articles table used as an alternative corpus source.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/resilience"
)

// Schema creates the articles table. position is the article's ordinal
// inside its source document.
const Schema = `CREATE TABLE IF NOT EXISTS articles (
	doc_path  TEXT    NOT NULL,
	position  INTEGER NOT NULL,
	title     TEXT    NOT NULL DEFAULT '',
	date      TEXT    NOT NULL DEFAULT '',
	keywords  TEXT    NOT NULL DEFAULT '',
	body      TEXT    NOT NULL,
	summary   TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (doc_path, position)
)`

type Client struct {
	DB  *sql.DB
	cfg config.PostgresConfig
}

// New opens a pool and waits for the server to answer a ping, retrying with
// backoff while it is unreachable.
func New(ctx context.Context, cfg config.PostgresConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	err = resilience.Retry(ctx, "postgres-ping", resilience.RetryConfig{}, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Client{DB: db, cfg: cfg}, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

// EnsureSchema creates the articles table if it does not exist.
func (c *Client) EnsureSchema(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("creating articles table: %w", err)
	}
	return nil
}

func (c *Client) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back transaction after error %v: %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
