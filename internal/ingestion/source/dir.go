package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion"
)

// Dir loads every *.json file below Root. Each file holds a JSON array of
// article objects. Files are parsed concurrently and emitted in lexical
// path order.
type Dir struct {
	Root    string
	Workers int
	logger  *slog.Logger
}

func NewDir(root string, workers int) *Dir {
	if workers <= 0 {
		workers = 1
	}
	return &Dir{
		Root:    root,
		Workers: workers,
		logger:  slog.Default().With("component", "dir-source", "root", root),
	}
}

func (d *Dir) Load(ctx context.Context, emit EmitFunc) error {
	paths, err := d.files()
	if err != nil {
		return err
	}
	d.logger.Info("loading corpus", "files", len(paths), "workers", d.Workers)

	docs := make([]ingestion.Document, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.Workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := d.parse(path)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, doc := range docs {
		if err := emit(doc); err != nil {
			return err
		}
	}
	return nil
}

// files lists the corpus files in lexical order. A Root naming a single
// file yields just that file.
func (d *Dir) files() ([]string, error) {
	info, err := os.Stat(d.Root)
	if err != nil {
		return nil, fmt.Errorf("reading corpus root: %w", err)
	}
	if !info.IsDir() {
		return []string{d.Root}, nil
	}
	var paths []string
	err = filepath.WalkDir(d.Root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", d.Root, err)
	}
	return paths, nil
}

func (d *Dir) parse(path string) (ingestion.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ingestion.Document{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var articles []ingestion.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return ingestion.Document{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return ingestion.Document{Path: path, Articles: validated(path, articles, nil, d.logger)}, nil
}
