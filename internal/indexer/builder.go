package indexer

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/indexer/permuterm"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/indexer/stem"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/indexer/store"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/metrics"
)

// Options selects the index extensions built alongside the inverted index.
type Options struct {
	Multifield   bool
	Positional   bool
	Stemming     bool
	Permuterm    bool
	StemLanguage string
}

// Builder accumulates documents during the build phase. It is not safe for
// concurrent use; once Build returns, the builder rejects further input.
type Builder struct {
	opts     Options
	fields   []ingestion.Field
	inverted *index.Inverted
	store    *store.Store
	stemmer  *stem.Stemmer
	metrics  *metrics.Metrics
	logger   *slog.Logger
	started  time.Time
	built    bool
}

// NewBuilder validates opts and returns an empty Builder. m may be nil.
func NewBuilder(opts Options, m *metrics.Metrics) (*Builder, error) {
	b := &Builder{
		opts:     opts,
		fields:   indexedFields(opts.Multifield),
		inverted: index.NewInverted(opts.Positional),
		store:    store.New(),
		metrics:  m,
		logger:   slog.Default().With("component", "index-builder"),
		started:  time.Now(),
	}
	if opts.Stemming {
		if opts.StemLanguage == "" {
			b.opts.StemLanguage = "english"
		}
		stemmer, err := stem.NewStemmer(b.opts.StemLanguage)
		if err != nil {
			return nil, fmt.Errorf("creating stemmer: %w", err)
		}
		b.stemmer = stemmer
	}
	return b, nil
}

func indexedFields(multifield bool) []ingestion.Field {
	if multifield {
		return ingestion.Fields
	}
	for _, f := range ingestion.Fields {
		if f.Name == ingestion.BodyField {
			return []ingestion.Field{f}
		}
	}
	return nil
}

// AddDocument registers doc and indexes its articles, returning the new
// document id. Nil articles keep their ordinal slot but are not indexed.
func (b *Builder) AddDocument(doc ingestion.Document) (int, error) {
	if b.built {
		return 0, apperrors.ErrIndexFrozen
	}
	docID := b.store.AddDocument(doc.Path)
	indexed := 0
	for ordinal, article := range doc.Articles {
		if article == nil {
			continue
		}
		articleID, err := b.store.AddArticle(docID, ordinal, *article)
		if err != nil {
			return 0, fmt.Errorf("registering article %d of %s: %w", ordinal, doc.Path, err)
		}
		if err := b.indexArticle(articleID, article); err != nil {
			return 0, fmt.Errorf("indexing article %d of %s: %w", ordinal, doc.Path, err)
		}
		indexed++
	}
	if b.metrics != nil {
		b.metrics.ArticlesIndexedTotal.Add(float64(indexed))
	}
	b.logger.Debug("document indexed",
		"doc_id", docID,
		"path", doc.Path,
		"articles", indexed,
		"mem_size", b.inverted.Size(),
	)
	return docID, nil
}

func (b *Builder) indexArticle(articleID int, article *ingestion.Article) error {
	for _, field := range b.fields {
		value := article.Value(field.Name)
		if !field.Tokenize {
			term := strings.ToLower(strings.TrimSpace(value))
			if term == "" {
				continue
			}
			if err := b.inverted.Add(index.Key(field.Name, term), articleID, 0); err != nil {
				return err
			}
			continue
		}
		for _, tok := range tokenizer.Tokenize(value) {
			if err := b.inverted.Add(index.Key(field.Name, tok.Term), articleID, tok.Position); err != nil {
				return err
			}
		}
	}
	return nil
}

// Build freezes the builder and derives the stem and permuterm indices from
// the final term set. The returned Index is read-only.
func (b *Builder) Build() (*Index, error) {
	if b.built {
		return nil, apperrors.ErrIndexFrozen
	}
	b.built = true

	termsByField := make(map[string][]string, len(b.fields))
	for _, key := range b.inverted.Keys() {
		field, term := index.SplitKey(key)
		termsByField[field] = append(termsByField[field], term)
	}

	ix := &Index{
		opts:       b.opts,
		fields:     b.fields,
		inverted:   b.inverted,
		store:      b.store,
		stemmer:    b.stemmer,
		stems:      make(map[string]*stem.Index),
		permuterms: make(map[string]*permuterm.Index),
		universe:   b.store.Universe(),
		terms:      termsByField,
	}
	for _, field := range b.fields {
		terms := termsByField[field.Name]
		if b.opts.Stemming && field.Tokenize {
			ix.stems[field.Name] = stem.Build(b.stemmer, terms)
		}
		if b.opts.Permuterm {
			ix.permuterms[field.Name] = permuterm.Build(terms)
		}
	}

	stats := ix.Stats()
	if b.metrics != nil {
		b.metrics.IndexKeys.WithLabelValues("terms").Set(float64(stats.Terms()))
		b.metrics.IndexKeys.WithLabelValues("permuterm").Set(float64(stats.PermutermKeys()))
		b.metrics.IndexKeys.WithLabelValues("stems").Set(float64(stats.StemClasses()))
	}
	b.logger.Info("index built",
		"documents", stats.Documents,
		"articles", stats.Articles,
		"terms", stats.Terms(),
		"permuterm_keys", stats.PermutermKeys(),
		"stem_classes", stats.StemClasses(),
		"positional", stats.Positional,
		"elapsed", time.Since(b.started).Round(time.Millisecond),
	)
	return ix, nil
}
