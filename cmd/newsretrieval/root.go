package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion/source"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/metrics"
)

var (
	configPath   string
	logLevel     string
	sourceKind   string
	sourceDir    string
	multifield   bool
	positional   bool
	stemming     bool
	permuterm    bool
	stemLanguage string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "newsretrieval",
	Short: "Boolean and ranked retrieval over news article collections",
	Long: `newsretrieval builds an in-memory inverted index over a collection of
news articles and answers boolean queries against it.

Queries combine terms with AND, OR and NOT, group with parentheses, match
exact phrases in double quotes, restrict a term to a field with field:term
and expand wildcards with * and ?.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&sourceKind, "source", "", "article source (dir, kafka, postgres)")
	flags.StringVarP(&sourceDir, "dir", "d", "", "corpus directory or JSON file for the dir source")
	flags.BoolVar(&multifield, "multifield", false, "index title, date, keywords and summary alongside the body")
	flags.BoolVar(&positional, "positional", false, "record term positions for phrase queries")
	flags.BoolVar(&stemming, "stemming", false, "build the stem index")
	flags.BoolVar(&permuterm, "permuterm", false, "build the permuterm index for wildcard queries")
	flags.StringVar(&stemLanguage, "stem-language", "", "snowball language of the stemmer")
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.Logging.Level = logLevel
	}
	if flags.Changed("source") {
		c.Source.Kind = sourceKind
	}
	if flags.Changed("dir") {
		c.Source.Dir = sourceDir
	}
	if flags.Changed("multifield") {
		c.Index.Multifield = multifield
	}
	if flags.Changed("positional") {
		c.Index.Positional = positional
	}
	if flags.Changed("stemming") {
		c.Index.Stemming = stemming
	}
	if flags.Changed("permuterm") {
		c.Index.Permuterm = permuterm
	}
	if flags.Changed("stem-language") {
		c.Index.StemLanguage = stemLanguage
	}
	applySearchFlags(cmd, c)
	if err := c.Validate(); err != nil {
		return err
	}
	logger.SetupWriter(cmd.ErrOrStderr(), c.Logging.Level, c.Logging.Format)
	cfg = c
	return nil
}

var (
	metricsOnce sync.Once
	appMetrics  *metrics.Metrics
)

// engineMetrics registers the collectors with the default registry once per
// process. It returns nil unless metrics are enabled.
func engineMetrics(enabled bool) *metrics.Metrics {
	if !enabled {
		return nil
	}
	metricsOnce.Do(func() {
		appMetrics = metrics.New(prometheus.DefaultRegisterer)
	})
	return appMetrics
}

func indexOptions(c config.IndexConfig) indexer.Options {
	return indexer.Options{
		Multifield:   c.Multifield,
		Positional:   c.Positional,
		Stemming:     c.Stemming,
		Permuterm:    c.Permuterm,
		StemLanguage: c.StemLanguage,
	}
}

func searchOptions(c config.SearchConfig) searcher.Options {
	return searcher.Options{
		UseStemming:  c.UseStemming,
		UseRanking:   c.UseRanking,
		ShowAll:      c.ShowAll,
		ShowSnippet:  c.ShowSnippet,
		ShowMax:      c.ShowMax,
		SnippetWidth: c.SnippetWidth,
	}
}

// buildIndex loads the configured source into a fresh index.
func buildIndex(ctx context.Context, c *config.Config, m *metrics.Metrics) (*indexer.Index, error) {
	start := time.Now()
	src, err := source.New(c)
	if err != nil {
		return nil, err
	}
	b, err := indexer.NewBuilder(indexOptions(c.Index), m)
	if err != nil {
		return nil, err
	}
	err = src.Load(ctx, func(doc ingestion.Document) error {
		_, err := b.AddDocument(doc)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("loading %s source: %w", c.Source.Kind, err)
	}
	ix, err := b.Build()
	if err != nil {
		return nil, err
	}
	logger.WithComponent("cli").Info("index ready",
		"source", c.Source.Kind,
		"articles", ix.ArticleCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return ix, nil
}

// newSearcher builds the index and wraps it in a Searcher configured from
// the loaded config.
func newSearcher(ctx context.Context, m *metrics.Metrics) (*searcher.Searcher, error) {
	ix, err := buildIndex(ctx, cfg, m)
	if err != nil {
		return nil, err
	}
	return searcher.New(ix, searchOptions(cfg.Search), m)
}
