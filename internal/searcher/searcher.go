// Package searcher is the query entry point over a built index: it parses,
// evaluates and optionally ranks queries, and prepares result pages for
// display.
package searcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/tracing"
)

// DefaultShowMax is the page size used when Options.ShowMax is unset.
const DefaultShowMax = 10

// Options are the runtime switches of query resolution and display.
type Options struct {
	UseStemming  bool
	UseRanking   bool
	ShowAll      bool
	ShowSnippet  bool
	ShowMax      int
	SnippetWidth int
}

// Searcher resolves queries against one frozen index. It is safe for
// concurrent use.
type Searcher struct {
	index    *indexer.Index
	executor *executor.Executor
	ranker   *ranker.Ranker
	metrics  *metrics.Metrics
	logger   *slog.Logger

	mu     sync.RWMutex
	opts   Options
	scores map[int]float64
}

// New returns a Searcher over ix. It fails with ErrIndexNotBuilt when ix
// has not been produced by a completed build. m may be nil.
func New(ix *indexer.Index, opts Options, m *metrics.Metrics) (*Searcher, error) {
	if err := ix.Ready(); err != nil {
		return nil, err
	}
	language := ix.Options().StemLanguage
	if language == "" {
		language = "english"
	}
	s := &Searcher{
		index:    ix,
		executor: executor.New(ix),
		ranker:   ranker.New(ix, language),
		metrics:  m,
		logger:   logger.WithComponent("searcher"),
		scores:   make(map[int]float64),
	}
	if err := s.Configure(opts); err != nil {
		return nil, err
	}
	return s, nil
}

// Configure replaces the runtime options. Stemming by default needs an
// index built with stem classes.
func (s *Searcher) Configure(opts Options) error {
	opts, err := s.normalize(opts)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.opts = opts
	s.mu.Unlock()
	return nil
}

func (s *Searcher) normalize(opts Options) (Options, error) {
	if opts.UseStemming && !s.index.Options().Stemming {
		return opts, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"stemming by default needs an index built with stemming")
	}
	if opts.ShowMax <= 0 {
		opts.ShowMax = DefaultShowMax
	}
	if opts.SnippetWidth <= 0 {
		opts.SnippetWidth = DefaultSnippetWidth
	}
	return opts, nil
}

// Options returns the current runtime options.
func (s *Searcher) Options() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

// Index returns the index being searched.
func (s *Searcher) Index() *indexer.Index {
	return s.index
}

// Stats describes the index being searched.
func (s *Searcher) Stats() indexer.Stats {
	return s.index.Stats()
}

// Score returns the last ranking score computed for an article.
func (s *Searcher) Score(articleID int) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.scores[articleID]
	return score, ok
}

// Resolve returns the ids of the articles matching query. They are in
// ascending order unless ranking is enabled, in which case they are ordered
// by descending relevance.
func (s *Searcher) Resolve(ctx context.Context, query string) ([]int, error) {
	res, err := s.resolve(ctx, query, s.Options())
	if err != nil {
		return nil, err
	}
	return res.ids, nil
}

// Count returns how many articles match query. Results are never ranked.
func (s *Searcher) Count(ctx context.Context, query string) (int, error) {
	opts := s.Options()
	opts.UseRanking = false
	opts.ShowSnippet = false
	res, err := s.resolve(ctx, query, opts)
	if err != nil {
		return 0, err
	}
	return len(res.ids), nil
}

type resolution struct {
	node   parser.Node
	ids    []int
	scores map[int]float64
	// terms is the query vocabulary, set when ranking or snippets need it.
	terms []string
}

func (s *Searcher) resolve(ctx context.Context, query string, opts Options) (*resolution, error) {
	queryID := logger.QueryID(ctx)
	if queryID == "" {
		queryID = uuid.NewString()
		ctx = logger.WithQueryID(ctx, queryID)
	}
	ctx, trace := tracing.Start(ctx, "resolve", queryID)
	trace.SetAttr("query", query)
	log := logger.FromContext(ctx)

	res, err := s.run(ctx, query, opts)
	elapsed := trace.End()
	trace.Log(log)
	if err != nil {
		s.observeResult(resultType(err), 0)
		log.Warn("query failed", "query", query, "error", err)
		return nil, err
	}
	if res.scores != nil {
		s.mu.Lock()
		s.scores = res.scores
		s.mu.Unlock()
	}
	s.observeResult(metrics.ResultHit, len(res.ids))
	log.Info("query resolved",
		"query", query,
		"results", len(res.ids),
		"stemming", opts.UseStemming,
		"ranking", opts.UseRanking,
		"latency", elapsed,
	)
	return res, nil
}

func (s *Searcher) run(ctx context.Context, query string, opts Options) (*resolution, error) {
	end := tracing.StartStage(ctx, "parse")
	node, err := parser.Parse(query)
	s.observeStage("parse", end())
	if err != nil {
		return nil, err
	}

	end = tracing.StartStage(ctx, "evaluate")
	execOpts := executor.Options{Stemming: opts.UseStemming}
	matched, err := s.executor.Evaluate(ctx, node, execOpts)
	s.observeStage("evaluate", end())
	if err != nil {
		return nil, fmt.Errorf("evaluating %q: %w", query, err)
	}

	res := &resolution{node: node}
	if opts.UseRanking || opts.ShowSnippet {
		res.terms, err = s.executor.Vocabulary(node, execOpts)
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", query, err)
		}
	}
	if !opts.UseRanking || len(matched) == 0 {
		res.ids = []int(matched)
		if res.ids == nil {
			res.ids = []int{}
		}
		return res, nil
	}

	end = tracing.StartStage(ctx, "rank")
	ranked := s.ranker.Rank(matched, res.terms)
	s.observeStage("rank", end())
	res.ids = make([]int, len(ranked))
	res.scores = make(map[int]float64, len(ranked))
	for i, r := range ranked {
		res.ids[i] = r.ArticleID
		res.scores[r.ArticleID] = r.Score
	}
	return res, nil
}

func resultType(err error) string {
	if errors.Is(err, apperrors.ErrMalformedQuery) {
		return metrics.ResultMalformed
	}
	return metrics.ResultError
}

func (s *Searcher) observeResult(result string, n int) {
	if s.metrics == nil {
		return
	}
	if result == metrics.ResultHit && n == 0 {
		result = metrics.ResultZero
	}
	s.metrics.SearchQueriesTotal.WithLabelValues(result).Inc()
	if result == metrics.ResultHit || result == metrics.ResultZero {
		s.metrics.SearchResultsCount.Observe(float64(n))
	}
}

func (s *Searcher) observeStage(stage string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.SearchLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// CountResult is the outcome of one query of a batch.
type CountResult struct {
	Query string
	Count int
	Err   error
}

// CountAll counts every query concurrently, at most workers at a time, and
// returns the results in input order. A failing query does not stop the
// others; its error is reported in its CountResult.
func (s *Searcher) CountAll(ctx context.Context, queries []string, workers int) ([]CountResult, error) {
	results := make([]CountResult, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, q := range queries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n, err := s.Count(gctx, q)
			results[i] = CountResult{Query: q, Count: n, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
