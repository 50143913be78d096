package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/report"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/errors"
)

var (
	queryFlag    string
	queriesFile  string
	testFile     string
	countOnly    bool
	useStemming  bool
	useRanking   bool
	showAll      bool
	showSnippet  bool
	showMax      int
	snippetWidth int
	workers      int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Resolve queries against the index",
	Long: `Build the index and resolve one query, a file of queries (one per line)
or a test file of "query<TAB>count" lines.

Without --count each query prints its matching articles with title, date
and keywords, ranked by TF-IDF cosine similarity when --rank is set. With
--test every query is counted and compared with its expected count; the
command fails when any of them differ.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&queryFlag, "query", "q", "", "query to resolve")
	searchCmd.Flags().StringVarP(&queriesFile, "file", "f", "", "file with one query per line")
	searchCmd.Flags().StringVarP(&testFile, "test", "t", "", "file of query<TAB>count expectations to check")
	searchCmd.Flags().BoolVarP(&countOnly, "count", "c", false, "print only the number of matching articles")
	searchCmd.Flags().IntVarP(&workers, "workers", "w", 0, "queries counted concurrently (default from config)")
	addSearchFlags(searchCmd)
	rootCmd.AddCommand(searchCmd)
}

// addSearchFlags registers the display switches shared by search and serve.
func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&useStemming, "use-stemming", "s", false, "match terms by stem class")
	cmd.Flags().BoolVarP(&useRanking, "rank", "r", false, "order results by TF-IDF cosine score")
	cmd.Flags().BoolVarP(&showAll, "all", "a", false, "show every result instead of the first page")
	cmd.Flags().BoolVarP(&showSnippet, "snippet", "n", false, "show a body snippet around the query terms")
	cmd.Flags().IntVar(&showMax, "max", 0, "results shown per query (default from config)")
	cmd.Flags().IntVar(&snippetWidth, "snippet-width", 0, "words of context on each side of a snippet")
}

func applySearchFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("use-stemming") {
		c.Search.UseStemming = useStemming
	}
	if flags.Changed("rank") {
		c.Search.UseRanking = useRanking
	}
	if flags.Changed("all") {
		c.Search.ShowAll = showAll
	}
	if flags.Changed("snippet") {
		c.Search.ShowSnippet = showSnippet
	}
	if flags.Changed("max") {
		c.Search.ShowMax = showMax
	}
	if flags.Changed("snippet-width") {
		c.Search.SnippetWidth = snippetWidth
	}
	if flags.Changed("workers") {
		c.Search.MaxConcurrentQueries = workers
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := queryFlag
	if len(args) == 1 {
		if query != "" {
			return fmt.Errorf("query given both as argument and --query")
		}
		query = args[0]
	}
	sources := 0
	for _, set := range []bool{query != "", queriesFile != "", testFile != ""} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return fmt.Errorf("exactly one of a query, --file or --test is required")
	}

	ctx := cmd.Context()
	s, err := newSearcher(ctx, engineMetrics(cfg.Metrics.Enabled))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch {
	case testFile != "":
		return runTest(cmd, s, testFile)
	case queriesFile != "":
		queries, err := readFile(queriesFile, report.ReadQueries)
		if err != nil {
			return err
		}
		if countOnly {
			return countQueries(cmd, s, queries)
		}
		for _, q := range queries {
			if err := showQuery(cmd, s, q); err != nil {
				return err
			}
		}
		return nil
	case countOnly:
		n, err := s.Count(ctx, query)
		if err != nil {
			return err
		}
		return report.WriteCount(out, query, n)
	default:
		return showQuery(cmd, s, query)
	}
}

// showQuery prints one result page. A malformed query is reported and
// skipped so that a query file keeps going.
func showQuery(cmd *cobra.Command, s *searcher.Searcher, query string) error {
	page, err := s.Show(cmd.Context(), query)
	if err != nil {
		if !isQueryError(err) {
			return err
		}
		cmd.PrintErrf("%s: %v\n", query, err)
		return nil
	}
	return report.WritePage(cmd.OutOrStdout(), page)
}

func countQueries(cmd *cobra.Command, s *searcher.Searcher, queries []string) error {
	results, err := s.CountAll(cmd.Context(), queries, cfg.Search.MaxConcurrentQueries)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Err != nil {
			if !isQueryError(r.Err) {
				return r.Err
			}
			cmd.PrintErrf("%s: %v\n", r.Query, r.Err)
			continue
		}
		if err := report.WriteCount(cmd.OutOrStdout(), r.Query, r.Count); err != nil {
			return err
		}
	}
	return nil
}

func runTest(cmd *cobra.Command, s *searcher.Searcher, path string) error {
	exps, err := readFile(path, report.ReadExpectations)
	if err != nil {
		return err
	}
	queries := make([]string, len(exps))
	for i, e := range exps {
		queries[i] = e.Query
	}
	results, err := s.CountAll(cmd.Context(), queries, cfg.Search.MaxConcurrentQueries)
	if err != nil {
		return err
	}
	failed, err := report.Check(cmd.OutOrStdout(), exps, results)
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d queries failed", failed, len(exps))
	}
	return nil
}

func readFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	v, err := parse(f)
	if err != nil {
		return zero, fmt.Errorf("reading %s: %w", path, err)
	}
	return v, nil
}

func isQueryError(err error) bool {
	return errors.Is(err, apperrors.ErrMalformedQuery) || errors.Is(err, apperrors.ErrUnsupportedQuery)
}
