package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/searcher"
	apperrors "github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/logger"
)

type SearchService interface {
	Options() searcher.Options
	ShowWith(ctx context.Context, query string, opts searcher.Options) (*searcher.Page, error)
	Count(ctx context.Context, query string) (int, error)
	Stats() indexer.Stats
}

type Handler struct {
	searcher SearchService
	logger   *slog.Logger
}

func New(s SearchService) *Handler {
	return &Handler{
		searcher: s,
		logger:   slog.Default().With("component", "search-handler"),
	}
}

type countResponse struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// Search serves GET /api/v1/search. The q parameter is required; count,
// all, snippet and rank are optional booleans overriding the configured
// display options for this request.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)
	params := r.URL.Query()

	query := params.Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	countOnly, err := boolParam(params.Get("count"), false)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "count must be a boolean")
		return
	}
	if countOnly {
		n, err := h.searcher.Count(ctx, query)
		if err != nil {
			h.fail(w, log, query, err)
			return
		}
		h.writeJSON(w, http.StatusOK, countResponse{Query: query, Count: n})
		return
	}

	opts := h.searcher.Options()
	for name, dst := range map[string]*bool{
		"all":     &opts.ShowAll,
		"snippet": &opts.ShowSnippet,
		"rank":    &opts.UseRanking,
		"stem":    &opts.UseStemming,
	} {
		v, err := boolParam(params.Get(name), *dst)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, name+" must be a boolean")
			return
		}
		*dst = v
	}

	page, err := h.searcher.ShowWith(ctx, query, opts)
	if err != nil {
		h.fail(w, log, query, err)
		return
	}
	log.Info("search completed",
		"query", query,
		"total_hits", page.Total,
		"returned", len(page.Hits),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, page)
}

// Stats serves GET /api/v1/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, statsResponse(h.searcher.Stats()))
}

type fieldStats struct {
	Field         string `json:"field"`
	Terms         int    `json:"terms"`
	PermutermKeys int    `json:"permuterm_keys,omitempty"`
	StemClasses   int    `json:"stem_classes,omitempty"`
}

type stats struct {
	Documents     int          `json:"documents"`
	Articles      int          `json:"articles"`
	Terms         int          `json:"terms"`
	PermutermKeys *int         `json:"permuterm_keys,omitempty"`
	StemClasses   *int         `json:"stem_classes,omitempty"`
	Phrases       bool         `json:"phrase_queries"`
	Fields        []fieldStats `json:"fields"`
}

func statsResponse(s indexer.Stats) stats {
	out := stats{
		Documents: s.Documents,
		Articles:  s.Articles,
		Terms:     s.Terms(),
		Phrases:   s.Positional,
		Fields:    make([]fieldStats, len(s.Fields)),
	}
	if s.Permuterm {
		n := s.PermutermKeys()
		out.PermutermKeys = &n
	}
	if s.Stemming {
		n := s.StemClasses()
		out.StemClasses = &n
	}
	for i, f := range s.Fields {
		out.Fields[i] = fieldStats(f)
	}
	return out
}

func (h *Handler) fail(w http.ResponseWriter, log *slog.Logger, query string, err error) {
	status := apperrors.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		log.Error("search execution failed", "query", query, "error", err)
		h.writeError(w, status, "search failed")
		return
	}
	h.writeError(w, status, err.Error())
}

func boolParam(v string, def bool) (bool, error) {
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
