// Package tracing times the stages of a query resolution (parse, evaluate,
// rank) and logs them as one structured record. A Trace travels in the
// context so code below the resolver can add stages without a handle to it.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type contextKey struct{}

// Stage is one timed step of a trace.
type Stage struct {
	Name     string
	Duration time.Duration
}

// Trace collects the stages of one query.
type Trace struct {
	Name    string
	QueryID string

	mu       sync.Mutex
	start    time.Time
	duration time.Duration
	stages   []Stage
	attrs    []any
}

// Start begins a trace and stores it in the returned context.
func Start(ctx context.Context, name, queryID string) (context.Context, *Trace) {
	t := &Trace{Name: name, QueryID: queryID, start: time.Now()}
	return context.WithValue(ctx, contextKey{}, t), t
}

// FromContext returns the trace stored in ctx, or nil.
func FromContext(ctx context.Context) *Trace {
	t, _ := ctx.Value(contextKey{}).(*Trace)
	return t
}

// StartStage begins a stage of the trace in ctx. The returned function ends
// it and reports its duration. Without a trace in ctx the stage is still
// timed but not recorded.
func StartStage(ctx context.Context, name string) func() time.Duration {
	start := time.Now()
	t := FromContext(ctx)
	return func() time.Duration {
		d := time.Since(start)
		if t != nil {
			t.mu.Lock()
			t.stages = append(t.stages, Stage{Name: name, Duration: d})
			t.mu.Unlock()
		}
		return d
	}
}

// SetAttr attaches a key-value pair logged with the trace.
func (t *Trace) SetAttr(key string, value any) {
	t.mu.Lock()
	t.attrs = append(t.attrs, key, value)
	t.mu.Unlock()
}

// End stops the trace clock and returns the total duration.
func (t *Trace) End() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.duration = time.Since(t.start)
	return t.duration
}

// Stages returns the recorded stages in completion order.
func (t *Trace) Stages() []Stage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Stage(nil), t.stages...)
}

// Log writes the trace to log at debug level, one stage_us entry per stage.
func (t *Trace) Log(log *slog.Logger) {
	t.mu.Lock()
	defer t.mu.Unlock()
	stages := make([]any, 0, len(t.stages))
	for _, s := range t.stages {
		stages = append(stages, slog.Int64(s.Name, s.Duration.Microseconds()))
	}
	args := []any{
		"trace", t.Name,
		"query_id", t.QueryID,
		"duration_us", t.duration.Microseconds(),
		slog.Group("stage_us", stages...),
	}
	log.Debug("trace", append(args, t.attrs...)...)
}
