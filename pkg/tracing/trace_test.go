package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStages(t *testing.T) {
	ctx, trace := Start(context.Background(), "resolve", "q-1")
	assert.Same(t, trace, FromContext(ctx))

	StartStage(ctx, "parse")()
	end := StartStage(ctx, "evaluate")
	d := end()
	total := trace.End()

	stages := trace.Stages()
	require.Len(t, stages, 2)
	assert.Equal(t, "parse", stages[0].Name)
	assert.Equal(t, "evaluate", stages[1].Name)
	assert.Equal(t, d, stages[1].Duration)
	assert.GreaterOrEqual(t, total, d)
}

func TestStageWithoutTrace(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	end := StartStage(context.Background(), "orphan")
	assert.GreaterOrEqual(t, end().Nanoseconds(), int64(0))
}

func TestLogAtDebug(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx, trace := Start(context.Background(), "resolve", "q-2")
	trace.SetAttr("query", "bank")
	StartStage(ctx, "rank")()
	trace.End()
	trace.Log(log)

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "msg=trace")
	assert.Contains(t, out, "query_id=q-2")
	assert.Contains(t, out, "stage_us.rank=")
	assert.Contains(t, out, "query=bank")
}

func TestLogSuppressedAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	_, trace := Start(context.Background(), "resolve", "q-3")
	trace.End()
	trace.Log(log)
	assert.Empty(t, buf.String())
}
