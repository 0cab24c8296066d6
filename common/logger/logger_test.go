package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestNewWithOptions_JSONIncludesTraceContext(t *testing.T) {
	var buf bytes.Buffer
	useJSON := true
	log := NewWithOptions(Options{Output: &buf, JSON: &useJSON, Level: "info"})

	traceID, _ := trace.TraceIDFromHex("0123456789abcdef0123456789abcdef")
	spanID, _ := trace.SpanIDFromHex("0123456789abcdef")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	log.InfoContext(ctx, "registration stored", "team", "Byte Force")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "registration stored", entry["msg"])
	assert.Equal(t, "Byte Force", entry["team"])
	assert.Equal(t, traceID.String(), entry["trace_id"])
	assert.Equal(t, spanID.String(), entry["span_id"])
}

func TestNewWithOptions_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	useJSON := true
	log := NewWithOptions(Options{Output: &buf, JSON: &useJSON, Level: "warn"})

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestColorTextHandler_ColorsErrors(t *testing.T) {
	var buf bytes.Buffer
	useJSON := false
	log := NewWithOptions(Options{Output: &buf, JSON: &useJSON})

	log.Error("insert failed")
	assert.Contains(t, buf.String(), "\x1b[31minsert failed\x1b[0m")

	buf.Reset()
	log.Info("plain")
	assert.NotContains(t, buf.String(), "\x1b[31m")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLevel("WARNING", slog.LevelInfo))
	assert.Equal(t, slog.LevelError, parseLevel(" error ", slog.LevelInfo))
	assert.Equal(t, slog.LevelInfo, parseLevel("", slog.LevelInfo))
}
