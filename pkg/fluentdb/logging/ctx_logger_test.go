package logging

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestContextLogger_WithSpan(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("fluentdb-test").Start(context.Background(), "statement")
	defer span.End()

	base, out, errOut := newTestLogger(DEBUG)
	l := NewContextLogger(ctx, base)

	l.Debugf("prepared %s", "SELECT 1")
	l.Error("failed")

	want := span.SpanContext().TraceID().String()
	assert.Equal(t, want, l.TraceID())

	entries := decodeLines(t, out)
	require.Len(t, entries, 1)
	assert.Equal(t, "prepared SELECT 1", entries[0].Message)
	assert.Equal(t, want, entries[0].TraceID)
	assert.True(t, strings.HasPrefix(entries[0].Caller, "ctx_logger_test.go:"), entries[0].Caller)

	failures := decodeLines(t, errOut)
	require.Len(t, failures, 1)
	assert.Equal(t, "failed", failures[0].Message)
	assert.Equal(t, want, failures[0].TraceID)
}

func TestContextLogger_WithoutSpan(t *testing.T) {
	base, out, _ := newTestLogger(DEBUG)
	l := NewContextLogger(context.Background(), base)

	l.Info("untagged")

	entries := decodeLines(t, out)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].TraceID)
	assert.Empty(t, l.TraceID())
}

type recordingLogger struct {
	Logger
	calls []string
	args  [][]any
	level Level
}

func (r *recordingLogger) record(name string, args []any) {
	r.calls = append(r.calls, name)
	r.args = append(r.args, args)
}

func (r *recordingLogger) Info(args ...any)              { r.record("Info", args) }
func (r *recordingLogger) Warnf(_ string, args ...any)   { r.record("Warnf", args) }
func (r *recordingLogger) Error(args ...any)             { r.record("Error", args) }
func (r *recordingLogger) Noticef(_ string, args ...any) { r.record("Noticef", args) }
func (r *recordingLogger) ChangeLevel(level Level)       { r.level = level }

func TestContextLogger_FallbackLogger(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("fluentdb-test").Start(context.Background(), "statement")
	defer span.End()

	base := &recordingLogger{}
	l := NewContextLogger(ctx, base)

	l.Log("a")
	l.Warnf("%d", 1)
	l.Error("b")
	l.Noticef("%s", "c")
	l.ChangeLevel(WARN)

	assert.Equal(t, []string{"Info", "Warnf", "Error", "Noticef"}, base.calls)
	assert.Equal(t, WARN, base.level)

	tag := map[string]any{traceIDKey: span.SpanContext().TraceID().String()}
	assert.Equal(t, []any{"a", tag}, base.args[0])
	assert.Equal(t, []any{1, tag}, base.args[1])
}
