package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

type skipLogger interface {
	logfWithSkip(skip int, level Level, format string, args ...any)
}

// ContextLogger tags every entry of a base Logger with the trace id found in a context.
// Statement logs written while a span is active can then be matched to that span.
type ContextLogger struct {
	base    Logger
	traceID string
}

// NewContextLogger reads the span of ctx once. Without a valid span the entries are
// written untagged.
func NewContextLogger(ctx context.Context, base Logger) *ContextLogger {
	l := &ContextLogger{base: base}

	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		l.traceID = sc.TraceID().String()
	}

	return l
}

// TraceID is empty when the context carried no span.
func (l *ContextLogger) TraceID() string {
	return l.traceID
}

func (l *ContextLogger) tag(args []any) []any {
	if l.traceID == "" {
		return args
	}

	return append(args, map[string]any{traceIDKey: l.traceID})
}

func (l *ContextLogger) write(level Level, format string, args ...any) {
	args = l.tag(args)

	// 3 frames: logfWithSkip, write, the exported method
	if s, ok := l.base.(skipLogger); ok {
		s.logfWithSkip(3, level, format, args...)
		return
	}

	plain, formatted := l.methods(level)
	if format == "" {
		plain(args...)
		return
	}

	formatted(format, args...)
}

func (l *ContextLogger) methods(level Level) (func(...any), func(string, ...any)) {
	switch level {
	case DEBUG:
		return l.base.Debug, l.base.Debugf
	case NOTICE:
		return l.base.Notice, l.base.Noticef
	case WARN:
		return l.base.Warn, l.base.Warnf
	case ERROR:
		return l.base.Error, l.base.Errorf
	case FATAL:
		return l.base.Fatal, l.base.Fatalf
	default:
		return l.base.Info, l.base.Infof
	}
}

func (l *ContextLogger) Debug(args ...any)             { l.write(DEBUG, "", args...) }
func (l *ContextLogger) Debugf(f string, args ...any)  { l.write(DEBUG, f, args...) }
func (l *ContextLogger) Log(args ...any)               { l.write(INFO, "", args...) }
func (l *ContextLogger) Logf(f string, args ...any)    { l.write(INFO, f, args...) }
func (l *ContextLogger) Info(args ...any)              { l.write(INFO, "", args...) }
func (l *ContextLogger) Infof(f string, args ...any)   { l.write(INFO, f, args...) }
func (l *ContextLogger) Notice(args ...any)            { l.write(NOTICE, "", args...) }
func (l *ContextLogger) Noticef(f string, args ...any) { l.write(NOTICE, f, args...) }
func (l *ContextLogger) Warn(args ...any)              { l.write(WARN, "", args...) }
func (l *ContextLogger) Warnf(f string, args ...any)   { l.write(WARN, f, args...) }
func (l *ContextLogger) Error(args ...any)             { l.write(ERROR, "", args...) }
func (l *ContextLogger) Errorf(f string, args ...any)  { l.write(ERROR, f, args...) }
func (l *ContextLogger) Fatal(args ...any)             { l.write(FATAL, "", args...) }
func (l *ContextLogger) Fatalf(f string, args ...any)  { l.write(FATAL, f, args...) }
func (l *ContextLogger) ChangeLevel(level Level)       { l.base.ChangeLevel(level) }
