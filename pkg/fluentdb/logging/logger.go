// Package logging provides the levelled logger used across fluentdb. Output is JSON, one
// entry per line, unless stdout is a terminal, in which case entries are pretty printed.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/term"
)

const traceIDKey = "__trace_id__"

// PrettyPrint is implemented by messages that render themselves on a terminal.
type PrettyPrint interface {
	PrettyPrint(writer io.Writer)
}

// Logger is the levelled logging interface.
type Logger interface {
	Debug(args ...any)
	Debugf(format string, args ...any)
	Log(args ...any)
	Logf(format string, args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Notice(args ...any)
	Noticef(format string, args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	ChangeLevel(level Level)
}

type logger struct {
	level      Level
	normalOut  io.Writer
	errorOut   io.Writer
	isTerminal bool
	lock       sync.Mutex
	exit       func(code int)
}

type logEntry struct {
	Level   Level     `json:"level"`
	Time    time.Time `json:"time"`
	Message any       `json:"message"`
	TraceID string    `json:"trace_id,omitempty"`
	Caller  string    `json:"caller,omitempty"`
}

// NewLogger returns a Logger writing entries at or above level to stdout, and ERROR and
// FATAL entries to stderr.
func NewLogger(level Level) Logger {
	return &logger{
		level:      level,
		normalOut:  os.Stdout,
		errorOut:   os.Stderr,
		isTerminal: checkIfTerminal(os.Stdout),
		exit:       os.Exit,
	}
}

func checkIfTerminal(w io.Writer) bool {
	switch v := w.(type) {
	case *os.File:
		return term.IsTerminal(int(v.Fd()))
	default:
		return false
	}
}

// logfWithSkip reports the caller skip frames above itself.
func (l *logger) logfWithSkip(skip int, level Level, format string, args ...any) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if level < l.level {
		return
	}

	out := l.normalOut
	if level >= ERROR {
		out = l.errorOut
	}

	entry := logEntry{Level: level, Time: time.Now()}
	args, entry.TraceID = extractTraceID(args)

	if _, file, line, ok := runtime.Caller(skip); ok {
		entry.Caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	switch {
	case format != "":
		entry.Message = fmt.Sprintf(format, args...)
	case len(args) == 1:
		entry.Message = args[0]
	default:
		entry.Message = args
	}

	if l.isTerminal {
		l.prettyPrint(&entry, out)
	} else {
		_ = json.NewEncoder(out).Encode(entry)
	}

	if level == FATAL {
		l.exit(1)
	}
}

func extractTraceID(args []any) ([]any, string) {
	if len(args) == 0 {
		return args, ""
	}

	m, ok := args[len(args)-1].(map[string]any)
	if !ok {
		return args, ""
	}

	id, ok := m[traceIDKey].(string)
	if !ok {
		return args, ""
	}

	return args[:len(args)-1], id
}

func (l *logger) prettyPrint(e *logEntry, out io.Writer) {
	fmt.Fprintf(out, "\u001B[%dm%s\u001B[0m [%s]", e.Level.color(), e.Level.String()[0:4], e.Time.Format(time.TimeOnly))

	if e.TraceID != "" {
		fmt.Fprintf(out, " \u001B[38;5;8m%s\u001B[0m", e.TraceID)
	}

	fmt.Fprint(out, " ")

	if fn, ok := e.Message.(PrettyPrint); ok {
		fn.PrettyPrint(out)
		return
	}

	fmt.Fprintf(out, "%v\n", e.Message)
}

func (l *logger) Debug(args ...any)                  { l.logfWithSkip(2, DEBUG, "", args...) }
func (l *logger) Debugf(format string, args ...any)  { l.logfWithSkip(2, DEBUG, format, args...) }
func (l *logger) Log(args ...any)                    { l.logfWithSkip(2, INFO, "", args...) }
func (l *logger) Logf(format string, args ...any)    { l.logfWithSkip(2, INFO, format, args...) }
func (l *logger) Info(args ...any)                   { l.logfWithSkip(2, INFO, "", args...) }
func (l *logger) Infof(format string, args ...any)   { l.logfWithSkip(2, INFO, format, args...) }
func (l *logger) Notice(args ...any)                 { l.logfWithSkip(2, NOTICE, "", args...) }
func (l *logger) Noticef(format string, args ...any) { l.logfWithSkip(2, NOTICE, format, args...) }
func (l *logger) Warn(args ...any)                   { l.logfWithSkip(2, WARN, "", args...) }
func (l *logger) Warnf(format string, args ...any)   { l.logfWithSkip(2, WARN, format, args...) }
func (l *logger) Error(args ...any)                  { l.logfWithSkip(2, ERROR, "", args...) }
func (l *logger) Errorf(format string, args ...any)  { l.logfWithSkip(2, ERROR, format, args...) }
func (l *logger) Fatal(args ...any)                  { l.logfWithSkip(2, FATAL, "", args...) }
func (l *logger) Fatalf(format string, args ...any)  { l.logfWithSkip(2, FATAL, format, args...) }

func (l *logger) ChangeLevel(level Level) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.level = level
}
