// Package logger is the writer path of the day-file log store. An
// Engine is constructed once per process and passed to whatever needs
// to log; every Logger minted from it shares one execution id, so all
// records from a single run can be correlated later. There is no
// hidden global instance.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/coffersTech/daylog/internal/logctx"
	"github.com/coffersTech/daylog/internal/model"
	"github.com/coffersTech/daylog/internal/store"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

// Options configures an Engine.
type Options struct {
	Directory string      // day-file directory; required when File is true
	Prefix    string      // day-file name prefix, e.g. "app"
	MinLevel  model.Level // least severe level still emitted
	Console   bool        // human-readable transport
	File      bool        // NDJSON day-file transport

	// ConsoleWriter overrides the console destination. Defaults to
	// os.Stdout; tests point it at a buffer.
	ConsoleWriter io.Writer
}

// Engine owns the transports and the process-wide execution id.
type Engine struct {
	opts        Options
	executionID string
	appender    *store.Appender

	consoleMu sync.Mutex
	console   io.Writer
}

// New constructs an Engine and fixes the execution id for this process
// lifetime.
func New(opts Options) *Engine {
	if opts.MinLevel == "" {
		opts.MinLevel = model.LevelInfo
	}
	e := &Engine{
		opts:        opts,
		executionID: newExecutionID(),
		console:     opts.ConsoleWriter,
	}
	if e.console == nil {
		e.console = os.Stdout
	}
	if opts.File {
		e.appender = store.NewAppender(opts.Directory, opts.Prefix)
	}
	return e
}

// newExecutionID builds an id like "2025-12-18-10:30:45-1234": start
// time plus a random suffix to disambiguate runs started within the
// same second.
func newExecutionID() string {
	return fmt.Sprintf("%s-%04d", time.Now().UTC().Format("2006-01-02-15:04:05"), rand.Intn(10000))
}

// ExecutionID returns the id shared by every record of this run.
func (e *Engine) ExecutionID() string {
	return e.executionID
}

// Logger returns a logger tagged with a package name. Loggers are
// cheap; construct one per subsystem.
func (e *Engine) Logger(pkg string) *Logger {
	return &Logger{engine: e, pkg: pkg}
}

// Emit appends an already-built record to the day file, bypassing the
// level gate and the console. The HTTP surface uses it to persist
// batched client records.
func (e *Engine) Emit(rec model.Record) error {
	if e.appender == nil {
		return nil
	}
	return e.appender.Append(rec)
}

// Close flushes and closes the file transport.
func (e *Engine) Close() error {
	if e.appender == nil {
		return nil
	}
	return e.appender.Close()
}

// Logger writes records tagged with one package name.
type Logger struct {
	engine *Engine
	pkg    string
}

// Error logs at error level. data may be nil.
func (l *Logger) Error(ctx context.Context, msg string, data map[string]any) {
	l.log(ctx, model.LevelError, msg, data)
}

// Warn logs at warn level. data may be nil.
func (l *Logger) Warn(ctx context.Context, msg string, data map[string]any) {
	l.log(ctx, model.LevelWarn, msg, data)
}

// Info logs at info level. data may be nil.
func (l *Logger) Info(ctx context.Context, msg string, data map[string]any) {
	l.log(ctx, model.LevelInfo, msg, data)
}

// Debug logs at debug level. data may be nil.
func (l *Logger) Debug(ctx context.Context, msg string, data map[string]any) {
	l.log(ctx, model.LevelDebug, msg, data)
}

func (l *Logger) log(ctx context.Context, level model.Level, msg string, data map[string]any) {
	if level.Rank() > l.engine.opts.MinLevel.Rank() {
		return
	}

	rec := model.Record{
		Timestamp:   time.Now().UTC().Format(timestampLayout),
		Level:       level,
		Package:     l.pkg,
		Message:     msg,
		ExecutionID: l.engine.executionID,
		Source:      model.SourceServer,
	}

	// Source location is best effort; a failed lookup leaves the
	// fields empty rather than suppressing the record.
	if _, file, line, ok := runtime.Caller(2); ok {
		rec.Filename = filepath.Base(file)
		rec.Line = line
	}

	if ctx != nil {
		if s, ok := logctx.Session(ctx); ok {
			rec.SessionID = s
		}
		if r, ok := logctx.Reference(ctx); ok {
			rec.Reference = r
		}
		if d, ok := logctx.Depth(ctx); ok {
			depth := d
			rec.Depth = &depth
		}
	}

	if len(data) > 0 {
		if raw, err := json.Marshal(data); err == nil {
			rec.Data = raw
		}
	}

	if l.engine.opts.Console {
		l.engine.writeConsole(&rec)
	}
	if l.engine.appender != nil {
		// Transport failures must never bubble into application code.
		_ = l.engine.appender.Append(rec)
	}
}

// writeConsole renders a record for humans, indenting by nesting depth
// so timelines read as call trees.
func (e *Engine) writeConsole(rec *model.Record) {
	indent := ""
	if rec.Depth != nil && *rec.Depth > 0 {
		indent = strings.Repeat("  ", *rec.Depth)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s [%s] %s%s", rec.Timestamp, strings.ToUpper(string(rec.Level)), rec.Package, indent, rec.Message)
	if rec.SessionID != "" {
		fmt.Fprintf(&b, " session=%s", rec.SessionID)
	}
	if rec.Reference != "" {
		fmt.Fprintf(&b, " ref=%s", rec.Reference)
	}
	if len(rec.Data) > 0 {
		fmt.Fprintf(&b, " %s", rec.Data)
	}
	b.WriteByte('\n')

	e.consoleMu.Lock()
	io.WriteString(e.console, b.String())
	e.consoleMu.Unlock()
}
