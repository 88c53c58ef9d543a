// Package logger is the process-wide structured logger. It wraps slog
// with a colored text handler for terminals, a JSON handler for log
// shippers, and a request-scoped context carrying the fields every log
// line in a request should share.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Config selects level, format and destination for the process logger.
// Empty fields leave the current setting unchanged.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or a file path
}

var (
	mu           sync.Mutex
	levelVar     = new(slog.LevelVar)
	output       io.Writer = os.Stdout
	outputFormat           = "text"
	useColor     bool

	current atomic.Pointer[slog.Logger]
)

func init() {
	levelVar.Set(slog.LevelInfo)
	useColor = isTerminal(os.Stdout.Fd())
	rebuild()
}

// rebuild swaps in a logger for the current output and format. Level
// changes do not come through here: every handler shares levelVar, so
// SetLevel takes effect in place. Callers hold mu.
func rebuild() {
	opts := &slog.HandlerOptions{Level: levelVar}

	var h slog.Handler
	if outputFormat == "json" {
		h = slog.NewJSONHandler(output, opts)
	} else {
		h = NewColorTextHandler(output, opts, useColor)
	}
	current.Store(slog.New(h))
}

// Init applies cfg. Output may be "stdout", "stderr", or a file path;
// files always get plain text without color.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	if cfg.Output != "" {
		switch strings.ToLower(cfg.Output) {
		case "stdout":
			output = os.Stdout
			useColor = isTerminal(os.Stdout.Fd())
		case "stderr":
			output = os.Stderr
			useColor = isTerminal(os.Stderr.Fd())
		default:
			f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
			}
			output = f
			useColor = false
		}
	}

	if l, ok := parseLevel(cfg.Level); ok {
		levelVar.Set(l)
	}
	if f, ok := parseFormat(cfg.Format); ok {
		outputFormat = f
	}

	rebuild()
	return nil
}

// InitWithWriter points the logger at an arbitrary writer. Tests use it
// to capture output.
func InitWithWriter(w io.Writer, level, format string, enableColor bool) {
	mu.Lock()
	defer mu.Unlock()

	output = w
	useColor = enableColor
	if l, ok := parseLevel(level); ok {
		levelVar.Set(l)
	}
	if f, ok := parseFormat(format); ok {
		outputFormat = f
	}

	rebuild()
}

// SetLevel changes the minimum level. Unknown names are ignored, so a
// bad value in a reloaded config cannot silence the process.
func SetLevel(level string) {
	if l, ok := parseLevel(level); ok {
		levelVar.Set(l)
	}
}

// SetFormat switches between "text" and "json". Unknown formats are
// ignored.
func SetFormat(format string) {
	f, ok := parseFormat(format)
	if !ok {
		return
	}

	mu.Lock()
	defer mu.Unlock()
	outputFormat = f
	rebuild()
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	}
	return 0, false
}

func parseFormat(s string) (string, bool) {
	f := strings.ToLower(s)
	if f == "text" || f == "json" {
		return f, true
	}
	return "", false
}

// Debug logs at debug level. Args are alternating key/value pairs or
// slog.Attr values, as with slog.
func Debug(msg string, args ...any) {
	current.Load().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	current.Load().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	current.Load().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	current.Load().Error(msg, args...)
}

// DebugCtx logs at debug level with the LogContext fields from ctx
// prepended.
func DebugCtx(ctx context.Context, msg string, args ...any) {
	if !enabledAt(slog.LevelDebug) {
		return
	}
	current.Load().DebugContext(ctx, msg, appendContextFields(ctx, args)...)
}

// InfoCtx logs at info level with context fields.
func InfoCtx(ctx context.Context, msg string, args ...any) {
	if !enabledAt(slog.LevelInfo) {
		return
	}
	current.Load().InfoContext(ctx, msg, appendContextFields(ctx, args)...)
}

// WarnCtx logs at warn level with context fields.
func WarnCtx(ctx context.Context, msg string, args ...any) {
	if !enabledAt(slog.LevelWarn) {
		return
	}
	current.Load().WarnContext(ctx, msg, appendContextFields(ctx, args)...)
}

// ErrorCtx logs at error level with context fields.
func ErrorCtx(ctx context.Context, msg string, args ...any) {
	current.Load().ErrorContext(ctx, msg, appendContextFields(ctx, args)...)
}

// enabledAt saves the context-field work when the level is off.
func enabledAt(l slog.Level) bool {
	return l >= levelVar.Level()
}

// appendContextFields prepends LogContext fields so they lead the line.
func appendContextFields(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}

	ctxArgs := make([]any, 0, 16+len(args))
	if lc.TraceID != "" {
		ctxArgs = append(ctxArgs, KeyTraceID, lc.TraceID)
	}
	if lc.SpanID != "" {
		ctxArgs = append(ctxArgs, KeySpanID, lc.SpanID)
	}
	if lc.RequestID != "" {
		ctxArgs = append(ctxArgs, KeyRequestID, lc.RequestID)
	}
	if lc.Operation != "" {
		ctxArgs = append(ctxArgs, KeyOperation, lc.Operation)
	}
	if lc.Username != "" {
		ctxArgs = append(ctxArgs, KeyUsername, lc.Username)
	}
	if lc.Checkpost != "" {
		ctxArgs = append(ctxArgs, KeyCheckpost, lc.Checkpost)
	}
	if lc.Segment != "" {
		ctxArgs = append(ctxArgs, KeySegment, lc.Segment)
	}
	if lc.Plate != "" {
		ctxArgs = append(ctxArgs, KeyPlate, lc.Plate)
	}
	if lc.ClientIP != "" {
		ctxArgs = append(ctxArgs, KeyClientIP, lc.ClientIP)
	}

	return append(ctxArgs, args...)
}
