package runtime

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// Logger defines the structured logging interface used across the pipeline.
type Logger interface {
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
	Debug(msg string, fields map[string]any)
}

// NewLogger returns a TextLogger or JSONLogger depending on format.
// Unknown formats fall back to text.
func NewLogger(format string, w io.Writer, verbose bool) Logger {
	if strings.EqualFold(format, "json") {
		return NewJSONLogger(w, verbose)
	}
	return NewTextLogger(w, verbose)
}

// JSONLogger writes structured JSON log entries to an io.Writer.
type JSONLogger struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
}

// NewJSONLogger creates a JSONLogger writing to w. Debug entries are only
// emitted when verbose is true.
func NewJSONLogger(w io.Writer, verbose bool) *JSONLogger {
	return &JSONLogger{w: w, verbose: verbose}
}

func (l *JSONLogger) Info(msg string, fields map[string]any)  { l.log("info", msg, fields) }
func (l *JSONLogger) Warn(msg string, fields map[string]any)  { l.log("warn", msg, fields) }
func (l *JSONLogger) Error(msg string, fields map[string]any) { l.log("error", msg, fields) }

func (l *JSONLogger) Debug(msg string, fields map[string]any) {
	if !l.verbose {
		return
	}
	l.log("debug", msg, fields)
}

func (l *JSONLogger) log(level, msg string, fields map[string]any) {
	entry := make(map[string]any, len(fields)+3)
	entry["time"] = time.Now().UTC().Format(time.RFC3339)
	entry["level"] = level
	entry["msg"] = msg
	for k, v := range fields {
		entry[k] = v
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	data, _ := json.Marshal(entry)
	data = append(data, '\n')
	l.w.Write(data) //nolint:errcheck
}

// TextLogger writes one "[skyci] level: msg key=value" line per entry.
// Fields are sorted by key so output is stable across runs.
type TextLogger struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
}

// NewTextLogger creates a TextLogger writing to w.
func NewTextLogger(w io.Writer, verbose bool) *TextLogger {
	return &TextLogger{w: w, verbose: verbose}
}

func (l *TextLogger) Info(msg string, fields map[string]any)  { l.log("info", msg, fields) }
func (l *TextLogger) Warn(msg string, fields map[string]any)  { l.log("warn", msg, fields) }
func (l *TextLogger) Error(msg string, fields map[string]any) { l.log("error", msg, fields) }

func (l *TextLogger) Debug(msg string, fields map[string]any) {
	if !l.verbose {
		return
	}
	l.log("debug", msg, fields)
}

func (l *TextLogger) log(level, msg string, fields map[string]any) {
	var b strings.Builder
	fmt.Fprintf(&b, "[skyci] %s: %s", level, msg)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := fmt.Sprint(fields[k])
		if strings.ContainsAny(v, " \t\n\"") {
			v = fmt.Sprintf("%q", v)
		}
		fmt.Fprintf(&b, " %s=%s", k, v)
	}
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.w, b.String()) //nolint:errcheck
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Info(string, map[string]any)  {}
func (NopLogger) Warn(string, map[string]any)  {}
func (NopLogger) Error(string, map[string]any) {}
func (NopLogger) Debug(string, map[string]any) {}
