// Package errlog records per-certificate failures in a plain-text file.
//
// Each entry is one line:
//
//	2006-01-02T15:04:05.000Z [ERROR] message | run=<id>, key=value
//
// The file and its directory are created on the first entry, so a run
// without failures leaves no file behind.
package errlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// maxSizeMB rotates the log only for pathological runs.
const maxSizeMB = 50

// timeFormat is the entry timestamp layout, always UTC.
const timeFormat = "2006-01-02T15:04:05.000Z"

// Log is a process-wide, append-only error log. Safe for concurrent use.
type Log struct {
	path    string
	w       *lumberjack.Logger
	logger  *slog.Logger
	entries atomic.Int64
}

// Open prepares a log at path. A log left by a previous run is removed so
// the file only ever holds this run's entries. runID is attached to every
// entry when non-empty.
func Open(path, runID string) (*Log, error) {
	if path == "" {
		return nil, errors.New("errlog: empty path")
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("errlog: clearing previous log: %w", err)
	}

	l := &Log{
		path: path,
		w: &lumberjack.Logger{
			Filename: path,
			MaxSize:  maxSizeMB,
		},
	}

	h := NewHandler(l.w, slog.LevelInfo)
	logger := slog.New(h)
	if runID != "" {
		logger = logger.With("run", runID)
	}
	l.logger = logger
	return l, nil
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.path
}

// Error appends one entry.
func (l *Log) Error(msg string, args ...any) {
	l.entries.Add(1)
	l.logger.Error(msg, args...)
}

// Entries returns the number of entries written by this Log.
func (l *Log) Entries() int {
	return int(l.entries.Load())
}

// Close flushes and closes the file.
func (l *Log) Close() error {
	return l.w.Close()
}

// Finish closes the log and deletes the file when no entry was written.
// kept reports whether the file remains for inspection.
func (l *Log) Finish() (kept bool, err error) {
	if err := l.Close(); err != nil {
		return l.Entries() > 0, fmt.Errorf("errlog: closing: %w", err)
	}
	if l.Entries() > 0 {
		return true, nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return true, fmt.Errorf("errlog: removing empty log: %w", err)
	}
	return false, nil
}

// Handler is a slog.Handler that formats records as single lines.
type Handler struct {
	w     io.Writer
	mu    *sync.Mutex // serializes writes so concurrent entries never interleave
	level slog.Level
	attrs []slog.Attr
	group string
}

// NewHandler creates a Handler that writes to w, filtering records below level.
func NewHandler(w io.Writer, level slog.Level) *Handler {
	return &Handler{w: w, level: level, mu: &sync.Mutex{}}
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle formats and writes a log record.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var buf strings.Builder

	buf.WriteString(r.Time.UTC().Format(timeFormat))
	buf.WriteString(" [")
	buf.WriteString(r.Level.String())
	buf.WriteString("] ")
	buf.WriteString(oneLine(r.Message))

	all := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	all = append(all, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		all = append(all, h.qualify(a))
		return true
	})

	if len(all) > 0 {
		buf.WriteString(" | ")
		for i, a := range all {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(a.Key)
			buf.WriteString("=")
			buf.WriteString(oneLine(a.Value.String()))
		}
	}
	buf.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, buf.String())
	return err
}

// WithAttrs returns a new Handler with the given attributes pre-applied.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	for _, a := range attrs {
		newAttrs = append(newAttrs, h.qualify(a))
	}
	return &Handler{w: h.w, mu: h.mu, level: h.level, attrs: newAttrs, group: h.group}
}

// WithGroup returns a new Handler whose attribute keys are prefixed with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newGroup := name
	if h.group != "" {
		newGroup = h.group + "." + name
	}
	return &Handler{w: h.w, mu: h.mu, level: h.level, attrs: h.attrs, group: newGroup}
}

// qualify prefixes the attribute key with the handler's group.
func (h *Handler) qualify(a slog.Attr) slog.Attr {
	if h.group != "" {
		a.Key = h.group + "." + a.Key
	}
	return a
}

// oneLine keeps multi-line error text on a single entry line.
func oneLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
