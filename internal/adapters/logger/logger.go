// Package logger implements ports.Logger on top of log/slog.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"go.trai.ch/stratum/internal/core/ports"
	"go.trai.ch/stratum/internal/ui/output"
	"go.trai.ch/zerr"
)

// Logger implements ports.Logger using log/slog.
type Logger struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	jsonMode bool
	output   io.Writer
	profile  func() termenv.Profile
}

// New creates a Logger printing human-readable lines to stderr.
func New() ports.Logger {
	l := &Logger{output: os.Stderr, profile: output.ColorProfile}
	l.rebuild()
	return l
}

// SetOutput redirects the logger. A nil w means stderr.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.rebuild()
}

// SetJSON switches between JSON records and pretty lines.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jsonMode = enable
	l.rebuild()
}

// SetProfile changes how pretty lines are coloured.
func (l *Logger) SetProfile(profileFn func() termenv.Profile) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.profile = profileFn
	l.rebuild()
}

func (l *Logger) rebuild() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if l.jsonMode {
		l.logger = slog.New(slog.NewJSONHandler(l.output, opts))
		return
	}
	l.logger = slog.New(NewPrettyHandlerWithProfile(l.output, opts, l.profile))
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs err with its cause chain. In JSON mode the chain and metadata
// are emitted as attributes instead.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.jsonMode {
		args := []any{"error", err.Error()}
		if z, ok := err.(*zerr.Error); ok {
			md := z.Metadata()
			for _, k := range slices.Sorted(maps.Keys(md)) {
				args = append(args, k, md[k])
			}
		}
		l.logger.Error("operation failed", args...)
		return
	}
	l.logger.Error(formatErrorEntries(collectErrorEntries(err)))
}

// ErrorEntry is one level of an error chain.
type ErrorEntry struct {
	Message  string
	// Metadata is nil for errors that cannot carry any.
	Metadata map[string]any
}

// collectErrorEntries walks the chain outermost first. A zerr level without
// a message only carries metadata, which moves onto the next level.
func collectErrorEntries(err error) []ErrorEntry {
	var entries []ErrorEntry
	var pending map[string]any
	for err != nil {
		z, ok := err.(*zerr.Error)
		if !ok {
			entries = append(entries, ErrorEntry{Message: err.Error(), Metadata: pending})
			break
		}
		md := z.Metadata()
		maps.Copy(md, pending)
		if z.Message() == "" {
			pending = md
		} else {
			entries = append(entries, ErrorEntry{Message: z.Message(), Metadata: md})
			pending = nil
		}
		err = errors.Unwrap(err)
	}
	if pending != nil && len(entries) > 0 {
		last := &entries[len(entries)-1]
		if last.Metadata == nil {
			last.Metadata = map[string]any{}
		}
		maps.Copy(last.Metadata, pending)
	}
	return entries
}

// formatErrorEntries renders entries as
//
//	Error: outer
//	       key: value
//
//	  Caused by:
//	    → inner
func formatErrorEntries(entries []ErrorEntry) string {
	var lines []string
	for i, e := range entries {
		msg := strings.Split(e.Message, "\n")
		indent := "      "
		if i == 0 {
			lines = append(lines, "Error: "+msg[0])
			indent = "       "
		} else {
			if i == 1 {
				lines = append(lines, "", "  Caused by:")
			}
			lines = append(lines, "    → "+msg[0])
		}
		for _, line := range msg[1:] {
			lines = append(lines, indent+line)
		}
		for _, k := range slices.Sorted(maps.Keys(e.Metadata)) {
			lines = append(lines, fmt.Sprintf("%s%s: %v", indent, k, e.Metadata[k]))
		}
	}
	return strings.Join(lines, "\n")
}
