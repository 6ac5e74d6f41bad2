package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/stratum/internal/ui/output"
	"go.trai.ch/stratum/internal/ui/style"
)

// PrettyHandler is a slog.Handler writing one coloured line per record.
// Warnings and errors carry an icon; attributes follow as key=value.
type PrettyHandler struct {
	out    *termenv.Output
	level  slog.Leveler
	attrs  []string
	prefix string
}

// NewPrettyHandler creates a PrettyHandler writing to w. A nil w means stderr.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	return NewPrettyHandlerWithProfile(w, opts, output.ColorProfile)
}

// NewPrettyHandlerWithProfile is NewPrettyHandler with the colour profile
// chosen by profileFn.
func NewPrettyHandlerWithProfile(w io.Writer, opts *slog.HandlerOptions, profileFn func() termenv.Profile) *PrettyHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &PrettyHandler{out: output.NewWithProfile(w, profileFn), level: level}
}

// Enabled reports whether records at level are written.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes the record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var msg string
	var color lipgloss.Color
	switch {
	case r.Level >= slog.LevelError:
		msg, color = style.Cross+" "+r.Message, style.Red
	case r.Level >= slog.LevelWarn:
		msg, color = style.Warning+" "+r.Message, style.Yellow
	default:
		msg, color = r.Message, style.Slate
	}

	parts := append([]string(nil), h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		parts = appendAttr(parts, h.prefix, a)
		return true
	})
	if len(parts) > 0 {
		msg += " " + strings.Join(parts, " ")
	}

	styled := h.out.String(msg).Foreground(h.out.Color(string(color)))
	_, err := h.out.WriteString(styled.String() + "\n")
	return err
}

// WithAttrs returns a handler that appends attrs to every record.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]string(nil), h.attrs...)
	for _, a := range attrs {
		next.attrs = appendAttr(next.attrs, h.prefix, a)
	}
	return &next
}

// WithGroup returns a handler that qualifies later keys with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// appendAttr flattens a into key=value pairs. Group members get dotted keys.
func appendAttr(parts []string, prefix string, a slog.Attr) []string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return parts
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, member := range a.Value.Group() {
			parts = appendAttr(parts, prefix, member)
		}
		return parts
	}
	return append(parts, prefix+a.Key+"="+a.Value.String())
}
