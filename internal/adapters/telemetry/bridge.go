package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/stratum/internal/core/ports"
	"go.trai.ch/stratum/internal/ui/style"
)

// LogBridge implements sdktrace.SpanProcessor and reports job spans as
// progress lines through the logger. Spans without a job kind are ignored.
type LogBridge struct {
	logger ports.Logger
}

// NewLogBridge returns a LogBridge writing to logger.
func NewLogBridge(logger ports.Logger) *LogBridge {
	return &LogBridge{logger: logger}
}

// OnStart reports that a job started.
func (b *LogBridge) OnStart(_ context.Context, s sdktrace.ReadWriteSpan) {
	kind, element, ok := jobOf(s.Attributes())
	if !ok {
		return
	}
	b.logger.Info(fmt.Sprintf("%s %-5s %s", style.Circle, kind, element))
}

// OnEnd reports how a job finished.
func (b *LogBridge) OnEnd(s sdktrace.ReadOnlySpan) {
	attrs := s.Attributes()
	kind, element, ok := jobOf(attrs)
	if !ok {
		return
	}

	if s.Status().Code == codes.Error {
		desc := s.Status().Description
		if desc == "" {
			desc = "failed"
		}
		b.logger.Warn(fmt.Sprintf("%-5s %s: %s", kind, element, desc))
		return
	}

	elapsed := s.EndTime().Sub(s.StartTime()).Round(time.Millisecond)
	for _, kv := range attrs {
		if kv.Key == AttrCached && kv.Value.AsBool() {
			b.logger.Info(fmt.Sprintf("%s %-5s %s (cached)", style.Tilde, kind, element))
			return
		}
	}
	b.logger.Info(fmt.Sprintf("%s %-5s %s (%s)", style.Check, kind, element, elapsed))
}

// ForceFlush does nothing.
func (b *LogBridge) ForceFlush(context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *LogBridge) Shutdown(context.Context) error {
	return nil
}

func jobOf(attrs []attribute.KeyValue) (kind, element string, ok bool) {
	for _, kv := range attrs {
		switch kv.Key {
		case AttrJobKind:
			kind = kv.Value.AsString()
		case AttrElement:
			element = kv.Value.AsString()
		}
	}
	return kind, element, kind != ""
}
