package telemetry_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.trai.ch/stratum/internal/adapters/telemetry"
	"go.trai.ch/stratum/internal/core/ports"
	"go.trai.ch/stratum/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestLogBridge(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	tracer := telemetry.NewOTelTracer(telemetry.NewProvider(telemetry.NewLogBridge(log)), "test")
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	job := func(kind, element string) []ports.SpanOption {
		return []ports.SpanOption{
			ports.WithAttribute(telemetry.AttrJobKind, kind),
			ports.WithAttribute(telemetry.AttrElement, element),
		}
	}

	gomock.InOrder(
		log.EXPECT().Info("○ fetch base"),
		log.EXPECT().Info(gomock.Cond(func(s string) bool { return strings.HasPrefix(s, "✓ fetch base (") })),
		log.EXPECT().Info("○ build hello"),
		log.EXPECT().Info("~ build hello (cached)"),
		log.EXPECT().Info("○ push  hello"),
		log.EXPECT().Warn("push  hello: remote unavailable"),
	)

	ctx := context.Background()
	_, span := tracer.Start(ctx, "fetch:base", job("fetch", "base")...)
	span.End()

	_, span = tracer.Start(ctx, "build:hello", job("build", "hello")...)
	span.SetAttribute(telemetry.AttrCached, true)
	span.End()

	_, span = tracer.Start(ctx, "push:hello", job("push", "hello")...)
	span.RecordError(errors.New("remote unavailable"))
	span.End()

	// Spans that are not jobs are not reported.
	_, span = tracer.Start(ctx, "run")
	span.End()
}
