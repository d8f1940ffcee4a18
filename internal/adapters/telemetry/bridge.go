package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/goalkeeper/internal/core/ports"
	"go.trai.ch/zerr"
)

// Bridge implements sdktrace.SpanProcessor and reports failed spans to the logger.
type Bridge struct {
	logger ports.Logger
}

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// NewBridge returns a new Bridge.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// OnStart does nothing.
func (b *Bridge) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd logs spans that ended with an error status.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil || s.Status().Code != codes.Error {
		return
	}

	desc := s.Status().Description
	if desc == "" {
		desc = "span failed"
	}
	err := zerr.With(zerr.New(desc), "span", s.Name())
	err = zerr.With(err, "duration", s.EndTime().Sub(s.StartTime()).Round(time.Millisecond).String())
	for _, kv := range s.Attributes() {
		err = zerr.With(err, string(kv.Key), kv.Value.Emit())
	}
	b.logger.Error(err)
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}

// NewProvider creates a TracerProvider with the bridge as a SpanProcessor.
func NewProvider(bridge *Bridge) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bridge))
}
