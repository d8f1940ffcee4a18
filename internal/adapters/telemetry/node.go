package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.opentelemetry.io/otel"
	"go.trai.ch/goalkeeper/internal/adapters/logger"
	"go.trai.ch/goalkeeper/internal/core/ports"
)

// TracerNodeID is the unique identifier for the Telemetry adapter Graft node.
const TracerNodeID graft.ID = "adapter.telemetry"

// InstrumentationName names the tracer used by goalkeeper.
const InstrumentationName = "goalkeeper"

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Tracer, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			tp := NewProvider(NewBridge(log))
			otel.SetTracerProvider(tp)
			return NewOTelTracer(tp, InstrumentationName), nil
		},
	})
}
