// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/goalkeeper/internal/adapters/cancel"
	_ "go.trai.ch/goalkeeper/internal/adapters/cas"
	_ "go.trai.ch/goalkeeper/internal/adapters/config"
	_ "go.trai.ch/goalkeeper/internal/adapters/goalstore"
	_ "go.trai.ch/goalkeeper/internal/adapters/kube"
	_ "go.trai.ch/goalkeeper/internal/adapters/logger"
	_ "go.trai.ch/goalkeeper/internal/adapters/progresslog"
	_ "go.trai.ch/goalkeeper/internal/adapters/redisclient"
	_ "go.trai.ch/goalkeeper/internal/adapters/shell"
	_ "go.trai.ch/goalkeeper/internal/adapters/signing"
	_ "go.trai.ch/goalkeeper/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/goalkeeper/internal/app"
	_ "go.trai.ch/goalkeeper/internal/engine/dispatcher"
	_ "go.trai.ch/goalkeeper/internal/engine/promoter"
)
