package app

import (
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
)

// Components holds the resolved dependencies handed to the CLI.
type Components struct {
	App    *App
	Logger ports.Logger
	Config *domain.Config
}
