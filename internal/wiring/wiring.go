// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/stratum/internal/adapters/cas"
	_ "go.trai.ch/stratum/internal/adapters/config"
	_ "go.trai.ch/stratum/internal/adapters/logger"
	_ "go.trai.ch/stratum/internal/adapters/remote"
	_ "go.trai.ch/stratum/internal/adapters/sandbox"
	_ "go.trai.ch/stratum/internal/adapters/shell"
	// Register app and engine nodes.
	_ "go.trai.ch/stratum/internal/app"
	_ "go.trai.ch/stratum/internal/engine/kinds"
)
