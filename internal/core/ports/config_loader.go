// Package ports defines the core interfaces for the application.
package ports

import "go.trai.ch/stratum/internal/core/domain"

// ConfigLoader defines the interface for loading a project.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds the project file at or above cwd and returns the validated project.
	Load(cwd string) (*domain.Project, error)
}
