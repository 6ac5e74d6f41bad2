package ports

import (
	"context"

	"go.trai.ch/stratum/internal/core/domain"
)

// ArtifactCache maps element cache keys to artifact records.
//
//go:generate mockgen -source=artifacts.go -destination=mocks/mock_artifacts.go -package=mocks
type ArtifactCache interface {
	// Lookup returns the artifact stored for element under key, which may be
	// a strong or a weak key. It returns domain.ErrNotFound on a miss.
	Lookup(ctx context.Context, element, key string) (*domain.Artifact, error)
	// Store records art under its strong and weak keys.
	Store(ctx context.Context, element string, art *domain.Artifact) error
	// Pull fetches the artifact and its content from the remote. It reports
	// false when the remote does not have it.
	Pull(ctx context.Context, element, key string) (bool, error)
	// Push uploads the artifact and its content to the remote. It reports
	// false when the remote already had it.
	Push(ctx context.Context, element, key string) (bool, error)
}
