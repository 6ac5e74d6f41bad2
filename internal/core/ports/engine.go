package ports

import (
	"context"

	"go.trai.ch/stratum/internal/core/domain"
)

// SourceFetcher imports element sources into the CAS.
//
//go:generate mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks
type SourceFetcher interface {
	// Fetch returns the digest of the element's sources tree.
	Fetch(ctx context.Context, e *domain.Element) (domain.Digest, error)
}

// Builder turns a build request into an artifact.
type Builder interface {
	// Build stages, runs and captures one element. A failed build returns
	// both the failed artifact and an error wrapping domain.ErrBuildFailed.
	// A cancelled build returns no artifact and domain.ErrCancelled.
	Build(ctx context.Context, req domain.BuildRequest) (*domain.Artifact, error)
}
