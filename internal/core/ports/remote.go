package ports

import (
	"context"

	"go.trai.ch/stratum/internal/core/domain"
)

// Remote is a client of a remote CAS and artifact service.
//
//go:generate mockgen -source=remote.go -destination=mocks/mock_remote.go -package=mocks
type Remote interface {
	// FindMissing returns the subset of digests the remote does not have.
	FindMissing(ctx context.Context, digests []domain.Digest) ([]domain.Digest, error)
	// Upload stores blobs on the remote.
	Upload(ctx context.Context, blobs map[domain.Digest][]byte) error
	// Download fetches blobs. Digests the remote does not have are absent from the result.
	Download(ctx context.Context, digests []domain.Digest) (map[domain.Digest][]byte, error)
	// GetTree returns every directory node reachable from root, encoded.
	GetTree(ctx context.Context, root domain.Digest) ([][]byte, error)
	// GetArtifact returns the encoded artifact stored under ref, or domain.ErrNotFound.
	GetArtifact(ctx context.Context, ref string) ([]byte, error)
	// UpdateArtifact stores an encoded artifact under ref.
	UpdateArtifact(ctx context.Context, ref string, artifact []byte) error
	// Close releases the connection.
	Close() error
}
