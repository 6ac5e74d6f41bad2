package ports

import (
	"context"

	"go.trai.ch/stratum/internal/core/domain"
)

// ContentStore is a content addressable blob store with tree support.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ContentStore interface {
	// Put stores data and returns its digest. Storing existing content is a no-op.
	Put(ctx context.Context, data []byte) (domain.Digest, error)
	// Get returns the blob for d, or domain.ErrNotFound.
	Get(ctx context.Context, d domain.Digest) ([]byte, error)
	// Has reports whether the blob for d is present.
	Has(ctx context.Context, d domain.Digest) (bool, error)
	// PutTree stores every file and directory of root and returns the root digest.
	PutTree(ctx context.Context, root *domain.Node) (domain.Digest, error)
	// GetTree reconstructs the tree stored under d. File nodes reference
	// their content by digest only.
	GetTree(ctx context.Context, d domain.Digest) (*domain.Node, error)
}

// Materializer moves trees between the CAS and the host filesystem.
type Materializer interface {
	// Checkout writes tree into dir, which must not exist yet or be empty.
	Checkout(ctx context.Context, tree *domain.Node, dir string) error
	// Import captures dir into the CAS and returns its tree.
	Import(ctx context.Context, dir string) (*domain.Node, error)
}
