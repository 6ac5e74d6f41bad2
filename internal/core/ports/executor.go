package ports

import (
	"context"
	"io"

	"go.trai.ch/stratum/internal/core/domain"
)

// Executor defines the interface for running commands inside a sandbox.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs inv and streams its combined output to out.
	//
	// A non-zero exit status is reported as domain.ErrCommandFailed with the
	// exit code attached as "exit_code" metadata. When ctx is cancelled the
	// process group is terminated and domain.ErrCancelled is returned.
	Execute(ctx context.Context, inv domain.Invocation, out io.Writer) error
}
