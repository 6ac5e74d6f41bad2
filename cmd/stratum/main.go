// Package main is the entry point for the stratum build orchestrator.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/stratum/cmd/stratum/commands"
	"go.trai.ch/stratum/internal/app"
	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/stratum/internal/core/ports"
	_ "go.trai.ch/stratum/internal/wiring"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitInterrupted = 130
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, provide))
}

func provide(ctx context.Context) (*app.Components, error) {
	c, _, err := graft.ExecuteFor[*app.Components](ctx)
	return c, err
}

func run(ctx context.Context, args []string, stderr io.Writer, provider ComponentProvider) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, err := provider(ctx)
	if err != nil {
		// The logger is not available yet.
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return exitFailure
	}

	cli := commands.New(components.App, components.Logger)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	return exitCode(cli.Execute(ctx), components.Logger)
}

func exitCode(err error, log ports.Logger) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, domain.ErrCancelled):
		log.Warn("interrupted")
		return exitInterrupted
	case errors.Is(err, domain.ErrBuildExecutionFailed):
		// The build summary already lists the failures.
		return exitFailure
	default:
		log.Error(err)
		return exitFailure
	}
}
