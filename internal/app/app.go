// Package app implements the application layer for stratum.
package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/docker/go-units"
	"go.opentelemetry.io/otel"
	"go.trai.ch/stratum/internal/adapters/cas"
	"go.trai.ch/stratum/internal/adapters/remote"
	"go.trai.ch/stratum/internal/adapters/telemetry"
	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/stratum/internal/core/ports"
	"go.trai.ch/stratum/internal/engine/kinds"
	"go.trai.ch/stratum/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// StoreOpener opens the local store of a cache directory.
type StoreOpener interface {
	Open(cacheDir string) (*cas.Store, *cas.Materializer, error)
}

// Dialer connects to a remote cache.
type Dialer interface {
	Dial(url string) (ports.Remote, error)
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	opener       StoreOpener
	dialer       Dialer
	stager       ports.Stager
	executor     ports.Executor
	registry     *kinds.Registry
	out          io.Writer
	workDir      string
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	opener StoreOpener,
	dialer Dialer,
	stager ports.Stager,
	executor ports.Executor,
	registry *kinds.Registry,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		opener:       opener,
		dialer:       dialer,
		stager:       stager,
		executor:     executor,
		registry:     registry,
		out:          os.Stdout,
		workDir:      ".",
	}
}

// WithOutput sets where reports and summaries are printed.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// WithWorkDir sets the directory the project file is searched from.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// BuildOptions configuration for the Build method.
type BuildOptions struct {
	// NoRemote ignores the configured remote for this run.
	NoRemote bool
	// Push uploads built artifacts even when remote.push is off.
	Push bool
}

// Build builds the target elements and everything they depend on. No
// targets means the whole project.
func (a *App) Build(ctx context.Context, targets []string, opts BuildOptions) error {
	eng, err := a.open(opts.NoRemote)
	if err != nil {
		return err
	}
	defer eng.Close()

	provider := telemetry.NewProvider(telemetry.NewLogBridge(a.logger))
	otel.SetTracerProvider(provider)
	tracer := telemetry.NewOTelTracer(provider, "stratum")
	defer func() {
		_ = tracer.Shutdown(context.WithoutCancel(ctx))
	}()

	ctx, span := tracer.Start(ctx, "build")
	defer span.End()

	p := eng.project
	sched := scheduler.NewScheduler(eng.fetcher, eng.builder, eng.artifacts, tracer, a.logger, scheduler.Options{
		Project:  p.Name,
		Settings: p.Scheduler,
		Pull:     eng.remote != nil && p.Remote.Pull,
		Push:     eng.remote != nil && (p.Remote.Push || opts.Push),
	})

	report, runErr := sched.Run(ctx, p.Graph, targets)
	if report != nil {
		printSummary(a.out, report)
	}
	if runErr != nil {
		span.RecordError(runErr)
	}

	if ctx.Err() == nil && p.Cache.Quota > 0 {
		a.prune(ctx, eng, p.Cache.Quota)
	}
	return runErr
}

func (a *App) prune(ctx context.Context, eng *engine, quota int64) {
	stats, err := eng.artifacts.Prune(ctx, quota)
	if err != nil {
		a.logger.Error(zerr.Wrap(err, "could not enforce the cache quota"))
		return
	}
	if stats.RefsRemoved > 0 {
		a.logger.Info(fmt.Sprintf("cache over quota: expired %d artifacts, freed %s",
			stats.RefsRemoved, units.BytesSize(float64(stats.BytesRemoved))))
	}
}

// GC expires artifacts beyond the cache quota and removes every blob no
// remaining artifact references.
func (a *App) GC(ctx context.Context) error {
	eng, err := a.open(true)
	if err != nil {
		return err
	}
	defer eng.Close()

	if quota := eng.project.Cache.Quota; quota > 0 {
		a.prune(ctx, eng, quota)
	}
	stats, err := eng.artifacts.CollectGarbage(ctx)
	if err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("removed %d blobs (%s), kept %d",
		stats.Removed, units.BytesSize(float64(stats.BytesRemoved)), stats.Kept))
	return nil
}

// ServeOptions configuration for the Serve method.
type ServeOptions struct {
	Listen string
	// Dir is the cache directory to serve. Empty means the cache of the
	// project in the working directory.
	Dir string
}

// Serve runs the remote cache server until ctx is cancelled.
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	dir := opts.Dir
	if dir == "" {
		p, err := a.configLoader.Load(a.workDir)
		if err != nil {
			return zerr.Wrap(err, "failed to load configuration")
		}
		dir = p.Cache.Dir
	}
	listen := opts.Listen
	if listen == "" {
		listen = domain.DefaultListenAddress
	}

	store, _, err := a.opener.Open(dir)
	if err != nil {
		return err
	}
	refs, err := cas.NewArtifactCache(store, domain.RefsPath(dir), "", nil)
	if err != nil {
		return err
	}

	var lc net.ListenConfig
	lis, err := lc.Listen(ctx, "tcp", listen)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to listen"), "address", listen)
	}
	a.logger.Info(fmt.Sprintf("serving %s on %s", dir, lis.Addr()))
	return remote.NewServer(store, refs, a.logger).Serve(ctx, lis)
}
