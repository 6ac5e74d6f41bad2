package app

import (
	"go.trai.ch/stratum/internal/adapters/cas"
	"go.trai.ch/stratum/internal/adapters/source"
	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/stratum/internal/core/ports"
	"go.trai.ch/stratum/internal/engine/builder"
	"go.trai.ch/zerr"
)

// engine holds the components of one invocation. They depend on the
// project file, so they are built after it has been loaded.
type engine struct {
	project   *domain.Project
	store     *cas.Store
	artifacts *cas.ArtifactCache
	remote    ports.Remote
	fetcher   *source.Fetcher
	builder   *builder.Builder
}

func (a *App) open(noRemote bool) (*engine, error) {
	p, err := a.configLoader.Load(a.workDir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	store, materializer, err := a.opener.Open(p.Cache.Dir)
	if err != nil {
		return nil, err
	}

	var rem ports.Remote
	if p.Remote.Enabled() && !noRemote {
		rem, err = a.dialer.Dial(p.Remote.URL)
		if err != nil {
			return nil, zerr.With(err, "url", p.Remote.URL)
		}
	}

	artifacts, err := cas.NewArtifactCache(store, domain.RefsPath(p.Cache.Dir), p.Name, rem)
	if err != nil {
		if rem != nil {
			_ = rem.Close()
		}
		return nil, err
	}

	return &engine{
		project:   p,
		store:     store,
		artifacts: artifacts,
		remote:    rem,
		fetcher:   source.NewFetcher(p.Root, store, materializer, a.stager),
		builder: builder.New(builder.Config{
			TmpDir:     domain.TmpPath(p.Cache.Dir),
			Variables:  p.Variables,
			BuildTrees: p.Cache.BuildTrees,
			ErrorLines: p.Scheduler.ErrorLines,
		}, store, materializer, a.stager, a.executor, a.registry),
	}, nil
}

// Close releases the remote connection.
func (e *engine) Close() {
	if e.remote != nil {
		_ = e.remote.Close()
	}
}
