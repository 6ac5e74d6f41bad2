package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/stratum/internal/engine/cachekey"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Cache states reported by Show.
const (
	StatusCached     = "cached"
	StatusFailed     = "failed"
	StatusWeakCached = "weak-cached"
	StatusMissing    = "missing"
)

// ElementStatus is the cache state of one element.
type ElementStatus struct {
	Name   string
	Kind   string
	Key    domain.CacheKey
	Status string
}

type keyedElement struct {
	element *domain.Element
	key     domain.CacheKey
}

// resolveKeys fetches the sources of the selected elements and derives
// their cache keys. Dependencies come first, so their strong keys are known
// when a dependent is reached.
func (a *App) resolveKeys(ctx context.Context, eng *engine, targets []string) ([]keyedElement, error) {
	elements, err := eng.project.Graph.Closure(targets)
	if err != nil {
		return nil, err
	}

	strong := make(map[string]string, len(elements))
	out := make([]keyedElement, 0, len(elements))
	for _, e := range elements {
		sources, err := eng.fetcher.Fetch(ctx, e)
		if err != nil {
			return nil, err
		}
		deps := make([]cachekey.DependencyKey, 0, len(e.Dependencies))
		for _, d := range e.Dependencies {
			deps = append(deps, cachekey.DependencyKey{Name: d.Name, Strong: strong[d.Name]})
		}
		key, err := cachekey.Compute(e, sources, deps)
		if err != nil {
			return nil, err
		}
		strong[e.Name] = key.Strong
		out = append(out, keyedElement{element: e, key: key})
	}
	return out, nil
}

// Show reports for every selected element whether its artifact is in the
// local cache.
func (a *App) Show(ctx context.Context, targets []string) ([]ElementStatus, error) {
	eng, err := a.open(true)
	if err != nil {
		return nil, err
	}
	defer eng.Close()

	keyed, err := a.resolveKeys(ctx, eng, targets)
	if err != nil {
		return nil, err
	}

	statuses := make([]ElementStatus, 0, len(keyed))
	for _, k := range keyed {
		st := ElementStatus{Name: k.element.Name, Kind: k.element.Kind, Key: k.key, Status: StatusMissing}
		art, err := eng.artifacts.Lookup(ctx, k.element.Name, k.key.Strong)
		switch {
		case err == nil && art.BuildSuccess:
			st.Status = StatusCached
		case err == nil:
			st.Status = StatusFailed
		case !errors.Is(err, domain.ErrNotFound):
			return nil, err
		default:
			if _, err := eng.artifacts.Lookup(ctx, k.element.Name, k.key.Weak); err == nil {
				st.Status = StatusWeakCached
			} else if !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
		}
		statuses = append(statuses, st)
	}

	printStatuses(a.out, statuses)
	return statuses, nil
}

// Push uploads the cached artifacts of the selected elements to the remote.
func (a *App) Push(ctx context.Context, targets []string) error {
	eng, keyed, err := a.openRemote(ctx, targets)
	if err != nil {
		return err
	}
	defer eng.Close()

	var pushed, skipped atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(eng.project.Scheduler.Pushers)
	for _, k := range keyed {
		g.Go(func() error {
			ok, err := eng.artifacts.Push(gctx, k.element.Name, k.key.Strong)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				a.logger.Warn(fmt.Sprintf("%s is not cached, nothing to push", k.element.Name))
				skipped.Add(1)
				return nil
			case err != nil:
				return zerr.With(err, "element", k.element.Name)
			case ok:
				pushed.Add(1)
			default:
				skipped.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("pushed %d artifacts, %d skipped", pushed.Load(), skipped.Load()))
	return nil
}

// Pull downloads the artifacts of the selected elements that are missing
// locally. The strong key is tried first, then the weak key.
func (a *App) Pull(ctx context.Context, targets []string) error {
	eng, keyed, err := a.openRemote(ctx, targets)
	if err != nil {
		return err
	}
	defer eng.Close()

	var pulled, missing atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(eng.project.Scheduler.Fetchers)
	for _, k := range keyed {
		g.Go(func() error {
			name := k.element.Name
			if _, err := eng.artifacts.Lookup(gctx, name, k.key.Strong); err == nil {
				return nil
			}
			for _, key := range []string{k.key.Strong, k.key.Weak} {
				ok, err := eng.artifacts.Pull(gctx, name, key)
				if err != nil {
					return zerr.With(err, "element", name)
				}
				if ok {
					pulled.Add(1)
					return nil
				}
			}
			missing.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("pulled %d artifacts, %d not on the remote", pulled.Load(), missing.Load()))
	return nil
}

func (a *App) openRemote(ctx context.Context, targets []string) (*engine, []keyedElement, error) {
	eng, err := a.open(false)
	if err != nil {
		return nil, nil, err
	}
	if eng.remote == nil {
		eng.Close()
		return nil, nil, zerr.Wrap(domain.ErrRemoteNotConfigured, "set remote.url in "+domain.ProjectFileName)
	}
	keyed, err := a.resolveKeys(ctx, eng, targets)
	if err != nil {
		eng.Close()
		return nil, nil, err
	}
	return eng, keyed, nil
}
