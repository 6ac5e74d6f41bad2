package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/stratum/internal/core/ports"
	"go.trai.ch/stratum/internal/engine/cachekey"
	"go.trai.ch/zerr"
)

// input is what a job needs from the jobs it waited for. It is assembled
// by the coordinator so job goroutines never read shared state.
type input struct {
	sources domain.Digest
	key     domain.CacheKey
	deps    []cachekey.DependencyKey
	staged  []domain.BuiltDependency
	direct  []domain.BuiltDependency
}

func (st *runState) prepare(j *Job) input {
	e := j.Element
	er, _ := st.report.Element(e.Name)
	in := input{sources: er.Sources, key: er.Key}
	if j.Kind != domain.JobBuild {
		return in
	}

	for _, dep := range e.Dependencies {
		d, _ := st.report.Element(dep.Name)
		in.deps = append(in.deps, cachekey.DependencyKey{Name: dep.Name, Strong: d.Key.Strong})
		de, _ := st.graph.Get(dep.Name)
		in.direct = append(in.direct, domain.BuiltDependency{Element: de, Artifact: d.Artifact})
	}
	for _, se := range st.graph.StagingClosure(e.Name) {
		d, _ := st.report.Element(se.Name)
		in.staged = append(in.staged, domain.BuiltDependency{Element: se, Artifact: d.Artifact})
	}
	return in
}

func (st *runState) execute(j *Job, in input) {
	// The span ends before the result is sent so the coordinator never
	// finishes ahead of the trace.
	res := func() result {
		ctx, span := st.s.tracer.Start(st.ctx, j.ID(),
			ports.WithAttribute("stratum.job.kind", j.Kind.String()),
			ports.WithAttribute("stratum.element", j.Element.Name),
			ports.WithAttribute("stratum.job.attempt", j.Attempts),
		)
		defer span.End()

		if err := st.backoff(ctx, j.Attempts); err != nil {
			return result{job: j, err: err}
		}

		var res result
		switch j.Kind {
		case domain.JobFetch:
			res = st.s.fetch(ctx, j)
		case domain.JobBuild:
			res = st.s.build(ctx, span, j, in)
		case domain.JobPush:
			res = st.s.push(ctx, j, in)
		}
		if res.err != nil {
			span.RecordError(res.err)
		}
		return res
	}()

	st.results <- res
}

// backoff waits before a retry. The delay doubles with every attempt.
func (st *runState) backoff(ctx context.Context, attempt int) error {
	if attempt <= 1 || st.s.opts.Settings.RetryDelay <= 0 {
		return nil
	}
	delay := st.s.opts.Settings.RetryDelay << (attempt - 2)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return zerr.Wrap(domain.ErrCancelled, "interrupted while waiting to retry")
	}
}

func (s *Scheduler) fetch(ctx context.Context, j *Job) result {
	sources, err := s.fetcher.Fetch(ctx, j.Element)
	return result{job: j, sources: sources, err: err}
}

// build computes the keys of the element, checks the caches and builds on
// a miss. Cached failures are reported as failures without building again.
func (s *Scheduler) build(ctx context.Context, span ports.Span, j *Job, in input) result {
	e := j.Element
	res := result{job: j}

	key, err := cachekey.Compute(e, in.sources, in.deps)
	if err != nil {
		res.err = err
		return res
	}
	res.key = key
	span.SetAttribute("stratum.key.strong", key.Strong)
	span.SetAttribute("stratum.key.weak", key.Weak)

	art, pulled, err := s.findCached(ctx, e.Name, key)
	if err != nil {
		res.err = err
		return res
	}
	if art != nil {
		res.artifact, res.cached, res.pulled = art, true, pulled
		span.SetAttribute("stratum.cached", true)
		if !art.BuildSuccess {
			res.err = zerr.With(zerr.Wrap(domain.ErrBuildFailed, "cached build failure: "+art.BuildError), "element", e.Name)
		}
		return res
	}

	art, err = s.builder.Build(ctx, domain.BuildRequest{
		Project: s.opts.Project,
		Element: e,
		Key:     key,
		Sources: in.sources,
		Staged:  in.staged,
		Direct:  in.direct,
		Output:  span,
	})
	if art != nil && (err == nil || errors.Is(err, domain.ErrBuildFailed)) {
		if storeErr := s.artifacts.Store(ctx, e.Name, art); storeErr != nil {
			res.err = errors.Join(err, storeErr)
			return res
		}
		res.artifact = art
	}
	res.err = err
	return res
}

// findCached looks the artifact up locally and then, when pulling is enabled,
// on the remote. Remote failures only cost a rebuild, so they are logged.
func (s *Scheduler) findCached(ctx context.Context, element string, key domain.CacheKey) (*domain.Artifact, bool, error) {
	art, err := s.artifacts.Lookup(ctx, element, key.Strong)
	switch {
	case err == nil:
		return art, false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, false, err
	case !s.opts.Pull:
		return nil, false, nil
	}

	ok, err := s.artifacts.Pull(ctx, element, key.Strong)
	if err != nil {
		if errors.Is(err, domain.ErrCancelled) || ctx.Err() != nil {
			return nil, false, zerr.Wrap(domain.ErrCancelled, "interrupted while pulling")
		}
		s.logger.Warn(fmt.Sprintf("could not pull %s: %v", element, err))
		return nil, false, nil
	}
	if !ok {
		return nil, false, nil
	}
	art, err = s.artifacts.Lookup(ctx, element, key.Strong)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("pulled artifact of %s is unusable: %v", element, err))
		return nil, false, nil
	}
	return art, true, nil
}

func (s *Scheduler) push(ctx context.Context, j *Job, in input) result {
	pushed, err := s.artifacts.Push(ctx, j.Element.Name, in.key.Strong)
	return result{job: j, pushed: pushed, err: err}
}
