// Package scheduler walks the element graph and dispatches fetch, build
// and push jobs with bounded parallelism per kind.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/stratum/internal/core/ports"
	"go.trai.ch/zerr"
)

// Options configures a Scheduler for one project.
type Options struct {
	Project  string
	Settings domain.SchedulerSettings
	// Pull checks the remote when an artifact is not in the local cache.
	Pull bool
	// Push uploads every built artifact to the remote.
	Push bool
}

// Scheduler runs builds of an element graph.
type Scheduler struct {
	fetcher   ports.SourceFetcher
	builder   ports.Builder
	artifacts ports.ArtifactCache
	tracer    ports.Tracer
	logger    ports.Logger
	opts      Options
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(
	fetcher ports.SourceFetcher,
	builder ports.Builder,
	artifacts ports.ArtifactCache,
	tracer ports.Tracer,
	logger ports.Logger,
	opts Options,
) *Scheduler {
	return &Scheduler{
		fetcher:   fetcher,
		builder:   builder,
		artifacts: artifacts,
		tracer:    tracer,
		logger:    logger,
		opts:      opts,
	}
}

// Run builds targets and everything they depend on. An empty target list
// builds the whole graph. The report is returned even when the run fails:
// the error wraps domain.ErrBuildExecutionFailed when a job failed and
// domain.ErrCancelled when ctx was cancelled.
func (s *Scheduler) Run(ctx context.Context, graph *domain.Graph, targets []string) (*Report, error) {
	if err := graph.Validate(); err != nil {
		return nil, err
	}
	elements, err := graph.Closure(targets)
	if err != nil {
		return nil, err
	}

	jobs := plan(elements, s.opts.Push)
	ids := make([]string, len(jobs))
	for i, j := range jobs {
		ids[i] = j.ID()
	}
	s.tracer.EmitPlan(ctx, ids)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	st := &runState{
		s:       s,
		graph:   graph,
		ctx:     runCtx,
		cancel:  cancel,
		report:  newReport(elements, jobs),
		queues:  make(map[domain.JobKind]*queue, len(domain.JobKinds)),
		active:  make(map[domain.JobKind]int, len(domain.JobKinds)),
		results: make(chan result, len(jobs)),
	}
	for _, k := range domain.JobKinds {
		st.queues[k] = &queue{}
	}
	for _, j := range jobs {
		if j.waiting == 0 {
			st.makeReady(j)
		}
	}

	st.loop()
	return st.report, st.finish(ctx)
}

type result struct {
	job *Job
	err error

	sources  domain.Digest
	key      domain.CacheKey
	artifact *domain.Artifact
	cached   bool
	pulled   bool
	pushed   bool
}

type runState struct {
	s      *Scheduler
	graph  *domain.Graph
	ctx    context.Context
	cancel context.CancelFunc
	report *Report

	queues  map[domain.JobKind]*queue
	active  map[domain.JobKind]int
	running int
	results chan result

	// stopping is set once the error policy stops dispatching.
	stopping bool
	errs     []error
}

func (st *runState) loop() {
	for {
		st.dispatch()
		if st.running == 0 {
			return
		}
		st.complete(<-st.results)
	}
}

func (st *runState) dispatch() {
	if st.stopping || st.ctx.Err() != nil {
		return
	}
	for _, kind := range domain.JobKinds {
		q := st.queues[kind]
		limit := st.s.opts.Settings.Limit(kind)
		for q.len() > 0 && st.active[kind] < limit {
			j := q.pop()
			j.transition(domain.JobRunning)
			j.Attempts++
			st.active[kind]++
			st.running++
			go st.execute(j, st.prepare(j))
		}
	}
}

func (st *runState) makeReady(j *Job) {
	j.transition(domain.JobReady)
	st.queues[j.Kind].push(j)
}

func (st *runState) complete(res result) {
	j := res.job
	st.active[j.Kind]--
	st.running--

	switch {
	case res.err == nil:
		j.transition(domain.JobSucceeded)
		st.record(res)
		for _, d := range j.dependents {
			d.waiting--
			if d.waiting == 0 && d.State == domain.JobPending {
				st.makeReady(d)
			}
		}

	case st.ctx.Err() != nil || errors.Is(res.err, domain.ErrCancelled):
		j.transition(domain.JobCancelled)
		j.Err = res.err

	case domain.IsRetryable(res.err) && j.Attempts <= st.s.opts.Settings.Retries && !st.stopping:
		st.s.logger.Warn(fmt.Sprintf("%s failed, retrying (attempt %d of %d): %v",
			j.ID(), j.Attempts, st.s.opts.Settings.Retries+1, res.err))
		j.transition(domain.JobReady)
		st.queues[j.Kind].push(j)

	default:
		j.transition(domain.JobFailed)
		j.Err = zerr.With(zerr.Wrap(res.err, "job failed"), "job", j.ID())
		st.errs = append(st.errs, j.Err)
		st.record(res)
		st.skipDependents(j)
		st.applyErrorPolicy()
	}

	if er, ok := st.report.Element(j.Element.Name); ok {
		if j.Kind == domain.JobBuild {
			er.State = j.State
		}
		if er.Err == nil && j.Err != nil {
			er.Err = j.Err
		}
	}
}

// record copies what a job produced into the element report. Build jobs
// report their key and artifact even when they failed.
func (st *runState) record(res result) {
	er, _ := st.report.Element(res.job.Element.Name)
	switch res.job.Kind {
	case domain.JobFetch:
		er.Sources = res.sources
	case domain.JobBuild:
		er.Key = res.key
		er.Artifact = res.artifact
		er.Cached = res.cached
		er.Pulled = res.pulled
	case domain.JobPush:
		er.Pushed = res.pushed
	}
}

// skipDependents marks every job waiting on j, directly or not, as skipped.
func (st *runState) skipDependents(j *Job) {
	for _, d := range j.dependents {
		if d.State != domain.JobPending {
			continue
		}
		d.transition(domain.JobSkipped)
		if er, ok := st.report.Element(d.Element.Name); ok && d.Kind == domain.JobBuild {
			er.State = domain.JobSkipped
		}
		st.skipDependents(d)
	}
}

func (st *runState) applyErrorPolicy() {
	switch st.s.opts.Settings.OnError {
	case domain.OnErrorQuit:
		st.stopping = true
	case domain.OnErrorTerminate:
		st.stopping = true
		st.cancel()
	}
}

// finish cancels every job that never reached a terminal state and builds
// the error of the run.
func (st *runState) finish(parent context.Context) error {
	for _, j := range st.report.Jobs {
		if j.State.Terminal() {
			continue
		}
		j.transition(domain.JobCancelled)
		if er, ok := st.report.Element(j.Element.Name); ok && j.Kind == domain.JobBuild {
			er.State = domain.JobCancelled
		}
	}

	var err error
	if len(st.errs) > 0 {
		err = errors.Join(append([]error{
			zerr.With(zerr.Wrap(domain.ErrBuildExecutionFailed, "build execution failed"), "failed_jobs", len(st.errs)),
		}, st.errs...)...)
	}
	if parent.Err() != nil {
		err = errors.Join(zerr.Wrap(domain.ErrCancelled, "run interrupted"), err)
	}
	return err
}
