package domain

import "time"

// ErrorPolicy decides what a run does after the first failed job.
type ErrorPolicy string

const (
	// OnErrorContinue keeps building everything that does not depend on the failure.
	OnErrorContinue ErrorPolicy = "continue"
	// OnErrorQuit stops dispatching new jobs and waits for running ones.
	OnErrorQuit ErrorPolicy = "quit"
	// OnErrorTerminate stops dispatching and interrupts running jobs.
	OnErrorTerminate ErrorPolicy = "terminate"
)

// BuildTreePolicy decides when the sandbox build directory is kept in the artifact.
type BuildTreePolicy string

const (
	// BuildTreesNever never captures build trees.
	BuildTreesNever BuildTreePolicy = "never"
	// BuildTreesOnFailure captures the build tree of failed builds.
	BuildTreesOnFailure BuildTreePolicy = "failure"
	// BuildTreesAlways captures every build tree.
	BuildTreesAlways BuildTreePolicy = "always"
)

// SchedulerSettings bounds the parallelism and retry behaviour of a run.
type SchedulerSettings struct {
	Fetchers   int
	Builders   int
	Pushers    int
	Retries    int
	RetryDelay time.Duration
	ErrorLines int
	OnError    ErrorPolicy
}

// DefaultSchedulerSettings returns the settings used when the project file is silent.
func DefaultSchedulerSettings() SchedulerSettings {
	return SchedulerSettings{
		Fetchers:   10,
		Builders:   4,
		Pushers:    4,
		Retries:    2,
		RetryDelay: time.Second,
		ErrorLines: 20,
		OnError:    OnErrorContinue,
	}
}

// Limit returns the concurrency limit for jobs of kind k.
func (s SchedulerSettings) Limit(k JobKind) int {
	var n int
	switch k {
	case JobFetch:
		n = s.Fetchers
	case JobBuild:
		n = s.Builders
	case JobPush:
		n = s.Pushers
	}
	return max(n, 1)
}

// CacheSettings configures the local cache.
type CacheSettings struct {
	Dir        string
	Quota      int64
	BuildTrees BuildTreePolicy
}

// RemoteSettings configures the shared remote cache.
type RemoteSettings struct {
	URL  string
	Pull bool
	Push bool
}

// Enabled reports whether a remote is configured.
func (r RemoteSettings) Enabled() bool {
	return r.URL != ""
}

// Project is a loaded and validated project file.
type Project struct {
	Name      string
	Root      string
	Graph     *Graph
	Variables map[string]string
	Cache     CacheSettings
	Remote    RemoteSettings
	Scheduler SchedulerSettings
}
