package scheduler

import "go.trai.ch/stratum/internal/core/domain"

// ElementReport is the outcome of one element in a run.
type ElementReport struct {
	Name    string
	Key     domain.CacheKey
	Sources domain.Digest
	// State is the state of the element's build job.
	State domain.JobState
	// Cached is set when the artifact came from a cache instead of a build.
	Cached bool
	// Pulled is set when the artifact was downloaded from the remote.
	Pulled bool
	// Pushed is set when the artifact was uploaded to the remote.
	Pushed   bool
	Artifact *domain.Artifact
	// Err is the first error of any of the element's jobs.
	Err error
}

// Report describes a finished run.
type Report struct {
	// Elements are in execution order.
	Elements []*ElementReport
	Jobs     []*Job

	byName map[string]*ElementReport
}

// Element returns the report of the element called name.
func (r *Report) Element(name string) (*ElementReport, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// Job returns the job of the given kind for an element.
func (r *Report) Job(kind domain.JobKind, element string) (*Job, bool) {
	for _, j := range r.Jobs {
		if j.Kind == kind && j.Element.Name == element {
			return j, true
		}
	}
	return nil, false
}

// Count returns how many jobs ended in state.
func (r *Report) Count(state domain.JobState) int {
	n := 0
	for _, j := range r.Jobs {
		if j.State == state {
			n++
		}
	}
	return n
}

func newReport(elements []*domain.Element, jobs []*Job) *Report {
	r := &Report{Jobs: jobs, byName: make(map[string]*ElementReport, len(elements))}
	for _, e := range elements {
		er := &ElementReport{Name: e.Name}
		r.Elements = append(r.Elements, er)
		r.byName[e.Name] = er
	}
	return r
}
