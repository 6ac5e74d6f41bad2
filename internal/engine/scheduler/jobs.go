package scheduler

import (
	"cmp"
	"slices"

	"go.trai.ch/stratum/internal/core/domain"
)

// Job is one unit of work of a run.
type Job struct {
	Kind     domain.JobKind
	Element  *domain.Element
	State    domain.JobState
	Attempts int
	Err      error

	deps       []*Job
	dependents []*Job
	waiting    int
	priority   int
}

// ID returns the name the job is traced and reported under.
func (j *Job) ID() string {
	return j.Kind.String() + ":" + j.Element.Name
}

// transition moves the job to next. The state machine is an invariant of
// the coordinator, so a forbidden move is a bug.
func (j *Job) transition(next domain.JobState) {
	state, err := j.State.Transition(next)
	if err != nil {
		panic(err)
	}
	j.State = state
}

// plan creates the jobs for elements, which must be in execution order.
// Build(e) waits for Fetch(e) and the build of every dependency; Push(e)
// waits for Build(e).
func plan(elements []*domain.Element, push bool) []*Job {
	builds := make(map[string]*Job, len(elements))
	var jobs []*Job

	link := func(j, dep *Job) {
		j.deps = append(j.deps, dep)
		dep.dependents = append(dep.dependents, j)
		j.waiting++
	}

	for _, e := range elements {
		build := &Job{Kind: domain.JobBuild, Element: e}
		if len(e.Sources) > 0 {
			fetch := &Job{Kind: domain.JobFetch, Element: e}
			jobs = append(jobs, fetch)
			link(build, fetch)
		}
		for _, dep := range e.Dependencies {
			link(build, builds[dep.Name])
		}
		builds[e.Name] = build
		jobs = append(jobs, build)

		if push {
			p := &Job{Kind: domain.JobPush, Element: e}
			link(p, build)
			jobs = append(jobs, p)
		}
	}

	prioritize(jobs)
	return jobs
}

// prioritize sets the priority of every job to the number of jobs that
// transitively wait for it.
func prioritize(jobs []*Job) {
	index := make(map[*Job]int, len(jobs))
	for i, j := range jobs {
		index[j] = i
	}
	for _, j := range jobs {
		seen := make([]bool, len(jobs))
		stack := slices.Clone(j.dependents)
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[index[n]] {
				continue
			}
			seen[index[n]] = true
			j.priority++
			stack = append(stack, n.dependents...)
		}
	}
}

// queue holds ready jobs of one kind.
type queue struct {
	jobs []*Job
}

func (q *queue) push(j *Job) {
	q.jobs = append(q.jobs, j)
}

// pop returns the job with the most transitive dependents. Ties go to the
// element declared first.
func (q *queue) pop() *Job {
	best := 0
	for i := 1; i < len(q.jobs); i++ {
		if before(q.jobs[i], q.jobs[best]) {
			best = i
		}
	}
	j := q.jobs[best]
	q.jobs = slices.Delete(q.jobs, best, best+1)
	return j
}

func (q *queue) len() int {
	return len(q.jobs)
}

func before(a, b *Job) bool {
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	return cmp.Less(a.Element.Index, b.Element.Index)
}
