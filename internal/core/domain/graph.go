package domain

import (
	"iter"
	"strings"

	"go.trai.ch/zerr"
)

// Graph is the fixed dependency graph of a project's elements.
type Graph struct {
	elements       map[string]*Element
	order          []string
	executionOrder []string
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		elements: make(map[string]*Element),
	}
}

// AddElement adds an element to the graph. Its Index is set to the
// declaration position. It returns an error if the name is already taken.
func (g *Graph) AddElement(e *Element) error {
	if _, exists := g.elements[e.Name]; exists {
		return zerr.With(zerr.Wrap(ErrElementAlreadyExists, "duplicate element"), "element", e.Name)
	}
	e.Index = len(g.order)
	g.elements[e.Name] = e
	g.order = append(g.order, e.Name)
	return nil
}

// Get returns the element named name.
func (g *Graph) Get(name string) (*Element, bool) {
	e, ok := g.elements[name]
	return e, ok
}

// Len returns the number of elements.
func (g *Graph) Len() int {
	return len(g.order)
}

// Names returns element names in declaration order.
func (g *Graph) Names() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Validate checks that every dependency exists and that the graph is acyclic.
// It computes a deterministic dependencies-first execution order.
func (g *Graph) Validate() error {
	g.executionOrder = make([]string, 0, len(g.order))
	visited := make(map[string]int) // 0: unvisited, 1: visiting, 2: visited
	var path []string

	var visit func(u string) error
	visit = func(u string) error {
		visited[u] = 1
		path = append(path, u)

		e := g.elements[u]
		for _, dep := range e.Dependencies {
			if _, exists := g.elements[dep.Name]; !exists {
				err := zerr.With(zerr.Wrap(ErrMissingDependency, "unknown element"), "dependency", dep.Name)
				return zerr.With(err, "element", u)
			}
			if visited[dep.Name] == 1 {
				return g.buildCycleError(path, dep.Name)
			}
			if visited[dep.Name] == 0 {
				if err := visit(dep.Name); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	for _, name := range g.order {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func (g *Graph) buildCycleError(path []string, dep string) error {
	startIdx := 0
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	cycle := append(append([]string{}, path[startIdx:]...), dep)
	return zerr.With(zerr.Wrap(ErrCyclicDependency, "dependency cycle"), "cycle", strings.Join(cycle, " -> "))
}

// Walk returns an iterator that yields elements in execution order.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[*Element] {
	return func(yield func(*Element) bool) {
		for _, name := range g.executionOrder {
			if !yield(g.elements[name]) {
				return
			}
		}
	}
}

// Closure returns the targets and everything they depend on, in execution
// order. An empty target list selects every element.
func (g *Graph) Closure(targets []string) ([]*Element, error) {
	if len(targets) == 0 {
		out := make([]*Element, 0, len(g.executionOrder))
		for e := range g.Walk() {
			out = append(out, e)
		}
		return out, nil
	}

	needed := make(map[string]bool)
	var mark func(name string)
	mark = func(name string) {
		if needed[name] {
			return
		}
		needed[name] = true
		for _, dep := range g.elements[name].Dependencies {
			mark(dep.Name)
		}
	}
	for _, t := range targets {
		if _, ok := g.elements[t]; !ok {
			return nil, zerr.With(zerr.Wrap(ErrElementNotFound, "unknown target"), "element", t)
		}
		mark(t)
	}

	out := make([]*Element, 0, len(needed))
	for e := range g.Walk() {
		if needed[e.Name] {
			out = append(out, e)
		}
	}
	return out, nil
}

// RuntimeClosure returns the elements that travel with name: its runtime
// dependencies, recursively, followed by name itself. Dependencies come
// before their dependents and declaration order is kept.
func (g *Graph) RuntimeClosure(name string) []*Element {
	var out []*Element
	seen := make(map[string]bool)
	g.appendRuntimeClosure(name, seen, &out)
	return out
}

func (g *Graph) appendRuntimeClosure(name string, seen map[string]bool, out *[]*Element) {
	if seen[name] {
		return
	}
	seen[name] = true
	e := g.elements[name]
	for _, dep := range e.RuntimeDependencies() {
		g.appendRuntimeClosure(dep.Name, seen, out)
	}
	*out = append(*out, e)
}

// StagingClosure returns what must be staged to build name: for each build
// dependency in declaration order its runtime closure. Earlier entries are
// overlaid first.
func (g *Graph) StagingClosure(name string) []*Element {
	var out []*Element
	seen := make(map[string]bool)
	for _, dep := range g.elements[name].BuildDependencies() {
		g.appendRuntimeClosure(dep.Name, seen, &out)
	}
	return out
}
