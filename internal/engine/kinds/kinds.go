// Package kinds holds the registry of element kinds. A kind decides how an
// element's dependencies are staged, which commands run and what part of the
// sandbox becomes the artifact.
package kinds

import (
	"slices"

	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/zerr"
)

// Output selects what an element's artifact is made of.
type Output int

const (
	// OutputInstallRoot captures the install root after the commands ran.
	OutputInstallRoot Output = iota
	// OutputSources uses the fetched sources tree as the artifact.
	OutputSources
	// OutputNone produces an empty artifact. Runtime dependencies still travel.
	OutputNone
	// OutputStaged uses the staged build dependency, filtered by the policy.
	OutputStaged
)

// Plan is what a kind asks the builder to do for one element.
type Plan struct {
	Commands []string
	Policy   domain.StagePolicy
	Output   Output
}

// Kind is one element kind.
type Kind interface {
	// Validate checks the element against the kind. It runs when the project is loaded.
	Validate(e *domain.Element) error
	// Plan returns the build plan for e with every variable expanded.
	Plan(e *domain.Element, vars map[string]string) (Plan, error)
}

// Registry maps kind names to implementations.
type Registry struct {
	kinds map[string]Kind
}

// NewRegistry returns a registry holding the built-in kinds.
func NewRegistry() *Registry {
	r := &Registry{kinds: make(map[string]Kind)}
	r.Register("manual", manual{})
	r.Register("import", importKind{})
	r.Register("stack", stack{})
	r.Register("filter", filter{})
	return r
}

// Register adds or replaces the kind called name.
func (r *Registry) Register(name string, k Kind) {
	r.kinds[name] = k
}

// Names returns the registered kind names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Lookup returns the kind called name.
func (r *Registry) Lookup(name string) (Kind, error) {
	k, ok := r.kinds[name]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownKind, "kind is not registered"), "kind", name)
	}
	return k, nil
}

// Validate resolves the kind of every element and lets it check the element.
func (r *Registry) Validate(g *domain.Graph) error {
	for e := range g.Walk() {
		k, err := r.Lookup(e.Kind)
		if err != nil {
			return zerr.With(err, "element", e.Name)
		}
		if err := k.Validate(e); err != nil {
			return zerr.With(err, "element", e.Name)
		}
	}
	return nil
}

func invalid(msg string) error {
	return zerr.Wrap(domain.ErrInvalidElement, msg)
}

func expandAll(in []string, vars map[string]string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, s := range in {
		v, err := Expand(s, vars)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// stringList reads a list of strings from element config.
func stringList(e *domain.Element, key string) ([]string, error) {
	raw, ok := e.Config[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, zerr.With(invalid("expected a list of strings"), "key", key)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, zerr.With(invalid("expected a list of strings"), "key", key)
	}
}

// manual runs the element's commands in its build root and captures the
// install root.
type manual struct{}

func (manual) Validate(e *domain.Element) error {
	_, err := stringList(e, "replace")
	return err
}

func (manual) Plan(e *domain.Element, vars map[string]string) (Plan, error) {
	commands, err := expandAll(e.Commands, vars)
	if err != nil {
		return Plan{}, err
	}
	replace, err := stringList(e, "replace")
	if err != nil {
		return Plan{}, err
	}
	return Plan{Commands: commands, Policy: domain.StagePolicy{Replace: replace}, Output: OutputInstallRoot}, nil
}

// importKind turns its sources into the artifact.
type importKind struct{}

func (importKind) Validate(e *domain.Element) error {
	if len(e.Sources) == 0 {
		return invalid("import elements need at least one source")
	}
	if len(e.Commands) > 0 {
		return invalid("import elements do not run commands")
	}
	return nil
}

func (importKind) Plan(*domain.Element, map[string]string) (Plan, error) {
	return Plan{Output: OutputSources}, nil
}

// stack groups its dependencies. Its artifact is empty.
type stack struct{}

func (stack) Validate(e *domain.Element) error {
	if len(e.Sources) > 0 || len(e.Commands) > 0 {
		return invalid("stack elements take neither sources nor commands")
	}
	return nil
}

func (stack) Plan(*domain.Element, map[string]string) (Plan, error) {
	return Plan{Output: OutputNone}, nil
}

// filter republishes a subset of its single build dependency.
type filter struct{}

func (filter) Validate(e *domain.Element) error {
	if n := len(e.BuildDependencies()); n != 1 {
		return zerr.With(invalid("filter elements need exactly one build dependency"), "count", n)
	}
	if len(e.Sources) > 0 || len(e.Commands) > 0 {
		return invalid("filter elements take neither sources nor commands")
	}
	if _, err := stringList(e, "include"); err != nil {
		return err
	}
	_, err := stringList(e, "exclude")
	return err
}

func (filter) Plan(e *domain.Element, vars map[string]string) (Plan, error) {
	include, err := stringList(e, "include")
	if err != nil {
		return Plan{}, err
	}
	exclude, err := stringList(e, "exclude")
	if err != nil {
		return Plan{}, err
	}
	if include, err = expandAll(include, vars); err != nil {
		return Plan{}, err
	}
	if exclude, err = expandAll(exclude, vars); err != nil {
		return Plan{}, err
	}
	return Plan{Policy: domain.StagePolicy{Include: include, Exclude: exclude}, Output: OutputStaged}, nil
}
