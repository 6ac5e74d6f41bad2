package domain

import (
	"regexp"

	"go.trai.ch/zerr"
)

// DependencyType says in which way an element depends on another.
type DependencyType uint8

const (
	// DepBuild dependencies are staged into the sandbox when building.
	DepBuild DependencyType = 1 << iota
	// DepRuntime dependencies are staged along with the element whenever
	// something depends on it.
	DepRuntime
	// DepAll is both a build and a runtime dependency.
	DepAll = DepBuild | DepRuntime
)

// String returns the configuration spelling of t.
func (t DependencyType) String() string {
	switch t {
	case DepBuild:
		return "build"
	case DepRuntime:
		return "runtime"
	case DepAll:
		return "all"
	default:
		return "invalid"
	}
}

// ParseDependencyType parses "build", "runtime" or "all". The empty string means all.
func ParseDependencyType(s string) (DependencyType, error) {
	switch s {
	case "", "all":
		return DepAll, nil
	case "build":
		return DepBuild, nil
	case "runtime":
		return DepRuntime, nil
	default:
		return 0, zerr.With(zerr.Wrap(ErrInvalidDependencyType, "unknown dependency type"), "type", s)
	}
}

// Dependency is a declared edge to another element.
type Dependency struct {
	Name string
	Type DependencyType
}

// IsBuild reports whether the dependency is staged when building.
func (d Dependency) IsBuild() bool { return d.Type&DepBuild != 0 }

// IsRuntime reports whether the dependency travels with the element.
func (d Dependency) IsRuntime() bool { return d.Type&DepRuntime != 0 }

// Source is a declared input fetched into the CAS before building.
type Source struct {
	Kind string
	// Path is the location of a local source relative to the project root.
	Path string
	// Directory places the source below this sub directory of the sources tree.
	Directory string
}

// Element is one node of the build graph. It is immutable once the graph is validated.
type Element struct {
	Name         string
	Kind         string
	Dependencies []Dependency
	Sources      []Source
	Commands     []string
	Variables    map[string]string
	Environment  map[string]string
	Config       map[string]any
	Public       map[string]any

	// Index is the declaration order within the project.
	Index int
}

// BuildDependencies returns the dependencies staged when building e, in declaration order.
func (e *Element) BuildDependencies() []Dependency {
	out := make([]Dependency, 0, len(e.Dependencies))
	for _, d := range e.Dependencies {
		if d.IsBuild() {
			out = append(out, d)
		}
	}
	return out
}

// RuntimeDependencies returns the dependencies that travel with e, in declaration order.
func (e *Element) RuntimeDependencies() []Dependency {
	out := make([]Dependency, 0, len(e.Dependencies))
	for _, d := range e.Dependencies {
		if d.IsRuntime() {
			out = append(out, d)
		}
	}
	return out
}

var validElementNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._/-]*$`)

// ValidateElementName checks that name can be used as an element name and as
// a path component of artifact refs.
func ValidateElementName(name string) error {
	if !validElementNameRegex.MatchString(name) {
		return zerr.With(zerr.Wrap(ErrInvalidElementName, "unexpected character"), "element", name)
	}
	for _, part := range SplitPath(name) {
		if part == ".." {
			return zerr.With(zerr.Wrap(ErrInvalidElementName, "parent reference"), "element", name)
		}
	}
	return nil
}

// CacheKey pairs the two keys identifying an element's build.
type CacheKey struct {
	// Strong covers the element and the strong keys of its dependencies.
	Strong string
	// Weak covers only the element's own inputs.
	Weak string
}

// IsZero reports whether the key has not been computed.
func (k CacheKey) IsZero() bool {
	return k.Strong == "" && k.Weak == ""
}
