package kinds

import (
	"maps"
	"path"
	"regexp"
	"strings"

	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/zerr"
)

// Well known variables.
const (
	VarPrefix      = "prefix"
	VarInstallRoot = "install-root"
	VarBuildRoot   = "build-root"
	VarSysroot     = "sysroot"
	VarElementName = "element-name"
	VarProjectName = "project-name"
)

// InstallRoot and BuildRootBase are the sandbox locations commands install
// into and build in.
const (
	InstallRoot   = "/buildstream-install"
	BuildRootBase = "/buildstream"
)

var variableRef = regexp.MustCompile(`%\{([a-zA-Z0-9_.-]+)\}`)

// Variables returns the variables of e before expansion: built-in defaults,
// overridden by project variables, overridden by the element's own.
func Variables(project string, projectVars map[string]string, e *domain.Element) map[string]string {
	vars := map[string]string{
		VarPrefix:      "/usr",
		VarInstallRoot: InstallRoot,
		VarBuildRoot:   BuildRoot(project, e.Name),
		VarSysroot:     "/",
		VarElementName: e.Name,
		VarProjectName: project,
	}
	maps.Copy(vars, projectVars)
	maps.Copy(vars, e.Variables)
	return vars
}

// BuildRoot returns the sandbox directory the sources of element are staged in.
func BuildRoot(project, element string) string {
	return path.Join(BuildRootBase, project, element)
}

// Resolve expands every variable value. References to undefined variables
// and reference cycles are errors.
func Resolve(vars map[string]string) (map[string]string, error) {
	r := resolver{raw: vars, done: make(map[string]string, len(vars)), active: make(map[string]bool)}
	for name := range vars {
		if _, err := r.resolve(name, nil); err != nil {
			return nil, err
		}
	}
	return r.done, nil
}

// Expand replaces every %{name} in s with the resolved value of name.
func Expand(s string, resolved map[string]string) (string, error) {
	var missing string
	out := variableRef.ReplaceAllStringFunc(s, func(ref string) string {
		name := variableRef.FindStringSubmatch(ref)[1]
		v, ok := resolved[name]
		if !ok && missing == "" {
			missing = name
		}
		return v
	})
	if missing != "" {
		return "", zerr.With(zerr.Wrap(domain.ErrUnresolvedVariable, "undefined variable referenced"), "variable", missing)
	}
	return out, nil
}

type resolver struct {
	raw    map[string]string
	done   map[string]string
	active map[string]bool
}

func (r *resolver) resolve(name string, chain []string) (string, error) {
	if v, ok := r.done[name]; ok {
		return v, nil
	}
	raw, ok := r.raw[name]
	if !ok {
		err := zerr.With(zerr.Wrap(domain.ErrUnresolvedVariable, "undefined variable referenced"), "variable", name)
		if len(chain) > 0 {
			err = zerr.With(err, "referenced_by", chain[len(chain)-1])
		}
		return "", err
	}
	if r.active[name] {
		return "", zerr.With(zerr.Wrap(domain.ErrCircularVariable, "variables reference each other"),
			"cycle", strings.Join(append(chain[:len(chain):len(chain)], name), " -> "))
	}
	r.active[name] = true
	defer delete(r.active, name)
	next := append(chain[:len(chain):len(chain)], name)

	var firstErr error
	value := variableRef.ReplaceAllStringFunc(raw, func(ref string) string {
		if firstErr != nil {
			return ""
		}
		v, err := r.resolve(variableRef.FindStringSubmatch(ref)[1], next)
		if err != nil {
			firstErr = err
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	r.done[name] = value
	return value, nil
}
