// Package sandbox composes dependency trees into a single sandbox root.
package sandbox

import (
	"path"
	"slices"
	"strings"

	"go.trai.ch/stratum/internal/core/domain"
)

// maxSymlinkHops bounds symlink resolution, as the kernel does with ELOOP.
const maxSymlinkHops = 32

// Stager implements ports.Stager. It never touches the filesystem: layers
// are overlaid in memory and the result is only materialized once the whole
// composition succeeded.
type Stager struct{}

// NewStager returns a Stager.
func NewStager() *Stager {
	return &Stager{}
}

// Compose overlays layers in order on top of an empty root. Later layers
// win at the same path.
func (s *Stager) Compose(layers []domain.Layer, policy domain.StagePolicy) (*domain.StageResult, error) {
	c := &composition{
		root:   domain.NewDirectory(),
		policy: policy,
		owners: make(map[string]string),
	}
	for _, layer := range layers {
		if layer.Tree == nil {
			continue
		}
		if err := c.stage(layer); err != nil {
			return nil, err
		}
	}
	return &domain.StageResult{Tree: c.root, Overwritten: c.overwritten}, nil
}

type composition struct {
	root        *domain.Node
	policy      domain.StagePolicy
	owners      map[string]string
	overwritten []domain.Overwrite
}

func (c *composition) stage(layer domain.Layer) error {
	mount := "/" + strings.Join(domain.SplitPath(layer.At), "/")
	if layer.At != "" && mount != "/" {
		if err := c.put(mount, domain.NewDirectory(), layer.Name); err != nil {
			return err
		}
	}

	return layer.Tree.Walk(func(rel string, n *domain.Node) error {
		if !c.selected("/" + rel) {
			return nil
		}
		// Populated directories come into existence with their first entry.
		if n.IsDir() && len(n.Children) > 0 {
			return nil
		}
		return c.put(path.Join(mount, rel), n, layer.Name)
	})
}

// put stages a single entry at the absolute sandbox path p.
func (c *composition) put(p string, incoming *domain.Node, layer string) error {
	comps := domain.SplitPath(p)
	name := comps[len(comps)-1]

	parent, parentPath, err := c.resolveDir(p, comps[:len(comps)-1], layer)
	if err != nil {
		return err
	}
	at := path.Join(parentPath, name)
	existing := parent.Children[name]

	switch {
	case incoming.IsDir():
		switch {
		case existing == nil:
			parent.Children[name] = domain.NewDirectory()
		case existing.Kind == domain.KindSymlink && c.replaces(at):
			parent.Children[name] = domain.NewDirectory()
			c.recordOverwrite(at, layer)
			delete(c.owners, at)
		case existing.Kind == domain.KindSymlink:
			// The directory is merged into whatever the link points at.
			if _, _, err := c.resolveDir(p, comps, layer); err != nil {
				return err
			}
		case !existing.IsDir():
			if !c.replaces(at) {
				return c.conflict(p, layer, "cannot stage a directory over the file at "+at)
			}
			parent.Children[name] = domain.NewDirectory()
			c.recordOverwrite(at, layer)
		}
		return nil

	case existing == nil:
	case existing.IsDir():
		if !c.replaces(at) {
			return c.conflict(p, layer, "cannot stage a "+incoming.Kind.String()+" over the directory at "+at)
		}
		c.dropOwners(at)
		c.recordOverwrite(at, layer)
	default:
		c.recordOverwrite(at, layer)
	}

	entry := *incoming
	entry.Children = nil
	parent.Children[name] = &entry
	c.owners[at] = layer
	return nil
}

// resolveDir walks comps from the root and returns the directory they name,
// creating missing directories on the way. Symlinks are followed: relative
// targets from the directory holding the link, absolute targets from the
// sandbox root. Nothing is remembered between calls, so every write is
// checked against the tree as it is now.
func (c *composition) resolveDir(p string, comps []string, layer string) (*domain.Node, string, error) {
	queue := slices.Clone(comps)
	stack := []string{}
	nodes := []*domain.Node{c.root}
	hops := 0

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		if name == ".." {
			if len(stack) == 0 {
				return nil, "", &domain.StagingError{
					Err:    domain.ErrSandboxEscape,
					Path:   p,
					Layer:  layer,
					Detail: "a symlink on the way resolves above the sandbox root",
				}
			}
			stack = stack[:len(stack)-1]
			nodes = nodes[:len(nodes)-1]
			continue
		}

		cur := nodes[len(nodes)-1]
		child := cur.Children[name]
		here := "/" + path.Join(append(slices.Clone(stack), name)...)

		switch {
		case child == nil:
			child = domain.NewDirectory()
			cur.Children[name] = child
		case child.IsDir():
		case child.Kind == domain.KindSymlink && c.replaces(here):
			// The link itself is replaced, its target is left alone.
			child = domain.NewDirectory()
			cur.Children[name] = child
			c.recordOverwrite(here, layer)
			delete(c.owners, here)
		case child.Kind == domain.KindSymlink:
			hops++
			if hops > maxSymlinkHops {
				return nil, "", &domain.StagingError{
					Err:    domain.ErrSymlinkLoop,
					Path:   p,
					Layer:  layer,
					Detail: "while resolving " + here,
				}
			}
			if strings.HasPrefix(child.Target, "/") {
				stack = stack[:0]
				nodes = nodes[:1]
			}
			queue = append(domain.SplitPath(child.Target), queue...)
			continue
		default:
			if !c.replaces(here) {
				return nil, "", c.conflict(p, layer, "a file is in the way at "+here)
			}
			child = domain.NewDirectory()
			cur.Children[name] = child
			c.recordOverwrite(here, layer)
		}

		stack = append(stack, name)
		nodes = append(nodes, child)
	}

	return nodes[len(nodes)-1], "/" + strings.Join(stack, "/"), nil
}

func (c *composition) conflict(p, layer, detail string) error {
	return &domain.StagingError{
		Err:    domain.ErrIncompatibleOverlay,
		Path:   p,
		Layer:  layer,
		Detail: detail,
	}
}

func (c *composition) recordOverwrite(at, layer string) {
	c.overwritten = append(c.overwritten, domain.Overwrite{
		Path:     at,
		Layer:    layer,
		Previous: c.owners[at],
	})
}

func (c *composition) dropOwners(dir string) {
	prefix := dir + "/"
	for p := range c.owners {
		if strings.HasPrefix(p, prefix) {
			delete(c.owners, p)
		}
	}
}

// replaces reports whether the entry at the sandbox path at may be replaced
// by one of a different kind. at is the location of the entry itself, after
// resolving the symlinks above it, never the path being written.
func (c *composition) replaces(at string) bool {
	return matchAny(c.policy.Replace, at)
}

func (c *composition) selected(p string) bool {
	if len(c.policy.Include) > 0 && !matchAny(c.policy.Include, p) {
		return false
	}
	return !matchAny(c.policy.Exclude, p)
}

// matchAny reports whether p matches one of the glob patterns, or lies
// below a directory one of them names. Patterns with a slash are anchored
// at the root, patterns without one match the base name.
func matchAny(patterns []string, p string) bool {
	for _, pattern := range patterns {
		if !strings.Contains(pattern, "/") {
			if ok, _ := path.Match(pattern, path.Base(p)); ok {
				return true
			}
			continue
		}
		pattern = "/" + strings.Trim(pattern, "/")
		if ok, _ := path.Match(pattern, p); ok {
			return true
		}
		if pattern == "/" || strings.HasPrefix(p, pattern+"/") {
			return true
		}
	}
	return false
}
