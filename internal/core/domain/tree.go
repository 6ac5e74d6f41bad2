package domain

import (
	"maps"
	"path"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// NodeKind distinguishes the entries of a tree.
type NodeKind uint8

const (
	// KindFile is a regular file.
	KindFile NodeKind = iota + 1
	// KindDirectory is a directory with children.
	KindDirectory
	// KindSymlink is a symbolic link.
	KindSymlink
)

// String returns the lowercase name of the kind.
func (k NodeKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// Node is the in-memory form of a directory tree. File nodes carry the digest
// of their content and optionally the content itself; when Data is nil the
// content lives in the CAS.
type Node struct {
	Kind       NodeKind
	Digest     Digest
	Data       []byte
	Executable bool
	Target     string
	Children   map[string]*Node
}

// NewDirectory returns an empty directory node.
func NewDirectory() *Node {
	return &Node{Kind: KindDirectory, Children: make(map[string]*Node)}
}

// NewFile returns a file node holding data.
func NewFile(data []byte, executable bool) *Node {
	return &Node{Kind: KindFile, Digest: NewDigest(data), Data: data, Executable: executable}
}

// NewFileRef returns a file node whose content is stored in the CAS under d.
func NewFileRef(d Digest, executable bool) *Node {
	return &Node{Kind: KindFile, Digest: d, Executable: executable}
}

// NewSymlink returns a symlink node pointing at target.
func NewSymlink(target string) *Node {
	return &Node{Kind: KindSymlink, Target: target}
}

// IsDir reports whether n is a directory.
func (n *Node) IsDir() bool {
	return n != nil && n.Kind == KindDirectory
}

// Clone returns a deep copy of the tree. File contents are shared.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Kind == KindDirectory {
		c.Children = make(map[string]*Node, len(n.Children))
		for name, child := range n.Children {
			c.Children[name] = child.Clone()
		}
	}
	return &c
}

// Names returns the child names of a directory in sorted order.
func (n *Node) Names() []string {
	return slices.Sorted(maps.Keys(n.Children))
}

// Lookup returns the node at the slash separated path p without following symlinks.
func (n *Node) Lookup(p string) (*Node, bool) {
	cur := n
	for _, name := range SplitPath(p) {
		if !cur.IsDir() {
			return nil, false
		}
		next, ok := cur.Children[name]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Insert places child at p, creating missing parent directories. It never
// follows symlinks and refuses to descend through non directories.
func (n *Node) Insert(p string, child *Node) error {
	names := SplitPath(p)
	if len(names) == 0 {
		return zerr.With(zerr.Wrap(ErrInvalidPath, "cannot insert at the root"), "path", p)
	}
	cur := n
	for _, name := range names[:len(names)-1] {
		if err := ValidateName(name); err != nil {
			return err
		}
		next, ok := cur.Children[name]
		if !ok {
			next = NewDirectory()
			cur.Children[name] = next
		}
		if !next.IsDir() {
			return zerr.With(zerr.Wrap(ErrInvalidPath, "parent is not a directory"), "path", p)
		}
		cur = next
	}
	last := names[len(names)-1]
	if err := ValidateName(last); err != nil {
		return err
	}
	cur.Children[last] = child
	return nil
}

// Walk visits every node below n depth first in sorted name order. The
// paths passed to fn are relative and slash separated.
func (n *Node) Walk(fn func(p string, node *Node) error) error {
	return n.walk("", fn)
}

func (n *Node) walk(prefix string, fn func(string, *Node) error) error {
	for _, name := range n.Names() {
		child := n.Children[name]
		p := path.Join(prefix, name)
		if err := fn(p, child); err != nil {
			return err
		}
		if child.IsDir() {
			if err := child.walk(p, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// FileCount returns the number of regular files in the tree.
func (n *Node) FileCount() int {
	count := 0
	_ = n.Walk(func(_ string, node *Node) error {
		if node.Kind == KindFile {
			count++
		}
		return nil
	})
	return count
}

// EncodeTree serializes every directory of the tree bottom up. visit, when
// not nil, receives each directory's digest and encoded bytes, children
// before parents. The digest of the root directory is returned.
func EncodeTree(root *Node, visit func(d Digest, data []byte) error) (Digest, error) {
	if !root.IsDir() {
		return Digest{}, zerr.Wrap(ErrInvalidNode, "tree root must be a directory")
	}
	dir := &Directory{}
	for _, name := range root.Names() {
		child := root.Children[name]
		if err := ValidateName(name); err != nil {
			return Digest{}, err
		}
		switch child.Kind {
		case KindFile:
			if child.Digest.IsZero() {
				return Digest{}, zerr.With(zerr.Wrap(ErrInvalidNode, "file without digest"), "name", name)
			}
			dir.Files = append(dir.Files, FileEntry{Name: name, Digest: child.Digest, Executable: child.Executable})
		case KindDirectory:
			d, err := EncodeTree(child, visit)
			if err != nil {
				return Digest{}, err
			}
			dir.Directories = append(dir.Directories, DirectoryEntry{Name: name, Digest: d})
		case KindSymlink:
			dir.Symlinks = append(dir.Symlinks, SymlinkEntry{Name: name, Target: child.Target})
		default:
			return Digest{}, zerr.With(zerr.Wrap(ErrInvalidNode, "unknown node kind"), "name", name)
		}
	}
	data := dir.Marshal()
	d := NewDigest(data)
	if visit != nil {
		if err := visit(d, data); err != nil {
			return Digest{}, err
		}
	}
	return d, nil
}

// TreeDigest returns the digest of the root directory of the tree. The
// result only depends on the tree's content, never on construction order.
func TreeDigest(root *Node) (Digest, error) {
	return EncodeTree(root, nil)
}

// ValidateName checks that name is usable as a single path component.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsRune(name, '/') {
		return zerr.With(zerr.Wrap(ErrInvalidPath, "invalid entry name"), "name", name)
	}
	return nil
}

// SplitPath splits a slash separated path into its components, ignoring
// empty and "." components. ".." is preserved for the caller to interpret.
func SplitPath(p string) []string {
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		out = append(out, part)
	}
	return out
}
