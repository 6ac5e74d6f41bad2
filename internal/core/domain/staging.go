package domain

import "io"

// Layer is one tree to overlay into a sandbox.
type Layer struct {
	// Name identifies the layer in errors, usually the element name.
	Name string
	Tree *Node
	// At is the sandbox directory the layer is mounted under. Empty means the root.
	At string
}

// StagePolicy adjusts how layers are composed.
type StagePolicy struct {
	// Replace lists glob patterns of sandbox paths where an incoming entry
	// may replace an existing entry of a different kind.
	Replace []string
	// Include, when set, stages only paths matching one of the patterns.
	Include []string
	// Exclude drops paths matching any of the patterns.
	Exclude []string
}

// Overwrite records a staged file or symlink that replaced an earlier one.
type Overwrite struct {
	Path     string
	Layer    string
	Previous string
}

// StageResult is a fully composed sandbox tree.
type StageResult struct {
	Tree        *Node
	Overwritten []Overwrite
}

// Invocation is one command run inside a sandbox.
type Invocation struct {
	Command string
	// Dir is the host directory the command runs in.
	Dir string
	Env map[string]string
}

// BuiltDependency is a staged dependency together with the artifact it was built into.
type BuiltDependency struct {
	Element  *Element
	Artifact *Artifact
}

// BuildRequest carries everything the builder needs for one element.
type BuildRequest struct {
	Project string
	Element *Element
	Key     CacheKey
	// Sources is the digest of the fetched sources tree, zero when the element has none.
	Sources Digest
	// Staged are the dependency artifacts to overlay, in staging order.
	Staged []BuiltDependency
	// Direct are the artifacts of the element's declared dependencies.
	Direct []BuiltDependency
	// Output receives command output as it is produced. May be nil.
	Output io.Writer
}
