// Package cachekey derives the weak and strong cache keys of elements.
package cachekey

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/zerr"
)

// Version is mixed into every key. Bumping it invalidates all artifacts.
const Version = 1

// DependencyKey is the resolved strong key of one dependency.
type DependencyKey struct {
	Name   string `json:"name"`
	Strong string `json:"strong"`
}

type sourceInput struct {
	Kind      string `json:"kind"`
	Path      string `json:"path"`
	Directory string `json:"directory,omitempty"`
}

// weakInput is the canonical form of an element's own inputs. Maps are
// encoded with sorted keys, so the key does not depend on declaration order
// inside the project file.
type weakInput struct {
	Version     int               `json:"version"`
	Kind        string            `json:"kind"`
	Sources     []sourceInput     `json:"sources"`
	SourceTree  string            `json:"source-tree,omitempty"`
	Commands    []string          `json:"commands"`
	Variables   map[string]string `json:"variables"`
	Environment map[string]string `json:"environment"`
	Config      map[string]any    `json:"config"`
	Public      map[string]any    `json:"public"`
}

type strongInput struct {
	Version      int             `json:"version"`
	Weak         string          `json:"weak"`
	Dependencies []DependencyKey `json:"dependencies"`
}

// WeakKey hashes the element's own inputs together with the digest of its
// fetched sources. Dependencies are not part of it.
func WeakKey(e *domain.Element, sources domain.Digest) (string, error) {
	in := weakInput{
		Version:     Version,
		Kind:        e.Kind,
		Sources:     make([]sourceInput, 0, len(e.Sources)),
		Commands:    e.Commands,
		Variables:   e.Variables,
		Environment: e.Environment,
		Config:      e.Config,
		Public:      e.Public,
	}
	for _, s := range e.Sources {
		in.Sources = append(in.Sources, sourceInput(s))
	}
	if !sources.IsZero() {
		in.SourceTree = sources.String()
	}
	return hash(in, e.Name)
}

// StrongKey hashes the weak key followed by the strong keys of the
// dependencies in declaration order. Reordering dependencies changes the key.
func StrongKey(weak string, deps []DependencyKey) string {
	if deps == nil {
		deps = []DependencyKey{}
	}
	key, _ := hash(strongInput{Version: Version, Weak: weak, Dependencies: deps}, "")
	return key
}

// Compute returns both keys of e.
func Compute(e *domain.Element, sources domain.Digest, deps []DependencyKey) (domain.CacheKey, error) {
	weak, err := WeakKey(e, sources)
	if err != nil {
		return domain.CacheKey{}, err
	}
	return domain.CacheKey{Weak: weak, Strong: StrongKey(weak, deps)}, nil
}

func hash(v any, element string) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrInvalidElement, "element inputs cannot be encoded for the cache key"), "element", element)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
