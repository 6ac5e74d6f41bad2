package cas

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/stratum/internal/core/ports"
	"go.trai.ch/zerr"
)

// ArtifactCache implements ports.ArtifactCache. Each artifact record is kept
// as a file under refs/<project>/<element>/<key>, once for its strong key and
// once for its weak key. A ref's modification time is its last use.
type ArtifactCache struct {
	store   *Store
	refs    string
	project string
	remote  ports.Remote
}

// Ref describes one stored artifact ref.
type Ref struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// NewArtifactCache returns a cache for project stored next to store. remote
// may be nil, in which case Pull and Push fail with
// domain.ErrRemoteNotConfigured.
func NewArtifactCache(store *Store, refsDir, project string, remote ports.Remote) (*ArtifactCache, error) {
	if err := os.MkdirAll(refsDir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", refsDir)
	}
	return &ArtifactCache{store: store, refs: refsDir, project: project, remote: remote}, nil
}

// RefName returns the ref an element artifact is stored under.
func RefName(project, element, key string) string {
	return path.Join(project, element, key)
}

// Lookup returns the artifact for element under key. An artifact whose
// content is no longer complete in the store counts as a miss.
func (c *ArtifactCache) Lookup(ctx context.Context, element, key string) (*domain.Artifact, error) {
	ref := RefName(c.project, element, key)
	data, err := c.ReadRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	art, err := domain.UnmarshalArtifact(data)
	if err != nil {
		return nil, zerr.With(err, "ref", ref)
	}
	if !art.Files.IsZero() {
		if _, err := c.store.GetTree(ctx, art.Files); err != nil {
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrCorruptTree) {
				return nil, zerr.With(zerr.Wrap(domain.ErrNotFound, "artifact content incomplete"), "ref", ref)
			}
			return nil, err
		}
	}

	now := time.Now()
	_ = os.Chtimes(c.refPath(ref), now, now)
	return art, nil
}

// Store records art under its strong key and, when set, its weak key.
func (c *ArtifactCache) Store(ctx context.Context, element string, art *domain.Artifact) error {
	data := art.Marshal()
	for _, key := range []string{art.StrongKey, art.WeakKey} {
		if key == "" {
			continue
		}
		if err := c.WriteRef(ctx, RefName(c.project, element, key), data); err != nil {
			return err
		}
	}
	return nil
}

// Pull fetches the artifact for element under key and all of its content
// from the remote.
func (c *ArtifactCache) Pull(ctx context.Context, element, key string) (bool, error) {
	if c.remote == nil {
		return false, domain.ErrRemoteNotConfigured
	}
	ref := RefName(c.project, element, key)
	data, err := c.remote.GetArtifact(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	art, err := domain.UnmarshalArtifact(data)
	if err != nil {
		return false, zerr.With(err, "ref", ref)
	}

	for _, tree := range artifactTrees(art) {
		if _, err := c.store.PullTree(ctx, c.remote, tree); err != nil {
			return false, zerr.With(err, "ref", ref)
		}
	}
	if _, err := c.store.Pull(ctx, c.remote, artifactBlobs(art)); err != nil {
		return false, zerr.With(err, "ref", ref)
	}

	if err := c.Store(ctx, element, art); err != nil {
		return false, err
	}
	return true, nil
}

// Push uploads the local artifact for element under key and its content to
// the remote. It reports false when the remote already held the same record.
func (c *ArtifactCache) Push(ctx context.Context, element, key string) (bool, error) {
	if c.remote == nil {
		return false, domain.ErrRemoteNotConfigured
	}
	art, err := c.Lookup(ctx, element, key)
	if err != nil {
		return false, err
	}
	data := art.Marshal()

	ref := RefName(c.project, element, key)
	existing, err := c.remote.GetArtifact(ctx, ref)
	switch {
	case err == nil && slices.Equal(existing, data):
		return false, nil
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return false, err
	}

	for _, tree := range artifactTrees(art) {
		if _, err := c.store.PushTree(ctx, c.remote, tree); err != nil {
			return false, zerr.With(err, "ref", ref)
		}
	}
	if _, err := c.store.Push(ctx, c.remote, artifactBlobs(art)); err != nil {
		return false, zerr.With(err, "ref", ref)
	}

	for _, k := range []string{art.StrongKey, art.WeakKey} {
		if k == "" {
			continue
		}
		if err := c.remote.UpdateArtifact(ctx, RefName(c.project, element, k), data); err != nil {
			return false, err
		}
	}
	return true, nil
}

// ReadRef returns the raw artifact record stored under ref.
func (c *ArtifactCache) ReadRef(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateRef(ref); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(c.refPath(ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrNotFound, "artifact not cached"), "ref", ref)
		}
		return nil, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}
	return data, nil
}

// WriteRef atomically replaces the record stored under ref.
func (c *ArtifactCache) WriteRef(ctx context.Context, ref string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateRef(ref); err != nil {
		return err
	}
	p := c.refPath(ref)
	if err := os.MkdirAll(filepath.Dir(p), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}
	if err := renameio.WriteFile(p, data, domain.FilePerm, renameio.WithTempDir(c.store.tmp)); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "ref", ref)
	}
	return nil
}

// RemoveRef deletes ref. Removing a missing ref is not an error.
func (c *ArtifactCache) RemoveRef(ref string) error {
	if err := validateRef(ref); err != nil {
		return err
	}
	if err := os.Remove(c.refPath(ref)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	return nil
}

// Refs lists every stored ref, least recently used first.
func (c *ArtifactCache) Refs(ctx context.Context) ([]Ref, error) {
	var out []Ref
	err := filepath.WalkDir(c.refs, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if entry.IsDir() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(c.refs, p)
		if err != nil {
			return err
		}
		out = append(out, Ref{Name: filepath.ToSlash(rel), Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}
	slices.SortStableFunc(out, func(a, b Ref) int {
		if n := a.ModTime.Compare(b.ModTime); n != 0 {
			return n
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

// Roots returns every CAS object referenced by a stored artifact. Records
// that cannot be decoded are skipped.
func (c *ArtifactCache) Roots(ctx context.Context) ([]domain.Digest, error) {
	refs, err := c.Refs(ctx)
	if err != nil {
		return nil, err
	}
	var roots []domain.Digest
	for _, r := range refs {
		data, err := c.ReadRef(ctx, r.Name)
		if err != nil {
			return nil, err
		}
		art, err := domain.UnmarshalArtifact(data)
		if err != nil {
			continue
		}
		roots = append(roots, art.Digests()...)
	}
	return roots, nil
}

// CollectGarbage removes every blob no stored artifact references.
func (c *ArtifactCache) CollectGarbage(ctx context.Context) (GCStats, error) {
	roots, err := c.Roots(ctx)
	if err != nil {
		return GCStats{}, err
	}
	return c.store.CollectGarbage(ctx, roots)
}

// PruneStats summarizes a quota enforcement pass.
type PruneStats struct {
	RefsRemoved int
	GCStats
}

// Prune removes least recently used refs until the store fits in quota
// bytes. A quota of zero or less disables pruning.
func (c *ArtifactCache) Prune(ctx context.Context, quota int64) (PruneStats, error) {
	var stats PruneStats
	if quota <= 0 {
		return stats, nil
	}
	size, err := c.store.Size(ctx)
	if err != nil || size <= quota {
		return stats, err
	}

	refs, err := c.Refs(ctx)
	if err != nil {
		return stats, err
	}
	for _, r := range refs {
		if err := c.RemoveRef(r.Name); err != nil {
			return stats, err
		}
		stats.RefsRemoved++

		gc, err := c.CollectGarbage(ctx)
		if err != nil {
			return stats, err
		}
		stats.Removed += gc.Removed
		stats.BytesRemoved += gc.BytesRemoved
		stats.Kept = gc.Kept

		size, err = c.store.Size(ctx)
		if err != nil {
			return stats, err
		}
		if size <= quota {
			break
		}
	}
	return stats, nil
}

func (c *ArtifactCache) refPath(ref string) string {
	return filepath.Join(c.refs, filepath.FromSlash(ref))
}

func validateRef(ref string) error {
	if ref == "" || strings.HasPrefix(ref, "/") {
		return zerr.With(zerr.Wrap(domain.ErrInvalidPath, "invalid artifact ref"), "ref", ref)
	}
	for _, part := range strings.Split(ref, "/") {
		if part == "" || part == "." || part == ".." {
			return zerr.With(zerr.Wrap(domain.ErrInvalidPath, "invalid artifact ref"), "ref", ref)
		}
	}
	return nil
}

func artifactTrees(art *domain.Artifact) []domain.Digest {
	var out []domain.Digest
	for _, d := range []domain.Digest{art.Files, art.BuildTree, art.Sources} {
		if !d.IsZero() {
			out = append(out, d)
		}
	}
	return out
}

func artifactBlobs(art *domain.Artifact) []domain.Digest {
	var out []domain.Digest
	if !art.PublicData.IsZero() {
		out = append(out, art.PublicData)
	}
	for _, l := range art.Logs {
		if !l.Digest.IsZero() {
			out = append(out, l.Digest)
		}
	}
	return out
}
