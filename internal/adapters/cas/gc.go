package cas

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/zerr"
)

// GCStats summarizes a garbage collection pass.
type GCStats struct {
	Kept         int
	Removed      int
	BytesRemoved int64
}

// CollectGarbage removes every blob not reachable from roots. It takes the
// session lock exclusively and waits for in-flight writers to finish, in this
// process and in every other one sharing the store.
func (s *Store) CollectGarbage(ctx context.Context, roots []domain.Digest) (GCStats, error) {
	if err := s.session.Lock(); err != nil {
		return GCStats{}, err
	}
	defer s.session.Unlock()

	live := make(map[string]bool)
	for _, root := range roots {
		if err := s.mark(ctx, root, live); err != nil {
			return GCStats{}, err
		}
	}

	var stats GCStats
	objects := filepath.Join(s.root, domain.ObjectsDirName)
	err := filepath.WalkDir(objects, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if entry.IsDir() {
			return nil
		}
		hash := entry.Name()
		if live[hash] {
			stats.Kept++
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		if len(hash) >= 2 {
			_ = os.Remove(filepath.Join(s.root, domain.TreesDirName, hash[:2], hash))
		}
		stats.Removed++
		stats.BytesRemoved += info.Size()
		return nil
	})
	if err != nil {
		return stats, zerr.Wrap(err, "garbage collection failed")
	}

	// Nothing is writing, so leftovers in the temp area are from interrupted writes.
	entries, err := os.ReadDir(s.tmp)
	if err == nil {
		for _, e := range entries {
			_ = os.RemoveAll(filepath.Join(s.tmp, e.Name()))
		}
	}

	return stats, nil
}

// mark records d and everything below it as live. Roots that are no longer
// present are ignored.
func (s *Store) mark(ctx context.Context, d domain.Digest, live map[string]bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.Validate() != nil || live[d.Hash] {
		return nil
	}
	live[d.Hash] = true
	if !s.isTree(d) {
		return nil
	}

	data, err := s.readObject(d)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	dir, err := domain.UnmarshalDirectory(data)
	if err != nil {
		return err
	}
	for _, child := range dir.ChildDigests() {
		if err := s.mark(ctx, child, live); err != nil {
			return err
		}
	}
	return nil
}

// Reachable returns every digest reachable from root, root included.
func (s *Store) Reachable(ctx context.Context, root domain.Digest) ([]domain.Digest, error) {
	if err := s.session.RLock(); err != nil {
		return nil, err
	}
	defer s.session.RUnlock()

	var out []domain.Digest
	seen := make(map[domain.Digest]bool)
	var visit func(d domain.Digest) error
	visit = func(d domain.Digest) error {
		if seen[d] {
			return nil
		}
		seen[d] = true
		out = append(out, d)

		data, err := s.readObject(d)
		if err != nil {
			return err
		}
		dir, err := domain.UnmarshalDirectory(data)
		if err != nil {
			return err
		}
		for _, f := range dir.Files {
			if !seen[f.Digest] {
				seen[f.Digest] = true
				out = append(out, f.Digest)
			}
		}
		for _, sub := range dir.Directories {
			if err := visit(sub.Digest); err != nil {
				return err
			}
		}
		return ctx.Err()
	}
	if err := visit(root); err != nil {
		return nil, err
	}
	return out, nil
}
