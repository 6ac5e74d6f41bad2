// Package cas implements the local content addressable store, the artifact
// cache built on top of it and the transfer of both to and from a remote.
package cas

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.ContentStore on the local filesystem. Blobs live
// under objects/<hh>/<hash>, and every blob that is a directory node has an
// empty marker under trees/<hh>/<hash> so garbage collection can descend
// into it.
//
// Writers hold the session lock shared; garbage collection holds it
// exclusively, so a sweep never races an insertion. The lock spans processes
// through a lock file in the store root.
type Store struct {
	root    string
	tmp     string
	session *sessionLock
}

// NewStore opens or creates a store rooted at dir.
func NewStore(dir string) (*Store, error) {
	s := &Store{
		root:    dir,
		tmp:     filepath.Join(dir, domain.TmpDirName),
		session: &sessionLock{path: filepath.Join(dir, domain.LockFileName)},
	}
	for _, sub := range []string{domain.ObjectsDirName, domain.TreesDirName, domain.TmpDirName} {
		if err := os.MkdirAll(filepath.Join(dir, sub), domain.DirPerm); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", dir)
		}
	}
	return s, nil
}

// Root returns the directory the store lives in.
func (s *Store) Root() string {
	return s.root
}

// Put stores data and returns its digest.
func (s *Store) Put(ctx context.Context, data []byte) (domain.Digest, error) {
	if err := ctx.Err(); err != nil {
		return domain.Digest{}, err
	}
	if err := s.session.RLock(); err != nil {
		return domain.Digest{}, err
	}
	defer s.session.RUnlock()

	d := domain.NewDigest(data)
	if err := s.writeObject(d, data); err != nil {
		return domain.Digest{}, err
	}
	return d, nil
}

// Get returns the blob stored under d.
func (s *Store) Get(ctx context.Context, d domain.Digest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.session.RLock(); err != nil {
		return nil, err
	}
	defer s.session.RUnlock()

	return s.readObject(d)
}

// Has reports whether the blob for d is present.
func (s *Store) Has(ctx context.Context, d domain.Digest) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := s.session.RLock(); err != nil {
		return false, err
	}
	defer s.session.RUnlock()

	return s.hasObject(d)
}

// PutTree stores the files and directory nodes of root bottom up. File nodes
// without inline data must already be present.
func (s *Store) PutTree(ctx context.Context, root *domain.Node) (domain.Digest, error) {
	if err := s.session.RLock(); err != nil {
		return domain.Digest{}, err
	}
	defer s.session.RUnlock()

	err := root.Walk(func(p string, n *domain.Node) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if n.Kind != domain.KindFile {
			return nil
		}
		if n.Data == nil {
			ok, err := s.hasObject(n.Digest)
			if err != nil {
				return err
			}
			if !ok {
				return zerr.With(zerr.Wrap(domain.ErrNotFound, "file content missing from store"), "path", p)
			}
			return nil
		}
		if err := n.Digest.Verify(n.Data); err != nil {
			return zerr.With(err, "path", p)
		}
		return s.writeObject(n.Digest, n.Data)
	})
	if err != nil {
		return domain.Digest{}, err
	}

	return domain.EncodeTree(root, func(d domain.Digest, data []byte) error {
		if err := s.writeObject(d, data); err != nil {
			return err
		}
		return s.markTree(d)
	})
}

// GetTree reconstructs the tree whose root directory node is d. A missing
// root is domain.ErrNotFound, any missing child is domain.ErrCorruptTree.
func (s *Store) GetTree(ctx context.Context, d domain.Digest) (*domain.Node, error) {
	if err := s.session.RLock(); err != nil {
		return nil, err
	}
	defer s.session.RUnlock()

	data, err := s.readObject(d)
	if err != nil {
		return nil, err
	}
	return s.buildTree(ctx, "", data)
}

func (s *Store) buildTree(ctx context.Context, p string, data []byte) (*domain.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := domain.UnmarshalDirectory(data)
	if err != nil {
		return nil, zerr.With(err, "path", "/"+p)
	}

	node := domain.NewDirectory()
	for _, f := range dir.Files {
		ok, err := s.hasObject(f.Digest)
		if err != nil {
			return nil, err
		}
		if !ok {
			err := zerr.With(zerr.Wrap(domain.ErrCorruptTree, "file blob missing"), "path", "/"+filepath.ToSlash(filepath.Join(p, f.Name)))
			return nil, zerr.With(err, "digest", f.Digest.String())
		}
		node.Children[f.Name] = domain.NewFileRef(f.Digest, f.Executable)
	}
	for _, sub := range dir.Directories {
		subPath := filepath.ToSlash(filepath.Join(p, sub.Name))
		subData, err := s.readObject(sub.Digest)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				err := zerr.With(zerr.Wrap(domain.ErrCorruptTree, "directory node missing"), "path", "/"+subPath)
				return nil, zerr.With(err, "digest", sub.Digest.String())
			}
			return nil, err
		}
		child, err := s.buildTree(ctx, subPath, subData)
		if err != nil {
			return nil, err
		}
		node.Children[sub.Name] = child
	}
	for _, l := range dir.Symlinks {
		node.Children[l.Name] = domain.NewSymlink(l.Target)
	}
	return node, nil
}

func (s *Store) objectPath(d domain.Digest) string {
	return filepath.Join(s.root, domain.ObjectsDirName, d.Hash[:2], d.Hash)
}

func (s *Store) treeMarkerPath(d domain.Digest) string {
	return filepath.Join(s.root, domain.TreesDirName, d.Hash[:2], d.Hash)
}

func (s *Store) hasObject(d domain.Digest) (bool, error) {
	if err := d.Validate(); err != nil {
		return false, err
	}
	info, err := os.Stat(s.objectPath(d))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}
	return info.Size() == d.Size, nil
}

func (s *Store) readObject(d domain.Digest) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	//nolint:gosec // Path is built from a validated hex digest
	data, err := os.ReadFile(s.objectPath(d))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrNotFound, "blob not in store"), "digest", d.String())
		}
		return nil, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}
	if err := d.Verify(data); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrCorruptBlob, "stored blob does not match its digest"), "digest", d.String())
	}
	return data, nil
}

// writeObject stores data under d unless it is already present. The write
// goes through a temp file and an atomic rename, so concurrent writers of
// the same digest all succeed with identical content.
func (s *Store) writeObject(d domain.Digest, data []byte) error {
	if ok, err := s.hasObject(d); err != nil || ok {
		return err
	}
	path := s.objectPath(d)
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}
	if err := renameio.WriteFile(path, data, domain.FilePerm, renameio.WithTempDir(s.tmp)); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "digest", d.String())
	}
	return nil
}

func (s *Store) markTree(d domain.Digest) error {
	path := s.treeMarkerPath(d)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}
	if err := renameio.WriteFile(path, nil, domain.FilePerm, renameio.WithTempDir(s.tmp)); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	return nil
}

func (s *Store) isTree(d domain.Digest) bool {
	_, err := os.Stat(s.treeMarkerPath(d))
	return err == nil
}

// Size returns the number of bytes held by stored blobs.
func (s *Store) Size(ctx context.Context) (int64, error) {
	if err := s.session.RLock(); err != nil {
		return 0, err
	}
	defer s.session.RUnlock()

	var total int64
	err := filepath.WalkDir(filepath.Join(s.root, domain.ObjectsDirName), func(_ string, entry fs.DirEntry, err error) error {
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
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}
	return total, nil
}
