package cas

import (
	"context"
	"encoding/binary"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const (
	checkoutConcurrency = 8
	// statCacheEntries bounds the stat cache; the least recently used
	// entries are evicted first.
	statCacheEntries = 1 << 16
)

// Materializer implements ports.Materializer on top of a Store.
//
// It keeps a stat cache keyed on file identity: device, inode, size,
// modification time and mode. Checkout seeds it for every file it
// writes, so when a sandbox is captured the files the build left alone are
// not read and hashed again.
type Materializer struct {
	store *Store
	stats *lru.Cache[uint64, domain.Digest]
}

// NewMaterializer returns a Materializer backed by store.
func NewMaterializer(store *Store) *Materializer {
	stats, err := lru.New[uint64, domain.Digest](statCacheEntries)
	if err != nil {
		// Only a non-positive size is rejected.
		panic(err)
	}
	return &Materializer{store: store, stats: stats}
}

// Import captures dir into the store. Symlinks are recorded verbatim and
// never followed. Device nodes, sockets and pipes are rejected.
func (m *Materializer) Import(ctx context.Context, dir string) (*domain.Node, error) {
	info, err := os.Lstat(dir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "cannot import directory"), "path", dir)
	}
	if !info.IsDir() {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedFileType, "import root is not a directory"), "path", dir)
	}

	root := domain.NewDirectory()
	err = filepath.WalkDir(dir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if p == dir {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		info, err := entry.Info()
		if err != nil {
			return err
		}
		node, err := m.importEntry(ctx, p, info)
		if err != nil {
			return zerr.With(err, "path", rel)
		}
		return root.Insert(rel, node)
	})
	if err != nil {
		return nil, err
	}
	return root, nil
}

func (m *Materializer) importEntry(ctx context.Context, p string, info fs.FileInfo) (*domain.Node, error) {
	mode := info.Mode()
	switch {
	case mode.IsDir():
		return domain.NewDirectory(), nil
	case mode&fs.ModeSymlink != 0:
		target, err := os.Readlink(p)
		if err != nil {
			return nil, err
		}
		return domain.NewSymlink(target), nil
	case mode.IsRegular():
		executable := mode.Perm()&0o111 != 0
		key, keyed := statKey(info)
		if d, ok := m.stats.Get(key); keyed && ok {
			present, err := m.store.Has(ctx, d)
			if err != nil {
				return nil, err
			}
			if present {
				return domain.NewFileRef(d, executable), nil
			}
		}
		//nolint:gosec // Importing files the build produced is the point
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		d, err := m.store.Put(ctx, data)
		if err != nil {
			return nil, err
		}
		if keyed {
			m.stats.Add(key, d)
		}
		return domain.NewFileRef(d, executable), nil
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedFileType, "cannot import special file"), "mode", mode.String())
	}
}

// statKey identifies the file behind info independently of the path it is
// reached through. It reports false when the platform gives no inode.
func statKey(info fs.FileInfo) (uint64, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	var buf [40]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(st.Dev)) //nolint:unconvert // Dev is 32 bits on some platforms
	binary.LittleEndian.PutUint64(buf[8:], st.Ino)
	binary.LittleEndian.PutUint64(buf[16:], uint64(info.Size()))
	binary.LittleEndian.PutUint64(buf[24:], uint64(info.ModTime().UnixNano()))
	binary.LittleEndian.PutUint64(buf[32:], uint64(info.Mode()))
	return xxhash.Sum64(buf[:]), true
}

// Checkout writes tree into dir. dir must be missing or empty. Files are
// created exclusively and never through a symlink, so a staged link cannot
// redirect a write outside dir.
func (m *Materializer) Checkout(ctx context.Context, tree *domain.Node, dir string) error {
	if !tree.IsDir() {
		return zerr.With(zerr.Wrap(domain.ErrInvalidNode, "checkout root is not a directory"), "path", dir)
	}
	if err := ensureEmptyDir(dir); err != nil {
		return err
	}

	type pending struct {
		path string
		node *domain.Node
	}
	var (
		files    []pending
		symlinks []pending
	)
	err := tree.Walk(func(p string, n *domain.Node) error {
		host := filepath.Join(dir, filepath.FromSlash(p))
		switch n.Kind {
		case domain.KindDirectory:
			if err := os.Mkdir(host, domain.ExecPerm); err != nil {
				return zerr.With(zerr.Wrap(err, domain.ErrSandboxCreateFailed.Error()), "path", p)
			}
		case domain.KindFile:
			files = append(files, pending{host, n})
		case domain.KindSymlink:
			symlinks = append(symlinks, pending{host, n})
		}
		return nil
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(checkoutConcurrency)
	for _, f := range files {
		g.Go(func() error {
			return m.writeFile(gctx, f.path, f.node)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, l := range symlinks {
		if err := os.Symlink(l.node.Target, l.path); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrSandboxCreateFailed.Error()), "path", l.path)
		}
	}
	return nil
}

func (m *Materializer) writeFile(ctx context.Context, host string, n *domain.Node) error {
	data := n.Data
	if data == nil {
		var err error
		data, err = m.store.Get(ctx, n.Digest)
		if err != nil {
			return zerr.With(err, "path", host)
		}
	}
	perm := os.FileMode(domain.FilePerm)
	if n.Executable {
		perm = domain.ExecPerm
	}
	//nolint:gosec // host is inside the sandbox directory
	f, err := os.OpenFile(host, os.O_WRONLY|os.O_CREATE|os.O_EXCL|syscall.O_NOFOLLOW, perm)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrSandboxCreateFailed.Error()), "path", host)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return zerr.With(zerr.Wrap(err, domain.ErrSandboxCreateFailed.Error()), "path", host)
	}
	if err := f.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrSandboxCreateFailed.Error()), "path", host)
	}
	// The umask may have dropped bits.
	if err := os.Chmod(host, perm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrSandboxCreateFailed.Error()), "path", host)
	}
	if info, err := os.Lstat(host); err == nil {
		if key, ok := statKey(info); ok {
			m.stats.Add(key, n.Digest)
		}
	}
	return nil
}

func ensureEmptyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrSandboxCreateFailed.Error()), "path", dir)
		}
		return nil
	case err != nil:
		return zerr.With(zerr.Wrap(err, domain.ErrSandboxCreateFailed.Error()), "path", dir)
	case len(entries) > 0:
		return zerr.With(zerr.Wrap(domain.ErrSandboxCreateFailed, "checkout directory is not empty"), "path", dir)
	}
	return nil
}
