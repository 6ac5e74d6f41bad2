// Package source imports element sources into the CAS.
package source

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/stratum/internal/core/ports"
	"go.trai.ch/zerr"
)

// KindLocal is the source kind naming a file or directory of the project.
const KindLocal = "local"

// Fetcher implements ports.SourceFetcher for local sources.
type Fetcher struct {
	root         string
	store        ports.ContentStore
	materializer ports.Materializer
	stager       ports.Stager
}

// NewFetcher returns a Fetcher resolving source paths against the project root.
func NewFetcher(root string, store ports.ContentStore, materializer ports.Materializer, stager ports.Stager) *Fetcher {
	return &Fetcher{root: root, store: store, materializer: materializer, stager: stager}
}

// Fetch imports every source of e and returns the digest of the combined
// tree. Each source lands below its Directory; later sources win. Elements
// without sources have a zero digest.
func (f *Fetcher) Fetch(ctx context.Context, e *domain.Element) (domain.Digest, error) {
	if len(e.Sources) == 0 {
		return domain.Digest{}, nil
	}

	layers := make([]domain.Layer, 0, len(e.Sources))
	for i, src := range e.Sources {
		tree, err := f.importSource(ctx, src)
		if err != nil {
			return domain.Digest{}, zerr.With(zerr.With(err, "element", e.Name), "source", i)
		}
		layers = append(layers, domain.Layer{
			Name: e.Name + ":" + src.Path,
			Tree: tree,
			At:   src.Directory,
		})
	}

	staged, err := f.stager.Compose(layers, domain.StagePolicy{})
	if err != nil {
		return domain.Digest{}, zerr.With(zerr.Wrap(err, domain.ErrSourceFetchFailed.Error()), "element", e.Name)
	}
	return f.store.PutTree(ctx, staged.Tree)
}

func (f *Fetcher) importSource(ctx context.Context, src domain.Source) (*domain.Node, error) {
	if src.Kind != KindLocal {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedSource, "only local sources can be fetched"), "kind", src.Kind)
	}
	host, err := f.resolve(src.Path)
	if err != nil {
		return nil, err
	}

	info, err := os.Lstat(host)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrSourceFetchFailed, err.Error()), "path", src.Path)
	}
	if info.IsDir() {
		tree, err := f.materializer.Import(ctx, host)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrSourceFetchFailed.Error()), "path", src.Path)
		}
		return tree, nil
	}
	if !info.Mode().IsRegular() {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedFileType, "sources must be files or directories"), "path", src.Path)
	}

	data, err := os.ReadFile(host) //nolint:gosec // path is confined to the project root
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrSourceFetchFailed, err.Error()), "path", src.Path)
	}
	root := domain.NewDirectory()
	root.Children[filepath.Base(host)] = domain.NewFile(data, info.Mode()&0o111 != 0)
	return root, nil
}

// resolve maps a project relative source path to the host, refusing paths
// that leave the project.
func (f *Fetcher) resolve(p string) (string, error) {
	if p == "" || path.IsAbs(p) || filepath.IsAbs(p) {
		return "", zerr.With(zerr.Wrap(domain.ErrSourceFetchFailed, "source path must be relative to the project"), "path", p)
	}
	clean := path.Clean(filepath.ToSlash(p))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", zerr.With(zerr.Wrap(domain.ErrSourceFetchFailed, "source path leaves the project"), "path", p)
	}
	return filepath.Join(f.root, filepath.FromSlash(clean)), nil
}
