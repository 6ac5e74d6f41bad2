package cas

import (
	"context"

	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/stratum/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const (
	// maxBatchBytes bounds the payload of a single upload or download call.
	maxBatchBytes = 4 << 20
	// transferConcurrency is the number of batches in flight at once.
	transferConcurrency = 4
)

// Push uploads the given blobs to remote, skipping those it already has.
// It returns the number of blobs sent.
func (s *Store) Push(ctx context.Context, remote ports.Remote, digests []domain.Digest) (int, error) {
	if len(digests) == 0 {
		return 0, nil
	}
	missing, err := remote.FindMissing(ctx, digests)
	if err != nil {
		return 0, err
	}
	if len(missing) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(transferConcurrency)
	for _, batch := range batches(missing) {
		g.Go(func() error {
			blobs := make(map[domain.Digest][]byte, len(batch))
			for _, d := range batch {
				data, err := s.Get(gctx, d)
				if err != nil {
					return err
				}
				blobs[d] = data
			}
			return remote.Upload(gctx, blobs)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(missing), nil
}

// PushTree uploads the tree rooted at root together with all its content.
func (s *Store) PushTree(ctx context.Context, remote ports.Remote, root domain.Digest) (int, error) {
	digests, err := s.Reachable(ctx, root)
	if err != nil {
		return 0, err
	}
	return s.Push(ctx, remote, digests)
}

// Pull downloads the given blobs from remote unless they are present
// locally. Every received blob is verified before it is stored. A blob the
// remote does not have is domain.ErrNotFound.
func (s *Store) Pull(ctx context.Context, remote ports.Remote, digests []domain.Digest) (int, error) {
	var missing []domain.Digest
	seen := make(map[domain.Digest]bool, len(digests))
	for _, d := range digests {
		if seen[d] {
			continue
		}
		seen[d] = true
		ok, err := s.Has(ctx, d)
		if err != nil {
			return 0, err
		}
		if !ok {
			missing = append(missing, d)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(transferConcurrency)
	for _, batch := range batches(missing) {
		g.Go(func() error {
			blobs, err := remote.Download(gctx, batch)
			if err != nil {
				return err
			}
			return s.storeDownloaded(gctx, batch, blobs)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(missing), nil
}

func (s *Store) storeDownloaded(ctx context.Context, want []domain.Digest, blobs map[domain.Digest][]byte) error {
	if err := s.session.RLock(); err != nil {
		return err
	}
	defer s.session.RUnlock()

	for _, d := range want {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, ok := blobs[d]
		if !ok {
			return zerr.With(zerr.Wrap(domain.ErrNotFound, "blob missing on remote"), "digest", d.String())
		}
		if err := d.Verify(data); err != nil {
			return err
		}
		if err := s.writeObject(d, data); err != nil {
			return err
		}
	}
	return nil
}

// PullTree fetches the directory nodes and file content of root from remote.
// The nodes are verified from the root down before any of them is stored: the
// root must hash to root and every sub directory to the digest its parent
// names. The tree is complete locally when PullTree returns without error.
func (s *Store) PullTree(ctx context.Context, remote ports.Remote, root domain.Digest) (int, error) {
	if _, err := s.GetTree(ctx, root); err == nil {
		return 0, nil
	}

	nodes, err := remote.GetTree(ctx, root)
	if err != nil {
		return 0, err
	}
	if len(nodes) == 0 {
		return 0, zerr.With(zerr.Wrap(domain.ErrNotFound, "tree missing on remote"), "digest", root.String())
	}

	verified, files, err := verifyTree(root, nodes)
	if err != nil {
		return 0, err
	}

	if err := func() error {
		if err := s.session.RLock(); err != nil {
			return err
		}
		defer s.session.RUnlock()
		for _, node := range verified {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.writeObject(node.digest, node.data); err != nil {
				return err
			}
			if err := s.markTree(node.digest); err != nil {
				return err
			}
		}
		return nil
	}(); err != nil {
		return 0, err
	}

	n, err := s.Pull(ctx, remote, files)
	if err != nil {
		return 0, err
	}
	if _, err := s.GetTree(ctx, root); err != nil {
		return 0, err
	}
	return len(verified) + n, nil
}

type treeNode struct {
	digest domain.Digest
	data   []byte
}

// verifyTree walks nodes from root and returns the reachable directory nodes
// in walk order along with the file digests they reference. A node that is
// referenced but not among nodes is domain.ErrDigestMismatch, since the
// remote answered with something else in its place.
func verifyTree(root domain.Digest, nodes [][]byte) ([]treeNode, []domain.Digest, error) {
	byDigest := make(map[domain.Digest][]byte, len(nodes))
	for _, data := range nodes {
		byDigest[domain.NewDigest(data)] = data
	}

	var (
		out   []treeNode
		files []domain.Digest
	)
	seen := make(map[domain.Digest]bool)
	queue := []domain.Digest{root}
	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]
		if seen[d] {
			continue
		}
		seen[d] = true

		data, ok := byDigest[d]
		if !ok {
			err := zerr.Wrap(domain.ErrDigestMismatch, "remote tree has no node matching a referenced digest")
			return nil, nil, zerr.With(zerr.With(err, "digest", d.String()), "root", root.String())
		}
		dir, err := domain.UnmarshalDirectory(data)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, treeNode{digest: d, data: data})
		for _, f := range dir.Files {
			if !seen[f.Digest] {
				seen[f.Digest] = true
				files = append(files, f.Digest)
			}
		}
		for _, sub := range dir.Directories {
			queue = append(queue, sub.Digest)
		}
	}
	return out, files, nil
}

// batches splits digests into groups whose total size stays under
// maxBatchBytes. A single oversized blob gets a batch of its own.
func batches(digests []domain.Digest) [][]domain.Digest {
	var (
		out  [][]domain.Digest
		cur  []domain.Digest
		size int64
	)
	for _, d := range digests {
		if len(cur) > 0 && size+d.Size > maxBatchBytes {
			out = append(out, cur)
			cur, size = nil, 0
		}
		cur = append(cur, d)
		size += d.Size
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}
