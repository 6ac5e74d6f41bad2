package cas_test

import (
	"context"
	"sync"

	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/zerr"
)

// memRemote is an in-memory ports.Remote.
type memRemote struct {
	mu        sync.Mutex
	blobs     map[domain.Digest][]byte
	artifacts map[string][]byte
	uploads   int
	// corrupt, when set, is returned in place of every downloaded blob.
	corrupt []byte
	// tree, when set, is returned by GetTree in place of the real nodes.
	tree [][]byte
}

func newMemRemote() *memRemote {
	return &memRemote{
		blobs:     make(map[domain.Digest][]byte),
		artifacts: make(map[string][]byte),
	}
}

func (r *memRemote) FindMissing(_ context.Context, digests []domain.Digest) ([]domain.Digest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Digest
	for _, d := range digests {
		if _, ok := r.blobs[d]; !ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memRemote) Upload(_ context.Context, blobs map[domain.Digest][]byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for d, data := range blobs {
		r.blobs[d] = data
		r.uploads++
	}
	return nil
}

func (r *memRemote) Download(_ context.Context, digests []domain.Digest) (map[domain.Digest][]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[domain.Digest][]byte)
	for _, d := range digests {
		if data, ok := r.blobs[d]; ok {
			if r.corrupt != nil {
				data = r.corrupt
			}
			out[d] = data
		}
	}
	return out, nil
}

func (r *memRemote) GetTree(_ context.Context, root domain.Digest) ([][]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tree != nil {
		return r.tree, nil
	}
	var out [][]byte
	queue := []domain.Digest{root}
	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]
		data, ok := r.blobs[d]
		if !ok {
			continue
		}
		dir, err := domain.UnmarshalDirectory(data)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
		for _, sub := range dir.Directories {
			queue = append(queue, sub.Digest)
		}
	}
	return out, nil
}

func (r *memRemote) GetArtifact(_ context.Context, ref string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.artifacts[ref]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrNotFound, "no artifact"), "ref", ref)
	}
	return data, nil
}

func (r *memRemote) UpdateArtifact(_ context.Context, ref string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.artifacts[ref] = data
	return nil
}

func (r *memRemote) Close() error { return nil }
