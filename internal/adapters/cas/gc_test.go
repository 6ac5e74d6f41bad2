package cas_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stratum/internal/adapters/cas"
	"go.trai.ch/stratum/internal/core/domain"
)

func TestStore_CollectGarbage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, _ := newStore(t)

	kept, err := store.PutTree(ctx, sampleTree(t))
	require.NoError(t, err)

	loose, err := store.Put(ctx, []byte("garbage"))
	require.NoError(t, err)

	other := domain.NewDirectory()
	require.NoError(t, other.Insert("only/here", domain.NewFile([]byte("unreferenced file"), false)))
	dropped, err := store.PutTree(ctx, other)
	require.NoError(t, err)

	stats, err := store.CollectGarbage(ctx, []domain.Digest{kept})
	require.NoError(t, err)
	assert.Positive(t, stats.Removed)
	assert.Positive(t, stats.BytesRemoved)

	_, err = store.GetTree(ctx, kept)
	require.NoError(t, err, "reachable tree must survive")

	ok, err := store.Has(ctx, loose)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.GetTree(ctx, dropped)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ok, err = store.Has(ctx, domain.NewDigest([]byte("unreferenced file")))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_CollectGarbageKeepsBlobRoots(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, _ := newStore(t)

	log, err := store.Put(ctx, []byte("build log"))
	require.NoError(t, err)

	stats, err := store.CollectGarbage(ctx, []domain.Digest{log, domain.NewDigest([]byte("gone"))})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Kept)
	assert.Zero(t, stats.Removed)

	ok, err := store.Has(ctx, log)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_Reachable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, _ := newStore(t)

	root, err := store.PutTree(ctx, sampleTree(t))
	require.NoError(t, err)

	digests, err := store.Reachable(ctx, root)
	require.NoError(t, err)
	assert.Contains(t, digests, root)
	assert.Contains(t, digests, domain.NewDigest([]byte("readme")))
	// root, usr, usr/bin, usr/share, usr/share/doc, usr/lib, var, var/empty and two files
	assert.Len(t, digests, 10)
}

// Two stores opened on one directory stand in for two processes: each holds
// its own lock file description, so only flock orders them.
func TestStore_CollectGarbageWaitsForWritersOfOtherStores(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	writer, err := cas.NewStore(dir)
	require.NoError(t, err)
	collector, err := cas.NewStore(dir)
	require.NoError(t, err)

	stray, err := writer.Put(ctx, []byte("written by another process"))
	require.NoError(t, err)

	release, err := cas.HoldShared(writer)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := collector.CollectGarbage(ctx, nil)
		done <- err
	}()

	assert.Never(t, func() bool { return len(done) > 0 }, 200*time.Millisecond, 10*time.Millisecond,
		"collection must wait while another store has a writer")
	ok, err := writer.Has(ctx, stray)
	require.NoError(t, err)
	assert.True(t, ok, "the writer keeps working under its own shared hold")

	release()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("collection did not resume after the writer finished")
	}

	ok, err = writer.Has(ctx, stray)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_WritersWaitForCollectionInOtherStores(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	writer, err := cas.NewStore(dir)
	require.NoError(t, err)
	collector, err := cas.NewStore(dir)
	require.NoError(t, err)

	release, err := cas.HoldExclusive(collector)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := writer.Put(ctx, []byte("late"))
		done <- err
	}()

	assert.Never(t, func() bool { return len(done) > 0 }, 200*time.Millisecond, 10*time.Millisecond,
		"a writer must wait while another store collects")

	release()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("writer did not resume after the collection finished")
	}
}
