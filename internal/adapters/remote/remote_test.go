package remote_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	casv1 "go.trai.ch/stratum/api/cas/v1"
	"go.trai.ch/stratum/internal/adapters/cas"
	"go.trai.ch/stratum/internal/adapters/remote"
	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/stratum/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
)

type server struct {
	store *cas.Store
	refs  *cas.ArtifactCache
	lis   *bufconn.Listener
}

// startServer serves a fresh store over an in-memory listener.
func startServer(t *testing.T) *server {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()

	dir := t.TempDir()
	store, err := cas.NewStore(domain.CASPath(dir))
	require.NoError(t, err)
	refs, err := cas.NewArtifactCache(store, domain.RefsPath(dir), "", nil)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- remote.NewServer(store, refs, logger).Serve(ctx, lis)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return &server{store: store, refs: refs, lis: lis}
}

func (s *server) dial(t *testing.T) *remote.Client {
	t.Helper()
	client, err := remote.Dial("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return s.lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClient_Blobs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := startServer(t)
	client := srv.dial(t)

	hello, empty, absent := []byte("hello"), []byte{}, []byte("absent")
	dHello, dEmpty, dAbsent := domain.NewDigest(hello), domain.NewDigest(empty), domain.NewDigest(absent)

	missing, err := client.FindMissing(ctx, []domain.Digest{dHello, dEmpty})
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.Digest{dHello, dEmpty}, missing)

	require.NoError(t, client.Upload(ctx, map[domain.Digest][]byte{dHello: hello, dEmpty: empty}))

	missing, err = client.FindMissing(ctx, []domain.Digest{dHello, dEmpty, dAbsent})
	require.NoError(t, err)
	assert.Equal(t, []domain.Digest{dAbsent}, missing)

	ok, err := srv.store.Has(ctx, dHello)
	require.NoError(t, err)
	assert.True(t, ok)

	blobs, err := client.Download(ctx, []domain.Digest{dHello, dEmpty, dAbsent})
	require.NoError(t, err)
	assert.Len(t, blobs, 2)
	assert.Equal(t, hello, blobs[dHello])
	assert.Empty(t, blobs[dEmpty])
	assert.NotContains(t, blobs, dAbsent)
}

// The wire digest must encode exactly like the one embedded in directory
// nodes, or tree digests would differ between the two.
func TestDigest_WireMatchesDirectoryEncoding(t *testing.T) {
	t.Parallel()
	for _, data := range [][]byte{nil, []byte("hello")} {
		d := domain.NewDigest(data)
		b, err := proto.MarshalOptions{Deterministic: true}.Marshal(&casv1.Digest{Hash: d.Hash, SizeBytes: d.Size})
		require.NoError(t, err)
		assert.Equal(t, domain.MarshalDigest(d), b)
	}
}

// TestServer_GeneratedClient talks to the server with the plain generated
// stubs, as any other implementation of the protocol would.
func TestServer_GeneratedClient(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := startServer(t)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return srv.lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	client := casv1.NewContentAddressableStorageClient(conn)

	d := domain.NewDigest([]byte("hello"))
	_, err = srv.store.Put(ctx, []byte("hello"))
	require.NoError(t, err)

	resp, err := client.BatchReadBlobs(ctx, &casv1.BatchReadBlobsRequest{
		Digests: []*casv1.Digest{{Hash: d.Hash, SizeBytes: d.Size}},
	})
	require.NoError(t, err)
	require.Len(t, resp.GetResponses(), 1)
	assert.Equal(t, int32(codes.OK), resp.GetResponses()[0].GetCode())
	assert.Equal(t, "hello", string(resp.GetResponses()[0].GetData()))

	_, err = client.FindMissingBlobs(ctx, &casv1.FindMissingBlobsRequest{
		BlobDigests: []*casv1.Digest{{Hash: "not-hex", SizeBytes: 1}},
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestClient_UploadRejectsMismatch(t *testing.T) {
	t.Parallel()
	client := startServer(t).dial(t)

	d := domain.NewDigest([]byte("expected"))
	err := client.Upload(context.Background(), map[domain.Digest][]byte{d: []byte("tampered")})
	require.ErrorIs(t, err, domain.ErrDigestMismatch)
	assert.True(t, domain.IsRetryable(err))
}

func TestClient_GetTree(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := startServer(t)
	client := srv.dial(t)

	tree := domain.NewDirectory()
	require.NoError(t, tree.Insert("usr/bin/tool", domain.NewFile([]byte("#!/bin/sh\n"), true)))
	require.NoError(t, tree.Insert("usr/share/doc/README", domain.NewFile([]byte("docs"), false)))
	root, err := srv.store.PutTree(ctx, tree)
	require.NoError(t, err)

	dirs, err := client.GetTree(ctx, root)
	require.NoError(t, err)
	// root, usr, usr/bin, usr/share, usr/share/doc
	require.Len(t, dirs, 5)
	assert.Equal(t, root, domain.NewDigest(dirs[0]))

	_, err = client.GetTree(ctx, domain.NewDigest([]byte("no such tree")))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClient_Artifacts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := startServer(t)
	client := srv.dial(t)

	_, err := client.GetArtifact(ctx, "demo/app/missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	files := domain.NewDigest([]byte("not uploaded"))
	art := &domain.Artifact{Version: domain.ArtifactVersion, BuildSuccess: true, StrongKey: "k", Files: files}
	err = client.UpdateArtifact(ctx, "demo/app/k", art.Marshal())
	require.Error(t, err, "refs must not point at missing content")

	art.Files = domain.Digest{}
	require.NoError(t, client.UpdateArtifact(ctx, "demo/app/k", art.Marshal()))
	data, err := client.GetArtifact(ctx, "demo/app/k")
	require.NoError(t, err)
	assert.Equal(t, art.Marshal(), data)

	err = client.UpdateArtifact(ctx, "demo/app/bad", []byte{0xff})
	assert.Error(t, err)
}

func TestClient_UnavailableIsRetryable(t *testing.T) {
	t.Parallel()
	srv := startServer(t)
	client := srv.dial(t)
	require.NoError(t, srv.lis.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := client.FindMissing(ctx, []domain.Digest{domain.NewDigest([]byte("x"))})
	require.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	assert.True(t, domain.IsRetryable(err))
}

// TestArtifactCache_PushPull moves an artifact between two machines through
// the server.
func TestArtifactCache_PushPull(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := startServer(t)

	open := func() (*cas.ArtifactCache, *cas.Store) {
		dir := t.TempDir()
		store, err := cas.NewStore(domain.CASPath(dir))
		require.NoError(t, err)
		cache, err := cas.NewArtifactCache(store, domain.RefsPath(dir), "demo", srv.dial(t))
		require.NoError(t, err)
		return cache, store
	}
	builder, builderStore := open()
	consumer, consumerStore := open()

	tree := domain.NewDirectory()
	require.NoError(t, tree.Insert("usr/lib/libdemo.so", domain.NewFile([]byte("ELF"), true)))
	require.NoError(t, tree.Insert("usr/lib/libdemo.so.1", domain.NewSymlink("libdemo.so")))
	files, err := builderStore.PutTree(ctx, tree)
	require.NoError(t, err)
	log, err := builderStore.Put(ctx, []byte("make: done\n"))
	require.NoError(t, err)
	art := &domain.Artifact{
		Version:      domain.ArtifactVersion,
		BuildSuccess: true,
		StrongKey:    "strong-1",
		WeakKey:      "weak-1",
		Files:        files,
		Logs:         []domain.LogFile{{Name: "build.log", Digest: log}},
	}
	require.NoError(t, builder.Store(ctx, "lib", art))

	pushed, err := builder.Push(ctx, "lib", "strong-1")
	require.NoError(t, err)
	assert.True(t, pushed)

	pulled, err := consumer.Pull(ctx, "lib", "weak-1")
	require.NoError(t, err)
	require.True(t, pulled)

	got, err := consumer.Lookup(ctx, "lib", "strong-1")
	require.NoError(t, err)
	assert.Equal(t, files, got.Files)
	logData, err := consumerStore.Get(ctx, log)
	require.NoError(t, err)
	assert.Equal(t, "make: done\n", string(logData))

	pulled, err = consumer.Pull(ctx, "lib", "strong-2")
	require.NoError(t, err)
	assert.False(t, pulled)
}
