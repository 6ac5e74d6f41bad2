package app_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stratum/internal/adapters/cas"
	"go.trai.ch/stratum/internal/adapters/remote"
	"go.trai.ch/stratum/internal/adapters/sandbox"
	"go.trai.ch/stratum/internal/app"
	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/stratum/internal/core/ports"
	"go.trai.ch/stratum/internal/core/ports/mocks"
	"go.trai.ch/stratum/internal/engine/kinds"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

type dialerFunc func(url string) (ports.Remote, error)

func (f dialerFunc) Dial(url string) (ports.Remote, error) { return f(url) }

type fixture struct {
	app      *app.App
	out      *bytes.Buffer
	project  *domain.Project
	executor *mocks.MockExecutor
}

// newFixture sets up a project with an imported sysroot, a manual element
// built on top of it and a stack of both.
func newFixture(t *testing.T, dialer app.Dialer) *fixture {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()
	executor := mocks.NewMockExecutor(ctrl)
	loader := mocks.NewMockConfigLoader(ctrl)

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sysroot", "bin"), domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sysroot", "bin", "sh"), []byte("#!"), domain.ExecPerm))

	g := domain.NewGraph()
	require.NoError(t, g.AddElement(&domain.Element{
		Name:    "base",
		Kind:    "import",
		Sources: []domain.Source{{Kind: "local", Path: "sysroot"}},
	}))
	require.NoError(t, g.AddElement(&domain.Element{
		Name:         "hello",
		Kind:         "manual",
		Dependencies: []domain.Dependency{{Name: "base", Type: domain.DepAll}},
		Commands:     []string{"make install"},
		Environment:  map[string]string{"DESTDIR": "%{install-root}"},
	}))
	require.NoError(t, g.AddElement(&domain.Element{
		Name:         "system",
		Kind:         "stack",
		Dependencies: []domain.Dependency{{Name: "hello", Type: domain.DepAll}, {Name: "base", Type: domain.DepAll}},
	}))
	require.NoError(t, g.Validate())

	p := &domain.Project{
		Name:      "demo",
		Root:      root,
		Graph:     g,
		Cache:     domain.CacheSettings{Dir: filepath.Join(root, domain.StateDirName), BuildTrees: domain.BuildTreesNever},
		Scheduler: domain.DefaultSchedulerSettings(),
	}
	if dialer != nil {
		p.Remote = domain.RemoteSettings{URL: "grpc://cache", Pull: true}
	}
	loader.EXPECT().Load(gomock.Any()).Return(p, nil).AnyTimes()

	out := &bytes.Buffer{}
	a := app.New(loader, log, &cas.Opener{}, dialer, sandbox.NewStager(), executor, kinds.NewRegistry()).
		WithOutput(out).
		WithWorkDir(root)
	return &fixture{app: a, out: out, project: p, executor: executor}
}

func installFile(_ context.Context, inv domain.Invocation, out io.Writer) error {
	_, _ = io.WriteString(out, "installing\n")
	if inv.Env["DESTDIR"] == "" {
		return errors.New("DESTDIR not set")
	}
	dir := filepath.Join(inv.Env["DESTDIR"], "usr", "bin")
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "hello"), []byte("hello"), domain.ExecPerm)
}

func TestApp_Build(t *testing.T) {
	f := newFixture(t, nil)
	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(installFile).Times(1)

	require.NoError(t, f.app.Build(context.Background(), nil, app.BuildOptions{}))
	assert.Contains(t, f.out.String(), "✓ base    built")
	assert.Contains(t, f.out.String(), "✓ hello   built")
	assert.Contains(t, f.out.String(), "3 elements: 3 built, 0 cached, 0 failed, 0 not run")

	// Everything is cached the second time round.
	f.out.Reset()
	require.NoError(t, f.app.Build(context.Background(), []string{"system"}, app.BuildOptions{}))
	assert.Contains(t, f.out.String(), "~ hello   cached")
	assert.Contains(t, f.out.String(), "3 elements: 0 built, 3 cached, 0 failed, 0 not run")

	f.out.Reset()
	statuses, err := f.app.Show(context.Background(), []string{"hello"})
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, "base", statuses[0].Name)
	assert.Equal(t, app.StatusCached, statuses[1].Status)
	assert.Contains(t, f.out.String(), "hello  manual")

	require.NoError(t, f.app.GC(context.Background()))
	statuses, err = f.app.Show(context.Background(), nil)
	require.NoError(t, err)
	for _, s := range statuses {
		assert.Equal(t, app.StatusCached, s.Status, s.Name)
	}
}

func TestApp_BuildFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("exit status 2")).Times(1)

	err := f.app.Build(context.Background(), nil, app.BuildOptions{})
	require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.Contains(t, f.out.String(), "✗ hello   failed")
	assert.Contains(t, f.out.String(), "3 elements: 1 built, 0 cached, 1 failed, 1 not run")

	// The failure is cached, so show reports it without building.
	statuses, err := f.app.Show(context.Background(), []string{"hello"})
	require.NoError(t, err)
	assert.Equal(t, app.StatusFailed, statuses[1].Status)
}

func TestApp_ShowMissingAndWeak(t *testing.T) {
	f := newFixture(t, nil)
	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(installFile).Times(1)

	statuses, err := f.app.Show(context.Background(), nil)
	require.NoError(t, err)
	for _, s := range statuses {
		assert.Equal(t, app.StatusMissing, s.Status, s.Name)
	}

	require.NoError(t, f.app.Build(context.Background(), nil, app.BuildOptions{}))

	// A changed sysroot changes every strong key but only the weak key of base.
	require.NoError(t, os.WriteFile(filepath.Join(f.project.Root, "sysroot", "README"), []byte("new"), domain.FilePerm))
	statuses, err = f.app.Show(context.Background(), []string{"hello"})
	require.NoError(t, err)
	assert.Equal(t, app.StatusMissing, statuses[0].Status)
	assert.Equal(t, app.StatusWeakCached, statuses[1].Status)
}

func TestApp_UnknownTarget(t *testing.T) {
	f := newFixture(t, nil)
	err := f.app.Build(context.Background(), []string{"nope"}, app.BuildOptions{})
	require.ErrorIs(t, err, domain.ErrElementNotFound)
}

func TestApp_PushWithoutRemote(t *testing.T) {
	f := newFixture(t, nil)
	err := f.app.Push(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrRemoteNotConfigured)
}

func TestApp_PushPull(t *testing.T) {
	ctrl := gomock.NewController(t)
	serverLog := mocks.NewMockLogger(ctrl)
	serverLog.EXPECT().Info(gomock.Any()).AnyTimes()

	dir := t.TempDir()
	store, err := cas.NewStore(domain.CASPath(dir))
	require.NoError(t, err)
	refs, err := cas.NewArtifactCache(store, domain.RefsPath(dir), "", nil)
	require.NoError(t, err)
	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- remote.NewServer(store, refs, serverLog).Serve(ctx, lis) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	dialer := dialerFunc(func(string) (ports.Remote, error) {
		c, err := remote.Dial("passthrough:///bufnet", grpc.WithContextDialer(
			func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
		if err != nil {
			return nil, err
		}
		return c, nil
	})

	producer := newFixture(t, dialer)
	producer.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(installFile).Times(1)
	require.NoError(t, producer.app.Build(context.Background(), nil, app.BuildOptions{}))
	require.NoError(t, producer.app.Push(context.Background(), nil))

	// A second checkout of the same project pulls instead of building.
	consumer := newFixture(t, dialer)
	require.NoError(t, consumer.app.Pull(context.Background(), []string{"system"}))

	statuses, err := consumer.app.Show(context.Background(), nil)
	require.NoError(t, err)
	for _, s := range statuses {
		assert.Equal(t, app.StatusCached, s.Status, s.Name)
	}
}
