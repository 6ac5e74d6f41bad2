package builder_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stratum/internal/adapters/cas"
	"go.trai.ch/stratum/internal/adapters/sandbox"
	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/stratum/internal/core/ports/mocks"
	"go.trai.ch/stratum/internal/engine/builder"
	"go.trai.ch/stratum/internal/engine/kinds"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	store    *cas.Store
	executor *mocks.MockExecutor
	builder  *builder.Builder
	tmp      string
}

func newFixture(t *testing.T, cfg builder.Config) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	store, err := cas.NewStore(t.TempDir())
	require.NoError(t, err)
	if cfg.TmpDir == "" {
		cfg.TmpDir = t.TempDir()
	}
	exec := mocks.NewMockExecutor(ctrl)
	b := builder.New(cfg, store, cas.NewMaterializer(store), sandbox.NewStager(), exec, kinds.NewRegistry())
	return &fixture{store: store, executor: exec, builder: b, tmp: cfg.TmpDir}
}

func (f *fixture) putTree(t *testing.T, files map[string]string) domain.Digest {
	t.Helper()
	root := domain.NewDirectory()
	for p, content := range files {
		require.NoError(t, root.Insert(p, domain.NewFile([]byte(content), false)))
	}
	d, err := f.store.PutTree(context.Background(), root)
	require.NoError(t, err)
	return d
}

func (f *fixture) files(t *testing.T, d domain.Digest) map[string]string {
	t.Helper()
	tree, err := f.store.GetTree(context.Background(), d)
	require.NoError(t, err)
	out := make(map[string]string)
	require.NoError(t, tree.Walk(func(p string, n *domain.Node) error {
		if n.Kind != domain.KindFile {
			return nil
		}
		data, err := f.store.Get(context.Background(), n.Digest)
		if err != nil {
			return err
		}
		out[p] = string(data)
		return nil
	}))
	return out
}

func key(name string) domain.CacheKey {
	return domain.CacheKey{Strong: name + "-strong", Weak: name + "-weak"}
}

// writeTarget implements commands of the form "write <path> <content>".
func writeTarget(_ context.Context, inv domain.Invocation, out io.Writer) error {
	fields := strings.Fields(inv.Command)
	if len(fields) != 3 || fields[0] != "write" {
		return zerr.With(zerr.Wrap(domain.ErrCommandFailed, "unexpected command"), "command", inv.Command)
	}
	_, _ = io.WriteString(out, "writing "+filepath.Base(fields[1])+"\n")
	if err := os.MkdirAll(filepath.Dir(fields[1]), 0o755); err != nil {
		return err
	}
	return os.WriteFile(fields[1], []byte(fields[2]), 0o644)
}

func TestBuild_Import(t *testing.T) {
	t.Parallel()
	f := newFixture(t, builder.Config{})
	sources := f.putTree(t, map[string]string{"etc/os-release": "ID=stratum"})

	art, err := f.builder.Build(context.Background(), domain.BuildRequest{
		Project: "demo",
		Element: &domain.Element{Name: "base", Kind: "import", Sources: []domain.Source{{Kind: "local", Path: "base"}}},
		Key:     key("base"),
		Sources: sources,
	})
	require.NoError(t, err)
	assert.True(t, art.BuildSuccess)
	assert.Equal(t, sources, art.Files)
	assert.Equal(t, sources, art.Sources)
	assert.Equal(t, "base-strong", art.StrongKey)
	assert.Equal(t, "base-weak", art.WeakKey)
	assert.EqualValues(t, domain.ArtifactVersion, art.Version)
}

func TestBuild_StackIsEmpty(t *testing.T) {
	t.Parallel()
	f := newFixture(t, builder.Config{})
	dep := &domain.Artifact{StrongKey: "lib-strong", Files: f.putTree(t, map[string]string{"lib": "x"})}

	art, err := f.builder.Build(context.Background(), domain.BuildRequest{
		Project: "demo",
		Element: &domain.Element{
			Name:         "all",
			Kind:         "stack",
			Dependencies: []domain.Dependency{{Name: "lib", Type: domain.DepAll}},
			Public:       map[string]any{"bst": map[string]any{"split-rules": []any{"/usr/lib"}}},
		},
		Key:    key("all"),
		Direct: []domain.BuiltDependency{{Element: &domain.Element{Name: "lib"}, Artifact: dep}},
	})
	require.NoError(t, err)

	empty, err := domain.TreeDigest(domain.NewDirectory())
	require.NoError(t, err)
	assert.Equal(t, empty, art.Files)
	require.Len(t, art.BuildDeps, 1)
	assert.Equal(t, "lib", art.BuildDeps[0].ElementName)
	assert.Equal(t, "lib-strong", art.BuildDeps[0].CacheKey)
	assert.Equal(t, "demo", art.BuildDeps[0].ProjectName)

	public, err := f.store.Get(context.Background(), art.PublicData)
	require.NoError(t, err)
	assert.Contains(t, string(public), "split-rules")
}

func TestBuild_Filter(t *testing.T) {
	t.Parallel()
	f := newFixture(t, builder.Config{})
	dep := &domain.Artifact{Files: f.putTree(t, map[string]string{
		"usr/bin/tool":       "bin",
		"usr/include/tool.h": "header",
	})}

	art, err := f.builder.Build(context.Background(), domain.BuildRequest{
		Project: "demo",
		Element: &domain.Element{
			Name:         "runtime",
			Kind:         "filter",
			Dependencies: []domain.Dependency{{Name: "tool", Type: domain.DepBuild}},
			Config:       map[string]any{"exclude": []any{"*.h"}},
		},
		Key:    key("runtime"),
		Direct: []domain.BuiltDependency{{Element: &domain.Element{Name: "tool"}, Artifact: dep}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"usr/bin/tool": "bin"}, f.files(t, art.Files))
}

func TestBuild_ManualCapturesInstallRoot(t *testing.T) {
	t.Parallel()
	f := newFixture(t, builder.Config{Variables: map[string]string{"greeting": "hello"}})
	sources := f.putTree(t, map[string]string{"hello.c": "int main() {}"})
	toolchain := &domain.Artifact{Files: f.putTree(t, map[string]string{"usr/bin/cc": "compiler"})}

	var dirs []string
	f.executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, inv domain.Invocation, out io.Writer) error {
			dirs = append(dirs, inv.Dir)
			// Sources and staged dependencies are in place.
			src, err := os.ReadFile(filepath.Join(inv.Dir, "hello.c"))
			require.NoError(t, err)
			assert.Equal(t, "int main() {}", string(src))
			sysroot := strings.TrimSuffix(inv.Dir, filepath.FromSlash("/buildstream/demo/hello"))
			cc, err := os.ReadFile(filepath.Join(sysroot, "usr", "bin", "cc"))
			require.NoError(t, err)
			assert.Equal(t, "compiler", string(cc))
			assert.Equal(t, "hello", inv.Env["GREETING"])
			assert.Contains(t, inv.Env["PATH"], filepath.Join(sysroot, "usr", "bin"))
			return writeTarget(ctx, inv, out)
		}).
		Times(2)

	var output bytes.Buffer
	art, err := f.builder.Build(context.Background(), domain.BuildRequest{
		Project: "demo",
		Element: &domain.Element{
			Name: "hello",
			Kind: "manual",
			Commands: []string{
				"write %{install-root}%{prefix}/bin/hello %{greeting}",
				"write %{install-root}/etc/hello.conf %{element-name}",
			},
			Environment: map[string]string{"GREETING": "%{greeting}"},
		},
		Key:     key("hello"),
		Sources: sources,
		Staged:  []domain.BuiltDependency{{Element: &domain.Element{Name: "toolchain"}, Artifact: toolchain}},
		Output:  &output,
	})
	require.NoError(t, err)
	assert.True(t, art.BuildSuccess)
	assert.Equal(t, map[string]string{
		"usr/bin/hello":  "hello",
		"etc/hello.conf": "hello",
	}, f.files(t, art.Files))
	assert.True(t, art.BuildTree.IsZero())
	assert.Equal(t, "writing hello\nwriting hello.conf\n", output.String())

	require.Len(t, art.Logs, 1)
	assert.Equal(t, builder.LogName, art.Logs[0].Name)
	log, err := f.store.Get(context.Background(), art.Logs[0].Digest)
	require.NoError(t, err)
	assert.Equal(t, output.String(), string(log))

	require.Len(t, dirs, 2)
	_, err = os.Stat(dirs[0])
	assert.True(t, errors.Is(err, os.ErrNotExist), "sandbox must be removed")
	entries, err := os.ReadDir(f.tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBuild_FailureKeepsLogAndBuildTree(t *testing.T) {
	t.Parallel()
	f := newFixture(t, builder.Config{BuildTrees: domain.BuildTreesOnFailure, ErrorLines: 2})
	sources := f.putTree(t, map[string]string{"Makefile": "all:"})

	f.executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv domain.Invocation, out io.Writer) error {
			_, _ = io.WriteString(out, "step 1\nstep 2\nerror: boom\n")
			require.NoError(t, os.WriteFile(filepath.Join(inv.Dir, "config.log"), []byte("checking"), 0o644))
			err := zerr.With(zerr.Wrap(domain.ErrCommandFailed, "command failed"), "exit_code", 2)
			return zerr.With(err, "command", inv.Command)
		})

	art, err := f.builder.Build(context.Background(), domain.BuildRequest{
		Project: "demo",
		Element: &domain.Element{Name: "broken", Kind: "manual", Commands: []string{"make", "make install"}},
		Key:     key("broken"),
		Sources: sources,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildFailed)
	require.NotNil(t, art)
	assert.False(t, art.BuildSuccess)
	assert.NotEmpty(t, art.BuildError)
	assert.Equal(t, "step 2\nerror: boom", art.BuildErrorDetails)
	assert.True(t, art.Files.IsZero())
	require.Len(t, art.Logs, 1)

	require.False(t, art.BuildTree.IsZero())
	assert.Equal(t, map[string]string{"Makefile": "all:", "config.log": "checking"}, f.files(t, art.BuildTree))
}

func TestBuild_Cancelled(t *testing.T) {
	t.Parallel()
	f := newFixture(t, builder.Config{})
	ctx, cancel := context.WithCancel(context.Background())

	f.executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, domain.Invocation, io.Writer) error {
			cancel()
			return zerr.Wrap(domain.ErrCancelled, "command interrupted")
		})

	art, err := f.builder.Build(ctx, domain.BuildRequest{
		Project: "demo",
		Element: &domain.Element{Name: "slow", Kind: "manual", Commands: []string{"sleep 100", "true"}},
		Key:     key("slow"),
	})
	assert.Nil(t, art)
	assert.ErrorIs(t, err, domain.ErrCancelled)

	entries, err := os.ReadDir(f.tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBuild_StagingConflict(t *testing.T) {
	t.Parallel()
	f := newFixture(t, builder.Config{})

	fileTree := f.putTree(t, map[string]string{"opt": "a file"})
	dirTree := f.putTree(t, map[string]string{"opt/tool": "a dir"})

	art, err := f.builder.Build(context.Background(), domain.BuildRequest{
		Project: "demo",
		Element: &domain.Element{Name: "app", Kind: "manual", Commands: []string{"true"}},
		Key:     key("app"),
		Staged: []domain.BuiltDependency{
			{Element: &domain.Element{Name: "a"}, Artifact: &domain.Artifact{Files: fileTree}},
			{Element: &domain.Element{Name: "b"}, Artifact: &domain.Artifact{Files: dirTree}},
		},
	})
	assert.Nil(t, art)
	assert.ErrorIs(t, err, domain.ErrIncompatibleOverlay)

	var stagingErr *domain.StagingError
	require.ErrorAs(t, err, &stagingErr)
	assert.Equal(t, "b", stagingErr.Layer)
}

func TestBuild_OverwriteWarning(t *testing.T) {
	t.Parallel()
	f := newFixture(t, builder.Config{})
	first := f.putTree(t, map[string]string{"etc/motd": "one"})
	second := f.putTree(t, map[string]string{"etc/motd": "two"})

	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	var output bytes.Buffer
	_, err := f.builder.Build(context.Background(), domain.BuildRequest{
		Project: "demo",
		Element: &domain.Element{Name: "app", Kind: "manual", Commands: []string{"true"}},
		Key:     key("app"),
		Staged: []domain.BuiltDependency{
			{Element: &domain.Element{Name: "one"}, Artifact: &domain.Artifact{Files: first}},
			{Element: &domain.Element{Name: "two"}, Artifact: &domain.Artifact{Files: second}},
		},
		Output: &output,
	})
	require.NoError(t, err)
	assert.Contains(t, output.String(), "/etc/motd from two overwrites the file staged by one")
}

func TestBuild_UnknownKind(t *testing.T) {
	t.Parallel()
	f := newFixture(t, builder.Config{})

	_, err := f.builder.Build(context.Background(), domain.BuildRequest{
		Project: "demo",
		Element: &domain.Element{Name: "x", Kind: "autotools"},
	})
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
}

func TestBuild_UnresolvedVariable(t *testing.T) {
	t.Parallel()
	f := newFixture(t, builder.Config{})

	_, err := f.builder.Build(context.Background(), domain.BuildRequest{
		Project: "demo",
		Element: &domain.Element{Name: "x", Kind: "manual", Commands: []string{"make %{jobs}"}},
	})
	assert.ErrorIs(t, err, domain.ErrUnresolvedVariable)
}
