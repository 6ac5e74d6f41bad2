package sandbox_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stratum/internal/adapters/sandbox"
	"go.trai.ch/stratum/internal/core/domain"
)

type entry struct {
	path   string
	data   string
	link   string
	dir    bool
	noexec bool
}

func tree(t *testing.T, entries ...entry) *domain.Node {
	t.Helper()
	root := domain.NewDirectory()
	for _, e := range entries {
		var n *domain.Node
		switch {
		case e.dir:
			n = domain.NewDirectory()
		case e.link != "":
			n = domain.NewSymlink(e.link)
		default:
			n = domain.NewFile([]byte(e.data), !e.noexec)
		}
		require.NoError(t, root.Insert(e.path, n))
	}
	return root
}

func stagingError(t *testing.T, err error) *domain.StagingError {
	t.Helper()
	var se *domain.StagingError
	require.True(t, errors.As(err, &se), "expected a staging error, got %v", err)
	return se
}

func TestCompose_SymlinkEscape(t *testing.T) {
	t.Parallel()

	a := tree(t, entry{path: "opt/escape-hatch", link: "../../../outside"})
	b := tree(t, entry{path: "opt/escape-hatch/etc/org.conf", data: "org"})
	aDigest, err := domain.TreeDigest(a)
	require.NoError(t, err)

	res, err := sandbox.NewStager().Compose([]domain.Layer{
		{Name: "a", Tree: a},
		{Name: "b", Tree: b},
	}, domain.StagePolicy{})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrSandboxEscape)

	se := stagingError(t, err)
	assert.Equal(t, "/opt/escape-hatch/etc/org.conf", se.Path)
	assert.Equal(t, "b", se.Layer)
	assert.Contains(t, err.Error(), "/opt/escape-hatch/etc/org.conf")

	after, err := domain.TreeDigest(a)
	require.NoError(t, err)
	assert.Equal(t, aDigest, after, "input layers must not be modified")
}

func TestCompose_EscapeThroughAbsoluteThenRelative(t *testing.T) {
	t.Parallel()

	a := tree(t,
		entry{path: "lib", link: "/usr/lib"},
		entry{path: "usr/lib/up", link: "../../.."},
	)
	b := tree(t, entry{path: "lib/up/evil", data: "x"})

	_, err := sandbox.NewStager().Compose([]domain.Layer{{Name: "a", Tree: a}, {Name: "b", Tree: b}}, domain.StagePolicy{})
	assert.ErrorIs(t, err, domain.ErrSandboxEscape)
	assert.Equal(t, "/lib/up/evil", stagingError(t, err).Path)
}

func TestCompose_SymlinkInsideSandboxIsFollowed(t *testing.T) {
	t.Parallel()

	a := tree(t,
		entry{path: "usr/lib/libc.so", data: "libc"},
		entry{path: "lib", link: "usr/lib"},
	)
	b := tree(t, entry{path: "lib/libm.so", data: "libm"})

	res, err := sandbox.NewStager().Compose([]domain.Layer{{Name: "a", Tree: a}, {Name: "b", Tree: b}}, domain.StagePolicy{})
	require.NoError(t, err)

	link, ok := res.Tree.Lookup("lib")
	require.True(t, ok)
	assert.Equal(t, domain.KindSymlink, link.Kind, "the link stays a link")

	libm, ok := res.Tree.Lookup("usr/lib/libm.so")
	require.True(t, ok, "writes land in the link target")
	assert.Equal(t, "libm", string(libm.Data))
}

func TestCompose_MergesDirectoriesLaterWins(t *testing.T) {
	t.Parallel()

	base := tree(t,
		entry{path: "etc/os-release", data: "base"},
		entry{path: "usr/bin/sh", data: "sh"},
	)
	app := tree(t,
		entry{path: "etc/os-release", data: "app"},
		entry{path: "usr/bin/app", data: "app"},
	)

	res, err := sandbox.NewStager().Compose([]domain.Layer{{Name: "base", Tree: base}, {Name: "app", Tree: app}}, domain.StagePolicy{})
	require.NoError(t, err)

	release, ok := res.Tree.Lookup("etc/os-release")
	require.True(t, ok)
	assert.Equal(t, "app", string(release.Data))

	_, ok = res.Tree.Lookup("usr/bin/sh")
	assert.True(t, ok)
	_, ok = res.Tree.Lookup("usr/bin/app")
	assert.True(t, ok)

	require.Len(t, res.Overwritten, 1)
	assert.Equal(t, domain.Overwrite{Path: "/etc/os-release", Layer: "app", Previous: "base"}, res.Overwritten[0])
}

func TestCompose_OrderMatters(t *testing.T) {
	t.Parallel()

	x := tree(t, entry{path: "f", data: "x"})
	y := tree(t, entry{path: "f", data: "y"})
	stager := sandbox.NewStager()

	xy, err := stager.Compose([]domain.Layer{{Name: "x", Tree: x}, {Name: "y", Tree: y}}, domain.StagePolicy{})
	require.NoError(t, err)
	yx, err := stager.Compose([]domain.Layer{{Name: "y", Tree: y}, {Name: "x", Tree: x}}, domain.StagePolicy{})
	require.NoError(t, err)

	d1, err := domain.TreeDigest(xy.Tree)
	require.NoError(t, err)
	d2, err := domain.TreeDigest(yx.Tree)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d2)
}

func TestCompose_IncompatibleOverlay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		first *domain.Node
		later *domain.Node
		path  string
	}{
		{
			name:  "directory over file",
			first: tree(t, entry{path: "usr/share", data: "file"}),
			later: tree(t, entry{path: "usr/share/doc/README", data: "doc"}),
			path:  "/usr/share/doc/README",
		},
		{
			name:  "empty directory over file",
			first: tree(t, entry{path: "var", data: "file"}),
			later: tree(t, entry{path: "var", dir: true}),
			path:  "/var",
		},
		{
			name:  "file over directory",
			first: tree(t, entry{path: "bin/sh", data: "sh"}),
			later: tree(t, entry{path: "bin", data: "file"}),
			path:  "/bin",
		},
		{
			name:  "symlink over directory",
			first: tree(t, entry{path: "bin/sh", data: "sh"}),
			later: tree(t, entry{path: "bin", link: "usr/bin"}),
			path:  "/bin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := sandbox.NewStager().Compose([]domain.Layer{
				{Name: "first", Tree: tt.first},
				{Name: "later", Tree: tt.later},
			}, domain.StagePolicy{})
			require.ErrorIs(t, err, domain.ErrIncompatibleOverlay)
			assert.Equal(t, tt.path, stagingError(t, err).Path)
			assert.False(t, domain.IsRetryable(err))
		})
	}
}

func TestCompose_ReplacePolicy(t *testing.T) {
	t.Parallel()

	first := tree(t, entry{path: "bin/sh", data: "sh"})
	later := tree(t, entry{path: "bin", link: "usr/bin"})

	res, err := sandbox.NewStager().Compose([]domain.Layer{
		{Name: "first", Tree: first},
		{Name: "later", Tree: later},
	}, domain.StagePolicy{Replace: []string{"/bin"}})
	require.NoError(t, err)

	bin, ok := res.Tree.Lookup("bin")
	require.True(t, ok)
	assert.Equal(t, domain.KindSymlink, bin.Kind)

	res, err = sandbox.NewStager().Compose([]domain.Layer{
		{Name: "first", Tree: tree(t, entry{path: "etc", data: "file"})},
		{Name: "later", Tree: tree(t, entry{path: "etc/passwd", data: "root"})},
	}, domain.StagePolicy{Replace: []string{"/e*"}})
	require.NoError(t, err)
	passwd, ok := res.Tree.Lookup("etc/passwd")
	require.True(t, ok)
	assert.Equal(t, "root", string(passwd.Data))
}

func TestCompose_ReplaceAppliesToTheReplacedPath(t *testing.T) {
	t.Parallel()

	base := tree(t,
		entry{path: "usr/bin/busybox", data: "busybox"},
		entry{path: "bin", link: "usr/bin/busybox"},
	)
	shell := tree(t, entry{path: "bin/sh", data: "sh"})

	t.Run("replace names the symlink", func(t *testing.T) {
		t.Parallel()
		res, err := sandbox.NewStager().Compose([]domain.Layer{
			{Name: "base", Tree: base},
			{Name: "shell", Tree: shell},
		}, domain.StagePolicy{Replace: []string{"/bin"}})
		require.NoError(t, err)

		bin, ok := res.Tree.Lookup("bin")
		require.True(t, ok)
		assert.Equal(t, domain.KindDirectory, bin.Kind)
		sh, ok := res.Tree.Lookup("bin/sh")
		require.True(t, ok)
		assert.Equal(t, "sh", string(sh.Data))

		busybox, ok := res.Tree.Lookup("usr/bin/busybox")
		require.True(t, ok)
		assert.Equal(t, domain.KindFile, busybox.Kind, "the link target must be left alone")
		assert.Equal(t, []domain.Overwrite{{Path: "/bin", Layer: "shell", Previous: "base"}}, res.Overwritten)
	})

	t.Run("replace does not reach the link target", func(t *testing.T) {
		t.Parallel()
		_, err := sandbox.NewStager().Compose([]domain.Layer{
			{Name: "base", Tree: base},
			{Name: "shell", Tree: shell},
		}, domain.StagePolicy{Replace: []string{"/bin/*"}})
		require.ErrorIs(t, err, domain.ErrIncompatibleOverlay)
		assert.Equal(t, "/bin/sh", stagingError(t, err).Path)
	})

	t.Run("empty directory over a symlink", func(t *testing.T) {
		t.Parallel()
		res, err := sandbox.NewStager().Compose([]domain.Layer{
			{Name: "base", Tree: base},
			{Name: "later", Tree: tree(t, entry{path: "bin", dir: true})},
		}, domain.StagePolicy{Replace: []string{"/bin"}})
		require.NoError(t, err)
		bin, ok := res.Tree.Lookup("bin")
		require.True(t, ok)
		assert.Equal(t, domain.KindDirectory, bin.Kind)
	})
}

func TestCompose_SymlinkLoop(t *testing.T) {
	t.Parallel()

	a := tree(t,
		entry{path: "a", link: "b"},
		entry{path: "b", link: "a"},
	)
	b := tree(t, entry{path: "a/file", data: "x"})

	_, err := sandbox.NewStager().Compose([]domain.Layer{{Name: "a", Tree: a}, {Name: "b", Tree: b}}, domain.StagePolicy{})
	assert.ErrorIs(t, err, domain.ErrSymlinkLoop)
}

func TestCompose_MountAndFilter(t *testing.T) {
	t.Parallel()

	sources := tree(t,
		entry{path: "Makefile", data: "all:"},
		entry{path: "src/main.c", data: "int main;"},
	)
	artifact := tree(t,
		entry{path: "usr/bin/tool", data: "bin"},
		entry{path: "usr/include/tool.h", data: "h"},
		entry{path: "usr/share/doc/tool", data: "doc"},
		entry{path: "usr/lib/empty", dir: true},
	)

	res, err := sandbox.NewStager().Compose([]domain.Layer{
		{Name: "sources", Tree: sources, At: "/buildstream/demo/app"},
	}, domain.StagePolicy{})
	require.NoError(t, err)
	_, ok := res.Tree.Lookup("buildstream/demo/app/src/main.c")
	assert.True(t, ok)

	res, err = sandbox.NewStager().Compose([]domain.Layer{{Name: "tool", Tree: artifact}}, domain.StagePolicy{
		Include: []string{"/usr"},
		Exclude: []string{"/usr/share/doc", "*.h"},
	})
	require.NoError(t, err)
	_, ok = res.Tree.Lookup("usr/bin/tool")
	assert.True(t, ok)
	_, ok = res.Tree.Lookup("usr/include/tool.h")
	assert.False(t, ok, "excluded by glob")
	_, ok = res.Tree.Lookup("usr/share/doc")
	assert.False(t, ok, "excluded directory is not created")
	empty, ok := res.Tree.Lookup("usr/lib/empty")
	require.True(t, ok)
	assert.True(t, empty.IsDir())
}

func TestCompose_EmptyLayersYieldEmptyRoot(t *testing.T) {
	t.Parallel()

	res, err := sandbox.NewStager().Compose(nil, domain.StagePolicy{})
	require.NoError(t, err)
	assert.True(t, res.Tree.IsDir())
	assert.Empty(t, res.Tree.Children)
}
