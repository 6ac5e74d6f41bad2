package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stratum/cmd/stratum/commands"
	"go.trai.ch/stratum/internal/app"
	"go.trai.ch/stratum/internal/build"
	"go.trai.ch/stratum/internal/core/domain"
)

type mockApp struct {
	buildFunc func(ctx context.Context, targets []string, opts app.BuildOptions) error
	showFunc  func(ctx context.Context, targets []string) ([]app.ElementStatus, error)
	gcFunc    func(ctx context.Context) error
	pushFunc  func(ctx context.Context, targets []string) error
	pullFunc  func(ctx context.Context, targets []string) error
	serveFunc func(ctx context.Context, opts app.ServeOptions) error
}

func (m *mockApp) Build(ctx context.Context, targets []string, opts app.BuildOptions) error {
	if m.buildFunc != nil {
		return m.buildFunc(ctx, targets, opts)
	}
	return nil
}

func (m *mockApp) Show(ctx context.Context, targets []string) ([]app.ElementStatus, error) {
	if m.showFunc != nil {
		return m.showFunc(ctx, targets)
	}
	return nil, nil
}

func (m *mockApp) GC(ctx context.Context) error {
	if m.gcFunc != nil {
		return m.gcFunc(ctx)
	}
	return nil
}

func (m *mockApp) Push(ctx context.Context, targets []string) error {
	if m.pushFunc != nil {
		return m.pushFunc(ctx, targets)
	}
	return nil
}

func (m *mockApp) Pull(ctx context.Context, targets []string) error {
	if m.pullFunc != nil {
		return m.pullFunc(ctx, targets)
	}
	return nil
}

func (m *mockApp) Serve(ctx context.Context, opts app.ServeOptions) error {
	if m.serveFunc != nil {
		return m.serveFunc(ctx, opts)
	}
	return nil
}

type logSettings struct {
	json    bool
	profile func() termenv.Profile
}

func (l *logSettings) SetJSON(enable bool) { l.json = enable }

func (l *logSettings) SetProfile(profileFn func() termenv.Profile) { l.profile = profileFn }

func execute(t *testing.T, a commands.Application, log any, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(a, log)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_Build(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var capturedOpts app.BuildOptions
		var capturedTargets []string
		mock := &mockApp{
			buildFunc: func(_ context.Context, targets []string, opts app.BuildOptions) error {
				capturedOpts = opts
				capturedTargets = targets
				return nil
			},
		}

		_, err := execute(t, mock, nil, "build", "hello", "system", "--push")
		require.NoError(t, err)
		assert.True(t, capturedOpts.Push)
		assert.False(t, capturedOpts.NoRemote)
		assert.Equal(t, []string{"hello", "system"}, capturedTargets)
	})

	t.Run("no targets builds everything", func(t *testing.T) {
		called := false
		mock := &mockApp{
			buildFunc: func(_ context.Context, targets []string, _ app.BuildOptions) error {
				called = true
				assert.Empty(t, targets)
				return nil
			},
		}

		_, err := execute(t, mock, nil, "build", "--no-remote")
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("remote flags are exclusive", func(t *testing.T) {
		mock := &mockApp{
			buildFunc: func(context.Context, []string, app.BuildOptions) error {
				panic("should not be called")
			},
		}

		_, err := execute(t, mock, nil, "build", "--no-remote", "--push")
		require.Error(t, err)
	})

	t.Run("returns error on build failure", func(t *testing.T) {
		mock := &mockApp{
			buildFunc: func(context.Context, []string, app.BuildOptions) error {
				return domain.ErrBuildExecutionFailed
			},
		}

		_, err := execute(t, mock, nil, "build", "hello")
		require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	})
}

func TestCommands_Cache(t *testing.T) {
	var calls []string
	mock := &mockApp{
		showFunc: func(_ context.Context, targets []string) ([]app.ElementStatus, error) {
			calls = append(calls, "show")
			assert.Equal(t, []string{"hello"}, targets)
			return nil, nil
		},
		gcFunc: func(context.Context) error {
			calls = append(calls, "gc")
			return nil
		},
		pushFunc: func(_ context.Context, targets []string) error {
			calls = append(calls, "push")
			assert.Equal(t, []string{"system"}, targets)
			return nil
		},
		pullFunc: func(context.Context, []string) error {
			calls = append(calls, "pull")
			return errors.New("simulated error")
		},
	}

	_, err := execute(t, mock, nil, "show", "hello")
	require.NoError(t, err)
	_, err = execute(t, mock, nil, "gc")
	require.NoError(t, err)
	_, err = execute(t, mock, nil, "push", "system")
	require.NoError(t, err)
	_, err = execute(t, mock, nil, "pull")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulated error")

	assert.Equal(t, []string{"show", "gc", "push", "pull"}, calls)

	_, err = execute(t, mock, nil, "gc", "extra")
	require.Error(t, err)
}

func TestCommands_Serve(t *testing.T) {
	var captured []app.ServeOptions
	mock := &mockApp{
		serveFunc: func(_ context.Context, opts app.ServeOptions) error {
			captured = append(captured, opts)
			return nil
		},
	}

	_, err := execute(t, mock, nil, "serve")
	require.NoError(t, err)
	_, err = execute(t, mock, nil, "serve", "-l", "0.0.0.0:9000", "--dir", "/var/cache/stratum")
	require.NoError(t, err)

	assert.Equal(t, []app.ServeOptions{
		{Listen: domain.DefaultListenAddress},
		{Listen: "0.0.0.0:9000", Dir: "/var/cache/stratum"},
	}, captured)
}

func TestCommands_LogFlags(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("CI", "")

	log := &logSettings{}
	_, err := execute(t, &mockApp{}, log, "gc", "--json", "--color", "never")
	require.NoError(t, err)
	assert.True(t, log.json)
	require.NotNil(t, log.profile)
	assert.Equal(t, termenv.Ascii, log.profile())

	log = &logSettings{}
	_, err = execute(t, &mockApp{}, log, "gc")
	require.NoError(t, err)
	assert.False(t, log.json)
	require.NotNil(t, log.profile)

	_, err = execute(t, &mockApp{}, nil, "gc", "--json")
	require.Error(t, err, "the flag only exists when the logger supports it")
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "stratum version "+build.Version)

	out, err = execute(t, &mockApp{}, nil, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, build.Commit)
}
