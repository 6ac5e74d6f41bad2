// Package shell runs sandbox commands through /bin/sh on a pseudo terminal.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/creack/pty"
	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/stratum/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultGracePeriod is how long an interrupted command may take to exit
// after SIGTERM before it is killed.
const DefaultGracePeriod = 5 * time.Second

// DefaultDrainTimeout is how long output is still read after the command
// exited. A background process the command left behind may hold the
// terminal open for much longer.
const DefaultDrainTimeout = 2 * time.Second

// Executor implements ports.Executor using os/exec and pty.
type Executor struct {
	logger ports.Logger
	grace  time.Duration
	drain  time.Duration
	shell  string
}

// Option configures an Executor.
type Option func(*Executor)

// WithGracePeriod sets the time between SIGTERM and SIGKILL on cancellation.
func WithGracePeriod(d time.Duration) Option {
	return func(e *Executor) {
		e.grace = d
	}
}

// WithDrainTimeout bounds the wait for output after the command exited.
func WithDrainTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.drain = d
	}
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger, opts ...Option) *Executor {
	e := &Executor{
		logger: logger,
		grace:  DefaultGracePeriod,
		drain:  DefaultDrainTimeout,
		shell:  "/bin/sh",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs inv.Command with the shell and waits for it to exit. Output
// of the command is copied to out and, line by line, to the logger.
func (e *Executor) Execute(ctx context.Context, inv domain.Invocation, out io.Writer) error {
	if strings.TrimSpace(inv.Command) == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return zerr.Wrap(domain.ErrCancelled, "command not started")
	}

	cmd := exec.Command(e.shell, "-e", "-c", inv.Command) //nolint:gosec // element commands are the point
	cmd.Dir = inv.Dir
	cmd.Env = resolveEnvironment(os.Environ(), inv.Env)

	log := &logWriter{logger: e.logger}
	var output io.Writer = log
	if out != nil {
		output = io.MultiWriter(log, out)
	}

	// pty.Start makes the command a session leader, so its pid is also the
	// id of the process group signals are sent to.
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to start pty"), "command", inv.Command)
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		defer func() { _ = ptmx.Close() }()
		defer func() { _ = log.Close() }()
		_, _ = io.Copy(output, ptmx)
	}()

	waitDone := make(chan error, 1)
	go func() {
		waitDone <- cmd.Wait()
	}()

	var waitErr error
	cancelled := false
	select {
	case waitErr = <-waitDone:
	case <-ctx.Done():
		cancelled = true
		waitErr = e.terminate(cmd.Process.Pid, waitDone)
	}
	e.drainOutput(ptmx, ioDone)

	if cancelled {
		return zerr.With(zerr.Wrap(domain.ErrCancelled, "command interrupted"), "command", inv.Command)
	}
	if waitErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		err := zerr.With(zerr.Wrap(domain.ErrCommandFailed, "command failed"), "exit_code", exitCode)
		return zerr.With(err, "command", inv.Command)
	}
	return nil
}

// drainOutput waits for the output copy to finish. When it does not within
// the drain timeout, the terminal is closed and the copy is abandoned.
func (e *Executor) drainOutput(ptmx *os.File, ioDone <-chan struct{}) {
	timer := time.NewTimer(e.drain)
	defer timer.Stop()

	select {
	case <-ioDone:
	case <-timer.C:
		_ = ptmx.Close()
	}
}

// terminate sends SIGTERM to the process group and escalates to SIGKILL
// when the group has not exited within the grace period.
func (e *Executor) terminate(pid int, waitDone <-chan error) error {
	_ = syscall.Kill(-pid, syscall.SIGTERM)
	timer := time.NewTimer(e.grace)
	defer timer.Stop()

	select {
	case err := <-waitDone:
		return err
	case <-timer.C:
		_ = syscall.Kill(-pid, syscall.SIGKILL)
		return <-waitDone
	}
}

type logWriter struct {
	logger ports.Logger
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	if w.logger == nil {
		return
	}
	// PTYs may introduce \r. Remove it.
	w.logger.Info(strings.TrimSuffix(string(line), "\r"))
}

// allowListedEnvVars are the host variables a sandboxed command inherits.
// Everything else comes from the element.
var allowListedEnvVars = map[string]struct{}{
	"HOME": {},
	"TERM": {},
	"USER": {},
	"PATH": {},
}

// resolveEnvironment builds the command environment from the allow-listed
// host variables and the invocation's own. An invocation PATH is prepended
// to the host PATH so staged tools are found first.
func resolveEnvironment(sysEnv []string, invEnv map[string]string) []string {
	envMap := filterSystemEnv(sysEnv)

	for k, v := range invEnv {
		if k == "PATH" {
			if sysPath, ok := envMap["PATH"]; ok && sysPath != "" {
				envMap[k] = v + string(os.PathListSeparator) + sysPath
				continue
			}
		}
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

func filterSystemEnv(sysEnv []string) map[string]string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok {
			if _, allowed := allowListedEnvVars[k]; allowed {
				envMap[k] = v
			}
		}
	}
	return envMap
}
