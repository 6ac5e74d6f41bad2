// Package builder turns one element and its staged dependencies into an
// artifact: it composes the sandbox, runs the element's commands and
// captures the result into the CAS.
package builder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/stratum/internal/core/ports"
	"go.trai.ch/stratum/internal/engine/kinds"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// LogName is the name of the build log stored with every artifact that ran commands.
const LogName = "build.log"

// Config holds the project settings the builder needs.
type Config struct {
	// TmpDir is where sandbox directories are created.
	TmpDir     string
	Variables  map[string]string
	BuildTrees domain.BuildTreePolicy
	ErrorLines int
}

// Builder implements ports.Builder.
type Builder struct {
	store        ports.ContentStore
	materializer ports.Materializer
	stager       ports.Stager
	executor     ports.Executor
	registry     *kinds.Registry
	cfg          Config
}

// New returns a Builder.
func New(
	cfg Config,
	store ports.ContentStore,
	materializer ports.Materializer,
	stager ports.Stager,
	executor ports.Executor,
	registry *kinds.Registry,
) *Builder {
	return &Builder{
		store:        store,
		materializer: materializer,
		stager:       stager,
		executor:     executor,
		registry:     registry,
		cfg:          cfg,
	}
}

// Build produces the artifact of req.Element.
func (b *Builder) Build(ctx context.Context, req domain.BuildRequest) (*domain.Artifact, error) {
	e := req.Element
	kind, err := b.registry.Lookup(e.Kind)
	if err != nil {
		return nil, err
	}

	art := &domain.Artifact{
		Version:   domain.ArtifactVersion,
		StrongKey: req.Key.Strong,
		WeakKey:   req.Key.Weak,
		Sources:   req.Sources,
	}
	for _, dep := range req.Direct {
		if dep.Artifact == nil {
			continue
		}
		art.BuildDeps = append(art.BuildDeps, domain.ArtifactDependency{
			ProjectName: req.Project,
			ElementName: dep.Element.Name,
			CacheKey:    dep.Artifact.StrongKey,
		})
	}
	if len(e.Public) > 0 {
		data, err := yaml.Marshal(e.Public)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidElement, "public data cannot be encoded"), "element", e.Name)
		}
		if art.PublicData, err = b.store.Put(ctx, data); err != nil {
			return nil, err
		}
	}

	vars, err := kinds.Resolve(kinds.Variables(req.Project, b.cfg.Variables, e))
	if err != nil {
		return nil, zerr.With(err, "element", e.Name)
	}
	plan, err := kind.Plan(e, vars)
	if err != nil {
		return nil, zerr.With(err, "element", e.Name)
	}

	switch plan.Output {
	case kinds.OutputSources:
		art.Files, err = b.sourcesTree(ctx, req.Sources)
	case kinds.OutputNone:
		art.Files, err = b.store.PutTree(ctx, domain.NewDirectory())
	case kinds.OutputStaged:
		art.Files, err = b.filter(ctx, req, plan.Policy)
	default:
		return b.runCommands(ctx, req, kind, art, plan.Policy)
	}
	if err != nil {
		return nil, zerr.With(err, "element", e.Name)
	}
	art.BuildSuccess = true
	return art, nil
}

func (b *Builder) sourcesTree(ctx context.Context, sources domain.Digest) (domain.Digest, error) {
	if sources.IsZero() {
		return b.store.PutTree(ctx, domain.NewDirectory())
	}
	if _, err := b.store.GetTree(ctx, sources); err != nil {
		return domain.Digest{}, err
	}
	return sources, nil
}

func (b *Builder) filter(ctx context.Context, req domain.BuildRequest, policy domain.StagePolicy) (domain.Digest, error) {
	var layers []domain.Layer
	for _, dep := range req.Element.BuildDependencies() {
		for _, built := range req.Direct {
			if built.Element.Name != dep.Name {
				continue
			}
			tree, err := b.artifactTree(ctx, built.Artifact)
			if err != nil {
				return domain.Digest{}, err
			}
			layers = append(layers, domain.Layer{Name: built.Element.Name, Tree: tree})
		}
	}
	res, err := b.stager.Compose(layers, policy)
	if err != nil {
		return domain.Digest{}, err
	}
	return b.store.PutTree(ctx, res.Tree)
}

func (b *Builder) artifactTree(ctx context.Context, art *domain.Artifact) (*domain.Node, error) {
	if art == nil || art.Files.IsZero() {
		return domain.NewDirectory(), nil
	}
	return b.store.GetTree(ctx, art.Files)
}

// runCommands stages the sandbox, runs the commands of the element and
// captures its install root.
func (b *Builder) runCommands(
	ctx context.Context,
	req domain.BuildRequest,
	kind kinds.Kind,
	art *domain.Artifact,
	policy domain.StagePolicy,
) (*domain.Artifact, error) {
	e := req.Element
	buildRoot := kinds.BuildRoot(req.Project, e.Name)

	layers := make([]domain.Layer, 0, len(req.Staged)+1)
	for _, dep := range req.Staged {
		tree, err := b.artifactTree(ctx, dep.Artifact)
		if err != nil {
			return nil, zerr.With(err, "dependency", dep.Element.Name)
		}
		layers = append(layers, domain.Layer{Name: dep.Element.Name, Tree: tree})
	}
	sources := domain.NewDirectory()
	if !req.Sources.IsZero() {
		var err error
		if sources, err = b.store.GetTree(ctx, req.Sources); err != nil {
			return nil, zerr.With(err, "element", e.Name)
		}
	}
	layers = append(layers,
		domain.Layer{Name: e.Name + " (sources)", Tree: sources, At: buildRoot},
		domain.Layer{Name: e.Name, Tree: domain.NewDirectory(), At: kinds.InstallRoot},
	)

	staged, err := b.stager.Compose(layers, policy)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "staging failed"), "element", e.Name)
	}

	var log bytes.Buffer
	var out io.Writer = &log
	if req.Output != nil {
		out = io.MultiWriter(&log, req.Output)
	}
	for _, o := range staged.Overwritten {
		_, _ = fmt.Fprintf(out, "warning: %s from %s overwrites the file staged by %s\n", o.Path, o.Layer, o.Previous)
	}

	if err := os.MkdirAll(b.cfg.TmpDir, domain.DirPerm); err != nil {
		return nil, zerr.Wrap(err, domain.ErrSandboxCreateFailed.Error())
	}
	sandbox, err := os.MkdirTemp(b.cfg.TmpDir, "sandbox-")
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrSandboxCreateFailed.Error())
	}
	defer removeSandbox(sandbox)

	root := filepath.Join(sandbox, "root")
	if err := b.materializer.Checkout(ctx, staged.Tree, root); err != nil {
		return nil, zerr.With(err, "element", e.Name)
	}

	// Commands run on the host, so locations inside the sandbox are
	// expanded to their host paths.
	hostVars := kinds.Variables(req.Project, b.cfg.Variables, e)
	hostVars[kinds.VarSysroot] = root
	hostVars[kinds.VarInstallRoot] = hostPath(root, kinds.InstallRoot)
	hostVars[kinds.VarBuildRoot] = hostPath(root, buildRoot)
	resolved, err := kinds.Resolve(hostVars)
	if err != nil {
		return nil, zerr.With(err, "element", e.Name)
	}
	plan, err := kind.Plan(e, resolved)
	if err != nil {
		return nil, zerr.With(err, "element", e.Name)
	}
	env, err := environment(e, resolved, root)
	if err != nil {
		return nil, zerr.With(err, "element", e.Name)
	}

	var cmdErr error
	for _, command := range plan.Commands {
		cmdErr = b.executor.Execute(ctx, domain.Invocation{
			Command: command,
			Dir:     hostVars[kinds.VarBuildRoot],
			Env:     env,
		}, out)
		if cmdErr != nil {
			break
		}
	}
	if errors.Is(cmdErr, domain.ErrCancelled) || ctx.Err() != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrCancelled, "build interrupted"), "element", e.Name)
	}

	if log.Len() > 0 {
		logDigest, err := b.store.Put(ctx, log.Bytes())
		if err != nil {
			return nil, err
		}
		art.Logs = []domain.LogFile{{Name: LogName, Digest: logDigest}}
	}

	failed := cmdErr != nil
	if b.cfg.BuildTrees == domain.BuildTreesAlways || (failed && b.cfg.BuildTrees == domain.BuildTreesOnFailure) {
		if art.BuildTree, err = b.capture(ctx, hostVars[kinds.VarBuildRoot]); err != nil {
			return nil, err
		}
	}

	if failed {
		art.BuildSuccess = false
		art.BuildError = cmdErr.Error()
		art.BuildErrorDetails = lastLines(log.String(), b.cfg.ErrorLines)
		return art, zerr.With(zerr.Wrap(domain.ErrBuildFailed, cmdErr.Error()), "element", e.Name)
	}

	if art.Files, err = b.capture(ctx, hostVars[kinds.VarInstallRoot]); err != nil {
		return nil, zerr.With(err, "element", e.Name)
	}
	art.BuildSuccess = true
	return art, nil
}

func (b *Builder) capture(ctx context.Context, dir string) (domain.Digest, error) {
	tree, err := b.materializer.Import(ctx, dir)
	if err != nil {
		return domain.Digest{}, err
	}
	return b.store.PutTree(ctx, tree)
}

func environment(e *domain.Element, vars map[string]string, root string) (map[string]string, error) {
	env := map[string]string{
		"PATH": strings.Join([]string{
			hostPath(root, "/usr/bin"),
			hostPath(root, "/bin"),
		}, string(os.PathListSeparator)),
	}
	for k, v := range e.Environment {
		expanded, err := kinds.Expand(v, vars)
		if err != nil {
			return nil, zerr.With(err, "environment", k)
		}
		env[k] = expanded
	}
	return env, nil
}

func hostPath(root, sandboxPath string) string {
	return filepath.Join(root, filepath.FromSlash(sandboxPath))
}

// lastLines returns at most n trailing lines of s.
func lastLines(s string, n int) string {
	s = strings.TrimRight(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	if n <= 0 || s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// removeSandbox deletes a sandbox even when the build left read-only
// directories behind.
func removeSandbox(dir string) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err == nil && d.IsDir() {
			_ = os.Chmod(p, domain.ExecPerm)
		}
		return nil
	})
	_ = os.RemoveAll(dir)
}
