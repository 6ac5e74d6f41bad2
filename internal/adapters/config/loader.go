// Package config provides the project file loader for stratum.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/docker/go-units"
	"go.trai.ch/stratum/internal/adapters/source"
	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/stratum/internal/core/ports"
	"go.trai.ch/stratum/internal/engine/kinds"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger   ports.Logger
	Registry *kinds.Registry
}

// NewLoader creates a new Loader resolving element kinds through registry.
func NewLoader(logger ports.Logger, registry *kinds.Registry) *Loader {
	return &Loader{Logger: logger, Registry: registry}
}

var validProjectNameRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

// Load finds the project file at or above cwd and returns the validated project.
func (l *Loader) Load(cwd string) (*domain.Project, error) {
	configPath, err := findProjectfile(cwd)
	if err != nil {
		return nil, err
	}

	var pf Projectfile
	if err := readAndUnmarshalYAML(configPath, &pf); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	project, err := l.buildProject(configPath, &pf)
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	return project, nil
}

func findProjectfile(cwd string) (string, error) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ProjectFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}
	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "no project file at or above the working directory"), "cwd", cwd)
}

func (l *Loader) buildProject(configPath string, pf *Projectfile) (*domain.Project, error) {
	root := resolveRoot(configPath, pf.Root)

	name := pf.Name
	if name == "" {
		name = filepath.Base(root)
	}
	if !validProjectNameRegex.MatchString(name) {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "invalid project name"), "name", name)
	}

	cache, err := cacheSettings(root, pf.Cache)
	if err != nil {
		return nil, err
	}
	sched, err := schedulerSettings(pf.Scheduler)
	if err != nil {
		return nil, err
	}

	g := domain.NewGraph()
	for i, dto := range pf.Elements {
		e, err := buildElement(dto)
		if err != nil {
			return nil, zerr.With(err, "element_index", i)
		}
		if err := g.AddElement(e); err != nil {
			return nil, err
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := l.Registry.Validate(g); err != nil {
		return nil, err
	}

	return &domain.Project{
		Name:      name,
		Root:      root,
		Graph:     g,
		Variables: pf.Variables,
		Cache:     cache,
		Remote:    l.remoteSettings(pf.Remote),
		Scheduler: sched,
	}, nil
}

func buildElement(dto *ElementDTO) (*domain.Element, error) {
	if dto == nil {
		return nil, zerr.Wrap(domain.ErrInvalidConfig, "empty element")
	}
	if err := domain.ValidateElementName(dto.Name); err != nil {
		return nil, err
	}

	deps := make([]domain.Dependency, 0, len(dto.Depends))
	for _, d := range dto.Depends {
		typ, err := domain.ParseDependencyType(d.Type)
		if err != nil {
			return nil, zerr.With(err, "element", dto.Name)
		}
		deps = append(deps, domain.Dependency{Name: d.Name, Type: typ})
	}

	sources := make([]domain.Source, 0, len(dto.Sources))
	for _, s := range dto.Sources {
		kind := s.Kind
		if kind == "" {
			kind = source.KindLocal
		}
		if kind == source.KindLocal && s.Path == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "local source without path"), "element", dto.Name)
		}
		sources = append(sources, domain.Source{Kind: kind, Path: s.Path, Directory: s.Directory})
	}

	return &domain.Element{
		Name:         dto.Name,
		Kind:         dto.Kind,
		Dependencies: deps,
		Sources:      sources,
		Commands:     dto.Commands,
		Variables:    dto.Variables,
		Environment:  dto.Environment,
		Config:       dto.Config,
		Public:       dto.Public,
	}, nil
}

func cacheSettings(root string, dto CacheDTO) (domain.CacheSettings, error) {
	settings := domain.CacheSettings{
		Dir:        resolvePath(root, dto.Dir, domain.DefaultCachePath(root)),
		BuildTrees: domain.BuildTreesOnFailure,
	}

	quota, err := parseQuota(dto.Quota)
	if err != nil {
		return domain.CacheSettings{}, err
	}
	settings.Quota = quota

	switch policy := domain.BuildTreePolicy(dto.BuildTrees); policy {
	case "":
	case domain.BuildTreesNever, domain.BuildTreesOnFailure, domain.BuildTreesAlways:
		settings.BuildTrees = policy
	default:
		return domain.CacheSettings{}, zerr.With(
			zerr.Wrap(domain.ErrInvalidConfig, "cache.buildtrees must be never, failure or always"), "value", dto.BuildTrees)
	}
	return settings, nil
}

// parseQuota reads sizes like "512M" or "10GiB". An empty quota or zero
// means the cache is unbounded.
func parseQuota(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := units.RAMInBytes(s)
	if err != nil || n < 0 {
		return 0, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "cache.quota is not a size"), "value", s)
	}
	return n, nil
}

func (l *Loader) remoteSettings(dto RemoteDTO) domain.RemoteSettings {
	settings := domain.RemoteSettings{URL: dto.URL, Pull: true, Push: dto.Push}
	if dto.Pull != nil {
		settings.Pull = *dto.Pull
	}
	if dto.URL == "" {
		if dto.Push || (dto.Pull != nil && *dto.Pull) {
			l.Logger.Warn("'remote.pull' and 'remote.push' have no effect without 'remote.url'")
		}
		settings.Pull, settings.Push = false, false
	}
	return settings
}

func schedulerSettings(dto SchedulerDTO) (domain.SchedulerSettings, error) {
	s := domain.DefaultSchedulerSettings()
	for _, f := range []struct {
		key   string
		src   *int
		dst   *int
		least int
	}{
		{"fetchers", dto.Fetchers, &s.Fetchers, 1},
		{"builders", dto.Builders, &s.Builders, 1},
		{"pushers", dto.Pushers, &s.Pushers, 1},
		{"retries", dto.Retries, &s.Retries, 0},
		{"error-lines", dto.ErrorLines, &s.ErrorLines, 0},
	} {
		if f.src == nil {
			continue
		}
		if *f.src < f.least {
			return s, zerr.With(zerr.Wrap(domain.ErrInvalidConfig,
				fmt.Sprintf("scheduler.%s must be at least %d", f.key, f.least)), "value", *f.src)
		}
		*f.dst = *f.src
	}

	if dto.RetryDelay != "" {
		d, err := time.ParseDuration(dto.RetryDelay)
		if err != nil || d < 0 {
			return s, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "scheduler.retry-delay is not a duration"), "value", dto.RetryDelay)
		}
		s.RetryDelay = d
	}

	switch policy := domain.ErrorPolicy(dto.OnError); policy {
	case "":
	case domain.OnErrorContinue, domain.OnErrorQuit, domain.OnErrorTerminate:
		s.OnError = policy
	default:
		return s, zerr.With(
			zerr.Wrap(domain.ErrInvalidConfig, "scheduler.on-error must be continue, quit or terminate"), "value", dto.OnError)
	}
	return s, nil
}

// resolveRoot returns the project root. A relative root is taken from the
// directory of the project file.
func resolveRoot(configPath, configuredRoot string) string {
	return resolvePath(filepath.Dir(configPath), configuredRoot, filepath.Dir(configPath))
}

func resolvePath(base, configured, fallback string) string {
	if configured == "" {
		return filepath.Clean(fallback)
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Clean(filepath.Join(base, configured))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is found by walking up from the working directory
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(domain.ErrConfigReadFailed, err.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(domain.ErrConfigParseFailed, parseErr.Error())
	}

	return nil
}
