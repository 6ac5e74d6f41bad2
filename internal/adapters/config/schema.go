package config

import (
	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Projectfile represents the structure of the stratum.yaml configuration file.
type Projectfile struct {
	Version   string            `yaml:"version"`
	Name      string            `yaml:"name"`
	Root      string            `yaml:"root"`
	Variables map[string]string `yaml:"variables"`
	Cache     CacheDTO          `yaml:"cache"`
	Remote    RemoteDTO         `yaml:"remote"`
	Scheduler SchedulerDTO      `yaml:"scheduler"`
	Elements  []*ElementDTO     `yaml:"elements"`
}

// CacheDTO configures the local cache.
type CacheDTO struct {
	Dir        string `yaml:"dir"`
	Quota      string `yaml:"quota"`
	BuildTrees string `yaml:"buildtrees"`
}

// RemoteDTO configures the shared remote cache.
type RemoteDTO struct {
	URL  string `yaml:"url"`
	Pull *bool  `yaml:"pull"`
	Push bool   `yaml:"push"`
}

// SchedulerDTO overrides the scheduler defaults. Unset fields keep them.
type SchedulerDTO struct {
	Fetchers   *int   `yaml:"fetchers"`
	Builders   *int   `yaml:"builders"`
	Pushers    *int   `yaml:"pushers"`
	Retries    *int   `yaml:"retries"`
	RetryDelay string `yaml:"retry-delay"`
	ErrorLines *int   `yaml:"error-lines"`
	OnError    string `yaml:"on-error"`
}

// ElementDTO represents an element definition in the configuration.
type ElementDTO struct {
	Name        string            `yaml:"name"`
	Kind        string            `yaml:"kind"`
	Depends     []DependencyDTO   `yaml:"depends"`
	Sources     []SourceDTO       `yaml:"sources"`
	Commands    []string          `yaml:"commands"`
	Variables   map[string]string `yaml:"variables"`
	Environment map[string]string `yaml:"environment"`
	Config      map[string]any    `yaml:"config"`
	Public      map[string]any    `yaml:"public"`
}

// DependencyDTO is either a bare element name or a {name, type} mapping.
type DependencyDTO struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// UnmarshalYAML accepts both spellings of a dependency.
func (d *DependencyDTO) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		d.Name = value.Value
		return nil
	}
	type plain DependencyDTO
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	if p.Name == "" {
		return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "dependency without name"), "line", value.Line)
	}
	*d = DependencyDTO(p)
	return nil
}

// SourceDTO represents a source of an element.
type SourceDTO struct {
	Kind      string `yaml:"kind"`
	Path      string `yaml:"path"`
	Directory string `yaml:"directory"`
}
