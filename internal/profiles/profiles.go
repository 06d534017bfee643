// Package profiles manages YAML-defined run profiles.
package profiles

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/nilookiamari/browser-activity-project/internal/pipeline"
)

// Profile is a named set of overrides for a categorization run.
// Unset fields leave the base configuration unchanged.
type Profile struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Source        string   `yaml:"source"`
	Input         string   `yaml:"input"`
	Clusters      *int     `yaml:"clusters"`
	MaxFeatures   *int     `yaml:"max_features"`
	Keywords      *int     `yaml:"keywords"`
	Seed          *int64   `yaml:"seed"`
	MaxIterations *int     `yaml:"max_iterations"`
	StopWords     []string `yaml:"stop_words"`
	RedactQueries *bool    `yaml:"redact_queries"`
}

// File is the top-level YAML structure.
type File struct {
	Profiles []Profile `yaml:"profiles"`
}

// Registry holds loaded profiles, keyed by name.
type Registry struct {
	byName map[string]*Profile
	order  []string // preserves definition order
}

// Load reads the YAML file at path and returns a Registry.
// If the file does not exist, Load returns an empty Registry (not an error).
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Registry{byName: make(map[string]*Profile)}, nil
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing profiles %s: %w", path, err)
	}

	r := &Registry{
		byName: make(map[string]*Profile, len(f.Profiles)),
	}
	for i := range f.Profiles {
		p := &f.Profiles[i]
		if p.Name == "" {
			return nil, fmt.Errorf("profile %d in %s has no name", i+1, path)
		}
		if _, dup := r.byName[p.Name]; dup {
			return nil, fmt.Errorf("duplicate profile %q in %s", p.Name, path)
		}
		r.byName[p.Name] = p
		r.order = append(r.order, p.Name)
	}
	return r, nil
}

// Get returns a profile by name. Returns (nil, false) if not found.
func (r *Registry) Get(name string) (*Profile, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// All returns all profiles in definition order.
func (r *Registry) All() []*Profile {
	result := make([]*Profile, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.byName[name])
	}
	return result
}

// Names returns a sorted list of profile names.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)
	return names
}

// Apply returns cfg with the profile's overrides applied.
func (p *Profile) Apply(cfg pipeline.Config) pipeline.Config {
	if p == nil {
		return cfg
	}
	if p.Clusters != nil {
		cfg.NumClusters = *p.Clusters
	}
	if p.MaxFeatures != nil {
		cfg.MaxFeatures = *p.MaxFeatures
	}
	if p.Keywords != nil {
		cfg.KeywordsPerLabel = *p.Keywords
	}
	if p.Seed != nil {
		cfg.RandomSeed = *p.Seed
	}
	if p.MaxIterations != nil {
		cfg.MaxIterations = *p.MaxIterations
	}
	if len(p.StopWords) > 0 {
		cfg.StopWordsExtra = append(append([]string(nil), cfg.StopWordsExtra...), p.StopWords...)
	}
	return cfg
}
