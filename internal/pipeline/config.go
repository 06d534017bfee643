// Package pipeline runs the categorization of browsing history: records are
// vectorized, clustered, labeled and finally categorized.
package pipeline

import (
	"fmt"

	"github.com/nilookiamari/browser-activity-project/pkg/cluster"
	"github.com/nilookiamari/browser-activity-project/pkg/features"
	"github.com/nilookiamari/browser-activity-project/pkg/labels"
)

var (
	// ErrInvalidConfig is returned for unusable configuration values.
	ErrInvalidConfig = features.ErrInvalidConfig

	// ErrInvariant is returned when stage outputs disagree with each other.
	ErrInvariant = features.ErrInvariant
)

// Config controls one pipeline run.
type Config struct {
	MaxFeatures      int      `json:"max_features" yaml:"max_features"`
	StopWordsExtra   []string `json:"stop_words_extra" yaml:"stop_words_extra"`
	NumClusters      int      `json:"num_clusters" yaml:"num_clusters"`
	KeywordsPerLabel int      `json:"keywords_per_label" yaml:"keywords_per_label"`
	RandomSeed       int64    `json:"random_seed" yaml:"random_seed"`
	MaxIterations    int      `json:"max_iterations" yaml:"max_iterations"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		MaxFeatures:      features.DefaultMaxFeatures,
		StopWordsExtra:   append([]string(nil), features.URLStopWords...),
		NumClusters:      5,
		KeywordsPerLabel: labels.DefaultKeywords,
		RandomSeed:       42,
		MaxIterations:    cluster.DefaultMaxIter,
	}
}

// Validate reports the first unusable value.
func (c Config) Validate() error {
	if c.MaxFeatures <= 0 {
		return fmt.Errorf("%w: max_features must be positive, got %d", ErrInvalidConfig, c.MaxFeatures)
	}
	if c.NumClusters <= 0 {
		return fmt.Errorf("%w: got %d", cluster.ErrInvalidK, c.NumClusters)
	}
	if c.KeywordsPerLabel <= 0 {
		return fmt.Errorf("%w: keywords_per_label must be positive, got %d", ErrInvalidConfig, c.KeywordsPerLabel)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("%w: max_iterations must not be negative, got %d", ErrInvalidConfig, c.MaxIterations)
	}
	return nil
}
