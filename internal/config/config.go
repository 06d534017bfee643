// Package config provides configuration management for browser-activity-project.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/nilookiamari/browser-activity-project/internal/pipeline"
	"github.com/nilookiamari/browser-activity-project/pkg/features"
)

const (
	// DataDirName is the directory under $HOME holding settings, profiles and results.
	DataDirName = ".browser-activity"

	// DefaultSource is the loader used when none is configured.
	DefaultSource = "csv"

	// DefaultDBDriver is the result store driver.
	DefaultDBDriver = "sqlite"
)

// Sources lists the supported history sources.
var Sources = []string{"csv", "chrome"}

// Config holds all runtime settings.
type Config struct {
	Source         string   `json:"HISTCLUST_SOURCE"`
	InputPath      string   `json:"HISTCLUST_INPUT"`
	ChromeSnapshot string   `json:"HISTCLUST_CHROME_SNAPSHOT"`
	OutputDir      string   `json:"HISTCLUST_OUTPUT_DIR"`
	Profile        string   `json:"HISTCLUST_PROFILE"`
	DBDriver       string   `json:"HISTCLUST_DB_DRIVER"`
	DBDSN          string   `json:"HISTCLUST_DB_DSN"`
	MaxConns       int      `json:"HISTCLUST_MAX_CONNS"`
	NumClusters    int      `json:"HISTCLUST_CLUSTERS"`
	MaxFeatures    int      `json:"HISTCLUST_MAX_FEATURES"`
	Keywords       int      `json:"HISTCLUST_KEYWORDS"`
	Seed           int64    `json:"HISTCLUST_SEED"`
	MaxIterations  int      `json:"HISTCLUST_MAX_ITERATIONS"`
	StopWords      []string `json:"HISTCLUST_STOP_WORDS"`
	RedactQueries  bool     `json:"HISTCLUST_REDACT_QUERIES"`
}

// Default returns the default configuration.
func Default() *Config {
	p := pipeline.DefaultConfig()
	return &Config{
		Source:         DefaultSource,
		InputPath:      filepath.Join("data", "sample_history.csv"),
		ChromeSnapshot: filepath.Join(DataDir(), "private", "History_copy.sqlite"),
		OutputDir:      "data",
		DBDriver:       DefaultDBDriver,
		DBDSN:          DBPath(),
		MaxConns:       4,
		NumClusters:    p.NumClusters,
		MaxFeatures:    p.MaxFeatures,
		Keywords:       p.KeywordsPerLabel,
		Seed:           p.RandomSeed,
		MaxIterations:  p.MaxIterations,
		StopWords:      append([]string(nil), features.URLStopWords...),
	}
}

// DataDir returns the data directory path.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, DataDirName)
}

// DBPath returns the default result database path.
func DBPath() string {
	return filepath.Join(DataDir(), "updated_history.sqlite")
}

// SettingsPath returns the settings file path.
func SettingsPath() string {
	return filepath.Join(DataDir(), "settings.json")
}

// ProfilesPath returns the run profiles file path.
func ProfilesPath() string {
	return filepath.Join(DataDir(), "profiles.yaml")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0750)
}

// EnsureSettings writes a default settings file if none exists.
func EnsureSettings() error {
	path := SettingsPath()
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	data, err := json.MarshalIndent(Default(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// EnsureAll creates the data directory and default settings.
func EnsureAll() error {
	if err := EnsureDataDir(); err != nil {
		return err
	}
	return EnsureSettings()
}

// Load reads settings.json over the defaults, then applies environment
// overrides. A missing or invalid settings file leaves the defaults in place.
func Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(SettingsPath())
	if err == nil {
		fromFile := *cfg
		if jsonErr := json.Unmarshal(data, &fromFile); jsonErr != nil {
			log.Warn().Err(jsonErr).Str("path", SettingsPath()).Msg("Invalid settings file, using defaults")
		} else {
			cfg = &fromFile
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	envString("HISTCLUST_SOURCE", &cfg.Source)
	envString("HISTCLUST_INPUT", &cfg.InputPath)
	envString("HISTCLUST_CHROME_SNAPSHOT", &cfg.ChromeSnapshot)
	envString("HISTCLUST_OUTPUT_DIR", &cfg.OutputDir)
	envString("HISTCLUST_PROFILE", &cfg.Profile)
	envString("HISTCLUST_DB_DRIVER", &cfg.DBDriver)
	envString("HISTCLUST_DB_DSN", &cfg.DBDSN)
	envInt("HISTCLUST_MAX_CONNS", &cfg.MaxConns)
	envInt("HISTCLUST_CLUSTERS", &cfg.NumClusters)
	envInt("HISTCLUST_MAX_FEATURES", &cfg.MaxFeatures)
	envInt("HISTCLUST_KEYWORDS", &cfg.Keywords)
	envInt("HISTCLUST_MAX_ITERATIONS", &cfg.MaxIterations)
	if v := os.Getenv("HISTCLUST_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = seed
		}
	}
	if v, ok := os.LookupEnv("HISTCLUST_STOP_WORDS"); ok {
		cfg.StopWords = splitTrim(v)
	}
	if v := os.Getenv("HISTCLUST_REDACT_QUERIES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.RedactQueries = b
		}
	}
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// envInt only accepts positive integers.
func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

// splitTrim splits a comma-separated list, dropping empty entries.
func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// Pipeline returns the categorization settings.
func (c *Config) Pipeline() pipeline.Config {
	return pipeline.Config{
		MaxFeatures:      c.MaxFeatures,
		StopWordsExtra:   append([]string(nil), c.StopWords...),
		NumClusters:      c.NumClusters,
		KeywordsPerLabel: c.Keywords,
		RandomSeed:       c.Seed,
		MaxIterations:    c.MaxIterations,
	}
}

// ValidSource reports whether source names a supported loader.
func ValidSource(source string) bool {
	for _, s := range Sources {
		if s == source {
			return true
		}
	}
	return false
}
