package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/nilookiamari/browser-activity-project/pkg/features"
)

var envKeys = []string{
	"HISTCLUST_SOURCE", "HISTCLUST_INPUT", "HISTCLUST_CLUSTERS", "HISTCLUST_SEED",
	"HISTCLUST_STOP_WORDS", "HISTCLUST_REDACT_QUERIES", "HISTCLUST_MAX_FEATURES",
}

// ConfigSuite is a test suite for config operations.
type ConfigSuite struct {
	suite.Suite
	tempDir     string
	origHomeDir string
}

func (s *ConfigSuite) SetupTest() {
	var err error
	s.tempDir, err = os.MkdirTemp("", "config-test-*")
	s.Require().NoError(err)

	// Save and override HOME
	s.origHomeDir = os.Getenv("HOME")
	os.Setenv("HOME", s.tempDir)
	for _, k := range envKeys {
		os.Unsetenv(k)
	}
}

func (s *ConfigSuite) TearDownTest() {
	os.Setenv("HOME", s.origHomeDir)
	os.RemoveAll(s.tempDir)
	for _, k := range envKeys {
		os.Unsetenv(k)
	}
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) writeSettings(content string) {
	err := os.MkdirAll(filepath.Join(s.tempDir, DataDirName), 0750)
	s.Require().NoError(err)
	err = os.WriteFile(filepath.Join(s.tempDir, DataDirName, "settings.json"), []byte(content), 0600)
	s.Require().NoError(err)
}

// TestDefault tests default configuration values.
func (s *ConfigSuite) TestDefault() {
	cfg := Default()

	s.Equal(DefaultSource, cfg.Source)
	s.Equal(DefaultDBDriver, cfg.DBDriver)
	s.Equal(5, cfg.NumClusters)
	s.Equal(1000, cfg.MaxFeatures)
	s.Equal(1, cfg.Keywords)
	s.Equal(int64(42), cfg.Seed)
	s.Equal(features.URLStopWords, cfg.StopWords)
	s.False(cfg.RedactQueries)
	s.NoError(cfg.Pipeline().Validate())
}

// TestPaths tests data directory derived paths.
func (s *ConfigSuite) TestPaths() {
	s.Contains(DataDir(), DataDirName)
	s.Contains(DBPath(), "updated_history.sqlite")
	s.Contains(SettingsPath(), "settings.json")
	s.Contains(ProfilesPath(), "profiles.yaml")
}

// TestEnsureAll tests full initialization.
func (s *ConfigSuite) TestEnsureAll() {
	s.Require().NoError(EnsureAll())

	info, err := os.Stat(DataDir())
	s.NoError(err)
	s.True(info.IsDir())
	_, err = os.Stat(SettingsPath())
	s.NoError(err)

	// Second call keeps the existing file
	s.NoError(EnsureSettings())

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(Default().NumClusters, cfg.NumClusters)
}

// TestLoad_TableDriven tests configuration loading with various scenarios.
func (s *ConfigSuite) TestLoad_TableDriven() {
	tests := []struct {
		name             string
		settingsJSON     string
		expectedClusters int
		expectedSource   string
		expectedSeed     int64
	}{
		{
			name:             "no settings file",
			expectedClusters: 5,
			expectedSource:   DefaultSource,
			expectedSeed:     42,
		},
		{
			name:             "custom clusters",
			settingsJSON:     `{"HISTCLUST_CLUSTERS": 8}`,
			expectedClusters: 8,
			expectedSource:   DefaultSource,
			expectedSeed:     42,
		},
		{
			name:             "multiple settings",
			settingsJSON:     `{"HISTCLUST_SOURCE": "chrome", "HISTCLUST_SEED": 7, "HISTCLUST_CLUSTERS": 3}`,
			expectedClusters: 3,
			expectedSource:   "chrome",
			expectedSeed:     7,
		},
		{
			name:             "invalid JSON returns defaults",
			settingsJSON:     `{invalid}`,
			expectedClusters: 5,
			expectedSource:   DefaultSource,
			expectedSeed:     42,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			os.Remove(SettingsPath())
			if tt.settingsJSON != "" {
				s.writeSettings(tt.settingsJSON)
			}

			cfg, err := Load()
			s.NoError(err)
			s.Require().NotNil(cfg)
			s.Equal(tt.expectedClusters, cfg.NumClusters)
			s.Equal(tt.expectedSource, cfg.Source)
			s.Equal(tt.expectedSeed, cfg.Seed)
		})
	}
}

// TestEnvOverrides tests that environment variables win over settings.json.
func (s *ConfigSuite) TestEnvOverrides() {
	s.writeSettings(`{"HISTCLUST_CLUSTERS": 8, "HISTCLUST_SOURCE": "chrome"}`)

	os.Setenv("HISTCLUST_CLUSTERS", "12")
	os.Setenv("HISTCLUST_SEED", "-3")
	os.Setenv("HISTCLUST_STOP_WORDS", "foo, bar,,")
	os.Setenv("HISTCLUST_REDACT_QUERIES", "true")
	os.Setenv("HISTCLUST_MAX_FEATURES", "not-a-number")

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(12, cfg.NumClusters)
	s.Equal("chrome", cfg.Source)
	s.Equal(int64(-3), cfg.Seed)
	s.Equal([]string{"foo", "bar"}, cfg.StopWords)
	s.True(cfg.RedactQueries)
	s.Equal(1000, cfg.MaxFeatures)

	p := cfg.Pipeline()
	s.Equal(12, p.NumClusters)
	s.Equal(int64(-3), p.RandomSeed)
}

// TestSplitTrim tests the splitTrim helper function.
func TestSplitTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string", input: "", expected: []string{}},
		{name: "single value", input: "reddit", expected: []string{"reddit"}},
		{name: "values with spaces", input: " reddit , login , home ", expected: []string{"reddit", "login", "home"}},
		{name: "empty values filtered", input: "reddit,,login,,", expected: []string{"reddit", "login"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitTrim(tt.input))
		})
	}
}

func TestValidSource(t *testing.T) {
	assert.True(t, ValidSource("csv"))
	assert.True(t, ValidSource("chrome"))
	assert.False(t, ValidSource("firefox"))
}
