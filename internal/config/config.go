// Package config loads scope settings from defaults, YAML files and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	scerrors "github.com/Aman-CERP/scope/internal/errors"
)

// DefaultDedupeCacheSize is the default number of dispatched paths remembered.
const DefaultDedupeCacheSize = 4096

// Config holds the settings of one run.
type Config struct {
	// Classifier names the probe to use. Empty selects the first available.
	Classifier string
	// Jobs is the number of classification workers.
	Jobs int
	// Exclude holds user exclude substrings. The built-in set is always
	// added on top, so this never needs to repeat it.
	Exclude []string
	// OutputDir is where the indexers write their databases.
	OutputDir string
	// Gitignore also cuts subtrees ignored by .gitignore files.
	Gitignore bool
	// ProbeTimeout bounds one classifier subprocess. Zero means no limit.
	ProbeTimeout time.Duration
	// DedupeCacheSize bounds duplicate suppression. Zero disables it.
	DedupeCacheSize int
	// LogLevel is the console log level: debug, info, warn or error.
	LogLevel string
	Indexers IndexersConfig
}

// IndexersConfig switches the indexer backends on and off.
type IndexersConfig struct {
	Cscope bool
	Ctags  bool
}

// fileConfig is the YAML layout. Pointers tell "unset" from an explicit zero.
type fileConfig struct {
	Classifier      string   `yaml:"classifier,omitempty"`
	Jobs            *int     `yaml:"jobs"`
	Exclude         []string `yaml:"exclude,omitempty"`
	OutputDir       string   `yaml:"output_dir"`
	Gitignore       *bool    `yaml:"gitignore"`
	ProbeTimeout    string   `yaml:"probe_timeout,omitempty"`
	DedupeCacheSize *int     `yaml:"dedupe_cache_size"`
	LogLevel        string   `yaml:"log_level"`
	Indexers        struct {
		Cscope *bool `yaml:"cscope"`
		Ctags  *bool `yaml:"ctags"`
	} `yaml:"indexers"`
}

// NewConfig returns the defaults.
func NewConfig() *Config {
	return &Config{
		Jobs:            max(runtime.NumCPU(), 1),
		OutputDir:       ".",
		DedupeCacheSize: DefaultDedupeCacheSize,
		LogLevel:        "warn",
		Indexers: IndexersConfig{
			Cscope: true,
			Ctags:  true,
		},
	}
}

// GetUserConfigPath returns the path to the user configuration file:
//   - $XDG_CONFIG_HOME/scope/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/scope/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scope", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "scope", "config.yaml")
	}
	return filepath.Join(home, ".config", "scope", "config.yaml")
}

// UserConfigExists reports whether the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// ProjectConfigPath returns the project configuration file used in dir:
// .scope.yaml, or .scope.yml when only that exists.
func ProjectConfigPath(dir string) string {
	yml := filepath.Join(dir, ".scope.yml")
	if !fileExists(filepath.Join(dir, ".scope.yaml")) && fileExists(yml) {
		return yml
	}
	return filepath.Join(dir, ".scope.yaml")
}

// Load builds the configuration for a run started in dir.
// It applies, in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/scope/config.yaml)
//  3. Project config (.scope.yaml or .scope.yml in dir)
//  4. Environment variables (SCOPE_*), falling back to a .env file in dir
//
// Command-line flags are applied by the caller, then Validate.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userPath := GetUserConfigPath(); fileExists(userPath) {
		if err := cfg.loadYAML(userPath); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	dotenv, err := loadDotEnv(dir)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnvOverrides(dotenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile loads .scope.yaml, or .scope.yml when the former is missing.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{".scope.yaml", ".scope.yml"} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return c.loadYAML(path)
		}
	}
	return nil
}

// loadYAML merges the settings present in the file at path into c.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return scerrors.New(scerrors.ErrCodeConfigParse, "failed to read config file", err).
			WithDetail("path", path)
	}

	var parsed fileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return scerrors.New(scerrors.ErrCodeConfigParse, "failed to parse config file", err).
			WithDetail("path", path).
			WithSuggestion("check the YAML syntax in " + path)
	}

	if err := c.mergeWith(&parsed); err != nil {
		return scerrors.ConfigError("invalid value in config file", err).WithDetail("path", path)
	}
	return nil
}

// mergeWith copies the fields set in other into c.
func (c *Config) mergeWith(other *fileConfig) error {
	if other.Classifier != "" {
		c.Classifier = other.Classifier
	}
	if other.Jobs != nil {
		c.Jobs = *other.Jobs
	}
	if len(other.Exclude) > 0 {
		// Layers extend each other rather than replace
		c.Exclude = append(c.Exclude, other.Exclude...)
	}
	if other.OutputDir != "" {
		c.OutputDir = other.OutputDir
	}
	if other.Gitignore != nil {
		c.Gitignore = *other.Gitignore
	}
	if other.ProbeTimeout != "" {
		d, err := time.ParseDuration(other.ProbeTimeout)
		if err != nil {
			return fmt.Errorf("probe_timeout: %w", err)
		}
		c.ProbeTimeout = d
	}
	if other.DedupeCacheSize != nil {
		c.DedupeCacheSize = *other.DedupeCacheSize
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.Indexers.Cscope != nil {
		c.Indexers.Cscope = *other.Indexers.Cscope
	}
	if other.Indexers.Ctags != nil {
		c.Indexers.Ctags = *other.Indexers.Ctags
	}
	return nil
}

// MarshalYAML renders c in the configuration file layout.
func (c *Config) MarshalYAML() (any, error) {
	jobs, gitignore, size := c.Jobs, c.Gitignore, c.DedupeCacheSize
	cscope, ctags := c.Indexers.Cscope, c.Indexers.Ctags

	f := fileConfig{
		Classifier:      c.Classifier,
		Jobs:            &jobs,
		Exclude:         c.Exclude,
		OutputDir:       c.OutputDir,
		Gitignore:       &gitignore,
		DedupeCacheSize: &size,
		LogLevel:        c.LogLevel,
	}
	if c.ProbeTimeout > 0 {
		f.ProbeTimeout = c.ProbeTimeout.String()
	}
	f.Indexers.Cscope = &cscope
	f.Indexers.Ctags = &ctags
	return f, nil
}

// loadDotEnv reads dir/.env. A missing file yields no entries.
func loadDotEnv(dir string) (map[string]string, error) {
	path := filepath.Join(dir, ".env")
	if !fileExists(path) {
		return nil, nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, scerrors.New(scerrors.ErrCodeConfigParse, "failed to parse .env file", err).
			WithDetail("path", path)
	}
	return vars, nil
}

// applyEnvOverrides applies SCOPE_* variables. A variable set in the process
// environment wins over the same key in dotenv.
func (c *Config) applyEnvOverrides(dotenv map[string]string) error {
	getenv := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}

	if v := getenv("SCOPE_CLASSIFIER"); v != "" {
		c.Classifier = v
	}
	if v := getenv("SCOPE_JOBS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return scerrors.ConfigError("SCOPE_JOBS must be an integer", err).WithDetail("value", v)
		}
		c.Jobs = n
	}
	if v := getenv("SCOPE_EXCLUDE"); v != "" {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				c.Exclude = append(c.Exclude, part)
			}
		}
	}
	if v := getenv("SCOPE_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := getenv("SCOPE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("SCOPE_PROBE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return scerrors.ConfigError("SCOPE_PROBE_TIMEOUT must be a duration such as 5s", err).WithDetail("value", v)
		}
		c.ProbeTimeout = d
	}
	return nil
}

// Validate checks the configuration for values no run can use.
func (c *Config) Validate() error {
	if c.Jobs < 1 {
		return scerrors.ValidationError(fmt.Sprintf("jobs must be at least 1, got %d", c.Jobs), nil)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return scerrors.New(scerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.LogLevel), nil)
	}

	if c.DedupeCacheSize < 0 {
		return scerrors.New(scerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("dedupe_cache_size must be non-negative, got %d", c.DedupeCacheSize), nil)
	}

	if c.ProbeTimeout < 0 {
		return scerrors.New(scerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("probe_timeout must be non-negative, got %s", c.ProbeTimeout), nil)
	}

	if !c.Indexers.Cscope && !c.Indexers.Ctags {
		return scerrors.New(scerrors.ErrCodeConfigInvalid, "at least one indexer must be enabled", nil).
			WithSuggestion("set indexers.cscope or indexers.ctags to true")
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
