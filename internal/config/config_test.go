package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	scerrors "github.com/Aman-CERP/scope/internal/errors"
)

// isolate points the user config at an empty directory and clears SCOPE_* vars.
func isolate(t *testing.T) string {
	t.Helper()
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	for _, k := range []string{
		"SCOPE_CLASSIFIER", "SCOPE_JOBS", "SCOPE_EXCLUDE",
		"SCOPE_OUTPUT_DIR", "SCOPE_LOG_LEVEL", "SCOPE_PROBE_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
	return xdg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "", cfg.Classifier)
	assert.Equal(t, runtime.NumCPU(), cfg.Jobs)
	assert.Empty(t, cfg.Exclude)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.False(t, cfg.Gitignore)
	assert.Equal(t, time.Duration(0), cfg.ProbeTimeout)
	assert.Equal(t, DefaultDedupeCacheSize, cfg.DedupeCacheSize)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.Indexers.Cscope)
	assert.True(t, cfg.Indexers.Ctags)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoConfigFile_ReturnsDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
}

func TestLoad_ProjectYaml_OverridesDefaults(t *testing.T) {
	// Given: a project config
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".scope.yaml"), `
classifier: xdg-mime
jobs: 3
exclude: [/build/, /node_modules/]
output_dir: /tmp/tags
gitignore: true
probe_timeout: 2s
dedupe_cache_size: 0
log_level: debug
indexers:
  ctags: false
`)

	// When: loading
	cfg, err := Load(dir)

	// Then: every set field wins and unset ones keep their defaults
	require.NoError(t, err)
	assert.Equal(t, "xdg-mime", cfg.Classifier)
	assert.Equal(t, 3, cfg.Jobs)
	assert.Equal(t, []string{"/build/", "/node_modules/"}, cfg.Exclude)
	assert.Equal(t, "/tmp/tags", cfg.OutputDir)
	assert.True(t, cfg.Gitignore)
	assert.Equal(t, 2*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 0, cfg.DedupeCacheSize)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Indexers.Cscope)
	assert.False(t, cfg.Indexers.Ctags)
}

func TestLoad_YmlExtension_IsRecognized(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".scope.yml"), "jobs: 5\n")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Jobs)
}

func TestLoad_YamlPreferredOverYml(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".scope.yaml"), "jobs: 2\n")
	writeFile(t, filepath.Join(dir, ".scope.yml"), "jobs: 7\n")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Jobs)
}

func TestLoad_LayerPrecedence(t *testing.T) {
	// Given: user, project and environment settings
	xdg := isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(xdg, "scope", "config.yaml"), `
classifier: file
jobs: 2
exclude: [/user/]
log_level: info
`)
	writeFile(t, filepath.Join(dir, ".scope.yaml"), `
jobs: 4
exclude: [/project/]
`)
	t.Setenv("SCOPE_JOBS", "6")
	t.Setenv("SCOPE_EXCLUDE", "/env/, /env2/")

	// When: loading
	cfg, err := Load(dir)

	// Then: later layers override scalars and extend excludes
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Classifier)
	assert.Equal(t, 6, cfg.Jobs)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"/user/", "/project/", "/env/", "/env2/"}, cfg.Exclude)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SCOPE_CLASSIFIER", "xdg-mime")
	t.Setenv("SCOPE_OUTPUT_DIR", "/var/tags")
	t.Setenv("SCOPE_LOG_LEVEL", "error")
	t.Setenv("SCOPE_PROBE_TIMEOUT", "750ms")

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, "xdg-mime", cfg.Classifier)
	assert.Equal(t, "/var/tags", cfg.OutputDir)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 750*time.Millisecond, cfg.ProbeTimeout)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		project  string
		env      map[string]string
		wantCode string
	}{
		{
			name:     "invalid yaml",
			project:  "jobs: [unclosed\n",
			wantCode: scerrors.ErrCodeConfigParse,
		},
		{
			name:     "wrong field type",
			project:  "jobs: many\n",
			wantCode: scerrors.ErrCodeConfigParse,
		},
		{
			name:     "bad probe timeout in file",
			project:  "probe_timeout: soon\n",
			wantCode: scerrors.ErrCodeConfigInvalid,
		},
		{
			name:     "zero jobs",
			project:  "jobs: 0\n",
			wantCode: scerrors.ErrCodeInvalidInput,
		},
		{
			name:     "unknown log level",
			project:  "log_level: loud\n",
			wantCode: scerrors.ErrCodeConfigInvalid,
		},
		{
			name:     "negative cache",
			project:  "dedupe_cache_size: -1\n",
			wantCode: scerrors.ErrCodeConfigInvalid,
		},
		{
			name:     "negative timeout",
			project:  "probe_timeout: -1s\n",
			wantCode: scerrors.ErrCodeConfigInvalid,
		},
		{
			name:     "no indexer",
			project:  "indexers:\n  cscope: false\n  ctags: false\n",
			wantCode: scerrors.ErrCodeConfigInvalid,
		},
		{
			name:     "non-numeric SCOPE_JOBS",
			env:      map[string]string{"SCOPE_JOBS": "lots"},
			wantCode: scerrors.ErrCodeConfigInvalid,
		},
		{
			name:     "bad SCOPE_PROBE_TIMEOUT",
			env:      map[string]string{"SCOPE_PROBE_TIMEOUT": "10"},
			wantCode: scerrors.ErrCodeConfigInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			dir := t.TempDir()
			if tt.project != "" {
				writeFile(t, filepath.Join(dir, ".scope.yaml"), tt.project)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(dir)

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, scerrors.GetCode(err))
		})
	}
}

func TestLoad_InvalidUserConfig_ReturnsError(t *testing.T) {
	xdg := isolate(t)
	writeFile(t, filepath.Join(xdg, "scope", "config.yaml"), "::not yaml::\n\t- x")

	_, err := Load(t.TempDir())

	require.Error(t, err)
	assert.Equal(t, scerrors.ErrCodeConfigParse, scerrors.GetCode(err))
}

func TestGetUserConfigPath(t *testing.T) {
	t.Run("respects XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		assert.Equal(t, filepath.Join("/custom/config", "scope", "config.yaml"), GetUserConfigPath())
	})

	t.Run("defaults under home", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, err := os.UserHomeDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".config", "scope", "config.yaml"), GetUserConfigPath())
	})
}

func TestConfig_MarshalYAML_LoadsBack(t *testing.T) {
	// Given a configuration that differs from the defaults
	isolate(t)
	cfg := NewConfig()
	cfg.Classifier = "xdg-mime"
	cfg.Jobs = 3
	cfg.Exclude = []string{"/vendor/"}
	cfg.Gitignore = true
	cfg.ProbeTimeout = 2 * time.Second
	cfg.DedupeCacheSize = 0
	cfg.Indexers.Ctags = false

	// When it is written as a project config and loaded again
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".scope.yaml"), string(data))
	loaded, err := Load(dir)

	// Then every field survives, explicit zeros included
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.Contains(t, string(data), "probe_timeout: 2s")
}

func TestProjectConfigPath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, ".scope.yaml"), ProjectConfigPath(dir))

	writeFile(t, filepath.Join(dir, ".scope.yml"), "jobs: 2\n")
	assert.Equal(t, filepath.Join(dir, ".scope.yml"), ProjectConfigPath(dir))

	writeFile(t, filepath.Join(dir, ".scope.yaml"), "jobs: 2\n")
	assert.Equal(t, filepath.Join(dir, ".scope.yaml"), ProjectConfigPath(dir))
}

func TestUserConfigExists(t *testing.T) {
	xdg := isolate(t)
	assert.False(t, UserConfigExists())

	writeFile(t, filepath.Join(xdg, "scope", "config.yaml"), "jobs: 2\n")
	assert.True(t, UserConfigExists())
}

func TestLoad_DotEnv(t *testing.T) {
	// Given a .env file next to the project config
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".scope.yaml"), "jobs: 2\n")
	writeFile(t, filepath.Join(dir, ".env"), "SCOPE_JOBS=5\nSCOPE_LOG_LEVEL=info\nOTHER=1\n")

	// When loaded with SCOPE_LOG_LEVEL also set in the environment
	t.Setenv("SCOPE_LOG_LEVEL", "error")
	cfg, err := Load(dir)

	// Then the file overrides the YAML and the environment overrides the file
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Jobs)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_DotEnvInvalid(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), "SCOPE_JOBS='unterminated\n")

	_, err := Load(dir)

	require.Error(t, err)
	assert.Equal(t, scerrors.ErrCodeConfigParse, scerrors.GetCode(err))
}
