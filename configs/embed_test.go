package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigTemplate_IsEmptyDocument(t *testing.T) {
	// Given the embedded template
	require.NotEmpty(t, ConfigTemplate)

	// When parsed as YAML
	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(ConfigTemplate), &parsed))

	// Then every setting is commented out
	assert.Empty(t, parsed)
}

func TestConfigTemplate_DocumentsEveryKey(t *testing.T) {
	for _, key := range []string{
		"classifier:", "jobs:", "exclude:", "output_dir:", "gitignore:",
		"probe_timeout:", "dedupe_cache_size:", "log_level:", "indexers:",
	} {
		assert.Contains(t, ConfigTemplate, "# "+key)
	}
}
