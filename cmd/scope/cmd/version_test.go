package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/scope/pkg/version"
)

func TestVersionCmd(t *testing.T) {
	isolate(t)

	t.Run("default", func(t *testing.T) {
		stdout, _, err := execute(deps{}, "version")
		require.NoError(t, err)
		assert.Equal(t, version.String()+"\n", stdout)
	})

	t.Run("short", func(t *testing.T) {
		stdout, _, err := execute(deps{}, "version", "--short", "--json")
		require.NoError(t, err)
		assert.Equal(t, version.Version, strings.TrimSpace(stdout))
	})

	t.Run("json", func(t *testing.T) {
		stdout, _, err := execute(deps{}, "version", "--json")
		require.NoError(t, err)

		var info version.BuildInfo
		require.NoError(t, json.Unmarshal([]byte(stdout), &info))
		assert.Equal(t, version.Version, info.Version)
	})
}

func TestRootCmd_VersionFlag(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(deps{}, "--version")

	require.NoError(t, err)
	assert.Equal(t, "scope version "+version.Version+"\n", stdout)
}
