package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range configCmd.Commands() {
		names = append(names, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"show", "set", "path"}, names)
}

func TestConfigShowCmd(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[chunking]")
	assert.Contains(t, out, "window = 1000")
	assert.Contains(t, out, "max_results = 3")
}

func TestConfigSetCmd(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	t.Run("valid value is stored", func(t *testing.T) {
		out, err := execute(t, "config", "set", "retrieval.max_results", "7")

		require.NoError(t, err)
		assert.Contains(t, out, "retrieval.max_results = 7")

		settings, err := settingsService.Get()
		require.NoError(t, err)
		assert.Equal(t, 7, settings.Retrieval.MaxResults)
	})

	t.Run("invalid value is rejected", func(t *testing.T) {
		_, err := execute(t, "config", "set", "chunking.window", "zero")
		assert.Error(t, err)
	})

	t.Run("unknown key is rejected", func(t *testing.T) {
		_, err := execute(t, "config", "set", "search.mode", "hybrid")
		assert.Error(t, err)
	})

	t.Run("requires key and value", func(t *testing.T) {
		_, err := execute(t, "config", "set", "chunking.window")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "accepts 2 arg(s)")
	})
}

func TestConfigPathCmd(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "config", "path")

	require.NoError(t, err)
	assert.Equal(t, configStore.Path()+"\n", out)
}
