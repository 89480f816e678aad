package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnvFileMissingIsNoop(t *testing.T) {
	assert.NoError(t, LoadDotEnvFile(filepath.Join(t.TempDir(), ".env")))
}

func TestLoadDotEnvFileSetsOnlyUnsetKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nAUTOBOT_SELF_NAME='bot'\nexport AUTOBOT_WS_SERVER=\"ws://from-file\"\nAUTOBOT_LOG_LEVEL=debug\nnot a pair\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// t.Setenv registers cleanup so keys set by the loader are restored too.
	t.Setenv("AUTOBOT_SELF_NAME", "")
	os.Unsetenv("AUTOBOT_SELF_NAME")
	t.Setenv("AUTOBOT_WS_SERVER", "")
	os.Unsetenv("AUTOBOT_WS_SERVER")
	t.Setenv("AUTOBOT_LOG_LEVEL", "warn")

	require.NoError(t, LoadDotEnvFile(path))

	assert.Equal(t, "bot", os.Getenv("AUTOBOT_SELF_NAME"))
	assert.Equal(t, "ws://from-file", os.Getenv("AUTOBOT_WS_SERVER"))
	assert.Equal(t, "warn", os.Getenv("AUTOBOT_LOG_LEVEL"))
}
