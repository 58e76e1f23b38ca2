package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnvFiles_Priority(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, ".env.local")
	base := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(local, []byte("LM_DOTENV_A=local\n"), 0o600))
	require.NoError(t, os.WriteFile(base, []byte("LM_DOTENV_A=base\nLM_DOTENV_B=base\n"), 0o600))
	t.Setenv("LM_DOTENV_A", "")
	t.Setenv("LM_DOTENV_B", "")
	require.NoError(t, os.Unsetenv("LM_DOTENV_A"))
	require.NoError(t, os.Unsetenv("LM_DOTENV_B"))

	loaded, err := loadDotEnvFiles(local, base, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, []string{local, base}, loaded)
	assert.Equal(t, "local", os.Getenv("LM_DOTENV_A"))
	assert.Equal(t, "base", os.Getenv("LM_DOTENV_B"))
}

func TestLoadDotEnvFiles_MalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, ".env.local")
	require.NoError(t, os.WriteFile(bad, []byte("LM_DOTENV_C='unterminated\n"), 0o600))

	_, err := loadDotEnvFiles(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
}

func TestLoadDotEnvFiles_NoFiles(t *testing.T) {
	loaded, err := loadDotEnvFiles(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
