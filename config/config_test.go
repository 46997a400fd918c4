package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Compile.IgnoreAliases)
	assert.True(t, cfg.Compile.KeepGoing)
	assert.Equal(t, 4096, cfg.Compile.MapThreshold)

	assert.Equal(t, "native", cfg.Dump.PreferredByteOrder)
	assert.False(t, cfg.Dump.ReuseExisting)

	assert.True(t, cfg.Patterns.LazyCompile)

	assert.Equal(t, 20, cfg.Diagnostics.ContextChars)
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()

	assert.NotEmpty(t, path)
	assert.Equal(t, "config.toml", filepath.Base(path))

	switch runtime.GOOS {
	case "windows":
		assert.True(t, filepath.IsAbs(path) || path == "config.toml", "expected absolute path on Windows, got %s", path)

	case "darwin", "linux":
		dir := filepath.Dir(path)
		assert.True(t, filepath.Base(dir) == "zcompile" || path == "config.toml", "expected path in zcompile directory or fallback, got %s", path)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	cfg := DefaultConfig()
	cfg.Compile.MapThreshold = 8192
	cfg.Compile.IgnoreAliases = false
	cfg.Dump.PreferredByteOrder = "little"
	cfg.Diagnostics.Color = false

	require.NoError(t, cfg.SaveTo(configPath))

	_, err := os.Stat(configPath)
	require.NoError(t, err, "config file was not created")

	loaded, err := LoadFrom(configPath)
	require.NoError(t, err)

	assert.Equal(t, 8192, loaded.Compile.MapThreshold)
	assert.False(t, loaded.Compile.IgnoreAliases)
	assert.Equal(t, "little", loaded.Dump.PreferredByteOrder)
	assert.False(t, loaded.Diagnostics.Color)
}

func TestLoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.toml")

	cfg, err := LoadFrom(configPath)
	require.NoError(t, err, "LoadFrom should not error on non-existent file")
	assert.Equal(t, 4096, cfg.Compile.MapThreshold, "expected default config when file doesn't exist")
}

func TestLoadInvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.toml")

	invalidTOML := `
[compile]
map_threshold = "not a number"  # Invalid: should be int
`
	require.NoError(t, os.WriteFile(configPath, []byte(invalidTOML), 0644))

	_, err := LoadFrom(configPath)
	assert.Error(t, err, "expected error when loading invalid TOML")
}

func TestSaveAndLoadYAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.yaml")

	cfg := DefaultConfig()
	cfg.Compile.MapThreshold = 2048
	cfg.Dump.PreferredByteOrder = "big"

	require.NoError(t, cfg.SaveTo(configPath))

	loaded, err := LoadFrom(configPath)
	require.NoError(t, err)

	assert.Equal(t, 2048, loaded.Compile.MapThreshold)
	assert.Equal(t, "big", loaded.Dump.PreferredByteOrder)
}

func TestSaveCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "subdir1", "subdir2", "config.toml")

	cfg := DefaultConfig()
	require.NoError(t, cfg.SaveTo(configPath))

	_, err := os.Stat(configPath)
	assert.NoError(t, err, "config file was not created")

	dir := filepath.Dir(configPath)
	_, err = os.Stat(dir)
	assert.NoError(t, err, "parent directories were not created")
}
