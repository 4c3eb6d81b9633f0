package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, int64(0), cfg.MaxBatchRows)
	assert.False(t, cfg.Compress)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quarry.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\nmax_batch_rows: 128\ncompress: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, int64(128), cfg.MaxBatchRows)
	assert.True(t, cfg.Compress)
}

func TestRejectsNegativeBatchRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quarry.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_batch_rows: -1\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
