package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSelectsSQLite(t *testing.T) {
	cfg := Default()
	assert.Equal(t, uint8(9), cfg.PlayerVersion)
	assert.Equal(t, StorageSQLite, cfg.Storage.Kind)
}

func TestLoadOverridesDefaultsFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flashvm.yaml")
	yamlSrc := "player_version: 6\nopcode_budget: 1000\nstorage:\n  kind: mysql\n  dsn: user:pass@tcp(127.0.0.1:3306)/flash\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlSrc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), cfg.PlayerVersion)
	assert.Equal(t, uint64(1000), cfg.OpcodeBudget)
	assert.Equal(t, StorageMySQL, cfg.Storage.Kind)
	assert.Equal(t, "user:pass@tcp(127.0.0.1:3306)/flash", cfg.Storage.DSN)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestOpenStorageRejectsUnknownKind(t *testing.T) {
	cfg := Default()
	cfg.Storage.Kind = "carrier-pigeon"
	_, err := cfg.OpenStorage()
	assert.Error(t, err)
}
