package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
  mode: debug
database:
  host: db.internal
  user: precedex
  db_name: precedex
engine:
  edge_threshold: 0.9
  top_k: 10
  miner: cooccurrence
log:
  level: debug
  format: console
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 0.9, cfg.Engine.EdgeThreshold)
	assert.Equal(t, 10, cfg.Engine.TopK)
	assert.Equal(t, "cooccurrence", cfg.Engine.Miner)

	// Unset fields picked up defaults.
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "file", cfg.Snapshot.Backend)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidConfig(t *testing.T) {
	path := writeConfigFile(t, `
server:
  mode: nonsense
database:
  host: db
  user: u
  db_name: d
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "server.mode")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PRECEDEX_DATABASE_HOST", "envhost")
	t.Setenv("PRECEDEX_DATABASE_USER", "envuser")
	t.Setenv("PRECEDEX_DATABASE_DB_NAME", "envdb")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "envhost", cfg.Database.Host)
	assert.Equal(t, "envuser", cfg.Database.User)
	assert.Equal(t, "envdb", cfg.Database.DBName)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
database:
  host: filehost
  user: precedex
  db_name: precedex
`)
	t.Setenv("PRECEDEX_DATABASE_HOST", "envhost")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "envhost", cfg.Database.Host)
}
