package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnvironmentDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Redis.Host)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 3306, cfg.MariaDB.Port)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_PASSWORD", "hunter2")
	t.Setenv("MARIADB_USER", "app")
	t.Setenv("PGDATABASE", "appdb")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "cache.internal", cfg.Redis.Host)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.Equal(t, "hunter2", cfg.Redis.Password)
	assert.Equal(t, "app", cfg.MariaDB.Username)
	assert.Equal(t, "appdb", cfg.Postgres.Database)
}

func TestLoad_FromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
redis:
  host: cache.internal
  db: 3
mariadb:
  host: db.internal
  database: appdb
postgres:
  host: pg.internal
  ssl_mode: require
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "cache.internal", cfg.Redis.Host)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "db.internal", cfg.MariaDB.Host)
	assert.Equal(t, "appdb", cfg.MariaDB.Database)
	assert.Equal(t, "pg.internal", cfg.Postgres.Host)
	assert.Equal(t, "require", cfg.Postgres.SSLMode)
}

func TestLoad_SecretsComeFromEnvironmentOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
mariadb:
  host: db.internal
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	t.Setenv("MARIADB_PASSWORD", "supersecret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.MariaDB.Host)
	assert.Equal(t, "supersecret", cfg.MariaDB.Password)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestCredentialConverters(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("MARIADB_DATABASE", "appdb")
	t.Setenv("PGUSER", "svc")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "cache.internal", cfg.RedisCredentials().Host)
	assert.Equal(t, "appdb", cfg.MariaDBCredentials().Database)
	assert.Equal(t, "svc", cfg.PostgresCredentials().Username)
}
