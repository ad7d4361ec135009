package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "env: dev\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "storage/records.db", cfg.Storage.Path)
	assert.Equal(t, "localhost:8082", cfg.Addr)
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
env: prod
storage:
  driver: postgres
  dsn: postgres://records@localhost/records
http_server:
  address: 0.0.0.0:9000
  allowed_origins:
    - http://localhost:3000
    - https://records.example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://records@localhost/records", cfg.Storage.DSN)
	assert.Equal(t, "0.0.0.0:9000", cfg.HTTPServer.Addr)
	assert.Equal(t, []string{"http://localhost:3000", "https://records.example.com"}, cfg.AllowedOrigins)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	path := writeConfig(t, "env: dev\nstorage:\n  driver: sqlite\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown driver", "env: dev\nstorage:\n  driver: mongo\n"},
		{"postgres without dsn", "env: dev\nstorage:\n  driver: postgres\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
