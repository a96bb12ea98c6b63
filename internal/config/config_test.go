package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	for _, key := range []string{"DB_HOST", "DB_PASSWORD", "HTTP_PORT", "STORAGE_DRIVER"} {
		t.Setenv(key, "")
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[storage]
driver = "memory"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "PARKING", cfg.AccessCode.Namespace)
	assert.Equal(t, 256, cfg.AccessCode.QRSize)
	assert.Equal(t, "@every 1m", cfg.Expiry.Schedule)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[server]
http_port = 9000

[database]
host = "db.local"
dbname = "parking"
password = "from-file"
`)
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("DB_PASSWORD", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.HTTPPort)
	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.Contains(t, cfg.Database.DSN(), "dbname=parking")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"postgres without host", "[database]\ndbname = \"parking\"\n"},
		{"unknown driver", "[storage]\ndriver = \"mongo\"\n"},
		{"notifications without url", "[storage]\ndriver = \"memory\"\n[notification_service]\nenabled = true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.ErrorIs(t, err, ErrReadConfig)
}
