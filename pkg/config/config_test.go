package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-dashcompose/components/dashboard"
)

const sampleTOML = `
[server]
addr = ":9000"
router = "fiber"

[visualization]
url = "https://viz.example.com"
token = "secret"

[store]
driver = "redis"
redis_addr = "localhost:6379"
redis_db = 2

[log]
level = "debug"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dashcompose.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleTOML))
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, RouterFiber, cfg.Server.Router)
	assert.Equal(t, "/admin", cfg.Server.BasePath)
	assert.Equal(t, DriverRedis, cfg.Store.Driver)
	assert.Equal(t, 2, cfg.Store.RedisDB)
	assert.Equal(t, "dashcompose", cfg.Store.RedisPrefix)
	assert.Equal(t, log.DebugLevel, cfg.LogLevel())
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DASHCOMPOSE_STORE_DRIVER", "mongo")
	t.Setenv("DASHCOMPOSE_MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("DASHCOMPOSE_SERVER_SEED", "true")
	t.Setenv("DASHCOMPOSE_REDIS_DB", "5")
	cfg, err := Load(writeConfig(t, sampleTOML))
	require.NoError(t, err)
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Store.MongoURI)
	assert.True(t, cfg.Server.Seed)
	assert.Equal(t, 5, cfg.Store.RedisDB)

	t.Setenv("DASHCOMPOSE_REDIS_DB", "five")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidateCollectsMissing(t *testing.T) {
	cfg := Default()
	cfg.Store.Driver = DriverFile
	cfg.Store.Path = ""
	cfg.Server.Router = "gin"
	err := cfg.Validate()
	var cfgErr *dashboard.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{
		"visualization url",
		"visualization token",
		"store path",
		`server router (unknown "gin")`,
	}, cfgErr.Missing)

	cfg = Default()
	cfg.Visualization.Optional = true
	assert.NoError(t, cfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)

	_, err = Load(writeConfig(t, "[server\naddr ="))
	assert.Error(t, err)
}

func TestLogLevelFallback(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	assert.Equal(t, log.InfoLevel, cfg.LogLevel())
}
