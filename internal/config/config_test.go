package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	require.Equal(t, "mongograph", cfg.MongoDatabase)
	require.Equal(t, 30*time.Second, cfg.Timeout)
	require.Empty(t, cfg.OTelEndpoint)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  addr: ":9090"
  pretty: true
  timeout: 5s
mongo:
  uri: mongodb://db:27017
  database: app
otel:
  endpoint: collector:4317
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Addr)
	require.True(t, cfg.Pretty)
	require.Equal(t, 5*time.Second, cfg.Timeout)
	require.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	require.Equal(t, "app", cfg.MongoDatabase)
	require.Equal(t, "collector:4317", cfg.OTelEndpoint)
	require.Equal(t, "mongograph", cfg.OTelService)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MONGOGRAPH_MONGO_DATABASE", "from_env")
	t.Setenv("MONGOGRAPH_SERVER_ADDR", ":7070")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "from_env", cfg.MongoDatabase)
	require.Equal(t, ":7070", cfg.Addr)
}
