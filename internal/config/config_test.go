package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/dataio/internal/core"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Storage.BaseDir)
	assert.Equal(t, core.DefaultExportDirName, cfg.Storage.ExportDirName)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "dataio.db", cfg.Store.DSN)
	assert.Equal(t, 10, cfg.Store.MaxConns)
	assert.Equal(t, time.Hour, cfg.Store.MaxConnLifetime)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, core.CellsOmitEmpty, cfg.CellPolicy())
	assert.Equal(t, core.DefaultMaxConcurrentJobs, cfg.Limiter().MaxConcurrent())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, int64(100<<20), cfg.Server.MaxUploadSize)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATAIO_STORE_DRIVER", "memory")
	t.Setenv("DATAIO_STORAGE_MEDIA_ROOT", "/srv/media")
	t.Setenv("DATAIO_EXPORT_KEEP_EMPTY_CELLS", "true")
	t.Setenv("DATAIO_LOGGING_LEVEL", "debug")
	t.Setenv("DATAIO_STORE_MAX_CONN_IDLE_TIME", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "/srv/media", cfg.Layout().Root())
	assert.Equal(t, core.CellsKeepEmpty, cfg.CellPolicy())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 5*time.Minute, cfg.Store.MaxConnIdleTime)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "custom.yaml")
	content := "store:\n  driver: postgres\n  dsn: postgres://u:p@db/dataio\ncatalog:\n  path: fields.yaml\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv(ConfigPathEnv, path)
	t.Setenv("DATAIO_STORE_MAX_CONNS", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://u:p@db/dataio", cfg.StoreOptions().DSN)
	assert.Equal(t, 4, cfg.StoreOptions().MaxConns)
	assert.Equal(t, "fields.yaml", cfg.Catalog.Path)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATAIO_STORE_DRIVER", "mongo")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Storage: StorageConfig{ExportDirName: "a/b"},
		Store:   StoreConfig{Driver: "sqlite", MaxConns: 1, MinConns: 3},
		Logging: LoggingConfig{Level: "loud", Format: "xml"},
	}

	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{
		"storage.base_dir",
		"storage.export_dir_name",
		"store.dsn",
		"store.max_conns (1) must be >= store.min_conns (3)",
		"logging.level",
		"logging.format",
	} {
		assert.Contains(t, msg, want)
	}
	assert.Equal(t, 6, strings.Count(msg, "\n  - "))
}

func TestString_MasksDSN(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Driver: "postgres", DSN: "postgres://user:secret@db/dataio"}}

	s := cfg.String()
	assert.NotContains(t, s, "secret")
	assert.Contains(t, s, "[MASKED]")
}
