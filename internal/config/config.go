// Package config loads dataio configuration with viper.
//
// Sources, later ones winning: built-in defaults, an optional YAML file
// (DATAIO_CONFIG, or dataio.yaml in the working directory), then
// environment variables prefixed DATAIO_ with dots replaced by
// underscores, e.g. DATAIO_STORE_DRIVER or DATAIO_STORAGE_MEDIA_ROOT.
package config

import (
	"time"

	"github.com/JonMunkholm/dataio/internal/core"
	"github.com/JonMunkholm/dataio/internal/store"
)

// Config holds all dataio configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Export  ExportConfig  `mapstructure:"export"`
	Store   StoreConfig   `mapstructure:"store"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Jobs    JobsConfig    `mapstructure:"jobs"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// StorageConfig locates the export and import directories.
type StorageConfig struct {
	// MediaRoot, when set, is the data root itself
	MediaRoot string `mapstructure:"media_root"`

	// BaseDir holds the media directory when MediaRoot is unset (default: .)
	BaseDir string `mapstructure:"base_dir"`

	MediaDirName  string `mapstructure:"media_dir_name"`
	ExportDirName string `mapstructure:"export_dir_name"`
	ImportDirName string `mapstructure:"import_dir_name"`
}

// ExportConfig holds export behavior settings.
type ExportConfig struct {
	// KeepEmptyCells writes a blank cell for empty values instead of
	// omitting it (default: false)
	KeepEmptyCells bool `mapstructure:"keep_empty_cells"`
}

// StoreConfig selects the record store.
type StoreConfig struct {
	// Driver is one of sqlite, postgres, memory (default: sqlite)
	Driver string `mapstructure:"driver"`

	// DSN is the sqlite file path or the postgres URL (default: dataio.db)
	DSN string `mapstructure:"dsn"`

	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// CatalogConfig points at an optional YAML field catalog. When Path is
// empty the store's dataio_fields table is used.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// JobsConfig bounds concurrent export and import jobs.
type JobsConfig struct {
	MaxConcurrent int           `mapstructure:"max_concurrent"` // default: 4
	MaxWait       time.Duration `mapstructure:"max_wait"`       // default: 30s
}

// ServerConfig holds settings for `dataio serve`.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`            // default: :8080
	MaxUploadSize  int64         `mapstructure:"max_upload_size"` // bytes, default: 100MB
	RequestTimeout time.Duration `mapstructure:"request_timeout"` // default: 5m
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `mapstructure:"level"`

	// Format is the log format: text or json (default: text)
	Format string `mapstructure:"format"`
}

// Layout returns the directory layout for the storage settings.
func (c *Config) Layout() core.Layout {
	return core.Layout{
		MediaRoot:     c.Storage.MediaRoot,
		BaseDir:       c.Storage.BaseDir,
		MediaDirName:  c.Storage.MediaDirName,
		ExportDirName: c.Storage.ExportDirName,
		ImportDirName: c.Storage.ImportDirName,
	}
}

// CellPolicy returns the export cell policy.
func (c *Config) CellPolicy() core.CellPolicy {
	if c.Export.KeepEmptyCells {
		return core.CellsKeepEmpty
	}
	return core.CellsOmitEmpty
}

// Limiter returns a job limiter for the jobs settings.
func (c *Config) Limiter() *core.JobLimiter {
	return core.NewJobLimiter(c.Jobs.MaxConcurrent, c.Jobs.MaxWait)
}

// StoreOptions returns the options for store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Driver:          c.Store.Driver,
		DSN:             c.Store.DSN,
		MaxConns:        c.Store.MaxConns,
		MinConns:        c.Store.MinConns,
		MaxConnLifetime: c.Store.MaxConnLifetime,
		MaxConnIdleTime: c.Store.MaxConnIdleTime,
	}
}
