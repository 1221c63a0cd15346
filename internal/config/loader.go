package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JonMunkholm/dataio/internal/core"
	"github.com/JonMunkholm/dataio/internal/store"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DATAIO"

// ConfigPathEnv names an explicit config file.
const ConfigPathEnv = "DATAIO_CONFIG"

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.media_root", "")
	v.SetDefault("storage.base_dir", ".")
	v.SetDefault("storage.media_dir_name", core.DefaultMediaDirName)
	v.SetDefault("storage.export_dir_name", core.DefaultExportDirName)
	v.SetDefault("storage.import_dir_name", core.DefaultImportDirName)

	v.SetDefault("export.keep_empty_cells", false)

	v.SetDefault("store.driver", store.DriverSQLite)
	v.SetDefault("store.dsn", "dataio.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("store.max_conn_lifetime", time.Hour)
	v.SetDefault("store.max_conn_idle_time", 30*time.Minute)

	v.SetDefault("catalog.path", "")

	v.SetDefault("jobs.max_concurrent", core.DefaultMaxConcurrentJobs)
	v.SetDefault("jobs.max_wait", core.DefaultMaxWait)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_size", 100<<20)
	v.SetDefault("server.request_timeout", 5*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Load reads defaults, the optional config file and the environment, then
// validates the result.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path := os.Getenv(ConfigPathEnv); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("dataio")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config load: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// MustLoad loads configuration and panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks every setting and reports all failures at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Storage.MediaRoot == "" && c.Storage.BaseDir == "" {
		errs = append(errs, "storage.base_dir is required when storage.media_root is unset")
	}
	if strings.ContainsAny(c.Storage.ExportDirName, `/\`) {
		errs = append(errs, fmt.Sprintf("storage.export_dir_name (%q) must be a single directory name", c.Storage.ExportDirName))
	}
	if strings.ContainsAny(c.Storage.ImportDirName, `/\`) {
		errs = append(errs, fmt.Sprintf("storage.import_dir_name (%q) must be a single directory name", c.Storage.ImportDirName))
	}

	switch c.Store.Driver {
	case store.DriverMemory:
	case store.DriverSQLite, store.DriverPostgres:
		if c.Store.DSN == "" {
			errs = append(errs, fmt.Sprintf("store.dsn is required for the %s driver", c.Store.Driver))
		}
	default:
		errs = append(errs, fmt.Sprintf("store.driver (%q) must be one of: sqlite, postgres, memory", c.Store.Driver))
	}
	if c.Store.MaxConns <= 0 {
		errs = append(errs, "store.max_conns must be positive")
	}
	if c.Store.MinConns < 0 {
		errs = append(errs, "store.min_conns must be non-negative")
	}
	if c.Store.MaxConns > 0 && c.Store.MinConns > c.Store.MaxConns {
		errs = append(errs, fmt.Sprintf("store.max_conns (%d) must be >= store.min_conns (%d)",
			c.Store.MaxConns, c.Store.MinConns))
	}

	if c.Server.MaxUploadSize < 0 {
		errs = append(errs, "server.max_upload_size must be non-negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("logging.level (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("logging.format (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String returns the config for logging with the store DSN masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Storage: {MediaRoot: %q, BaseDir: %q}, ", c.Storage.MediaRoot, c.Storage.BaseDir))
	b.WriteString(fmt.Sprintf("Export: {KeepEmptyCells: %v}, ", c.Export.KeepEmptyCells))
	b.WriteString(fmt.Sprintf("Store: {Driver: %q, DSN: [MASKED], MaxConns: %d, MinConns: %d}, ",
		c.Store.Driver, c.Store.MaxConns, c.Store.MinConns))
	b.WriteString(fmt.Sprintf("Catalog: {Path: %q}, ", c.Catalog.Path))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
