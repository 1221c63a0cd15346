package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/dataio/internal/config"
	"github.com/JonMunkholm/dataio/internal/core"
	_ "github.com/JonMunkholm/dataio/internal/formats" // register excel and csv
	"github.com/JonMunkholm/dataio/internal/logging"
	"github.com/JonMunkholm/dataio/internal/store"
)

// Global flag values.
var (
	flagConfig      string
	flagMetricsFile string
)

// Set by PersistentPreRunE.
var (
	cfg     *config.Config
	backend store.Backend
	catalog core.FieldCatalog
	limiter *core.JobLimiter
)

var rootCmd = &cobra.Command{
	Use:   "dataio",
	Short: "Export records to spreadsheets and import them back",
	Long: `dataio exports every record of a record type to an .xlsx or .csv file
and creates records from such a file.

Columns come from the record type's field catalog: the dataio_fields table
of the configured store, or the YAML file named by catalog.path.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ./dataio.yaml, or $DATAIO_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&flagMetricsFile, "metrics-file", "", "write prometheus metrics to this file on exit")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(serveCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	if flagConfig != "" {
		if err := os.Setenv(config.ConfigPathEnv, flagConfig); err != nil {
			return err
		}
	}

	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}
	cfg = c
	limiter = cfg.Limiter()
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	if !needsStore(cmd) {
		return nil
	}

	b, err := store.Open(commandContext(cmd), cfg.StoreOptions())
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	backend = b
	catalog = b

	if cfg.Catalog.Path != "" {
		fc, err := store.LoadCatalogFile(cfg.Catalog.Path)
		if err != nil {
			return err
		}
		catalog = fc
	}
	return nil
}

// closeBackend runs after every command, including failed ones, which
// skip PersistentPostRunE.
func closeBackend() {
	if backend == nil {
		return
	}
	if err := backend.Close(); err != nil {
		slog.Warn("close store", "error", err)
	}
	backend, catalog = nil, nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if flagMetricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(flagMetricsFile, prometheus.DefaultGatherer); err != nil {
		slog.Warn("write metrics file", "path", flagMetricsFile, "error", err)
	}
	return nil
}

// needsStore reports whether cmd talks to the record store.
func needsStore(cmd *cobra.Command) bool {
	if cmd.HasParent() && cmd.Parent().Name() == "completion" {
		return false
	}
	switch cmd.Name() {
	case "formats", "help", "completion":
		return false
	}
	return true
}

// newModel builds the facade for recordType from the loaded configuration.
func newModel(recordType string) *core.Model {
	return &core.Model{
		Name:     recordType,
		Source:   backend,
		Catalog:  catalog,
		Registry: core.DefaultRegistry(),
		Layout:   cfg.Layout(),
		Policy:   cfg.CellPolicy(),
		Limiter:  limiter,
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
