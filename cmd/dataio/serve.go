package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/dataio/internal/core"
	"github.com/JonMunkholm/dataio/internal/web"
)

const shutdownTimeout = 30 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve export and import over HTTP",
	Long: `Serve starts an HTTP server with the export and import API and a
prometheus /metrics endpoint. It stops on SIGINT or SIGTERM after running
jobs finish.

Example:
  dataio serve --addr :9090
  curl -o notes.xlsx localhost:9090/api/records/note/export
  curl -F file=@notes.csv localhost:9090/api/records/note/import`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	srv := web.NewServer(web.Options{
		Models:         newModel,
		Registry:       core.DefaultRegistry(),
		MaxUploadSize:  cfg.Server.MaxUploadSize,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-commandContext(cmd).Done():
	}

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	if err := limiter.WaitForDrain(ctx); err != nil {
		slog.Warn("jobs still running at shutdown", "active", limiter.Active())
	}
	return nil
}
