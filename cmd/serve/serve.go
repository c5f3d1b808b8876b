// Package serve runs the HTTP API.
package serve

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fjacquet/email-ledger/cmd/common"
	"fjacquet/email-ledger/cmd/root"
	"fjacquet/email-ledger/internal/server"

	"github.com/spf13/cobra"
)

// Addr overrides the configured listen address when set.
var Addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ledger and the pipeline over HTTP",
	Long: `Start the HTTP API. Transactions, summaries, and on-demand processing
runs are exposed as JSON endpoints.`,
	Run: serveFunc,
}

func init() {
	Cmd.Flags().StringVar(&Addr, "addr", "", "Listen address (default from config, e.g. :8000)")
}

func serveFunc(cmd *cobra.Command, args []string) {
	cfg, logger, err := common.LoadConfig()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := common.OpenStore(cfg, logger)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to open database")
	}
	defer store.Close()

	if err := store.Setup(); err != nil {
		root.Log.WithError(err).Fatal("Failed to prepare database")
	}

	// The API stays useful without mail or AI credentials; only the
	// processing endpoints need the full pipeline.
	var runner server.ProcessRunner
	proc, cleanup, err := common.BuildProcessor(ctx, cfg, store, logger)
	if err != nil {
		root.Log.WithError(err).Warn("Processing pipeline unavailable, serving ledger endpoints only")
	} else {
		runner = proc
		defer cleanup()
	}

	addr := Addr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	srv := server.New(store, runner, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			root.Log.WithError(err).Fatal("HTTP server failed")
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			root.Log.WithError(err).Error("Shutdown failed")
		}
		root.Log.Info("HTTP server stopped")
	}
}
