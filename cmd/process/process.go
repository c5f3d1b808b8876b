// Package process handles pipeline runs from the command line.
package process

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"fjacquet/email-ledger/cmd/common"
	"fjacquet/email-ledger/cmd/root"
	"fjacquet/email-ledger/internal/logging"

	"github.com/spf13/cobra"
)

// Continuous keeps the processor polling instead of running once.
var Continuous bool

// Cmd represents the process command
var Cmd = &cobra.Command{
	Use:   "process",
	Short: "Scan recent mail and record financial transactions",
	Long: `Fetch recent messages, extract financial data from the ones that look
financial, categorize them, and record the results in the ledger.

With --continuous the scan repeats at the configured poll interval until
interrupted.`,
	Run: processFunc,
}

func init() {
	Cmd.Flags().BoolVar(&Continuous, "continuous", false, "Keep polling at the configured interval")
}

func processFunc(cmd *cobra.Command, args []string) {
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

	proc, cleanup, err := common.BuildProcessor(ctx, cfg, store, logger)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to build processing pipeline")
	}
	defer cleanup()

	if Continuous {
		if err := proc.RunContinuous(ctx); err != nil && !errors.Is(err, context.Canceled) {
			root.Log.WithError(err).Fatal("Continuous processing stopped")
		}
		root.Log.Info("Continuous processing stopped")
		return
	}

	result, err := proc.ProcessOnce(ctx)
	if err != nil {
		root.Log.WithError(err).Fatal("Processing run failed")
	}

	root.Log.WithFields(
		logging.Field{Key: "run_id", Value: result.RunID},
		logging.Field{Key: "processed", Value: result.ProcessedCount},
		logging.Field{Key: "extracted", Value: result.SuccessfulExtractions},
	).Info("Processing run complete")
}
