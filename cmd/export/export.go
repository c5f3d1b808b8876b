// Package export writes the ledger to CSV.
package export

import (
	"os"

	"fjacquet/email-ledger/cmd/common"
	"fjacquet/email-ledger/cmd/root"
	"fjacquet/email-ledger/internal/export"
	"fjacquet/email-ledger/internal/logging"

	"github.com/spf13/cobra"
)

// Output is the destination file; empty writes to stdout.
var Output string

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export all transactions as CSV",
	Long:  `Write every recorded transaction as CSV, to a file with --output or to stdout.`,
	Run:   exportFunc,
}

func init() {
	Cmd.Flags().StringVarP(&Output, "output", "o", "", "Output CSV file (default: stdout)")
}

func exportFunc(cmd *cobra.Command, args []string) {
	cfg, logger, err := common.LoadConfig()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to load configuration")
	}

	store, err := common.OpenStore(cfg, logger)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to open database")
	}
	defer store.Close()

	txs, err := store.List(0, 0)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to load transactions")
	}

	if Output == "" {
		if err := export.Write(txs, os.Stdout); err != nil {
			root.Log.WithError(err).Fatal("Failed to write CSV")
		}
		return
	}

	if err := export.WriteFile(txs, Output); err != nil {
		root.Log.WithError(err).Fatal("Failed to write CSV file")
	}

	root.Log.WithFields(
		logging.Field{Key: "output", Value: Output},
		logging.Field{Key: "count", Value: len(txs)},
	).Info("Export complete")
}
