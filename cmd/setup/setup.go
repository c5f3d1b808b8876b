// Package setup handles database initialization.
package setup

import (
	"fjacquet/email-ledger/cmd/common"
	"fjacquet/email-ledger/cmd/root"

	"github.com/spf13/cobra"
)

// Cmd represents the setup command
var Cmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the ledger database",
	Long:  `Create (or migrate) the SQLite ledger database named in the configuration. Safe to run repeatedly.`,
	Run:   setupFunc,
}

func setupFunc(cmd *cobra.Command, args []string) {
	cfg, logger, err := common.LoadConfig()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to load configuration")
	}

	store, err := common.OpenStore(cfg, logger)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to open database")
	}
	defer store.Close()

	if err := store.Setup(); err != nil {
		root.Log.WithError(err).Fatal("Failed to set up database")
	}

	root.Log.WithField("path", cfg.Database.Path).Info("Ledger database ready")
}
