// Package root contains the root command for the application
package root

import (
	"github.com/spf13/cobra"

	"fjacquet/email-ledger/internal/logging"
)

// Log is the shared logger instance for commands. main replaces it once the
// log level is known.
var Log = logging.GetLogger()

// Cmd is the root command
var Cmd = &cobra.Command{
	Use:   "email-ledger",
	Short: "Extract financial transactions from email into a local ledger.",
	Long: `email-ledger scans a mailbox for receipts, invoices and payment
notifications, extracts the transaction data with AI assistance, categorizes
each expense, and records everything in a local SQLite ledger.

Run 'email-ledger setup' once to create the database, then 'email-ledger
process' to scan recent mail. 'email-ledger serve' exposes the ledger and the
pipeline over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		Log.Info("Welcome to email-ledger!")
		Log.Info("Use --help to see available commands")
	},
}

// ConfigFile is the config file path given on the command line, empty for
// the default search locations.
var ConfigFile string

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&ConfigFile, "config", "c", "", "Path to a config file (default: ./config.yaml, ~/.email-ledger/config.yaml)")
}
