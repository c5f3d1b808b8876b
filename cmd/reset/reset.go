// Package reset handles destructive database reinitialization.
package reset

import (
	"bufio"
	"os"
	"strings"

	"fjacquet/email-ledger/cmd/common"
	"fjacquet/email-ledger/cmd/root"

	"github.com/spf13/cobra"
)

// Confirm skips the interactive prompt when set via --confirm.
var Confirm bool

// Cmd represents the reset command
var Cmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all transactions and recreate the database",
	Long: `Drop the transaction table and recreate it empty. Every recorded
transaction is lost. Prompts for confirmation unless --confirm is given.`,
	Run: resetFunc,
}

func init() {
	Cmd.Flags().BoolVar(&Confirm, "confirm", false, "Skip the confirmation prompt")
}

func resetFunc(cmd *cobra.Command, args []string) {
	cfg, logger, err := common.LoadConfig()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to load configuration")
	}

	if !Confirm && !promptConfirmation(cfg.Database.Path) {
		root.Log.Info("Reset aborted")
		return
	}

	store, err := common.OpenStore(cfg, logger)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to open database")
	}
	defer store.Close()

	if err := store.Reset(); err != nil {
		root.Log.WithError(err).Fatal("Failed to reset database")
	}

	root.Log.WithField("path", cfg.Database.Path).Info("Ledger database reset")
}

func promptConfirmation(path string) bool {
	os.Stdout.WriteString("This deletes ALL transactions in " + path + ". Continue? [y/N]: ")
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
