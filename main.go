package main

import (
	"os"
	"path/filepath"
	"strings"

	"fjacquet/email-ledger/cmd/export"
	"fjacquet/email-ledger/cmd/process"
	"fjacquet/email-ledger/cmd/reset"
	"fjacquet/email-ledger/cmd/root"
	"fjacquet/email-ledger/cmd/serve"
	"fjacquet/email-ledger/cmd/setup"
	"fjacquet/email-ledger/internal/logging"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func init() {
	// 1. Load environment variables silently first (no logging yet)
	loadEnvSilently()

	// 2. Configure the global log level before any logger is created
	logLevel := configureLogLevelDirectly()

	// 3. Force this level on all existing and future loggers
	logging.SetAllLogLevels(logLevel)

	// 4. Now that logging is configured, initialize the root command
	root.Init()

	// 5. Add all subcommands
	root.Cmd.AddCommand(setup.Cmd)
	root.Cmd.AddCommand(reset.Cmd)
	root.Cmd.AddCommand(process.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
	root.Cmd.AddCommand(export.Cmd)
}

// loadEnvSilently loads environment variables without logging anything
func loadEnvSilently() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}
	_ = godotenv.Load(envFile)
}

// configureLogLevelDirectly sets the global log level from LOG_LEVEL and
// returns the configured level. Config-file settings refine this later.
func configureLogLevelDirectly() logrus.Level {
	logLevelStr := os.Getenv("LOG_LEVEL")
	if logLevelStr == "" {
		logLevelStr = "info"
	}

	logLevel, err := logrus.ParseLevel(strings.ToLower(logLevelStr))
	if err != nil {
		logLevel = logrus.InfoLevel
	}

	logrus.SetLevel(logLevel)
	return logLevel
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
