// Package common contains shared wiring for command handlers.
package common

import (
	"context"
	"fmt"
	"time"

	"fjacquet/email-ledger/cmd/root"
	"fjacquet/email-ledger/internal/aiclient"
	"fjacquet/email-ledger/internal/classifier"
	"fjacquet/email-ledger/internal/config"
	"fjacquet/email-ledger/internal/extractor"
	"fjacquet/email-ledger/internal/heuristics"
	"fjacquet/email-ledger/internal/ledger"
	"fjacquet/email-ledger/internal/logging"
	"fjacquet/email-ledger/internal/mail"
	"fjacquet/email-ledger/internal/normalizer"
	"fjacquet/email-ledger/internal/pdfextract"
	"fjacquet/email-ledger/internal/processor"
)

// LoadConfig loads configuration and applies its logging settings.
func LoadConfig() (*config.Config, logging.Logger, error) {
	cfg, err := config.InitializeConfigFile(root.ConfigFile)
	if err != nil {
		return nil, nil, err
	}

	logrusLogger := config.ConfigureLoggingFromConfig(cfg)
	logger := logging.NewLogrusAdapterFromLogger(logrusLogger)
	logging.SetDefaultLogger(logger)
	root.Log = logger

	return cfg, logger, nil
}

// OpenStore opens the ledger database named in the config.
func OpenStore(cfg *config.Config, logger logging.Logger) (*ledger.Store, error) {
	return ledger.Open(cfg.Database.Path, logger)
}

// BuildProcessor wires the full pipeline: mail transport, normalizer, gates,
// AI engines, and store. The returned cleanup releases the AI client and must
// be called when processing is done.
func BuildProcessor(ctx context.Context, cfg *config.Config, store *ledger.Store, logger logging.Logger) (*processor.Processor, func(), error) {
	mailClient, err := mail.NewGmailClient(ctx, cfg.Gmail.CredentialsFile, cfg.Gmail.MaxResults, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	var ai aiclient.Client
	cleanup := func() {}
	if cfg.AI.Enabled {
		gemini, err := aiclient.NewGeminiClient(ctx, cfg.AI.APIKey, cfg.AI.Model, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create AI client: %w", err)
		}
		ai = gemini
		cleanup = func() { _ = gemini.Close() }
	} else {
		logger.Warn("AI disabled, extraction will use pattern matching only")
	}

	norm := normalizer.New(pdfextract.NewPdftotextExtractor(logger), cfg.Heuristics.AttachmentKeywords, logger)
	gate := heuristics.New(cfg.Heuristics.SenderPatterns, cfg.Heuristics.SubjectKeywords)

	timeout := time.Duration(cfg.AI.TimeoutSeconds) * time.Second
	ext := extractor.New(ai, extractor.Options{
		Temperature:     float32(cfg.AI.Temperature),
		MaxOutputTokens: int32(cfg.AI.MaxOutputTokens),
		Timeout:         timeout,
	}, logger)
	vendors := classifier.NewVendorStore(cfg.Classifier.VendorMapFile, logger)
	cls := classifier.New(ai, vendors, classifier.Options{
		Temperature:     float32(cfg.AI.Temperature),
		MaxOutputTokens: 300,
		Timeout:         timeout,
	}, logger)

	proc := processor.New(mailClient, norm, gate, ext, cls, store, processor.Options{
		DaysBack:     cfg.Gmail.DaysBack,
		PollInterval: time.Duration(cfg.Processing.PollIntervalSeconds) * time.Second,
		Cooldown:     time.Duration(cfg.Processing.CooldownSeconds) * time.Second,
		Gate: processor.GateConfig{
			VendorKeywords:  cfg.Gate.VendorKeywords,
			SubjectKeywords: cfg.Gate.SubjectKeywords,
			BodyPhrases:     cfg.Gate.BodyPhrases,
		},
	}, logger)

	return proc, cleanup, nil
}
