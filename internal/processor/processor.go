// Package processor orchestrates the pipeline: fetch, normalize, gate,
// extract, classify, persist. Each message is processed independently; one
// failure never aborts a run.
package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fjacquet/email-ledger/internal/ledger"
	"fjacquet/email-ledger/internal/logging"
	"fjacquet/email-ledger/internal/mail"
	"fjacquet/email-ledger/internal/models"
)

// Normalizer turns a raw message into canonical content.
type Normalizer interface {
	Normalize(msg *mail.RawMessage) models.NormalizedContent
}

// HeuristicGate is the cheap pre-AI relevance check.
type HeuristicGate interface {
	IsFinancial(content models.NormalizedContent) bool
}

// Extractor produces structured financial data from content.
type Extractor interface {
	Extract(ctx context.Context, content models.NormalizedContent) models.ExtractedFinancialData
}

// Classifier assigns an expense category from the extracted fields and the
// surrounding email content.
type Classifier interface {
	Classify(ctx context.Context, content models.NormalizedContent, data models.ExtractedFinancialData) models.Classification
}

// Ledger is the subset of the store the processor needs.
type Ledger interface {
	Save(content models.NormalizedContent, data models.ExtractedFinancialData, classification models.Classification) (*models.Transaction, error)
	ProcessedEmailIDs() (map[string]bool, error)
}

// Options configure a Processor.
type Options struct {
	DaysBack     int
	PollInterval time.Duration
	Cooldown     time.Duration
	Gate         GateConfig
}

// Processor drives the end-to-end pipeline.
type Processor struct {
	mail       mail.Client
	normalizer Normalizer
	gate       HeuristicGate
	extractor  Extractor
	classifier Classifier
	ledger     Ledger
	opts       Options
	logger     logging.Logger
}

// New wires a Processor from its collaborators.
func New(mailClient mail.Client, normalizer Normalizer, gate HeuristicGate, extractor Extractor, classifier Classifier, store Ledger, opts Options, logger logging.Logger) *Processor {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if opts.DaysBack <= 0 {
		opts.DaysBack = 7
	}
	return &Processor{
		mail:       mailClient,
		normalizer: normalizer,
		gate:       gate,
		extractor:  extractor,
		classifier: classifier,
		ledger:     store,
		opts:       opts,
		logger:     logger,
	}
}

// ProcessOnce runs one full pass over recent messages. ProcessedCount counts
// every new message examined, including those the gates rejected;
// SuccessfulExtractions counts only persisted transactions.
func (p *Processor) ProcessOnce(ctx context.Context) (models.ProcessResult, error) {
	return p.run(ctx, 0, false)
}

// ProcessRecent examines the most recent limit messages, bypassing the
// heuristic pre-filter so even unlikely-looking messages get a full
// extraction attempt. Used for manual reprocessing.
func (p *Processor) ProcessRecent(ctx context.Context, limit int) (models.ProcessResult, error) {
	return p.run(ctx, limit, true)
}

func (p *Processor) run(ctx context.Context, limit int, skipHeuristics bool) (models.ProcessResult, error) {
	result := models.ProcessResult{
		RunID:     uuid.NewString(),
		Timestamp: time.Now().UTC(),
	}
	log := p.logger.WithField("run_id", result.RunID)

	since := time.Now().AddDate(0, 0, -p.opts.DaysBack)
	ids, err := p.mail.ListRecent(ctx, since)
	if err != nil {
		return result, fmt.Errorf("failed to list messages: %w", err)
	}

	processed, err := p.ledger.ProcessedEmailIDs()
	if err != nil {
		return result, fmt.Errorf("failed to load processed ids: %w", err)
	}

	log.WithFields(
		logging.Field{Key: "candidates", Value: len(ids)},
		logging.Field{Key: "already_processed", Value: len(processed)},
	).Info("processing run started")

	for _, id := range ids {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if limit > 0 && result.ProcessedCount >= limit {
			break
		}
		if processed[id] {
			continue
		}

		result.ProcessedCount++
		saved := p.processMessage(ctx, id, skipHeuristics, log)
		if saved {
			result.SuccessfulExtractions++
		}
	}

	log.WithFields(
		logging.Field{Key: "processed", Value: result.ProcessedCount},
		logging.Field{Key: "extracted", Value: result.SuccessfulExtractions},
	).Info("processing run finished")

	return result, nil
}

// processMessage handles one message end to end and reports whether a
// transaction was persisted. Panics and per-message errors are contained
// here.
func (p *Processor) processMessage(ctx context.Context, id string, skipHeuristics bool, log logging.Logger) (saved bool) {
	mlog := log.WithField("message_id", id)

	defer func() {
		if r := recover(); r != nil {
			mlog.WithField("panic", r).Error("message processing panicked")
			saved = false
		}
	}()

	msg, err := p.mail.GetFull(ctx, id)
	if err != nil {
		mlog.WithError(err).Error("failed to fetch message")
		return false
	}

	content := p.normalizer.Normalize(msg)

	if !skipHeuristics && !p.gate.IsFinancial(content) {
		mlog.Debug("message rejected by heuristic gate")
		return false
	}

	data := p.extractor.Extract(ctx, content)

	if !hasFinancialData(data, content, p.opts.Gate) {
		mlog.Debug("extraction found no financial data")
		return false
	}

	classification := p.classifier.Classify(ctx, content, data)

	if _, err := p.ledger.Save(content, data, classification); err != nil {
		if errors.Is(err, ledger.ErrDuplicate) {
			mlog.Debug("message already recorded")
		} else {
			mlog.WithError(err).Error("failed to save transaction")
		}
		return false
	}

	mlog.WithFields(
		logging.Field{Key: "vendor", Value: data.Vendor},
		logging.Field{Key: "category", Value: classification.Category},
	).Info("transaction recorded")
	return true
}

// RunContinuous repeats ProcessOnce until the context is canceled. A failed
// run waits the shorter cooldown before retrying instead of the full poll
// interval.
func (p *Processor) RunContinuous(ctx context.Context) error {
	p.logger.WithFields(
		logging.Field{Key: "poll_interval", Value: p.opts.PollInterval.String()},
		logging.Field{Key: "cooldown", Value: p.opts.Cooldown.String()},
	).Info("continuous processing started")

	for {
		wait := p.opts.PollInterval
		if _, err := p.ProcessOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.WithError(err).Error("processing run failed")
			wait = p.opts.Cooldown
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
