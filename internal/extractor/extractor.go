// Package extractor implements the AI-assisted extraction engine that turns a
// normalized message into structured financial data. Extraction never fails:
// AI errors, timeouts, and malformed responses all degrade to a deterministic
// pattern-based fallback over the same content.
package extractor

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"fjacquet/email-ledger/internal/aiclient"
	"fjacquet/email-ledger/internal/logging"
	"fjacquet/email-ledger/internal/models"
)

// Options tune the model call for a single engine instance.
type Options struct {
	Temperature     float32
	MaxOutputTokens int32
	Timeout         time.Duration
}

// DefaultOptions returns the extraction call parameters used in production.
func DefaultOptions() Options {
	return Options{
		Temperature:     0.1,
		MaxOutputTokens: 1200,
		Timeout:         30 * time.Second,
	}
}

// Engine extracts financial data from normalized message content. A nil AI
// client is valid and makes every extraction take the fallback path.
type Engine struct {
	ai     aiclient.Client
	opts   Options
	logger logging.Logger
}

// New creates an extraction engine. ai may be nil to run without a model.
func New(ai aiclient.Client, opts Options, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Engine{ai: ai, opts: opts, logger: logger}
}

// Extract returns structured financial data for the message. It always
// returns a fully-populated result; the only field that may be unresolved is
// the amount, carried as a null decimal.
func (e *Engine) Extract(ctx context.Context, content models.NormalizedContent) models.ExtractedFinancialData {
	log := e.logger.WithField("message_id", content.MessageID)

	if e.ai == nil {
		log.Debug("AI client not configured, using pattern extraction")
		return fallbackExtract(content)
	}

	raw, err := e.complete(ctx, content)
	if err != nil {
		log.WithError(err).Warn("AI extraction failed, falling back to pattern extraction")
		return fallbackExtract(content)
	}

	parsed, err := parseJSONResponse(raw)
	if err != nil {
		log.WithError(err).Warn("AI response was not valid JSON, falling back to pattern extraction")
		return fallbackExtract(content)
	}

	data := validate(parsed, content)
	log.WithFields(
		logging.Field{Key: "vendor", Value: data.Vendor},
		logging.Field{Key: "has_amount", Value: data.HasAmount()},
	).Debug("extraction complete")
	return data
}

func (e *Engine) complete(ctx context.Context, content models.NormalizedContent) (string, error) {
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	prompt := extractionInstructions + "\n\nEMAIL CONTENT:\n" + buildContentBlob(content)
	return e.ai.Complete(ctx, extractionSystemInstruction, prompt, e.opts.Temperature, e.opts.MaxOutputTokens)
}

// parseJSONResponse pulls the first balanced JSON object out of the response
// text. Models wrap JSON in markdown fences or prose; scanning for the
// balanced {...} span handles both.
func parseJSONResponse(response string) (aiExtraction, error) {
	var parsed aiExtraction

	span, err := extractJSONObject(response)
	if err != nil {
		return parsed, err
	}
	if err := json.Unmarshal([]byte(span), &parsed); err != nil {
		return parsed, err
	}
	return parsed, nil
}

// extractJSONObject returns the first balanced top-level {...} span in text.
// Braces inside JSON strings are skipped.
func extractJSONObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", errNoJSONObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", errUnbalancedJSON
}
