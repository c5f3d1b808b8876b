// Package classifier assigns extracted transactions to a closed set of
// expense categories. Like extraction, classification never fails: any AI
// error or out-of-set answer lands the transaction in the "other" category.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fjacquet/email-ledger/internal/aiclient"
	"fjacquet/email-ledger/internal/logging"
	"fjacquet/email-ledger/internal/models"
)

const systemInstruction = `You are an expense categorization specialist. Categorize the transaction into exactly one of the given categories. Respond with JSON only.`

// Options tune the model call.
type Options struct {
	Temperature     float32
	MaxOutputTokens int32
	Timeout         time.Duration
}

// DefaultOptions returns the classification call parameters used in
// production. The response is a single short JSON object, so the token
// budget is small.
func DefaultOptions() Options {
	return Options{
		Temperature:     0.1,
		MaxOutputTokens: 300,
		Timeout:         30 * time.Second,
	}
}

// Engine classifies extracted financial data. A nil AI client is valid and
// sends everything to the default category. An optional VendorStore answers
// repeat vendors without a model call and learns from AI results.
type Engine struct {
	ai      aiclient.Client
	vendors *VendorStore
	opts    Options
	logger  logging.Logger
}

// New creates a classification engine. ai and vendors may each be nil.
func New(ai aiclient.Client, vendors *VendorStore, opts Options, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Engine{ai: ai, vendors: vendors, opts: opts, logger: logger}
}

// Classify returns the expense category for the transaction. The result is
// always a member of models.ExpenseCategories. content provides the email
// context the model sees alongside the extracted fields.
func (e *Engine) Classify(ctx context.Context, content models.NormalizedContent, data models.ExtractedFinancialData) models.Classification {
	log := e.logger.WithField("vendor", data.Vendor)

	if e.vendors != nil {
		if category, ok := e.vendors.Lookup(data.Vendor); ok {
			log.WithField("category", category).Debug("vendor known, skipping model")
			return models.Classification{Category: category}
		}
	}

	if e.ai == nil {
		return models.Classification{Category: models.CategoryOther}
	}

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	raw, err := e.ai.Complete(ctx, systemInstruction, buildPrompt(content, data), e.opts.Temperature, e.opts.MaxOutputTokens)
	if err != nil {
		log.WithError(err).Warn("AI classification failed, defaulting category")
		return models.Classification{Category: models.CategoryOther}
	}

	category := parseCategory(raw)
	if !models.IsValidCategory(category) {
		log.WithField("category", category).Debug("model returned unknown category, defaulting")
		return models.Classification{Category: models.CategoryOther}
	}

	// "other" is not worth remembering; a later run may do better.
	if e.vendors != nil && category != models.CategoryOther {
		e.vendors.Learn(data.Vendor, category)
	}

	return models.Classification{Category: category}
}

// maxContextChars caps how much of the body and each attachment reaches the
// prompt. The extracted fields already summarize the transaction; the context
// only disambiguates the category.
const maxContextChars = 1000

// buildPrompt renders the category menu, the extracted transaction fields,
// and the surrounding email content.
func buildPrompt(content models.NormalizedContent, data models.ExtractedFinancialData) string {
	var sb strings.Builder

	sb.WriteString("Categorize this financial transaction into one of these expense categories:\n\n")
	for _, cat := range models.ExpenseCategories {
		fmt.Fprintf(&sb, "- %s: %s\n", cat, models.CategoryDescriptions[cat])
	}

	sb.WriteString("\nTransaction:\n")
	fmt.Fprintf(&sb, "Vendor: %s\n", data.Vendor)
	if data.HasAmount() {
		fmt.Fprintf(&sb, "Amount: %s %s\n", data.Amount.Decimal.String(), data.Currency)
	}
	fmt.Fprintf(&sb, "Description: %s\n", data.Description)
	fmt.Fprintf(&sb, "Type: %s\n", data.TransactionType)

	sb.WriteString("\nEmail context:\n")
	fmt.Fprintf(&sb, "Subject: %s\n", content.Subject)
	fmt.Fprintf(&sb, "Sender: %s\n", content.Sender)
	if body := content.CombinedBody(); body != "" {
		fmt.Fprintf(&sb, "Body: %s\n", clip(body, maxContextChars))
	}
	for _, a := range content.Attachments {
		if a.ExtractedText != "" {
			fmt.Fprintf(&sb, "Attachment %s: %s\n", a.Filename, clip(a.ExtractedText, maxContextChars))
		}
	}

	sb.WriteString("\nRespond with JSON: {\"category\": \"category_name\"}")
	return sb.String()
}

func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

// parseCategory pulls the category out of the response, accepting either the
// requested JSON object or a bare category name.
func parseCategory(response string) string {
	var parsed models.Classification

	start := strings.IndexByte(response, '{')
	end := strings.LastIndexByte(response, '}')
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(response[start:end+1]), &parsed); err == nil && parsed.Category != "" {
			return strings.ToLower(strings.TrimSpace(parsed.Category))
		}
	}
	return strings.ToLower(strings.TrimSpace(response))
}
