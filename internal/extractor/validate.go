package extractor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"fjacquet/email-ledger/internal/models"
)

// aiExtraction mirrors the JSON object the model is asked to return. Amount
// and date are loosely typed since models sometimes return strings where
// numbers were requested, or vice versa.
type aiExtraction struct {
	Date            any    `json:"date"`
	Amount          any    `json:"amount"`
	Currency        string `json:"currency"`
	Vendor          string `json:"vendor"`
	TransactionType string `json:"transaction_type"`
	ReferenceID     any    `json:"reference_id"`
	Description     string `json:"description"`
}

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// chargedAmountPattern is the narrow gap-filling pattern used only when the
// model returned no usable amount: an explicit charge or labeled total in
// the message text.
var chargedAmountPattern = regexp.MustCompile(`(?i)(?:charged|payment of|paid)\s+[$€£]?\s?([\d,]+\.?\d*)`)

// validate sanitizes the model's raw extraction against the source message.
// Every field ends up populated or explicitly null: bad dates fall back to
// the header date, unlisted currencies to detection-then-USD, missing
// vendors to sender-domain derivation.
func validate(raw aiExtraction, content models.NormalizedContent) models.ExtractedFinancialData {
	data := models.NewExtractedFinancialData()

	data.Date = validateDate(raw.Date, content.DateRaw)

	if amount, ok := coerceAmount(raw.Amount); ok {
		data.SetAmount(amount)
	} else if amount, ok := gapFillAmount(content); ok {
		data.SetAmount(amount)
	}

	data.Currency = validateCurrency(raw.Currency, content)
	data.Vendor = validateVendor(raw.Vendor, content)
	data.TransactionType = validateTransactionType(raw.TransactionType)
	data.ReferenceID = strings.TrimSpace(coerceString(raw.ReferenceID))

	data.Description = strings.TrimSpace(raw.Description)
	if data.Description == "" {
		data.Description = content.Subject
	}

	return data
}

func validateDate(raw any, headerDate string) string {
	if s, ok := raw.(string); ok {
		s = strings.TrimSpace(s)
		if isoDatePattern.MatchString(s) {
			return s[:10]
		}
	}
	return headerDate
}

// coerceAmount accepts a JSON number or a numeric string, rejecting negatives
// and anything unparseable.
func coerceAmount(raw any) (decimal.Decimal, bool) {
	switch v := raw.(type) {
	case nil:
		return decimal.Decimal{}, false
	case float64:
		d := decimal.NewFromFloat(v)
		if d.IsNegative() {
			return decimal.Decimal{}, false
		}
		return d, true
	case string:
		return parseAmount(v)
	default:
		return parseAmount(fmt.Sprint(v))
	}
}

// gapFillAmount looks for an explicit charge statement in the message when
// the model came back empty-handed. Deliberately narrower than the fallback
// extractor's patterns: a missed amount is safer than a wrong one here, since
// the model already searched the same text.
func gapFillAmount(content models.NormalizedContent) (decimal.Decimal, bool) {
	blob := fallbackSearchText(content)
	if m := chargedAmountPattern.FindStringSubmatch(blob); m != nil {
		return parseAmount(m[1])
	}
	if m := labeledTotalPattern.FindStringSubmatch(blob); m != nil {
		return parseAmount(m[1])
	}
	return decimal.Decimal{}, false
}

func validateCurrency(raw string, content models.NormalizedContent) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if models.IsSupportedCurrency(code) {
		return code
	}
	if detected, ok := detectCurrency(fallbackSearchText(content)); ok {
		return detected
	}
	return models.DefaultCurrency
}

func validateVendor(raw string, content models.NormalizedContent) string {
	vendor := strings.TrimSpace(raw)
	if vendor != "" {
		return vendor
	}
	if isForwarded(content.Subject) {
		if v := deriveVendorFromForwarded(content.CombinedBody()); v != "" {
			return v
		}
	}
	return deriveVendorFromSender(content.Sender)
}

func validateTransactionType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case models.TypeCredit:
		return models.TypeCredit
	default:
		return models.TypeDebit
	}
}

// coerceString renders any JSON scalar as its string form, for fields the
// model occasionally returns as numbers.
func coerceString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
