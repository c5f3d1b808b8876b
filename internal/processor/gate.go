package processor

import (
	"strings"

	"fjacquet/email-ledger/internal/models"
)

// GateConfig holds the post-extraction relevance signals. A message whose
// extraction carries no amount can still pass when its vendor, subject, or
// body shows one of these markers.
type GateConfig struct {
	VendorKeywords  []string
	SubjectKeywords []string
	BodyPhrases     []string
}

// hasFinancialData is the second gate, applied after extraction. The first
// gate asks "is this plausibly financial", this one asks "did we actually
// find something worth recording". Extractions that fail both never reach
// the ledger.
func hasFinancialData(data models.ExtractedFinancialData, content models.NormalizedContent, gate GateConfig) bool {
	if data.HasAmount() {
		return true
	}

	vendor := strings.ToLower(data.Vendor)
	for _, kw := range gate.VendorKeywords {
		if vendor != "" && strings.Contains(vendor, strings.ToLower(kw)) {
			return true
		}
	}

	subject := strings.ToLower(content.Subject)
	for _, kw := range gate.SubjectKeywords {
		if strings.Contains(subject, strings.ToLower(kw)) {
			return true
		}
	}

	body := strings.ToLower(content.CombinedBody())
	for _, phrase := range gate.BodyPhrases {
		if strings.Contains(body, strings.ToLower(phrase)) {
			return true
		}
	}

	return false
}
