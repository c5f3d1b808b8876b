package extractor

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"

	"fjacquet/email-ledger/internal/models"
)

// Amount patterns, tried in order of specificity. First match wins.
var (
	labeledTotalPattern = regexp.MustCompile(`(?i)(?:Grand Total|Total Due|Amount Due|Invoice Total|Subtotal|Total|Amount)[:\s]*[$€£]?\s*([\d,]+\.?\d*)`)
	symbolNumberPattern = regexp.MustCompile(`[$€£]\s?([\d,]+\.?\d*)`)
	codeNumberPattern   = regexp.MustCompile(`(?i)\b(USD|EUR|GBP|CAD|AUD|JPY|CHF|SEK|NOK|DKK|SGD)\s?([\d,]+\.?\d*)`)
	numberCodePattern   = regexp.MustCompile(`(?i)([\d,]+\.?\d*)\s?(USD|EUR|GBP|CAD|AUD|JPY|CHF|SEK|NOK|DKK|SGD)\b`)
	wordAmountPattern   = regexp.MustCompile(`(?i)([\d,]+\.?\d*)\s*(dollars?|euros?|pounds?)`)

	referencePattern     = regexp.MustCompile(`(?i)(?:invoice|order|reference|transaction|receipt|confirmation)\s*(?:number|no\.?|id)?\s*[:#]\s*([A-Za-z0-9][A-Za-z0-9_-]{3,})`)
	referenceCodePattern = regexp.MustCompile(`\b(?:INV|REF|ORD|TXN)[-_][A-Za-z0-9][A-Za-z0-9-]{2,}\b`)

	currencyCodePattern = regexp.MustCompile(`(?i)\b(USD|EUR|GBP|CAD|AUD|JPY|CHF|SEK|NOK|DKK|SGD)\b`)
)

var symbolCurrency = map[rune]string{
	'$': "USD",
	'€': "EUR",
	'£': "GBP",
}

// fallbackExtract produces a best-effort result without any AI involvement.
// It is the degraded path taken when the model is unavailable or returns
// unparseable output, and it never fails: at worst every optional field stays
// at its default.
func fallbackExtract(content models.NormalizedContent) models.ExtractedFinancialData {
	data := models.NewExtractedFinancialData()

	data.Date = content.DateRaw
	data.Description = content.Subject

	if vendor := deriveVendorFromForwarded(content.CombinedBody()); vendor != "" && isForwarded(content.Subject) {
		data.Vendor = vendor
	} else {
		data.Vendor = deriveVendorFromSender(content.Sender)
	}

	blob := fallbackSearchText(content)

	if amount, ok := findAmountInAttachments(content.Attachments); ok {
		data.SetAmount(amount)
	} else if amount, ok := findAmountInHTMLTables(content.HTMLRaw); ok {
		data.SetAmount(amount)
	} else if amount, ok := findAmount(blob); ok {
		data.SetAmount(amount)
	}

	if currency, ok := detectCurrency(blob); ok {
		data.Currency = currency
	}

	if m := referencePattern.FindStringSubmatch(blob); m != nil {
		data.ReferenceID = m[1]
	} else if m := referenceCodePattern.FindString(blob); m != "" {
		data.ReferenceID = m
	}

	return data
}

// fallbackSearchText joins every text surface of the message for pattern
// scanning, attachments first since invoices usually carry the real total.
func fallbackSearchText(content models.NormalizedContent) string {
	var parts []string
	for _, att := range content.Attachments {
		if att.ExtractedText != "" {
			parts = append(parts, att.ExtractedText)
		}
	}
	parts = append(parts, content.Subject, content.CombinedBody())
	return strings.Join(parts, "\n")
}

// findAmountInAttachments scans extracted attachment text for a labeled total.
func findAmountInAttachments(attachments []models.AttachmentDescriptor) (decimal.Decimal, bool) {
	for _, att := range attachments {
		if att.ExtractedText == "" {
			continue
		}
		if m := labeledTotalPattern.FindStringSubmatch(att.ExtractedText); m != nil {
			if d, ok := parseAmount(m[1]); ok {
				return d, true
			}
		}
	}
	return decimal.Decimal{}, false
}

// findAmountInHTMLTables walks the raw HTML for table rows mentioning "total"
// and pulls the first currency-adjacent number from such a row. Receipt
// markup puts the grand total in its own row, so a row-scoped search avoids
// picking up line-item prices.
func findAmountInHTMLTables(htmlRaw string) (decimal.Decimal, bool) {
	if htmlRaw == "" {
		return decimal.Decimal{}, false
	}
	doc, err := html.Parse(strings.NewReader(htmlRaw))
	if err != nil {
		return decimal.Decimal{}, false
	}

	var result decimal.Decimal
	var found bool

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode && n.Data == "tr" {
			row := nodeText(n)
			if strings.Contains(strings.ToLower(row), "total") {
				if m := symbolNumberPattern.FindStringSubmatch(row); m != nil {
					if d, ok := parseAmount(m[1]); ok {
						result, found = d, true
						return
					}
				}
				if m := codeNumberPattern.FindStringSubmatch(row); m != nil {
					if d, ok := parseAmount(m[2]); ok {
						result, found = d, true
						return
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return result, found
}

// findAmount tries the generic amount patterns against a text blob.
func findAmount(text string) (decimal.Decimal, bool) {
	if m := labeledTotalPattern.FindStringSubmatch(text); m != nil {
		if d, ok := parseAmount(m[1]); ok {
			return d, true
		}
	}
	if m := symbolNumberPattern.FindStringSubmatch(text); m != nil {
		if d, ok := parseAmount(m[1]); ok {
			return d, true
		}
	}
	if m := codeNumberPattern.FindStringSubmatch(text); m != nil {
		if d, ok := parseAmount(m[2]); ok {
			return d, true
		}
	}
	if m := numberCodePattern.FindStringSubmatch(text); m != nil {
		if d, ok := parseAmount(m[1]); ok {
			return d, true
		}
	}
	if m := wordAmountPattern.FindStringSubmatch(text); m != nil {
		if d, ok := parseAmount(m[1]); ok {
			return d, true
		}
	}
	return decimal.Decimal{}, false
}

// parseAmount converts a matched numeric string, dropping thousands
// separators. Negative and empty values are rejected.
func parseAmount(raw string) (decimal.Decimal, bool) {
	cleaned := strings.TrimRight(strings.ReplaceAll(raw, ",", ""), ".")
	if cleaned == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil || d.IsNegative() {
		return decimal.Decimal{}, false
	}
	return d, true
}

// detectCurrency finds the first supported currency code or symbol in text.
func detectCurrency(text string) (string, bool) {
	if m := currencyCodePattern.FindString(text); m != "" {
		return strings.ToUpper(m), true
	}
	for _, r := range text {
		if code, ok := symbolCurrency[r]; ok {
			return code, true
		}
	}
	return "", false
}

// nodeText concatenates the visible text beneath an HTML node.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
