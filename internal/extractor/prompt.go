package extractor

import (
	"fmt"
	"strings"

	"fjacquet/email-ledger/internal/models"
)

// forwardMarkers identify forwarded messages by subject.
var forwardMarkers = []string{"fwd:", "fw:"}

// extractionSystemInstruction frames the model as an extraction specialist.
const extractionSystemInstruction = `You are a financial data extraction specialist. Extract ALL required fields: Date, Amount, Currency, Vendor, Transaction Type, Reference ID, and Description. Be thorough and extract from the email body, HTML tables, and attachments. If a field cannot be found, use null or empty string. For currency, look for symbols ($, €, £, SGD) or codes (USD, EUR, GBP, SGD) and use USD as default if none found.`

// extractionInstructions is the fixed per-field rule template sent with every
// extraction request.
const extractionInstructions = `Extract ALL financial transaction data from the following email and attachments.

REQUIRED FIELDS TO EXTRACT:
1. Date: Transaction date (from email date or document date)
2. Amount: Payment/transaction amount (look for numbers with currency symbols)
3. Currency: Currency code (USD, EUR, GBP, SGD, etc.) - look for currency symbols or codes
4. Vendor: Company/merchant name
5. Transaction Type: "debit" (money going out) or "credit" (money coming in)
6. Reference ID: Order number, invoice number, transaction ID, or reference
7. Description: Clear description of what the transaction is for

PROCESS ALL ATTACHMENTS CAREFULLY:
- PDF attachments often contain the most important financial data
- CSV files may contain transaction details
- Image files may be receipts or invoices
- If the email body is empty or unclear, focus on attachment content
- For invoice emails, the attachment usually contains the actual financial data

HTML RECEIPTS:
- If the email contains a table, extract the line items, subtotal, tax, and total
- Use the total as the transaction amount
- Extract the currency from the price column or total

AMOUNT DETECTION:
- Look for amounts in various formats ($100, 100 USD, €50, SGD 95.90, etc.)
- Check for "Total:", "Amount:", "Subtotal:", "Grand Total:" followed by numbers
- For invoices, look for "Total Due:", "Amount Due:", "Invoice Total:"
- If multiple amounts are found, use the largest/total amount

VENDOR DETECTION:
- Extract from sender domain (e.g. finops@earlybirdapp.co -> Earlybird)
- Look for company names in attachment content or invoice headers

Return the data in JSON format with the following structure:
{
    "date": "YYYY-MM-DD or null",
    "amount": number or null,
    "currency": "USD" or other currency code,
    "vendor": "company name",
    "transaction_type": "debit" or "credit",
    "reference_id": "transaction reference",
    "description": "transaction description"
}`

// isForwarded reports whether the subject carries a forwarding marker.
func isForwarded(subject string) bool {
	lower := strings.ToLower(subject)
	for _, marker := range forwardMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// buildContentBlob flattens the normalized message into the single text blob
// submitted to the model: headers, bodies, then an enumerated attachment
// section. Forwarded messages get their body repeated under an explicit
// heading so quoted transaction alerts are searched with the same priority
// as the top-level body.
func buildContentBlob(content models.NormalizedContent) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Email Subject: %s\n", content.Subject)
	fmt.Fprintf(&sb, "Sender: %s\n", content.Sender)
	fmt.Fprintf(&sb, "Date: %s\n\n", content.DateRaw)

	fmt.Fprintf(&sb, "Email Body:\n%s\n\n", content.PlainBody)
	fmt.Fprintf(&sb, "HTML Content:\n%s\n", content.HTMLText)

	if len(content.Attachments) > 0 {
		sb.WriteString("\n=== ATTACHMENTS ===\n")
		for i, att := range content.Attachments {
			fmt.Fprintf(&sb, "\n--- Attachment %d: %s (%s) ---\n", i+1, att.Filename, att.MediaType)
			if att.IsFinancial {
				sb.WriteString("  [FINANCIAL DOCUMENT - IMPORTANT TO EXTRACT DATA FROM]\n")
			}
			if strings.HasPrefix(att.MediaType, "image/") {
				fmt.Fprintf(&sb, "  [IMAGE FILE: %s - May contain receipt/invoice]\n", att.Filename)
				continue
			}
			if att.ExtractedText != "" {
				fmt.Fprintf(&sb, "  TEXT CONTENT:\n%s\n", att.ExtractedText)
			}
			if len(att.TabularRows) > 0 {
				fmt.Fprintf(&sb, "  CSV DATA:\n%s\n", formatTabularRows(att.TabularRows))
			}
		}
	}

	if isForwarded(content.Subject) {
		fmt.Fprintf(&sb, "\n=== FORWARDED CONTENT ===\n%s\n", content.CombinedBody())
	}

	return sb.String()
}

// formatTabularRows serializes CSV rows as "key: value" lines per row.
func formatTabularRows(rows []map[string]string) string {
	var sb strings.Builder
	for _, row := range rows {
		pairs := make([]string, 0, len(row))
		for k, v := range row {
			pairs = append(pairs, fmt.Sprintf("%s: %s", k, v))
		}
		sb.WriteString(strings.Join(pairs, ", "))
		sb.WriteString("\n")
	}
	return sb.String()
}
