package normalizer

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/email-ledger/internal/logging"
	"fjacquet/email-ledger/internal/mail"
	"fjacquet/email-ledger/internal/pdfextract"
)

var attachmentKeywords = []string{"invoice", "receipt", "statement", "bill"}

func newTestNormalizer(pdfText string, pdfErr error) *Normalizer {
	return New(pdfextract.NewMockExtractor(pdfText, pdfErr), attachmentKeywords, logging.NewMockLogger())
}

func TestNormalizePlainTextMessage(t *testing.T) {
	n := newTestNormalizer("", nil)

	content := n.Normalize(&mail.RawMessage{
		ID:      "msg-1",
		Subject: "Payment Confirmation",
		Sender:  "receipts@stripe.com",
		Date:    "Mon, 10 Mar 2025 09:30:00 +0000",
		Payload: mail.Part{
			MimeType: "text/plain",
			Body:     []byte("Your payment of $99.99 has been processed."),
		},
	})

	assert.Equal(t, "msg-1", content.MessageID)
	assert.Equal(t, "Payment Confirmation", content.Subject)
	assert.Equal(t, "Your payment of $99.99 has been processed.", content.PlainBody)
	assert.Empty(t, content.HTMLText)
	assert.Empty(t, content.Attachments)
	assert.False(t, content.HasFinancialAttachment)
}

func TestNormalizeMultipartAlternative(t *testing.T) {
	n := newTestNormalizer("", nil)

	content := n.Normalize(&mail.RawMessage{
		ID: "msg-2",
		Payload: mail.Part{
			MimeType: "multipart/alternative",
			Parts: []mail.Part{
				{MimeType: "text/plain", Body: []byte("Total: 22.50 USD")},
				{MimeType: "text/html", Body: []byte("<html><body><p>Total: <b>22.50 USD</b></p><script>track()</script></body></html>")},
			},
		},
	})

	assert.Equal(t, "Total: 22.50 USD", content.PlainBody)
	assert.Contains(t, content.HTMLText, "Total: 22.50 USD")
	assert.NotContains(t, content.HTMLText, "track()")
	assert.Contains(t, content.HTMLRaw, "<b>")
	assert.Contains(t, content.CombinedBody(), "Total: 22.50 USD")
}

func TestNormalizePDFAttachment(t *testing.T) {
	n := newTestNormalizer("Invoice INV-1\nTotal: $150.00", nil)

	content := n.Normalize(&mail.RawMessage{
		ID: "msg-3",
		Payload: mail.Part{
			MimeType: "multipart/mixed",
			Parts: []mail.Part{
				{MimeType: "text/plain", Body: []byte("Invoice attached.")},
				{MimeType: "application/pdf", Filename: "invoice.pdf", Body: []byte("%PDF-1.4 ...")},
			},
		},
	})

	require.Len(t, content.Attachments, 1)
	att := content.Attachments[0]
	assert.Equal(t, "invoice.pdf", att.Filename)
	assert.Equal(t, "application/pdf", att.MediaType)
	assert.Contains(t, att.ExtractedText, "Total: $150.00")
	assert.True(t, att.IsFinancial)
	assert.True(t, content.HasFinancialAttachment)
}

func TestNormalizePDFExtractionFailureDegrades(t *testing.T) {
	n := newTestNormalizer("", errors.New("pdftotext not installed"))

	content := n.Normalize(&mail.RawMessage{
		ID: "msg-4",
		Payload: mail.Part{
			MimeType: "application/pdf",
			Filename: "invoice.pdf",
			Body:     []byte("%PDF-1.4 ..."),
		},
	})

	require.Len(t, content.Attachments, 1)
	assert.Empty(t, content.Attachments[0].ExtractedText)
	// The .pdf extension still marks it financial.
	assert.True(t, content.Attachments[0].IsFinancial)
}

func TestNormalizeCSVAttachment(t *testing.T) {
	n := newTestNormalizer("", nil)

	csvBody := "Date,Description,Amount\n2025-03-10,Uber trip,18.20\n2025-03-11,Coffee,4.50\nbroken,row\n"
	content := n.Normalize(&mail.RawMessage{
		ID: "msg-5",
		Payload: mail.Part{
			MimeType: "text/csv",
			Filename: "transactions.csv",
			Body:     []byte(csvBody),
		},
	})

	require.Len(t, content.Attachments, 1)
	rows := content.Attachments[0].TabularRows
	require.Len(t, rows, 2)
	assert.Equal(t, "Uber trip", rows[0]["Description"])
	assert.Equal(t, "18.20", rows[0]["Amount"])
	assert.True(t, content.Attachments[0].IsFinancial)
}

func TestNormalizeImageAttachmentPlaceholder(t *testing.T) {
	n := newTestNormalizer("", nil)

	content := n.Normalize(&mail.RawMessage{
		ID: "msg-6",
		Payload: mail.Part{
			MimeType: "image/png",
			Filename: "photo.png",
			Body:     []byte{0x89, 0x50, 0x4e, 0x47},
		},
	})

	require.Len(t, content.Attachments, 1)
	assert.Equal(t, "[Image file: photo.png]", content.Attachments[0].ExtractedText)
	// Images still count as financial by extension.
	assert.True(t, content.Attachments[0].IsFinancial)
}

func TestNormalizeNonFinancialAttachment(t *testing.T) {
	n := newTestNormalizer("", nil)

	content := n.Normalize(&mail.RawMessage{
		ID: "msg-7",
		Payload: mail.Part{
			MimeType: "application/octet-stream",
			Filename: "notes.bin",
			Body:     []byte{0x00, 0x01},
		},
	})

	require.Len(t, content.Attachments, 1)
	assert.False(t, content.Attachments[0].IsFinancial)
	assert.False(t, content.HasFinancialAttachment)
}

func TestNormalizeKeywordFilename(t *testing.T) {
	n := newTestNormalizer("", nil)

	content := n.Normalize(&mail.RawMessage{
		ID: "msg-8",
		Payload: mail.Part{
			MimeType: "application/octet-stream",
			Filename: "march-invoice.dat",
			Body:     []byte{0x00},
		},
	})

	require.Len(t, content.Attachments, 1)
	assert.True(t, content.Attachments[0].IsFinancial)
}

func TestDecodeText(t *testing.T) {
	assert.Equal(t, "", decodeText(nil))
	assert.Equal(t, "plain", decodeText([]byte("plain")))
	// 0xE9 is é in Latin-1 and invalid as a standalone UTF-8 byte.
	assert.Equal(t, "café", decodeText([]byte{'c', 'a', 'f', 0xE9}))

	// The Latin-1 fallback decodes any byte sequence to valid UTF-8.
	garbage := decodeText([]byte{0xFF, 0xFE, 0x00, 0x81})
	assert.NotEmpty(t, garbage)
	assert.True(t, utf8.ValidString(garbage))
}

func TestExtractHTMLText(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"empty", "", ""},
		{"simple paragraph", "<p>Hello   world</p>", "Hello world"},
		{"table rows become lines", "<table><tr><td>Total</td><td>$22.50</td></tr></table>", "Total $22.50"},
		{"style dropped", "<style>p{color:red}</style><p>Visible</p>", "Visible"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractHTMLText(tt.html))
		})
	}
}
