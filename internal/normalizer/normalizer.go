// Package normalizer turns raw multi-part messages into the canonical
// NormalizedContent consumed by every downstream pipeline stage. Normalize is
// a total function: a part that cannot be decoded degrades to empty content
// instead of failing the message.
package normalizer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"fjacquet/email-ledger/internal/logging"
	"fjacquet/email-ledger/internal/mail"
	"fjacquet/email-ledger/internal/models"
	"fjacquet/email-ledger/internal/pdfextract"
)

// financialExtensions flag attachments as financial documents by filename.
var financialExtensions = []string{
	".pdf", ".png", ".jpg", ".jpeg", ".csv", ".xlsx", ".xls",
}

// Normalizer decodes message part trees. PDF extraction is injected so tests
// run without pdftotext.
type Normalizer struct {
	pdf                pdfextract.Extractor
	attachmentKeywords []string
	logger             logging.Logger
}

// New creates a Normalizer. attachmentKeywords flag financial filenames; nil
// falls back to nothing matching by keyword (extensions still apply).
func New(pdf pdfextract.Extractor, attachmentKeywords []string, logger logging.Logger) *Normalizer {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Normalizer{
		pdf:                pdf,
		attachmentKeywords: attachmentKeywords,
		logger:             logger,
	}
}

// Normalize walks the message's part tree and produces its canonical decoded
// form. It never fails.
func (n *Normalizer) Normalize(raw *mail.RawMessage) models.NormalizedContent {
	content := models.NormalizedContent{
		MessageID: raw.ID,
		Subject:   raw.Subject,
		Sender:    raw.Sender,
		DateRaw:   raw.Date,
	}

	var plain, htmlRaw strings.Builder
	n.walkPart(raw.Payload, &plain, &htmlRaw, &content)

	content.PlainBody = strings.TrimSpace(plain.String())
	content.HTMLRaw = htmlRaw.String()
	content.HTMLText = ExtractHTMLText(content.HTMLRaw)

	for _, a := range content.Attachments {
		if a.IsFinancial {
			content.HasFinancialAttachment = true
			break
		}
	}

	return content
}

// walkPart recurses through nested multipart containers, collecting text
// parts in document order and dispatching attachments. Message part trees
// are acyclic, so plain recursion is safe.
func (n *Normalizer) walkPart(part mail.Part, plain, htmlRaw *strings.Builder, content *models.NormalizedContent) {
	if part.IsAttachment() {
		content.Attachments = append(content.Attachments, n.processAttachment(part))
		return
	}

	switch {
	case part.MimeType == "text/plain":
		plain.WriteString(decodeText(part.Body))
		plain.WriteString("\n")
	case part.MimeType == "text/html":
		htmlRaw.WriteString(decodeText(part.Body))
	}

	for _, child := range part.Parts {
		n.walkPart(child, plain, htmlRaw, content)
	}
}

// processAttachment decodes one attachment and extracts whatever content its
// media type allows. Extraction failure degrades to an empty descriptor.
func (n *Normalizer) processAttachment(part mail.Part) models.AttachmentDescriptor {
	desc := models.AttachmentDescriptor{
		Filename:  part.Filename,
		MediaType: part.MimeType,
		SizeBytes: len(part.Body),
	}

	switch {
	case part.MimeType == "application/pdf":
		text, err := n.pdf.ExtractText(part.Body)
		if err != nil {
			n.logger.WithError(err).WithField("filename", part.Filename).
				Warn("Failed to extract PDF text from attachment")
		} else {
			desc.ExtractedText = text
		}

	case part.MimeType == "text/csv":
		rows, err := parseCSVRows(part.Body)
		if err != nil {
			n.logger.WithError(err).WithField("filename", part.Filename).
				Warn("Failed to parse CSV attachment")
		} else {
			desc.TabularRows = rows
		}

	case strings.HasPrefix(part.MimeType, "text/"):
		desc.ExtractedText = decodeText(part.Body)

	case strings.HasPrefix(part.MimeType, "image/"):
		// OCR is out of scope; keep a placeholder so prompts mention the file.
		desc.ExtractedText = fmt.Sprintf("[Image file: %s]", part.Filename)
	}

	desc.IsFinancial = n.isFinancialAttachment(desc)
	return desc
}

// isFinancialAttachment flags an attachment when its filename looks like a
// financial document or when content extraction actually produced something.
func (n *Normalizer) isFinancialAttachment(desc models.AttachmentDescriptor) bool {
	filename := strings.ToLower(desc.Filename)

	for _, ext := range financialExtensions {
		if strings.Contains(filename, ext) {
			return true
		}
	}
	for _, keyword := range n.attachmentKeywords {
		if strings.Contains(filename, keyword) {
			return true
		}
	}

	// Image placeholders do not count as extracted content.
	if strings.HasPrefix(desc.MediaType, "image/") {
		return false
	}
	return desc.HasContent()
}

// decodeText decodes attachment or body bytes as UTF-8, falling back to
// Latin-1. Latin-1 maps every byte to the code point of the same value, so
// the fallback decodes any input and the result is always valid UTF-8.
func decodeText(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if utf8.Valid(data) {
		return string(data)
	}

	runes := make([]rune, 0, len(data))
	for _, b := range data {
		runes = append(runes, rune(b))
	}
	return string(runes)
}
