package models

// AttachmentDescriptor describes a single decoded attachment of a message.
// ExtractedText and TabularRows are nil when no content could be extracted.
type AttachmentDescriptor struct {
	Filename      string              `json:"filename"`
	MediaType     string              `json:"media_type"`
	SizeBytes     int                 `json:"size_bytes"`
	ExtractedText string              `json:"extracted_text,omitempty"`
	TabularRows   []map[string]string `json:"tabular_rows,omitempty"`
	IsFinancial   bool                `json:"is_financial"`
}

// HasContent reports whether any text or tabular content was extracted.
func (a AttachmentDescriptor) HasContent() bool {
	return a.ExtractedText != "" || len(a.TabularRows) > 0
}

// NormalizedContent is the canonical decoded representation of a message used
// by all downstream pipeline stages. PlainBody and HTMLText are never empty
// pointers or nils, only possibly empty strings, so substring searches are
// always safe.
type NormalizedContent struct {
	MessageID string `json:"message_id"`
	Subject   string `json:"subject"`
	Sender    string `json:"sender"`
	DateRaw   string `json:"date"`

	PlainBody string `json:"plain_body"`
	HTMLText  string `json:"html_text"`
	// HTMLRaw keeps the undecoded HTML so the fallback extractor can walk
	// table rows that the visible-text rendering flattens.
	HTMLRaw string `json:"-"`

	Attachments            []AttachmentDescriptor `json:"attachments"`
	HasFinancialAttachment bool                   `json:"has_financial_attachment"`
}

// CombinedBody returns the plain body and HTML-derived text joined for
// keyword and pattern scanning.
func (n NormalizedContent) CombinedBody() string {
	if n.PlainBody == "" {
		return n.HTMLText
	}
	if n.HTMLText == "" {
		return n.PlainBody
	}
	return n.PlainBody + " " + n.HTMLText
}
