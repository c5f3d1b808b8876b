package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the persisted ledger entity. One row per source email,
// enforced by the unique index on EmailID.
type Transaction struct {
	ID uint `gorm:"primaryKey" json:"id"`

	EmailID      string `gorm:"uniqueIndex;size:255;not null" json:"email_id"`
	EmailSubject string `json:"email_subject"`
	EmailSender  string `json:"email_sender"`
	EmailDate    string `json:"email_date"`

	TransactionDate *time.Time          `json:"transaction_date"`
	Amount          decimal.NullDecimal `gorm:"type:decimal(20,2)" json:"amount"`
	Currency        string              `gorm:"size:3" json:"currency"`
	Vendor          string              `json:"vendor"`
	TransactionType string              `json:"transaction_type"`
	ReferenceID     string              `json:"reference_id"`
	Description     string              `gorm:"type:text" json:"description"`

	Category string `gorm:"index" json:"category"`

	ProcessedAt time.Time `gorm:"index" json:"processed_at"`
	IsProcessed bool      `json:"is_processed"`

	// AttachmentInfo holds a JSON-serialized []AttachmentSummary.
	AttachmentInfo string `gorm:"type:text" json:"attachment_info,omitempty"`
}

// TableName fixes the table name independent of gorm pluralization rules.
func (Transaction) TableName() string {
	return "financial_transactions"
}

// AttachmentSummary is the compact per-attachment record stored with a
// transaction. Payloads are never persisted, only their shape.
type AttachmentSummary struct {
	Filename    string `json:"filename"`
	MediaType   string `json:"media_type"`
	SizeBytes   int    `json:"size_bytes"`
	HasText     bool   `json:"has_text"`
	HasTabular  bool   `json:"has_tabular"`
	IsFinancial bool   `json:"is_financial"`
}

// SummarizeAttachments serializes attachment descriptors to the stored JSON
// form. Returns "" when there are no attachments.
func SummarizeAttachments(attachments []AttachmentDescriptor) string {
	if len(attachments) == 0 {
		return ""
	}
	summaries := make([]AttachmentSummary, 0, len(attachments))
	for _, a := range attachments {
		summaries = append(summaries, AttachmentSummary{
			Filename:    a.Filename,
			MediaType:   a.MediaType,
			SizeBytes:   a.SizeBytes,
			HasText:     a.ExtractedText != "",
			HasTabular:  len(a.TabularRows) > 0,
			IsFinancial: a.IsFinancial,
		})
	}
	data, err := json.Marshal(summaries)
	if err != nil {
		return ""
	}
	return string(data)
}

// SummaryStats aggregates the ledger for reporting. TotalAmount sums only
// rows with a resolved amount.
type SummaryStats struct {
	TotalTransactions int64            `json:"total_transactions"`
	TotalAmount       decimal.Decimal  `json:"total_amount"`
	CategoryBreakdown map[string]int64 `json:"category_breakdown"`
}

// ProcessResult reports a single orchestrator run.
type ProcessResult struct {
	RunID                 string    `json:"run_id"`
	ProcessedCount        int       `json:"processed_count"`
	SuccessfulExtractions int       `json:"successful_extractions"`
	Timestamp             time.Time `json:"timestamp"`
}
