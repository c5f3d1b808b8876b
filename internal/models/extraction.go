package models

import (
	"github.com/shopspring/decimal"
)

// Transaction direction values for ExtractedFinancialData.TransactionType.
const (
	TypeDebit  = "debit"
	TypeCredit = "credit"
)

// ExtractedFinancialData is the fully-populated result of the extraction
// engine. Amount carries Valid=false when no amount could be determined,
// which is distinct from a zero amount.
type ExtractedFinancialData struct {
	Date            string              `json:"date"`
	Amount          decimal.NullDecimal `json:"amount"`
	Currency        string              `json:"currency"`
	Vendor          string              `json:"vendor"`
	TransactionType string              `json:"transaction_type"`
	ReferenceID     string              `json:"reference_id"`
	Description     string              `json:"description"`
}

// NewExtractedFinancialData returns the defaults every extraction result
// starts from: USD, debit, everything else unresolved.
func NewExtractedFinancialData() ExtractedFinancialData {
	return ExtractedFinancialData{
		Currency:        DefaultCurrency,
		TransactionType: TypeDebit,
	}
}

// HasAmount reports whether a usable amount was resolved.
func (e ExtractedFinancialData) HasAmount() bool {
	return e.Amount.Valid
}

// SetAmount sets a resolved amount value.
func (e *ExtractedFinancialData) SetAmount(d decimal.Decimal) {
	e.Amount = decimal.NullDecimal{Decimal: d, Valid: true}
}

// Classification is the category assigned to an extracted transaction.
type Classification struct {
	Category string `json:"category"`
}
