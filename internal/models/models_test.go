package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExtractedFinancialDataDefaults(t *testing.T) {
	data := NewExtractedFinancialData()

	assert.Equal(t, "USD", data.Currency)
	assert.Equal(t, TypeDebit, data.TransactionType)
	assert.False(t, data.HasAmount())

	data.SetAmount(decimal.RequireFromString("10.50"))
	assert.True(t, data.HasAmount())
	assert.Equal(t, "10.5", data.Amount.Decimal.String())
}

func TestCombinedBody(t *testing.T) {
	assert.Equal(t, "plain", NormalizedContent{PlainBody: "plain"}.CombinedBody())
	assert.Equal(t, "html", NormalizedContent{HTMLText: "html"}.CombinedBody())
	assert.Equal(t, "plain html", NormalizedContent{PlainBody: "plain", HTMLText: "html"}.CombinedBody())
	assert.Equal(t, "", NormalizedContent{}.CombinedBody())
}

func TestIsValidCategory(t *testing.T) {
	for _, c := range ExpenseCategories {
		assert.True(t, IsValidCategory(c))
	}
	assert.False(t, IsValidCategory("crypto"))
	assert.False(t, IsValidCategory(""))
	assert.False(t, IsValidCategory("Transport"))
}

func TestIsSupportedCurrency(t *testing.T) {
	assert.True(t, IsSupportedCurrency("USD"))
	assert.True(t, IsSupportedCurrency("SGD"))
	assert.False(t, IsSupportedCurrency("usd"))
	assert.False(t, IsSupportedCurrency("BTC"))
}

func TestSummarizeAttachments(t *testing.T) {
	assert.Equal(t, "", SummarizeAttachments(nil))

	out := SummarizeAttachments([]AttachmentDescriptor{
		{
			Filename:      "invoice.pdf",
			MediaType:     "application/pdf",
			SizeBytes:     2048,
			ExtractedText: "Total: $150.00",
			IsFinancial:   true,
		},
		{
			Filename:  "data.csv",
			MediaType: "text/csv",
			TabularRows: []map[string]string{
				{"Amount": "18.20"},
			},
		},
	})

	var summaries []AttachmentSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summaries))
	require.Len(t, summaries, 2)

	assert.Equal(t, "invoice.pdf", summaries[0].Filename)
	assert.True(t, summaries[0].HasText)
	assert.False(t, summaries[0].HasTabular)
	assert.True(t, summaries[0].IsFinancial)

	assert.True(t, summaries[1].HasTabular)
	assert.False(t, summaries[1].HasText)
	// Payload content itself never appears in the summary.
	assert.NotContains(t, out, "150.00")
}

func TestAttachmentHasContent(t *testing.T) {
	assert.False(t, AttachmentDescriptor{}.HasContent())
	assert.True(t, AttachmentDescriptor{ExtractedText: "x"}.HasContent())
	assert.True(t, AttachmentDescriptor{TabularRows: []map[string]string{{}}}.HasContent())
}
