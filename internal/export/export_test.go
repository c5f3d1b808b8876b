package export

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/email-ledger/internal/models"
)

func sampleTransactions() []models.Transaction {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	return []models.Transaction{
		{
			ID:              1,
			EmailID:         "msg-1",
			EmailSubject:    "Your Uber receipt",
			EmailSender:     "receipts@uber.com",
			TransactionDate: &date,
			Amount:          decimal.NullDecimal{Decimal: decimal.RequireFromString("18.20"), Valid: true},
			Currency:        "USD",
			Vendor:          "Uber",
			TransactionType: models.TypeDebit,
			Category:        models.CategoryTransport,
			Description:     "Trip from airport",
			ProcessedAt:     time.Date(2025, 3, 10, 9, 45, 0, 0, time.UTC),
		},
		{
			ID:              2,
			EmailID:         "msg-2",
			EmailSubject:    "Invoice attached",
			EmailSender:     "billing@acme.io",
			Currency:        "USD",
			Vendor:          "Acme",
			TransactionType: models.TypeDebit,
			Category:        models.CategoryOther,
			ProcessedAt:     time.Date(2025, 3, 11, 9, 45, 0, 0, time.UTC),
		},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(sampleTransactions(), &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	assert.Contains(t, lines[0], "Vendor")
	assert.Contains(t, lines[0], "Amount")
	assert.Contains(t, lines[1], "Uber")
	assert.Contains(t, lines[1], "18.20")
	assert.Contains(t, lines[1], "2025-03-10")
}

func TestWriteNullAmountAsEmptyCell(t *testing.T) {
	rows := ToRows(sampleTransactions())
	require.Len(t, rows, 2)

	assert.Equal(t, "18.20", rows[0].Amount)
	assert.Equal(t, "", rows[1].Amount)
	assert.Equal(t, "", rows[1].TransactionDate)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, WriteFile(sampleTransactions(), path))

	var buf bytes.Buffer
	require.NoError(t, Write(sampleTransactions(), &buf))
	assert.NotEmpty(t, buf.Len())
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(nil, &buf))
	assert.Contains(t, buf.String(), "Vendor")
}