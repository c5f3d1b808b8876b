// Package export renders ledger transactions as CSV for spreadsheets and
// accounting tools.
package export

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"fjacquet/email-ledger/internal/models"
)

// Row is the flattened CSV representation of one transaction. Null amounts
// export as an empty cell, not zero.
type Row struct {
	ID              uint   `csv:"ID"`
	TransactionDate string `csv:"Date"`
	Vendor          string `csv:"Vendor"`
	Amount          string `csv:"Amount"`
	Currency        string `csv:"Currency"`
	TransactionType string `csv:"Type"`
	Category        string `csv:"Category"`
	Description     string `csv:"Description"`
	ReferenceID     string `csv:"Reference"`
	EmailSubject    string `csv:"Email Subject"`
	EmailSender     string `csv:"Email Sender"`
	ProcessedAt     string `csv:"Processed At"`
}

// ToRows converts transactions to their CSV form.
func ToRows(txs []models.Transaction) []Row {
	rows := make([]Row, 0, len(txs))
	for _, tx := range txs {
		row := Row{
			ID:              tx.ID,
			Vendor:          tx.Vendor,
			Currency:        tx.Currency,
			TransactionType: tx.TransactionType,
			Category:        tx.Category,
			Description:     tx.Description,
			ReferenceID:     tx.ReferenceID,
			EmailSubject:    tx.EmailSubject,
			EmailSender:     tx.EmailSender,
			ProcessedAt:     tx.ProcessedAt.Format("2006-01-02 15:04:05"),
		}
		if tx.TransactionDate != nil {
			row.TransactionDate = tx.TransactionDate.Format("2006-01-02")
		}
		if tx.Amount.Valid {
			row.Amount = tx.Amount.Decimal.StringFixed(2)
		}
		rows = append(rows, row)
	}
	return rows
}

// Write renders the transactions as CSV to w.
func Write(txs []models.Transaction, w io.Writer) error {
	if err := gocsv.Marshal(ToRows(txs), w); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// WriteFile renders the transactions as CSV to a new file at path.
func WriteFile(txs []models.Transaction, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := Write(txs, f); err != nil {
		return err
	}
	return f.Close()
}
