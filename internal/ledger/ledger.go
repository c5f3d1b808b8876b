// Package ledger persists extracted transactions in a SQLite-backed store.
// The unique index on the source email ID makes processing idempotent: saving
// a message twice is a conflict, not a duplicate row.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fjacquet/email-ledger/internal/logging"
	"fjacquet/email-ledger/internal/models"
)

// ErrNotFound is returned when a transaction lookup misses.
var ErrNotFound = errors.New("transaction not found")

// ErrDuplicate is returned when saving a message that is already in the
// ledger.
var ErrDuplicate = errors.New("transaction already recorded for this email")

// Store is the SQLite-backed transaction ledger.
type Store struct {
	db     *gorm.DB
	logger logging.Logger
}

// Open opens (or creates) the database at path and returns a Store. Use
// ":memory:" for an ephemeral database in tests.
func Open(path string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Setup creates or migrates the schema. Safe to run repeatedly.
func (s *Store) Setup() error {
	if err := s.db.AutoMigrate(&models.Transaction{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	s.logger.Info("database schema ready")
	return nil
}

// Reset drops the transactions table and recreates it empty.
func (s *Store) Reset() error {
	if err := s.db.Migrator().DropTable(&models.Transaction{}); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}
	if err := s.db.AutoMigrate(&models.Transaction{}); err != nil {
		return fmt.Errorf("failed to recreate schema: %w", err)
	}
	s.logger.Warn("database reset, all transactions deleted")
	return nil
}

// Save records one extracted transaction. The email ID must not already be
// present; a conflict returns ErrDuplicate.
func (s *Store) Save(content models.NormalizedContent, data models.ExtractedFinancialData, classification models.Classification) (*models.Transaction, error) {
	tx := &models.Transaction{
		EmailID:         content.MessageID,
		EmailSubject:    content.Subject,
		EmailSender:     content.Sender,
		EmailDate:       content.DateRaw,
		TransactionDate: resolveTransactionDate(data.Date, content.DateRaw),
		Amount:          data.Amount,
		Currency:        data.Currency,
		Vendor:          data.Vendor,
		TransactionType: data.TransactionType,
		ReferenceID:     data.ReferenceID,
		Description:     data.Description,
		Category:        classification.Category,
		ProcessedAt:     time.Now().UTC(),
		IsProcessed:     true,
		AttachmentInfo:  models.SummarizeAttachments(content.Attachments),
	}

	if err := s.db.Create(tx).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	s.logger.WithFields(
		logging.Field{Key: "email_id", Value: tx.EmailID},
		logging.Field{Key: "vendor", Value: tx.Vendor},
		logging.Field{Key: "category", Value: tx.Category},
	).Info("transaction saved")

	return tx, nil
}

// Get returns the transaction with the given ID, or ErrNotFound.
func (s *Store) Get(id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.db.First(&tx, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load transaction %d: %w", id, err)
	}
	return &tx, nil
}

// List returns transactions ordered by processing time, newest first.
// A limit of 0 means no limit.
func (s *Store) List(limit, offset int) ([]models.Transaction, error) {
	var txs []models.Transaction
	q := s.db.Order("processed_at DESC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

// ListByCategory returns transactions in one category, newest first.
func (s *Store) ListByCategory(category string) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := s.db.Where("category = ?", category).Order("processed_at DESC").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions for category %s: %w", category, err)
	}
	return txs, nil
}

// TransactionUpdate carries the caller-writable fields of a transaction.
// Nil pointers leave the stored value untouched.
type TransactionUpdate struct {
	Vendor          *string              `json:"vendor"`
	Amount          *decimal.NullDecimal `json:"amount"`
	Currency        *string              `json:"currency"`
	Category        *string              `json:"category"`
	TransactionType *string              `json:"transaction_type"`
	Description     *string              `json:"description"`
	ReferenceID     *string              `json:"reference_id"`
}

// Update applies the given field changes to one transaction. Fields outside
// TransactionUpdate, the provenance and bookkeeping columns, cannot be
// changed through this path.
func (s *Store) Update(id uint, update TransactionUpdate) (*models.Transaction, error) {
	tx, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if update.Vendor != nil {
		changes["vendor"] = *update.Vendor
	}
	if update.Amount != nil {
		changes["amount"] = *update.Amount
	}
	if update.Currency != nil {
		changes["currency"] = strings.ToUpper(*update.Currency)
	}
	if update.Category != nil {
		if !models.IsValidCategory(*update.Category) {
			return nil, fmt.Errorf("invalid category: %s", *update.Category)
		}
		changes["category"] = *update.Category
	}
	if update.TransactionType != nil {
		changes["transaction_type"] = *update.TransactionType
	}
	if update.Description != nil {
		changes["description"] = *update.Description
	}
	if update.ReferenceID != nil {
		changes["reference_id"] = *update.ReferenceID
	}

	if len(changes) == 0 {
		return tx, nil
	}

	if err := s.db.Model(tx).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("failed to update transaction %d: %w", id, err)
	}
	return s.Get(id)
}

// Delete removes one transaction. Returns false when the ID does not exist.
func (s *Store) Delete(id uint) (bool, error) {
	res := s.db.Delete(&models.Transaction{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete transaction %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Summary aggregates the ledger: row count, sum of resolved amounts, and a
// per-category count. Rows with a null amount contribute to counts only.
func (s *Store) Summary() (*models.SummaryStats, error) {
	stats := &models.SummaryStats{CategoryBreakdown: map[string]int64{}}

	if err := s.db.Model(&models.Transaction{}).Count(&stats.TotalTransactions).Error; err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	var txs []models.Transaction
	if err := s.db.Select("amount", "category").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate transactions: %w", err)
	}
	for _, tx := range txs {
		if tx.Amount.Valid {
			stats.TotalAmount = stats.TotalAmount.Add(tx.Amount.Decimal)
		}
		if tx.Category != "" {
			stats.CategoryBreakdown[tx.Category]++
		}
	}

	return stats, nil
}

// ProcessedEmailIDs returns the set of email IDs already in the ledger, used
// to skip messages before any normalization or AI work.
func (s *Store) ProcessedEmailIDs() (map[string]bool, error) {
	var ids []string
	if err := s.db.Model(&models.Transaction{}).Pluck("email_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to load processed email ids: %w", err)
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}

// transactionDateLayouts are tried in order when resolving the stored
// transaction date from extracted text.
var transactionDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
}

// resolveTransactionDate parses the extracted date, falling back to the
// message header date and finally to nil when neither parses.
func resolveTransactionDate(extracted, headerDate string) *time.Time {
	for _, candidate := range []string{extracted, headerDate} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		for _, layout := range transactionDateLayouts {
			if t, err := time.Parse(layout, candidate); err == nil {
				t = t.UTC()
				return &t
			}
		}
	}
	return nil
}
