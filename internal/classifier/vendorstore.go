package classifier

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"fjacquet/email-ledger/internal/logging"
	"fjacquet/email-ledger/internal/models"
)

// VendorStore is a learned vendor-to-category mapping persisted as YAML.
// Once a vendor has been categorized, later transactions from the same
// vendor skip the model entirely.
type VendorStore struct {
	path   string
	logger logging.Logger

	mu       sync.Mutex
	mappings map[string]string
}

// NewVendorStore loads the mapping file at path, starting empty when the
// file does not exist yet. A load failure is logged and treated as empty
// rather than blocking classification.
func NewVendorStore(path string, logger logging.Logger) *VendorStore {
	if logger == nil {
		logger = logging.GetLogger()
	}
	s := &VendorStore{
		path:     path,
		logger:   logger,
		mappings: map[string]string{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.WithError(err).WithField("path", path).Warn("Failed to read vendor mapping file")
		}
		return s
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		logger.WithError(err).WithField("path", path).Warn("Failed to parse vendor mapping file")
		return s
	}
	for vendor, category := range raw {
		if models.IsValidCategory(category) {
			s.mappings[normalizeVendor(vendor)] = category
		}
	}

	logger.WithFields(
		logging.Field{Key: "path", Value: path},
		logging.Field{Key: "vendors", Value: len(s.mappings)},
	).Debug("vendor mappings loaded")
	return s
}

// Lookup returns the learned category for a vendor.
func (s *VendorStore) Lookup(vendor string) (string, bool) {
	key := normalizeVendor(vendor)
	if key == "" {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	category, ok := s.mappings[key]
	return category, ok
}

// Learn records a vendor-to-category mapping and writes the file through.
// Unknown categories and empty vendors are ignored.
func (s *VendorStore) Learn(vendor, category string) {
	key := normalizeVendor(vendor)
	if key == "" || !models.IsValidCategory(category) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.mappings[key]; ok && existing == category {
		return
	}
	s.mappings[key] = category

	if err := s.saveLocked(); err != nil {
		s.logger.WithError(err).WithField("path", s.path).Warn("Failed to save vendor mappings")
	}
}

// Len returns the number of learned vendors.
func (s *VendorStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.mappings)
}

func (s *VendorStore) saveLocked() error {
	data, err := yaml.Marshal(s.mappings)
	if err != nil {
		return fmt.Errorf("failed to marshal vendor mappings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

func normalizeVendor(vendor string) string {
	return strings.ToLower(strings.TrimSpace(vendor))
}
