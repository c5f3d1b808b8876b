// Package pdfextract extracts plain text from PDF attachment payloads.
// Extraction runs page by page behind the Extractor interface so the
// normalizer can be tested without pdftotext installed.
package pdfextract

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"fjacquet/email-ledger/internal/logging"
)

// PageBreakMarker separates pages in the concatenated output.
const PageBreakMarker = "\n--- page break ---\n"

// Extractor extracts text from a PDF payload.
type Extractor interface {
	// ExtractText returns the text of every parseable page, joined with
	// PageBreakMarker. An unparseable page is skipped, not fatal; the error
	// is non-nil only when nothing could be extracted at all.
	ExtractText(data []byte) (string, error)
}

// PdftotextExtractor implements Extractor using the pdftotext command-line
// tool, the same way the statement converters do it.
type PdftotextExtractor struct {
	logger logging.Logger
}

// NewPdftotextExtractor creates the production extractor.
func NewPdftotextExtractor(logger logging.Logger) *PdftotextExtractor {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &PdftotextExtractor{logger: logger}
}

// ExtractText writes the payload to a temporary file and runs pdftotext one
// page at a time so a single corrupt page does not lose the document.
func (e *PdftotextExtractor) ExtractText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty PDF payload")
	}

	tempFile, err := os.CreateTemp("", "*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary PDF file: %w", err)
	}
	defer func() {
		if err := os.Remove(tempFile.Name()); err != nil {
			e.logger.WithError(err).Warn("Failed to remove temporary file",
				logging.Field{Key: "file", Value: tempFile.Name()})
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return "", fmt.Errorf("failed to write temporary PDF file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temporary PDF file: %w", err)
	}

	pageCount, err := e.countPages(tempFile.Name())
	if err != nil {
		// Page count unavailable; fall back to whole-document extraction.
		return e.extractRange(tempFile.Name(), 0, 0)
	}

	var pages []string
	for page := 1; page <= pageCount; page++ {
		text, err := e.extractRange(tempFile.Name(), page, page)
		if err != nil {
			e.logger.WithError(err).WithField("page", page).
				Warn("Failed to extract PDF page, skipping")
			continue
		}
		pages = append(pages, text)
	}

	if len(pages) == 0 {
		return "", fmt.Errorf("no pages could be extracted")
	}
	return strings.Join(pages, PageBreakMarker), nil
}

// extractRange runs pdftotext over the given page range; 0,0 means the whole
// document.
func (e *PdftotextExtractor) extractRange(pdfFile string, first, last int) (string, error) {
	args := []string{"-layout"}
	if first > 0 {
		args = append(args, "-f", strconv.Itoa(first), "-l", strconv.Itoa(last))
	}
	// "-" sends the text to stdout instead of a sibling file.
	args = append(args, pdfFile, "-")

	out, err := exec.Command("pdftotext", args...).Output()
	if err != nil {
		return "", fmt.Errorf("error running pdftotext: %w", err)
	}
	return string(out), nil
}

// countPages reads the page count from pdfinfo output.
func (e *PdftotextExtractor) countPages(pdfFile string) (int, error) {
	out, err := exec.Command("pdfinfo", pdfFile).Output()
	if err != nil {
		return 0, fmt.Errorf("error running pdfinfo: %w", err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "Pages:") {
			count, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
			if err != nil {
				return 0, fmt.Errorf("unparseable page count: %w", err)
			}
			return count, nil
		}
	}
	return 0, fmt.Errorf("page count not found in pdfinfo output")
}

// MockExtractor implements Extractor for testing with predefined output.
type MockExtractor struct {
	MockText string
	MockErr  error
}

// NewMockExtractor creates a MockExtractor with the given mock data.
func NewMockExtractor(mockText string, mockErr error) *MockExtractor {
	return &MockExtractor{MockText: mockText, MockErr: mockErr}
}

// ExtractText returns the predefined mock text or error.
func (e *MockExtractor) ExtractText(_ []byte) (string, error) {
	if e.MockErr != nil {
		return "", e.MockErr
	}
	return e.MockText, nil
}
