package normalizer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// parseCSVRows parses a CSV attachment into header-keyed rows. Attachment
// schemas are unknown ahead of time, so rows become maps rather than structs.
// Rows that do not line up with the header are dropped, not fatal.
func parseCSVRows(data []byte) ([]map[string]string, error) {
	reader := csv.NewReader(strings.NewReader(decodeText(data)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row; skip and keep going.
			continue
		}
		if len(record) != len(header) {
			continue
		}

		row := make(map[string]string, len(header))
		for i, key := range header {
			row[strings.TrimSpace(key)] = record[i]
		}
		rows = append(rows, row)
	}

	return rows, nil
}
