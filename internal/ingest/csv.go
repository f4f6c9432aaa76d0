package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"climbingpill/internal/dataprocessing"
)

// ReadCSV reads one CSV source into normalized rows. The first record is
// the header. Ragged records are tolerated; the row normalizer pads or
// truncates them against the header.
func ReadCSV(r io.Reader) ([]dataprocessing.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	values, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return dataprocessing.RowsFromValues(values), nil
}

// ReadCSVFile reads a CSV file from disk. A missing file is a batch-level
// source configuration error, surfaced to the caller rather than
// swallowed.
func ReadCSVFile(path string, logger *slog.Logger) ([]dataprocessing.Row, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv source %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse csv source %s: %w", path, err)
	}

	logger.Debug("read csv source",
		slog.String("path", path),
		slog.Int("rows", len(rows)))

	return rows, nil
}
