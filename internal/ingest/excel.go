package ingest

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"climbingpill/internal/dataprocessing"
)

// ReadWorkbookSheet reads one sheet of an Excel workbook into normalized
// rows. When sheet is empty the sheet is discovered: probable names are
// tried first, then every sheet is sniffed for a header row containing an
// email column.
func ReadWorkbookSheet(path, sheet string, logger *slog.Logger) ([]dataprocessing.Row, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	values, sheetName, err := sheetValues(f, sheet)
	if err != nil {
		return nil, fmt.Errorf("workbook %s: %w", path, err)
	}

	logger.Debug("read workbook sheet",
		slog.String("path", path),
		slog.String("sheet", sheetName),
		slog.Int("rows", len(values)))

	return dataprocessing.RowsFromValues(values), nil
}

// Probable sheet names for exported app data, tried before sniffing.
var probableSheetNames = []string{"Users", "Trainings", "Assessments", "Coaches", "Plans", "Sheet1"}

func sheetValues(f *excelize.File, sheet string) ([][]string, string, error) {
	if sheet != "" {
		values, err := f.GetRows(sheet)
		if err != nil {
			return nil, "", fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		return values, sheet, nil
	}

	for _, name := range probableSheetNames {
		if values, err := f.GetRows(name); err == nil && len(values) > 1 {
			return values, name, nil
		}
	}

	// Fall back to sniffing: any sheet whose first row looks like a
	// record header.
	for _, name := range f.GetSheetList() {
		values, err := f.GetRows(name)
		if err != nil || len(values) < 2 {
			continue
		}
		header := strings.ToLower(strings.Join(values[0], " "))
		if strings.Contains(header, "email") {
			return values, name, nil
		}
	}

	return nil, "", fmt.Errorf("no sheet with record data found")
}
