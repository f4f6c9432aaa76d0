package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"climbingpill/internal/dataprocessing"
)

// ReportWriter writes report files beneath a single output directory.
type ReportWriter struct {
	outDir string
	logger *slog.Logger
}

// NewReportWriter creates a writer rooted at outDir. The directory is
// created on first write.
func NewReportWriter(outDir string, logger *slog.Logger) *ReportWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportWriter{outDir: outDir, logger: logger}
}

// CSVOptions configures CSV output.
type CSVOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // UTF-8 BOM so Excel detects the encoding
}

// WriteCSV writes a CSV file with the given options.
func (w *ReportWriter) WriteCSV(name string, options CSVOptions) error {
	path := filepath.Join(w.outDir, name)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if options.BOMPrefix && !options.Append {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}

	w.logger.Info("wrote report",
		slog.String("path", path),
		slog.Int("records", len(options.Records)))
	return nil
}

// WriteJSON writes the payload as indented JSON.
func (w *ReportWriter) WriteJSON(name string, payload interface{}) error {
	path := filepath.Join(w.outDir, name)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	w.logger.Info("wrote report", slog.String("path", path))
	return nil
}

// UserSummariesCSV flattens user summaries into one CSV row per athlete.
func (w *ReportWriter) UserSummariesCSV(name string, summaries []dataprocessing.UserMetricsSummary) error {
	records := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		records = append(records, []string{
			s.Email,
			s.Name,
			string(s.CurrentGrade),
			strconv.Itoa(s.TotalSessions),
			s.LastTrainingDate,
			strconv.FormatFloat(s.AdherenceRate, 'f', 2, 64),
			strconv.FormatFloat(s.ProgressRate, 'f', 2, 64),
			string(s.ChurnRisk.Level),
			s.ChurnRisk.Reason,
			strconv.Itoa(s.ScorePercentile),
		})
	}

	return w.WriteCSV(name, CSVOptions{
		Headers: []string{
			"email", "name", "current_grade", "total_sessions", "last_training_date",
			"adherence_rate", "progress_rate", "churn_risk", "churn_reason", "score_percentile",
		},
		Records: records,
	})
}
