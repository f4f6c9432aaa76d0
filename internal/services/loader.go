package services

import (
	"context"
	"fmt"
	"log/slog"

	"climbingpill/internal/config"
	"climbingpill/internal/dataprocessing"
	"climbingpill/internal/ingest"
)

// RawTables holds the normalized rows for every entity table of one
// source read. Trainings may come from several exports and are kept as
// separate row sets so duplicate headers do not collide.
type RawTables struct {
	Users       []dataprocessing.Row
	Trainings   [][]dataprocessing.Row
	Assessments []dataprocessing.Row
	Coaches     []dataprocessing.Row
	Plans       []dataprocessing.Row
}

// RowCount returns the total number of data rows across all tables.
func (t *RawTables) RowCount() int {
	n := len(t.Users) + len(t.Assessments) + len(t.Coaches) + len(t.Plans)
	for _, set := range t.Trainings {
		n += len(set)
	}
	return n
}

// SourceLoader reads every entity table from one configured source.
// Loaders fail the whole read on a missing or unreadable table; a
// misconfigured source is a terminal error for the batch, not something
// to paper over with partial data.
type SourceLoader interface {
	Load(ctx context.Context) (*RawTables, error)
	Name() string
}

// NewSourceLoader selects the loader for the configured source mode.
func NewSourceLoader(ctx context.Context, cfg config.SourcesConfig, logger *slog.Logger) (SourceLoader, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Mode {
	case config.SourceModeCSV:
		return &csvLoader{cfg: cfg, logger: logger}, nil
	case config.SourceModeWorkbook:
		if cfg.WorkbookPath == "" {
			return nil, fmt.Errorf("%w: workbook path is empty", ErrSourceNotConfigured)
		}
		return &workbookLoader{cfg: cfg, logger: logger}, nil
	case config.SourceModeSheets:
		client, err := ingest.NewSheetsClient(ctx, ingest.SheetsConfig{
			SpreadsheetID: cfg.SpreadsheetID,
			APIKey:        cfg.APIKey,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceNotConfigured, err)
		}
		return &sheetsLoader{cfg: cfg, client: client, logger: logger}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSourceMode, cfg.Mode)
	}
}

// csvLoader reads entity tables from local CSV exports.
type csvLoader struct {
	cfg    config.SourcesConfig
	logger *slog.Logger
}

func (l *csvLoader) Name() string { return "csv" }

func (l *csvLoader) Load(ctx context.Context) (*RawTables, error) {
	if l.cfg.UsersCSV == "" {
		return nil, fmt.Errorf("%w: users csv path is empty", ErrSourceNotConfigured)
	}

	tables := &RawTables{}

	var err error
	if tables.Users, err = ingest.ReadCSVFile(l.cfg.UsersCSV, l.logger); err != nil {
		return nil, err
	}

	for _, path := range l.cfg.TrainingsCSV {
		rows, err := ingest.ReadCSVFile(path, l.logger)
		if err != nil {
			return nil, err
		}
		tables.Trainings = append(tables.Trainings, rows)
	}

	// The remaining tables are optional exports.
	if l.cfg.AssessmentsCSV != "" {
		if tables.Assessments, err = ingest.ReadCSVFile(l.cfg.AssessmentsCSV, l.logger); err != nil {
			return nil, err
		}
	}
	if l.cfg.CoachesCSV != "" {
		if tables.Coaches, err = ingest.ReadCSVFile(l.cfg.CoachesCSV, l.logger); err != nil {
			return nil, err
		}
	}
	if l.cfg.PlansCSV != "" {
		if tables.Plans, err = ingest.ReadCSVFile(l.cfg.PlansCSV, l.logger); err != nil {
			return nil, err
		}
	}

	return tables, nil
}

// workbookLoader reads entity tables from sheets of one Excel workbook.
type workbookLoader struct {
	cfg    config.SourcesConfig
	logger *slog.Logger
}

func (l *workbookLoader) Name() string { return "workbook" }

func (l *workbookLoader) Load(ctx context.Context) (*RawTables, error) {
	tables := &RawTables{}

	users, err := ingest.ReadWorkbookSheet(l.cfg.WorkbookPath, "Users", l.logger)
	if err != nil {
		return nil, err
	}
	tables.Users = users

	trainings, err := ingest.ReadWorkbookSheet(l.cfg.WorkbookPath, "Trainings", l.logger)
	if err != nil {
		return nil, err
	}
	tables.Trainings = [][]dataprocessing.Row{trainings}

	// Optional sheets, skipped when absent.
	if rows, err := ingest.ReadWorkbookSheet(l.cfg.WorkbookPath, "Assessments", l.logger); err == nil {
		tables.Assessments = rows
	}
	if rows, err := ingest.ReadWorkbookSheet(l.cfg.WorkbookPath, "Coaches", l.logger); err == nil {
		tables.Coaches = rows
	}
	if rows, err := ingest.ReadWorkbookSheet(l.cfg.WorkbookPath, "Plans", l.logger); err == nil {
		tables.Plans = rows
	}

	return tables, nil
}

// sheetsLoader reads entity tables from a Google Sheets spreadsheet.
type sheetsLoader struct {
	cfg    config.SourcesConfig
	client *ingest.SheetsClient
	logger *slog.Logger
}

func (l *sheetsLoader) Name() string { return "sheets" }

func (l *sheetsLoader) Load(ctx context.Context) (*RawTables, error) {
	tables := &RawTables{}

	users, err := l.client.ReadRange(ctx, l.cfg.UsersRange)
	if err != nil {
		return nil, err
	}
	tables.Users = users

	ranges := l.cfg.TrainingsRanges
	if len(ranges) == 0 {
		ranges = []string{"Trainings!A1:Z10000"}
	}
	for _, r := range ranges {
		rows, err := l.client.ReadRange(ctx, r)
		if err != nil {
			return nil, err
		}
		tables.Trainings = append(tables.Trainings, rows)
	}

	if tables.Assessments, err = l.client.ReadRange(ctx, l.cfg.AssessmentsRange); err != nil {
		return nil, err
	}
	if tables.Coaches, err = l.client.ReadRange(ctx, l.cfg.CoachesRange); err != nil {
		return nil, err
	}
	if tables.Plans, err = l.client.ReadRange(ctx, l.cfg.PlansRange); err != nil {
		return nil, err
	}

	return tables, nil
}
