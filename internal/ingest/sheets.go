package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"climbingpill/internal/dataprocessing"
)

// SheetsConfig identifies one Google Sheets source.
type SheetsConfig struct {
	SpreadsheetID string
	APIKey        string
}

// Validate reports the batch-level source configuration error the engine
// surfaces as a terminal failure.
func (c SheetsConfig) Validate() error {
	if c.SpreadsheetID == "" {
		return fmt.Errorf("google sheets source: spreadsheet ID is not configured")
	}
	if c.APIKey == "" {
		return fmt.Errorf("google sheets source: API key is not configured")
	}
	return nil
}

// SheetsClient fetches value ranges from a Google Sheets spreadsheet.
type SheetsClient struct {
	service *sheets.Service
	config  SheetsConfig
	logger  *slog.Logger
}

// NewSheetsClient creates a read-only Sheets client authenticated by API
// key.
func NewSheetsClient(ctx context.Context, config SheetsConfig, logger *slog.Logger) (*SheetsClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	service, err := sheets.NewService(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsClient{service: service, config: config, logger: logger}, nil
}

// ReadRange fetches one A1-notation range and converts it into normalized
// rows. The first row of the range is treated as the header.
func (c *SheetsClient) ReadRange(ctx context.Context, readRange string) ([]dataprocessing.Row, error) {
	resp, err := c.service.Spreadsheets.Values.
		Get(c.config.SpreadsheetID, readRange).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("fetch range %q: %w", readRange, err)
	}

	values := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, fmt.Sprint(cell))
		}
		values = append(values, cells)
	}

	c.logger.Debug("fetched sheet range",
		slog.String("range", readRange),
		slog.Int("rows", len(values)))

	return dataprocessing.RowsFromValues(values), nil
}
