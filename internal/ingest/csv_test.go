package ingest

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	t.Run("header and rows", func(t *testing.T) {
		input := "🔒 Email,First Name,Last Name\na@b.com,Ada,Lovelace\nc@d.com,Charles,Babbage\n"
		rows, err := ReadCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "a@b.com", rows[0]["email"])
		assert.Equal(t, "Lovelace", rows[0]["lastName"])
	})

	t.Run("ragged rows tolerated", func(t *testing.T) {
		input := "Email,Where\na@b.com\nc@d.com,GymX,extra\n"
		rows, err := ReadCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "", rows[0]["where"])
		assert.Equal(t, "GymX", rows[1]["where"])
	})

	t.Run("empty input", func(t *testing.T) {
		rows, err := ReadCSV(strings.NewReader(""))
		require.NoError(t, err)
		assert.Nil(t, rows)
	})
}

func TestReadCSVFile(t *testing.T) {
	t.Run("reads file from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "users.csv")
		require.NoError(t, os.WriteFile(path, []byte("Email\na@b.com\n"), 0o644))

		rows, err := ReadCSVFile(path, slog.Default())
		require.NoError(t, err)
		require.Len(t, rows, 1)
	})

	t.Run("missing file is a terminal source error", func(t *testing.T) {
		_, err := ReadCSVFile(filepath.Join(t.TempDir(), "absent.csv"), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "open csv source")
	})
}

func TestSheetsConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  SheetsConfig
		wantErr bool
	}{
		{"complete", SheetsConfig{SpreadsheetID: "sheet-id", APIKey: "key"}, false},
		{"missing spreadsheet id", SheetsConfig{APIKey: "key"}, true},
		{"missing api key", SheetsConfig{SpreadsheetID: "sheet-id"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
