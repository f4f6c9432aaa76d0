// Package ingest loads raw record rows from the supported spreadsheet
// sources: local CSV exports, Excel workbooks and Google Sheets ranges.
//
// It is the data-loading collaborator of the metrics engine: it returns
// already-tokenized rows and owns the only raise-worthy failures in the
// system (missing or unreadable sources). Per-row problems are not its
// concern; the record normalizer drops malformed rows silently.
package ingest
