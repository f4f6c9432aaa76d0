// Package exporter writes derived analytics reports to disk.
//
// The batch processor uses it to emit the overview, user summary and
// coach roster reports as indented JSON plus a flat per-user CSV that
// opens cleanly in spreadsheet tools.
package exporter
