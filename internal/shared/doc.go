// Package shared holds cross-cutting helpers that belong to no single
// domain package.
//
// The testutil subpackage provides an in-memory slog handler used by
// tests that assert on structured log output.
package shared
