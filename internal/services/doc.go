// Package services implements the business logic layer between the HTTP
// handlers and the data processing engine. It owns the ingestion of raw
// record rows from the configured source, the derivation of the analytics
// snapshot, and read access to that snapshot.
//
// Services follow these principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. Error handling and transformation at the boundary
//
// The central type is AnalyticsService. Refresh loads every entity table
// from the active source, parses and scores the records, and swaps in a
// new immutable snapshot. All read methods serve from the current
// snapshot, so a failed refresh never corrupts what callers see.
package services
