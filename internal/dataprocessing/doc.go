// Package dataprocessing turns raw spreadsheet-like rows into typed
// records and derives the aggregate training analytics the dashboards
// consume.
//
// The pipeline runs in stages:
//
//	rows -> Parser -> typed records -> Dataset (email indexes)
//	     -> AggregateActivity (month buckets, locations)
//	     -> Summarizer (per-user grades, adherence, churn, cohort ranks)
//
// Error philosophy: malformed individual rows are swallowed at the row
// level. A bad date or a missing email drops that record, never the
// batch. All derivations are pure functions over immutable inputs and may
// run concurrently without coordination.
package dataprocessing
