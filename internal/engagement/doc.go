// Package engagement derives per-user training engagement metrics:
// adherence against an ideal cadence, assessment progress rate, churn-risk
// classification and training-plan outcomes.
//
// Two adherence variants exist on purpose. RollingAdherence covers the
// dashboard's three-month window and is uncapped so over-training remains
// visible. PlanAdherence covers a bounded plan and is capped at 100.
// Callers must not substitute one for the other.
package engagement
