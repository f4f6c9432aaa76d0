// Package assessment implements the physical assessment scoring pipeline.
//
// Raw measurements from one assessment row are normalized into five
// dimensionless, body-relative ratios, combined into a weighted composite
// score, and classified into a discrete grade (V4..V12) via a descending
// threshold ladder. The package also provides cohort statistics: for a
// target assessment, the grade-matched peer group's average, median, max
// and percentile rank per metric.
//
// All functions are pure. Inputs are read-only, outputs are freshly
// allocated, and independent invocations may run concurrently without
// coordination.
//
//	scorer, err := assessment.NewScorer(assessment.DefaultWeights(), logger)
//	if err != nil {
//	    return err
//	}
//	a := scorer.Score("athlete@example.com", date, raw)
//	cohort := assessment.NewCohort(a, allAssessments)
//	rank := cohort.ScorePercentile(a.CompositeScore)
package assessment
