package dataprocessing

import (
	"sort"

	"climbingpill/internal/assessment"
	"climbingpill/pkg/contracts/domain"
)

// Dataset is one fully-loaded batch of normalized records with the
// per-email indexes the cross-entity joins need. Joins are weak string
// references resolved through these indexes, never embedded object
// graphs. A dataset is immutable after construction; every derivation is
// recomputed from it in full.
type Dataset struct {
	Users       []domain.User
	Trainings   []domain.Training
	Assessments []assessment.Assessment
	Coaches     []domain.Coach
	Plans       []domain.Plan

	usersByEmail       map[string]domain.User
	trainingsByEmail   map[string][]domain.Training
	assessmentsByEmail map[string][]assessment.Assessment
	plansByEmail       map[string][]domain.Plan
}

// NewDataset builds the email indexes for one batch. Per-user training and
// assessment histories are sorted descending by date, matching what the
// engagement calculations expect.
func NewDataset(
	users []domain.User,
	trainings []domain.Training,
	assessments []assessment.Assessment,
	coaches []domain.Coach,
	plans []domain.Plan,
) *Dataset {
	d := &Dataset{
		Users:       users,
		Trainings:   trainings,
		Assessments: assessments,
		Coaches:     coaches,
		Plans:       plans,

		usersByEmail:       make(map[string]domain.User, len(users)),
		trainingsByEmail:   make(map[string][]domain.Training),
		assessmentsByEmail: make(map[string][]assessment.Assessment),
		plansByEmail:       make(map[string][]domain.Plan),
	}

	for _, u := range users {
		d.usersByEmail[domain.CanonicalEmail(u.Email)] = u
	}
	for _, t := range trainings {
		email := domain.CanonicalEmail(t.Email)
		d.trainingsByEmail[email] = append(d.trainingsByEmail[email], t)
	}
	for _, a := range assessments {
		email := domain.CanonicalEmail(a.Email)
		d.assessmentsByEmail[email] = append(d.assessmentsByEmail[email], a)
	}
	for _, p := range plans {
		email := domain.CanonicalEmail(p.Email)
		d.plansByEmail[email] = append(d.plansByEmail[email], p)
	}

	for email := range d.trainingsByEmail {
		ts := d.trainingsByEmail[email]
		sort.Slice(ts, func(i, j int) bool { return ts[i].Date.After(ts[j].Date) })
	}
	for email := range d.assessmentsByEmail {
		as := d.assessmentsByEmail[email]
		sort.Slice(as, func(i, j int) bool { return as[i].Date.After(as[j].Date) })
	}

	return d
}

// UserByEmail looks up a user by canonical email.
func (d *Dataset) UserByEmail(email string) (domain.User, bool) {
	u, ok := d.usersByEmail[domain.CanonicalEmail(email)]
	return u, ok
}

// TrainingsFor returns a user's training history, most recent first.
func (d *Dataset) TrainingsFor(email string) []domain.Training {
	return d.trainingsByEmail[domain.CanonicalEmail(email)]
}

// AssessmentsFor returns a user's assessment history, most recent first.
func (d *Dataset) AssessmentsFor(email string) []assessment.Assessment {
	return d.assessmentsByEmail[domain.CanonicalEmail(email)]
}

// PlansFor returns a user's training plans.
func (d *Dataset) PlansFor(email string) []domain.Plan {
	return d.plansByEmail[domain.CanonicalEmail(email)]
}

// CurrentAssessment returns a user's most recent assessment, if any. The
// current grade is always taken from here, never averaged.
func (d *Dataset) CurrentAssessment(email string) (assessment.Assessment, bool) {
	history := d.AssessmentsFor(email)
	if len(history) == 0 {
		return assessment.Assessment{}, false
	}
	return history[0], true
}

// ResolveAthletes resolves a coach's weak athlete references against the
// user index, returning the resolved users and the count of unresolved
// references.
func (d *Dataset) ResolveAthletes(coach domain.Coach) ([]domain.User, int) {
	var resolved []domain.User
	unresolved := 0
	for _, email := range coach.Athletes {
		if u, ok := d.UserByEmail(email); ok {
			resolved = append(resolved, u)
		} else {
			unresolved++
		}
	}
	return resolved, unresolved
}

// Scoped returns a dataset restricted to the given visible user emails.
// Visibility is a caller-supplied concern; the engine embeds no identity
// checks. A nil or empty scope returns the dataset unchanged.
func (d *Dataset) Scoped(visible []string) *Dataset {
	if len(visible) == 0 {
		return d
	}

	allowed := make(map[string]struct{}, len(visible))
	for _, email := range visible {
		allowed[domain.CanonicalEmail(email)] = struct{}{}
	}
	in := func(email string) bool {
		_, ok := allowed[domain.CanonicalEmail(email)]
		return ok
	}

	var users []domain.User
	for _, u := range d.Users {
		if in(u.Email) {
			users = append(users, u)
		}
	}
	var trainings []domain.Training
	for _, t := range d.Trainings {
		if in(t.Email) {
			trainings = append(trainings, t)
		}
	}
	var assessments []assessment.Assessment
	for _, a := range d.Assessments {
		if in(a.Email) {
			assessments = append(assessments, a)
		}
	}
	var plans []domain.Plan
	for _, p := range d.Plans {
		if in(p.Email) {
			plans = append(plans, p)
		}
	}

	return NewDataset(users, trainings, assessments, d.Coaches, plans)
}
