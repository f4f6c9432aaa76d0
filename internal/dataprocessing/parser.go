package dataprocessing

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode"

	"climbingpill/internal/assessment"
	"climbingpill/pkg/contracts/domain"
)

// Row is one flat record keyed by normalized header names.
type Row map[string]string

// Decorator characters the spreadsheet tooling prepends to protected
// column headers: the UTF-8 BOM and a lock emoji. Stripped before key
// normalization.
var headerDecorators = []string{"\uFEFF", "🔒"}

// NormalizeHeader converts a raw column header into the canonical row key:
// decorators stripped, trimmed, lower-cased, and inner whitespace collapsed
// into camelCase ("🔒 First Name" -> "firstName").
func NormalizeHeader(header string) string {
	for _, d := range headerDecorators {
		header = strings.ReplaceAll(header, d, "")
	}
	header = strings.ToLower(strings.TrimSpace(header))

	var b strings.Builder
	upperNext := false
	for _, r := range header {
		if unicode.IsSpace(r) {
			upperNext = true
			continue
		}
		if upperNext {
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// RowsFromValues converts an ordered value grid with a leading header row
// into keyed rows. Ragged rows are tolerated; cells beyond the header
// width are dropped and missing cells default to empty strings.
func RowsFromValues(values [][]string) []Row {
	if len(values) < 2 {
		return nil
	}

	headers := make([]string, len(values[0]))
	for i, h := range values[0] {
		headers[i] = NormalizeHeader(h)
	}

	rows := make([]Row, 0, len(values)-1)
	for _, cells := range values[1:] {
		row := make(Row, len(headers))
		for i, key := range headers {
			if key == "" {
				continue
			}
			if i < len(cells) {
				row[key] = strings.TrimSpace(cells[i])
			} else {
				row[key] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Parser converts normalized rows into typed domain records. Rows missing
// their identity fields are dropped silently; individual malformed cells
// become type defaults and never fail the batch.
type Parser struct {
	scorer *assessment.Scorer
	logger *slog.Logger
}

// NewParser creates a parser. Assessments are scored at ingestion time via
// the given scorer and are immutable afterward.
func NewParser(scorer *assessment.Scorer, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{scorer: scorer, logger: logger}
}

// Users parses user rows. Rows without an email are dropped.
func (p *Parser) Users(rows []Row) []domain.User {
	users := make([]domain.User, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		email := domain.CanonicalEmail(row.get("email"))
		if email == "" {
			dropped++
			continue
		}
		users = append(users, domain.User{
			Email:     email,
			FirstName: row.get("firstName", "firstname"),
			LastName:  row.get("lastName", "lastname"),
		})
	}
	p.logRows("users", len(users), dropped)
	return users
}

// Trainings parses and concatenates one or more training row sets; the
// source data may arrive split across several spreadsheet ranges. Rows
// without both an email and a parseable date are dropped.
func (p *Parser) Trainings(rowSets ...[]Row) []domain.Training {
	var trainings []domain.Training
	dropped := 0
	for _, rows := range rowSets {
		for _, row := range rows {
			email := domain.CanonicalEmail(row.get("email"))
			date := parseDate(row.get("date"))
			if email == "" || date.IsZero() {
				dropped++
				continue
			}
			trainings = append(trainings, domain.Training{
				Email:    email,
				Date:     date,
				Location: row.get("where", "location"),
				Complete: parseBool(row.get("done", "complete", "completed")),
			})
		}
	}
	p.logRows("trainings", len(trainings), dropped)
	return trainings
}

// Assessments parses assessment rows and scores each one immediately.
// Rows without both an email and a parseable date are dropped; unparseable
// measurement cells become zero and are handled by the scorer's floors.
func (p *Parser) Assessments(rows []Row) []assessment.Assessment {
	assessments := make([]assessment.Assessment, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		email := domain.CanonicalEmail(row.get("email"))
		date := parseDate(row.get("date"))
		if email == "" || date.IsZero() {
			dropped++
			continue
		}

		raw := domain.RawMeasurements{
			FingerStrengthAddedWeight: parseFloat(row.get("addedWeight", "fingerStrengthAddedWeight")),
			BodyWeight:                parseFloat(row.get("bodyWeight", "weight")),
			Height:                    parseFloat(row.get("height")),
			PullUps:                   parseFloat(row.get("pullUps", "pullups")),
			PushUps:                   parseFloat(row.get("pushUps", "pushups")),
			ToeToBar:                  parseFloat(row.get("toeToBar", "toetobar")),
			LegSpread:                 parseFloat(row.get("legSpread", "legspread")),
		}
		assessments = append(assessments, p.scorer.Score(email, date, raw))
	}
	p.logRows("assessments", len(assessments), dropped)
	return assessments
}

// Coaches parses coach rows. Specialties and athlete lists arrive as
// delimited cells; athlete entries are canonicalized emails and remain
// weak references resolved against the user index at query time.
func (p *Parser) Coaches(rows []Row) []domain.Coach {
	coaches := make([]domain.Coach, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		email := domain.CanonicalEmail(row.get("email"))
		if email == "" {
			dropped++
			continue
		}

		var athletes []string
		for _, a := range splitList(row.get("athletes")) {
			athletes = append(athletes, domain.CanonicalEmail(a))
		}

		coaches = append(coaches, domain.Coach{
			Email:       email,
			FirstName:   row.get("firstName", "firstname"),
			LastName:    row.get("lastName", "lastname"),
			Specialties: splitList(row.get("specialties", "specialty")),
			Athletes:    athletes,
		})
	}
	p.logRows("coaches", len(coaches), dropped)
	return coaches
}

// Plans parses training plan rows. Rows missing email, start or end date
// are dropped.
func (p *Parser) Plans(rows []Row) []domain.Plan {
	plans := make([]domain.Plan, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		email := domain.CanonicalEmail(row.get("email"))
		start := parseDate(row.get("startDate", "startdate", "start"))
		end := parseDate(row.get("endDate", "enddate", "end"))
		if email == "" || start.IsZero() || end.IsZero() {
			dropped++
			continue
		}
		plans = append(plans, domain.Plan{
			Email:     email,
			StartDate: start,
			EndDate:   end,
			Type:      row.get("type"),
			Status:    domain.PlanStatus(strings.ToLower(row.get("status"))),
		})
	}
	p.logRows("plans", len(plans), dropped)
	return plans
}

func (p *Parser) logRows(entity string, kept, dropped int) {
	p.logger.Debug("parsed rows",
		slog.String("entity", entity),
		slog.Int("kept", kept),
		slog.Int("dropped", dropped))
}

// get returns the first non-empty value among the candidate keys.
func (r Row) get(keys ...string) string {
	for _, key := range keys {
		if v, ok := r[key]; ok && v != "" {
			return v
		}
	}
	return ""
}

// dateLayouts are tried in order. Source sheets mix ISO dates, timestamps
// and US-style slashed dates.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
}

// parseDate parses a date cell, returning the zero time on failure so the
// caller can drop the record.
func parseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseFloat parses a numeric cell. A lone comma followed by one or two
// digits is a decimal separator ("72,5"); any other comma is a thousands
// separator ("1,234"). Unparseable values become zero.
func parseFloat(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if i := strings.IndexByte(value, ','); i >= 0 &&
		strings.Count(value, ",") == 1 &&
		!strings.Contains(value, ".") &&
		len(value)-i-1 >= 1 && len(value)-i-1 <= 2 {
		value = value[:i] + "." + value[i+1:]
	} else {
		value = strings.ReplaceAll(value, ",", "")
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "y", "1", "done", "x":
		return true
	default:
		return false
	}
}

// splitList splits a delimited cell into trimmed, non-empty entries.
func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	split := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	})
	var out []string
	for _, s := range split {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
