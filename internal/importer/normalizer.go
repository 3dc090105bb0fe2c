package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/noah-isme/goalie-roster-api/internal/models"
)

// DiscardReason explains why a row produced no candidate.
type DiscardReason string

// Row discard reasons. An empty reason means the row was accepted.
const (
	DiscardNone          DiscardReason = ""
	DiscardTooLong       DiscardReason = "too_long"
	DiscardURL           DiscardReason = "contains_url"
	DiscardPlaceholder   DiscardReason = "placeholder"
	DiscardMissingEmail  DiscardReason = "missing_email"
	DiscardInvalidEmail  DiscardReason = "invalid_email"
	DiscardUnmatchedName DiscardReason = "unmatched_name"
)

// Defaults substituted when a row leaves a field empty.
const (
	DefaultCoach     = "Staff Coach"
	DefaultTeam      = "Unassigned"
	DefaultLocation  = "Unknown Location"
	DefaultGradYear  = 2030
	minGradYear      = 1990
	maxGradYear      = 2045
	maxRowLength     = 500
	maxEmailLength   = 100
	minCoachNameRune = 2
)

// SentinelDate marks a session whose date cell could not be parsed.
var SentinelDate = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

var (
	emailPattern    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	yearPattern     = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	bareYearPattern = regexp.MustCompile(`^\d{4}$`)
	urlMarkers      = []string{"http://", "https://", "www."}
	placeholders    = []string{
		"e.g.",
		"example@",
		"please enter",
		"enter the",
		"fill in",
		"instructions:",
		"do not edit",
		"sample row",
		"delete this row",
		"your email here",
	}
	dateLayouts = []string{
		"2006-01-02",
		"1/2/2006",
		"01/02/2006",
		"1/2/06",
		"1-2-2006",
		"2006/01/02",
		"Jan 2, 2006",
		"January 2, 2006",
		"Jan 2 2006",
		"2 Jan 2006",
		"Mon, Jan 2, 2006",
		"Monday, January 2, 2006",
		"2006-01-02 15:04:05",
		"1/2/2006 15:04",
		"1/2/2006 3:04 PM",
		time.RFC3339,
	}
)

// Candidate is a normalized row waiting to be reconciled against the roster.
type Candidate struct {
	// Index is the position of the candidate within the current batch.
	Index   int
	Email   string
	Athlete models.Athlete
	Session *models.SessionLogEntry
	IsNew   bool
}

// Normalizer turns raw rows into candidates using a resolved column map.
type Normalizer struct {
	columns ColumnMap
	target  *models.Athlete
}

// NewNormalizer builds a normalizer. A non-nil target scopes every row to that athlete.
func NewNormalizer(columns ColumnMap, target *models.Athlete) *Normalizer {
	return &Normalizer{columns: columns, target: target}
}

// Normalize converts one data row. It never fails; unusable rows return a
// non-empty DiscardReason.
func (n *Normalizer) Normalize(row []string) (Candidate, DiscardReason) {
	joined := strings.Join(row, ",")
	if utf8.RuneCountInString(joined) > maxRowLength {
		return Candidate{}, DiscardTooLong
	}
	lowered := strings.ToLower(joined)
	for _, marker := range urlMarkers {
		if strings.Contains(lowered, marker) {
			return Candidate{}, DiscardURL
		}
	}
	for _, phrase := range placeholders {
		if strings.Contains(lowered, phrase) {
			return Candidate{}, DiscardPlaceholder
		}
	}

	athlete := n.base()
	n.applyName(&athlete, row)
	athlete.Coach = n.coach(row, athlete.Coach)
	if parent := n.guardian(row); parent != "" {
		athlete.ParentName = parent
	}
	if phone := n.cell(row, FieldPhone); phone != "" {
		athlete.Phone = phone
	}
	athlete.Team = n.team(row, athlete.Team)

	email := ""
	if n.target != nil {
		email = strings.ToLower(strings.TrimSpace(n.target.Email))
		athlete.FullName = n.target.FullName
		athlete.FirstName = n.target.FirstName
		athlete.LastName = n.target.LastName
	} else {
		email = n.email(row)
	}
	if email == "" {
		if athlete.FullName == "" {
			return Candidate{}, DiscardMissingEmail
		}
	} else if len(email) > maxEmailLength || strings.IndexFunc(email, unicode.IsSpace) >= 0 {
		return Candidate{}, DiscardInvalidEmail
	}
	athlete.Email = email
	athlete.GradYear = n.gradYear(row)
	athlete.RawAttributes = n.attributes(row)

	return Candidate{
		Email:   email,
		Athlete: athlete,
		Session: n.session(row, athlete.Coach),
	}, DiscardNone
}

// base seeds the athlete from the override target so unmapped columns keep
// their stored values.
func (n *Normalizer) base() models.Athlete {
	if n.target == nil {
		return models.Athlete{Team: DefaultTeam}
	}
	athlete := *n.target
	athlete.Claimed = false
	if athlete.Team == "" {
		athlete.Team = DefaultTeam
	}
	return athlete
}

func (n *Normalizer) cell(row []string, field Field) string {
	return cellAt(row, n.columns.Index(field))
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (n *Normalizer) applyName(athlete *models.Athlete, row []string) {
	first := n.cell(row, FieldFirstName)
	last := n.cell(row, FieldLastName)
	if first == "" && last == "" {
		if full := n.cell(row, FieldFullName); full != "" {
			first, last = splitFullName(full)
		}
	}
	if first == "" && last == "" {
		return
	}
	athlete.FirstName = first
	athlete.LastName = last
	athlete.FullName = strings.TrimSpace(first + " " + last)
}

func splitFullName(full string) (string, string) {
	full = strings.Join(strings.Fields(full), " ")
	if before, after, ok := strings.Cut(full, ","); ok {
		return strings.TrimSpace(after), strings.TrimSpace(before)
	}
	parts := strings.SplitN(full, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func (n *Normalizer) coach(row []string, current string) string {
	coach := n.cell(row, FieldCoach)
	if utf8.RuneCountInString(coach) >= minCoachNameRune {
		return coach
	}
	if n.target != nil && utf8.RuneCountInString(current) >= minCoachNameRune {
		return current
	}
	return DefaultCoach
}

func (n *Normalizer) guardian(row []string) string {
	name := strings.TrimSpace(n.cell(row, FieldParentFirst) + " " + n.cell(row, FieldParentLast))
	if name != "" {
		return name
	}
	return n.cell(row, FieldParentName)
}

func (n *Normalizer) team(row []string, current string) string {
	if team := n.cell(row, FieldTeam); team != "" {
		return team
	}
	if school := n.cell(row, FieldSchool); school != "" {
		return school
	}
	if current != "" {
		return current
	}
	return DefaultTeam
}

func (n *Normalizer) email(row []string) string {
	if mapped := n.cell(row, FieldEmail); strings.Contains(mapped, "@") {
		return strings.ToLower(mapped)
	}
	for _, c := range row {
		if match := emailPattern.FindString(c); match != "" {
			return strings.ToLower(match)
		}
	}
	return ""
}

func (n *Normalizer) gradYear(row []string) int {
	if match := yearPattern.FindString(n.cell(row, FieldGradYear)); match != "" {
		if year, err := strconv.Atoi(match); err == nil && plausibleYear(year) {
			return year
		}
	}
	if n.target != nil && n.target.GradYear > 0 {
		return n.target.GradYear
	}
	for _, c := range row {
		c = strings.TrimSpace(c)
		if !bareYearPattern.MatchString(c) {
			continue
		}
		if year, err := strconv.Atoi(c); err == nil && plausibleYear(year) {
			return year
		}
	}
	return DefaultGradYear
}

func plausibleYear(year int) bool {
	return year >= minGradYear && year <= maxGradYear
}

func (n *Normalizer) attributes(row []string) models.Attributes {
	attrs := models.NewAttributes()
	for i, header := range n.columns.headers {
		header = strings.TrimSpace(header)
		if header == "" {
			continue
		}
		if value := cellAt(row, i); value != "" {
			attrs.Set(header, value)
		}
	}
	return attrs
}

func (n *Normalizer) session(row []string, coach string) *models.SessionLogEntry {
	raw := n.cell(row, FieldDate)
	if raw == "" {
		return nil
	}
	entry := &models.SessionLogEntry{
		StartTime:     n.cell(row, FieldStartTime),
		EndTime:       n.cell(row, FieldEndTime),
		Location:      n.cell(row, FieldLocation),
		Notes:         n.cell(row, FieldNotes),
		Coach:         coach,
		SessionNumber: parseCount(n.cell(row, FieldSessionCount)),
		LessonNumber:  parseCount(n.cell(row, FieldLessonCount)),
		Active:        true,
	}
	if date, ok := parseDate(raw); ok {
		entry.EventDate = date
		if entry.Location == "" {
			entry.Location = DefaultLocation
		}
	} else {
		entry.EventDate = SentinelDate
	}
	return entry
}

func parseCount(raw string) int {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "#"))
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.Join(strings.Fields(raw), " ")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
