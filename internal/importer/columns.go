package importer

import (
	"fmt"
	"net/http"
	"strings"

	appErrors "github.com/noah-isme/goalie-roster-api/pkg/errors"
)

// Field names a logical column the importer understands.
type Field string

// Logical fields resolved by the column mapper.
const (
	FieldEmail        Field = "email"
	FieldFirstName    Field = "firstName"
	FieldLastName     Field = "lastName"
	FieldFullName     Field = "fullName"
	FieldGradYear     Field = "gradYear"
	FieldTeam         Field = "team"
	FieldSchool       Field = "school"
	FieldParentFirst  Field = "parentFirst"
	FieldParentLast   Field = "parentLast"
	FieldParentName   Field = "parentName"
	FieldPhone        Field = "phone"
	FieldSessionCount Field = "sessionCount"
	FieldLessonCount  Field = "lessonCount"
	FieldDate         Field = "date"
	FieldStartTime    Field = "startTime"
	FieldEndTime      Field = "endTime"
	FieldLocation     Field = "location"
	FieldNotes        Field = "notes"
	FieldCoach        Field = "coach"
)

// maxHeaderScanRows bounds how far into the file the header row may appear.
const maxHeaderScanRows = 10

// fieldRule lists candidate header names in priority order.
type fieldRule struct {
	field    Field
	exact    []string
	contains []string
	exclude  []string
}

var fieldRules = []fieldRule{
	{field: FieldEmail, exact: []string{"email", "e-mail", "email address", "goalie email", "athlete email"}, contains: []string{"email", "e-mail"}, exclude: []string{"parent", "guardian", "coach"}},
	{field: FieldFirstName, exact: []string{"first", "first name", "firstname", "goalie first name"}, contains: []string{"first name", "firstname", "first"}, exclude: []string{"parent", "guardian", "coach", "date", "session", "lesson", "time"}},
	{field: FieldLastName, exact: []string{"last", "last name", "lastname", "goalie last name"}, contains: []string{"last name", "lastname", "last"}, exclude: []string{"parent", "guardian", "coach", "date", "session", "lesson", "time"}},
	{field: FieldFullName, exact: []string{"name", "full name", "goalie", "goalie name", "athlete", "athlete name", "player", "player name"}, contains: []string{"full name", "goalie name", "athlete name", "player name"}, exclude: []string{"parent", "guardian", "coach", "team", "school", "email"}},
	{field: FieldGradYear, exact: []string{"grad year", "graduation year", "grad", "class", "birth year", "year"}, contains: []string{"grad", "birth year", "class of", "year"}},
	{field: FieldTeam, exact: []string{"team", "club", "organization"}, contains: []string{"team", "club", "organization", "org"}},
	{field: FieldSchool, exact: []string{"school"}, contains: []string{"school"}},
	{field: FieldParentFirst, exact: []string{"parent first", "parent first name", "guardian first name"}, contains: []string{"parent first", "guardian first"}},
	{field: FieldParentLast, exact: []string{"parent last", "parent last name", "guardian last name"}, contains: []string{"parent last", "guardian last"}},
	{field: FieldParentName, exact: []string{"parent", "parent name", "guardian", "guardian name"}, contains: []string{"parent name", "guardian name", "parent", "guardian"}, exclude: []string{"first", "last", "email", "phone"}},
	{field: FieldPhone, exact: []string{"phone", "phone number", "cell", "mobile"}, contains: []string{"phone", "cell", "mobile"}},
	{field: FieldSessionCount, exact: []string{"s#", "session #", "session", "session number", "sessions"}, contains: []string{"s#", "session #", "session number", "session"}, exclude: []string{"date", "note", "time", "location"}},
	{field: FieldLessonCount, exact: []string{"l#", "lesson #", "lesson", "lesson number", "lessons"}, contains: []string{"l#", "lesson #", "lesson number", "lesson"}, exclude: []string{"date", "note", "time", "location"}},
	{field: FieldDate, exact: []string{"date", "session date", "lesson date"}, contains: []string{"date"}, exclude: []string{"birth", "grad", "update", "created"}},
	{field: FieldStartTime, exact: []string{"start", "start time"}, contains: []string{"start"}, exclude: []string{"date"}},
	{field: FieldEndTime, exact: []string{"end", "end time"}, contains: []string{"end time", "finish"}},
	{field: FieldLocation, exact: []string{"location", "rink", "venue", "facility"}, contains: []string{"location", "rink", "venue", "facility"}},
	{field: FieldNotes, exact: []string{"notes", "note", "comments"}, contains: []string{"note", "comment"}},
	{field: FieldCoach, exact: []string{"coach", "instructor", "trainer"}, contains: []string{"coach", "instructor", "trainer"}},
}

// ColumnMap resolves logical fields to zero-based column indexes.
type ColumnMap struct {
	headers   []string
	indexes   map[Field]int
	headerRow int
}

// Index returns the column for field or -1 when unresolved.
func (m ColumnMap) Index(field Field) int {
	if idx, ok := m.indexes[field]; ok {
		return idx
	}
	return -1
}

// Has reports whether field resolved to a column.
func (m ColumnMap) Has(field Field) bool {
	return m.Index(field) >= 0
}

// Headers returns the original-case header cells.
func (m ColumnMap) Headers() []string {
	out := make([]string, len(m.headers))
	copy(out, m.headers)
	return out
}

// HeaderRow is the position of the header within the tokenized rows.
func (m ColumnMap) HeaderRow() int {
	return m.headerRow
}

// Structural mapping errors.
var (
	ErrEmptyFile         = appErrors.New("EMPTY_FILE", http.StatusBadRequest, "import file is empty")
	ErrHeaderNotFound    = appErrors.New("HEADER_NOT_FOUND", http.StatusUnprocessableEntity, "could not locate a header row")
	ErrEmailColumnAbsent = appErrors.New("EMAIL_COLUMN_MISSING", http.StatusUnprocessableEntity, "no email column found")
)

// MapColumns locates the header row within the first rows and resolves every
// logical field. withTarget relaxes header detection for session-only exports
// scoped to a pre-selected athlete.
func MapColumns(rows [][]string, withTarget bool) (ColumnMap, error) {
	if len(rows) == 0 {
		return ColumnMap{}, ErrEmptyFile
	}

	headerIdx := -1
	limit := len(rows)
	if limit > maxHeaderScanRows {
		limit = maxHeaderScanRows
	}
	for i := 0; i < limit; i++ {
		if looksLikeHeader(rows[i], withTarget) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return ColumnMap{}, appErrors.Clone(ErrHeaderNotFound, fmt.Sprintf("could not locate a header row in the first %d rows", limit))
	}

	original := rows[headerIdx]
	lowered := make([]string, len(original))
	for i, cell := range original {
		lowered[i] = strings.ToLower(strings.TrimSpace(cell))
	}

	m := ColumnMap{
		headers:   append([]string(nil), original...),
		indexes:   make(map[Field]int, len(fieldRules)),
		headerRow: headerIdx,
	}
	for _, rule := range fieldRules {
		m.indexes[rule.field] = resolve(lowered, rule)
	}

	if !m.Has(FieldFirstName) && !m.Has(FieldLastName) && !m.Has(FieldFullName) {
		m.indexes[FieldFirstName] = 1
		m.indexes[FieldLastName] = 2
	}

	if !m.Has(FieldEmail) && !withTarget {
		return ColumnMap{}, appErrors.Clone(ErrEmailColumnAbsent,
			fmt.Sprintf("no email column found; detected headers: %s", strings.Join(nonEmpty(original), ", ")))
	}
	return m, nil
}

func looksLikeHeader(row []string, withTarget bool) bool {
	for _, cell := range row {
		c := strings.ToLower(cell)
		if strings.Contains(c, "email") || strings.Contains(c, "goalie") {
			return true
		}
		if withTarget && (strings.Contains(c, "date") || strings.Contains(c, "session") ||
			strings.Contains(c, "s#") || strings.Contains(c, "notes")) {
			return true
		}
	}
	return false
}

func resolve(headers []string, rule fieldRule) int {
	for _, candidate := range rule.exact {
		for i, h := range headers {
			if h == candidate {
				return i
			}
		}
	}
	for _, candidate := range rule.contains {
		for i, h := range headers {
			if strings.Contains(h, candidate) && !excluded(h, rule.exclude) {
				return i
			}
		}
	}
	return -1
}

func excluded(header string, words []string) bool {
	for _, w := range words {
		if strings.Contains(header, w) {
			return true
		}
	}
	return false
}

func nonEmpty(cells []string) []string {
	out := make([]string, 0, len(cells))
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}
