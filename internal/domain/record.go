package domain

// RawRecord is a row as returned by the tabular source: an opaque row id and a
// field map whose keys may be title-case business names or snake_case aliases.
type RawRecord struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// RawTables groups the three tables fetched in one acquisition attempt.
type RawTables struct {
	Leaders     []RawRecord
	Cities      []RawRecord
	Enrollments []RawRecord
}

// Table names as exposed by the proxy (/api/<table>).
const (
	TableLeaders     = "leaders"
	TableCities      = "cities"
	TableEnrollments = "enrollments"
)
