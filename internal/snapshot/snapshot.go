// Package snapshot loads the bundled static snapshot, the lowest tier of the
// fallback chain.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"enrollment-insights/internal/domain"
	"enrollment-insights/internal/transform"
)

type document struct {
	Leaders     json.RawMessage `json:"leaders"`
	Cities      json.RawMessage `json:"cities"`
	Enrollments json.RawMessage `json:"enrollments"`
}

// Load reads and parses the snapshot at path.
func Load(path string) (*domain.Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", path, err)
	}
	s, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a snapshot document. Each table entry is either a raw
// record ({"id", "fields"}) or a flat object of snake_case fields; both go
// through the same transformer as live data.
func Parse(b []byte) (*domain.Snapshot, error) {
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	var raw domain.RawTables
	var err error
	if raw.Leaders, err = decodeTable("leaders", doc.Leaders); err != nil {
		return nil, err
	}
	if raw.Cities, err = decodeTable("cities", doc.Cities); err != nil {
		return nil, err
	}
	if raw.Enrollments, err = decodeTable("enrollments", doc.Enrollments); err != nil {
		return nil, err
	}
	return transform.Transform(raw, domain.SourceStatic), nil
}

// Empty is the snapshot used when no static document is available.
func Empty() *domain.Snapshot {
	return &domain.Snapshot{
		Leaders:     []domain.Leader{},
		Cities:      []domain.City{},
		Enrollments: []domain.Enrollment{},
		Source:      domain.SourceStatic,
	}
}

func decodeTable(name string, msg json.RawMessage) ([]domain.RawRecord, error) {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return nil, nil
	}

	var entries []map[string]any
	if err := json.Unmarshal(msg, &entries); err != nil {
		return nil, fmt.Errorf("%s: expected an array of records: %w", name, err)
	}

	out := make([]domain.RawRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, toRawRecord(e))
	}
	return out, nil
}

func toRawRecord(entry map[string]any) domain.RawRecord {
	if fields, ok := entry["fields"].(map[string]any); ok {
		id, _ := entry["id"].(string)
		return domain.RawRecord{ID: id, Fields: fields}
	}

	id := ""
	switch v := entry["record_id"].(type) {
	case string:
		id = v
	case float64:
		id = fmt.Sprintf("%v", v)
	}
	return domain.RawRecord{ID: id, Fields: entry}
}
