// Package devutil holds small helpers for inspecting raw records from the
// command line.
package devutil

import (
	"encoding/json"
	"slices"

	"enrollment-insights/internal/domain"
)

// Pick takes any struct or map, passes it through its JSON form and returns
// only the requested keys. With no keys every key is returned.
func Pick(v any, keys ...string) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		return map[string]any{}
	}
	if len(keys) == 0 {
		return m
	}

	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if val, ok := m[k]; ok {
			out[k] = val
		}
	}
	return out
}

// FieldNames lists the field keys present across records, sorted. Airtable
// omits empty cells, so one record rarely shows every column.
func FieldNames(records []domain.RawRecord) []string {
	seen := map[string]struct{}{}
	for _, r := range records {
		for k := range r.Fields {
			seen[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
