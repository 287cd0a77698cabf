package transform

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Candidate keys per canonical field, tried in order. The title-case name is
// what the live base uses; the snake_case alias is what snapshots use.
var (
	keysRecordID = []string{"record_id", "Record ID"}

	keysLeaderName  = []string{"Name", "name"}
	keysEmail       = []string{"Email", "email"}
	keysTitle       = []string{"Title", "title"}
	keysTenureStart = []string{"Tenure Start", "tenure_start"}
	keysTenureEnd   = []string{"Tenure End", "tenure_end"}
	keysJoinedDate  = []string{"Joined Date", "joined_date"}

	keysCityName   = []string{"City Name", "name"}
	keysState      = []string{"State", "state"}
	keysPopulation = []string{"Population", "population"}
	keysRegion     = []string{"Region", "region"}
	keysBudget     = []string{"Budget", "budget"}

	keysCourseName    = []string{"Course Name", "course_name"}
	keysDuration      = []string{"Duration (Weeks)", "duration_weeks"}
	keysStartDate     = []string{"Start Date", "start_date"}
	keysEndDate       = []string{"End Date", "end_date"}
	keysProgramCenter = []string{"Program Center", "program_center"}
	keysStatus        = []string{"Status", "completion_status"}
	keysScore         = []string{"Score (%)", "score"}

	keysLeaderLink = []string{"Leader Name", "leader_name"}
	keysCityLink   = []string{"City", "city"}

	// Display name of a city row when building the link map.
	keysCityDisplay = []string{"City", "City Name", "name"}
)

// lookup returns the first candidate holding a non-empty value. Empty
// strings, zero numbers, false, nil and empty lists all count as absent.
func lookup(fields map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		v, ok := fields[k]
		if ok && !isEmpty(v) {
			return v, true
		}
	}
	return nil, false
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case float64:
		return t == 0 || math.IsNaN(t)
	case int:
		return t == 0
	case int64:
		return t == 0
	case bool:
		return !t
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

func getString(fields map[string]any, keys ...string) string {
	v, ok := lookup(fields, keys)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// getOptionalString distinguishes "absent" (nil) from a present value.
func getOptionalString(fields map[string]any, keys ...string) *string {
	if _, ok := lookup(fields, keys); !ok {
		return nil
	}
	s := getString(fields, keys...)
	return &s
}

func getFloat(fields map[string]any, keys ...string) (float64, bool) {
	v, ok := lookup(fields, keys)
	if !ok {
		return 0, false
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		p, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(t), "%"), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// getCount reads a non-negative integer, defaulting to 0.
func getCount(fields map[string]any, keys ...string) int {
	f, ok := getFloat(fields, keys...)
	if !ok || f < 0 {
		return 0
	}
	return int(f)
}

// getScore returns a score in [0,100], or nil.
func getScore(fields map[string]any, keys ...string) *float64 {
	f, ok := getFloat(fields, keys...)
	if !ok || f < 0 || f > 100 {
		return nil
	}
	return &f
}

// resolveLink resolves a linked-record field. A sequence of ids resolves its
// first element through names, falling back to the raw id; a plain string is
// an already-resolved name.
func resolveLink(fields map[string]any, names map[string]string, keys ...string) string {
	v, ok := lookup(fields, keys)
	if !ok {
		return ""
	}

	var id string
	switch t := v.(type) {
	case []any:
		// [null] or a non-string id is unresolvable
		s, ok := t[0].(string)
		if !ok {
			return ""
		}
		id = s
	case []string:
		id = t[0]
	case string:
		return t
	default:
		return ""
	}

	if name, ok := names[id]; ok {
		return name
	}
	return id
}
