// Package delta compares two snapshots so a refresh can report what changed.
package delta

import (
	"math"
	"strings"

	"enrollment-insights/internal/domain"
)

// Changes between the previous and the next snapshot.
type Changes struct {
	Added   []domain.Enrollment
	Updated []domain.Enrollment
	Removed []domain.Enrollment
}

func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Updated) == 0 && len(c.Removed) == 0
}

// Key identifies an enrollment across snapshots. RecordID alone is not
// enough: snapshots reuse the leader's id for each of their enrollments.
func Key(e domain.Enrollment) string {
	return strings.Join([]string{norm(e.RecordID), norm(e.LeaderName), norm(e.CourseName), norm(e.StartDate)}, "|")
}

// Diff compares enrollments of prev and next. Results follow the order of
// next (added, updated) and prev (removed). Either snapshot may be nil.
func Diff(prev, next *domain.Snapshot) Changes {
	var before, after []domain.Enrollment
	if prev != nil {
		before = prev.Enrollments
	}
	if next != nil {
		after = next.Enrollments
	}

	prevByKey := make(map[string]domain.Enrollment, len(before))
	for _, e := range before {
		prevByKey[Key(e)] = e
	}
	nextKeys := make(map[string]struct{}, len(after))

	var c Changes
	for _, e := range after {
		k := Key(e)
		nextKeys[k] = struct{}{}
		old, ok := prevByKey[k]
		if !ok {
			c.Added = append(c.Added, e)
			continue
		}
		if needsUpdate(old, e) {
			c.Updated = append(c.Updated, e)
		}
	}

	for _, e := range before {
		if _, ok := nextKeys[Key(e)]; !ok {
			c.Removed = append(c.Removed, e)
		}
	}
	return c
}

func needsUpdate(a, b domain.Enrollment) bool {
	if norm(a.CompletionStatus) != norm(b.CompletionStatus) {
		return true
	}
	if norm(a.City) != norm(b.City) || norm(a.ProgramCenter) != norm(b.ProgramCenter) {
		return true
	}
	if a.DurationWeeks != b.DurationWeeks {
		return true
	}
	if norm(deref(a.EndDate)) != norm(deref(b.EndDate)) {
		return true
	}

	// Score: tolerate float noise from numeric strings
	switch {
	case a.Score == nil && b.Score == nil:
		return false
	case a.Score == nil || b.Score == nil:
		return true
	}
	return math.Abs(*a.Score-*b.Score) > 0.01
}

func norm(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
