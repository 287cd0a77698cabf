// Package transform maps raw source rows into canonical entities and resolves
// linked-record ids into display names.
package transform

import (
	"time"

	"enrollment-insights/internal/domain"
)

const unknown = "Unknown"

// LeaderMap maps leader row ids to leader names.
func LeaderMap(raw []domain.RawRecord) map[string]string {
	out := make(map[string]string, len(raw))
	for _, r := range raw {
		name := getString(r.Fields, keysLeaderName...)
		if name == "" {
			name = unknown
		}
		out[r.ID] = name
	}
	return out
}

// CityMap maps city row ids to city display names.
func CityMap(raw []domain.RawRecord) map[string]string {
	out := make(map[string]string, len(raw))
	for _, r := range raw {
		name := getString(r.Fields, keysCityDisplay...)
		if name == "" {
			name = unknown
		}
		out[r.ID] = name
	}
	return out
}

func recordID(r domain.RawRecord) string {
	if id := getString(r.Fields, keysRecordID...); id != "" {
		return id
	}
	return r.ID
}

func Leader(r domain.RawRecord) domain.Leader {
	return domain.Leader{
		RecordID:    recordID(r),
		Name:        getString(r.Fields, keysLeaderName...),
		Email:       getString(r.Fields, keysEmail...),
		Title:       getString(r.Fields, keysTitle...),
		TenureStart: getString(r.Fields, keysTenureStart...),
		TenureEnd:   getString(r.Fields, keysTenureEnd...),
		JoinedDate:  getString(r.Fields, keysJoinedDate...),
	}
}

func City(r domain.RawRecord) domain.City {
	return domain.City{
		Name:       getString(r.Fields, keysCityName...),
		State:      getString(r.Fields, keysState...),
		Population: getCount(r.Fields, keysPopulation...),
		Region:     getString(r.Fields, keysRegion...),
		Budget:     getString(r.Fields, keysBudget...),
	}
}

// Enrollment transforms one enrollment row. leaders and cities come from
// LeaderMap and CityMap.
func Enrollment(r domain.RawRecord, leaders, cities map[string]string) domain.Enrollment {
	return domain.Enrollment{
		RecordID:         recordID(r),
		LeaderName:       resolveLink(r.Fields, leaders, keysLeaderLink...),
		CourseName:       getString(r.Fields, keysCourseName...),
		DurationWeeks:    getCount(r.Fields, keysDuration...),
		StartDate:        getString(r.Fields, keysStartDate...),
		EndDate:          getOptionalString(r.Fields, keysEndDate...),
		City:             resolveLink(r.Fields, cities, keysCityLink...),
		State:            getString(r.Fields, keysState...),
		ProgramCenter:    getString(r.Fields, keysProgramCenter...),
		CompletionStatus: getString(r.Fields, keysStatus...),
		Score:            getScore(r.Fields, keysScore...),
	}
}

// Transform builds both lookup maps, then transforms every table. The result
// is a new snapshot tagged with source.
func Transform(raw domain.RawTables, source string) *domain.Snapshot {
	leaderNames := LeaderMap(raw.Leaders)
	cityNames := CityMap(raw.Cities)

	s := &domain.Snapshot{
		Leaders:     make([]domain.Leader, 0, len(raw.Leaders)),
		Cities:      make([]domain.City, 0, len(raw.Cities)),
		Enrollments: make([]domain.Enrollment, 0, len(raw.Enrollments)),
		Source:      source,
		FetchedAt:   time.Now().UTC(),
	}
	for _, r := range raw.Leaders {
		s.Leaders = append(s.Leaders, Leader(r))
	}
	for _, r := range raw.Cities {
		s.Cities = append(s.Cities, City(r))
	}
	for _, r := range raw.Enrollments {
		s.Enrollments = append(s.Enrollments, Enrollment(r, leaderNames, cityNames))
	}
	return s
}
