// Package aggregate turns one snapshot into the derived views. Everything
// here is a pure function of its input.
package aggregate

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"enrollment-insights/internal/domain"
)

// ErrStructuralInvalid is reported when the input cannot be aggregated. It
// never escapes as a failure: callers still receive Empty().
var ErrStructuralInvalid = errors.New("aggregate: structurally invalid input")

const unknownRegion = "Unknown"

// Compute returns the derived views for s, or Empty() when s is unusable.
func Compute(s *domain.Snapshot) Views {
	v, _ := ComputeErr(s)
	return v
}

// ComputeErr is Compute that also reports why the empty result was returned.
func ComputeErr(s *domain.Snapshot) (v Views, err error) {
	if s == nil {
		return Empty(), ErrStructuralInvalid
	}
	defer func() {
		if r := recover(); r != nil {
			v, err = Empty(), fmt.Errorf("%w: %v", ErrStructuralInvalid, r)
		}
	}()

	return Views{
		Leaders:     orEmpty(s.Leaders),
		Cities:      orEmpty(s.Cities),
		Enrollments: orEmpty(s.Enrollments),
		CityStats:   CityStats(s.Enrollments, s.Cities),
		CourseStats: CourseStats(s.Enrollments),
		CenterStats: CenterStats(s.Enrollments),
		RegionStats: RegionStats(s.Enrollments, s.Cities),
		KPIs:        ComputeKPIs(s.Leaders, s.Cities, s.Enrollments),
		Timeline:    Timeline(s.Enrollments),
	}, nil
}

func orEmpty[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}

// cityIndex maps city name to its reference entry; the first entry wins.
func cityIndex(cities []domain.City) map[string]domain.City {
	idx := make(map[string]domain.City, len(cities))
	for _, c := range cities {
		if _, ok := idx[c.Name]; !ok {
			idx[c.Name] = c
		}
	}
	return idx
}

type cityAcc struct {
	stat    CityStat
	scores  []float64
	records map[string]struct{}
}

// CityStats groups enrollments by resolved city, skipping empty and
// "Unknown" cities. LeaderCount counts distinct enrollment record ids, not
// leaders.
func CityStats(enrollments []domain.Enrollment, cities []domain.City) []CityStat {
	idx := cityIndex(cities)
	byCity := map[string]*cityAcc{}
	var order []string

	for _, e := range enrollments {
		if e.City == "" || e.City == "Unknown" {
			continue
		}
		acc, ok := byCity[e.City]
		if !ok {
			info := idx[e.City]
			acc = &cityAcc{
				stat: CityStat{
					City:       e.City,
					State:      e.State,
					Region:     info.Region,
					Population: info.Population,
					Budget:     info.Budget,
				},
				records: map[string]struct{}{},
			}
			byCity[e.City] = acc
			order = append(order, e.City)
		}

		acc.stat.Total++
		if e.Completed() {
			acc.stat.Completed++
			if e.Score != nil {
				acc.scores = append(acc.scores, *e.Score)
			}
		} else {
			acc.stat.InProgress++
		}
		acc.records[e.RecordID] = struct{}{}
	}

	out := make([]CityStat, 0, len(order))
	for _, name := range order {
		acc := byCity[name]
		acc.stat.LeaderCount = len(acc.records)
		acc.stat.AvgScore = mean(acc.scores)
		acc.stat.CompletionRate = percent(acc.stat.Completed, acc.stat.Total)
		out = append(out, acc.stat)
	}
	slices.SortStableFunc(out, func(a, b CityStat) int { return cmp.Compare(b.Total, a.Total) })
	return out
}

// CourseStats counts enrollments per course. Center is the program center
// of the first enrollment seen for the course.
func CourseStats(enrollments []domain.Enrollment) []CourseStat {
	pos := map[string]int{}
	out := []CourseStat{}
	for _, e := range enrollments {
		i, ok := pos[e.CourseName]
		if !ok {
			i = len(out)
			pos[e.CourseName] = i
			out = append(out, CourseStat{Name: e.CourseName, Center: e.ProgramCenter})
		}
		out[i].Count++
	}
	slices.SortStableFunc(out, func(a, b CourseStat) int { return cmp.Compare(b.Count, a.Count) })
	return out
}

// CenterStats reports the two fixed program centers. Other centers are not
// bucketed.
func CenterStats(enrollments []domain.Enrollment) []CenterStat {
	names := []string{domain.CenterGovEx, domain.CenterBCPI}
	counts := map[string]int{}
	scores := map[string][]float64{}

	for _, e := range enrollments {
		if e.ProgramCenter != domain.CenterGovEx && e.ProgramCenter != domain.CenterBCPI {
			continue
		}
		counts[e.ProgramCenter]++
		if e.Completed() && e.Score != nil {
			scores[e.ProgramCenter] = append(scores[e.ProgramCenter], *e.Score)
		}
	}

	out := make([]CenterStat, 0, len(names))
	for _, n := range names {
		out = append(out, CenterStat{
			Name:     n,
			Count:    counts[n],
			AvgScore: mean(scores[n]),
			Pct:      percent(counts[n], len(enrollments)),
		})
	}
	return out
}

// RegionStats resolves each enrollment's region through the city table, not
// the enrollment's own state. Unmatched cities land in "Unknown".
func RegionStats(enrollments []domain.Enrollment, cities []domain.City) []RegionStat {
	idx := cityIndex(cities)
	pos := map[string]int{}
	seen := map[string]map[string]struct{}{}
	out := []RegionStat{}

	for _, e := range enrollments {
		region := idx[e.City].Region
		if region == "" {
			region = unknownRegion
		}
		i, ok := pos[region]
		if !ok {
			i = len(out)
			pos[region] = i
			seen[region] = map[string]struct{}{}
			out = append(out, RegionStat{Region: region})
		}
		out[i].Count++
		seen[region][e.City] = struct{}{}
	}
	for i := range out {
		out[i].CityCount = len(seen[out[i].Region])
	}
	slices.SortStableFunc(out, func(a, b RegionStat) int { return cmp.Compare(b.Count, a.Count) })
	return out
}

// ComputeKPIs returns the headline numbers. Leader and city totals are the
// reference table sizes.
func ComputeKPIs(leaders []domain.Leader, cities []domain.City, enrollments []domain.Enrollment) KPIs {
	completed := 0
	var scores []float64
	for _, e := range enrollments {
		if !e.Completed() {
			continue
		}
		completed++
		if e.Score != nil {
			scores = append(scores, *e.Score)
		}
	}

	return KPIs{
		TotalLeaders:     len(leaders),
		TotalCities:      len(cities),
		TotalEnrollments: len(enrollments),
		CompletionRate:   percent(completed, len(enrollments)),
		AvgScore:         mean(scores),
		TotalCompleted:   completed,
		TotalInProgress:  len(enrollments) - completed,
	}
}

// Timeline counts enrollments per start month ("2023-01"), ascending.
// Enrollments without a start date are skipped.
func Timeline(enrollments []domain.Enrollment) []MonthBucket {
	counts := map[string]int{}
	for _, e := range enrollments {
		if e.StartDate == "" {
			continue
		}
		key := e.StartDate
		if len(key) > 7 {
			key = key[:7]
		}
		counts[key]++
	}

	out := make([]MonthBucket, 0, len(counts))
	for month, n := range counts {
		out = append(out, MonthBucket{Month: month, Label: MonthLabel(month), Count: n})
	}
	slices.SortFunc(out, func(a, b MonthBucket) int { return cmp.Compare(a.Month, b.Month) })
	return out
}

// MonthLabel formats "2023-01" as "Jan '23". Keys that are not a year-month
// are returned unchanged.
func MonthLabel(month string) string {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	return t.Format("Jan '06")
}
