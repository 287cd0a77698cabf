package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"enrollment-insights/internal/aggregate"
)

// Keep header order EXACT; downstream spreadsheets key on it.
var (
	cityHeader     = []string{"CITY", "STATE", "REGION", "POPULATION", "BUDGET", "TOTAL", "COMPLETED", "IN_PROGRESS", "LEADER_COUNT", "AVG_SCORE", "COMPLETION_RATE"}
	courseHeader   = []string{"COURSE", "COUNT", "CENTER"}
	centerHeader   = []string{"CENTER", "COUNT", "AVG_SCORE", "PCT"}
	regionHeader   = []string{"REGION", "COUNT", "CITY_COUNT"}
	timelineHeader = []string{"MONTH", "LABEL", "COUNT"}
	kpiHeader      = []string{"TOTAL_LEADERS", "TOTAL_CITIES", "TOTAL_ENROLLMENTS", "COMPLETION_RATE", "AVG_SCORE", "TOTAL_COMPLETED", "TOTAL_IN_PROGRESS"}
)

func WriteCityCSV(w io.Writer, stats []aggregate.CityStat) error {
	return writeCSV(w, cityHeader, stats, func(s aggregate.CityStat) []string {
		return []string{
			clean(s.City),
			clean(s.State),
			clean(s.Region),
			itoa(s.Population),
			clean(s.Budget),
			itoa(s.Total),
			itoa(s.Completed),
			itoa(s.InProgress),
			itoa(s.LeaderCount),
			floatToString(s.AvgScore),
			floatToString(s.CompletionRate),
		}
	})
}

func WriteCourseCSV(w io.Writer, stats []aggregate.CourseStat) error {
	return writeCSV(w, courseHeader, stats, func(s aggregate.CourseStat) []string {
		return []string{clean(s.Name), itoa(s.Count), clean(s.Center)}
	})
}

func WriteCenterCSV(w io.Writer, stats []aggregate.CenterStat) error {
	return writeCSV(w, centerHeader, stats, func(s aggregate.CenterStat) []string {
		return []string{s.Name, itoa(s.Count), floatToString(s.AvgScore), floatToString(s.Pct)}
	})
}

func WriteRegionCSV(w io.Writer, stats []aggregate.RegionStat) error {
	return writeCSV(w, regionHeader, stats, func(s aggregate.RegionStat) []string {
		return []string{clean(s.Region), itoa(s.Count), itoa(s.CityCount)}
	})
}

func WriteTimelineCSV(w io.Writer, buckets []aggregate.MonthBucket) error {
	return writeCSV(w, timelineHeader, buckets, func(b aggregate.MonthBucket) []string {
		return []string{b.Month, b.Label, itoa(b.Count)}
	})
}

// WriteKPICSV writes a single data row.
func WriteKPICSV(w io.Writer, k aggregate.KPIs) error {
	return writeCSV(w, kpiHeader, []aggregate.KPIs{k}, func(k aggregate.KPIs) []string {
		return []string{
			itoa(k.TotalLeaders),
			itoa(k.TotalCities),
			itoa(k.TotalEnrollments),
			floatToString(k.CompletionRate),
			floatToString(k.AvgScore),
			itoa(k.TotalCompleted),
			itoa(k.TotalInProgress),
		}
	})
}

func writeCSV[T any](w io.Writer, header []string, rows []T, toRow func(T) []string) error {
	cw := csv.NewWriter(w)
	// match typical templates
	cw.UseCRLF = true

	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(toRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func itoa(n int) string { return strconv.Itoa(n) }

func floatToString(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// clean trims and flattens newlines so a cell stays on one line.
func clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", " ")
}
