package aggregate

import "enrollment-insights/internal/domain"

type CityStat struct {
	City           string  `json:"city" yaml:"city"`
	State          string  `json:"state" yaml:"state"`
	Region         string  `json:"region" yaml:"region"`
	Population     int     `json:"population" yaml:"population"`
	Budget         string  `json:"budget" yaml:"budget"`
	Total          int     `json:"total" yaml:"total"`
	Completed      int     `json:"completed" yaml:"completed"`
	InProgress     int     `json:"inProgress" yaml:"inProgress"`
	LeaderCount    int     `json:"leaderCount" yaml:"leaderCount"`
	AvgScore       float64 `json:"avgScore" yaml:"avgScore"`
	CompletionRate float64 `json:"completionRate" yaml:"completionRate"`
}

type CourseStat struct {
	Name   string `json:"name" yaml:"name"`
	Count  int    `json:"count" yaml:"count"`
	Center string `json:"center" yaml:"center"`
}

type CenterStat struct {
	Name     string  `json:"name" yaml:"name"`
	Count    int     `json:"count" yaml:"count"`
	AvgScore float64 `json:"avgScore" yaml:"avgScore"`
	Pct      float64 `json:"pct" yaml:"pct"`
}

type RegionStat struct {
	Region    string `json:"region" yaml:"region"`
	Count     int    `json:"count" yaml:"count"`
	CityCount int    `json:"cityCount" yaml:"cityCount"`
}

type KPIs struct {
	TotalLeaders     int     `json:"totalLeaders" yaml:"totalLeaders"`
	TotalCities      int     `json:"totalCities" yaml:"totalCities"`
	TotalEnrollments int     `json:"totalEnrollments" yaml:"totalEnrollments"`
	CompletionRate   float64 `json:"completionRate" yaml:"completionRate"`
	AvgScore         float64 `json:"avgScore" yaml:"avgScore"`
	TotalCompleted   int     `json:"totalCompleted" yaml:"totalCompleted"`
	TotalInProgress  int     `json:"totalInProgress" yaml:"totalInProgress"`
}

type MonthBucket struct {
	Month string `json:"month" yaml:"month"`
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// Views is everything the presentation layer renders. It is read-only once
// returned and may be shared by reference.
type Views struct {
	Leaders     []domain.Leader     `json:"leaders" yaml:"leaders"`
	Cities      []domain.City       `json:"cities" yaml:"cities"`
	Enrollments []domain.Enrollment `json:"enrollments" yaml:"enrollments"`

	CityStats   []CityStat    `json:"cityStats" yaml:"cityStats"`
	CourseStats []CourseStat  `json:"courseStats" yaml:"courseStats"`
	CenterStats []CenterStat  `json:"centerStats" yaml:"centerStats"`
	RegionStats []RegionStat  `json:"regionStats" yaml:"regionStats"`
	KPIs        KPIs          `json:"kpis" yaml:"kpis"`
	Timeline    []MonthBucket `json:"timeline" yaml:"timeline"`
}

// Empty is the all-zero result. Slices are non-nil so they encode as [].
func Empty() Views {
	return Views{
		Leaders:     []domain.Leader{},
		Cities:      []domain.City{},
		Enrollments: []domain.Enrollment{},
		CityStats:   []CityStat{},
		CourseStats: []CourseStat{},
		CenterStats: []CenterStat{},
		RegionStats: []RegionStat{},
		Timeline:    []MonthBucket{},
	}
}
