package domain

// StatusCompleted is the only completion status with meaning for aggregation.
const StatusCompleted = "Completed"

// Program centers with a dedicated bucket in the center view.
const (
	CenterGovEx = "GovEx"
	CenterBCPI  = "BCPI"
)

// Leader is a city leader. Missing fields are empty strings.
type Leader struct {
	RecordID    string `json:"record_id" yaml:"record_id"`
	Name        string `json:"name" yaml:"name"`
	Email       string `json:"email" yaml:"email"`
	Title       string `json:"title" yaml:"title"`
	TenureStart string `json:"tenure_start" yaml:"tenure_start"`
	TenureEnd   string `json:"tenure_end" yaml:"tenure_end"`
	JoinedDate  string `json:"joined_date" yaml:"joined_date"`
}

// City is the reference entry for a participating city. Region is
// authoritative here, not on the enrollment.
type City struct {
	Name       string `json:"name" yaml:"name"`
	State      string `json:"state" yaml:"state"`
	Population int    `json:"population" yaml:"population"`
	Region     string `json:"region" yaml:"region"`
	Budget     string `json:"budget" yaml:"budget"`
}

// Enrollment is one leader taking one course.
//
// EndDate nil means the course has not ended yet; an empty string is an unset
// or invalid value. Score is nil or a finite number in [0,100].
type Enrollment struct {
	RecordID         string   `json:"record_id" yaml:"record_id"`
	LeaderName       string   `json:"leader_name" yaml:"leader_name"`
	CourseName       string   `json:"course_name" yaml:"course_name"`
	DurationWeeks    int      `json:"duration_weeks" yaml:"duration_weeks"`
	StartDate        string   `json:"start_date" yaml:"start_date"`
	EndDate          *string  `json:"end_date" yaml:"end_date"`
	City             string   `json:"city" yaml:"city"`
	State            string   `json:"state" yaml:"state"`
	ProgramCenter    string   `json:"program_center" yaml:"program_center"`
	CompletionStatus string   `json:"completion_status" yaml:"completion_status"`
	Score            *float64 `json:"score" yaml:"score"`
}

// Completed reports whether the enrollment counts as completed.
func (e Enrollment) Completed() bool { return e.CompletionStatus == StatusCompleted }
