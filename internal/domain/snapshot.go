package domain

import "time"

// Snapshot sources.
const (
	SourceStatic = "static"
	SourceProxy  = "proxy"
	SourceDirect = "direct"
)

// Snapshot is the complete set of canonical collections produced by one
// acquisition cycle. It is never mutated after construction; a refresh
// produces a new *Snapshot, and pointer identity is used for memoization.
type Snapshot struct {
	Leaders     []Leader     `json:"leaders"`
	Cities      []City       `json:"cities"`
	Enrollments []Enrollment `json:"enrollments"`

	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}
