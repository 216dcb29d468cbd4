package domain

import "time"

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transition may occur from s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job encapsulates the lifecycle of one video generation request. Request
// fields are fixed at creation; result fields are populated only on the
// transition to completed, the error message only on failed.
type Job struct {
	ID              string
	Status          JobStatus
	RequestImageRef string
	RequestPrompt   string
	IncludeMusic    bool
	MusicPrompt     string
	MusicURL        string
	ResultRef       string
	ResultPublicURL string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
