package domain

import "time"

// JobStatus enumerates the lifecycle of a queued mockup run.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "QUEUED"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusSucceeded JobStatus = "SUCCEEDED"
	JobStatusFailed    JobStatus = "FAILED"
)

// ErrorKind classifies why a mockup run failed.
type ErrorKind string

const (
	ErrorKindNone            ErrorKind = ""
	ErrorKindInputDimension  ErrorKind = "input_dimension"
	ErrorKindSubmission      ErrorKind = "submission"
	ErrorKindRenderFailed    ErrorKind = "render_failed"
	ErrorKindRenderTimeout   ErrorKind = "render_timeout"
	ErrorKindMalformedResult ErrorKind = "malformed_result"
	ErrorKindInternal        ErrorKind = "internal"
)

// MockupJob tracks one canvas upload through partition, submission and polling.
type MockupJob struct {
	ID           string
	Status       JobStatus
	Scheme       string
	CanvasKey    string
	CanvasSHA256 string
	PreviewKey   string
	TaskKey      string
	ResultURLs   []string
	ErrorKind    ErrorKind
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Terminal reports whether no further transitions are expected.
func (j *MockupJob) Terminal() bool {
	return j.Status == JobStatusSucceeded || j.Status == JobStatusFailed
}
