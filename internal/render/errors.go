package render

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrSubmission      = errors.New("render: submission rejected")
	ErrRenderFailed    = errors.New("render: job failed")
	ErrRenderTimeout   = errors.New("render: job timed out")
	ErrMalformedResult = errors.New("render: malformed result")
)

// SubmissionError reports a rejected task creation. StatusCode is zero when
// the request never produced a response.
type SubmissionError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("render: submit: %v", e.Err)
	}
	return fmt.Sprintf("render: submit: status %d: %s", e.StatusCode, e.Body)
}

func (e *SubmissionError) Unwrap() error        { return e.Err }
func (e *SubmissionError) Is(target error) bool { return target == ErrSubmission }

// RenderFailedError reports a job the vendor marked as failed.
type RenderFailedError struct {
	JobID  JobID
	Reason string
}

func (e *RenderFailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("render: job %s failed", e.JobID)
	}
	return fmt.Sprintf("render: job %s failed: %s", e.JobID, e.Reason)
}

func (e *RenderFailedError) Is(target error) bool { return target == ErrRenderFailed }

// RenderTimeoutError reports a job still pending after every allowed poll.
type RenderTimeoutError struct {
	JobID    JobID
	Attempts int
	Waited   time.Duration
}

func (e *RenderTimeoutError) Error() string {
	return fmt.Sprintf("render: job %s still pending after %d polls (%s)", e.JobID, e.Attempts, e.Waited)
}

func (e *RenderTimeoutError) Is(target error) bool { return target == ErrRenderTimeout }

// MalformedResultError reports a response that cannot be used.
type MalformedResultError struct {
	JobID  JobID
	Reason string
}

func (e *MalformedResultError) Error() string {
	return fmt.Sprintf("render: job %s: malformed result: %s", e.JobID, e.Reason)
}

func (e *MalformedResultError) Is(target error) bool { return target == ErrMalformedResult }
