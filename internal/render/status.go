package render

import "strings"

// Status is the vendor-reported state of a render job.
type Status int

const (
	StatusUnrecognized Status = iota
	StatusPending
	StatusCompleted
	StatusFailed
)

// ParseStatus decodes a vendor status string. Unknown values map to
// StatusUnrecognized, which the poll loop treats as still pending.
func ParseStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending", "processing", "queued":
		return StatusPending
	case "completed":
		return StatusCompleted
	case "failed":
		return StatusFailed
	default:
		return StatusUnrecognized
	}
}

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unrecognized"
	}
}

// Terminal reports whether polling stops on this status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// State is the local view of a job in the poll loop. StateTimedOut is never
// reported by the vendor; the loop enters it when the attempt bound runs out.
type State string

const (
	StatePending   State = "pending"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateTimedOut  State = "timed_out"
)

// State maps a vendor status onto the poll loop state it leads to.
// Unrecognized statuses keep the job pending.
func (s Status) State() State {
	switch s {
	case StatusCompleted:
		return StateCompleted
	case StatusFailed:
		return StateFailed
	default:
		return StatePending
	}
}
