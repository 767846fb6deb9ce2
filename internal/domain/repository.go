package domain

import "context"

// MockupJobRepository persists queued mockup runs for the api and worker.
type MockupJobRepository interface {
	Create(ctx context.Context, job *MockupJob) error
	GetByID(ctx context.Context, jobID string) (*MockupJob, error)
	// ClaimNext moves the oldest queued job to running. It returns
	// ErrNotFound when the queue is empty.
	ClaimNext(ctx context.Context) (*MockupJob, error)
	SetTaskKey(ctx context.Context, jobID, taskKey string) error
	SetPreviewKey(ctx context.Context, jobID, previewKey string) error
	Complete(ctx context.Context, jobID string, resultURLs []string) error
	Fail(ctx context.Context, jobID string, kind ErrorKind, message string) error
	// Requeue returns a running job to the queue.
	Requeue(ctx context.Context, jobID string) error
}
