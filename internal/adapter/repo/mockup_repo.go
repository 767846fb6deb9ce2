package repo

import (
	"context"
	"fmt"

	"mockupgen/internal/domain"
	"mockupgen/internal/infra"
	"mockupgen/internal/sqlinline"
)

// MockupJobRepositoryPG implements domain.MockupJobRepository.
type MockupJobRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewMockupJobRepository creates a repository backed by PostgreSQL.
func NewMockupJobRepository(sql infra.SQLExecutor) *MockupJobRepositoryPG {
	return &MockupJobRepositoryPG{sql: sql}
}

// Create inserts a queued job and fills its timestamps.
func (r *MockupJobRepositoryPG) Create(ctx context.Context, job *domain.MockupJob) error {
	if job.Status == "" {
		job.Status = domain.JobStatusQueued
	}
	row := r.sql.QueryRow(ctx, sqlinline.QMockupCreate,
		job.ID,
		string(job.Status),
		job.Scheme,
		job.CanvasKey,
		job.CanvasSHA256,
	)
	if err := row.Scan(&job.CreatedAt, &job.UpdatedAt); err != nil {
		return fmt.Errorf("repo: create mockup job: %w", err)
	}
	return nil
}

// GetByID fetches a job by its identifier.
func (r *MockupJobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.MockupJob, error) {
	job, err := scanJob(r.sql.QueryRow(ctx, sqlinline.QMockupGet, jobID))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("repo: get mockup job: %w", err)
	}
	return job, nil
}

// ClaimNext marks the oldest queued job as running.
func (r *MockupJobRepositoryPG) ClaimNext(ctx context.Context) (*domain.MockupJob, error) {
	job, err := scanJob(r.sql.QueryRow(ctx, sqlinline.QMockupClaimNext))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("repo: claim mockup job: %w", err)
	}
	return job, nil
}

func (r *MockupJobRepositoryPG) SetTaskKey(ctx context.Context, jobID, taskKey string) error {
	return r.exec(ctx, "set task key", sqlinline.QMockupSetTaskKey, jobID, taskKey)
}

func (r *MockupJobRepositoryPG) SetPreviewKey(ctx context.Context, jobID, previewKey string) error {
	return r.exec(ctx, "set preview key", sqlinline.QMockupSetPreviewKey, jobID, previewKey)
}

// Complete records the result URLs of a running job.
func (r *MockupJobRepositoryPG) Complete(ctx context.Context, jobID string, resultURLs []string) error {
	if resultURLs == nil {
		resultURLs = []string{}
	}
	return r.exec(ctx, "complete", sqlinline.QMockupComplete, jobID, resultURLs)
}

// Fail records the classified failure of an unfinished job.
func (r *MockupJobRepositoryPG) Fail(ctx context.Context, jobID string, kind domain.ErrorKind, message string) error {
	return r.exec(ctx, "fail", sqlinline.QMockupFail, jobID, string(kind), message)
}

// Requeue puts a running job back in the queue, e.g. after a worker shutdown.
func (r *MockupJobRepositoryPG) Requeue(ctx context.Context, jobID string) error {
	return r.exec(ctx, "requeue", sqlinline.QMockupRequeue, jobID)
}

func (r *MockupJobRepositoryPG) exec(ctx context.Context, action, query string, args ...any) error {
	tag, err := r.sql.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("repo: %s: %w", action, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo: %s: %w", action, domain.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.MockupJob, error) {
	var (
		job       domain.MockupJob
		status    string
		errorKind string
	)
	if err := row.Scan(
		&job.ID,
		&status,
		&job.Scheme,
		&job.CanvasKey,
		&job.CanvasSHA256,
		&job.PreviewKey,
		&job.TaskKey,
		&job.ResultURLs,
		&errorKind,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	job.Status = domain.JobStatus(status)
	job.ErrorKind = domain.ErrorKind(errorKind)
	return &job, nil
}

var _ domain.MockupJobRepository = (*MockupJobRepositoryPG)(nil)
