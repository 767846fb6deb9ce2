// Package render submits placement bundles to the vendor and waits for the
// rendered mockups.
package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mockupgen/internal/domain"
	"mockupgen/internal/encoder"
	"mockupgen/internal/infra"
	"mockupgen/internal/providers/printful"
)

// JobID is the vendor's opaque task key.
type JobID string

// TaskClient is the subset of the vendor API used by the orchestrator.
type TaskClient interface {
	CreateTask(ctx context.Context, req printful.CreateTaskRequest) (*printful.Task, error)
	GetTask(ctx context.Context, taskKey string) (*printful.Task, error)
}

// Poll describes one status query.
type Poll struct {
	JobID       JobID
	Attempt     int
	MaxAttempts int
	Status      Status
	Raw         string
	// State is where the loop stands after this poll.
	State State
}

// Options configures an Orchestrator.
type Options struct {
	Client        TaskClient
	ProductID     int64
	VariantIDs    []int64
	Format        string
	PollInterval  time.Duration
	MaxAttempts   int
	IncludeExtras bool
	Clock         Clock
	Logger        *infra.Logger
	// OnPoll runs after every status query.
	OnPoll func(Poll)
}

// Orchestrator drives the submit and poll cycle for render jobs.
type Orchestrator struct {
	client        TaskClient
	productID     int64
	variantIDs    []int64
	format        string
	interval      time.Duration
	maxAttempts   int
	includeExtras bool
	clock         Clock
	logger        *infra.Logger
	onPoll        func(Poll)
}

// NewOrchestrator validates opts and fills defaults.
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if opts.Client == nil {
		return nil, errors.New("render: client is required")
	}
	if opts.ProductID <= 0 {
		return nil, errors.New("render: product id is required")
	}
	if len(opts.VariantIDs) == 0 {
		return nil, errors.New("render: at least one variant id is required")
	}
	if opts.MaxAttempts <= 0 {
		return nil, errors.New("render: max attempts must be positive")
	}
	if opts.PollInterval < 0 {
		return nil, errors.New("render: poll interval must not be negative")
	}
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Orchestrator{
		client:        opts.Client,
		productID:     opts.ProductID,
		variantIDs:    append([]int64(nil), opts.VariantIDs...),
		format:        opts.Format,
		interval:      opts.PollInterval,
		maxAttempts:   opts.MaxAttempts,
		includeExtras: opts.IncludeExtras,
		clock:         clock,
		logger:        logger,
		onPoll:        opts.OnPoll,
	}, nil
}

// MaxAttempts returns the poll bound.
func (o *Orchestrator) MaxAttempts() int {
	return o.maxAttempts
}

// Submit creates a render job for the submission. It is never retried.
func (o *Orchestrator) Submit(ctx context.Context, sub encoder.Submission) (JobID, error) {
	if sub.Empty() {
		return "", fmt.Errorf("render: %w", domain.ErrIncompleteBundle)
	}
	assets := sub.Assets()
	files := make([]printful.File, 0, len(assets))
	for _, asset := range assets {
		files = append(files, printful.File{Placement: asset.Placement.String(), ImageURL: asset.DataURI})
	}
	task, err := o.client.CreateTask(ctx, printful.CreateTaskRequest{
		ProductID:  o.productID,
		VariantIDs: o.variantIDs,
		Format:     o.format,
		Files:      files,
	})
	if err != nil {
		subErr := &SubmissionError{Err: err}
		var apiErr *printful.APIError
		if errors.As(err, &apiErr) {
			subErr.StatusCode = apiErr.StatusCode
			subErr.Body = apiErr.Body
		}
		o.logger.Error().Err(err).Int("status", subErr.StatusCode).Msg("render: submission rejected")
		return "", subErr
	}
	if task == nil || task.TaskKey == "" {
		return "", &MalformedResultError{Reason: "create-task response has no task key"}
	}
	id := JobID(task.TaskKey)
	o.logger.Info().Str("task_key", string(id)).Int("files", len(files)).Msg("render: job submitted")
	return id, nil
}

// AwaitCompletion polls the job until it completes, fails, or the attempt
// bound runs out. Each attempt waits the poll interval before querying.
func (o *Orchestrator) AwaitCompletion(ctx context.Context, id JobID) ([]string, error) {
	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		if err := o.clock.Sleep(ctx, o.interval); err != nil {
			return nil, fmt.Errorf("render: wait for job %s: %w", id, err)
		}
		task, err := o.client.GetTask(ctx, string(id))
		if err != nil {
			return nil, fmt.Errorf("render: poll job %s attempt %d: %w", id, attempt, err)
		}
		raw := ""
		if task != nil {
			raw = task.Status
		}
		status := ParseStatus(raw)
		state := status.State()
		if !status.Terminal() && attempt == o.maxAttempts {
			state = StateTimedOut
		}
		if status == StatusUnrecognized {
			o.logger.Warn().
				Str("task_key", string(id)).
				Str("status", raw).
				Msg("render: unrecognized status, treating as pending")
		}
		o.logger.Debug().
			Str("task_key", string(id)).
			Int("attempt", attempt).
			Str("status", raw).
			Str("state", string(state)).
			Msg("render: polled job")
		if o.onPoll != nil {
			o.onPoll(Poll{JobID: id, Attempt: attempt, MaxAttempts: o.maxAttempts, Status: status, Raw: raw, State: state})
		}

		switch state {
		case StateCompleted:
			urls := task.URLs(o.includeExtras)
			if len(urls) == 0 {
				return nil, &MalformedResultError{JobID: id, Reason: "completed without mockup urls"}
			}
			o.logger.Info().Str("task_key", string(id)).Int("mockups", len(urls)).Msg("render: job completed")
			return urls, nil
		case StateFailed:
			return nil, &RenderFailedError{JobID: id, Reason: task.Error}
		}
	}
	return nil, &RenderTimeoutError{
		JobID:    id,
		Attempts: o.maxAttempts,
		Waited:   time.Duration(o.maxAttempts) * o.interval,
	}
}
