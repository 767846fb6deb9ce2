// Package worker claims queued mockup jobs and runs them through the
// generation pipeline.
package worker

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"mockupgen/internal/domain"
	"mockupgen/internal/infra"
	"mockupgen/internal/mockup"
	"mockupgen/internal/render"
)

// Pipeline runs one canvas through partition, submission and polling.
type Pipeline interface {
	Generate(ctx context.Context, req mockup.Request) (mockup.Result, error)
}

// CanvasReader loads stored canvases.
type CanvasReader interface {
	ReadImage(ctx context.Context, key string) (image.Image, error)
}

type Options struct {
	Jobs        domain.MockupJobRepository
	Canvases    CanvasReader
	Pipeline    Pipeline
	Concurrency int
	IdleDelay   time.Duration
	// Limiter paces vendor submissions across all concurrent runs.
	Limiter *rate.Limiter
	Logger  *infra.Logger
}

// Processor polls the job queue and runs jobs with bounded concurrency.
type Processor struct {
	jobs        domain.MockupJobRepository
	canvases    CanvasReader
	pipeline    Pipeline
	concurrency int
	idleDelay   time.Duration
	limiter     *rate.Limiter
	logger      *infra.Logger
}

func NewProcessor(opts Options) (*Processor, error) {
	if opts.Jobs == nil || opts.Canvases == nil || opts.Pipeline == nil {
		return nil, errors.New("worker: jobs, canvases and pipeline are required")
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	idle := opts.IdleDelay
	if idle <= 0 {
		idle = 2 * time.Second
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Processor{
		jobs:        opts.Jobs,
		canvases:    opts.Canvases,
		pipeline:    opts.Pipeline,
		concurrency: concurrency,
		idleDelay:   idle,
		limiter:     limiter,
		logger:      logger,
	}, nil
}

// Run claims jobs until ctx is cancelled, then waits for in-flight jobs.
func (p *Processor) Run(ctx context.Context) error {
	p.logger.Info().Int("concurrency", p.concurrency).Msg("worker: started")
	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for ctx.Err() == nil {
		job, err := p.jobs.ClaimNext(ctx)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) && ctx.Err() == nil {
				p.logger.Error().Err(err).Msg("worker: failed to claim job")
			}
			p.idle(ctx)
			continue
		}
		g.Go(func() error {
			p.Process(ctx, job)
			return nil
		})
	}
	_ = g.Wait()
	p.logger.Info().Msg("worker: stopped")
	return ctx.Err()
}

func (p *Processor) idle(ctx context.Context) {
	timer := time.NewTimer(p.idleDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Process runs a claimed job and records its outcome. Failures are recorded
// on the job, never returned. A job interrupted by ctx goes back to the queue.
func (p *Processor) Process(ctx context.Context, job *domain.MockupJob) {
	log := p.logger.With().Str("job_id", job.ID).Logger()

	// Outcomes are recorded even when ctx was cancelled mid-run.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if ctx.Err() != nil {
		p.requeue(recordCtx, job, log)
		return
	}
	log.Info().Str("scheme", job.Scheme).Msg("worker: picked job")

	res, err := p.run(ctx, job)

	if res.PreviewKey != "" {
		if perr := p.jobs.SetPreviewKey(recordCtx, job.ID, res.PreviewKey); perr != nil {
			log.Warn().Err(perr).Msg("worker: record preview failed")
		}
	}
	if err != nil && ctx.Err() != nil {
		p.requeue(recordCtx, job, log)
		return
	}
	if err != nil {
		kind := mockup.Classify(err)
		log.Error().Err(err).Str("error_kind", string(kind)).Msg("worker: job failed")
		if ferr := p.jobs.Fail(recordCtx, job.ID, kind, err.Error()); ferr != nil {
			log.Error().Err(ferr).Msg("worker: record failure failed")
		}
		return
	}
	if cerr := p.jobs.Complete(recordCtx, job.ID, res.URLs); cerr != nil {
		log.Error().Err(cerr).Msg("worker: record completion failed")
		return
	}
	log.Info().Str("task_key", string(res.JobID)).Int("mockups", len(res.URLs)).Msg("worker: job succeeded")
}

func (p *Processor) requeue(ctx context.Context, job *domain.MockupJob, log zerolog.Logger) {
	if err := p.jobs.Requeue(ctx, job.ID); err != nil {
		log.Error().Err(err).Msg("worker: requeue interrupted job failed")
		return
	}
	log.Info().Msg("worker: interrupted job requeued")
}

func (p *Processor) run(ctx context.Context, job *domain.MockupJob) (mockup.Result, error) {
	canvas, err := p.canvases.ReadImage(ctx, job.CanvasKey)
	if err != nil {
		return mockup.Result{}, fmt.Errorf("worker: load canvas: %w", err)
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return mockup.Result{}, fmt.Errorf("worker: wait for vendor slot: %w", err)
	}
	return p.pipeline.Generate(ctx, mockup.Request{
		Canvas:     canvas,
		SourceKey:  job.CanvasKey,
		PreviewKey: PreviewKey(job.ID),
		OnSubmitted: func(ctx context.Context, id render.JobID) error {
			return p.jobs.SetTaskKey(ctx, job.ID, string(id))
		},
	})
}

// PreviewKey is the storage key of a job's partition overlay.
func PreviewKey(jobID string) string {
	return "previews/" + jobID + ".png"
}
