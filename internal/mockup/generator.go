// Package mockup runs the full partition, encode, submit and poll pipeline
// for a single canvas.
package mockup

import (
	"context"
	"errors"
	"fmt"
	"image"

	"mockupgen/internal/encoder"
	"mockupgen/internal/geometry"
	"mockupgen/internal/infra"
	"mockupgen/internal/render"
)

// ImageWriter stores an image under a key and returns the canonical key.
type ImageWriter interface {
	WriteImage(ctx context.Context, key string, img image.Image) (string, error)
}

// Renderer is the render-job surface the generator drives.
type Renderer interface {
	Submit(ctx context.Context, sub encoder.Submission) (render.JobID, error)
	AwaitCompletion(ctx context.Context, id render.JobID) ([]string, error)
}

// Options configures a Generator.
type Options struct {
	Partitioner *geometry.Partitioner
	Renderer    Renderer
	Writer      ImageWriter
	// WriteBack overwrites the source canvas with its resampled version.
	WriteBack bool
	Logger    *infra.Logger
}

// Generator owns no per-run state and may serve concurrent runs.
type Generator struct {
	partitioner *geometry.Partitioner
	renderer    Renderer
	writer      ImageWriter
	writeBack   bool
	logger      *infra.Logger
}

// Request is one pipeline run.
type Request struct {
	Canvas image.Image
	// SourceKey is where Canvas was loaded from; the write-back target.
	SourceKey string
	// PreviewKey, when set, receives the partition overlay before submission.
	PreviewKey string
	// OnSubmitted runs once the vendor has accepted the job.
	OnSubmitted func(ctx context.Context, id render.JobID) error
}

// Result is a completed run.
type Result struct {
	JobID       render.JobID
	URLs        []string
	PreviewKey  string
	Resampled   bool
	WrittenBack bool
}

// NewGenerator validates dependencies.
func NewGenerator(opts Options) (*Generator, error) {
	if opts.Partitioner == nil {
		return nil, errors.New("mockup: partitioner is required")
	}
	if opts.Renderer == nil {
		return nil, errors.New("mockup: renderer is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Generator{
		partitioner: opts.Partitioner,
		renderer:    opts.Renderer,
		writer:      opts.Writer,
		writeBack:   opts.WriteBack,
		logger:      logger,
	}, nil
}

// Generate runs the pipeline. Any failure aborts the run; there is no
// partial result.
func (g *Generator) Generate(ctx context.Context, req Request) (Result, error) {
	var res Result
	part, err := g.partitioner.Partition(req.Canvas)
	if err != nil {
		return res, err
	}
	res.Resampled = part.Resampled

	if part.Resampled && g.writeBack && req.SourceKey != "" {
		if err := g.write(ctx, req.SourceKey, part.Canvas); err != nil {
			return res, fmt.Errorf("mockup: write back canvas: %w", err)
		}
		res.WrittenBack = true
		g.logger.Info().Str("key", req.SourceKey).Msg("mockup: resampled canvas written back")
	}

	if req.PreviewKey != "" {
		preview := geometry.Preview(part.Canvas, g.partitioner.Regions())
		key, err := g.writeKey(ctx, req.PreviewKey, preview)
		if err != nil {
			return res, fmt.Errorf("mockup: write preview: %w", err)
		}
		res.PreviewKey = key
	}

	sub, err := encoder.EncodeSubmission(part)
	if err != nil {
		return res, err
	}
	id, err := g.renderer.Submit(ctx, sub)
	if err != nil {
		return res, err
	}
	res.JobID = id
	if req.OnSubmitted != nil {
		if err := req.OnSubmitted(ctx, id); err != nil {
			return res, fmt.Errorf("mockup: record job %s: %w", id, err)
		}
	}

	urls, err := g.renderer.AwaitCompletion(ctx, id)
	if err != nil {
		return res, err
	}
	res.URLs = urls
	return res, nil
}

// Preview writes the partition overlay for canvas without contacting the
// vendor.
func (g *Generator) Preview(ctx context.Context, canvas image.Image, key string) (string, error) {
	preview, err := g.partitioner.Preview(canvas)
	if err != nil {
		return "", err
	}
	return g.writeKey(ctx, key, preview)
}

func (g *Generator) write(ctx context.Context, key string, img image.Image) error {
	_, err := g.writeKey(ctx, key, img)
	return err
}

func (g *Generator) writeKey(ctx context.Context, key string, img image.Image) (string, error) {
	if g.writer == nil {
		return "", errors.New("mockup: no image writer configured")
	}
	return g.writer.WriteImage(ctx, key, img)
}
