package mockup

import (
	"errors"

	"mockupgen/internal/domain"
	"mockupgen/internal/geometry"
	"mockupgen/internal/render"
)

// Classify maps a pipeline error onto the persisted failure kind.
func Classify(err error) domain.ErrorKind {
	var dimErr *geometry.InputDimensionError
	switch {
	case err == nil:
		return domain.ErrorKindNone
	case errors.As(err, &dimErr), errors.Is(err, domain.ErrInvalidCanvas):
		return domain.ErrorKindInputDimension
	case errors.Is(err, render.ErrSubmission):
		return domain.ErrorKindSubmission
	case errors.Is(err, render.ErrRenderFailed):
		return domain.ErrorKindRenderFailed
	case errors.Is(err, render.ErrRenderTimeout):
		return domain.ErrorKindRenderTimeout
	case errors.Is(err, render.ErrMalformedResult):
		return domain.ErrorKindMalformedResult
	default:
		return domain.ErrorKindInternal
	}
}
