package geometry

import (
	"errors"
	"fmt"

	"mockupgen/internal/domain"
)

// ErrInvalidTemplate marks configuration errors in a Template.
var ErrInvalidTemplate = errors.New("geometry: invalid template")

// InputDimensionError reports a canvas whose size does not match the template.
type InputDimensionError struct {
	Width      int
	Height     int
	WantWidth  int
	WantHeight int
}

func (e *InputDimensionError) Error() string {
	return fmt.Sprintf("geometry: canvas is %dx%d, template requires %dx%d", e.Width, e.Height, e.WantWidth, e.WantHeight)
}

// Is lets callers match the error against domain.ErrInvalidCanvas.
func (e *InputDimensionError) Is(target error) bool {
	return target == domain.ErrInvalidCanvas
}
