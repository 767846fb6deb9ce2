package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrUnknownPlacement = errors.New("unknown placement")
	ErrIncompleteBundle = errors.New("incomplete placement bundle")
	ErrInvalidCanvas    = errors.New("invalid canvas")
)
