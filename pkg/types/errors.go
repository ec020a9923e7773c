package types

import "errors"

// Domain errors for type validation
var (
	// Fragment errors
	ErrMissingFilePath     = errors.New("file path is required")
	ErrInvalidFragmentType = errors.New("fragment type must be function or class")
	ErrEmptyExcerpt        = errors.New("excerpt cannot be empty")
	ErrInvalidLineRange    = errors.New("invalid line range")

	// Match errors
	ErrInvalidSimilarity = errors.New("similarity must be between 0 and 1")
)
