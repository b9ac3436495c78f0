package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Structural input defects - fatal for the affected dataset
	ErrMalformedTree   = errors.New("malformed tree structure")
	ErrDuplicateTip    = fmt.Errorf("%w: duplicate tip", ErrMalformedTree)
	ErrCycleDetected   = fmt.Errorf("%w: cycle detected", ErrMalformedTree)
	ErrEmptyTree       = fmt.Errorf("%w: empty tree", ErrMalformedTree)
	ErrUnlabeledSample = errors.New("sample missing from label table")

	// Configuration errors - caught before any tree processing begins
	ErrInvalidConfig = errors.New("invalid threshold configuration")
	ErrUnknownPolicy = fmt.Errorf("%w: unknown assign policy", ErrInvalidConfig)

	// Not found errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)
)

// Error constructors with context
func NewMalformedTreeError(dataset string, detail string) error {
	return fmt.Errorf("%w in dataset %s: %s", ErrMalformedTree, dataset, detail)
}

func NewDuplicateTipError(dataset string, sampleID string) error {
	return fmt.Errorf("%w in dataset %s: sample %s", ErrDuplicateTip, dataset, sampleID)
}

func NewUnlabeledSampleError(dataset string, sampleID string) error {
	return fmt.Errorf("%w: dataset %s, sample %s", ErrUnlabeledSample, dataset, sampleID)
}

func NewInvalidConfigError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, field, reason)
}

// Error checking helpers
func IsMalformedTreeError(err error) bool {
	return errors.Is(err, ErrMalformedTree)
}

func IsUnlabeledSampleError(err error) bool {
	return errors.Is(err, ErrUnlabeledSample)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
