package curvego

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery is returned for an empty or malformed query sequence.
	ErrInvalidQuery = errors.New("curvego: query must contain at least 2 points")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("curvego: k must be positive")

	// ErrNotFound is returned when a search yields no match.
	ErrNotFound = errors.New("curvego: not found")
)

// ErrDimensionMismatch indicates a stored feature vector whose dimension
// differs from the extractor's output dimension. With a consistently built
// corpus this is unreachable; it is checked rather than silently truncated.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("curvego: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }
