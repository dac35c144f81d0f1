package distances

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidDataset is returned when a Dataset fails its structural checks
	// (coordinate buffer shape, id vector length, normalization and weight
	// matrices).
	ErrInvalidDataset = errors.New("distances: invalid dataset")

	// ErrInvalidPointSet is returned when a coordinate buffer does not hold
	// exactly n*dims values.
	ErrInvalidPointSet = errors.New("distances: invalid point set")

	// ErrIndexOutOfBounds is returned when a selection refers to a point
	// outside the point set.
	ErrIndexOutOfBounds = errors.New("distances: index out of bounds")

	// ErrInvalidParameter is returned for bad k, radius or empty search sets.
	ErrInvalidParameter = errors.New("distances: invalid parameter")

	// ErrAllocation is returned when an output or scratch buffer would be
	// too large to allocate.
	ErrAllocation = errors.New("distances: allocation failed")

	// ErrIndexClosed is returned when querying or closing an index that has
	// already been closed.
	ErrIndexClosed = errors.New("distances: index closed")

	// ErrCounterInconsistent is returned by Close when the engine's live
	// index count was already zero. The index memory is released regardless.
	ErrCounterInconsistent = errors.New("distances: open index counter inconsistent")
)

// IndexError reports a selection with one or more out-of-bounds entries.
// All offending entries are reported as a single failure; Position and
// Value describe the first one found to help debugging.
type IndexError struct {
	Name       string // selection name, e.g. "query_indices"
	Count      int    // number of out-of-bounds entries
	Position   int    // position of the first offending entry in the selection
	Value      int    // first offending value, as supplied by the caller
	UpperBound int    // valid values are [0, UpperBound) after translation
}

func (e *IndexError) Error() string {
	name := e.Name
	if name == "" {
		name = "indices"
	}
	return fmt.Sprintf("distances: out of bounds: `%s` (%d invalid, first %d at position %d, bound %d)",
		name, e.Count, e.Value, e.Position, e.UpperBound)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfBounds }

// ParameterError reports an invalid scalar argument such as k or radius.
type ParameterError struct {
	Name   string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("distances: invalid parameter %s: %s", e.Name, e.Reason)
}

func (e *ParameterError) Unwrap() error { return ErrInvalidParameter }

// maxBufferLen bounds the number of 8-byte elements in any single buffer.
const maxBufferLen = math.MaxInt / 8

// checkAlloc verifies that a rows*cols buffer can be sized without
// overflowing int or exceeding maxBufferLen.
func checkAlloc(rows, cols int) (int, error) {
	if rows < 0 || cols < 0 {
		return 0, fmt.Errorf("%w: negative buffer dimension %dx%d", ErrAllocation, rows, cols)
	}
	if rows == 0 || cols == 0 {
		return 0, nil
	}
	if rows > maxBufferLen/cols {
		return 0, fmt.Errorf("%w: %d x %d elements", ErrAllocation, rows, cols)
	}
	return rows * cols, nil
}
