package tensor

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is the class of every dimension error raised by a backend.
// Use errors.Is(err, ErrShapeMismatch) to detect it.
var ErrShapeMismatch = errors.New("tensor: shape mismatch")

// ShapeError describes a dimension mismatch detected by an operation.
type ShapeError struct {
	Op     string // Operation name (e.g. "matmul", "conv2d")
	Detail string // Human-readable description of the mismatch
}

// NewShapeError creates a ShapeError for the given operation.
func NewShapeError(op, format string, args ...any) *ShapeError {
	return &ShapeError{Op: op, Detail: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrShapeMismatch, e.Op, e.Detail)
}

// Unwrap makes errors.Is(err, ErrShapeMismatch) succeed.
func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

// Recover converts a *ShapeError panic raised inside a forward pass into a
// returned error. Any other panic value is re-raised.
//
// Usage:
//
//	func (m *Model) Forward(x *tensor.Tensor) (out *tensor.Tensor, err error) {
//	    defer tensor.Recover(&err)
//	    ...
//	}
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if se, ok := r.(*ShapeError); ok {
		*errp = se
		return
	}
	panic(r)
}
