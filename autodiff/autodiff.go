// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides automatic differentiation capabilities.
//
// This package implements reverse-mode automatic differentiation (backpropagation)
// using a gradient tape. It wraps any backend to add autodiff capabilities.
//
// Example:
//
//	import (
//	    "github.com/born-ml/textmatch/autodiff"
//	    "github.com/born-ml/textmatch/backend/cpu"
//	    "github.com/born-ml/textmatch/tensor"
//	)
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//	    backend.Tape().StartRecording()
//
//	    x := tensor.Ones(tensor.Shape{2, 3}, backend)
//	    y := x.Mul(x).Sum() // recorded on the tape
//
//	    grads := autodiff.Backward(y, backend)
//	    dx := grads[x.Raw()] // 2x
//	}
package autodiff

import (
	"github.com/born-ml/textmatch/internal/autodiff"
	"github.com/born-ml/textmatch/tensor"
)

// Backend is the autodiff-enabled backend.
type Backend = autodiff.AutodiffBackend

// New creates a new autodiff backend wrapping the given backend.
//
// Example:
//
//	base := cpu.New()
//	backend := autodiff.New(base)
func New(backend tensor.Backend) *Backend {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// Backward computes the gradient of t with respect to every tensor recorded
// on the backend's tape. It panics if nothing was recorded.
func Backward(t *tensor.Tensor, backend *Backend) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.Backward(t, backend)
}
