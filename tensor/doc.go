// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the float64 tensors the matchers compute with.
//
// # Overview
//
// A Tensor pairs a dense row-major RawTensor with the Backend that runs its
// operations. Operations always dispatch to the backend of the receiver, so
// a tensor bound to an autodiff backend records everything computed from it.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/textmatch/backend/cpu"
//	    "github.com/born-ml/textmatch/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros(tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones(tensor.Shape{3, 4}, backend)
//	    z := x.MatMul(y) // [2, 4]
//	}
//
// # Shape Errors
//
// Backends panic with a *ShapeError when operand dimensions do not fit.
// Code that wants an error value instead defers Recover:
//
//	func forward(x *tensor.Tensor) (out *tensor.Tensor, err error) {
//	    defer tensor.Recover(&err)
//	    return x.MatMul(x), nil
//	}
//
// errors.Is(err, tensor.ErrShapeMismatch) then reports any dimension error.
package tensor
