// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - gonum-backed matrix multiplication
//   - Im2col convolution for NCHW inputs
//   - NumPy-compatible broadcasting for element-wise ops
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/textmatch/backend/cpu"
//	    "github.com/born-ml/textmatch/nn"
//	    "github.com/born-ml/textmatch/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Zeros(tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones(tensor.Shape{2, 3}, backend)
//	    z := x.Add(y)
//
//	    layer := nn.NewLinear(3, 1, backend, rng)
//	}
//
// The backend is stateless and safe for concurrent use.
package cpu
