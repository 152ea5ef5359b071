// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/textmatch/internal/backend/cpu"
	"github.com/born-ml/textmatch/tensor"
)

// Backend represents the CPU backend implementation.
//
// Matrix products go through gonum; everything else is plain Go loops over
// row-major float64 buffers.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/born-ml/textmatch/backend/cpu"
//	    "github.com/born-ml/textmatch/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros(tensor.Shape{2, 3}, backend)
//	}
func New() *Backend {
	return internalcpu.New()
}
