// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training the matchers.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with optional momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/textmatch/autodiff"
//	    "github.com/born-ml/textmatch/backend/cpu"
//	    "github.com/born-ml/textmatch/config"
//	    "github.com/born-ml/textmatch/matcher"
//	    "github.com/born-ml/textmatch/nn"
//	    "github.com/born-ml/textmatch/optim"
//	)
//
//	func main() {
//	    cfg := config.Default()
//	    backend := autodiff.New(cpu.New())
//	    m, _ := matcher.New(matcher.KindBiLSTM, cfg, backend)
//	    optimizer := optim.FromConfig(m.Parameters(), cfg)
//
//	    for _, batch := range batches {
//	        backend.Tape().StartRecording()
//	        scores, _ := m.Forward(batch.Seq1, batch.Seq2)
//	        loss, _ := nn.CrossEntropy(scores, batch.Labels)
//	        optimizer.Step(autodiff.Backward(loss, backend))
//	        backend.Tape().Clear()
//	    }
//	}
package optim
