// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers and building blocks.
//
// # Overview
//
// This package contains:
//   - Layers: Linear, Conv2D, MaxPool2D, LSTM, BiLSTM, Bilinear, FeedForward
//   - Activations: ReLU, Sigmoid, Tanh, Softmax
//   - Regularization: Dropout
//   - Loss functions: CrossEntropy, BinaryCrossEntropy
//   - Utilities: Module interface, Parameter
//
// # Basic Usage
//
//	import (
//	    "math/rand"
//
//	    "github.com/born-ml/textmatch/backend/cpu"
//	    "github.com/born-ml/textmatch/nn"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    rng := rand.New(rand.NewSource(1))
//
//	    encoder := nn.NewBiLSTM(300, 100, rng, backend)
//	    head := nn.NewLinear(200, 2, rng, backend)
//
//	    h := encoder.Forward(input) // [batch, seq, 200]
//	}
//
// # Initialization
//
// Linear and Conv2D weights use Xavier initialization; LSTM weights are drawn
// from U(-1/√hidden, 1/√hidden). Every constructor takes the *rand.Rand it
// draws from, so a fixed seed reproduces a model exactly.
package nn
