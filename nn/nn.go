// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/textmatch/internal/nn"
	"github.com/born-ml/textmatch/tensor"
)

// Module interface defines the common interface for all neural network modules.
type Module = nn.Module

// Parameter represents a trainable parameter in a neural network.
type Parameter = nn.Parameter

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}

// Collect concatenates the parameters of several modules.
func Collect(modules ...Module) []*Parameter {
	return nn.Collect(modules...)
}

// CountParameters returns the total number of scalar weights.
func CountParameters(params []*Parameter) int {
	return nn.CountParameters(params)
}

// AttachGrads stores the gradients computed by autodiff.Backward on params.
func AttachGrads(params []*Parameter, grads map[*tensor.RawTensor]*tensor.RawTensor) {
	nn.AttachGrads(params, grads)
}

// Layers

// Linear represents a fully connected (dense) layer.
type Linear = nn.Linear

// NewLinear creates a new linear layer with Xavier initialization.
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewLinear(200, 2, rand.New(rand.NewSource(1)), backend)
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand, backend tensor.Backend) *Linear {
	return nn.NewLinear(inFeatures, outFeatures, rng, backend)
}

// Conv2D represents a 2D convolutional layer.
type Conv2D = nn.Conv2D

// NewConv2D creates a new 2D convolutional layer.
//
// Example:
//
//	conv := nn.NewConv2D(1, 3, 3, 3, 1, 0, true, rng, backend) // 1 -> 3 channels, 3x3 kernel
func NewConv2D(
	inChannels, outChannels int,
	kernelH, kernelW int,
	stride, padding int,
	useBias bool,
	rng *rand.Rand,
	backend tensor.Backend,
) *Conv2D {
	return nn.NewConv2D(inChannels, outChannels, kernelH, kernelW, stride, padding, useBias, rng, backend)
}

// MaxPool2D represents a 2D max pooling layer.
type MaxPool2D = nn.MaxPool2D

// NewMaxPool2D creates a new 2D max pooling layer.
func NewMaxPool2D(kernelSize, stride int) *MaxPool2D {
	return nn.NewMaxPool2D(kernelSize, stride)
}

// LSTM is a single-layer batch-first LSTM.
type LSTM = nn.LSTM

// NewLSTM creates an LSTM mapping [batch, seq, inputSize] to [batch, seq, hiddenSize].
func NewLSTM(inputSize, hiddenSize int, rng *rand.Rand, backend tensor.Backend) *LSTM {
	return nn.NewLSTM(inputSize, hiddenSize, rng, backend)
}

// BiLSTM runs one LSTM forwards and one backwards and concatenates them.
type BiLSTM = nn.BiLSTM

// NewBiLSTM creates a BiLSTM with output width 2*hiddenSize.
func NewBiLSTM(inputSize, hiddenSize int, rng *rand.Rand, backend tensor.Backend) *BiLSTM {
	return nn.NewBiLSTM(inputSize, hiddenSize, rng, backend)
}

// Bilinear computes x1ᵀ W_k x2 for every output k.
type Bilinear = nn.Bilinear

// NewBilinear creates a bilinear form without bias.
func NewBilinear(in1, in2, outputs int, rng *rand.Rand, backend tensor.Backend) *Bilinear {
	return nn.NewBilinear(in1, in2, outputs, rng, backend)
}

// FeedForward is a stack of Linear layers with ReLU between them.
type FeedForward = nn.FeedForward

// NewFeedForward creates len(sizes)-1 Linear layers.
func NewFeedForward(sizes []int, rng *rand.Rand, backend tensor.Backend) *FeedForward {
	return nn.NewFeedForward(sizes, rng, backend)
}

// Dropout zeroes inputs with probability rate while training.
type Dropout = nn.Dropout

// NewDropout creates a dropout layer in evaluation mode.
func NewDropout(rate float64, rng *rand.Rand) *Dropout {
	return nn.NewDropout(rate, rng)
}

// Activations

// ReLU represents the Rectified Linear Unit activation function.
type ReLU = nn.ReLU

// NewReLU creates a new ReLU activation layer.
func NewReLU() *ReLU { return nn.NewReLU() }

// Sigmoid represents the Sigmoid activation function.
type Sigmoid = nn.Sigmoid

// NewSigmoid creates a new Sigmoid activation layer.
func NewSigmoid() *Sigmoid { return nn.NewSigmoid() }

// Tanh represents the Tanh activation function.
type Tanh = nn.Tanh

// NewTanh creates a new Tanh activation layer.
func NewTanh() *Tanh { return nn.NewTanh() }

// Softmax normalizes along one dimension.
type Softmax = nn.Softmax

// NewSoftmax creates a softmax over dim.
func NewSoftmax(dim int) *Softmax { return nn.NewSoftmax(dim) }

// Losses

// CrossEntropy is the mean negative log-likelihood of probs [batch, classes]
// at the target class indices.
func CrossEntropy(probs *tensor.Tensor, targets []int) (*tensor.Tensor, error) {
	return nn.CrossEntropy(probs, targets)
}

// BinaryCrossEntropy is the mean binary cross-entropy between probabilities
// and 0/1 targets of the same shape.
func BinaryCrossEntropy(probs, targets *tensor.Tensor) (*tensor.Tensor, error) {
	return nn.BinaryCrossEntropy(probs, targets)
}
