// Package nn implements neural network modules for the textmatch models.
//
// This package provides building blocks for constructing the matchers:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable parameters with gradient tracking
//   - Linear, Bilinear, Conv2D, MaxPool2D: parameterised layers
//   - LSTM, BiLSTM: batch-first recurrent encoders
//   - Activations: ReLU, Sigmoid, Tanh, Softmax
//   - Dropout with a train/eval switch
//   - Loss functions: CrossEntropy, BinaryCrossEntropy
//
// Design inspired by PyTorch's nn.Module.
package nn

import (
	"github.com/born-ml/textmatch/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: Compute output from input
//   - Parameters: Return all trainable parameters
type Module interface {
	// Forward computes the output of the module given an input tensor.
	//
	// The input tensor should have the appropriate shape for this module.
	// For example, Linear expects [batch_size, in_features].
	Forward(input *tensor.Tensor) *tensor.Tensor

	// Parameters returns all trainable parameters of this module.
	// Returns an empty slice for modules without trainable parameters.
	Parameters() []*Parameter
}

// Collect concatenates the parameters of several modules.
func Collect(modules ...Module) []*Parameter {
	var params []*Parameter
	for _, m := range modules {
		params = append(params, m.Parameters()...)
	}
	return params
}

// CountParameters returns the total number of scalar weights.
func CountParameters(params []*Parameter) int {
	n := 0
	for _, p := range params {
		n += p.Tensor().NumElements()
	}
	return n
}
