// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/textmatch/backend/cpu"
	"github.com/born-ml/textmatch/nn"
	"github.com/born-ml/textmatch/tensor"
)

// TestModuleInterface verifies that concrete types implement Module interface.
func TestModuleInterface(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name   string
		module nn.Module
		input  tensor.Shape
		params int
	}{
		{name: "Linear", module: nn.NewLinear(10, 5, rng, backend), input: tensor.Shape{2, 10}, params: 2},
		{name: "LSTM", module: nn.NewLSTM(4, 3, rng, backend), input: tensor.Shape{2, 5, 4}, params: 4},
		{name: "BiLSTM", module: nn.NewBiLSTM(4, 3, rng, backend), input: tensor.Shape{2, 5, 4}, params: 8},
		{name: "FeedForward", module: nn.NewFeedForward([]int{6, 4, 2}, rng, backend), input: tensor.Shape{3, 6}, params: 4},
		{name: "ReLU", module: nn.NewReLU(), input: tensor.Shape{2, 2}, params: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tensor.Randn(tt.input, rng, backend)
			out := tt.module.Forward(input)
			require.NotNil(t, out)
			assert.Len(t, tt.module.Parameters(), tt.params)
		})
	}
}

func TestCollect(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(2))
	a := nn.NewLinear(3, 2, rng, backend)
	b := nn.NewLinear(2, 1, rng, backend)

	params := nn.Collect(a, b)
	require.Len(t, params, 4)
	assert.Equal(t, 3*2+2+2*1+1, nn.CountParameters(params))
}

func TestCrossEntropy_PublicAPI(t *testing.T) {
	backend := cpu.New()
	probs, err := tensor.FromSlice([]float64{0.5, 0.5, 0.5, 0.5}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	loss, err := nn.CrossEntropy(probs, []int{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, math.Ln2, loss.At(0), 1e-9)

	_, err = nn.CrossEntropy(probs, []int{0})
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}
