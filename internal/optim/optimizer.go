// Package optim implements the gradient-step optimizers applied to matcher
// parameters between forward passes.
//
// The training loop itself lives with the caller. A typical step:
//
//	backend := autodiff.New(cpu.New())
//	m, _ := matcher.New(matcher.KindLSTM, cfg, backend)
//	opt := optim.FromConfig(m.Parameters(), cfg)
//
//	backend.Tape().StartRecording()
//	scores, _ := m.Forward(seq1, seq2)
//	loss, _ := nn.CrossEntropy(scores, labels)
//	opt.Step(autodiff.Backward(loss, backend))
//	backend.Tape().Clear()
//	opt.ZeroGrad()
package optim

import (
	"github.com/born-ml/textmatch/internal/config"
	"github.com/born-ml/textmatch/internal/nn"
	"github.com/born-ml/textmatch/internal/tensor"
)

// Optimizer updates parameters in place from their gradients.
type Optimizer interface {
	// Step applies one update. grads maps parameter data to gradients as
	// returned by autodiff.Backward. A nil map uses each parameter's Grad().
	// Parameters without a gradient are left untouched.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears the gradients stored on the parameters.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float64
}

// FromConfig returns plain SGD at cfg.LearningRate, the optimizer the
// matchers were trained with.
func FromConfig(params []*nn.Parameter, cfg config.Config) *SGD {
	return NewSGD(params, SGDConfig{LR: cfg.LearningRate})
}

// gradient returns the gradient data for param, or nil if it did not take
// part in the forward pass.
func gradient(param *nn.Parameter, grads map[*tensor.RawTensor]*tensor.RawTensor) []float64 {
	if grads == nil {
		if g := param.Grad(); g != nil {
			return g.Data()
		}
		return nil
	}
	if g, ok := grads[param.Tensor().Raw()]; ok {
		return g.Data()
	}
	return nil
}

func zeroGrads(params []*nn.Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
