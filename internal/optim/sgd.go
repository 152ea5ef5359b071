package optim

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/textmatch/internal/nn"
	"github.com/born-ml/textmatch/internal/tensor"
)

// SGD is stochastic gradient descent with optional momentum.
//
//	velocity = momentum * velocity + grad
//	param    = param - lr * velocity
//
// With zero momentum this is param -= lr * grad.
type SGD struct {
	params     []*nn.Parameter
	lr         float64
	momentum   float64
	velocities map[*nn.Parameter][]float64
}

// SGDConfig holds the SGD hyperparameters.
type SGDConfig struct {
	LR       float64 // default 0.01
	Momentum float64 // in [0, 1), default 0
}

// NewSGD creates an SGD optimizer over params.
func NewSGD(params []*nn.Parameter, cfg SGDConfig) *SGD {
	if cfg.LR == 0 {
		cfg.LR = 0.01
	}
	return &SGD{
		params:     params,
		lr:         cfg.LR,
		momentum:   cfg.Momentum,
		velocities: make(map[*nn.Parameter][]float64),
	}
}

// Step applies one update to every parameter that has a gradient.
func (s *SGD) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, p := range s.params {
		g := gradient(p, grads)
		if g == nil {
			continue
		}
		data := p.Tensor().Data()
		if s.momentum == 0 {
			floats.AddScaled(data, -s.lr, g)
			continue
		}

		v, ok := s.velocities[p]
		if !ok {
			v = make([]float64, len(data))
			s.velocities[p] = v
		}
		floats.Scale(s.momentum, v)
		floats.Add(v, g)
		floats.AddScaled(data, -s.lr, v)
	}
}

// ZeroGrad clears every parameter's gradient.
func (s *SGD) ZeroGrad() {
	zeroGrads(s.params)
}

// LR returns the learning rate.
func (s *SGD) LR() float64 {
	return s.lr
}

// SetLR changes the learning rate for later steps.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

// StateDict exports the momentum buffers keyed "velocity.<param index>".
// It is empty without momentum.
func (s *SGD) StateDict() map[string][]float64 {
	state := make(map[string][]float64)
	for i, p := range s.params {
		if v, ok := s.velocities[p]; ok {
			state[fmt.Sprintf("velocity.%d", i)] = append([]float64(nil), v...)
		}
	}
	return state
}

// LoadStateDict restores momentum buffers exported by StateDict.
func (s *SGD) LoadStateDict(state map[string][]float64) error {
	velocities := make(map[*nn.Parameter][]float64)
	for i, p := range s.params {
		v, ok := state[fmt.Sprintf("velocity.%d", i)]
		if !ok {
			continue
		}
		if len(v) != p.Tensor().NumElements() {
			return fmt.Errorf("optim: velocity %d has %d elements, parameter %s has %d",
				i, len(v), p.Name(), p.Tensor().NumElements())
		}
		velocities[p] = append([]float64(nil), v...)
	}
	s.velocities = velocities
	return nil
}
