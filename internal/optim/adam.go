package optim

import (
	"math"

	"github.com/born-ml/textmatch/internal/nn"
	"github.com/born-ml/textmatch/internal/tensor"
)

// Adam is the Adam optimizer (Kingma & Ba, 2014).
//
//	m     = beta1 * m + (1-beta1) * grad
//	v     = beta2 * v + (1-beta2) * grad²
//	param = param - lr * (m / (1-beta1^t)) / (sqrt(v / (1-beta2^t)) + eps)
type Adam struct {
	params []*nn.Parameter
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	t      int
	m      map[*nn.Parameter][]float64
	v      map[*nn.Parameter][]float64
}

// AdamConfig holds the Adam hyperparameters. Zero fields take the defaults
// LR 0.001, Betas {0.9, 0.999}, Eps 1e-8.
type AdamConfig struct {
	LR    float64
	Betas [2]float64
	Eps   float64
}

// NewAdam creates an Adam optimizer over params.
func NewAdam(params []*nn.Parameter, cfg AdamConfig) *Adam {
	if cfg.LR == 0 {
		cfg.LR = 0.001
	}
	if cfg.Betas[0] == 0 {
		cfg.Betas[0] = 0.9
	}
	if cfg.Betas[1] == 0 {
		cfg.Betas[1] = 0.999
	}
	if cfg.Eps == 0 {
		cfg.Eps = 1e-8
	}
	return &Adam{
		params: params,
		lr:     cfg.LR,
		beta1:  cfg.Betas[0],
		beta2:  cfg.Betas[1],
		eps:    cfg.Eps,
		m:      make(map[*nn.Parameter][]float64),
		v:      make(map[*nn.Parameter][]float64),
	}
}

// Step applies one bias-corrected update to every parameter that has a
// gradient.
func (a *Adam) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	a.t++
	c1 := 1 - math.Pow(a.beta1, float64(a.t))
	c2 := 1 - math.Pow(a.beta2, float64(a.t))

	for _, p := range a.params {
		g := gradient(p, grads)
		if g == nil {
			continue
		}
		data := p.Tensor().Data()
		m, ok := a.m[p]
		if !ok {
			m = make([]float64, len(data))
			a.m[p] = m
		}
		v, ok := a.v[p]
		if !ok {
			v = make([]float64, len(data))
			a.v[p] = v
		}
		for i := range data {
			m[i] = a.beta1*m[i] + (1-a.beta1)*g[i]
			v[i] = a.beta2*v[i] + (1-a.beta2)*g[i]*g[i]
			data[i] -= a.lr * (m[i] / c1) / (math.Sqrt(v[i]/c2) + a.eps)
		}
	}
}

// ZeroGrad clears every parameter's gradient.
func (a *Adam) ZeroGrad() {
	zeroGrads(a.params)
}

// LR returns the learning rate.
func (a *Adam) LR() float64 {
	return a.lr
}

// SetLR changes the learning rate for later steps.
func (a *Adam) SetLR(lr float64) {
	a.lr = lr
}

// Timestep returns the number of steps taken.
func (a *Adam) Timestep() int {
	return a.t
}
