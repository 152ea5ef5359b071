package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/textmatch/internal/tensor"
)

// Dropout zeroes each element with probability rate during training and
// scales the survivors by 1/(1-rate) (inverted dropout). In evaluation mode
// it is the identity.
//
// Modules start in evaluation mode; call SetTraining(true) before a
// training step.
type Dropout struct {
	rate     float64
	training bool
	rng      *rand.Rand
}

// NewDropout creates a dropout layer with the given drop probability.
func NewDropout(rate float64, rng *rand.Rand) *Dropout {
	if rate < 0 || rate > 1 {
		panic(fmt.Sprintf("dropout: rate %v outside [0, 1]", rate))
	}
	return &Dropout{rate: rate, rng: rng}
}

// SetTraining switches between training (masking) and evaluation (identity).
func (d *Dropout) SetTraining(training bool) {
	d.training = training
}

// Training reports whether the layer is in training mode.
func (d *Dropout) Training() bool {
	return d.training
}

// Rate returns the drop probability.
func (d *Dropout) Rate() float64 {
	return d.rate
}

// Forward applies the dropout mask.
func (d *Dropout) Forward(input *tensor.Tensor) *tensor.Tensor {
	if !d.training || d.rate == 0 {
		return input
	}

	mask := make([]float64, input.NumElements())
	if d.rate < 1 {
		keep := 1 / (1 - d.rate)
		for i := range mask {
			if d.rng.Float64() >= d.rate {
				mask[i] = keep
			}
		}
	}
	m, err := tensor.FromSlice(mask, input.Shape(), input.Backend())
	if err != nil {
		panic(err)
	}
	return input.Mul(m)
}

// Parameters returns nil (dropout has no trainable parameters).
func (d *Dropout) Parameters() []*Parameter {
	return nil
}
