package nn

import (
	"fmt"

	"github.com/born-ml/textmatch/internal/tensor"
)

// eps keeps log away from zero for saturated probabilities.
const eps = 1e-12

// CrossEntropy computes the mean negative log-likelihood of class indices
// under already normalized probabilities.
//
//	Loss = -1/B Σ_b log(p[b, target_b])
//
// Parameters:
//   - probs: Softmax output with shape [batch_size, num_classes]
//   - targets: Class index per example, len(targets) == batch_size
//
// Returns a [1] tensor recorded on the probs backend.
func CrossEntropy(probs *tensor.Tensor, targets []int) (*tensor.Tensor, error) {
	shape := probs.Shape()
	if len(shape) != 2 || shape[0] != len(targets) {
		return nil, tensor.NewShapeError("cross_entropy", "probs %v do not match %d targets", shape, len(targets))
	}
	classes := shape[1]
	oneHot := make([]float64, len(targets)*classes)
	for b, t := range targets {
		if t < 0 || t >= classes {
			return nil, fmt.Errorf("cross_entropy: target %d of example %d outside [0, %d)", t, b, classes)
		}
		oneHot[b*classes+t] = 1
	}
	y, err := tensor.FromSlice(oneHot, shape, probs.Backend())
	if err != nil {
		return nil, err
	}
	nll := probs.AddScalar(eps).Log().Mul(y).Sum()
	return nll.MulScalar(-1 / float64(len(targets))), nil
}

// BinaryCrossEntropy computes the mean element-wise binary cross-entropy
// between sigmoid outputs and targets in [0, 1] of the same shape.
//
//	Loss = -mean(t·log(p) + (1-t)·log(1-p))
func BinaryCrossEntropy(probs, targets *tensor.Tensor) (*tensor.Tensor, error) {
	if !probs.Shape().Equal(targets.Shape()) {
		return nil, tensor.NewShapeError("binary_cross_entropy", "probs %v != targets %v", probs.Shape(), targets.Shape())
	}
	// Every op starts from probs so that an autodiff backend records it.
	pos := probs.AddScalar(eps).Log().Mul(targets)
	neg := probs.MulScalar(-1).AddScalar(1 + eps).Log().Mul(targets.MulScalar(-1).AddScalar(1))
	return pos.Add(neg).Sum().MulScalar(-1 / float64(probs.NumElements())), nil
}
