package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/textmatch/internal/tensor"
)

// Bilinear holds k learned matrices T_k of shape [in1, in2] and scores a
// pair of vectors (a, b) with the k scalars a·T_k·bᵗ.
//
// Unlike torch.nn.Bilinear it has no bias and scores every row of one
// sequence against every row of another in a single call (see Pairwise).
//
// Weights are drawn from N(0, 1).
type Bilinear struct {
	in1, in2 int
	outputs  int
	weight   *Parameter // [outputs, in1, in2]
}

// NewBilinear creates a bilinear form with the given number of outputs.
func NewBilinear(in1, in2, outputs int, rng *rand.Rand, backend tensor.Backend) *Bilinear {
	if in1 <= 0 || in2 <= 0 || outputs <= 0 {
		panic(fmt.Sprintf("bilinear: invalid sizes in1=%d, in2=%d, out=%d", in1, in2, outputs))
	}
	return &Bilinear{
		in1:     in1,
		in2:     in2,
		outputs: outputs,
		weight:  NewParameter("bilinear.weight", Randn(tensor.Shape{outputs, in1, in2}, rng, backend)),
	}
}

// Pairwise scores every (row of a, row of b) pair.
//
// Input shapes:  a [M, in1], b [N, in2]
// Output shape:  [M*N, outputs], row i*N+j holding a_i·T_k·b_jᵗ for every k.
func (b *Bilinear) Pairwise(a, c *tensor.Tensor) *tensor.Tensor {
	as, cs := a.Shape(), c.Shape()
	if len(as) != 2 || as[1] != b.in1 || len(cs) != 2 || cs[1] != b.in2 {
		panic(tensor.NewShapeError("bilinear", "expected [M, %d] and [N, %d], got %v and %v", b.in1, b.in2, as, cs))
	}
	m, n := as[0], cs[0]
	cT := c.Transpose()

	scores := make([]*tensor.Tensor, b.outputs)
	for k := 0; k < b.outputs; k++ {
		tk := b.weight.Tensor().Narrow(0, k, 1).Reshape(b.in1, b.in2)
		// [M, in1] @ [in1, in2] @ [in2, N] = [M, N]
		scores[k] = a.MatMul(tk).MatMul(cT).Reshape(m*n, 1)
	}
	if len(scores) == 1 {
		return scores[0]
	}
	return tensor.Cat(scores, 1)
}

// Parameters returns [weight].
func (b *Bilinear) Parameters() []*Parameter {
	return []*Parameter{b.weight}
}

// Weight returns the [outputs, in1, in2] parameter.
func (b *Bilinear) Weight() *Parameter {
	return b.weight
}
