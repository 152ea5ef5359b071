package autodiff

import (
	"github.com/born-ml/textmatch/internal/tensor"
)

// Backward computes gradients of t with respect to everything recorded on
// the backend's tape, seeding dt = ones.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	x := tensor.Ones(tensor.Shape{2}, backend)
//	y := x.Mul(x).Sum() // y = Σx²
//	gradients := autodiff.Backward(y, backend)
//	grad := gradients[x.Raw()] // 2x
func Backward(t *tensor.Tensor, backend *AutodiffBackend) map[*tensor.RawTensor]*tensor.RawTensor {
	if backend.tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}
	seed := tensor.Ones(t.Shape(), backend.inner).Raw()
	return backend.tape.Backward(t.Raw(), seed, backend.inner)
}
