package cpu

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/textmatch/internal/tensor"
)

// MatMul performs matrix multiplication.
// For 2D tensors: (M, K) @ (K, N) -> (M, N)
// The product is computed by gonum's BLAS-backed Dense.Mul.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 2 || len(bShape) != 2 {
		panic(tensor.NewShapeError("matmul", "only 2D tensors supported, got %dD and %dD", len(aShape), len(bShape)))
	}

	m, k := aShape[0], aShape[1]
	kAlt, n := bShape[0], bShape[1]

	if k != kAlt {
		panic(tensor.NewShapeError("matmul", "[%d,%d] @ [%d,%d]", m, k, kAlt, n))
	}

	// gonum rejects zero-length dimensions; an empty product is all zeros.
	if m == 0 || k == 0 || n == 0 {
		return tensor.MustRaw(tensor.Shape{m, n}, cpu.device)
	}

	var c mat.Dense
	c.Mul(mat.NewDense(m, k, a.Data()), mat.NewDense(k, n, b.Data()))

	result := tensor.MustRaw(tensor.Shape{m, n}, cpu.device)
	out := result.Data()
	raw := c.RawMatrix()
	for i := 0; i < m; i++ {
		copy(out[i*n:(i+1)*n], raw.Data[i*raw.Stride:i*raw.Stride+n])
	}
	return result
}

// Transpose swaps the axes of a 2D tensor.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor) *tensor.RawTensor {
	shape := t.Shape()
	if len(shape) != 2 {
		panic(tensor.NewShapeError("transpose", "only 2D tensors supported, got %dD", len(shape)))
	}
	rows, cols := shape[0], shape[1]

	result := tensor.MustRaw(tensor.Shape{cols, rows}, cpu.device)
	src := t.Data()
	dst := result.Data()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			dst[j*rows+i] = src[i*cols+j]
		}
	}
	return result
}
