package cpu

import (
	"github.com/born-ml/textmatch/internal/tensor"
)

// Reshape returns a copy of t with a new shape holding the same number of elements.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	return t.WithShape(newShape)
}

// Narrow returns the slice [start, start+length) of t along dim.
//
// Example:
//
//	t: [2, 5, 3], Narrow(t, 1, 4, 1) -> [2, 1, 3] (last time step)
func (cpu *CPUBackend) Narrow(t *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	shape := t.Shape()
	d := shape.NormalizeDim(dim)
	if d < 0 {
		panic(tensor.NewShapeError("narrow", "dim %d out of range for shape %v", dim, shape))
	}
	if start < 0 || length <= 0 || start+length > shape[d] {
		panic(tensor.NewShapeError("narrow", "range [%d, %d) out of bounds for dimension %d (size %d)",
			start, start+length, d, shape[d]))
	}

	outer, n, inner := shape.SplitAt(d)
	outShape := shape.Clone()
	outShape[d] = length

	result := tensor.MustRaw(outShape, cpu.device)
	src := t.Data()
	dst := result.Data()
	block := length * inner
	for o := 0; o < outer; o++ {
		srcOff := (o*n + start) * inner
		copy(dst[o*block:(o+1)*block], src[srcOff:srcOff+block])
	}
	return result
}

// Cat concatenates tensors along dim. All other dimensions must match.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic(tensor.NewShapeError("cat", "no tensors to concatenate"))
	}

	first := tensors[0].Shape()
	d := first.NormalizeDim(dim)
	if d < 0 {
		panic(tensor.NewShapeError("cat", "dim %d out of range for shape %v", dim, first))
	}

	total := 0
	for i, t := range tensors {
		s := t.Shape()
		if len(s) != len(first) {
			panic(tensor.NewShapeError("cat", "tensor %d has rank %d, expected %d", i, len(s), len(first)))
		}
		for j := range s {
			if j != d && s[j] != first[j] {
				panic(tensor.NewShapeError("cat", "tensor %d has shape %v, incompatible with %v along dim %d",
					i, s, first, d))
			}
		}
		total += s[d]
	}

	outShape := first.Clone()
	outShape[d] = total
	result := tensor.MustRaw(outShape, cpu.device)
	dst := result.Data()

	outer, _, inner := outShape.SplitAt(d)
	pos := 0
	for o := 0; o < outer; o++ {
		for _, t := range tensors {
			block := t.Shape()[d] * inner
			src := t.Data()[o*block : (o+1)*block]
			copy(dst[pos:pos+block], src)
			pos += block
		}
	}
	return result
}
