package cpu

import (
	"fmt"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// Sum reduces all elements to a single-element tensor of shape [1].
func (cpu *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := newResult(tensor.Shape{1}, x.DType(), cpu.device, "sum")
	switch x.DType() {
	case tensor.Float32:
		var acc float64
		for _, v := range x.AsFloat32() {
			acc += float64(v)
		}
		result.AsFloat32()[0] = float32(acc)
	case tensor.Float64:
		var acc float64
		for _, v := range x.AsFloat64() {
			acc += v
		}
		result.AsFloat64()[0] = acc
	}
	return result
}

// Mean reduces all elements to their mean as a single-element tensor.
func (cpu *Backend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	result := cpu.Sum(x)
	n := float64(x.NumElements())
	switch x.DType() {
	case tensor.Float32:
		result.AsFloat32()[0] /= float32(n)
	case tensor.Float64:
		result.AsFloat64()[0] /= n
	}
	return result
}

// SumDim sums along the given dimension. With keepDim the reduced dimension
// stays with size 1, otherwise it is removed.
func (cpu *Backend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("sum_dim: invalid dimension %d for shape %v", dim, shape))
	}

	keptShape := shape.Clone()
	keptShape[dim] = 1
	result := newResult(keptShape, x.DType(), cpu.device, "sum_dim")

	outer := 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	inner := 1
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	size := shape[dim]

	switch x.DType() {
	case tensor.Float32:
		xd, rd := x.AsFloat32(), result.AsFloat32()
		for o := 0; o < outer; o++ {
			for j := 0; j < size; j++ {
				row := (o*size + j) * inner
				dst := o * inner
				for i := 0; i < inner; i++ {
					rd[dst+i] += xd[row+i]
				}
			}
		}
	case tensor.Float64:
		xd, rd := x.AsFloat64(), result.AsFloat64()
		for o := 0; o < outer; o++ {
			for j := 0; j < size; j++ {
				row := (o*size + j) * inner
				dst := o * inner
				for i := 0; i < inner; i++ {
					rd[dst+i] += xd[row+i]
				}
			}
		}
	}

	if keepDim || len(shape) == 1 {
		return result
	}

	squeezed := make(tensor.Shape, 0, len(shape)-1)
	for i, d := range shape {
		if i != dim {
			squeezed = append(squeezed, d)
		}
	}
	return cpu.Reshape(result, squeezed)
}
