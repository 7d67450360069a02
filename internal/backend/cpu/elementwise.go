package cpu

import (
	"fmt"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// binaryOp implements a broadcast element-wise binary operation.
func (cpu *Backend) binaryOp(
	name string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch: %s vs %s", name, a.DType(), b.DType()))
	}

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result := newResult(outShape, a.DType(), cpu.device, name)

	if !needsBroadcast {
		switch a.DType() {
		case tensor.Float32:
			ad, bd, rd := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
			for i := range rd {
				rd[i] = f32(ad[i], bd[i])
			}
		case tensor.Float64:
			ad, bd, rd := a.AsFloat64(), b.AsFloat64(), result.AsFloat64()
			for i := range rd {
				rd[i] = f64(ad[i], bd[i])
			}
		}
		return result
	}

	aStrides := broadcastStrides(a.Shape(), outShape)
	bStrides := broadcastStrides(b.Shape(), outShape)
	outStrides := outShape.ComputeStrides()
	n := outShape.NumElements()

	switch a.DType() {
	case tensor.Float32:
		ad, bd, rd := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
		for i := 0; i < n; i++ {
			ai, bi := broadcastIndices(i, outStrides, aStrides, bStrides)
			rd[i] = f32(ad[ai], bd[bi])
		}
	case tensor.Float64:
		ad, bd, rd := a.AsFloat64(), b.AsFloat64(), result.AsFloat64()
		for i := 0; i < n; i++ {
			ai, bi := broadcastIndices(i, outStrides, aStrides, bStrides)
			rd[i] = f64(ad[ai], bd[bi])
		}
	}
	return result
}

// broadcastStrides computes the effective strides of shape when broadcast to
// outShape: size-1 (or missing) dimensions get stride 0.
func broadcastStrides(shape, outShape tensor.Shape) []int {
	strides := shape.ComputeStrides()
	out := make([]int, len(outShape))
	offset := len(outShape) - len(shape)
	for i := range outShape {
		src := i - offset
		if src < 0 || shape[src] == 1 {
			out[i] = 0
		} else {
			out[i] = strides[src]
		}
	}
	return out
}

// broadcastIndices maps a flat output index to flat input indices for two
// broadcast operands.
func broadcastIndices(flat int, outStrides, aStrides, bStrides []int) (int, int) {
	ai, bi := 0, 0
	rem := flat
	for d := 0; d < len(outStrides); d++ {
		coord := rem / outStrides[d]
		rem %= outStrides[d]
		ai += coord * aStrides[d]
		bi += coord * bStrides[d]
	}
	return ai, bi
}
