package cpu

import (
	"fmt"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// Pad zero-pads the given dimension by left/right elements.
func (cpu *Backend) Pad(x *tensor.RawTensor, dim, left, right int) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("pad: invalid dimension %d for shape %v", dim, shape))
	}
	if left < 0 || right < 0 {
		panic(fmt.Sprintf("pad: negative padding left=%d right=%d", left, right))
	}
	if left == 0 && right == 0 {
		return x.Clone()
	}

	outShape := shape.Clone()
	outShape[dim] += left + right
	result := newResult(outShape, x.DType(), cpu.device, "pad")

	copyBlocks(result, x, dim, left, 0, shape[dim])
	return result
}

// Narrow slices length elements starting at start along dim.
func (cpu *Backend) Narrow(x *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("narrow: invalid dimension %d for shape %v", dim, shape))
	}
	if start < 0 || length <= 0 || start+length > shape[dim] {
		panic(fmt.Sprintf("narrow: range [%d, %d) out of bounds for dimension %d (size %d)",
			start, start+length, dim, shape[dim]))
	}

	outShape := shape.Clone()
	outShape[dim] = length
	result := newResult(outShape, x.DType(), cpu.device, "narrow")

	copyBlocks(result, x, dim, -start, start, length)
	return result
}

// Stretch zero-stuffs the last (time) axis by factor: input values land at
// indices that are multiples of factor, zeros in between. This is the
// sub-pixel half of a transposed convolution.
func (cpu *Backend) Stretch(x *tensor.RawTensor, factor int) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) < 1 {
		panic("stretch: scalar input")
	}
	if factor <= 0 {
		panic(fmt.Sprintf("stretch: invalid factor %d", factor))
	}
	if x.DType() != tensor.Float32 {
		panic("stretch: only float32 is supported")
	}

	t := shape[len(shape)-1]
	outShape := shape.Clone()
	outShape[len(outShape)-1] = t * factor
	result := newResult(outShape, x.DType(), cpu.device, "stretch")

	xd, rd := x.AsFloat32(), result.AsFloat32()
	rows := x.NumElements() / t
	for r := 0; r < rows; r++ {
		src := xd[r*t : (r+1)*t]
		dst := rd[r*t*factor : (r+1)*t*factor]
		for i, v := range src {
			dst[i*factor] = v
		}
	}
	return result
}

// copyBlocks copies rows along dim from src into dst with an offset.
// dstOffset is where src row srcStart lands in dst's dim; count rows copied.
func copyBlocks(dst, src *tensor.RawTensor, dim, dstOffset, srcStart, count int) {
	srcShape := src.Shape()

	outer := 1
	for i := 0; i < dim; i++ {
		outer *= srcShape[i]
	}
	inner := 1
	for i := dim + 1; i < len(srcShape); i++ {
		inner *= srcShape[i]
	}
	srcDim := srcShape[dim]
	dstDim := dst.Shape()[dim]

	elemSize := src.DType().Size()
	sd := src.Data()
	dd := dst.Data()

	rowBytes := inner * elemSize
	for o := 0; o < outer; o++ {
		for j := 0; j < count; j++ {
			srcRow := (o*srcDim + srcStart + j) * rowBytes
			dstRow := (o*dstDim + srcStart + j + dstOffset) * rowBytes
			copy(dd[dstRow:dstRow+rowBytes], sd[srcRow:srcRow+rowBytes])
		}
	}
}
