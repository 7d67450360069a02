package ops

import "github.com/cyandjinnie/speech-course/internal/tensor"

// ReshapeOp records a shape change over the same data.
type ReshapeOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewReshapeOp creates a new ReshapeOp.
func NewReshapeOp(x, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{input: x, output: output}
}

// Backward reshapes the gradient back to the input shape.
func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(outputGrad, op.input.Shape())}
}

// Inputs returns [x].
func (op *ReshapeOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the reshaped tensor.
func (op *ReshapeOp) Output() *tensor.RawTensor { return op.output }

// PadOp records zero padding along one dimension.
type PadOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
	dim    int
	left   int
	right  int
}

// NewPadOp creates a new PadOp.
func NewPadOp(x, output *tensor.RawTensor, dim, left, right int) *PadOp {
	return &PadOp{input: x, output: output, dim: dim, left: left, right: right}
}

// Backward narrows the gradient back to the unpadded region.
func (op *PadOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	length := op.input.Shape()[op.dim]
	return []*tensor.RawTensor{backend.Narrow(outputGrad, op.dim, op.left, length)}
}

// Inputs returns [x].
func (op *PadOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the padded tensor.
func (op *PadOp) Output() *tensor.RawTensor { return op.output }

// NarrowOp records a slice along one dimension.
type NarrowOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
	dim    int
	start  int
	length int
}

// NewNarrowOp creates a new NarrowOp.
func NewNarrowOp(x, output *tensor.RawTensor, dim, start, length int) *NarrowOp {
	return &NarrowOp{input: x, output: output, dim: dim, start: start, length: length}
}

// Backward zero-pads the gradient back to the full extent: positions outside
// the slice received no gradient.
func (op *NarrowOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	total := op.input.Shape()[op.dim]
	right := total - op.start - op.length
	return []*tensor.RawTensor{backend.Pad(outputGrad, op.dim, op.start, right)}
}

// Inputs returns [x].
func (op *NarrowOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the sliced tensor.
func (op *NarrowOp) Output() *tensor.RawTensor { return op.output }

// StretchOp records zero-stuffing of the time axis by a factor.
type StretchOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
	factor int
}

// NewStretchOp creates a new StretchOp.
func NewStretchOp(x, output *tensor.RawTensor, factor int) *StretchOp {
	return &StretchOp{input: x, output: output, factor: factor}
}

// Backward gathers every factor-th gradient element: the stuffed zeros are
// constants and absorb no gradient.
func (op *StretchOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grad := zerosLike(op.input, backend.Device())

	shape := op.input.Shape()
	t := shape[len(shape)-1]
	rows := op.input.NumElements() / t

	og := outputGrad.AsFloat32()
	gd := grad.AsFloat32()
	for r := 0; r < rows; r++ {
		src := og[r*t*op.factor : (r+1)*t*op.factor]
		dst := gd[r*t : (r+1)*t]
		for i := range dst {
			dst[i] = src[i*op.factor]
		}
	}
	return []*tensor.RawTensor{grad}
}

// Inputs returns [x].
func (op *StretchOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the stretched tensor.
func (op *StretchOp) Output() *tensor.RawTensor { return op.output }
