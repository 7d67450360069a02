package ops

import (
	"fmt"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// fillLike allocates a tensor shaped like t with every element set to value.
func fillLike(t *tensor.RawTensor, value float64, device tensor.Device) *tensor.RawTensor {
	result := zerosLike(t, device)
	switch t.DType() {
	case tensor.Float32:
		data := result.AsFloat32()
		for i := range data {
			data[i] = float32(value)
		}
	case tensor.Float64:
		data := result.AsFloat64()
		for i := range data {
			data[i] = value
		}
	default:
		panic(fmt.Sprintf("ops: unsupported dtype %s", t.DType()))
	}
	return result
}

func scalarValue(t *tensor.RawTensor) float64 {
	switch t.DType() {
	case tensor.Float32:
		return float64(t.AsFloat32()[0])
	case tensor.Float64:
		return t.AsFloat64()[0]
	default:
		panic(fmt.Sprintf("ops: unsupported dtype %s", t.DType()))
	}
}

// SumOp records a full reduction to a single element.
type SumOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewSumOp creates a new SumOp.
func NewSumOp(x, output *tensor.RawTensor) *SumOp {
	return &SumOp{input: x, output: output}
}

// Backward broadcasts the scalar gradient to every input element.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{fillLike(op.input, scalarValue(outputGrad), backend.Device())}
}

// Inputs returns [x].
func (op *SumOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the sum.
func (op *SumOp) Output() *tensor.RawTensor { return op.output }

// MeanOp records a full mean reduction to a single element.
type MeanOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewMeanOp creates a new MeanOp.
func NewMeanOp(x, output *tensor.RawTensor) *MeanOp {
	return &MeanOp{input: x, output: output}
}

// Backward broadcasts grad/N to every input element.
func (op *MeanOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	n := float64(op.input.NumElements())
	return []*tensor.RawTensor{fillLike(op.input, scalarValue(outputGrad)/n, backend.Device())}
}

// Inputs returns [x].
func (op *MeanOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the mean.
func (op *MeanOp) Output() *tensor.RawTensor { return op.output }

// SumDimOp records a sum along one dimension.
type SumDimOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
	dim    int
}

// NewSumDimOp creates a new SumDimOp.
func NewSumDimOp(x, output *tensor.RawTensor, dim int) *SumDimOp {
	return &SumDimOp{input: x, output: output, dim: dim}
}

// Backward broadcasts the gradient back along the reduced dimension.
func (op *SumDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grad := zerosLike(op.input, backend.Device())

	shape := op.input.Shape()
	outer := 1
	for i := 0; i < op.dim; i++ {
		outer *= shape[i]
	}
	inner := 1
	for i := op.dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	size := shape[op.dim]

	switch op.input.DType() {
	case tensor.Float32:
		og, gd := outputGrad.AsFloat32(), grad.AsFloat32()
		for o := 0; o < outer; o++ {
			for j := 0; j < size; j++ {
				row := (o*size + j) * inner
				src := o * inner
				for i := 0; i < inner; i++ {
					gd[row+i] = og[src+i]
				}
			}
		}
	case tensor.Float64:
		og, gd := outputGrad.AsFloat64(), grad.AsFloat64()
		for o := 0; o < outer; o++ {
			for j := 0; j < size; j++ {
				row := (o*size + j) * inner
				src := o * inner
				for i := 0; i < inner; i++ {
					gd[row+i] = og[src+i]
				}
			}
		}
	}
	return []*tensor.RawTensor{grad}
}

// Inputs returns [x].
func (op *SumDimOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the reduced tensor.
func (op *SumDimOp) Output() *tensor.RawTensor { return op.output }
