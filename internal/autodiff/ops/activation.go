package ops

import (
	"fmt"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// maskedGrad computes grad_x[i] = g[i] * m(x[i]) for a pointwise derivative m.
func maskedGrad(x, outputGrad *tensor.RawTensor, backend tensor.Backend, m func(float64) float64) *tensor.RawTensor {
	result := zerosLike(x, backend.Device())
	switch x.DType() {
	case tensor.Float32:
		xd, gd, rd := x.AsFloat32(), outputGrad.AsFloat32(), result.AsFloat32()
		for i := range rd {
			rd[i] = gd[i] * float32(m(float64(xd[i])))
		}
	case tensor.Float64:
		xd, gd, rd := x.AsFloat64(), outputGrad.AsFloat64(), result.AsFloat64()
		for i := range rd {
			rd[i] = gd[i] * m(xd[i])
		}
	default:
		panic(fmt.Sprintf("ops: unsupported dtype %s", x.DType()))
	}
	return result
}

// ReLUOp records output = max(0, x).
type ReLUOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(x, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{input: x, output: output}
}

// Backward gates the gradient on x > 0.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grad := maskedGrad(op.input, outputGrad, backend, func(v float64) float64 {
		if v > 0 {
			return 1
		}
		return 0
	})
	return []*tensor.RawTensor{grad}
}

// Inputs returns [x].
func (op *ReLUOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns max(0, x).
func (op *ReLUOp) Output() *tensor.RawTensor { return op.output }

// LeakyReLUOp records output = x for x > 0, negSlope*x otherwise.
type LeakyReLUOp struct {
	input    *tensor.RawTensor
	output   *tensor.RawTensor
	negSlope float64
}

// NewLeakyReLUOp creates a new LeakyReLUOp.
func NewLeakyReLUOp(x, output *tensor.RawTensor, negSlope float64) *LeakyReLUOp {
	return &LeakyReLUOp{input: x, output: output, negSlope: negSlope}
}

// Backward scales the gradient by 1 or negSlope depending on the input sign.
func (op *LeakyReLUOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grad := maskedGrad(op.input, outputGrad, backend, func(v float64) float64 {
		if v > 0 {
			return 1
		}
		return op.negSlope
	})
	return []*tensor.RawTensor{grad}
}

// Inputs returns [x].
func (op *LeakyReLUOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the activation output.
func (op *LeakyReLUOp) Output() *tensor.RawTensor { return op.output }

// TanhOp records output = tanh(x).
type TanhOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewTanhOp creates a new TanhOp.
func NewTanhOp(x, output *tensor.RawTensor) *TanhOp {
	return &TanhOp{input: x, output: output}
}

// Backward computes grad_x = g * (1 - tanh(x)^2), reusing the output.
func (op *TanhOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	sq := backend.Mul(op.output, op.output)
	oneMinus := backend.MulScalar(backend.AddScalar(sq, -1), -1)
	return []*tensor.RawTensor{backend.Mul(outputGrad, oneMinus)}
}

// Inputs returns [x].
func (op *TanhOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns tanh(x).
func (op *TanhOp) Output() *tensor.RawTensor { return op.output }

// SigmoidOp records output = 1/(1+exp(-x)).
type SigmoidOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewSigmoidOp creates a new SigmoidOp.
func NewSigmoidOp(x, output *tensor.RawTensor) *SigmoidOp {
	return &SigmoidOp{input: x, output: output}
}

// Backward computes grad_x = g * s * (1 - s), reusing the output s.
func (op *SigmoidOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	oneMinus := backend.MulScalar(backend.AddScalar(op.output, -1), -1)
	return []*tensor.RawTensor{backend.Mul(outputGrad, backend.Mul(op.output, oneMinus))}
}

// Inputs returns [x].
func (op *SigmoidOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the sigmoid output.
func (op *SigmoidOp) Output() *tensor.RawTensor { return op.output }
