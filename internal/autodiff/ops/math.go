package ops

import "github.com/cyandjinnie/speech-course/internal/tensor"

// ExpOp records output = exp(x).
type ExpOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewExpOp creates a new ExpOp.
func NewExpOp(x, output *tensor.RawTensor) *ExpOp {
	return &ExpOp{input: x, output: output}
}

// Backward computes grad_x = g * exp(x), reusing the forward output.
func (op *ExpOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, op.output)}
}

// Inputs returns [x].
func (op *ExpOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns exp(x).
func (op *ExpOp) Output() *tensor.RawTensor { return op.output }

// LogOp records output = log(x).
type LogOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewLogOp creates a new LogOp.
func NewLogOp(x, output *tensor.RawTensor) *LogOp {
	return &LogOp{input: x, output: output}
}

// Backward computes grad_x = g / x.
func (op *LogOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Div(outputGrad, op.input)}
}

// Inputs returns [x].
func (op *LogOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns log(x).
func (op *LogOp) Output() *tensor.RawTensor { return op.output }

// SqrtOp records output = sqrt(x).
type SqrtOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewSqrtOp creates a new SqrtOp.
func NewSqrtOp(x, output *tensor.RawTensor) *SqrtOp {
	return &SqrtOp{input: x, output: output}
}

// Backward computes grad_x = g * 0.5 / sqrt(x).
func (op *SqrtOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.MulScalar(backend.Div(outputGrad, op.output), 0.5)}
}

// Inputs returns [x].
func (op *SqrtOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns sqrt(x).
func (op *SqrtOp) Output() *tensor.RawTensor { return op.output }
