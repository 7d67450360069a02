package ops

import "github.com/cyandjinnie/speech-course/internal/tensor"

// Conv1DOp records a stride-1 dilated 1-D convolution.
//
// Forward: output = Conv1D(input, kernel, padding, dilation)
// Backward: the input gradient is the correlation of the output gradient
// with the kernel; the kernel gradient is the correlation of the input with
// the output gradient. Both are delegated to the backend.
type Conv1DOp struct {
	input    *tensor.RawTensor
	kernel   *tensor.RawTensor
	output   *tensor.RawTensor
	padding  int
	dilation int
}

// NewConv1DOp creates a new Conv1DOp.
func NewConv1DOp(input, kernel, output *tensor.RawTensor, padding, dilation int) *Conv1DOp {
	return &Conv1DOp{
		input:    input,
		kernel:   kernel,
		output:   output,
		padding:  padding,
		dilation: dilation,
	}
}

// Inputs returns [input, kernel].
func (op *Conv1DOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input, op.kernel}
}

// Output returns the convolution output.
func (op *Conv1DOp) Output() *tensor.RawTensor { return op.output }

// Backward computes the input and kernel gradients.
func (op *Conv1DOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inputGrad := backend.Conv1DInputBackward(op.input, op.kernel, outputGrad, op.padding, op.dilation)
	kernelGrad := backend.Conv1DKernelBackward(op.input, op.kernel, outputGrad, op.padding, op.dilation)
	return []*tensor.RawTensor{inputGrad, kernelGrad}
}
