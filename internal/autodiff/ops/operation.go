// Package ops defines the differentiable operations recorded on the
// gradient tape.
//
// Each operation stores its input and output RawTensors during the forward
// pass and computes input gradients from the output gradient during the
// backward pass. The op set is the vocoder's: broadcast elementwise
// arithmetic, pointwise math and activations, dilated 1-D convolution,
// weight normalization, pad/narrow/stretch shape surgery, reductions, and
// the magnitude spectrogram.
package ops

import "github.com/cyandjinnie/speech-course/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
type Operation interface {
	// Backward computes gradients for the inputs given the output gradient.
	// Returns one gradient (or nil for non-differentiable inputs) per input
	// tensor, in the order reported by Inputs.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors of this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}
