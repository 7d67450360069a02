// Package autodiff implements reverse-mode automatic differentiation using
// the decorator pattern.
//
// Backend wraps any tensor.Backend implementation and adds gradient
// tracking through a GradientTape:
//   - forward computation is delegated to the wrapped backend
//   - every differentiable operation is recorded on the tape while recording
//     is enabled
//   - Backward walks the tape in reverse and accumulates input gradients
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	// ... forward pass over tensors built on this backend ...
//	grads := autodiff.Backward(loss, backend)
package autodiff

import (
	"github.com/cyandjinnie/speech-course/internal/autodiff/ops"
	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// Backend wraps a tensor.Backend and records operations on a GradientTape.
type Backend[B tensor.Backend] struct {
	inner B
	tape  *GradientTape
}

// New creates a new autodiff backend wrapping the given backend.
func New[B tensor.Backend](backend B) *Backend[B] {
	return &Backend[B]{
		inner: backend,
		tape:  NewGradientTape(),
	}
}

// Tape returns the gradient tape for manual control (start/stop/clear).
func (b *Backend[B]) Tape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend.
func (b *Backend[B]) Inner() B {
	return b.inner
}

// Name returns the backend name.
func (b *Backend[B]) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// Device returns the compute device.
func (b *Backend[B]) Device() tensor.Device {
	return b.inner.Device()
}

// Add performs element-wise addition and records the operation.
func (b *Backend[B]) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Add(x, y)
	b.tape.Record(ops.NewAddOp(x, y, result))
	return result
}

// Sub performs element-wise subtraction and records the operation.
func (b *Backend[B]) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sub(x, y)
	b.tape.Record(ops.NewSubOp(x, y, result))
	return result
}

// Mul performs element-wise multiplication and records the operation.
func (b *Backend[B]) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Mul(x, y)
	b.tape.Record(ops.NewMulOp(x, y, result))
	return result
}

// Div performs element-wise division and records the operation.
func (b *Backend[B]) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Div(x, y)
	b.tape.Record(ops.NewDivOp(x, y, result))
	return result
}

// AddScalar adds a scalar and records the operation.
func (b *Backend[B]) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	result := b.inner.AddScalar(x, scalar)
	b.tape.Record(ops.NewAddScalarOp(x, result))
	return result
}

// MulScalar multiplies by a scalar and records the operation.
func (b *Backend[B]) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	result := b.inner.MulScalar(x, scalar)
	b.tape.Record(ops.NewMulScalarOp(x, result, scalar))
	return result
}

// Exp computes the element-wise exponential and records the operation.
func (b *Backend[B]) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Exp(x)
	b.tape.Record(ops.NewExpOp(x, result))
	return result
}

// Log computes the element-wise logarithm and records the operation.
func (b *Backend[B]) Log(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Log(x)
	b.tape.Record(ops.NewLogOp(x, result))
	return result
}

// Sqrt computes the element-wise square root and records the operation.
func (b *Backend[B]) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sqrt(x)
	b.tape.Record(ops.NewSqrtOp(x, result))
	return result
}

// ReLU applies ReLU and records the operation.
func (b *Backend[B]) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.ReLU(x)
	b.tape.Record(ops.NewReLUOp(x, result))
	return result
}

// LeakyReLU applies a leaky rectification and records the operation.
func (b *Backend[B]) LeakyReLU(x *tensor.RawTensor, negSlope float64) *tensor.RawTensor {
	result := b.inner.LeakyReLU(x, negSlope)
	b.tape.Record(ops.NewLeakyReLUOp(x, result, negSlope))
	return result
}

// Tanh applies tanh and records the operation.
func (b *Backend[B]) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Tanh(x)
	b.tape.Record(ops.NewTanhOp(x, result))
	return result
}

// Sigmoid applies the logistic sigmoid and records the operation.
func (b *Backend[B]) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sigmoid(x)
	b.tape.Record(ops.NewSigmoidOp(x, result))
	return result
}

// Conv1D performs a dilated 1-D convolution and records the operation.
//
// Conv1D must be recorded for gradients to flow back to both the signal and
// the kernel; the backward pass delegates to the wrapped backend's
// Conv1DInputBackward / Conv1DKernelBackward.
func (b *Backend[B]) Conv1D(input, kernel *tensor.RawTensor, padding, dilation int) *tensor.RawTensor {
	result := b.inner.Conv1D(input, kernel, padding, dilation)
	b.tape.Record(ops.NewConv1DOp(input, kernel, result, padding, dilation))
	return result
}

// Conv1DInputBackward delegates to the wrapped backend (not recorded; only
// invoked while the tape replays).
func (b *Backend[B]) Conv1DInputBackward(input, kernel, outputGrad *tensor.RawTensor, padding, dilation int) *tensor.RawTensor {
	return b.inner.Conv1DInputBackward(input, kernel, outputGrad, padding, dilation)
}

// Conv1DKernelBackward delegates to the wrapped backend.
func (b *Backend[B]) Conv1DKernelBackward(input, kernel, outputGrad *tensor.RawTensor, padding, dilation int) *tensor.RawTensor {
	return b.inner.Conv1DKernelBackward(input, kernel, outputGrad, padding, dilation)
}

// WeightNorm computes the effective weight and records the operation, so
// gradients reach both the direction and the gain parameters.
func (b *Backend[B]) WeightNorm(v, g *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.WeightNorm(v, g)
	b.tape.Record(ops.NewWeightNormOp(v, g, result))
	return result
}

// Stretch zero-stuffs the time axis and records the operation.
func (b *Backend[B]) Stretch(x *tensor.RawTensor, factor int) *tensor.RawTensor {
	result := b.inner.Stretch(x, factor)
	b.tape.Record(ops.NewStretchOp(x, result, factor))
	return result
}

// Spectrogram computes the magnitude STFT and records the operation.
func (b *Backend[B]) Spectrogram(x *tensor.RawTensor, fftSize, hopSize int) *tensor.RawTensor {
	result := b.inner.Spectrogram(x, fftSize, hopSize)
	b.tape.Record(ops.NewSpectrogramOp(x, result, fftSize, hopSize))
	return result
}

// Reshape reshapes a tensor and records the operation.
//
// Reshape must be recorded: without it, gradients computed for the reshaped
// view never propagate back to the original parameter (bias reshaped for
// broadcasting is the classic case).
func (b *Backend[B]) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result := b.inner.Reshape(t, newShape)
	b.tape.Record(ops.NewReshapeOp(t, result))
	return result
}

// Pad zero-pads a dimension and records the operation.
func (b *Backend[B]) Pad(x *tensor.RawTensor, dim, left, right int) *tensor.RawTensor {
	result := b.inner.Pad(x, dim, left, right)
	b.tape.Record(ops.NewPadOp(x, result, dim, left, right))
	return result
}

// Narrow slices along a dimension and records the operation.
func (b *Backend[B]) Narrow(x *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	result := b.inner.Narrow(x, dim, start, length)
	b.tape.Record(ops.NewNarrowOp(x, result, dim, start, length))
	return result
}

// Sum reduces to a single element and records the operation.
func (b *Backend[B]) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sum(x)
	b.tape.Record(ops.NewSumOp(x, result))
	return result
}

// Mean reduces to the mean and records the operation.
func (b *Backend[B]) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Mean(x)
	b.tape.Record(ops.NewMeanOp(x, result))
	return result
}

// SumDim sums along a dimension and records the operation.
func (b *Backend[B]) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	result := b.inner.SumDim(x, dim, keepDim)
	b.tape.Record(ops.NewSumDimOp(x, result, dim))
	return result
}
