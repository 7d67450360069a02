package tensor

// Backend defines the interface that compute backends must implement.
//
// The op set is exactly what the vocoder's forward and backward passes need:
// broadcast elementwise arithmetic, pointwise math, dilated 1-D convolution,
// the zero-stuffing stretch used by the conditioning upsampler, and the
// magnitude spectrogram used by the frame losses.
//
// Implementations:
//   - cpu: pure Go reference implementation
//   - autodiff: decorator that wraps another backend and records a tape
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Scalar operations.
	AddScalar(x *RawTensor, scalar float64) *RawTensor
	MulScalar(x *RawTensor, scalar float64) *RawTensor

	// Element-wise math.
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	Sqrt(x *RawTensor) *RawTensor

	// Activations.
	ReLU(x *RawTensor) *RawTensor
	LeakyReLU(x *RawTensor, negSlope float64) *RawTensor
	Tanh(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor

	// Conv1D performs a stride-1 dilated 1-D convolution.
	// input [B, C_in, T], kernel [C_out, C_in, K], zero padding on both ends.
	// Output time length is T + 2*padding - dilation*(K-1).
	Conv1D(input, kernel *RawTensor, padding, dilation int) *RawTensor
	// Conv1DInputBackward computes d(loss)/d(input) for Conv1D.
	Conv1DInputBackward(input, kernel, outputGrad *RawTensor, padding, dilation int) *RawTensor
	// Conv1DKernelBackward computes d(loss)/d(kernel) for Conv1D.
	Conv1DKernelBackward(input, kernel, outputGrad *RawTensor, padding, dilation int) *RawTensor

	// WeightNorm computes the effective convolution weight from a direction
	// tensor v [C_out, ...] and per-output-channel gains g [C_out]:
	// w[o] = g[o] * v[o] / ||v[o]||, with the norm taken over all trailing dims.
	WeightNorm(v, g *RawTensor) *RawTensor

	// Stretch zero-stuffs the time axis by the given factor:
	// [B, C, T] -> [B, C, T*factor] with input values at multiples of factor.
	Stretch(x *RawTensor, factor int) *RawTensor

	// Spectrogram computes a Hann-windowed magnitude STFT of audio [B, 1, T],
	// returning [B, fftSize/2+1, frames] with frames = 1 + (T-fftSize)/hopSize.
	Spectrogram(x *RawTensor, fftSize, hopSize int) *RawTensor

	// Shape manipulation.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	// Pad zero-pads the given dimension by left/right elements.
	Pad(x *RawTensor, dim, left, right int) *RawTensor
	// Narrow slices length elements starting at start along dim.
	Narrow(x *RawTensor, dim, start, length int) *RawTensor

	// Reductions.
	Sum(x *RawTensor) *RawTensor
	Mean(x *RawTensor) *RawTensor
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}
