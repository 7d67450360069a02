package tensor

// Method API mirroring the Backend op set. Every method dispatches through
// the tensor's backend, so the same call sites work for plain CPU execution
// and for tape-recorded autodiff execution.

// Add performs element-wise addition with broadcasting.
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Add(t.raw, other.raw), t.backend)
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor[T, B]) Sub(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Sub(t.raw, other.raw), t.backend)
}

// Mul performs element-wise multiplication with broadcasting.
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Mul(t.raw, other.raw), t.backend)
}

// Div performs element-wise division with broadcasting.
func (t *Tensor[T, B]) Div(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Div(t.raw, other.raw), t.backend)
}

// AddScalar adds a scalar to every element.
func (t *Tensor[T, B]) AddScalar(scalar float64) *Tensor[T, B] {
	return New[T, B](t.backend.AddScalar(t.raw, scalar), t.backend)
}

// MulScalar multiplies every element by a scalar.
func (t *Tensor[T, B]) MulScalar(scalar float64) *Tensor[T, B] {
	return New[T, B](t.backend.MulScalar(t.raw, scalar), t.backend)
}

// Exp computes the element-wise exponential.
func (t *Tensor[T, B]) Exp() *Tensor[T, B] {
	return New[T, B](t.backend.Exp(t.raw), t.backend)
}

// Log computes the element-wise natural logarithm.
func (t *Tensor[T, B]) Log() *Tensor[T, B] {
	return New[T, B](t.backend.Log(t.raw), t.backend)
}

// Sqrt computes the element-wise square root.
func (t *Tensor[T, B]) Sqrt() *Tensor[T, B] {
	return New[T, B](t.backend.Sqrt(t.raw), t.backend)
}

// ReLU applies the rectified linear unit.
func (t *Tensor[T, B]) ReLU() *Tensor[T, B] {
	return New[T, B](t.backend.ReLU(t.raw), t.backend)
}

// LeakyReLU applies a leaky rectification with the given negative slope.
func (t *Tensor[T, B]) LeakyReLU(negSlope float64) *Tensor[T, B] {
	return New[T, B](t.backend.LeakyReLU(t.raw, negSlope), t.backend)
}

// Tanh applies the hyperbolic tangent.
func (t *Tensor[T, B]) Tanh() *Tensor[T, B] {
	return New[T, B](t.backend.Tanh(t.raw), t.backend)
}

// Sigmoid applies the logistic sigmoid.
func (t *Tensor[T, B]) Sigmoid() *Tensor[T, B] {
	return New[T, B](t.backend.Sigmoid(t.raw), t.backend)
}

// Reshape returns a tensor with the same data and a new shape.
func (t *Tensor[T, B]) Reshape(newShape ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Reshape(t.raw, Shape(newShape)), t.backend)
}

// Pad zero-pads the given dimension.
func (t *Tensor[T, B]) Pad(dim, left, right int) *Tensor[T, B] {
	return New[T, B](t.backend.Pad(t.raw, dim, left, right), t.backend)
}

// Narrow slices length elements starting at start along dim.
func (t *Tensor[T, B]) Narrow(dim, start, length int) *Tensor[T, B] {
	return New[T, B](t.backend.Narrow(t.raw, dim, start, length), t.backend)
}

// Stretch zero-stuffs the time axis by factor.
func (t *Tensor[T, B]) Stretch(factor int) *Tensor[T, B] {
	return New[T, B](t.backend.Stretch(t.raw, factor), t.backend)
}

// Conv1D convolves the tensor [B,C_in,T] with kernel [C_out,C_in,K].
func (t *Tensor[T, B]) Conv1D(kernel *Tensor[T, B], padding, dilation int) *Tensor[T, B] {
	return New[T, B](t.backend.Conv1D(t.raw, kernel.raw, padding, dilation), t.backend)
}

// WeightNorm treats the tensor as a direction v and computes g*v/||v|| with
// the norm taken per leading-dimension row.
func (t *Tensor[T, B]) WeightNorm(g *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.WeightNorm(t.raw, g.raw), t.backend)
}

// Spectrogram computes a Hann-windowed magnitude STFT.
func (t *Tensor[T, B]) Spectrogram(fftSize, hopSize int) *Tensor[T, B] {
	return New[T, B](t.backend.Spectrogram(t.raw, fftSize, hopSize), t.backend)
}

// Sum reduces all elements to a single-element tensor.
func (t *Tensor[T, B]) Sum() *Tensor[T, B] {
	return New[T, B](t.backend.Sum(t.raw), t.backend)
}

// Mean reduces all elements to their mean as a single-element tensor.
func (t *Tensor[T, B]) Mean() *Tensor[T, B] {
	return New[T, B](t.backend.Mean(t.raw), t.backend)
}

// SumDim sums along a single dimension.
func (t *Tensor[T, B]) SumDim(dim int, keepDim bool) *Tensor[T, B] {
	return New[T, B](t.backend.SumDim(t.raw, dim, keepDim), t.backend)
}
