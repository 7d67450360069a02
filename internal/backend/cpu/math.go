package cpu

import (
	"math"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// unaryOp implements an element-wise unary map.
func (cpu *Backend) unaryOp(name string, x *tensor.RawTensor, f func(float64) float64) *tensor.RawTensor {
	result := newResult(x.Shape(), x.DType(), cpu.device, name)

	switch x.DType() {
	case tensor.Float32:
		xd, rd := x.AsFloat32(), result.AsFloat32()
		for i, v := range xd {
			rd[i] = float32(f(float64(v)))
		}
	case tensor.Float64:
		xd, rd := x.AsFloat64(), result.AsFloat64()
		for i, v := range xd {
			rd[i] = f(v)
		}
	}
	return result
}

// AddScalar adds a scalar to every element.
func (cpu *Backend) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return cpu.unaryOp("add_scalar", x, func(v float64) float64 { return v + scalar })
}

// MulScalar multiplies every element by a scalar.
func (cpu *Backend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return cpu.unaryOp("mul_scalar", x, func(v float64) float64 { return v * scalar })
}

// Exp computes the element-wise exponential.
func (cpu *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("exp", x, math.Exp)
}

// Log computes the element-wise natural logarithm.
func (cpu *Backend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("log", x, math.Log)
}

// Sqrt computes the element-wise square root.
func (cpu *Backend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("sqrt", x, math.Sqrt)
}

// ReLU applies max(0, x) element-wise.
func (cpu *Backend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("relu", x, func(v float64) float64 {
		if v > 0 {
			return v
		}
		return 0
	})
}

// LeakyReLU applies x for x > 0 and negSlope*x otherwise.
func (cpu *Backend) LeakyReLU(x *tensor.RawTensor, negSlope float64) *tensor.RawTensor {
	return cpu.unaryOp("leaky_relu", x, func(v float64) float64 {
		if v > 0 {
			return v
		}
		return negSlope * v
	})
}

// Tanh applies the hyperbolic tangent element-wise.
func (cpu *Backend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("tanh", x, math.Tanh)
}

// Sigmoid applies 1/(1+exp(-x)) element-wise.
func (cpu *Backend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("sigmoid", x, func(v float64) float64 {
		return 1.0 / (1.0 + math.Exp(-v))
	})
}
