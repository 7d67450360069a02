// Package cpu implements the reference CPU backend for the vocoder op set.
package cpu

import (
	"fmt"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// Backend implements tensor operations in pure Go.
//
// Operations never modify their inputs: the autodiff decorator keys
// gradients by RawTensor pointer and relies on operand buffers staying
// intact across the whole forward pass.
type Backend struct {
	device tensor.Device
}

// New creates a new CPU backend.
func New() *Backend {
	return &Backend{device: tensor.CPU}
}

// Name returns the backend name.
func (cpu *Backend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *Backend) Device() tensor.Device {
	return cpu.device
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *Backend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("add", a, b,
		func(x, y float32) float32 { return x + y },
		func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *Backend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("sub", a, b,
		func(x, y float32) float32 { return x - y },
		func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *Backend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("mul", a, b,
		func(x, y float32) float32 { return x * y },
		func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with broadcasting.
//
// Division by zero yields Inf/NaN which propagates to the loss; the design
// surfaces non-finite values instead of clamping them.
func (cpu *Backend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("div", a, b,
		func(x, y float32) float32 { return x / y },
		func(x, y float64) float64 { return x / y })
}

// Reshape returns a view of the same data under a new shape.
func (cpu *Backend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result, err := t.WithShape(newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}

func newResult(shape tensor.Shape, dtype tensor.DataType, device tensor.Device, op string) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}
