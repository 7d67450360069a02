package ops

import (
	"fmt"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// reduceBroadcast reduces a gradient tensor to match the target shape,
// undoing any broadcasting performed in the forward pass.
//
// Example:
//
//	forward:  bias[1,C,1] + x[B,C,T] -> y[B,C,T]
//	backward: grad_y[B,C,T] -> grad_bias[1,C,1] (summed over B and T)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	gradShape := grad.Shape()
	if gradShape.Equal(targetShape) {
		return grad
	}

	result := grad

	// Sum away leading dimensions the target does not have.
	for len(result.Shape()) > len(targetShape) {
		result = backend.SumDim(result, 0, false)
	}

	// Sum along dimensions where the target is 1.
	for i := 0; i < len(targetShape); i++ {
		if targetShape[i] == 1 && result.Shape()[i] > 1 {
			result = backend.SumDim(result, i, true)
		}
	}

	if !result.Shape().Equal(targetShape) {
		result = backend.Reshape(result, targetShape)
	}
	return result
}

// zerosLike allocates a zero gradient matching the given tensor.
func zerosLike(t *tensor.RawTensor, device tensor.Device) *tensor.RawTensor {
	result, err := tensor.NewRaw(t.Shape().Clone(), t.DType(), device)
	if err != nil {
		panic(fmt.Sprintf("ops: failed to allocate gradient: %v", err))
	}
	return result
}
