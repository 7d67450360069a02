package autodiff

import (
	"fmt"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// BackwardCapable is a backend that owns a gradient tape.
type BackwardCapable interface {
	tensor.Backend
	GetTape() *GradientTape
}

// GetTape returns the gradient tape (implements BackwardCapable).
func (b *Backend[B]) GetTape() *GradientTape {
	return b.tape
}

// Backward computes gradients of t with respect to everything on the tape.
//
// The output gradient is initialized to ones, so t is normally a scalar
// loss. Returns a map from RawTensor to its gradient.
//
// t must be the output of the LAST operation recorded on the tape: the walk
// seeds the gradient at that operation's output, so differentiating any
// earlier intermediate silently yields gradients for the final output
// instead. Compute the loss last, or Clear() and re-run the forward pass up
// to the tensor of interest.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.GetTape().StartRecording()
//	losses := model.Forward(x, mel, noise, alpha)
//	grads := autodiff.Backward(losses.Total, backend)
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	tape := backend.GetTape()
	if tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}

	outputGrad, err := tensor.NewRaw(t.Shape(), t.DType(), backend.Device())
	if err != nil {
		panic(fmt.Sprintf("backward: failed to create output gradient: %v", err))
	}

	switch t.DType() {
	case tensor.Float32:
		data := outputGrad.AsFloat32()
		for i := range data {
			data[i] = 1.0
		}
	case tensor.Float64:
		data := outputGrad.AsFloat64()
		for i := range data {
			data[i] = 1.0
		}
	}

	return tape.Backward(outputGrad, backend)
}
