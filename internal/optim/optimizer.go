// Package optim implements gradient-descent optimizers for the vocoder's
// parameters. Both optimizers consume the gradient map produced by the
// autodiff backward pass, keyed by the parameter's raw tensor, and update
// parameter storage in place between passes.
package optim

import (
	"github.com/cyandjinnie/speech-course/internal/nn"
	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// Optimizer updates parameters from a gradient map.
type Optimizer interface {
	// Step applies one update. Parameters absent from the gradient map
	// (not reached by the recorded forward pass) are skipped.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears stored parameter gradients before the next pass.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32
}

func gradientFor[B tensor.Backend](param *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) *tensor.RawTensor {
	if param == nil {
		return nil
	}
	return grads[param.Tensor().Raw()]
}
