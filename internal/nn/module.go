// Package nn implements the neural network layers of the WaveVAE vocoder:
//   - Parameter: named trainable tensor
//   - CausalConv1D / Conv1x1: weight-normalized convolutions
//   - GatedResidualBlock: one WaveNet residual unit
//   - WaveNetStack: dilated-causal-convolution network with a parameter head
//   - AffineFlowStack: composed inverse-autoregressive affine flows
//   - ConditioningUpsampler: mel-rate to audio-rate interpolation
//
// Layers are plain structs over the generic tensor API; role differences
// (encoder vs decoder stage vs shape smoke-test) are expressed purely
// through configuration, never subtyping.
package nn

import "github.com/cyandjinnie/speech-course/internal/tensor"

// Module is the base interface for all network components.
//
// Forward signatures differ per layer (most vocoder layers take a signal
// and a conditioning tensor), so the interface only standardizes parameter
// discovery, which checkpointing and optimizers build on.
type Module[B tensor.Backend] interface {
	// Parameters returns all trainable parameters of this module,
	// including nested module parameters.
	Parameters() []*Parameter[B]
}
