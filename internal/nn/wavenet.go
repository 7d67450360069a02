package nn

import (
	"fmt"
	"math/rand"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// StackConfig describes one mel-conditioned WaveNet stack.
type StackConfig struct {
	// MelChannels is the number of conditioning channels, at the signal's
	// time resolution (already upsampled from frame rate).
	MelChannels int
	// NumBlocks and NumLayers give the dilation schedule: each block holds
	// NumLayers gated layers with dilations 1, 2, 4, ..., 2^(NumLayers-1).
	NumBlocks int
	NumLayers int
	// OutChannels is the channel count of the final projection. Stacks that
	// predict a (mean, log-scale) pair per sample use 2.
	OutChannels int
	// FrontKernelSize is the kernel size of the undilated input convolution.
	FrontKernelSize  int
	ResidualChannels int
	GateChannels     int
	SkipChannels     int
	// KernelSize is the kernel size of the dilated filter/gate convolutions.
	KernelSize int
}

// Validate panics if the configuration cannot form a working stack.
func (c StackConfig) Validate() {
	for _, f := range []struct {
		name string
		v    int
	}{
		{"MelChannels", c.MelChannels},
		{"NumBlocks", c.NumBlocks},
		{"NumLayers", c.NumLayers},
		{"OutChannels", c.OutChannels},
		{"FrontKernelSize", c.FrontKernelSize},
		{"ResidualChannels", c.ResidualChannels},
		{"GateChannels", c.GateChannels},
		{"SkipChannels", c.SkipChannels},
		{"KernelSize", c.KernelSize},
	} {
		if f.v <= 0 {
			panic(fmt.Sprintf("nn: StackConfig.%s must be positive, got %d", f.name, f.v))
		}
	}
}

// WaveNetStack is a causal dilated convolution stack conditioned on an
// upsampled mel-spectrogram. Given a waveform [B, 1, T] and conditioning
// [B, C_mel, T] it emits per-sample features [B, OutChannels, T]: a front
// convolution lifts the signal to the residual width, the gated blocks
// accumulate skip contributions, and two ReLU-separated pointwise
// projections produce the output.
type WaveNetStack[B tensor.Backend] struct {
	front   *CausalConv1D[B]
	blocks  []*GatedResidualBlock[B]
	postA   *Conv1x1[B]
	postB   *Conv1x1[B]
	config  StackConfig
	backend B
}

// NewWaveNetStack creates a stack with the given configuration.
func NewWaveNetStack[B tensor.Backend](name string, config StackConfig, rng *rand.Rand, backend B) *WaveNetStack[B] {
	config.Validate()
	s := &WaveNetStack[B]{
		front:   NewCausalConv1D(name+".front", 1, config.ResidualChannels, config.FrontKernelSize, 1, rng, backend),
		postA:   NewConv1x1(name+".post_a", config.SkipChannels, config.SkipChannels, rng, backend),
		postB:   NewConv1x1(name+".post_b", config.SkipChannels, config.OutChannels, rng, backend),
		config:  config,
		backend: backend,
	}
	for block := 0; block < config.NumBlocks; block++ {
		for layer := 0; layer < config.NumLayers; layer++ {
			dilation := 1 << layer
			blockName := fmt.Sprintf("%s.block%d.layer%d", name, block, layer)
			s.blocks = append(s.blocks, NewGatedResidualBlock(
				blockName,
				config.ResidualChannels, config.GateChannels, config.SkipChannels,
				config.MelChannels, config.KernelSize, dilation,
				rng, backend,
			))
		}
	}
	return s
}

// Config returns the stack configuration.
func (s *WaveNetStack[B]) Config() StackConfig {
	return s.config
}

// FinalProjection returns the last pointwise layer, whose output forms the
// stack's (mean, log-scale) prediction. Flow stacks zero it at init.
func (s *WaveNetStack[B]) FinalProjection() *Conv1x1[B] {
	return s.postB
}

// Forward runs the stack on x [B, 1, T] with conditioning cond
// [B, MelChannels, T] and returns [B, OutChannels, T].
func (s *WaveNetStack[B]) Forward(x, cond *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	xShape, cShape := x.Shape(), cond.Shape()
	if len(xShape) != 3 || xShape[1] != 1 {
		panic(fmt.Sprintf("nn: WaveNetStack expects input [B,1,T], got %v", xShape))
	}
	if len(cShape) != 3 || cShape[1] != s.config.MelChannels {
		panic(fmt.Sprintf("nn: WaveNetStack expects conditioning [B,%d,T], got %v", s.config.MelChannels, cShape))
	}
	if xShape[0] != cShape[0] || xShape[2] != cShape[2] {
		panic(fmt.Sprintf("nn: WaveNetStack input %v and conditioning %v disagree on batch or time", xShape, cShape))
	}

	h := s.front.Forward(x).ReLU()
	var skipSum *tensor.Tensor[float32, B]
	for _, block := range s.blocks {
		var skip *tensor.Tensor[float32, B]
		h, skip = block.Forward(h, cond)
		if skipSum == nil {
			skipSum = skip
		} else {
			skipSum = skipSum.Add(skip)
		}
	}
	out := s.postA.Forward(skipSum.ReLU()).ReLU()
	return s.postB.Forward(out)
}

// Parameters returns the stack's trainable parameters.
func (s *WaveNetStack[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	params = append(params, s.front.Parameters()...)
	for _, block := range s.blocks {
		params = append(params, block.Parameters()...)
	}
	params = append(params, s.postA.Parameters()...)
	params = append(params, s.postB.Parameters()...)
	return params
}
