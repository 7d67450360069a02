package nn

import (
	"fmt"
	"math/rand"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// Conditioner turns frame-rate conditioning features into sample-rate ones.
type Conditioner[B tensor.Backend] interface {
	Module[B]
	// Upsample maps [B, C, frames] to [B, C, frames*Factor()].
	Upsample(mel *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]
	// Factor returns the total time-axis upsampling factor.
	Factor() int
}

const (
	upsampleStageFactor = 16
	upsampleKernelSize  = 2*upsampleStageFactor + 1
)

type upsampleStage[B tensor.Backend] struct {
	weightV *Parameter[B]
	weightG *Parameter[B]
	bias    *Parameter[B]
}

// ConditioningUpsampler brings a mel-spectrogram from frame rate to sample
// rate with two x16 stages, a x256 factor overall to match a 256-sample hop.
// Each stage zero-stuffs the time axis, smooths it with a weight-normalized
// convolution wide enough to cover the inserted zeros on both sides, and
// applies a leaky rectifier.
type ConditioningUpsampler[B tensor.Backend] struct {
	stages   []upsampleStage[B]
	channels int
	backend  B
}

// NewConditioningUpsampler creates the two-stage upsampler for conditioning
// signals with the given channel count.
func NewConditioningUpsampler[B tensor.Backend](name string, channels int, rng *rand.Rand, backend B) *ConditioningUpsampler[B] {
	if channels <= 0 {
		panic(fmt.Sprintf("nn: ConditioningUpsampler channels must be positive, got %d", channels))
	}
	u := &ConditioningUpsampler[B]{channels: channels, backend: backend}
	for i := 0; i < 2; i++ {
		shape := tensor.Shape{channels, channels, upsampleKernelSize}
		fanIn, fanOut := convFans(shape)
		v := xavierUniform[B](shape, fanIn, fanOut, rng, backend)
		stageName := fmt.Sprintf("%s.stage%d", name, i)
		u.stages = append(u.stages, upsampleStage[B]{
			weightV: NewParameter(stageName+".weight_v", v),
			weightG: NewParameter(stageName+".weight_g", weightNormGain(v, backend)),
			bias:    NewParameter(stageName+".bias", tensor.Zeros[float32](tensor.Shape{channels}, backend)),
		})
	}
	return u
}

// Factor returns the total upsampling factor.
func (u *ConditioningUpsampler[B]) Factor() int {
	return upsampleStageFactor * upsampleStageFactor
}

// Upsample maps mel [B, C, frames] to [B, C, frames*256].
func (u *ConditioningUpsampler[B]) Upsample(mel *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := mel.Shape()
	if len(shape) != 3 || shape[1] != u.channels {
		panic(fmt.Sprintf("nn: ConditioningUpsampler expects input [B,%d,frames], got %v", u.channels, shape))
	}
	h := mel
	for _, stage := range u.stages {
		h = h.Stretch(upsampleStageFactor)
		w := stage.weightV.Tensor().WeightNorm(stage.weightG.Tensor())
		h = h.Conv1D(w, upsampleStageFactor, 1)
		biased := stage.bias.Tensor().Reshape(1, u.channels, 1)
		h = h.Add(biased).LeakyReLU(0.4)
	}
	return h
}

// Parameters returns the upsampler's trainable parameters.
func (u *ConditioningUpsampler[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, stage := range u.stages {
		params = append(params, stage.weightV, stage.weightG, stage.bias)
	}
	return params
}
