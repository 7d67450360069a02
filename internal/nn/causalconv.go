package nn

import (
	"fmt"
	"math/rand"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// CausalConv1D is a dilated 1D convolution whose output at time t depends
// only on inputs at times <= t. Causality is achieved by left-padding the
// input with dilation*(kernelSize-1) zeros before an unpadded convolution,
// which keeps the output length equal to the input length.
//
// The weight is parameterized with weight normalization: w = g * v / ||v||,
// with the norm taken per output channel.
type CausalConv1D[B tensor.Backend] struct {
	weightV  *Parameter[B]
	weightG  *Parameter[B]
	bias     *Parameter[B]
	dilation int
	kernel   int
	backend  B
}

// NewCausalConv1D creates a causal convolution layer. The name prefixes the
// parameter names, e.g. "encoder.block0.filter".
func NewCausalConv1D[B tensor.Backend](name string, inChannels, outChannels, kernelSize, dilation int, rng *rand.Rand, backend B) *CausalConv1D[B] {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("nn: CausalConv1D %q channels must be positive, got in=%d out=%d", name, inChannels, outChannels))
	}
	if kernelSize <= 0 || dilation <= 0 {
		panic(fmt.Sprintf("nn: CausalConv1D %q kernel size and dilation must be positive, got kernel=%d dilation=%d", name, kernelSize, dilation))
	}
	shape := tensor.Shape{outChannels, inChannels, kernelSize}
	fanIn, fanOut := convFans(shape)
	v := xavierUniform[B](shape, fanIn, fanOut, rng, backend)
	g := weightNormGain(v, backend)
	b := tensor.Zeros[float32](tensor.Shape{outChannels}, backend)
	return &CausalConv1D[B]{
		weightV:  NewParameter(name+".weight_v", v),
		weightG:  NewParameter(name+".weight_g", g),
		bias:     NewParameter(name+".bias", b),
		dilation: dilation,
		kernel:   kernelSize,
		backend:  backend,
	}
}

// Forward applies the causal convolution to x of shape [B, C_in, T] and
// returns [B, C_out, T].
func (c *CausalConv1D[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	pad := c.dilation * (c.kernel - 1)
	padded := x.Pad(2, pad, 0)
	w := c.weightV.Tensor().WeightNorm(c.weightG.Tensor())
	out := padded.Conv1D(w, 0, c.dilation)
	outC := c.bias.Tensor().Shape()[0]
	biased := c.bias.Tensor().Reshape(1, outC, 1)
	return out.Add(biased)
}

// Parameters returns the layer's trainable parameters.
func (c *CausalConv1D[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{c.weightV, c.weightG, c.bias}
}

// Conv1x1 is a pointwise (kernel size 1) weight-normalized convolution used
// for channel projections in the conditioning, skip, and output paths.
type Conv1x1[B tensor.Backend] struct {
	weightV *Parameter[B]
	weightG *Parameter[B]
	bias    *Parameter[B]
	backend B
}

// NewConv1x1 creates a pointwise projection layer.
func NewConv1x1[B tensor.Backend](name string, inChannels, outChannels int, rng *rand.Rand, backend B) *Conv1x1[B] {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("nn: Conv1x1 %q channels must be positive, got in=%d out=%d", name, inChannels, outChannels))
	}
	shape := tensor.Shape{outChannels, inChannels, 1}
	v := xavierUniform[B](shape, inChannels, outChannels, rng, backend)
	g := weightNormGain(v, backend)
	b := tensor.Zeros[float32](tensor.Shape{outChannels}, backend)
	return &Conv1x1[B]{
		weightV: NewParameter(name+".weight_v", v),
		weightG: NewParameter(name+".weight_g", g),
		bias:    NewParameter(name+".bias", b),
		backend: backend,
	}
}

// Forward applies the projection to x of shape [B, C_in, T].
func (c *Conv1x1[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	w := c.weightV.Tensor().WeightNorm(c.weightG.Tensor())
	out := x.Conv1D(w, 0, 1)
	outC := c.bias.Tensor().Shape()[0]
	biased := c.bias.Tensor().Reshape(1, outC, 1)
	return out.Add(biased)
}

// ZeroInit zeroes the weight-norm gain and the bias so the layer initially
// outputs zero. The direction tensor stays at its random init, which keeps
// the weight-norm denominator nonzero. The final projection of a flow stack
// uses this so each flow begins as the identity transform.
func (c *Conv1x1[B]) ZeroInit() {
	for _, data := range [][]float32{
		c.weightG.Tensor().Data(),
		c.bias.Tensor().Data(),
	} {
		for i := range data {
			data[i] = 0
		}
	}
}

// Parameters returns the layer's trainable parameters.
func (c *Conv1x1[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{c.weightV, c.weightG, c.bias}
}
