package nn

import (
	"math"
	"math/rand"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// GatedResidualBlock is one layer of a WaveNet stack: a pair of dilated
// causal convolutions (filter and gate), conditioning projections added to
// each branch, a tanh*sigmoid gate, and pointwise projections back to the
// residual and skip channels.
type GatedResidualBlock[B tensor.Backend] struct {
	filter     *CausalConv1D[B]
	gate       *CausalConv1D[B]
	condFilter *Conv1x1[B]
	condGate   *Conv1x1[B]
	resProj    *Conv1x1[B]
	skipProj   *Conv1x1[B]
}

// NewGatedResidualBlock creates a gated block. The dilation grows with the
// layer index in the enclosing stack; conditioning comes in with condChannels
// channels at the same time resolution as the signal.
func NewGatedResidualBlock[B tensor.Backend](name string, residualChannels, gateChannels, skipChannels, condChannels, kernelSize, dilation int, rng *rand.Rand, backend B) *GatedResidualBlock[B] {
	return &GatedResidualBlock[B]{
		filter:     NewCausalConv1D(name+".filter", residualChannels, gateChannels, kernelSize, dilation, rng, backend),
		gate:       NewCausalConv1D(name+".gate", residualChannels, gateChannels, kernelSize, dilation, rng, backend),
		condFilter: NewConv1x1(name+".cond_filter", condChannels, gateChannels, rng, backend),
		condGate:   NewConv1x1(name+".cond_gate", condChannels, gateChannels, rng, backend),
		resProj:    NewConv1x1(name+".res_proj", gateChannels, residualChannels, rng, backend),
		skipProj:   NewConv1x1(name+".skip_proj", gateChannels, skipChannels, rng, backend),
	}
}

// Forward runs the block on x [B, C_res, T] with conditioning cond
// [B, C_cond, T]. It returns the residual output (same shape as x) and the
// skip contribution [B, C_skip, T]. The incoming stream is scaled by
// sqrt(0.5) before the projection is added, keeping activation variance
// stable across layers.
func (b *GatedResidualBlock[B]) Forward(x, cond *tensor.Tensor[float32, B]) (residual, skip *tensor.Tensor[float32, B]) {
	f := b.filter.Forward(x).Add(b.condFilter.Forward(cond))
	g := b.gate.Forward(x).Add(b.condGate.Forward(cond))
	gated := f.Tanh().Mul(g.Sigmoid())
	residual = x.MulScalar(math.Sqrt(0.5)).Add(b.resProj.Forward(gated))
	skip = b.skipProj.Forward(gated)
	return residual, skip
}

// Parameters returns the block's trainable parameters.
func (b *GatedResidualBlock[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	params = append(params, b.filter.Parameters()...)
	params = append(params, b.gate.Parameters()...)
	params = append(params, b.condFilter.Parameters()...)
	params = append(params, b.condGate.Parameters()...)
	params = append(params, b.resProj.Parameters()...)
	params = append(params, b.skipProj.Parameters()...)
	return params
}
