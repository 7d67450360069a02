package nn

import (
	"fmt"
	"math/rand"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// AffineFlowStack chains affine flows of the inverse-autoregressive family.
// Each flow is a mel-conditioned WaveNet stack predicting a per-sample
// (mean, log-scale) pair from the flow's input; the pair at position t is a
// function of inputs at positions <= t and transforms the sample at t+1, so
// each flow emits T-1 parameter pairs for an input of length T.
//
// Applying flow k updates the signal as z <- z * sigma_k + mu_k, with the
// parameters left-padded by one position (mean 0, log-scale 0) so the first
// sample passes through unchanged. The stack also tracks the composite
// transform across all flows: the log-scales add, and the means fold as
// mu_tot <- mu_tot * sigma_k + mu_k, newest flow outermost.
type AffineFlowStack[B tensor.Backend] struct {
	flows   []*WaveNetStack[B]
	backend B
}

// NewAffineFlowStack creates numFlows chained flows sharing one stack
// configuration. OutChannels in the configuration is overridden to 2. The
// final projection of every flow is zero-initialized so the whole stack
// starts as the identity transform.
func NewAffineFlowStack[B tensor.Backend](name string, numFlows int, config StackConfig, rng *rand.Rand, backend B) *AffineFlowStack[B] {
	if numFlows <= 0 {
		panic(fmt.Sprintf("nn: AffineFlowStack needs at least one flow, got %d", numFlows))
	}
	config.OutChannels = 2
	s := &AffineFlowStack[B]{backend: backend}
	for k := 0; k < numFlows; k++ {
		flow := NewWaveNetStack(fmt.Sprintf("%s.flow%d", name, k), config, rng, backend)
		flow.FinalProjection().ZeroInit()
		s.flows = append(s.flows, flow)
	}
	return s
}

// NumFlows returns the number of chained flows.
func (s *AffineFlowStack[B]) NumFlows() int {
	return len(s.flows)
}

// Flow returns the k-th flow's stack.
func (s *AffineFlowStack[B]) Flow(k int) *WaveNetStack[B] {
	return s.flows[k]
}

// Forward pushes z [B, 1, T] through every flow under conditioning cond
// [B, C_mel, T]. It returns the transformed signal [B, 1, T] together with
// the composite mean and log-scale, each [B, 1, T-1], describing the overall
// affine map applied to samples 1..T-1.
func (s *AffineFlowStack[B]) Forward(z, cond *tensor.Tensor[float32, B]) (out, mean, logScale *tensor.Tensor[float32, B]) {
	zShape := z.Shape()
	if len(zShape) != 3 || zShape[1] != 1 {
		panic(fmt.Sprintf("nn: AffineFlowStack expects input [B,1,T], got %v", zShape))
	}
	t := zShape[2]
	if t < 2 {
		panic(fmt.Sprintf("nn: AffineFlowStack needs at least 2 samples, got %d", t))
	}

	out = z
	for _, flow := range s.flows {
		params := flow.Forward(out, cond)
		mu := params.Narrow(1, 0, 1).Narrow(2, 0, t-1)
		logSigma := params.Narrow(1, 1, 1).Narrow(2, 0, t-1)

		if mean == nil {
			mean, logScale = mu, logSigma
		} else {
			mean = mean.Mul(logSigma.Exp()).Add(mu)
			logScale = logScale.Add(logSigma)
		}

		// Shift by one position: the parameters at t act on the sample
		// at t+1, and the first sample is left untouched.
		muShift := mu.Pad(2, 1, 0)
		sigmaShift := logSigma.Pad(2, 1, 0).Exp()
		out = out.Mul(sigmaShift).Add(muShift)
	}
	return out, mean, logScale
}

// Parameters returns the stack's trainable parameters.
func (s *AffineFlowStack[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, flow := range s.flows {
		params = append(params, flow.Parameters()...)
	}
	return params
}
