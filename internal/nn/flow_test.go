package nn_test

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/cyandjinnie/speech-course/internal/backend/cpu"
	"github.com/cyandjinnie/speech-course/internal/nn"
	"github.com/cyandjinnie/speech-course/internal/tensor"
)

func TestAffineFlowStack_Shapes(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1))
	stack := nn.NewAffineFlowStack("d", 3, testStackConfig(2), rng, backend)

	const B, T = 2, 16
	z := tensor.Randn[float32](tensor.Shape{B, 1, T}, rng, backend)
	cond := tensor.Randn[float32](tensor.Shape{B, 4, T}, rng, backend)
	out, mean, logScale := stack.Forward(z, cond)

	if !out.Shape().Equal(tensor.Shape{B, 1, T}) {
		t.Errorf("sample shape %v, want [%d 1 %d]", out.Shape(), B, T)
	}
	if !mean.Shape().Equal(tensor.Shape{B, 1, T - 1}) {
		t.Errorf("mean shape %v, want [%d 1 %d]", mean.Shape(), B, T-1)
	}
	if !logScale.Shape().Equal(tensor.Shape{B, 1, T - 1}) {
		t.Errorf("log-scale shape %v, want [%d 1 %d]", logScale.Shape(), B, T-1)
	}
}

// A freshly constructed stack has zeroed final projections, so every flow
// emits (0, 0) and the whole stack is the identity transform.
func TestAffineFlowStack_IdentityAtInit(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(2))
	stack := nn.NewAffineFlowStack("d", 2, testStackConfig(2), rng, backend)

	z := tensor.Randn[float32](tensor.Shape{1, 1, 12}, rng, backend)
	cond := tensor.Randn[float32](tensor.Shape{1, 4, 12}, rng, backend)
	out, mean, logScale := stack.Forward(z, cond)

	for i, v := range out.Data() {
		if v != z.Data()[i] {
			t.Fatalf("sample %d changed: %f -> %f", i, z.Data()[i], v)
		}
	}
	for i, v := range mean.Data() {
		if v != 0 {
			t.Fatalf("composite mean[%d] = %f, want 0", i, v)
		}
	}
	for i, v := range logScale.Data() {
		if v != 0 {
			t.Fatalf("composite log-scale[%d] = %f, want 0", i, v)
		}
	}
}

// setConstantHead makes a flow emit a fixed (mean, log-scale) pair at every
// position: the final projection's weights are zero after construction, so
// setting its bias fixes the output regardless of the flow's input.
func setConstantHead[B tensor.Backend](t *testing.T, flow *nn.WaveNetStack[B], mu, logSigma float32) {
	t.Helper()
	for _, p := range flow.FinalProjection().Parameters() {
		if strings.HasSuffix(p.Name(), ".bias") {
			p.Tensor().Data()[0] = mu
			p.Tensor().Data()[1] = logSigma
			return
		}
	}
	t.Fatal("final projection has no bias parameter")
}

func TestAffineFlowStack_CompositionLaw(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(3))
	stack := nn.NewAffineFlowStack("d", 2, testStackConfig(2), rng, backend)

	const (
		mu1, logSigma1 = 0.3, 0.2
		mu2, logSigma2 = -0.5, -0.4
	)
	setConstantHead(t, stack.Flow(0), mu1, logSigma1)
	setConstantHead(t, stack.Flow(1), mu2, logSigma2)

	const T = 10
	z := tensor.Randn[float32](tensor.Shape{1, 1, T}, rng, backend)
	cond := tensor.Randn[float32](tensor.Shape{1, 4, T}, rng, backend)
	out, mean, logScale := stack.Forward(z, cond)

	sigma2 := math.Exp(logSigma2)
	wantMean := mu1*float32(sigma2) + mu2
	wantLogScale := float32(logSigma1 + logSigma2)
	for i := range mean.Data() {
		if d := math.Abs(float64(mean.Data()[i] - wantMean)); d > 1e-5 {
			t.Fatalf("composite mean[%d] = %f, want %f", i, mean.Data()[i], wantMean)
		}
		if d := math.Abs(float64(logScale.Data()[i] - wantLogScale)); d > 1e-5 {
			t.Fatalf("composite log-scale[%d] = %f, want %f", i, logScale.Data()[i], wantLogScale)
		}
	}

	// The first sample passes through both flows untouched; later samples
	// follow z*sigma_tot + mu_tot with the composite parameters.
	if out.At(0, 0, 0) != z.At(0, 0, 0) {
		t.Errorf("first sample transformed: %f -> %f", z.At(0, 0, 0), out.At(0, 0, 0))
	}
	sigmaTot := math.Exp(float64(wantLogScale))
	for i := 1; i < T; i++ {
		want := float64(z.At(0, 0, i))*sigmaTot + float64(wantMean)
		if d := math.Abs(float64(out.At(0, 0, i)) - want); d > 1e-5 {
			t.Fatalf("sample %d = %f, want %f", i, out.At(0, 0, i), want)
		}
	}
}

func TestAffineFlowStack_ZeroFlowsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for zero flows")
		}
	}()
	backend := cpu.New()
	nn.NewAffineFlowStack("d", 0, testStackConfig(2), rand.New(rand.NewSource(4)), backend)
}

func TestAffineFlowStack_ShortInputPanics(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(5))
	stack := nn.NewAffineFlowStack("d", 1, testStackConfig(2), rng, backend)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for T < 2")
		}
	}()
	z := tensor.Zeros[float32](tensor.Shape{1, 1, 1}, backend)
	cond := tensor.Zeros[float32](tensor.Shape{1, 4, 1}, backend)
	stack.Forward(z, cond)
}
