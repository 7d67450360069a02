package nn_test

import (
	"math/rand"
	"testing"

	"github.com/cyandjinnie/speech-course/internal/backend/cpu"
	"github.com/cyandjinnie/speech-course/internal/nn"
	"github.com/cyandjinnie/speech-course/internal/tensor"
)

func TestCausalConv1D_PreservesLength(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1))
	conv := nn.NewCausalConv1D("c", 1, 4, 3, 2, rng, backend)

	x := tensor.Randn[float32](tensor.Shape{2, 1, 20}, rng, backend)
	out := conv.Forward(x)
	if !out.Shape().Equal(tensor.Shape{2, 4, 20}) {
		t.Fatalf("output shape %v, want [2 4 20]", out.Shape())
	}
}

func TestCausalConv1D_Causality(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(2))
	conv := nn.NewCausalConv1D("c", 1, 2, 3, 4, rng, backend)

	const T = 32
	x := tensor.Randn[float32](tensor.Shape{1, 1, T}, rng, backend)
	base := conv.Forward(x)

	for _, perturbAt := range []int{10, 20, T - 1} {
		mod := x.Clone()
		mod.Data()[perturbAt] += 5
		out := conv.Forward(mod)
		for c := 0; c < 2; c++ {
			for tt := 0; tt < perturbAt; tt++ {
				if out.At(0, c, tt) != base.At(0, c, tt) {
					t.Fatalf("output at t=%d changed after perturbing input at t=%d", tt, perturbAt)
				}
			}
			if out.At(0, c, perturbAt) == base.At(0, c, perturbAt) {
				t.Fatalf("output at t=%d unaffected by its own input", perturbAt)
			}
		}
	}
}

func TestCausalConv1D_InvalidConfigPanics(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(3))
	for _, tt := range []struct {
		name                 string
		in, out, kernel, dil int
	}{
		{"zero in channels", 0, 1, 2, 1},
		{"zero kernel", 1, 1, 0, 1},
		{"zero dilation", 1, 1, 2, 0},
	} {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			nn.NewCausalConv1D("c", tt.in, tt.out, tt.kernel, tt.dil, rng, backend)
		})
	}
}

func TestCausalConv1D_ParameterNames(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(4))
	conv := nn.NewCausalConv1D("encoder.front", 1, 8, 3, 1, rng, backend)

	want := map[string]bool{
		"encoder.front.weight_v": false,
		"encoder.front.weight_g": false,
		"encoder.front.bias":     false,
	}
	for _, p := range conv.Parameters() {
		if _, ok := want[p.Name()]; !ok {
			t.Errorf("unexpected parameter %q", p.Name())
			continue
		}
		want[p.Name()] = true
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("missing parameter %q", name)
		}
	}
}

func TestConv1x1_ZeroInitOutputsZero(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(5))
	proj := nn.NewConv1x1("p", 3, 2, rng, backend)
	proj.ZeroInit()

	x := tensor.Randn[float32](tensor.Shape{1, 3, 8}, rng, backend)
	for _, v := range proj.Forward(x).Data() {
		if v != 0 {
			t.Fatalf("zero-initialized projection produced %f", v)
		}
	}
}

func TestConv1x1_WeightNormScaling(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(6))
	proj := nn.NewConv1x1("p", 2, 2, rng, backend)

	x := tensor.Randn[float32](tensor.Shape{1, 2, 4}, rng, backend)
	base := proj.Forward(x)

	// Doubling every gain doubles the pre-bias output. The bias is zero at
	// init, so the whole output doubles.
	for _, p := range proj.Parameters() {
		if p.Name() == "p.weight_g" {
			data := p.Tensor().Data()
			for i := range data {
				data[i] *= 2
			}
		}
	}
	doubled := proj.Forward(x)
	for i, v := range base.Data() {
		got := doubled.Data()[i]
		if diff := got - 2*v; diff > 1e-5 || diff < -1e-5 {
			t.Fatalf("element %d: %f, want %f", i, got, 2*v)
		}
	}
}
