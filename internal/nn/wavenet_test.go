package nn_test

import (
	"math/rand"
	"testing"

	"github.com/cyandjinnie/speech-course/internal/backend/cpu"
	"github.com/cyandjinnie/speech-course/internal/nn"
	"github.com/cyandjinnie/speech-course/internal/tensor"
)

func testStackConfig(outChannels int) nn.StackConfig {
	return nn.StackConfig{
		MelChannels:      4,
		NumBlocks:        2,
		NumLayers:        3,
		OutChannels:      outChannels,
		FrontKernelSize:  5,
		ResidualChannels: 6,
		GateChannels:     8,
		SkipChannels:     6,
		KernelSize:       2,
	}
}

func TestWaveNetStack_OutputShape(t *testing.T) {
	backend := cpu.New()
	for _, outChannels := range []int{2, 3} {
		rng := rand.New(rand.NewSource(1))
		stack := nn.NewWaveNetStack("s", testStackConfig(outChannels), rng, backend)

		for _, tt := range []struct{ b, time int }{{1, 2}, {2, 16}, {1, 64}} {
			x := tensor.Randn[float32](tensor.Shape{tt.b, 1, tt.time}, rng, backend)
			cond := tensor.Randn[float32](tensor.Shape{tt.b, 4, tt.time}, rng, backend)
			out := stack.Forward(x, cond)
			want := tensor.Shape{tt.b, outChannels, tt.time}
			if !out.Shape().Equal(want) {
				t.Fatalf("C_out=%d B=%d T=%d: output shape %v, want %v",
					outChannels, tt.b, tt.time, out.Shape(), want)
			}
		}
	}
}

func TestWaveNetStack_Causality(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(2))
	stack := nn.NewWaveNetStack("s", testStackConfig(2), rng, backend)

	const T = 24
	x := tensor.Randn[float32](tensor.Shape{1, 1, T}, rng, backend)
	cond := tensor.Randn[float32](tensor.Shape{1, 4, T}, rng, backend)
	base := stack.Forward(x, cond)

	perturbAt := 15
	mod := x.Clone()
	mod.Data()[perturbAt] += 3
	out := stack.Forward(mod, cond)
	for c := 0; c < 2; c++ {
		for tt := 0; tt < perturbAt; tt++ {
			if out.At(0, c, tt) != base.At(0, c, tt) {
				t.Fatalf("output at t=%d changed after perturbing input at t=%d", tt, perturbAt)
			}
		}
	}
}

func TestWaveNetStack_ShapeMismatchPanics(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(3))
	stack := nn.NewWaveNetStack("s", testStackConfig(2), rng, backend)

	tests := []struct {
		name string
		x    tensor.Shape
		cond tensor.Shape
	}{
		{"wrong input channels", tensor.Shape{1, 2, 8}, tensor.Shape{1, 4, 8}},
		{"wrong mel channels", tensor.Shape{1, 1, 8}, tensor.Shape{1, 3, 8}},
		{"time mismatch", tensor.Shape{1, 1, 8}, tensor.Shape{1, 4, 9}},
		{"batch mismatch", tensor.Shape{1, 1, 8}, tensor.Shape{2, 4, 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			x := tensor.Zeros[float32](tt.x, backend)
			cond := tensor.Zeros[float32](tt.cond, backend)
			stack.Forward(x, cond)
		})
	}
}

func TestStackConfig_ValidatePanics(t *testing.T) {
	config := testStackConfig(2)
	config.NumBlocks = 0
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for zero blocks")
		}
	}()
	backend := cpu.New()
	nn.NewWaveNetStack("s", config, rand.New(rand.NewSource(4)), backend)
}

func TestWaveNetStack_ParameterCount(t *testing.T) {
	backend := cpu.New()
	config := testStackConfig(2)
	stack := nn.NewWaveNetStack("s", config, rand.New(rand.NewSource(5)), backend)

	// front + post_a + post_b plus 6 projections per gated layer, with a
	// weight_v/weight_g/bias triple each.
	layers := config.NumBlocks * config.NumLayers
	want := (3 + 6*layers) * 3
	if got := len(stack.Parameters()); got != want {
		t.Errorf("parameter count %d, want %d", got, want)
	}
}
