package nn_test

import (
	"math/rand"
	"testing"

	"github.com/cyandjinnie/speech-course/internal/backend/cpu"
	"github.com/cyandjinnie/speech-course/internal/nn"
	"github.com/cyandjinnie/speech-course/internal/tensor"
)

func TestConditioningUpsampler_Factor(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1))
	up := nn.NewConditioningUpsampler("u", 4, rng, backend)
	if up.Factor() != 256 {
		t.Fatalf("Factor = %d, want 256", up.Factor())
	}

	mel := tensor.Randn[float32](tensor.Shape{2, 4, 3}, rng, backend)
	out := up.Upsample(mel)
	if !out.Shape().Equal(tensor.Shape{2, 4, 768}) {
		t.Fatalf("upsampled shape %v, want [2 4 768]", out.Shape())
	}
}

func TestConditioningUpsampler_Deterministic(t *testing.T) {
	backend := cpu.New()
	up := nn.NewConditioningUpsampler("u", 2, rand.New(rand.NewSource(2)), backend)

	mel := tensor.Randn[float32](tensor.Shape{1, 2, 2}, rand.New(rand.NewSource(3)), backend)
	a := up.Upsample(mel)
	b := up.Upsample(mel)
	for i, v := range a.Data() {
		if b.Data()[i] != v {
			t.Fatalf("upsampling is not deterministic at %d", i)
		}
	}
}

func TestConditioningUpsampler_ChannelMismatchPanics(t *testing.T) {
	backend := cpu.New()
	up := nn.NewConditioningUpsampler("u", 4, rand.New(rand.NewSource(4)), backend)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for channel mismatch")
		}
	}()
	up.Upsample(tensor.Zeros[float32](tensor.Shape{1, 3, 2}, backend))
}
