package autodiff_test

import (
	"testing"

	"github.com/cyandjinnie/speech-course/internal/autodiff"
	"github.com/cyandjinnie/speech-course/internal/backend/cpu"
	"github.com/cyandjinnie/speech-course/internal/tensor"
)

type diffBackend = *autodiff.Backend[*cpu.Backend]

func newBackend() diffBackend {
	return autodiff.New(cpu.New())
}

func TestTape_RecordsOnlyWhileRecording(t *testing.T) {
	backend := newBackend()
	tape := backend.Tape()

	x, _ := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, backend)
	x.Add(x)
	if tape.NumOps() != 0 {
		t.Fatalf("recorded %d ops before StartRecording", tape.NumOps())
	}

	tape.StartRecording()
	x.Add(x)
	if tape.NumOps() != 1 {
		t.Fatalf("recorded %d ops, want 1", tape.NumOps())
	}

	tape.StopRecording()
	x.Add(x)
	if tape.NumOps() != 1 {
		t.Fatalf("recorded %d ops after StopRecording, want 1", tape.NumOps())
	}

	tape.Clear()
	if tape.NumOps() != 0 {
		t.Fatalf("tape not empty after Clear")
	}
}

func TestBackward_AddMul(t *testing.T) {
	backend := newBackend()
	backend.Tape().StartRecording()

	a, _ := tensor.FromSlice([]float32{2, 3}, tensor.Shape{2}, backend)
	b, _ := tensor.FromSlice([]float32{5, 7}, tensor.Shape{2}, backend)
	loss := a.Mul(b).Sum() // d/da = b, d/db = a

	grads := autodiff.Backward(loss, backend)
	ga := grads[a.Raw()].AsFloat32()
	gb := grads[b.Raw()].AsFloat32()
	for i, want := range []float32{5, 7} {
		if ga[i] != want {
			t.Errorf("grad a[%d] = %f, want %f", i, ga[i], want)
		}
	}
	for i, want := range []float32{2, 3} {
		if gb[i] != want {
			t.Errorf("grad b[%d] = %f, want %f", i, gb[i], want)
		}
	}
}

func TestBackward_AccumulatesReusedTensor(t *testing.T) {
	backend := newBackend()
	backend.Tape().StartRecording()

	x, _ := tensor.FromSlice([]float32{3}, tensor.Shape{1}, backend)
	loss := x.Mul(x).Sum() // d/dx x^2 = 2x

	grads := autodiff.Backward(loss, backend)
	if got := grads[x.Raw()].AsFloat32()[0]; got != 6 {
		t.Errorf("grad = %f, want 6", got)
	}
}

func TestBackward_BroadcastReducesToOperandShape(t *testing.T) {
	backend := newBackend()
	backend.Tape().StartRecording()

	x, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{1, 2, 3}, backend)
	bias, _ := tensor.FromSlice([]float32{10, 20}, tensor.Shape{1, 2, 1}, backend)
	loss := x.Add(bias).Sum()

	grads := autodiff.Backward(loss, backend)
	gb := grads[bias.Raw()]
	if !gb.Shape().Equal(tensor.Shape{1, 2, 1}) {
		t.Fatalf("bias grad shape %v, want [1 2 1]", gb.Shape())
	}
	// Each bias element feeds 3 output positions.
	for i, v := range gb.AsFloat32() {
		if v != 3 {
			t.Errorf("bias grad[%d] = %f, want 3", i, v)
		}
	}
}

func TestBackward_EmptyTapePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for empty tape")
		}
	}()
	backend := newBackend()
	x, _ := tensor.FromSlice([]float32{1}, tensor.Shape{1}, backend)
	autodiff.Backward(x, backend)
}
