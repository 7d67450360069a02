package cpu_test

import (
	"math"
	"testing"

	"github.com/cyandjinnie/speech-course/internal/backend/cpu"
	"github.com/cyandjinnie/speech-course/internal/tensor"
)

func tensorFrom(t *testing.T, data []float32, shape tensor.Shape) *tensor.Tensor[float32, *cpu.Backend] {
	t.Helper()
	x, err := tensor.FromSlice(data, shape, cpu.New())
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	return x
}

func assertClose(t *testing.T, got, want []float32, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > tol {
			t.Fatalf("element %d = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestAdd_SameShape(t *testing.T) {
	a := tensorFrom(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := tensorFrom(t, []float32{10, 20, 30, 40}, tensor.Shape{2, 2})
	assertClose(t, a.Add(b).Data(), []float32{11, 22, 33, 44}, 0)
}

func TestAdd_Broadcast(t *testing.T) {
	// [1,2,1] bias against a [2,2,3] activation, the conv bias pattern.
	x := tensorFrom(t, []float32{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
	}, tensor.Shape{2, 2, 3})
	bias := tensorFrom(t, []float32{100, 200}, tensor.Shape{1, 2, 1})
	got := x.Add(bias)
	want := []float32{
		101, 102, 103, 204, 205, 206,
		107, 108, 109, 210, 211, 212,
	}
	assertClose(t, got.Data(), want, 0)
	if !got.Shape().Equal(tensor.Shape{2, 2, 3}) {
		t.Fatalf("broadcast shape %v", got.Shape())
	}
}

func TestMul_ScalarBroadcast(t *testing.T) {
	x := tensorFrom(t, []float32{1, 2, 3}, tensor.Shape{3})
	s := tensorFrom(t, []float32{2}, tensor.Shape{1})
	assertClose(t, x.Mul(s).Data(), []float32{2, 4, 6}, 0)
}

func TestDiv(t *testing.T) {
	a := tensorFrom(t, []float32{8, 9, 10}, tensor.Shape{3})
	b := tensorFrom(t, []float32{2, 3, 5}, tensor.Shape{3})
	assertClose(t, a.Div(b).Data(), []float32{4, 3, 2}, 1e-6)
}

func TestAdd_IncompatibleShapesPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for incompatible shapes")
		}
	}()
	a := tensorFrom(t, []float32{1, 2, 3}, tensor.Shape{3})
	b := tensorFrom(t, []float32{1, 2}, tensor.Shape{2})
	a.Add(b)
}

func TestActivations(t *testing.T) {
	x := tensorFrom(t, []float32{-2, -0.5, 0, 0.5, 2}, tensor.Shape{5})

	assertClose(t, x.ReLU().Data(), []float32{0, 0, 0, 0.5, 2}, 0)
	assertClose(t, x.LeakyReLU(0.4).Data(), []float32{-0.8, -0.2, 0, 0.5, 2}, 1e-6)

	tanh := x.Tanh().Data()
	sigmoid := x.Sigmoid().Data()
	for i, v := range []float32{-2, -0.5, 0, 0.5, 2} {
		wantTanh := math.Tanh(float64(v))
		wantSig := 1 / (1 + math.Exp(-float64(v)))
		if math.Abs(float64(tanh[i])-wantTanh) > 1e-6 {
			t.Errorf("tanh(%f) = %f, want %f", v, tanh[i], wantTanh)
		}
		if math.Abs(float64(sigmoid[i])-wantSig) > 1e-6 {
			t.Errorf("sigmoid(%f) = %f, want %f", v, sigmoid[i], wantSig)
		}
	}
}

func TestExpLogSqrt(t *testing.T) {
	x := tensorFrom(t, []float32{1, 4, 9}, tensor.Shape{3})
	assertClose(t, x.Sqrt().Data(), []float32{1, 2, 3}, 1e-6)
	assertClose(t, x.Log().Exp().Data(), []float32{1, 4, 9}, 1e-5)
}

func TestScalarOps(t *testing.T) {
	x := tensorFrom(t, []float32{1, 2, 3}, tensor.Shape{3})
	assertClose(t, x.AddScalar(0.5).Data(), []float32{1.5, 2.5, 3.5}, 1e-6)
	assertClose(t, x.MulScalar(-2).Data(), []float32{-2, -4, -6}, 1e-6)
}

func TestReductions(t *testing.T) {
	x := tensorFrom(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	if got := x.Sum().Item(); got != 21 {
		t.Errorf("Sum = %f, want 21", got)
	}
	if got := x.Mean().Item(); got != 3.5 {
		t.Errorf("Mean = %f, want 3.5", got)
	}

	byRow := x.SumDim(1, false)
	assertClose(t, byRow.Data(), []float32{6, 15}, 0)
	if !byRow.Shape().Equal(tensor.Shape{2}) {
		t.Errorf("SumDim shape %v, want [2]", byRow.Shape())
	}

	kept := x.SumDim(0, true)
	assertClose(t, kept.Data(), []float32{5, 7, 9}, 0)
	if !kept.Shape().Equal(tensor.Shape{1, 3}) {
		t.Errorf("SumDim keepDim shape %v, want [1 3]", kept.Shape())
	}
}
