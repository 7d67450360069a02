package cpu_test

import (
	"testing"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

func TestPad_TimeAxis(t *testing.T) {
	x := tensorFrom(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{1, 2, 3})
	got := x.Pad(2, 2, 1)
	if !got.Shape().Equal(tensor.Shape{1, 2, 6}) {
		t.Fatalf("shape %v, want [1 2 6]", got.Shape())
	}
	want := []float32{
		0, 0, 1, 2, 3, 0,
		0, 0, 4, 5, 6, 0,
	}
	assertClose(t, got.Data(), want, 0)
}

func TestNarrow(t *testing.T) {
	x := tensorFrom(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, tensor.Shape{1, 2, 4})
	got := x.Narrow(2, 1, 2)
	if !got.Shape().Equal(tensor.Shape{1, 2, 2}) {
		t.Fatalf("shape %v, want [1 2 2]", got.Shape())
	}
	assertClose(t, got.Data(), []float32{2, 3, 6, 7}, 0)
}

func TestNarrow_ChannelAxis(t *testing.T) {
	// Splitting a [B,2,T] head into mean and log-scale rows.
	x := tensorFrom(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{1, 2, 3})
	mean := x.Narrow(1, 0, 1)
	logScale := x.Narrow(1, 1, 1)
	assertClose(t, mean.Data(), []float32{1, 2, 3}, 0)
	assertClose(t, logScale.Data(), []float32{4, 5, 6}, 0)
}

func TestPadNarrow_Inverse(t *testing.T) {
	x := tensorFrom(t, []float32{1, 2, 3}, tensor.Shape{1, 1, 3})
	back := x.Pad(2, 2, 0).Narrow(2, 2, 3)
	assertClose(t, back.Data(), []float32{1, 2, 3}, 0)
}

func TestStretch(t *testing.T) {
	x := tensorFrom(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 2, 2})
	got := x.Stretch(3)
	if !got.Shape().Equal(tensor.Shape{1, 2, 6}) {
		t.Fatalf("shape %v, want [1 2 6]", got.Shape())
	}
	want := []float32{
		1, 0, 0, 2, 0, 0,
		3, 0, 0, 4, 0, 0,
	}
	assertClose(t, got.Data(), want, 0)
}

func TestReshape(t *testing.T) {
	x := tensorFrom(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{6})
	got := x.Reshape(2, 3)
	if !got.Shape().Equal(tensor.Shape{2, 3}) {
		t.Fatalf("shape %v, want [2 3]", got.Shape())
	}
	if got.At(1, 0) != 4 {
		t.Errorf("At(1,0) = %f, want 4", got.At(1, 0))
	}
}
