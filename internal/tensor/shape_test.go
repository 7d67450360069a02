package tensor_test

import (
	"testing"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

func TestShape_NumElements(t *testing.T) {
	tests := []struct {
		shape tensor.Shape
		want  int
	}{
		{tensor.Shape{}, 1},
		{tensor.Shape{4}, 4},
		{tensor.Shape{2, 1, 256}, 512},
		{tensor.Shape{3, 2, 0}, 0},
	}
	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.want {
			t.Errorf("NumElements(%v) = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestShape_ComputeStrides(t *testing.T) {
	shape := tensor.Shape{2, 3, 4}
	strides := shape.ComputeStrides()
	want := []int{12, 4, 1}
	if len(strides) != len(want) {
		t.Fatalf("strides length %d, want %d", len(strides), len(want))
	}
	for i := range want {
		if strides[i] != want[i] {
			t.Errorf("strides[%d] = %d, want %d", i, strides[i], want[i])
		}
	}
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b      tensor.Shape
		want      tensor.Shape
		needs     bool
		expectErr bool
	}{
		{tensor.Shape{2, 1, 8}, tensor.Shape{2, 1, 8}, tensor.Shape{2, 1, 8}, false, false},
		{tensor.Shape{2, 4, 8}, tensor.Shape{1, 4, 1}, tensor.Shape{2, 4, 8}, true, false},
		{tensor.Shape{2, 4, 8}, tensor.Shape{1}, tensor.Shape{2, 4, 8}, true, false},
		{tensor.Shape{4, 8}, tensor.Shape{2, 4, 8}, tensor.Shape{2, 4, 8}, true, false},
		{tensor.Shape{3, 2}, tensor.Shape{2, 3}, nil, false, true},
	}
	for _, tt := range tests {
		got, needs, err := tensor.BroadcastShapes(tt.a, tt.b)
		if tt.expectErr {
			if err == nil {
				t.Errorf("BroadcastShapes(%v, %v): expected error", tt.a, tt.b)
			}
			continue
		}
		if err != nil {
			t.Errorf("BroadcastShapes(%v, %v): %v", tt.a, tt.b, err)
			continue
		}
		if !got.Equal(tt.want) || needs != tt.needs {
			t.Errorf("BroadcastShapes(%v, %v) = %v, %v; want %v, %v",
				tt.a, tt.b, got, needs, tt.want, tt.needs)
		}
	}
}
