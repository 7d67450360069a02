package cpu_test

import (
	"math"
	"testing"

	"github.com/cyandjinnie/speech-course/internal/backend/cpu"
	"github.com/cyandjinnie/speech-course/internal/tensor"
)

func TestHannWindow(t *testing.T) {
	w := cpu.HannWindow(8)
	if w[0] != 0 {
		t.Errorf("window[0] = %f, want 0", w[0])
	}
	if math.Abs(w[4]-1) > 1e-12 {
		t.Errorf("window[n/2] = %f, want 1", w[4])
	}
	// Periodic window: w[i] == w[n-i] for interior points.
	for i := 1; i < 4; i++ {
		if math.Abs(w[i]-w[8-i]) > 1e-12 {
			t.Errorf("window asymmetric at %d: %f vs %f", i, w[i], w[8-i])
		}
	}
}

func TestSpectrogram_Shape(t *testing.T) {
	x := tensorFrom(t, make([]float32, 2*128), tensor.Shape{2, 1, 128})
	got := x.Spectrogram(32, 8)
	// bins = 32/2+1 = 17, frames = 1 + (128-32)/8 = 13.
	if !got.Shape().Equal(tensor.Shape{2, 17, 13}) {
		t.Fatalf("shape %v, want [2 17 13]", got.Shape())
	}
}

func TestSpectrogram_PureTone(t *testing.T) {
	// A tone at exactly bin 4 of a 32-point FFT concentrates energy there.
	const fftSize, bin = 32, 4
	data := make([]float32, fftSize)
	for i := range data {
		data[i] = float32(math.Sin(2 * math.Pi * bin * float64(i) / fftSize))
	}
	x := tensorFrom(t, data, tensor.Shape{1, 1, fftSize})
	mag := x.Spectrogram(fftSize, fftSize).Data()

	peak := 0
	for i := 1; i < len(mag); i++ {
		if mag[i] > mag[peak] {
			peak = i
		}
	}
	if peak != bin {
		t.Errorf("peak magnitude at bin %d, want %d", peak, bin)
	}
	// Hann leakage is confined to adjacent bins.
	if mag[bin] < 4*mag[bin+2] {
		t.Errorf("energy not concentrated: bin %d = %f, bin %d = %f",
			bin, mag[bin], bin+2, mag[bin+2])
	}
}

func TestSpectrogram_ZeroSignal(t *testing.T) {
	x := tensorFrom(t, make([]float32, 64), tensor.Shape{1, 1, 64})
	for i, v := range x.Spectrogram(32, 16).Data() {
		if v != 0 {
			t.Fatalf("zero signal has nonzero magnitude %f at %d", v, i)
		}
	}
}

func TestSpectrogram_TooShortPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for audio shorter than fft size")
		}
	}()
	x := tensorFrom(t, make([]float32, 16), tensor.Shape{1, 1, 16})
	x.Spectrogram(32, 8)
}
