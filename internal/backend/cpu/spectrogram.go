package cpu

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// Spectrogram computes a Hann-windowed magnitude STFT of audio [B, 1, T].
//
// Frames are taken without centering: frame i covers samples
// [i*hop, i*hop+fftSize), giving frames = 1 + (T-fftSize)/hop. Output shape
// is [B, fftSize/2+1, frames]. Only magnitudes are returned; the frame
// losses never consume phase.
func (cpu *Backend) Spectrogram(x *tensor.RawTensor, fftSize, hopSize int) *tensor.RawTensor {
	b, t := spectrogramShapes(x, fftSize, hopSize)
	bins := fftSize/2 + 1
	frames := 1 + (t-fftSize)/hopSize

	result := newResult(tensor.Shape{b, bins, frames}, tensor.Float32, cpu.device, "spectrogram")

	window := HannWindow(fftSize)
	xd := x.AsFloat32()
	rd := result.AsFloat32()
	frame := make([]float64, fftSize)

	for n := 0; n < b; n++ {
		signal := xd[n*t : (n+1)*t]
		outBase := n * bins * frames
		for fi := 0; fi < frames; fi++ {
			start := fi * hopSize
			for j := 0; j < fftSize; j++ {
				frame[j] = float64(signal[start+j]) * window[j]
			}
			spec := fft.FFTReal(frame)
			for bin := 0; bin < bins; bin++ {
				rd[outBase+bin*frames+fi] = float32(cmplx.Abs(spec[bin]))
			}
		}
	}
	return result
}

// HannWindow returns the length-n periodic Hann window.
func HannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/float64(n)))
	}
	return w
}

func spectrogramShapes(x *tensor.RawTensor, fftSize, hopSize int) (b, t int) {
	shape := x.Shape()
	if len(shape) != 3 || shape[1] != 1 {
		panic(fmt.Sprintf("spectrogram: expected audio shape [B,1,T], got %v", shape))
	}
	if x.DType() != tensor.Float32 {
		panic("spectrogram: only float32 is supported")
	}
	if fftSize <= 0 || hopSize <= 0 {
		panic(fmt.Sprintf("spectrogram: invalid fftSize=%d hopSize=%d", fftSize, hopSize))
	}
	if shape[2] < fftSize {
		panic(fmt.Sprintf("spectrogram: audio length %d shorter than fft size %d", shape[2], fftSize))
	}
	return shape[0], shape[2]
}
