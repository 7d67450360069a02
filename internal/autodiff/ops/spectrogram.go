package ops

import (
	"math"

	"github.com/mjibson/go-dsp/fft"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// SpectrogramOp records a Hann-windowed magnitude STFT of audio [B, 1, T].
//
// Backward: with S_f = a + ib the complex spectrum of a windowed frame and
// M_f = |S_f|,
//
//	dM_f/dx_j = w_j * (a*cos(2πfj/N) - b*sin(2πfj/N)) / M_f
//
// so the frame gradient is an O(bins × fftSize) direct sum per frame, with
// the complex spectra recomputed here rather than stored at forward time.
// Overlapping frames accumulate into the same samples.
type SpectrogramOp struct {
	input   *tensor.RawTensor
	output  *tensor.RawTensor
	fftSize int
	hopSize int
}

// NewSpectrogramOp creates a new SpectrogramOp.
func NewSpectrogramOp(x, output *tensor.RawTensor, fftSize, hopSize int) *SpectrogramOp {
	return &SpectrogramOp{input: x, output: output, fftSize: fftSize, hopSize: hopSize}
}

// Inputs returns [audio].
func (op *SpectrogramOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the magnitude spectrogram.
func (op *SpectrogramOp) Output() *tensor.RawTensor { return op.output }

// Backward computes the audio gradient.
func (op *SpectrogramOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grad := zerosLike(op.input, backend.Device())

	n := op.fftSize
	bins := n/2 + 1
	inShape := op.input.Shape()
	b, t := inShape[0], inShape[2]
	frames := 1 + (t-n)/op.hopSize

	window := make([]float64, n)
	for i := range window {
		window[i] = 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/float64(n)))
	}

	xd := op.input.AsFloat32()
	og := outputGrad.AsFloat32()
	gd := grad.AsFloat32()
	frame := make([]float64, n)

	// cos/sin tables for θ_{f,j} = 2πfj/n, indexed by (f*j) mod n.
	cosTab := make([]float64, n)
	sinTab := make([]float64, n)
	for i := range cosTab {
		cosTab[i] = math.Cos(2.0 * math.Pi * float64(i) / float64(n))
		sinTab[i] = math.Sin(2.0 * math.Pi * float64(i) / float64(n))
	}

	for nb := 0; nb < b; nb++ {
		signal := xd[nb*t : (nb+1)*t]
		gradSig := gd[nb*t : (nb+1)*t]
		ogBase := nb * bins * frames

		for fi := 0; fi < frames; fi++ {
			start := fi * op.hopSize
			for j := 0; j < n; j++ {
				frame[j] = float64(signal[start+j]) * window[j]
			}
			spec := fft.FFTReal(frame)

			for j := 0; j < n; j++ {
				var acc float64
				for f := 0; f < bins; f++ {
					g := float64(og[ogBase+f*frames+fi])
					if g == 0 {
						continue
					}
					a, bb := real(spec[f]), imag(spec[f])
					mag := math.Hypot(a, bb)
					if mag < 1e-12 {
						continue
					}
					idx := (f * j) % n
					acc += g * (a*cosTab[idx] - bb*sinTab[idx]) / mag
				}
				gradSig[start+j] += float32(acc * window[j])
			}
		}
	}

	return []*tensor.RawTensor{grad}
}
