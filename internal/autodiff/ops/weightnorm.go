package ops

import (
	"math"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// WeightNormOp records w[o] = g[o] * v[o] / ||v[o]||.
//
// Backward (per output-channel row, with n = ||v_o|| and d = <grad_w, v_o>):
//
//	grad_g_o = d / n
//	grad_v   = g_o/n * grad_w - g_o * d / n^3 * v_o
//
// Gradients are computed with direct float32 loops because the projection
// onto the direction sphere has no clean expression in the backend op set.
type WeightNormOp struct {
	v      *tensor.RawTensor
	g      *tensor.RawTensor
	output *tensor.RawTensor
}

// NewWeightNormOp creates a new WeightNormOp.
func NewWeightNormOp(v, g, output *tensor.RawTensor) *WeightNormOp {
	return &WeightNormOp{v: v, g: g, output: output}
}

// Inputs returns [v, g].
func (op *WeightNormOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.v, op.g}
}

// Output returns the effective weight.
func (op *WeightNormOp) Output() *tensor.RawTensor { return op.output }

// Backward computes the direction and gain gradients.
func (op *WeightNormOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	gradV := zerosLike(op.v, backend.Device())
	gradG := zerosLike(op.g, backend.Device())

	vd := op.v.AsFloat32()
	gd := op.g.AsFloat32()
	og := outputGrad.AsFloat32()
	gvd := gradV.AsFloat32()
	ggd := gradG.AsFloat32()

	cOut := op.g.NumElements()
	rowLen := op.v.NumElements() / cOut

	for o := 0; o < cOut; o++ {
		row := vd[o*rowLen : (o+1)*rowLen]
		gRow := og[o*rowLen : (o+1)*rowLen]
		outRow := gvd[o*rowLen : (o+1)*rowLen]

		var normSq, dot float64
		for i := range row {
			normSq += float64(row[i]) * float64(row[i])
			dot += float64(gRow[i]) * float64(row[i])
		}
		norm := math.Sqrt(normSq)
		gain := float64(gd[o])

		ggd[o] = float32(dot / norm)
		scaleG := gain / norm
		scaleV := gain * dot / (normSq * norm)
		for i := range row {
			outRow[i] = float32(scaleG*float64(gRow[i]) - scaleV*float64(row[i]))
		}
	}

	return []*tensor.RawTensor{gradV, gradG}
}
