package nn

import (
	"math"
	"math/rand"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// xavierUniform fills a tensor with values drawn from U(-a, a) where
// a = sqrt(6 / (fanIn + fanOut)). This is the Glorot scheme for tanh-like
// activations; gated units use it for both the filter and gate branches.
func xavierUniform[B tensor.Backend](shape tensor.Shape, fanIn, fanOut int, rng *rand.Rand, backend B) *tensor.Tensor[float32, B] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	t := tensor.Zeros[float32](shape, backend)
	data := t.Data()
	for i := range data {
		data[i] = float32((rng.Float64()*2 - 1) * bound)
	}
	return t
}

// convFans returns fan-in and fan-out for a conv kernel [C_out, C_in, K].
func convFans(shape tensor.Shape) (fanIn, fanOut int) {
	if len(shape) != 3 {
		panic("nn: convFans expects a 3D kernel shape")
	}
	receptive := shape[2]
	return shape[1] * receptive, shape[0] * receptive
}

// weightNormGain computes the initial gain g_o = ||v_o|| per output channel
// so that the normalized weight w = g * v / ||v|| starts equal to v itself.
func weightNormGain[B tensor.Backend](v *tensor.Tensor[float32, B], backend B) *tensor.Tensor[float32, B] {
	shape := v.Shape()
	rows := shape[0]
	rowSize := shape.NumElements() / rows
	data := v.Data()
	g := tensor.Zeros[float32](tensor.Shape{rows}, backend)
	gData := g.Data()
	for o := 0; o < rows; o++ {
		var sum float64
		for i := 0; i < rowSize; i++ {
			x := float64(data[o*rowSize+i])
			sum += x * x
		}
		gData[o] = float32(math.Sqrt(sum))
	}
	return g
}
