package cpu

import (
	"fmt"
	"math"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// Conv1D performs a stride-1 dilated 1-D convolution.
//
// input:  [B, C_in, T]
// kernel: [C_out, C_in, K]
// output: [B, C_out, T + 2*padding - dilation*(K-1)]
//
// The causal variant (output[t] depends on input[<=t]) is built on top of
// this by the nn layer, which left-pads before convolving.
func (cpu *Backend) Conv1D(input, kernel *tensor.RawTensor, padding, dilation int) *tensor.RawTensor {
	b, cIn, t, cOut, k := conv1DShapes(input, kernel, padding, dilation)
	outT := t + 2*padding - dilation*(k-1)

	result := newResult(tensor.Shape{b, cOut, outT}, tensor.Float32, cpu.device, "conv1d")

	in := input.AsFloat32()
	w := kernel.AsFloat32()
	out := result.AsFloat32()

	for n := 0; n < b; n++ {
		inBase := n * cIn * t
		outBase := n * cOut * outT
		for oc := 0; oc < cOut; oc++ {
			wBase := oc * cIn * k
			for ot := 0; ot < outT; ot++ {
				var acc float32
				for ic := 0; ic < cIn; ic++ {
					inRow := inBase + ic*t
					wRow := wBase + ic*k
					for kk := 0; kk < k; kk++ {
						it := ot - padding + kk*dilation
						if it < 0 || it >= t {
							continue
						}
						acc += in[inRow+it] * w[wRow+kk]
					}
				}
				out[outBase+oc*outT+ot] = acc
			}
		}
	}
	return result
}

// Conv1DInputBackward computes the input gradient of Conv1D.
//
// d(loss)/d(input)[n,ic,it] = sum over oc,kk of
// outputGrad[n,oc,it+padding-kk*dilation] * kernel[oc,ic,kk].
func (cpu *Backend) Conv1DInputBackward(input, kernel, outputGrad *tensor.RawTensor, padding, dilation int) *tensor.RawTensor {
	b, cIn, t, cOut, k := conv1DShapes(input, kernel, padding, dilation)
	outT := outputGrad.Shape()[2]

	result := newResult(input.Shape().Clone(), tensor.Float32, cpu.device, "conv1d_input_backward")

	w := kernel.AsFloat32()
	og := outputGrad.AsFloat32()
	gi := result.AsFloat32()

	for n := 0; n < b; n++ {
		giBase := n * cIn * t
		ogBase := n * cOut * outT
		for oc := 0; oc < cOut; oc++ {
			wBase := oc * cIn * k
			ogRow := ogBase + oc*outT
			for ot := 0; ot < outT; ot++ {
				g := og[ogRow+ot]
				if g == 0 {
					continue
				}
				for ic := 0; ic < cIn; ic++ {
					wRow := wBase + ic*k
					giRow := giBase + ic*t
					for kk := 0; kk < k; kk++ {
						it := ot - padding + kk*dilation
						if it < 0 || it >= t {
							continue
						}
						gi[giRow+it] += g * w[wRow+kk]
					}
				}
			}
		}
	}
	return result
}

// Conv1DKernelBackward computes the kernel gradient of Conv1D.
func (cpu *Backend) Conv1DKernelBackward(input, kernel, outputGrad *tensor.RawTensor, padding, dilation int) *tensor.RawTensor {
	b, cIn, t, cOut, k := conv1DShapes(input, kernel, padding, dilation)
	outT := outputGrad.Shape()[2]

	result := newResult(kernel.Shape().Clone(), tensor.Float32, cpu.device, "conv1d_kernel_backward")

	in := input.AsFloat32()
	og := outputGrad.AsFloat32()
	gw := result.AsFloat32()

	for n := 0; n < b; n++ {
		inBase := n * cIn * t
		ogBase := n * cOut * outT
		for oc := 0; oc < cOut; oc++ {
			ogRow := ogBase + oc*outT
			gwBase := oc * cIn * k
			for ic := 0; ic < cIn; ic++ {
				inRow := inBase + ic*t
				gwRow := gwBase + ic*k
				for kk := 0; kk < k; kk++ {
					var acc float32
					for ot := 0; ot < outT; ot++ {
						it := ot - padding + kk*dilation
						if it < 0 || it >= t {
							continue
						}
						acc += og[ogRow+ot] * in[inRow+it]
					}
					gw[gwRow+kk] += acc
				}
			}
		}
	}
	return result
}

// WeightNorm computes w[o] = g[o] * v[o] / ||v[o]|| with the norm taken over
// all dimensions of v except the leading output-channel dimension.
func (cpu *Backend) WeightNorm(v, g *tensor.RawTensor) *tensor.RawTensor {
	vShape := v.Shape()
	if len(vShape) < 2 {
		panic(fmt.Sprintf("weight_norm: direction tensor must have >= 2 dims, got %v", vShape))
	}
	cOut := vShape[0]
	if !g.Shape().Equal(tensor.Shape{cOut}) {
		panic(fmt.Sprintf("weight_norm: gain shape %v does not match output channels %d", g.Shape(), cOut))
	}

	result := newResult(vShape.Clone(), tensor.Float32, cpu.device, "weight_norm")

	vd := v.AsFloat32()
	gd := g.AsFloat32()
	wd := result.AsFloat32()
	rowLen := v.NumElements() / cOut

	for o := 0; o < cOut; o++ {
		row := vd[o*rowLen : (o+1)*rowLen]
		var sq float64
		for _, x := range row {
			sq += float64(x) * float64(x)
		}
		scale := float32(float64(gd[o]) / math.Sqrt(sq))
		out := wd[o*rowLen : (o+1)*rowLen]
		for i, x := range row {
			out[i] = x * scale
		}
	}
	return result
}

func conv1DShapes(input, kernel *tensor.RawTensor, padding, dilation int) (b, cIn, t, cOut, k int) {
	inShape, kShape := input.Shape(), kernel.Shape()
	if len(inShape) != 3 {
		panic(fmt.Sprintf("conv1d: expected 3D input [B,C,T], got %v", inShape))
	}
	if len(kShape) != 3 {
		panic(fmt.Sprintf("conv1d: expected 3D kernel [C_out,C_in,K], got %v", kShape))
	}
	if inShape[1] != kShape[1] {
		panic(fmt.Sprintf("conv1d: input channels %d != kernel input channels %d", inShape[1], kShape[1]))
	}
	if padding < 0 || dilation <= 0 {
		panic(fmt.Sprintf("conv1d: invalid padding=%d dilation=%d", padding, dilation))
	}
	if input.DType() != tensor.Float32 || kernel.DType() != tensor.Float32 {
		panic("conv1d: only float32 is supported")
	}
	b, cIn, t = inShape[0], inShape[1], inShape[2]
	cOut, k = kShape[0], kShape[2]
	if t+2*padding-dilation*(k-1) <= 0 {
		panic(fmt.Sprintf("conv1d: time length %d too short for kernel %d with dilation %d", t, k, dilation))
	}
	return b, cIn, t, cOut, k
}
