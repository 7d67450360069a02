package vocoder

import (
	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// halfLog2Pi is 0.5*log(2*pi), the constant term of the Gaussian
// log-density. Included so reported loss values are true likelihoods.
const halfLog2Pi = 0.9189385332046727

// KLDivergence is the closed-form divergence between the encoder's
// per-sample posterior and the standard-normal prior, in the whitened
// parameterization: mean over all samples of
//
//	-log_eps + (exp(2*log_eps) - 1 + z^2) / 2
//
// It is zero exactly when z = 0 everywhere and log_eps = 0.
func KLDivergence[B tensor.Backend](z, logEps *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	epsSq := logEps.MulScalar(2).Exp()
	return z.Mul(z).Add(epsSq).AddScalar(-1).MulScalar(0.5).Sub(logEps).Mean()
}

// GaussianNLL is the mean negative log-density of x under N(mean, scale)
// with scale given in the log domain:
//
//	log_scale + ((x - mean)/scale)^2 / 2 + log(2*pi)/2
func GaussianNLL[B tensor.Backend](x, mean, logScale *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	scaled := x.Sub(mean).Mul(logScale.MulScalar(-1).Exp())
	return logScale.Add(scaled.Mul(scaled).MulScalar(0.5)).AddScalar(halfLog2Pi).Mean()
}

func mseLoss[B tensor.Backend](a, b *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	d := a.Sub(b)
	return d.Mul(d).Mean()
}
