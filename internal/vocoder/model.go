package vocoder

import (
	"fmt"
	"math/rand"

	"github.com/cyandjinnie/speech-course/internal/nn"
	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// Losses holds the four training terms and their weighted total, all as
// single-element tensors so the backward pass can start from Total.
type Losses[B tensor.Backend] struct {
	// Rec is the Gaussian negative log-likelihood of the ground truth under
	// the decoder's composite affine transform of the latent.
	Rec *tensor.Tensor[float32, B]
	// KL is the closed-form divergence between the encoder posterior and
	// the standard-normal prior.
	KL *tensor.Tensor[float32, B]
	// FrameRec and FramePrior are magnitude-spectrogram MSEs against the
	// reconstruction and against a fresh prior sample.
	FrameRec   *tensor.Tensor[float32, B]
	FramePrior *tensor.Tensor[float32, B]
	// Total = Rec + alpha*KL + FrameRec + FramePrior.
	Total *tensor.Tensor[float32, B]
}

// Model is the WaveVAE vocoder.
type Model[B tensor.Backend] struct {
	encoder   *nn.WaveNetStack[B]
	decoder   *nn.AffineFlowStack[B]
	upsampler nn.Conditioner[B]
	logEps    *nn.Parameter[B]
	config    Config
	backend   B
}

// New constructs the model. The upsampler argument may be nil, in which case
// the built-in two-stage conditioning upsampler is used.
func New[B tensor.Backend](config Config, upsampler nn.Conditioner[B], rng *rand.Rand, backend B) *Model[B] {
	config.Validate()
	config.Encoder.OutChannels = 2
	if upsampler == nil {
		upsampler = nn.NewConditioningUpsampler("upsampler", config.Encoder.MelChannels, rng, backend)
	}
	return &Model[B]{
		encoder:   nn.NewWaveNetStack("encoder", config.Encoder, rng, backend),
		decoder:   nn.NewAffineFlowStack("decoder", config.NumFlows, config.Decoder, rng, backend),
		upsampler: upsampler,
		logEps:    nn.NewParameter("log_eps", tensor.Zeros[float32](tensor.Shape{1}, backend)),
		config:    config,
		backend:   backend,
	}
}

// Config returns the model configuration.
func (m *Model[B]) Config() Config {
	return m.config
}

// LogEps returns the trainable posterior scale parameter.
func (m *Model[B]) LogEps() *nn.Parameter[B] {
	return m.logEps
}

// Parameters returns every trainable parameter, log_eps included.
func (m *Model[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	params = append(params, m.encoder.Parameters()...)
	params = append(params, m.decoder.Parameters()...)
	params = append(params, m.upsampler.Parameters()...)
	params = append(params, m.logEps)
	return params
}

// Encode runs the encoder on audio x [B,1,T] with sample-rate conditioning
// cond [B,C_mel,T] and returns the whitened latent z = (x - mu) * exp(-logs)
// together with the per-sample posterior parameters.
func (m *Model[B]) Encode(x, cond *tensor.Tensor[float32, B]) (z, mean, logScale *tensor.Tensor[float32, B]) {
	out := m.encoder.Forward(x, cond)
	mean = out.Narrow(1, 0, 1)
	logScale = out.Narrow(1, 1, 1)
	z = x.Sub(mean).Mul(logScale.MulScalar(-1).Exp())
	return z, mean, logScale
}

// Forward runs one training pass: encode x, decode the latent for the
// reconstruction terms, decode fresh noise for the prior spectral term, and
// assemble the four losses. alpha weights the KL term and is scheduled by
// the caller. The rng supplies the prior noise draw.
func (m *Model[B]) Forward(x, mel *tensor.Tensor[float32, B], alpha float64, rng *rand.Rand) *Losses[B] {
	cond := m.conditioning(x.Shape(), mel)
	t := x.Shape()[2]

	z, _, _ := m.Encode(x, cond)
	kl := KLDivergence(z, m.logEps.Tensor())

	// Reconstruction likelihood against the decoder's composite affine
	// transform, over the samples the flows can parameterize.
	xRec, muTot, logSigmaTot := m.decoder.Forward(z, cond)
	rec := GaussianNLL(x.Narrow(2, 1, t-1), muTot, logSigmaTot)

	noise := tensor.Randn[float32](x.Shape(), rng, m.backend)
	xPrior, _, _ := m.decoder.Forward(noise, cond)

	specX := x.Spectrogram(m.config.FFTSize, m.config.HopSize)
	frameRec := mseLoss(xRec.Spectrogram(m.config.FFTSize, m.config.HopSize), specX)
	framePrior := mseLoss(xPrior.Spectrogram(m.config.FFTSize, m.config.HopSize), specX)

	total := rec.Add(kl.MulScalar(alpha)).Add(frameRec).Add(framePrior)
	return &Losses[B]{Rec: rec, KL: kl, FrameRec: frameRec, FramePrior: framePrior, Total: total}
}

// Generate samples audio from mel conditioning alone: upsample, draw
// z ~ N(0, I) at sample rate, and run the decoder once.
func (m *Model[B]) Generate(mel *tensor.Tensor[float32, B], rng *rand.Rand) *tensor.Tensor[float32, B] {
	shape := mel.Shape()
	if len(shape) != 3 || shape[1] != m.config.Encoder.MelChannels {
		panic(fmt.Sprintf("vocoder: Generate expects mel [B,%d,frames], got %v",
			m.config.Encoder.MelChannels, shape))
	}
	cond := m.upsampler.Upsample(mel)
	noise := tensor.Randn[float32](tensor.Shape{shape[0], 1, cond.Shape()[2]}, rng, m.backend)
	out, _, _ := m.decoder.Forward(noise, cond)
	return out
}

func (m *Model[B]) conditioning(xShape tensor.Shape, mel *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if len(xShape) != 3 || xShape[1] != 1 {
		panic(fmt.Sprintf("vocoder: expected audio [B,1,T], got %v", xShape))
	}
	melShape := mel.Shape()
	if len(melShape) != 3 || melShape[1] != m.config.Encoder.MelChannels {
		panic(fmt.Sprintf("vocoder: expected mel [B,%d,frames], got %v",
			m.config.Encoder.MelChannels, melShape))
	}
	cond := m.upsampler.Upsample(mel)
	if cond.Shape()[2] != xShape[2] || cond.Shape()[0] != xShape[0] {
		panic(fmt.Sprintf("vocoder: audio %v and upsampled conditioning %v disagree on batch or time",
			xShape, cond.Shape()))
	}
	return cond
}
