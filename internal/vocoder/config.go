// Package vocoder assembles the mel-to-waveform VAE: an autoregressive
// Gaussian WaveNet encoder that whitens ground-truth audio into a latent
// sequence, and a stack of inverse-autoregressive affine flows that maps
// latent noise back to audio under mel conditioning. Training combines a
// closed-form KL term, a Gaussian reconstruction likelihood, and two
// magnitude-spectrogram losses; generation is a single decoder pass on
// fresh noise.
package vocoder

import (
	"fmt"

	"github.com/cyandjinnie/speech-course/internal/nn"
)

// Config describes the full model.
type Config struct {
	Encoder nn.StackConfig
	Decoder nn.StackConfig
	// NumFlows is the number of chained decoder flows.
	NumFlows int
	// FFTSize and HopSize parameterize the magnitude spectrograms used by
	// the frame losses.
	FFTSize int
	HopSize int
}

// Validate panics if the configuration cannot form a working model.
func (c Config) Validate() {
	c.Encoder.Validate()
	c.Decoder.Validate()
	if c.NumFlows <= 0 {
		panic(fmt.Sprintf("vocoder: NumFlows must be positive, got %d", c.NumFlows))
	}
	if c.Encoder.MelChannels != c.Decoder.MelChannels {
		panic(fmt.Sprintf("vocoder: encoder mel channels %d != decoder mel channels %d",
			c.Encoder.MelChannels, c.Decoder.MelChannels))
	}
	if c.FFTSize <= 0 || c.HopSize <= 0 || c.HopSize > c.FFTSize {
		panic(fmt.Sprintf("vocoder: invalid STFT config fft=%d hop=%d", c.FFTSize, c.HopSize))
	}
}

// EncoderConfig is the Gaussian autoregressive encoder preset.
func EncoderConfig() nn.StackConfig {
	return nn.StackConfig{
		MelChannels:      80,
		NumBlocks:        2,
		NumLayers:        10,
		OutChannels:      2,
		FrontKernelSize:  32,
		ResidualChannels: 128,
		GateChannels:     256,
		SkipChannels:     128,
		KernelSize:       2,
	}
}

// DecoderConfig is the per-flow decoder preset. OutChannels is fixed to 2
// by the flow stack regardless of the value here.
func DecoderConfig() nn.StackConfig {
	return nn.StackConfig{
		MelChannels:      80,
		NumBlocks:        1,
		NumLayers:        10,
		OutChannels:      2,
		FrontKernelSize:  32,
		ResidualChannels: 64,
		GateChannels:     128,
		SkipChannels:     64,
		KernelSize:       2,
	}
}

// DefaultConfig is the full-size preset: 80 mel channels, six decoder flows,
// and a 1024/256 STFT matching a 256-sample hop.
func DefaultConfig() Config {
	return Config{
		Encoder:  EncoderConfig(),
		Decoder:  DecoderConfig(),
		NumFlows: 6,
		FFTSize:  1024,
		HopSize:  256,
	}
}
