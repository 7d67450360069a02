// Command wavevae trains the mel-to-waveform VAE vocoder on a synthetic
// batch and demonstrates generation. It exists as a smoke-test driver: real
// training data, scheduling, and audio I/O live outside this repository.
package main

import (
	"flag"
	"log"
	"math"
	"math/rand"

	"github.com/cyandjinnie/speech-course/internal/autodiff"
	"github.com/cyandjinnie/speech-course/internal/backend/cpu"
	"github.com/cyandjinnie/speech-course/internal/nn"
	"github.com/cyandjinnie/speech-course/internal/optim"
	"github.com/cyandjinnie/speech-course/internal/serialization"
	"github.com/cyandjinnie/speech-course/internal/tensor"
	"github.com/cyandjinnie/speech-course/internal/vocoder"
)

func main() {
	var (
		steps      = flag.Int("steps", 5, "training steps to run")
		lr         = flag.Float64("lr", 1e-3, "Adam learning rate")
		alpha      = flag.Float64("alpha", 0.01, "KL annealing weight")
		seed       = flag.Int64("seed", 42, "rng seed for init, noise, and data")
		frames     = flag.Int("frames", 2, "mel frames in the synthetic batch")
		checkpoint = flag.String("checkpoint", "", "path to save a checkpoint after training")
		half       = flag.Bool("half", false, "store the checkpoint in half precision")
		full       = flag.Bool("full", false, "use the full-size model preset instead of the smoke-test one")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	backend := autodiff.New(cpu.New())

	config := smokeConfig()
	if *full {
		config = vocoder.DefaultConfig()
	}
	model := vocoder.New(config, nil, rng, backend)
	log.Printf("model: %d parameter tensors, %d decoder flows", len(model.Parameters()), config.NumFlows)

	melChannels := config.Encoder.MelChannels
	t := *frames * 256
	x := syntheticAudio(1, t, backend)
	mel, err := tensor.FromSlice(randomSlice(melChannels**frames, rng), tensor.Shape{1, melChannels, *frames}, backend)
	if err != nil {
		log.Fatalf("build mel: %v", err)
	}

	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: float32(*lr)}, backend)
	tape := backend.Tape()
	tape.StartRecording()

	for step := 1; step <= *steps; step++ {
		tape.Clear()
		losses := model.Forward(x, mel, *alpha, rng)
		grads := autodiff.Backward(losses.Total, backend)
		optimizer.Step(grads)
		optimizer.ZeroGrad()
		log.Printf("step %d: total=%.4f rec=%.4f kl=%.4f frame_rec=%.4f frame_prior=%.4f",
			step, losses.Total.Item(), losses.Rec.Item(), losses.KL.Item(),
			losses.FrameRec.Item(), losses.FramePrior.Item())
	}

	tape.StopRecording()
	tape.Clear()

	audio := model.Generate(mel, rng)
	log.Printf("generated %d samples, peak %.4f", audio.NumElements(), peak(audio.Data()))

	if *checkpoint != "" {
		opts := serialization.SaveOptions{HalfPrecision: *half}
		if err := serialization.SaveModel[*autodiff.Backend[*cpu.Backend]](*checkpoint, model, opts); err != nil {
			log.Fatalf("save checkpoint: %v", err)
		}
		log.Printf("checkpoint written to %s", *checkpoint)
	}
}

// smokeConfig is small enough to train a few steps on CPU in seconds.
func smokeConfig() vocoder.Config {
	stack := nn.StackConfig{
		MelChannels:      8,
		NumBlocks:        1,
		NumLayers:        4,
		OutChannels:      2,
		FrontKernelSize:  9,
		ResidualChannels: 16,
		GateChannels:     32,
		SkipChannels:     16,
		KernelSize:       2,
	}
	return vocoder.Config{
		Encoder:  stack,
		Decoder:  stack,
		NumFlows: 2,
		FFTSize:  256,
		HopSize:  64,
	}
}

func syntheticAudio[B tensor.Backend](batch, t int, backend B) *tensor.Tensor[float32, B] {
	audio := tensor.Zeros[float32](tensor.Shape{batch, 1, t}, backend)
	data := audio.Data()
	for i := range data {
		data[i] = float32(0.5 * math.Sin(2*math.Pi*float64(i%t)/128))
	}
	return audio
}

func randomSlice(n int, rng *rand.Rand) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(rng.NormFloat64())
	}
	return out
}

func peak(data []float32) float64 {
	var p float64
	for _, v := range data {
		if a := math.Abs(float64(v)); a > p {
			p = a
		}
	}
	return p
}
