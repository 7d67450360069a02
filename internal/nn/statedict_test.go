package nn_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cyandjinnie/speech-course/internal/backend/cpu"
	"github.com/cyandjinnie/speech-course/internal/nn"
	"github.com/cyandjinnie/speech-course/internal/tensor"
)

func TestStateDict_StableNames(t *testing.T) {
	backend := cpu.New()
	stack := nn.NewWaveNetStack("encoder", testStackConfig(2), rand.New(rand.NewSource(1)), backend)
	dict := nn.StateDict[*cpu.Backend](stack)

	for _, name := range []string{
		"encoder.front.weight_v",
		"encoder.front.weight_g",
		"encoder.front.bias",
		"encoder.block0.layer0.filter.weight_v",
		"encoder.block1.layer2.skip_proj.bias",
		"encoder.post_b.weight_g",
	} {
		require.Contains(t, dict, name)
	}
	require.Len(t, dict, len(stack.Parameters()))
}

func TestLoadStateDict_CopiesValues(t *testing.T) {
	backend := cpu.New()
	a := nn.NewWaveNetStack("s", testStackConfig(2), rand.New(rand.NewSource(2)), backend)
	b := nn.NewWaveNetStack("s", testStackConfig(2), rand.New(rand.NewSource(3)), backend)

	require.NoError(t, nn.LoadStateDict[*cpu.Backend](b, nn.StateDict[*cpu.Backend](a)))

	rng := rand.New(rand.NewSource(4))
	x := tensor.Randn[float32](tensor.Shape{1, 1, 8}, rng, backend)
	cond := tensor.Randn[float32](tensor.Shape{1, 4, 8}, rng, backend)
	outA := a.Forward(x, cond)
	outB := b.Forward(x, cond)
	require.Equal(t, outA.Data(), outB.Data())
}

func TestLoadStateDict_MissingParameter(t *testing.T) {
	backend := cpu.New()
	stack := nn.NewWaveNetStack("s", testStackConfig(2), rand.New(rand.NewSource(5)), backend)

	dict := nn.StateDict[*cpu.Backend](stack)
	delete(dict, "s.front.bias")

	err := nn.LoadStateDict[*cpu.Backend](stack, dict)
	require.Error(t, err)
	require.Contains(t, err.Error(), "s.front.bias")
}

func TestLoadStateDict_FailedLoadLeavesModelUntouched(t *testing.T) {
	backend := cpu.New()
	dst := nn.NewWaveNetStack("s", testStackConfig(2), rand.New(rand.NewSource(7)), backend)
	src := nn.NewWaveNetStack("s", testStackConfig(2), rand.New(rand.NewSource(8)), backend)

	// A dict that is valid except for one late parameter: the load must fail
	// without writing any of the earlier, valid entries.
	dict := nn.StateDict[*cpu.Backend](src)
	dict["s.post_b.bias"] = tensor.Zeros[float32](tensor.Shape{99}, backend)

	before := make(map[string][]float32)
	for _, p := range dst.Parameters() {
		before[p.Name()] = append([]float32(nil), p.Tensor().Data()...)
	}

	err := nn.LoadStateDict[*cpu.Backend](dst, dict)
	require.Error(t, err)
	require.Contains(t, err.Error(), "s.post_b.bias")

	for _, p := range dst.Parameters() {
		require.Equal(t, before[p.Name()], p.Tensor().Data(), "parameter %s modified by failed load", p.Name())
	}
}

func TestLoadStateDict_ShapeMismatch(t *testing.T) {
	backend := cpu.New()
	stack := nn.NewWaveNetStack("s", testStackConfig(2), rand.New(rand.NewSource(6)), backend)

	dict := nn.StateDict[*cpu.Backend](stack)
	dict["s.front.bias"] = tensor.Zeros[float32](tensor.Shape{99}, backend)

	err := nn.LoadStateDict[*cpu.Backend](stack, dict)
	require.Error(t, err)
	require.Contains(t, err.Error(), "s.front.bias")
	require.Contains(t, err.Error(), "mismatch")
}
