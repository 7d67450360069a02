package serialization

import (
	"fmt"

	"github.com/cyandjinnie/speech-course/internal/nn"
	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// SaveModel writes a module's state dict to path.
func SaveModel[B tensor.Backend](path string, m nn.Module[B], opts SaveOptions) error {
	dict := nn.StateDict(m)
	raws := make(map[string]*tensor.RawTensor, len(dict))
	for name, t := range dict {
		raws[name] = t.Raw()
	}
	return Save(path, raws, opts)
}

// LoadModel restores a module's parameters from path. The checkpoint must
// contain every parameter of the freshly constructed module with matching
// shapes; the first mismatch aborts the load and names the parameter.
func LoadModel[B tensor.Backend](path string, m nn.Module[B], backend B) error {
	raws, err := Load(path, backend.Device())
	if err != nil {
		return err
	}
	dict := make(map[string]*tensor.Tensor[float32, B], len(raws))
	for name, raw := range raws {
		if raw.DType() != tensor.Float32 {
			return fmt.Errorf("serialization: parameter %q has dtype %v, want float32", name, raw.DType())
		}
		dict[name] = tensor.New[float32, B](raw, backend)
	}
	return nn.LoadStateDict(m, dict)
}
