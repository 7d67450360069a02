package nn

import (
	"fmt"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// StateDict collects a module's parameters into a name-to-tensor map.
func StateDict[B tensor.Backend](m Module[B]) map[string]*tensor.Tensor[float32, B] {
	params := m.Parameters()
	dict := make(map[string]*tensor.Tensor[float32, B], len(params))
	for _, p := range params {
		if _, ok := dict[p.Name()]; ok {
			panic(fmt.Sprintf("nn: duplicate parameter name %q", p.Name()))
		}
		dict[p.Name()] = p.Tensor()
	}
	return dict
}

// LoadStateDict copies tensors from dict into the module's parameters,
// matched by name. Every parameter must be present in dict with the right
// shape, otherwise an error names the offending parameter and the module is
// left untouched: all names and shapes are validated before anything is
// written, so a failed load never leaves the model half overwritten.
func LoadStateDict[B tensor.Backend](m Module[B], dict map[string]*tensor.Tensor[float32, B]) error {
	params := m.Parameters()
	for _, p := range params {
		src, ok := dict[p.Name()]
		if !ok {
			return fmt.Errorf("nn: state dict is missing parameter %q", p.Name())
		}
		if !src.Shape().Equal(p.Tensor().Shape()) {
			return fmt.Errorf("nn: parameter %q shape mismatch: have %v, state dict has %v",
				p.Name(), p.Tensor().Shape(), src.Shape())
		}
	}
	for _, p := range params {
		copy(p.Tensor().Data(), dict[p.Name()].Data())
	}
	return nil
}
