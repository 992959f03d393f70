package nn

import (
	"fmt"

	"github.com/detkit-ml/detkit/internal/tensor"
)

// Model is the interface the hooks consume from the externally-owned model.
//
// It deliberately excludes Forward: architecture and loss computation belong
// to the training runner. What the hooks need is the named parameter set
// (EMA shadowing, bias preheat), gradient clearing (accumulation windows),
// and state-dict export/import (checkpointing).
type Model interface {
	// Parameters returns all trainable parameters in a stable order.
	//
	// The order must not change between calls during a run: the EMA hook
	// registers shadow buffers against it and treats any later mismatch
	// as a fatal configuration error.
	Parameters() []*Parameter

	// StateDict returns a map of parameter names to raw tensors.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict loads parameters from a state dictionary.
	//
	// Returns an error if a required parameter is missing or has a
	// mismatched shape or dtype.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error

	// ZeroGrad clears the gradients of all parameters.
	ZeroGrad()
}

// Sequential is a minimal Model implementation over an explicit parameter
// list. The training runner usually brings its own model; Sequential exists
// for examples and tests.
type Sequential struct {
	params []*Parameter
}

// NewSequential creates a model from the given parameters.
// Parameter names must be unique.
func NewSequential(params ...*Parameter) (*Sequential, error) {
	seen := make(map[string]struct{}, len(params))
	for _, p := range params {
		if _, dup := seen[p.Name()]; dup {
			return nil, fmt.Errorf("duplicate parameter name %q", p.Name())
		}
		seen[p.Name()] = struct{}{}
	}
	return &Sequential{params: params}, nil
}

// Parameters returns all parameters in registration order.
func (s *Sequential) Parameters() []*Parameter {
	return s.params
}

// StateDict returns parameter tensors keyed by name.
func (s *Sequential) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor, len(s.params))
	for _, p := range s.params {
		stateDict[p.Name()] = p.Tensor()
	}
	return stateDict
}

// LoadStateDict copies values from the state dictionary into the model's
// parameter tensors in place.
func (s *Sequential) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for _, p := range s.params {
		src, ok := stateDict[p.Name()]
		if !ok {
			return fmt.Errorf("missing parameter %q in state dict", p.Name())
		}
		if err := p.Tensor().CopyFrom(src); err != nil {
			return fmt.Errorf("parameter %q: %w", p.Name(), err)
		}
	}
	return nil
}

// ZeroGrad clears the gradients of all parameters.
func (s *Sequential) ZeroGrad() {
	for _, p := range s.params {
		p.ZeroGrad()
	}
}
