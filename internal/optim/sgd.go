package optim

import (
	"fmt"

	"github.com/detkit-ml/detkit/internal/nn"
	"github.com/detkit-ml/detkit/internal/tensor"
)

// SGD implements Stochastic Gradient Descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Example:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
type SGD struct {
	groups     []*ParamGroup
	momentum   float32
	velocities map[*nn.Parameter][]float32
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float32 // Learning rate (default: 0.01)
	Momentum float32 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates an SGD optimizer with a single parameter group.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return NewSGDWithGroups([]*ParamGroup{{Params: params, LR: config.LR}}, config)
}

// NewSGDWithGroups creates an SGD optimizer over explicit parameter groups.
// Each group keeps its own learning rate; config.LR is used only as the
// default for groups constructed with LR == 0.
func NewSGDWithGroups(groups []*ParamGroup, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	for _, g := range groups {
		if g.LR == 0 {
			g.LR = config.LR
		}
	}
	return &SGD{
		groups:     groups,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter][]float32),
	}
}

// Step performs a single optimization step over all parameter groups.
//
// Parameters with no gradient (not part of the last backward pass, or
// mid-accumulation-window) are skipped. Only float32 parameters are
// supported; detection models keep all trainable state in float32.
func (s *SGD) Step() error {
	for _, group := range s.groups {
		for _, param := range group.Params {
			if param.Grad() == nil {
				continue
			}
			if err := checkGrad(param); err != nil {
				return err
			}
			if param.Tensor().DType() != tensor.Float32 {
				return fmt.Errorf("parameter %q: SGD supports float32 parameters, got %s",
					param.Name(), param.Tensor().DType())
			}

			data := param.Tensor().AsFloat32()
			grad := param.Grad().AsFloat32()

			if s.momentum == 0 {
				for i := range data {
					data[i] -= group.LR * grad[i]
				}
				continue
			}

			velocity, ok := s.velocities[param]
			if !ok {
				velocity = make([]float32, len(data))
				s.velocities[param] = velocity
			}
			for i := range data {
				velocity[i] = s.momentum*velocity[i] + grad[i]
				data[i] -= group.LR * velocity[i]
			}
		}
	}
	return nil
}

// ZeroGrad clears the gradients of all parameters in all groups.
func (s *SGD) ZeroGrad() {
	for _, group := range s.groups {
		for _, param := range group.Params {
			param.ZeroGrad()
		}
	}
}

// GetLR returns the learning rate of the first parameter group.
func (s *SGD) GetLR() float32 {
	if len(s.groups) == 0 {
		return 0
	}
	return s.groups[0].LR
}

// ParamGroups returns the optimizer's parameter groups.
func (s *SGD) ParamGroups() []*ParamGroup {
	return s.groups
}
