// Package optim implements the optimizer-side collaborators of the training
// hooks: a parameter-group based optimizer interface, SGD with momentum,
// global gradient-norm clipping, and a loss scaler for reduced-precision
// gradients.
//
// Design inspired by PyTorch's torch.optim but adapted for Go with explicit
// parameter groups, so per-group learning rates (e.g. bias preheat) need no
// reflection into optimizer internals.
package optim

import (
	"fmt"

	"github.com/detkit-ml/detkit/internal/nn"
)

// Optimizer is the base interface for all optimization algorithms.
//
// Optimizers read gradients from their parameters (Parameter.Grad) and
// update parameter values in place.
type Optimizer interface {
	// Step applies gradient updates to all parameters.
	//
	// Parameters with a nil gradient are skipped. Returns an error if a
	// gradient's shape or dtype does not match its parameter.
	Step() error

	// ZeroGrad clears all parameter gradients.
	//
	// Under gradient accumulation this is only called at the start of
	// each accumulation window, never mid-window.
	ZeroGrad()

	// GetLR returns the learning rate of the first parameter group.
	GetLR() float32

	// ParamGroups returns the optimizer's parameter groups. Callers may
	// adjust each group's LR in place (learning-rate schedules, bias
	// preheat).
	ParamGroups() []*ParamGroup
}

// ParamGroup is a set of parameters sharing one learning rate.
type ParamGroup struct {
	Params []*nn.Parameter
	LR     float32
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float32 // Learning rate
}

// PerParamGroups splits params into one group per parameter, all with the
// same learning rate. Detection configs use this layout so schedules can
// address individual parameters; the bias-preheat hook requires it.
func PerParamGroups(params []*nn.Parameter, lr float32) []*ParamGroup {
	groups := make([]*ParamGroup, 0, len(params))
	for _, p := range params {
		groups = append(groups, &ParamGroup{
			Params: []*nn.Parameter{p},
			LR:     lr,
		})
	}
	return groups
}

// checkGrad validates a gradient against its parameter.
func checkGrad(p *nn.Parameter) error {
	grad := p.Grad()
	if grad == nil {
		return nil
	}
	if grad.DType() != p.Tensor().DType() {
		return fmt.Errorf("parameter %q: gradient dtype %s does not match parameter dtype %s",
			p.Name(), grad.DType(), p.Tensor().DType())
	}
	if !grad.Shape().Equal(p.Tensor().Shape()) {
		return fmt.Errorf("parameter %q: gradient shape %v does not match parameter shape %v",
			p.Name(), grad.Shape(), p.Tensor().Shape())
	}
	return nil
}
