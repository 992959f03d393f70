package hooks

import (
	"fmt"

	"github.com/detkit-ml/detkit/internal/nn"
	"github.com/detkit-ml/detkit/internal/optim"
)

// GradAccumOptimizerHook drives the optimizer's zero/step calls so that N
// consecutive iterations contribute gradients to one optimizer step,
// emulating an N-times larger batch. Backpropagation still runs every
// iteration; only gradient clearing and the optimizer step are confined to
// window boundaries.
//
// The window position is decided directly from the iteration index
// (iteration modulo window size) rather than by temporarily disabling the
// zero-grad functions: gradients are cleared when a window opens
// (BeforeTrainIter with iter % N == 0) and the step runs when it closes
// (AfterTrainIter with (iter+1) % N == 0).
//
// With a GradScaler attached, the loss is scaled before backprop and the
// hook keeps logged metrics scale-invariant: the clip threshold is
// multiplied by the scale (gradients still carry it when clipping runs) and
// the reported gradient norm is divided back down, so runs with different
// scale factors log comparable values.
type GradAccumOptimizerHook struct {
	BaseHook

	accumulation int
	maxGradNorm  float64
	scaler       *optim.GradScaler
}

// OptimizerHookConfig holds configuration for GradAccumOptimizerHook.
type OptimizerHookConfig struct {
	Accumulation int               // Accumulation window size (default: 1)
	MaxGradNorm  float64           // Global grad-norm clip threshold (0 disables clipping)
	Scaler       *optim.GradScaler // Optional loss scaler for reduced-precision gradients
}

// NewGradAccumOptimizerHook creates the optimizer hook.
func NewGradAccumOptimizerHook(config OptimizerHookConfig) (*GradAccumOptimizerHook, error) {
	if config.Accumulation == 0 {
		config.Accumulation = 1
	}
	if config.Accumulation < 0 {
		return nil, fmt.Errorf("optimizer hook: accumulation must be a positive integer, got %d", config.Accumulation)
	}
	if config.MaxGradNorm < 0 {
		return nil, fmt.Errorf("optimizer hook: max grad norm must not be negative, got %g", config.MaxGradNorm)
	}

	return &GradAccumOptimizerHook{
		accumulation: config.Accumulation,
		maxGradNorm:  config.MaxGradNorm,
		scaler:       config.Scaler,
	}, nil
}

// BeforeRun starts from a clean accumulation window.
func (h *GradAccumOptimizerHook) BeforeRun(r Runner) error {
	r.Model().ZeroGrad()
	r.Optimizer().ZeroGrad()
	return nil
}

// BeforeTrainIter clears gradients only when a new accumulation window
// opens.
func (h *GradAccumOptimizerHook) BeforeTrainIter(r Runner) error {
	if r.Iter()%h.accumulation == 0 {
		r.Model().ZeroGrad()
		r.Optimizer().ZeroGrad()
	}
	return nil
}

// AfterTrainIter backpropagates the (possibly scaled) loss every iteration
// and steps the optimizer when the window closes.
func (h *GradAccumOptimizerHook) AfterTrainIter(r Runner) error {
	scale := 1.0
	if h.scaler != nil {
		scale = h.scaler.Scale()
	}
	if err := r.Backward(scale); err != nil {
		return fmt.Errorf("optimizer hook: backward: %w", err)
	}

	if (r.Iter()+1)%h.accumulation != 0 {
		return nil
	}

	if h.maxGradNorm > 0 {
		// Gradients still carry the loss scale here, so the threshold
		// must carry it too; the logged norm has it divided back out.
		norm, any := optim.ClipGradNorm(h.params(r), h.maxGradNorm*scale)
		if any {
			vars := map[string]float64{"grad_norm": norm / scale}
			if h.scaler != nil {
				vars["grad_scale"] = scale
			}
			r.LogBuffer().Update(vars, r.Outputs().NumSamples)
		}
	}

	if h.scaler != nil {
		stepped, err := h.scaler.Step(r.Optimizer())
		if err != nil {
			return fmt.Errorf("optimizer hook: %w", err)
		}
		if stepped {
			h.scaler.Update()
		}
		return nil
	}
	if err := r.Optimizer().Step(); err != nil {
		return fmt.Errorf("optimizer hook: %w", err)
	}
	return nil
}

func (h *GradAccumOptimizerHook) params(r Runner) []*nn.Parameter {
	var params []*nn.Parameter
	for _, group := range r.Optimizer().ParamGroups() {
		params = append(params, group.Params...)
	}
	return params
}
