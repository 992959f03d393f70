package hooks

import (
	"strings"
)

// BiasPreheatHook trains bias parameters with an elevated learning rate for
// the first iterations of a run, decaying linearly back to the configured
// rate. Detection heads converge faster when biases move quickly at the
// start, before the loss surface settles.
//
// The hook requires the optimizer to use one parameter group per model
// parameter so it can address bias groups individually. When the group
// layout does not match, the hook logs a warning and disables itself: the
// preheat is an optional enhancement, not required for correctness.
type BiasPreheatHook struct {
	BaseHook

	preheatIters int
	preheatRatio float64

	baseLR   map[int]float32 // group index → configured LR, bias groups only
	disabled bool
}

// BiasPreheatConfig holds configuration for BiasPreheatHook.
type BiasPreheatConfig struct {
	PreheatIters int     // Iterations to preheat over (default: 2000)
	PreheatRatio float64 // Initial LR multiplier for biases (default: 10)
}

// NewBiasPreheatHook creates a bias preheat hook.
func NewBiasPreheatHook(config BiasPreheatConfig) *BiasPreheatHook {
	if config.PreheatIters == 0 {
		config.PreheatIters = 2000
	}
	if config.PreheatRatio == 0 {
		config.PreheatRatio = 10
	}
	return &BiasPreheatHook{
		preheatIters: config.PreheatIters,
		preheatRatio: config.PreheatRatio,
		baseLR:       make(map[int]float32),
	}
}

// BeforeRun records the configured learning rate of every bias parameter
// group, or disables the hook when the optimizer does not use one group per
// parameter.
//
// When resuming from a checkpoint the recorded rates come from the current
// optimizer configuration, matching how the rates would have been recorded
// at the original run start.
func (h *BiasPreheatHook) BeforeRun(r Runner) error {
	params := r.Model().Parameters()
	groups := r.Optimizer().ParamGroups()

	if len(groups) != len(params) {
		h.disabled = true
		if logger := r.Logger(); logger != nil {
			logger.Warn("bias preheat disabled: optimizer does not use a separate param group per parameter",
				"param_groups", len(groups), "parameters", len(params))
		}
		return nil
	}

	for i, p := range params {
		if strings.HasSuffix(p.Name(), ".bias") {
			h.baseLR[i] = groups[i].LR
		}
	}
	return nil
}

// BeforeTrainIter sets each bias group's learning rate to the decaying
// preheat multiple of its base rate while inside the preheat window.
func (h *BiasPreheatHook) BeforeTrainIter(r Runner) error {
	if h.disabled || r.Iter() >= h.preheatIters {
		return nil
	}

	prog := float64(r.Iter()) / float64(h.preheatIters)
	ratio := (h.preheatRatio-1)*(1-prog) + 1

	groups := r.Optimizer().ParamGroups()
	for i, base := range h.baseLR {
		groups[i].LR = float32(ratio * float64(base))
	}
	return nil
}
