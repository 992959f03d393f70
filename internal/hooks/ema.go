package hooks

import (
	"fmt"
	"math"
	"strings"

	"github.com/detkit-ml/detkit/internal/ema"
	"github.com/detkit-ml/detkit/internal/tensor"
)

// emaPhase tracks which values the model's parameter storage currently
// holds.
type emaPhase int

const (
	// phaseLive: parameters hold the live training values, shadows hold
	// the averages.
	phaseLive emaPhase = iota
	// phaseShadowed: parameters and shadows are swapped so evaluation
	// and checkpointing transparently see the averaged weights.
	phaseShadowed
)

// EMAHook maintains an exponential moving average of every floating-point
// model parameter and swaps the averaged values into the model's own
// storage around epoch boundaries, so evaluation and checkpoint logic
// written against "the model's parameters" sees the averaged weights
// without a separate model copy.
//
// The shadow update runs every Interval iterations with a warmed-up
// momentum:
//
//	m_t = Momentum * (1 - exp(-iter/WarmUp))
//	shadow = m_t*shadow + (1-m_t)*param
//
// so shadows track the fast-moving early parameters closely and settle into
// slow averaging later. The warm-up is measured from absolute training
// iteration 0 (the runner's persistent counter), not from hook
// registration: a run resumed from a checkpoint continues the momentum
// schedule where it left off.
//
// The swap protocol relies on the runner's strict alternation of
// BeforeTrainEpoch and AfterTrainEpoch; the hook tracks its phase
// explicitly and fails loudly if the alternation breaks, rather than
// silently corrupting weights.
type EMAHook struct {
	BaseHook

	momentum   float64
	interval   int
	warmUp     float64
	resumeFrom string

	store      *ema.ShadowStore
	phase      emaPhase
	registered bool
}

// EMAConfig holds configuration for EMAHook.
type EMAConfig struct {
	Momentum   float64 // Base momentum in (0, 1) (default: 0.9999)
	Interval   int     // Update every Interval iterations (default: 2)
	WarmUp     float64 // Warm-up iteration count (default: 2000)
	ResumeFrom string  // Optional checkpoint path to resume from
}

// NewEMAHook creates an EMA hook.
func NewEMAHook(config EMAConfig) (*EMAHook, error) {
	if config.Momentum == 0 {
		config.Momentum = 0.9999
	}
	if config.Momentum <= 0 || config.Momentum >= 1 {
		return nil, fmt.Errorf("ema: momentum must be in (0, 1), got %g", config.Momentum)
	}
	if config.Interval == 0 {
		config.Interval = 2
	}
	if config.Interval < 0 {
		return nil, fmt.Errorf("ema: interval must be a positive integer, got %d", config.Interval)
	}
	if config.WarmUp == 0 {
		config.WarmUp = 2000
	}
	if config.WarmUp < 0 {
		return nil, fmt.Errorf("ema: warm-up must be positive, got %g", config.WarmUp)
	}

	return &EMAHook{
		momentum:   config.Momentum,
		interval:   config.Interval,
		warmUp:     config.WarmUp,
		resumeFrom: config.ResumeFrom,
		store:      ema.NewShadowStore(),
	}, nil
}

// BeforeRun registers one shadow buffer per floating-point model parameter,
// cloned from the parameter's current value, then optionally resumes the
// whole run from a checkpoint (which restores both the model parameters and
// the shadow buffers through the runner's resume operation).
func (h *EMAHook) BeforeRun(r Runner) error {
	for _, p := range r.Model().Parameters() {
		if err := h.store.Register(p.Name(), p.Tensor()); err != nil {
			return fmt.Errorf("ema: %w", err)
		}
	}
	h.registered = true
	h.phase = phaseLive

	if h.resumeFrom != "" {
		if err := r.Resume(h.resumeFrom); err != nil {
			return fmt.Errorf("ema: resume from %q: %w", h.resumeFrom, err)
		}
	}
	return nil
}

// AfterTrainIter updates every shadow buffer with the warmed-up momentum on
// iterations where (iter+1) is a multiple of the interval.
func (h *EMAHook) AfterTrainIter(r Runner) error {
	if !h.registered {
		return fmt.Errorf("ema: update before registration (BeforeRun never ran)")
	}
	if h.phase != phaseLive {
		return fmt.Errorf("ema: update while parameters are swapped (broken epoch alternation)")
	}
	if (r.Iter()+1)%h.interval != 0 {
		return nil
	}

	momentum := h.momentumAt(r.Iter())
	params := r.Model().Parameters()

	floating := 0
	for _, p := range params {
		if !p.Tensor().DType().IsFloatingPoint() {
			continue
		}
		floating++
		if !h.store.Has(p.Name()) {
			return fmt.Errorf("ema: parameter %q appeared after registration; "+
				"the model's parameter set must not change during a run", p.Name())
		}
		if err := h.store.Update(p.Name(), p.Tensor(), momentum); err != nil {
			return fmt.Errorf("ema: %w", err)
		}
	}
	if floating != h.store.Len() {
		return fmt.Errorf("ema: model has %d floating-point parameters but %d shadow buffers are registered; "+
			"the model's parameter set must not change during a run", floating, h.store.Len())
	}
	return nil
}

// AfterTrainEpoch swaps the averaged values into the model's parameter
// storage, so the evaluation and checkpointing that follow the epoch see
// the averaged weights.
func (h *EMAHook) AfterTrainEpoch(r Runner) error {
	if !h.registered {
		return fmt.Errorf("ema: swap before registration (BeforeRun never ran)")
	}
	if h.phase != phaseLive {
		return fmt.Errorf("ema: AfterTrainEpoch called twice without BeforeTrainEpoch (broken epoch alternation)")
	}
	if err := h.swapAll(r); err != nil {
		return err
	}
	h.phase = phaseShadowed
	return nil
}

// BeforeTrainEpoch restores the live parameters before training resumes.
// On the first epoch there is nothing to restore and the call is a no-op.
func (h *EMAHook) BeforeTrainEpoch(r Runner) error {
	if !h.registered {
		return fmt.Errorf("ema: swap before registration (BeforeRun never ran)")
	}
	if h.phase == phaseLive {
		return nil
	}
	if err := h.swapAll(r); err != nil {
		return err
	}
	h.phase = phaseLive
	return nil
}

func (h *EMAHook) swapAll(r Runner) error {
	for _, p := range r.Model().Parameters() {
		if !p.Tensor().DType().IsFloatingPoint() {
			continue
		}
		if err := h.store.Swap(p.Name(), p.Tensor()); err != nil {
			return fmt.Errorf("ema: %w", err)
		}
	}
	return nil
}

// momentumAt returns the effective momentum at an absolute iteration.
// It is 0 at iteration 0, strictly increasing, and approaches the base
// momentum as iterations grow past the warm-up window.
func (h *EMAHook) momentumAt(iter int) float64 {
	return h.momentum * (1 - math.Exp(-float64(iter)/h.warmUp))
}

// bufferName maps a parameter name to its checkpoint buffer name:
// "ema_" prefix with dots replaced by underscores, since dots separate
// module paths in state-dict keys.
func bufferName(param string) string {
	return "ema_" + strings.ReplaceAll(param, ".", "_")
}

// StateDict returns the shadow buffers under their checkpoint buffer names,
// for persisting alongside the model's own state.
func (h *EMAHook) StateDict() map[string]*tensor.RawTensor {
	shadows := h.store.StateDict()
	stateDict := make(map[string]*tensor.RawTensor, len(shadows))
	for name, shadow := range shadows {
		stateDict[bufferName(name)] = shadow
	}
	return stateDict
}

// LoadStateDict restores shadow buffer values from checkpoint buffer names.
// Every registered shadow must be present with a matching shape and dtype.
func (h *EMAHook) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	byParam := make(map[string]*tensor.RawTensor, len(stateDict))
	for _, name := range h.store.Names() {
		src, ok := stateDict[bufferName(name)]
		if !ok {
			return fmt.Errorf("ema: missing shadow buffer %q in state dict", bufferName(name))
		}
		byParam[name] = src
	}
	if err := h.store.LoadStateDict(byParam); err != nil {
		return fmt.Errorf("ema: %w", err)
	}
	return nil
}
