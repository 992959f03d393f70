package optim

import (
	"math"

	"github.com/detkit-ml/detkit/internal/nn"
	"github.com/detkit-ml/detkit/internal/tensor"
)

// GradScaler implements dynamic loss scaling for reduced-precision training.
//
// The loss is multiplied by the current scale before backpropagation so that
// small gradients stay representable; the optimizer step is skipped and the
// scale reduced whenever any gradient overflows to Inf/NaN, and the scale
// grows again after a run of overflow-free steps.
type GradScaler struct {
	scale          float64
	growthFactor   float64
	backoffFactor  float64
	growthInterval int
	goodSteps      int
}

// GradScalerConfig holds configuration for GradScaler.
type GradScalerConfig struct {
	InitScale      float64 // Initial loss scale (default: 65536)
	GrowthFactor   float64 // Multiplier after GrowthInterval good steps (default: 2)
	BackoffFactor  float64 // Multiplier after an overflow (default: 0.5)
	GrowthInterval int     // Good steps before growing the scale (default: 2000)
}

// NewGradScaler creates a GradScaler with the given configuration.
func NewGradScaler(config GradScalerConfig) *GradScaler {
	if config.InitScale == 0 {
		config.InitScale = 65536
	}
	if config.GrowthFactor == 0 {
		config.GrowthFactor = 2
	}
	if config.BackoffFactor == 0 {
		config.BackoffFactor = 0.5
	}
	if config.GrowthInterval == 0 {
		config.GrowthInterval = 2000
	}
	return &GradScaler{
		scale:          config.InitScale,
		growthFactor:   config.GrowthFactor,
		backoffFactor:  config.BackoffFactor,
		growthInterval: config.GrowthInterval,
	}
}

// Scale returns the current loss scale.
func (g *GradScaler) Scale() float64 {
	return g.scale
}

// Step divides every gradient by the current scale and applies opt.Step(),
// unless any gradient is non-finite, in which case the step is skipped and
// the scale backed off. Returns whether the step was applied.
//
// Overflow is detected on the still-scaled gradients: an overflow that the
// division would mask is exactly the signal the backoff needs.
func (g *GradScaler) Step(opt Optimizer) (bool, error) {
	for _, group := range opt.ParamGroups() {
		if hasNonFiniteGrad(group.Params) {
			g.goodSteps = 0
			g.scale *= g.backoffFactor
			return false, nil
		}
	}
	for _, group := range opt.ParamGroups() {
		unscaleGrads(group.Params, g.scale)
	}
	if err := opt.Step(); err != nil {
		return false, err
	}
	return true, nil
}

// Update advances the growth schedule after a successful step.
func (g *GradScaler) Update() {
	g.goodSteps++
	if g.goodSteps >= g.growthInterval {
		g.goodSteps = 0
		g.scale *= g.growthFactor
	}
}

func unscaleGrads(params []*nn.Parameter, scale float64) {
	if scale == 1 {
		return
	}
	inv := 1 / scale
	for _, p := range params {
		grad := p.Grad()
		if grad == nil {
			continue
		}
		switch grad.DType() {
		case tensor.Float32:
			f := float32(inv)
			data := grad.AsFloat32()
			for i := range data {
				data[i] *= f
			}
		case tensor.Float64:
			data := grad.AsFloat64()
			for i := range data {
				data[i] *= inv
			}
		}
	}
}

func hasNonFiniteGrad(params []*nn.Parameter) bool {
	for _, p := range params {
		grad := p.Grad()
		if grad == nil {
			continue
		}
		switch grad.DType() {
		case tensor.Float32:
			for _, v := range grad.AsFloat32() {
				if math.IsInf(float64(v), 0) || math.IsNaN(float64(v)) {
					return true
				}
			}
		case tensor.Float64:
			for _, v := range grad.AsFloat64() {
				if math.IsInf(v, 0) || math.IsNaN(v) {
					return true
				}
			}
		}
	}
	return false
}
