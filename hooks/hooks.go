// Copyright 2025 DetKit Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package hooks

import (
	"github.com/detkit-ml/detkit/internal/hooks"
)

// Hook receives callbacks at training lifecycle points.
type Hook = hooks.Hook

// BaseHook provides no-op implementations of every Hook callback, for
// embedding in hooks that only need some of them.
type BaseHook = hooks.BaseHook

// Runner is the training-loop surface hooks operate on.
type Runner = hooks.Runner

// TrainOutputs carries the per-iteration results hooks can read.
type TrainOutputs = hooks.TrainOutputs

// LogBuffer accumulates weighted metric averages between log flushes.
type LogBuffer = hooks.LogBuffer

// NewLogBuffer creates an empty log buffer.
func NewLogBuffer() *LogBuffer {
	return hooks.NewLogBuffer()
}

// EMAHook maintains exponential moving averages of floating-point model
// parameters and swaps them into the model around epoch boundaries.
type EMAHook = hooks.EMAHook

// EMAConfig contains configuration for EMAHook.
type EMAConfig = hooks.EMAConfig

// NewEMAHook creates an EMA hook.
//
// Example:
//
//	hook, err := hooks.NewEMAHook(hooks.EMAConfig{
//	    Momentum: 0.9999,
//	    Interval: 2,
//	    WarmUp:   2000,
//	})
func NewEMAHook(config EMAConfig) (*EMAHook, error) {
	return hooks.NewEMAHook(config)
}

// GradAccumOptimizerHook drives gradient clearing, backprop, clipping and
// optimizer steps, accumulating gradients over a window of iterations.
type GradAccumOptimizerHook = hooks.GradAccumOptimizerHook

// OptimizerHookConfig contains configuration for GradAccumOptimizerHook.
type OptimizerHookConfig = hooks.OptimizerHookConfig

// NewGradAccumOptimizerHook creates the optimizer hook.
func NewGradAccumOptimizerHook(config OptimizerHookConfig) (*GradAccumOptimizerHook, error) {
	return hooks.NewGradAccumOptimizerHook(config)
}

// BiasPreheatHook raises bias learning rates at the start of a run,
// decaying linearly back to the configured rates.
type BiasPreheatHook = hooks.BiasPreheatHook

// BiasPreheatConfig contains configuration for BiasPreheatHook.
type BiasPreheatConfig = hooks.BiasPreheatConfig

// NewBiasPreheatHook creates a bias preheat hook.
func NewBiasPreheatHook(config BiasPreheatConfig) *BiasPreheatHook {
	return hooks.NewBiasPreheatHook(config)
}
