// Copyright 2025 DetKit Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/detkit-ml/detkit/internal/nn"
	"github.com/detkit-ml/detkit/internal/optim"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// ParamGroup is a set of parameters sharing a learning rate.
type ParamGroup = optim.ParamGroup

// Config represents the base configuration for optimizers.
type Config = optim.Config

// PerParamGroups places every parameter in its own group, all at the same
// learning rate. Per-parameter groups let hooks adjust individual
// parameters, such as raising bias learning rates during preheat.
func PerParamGroups(params []*nn.Parameter, lr float32) []*ParamGroup {
	return optim.PerParamGroups(params, lr)
}

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer over a single parameter group.
//
// Example:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	return optim.NewSGD(params, config)
}

// NewSGDWithGroups creates an SGD optimizer over explicit parameter groups,
// each with its own learning rate.
func NewSGDWithGroups(groups []*ParamGroup, config SGDConfig) *SGD {
	return optim.NewSGDWithGroups(groups, config)
}

// Gradient utilities

// ClipGradNorm clips gradients in place so their global L2 norm does not
// exceed maxNorm. Returns the norm before clipping and whether any
// gradient participated.
func ClipGradNorm(params []*nn.Parameter, maxNorm float64) (float64, bool) {
	return optim.ClipGradNorm(params, maxNorm)
}

// GradScaler implements dynamic loss scaling for reduced-precision
// gradients.
type GradScaler = optim.GradScaler

// GradScalerConfig contains configuration for GradScaler.
type GradScalerConfig = optim.GradScalerConfig

// NewGradScaler creates a GradScaler.
//
// Example:
//
//	scaler := optim.NewGradScaler(optim.GradScalerConfig{InitScale: 512})
func NewGradScaler(config GradScalerConfig) *GradScaler {
	return optim.NewGradScaler(config)
}
