// Copyright 2025 DetKit Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimizers and gradient utilities for DetKit.
//
// # Overview
//
// The package contains:
//   - SGD with optional momentum, operating over parameter groups
//   - ClipGradNorm for global-norm gradient clipping
//   - GradScaler for dynamic loss scaling with reduced-precision gradients
//
// # Parameter Groups
//
// Every optimizer exposes its parameters through ParamGroup values, each
// carrying its own learning rate. PerParamGroups builds one group per
// parameter, which the bias preheat hook requires to adjust bias rates
// independently:
//
//	groups := optim.PerParamGroups(model.Parameters(), 0.01)
//	optimizer := optim.NewSGDWithGroups(groups, optim.SGDConfig{Momentum: 0.9})
//
// # Loss Scaling
//
// GradScaler multiplies the loss before backprop, skips optimizer steps
// when scaled gradients overflow, and adapts the scale with a standard
// growth/backoff schedule. Step unscales the gradients before applying the
// optimizer, so parameter updates are always in unscaled units.
package optim
