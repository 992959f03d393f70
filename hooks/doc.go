// Copyright 2025 DetKit Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package hooks provides training-loop hooks for detection training.
//
// # Overview
//
// A training runner calls hooks at fixed lifecycle points:
//
//	BeforeRun
//	for each epoch:
//	    BeforeTrainEpoch
//	    for each iteration:
//	        BeforeTrainIter
//	        forward pass
//	        AfterTrainIter
//	    AfterTrainEpoch
//
// Hooks return errors instead of mutating silently on inconsistent state;
// the runner is expected to stop on a hook error.
//
// # Provided Hooks
//
//   - EMAHook: exponential moving averages of model parameters with a
//     warm-up momentum schedule, swapped into the model around epoch
//     boundaries so evaluation and checkpointing see the averaged weights
//   - GradAccumOptimizerHook: gradient accumulation over an iteration
//     window, with optional global-norm clipping and dynamic loss scaling
//   - BiasPreheatHook: elevated bias learning rates over the first
//     iterations, decaying linearly to the configured rates
//
// # The Runner Contract
//
// Hooks depend on the runner's iteration counter being absolute across
// resumes and on strict BeforeTrainEpoch/AfterTrainEpoch alternation.
// EMAHook tracks the alternation explicitly and fails loudly when it
// breaks, rather than corrupting weights.
package hooks
