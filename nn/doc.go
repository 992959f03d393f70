// Copyright 2025 DetKit Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the model-side types for DetKit's training utilities.
//
// # Overview
//
// DetKit does not implement layers or forward passes. The Model interface
// is the contract a trained model exposes to optimizers, hooks and
// checkpointing:
//
//   - Parameters: ordered list of named parameters
//   - StateDict / LoadStateDict: serialization boundary
//   - ZeroGrad: clear all gradients
//
// Any detection framework that exposes its parameters this way can use the
// hooks and optimizers directly. Sequential is a minimal concrete Model for
// examples and tests.
//
// # Saving and Loading
//
//	err := nn.Save(model, "model.dkpt", "Sequential", nil)
//	header, err := nn.Load("model.dkpt", model)
//
// SaveCheckpoint additionally records the epoch and iteration, so schedules
// such as momentum warm-up continue correctly after a resume.
package nn
