// Copyright 2025 DetKit Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/detkit-ml/detkit/internal/nn"
	"github.com/detkit-ml/detkit/internal/tensor"
)

// Model is the interface trained models expose to optimizers and hooks.
type Model = nn.Model

// Parameter represents a trainable parameter with an optional gradient.
type Parameter = nn.Parameter

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter(name string, t *tensor.RawTensor) *Parameter {
	return nn.NewParameter(name, t)
}

// Sequential is a minimal Model backed by an ordered parameter list.
type Sequential = nn.Sequential

// NewSequential creates a Sequential model from named parameters.
//
// Example:
//
//	w, _ := tensor.FromSlice([]float32{0.1, 0.2}, tensor.Shape{2})
//	b, _ := tensor.FromSlice([]float32{0}, tensor.Shape{1})
//	model, err := nn.NewSequential(
//	    nn.NewParameter("head.weight", w),
//	    nn.NewParameter("head.bias", b),
//	)
func NewSequential(params ...*Parameter) (*Sequential, error) {
	return nn.NewSequential(params...)
}
