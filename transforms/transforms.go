// Copyright 2025 DetKit Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package transforms

import (
	"github.com/detkit-ml/detkit/internal/transforms"
)

// Box is an axis-aligned bounding box as [x1, y1, x2, y2] in pixels.
type Box = transforms.Box

// Sample is one training example flowing through a pipeline.
type Sample = transforms.Sample

// Transform maps one sample to another, possibly mutating it in place.
type Transform = transforms.Transform

// Dataset provides random access to training samples.
type Dataset = transforms.Dataset

// ProposalProvider is implemented by datasets that carry external
// proposals alongside their samples.
type ProposalProvider = transforms.ProposalProvider

// Compose chains transforms in order.
type Compose = transforms.Compose

// NewCompose creates a pipeline that applies the given transforms in order.
func NewCompose(ts ...Transform) *Compose {
	return transforms.NewCompose(ts...)
}

// Pad pads an image to a fixed size or to a size divisor, with the
// original content centered.
type Pad = transforms.Pad

// PadConfig contains configuration for Pad.
type PadConfig = transforms.PadConfig

// NewPad creates a padding transform. Exactly one of Size and SizeDivisor
// must be set.
//
// Example:
//
//	pad, err := transforms.NewPad(transforms.PadConfig{
//	    SizeDivisor: 32,
//	    PadVal:      114,
//	})
func NewPad(config PadConfig) (*Pad, error) {
	return transforms.NewPad(config)
}

// Mosaic composites the incoming sample with three randomly drawn dataset
// samples into one 2x2 canvas, remapping boxes and concatenating labels.
type Mosaic = transforms.Mosaic

// MosaicConfig contains configuration for Mosaic.
type MosaicConfig = transforms.MosaicConfig

// NewMosaic creates a mosaic transform. The pipeline runs on each of the
// four tiles before compositing.
func NewMosaic(dataset Dataset, pipeline Transform, config MosaicConfig) (*Mosaic, error) {
	return transforms.NewMosaic(dataset, pipeline, config)
}

// Pipeline configuration

// Builder constructs a transform from its YAML configuration node.
type Builder = transforms.Builder

// Builders maps stage type names to builders.
type Builders = transforms.Builders

// DefaultBuilders returns builders for the built-in stage types "pad" and
// "mosaic". The dataset supplies tiles for mosaic stages.
func DefaultBuilders(dataset Dataset) Builders {
	return transforms.DefaultBuilders(dataset)
}

// BuildPipeline parses a YAML stage list and builds the composed pipeline.
//
// Example:
//
//	pipeline, err := transforms.BuildPipeline(transforms.DefaultBuilders(ds), []byte(`
//	  - type: mosaic
//	    pad_val: 114
//	    pipeline:
//	      - type: pad
//	        size_divisor: 32
//	        pad_val: 114
//	`))
func BuildPipeline(builders Builders, data []byte) (Transform, error) {
	return transforms.BuildPipeline(builders, data)
}
