// Copyright 2025 DetKit Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package transforms provides detection data augmentation pipelines.
//
// # Overview
//
// A Sample carries an image tensor in Shape{height, width, channels}
// layout together with its boxes, labels and shape bookkeeping. Transforms
// map samples to samples and compose into pipelines.
//
// The two built-in transforms are:
//
//   - Pad: centered padding to a fixed size or a size divisor, with box
//     coordinates shifted to follow the content
//   - Mosaic: composites four samples into one 2x2 canvas sized to fit
//     all tiles, remapping every box into canvas coordinates
//
// # Mosaic Layout
//
// The incoming sample becomes the top-left tile; three more are drawn at
// random from the dataset. With the center seam at
// (xc, yc) = (max(w0, w2), max(h0, h1)), tiles are placed flush against
// the seam: top-left and bottom-left end at xc, top-left and top-right end
// at yc. The canvas is xc+max(w1, w3) wide and yc+max(h2, h3) tall, filled
// with the pad value where no tile lands.
//
// # Configuring Pipelines from YAML
//
// Pipelines can be declared as YAML stage lists and built with
// BuildPipeline. The stage set is open: callers register additional stage
// types by adding builders to the Builders map.
//
//	builders := transforms.DefaultBuilders(dataset)
//	pipeline, err := transforms.BuildPipeline(builders, configBytes)
package transforms
