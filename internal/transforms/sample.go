// Package transforms implements the data-augmentation side of the training
// extensions: annotated samples, per-image pipelines, centered padding, and
// the four-image mosaic compositor.
package transforms

import (
	"fmt"

	"github.com/detkit-ml/detkit/internal/tensor"
)

// Box is an axis-aligned bounding box as corner coordinates
// [x1, y1, x2, y2], expressed in pixel space of the image it accompanies.
type Box [4]float32

// Offset returns the box translated by (dx, dy).
func (b Box) Offset(dx, dy float32) Box {
	return Box{b[0] + dx, b[1] + dy, b[2] + dx, b[3] + dy}
}

// Sample is one annotated training image flowing through a pipeline.
//
// Boxes and Labels are parallel: Labels[i] is the class of Boxes[i], and
// every transform must keep that positional correspondence. Any geometric
// transform of Image must apply the same transform to every box field:
// Boxes, IgnoredBoxes (regions excluded from the loss), and Proposals
// (pre-computed region proposals riding along with the sample).
//
// Shape metadata is H×W×C: ImgShape is the current image shape, OriShape the
// shape before any pipeline ran, PadShape the shape after padding.
type Sample struct {
	Image        *tensor.RawTensor
	Boxes        []Box
	IgnoredBoxes []Box
	Labels       []int64
	Proposals    []Box

	ImgShape tensor.Shape
	OriShape tensor.Shape
	PadShape tensor.Shape
}

// Transform mutates a sample and returns it. Implementations may modify the
// sample in place; callers must use the returned sample.
type Transform interface {
	Apply(s *Sample) (*Sample, error)
}

// Dataset supplies raw annotated samples by index. It is owned by the
// training runner; the mosaic compositor only draws from it.
type Dataset interface {
	// Len returns the number of samples.
	Len() int
	// Sample returns the raw sample at the index. Errors propagate to the
	// transform's caller unmodified; the compositor never retries, since
	// a retry would skew the random distribution of composited samples.
	Sample(idx int) (*Sample, error)
}

// ProposalProvider is an optional side-channel of pre-computed region
// proposals keyed by sample index. Datasets that carry proposals implement
// it in addition to Dataset.
type ProposalProvider interface {
	Proposals(idx int) []Box
}

// imageShape returns the sample's padded shape if a pipeline recorded one,
// falling back to the image's own shape.
func imageShape(s *Sample) tensor.Shape {
	if len(s.PadShape) == 3 {
		return s.PadShape
	}
	return s.Image.Shape()
}

// blit copies src (H×W×C) into dst (H×W×C) with src's top-left corner at
// (x, y) in dst coordinates. Both tensors must share dtype and channel
// count, and src must fit entirely inside dst.
func blit(dst, src *tensor.RawTensor, x, y int) error {
	if dst.DType() != src.DType() {
		return fmt.Errorf("blit: dtype mismatch: %s vs %s", dst.DType(), src.DType())
	}
	dstShape, srcShape := dst.Shape(), src.Shape()
	if len(dstShape) != 3 || len(srcShape) != 3 {
		return fmt.Errorf("blit: expected H×W×C images, got %v and %v", dstShape, srcShape)
	}
	if dstShape[2] != srcShape[2] {
		return fmt.Errorf("blit: channel mismatch: %d vs %d", dstShape[2], srcShape[2])
	}
	if x < 0 || y < 0 || y+srcShape[0] > dstShape[0] || x+srcShape[1] > dstShape[1] {
		return fmt.Errorf("blit: source %v at (%d, %d) exceeds destination %v", srcShape, x, y, dstShape)
	}

	elem := dst.DType().Size() * dstShape[2]
	dstRow := dstShape[1] * elem
	srcRow := srcShape[1] * elem
	dstData, srcData := dst.Data(), src.Data()

	for row := 0; row < srcShape[0]; row++ {
		dstOff := (y+row)*dstRow + x*elem
		copy(dstData[dstOff:dstOff+srcRow], srcData[row*srcRow:(row+1)*srcRow])
	}
	return nil
}
