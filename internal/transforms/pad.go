package transforms

import (
	"fmt"

	"github.com/detkit-ml/detkit/internal/tensor"
)

// Pad pads an image to a target shape, centering the original image and
// filling the border with a constant value. Box fields move with the
// image: boxes, ignored boxes and proposals are all offset by the left/top
// padding actually applied.
//
// There are two padding modes: (1) pad to a fixed size and (2) pad to the
// minimum size divisible by a given number. Exactly one must be configured.
type Pad struct {
	size        []int // fixed [height, width], nil when using divisor
	sizeDivisor int
	padVal      float64
}

// PadConfig holds configuration for the Pad transform.
type PadConfig struct {
	Size        []int   `yaml:"size"`         // Fixed [height, width] padding target
	SizeDivisor int     `yaml:"size_divisor"` // Pad to the next multiple of this divisor
	PadVal      float64 `yaml:"pad_val"`      // Fill value (default: 0)
}

// NewPad creates a Pad transform.
//
// Specifying both a fixed size and a size divisor, or neither, is a
// configuration error: there is no sensible best-effort default, so the
// constructor fails fast.
func NewPad(config PadConfig) (*Pad, error) {
	hasSize := len(config.Size) > 0
	hasDivisor := config.SizeDivisor > 0
	if hasSize == hasDivisor {
		return nil, fmt.Errorf("pad: exactly one of size and size_divisor must be set")
	}
	if hasSize && len(config.Size) != 2 {
		return nil, fmt.Errorf("pad: size must be [height, width], got %v", config.Size)
	}

	return &Pad{
		size:        config.Size,
		sizeDivisor: config.SizeDivisor,
		padVal:      config.PadVal,
	}, nil
}

// Apply pads the sample's image and offsets its boxes accordingly.
func (p *Pad) Apply(s *Sample) (*Sample, error) {
	shape := s.Image.Shape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("pad: expected H×W×C image, got shape %v", shape)
	}
	oriH, oriW, channels := shape[0], shape[1], shape[2]

	var padH, padW int
	if p.size != nil {
		padH, padW = p.size[0], p.size[1]
	} else {
		padH = (oriH + p.sizeDivisor - 1) / p.sizeDivisor * p.sizeDivisor
		padW = (oriW + p.sizeDivisor - 1) / p.sizeDivisor * p.sizeDivisor
	}
	if padH < oriH || padW < oriW {
		return nil, fmt.Errorf("pad: target %dx%d smaller than image %dx%d", padH, padW, oriH, oriW)
	}

	padTop := (padH - oriH) / 2
	padLeft := (padW - oriW) / 2

	padded, err := tensor.NewRaw(tensor.Shape{padH, padW, channels}, s.Image.DType())
	if err != nil {
		return nil, fmt.Errorf("pad: %w", err)
	}
	if p.padVal != 0 {
		padded.FillValue(p.padVal)
	}
	if err := blit(padded, s.Image, padLeft, padTop); err != nil {
		return nil, fmt.Errorf("pad: %w", err)
	}

	dx, dy := float32(padLeft), float32(padTop)
	for i, b := range s.Boxes {
		s.Boxes[i] = b.Offset(dx, dy)
	}
	for i, b := range s.IgnoredBoxes {
		s.IgnoredBoxes[i] = b.Offset(dx, dy)
	}
	for i, b := range s.Proposals {
		s.Proposals[i] = b.Offset(dx, dy)
	}

	s.Image = padded
	s.ImgShape = tensor.Shape{padH, padW, channels}
	s.PadShape = tensor.Shape{padH, padW, channels}
	return s, nil
}
