package transforms

import "fmt"

// Compose applies a sequence of transforms in order, feeding each
// transform's output to the next. It is itself a Transform, so per-image
// pipelines nest inside the mosaic compositor.
type Compose struct {
	transforms []Transform
}

// NewCompose creates a pipeline from the given transforms.
func NewCompose(ts ...Transform) *Compose {
	return &Compose{transforms: ts}
}

// Apply runs the sample through every transform in order.
func (c *Compose) Apply(s *Sample) (*Sample, error) {
	var err error
	for i, t := range c.transforms {
		s, err = t.Apply(s)
		if err != nil {
			return nil, fmt.Errorf("pipeline stage %d: %w", i, err)
		}
	}
	return s, nil
}
