package transforms

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/detkit-ml/detkit/internal/tensor"
)

// Mosaic composites four independently-loaded samples into one canvas: the
// incoming sample plus three more drawn uniformly at random (with
// replacement) from the dataset. Each of the four runs through the
// configured per-image pipeline first, then the tiles are placed in a fixed
// 2×2 quadrant layout around a join point determined by the tile shapes:
//
//	yc = max(h0, h1)   xc = max(w0, w2)
//
//	tile 0 → top-left     (bottom-right corner at (xc, yc))
//	tile 1 → top-right    (bottom-left corner at (xc, yc))
//	tile 2 → bottom-left  (top-right corner at (xc, yc))
//	tile 3 → bottom-right (top-left corner at (xc, yc))
//
// The placement order is a contract, not a random choice: the join point is
// always the common corner of all four tiles, whatever their sizes. Every
// box field (boxes, ignored boxes, proposals) is offset by its tile's
// placement origin; labels concatenate in the same tile order, so
// box-to-label correspondence survives. Boxes are NOT clipped against
// canvas edges; clipping belongs to downstream transforms.
type Mosaic struct {
	dataset  Dataset
	pipeline Transform
	padVal   float64
	rng      *rand.Rand
}

// MosaicConfig holds configuration for the Mosaic transform.
type MosaicConfig struct {
	PadVal float64 // Canvas fill value (default: 0)

	// Rand drives the sample-index draws. Defaults to a time-seeded
	// source; inject a fixed-seed Rand for reproducible composites.
	Rand *rand.Rand
}

// NewMosaic creates a Mosaic transform drawing from the dataset and running
// every tile through the per-image pipeline.
func NewMosaic(dataset Dataset, pipeline Transform, config MosaicConfig) (*Mosaic, error) {
	if dataset == nil {
		return nil, fmt.Errorf("mosaic: dataset is required")
	}
	if pipeline == nil {
		return nil, fmt.Errorf("mosaic: per-image pipeline is required")
	}

	rng := config.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Mosaic{
		dataset:  dataset,
		pipeline: pipeline,
		padVal:   config.PadVal,
		rng:      rng,
	}, nil
}

// Apply composites the sample with three freshly drawn ones.
func (m *Mosaic) Apply(s *Sample) (*Sample, error) {
	tiles := make([]*Sample, 0, 4)
	tiles = append(tiles, s)

	proposals, _ := m.dataset.(ProposalProvider)
	for i := 0; i < 3; i++ {
		idx := m.rng.Intn(m.dataset.Len())
		drawn, err := m.dataset.Sample(idx)
		if err != nil {
			return nil, err
		}
		if proposals != nil {
			drawn.Proposals = proposals.Proposals(idx)
		}
		tiles = append(tiles, drawn)
	}

	for i := range tiles {
		piped, err := m.pipeline.Apply(tiles[i])
		if err != nil {
			return nil, fmt.Errorf("mosaic: tile %d: %w", i, err)
		}
		tiles[i] = piped
	}

	shapes := make([]tensor.Shape, 4)
	for i, tile := range tiles {
		shapes[i] = imageShape(tile)
		if len(shapes[i]) != 3 {
			return nil, fmt.Errorf("mosaic: tile %d: expected H×W×C image, got shape %v", i, shapes[i])
		}
		if shapes[i][2] != shapes[0][2] {
			return nil, fmt.Errorf("mosaic: tile %d has %d channels, tile 0 has %d",
				i, shapes[i][2], shapes[0][2])
		}
	}

	yc := max(shapes[0][0], shapes[1][0]) // height of the top row
	xc := max(shapes[0][1], shapes[2][1]) // width of the left column
	canvasH := yc + max(shapes[2][0], shapes[3][0])
	canvasW := xc + max(shapes[1][1], shapes[3][1])
	canvasShape := tensor.Shape{canvasH, canvasW, shapes[0][2]}

	canvas, err := tensor.NewRaw(canvasShape, tiles[0].Image.DType())
	if err != nil {
		return nil, fmt.Errorf("mosaic: %w", err)
	}
	if m.padVal != 0 {
		canvas.FillValue(m.padVal)
	}

	out := &Sample{
		Image:    canvas,
		ImgShape: canvasShape,
		OriShape: canvasShape.Clone(),
		PadShape: canvasShape.Clone(),
	}

	for i, tile := range tiles {
		h, w := shapes[i][0], shapes[i][1]

		var x1, y1 int
		switch i {
		case 0: // top left
			x1, y1 = xc-w, yc-h
		case 1: // top right
			x1, y1 = xc, yc-h
		case 2: // bottom left
			x1, y1 = xc-w, yc
		case 3: // bottom right
			x1, y1 = xc, yc
		}

		if err := blit(canvas, tile.Image, x1, y1); err != nil {
			return nil, fmt.Errorf("mosaic: tile %d: %w", i, err)
		}

		dx, dy := float32(x1), float32(y1)
		for _, b := range tile.Boxes {
			out.Boxes = append(out.Boxes, b.Offset(dx, dy))
		}
		for _, b := range tile.IgnoredBoxes {
			out.IgnoredBoxes = append(out.IgnoredBoxes, b.Offset(dx, dy))
		}
		for _, b := range tile.Proposals {
			out.Proposals = append(out.Proposals, b.Offset(dx, dy))
		}
		out.Labels = append(out.Labels, tile.Labels...)
	}

	return out, nil
}
