package optim

import (
	"math"

	"github.com/detkit-ml/detkit/internal/nn"
	"github.com/detkit-ml/detkit/internal/tensor"
)

// ClipGradNorm clips the gradients of params so that their global L2 norm
// does not exceed maxNorm, scaling every gradient in place by
// maxNorm/(norm+1e-6) when the norm is larger.
//
// Returns the total norm computed BEFORE clipping and whether any gradient
// participated. When gradients carry a loss-scaling factor, the caller
// scales maxNorm by the same factor and divides the returned norm back down
// before logging, so logged values stay comparable across scale factors.
func ClipGradNorm(params []*nn.Parameter, maxNorm float64) (float64, bool) {
	var sumSquares float64
	clipped := false

	for _, p := range params {
		grad := p.Grad()
		if grad == nil || !grad.DType().IsFloatingPoint() {
			continue
		}
		clipped = true
		switch grad.DType() {
		case tensor.Float32:
			for _, v := range grad.AsFloat32() {
				sumSquares += float64(v) * float64(v)
			}
		case tensor.Float64:
			for _, v := range grad.AsFloat64() {
				sumSquares += v * v
			}
		}
	}
	if !clipped {
		return 0, false
	}

	totalNorm := math.Sqrt(sumSquares)
	if totalNorm <= maxNorm {
		return totalNorm, true
	}

	scale := maxNorm / (totalNorm + 1e-6)
	for _, p := range params {
		grad := p.Grad()
		if grad == nil || !grad.DType().IsFloatingPoint() {
			continue
		}
		switch grad.DType() {
		case tensor.Float32:
			s := float32(scale)
			data := grad.AsFloat32()
			for i := range data {
				data[i] *= s
			}
		case tensor.Float64:
			data := grad.AsFloat64()
			for i := range data {
				data[i] *= scale
			}
		}
	}
	return totalNorm, true
}
