package nn

import (
	"github.com/detkit-ml/detkit/internal/tensor"
)

// Parameter represents a named trainable parameter of a model.
//
// Parameters carry the parameter tensor itself plus the gradient tensor
// accumulated for it by the training runner's backward pass. Names follow
// the dotted module path convention (e.g. "backbone.conv1.weight",
// "head.cls.bias"); hooks rely on the ".bias" suffix to find bias
// parameters.
//
// Example:
//
//	weight := nn.NewParameter("linear1.weight", weightTensor)
//	w := weight.Tensor()
//	grad := weight.Grad() // nil before the first backward pass
type Parameter struct {
	name   string
	tensor *tensor.RawTensor
	grad   *tensor.RawTensor
}

// NewParameter creates a new trainable parameter.
//
// The parameter tensor should be initialized before creating the Parameter.
// Gradient storage is allocated lazily by the first backward pass.
func NewParameter(name string, t *tensor.RawTensor) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t,
		grad:   nil,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.RawTensor {
	return p.tensor
}

// Grad returns the gradient tensor.
//
// Returns nil if no gradient has been computed yet (before backward pass).
func (p *Parameter) Grad() *tensor.RawTensor {
	return p.grad
}

// SetGrad sets the gradient tensor.
//
// This is typically called by the training runner's backward pass.
func (p *Parameter) SetGrad(grad *tensor.RawTensor) {
	p.grad = grad
}

// ZeroGrad clears the gradient tensor.
//
// Under gradient accumulation this must only happen at the start of each
// accumulation window, not every iteration; the optimizer hook owns that
// decision.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}
