// Package ema implements the parameter shadow store: one exponential-moving-
// average buffer per floating-point model parameter.
//
// The store owns its shadow buffers outright, keyed by parameter name, and
// is persisted through its own StateDict rather than living inside the
// model's buffer table. Shadow lifetime is therefore independent of the
// model object.
package ema

import (
	"fmt"

	"github.com/detkit-ml/detkit/internal/tensor"
)

// ShadowStore maintains EMA shadow buffers keyed by parameter name.
//
// All mutation happens in place on the shadow buffers (Update) or as a pure
// buffer exchange with the live parameter (Swap). The store is driven
// single-threaded from training-loop callbacks and performs no locking.
type ShadowStore struct {
	names   []string // registration order
	shadows map[string]*tensor.RawTensor
}

// NewShadowStore creates an empty shadow store.
func NewShadowStore() *ShadowStore {
	return &ShadowStore{
		shadows: make(map[string]*tensor.RawTensor),
	}
}

// Register creates a shadow buffer for the named parameter, cloned from the
// tensor's current value.
//
// Non-floating-point tensors are skipped: no shadow entry is created for
// them and Register returns nil. Registering the same name twice is an
// error.
func (s *ShadowStore) Register(name string, t *tensor.RawTensor) error {
	if !t.DType().IsFloatingPoint() {
		return nil
	}
	if _, exists := s.shadows[name]; exists {
		return fmt.Errorf("shadow buffer %q already registered", name)
	}
	s.names = append(s.names, name)
	s.shadows[name] = t.Clone()
	return nil
}

// Has reports whether a shadow buffer exists for the name.
func (s *ShadowStore) Has(name string) bool {
	_, ok := s.shadows[name]
	return ok
}

// Len returns the number of shadow buffers.
func (s *ShadowStore) Len() int {
	return len(s.names)
}

// Names returns the shadowed parameter names in registration order.
func (s *ShadowStore) Names() []string {
	return append([]string(nil), s.names...)
}

// Update applies the EMA update rule in place:
//
//	shadow = momentum*shadow + (1-momentum)*current
//
// An unknown name or a shape/dtype mismatch with the registered buffer is an
// error; the caller must treat it as fatal, since continuing with a shadow
// table that no longer matches the parameter set silently corrupts weights.
func (s *ShadowStore) Update(name string, current *tensor.RawTensor, momentum float64) error {
	shadow, ok := s.shadows[name]
	if !ok {
		return fmt.Errorf("no shadow buffer registered for %q", name)
	}
	if shadow.DType() != current.DType() {
		return fmt.Errorf("shadow %q: dtype mismatch: %s vs %s", name, shadow.DType(), current.DType())
	}
	if !shadow.Shape().Equal(current.Shape()) {
		return fmt.Errorf("shadow %q: shape mismatch: %v vs %v", name, shadow.Shape(), current.Shape())
	}

	switch shadow.DType() {
	case tensor.Float32:
		m := float32(momentum)
		dst, src := shadow.AsFloat32(), current.AsFloat32()
		for i := range dst {
			dst[i] = m*dst[i] + (1-m)*src[i]
		}
	case tensor.Float64:
		dst, src := shadow.AsFloat64(), current.AsFloat64()
		for i := range dst {
			dst[i] = momentum*dst[i] + (1-momentum)*src[i]
		}
	}
	return nil
}

// Swap exchanges the live tensor's buffer with the shadow buffer in place.
// After the call the live tensor holds the averaged values and the shadow
// holds the previous live values; a second Swap restores both exactly.
func (s *ShadowStore) Swap(name string, live *tensor.RawTensor) error {
	shadow, ok := s.shadows[name]
	if !ok {
		return fmt.Errorf("no shadow buffer registered for %q", name)
	}
	if err := tensor.Swap(live, shadow); err != nil {
		return fmt.Errorf("shadow %q: %w", name, err)
	}
	return nil
}

// StateDict returns the shadow buffers keyed by parameter name.
// The returned tensors are the live shadow buffers, not copies.
func (s *ShadowStore) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor, len(s.names))
	for _, name := range s.names {
		stateDict[name] = s.shadows[name]
	}
	return stateDict
}

// LoadStateDict replaces the values of registered shadow buffers with those
// in the state dictionary. Every registered buffer must be present with a
// matching shape and dtype.
func (s *ShadowStore) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for _, name := range s.names {
		src, ok := stateDict[name]
		if !ok {
			return fmt.Errorf("missing shadow buffer %q in state dict", name)
		}
		if err := s.shadows[name].CopyFrom(src); err != nil {
			return fmt.Errorf("shadow %q: %w", name, err)
		}
	}
	return nil
}
