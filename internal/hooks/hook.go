// Package hooks implements training-iteration hooks driven by an
// externally-owned training runner: EMA parameter shadowing, gradient
// accumulation under loss scaling, and bias learning-rate preheat.
//
// The runner invokes each hook at fixed lifecycle points, in a fixed
// relative order: BeforeRun once, BeforeTrainEpoch/AfterTrainEpoch once per
// epoch, BeforeTrainIter/AfterTrainIter once per iteration. All hooks run
// single-threaded on the runner's control flow; none starts background work
// or needs locking.
package hooks

// Hook receives training lifecycle callbacks.
//
// Implementations embed BaseHook and override the callbacks they care
// about. A returned error is fatal to the run; hooks never use errors for
// flow control.
type Hook interface {
	BeforeRun(r Runner) error
	BeforeTrainEpoch(r Runner) error
	AfterTrainEpoch(r Runner) error
	BeforeTrainIter(r Runner) error
	AfterTrainIter(r Runner) error
}

// BaseHook is an embeddable no-op implementation of Hook.
type BaseHook struct{}

// BeforeRun implements Hook.
func (BaseHook) BeforeRun(Runner) error { return nil }

// BeforeTrainEpoch implements Hook.
func (BaseHook) BeforeTrainEpoch(Runner) error { return nil }

// AfterTrainEpoch implements Hook.
func (BaseHook) AfterTrainEpoch(Runner) error { return nil }

// BeforeTrainIter implements Hook.
func (BaseHook) BeforeTrainIter(Runner) error { return nil }

// AfterTrainIter implements Hook.
func (BaseHook) AfterTrainIter(Runner) error { return nil }
