package hooks

import (
	"log/slog"

	"github.com/detkit-ml/detkit/internal/nn"
	"github.com/detkit-ml/detkit/internal/optim"
)

// Runner is the interface the hooks consume from the training runner.
//
// The runner owns the model, the optimizer, the loss, and the backward
// pass; hooks only steer when those are invoked.
type Runner interface {
	// Iter returns the current training iteration, counted from 0 across
	// the whole run (it does not reset per epoch and persists across
	// checkpoint resume).
	Iter() int

	// Epoch returns the current epoch, counted from 0.
	Epoch() int

	// Model returns the model under training.
	Model() nn.Model

	// Optimizer returns the optimizer driving the model.
	Optimizer() optim.Optimizer

	// Backward backpropagates the current iteration's loss multiplied by
	// scale, accumulating gradients into the model's parameters. Pass 1
	// for unscaled backprop.
	Backward(scale float64) error

	// Outputs returns the forward results of the current iteration.
	Outputs() TrainOutputs

	// LogBuffer returns the runner's metric sink.
	LogBuffer() *LogBuffer

	// Resume restores the run from a checkpoint file: model state, hook
	// state, and the iteration/epoch counters.
	Resume(path string) error

	// Logger returns the run's logger.
	Logger() *slog.Logger
}

// TrainOutputs carries the per-iteration forward results hooks may inspect.
type TrainOutputs struct {
	Loss       float64 // Loss value of the iteration
	NumSamples int     // Samples in the iteration's batch
}

// LogBuffer accumulates named training metrics with sample-count weights,
// mirroring how runners average metrics over logging windows.
type LogBuffer struct {
	sums   map[string]float64
	counts map[string]int
}

// NewLogBuffer creates an empty log buffer.
func NewLogBuffer() *LogBuffer {
	return &LogBuffer{
		sums:   make(map[string]float64),
		counts: make(map[string]int),
	}
}

// Update records a batch of metric values weighted by count.
func (b *LogBuffer) Update(vars map[string]float64, count int) {
	if count <= 0 {
		count = 1
	}
	for name, value := range vars {
		b.sums[name] += value * float64(count)
		b.counts[name] += count
	}
}

// Average returns the weighted average of a metric and whether it was ever
// recorded.
func (b *LogBuffer) Average(name string) (float64, bool) {
	count, ok := b.counts[name]
	if !ok || count == 0 {
		return 0, false
	}
	return b.sums[name] / float64(count), true
}

// Clear drops all recorded metrics, typically after a logging window.
func (b *LogBuffer) Clear() {
	b.sums = make(map[string]float64)
	b.counts = make(map[string]int)
}
