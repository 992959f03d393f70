package hooks

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/detkit-ml/detkit/internal/nn"
	"github.com/detkit-ml/detkit/internal/optim"
	"github.com/detkit-ml/detkit/internal/tensor"
)

// fakeModel is a mutable parameter list so tests can simulate a parameter
// set changing mid-run.
type fakeModel struct {
	params []*nn.Parameter
}

func (m *fakeModel) Parameters() []*nn.Parameter { return m.params }

func (m *fakeModel) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor, len(m.params))
	for _, p := range m.params {
		stateDict[p.Name()] = p.Tensor()
	}
	return stateDict
}

func (m *fakeModel) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for _, p := range m.params {
		if src, ok := stateDict[p.Name()]; ok {
			if err := p.Tensor().CopyFrom(src); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *fakeModel) ZeroGrad() {
	for _, p := range m.params {
		p.ZeroGrad()
	}
}

// fakeOptimizer counts zero/step calls.
type fakeOptimizer struct {
	groups []*optim.ParamGroup
	steps  int
	zeros  int
}

func (o *fakeOptimizer) Step() error { o.steps++; return nil }

func (o *fakeOptimizer) ZeroGrad() {
	o.zeros++
	for _, g := range o.groups {
		for _, p := range g.Params {
			p.ZeroGrad()
		}
	}
}

func (o *fakeOptimizer) GetLR() float32 {
	if len(o.groups) == 0 {
		return 0
	}
	return o.groups[0].LR
}

func (o *fakeOptimizer) ParamGroups() []*optim.ParamGroup { return o.groups }

// fakeRunner drives hooks from tests.
type fakeRunner struct {
	iter  int
	epoch int

	model nn.Model
	opt   optim.Optimizer

	backwardFn     func(scale float64) error
	backwardScales []float64

	outputs  TrainOutputs
	logBuf   *LogBuffer
	resumed  []string
	resumeFn func(path string) error
}

func newFakeRunner(model nn.Model, opt optim.Optimizer) *fakeRunner {
	return &fakeRunner{
		model:   model,
		opt:     opt,
		outputs: TrainOutputs{Loss: 1, NumSamples: 2},
		logBuf:  NewLogBuffer(),
	}
}

func (r *fakeRunner) Iter() int                  { return r.iter }
func (r *fakeRunner) Epoch() int                 { return r.epoch }
func (r *fakeRunner) Model() nn.Model            { return r.model }
func (r *fakeRunner) Optimizer() optim.Optimizer { return r.opt }

func (r *fakeRunner) Backward(scale float64) error {
	r.backwardScales = append(r.backwardScales, scale)
	if r.backwardFn != nil {
		return r.backwardFn(scale)
	}
	return nil
}

func (r *fakeRunner) Outputs() TrainOutputs { return r.outputs }
func (r *fakeRunner) LogBuffer() *LogBuffer { return r.logBuf }

func (r *fakeRunner) Resume(path string) error {
	r.resumed = append(r.resumed, path)
	if r.resumeFn != nil {
		return r.resumeFn(path)
	}
	return nil
}

func (r *fakeRunner) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func floatParam(t *testing.T, name string, values []float32) *nn.Parameter {
	t.Helper()
	raw, err := tensor.FromSlice(values, tensor.Shape{len(values)})
	require.NoError(t, err)
	return nn.NewParameter(name, raw)
}

func intParam(t *testing.T, name string, values []int64) *nn.Parameter {
	t.Helper()
	raw, err := tensor.FromSlice(values, tensor.Shape{len(values)})
	require.NoError(t, err)
	return nn.NewParameter(name, raw)
}

func gradFor(t *testing.T, p *nn.Parameter, values []float32) {
	t.Helper()
	grad, err := tensor.FromSlice(values, tensor.Shape{len(values)})
	require.NoError(t, err)
	p.SetGrad(grad)
}
