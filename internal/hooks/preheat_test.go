package hooks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/detkit-ml/detkit/internal/nn"
	"github.com/detkit-ml/detkit/internal/optim"
)

func preheatFixture(t *testing.T) (*fakeModel, *fakeOptimizer) {
	t.Helper()
	m := &fakeModel{}
	m.params = append(m.params,
		floatParam(t, "conv.weight", []float32{1, 2}),
		floatParam(t, "conv.bias", []float32{3}),
		floatParam(t, "head.bias", []float32{4}),
	)
	opt := &fakeOptimizer{}
	for _, p := range m.params {
		opt.groups = append(opt.groups, &optim.ParamGroup{
			Params: []*nn.Parameter{p},
			LR:     0.1,
		})
	}
	return m, opt
}

func TestBiasPreheatRecordsBiasGroups(t *testing.T) {
	hook := NewBiasPreheatHook(BiasPreheatConfig{})
	m, opt := preheatFixture(t)
	runner := newFakeRunner(m, opt)

	require.NoError(t, hook.BeforeRun(runner))
	assert.False(t, hook.disabled)
	require.Len(t, hook.baseLR, 2)
	assert.Contains(t, hook.baseLR, 1)
	assert.Contains(t, hook.baseLR, 2)
}

// TestBiasPreheatSchedule checks the linear decay: ratio 10 at iteration 0,
// ratio 5.5 halfway through, base rate from the preheat end onward.
func TestBiasPreheatSchedule(t *testing.T) {
	hook := NewBiasPreheatHook(BiasPreheatConfig{PreheatIters: 2000, PreheatRatio: 10})
	m, opt := preheatFixture(t)
	runner := newFakeRunner(m, opt)
	require.NoError(t, hook.BeforeRun(runner))

	runner.iter = 0
	require.NoError(t, hook.BeforeTrainIter(runner))
	assert.InDelta(t, 1.0, float64(opt.groups[1].LR), 1e-6, "10x base at the start")
	assert.InDelta(t, 1.0, float64(opt.groups[2].LR), 1e-6)
	assert.InDelta(t, 0.1, float64(opt.groups[0].LR), 1e-6, "non-bias group untouched")

	runner.iter = 1000
	require.NoError(t, hook.BeforeTrainIter(runner))
	assert.InDelta(t, 0.55, float64(opt.groups[1].LR), 1e-6, "(10-1)*0.5+1 = 5.5x base halfway")

	runner.iter = 1999
	require.NoError(t, hook.BeforeTrainIter(runner))
	last := opt.groups[1].LR

	// At and past the preheat end the hook leaves rates alone.
	runner.iter = 2000
	require.NoError(t, hook.BeforeTrainIter(runner))
	assert.Equal(t, last, opt.groups[1].LR)
	assert.InDelta(t, 0.1, float64(last), 0.01, "last preheat rate is close to base")
}

func TestBiasPreheatDisablesOnGroupMismatch(t *testing.T) {
	hook := NewBiasPreheatHook(BiasPreheatConfig{})
	m, _ := preheatFixture(t)

	// One group holding every parameter: groups cannot be addressed per
	// parameter.
	opt := &fakeOptimizer{groups: []*optim.ParamGroup{{Params: m.params, LR: 0.1}}}
	runner := newFakeRunner(m, opt)

	require.NoError(t, hook.BeforeRun(runner))
	assert.True(t, hook.disabled)

	runner.iter = 0
	require.NoError(t, hook.BeforeTrainIter(runner))
	assert.InDelta(t, 0.1, float64(opt.groups[0].LR), 1e-6, "disabled hook must not touch rates")
}

func TestBiasPreheatRespectsPerGroupBaseRates(t *testing.T) {
	hook := NewBiasPreheatHook(BiasPreheatConfig{PreheatIters: 100, PreheatRatio: 4})
	m, opt := preheatFixture(t)
	opt.groups[2].LR = 0.2
	runner := newFakeRunner(m, opt)
	require.NoError(t, hook.BeforeRun(runner))

	runner.iter = 0
	require.NoError(t, hook.BeforeTrainIter(runner))
	assert.InDelta(t, 0.4, float64(opt.groups[1].LR), 1e-6)
	assert.InDelta(t, 0.8, float64(opt.groups[2].LR), 1e-6)
}
