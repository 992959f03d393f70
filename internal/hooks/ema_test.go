package hooks

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/detkit-ml/detkit/internal/tensor"
)

func newEMAFixture(t *testing.T, config EMAConfig) (*EMAHook, *fakeRunner, *fakeModel) {
	t.Helper()
	hook, err := NewEMAHook(config)
	require.NoError(t, err)

	m := &fakeModel{}
	m.params = append(m.params,
		floatParam(t, "head.weight", []float32{1, 2}),
		floatParam(t, "head.bias", []float32{3}),
		intParam(t, "anchors", []int64{8, 16}),
	)
	runner := newFakeRunner(m, &fakeOptimizer{})
	return hook, runner, m
}

func TestEMAConfigValidation(t *testing.T) {
	_, err := NewEMAHook(EMAConfig{Momentum: 1.5})
	assert.Error(t, err)

	_, err = NewEMAHook(EMAConfig{Interval: -1})
	assert.Error(t, err)

	_, err = NewEMAHook(EMAConfig{WarmUp: -5})
	assert.Error(t, err)

	hook, err := NewEMAHook(EMAConfig{})
	require.NoError(t, err)
	assert.Equal(t, 0.9999, hook.momentum)
	assert.Equal(t, 2, hook.interval)
	assert.Equal(t, 2000.0, hook.warmUp)
}

// TestEMAMomentumWarmUp checks the warm-up schedule: zero at iteration 0,
// strictly increasing, approaching the base momentum.
func TestEMAMomentumWarmUp(t *testing.T) {
	hook, err := NewEMAHook(EMAConfig{Momentum: 0.9999, WarmUp: 2000})
	require.NoError(t, err)

	assert.Equal(t, 0.0, hook.momentumAt(0))

	prev := 0.0
	for _, iter := range []int{1, 10, 100, 500, 1000, 2000} {
		m := hook.momentumAt(iter)
		assert.Greater(t, m, prev, "momentum must be strictly increasing (iter %d)", iter)
		assert.Less(t, m, 0.9999, "momentum must stay below base (iter %d)", iter)
		prev = m
	}

	assert.InDelta(t, 0.9999, hook.momentumAt(200000), 1e-6)
}

func TestEMARegistersOnlyFloatingParams(t *testing.T) {
	hook, runner, _ := newEMAFixture(t, EMAConfig{})

	require.NoError(t, hook.BeforeRun(runner))
	assert.Equal(t, 2, hook.store.Len())
	assert.True(t, hook.store.Has("head.weight"))
	assert.True(t, hook.store.Has("head.bias"))
	assert.False(t, hook.store.Has("anchors"))
}

func TestEMAUpdateInterval(t *testing.T) {
	hook, runner, model := newEMAFixture(t, EMAConfig{Interval: 2, WarmUp: 1})
	require.NoError(t, hook.BeforeRun(runner))

	// Move the live weight away from the registered clone.
	model.params[0].Tensor().AsFloat32()[0] = 100

	// iter 0: (0+1) % 2 != 0 → no update.
	runner.iter = 0
	require.NoError(t, hook.AfterTrainIter(runner))
	assert.Equal(t, float32(1), hook.store.StateDict()["head.weight"].AsFloat32()[0])

	// iter 1: (1+1) % 2 == 0 → update with m = momentum*(1-exp(-1)).
	runner.iter = 1
	require.NoError(t, hook.AfterTrainIter(runner))

	m := 0.9999 * (1 - math.Exp(-1))
	want := m*1 + (1-m)*100
	assert.InDelta(t, want, float64(hook.store.StateDict()["head.weight"].AsFloat32()[0]), 1e-3)
}

func TestEMASwapProtocol(t *testing.T) {
	hook, runner, model := newEMAFixture(t, EMAConfig{})
	require.NoError(t, hook.BeforeRun(runner))

	// First epoch start: nothing to restore.
	require.NoError(t, hook.BeforeTrainEpoch(runner))

	// Drift the live weights; shadows keep the registered values.
	live := model.params[0].Tensor()
	live.AsFloat32()[0] = 50

	liveBytes := append([]byte(nil), live.Data()...)

	// Epoch end: evaluation sees the averaged (registered) values.
	require.NoError(t, hook.AfterTrainEpoch(runner))
	assert.Equal(t, float32(1), live.AsFloat32()[0])

	// Next epoch start: live values restored bit-for-bit.
	require.NoError(t, hook.BeforeTrainEpoch(runner))
	assert.True(t, bytes.Equal(live.Data(), liveBytes))
}

func TestEMABrokenAlternationFailsLoudly(t *testing.T) {
	hook, runner, _ := newEMAFixture(t, EMAConfig{})
	require.NoError(t, hook.BeforeRun(runner))

	require.NoError(t, hook.AfterTrainEpoch(runner))

	// Second AfterTrainEpoch without an intervening BeforeTrainEpoch.
	err := hook.AfterTrainEpoch(runner)
	assert.Error(t, err)

	// Updating while swapped would average live values into what is
	// currently the training state.
	runner.iter = 1
	err = hook.AfterTrainIter(runner)
	assert.Error(t, err)
}

func TestEMAHookRequiresRegistration(t *testing.T) {
	hook, runner, _ := newEMAFixture(t, EMAConfig{})

	assert.Error(t, hook.AfterTrainIter(runner))
	assert.Error(t, hook.AfterTrainEpoch(runner))
	assert.Error(t, hook.BeforeTrainEpoch(runner))
}

func TestEMAParameterSetChangeIsFatal(t *testing.T) {
	hook, runner, model := newEMAFixture(t, EMAConfig{Interval: 1})
	require.NoError(t, hook.BeforeRun(runner))

	model.params = append(model.params, floatParam(t, "extra.weight", []float32{1}))

	runner.iter = 0
	err := hook.AfterTrainIter(runner)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extra.weight")
}

func TestEMAParameterRemovalIsFatal(t *testing.T) {
	hook, runner, model := newEMAFixture(t, EMAConfig{Interval: 1})
	require.NoError(t, hook.BeforeRun(runner))

	model.params = model.params[:1] // drop head.bias

	runner.iter = 0
	err := hook.AfterTrainIter(runner)
	assert.Error(t, err)
}

func TestEMAStateDictNaming(t *testing.T) {
	hook, runner, _ := newEMAFixture(t, EMAConfig{})
	require.NoError(t, hook.BeforeRun(runner))

	stateDict := hook.StateDict()
	require.Len(t, stateDict, 2)
	assert.Contains(t, stateDict, "ema_head_weight")
	assert.Contains(t, stateDict, "ema_head_bias")
}

func TestEMALoadStateDict(t *testing.T) {
	hook, runner, _ := newEMAFixture(t, EMAConfig{})
	require.NoError(t, hook.BeforeRun(runner))

	weight, err := tensor.FromSlice([]float32{7, 8}, tensor.Shape{2})
	require.NoError(t, err)
	bias, err := tensor.FromSlice([]float32{9}, tensor.Shape{1})
	require.NoError(t, err)

	require.NoError(t, hook.LoadStateDict(map[string]*tensor.RawTensor{
		"ema_head_weight": weight,
		"ema_head_bias":   bias,
	}))
	assert.Equal(t, []float32{7, 8}, hook.store.StateDict()["head.weight"].AsFloat32())

	err = hook.LoadStateDict(map[string]*tensor.RawTensor{"ema_head_weight": weight})
	assert.Error(t, err, "missing shadow buffer must fail")
}

// TestEMAResumeRestoresShadows verifies the resume contract end to end:
// BeforeRun registers shadows from the pre-resume parameters, then the
// runner's resume loads checkpointed values through the hook's state dict,
// replacing the registration clones.
func TestEMAResumeRestoresShadows(t *testing.T) {
	hook, err := NewEMAHook(EMAConfig{ResumeFrom: "work_dir/latest.dkpt"})
	require.NoError(t, err)

	m := &fakeModel{}
	m.params = append(m.params, floatParam(t, "head.weight", []float32{1, 2}))
	runner := newFakeRunner(m, &fakeOptimizer{})
	runner.resumeFn = func(string) error {
		shadow, err := tensor.FromSlice([]float32{7, 8}, tensor.Shape{2})
		if err != nil {
			return err
		}
		return hook.LoadStateDict(map[string]*tensor.RawTensor{
			"ema_head_weight": shadow,
		})
	}

	require.NoError(t, hook.BeforeRun(runner))

	got := hook.store.StateDict()["head.weight"].AsFloat32()
	assert.Equal(t, []float32{7, 8}, got,
		"shadows must hold checkpoint values, not clones of the pre-resume parameters")
}

func TestEMAResumeFrom(t *testing.T) {
	hook, err := NewEMAHook(EMAConfig{ResumeFrom: "work_dir/epoch_12.dkpt"})
	require.NoError(t, err)

	m := &fakeModel{}
	m.params = append(m.params, floatParam(t, "w", []float32{1}))
	runner := newFakeRunner(m, &fakeOptimizer{})

	require.NoError(t, hook.BeforeRun(runner))
	assert.Equal(t, []string{"work_dir/epoch_12.dkpt"}, runner.resumed)
}
