package gesture_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bezmoradi/gestured/internal/gesture"
	"github.com/bezmoradi/gestured/internal/gesture/gesturetest"
)

type harness struct {
	d        *gesture.Dispatcher
	exec     *gesturetest.Executor
	timer    *gesturetest.Timer
	prox     *gesturetest.Proximity
	settings *gesturetest.Settings
	wake     *gesturetest.WakeLock
	outcomes []gesture.Outcome
}

func newHarness(t *testing.T, withProximity bool) *harness {
	t.Helper()
	h := &harness{
		exec:     &gesturetest.Executor{},
		timer:    &gesturetest.Timer{},
		settings: &gesturetest.Settings{Setup: true, Haptic: true},
		wake:     &gesturetest.WakeLock{},
	}
	opts := gesture.Options{
		Setup:    h.settings,
		Haptics:  h.settings,
		Timer:    h.timer,
		WakeLock: h.wake,
	}
	if withProximity {
		h.prox = &gesturetest.Proximity{Range: 5}
		opts.Proximity = h.prox
	}
	h.d = gesture.NewDispatcher(h.exec, opts)
	h.d.SetOutcomeCallback(func(o gesture.Outcome) { h.outcomes = append(h.outcomes, o) })
	require.NoError(t, h.d.UpdateMapping(
		[]int{gesture.ScanDoubleClick, gesture.ScanC, gesture.ScanV},
		[]gesture.ActionID{gesture.ActionWakeUp, gesture.ActionCamera, gesture.ActionPlayPause},
	))
	return h
}

func keyUp(code int) gesture.Event {
	return gesture.Event{ScanCode: code, KeyUp: true}
}

func TestHandleResolvesMappedActions(t *testing.T) {
	tests := []struct {
		name    string
		codes   []int
		actions []gesture.ActionID
	}{
		{"single", []int{17}, []gesture.ActionID{gesture.ActionEmail}},
		{"all supported", gesture.SupportedScanCodes(), []gesture.ActionID{
			gesture.ActionWakeUp, gesture.ActionHome, gesture.ActionBrowser, gesture.ActionMessages,
			gesture.ActionEmail, gesture.ActionCamera, gesture.ActionFlashlight, gesture.ActionPlayPause,
		}},
		{"arbitrary codes", []int{1, 2, 300}, []gesture.ActionID{gesture.ActionVolUp, gesture.ActionVolDown, gesture.ActionFmRadio}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, code := range tt.codes {
				exec := &gesturetest.Executor{}
				d := gesture.NewDispatcher(exec, gesture.Options{})
				require.NoError(t, d.UpdateMapping(tt.codes, tt.actions))

				assert.True(t, d.Handle(keyUp(code)))
				assert.Equal(t, []gesture.ActionID{tt.actions[i]}, exec.Actions())
				assert.False(t, d.Pending())
			}
		})
	}
}

func TestHandlePassesThroughUnhandledEvents(t *testing.T) {
	h := newHarness(t, false)

	assert.False(t, h.d.Handle(keyUp(99)), "unmapped code")
	assert.False(t, h.d.Handle(gesture.Event{ScanCode: gesture.ScanC}), "key down")

	h.settings.Setup = false
	assert.False(t, h.d.Handle(keyUp(gesture.ScanC)), "setup incomplete")

	assert.Empty(t, h.exec.Actions())
	assert.Equal(t, gesture.Stats{}, h.d.Stats())
}

func TestMalformedUpdateClearsMapping(t *testing.T) {
	tests := []struct {
		name    string
		codes   []int
		actions []gesture.ActionID
	}{
		{"mismatched length", []int{46, 47}, []gesture.ActionID{gesture.ActionHome}},
		{"nil codes", nil, []gesture.ActionID{gesture.ActionHome}},
		{"nil actions", []int{46}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, false)
			err := h.d.UpdateMapping(tt.codes, tt.actions)
			assert.ErrorIs(t, err, gesture.ErrMalformedMapping)
			assert.Empty(t, h.d.Mapping())

			for _, code := range []int{gesture.ScanDoubleClick, gesture.ScanC, gesture.ScanV, 46, 47} {
				assert.False(t, h.d.Handle(keyUp(code)))
			}
			assert.Empty(t, h.exec.Actions())
		})
	}
}

func TestUpdateMappingReplacesWholesale(t *testing.T) {
	h := newHarness(t, false)
	require.NoError(t, h.d.UpdateMappingInts([]int{17}, []int{int(gesture.ActionEmail)}))

	assert.Equal(t, map[int]gesture.ActionID{17: gesture.ActionEmail}, h.d.Mapping())
	assert.False(t, h.d.Handle(keyUp(gesture.ScanC)))
}

func TestActionNoneConsumesWithoutDelivery(t *testing.T) {
	h := newHarness(t, false)
	require.NoError(t, h.d.UpdateMapping([]int{gesture.ScanZ}, []gesture.ActionID{gesture.ActionNone}))

	assert.True(t, h.d.Handle(keyUp(gesture.ScanZ)))
	assert.Empty(t, h.exec.Actions())
	assert.False(t, h.d.Pending())
}

func TestImmediateDeliveryWithoutProximity(t *testing.T) {
	h := newHarness(t, false)

	assert.True(t, h.d.Handle(keyUp(gesture.ScanC)))
	assert.Equal(t, []gesture.ActionID{gesture.ActionCamera}, h.exec.Actions())
	assert.Equal(t, 0, h.timer.Active())
	assert.Equal(t, []time.Duration{gesture.EventProcessWakeLockDuration}, h.wake.Acquired())
	require.Len(t, h.outcomes, 1)
	assert.Equal(t, gesture.ResultDelivered, h.outcomes[0].Result)
}

func TestSingleFlight(t *testing.T) {
	h := newHarness(t, true)

	assert.True(t, h.d.Handle(keyUp(gesture.ScanC)))
	assert.True(t, h.d.Handle(keyUp(gesture.ScanV)), "second gesture is consumed")
	assert.True(t, h.d.Pending())

	h.timer.FireAll()

	assert.Equal(t, []gesture.ActionID{gesture.ActionCamera}, h.exec.Actions())
	assert.Equal(t, gesture.Stats{Accepted: 1, Delivered: 1, Ignored: 1}, h.d.Stats())
	assert.Equal(t, 1, h.prox.Registrations())
}

func TestProximityFarDeliversOnceAndCancelsTimer(t *testing.T) {
	h := newHarness(t, true)

	require.True(t, h.d.Handle(keyUp(gesture.ScanC)))
	assert.Empty(t, h.exec.Actions(), "nothing delivered before confirmation")
	assert.Equal(t, 1, h.timer.Active())

	require.True(t, h.prox.Emit(5))

	assert.Equal(t, []gesture.ActionID{gesture.ActionCamera}, h.exec.Actions())
	assert.Equal(t, 0, h.timer.Active())
	assert.Equal(t, 1, h.timer.Cancelled())
	assert.False(t, h.prox.Registered())

	assert.Equal(t, 0, h.timer.FireAll())
	assert.Len(t, h.exec.Actions(), 1)
	assert.False(t, h.d.Pending())
}

func TestProximityNearDropsGesture(t *testing.T) {
	h := newHarness(t, true)

	require.True(t, h.d.Handle(keyUp(gesture.ScanC)))
	require.True(t, h.prox.Emit(0))

	assert.Empty(t, h.exec.Actions())
	assert.Equal(t, 1, h.timer.Cancelled())
	assert.Equal(t, 0, h.timer.FireAll())
	assert.Empty(t, h.exec.Actions())
	assert.False(t, h.d.Pending())
	assert.Equal(t, gesture.Stats{Accepted: 1, Dropped: 1}, h.d.Stats())
	require.Len(t, h.outcomes, 1)
	assert.Equal(t, gesture.ResultDropped, h.outcomes[0].Result)
}

func TestTimerFallbackDeliversOnceAndUnregisters(t *testing.T) {
	h := newHarness(t, true)

	require.True(t, h.d.Handle(keyUp(gesture.ScanV)))
	assert.True(t, h.prox.Registered())
	assert.Equal(t, 1, h.timer.FireAll())

	assert.Equal(t, []gesture.ActionID{gesture.ActionPlayPause}, h.exec.Actions())
	assert.False(t, h.prox.Registered(), "listener must not leak past the timeout")
	assert.False(t, h.prox.Emit(5))
	assert.Len(t, h.exec.Actions(), 1)
}

func TestProximityWakeLocks(t *testing.T) {
	h := newHarness(t, true)

	require.True(t, h.d.Handle(keyUp(gesture.ScanC)))
	assert.Equal(t, []time.Duration{2 * gesture.ConfirmDelay, gesture.GestureWakeLockDuration}, h.wake.Acquired())
}

func TestProximityRegistrationFailureFallsBackToTimer(t *testing.T) {
	h := newHarness(t, true)
	h.prox.Fail = errors.New("busy")

	require.True(t, h.d.Handle(keyUp(gesture.ScanC)))
	assert.Empty(t, h.exec.Actions())
	h.timer.FireAll()
	assert.Equal(t, []gesture.ActionID{gesture.ActionCamera}, h.exec.Actions())
}

func TestAcceptsNewGestureAfterResolution(t *testing.T) {
	h := newHarness(t, true)

	require.True(t, h.d.Handle(keyUp(gesture.ScanC)))
	h.prox.Emit(0)
	require.True(t, h.d.Handle(keyUp(gesture.ScanV)))
	h.prox.Emit(5)

	assert.Equal(t, []gesture.ActionID{gesture.ActionPlayPause}, h.exec.Actions())
	assert.Equal(t, 2, h.prox.Registrations())
}

func TestHapticFeedbackOnlyForTouchscreen(t *testing.T) {
	h := newHarness(t, false)

	h.d.Handle(keyUp(gesture.ScanC))
	assert.Empty(t, h.settings.Vibrations())

	h.d.Handle(gesture.Event{ScanCode: gesture.ScanC, KeyUp: true, Source: gesture.SourceTouchscreen})
	assert.Equal(t, []time.Duration{gesture.HapticDuration}, h.settings.Vibrations())

	h.settings.Haptic = false
	h.d.Handle(gesture.Event{ScanCode: gesture.ScanC, KeyUp: true, Source: gesture.SourceTouchscreen})
	assert.Len(t, h.settings.Vibrations(), 1)
}

func TestSystemTimerCancel(t *testing.T) {
	fired := make(chan struct{}, 1)
	cancel := gesture.SystemTimer{}.AfterFunc(20*time.Millisecond, func() { fired <- struct{}{} })
	cancel()

	select {
	case <-fired:
		t.Fatal("cancelled callback fired")
	case <-time.After(60 * time.Millisecond):
	}
}
