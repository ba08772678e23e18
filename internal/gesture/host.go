package gesture

import (
	"errors"
	"time"
)

// ErrSensorUnavailable is returned by Proximity implementations that have no
// sensor to register with.
var ErrSensorUnavailable = errors.New("proximity sensor unavailable")

// Source records where a key event came from.
type Source int

const (
	SourceUnknown Source = iota
	SourceTouchscreen
)

func (s Source) String() string {
	if s == SourceTouchscreen {
		return "touchscreen"
	}
	return "unknown"
}

// ParseSource is the inverse of Source.String. Anything unrecognized is SourceUnknown.
func ParseSource(s string) Source {
	if s == "touchscreen" {
		return SourceTouchscreen
	}
	return SourceUnknown
}

// Event is a raw key event from the gesture input device.
type Event struct {
	ScanCode int
	KeyUp    bool
	Source   Source
}

// SetupChecker gates all gesture handling.
type SetupChecker interface {
	SetupComplete() bool
}

// Haptics gives tactile confirmation after an action is delivered.
type Haptics interface {
	HapticFeedbackEnabled() bool
	Vibrate(d time.Duration)
}

// Proximity is a distance sensor that can report a single sample.
//
// RegisterOneShot arranges for cb to be called with the next sample. Unregister
// drops any registration and must be safe to call more than once.
type Proximity interface {
	HasSensor() bool
	MaxRange() float64
	RegisterOneShot(cb func(distance float64)) error
	Unregister()
}

// CancelFunc cancels a scheduled callback. Calling it after the callback ran
// is a no-op.
type CancelFunc func()

// Timer schedules a callback once.
type Timer interface {
	AfterFunc(d time.Duration, f func()) CancelFunc
}

// WakeLock keeps the host awake for at least d.
type WakeLock interface {
	AcquireFor(d time.Duration)
}

// Executor performs the real effect of an action. The dispatcher does not
// inspect or retry the outcome.
type Executor interface {
	Execute(action ActionID)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(action ActionID)

func (f ExecutorFunc) Execute(action ActionID) { f(action) }

// SystemTimer schedules callbacks with time.AfterFunc.
type SystemTimer struct{}

func (SystemTimer) AfterFunc(d time.Duration, f func()) CancelFunc {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}
