// Package gesturetest provides in-memory host capabilities for exercising the
// gesture dispatcher without devices or real timers.
package gesturetest

import (
	"sync"
	"time"

	"github.com/bezmoradi/gestured/internal/gesture"
)

// Timer records scheduled callbacks; tests fire them explicitly.
type Timer struct {
	mu        sync.Mutex
	scheduled []*Scheduled
}

type Scheduled struct {
	Delay     time.Duration
	f         func()
	cancelled bool
	fired     bool
}

func (t *Timer) AfterFunc(d time.Duration, f func()) gesture.CancelFunc {
	s := &Scheduled{Delay: d, f: f}
	t.mu.Lock()
	t.scheduled = append(t.scheduled, s)
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		s.cancelled = true
		t.mu.Unlock()
	}
}

// FireAll runs every callback that is neither cancelled nor already fired.
func (t *Timer) FireAll() int {
	t.mu.Lock()
	var due []*Scheduled
	for _, s := range t.scheduled {
		if !s.cancelled && !s.fired {
			s.fired = true
			due = append(due, s)
		}
	}
	t.mu.Unlock()
	for _, s := range due {
		s.f()
	}
	return len(due)
}

// Active returns how many callbacks are still waiting to fire.
func (t *Timer) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, s := range t.scheduled {
		if !s.cancelled && !s.fired {
			n++
		}
	}
	return n
}

// Cancelled returns how many callbacks were cancelled before firing.
func (t *Timer) Cancelled() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, s := range t.scheduled {
		if s.cancelled && !s.fired {
			n++
		}
	}
	return n
}

// Proximity holds a single one-shot registration that tests complete with Emit.
type Proximity struct {
	Range float64
	Fail  error

	mu            sync.Mutex
	cb            func(float64)
	registrations int
	unregisters   int
}

func (p *Proximity) HasSensor() bool   { return true }
func (p *Proximity) MaxRange() float64 { return p.Range }

func (p *Proximity) RegisterOneShot(cb func(float64)) error {
	if p.Fail != nil {
		return p.Fail
	}
	p.mu.Lock()
	p.cb = cb
	p.registrations++
	p.mu.Unlock()
	return nil
}

func (p *Proximity) Unregister() {
	p.mu.Lock()
	p.cb = nil
	p.unregisters++
	p.mu.Unlock()
}

// Emit delivers distance to the current registration, if any.
func (p *Proximity) Emit(distance float64) bool {
	p.mu.Lock()
	cb := p.cb
	p.mu.Unlock()
	if cb == nil {
		return false
	}
	cb(distance)
	return true
}

// Registered reports whether a one-shot listener is live.
func (p *Proximity) Registered() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cb != nil
}

func (p *Proximity) Registrations() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.registrations
}

// Executor records executed actions.
type Executor struct {
	mu      sync.Mutex
	actions []gesture.ActionID
}

func (e *Executor) Execute(a gesture.ActionID) {
	e.mu.Lock()
	e.actions = append(e.actions, a)
	e.mu.Unlock()
}

func (e *Executor) Actions() []gesture.ActionID {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]gesture.ActionID, len(e.actions))
	copy(out, e.actions)
	return out
}

// Settings implements SetupChecker and Haptics.
type Settings struct {
	Setup  bool
	Haptic bool

	mu      sync.Mutex
	vibrate []time.Duration
}

func (s *Settings) SetupComplete() bool         { return s.Setup }
func (s *Settings) HapticFeedbackEnabled() bool { return s.Haptic }

func (s *Settings) Vibrate(d time.Duration) {
	s.mu.Lock()
	s.vibrate = append(s.vibrate, d)
	s.mu.Unlock()
}

func (s *Settings) Vibrations() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.vibrate))
	copy(out, s.vibrate)
	return out
}

// WakeLock records requested durations.
type WakeLock struct {
	mu   sync.Mutex
	held []time.Duration
}

func (w *WakeLock) AcquireFor(d time.Duration) {
	w.mu.Lock()
	w.held = append(w.held, d)
	w.mu.Unlock()
}

func (w *WakeLock) Acquired() []time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]time.Duration, len(w.held))
	copy(out, w.held)
	return out
}
