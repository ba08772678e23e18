// Package gesture turns raw gesture scan codes into at most one action per
// accepted gesture, with an optional proximity check before delivery.
package gesture

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// ConfirmDelay is how long a gesture waits for a proximity sample before
	// it is delivered anyway.
	ConfirmDelay = 100 * time.Millisecond

	GestureWakeLockDuration      = 3000 * time.Millisecond
	EventProcessWakeLockDuration = 500 * time.Millisecond
	HapticDuration               = 50 * time.Millisecond
)

// Result is what happened to an accepted or rejected gesture.
type Result int

const (
	ResultDelivered Result = iota
	ResultDropped
	ResultIgnored
)

func (r Result) String() string {
	switch r {
	case ResultDelivered:
		return "delivered"
	case ResultDropped:
		return "dropped"
	default:
		return "ignored"
	}
}

// Outcome is reported once per gesture that reached the single-flight slot.
type Outcome struct {
	Action ActionID
	Result Result
	At     time.Time
}

// Stats counts gestures since the dispatcher was created.
type Stats struct {
	Accepted  int `json:"accepted"`
	Delivered int `json:"delivered"`
	Dropped   int `json:"dropped"`
	Ignored   int `json:"ignored"`
}

// Options carries the host capabilities. Everything except the executor is
// optional; a nil Proximity disables confirmation.
type Options struct {
	Setup     SetupChecker
	Haptics   Haptics
	Proximity Proximity
	Timer     Timer
	WakeLock  WakeLock
	Now       func() time.Time
}

type pendingGesture struct {
	action     ActionID
	source     Source
	acceptedAt time.Time
	cancel     CancelFunc
	settled    bool
}

// Dispatcher owns the scan code mapping and the single in-flight gesture slot.
type Dispatcher struct {
	mapping atomic.Pointer[Mapping]

	executor  Executor
	setup     SetupChecker
	haptics   Haptics
	proximity Proximity
	timer     Timer
	wakeLock  WakeLock
	now       func() time.Time

	mu        sync.Mutex
	pending   *pendingGesture
	stats     Stats
	onOutcome func(Outcome)
}

func NewDispatcher(executor Executor, opts Options) *Dispatcher {
	d := &Dispatcher{
		executor:  executor,
		setup:     opts.Setup,
		haptics:   opts.Haptics,
		proximity: opts.Proximity,
		timer:     opts.Timer,
		wakeLock:  opts.WakeLock,
		now:       opts.Now,
	}
	if d.timer == nil {
		d.timer = SystemTimer{}
	}
	if d.now == nil {
		d.now = time.Now
	}
	d.mapping.Store(&Mapping{actions: map[int]ActionID{}})
	return d
}

// SetOutcomeCallback registers fn to be told about every delivered, dropped or
// ignored gesture. It runs on the goroutine that settled the gesture.
func (d *Dispatcher) SetOutcomeCallback(fn func(Outcome)) {
	d.mu.Lock()
	d.onOutcome = fn
	d.mu.Unlock()
}

// UpdateMapping replaces the mapping with one built from scanCodes and actions.
// A malformed update clears the mapping instead of keeping the previous one;
// the error is returned for logging only.
func (d *Dispatcher) UpdateMapping(scanCodes []int, actions []ActionID) error {
	m, err := NewMapping(scanCodes, actions)
	return d.swapMapping(m, err)
}

// UpdateMappingInts is UpdateMapping for the integer wire form.
func (d *Dispatcher) UpdateMappingInts(scanCodes, actions []int) error {
	m, err := NewMappingInts(scanCodes, actions)
	return d.swapMapping(m, err)
}

func (d *Dispatcher) swapMapping(m *Mapping, err error) error {
	if err != nil {
		log.Printf("[GESTURE] Mapping update rejected, clearing mapping: %v", err)
		d.mapping.Store(&Mapping{actions: map[int]ActionID{}})
		return err
	}
	d.mapping.Store(m)
	log.Printf("[GESTURE] Mapping updated: %d entries", m.Len())
	return nil
}

// Mapping returns a copy of the current table.
func (d *Dispatcher) Mapping() map[int]ActionID {
	return d.mapping.Load().Entries()
}

// Pending reports whether a gesture is in flight.
func (d *Dispatcher) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Handle processes one raw key event. It returns false when the event is not a
// gesture this dispatcher acts on and should be passed through to the host
// unchanged.
func (d *Dispatcher) Handle(ev Event) bool {
	action, ok := d.mapping.Load().Lookup(ev.ScanCode)
	if !ok || !ev.KeyUp || !d.setupComplete() {
		return false
	}
	if action == ActionNone {
		return true
	}

	d.mu.Lock()
	if d.pending != nil {
		d.stats.Ignored++
		onOutcome := d.onOutcome
		d.mu.Unlock()
		log.Printf("[GESTURE] Gesture in flight, ignoring scan code %d", ev.ScanCode)
		if onOutcome != nil {
			onOutcome(Outcome{Action: action, Result: ResultIgnored, At: d.now()})
		}
		return true
	}
	g := &pendingGesture{action: action, source: ev.Source, acceptedAt: d.now()}
	d.pending = g
	d.stats.Accepted++
	d.mu.Unlock()

	log.Printf("[GESTURE] Accepted scan code %d -> %s", ev.ScanCode, action)

	if d.proximity == nil || !d.proximity.HasSensor() {
		d.acquire(EventProcessWakeLockDuration)
		d.deliver(g)
		return true
	}

	d.acquire(2 * ConfirmDelay)
	cancel := d.timer.AfterFunc(ConfirmDelay, func() { d.confirmTimeout(g) })
	d.mu.Lock()
	g.cancel = cancel
	d.mu.Unlock()

	d.acquire(GestureWakeLockDuration)
	if err := d.proximity.RegisterOneShot(func(distance float64) { d.proximitySample(g, distance) }); err != nil {
		log.Printf("[GESTURE] Proximity registration failed, relying on timer: %v", err)
		return true
	}

	// The timer may have won before registration finished.
	d.mu.Lock()
	settled := g.settled
	d.mu.Unlock()
	if settled {
		d.proximity.Unregister()
	}
	return true
}

func (d *Dispatcher) setupComplete() bool {
	return d.setup == nil || d.setup.SetupComplete()
}

func (d *Dispatcher) acquire(dur time.Duration) {
	if d.wakeLock != nil {
		d.wakeLock.AcquireFor(dur)
	}
}

// settle marks g as resolved. Only the first caller gets true.
func (d *Dispatcher) settle(g *pendingGesture) (CancelFunc, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if g.settled || d.pending != g {
		return nil, false
	}
	g.settled = true
	return g.cancel, true
}

func (d *Dispatcher) confirmTimeout(g *pendingGesture) {
	if _, ok := d.settle(g); !ok {
		return
	}
	d.proximity.Unregister()
	log.Printf("[GESTURE] No proximity sample within %v, delivering %s", ConfirmDelay, g.action)
	d.deliver(g)
}

func (d *Dispatcher) proximitySample(g *pendingGesture, distance float64) {
	d.proximity.Unregister()
	cancel, ok := d.settle(g)
	if !ok {
		log.Printf("[PROX] Sample arrived after the gesture resolved, ignoring")
		return
	}
	if cancel != nil {
		cancel()
	}
	if distance == d.proximity.MaxRange() {
		d.deliver(g)
		return
	}
	log.Printf("[PROX] Sensor covered (%.1f), dropping %s", distance, g.action)
	d.finish(g, ResultDropped)
}

func (d *Dispatcher) deliver(g *pendingGesture) {
	d.executor.Execute(g.action)
	if g.source == SourceTouchscreen && d.haptics != nil && d.haptics.HapticFeedbackEnabled() {
		d.haptics.Vibrate(HapticDuration)
	}
	d.finish(g, ResultDelivered)
}

func (d *Dispatcher) finish(g *pendingGesture, result Result) {
	d.mu.Lock()
	if d.pending == g {
		d.pending = nil
	}
	switch result {
	case ResultDelivered:
		d.stats.Delivered++
	case ResultDropped:
		d.stats.Dropped++
	}
	onOutcome := d.onOutcome
	d.mu.Unlock()

	log.Printf("[GESTURE] %s %s after %v", result, g.action, d.now().Sub(g.acceptedAt))
	if onOutcome != nil {
		onOutcome(Outcome{Action: g.action, Result: result, At: d.now()})
	}
}
