// Package sensor exposes a proximity sensor as both a one-shot source for
// gesture confirmation and a continuous sample stream for wave detection.
package sensor

import (
	"fmt"
	"log"
	"sync"

	"github.com/bezmoradi/gestured/internal/gesture"
)

// Sample is one proximity reading. Timestamp is in nanoseconds.
type Sample struct {
	Distance  float64
	MaxRange  float64
	Timestamp int64
}

// Proximity fans samples out to at most one one-shot listener and any number of
// continuous listeners. Samples come from an evdev device (see OpenDevice) or
// from Feed, which the websocket bridge uses.
type Proximity struct {
	mu        sync.Mutex
	maxRange  float64
	available bool
	oneShot   func(float64)
	listeners []func(Sample)

	source *deviceSource
}

// New returns a sensor without a device. Samples must be supplied with Feed.
func New(maxRange float64) *Proximity {
	return &Proximity{maxRange: maxRange, available: true}
}

// Unavailable returns a sensor that reports no hardware. The dispatcher then
// skips confirmation.
func Unavailable() *Proximity {
	return &Proximity{}
}

func (p *Proximity) HasSensor() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available
}

func (p *Proximity) MaxRange() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxRange
}

// SetMaxRange updates the far value, for sources that report it per sample.
func (p *Proximity) SetMaxRange(r float64) {
	p.mu.Lock()
	p.maxRange = r
	p.available = true
	p.mu.Unlock()
}

func (p *Proximity) RegisterOneShot(cb func(float64)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.available {
		return gesture.ErrSensorUnavailable
	}
	if p.oneShot != nil {
		return fmt.Errorf("one-shot listener already registered")
	}
	p.oneShot = cb
	return nil
}

func (p *Proximity) Unregister() {
	p.mu.Lock()
	p.oneShot = nil
	p.mu.Unlock()
}

// Subscribe adds a continuous listener and returns a function that removes it.
func (p *Proximity) Subscribe(fn func(Sample)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
	idx := len(p.listeners) - 1
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if idx < len(p.listeners) {
			p.listeners[idx] = nil
		}
	}
}

// Feed delivers a sample. The one-shot listener is cleared before it is called.
func (p *Proximity) Feed(s Sample) {
	p.mu.Lock()
	if s.MaxRange == 0 {
		s.MaxRange = p.maxRange
	}
	cb := p.oneShot
	p.oneShot = nil
	listeners := make([]func(Sample), 0, len(p.listeners))
	for _, l := range p.listeners {
		if l != nil {
			listeners = append(listeners, l)
		}
	}
	p.mu.Unlock()

	if cb != nil {
		cb(s.Distance)
	}
	for _, l := range listeners {
		l(s)
	}
}

// Close stops the device reader, if any.
func (p *Proximity) Close() error {
	p.mu.Lock()
	src := p.source
	p.source = nil
	p.mu.Unlock()
	if src == nil {
		return nil
	}
	log.Printf("[PROX] Closing sensor device")
	return src.close()
}
