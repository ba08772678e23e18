// Package handwave detects a hand passing over the proximity sensor: the sensor
// goes near and then far again within a second.
package handwave

import (
	"log"
	"sync"
)

// MaxWave is the longest near-to-far transition, in nanoseconds, that still
// counts as a wave.
const MaxWave int64 = 1_000_000_000

// Detector consumes proximity samples and calls the pulse trigger for each wave.
// Sensor registration belongs to whoever owns the detector; Enable and Disable
// only gate whether samples are looked at.
type Detector struct {
	mu            sync.Mutex
	enabled       bool
	sawNear       bool
	waveStartTime int64

	featureEnabled func() bool
	onPulse        func()
}

// NewDetector returns a disabled detector. featureEnabled is consulted on every
// wave so a settings change takes effect without re-registering.
func NewDetector(featureEnabled func() bool, onPulse func()) *Detector {
	return &Detector{featureEnabled: featureEnabled, onPulse: onPulse}
}

func (d *Detector) Enable() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.enabled {
		return
	}
	log.Printf("[WAVE] Enabling")
	d.enabled = true
	d.sawNear = false
	d.waveStartTime = 0
}

func (d *Detector) Disable() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.enabled {
		return
	}
	log.Printf("[WAVE] Disabling")
	d.enabled = false
}

// Reset forgets any half-seen wave.
func (d *Detector) Reset() {
	d.mu.Lock()
	d.sawNear = false
	d.waveStartTime = 0
	d.mu.Unlock()
}

func (d *Detector) Enabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled
}

// OnSample feeds one proximity reading. timestamp is in nanoseconds.
func (d *Detector) OnSample(distance, maxRange float64, timestamp int64) {
	d.mu.Lock()
	if !d.enabled {
		d.mu.Unlock()
		return
	}
	isNear := distance < maxRange
	pulse := false
	if d.sawNear && !isNear {
		pulse = d.shouldPulse(timestamp)
	} else {
		d.waveStartTime = timestamp
	}
	d.sawNear = isNear
	d.mu.Unlock()

	if pulse && d.onPulse != nil {
		d.onPulse()
	}
}

func (d *Detector) shouldPulse(timestamp int64) bool {
	delta := timestamp - d.waveStartTime
	if delta >= MaxWave {
		return false
	}
	if d.featureEnabled != nil && !d.featureEnabled() {
		return false
	}
	log.Printf("[WAVE] Hand wave in %d ms", delta/1_000_000)
	return true
}
