// Package audio gives audible stand-ins for the phone's haptic feedback and
// ambient display pulse.
package audio

import (
	"log"
	"time"

	"github.com/gen2brain/beeep"
)

// Vibrator plays a short low tone in place of a vibration motor. It tries
// PortAudio first and falls back to the system beep.
type Vibrator struct {
	tone *TonePlayer
	beep func(freq float64, duration int) error
}

// NewVibrator uses tone when non-nil.
func NewVibrator(tone *TonePlayer) *Vibrator {
	return &Vibrator{tone: tone, beep: beeep.Beep}
}

// Vibrate returns immediately; the tone plays in the background.
func (v *Vibrator) Vibrate(d time.Duration) {
	go v.play(d)
}

func (v *Vibrator) play(d time.Duration) {
	if v.tone != nil {
		err := v.tone.Play(toneFreq, d)
		if err == nil {
			return
		}
		log.Printf("[AUDIO] Tone failed, using system beep: %v", err)
	}
	if err := v.beep(toneFreq, int(d.Milliseconds())); err != nil {
		log.Printf("[AUDIO] Beep failed: %v", err)
	}
}

// Pulser shows a desktop notification for an ambient display pulse.
type Pulser struct {
	title  string
	notify func(title, message string, icon any) error
}

func NewPulser(title string) *Pulser {
	return &Pulser{title: title, notify: beeep.Notify}
}

func (p *Pulser) Pulse() {
	if err := p.notify(p.title, "Hand wave detected", ""); err != nil {
		log.Printf("[AUDIO] Pulse notification failed: %v", err)
	}
}
