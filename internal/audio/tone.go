package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	SampleRate = 44100
	Frames     = 512
	toneFreq   = 180.0 // low buzz, closest a speaker gets to a vibration motor
	toneGain   = 0.4
)

// TonePlayer plays short sine bursts on the default output device.
type TonePlayer struct {
	mu sync.Mutex
}

func NewTonePlayer() *TonePlayer {
	return &TonePlayer{}
}

// Play blocks for roughly d while the tone sounds.
func (p *TonePlayer) Play(freq float64, d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]float32, Frames)
	stream, err := portaudio.OpenDefaultStream(0, 1, SampleRate, len(out), out)
	if err != nil {
		return fmt.Errorf("open output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("start output stream: %w", err)
	}
	defer stream.Stop()

	total := int(d.Seconds() * SampleRate)
	for written := 0; written < total; written += len(out) {
		fillSine(out, freq, written, total)
		if err := stream.Write(); err != nil {
			return fmt.Errorf("write output stream: %w", err)
		}
	}
	return nil
}

// fillSine writes samples [offset, offset+len(buf)) of a total-sample tone,
// padding with silence past the end and fading the last 10% to avoid a click.
func fillSine(buf []float32, freq float64, offset, total int) {
	fade := total / 10
	for i := range buf {
		n := offset + i
		if n >= total {
			buf[i] = 0
			continue
		}
		gain := toneGain
		if fade > 0 && n > total-fade {
			gain *= float64(total-n) / float64(fade)
		}
		buf[i] = float32(gain * math.Sin(2*math.Pi*freq*float64(n)/SampleRate))
	}
}

// Initialize initializes PortAudio - should be called at application startup
func Initialize() error {
	return portaudio.Initialize()
}

// Terminate terminates PortAudio - should be called at application shutdown
func Terminate() {
	portaudio.Terminate()
}
