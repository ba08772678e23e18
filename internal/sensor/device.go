package sensor

import (
	"fmt"
	"log"
	"sync"

	evdev "github.com/holoplot/go-evdev"
)

type deviceSource struct {
	dev  *evdev.InputDevice
	once sync.Once
	done chan struct{}
}

func (s *deviceSource) close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.dev.Close()
	})
	return err
}

// OpenDevice opens an input device that reports ABS_DISTANCE and starts reading
// samples from it. The device's ABS_DISTANCE maximum is the far value.
func OpenDevice(path string) (*Proximity, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open proximity device %s: %w", path, err)
	}
	infos, err := dev.AbsInfos()
	if err != nil {
		dev.Close()
		return nil, fmt.Errorf("read abs info from %s: %w", path, err)
	}
	info, ok := infos[evdev.ABS_DISTANCE]
	if !ok {
		dev.Close()
		return nil, fmt.Errorf("%s does not report ABS_DISTANCE", path)
	}

	p := New(float64(info.Maximum))
	p.source = &deviceSource{dev: dev, done: make(chan struct{})}
	go p.readLoop(p.source)

	name, _ := dev.Name()
	log.Printf("[PROX] Using %s (%s), max range %d", path, name, info.Maximum)
	return p, nil
}

func (p *Proximity) readLoop(src *deviceSource) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PROX] Reader recovered from panic: %v", r)
		}
	}()

	for {
		ev, err := src.dev.ReadOne()
		if err != nil {
			select {
			case <-src.done:
			default:
				log.Printf("[PROX] Read failed, sensor stopped: %v", err)
			}
			return
		}
		if s, ok := sampleFromEvent(ev, p.MaxRange()); ok {
			p.Feed(s)
		}
	}
}

func sampleFromEvent(ev *evdev.InputEvent, maxRange float64) (Sample, bool) {
	if ev.Type != evdev.EV_ABS || ev.Code != evdev.ABS_DISTANCE {
		return Sample{}, false
	}
	ts := int64(ev.Time.Sec)*1_000_000_000 + int64(ev.Time.Usec)*1_000
	return Sample{Distance: float64(ev.Value), MaxRange: maxRange, Timestamp: ts}, true
}
