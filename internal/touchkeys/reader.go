package touchkeys

import (
	"fmt"
	"log"
	"sync"

	evdev "github.com/holoplot/go-evdev"

	"github.com/bezmoradi/gestured/internal/gesture"
)

const (
	keyUp     = 0
	keyDown   = 1
	keyRepeat = 2
)

// Reader pulls raw events off an evdev device and forwards key events.
type Reader struct {
	path    string
	source  gesture.Source
	handler EventHandler

	mu      sync.Mutex
	dev     *evdev.InputDevice
	done    chan struct{}
	running bool
}

func NewReader(path string, source gesture.Source, handler EventHandler) *Reader {
	return &Reader{
		path:    path,
		source:  source,
		handler: handler,
		done:    make(chan struct{}),
	}
}

func (r *Reader) Start() error {
	dev, err := evdev.Open(r.path)
	if err != nil {
		return fmt.Errorf("open gesture device %s: %w", r.path, err)
	}
	name, _ := dev.Name()
	log.Printf("[GESTURE] Reading gestures from %s (%s)", r.path, name)

	r.mu.Lock()
	r.dev = dev
	r.running = true
	r.mu.Unlock()
	return nil
}

func (r *Reader) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.running = false
	close(r.done)
	if r.dev != nil {
		r.dev.Close()
	}
}

// Listen blocks until the device is closed or fails.
func (r *Reader) Listen() {
	r.mu.Lock()
	dev := r.dev
	r.mu.Unlock()
	if dev == nil {
		return
	}

	for {
		ev, err := dev.ReadOne()
		if err != nil {
			select {
			case <-r.done:
			default:
				log.Printf("[GESTURE] Read from %s failed: %v", r.path, err)
			}
			return
		}
		kev, ok := translate(ev, r.source)
		if !ok || r.handler == nil {
			continue
		}
		r.handler.OnKeyEvent(kev)
	}
}

// translate turns an EV_KEY event into a gesture event. Auto-repeat is reported
// as a key-down so it never completes a gesture.
func translate(ev *evdev.InputEvent, source gesture.Source) (gesture.Event, bool) {
	if ev.Type != evdev.EV_KEY {
		return gesture.Event{}, false
	}
	code := int(ev.Code)
	if source == gesture.SourceUnknown && gesture.IsTouchscreenCode(code) {
		source = gesture.SourceTouchscreen
	}
	return gesture.Event{
		ScanCode: code,
		KeyUp:    ev.Value == keyUp,
		Source:   source,
	}, true
}
