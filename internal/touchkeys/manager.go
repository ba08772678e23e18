// Package touchkeys reads gesture key events from an evdev input device and
// hands them to the daemon.
package touchkeys

import (
	"fmt"
	"sort"

	evdev "github.com/holoplot/go-evdev"

	"github.com/bezmoradi/gestured/internal/gesture"
)

// EventHandler receives every key event read from the device. It returns true
// when the event was consumed as a gesture.
type EventHandler interface {
	OnKeyEvent(ev gesture.Event) bool
}

type Manager struct {
	reader *Reader
}

// NewManager reads from the device at path. Events are tagged with source.
func NewManager(path string, source gesture.Source, handler EventHandler) *Manager {
	return &Manager{
		reader: NewReader(path, source, handler),
	}
}

func (m *Manager) Start() error {
	return m.reader.Start()
}

func (m *Manager) Stop() {
	m.reader.Stop()
}

func (m *Manager) Listen() {
	m.reader.Listen()
}

func (m *Manager) DevicePath() string {
	return m.reader.path
}

// Device is an input device found by ListDevices.
type Device struct {
	Path        string
	Name        string
	GestureKeys []int
	Proximity   bool
}

// ListDevices returns the readable input devices that report gesture scan codes
// or have a distance axis.
func ListDevices() ([]Device, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}

	var devices []Device
	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			continue
		}
		d := Device{Path: p.Path, Name: p.Name}
		for _, code := range dev.CapableEvents(evdev.EV_KEY) {
			if gesture.CanHandle(gesture.Event{ScanCode: int(code)}) {
				d.GestureKeys = append(d.GestureKeys, int(code))
			}
		}
		for _, code := range dev.CapableEvents(evdev.EV_ABS) {
			if code == evdev.ABS_DISTANCE {
				d.Proximity = true
			}
		}
		dev.Close()
		if len(d.GestureKeys) == 0 && !d.Proximity {
			continue
		}
		sort.Ints(d.GestureKeys)
		devices = append(devices, d)
	}
	return devices, nil
}
