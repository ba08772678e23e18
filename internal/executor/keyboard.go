package executor

import (
	"fmt"
	"sync"

	evdev "github.com/holoplot/go-evdev"
)

// Codes missing from older input-event-codes.h copies.
const (
	keyAppSelect evdev.EvCode = 0x244
	keyAssistant evdev.EvCode = 0x247
)

// keyboardKeys are the keys the virtual keyboard declares.
var keyboardKeys = []evdev.EvCode{
	evdev.KEY_BACK,
	evdev.KEY_HOMEPAGE,
	keyAppSelect,
	evdev.KEY_UP,
	evdev.KEY_DOWN,
	evdev.KEY_LEFT,
	evdev.KEY_RIGHT,
	keyAssistant,
	evdev.KEY_WAKEUP,
	evdev.KEY_SYSRQ,
	evdev.KEY_VOLUMEDOWN,
	evdev.KEY_VOLUMEUP,
	evdev.KEY_PLAYPAUSE,
	evdev.KEY_PREVIOUSSONG,
	evdev.KEY_NEXTSONG,
}

// VirtualKeyboard injects key presses through uinput.
type VirtualKeyboard struct {
	mu  sync.Mutex
	dev *evdev.InputDevice
}

// NewVirtualKeyboard creates the uinput device. It needs write access to /dev/uinput.
func NewVirtualKeyboard(name string) (*VirtualKeyboard, error) {
	dev, err := evdev.CreateDevice(name, evdev.InputID{
		BusType: 0x06, // BUS_VIRTUAL
		Vendor:  0x1209,
		Product: 0x6765,
		Version: 1,
	}, map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: keyboardKeys,
	})
	if err != nil {
		return nil, fmt.Errorf("create uinput device: %w", err)
	}
	return &VirtualKeyboard{dev: dev}, nil
}

// SendKey emits a press and release of code.
func (k *VirtualKeyboard) SendKey(code evdev.EvCode) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, value := range []int32{1, 0} {
		if err := k.dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_KEY, Code: code, Value: value}); err != nil {
			return fmt.Errorf("write key %d: %w", code, err)
		}
		if err := k.dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT}); err != nil {
			return fmt.Errorf("write sync: %w", err)
		}
	}
	return nil
}

func (k *VirtualKeyboard) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.dev.Close()
}
