// Package executor performs gesture actions on a Linux desktop: key injection
// through uinput, media and screen control over D-Bus, app launches and the
// flash LED.
package executor

import (
	"errors"
	"log"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/bezmoradi/gestured/internal/gesture"
)

// ErrNoPlayer is returned when no media player is available.
var ErrNoPlayer = errors.New("no media player running")

type KeySender interface {
	SendKey(code evdev.EvCode) error
}

type MediaController interface {
	PlayPause() error
	Next() error
	Previous() error
}

type ScreenController interface {
	Off() error
	Wake() error
}

type Launcher interface {
	Launch(target string) error
}

type Torch interface {
	Toggle() (bool, error)
}

// Default launch targets for app actions.
var DefaultLaunch = map[gesture.ActionID]string{
	gesture.ActionBrowser:  "http:",
	gesture.ActionDialer:   "tel:",
	gesture.ActionEmail:    "mailto:",
	gesture.ActionMessages: "sms:",
}

var navigationKeys = map[gesture.ActionID]evdev.EvCode{
	gesture.ActionBack:       evdev.KEY_BACK,
	gesture.ActionHome:       evdev.KEY_HOMEPAGE,
	gesture.ActionRecents:    keyAppSelect,
	gesture.ActionUp:         evdev.KEY_UP,
	gesture.ActionDown:       evdev.KEY_DOWN,
	gesture.ActionLeft:       evdev.KEY_LEFT,
	gesture.ActionRight:      evdev.KEY_RIGHT,
	gesture.ActionAssistant:  keyAssistant,
	gesture.ActionScreenshot: evdev.KEY_SYSRQ,
	gesture.ActionVolDown:    evdev.KEY_VOLUMEDOWN,
	gesture.ActionVolUp:      evdev.KEY_VOLUMEUP,
}

var mediaKeys = map[gesture.ActionID]evdev.EvCode{
	gesture.ActionPlayPause: evdev.KEY_PLAYPAUSE,
	gesture.ActionPrevTrack: evdev.KEY_PREVIOUSSONG,
	gesture.ActionNextTrack: evdev.KEY_NEXTSONG,
}

// Config wires the executor to whatever the host provides. Nil members make
// the actions that need them log and do nothing.
type Config struct {
	Keyboard KeySender
	Media    MediaController
	Screen   ScreenController
	Launcher Launcher
	Torch    Torch
	WakeLock gesture.WakeLock
	// Launch overrides DefaultLaunch and supplies targets for camera, camera
	// motor and FM radio.
	Launch map[gesture.ActionID]string
}

type Executor struct {
	cfg    Config
	launch map[gesture.ActionID]string
}

func New(cfg Config) *Executor {
	launch := make(map[gesture.ActionID]string, len(DefaultLaunch)+len(cfg.Launch))
	for a, t := range DefaultLaunch {
		launch[a] = t
	}
	for a, t := range cfg.Launch {
		launch[a] = t
	}
	return &Executor{cfg: cfg, launch: launch}
}

// Execute performs action. Failures are logged; the caller never retries.
func (e *Executor) Execute(action gesture.ActionID) {
	if err := e.execute(action); err != nil {
		log.Printf("[EXEC] %s failed: %v", action, err)
		return
	}
	log.Printf("[EXEC] %s done", action)
}

func (e *Executor) execute(action gesture.ActionID) error {
	if code, ok := navigationKeys[action]; ok {
		return e.sendKey(code)
	}

	switch action {
	case gesture.ActionWakeUp:
		return e.wake()
	case gesture.ActionScreenOff:
		if e.cfg.Screen == nil {
			return errors.New("no screen controller")
		}
		return e.cfg.Screen.Off()
	case gesture.ActionPlayPause, gesture.ActionPrevTrack, gesture.ActionNextTrack:
		return e.media(action)
	case gesture.ActionFlashlight:
		if e.cfg.Torch == nil {
			return errors.New("no torch")
		}
		e.hold()
		on, err := e.cfg.Torch.Toggle()
		if err != nil {
			return err
		}
		log.Printf("[EXEC] Torch on=%v", on)
		return nil
	case gesture.ActionCamera, gesture.ActionBrowser, gesture.ActionDialer, gesture.ActionEmail,
		gesture.ActionMessages, gesture.ActionCameraMotor, gesture.ActionFmRadio:
		return e.launchApp(action)
	case gesture.ActionNone:
		return nil
	}
	return errors.New("unknown action")
}

func (e *Executor) sendKey(code evdev.EvCode) error {
	if e.cfg.Keyboard == nil {
		return errors.New("no virtual keyboard")
	}
	return e.cfg.Keyboard.SendKey(code)
}

func (e *Executor) hold() {
	if e.cfg.WakeLock != nil {
		e.cfg.WakeLock.AcquireFor(gesture.GestureWakeLockDuration)
	}
}

func (e *Executor) wake() error {
	if e.cfg.Screen != nil {
		if err := e.cfg.Screen.Wake(); err != nil {
			log.Printf("[EXEC] Screen wake failed, falling back to KEY_WAKEUP: %v", err)
		} else {
			return nil
		}
	}
	return e.sendKey(evdev.KEY_WAKEUP)
}

// media prefers MPRIS and falls back to media keys when no player answers.
func (e *Executor) media(action gesture.ActionID) error {
	if e.cfg.Media != nil {
		var err error
		switch action {
		case gesture.ActionPlayPause:
			err = e.cfg.Media.PlayPause()
		case gesture.ActionPrevTrack:
			err = e.cfg.Media.Previous()
		case gesture.ActionNextTrack:
			err = e.cfg.Media.Next()
		}
		if err == nil {
			return nil
		}
		log.Printf("[EXEC] MPRIS %s failed, sending media key: %v", action, err)
	}
	return e.sendKey(mediaKeys[action])
}

func (e *Executor) launchApp(action gesture.ActionID) error {
	target, ok := e.launch[action]
	if !ok || target == "" {
		return errors.New("no launch target configured")
	}
	if e.cfg.Launcher == nil {
		return errors.New("no launcher")
	}
	e.hold()
	if err := e.wake(); err != nil {
		log.Printf("[EXEC] Wake before launch failed: %v", err)
	}
	return e.cfg.Launcher.Launch(target)
}

// Multi runs every executor in order.
type Multi []gesture.Executor

func (m Multi) Execute(action gesture.ActionID) {
	for _, e := range m {
		e.Execute(action)
	}
}

// Timed logs how long the wrapped executor took.
type Timed struct {
	Next gesture.Executor
}

func (t Timed) Execute(action gesture.ActionID) {
	start := time.Now()
	t.Next.Execute(action)
	if d := time.Since(start); d > 250*time.Millisecond {
		log.Printf("[EXEC] %s took %v", action, d)
	}
}
