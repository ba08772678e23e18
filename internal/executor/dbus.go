package executor

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	mprisPrefix    = "org.mpris.MediaPlayer2."
	mprisPath      = "/org/mpris/MediaPlayer2"
	mprisPlayer    = "org.mpris.MediaPlayer2.Player"
	screenSaverBus = "org.freedesktop.ScreenSaver"
	screenSaverObj = "/org/freedesktop/ScreenSaver"
)

// SessionBus controls media players over MPRIS and the screen through the
// freedesktop ScreenSaver interface.
type SessionBus struct {
	conn *dbus.Conn
}

func NewSessionBus() (*SessionBus, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &SessionBus{conn: conn}, nil
}

func (s *SessionBus) PlayPause() error { return s.player("PlayPause") }
func (s *SessionBus) Next() error      { return s.player("Next") }
func (s *SessionBus) Previous() error  { return s.player("Previous") }

// player calls method on the first MPRIS player on the bus.
func (s *SessionBus) player(method string) error {
	var names []string
	if err := s.conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return fmt.Errorf("list bus names: %w", err)
	}
	name := firstPlayer(names)
	if name == "" {
		return ErrNoPlayer
	}
	obj := s.conn.Object(name, dbus.ObjectPath(mprisPath))
	if call := obj.Call(mprisPlayer+"."+method, 0); call.Err != nil {
		return fmt.Errorf("%s on %s: %w", method, name, call.Err)
	}
	return nil
}

func firstPlayer(names []string) string {
	for _, n := range names {
		if strings.HasPrefix(n, mprisPrefix) {
			return n
		}
	}
	return ""
}

// Off blanks the screen by activating the screensaver.
func (s *SessionBus) Off() error { return s.setScreenSaver(true) }

// Wake deactivates the screensaver.
func (s *SessionBus) Wake() error { return s.setScreenSaver(false) }

func (s *SessionBus) setScreenSaver(active bool) error {
	obj := s.conn.Object(screenSaverBus, dbus.ObjectPath(screenSaverObj))
	if call := obj.Call(screenSaverBus+".SetActive", 0, active); call.Err != nil {
		return fmt.Errorf("screensaver SetActive(%v): %w", active, call.Err)
	}
	return nil
}

func (s *SessionBus) Close() error {
	return s.conn.Close()
}
