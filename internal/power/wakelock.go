// Package power keeps the machine awake while a gesture is being handled, using
// a logind inhibitor lock as the wake lock.
package power

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	login1Dest   = "org.freedesktop.login1"
	login1Path   = "/org/freedesktop/login1"
	inhibitCall  = "org.freedesktop.login1.Manager.Inhibit"
	inhibitWhat  = "sleep:idle"
	inhibitWho   = "gestured"
	inhibitBlock = "block"
)

// Inhibitor takes an inhibitor lock and returns the file that holds it.
type Inhibitor interface {
	Inhibit(why string) (*os.File, error)
}

// WakeLock is a timed wake lock. Overlapping acquisitions extend the expiry;
// the lock is released once the latest expiry passes.
type WakeLock struct {
	name      string
	inhibitor Inhibitor

	mu      sync.Mutex
	held    *os.File
	expires time.Time
	timer   *time.Timer
}

func NewWakeLock(name string, inhibitor Inhibitor) *WakeLock {
	return &WakeLock{name: name, inhibitor: inhibitor}
}

func (w *WakeLock) AcquireFor(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	expires := time.Now().Add(d)
	if w.held == nil {
		if w.inhibitor == nil {
			return
		}
		f, err := w.inhibitor.Inhibit(w.name)
		if err != nil {
			log.Printf("[POWER] Wake lock %s unavailable: %v", w.name, err)
			return
		}
		w.held = f
	} else if !expires.After(w.expires) {
		return
	}

	w.expires = expires
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(d, w.expire)
}

func (w *WakeLock) expire() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.held == nil || time.Now().Before(w.expires) {
		return
	}
	w.releaseLocked()
}

// Release drops the lock immediately.
func (w *WakeLock) Release() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.releaseLocked()
}

func (w *WakeLock) releaseLocked() {
	if w.held == nil {
		return
	}
	if err := w.held.Close(); err != nil {
		log.Printf("[POWER] Releasing wake lock %s: %v", w.name, err)
	}
	w.held = nil
}

// Held reports whether the inhibitor lock is currently taken.
func (w *WakeLock) Held() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.held != nil
}

// LogindInhibitor takes "sleep:idle" block locks from systemd-logind.
type LogindInhibitor struct {
	conn *dbus.Conn
}

// NewLogindInhibitor connects to the system bus.
func NewLogindInhibitor() (*LogindInhibitor, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}
	return &LogindInhibitor{conn: conn}, nil
}

func (l *LogindInhibitor) Inhibit(why string) (*os.File, error) {
	var fd dbus.UnixFD
	obj := l.conn.Object(login1Dest, dbus.ObjectPath(login1Path))
	if err := obj.Call(inhibitCall, 0, inhibitWhat, inhibitWho, why, inhibitBlock).Store(&fd); err != nil {
		return nil, fmt.Errorf("inhibit: %w", err)
	}
	return os.NewFile(uintptr(fd), "inhibit-"+why), nil
}
