package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 100 * time.Millisecond

// Loader loads the config file, watches it and hot-reloads it. The current
// config also answers the dispatcher's settings questions.
type Loader struct {
	path     string
	config   atomic.Pointer[Config]
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	onChange []func(*Config)
	ctx      context.Context
	cancel   context.CancelFunc
	errChan  chan error
}

func NewLoader(path string) *Loader {
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		path:    path,
		errChan: make(chan error, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (l *Loader) Path() string {
	return l.path
}

// Load reads and parses the configuration file.
func (l *Loader) Load() (*Config, error) {
	cfg, err := LoadConfig(l.path)
	if err != nil {
		return nil, err
	}
	l.config.Store(cfg)
	return cfg, nil
}

// Config returns the current configuration, or defaults before Load.
func (l *Loader) Config() *Config {
	if cfg := l.config.Load(); cfg != nil {
		return cfg
	}
	return DefaultConfig()
}

func (l *Loader) SetupComplete() bool {
	return l.Config().SetupComplete
}

func (l *Loader) HapticFeedbackEnabled() bool {
	return l.Config().HapticFeedback
}

func (l *Loader) HandwaveEnabled() bool {
	return l.Config().HandwaveEnabled
}

// Watch starts watching the configuration file for changes.
func (l *Loader) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	l.watcher = watcher

	// Editors replace files, so watch the directory.
	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	go l.watchLoop()
	return nil
}

func (l *Loader) watchLoop() {
	var debounceTimer *time.Timer

	for {
		select {
		case <-l.ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(l.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, l.reload)

		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.sendError(err)
		}
	}
}

// reload keeps the previous config when the new file does not load.
func (l *Loader) reload() {
	if l.ctx.Err() != nil {
		return
	}
	cfg, err := LoadConfig(l.path)
	if err != nil {
		l.sendError(fmt.Errorf("reload config: %w", err))
		return
	}
	l.config.Store(cfg)

	l.mu.Lock()
	callbacks := append([]func(*Config){}, l.onChange...)
	l.mu.Unlock()
	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (l *Loader) sendError(err error) {
	select {
	case l.errChan <- err:
	default:
	}
}

// OnChange registers a callback to be invoked when the configuration changes.
func (l *Loader) OnChange(cb func(*Config)) {
	l.mu.Lock()
	l.onChange = append(l.onChange, cb)
	l.mu.Unlock()
}

// Errors returns a channel for receiving errors that occur during watching.
func (l *Loader) Errors() <-chan error {
	return l.errChan
}

// Close stops the watcher and releases resources.
func (l *Loader) Close() error {
	l.cancel()
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}
