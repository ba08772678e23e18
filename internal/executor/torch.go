package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

const ledsDir = "/sys/class/leds"

// SysfsTorch toggles a flash LED through its brightness file. The on state
// is tracked locally rather than read back.
type SysfsTorch struct {
	dir string

	mu      sync.Mutex
	enabled bool
}

func NewSysfsTorch(dir string) *SysfsTorch {
	return &SysfsTorch{dir: dir}
}

// FindTorch returns the first LED under root whose name mentions a torch or
// flash. An empty root means /sys/class/leds.
func FindTorch(root string) (string, error) {
	if root == "" {
		root = ledsDir
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", root, err)
	}
	for _, e := range entries {
		name := strings.ToLower(e.Name())
		if strings.Contains(name, "torch") || strings.Contains(name, "flash") {
			return filepath.Join(root, e.Name()), nil
		}
	}
	return "", fmt.Errorf("no torch LED under %s", root)
}

// Toggle flips the torch and returns the new state.
func (t *SysfsTorch) Toggle() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	value := "0"
	if !t.enabled {
		max, err := t.maxBrightness()
		if err != nil {
			return t.enabled, err
		}
		value = strconv.Itoa(max)
	}
	if err := os.WriteFile(filepath.Join(t.dir, "brightness"), []byte(value), 0644); err != nil {
		return t.enabled, fmt.Errorf("set torch brightness: %w", err)
	}
	t.enabled = !t.enabled
	return t.enabled, nil
}

func (t *SysfsTorch) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

func (t *SysfsTorch) maxBrightness() (int, error) {
	data, err := os.ReadFile(filepath.Join(t.dir, "max_brightness"))
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("read max brightness: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse max brightness: %w", err)
	}
	return n, nil
}
