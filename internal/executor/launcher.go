package executor

import (
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CommandLauncher opens URIs with the desktop opener and runs anything else as a
// command line.
type CommandLauncher struct {
	Opener string
	// run is replaced in tests.
	run func(name string, args ...string) error
}

func NewCommandLauncher(opener string) *CommandLauncher {
	if opener == "" {
		opener = "xdg-open"
	}
	return &CommandLauncher{Opener: opener, run: startDetached}
}

// Launch starts target without waiting for it to exit. "scheme:" style targets
// go to the opener; anything else is split on whitespace and executed.
func (l *CommandLauncher) Launch(target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return fmt.Errorf("empty launch target")
	}

	if isURI(target) {
		if err := l.run(l.Opener, target); err != nil {
			return fmt.Errorf("open %s: %w", target, err)
		}
		return nil
	}

	fields := strings.Fields(target)
	if err := l.run(fields[0], fields[1:]...); err != nil {
		return fmt.Errorf("run %s: %w", fields[0], err)
	}
	return nil
}

func isURI(target string) bool {
	if strings.ContainsAny(target, " /") && !strings.Contains(target, "://") {
		return false
	}
	i := strings.Index(target, ":")
	if i <= 0 {
		return false
	}
	for _, r := range target[:i] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '+' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}

	// Reap the child; a launcher that exits immediately with an error is worth reporting.
	errCh := make(chan error, 1)
	go func() { errCh <- cmd.Wait() }()
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s exited: %w", name, err)
		}
	case <-time.After(200 * time.Millisecond):
	}
	return nil
}
