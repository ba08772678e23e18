package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Control rewrites a block of status lines in place on a terminal.
type Control struct {
	mu         sync.Mutex
	out        io.Writer
	isTerminal bool
	printed    int // lines shown by the last update
}

// NewControl creates a new terminal control instance on stdout
func NewControl() *Control {
	return NewControlWriter(os.Stdout, isTerminal(os.Stdout))
}

func NewControlWriter(out io.Writer, terminal bool) *Control {
	return &Control{out: out, isTerminal: terminal}
}

func isTerminal(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// IsTerminal checks if output is going to a terminal
func (c *Control) IsTerminal() bool {
	return c.isTerminal
}

// moveCursorUp moves the cursor up by the specified number of lines
func (c *Control) moveCursorUp(lines int) {
	if lines > 0 {
		fmt.Fprintf(c.out, "\033[%dA", lines)
	}
}

func (c *Control) clearLine() {
	fmt.Fprint(c.out, "\033[2K\r")
}

// UpdateInPlace replaces the previous block of lines with lines. Off a
// terminal it just prints them.
func (c *Control) UpdateInPlace(lines []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isTerminal {
		for _, line := range lines {
			fmt.Fprintln(c.out, line)
		}
		return
	}

	c.moveCursorUp(c.printed)
	for _, line := range lines {
		c.clearLine()
		fmt.Fprintln(c.out, line)
	}
	// Blank out leftovers when the new block is shorter.
	for i := len(lines); i < c.printed; i++ {
		c.clearLine()
		fmt.Fprintln(c.out)
	}
	if extra := c.printed - len(lines); extra > 0 {
		c.moveCursorUp(extra)
	}
	c.printed = len(lines)
}

// Println prints a line below the status block and forgets the block.
func (c *Control) Println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
	c.printed = 0
}

// HideCursor hides the terminal cursor
func (c *Control) HideCursor() {
	if c.isTerminal {
		fmt.Fprint(c.out, "\033[?25l")
	}
}

// ShowCursor shows the terminal cursor
func (c *Control) ShowCursor() {
	if c.isTerminal {
		fmt.Fprint(c.out, "\033[?25h")
	}
}
