package terminal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateInPlaceOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	c := NewControlWriter(&buf, false)

	c.UpdateInPlace([]string{"a", "b"})
	c.UpdateInPlace([]string{"c"})
	c.HideCursor()

	assert.Equal(t, "a\nb\nc\n", buf.String())
}

func TestUpdateInPlaceRewritesBlock(t *testing.T) {
	var buf bytes.Buffer
	c := NewControlWriter(&buf, true)

	c.UpdateInPlace([]string{"one", "two"})
	assert.NotContains(t, buf.String(), "\033[2A")

	buf.Reset()
	c.UpdateInPlace([]string{"three"})
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\033[2A"))
	assert.Contains(t, out, "three\n")
	assert.True(t, strings.HasSuffix(out, "\033[1A"))

	buf.Reset()
	c.Println("log line")
	c.UpdateInPlace([]string{"four"})
	assert.NotContains(t, buf.String(), "A\033")
}
