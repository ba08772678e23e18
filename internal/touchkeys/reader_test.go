package touchkeys

import (
	"testing"

	evdev "github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"

	"github.com/bezmoradi/gestured/internal/gesture"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name   string
		ev     evdev.InputEvent
		source gesture.Source
		want   gesture.Event
		ok     bool
	}{
		{
			name:   "key up",
			ev:     evdev.InputEvent{Type: evdev.EV_KEY, Code: 116, Value: keyUp},
			source: gesture.SourceTouchscreen,
			want:   gesture.Event{ScanCode: 116, KeyUp: true, Source: gesture.SourceTouchscreen},
			ok:     true,
		},
		{
			name: "key down",
			ev:   evdev.InputEvent{Type: evdev.EV_KEY, Code: 17, Value: keyDown},
			want: gesture.Event{ScanCode: 17},
			ok:   true,
		},
		{
			name: "repeat is not key up",
			ev:   evdev.InputEvent{Type: evdev.EV_KEY, Code: 17, Value: keyRepeat},
			want: gesture.Event{ScanCode: 17},
			ok:   true,
		},
		{
			name: "letter code from unknown device is touchscreen",
			ev:   evdev.InputEvent{Type: evdev.EV_KEY, Code: gesture.ScanV, Value: keyUp},
			want: gesture.Event{ScanCode: gesture.ScanV, KeyUp: true, Source: gesture.SourceTouchscreen},
			ok:   true,
		},
		{
			name: "sync ignored",
			ev:   evdev.InputEvent{Type: evdev.EV_SYN},
		},
		{
			name: "msc scan ignored",
			ev:   evdev.InputEvent{Type: evdev.EV_MSC, Code: evdev.MSC_SCAN, Value: 46},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := translate(&tt.ev, tt.source)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestStopWithoutStart(t *testing.T) {
	r := NewReader("/dev/null", gesture.SourceUnknown, nil)
	r.Stop()
	r.Listen()
}
