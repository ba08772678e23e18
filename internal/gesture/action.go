package gesture

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionID identifies what a recognized gesture should do. The numeric values
// match the ids carried by mapping updates.
type ActionID int

const (
	ActionNone        ActionID = 0
	ActionBack        ActionID = 2
	ActionHome        ActionID = 3
	ActionRecents     ActionID = 4
	ActionUp          ActionID = 5
	ActionDown        ActionID = 6
	ActionLeft        ActionID = 7
	ActionRight       ActionID = 8
	ActionAssistant   ActionID = 9
	ActionWakeUp      ActionID = 10
	ActionScreenshot  ActionID = 11
	ActionScreenOff   ActionID = 12
	ActionFlashlight  ActionID = 13
	ActionCamera      ActionID = 14
	ActionBrowser     ActionID = 15
	ActionDialer      ActionID = 16
	ActionEmail       ActionID = 17
	ActionMessages    ActionID = 18
	ActionPlayPause   ActionID = 19
	ActionPrevTrack   ActionID = 20
	ActionNextTrack   ActionID = 21
	ActionVolDown     ActionID = 22
	ActionVolUp       ActionID = 23
	ActionCameraMotor ActionID = 24
	ActionFmRadio     ActionID = 25
)

var actionNames = map[ActionID]string{
	ActionNone:        "none",
	ActionBack:        "back",
	ActionHome:        "home",
	ActionRecents:     "recents",
	ActionUp:          "up",
	ActionDown:        "down",
	ActionLeft:        "left",
	ActionRight:       "right",
	ActionAssistant:   "assistant",
	ActionWakeUp:      "wake_up",
	ActionScreenshot:  "screenshot",
	ActionScreenOff:   "screen_off",
	ActionFlashlight:  "flashlight",
	ActionCamera:      "camera",
	ActionBrowser:     "browser",
	ActionDialer:      "dialer",
	ActionEmail:       "email",
	ActionMessages:    "messages",
	ActionPlayPause:   "play_pause",
	ActionPrevTrack:   "prev_track",
	ActionNextTrack:   "next_track",
	ActionVolDown:     "vol_down",
	ActionVolUp:       "vol_up",
	ActionCameraMotor: "camera_motor",
	ActionFmRadio:     "fm_radio",
}

func (a ActionID) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "action(" + strconv.Itoa(int(a)) + ")"
}

// Valid reports whether a is one of the known action ids.
func (a ActionID) Valid() bool {
	_, ok := actionNames[a]
	return ok
}

// ParseActionID accepts either an action name ("play_pause") or its decimal id ("19").
func ParseActionID(s string) (ActionID, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if n, err := strconv.Atoi(s); err == nil {
		a := ActionID(n)
		if !a.Valid() {
			return 0, fmt.Errorf("unknown action id %d", n)
		}
		return a, nil
	}
	for id, name := range actionNames {
		if name == s {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Actions returns every known action except ActionNone, in id order.
func Actions() []ActionID {
	out := make([]ActionID, 0, len(actionNames)-1)
	for a := ActionBack; a <= ActionFmRadio; a++ {
		out = append(out, a)
	}
	return out
}
