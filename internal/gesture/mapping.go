package gesture

import (
	"errors"
	"fmt"
)

// ErrMalformedMapping is returned when a mapping update carries missing or
// mismatched sequences.
var ErrMalformedMapping = errors.New("malformed mapping update")

// Mapping is an immutable scan code to action table. A Mapping is never edited
// after construction; updates build a new one and swap it in.
type Mapping struct {
	actions map[int]ActionID
}

// NewMapping builds a Mapping from two parallel sequences. Both must be non-nil
// and of equal length. Later duplicates of a scan code win.
func NewMapping(scanCodes []int, actions []ActionID) (*Mapping, error) {
	if scanCodes == nil || actions == nil {
		return nil, fmt.Errorf("%w: missing scan codes or actions", ErrMalformedMapping)
	}
	if len(scanCodes) != len(actions) {
		return nil, fmt.Errorf("%w: %d scan codes, %d actions", ErrMalformedMapping, len(scanCodes), len(actions))
	}
	m := &Mapping{actions: make(map[int]ActionID, len(scanCodes))}
	for i, code := range scanCodes {
		m.actions[code] = actions[i]
	}
	return m, nil
}

// NewMappingInts is NewMapping for the integer wire form of an update.
func NewMappingInts(scanCodes, actions []int) (*Mapping, error) {
	if actions == nil {
		return NewMapping(scanCodes, nil)
	}
	ids := make([]ActionID, len(actions))
	for i, a := range actions {
		ids[i] = ActionID(a)
	}
	return NewMapping(scanCodes, ids)
}

// Lookup returns the action for code. Negative action ids count as unmapped.
func (m *Mapping) Lookup(code int) (ActionID, bool) {
	if m == nil {
		return 0, false
	}
	a, ok := m.actions[code]
	if !ok || a < 0 {
		return 0, false
	}
	return a, true
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.actions)
}

// Entries returns a copy of the table.
func (m *Mapping) Entries() map[int]ActionID {
	out := make(map[int]ActionID)
	if m == nil {
		return out
	}
	for k, v := range m.actions {
		out[k] = v
	}
	return out
}
