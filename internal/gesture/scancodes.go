package gesture

// Scan codes reported by the touchscreen firmware for screen-off gestures.
const (
	ScanDoubleClick = 116
	ScanSwipeUp     = 103
	ScanW           = 17
	ScanS           = 31
	ScanE           = 18
	ScanC           = 46
	ScanZ           = 44
	ScanV           = 47
)

var supportedScanCodes = []int{
	ScanDoubleClick,
	ScanSwipeUp,
	ScanW,
	ScanS,
	ScanE,
	ScanC,
	ScanZ,
	ScanV,
}

// SupportedScanCodes returns the gesture scan codes this device can report.
func SupportedScanCodes() []int {
	out := make([]int, len(supportedScanCodes))
	copy(out, supportedScanCodes)
	return out
}

// CanHandle reports whether ev carries one of the supported gesture scan codes.
func CanHandle(ev Event) bool {
	for _, c := range supportedScanCodes {
		if c == ev.ScanCode {
			return true
		}
	}
	return false
}

// IsWakeEvent reports whether ev is the key-up of a double-tap.
func IsWakeEvent(ev Event) bool {
	return ev.KeyUp && ev.ScanCode == ScanDoubleClick
}

// IsCameraLaunchEvent reports whether ev is the key-up of the "C" gesture.
func IsCameraLaunchEvent(ev Event) bool {
	return ev.KeyUp && ev.ScanCode == ScanC
}

// IsTouchscreenCode reports whether code is one of the letter gestures that only
// the touchscreen emits. Input readers that cannot tell devices apart use it to
// set Event.Source.
func IsTouchscreenCode(code int) bool {
	switch code {
	case ScanC, ScanZ, ScanV:
		return true
	}
	return false
}
