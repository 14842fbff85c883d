package compiler

import "github.com/KromDaniel/regtag/internal/tags"

// Capture group constants
const (
	// ImplicitCaptureCount is the number of implicit capture slots in a regex.
	// Slots 0 and 1 hold the bounds of the full match and are never set by
	// capture instructions. User-defined capture slots start at index 2.
	// Usage: prog.NumCap > ImplicitCaptureCount means user-defined groups exist.
	ImplicitCaptureCount = 2
)

// ASCII boundary constants
const (
	// MaxASCIIRune is the exclusive upper bound for ASCII characters.
	// The TDFA alphabet is the bytes below MaxASCIIRune.
	MaxASCIIRune = 128
)

// Register layout constants.
//
// Register 0 is never written and always holds -1. Registers 1..NumCap
// receive the tag values of the selected match (see OutputSlot). Working
// registers owned by TDFA states follow.
const (
	// UnsetSlot is the register read by copies that clear a tag.
	UnsetSlot tags.SlotID = 0

	// DefaultTDFAThreshold is the state limit used when Config.TDFAThreshold is 0.
	DefaultTDFAThreshold = 500
)

// OutputSlot returns the register receiving tag t on accept.
func OutputSlot(t int) tags.SlotID {
	return tags.SlotID(1 + t)
}
