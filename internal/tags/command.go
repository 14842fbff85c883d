// Package tags canonicalizes and interns the register bookkeeping commands
// attached to the basic blocks of a tagged DFA.
//
// After determinization different blocks often carry the same commands up
// to reordering and duplicates. Each block's commands are brought to a
// normal form and interned into an index, so that later passes (transition
// tunnelling, code emission) can compare two blocks' commands by
// representative identity instead of walking lists.
//
// Interned representatives are shared between blocks and are read only.
package tags

import (
	"encoding/binary"
	"fmt"
)

// SlotID names a register holding a tag value.
type SlotID int32

// Command is the constraint satisfied by Save and Copy. The order given by
// Less must agree with ==: two commands neither of which is Less than the
// other are equal.
type Command[C any] interface {
	comparable
	fmt.Stringer

	Less(other C) bool

	appendFields(b []byte) []byte
}

// Save records the current input position into Slot.
type Save struct {
	Slot SlotID
}

// Less orders saves by slot.
func (s Save) Less(other Save) bool {
	return s.Slot < other.Slot
}

func (s Save) String() string {
	return fmt.Sprintf("r%d=pos", s.Slot)
}

func (s Save) appendFields(b []byte) []byte {
	return binary.LittleEndian.AppendUint32(b, uint32(s.Slot))
}

// Copy copies the value of register Src into register Dst.
type Copy struct {
	Dst SlotID
	Src SlotID
}

// Less orders copies lexicographically by (Dst, Src).
func (c Copy) Less(other Copy) bool {
	return c.Dst < other.Dst || (c.Dst == other.Dst && c.Src < other.Src)
}

func (c Copy) String() string {
	return fmt.Sprintf("r%d=r%d", c.Dst, c.Src)
}

func (c Copy) appendFields(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, uint32(c.Dst))
	return binary.LittleEndian.AppendUint32(b, uint32(c.Src))
}
