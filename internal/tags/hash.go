package tags

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// HashSeed is the hash of an empty command list.
const HashSeed uint64 = 0

// Hash computes a running hash over the fields of a canonical list. Each
// command is folded into the previous value, so equal lists hash equal.
// Distinct lists may collide; Index resolves collisions by comparing
// contents.
func Hash[C Command[C]](cmds []C) uint64 {
	h := HashSeed
	buf := make([]byte, 0, 16)
	for _, c := range cmds {
		buf = binary.LittleEndian.AppendUint64(buf[:0], h)
		buf = c.appendFields(buf)
		h = xxhash.Sum64(buf)
	}
	return h
}
