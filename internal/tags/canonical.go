package tags

import "slices"

// Canonicalize sorts cmds by the command order and removes duplicates.
// The slice is reordered in place; the returned slice is the canonical
// prefix of it. Canonicalizing a canonical list returns it unchanged.
func Canonicalize[C Command[C]](cmds []C) []C {
	if len(cmds) < 2 {
		return cmds
	}
	slices.SortStableFunc(cmds, compare[C])
	return slices.Compact(cmds)
}

// IsCanonical reports whether cmds is strictly increasing.
func IsCanonical[C Command[C]](cmds []C) bool {
	for i := 1; i < len(cmds); i++ {
		if !cmds[i-1].Less(cmds[i]) {
			return false
		}
	}
	return true
}

func compare[C Command[C]](a, b C) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}
