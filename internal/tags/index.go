package tags

import (
	"iter"
	"slices"
	"strings"
)

// NotFound is returned by Index.Find when no representative matches.
const NotFound = -1

// List is an interned canonical command list. Lists are shared between
// every block with the same commands and expose no mutators.
type List[C Command[C]] struct {
	id   int
	hash uint64
	cmds []C
}

// ID returns the list's position in its index.
func (l *List[C]) ID() int { return l.id }

// Hash returns the content hash the list was interned under.
func (l *List[C]) Hash() uint64 { return l.hash }

// Len returns the number of commands.
func (l *List[C]) Len() int { return len(l.cmds) }

// Empty reports whether the list has no commands.
func (l *List[C]) Empty() bool { return len(l.cmds) == 0 }

// At returns the i-th command.
func (l *List[C]) At(i int) C { return l.cmds[i] }

// All iterates over the commands in canonical order.
func (l *List[C]) All() iter.Seq[C] {
	return func(yield func(C) bool) {
		for _, c := range l.cmds {
			if !yield(c) {
				return
			}
		}
	}
}

// Equal reports whether the list holds exactly cmds.
func (l *List[C]) Equal(cmds []C) bool {
	return slices.Equal(l.cmds, cmds)
}

func (l *List[C]) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, c := range l.cmds {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(c.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// IndexStats counts index traffic.
type IndexStats struct {
	Lookups    int // Find calls
	Hits       int // Find calls that returned a representative
	Collisions int // bucket entries with equal hash but different contents
}

// Index stores the distinct canonical lists of one command kind.
// Representatives are append only; an Index is not safe for concurrent use.
type Index[C Command[C]] struct {
	reps    []*List[C]
	buckets map[uint64][]int
	stats   IndexStats
}

// NewIndex returns an empty index.
func NewIndex[C Command[C]]() *Index[C] {
	return &Index[C]{buckets: make(map[uint64][]int)}
}

// Find returns the position of the representative equal to cmds, or
// NotFound. The hash only selects a bucket; contents decide the match.
func (x *Index[C]) Find(hash uint64, cmds []C) int {
	x.stats.Lookups++
	for _, pos := range x.buckets[hash] {
		if x.reps[pos].Equal(cmds) {
			x.stats.Hits++
			return pos
		}
		x.stats.Collisions++
	}
	return NotFound
}

// Insert appends a copy of cmds as a new representative and returns its
// position. Callers must Find first to keep representatives unique.
func (x *Index[C]) Insert(hash uint64, cmds []C) int {
	pos := len(x.reps)
	x.reps = append(x.reps, &List[C]{
		id:   pos,
		hash: hash,
		cmds: slices.Clone(cmds),
	})
	x.buckets[hash] = append(x.buckets[hash], pos)
	return pos
}

// Intern canonicalizes cmds and returns the unique representative with the
// same contents, inserting it if needed. cmds is reordered in place.
func (x *Index[C]) Intern(cmds []C) *List[C] {
	cmds = Canonicalize(cmds)
	h := Hash(cmds)
	pos := x.Find(h, cmds)
	if pos == NotFound {
		pos = x.Insert(h, cmds)
	}
	return x.reps[pos]
}

// Len returns the number of representatives.
func (x *Index[C]) Len() int { return len(x.reps) }

// At returns the representative at position pos.
func (x *Index[C]) At(pos int) *List[C] { return x.reps[pos] }

// All iterates over representatives in insertion order.
func (x *Index[C]) All() iter.Seq2[int, *List[C]] {
	return func(yield func(int, *List[C]) bool) {
		for i, l := range x.reps {
			if !yield(i, l) {
				return
			}
		}
	}
}

// Stats returns lookup counters.
func (x *Index[C]) Stats() IndexStats { return x.stats }
