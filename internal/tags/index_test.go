package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmpty(t *testing.T) {
	assert.Equal(t, HashSeed, Hash[Save](nil))
	assert.Equal(t, HashSeed, Hash([]Copy{}))
}

func TestHashEqualContents(t *testing.T) {
	a := Canonicalize([]Copy{{2, 5}, {1, 9}})
	b := Canonicalize([]Copy{{1, 9}, {2, 5}, {1, 9}})
	assert.Equal(t, Hash(a), Hash(b))
}

func TestHashDependsOnOrderAndFields(t *testing.T) {
	assert.NotEqual(t, Hash([]Save{{1}, {2}}), Hash([]Save{{2}, {1}}))
	assert.NotEqual(t, Hash([]Copy{{1, 2}}), Hash([]Copy{{2, 1}}))
	assert.NotEqual(t, Hash([]Save{{1}}), HashSeed)
}

func TestIndexFindInsert(t *testing.T) {
	x := NewIndex[Save]()
	cmds := []Save{{1}, {3}}
	h := Hash(cmds)

	assert.Equal(t, NotFound, x.Find(h, cmds))
	pos := x.Insert(h, cmds)
	assert.Equal(t, 0, pos)
	assert.Equal(t, pos, x.Find(h, []Save{{1}, {3}}))
	assert.Equal(t, 1, x.Len())

	rep := x.At(pos)
	assert.Equal(t, 0, rep.ID())
	assert.Equal(t, h, rep.Hash())
	assert.Equal(t, 2, rep.Len())
	assert.Equal(t, Save{3}, rep.At(1))
}

func TestIndexInsertCopiesInput(t *testing.T) {
	x := NewIndex[Save]()
	cmds := []Save{{1}, {2}}
	pos := x.Insert(Hash(cmds), cmds)

	cmds[0] = Save{9}
	assert.Equal(t, Save{1}, x.At(pos).At(0))
}

// Lists forced into one bucket must still be told apart by contents.
func TestIndexCollisionFallback(t *testing.T) {
	const collide uint64 = 42

	x := NewIndex[Copy]()
	a := []Copy{{1, 2}}
	b := []Copy{{2, 1}}
	c := []Copy{{1, 2}, {3, 4}}

	pa := x.Insert(collide, a)
	assert.Equal(t, NotFound, x.Find(collide, b))
	pb := x.Insert(collide, b)
	assert.Equal(t, NotFound, x.Find(collide, c))
	pc := x.Insert(collide, c)

	assert.Equal(t, pa, x.Find(collide, []Copy{{1, 2}}))
	assert.Equal(t, pb, x.Find(collide, []Copy{{2, 1}}))
	assert.Equal(t, pc, x.Find(collide, []Copy{{1, 2}, {3, 4}}))
	assert.Equal(t, NotFound, x.Find(collide, nil))
	assert.Equal(t, NotFound, x.Find(collide+1, a))

	stats := x.Stats()
	assert.Greater(t, stats.Collisions, 0)
	assert.Equal(t, 3, stats.Hits)
}

func TestIndexIntern(t *testing.T) {
	x := NewIndex[Save]()

	a := x.Intern([]Save{{7}})
	b := x.Intern([]Save{{7}, {7}})
	c := x.Intern([]Save{{8}})

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, x.Len())
	assert.Equal(t, "[r7=pos]", a.String())
}

func TestIndexInternEmpty(t *testing.T) {
	x := NewIndex[Copy]()
	a := x.Intern(nil)
	b := x.Intern([]Copy{})

	assert.Same(t, a, b)
	assert.True(t, a.Empty())
	assert.Equal(t, HashSeed, a.Hash())
	assert.Equal(t, "[]", a.String())
}

func TestIndexAllInOrder(t *testing.T) {
	x := NewIndex[Save]()
	x.Intern([]Save{{3}})
	x.Intern([]Save{{1}})
	x.Intern([]Save{{3}})
	x.Intern([]Save{{2}, {1}})

	var got []string
	for i, l := range x.All() {
		require.Equal(t, i, l.ID())
		got = append(got, l.String())
	}
	assert.Equal(t, []string{"[r3=pos]", "[r1=pos]", "[r1=pos r2=pos]"}, got)
}

func TestListAll(t *testing.T) {
	x := NewIndex[Copy]()
	l := x.Intern([]Copy{{5, 1}, {2, 2}})

	var got []Copy
	for c := range l.All() {
		got = append(got, c)
	}
	assert.Equal(t, []Copy{{2, 2}, {5, 1}}, got)
}
