package compiler

import (
	"bytes"
	"errors"
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/KromDaniel/regtag/internal/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stdlibCases are checked against regexp for every input.
var stdlibCases = []struct {
	name    string
	pattern string
	inputs  []string
}{
	{"two groups", `(a+)(b+)`, []string{"xaabbb", "ab", "ba", "aaa", ""}},
	{"date", `(\d{4})-(\d{2})-(\d{2})`, []string{"on 2024-01-15.", "2024-1-15", "99999-12-310"}},
	{"email", `([a-zA-Z0-9._%+-]+)@([a-zA-Z0-9.-]+)\.([a-zA-Z]{2,})`, []string{
		"contact: john.doe@example.com today", "a@b.c", "x@y.co.uk", "no email here",
	}},
	{"priority", `(a|ab)(c|bcd)(d*)`, []string{"abcd", "abc", "acd"}},
	{"optional group", `(?:ab|(a))`, []string{"ab", "a", "b"}},
	{"anchored", `^(\w+)$`, []string{"hello", "hello world", ""}},
	{"empty star", `(a*)`, []string{"baaa", "", "aaa"}},
	{"quest group", `(x)?y`, []string{"y", "xy", "xxy", "x"}},
	{"fold case", `(?i)(hello) (world)`, []string{"say HELLO World", "hello  world"}},
	{"repeated group", `(a|b)*c`, []string{"abac", "c", "ab"}},
	{"end anchor", `a$`, []string{"aa", "ab", ""}},
	{"begin anchor", `^a`, []string{"ba", "ab"}},
	{"dot", `a.c`, []string{"a\nc abc", "ac"}},
	{"nested plus", `(a+)+b`, []string{"aaab", "aaa", "b"}},
	{"empty group", `()`, []string{"abc", ""}},
	{"named", `(?P<key>\w+)=(?P<value>\w*)`, []string{"a=1 b=", "=x", "key=value"}},
	{"dollar in alternation", `(a|b$)(c?)`, []string{"b", "bc", "ac", "xb"}},
	{"dollar in star", `(a|$)*`, []string{"aa", "a", "", "ba"}},
	{"dollar in plus", `(b|$)+`, []string{"b", "", "bb"}},
	{"dollar in nested star", `((.|$))*`, []string{"ab", "a", ""}},
	{"end then begin", `$^`, []string{"", "a"}},
	{"end then begin star", `($^)*`, []string{"", "a"}},
	{"begin and end", `(^|a)($|b)`, []string{"", "a", "ab", "b"}},
}

func TestFindSubmatchIndexMatchesStdlib(t *testing.T) {
	for _, tt := range stdlibCases {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CompileProgram(tt.pattern, 0, nil)
			require.NoError(t, err)
			re := regexp.MustCompile(tt.pattern)

			for _, input := range tt.inputs {
				assert.Equal(t, re.FindStringSubmatchIndex(input), p.FindSubmatchIndex(input), "input %q", input)
				assert.Equal(t, re.MatchString(input), p.MatchString(input), "input %q", input)
			}
		})
	}
}

func TestFindAllSubmatchIndexMatchesStdlib(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		n       int
	}{
		{`x*`, "abc", -1},
		{`a*`, "baaac", -1},
		{`(\d+)`, "1 22 333", -1},
		{`(\d+)`, "1 22 333", 2},
		{`(\w)(\w)?`, "abcde", -1},
		{`$`, "abc", -1},
		{`^`, "abc", -1},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			p, err := CompileProgram(tt.pattern, 0, nil)
			require.NoError(t, err)
			want := regexp.MustCompile(tt.pattern).FindAllStringSubmatchIndex(tt.input, tt.n)
			assert.Equal(t, want, p.FindAllSubmatchIndex(tt.input, tt.n))
		})
	}
}

func TestEndOfTextCaptures(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    []int
	}{
		{`(a|$)*`, "aa", []int{0, 2, 1, 2}},
		{`(a|$)*`, "a", []int{0, 1, 0, 1}},
		{`(b|$)+`, "b", []int{0, 1, 0, 1}},
		{`((.|$))*`, "ab", []int{0, 2, 1, 2, 1, 2}},
		{`$^`, "", []int{0, 0}},
		{`($^)*`, "", []int{0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" on "+tt.input, func(t *testing.T) {
			p, err := CompileProgram(tt.pattern, 0, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.FindSubmatchIndex(tt.input))
		})
	}
}

// randomPattern builds a pattern over a small alphabet that mixes captures,
// repetition and both text anchors.
func randomPattern(rng *rand.Rand, depth int) string {
	atoms := []string{"a", "b", ".", "[ab]", "$", "^"}
	if depth == 0 || rng.Intn(4) == 0 {
		return atoms[rng.Intn(len(atoms))]
	}
	switch rng.Intn(4) {
	case 0:
		return randomPattern(rng, depth-1) + randomPattern(rng, depth-1)
	case 1:
		return "(" + randomPattern(rng, depth-1) + "|" + randomPattern(rng, depth-1) + ")"
	case 2:
		return "(" + randomPattern(rng, depth-1) + ")"
	default:
		ops := []string{"*", "+", "?", "*?", "+?", "??", "{1,2}"}
		return "(" + randomPattern(rng, depth-1) + ")" + ops[rng.Intn(len(ops))]
	}
}

func randomInput(rng *rand.Rand) string {
	var sb strings.Builder
	for n := rng.Intn(5); n > 0; n-- {
		sb.WriteByte("abc"[rng.Intn(3)])
	}
	return sb.String()
}

func TestRandomPatternsMatchStdlib(t *testing.T) {
	rng := rand.New(rand.NewSource(42)) // Deterministic for reproducibility

	for i := 0; i < 2000; i++ {
		pattern := randomPattern(rng, 4)
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		p, err := CompileProgram(pattern, 0, nil)
		if errors.Is(err, ErrTooManyStates) {
			continue
		}
		require.NoError(t, err, "pattern %q", pattern)

		for j := 0; j < 6; j++ {
			input := randomInput(rng)
			require.Equal(t, re.FindStringSubmatchIndex(input), p.FindSubmatchIndex(input),
				"pattern %q input %q", pattern, input)
			require.Equal(t, re.FindAllStringSubmatchIndex(input, -1), p.FindAllSubmatchIndex(input, -1),
				"pattern %q input %q", pattern, input)
		}
	}
}

func TestNonASCIIInputEndsAttempt(t *testing.T) {
	p, err := CompileProgram(`(a+)`, 0, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 0, 1}, p.FindSubmatchIndex("aé"))
	assert.Equal(t, []int{2, 3, 2, 3}, p.FindSubmatchIndex("éa"))
}

func TestUnsupportedAssertions(t *testing.T) {
	for _, pattern := range []string{`\bfoo`, `foo\B`, `(?m)^a`, `(?m)a$`} {
		t.Run(pattern, func(t *testing.T) {
			_, err := CompileProgram(pattern, 0, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupported), "got %v", err)
		})
	}
}

func TestTooManyStates(t *testing.T) {
	const pattern = `(?:a|b)*a(?:a|b)(?:a|b)(?:a|b)(?:a|b)(?:a|b)`

	_, err := CompileProgram(pattern, 8, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyStates)

	_, err = CompileProgram(pattern, 0, nil)
	assert.NoError(t, err)
}

func TestEveryBlockIsIndexed(t *testing.T) {
	for _, tt := range stdlibCases {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CompileProgram(tt.pattern, 0, nil)
			require.NoError(t, err)

			for _, b := range p.CFG.Blocks {
				require.True(t, b.Indexed(), "block %d", b.ID)
				assert.Nil(t, b.Saves)
				assert.Nil(t, b.Copies)
				assert.True(t, tags.IsCanonical(slicesOf(b.SaveList)))
				assert.True(t, tags.IsCanonical(slicesOf(b.CopyList)))
			}
			assert.LessOrEqual(t, p.Indices.Saves.Len(), len(p.CFG.Blocks))
			assert.LessOrEqual(t, p.Indices.Copies.Len(), len(p.CFG.Blocks))
		})
	}
}

func slicesOf[C tags.Command[C]](l *tags.List[C]) []C {
	var out []C
	for c := range l.All() {
		out = append(out, c)
	}
	return out
}

func TestBlocksShareRepresentatives(t *testing.T) {
	p, err := CompileProgram(`([a-z]+)@([a-z]+)`, 0, nil)
	require.NoError(t, err)

	// the 26 letters of a state lead to the same place with the same commands
	start := p.States[p.StartAny]
	first := start.Blocks['a']
	require.NotNil(t, first)
	for c := 'b'; c <= 'z'; c++ {
		blk := start.Blocks[c]
		require.NotNil(t, blk)
		assert.NotEqual(t, first.ID, blk.ID)
		assert.Same(t, first.SaveList, blk.SaveList)
		assert.Same(t, first.CopyList, blk.CopyList)
	}
	assert.Less(t, p.Indices.Saves.Len()+p.Indices.Copies.Len(), 2*len(p.CFG.Blocks))
}

func TestTunnelMergesRanges(t *testing.T) {
	p, err := CompileProgram(`[a-z]+`, 0, nil)
	require.NoError(t, err)

	start := p.States[p.StartAny]
	require.Len(t, start.Ranges, 1)
	r := start.Ranges[0]
	assert.Equal(t, byte('a'), r.Lo)
	assert.Equal(t, byte('z'), r.Hi)
	assert.Equal(t, start.Trans['a'], r.Next)

	total := 0
	for _, s := range p.States {
		total += len(s.Ranges)
	}
	assert.Equal(t, total, p.Ranges)
	assert.Less(t, p.Ranges, countTransitions(p.States))
}

func TestEmptyBlocksShareOneRepresentative(t *testing.T) {
	p, err := CompileProgram(`abc`, 0, nil)
	require.NoError(t, err)

	// no capture groups: every block is empty
	assert.Equal(t, 1, p.Indices.Saves.Len())
	assert.Equal(t, 1, p.Indices.Copies.Len())
	assert.True(t, p.Indices.Saves.At(0).Empty())
	assert.True(t, p.Indices.Copies.At(0).Empty())
}

func TestDump(t *testing.T) {
	p, err := CompileProgram(`(a)b`, 0, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, p.Dump(&buf))
	out := buf.String()

	assert.Contains(t, out, `pattern: "(a)b"`)
	assert.Contains(t, out, "captures: 2")
	assert.Contains(t, out, "'a' -> ")
	assert.Contains(t, out, " accept ")
	assert.Contains(t, out, "save lists: ")
	assert.Contains(t, out, "copy lists: ")
	assert.Contains(t, out, "blocks: ")
	assert.NotContains(t, out, "unindexed")
}

func TestVerboseBuildLogsIndexStats(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(true)
	logger.SetOutput(&buf)

	_, err := CompileProgram(`(a+)(b+)`, 0, logger)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "=== TDFA Construction ===")
	assert.Contains(t, out, "=== Tag Indexing ===")
	assert.Contains(t, out, "save index: ")
	assert.Contains(t, out, "tunnelled ")
}
