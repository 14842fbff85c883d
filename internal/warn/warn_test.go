package warn

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSilentByDefault(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.MatchEmpty("a*")
	w.EmptyClass("[^\\x00-\\x{10FFFF}]")

	assert.Empty(t, buf.String())
	assert.Equal(t, 0, w.Total())
	assert.False(t, w.Error())
}

func TestEnableSingleWarning(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)
	require.NoError(t, w.Apply("match-empty-string"))

	w.MatchEmpty("a*")
	w.NonASCIIRunes(".")

	assert.Equal(t, 1, w.Count(MatchEmptyString))
	assert.Equal(t, 0, w.Count(NonASCII))
	assert.Equal(t, "regtag: warning: pattern \"a*\" can match the empty string [-Wmatch-empty-string]\n", buf.String())
	assert.False(t, w.Error())
}

func TestPromoteToError(t *testing.T) {
	tests := []struct {
		name      string
		flags     []string
		wantError bool
		wantCount int
	}{
		{"all then error", []string{"all", "error"}, true, 1},
		{"error before enabling", []string{"error", "all"}, true, 1},
		{"error before enabling by name", []string{"error", "match-empty-string"}, true, 1},
		{"error alone", []string{"error"}, false, 0},
		{"error by name", []string{"error=match-empty-string"}, true, 1},
		{"error then no-error", []string{"all", "error", "no-error=match-empty-string"}, false, 1},
		{"disabled", []string{"all", "no-match-empty-string"}, false, 0},
		{"no-all", []string{"all", "error", "no-all"}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := New(&buf)
			require.NoError(t, w.ApplyAll(tt.flags))

			w.MatchEmpty("x?")

			assert.Equal(t, tt.wantError, w.Error())
			assert.Equal(t, tt.wantCount, w.Count(MatchEmptyString))
		})
	}
}

func TestErrorDoesNotEnable(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)
	require.NoError(t, w.ApplyAll([]string{"error", "match-empty-string"}))

	w.EmptyClass("[]")
	w.MatchEmpty("a*")

	assert.False(t, w.Enabled(EmptyCharacterClass))
	assert.Equal(t, 0, w.Count(EmptyCharacterClass))
	assert.Equal(t, "regtag: error: pattern \"a*\" can match the empty string [-Wmatch-empty-string]\n", buf.String())
	assert.True(t, w.Error())
}

func TestErrorMessageKind(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)
	w.SetPrefix("test")
	w.Set(EmptyCharacterClass, WError)

	w.EmptyClass("[]")

	assert.Contains(t, buf.String(), "test: error: ")
	assert.Contains(t, buf.String(), "[-Wempty-character-class]")
}

func TestApplyUnknown(t *testing.T) {
	w := New(nil)
	assert.Error(t, w.Apply("bogus"))
	assert.Error(t, w.Apply("no-bogus"))
	assert.Error(t, w.Apply("error=bogus"))
}

func TestLookupAndNames(t *testing.T) {
	for _, typ := range Types() {
		got, ok := Lookup(typ.String())
		require.True(t, ok, typ.String())
		assert.Equal(t, typ, got)
	}
	assert.Equal(t, "warning(99)", Type(99).String())
}
