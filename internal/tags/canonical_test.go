package tags

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeSave(t *testing.T) {
	tests := []struct {
		name string
		in   []Save
		want []Save
	}{
		{"empty", nil, nil},
		{"single", []Save{{7}}, []Save{{7}}},
		{"sort and dedup", []Save{{3}, {1}, {1}}, []Save{{1}, {3}}},
		{"all equal", []Save{{4}, {4}, {4}, {4}}, []Save{{4}}},
		{"already canonical", []Save{{1}, {2}, {5}}, []Save{{1}, {2}, {5}}},
		{"reversed", []Save{{9}, {5}, {2}, {0}}, []Save{{0}, {2}, {5}, {9}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canonicalize(slices.Clone(tt.in))
			assert.Equal(t, len(tt.want), len(got))
			assert.True(t, slices.Equal(tt.want, got), "got %v, want %v", got, tt.want)
			assert.True(t, IsCanonical(got))
		})
	}
}

func TestCanonicalizeCopy(t *testing.T) {
	tests := []struct {
		name string
		in   []Copy
		want []Copy
	}{
		{"empty", nil, nil},
		{"sort and dedup", []Copy{{2, 5}, {1, 9}, {2, 5}}, []Copy{{1, 9}, {2, 5}}},
		{"same dst ordered by src", []Copy{{3, 8}, {3, 1}, {3, 4}}, []Copy{{3, 1}, {3, 4}, {3, 8}}},
		{"dst dominates src", []Copy{{2, 0}, {1, 9}}, []Copy{{1, 9}, {2, 0}}},
		{"swapped fields are distinct", []Copy{{1, 2}, {2, 1}, {1, 2}}, []Copy{{1, 2}, {2, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canonicalize(slices.Clone(tt.in))
			assert.True(t, slices.Equal(tt.want, got), "got %v, want %v", got, tt.want)
			assert.True(t, IsCanonical(got))
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	once := Canonicalize([]Copy{{4, 1}, {2, 2}, {4, 1}, {0, 3}})
	twice := Canonicalize(slices.Clone(once))
	assert.Equal(t, once, twice)
}

func TestCanonicalizeOrderIndependent(t *testing.T) {
	base := []Copy{{1, 1}, {1, 2}, {3, 0}, {3, 0}, {5, 7}, {2, 9}, {1, 2}}
	want := Canonicalize(slices.Clone(base))
	require.Len(t, want, 5)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		perm := slices.Clone(base)
		rng.Shuffle(len(perm), func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })
		got := Canonicalize(perm)
		require.Equal(t, want, got, "permutation %d", i)
	}
}

func TestCanonicalizeCollapsesRuns(t *testing.T) {
	in := []Save{{2}, {1}, {2}, {2}, {1}, {3}, {2}}
	got := Canonicalize(in)
	assert.Equal(t, []Save{{1}, {2}, {3}}, got)
}

func TestIsCanonical(t *testing.T) {
	assert.True(t, IsCanonical[Save](nil))
	assert.True(t, IsCanonical([]Save{{1}, {2}}))
	assert.False(t, IsCanonical([]Save{{1}, {1}}))
	assert.False(t, IsCanonical([]Copy{{2, 1}, {1, 5}}))
}
