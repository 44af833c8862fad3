package bitslow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func everyValidTriple() []Triple {
	var triples []Triple
	for b1 := BitMin; b1 <= BitMax; b1++ {
		for b2 := BitMin; b2 <= BitMax; b2++ {
			for b3 := BitMin; b3 <= BitMax; b3++ {
				t := Triple{Bit1: b1, Bit2: b2, Bit3: b3}
				if t.Valid() {
					triples = append(triples, t)
				}
			}
		}
	}
	return triples
}

func TestComputeHash_IsDeterministic(t *testing.T) {
	first := ComputeHash(3, 7, 10)
	second := ComputeHash(3, 7, 10)

	assert.Equal(t, first, second)
	assert.Len(t, first, 32)
}

func TestComputeHash_DistinguishesComponentOrder(t *testing.T) {
	assert.NotEqual(t, ComputeHash(1, 2, 3), ComputeHash(3, 2, 1))
}

func TestTriple_Valid(t *testing.T) {
	cases := []struct {
		name   string
		triple Triple
		want   bool
	}{
		{"distinct in range", Triple{Bit1: 1, Bit2: 5, Bit3: 10}, true},
		{"below range", Triple{Bit1: 0, Bit2: 5, Bit3: 10}, false},
		{"above range", Triple{Bit1: 1, Bit2: 5, Bit3: 11}, false},
		{"first two equal", Triple{Bit1: 4, Bit2: 4, Bit3: 10}, false},
		{"first and last equal", Triple{Bit1: 4, Bit2: 5, Bit3: 4}, false},
		{"last two equal", Triple{Bit1: 4, Bit2: 5, Bit3: 5}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.triple.Valid())
		})
	}
}

func TestTripleSpace_CountsOrderedDistinctTriples(t *testing.T) {
	assert.Len(t, everyValidTriple(), TripleSpace)
}

func TestPickUnusedTriple_NeverReturnsUsedTriple(t *testing.T) {
	// Arrange: mark most of the space used, leave a handful free.
	used := make(map[string]struct{})
	free := make(map[string]struct{})
	for i, triple := range everyValidTriple() {
		if i < TripleSpace-5 {
			used[triple.Key()] = struct{}{}
		} else {
			free[triple.Key()] = struct{}{}
		}
	}

	for i := 0; i < 100; i++ {
		// Act
		triple, err := PickUnusedTriple(used)

		// Assert
		require.NoError(t, err)
		assert.True(t, triple.Valid())
		assert.NotContains(t, used, triple.Key())
		assert.Contains(t, free, triple.Key())
	}
}

func TestPickUnusedTriple_FindsTheSingleRemainingTriple(t *testing.T) {
	// Arrange
	remaining := Triple{Bit1: 2, Bit2: 9, Bit3: 4}
	used := make(map[string]struct{})
	for _, triple := range everyValidTriple() {
		if triple != remaining {
			used[triple.Key()] = struct{}{}
		}
	}

	// Act
	triple, err := PickUnusedTriple(used)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, remaining, triple)
}

func TestPickUnusedTriple_ReportsExhaustionOnlyWhenSpaceIsFull(t *testing.T) {
	// Arrange
	used := make(map[string]struct{})
	for _, triple := range everyValidTriple() {
		used[triple.Key()] = struct{}{}
	}

	// Act
	_, err := PickUnusedTriple(used)

	// Assert
	assert.ErrorIs(t, err, ErrSpaceExhausted)
}

func TestPickUnusedTriple_WorksOnEmptyLedger(t *testing.T) {
	triple, err := PickUnusedTriple(map[string]struct{}{})

	require.NoError(t, err)
	assert.True(t, triple.Valid())
}
