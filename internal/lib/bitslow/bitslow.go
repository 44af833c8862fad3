package bitslow

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand"
)

const (
	BitMin = 1
	BitMax = 10

	// TripleSpace is the number of ordered triples of distinct
	// components in [BitMin, BitMax]: 10 * 9 * 8.
	TripleSpace = 720
)

var ErrSpaceExhausted = errors.New("no unused bit combinations remain")

// Triple is the 3-component identity seed of a coin.
type Triple struct {
	Bit1 int `json:"bit1"`
	Bit2 int `json:"bit2"`
	Bit3 int `json:"bit3"`
}

// Key renders the triple as the canonical "b1-b2-b3" form used to
// deduplicate against already minted coins.
func (t Triple) Key() string {
	return fmt.Sprintf("%d-%d-%d", t.Bit1, t.Bit2, t.Bit3)
}

// Valid reports whether every component is in range and the three
// components are pairwise distinct.
func (t Triple) Valid() bool {
	for _, b := range []int{t.Bit1, t.Bit2, t.Bit3} {
		if b < BitMin || b > BitMax {
			return false
		}
	}
	return t.Bit1 != t.Bit2 && t.Bit2 != t.Bit3 && t.Bit1 != t.Bit3
}

// ComputeHash derives the display hash of a coin from its bit triple.
// It is a pure function: the same triple always renders the same
// string, across calls and across restarts.
func ComputeHash(bit1, bit2, bit3 int) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%d-%d-%d", bit1, bit2, bit3)))
	return hex.EncodeToString(sum[:])
}

// PickUnusedTriple draws random triples of distinct components until one
// not present in used is found. After TripleSpace rejected draws it
// stops sampling and sweeps the combination space directly, so
// ErrSpaceExhausted is returned only when every triple is taken.
func PickUnusedTriple(used map[string]struct{}) (Triple, error) {
	if len(used) >= TripleSpace {
		return Triple{}, ErrSpaceExhausted
	}

	for attempts := 0; attempts < TripleSpace; attempts++ {
		t := randomTriple()
		if _, taken := used[t.Key()]; !taken {
			return t, nil
		}
	}

	// Sampling got unlucky; the space is sparse but not empty.
	var free []Triple
	for b1 := BitMin; b1 <= BitMax; b1++ {
		for b2 := BitMin; b2 <= BitMax; b2++ {
			for b3 := BitMin; b3 <= BitMax; b3++ {
				t := Triple{Bit1: b1, Bit2: b2, Bit3: b3}
				if !t.Valid() {
					continue
				}
				if _, taken := used[t.Key()]; !taken {
					free = append(free, t)
				}
			}
		}
	}
	if len(free) == 0 {
		return Triple{}, ErrSpaceExhausted
	}

	return free[rand.Intn(len(free))], nil
}

func randomTriple() Triple {
	values := make(map[int]struct{}, 3)
	picked := make([]int, 0, 3)
	for len(picked) < 3 {
		v := rand.Intn(BitMax-BitMin+1) + BitMin
		if _, ok := values[v]; ok {
			continue
		}
		values[v] = struct{}{}
		picked = append(picked, v)
	}
	return Triple{Bit1: picked[0], Bit2: picked[1], Bit3: picked[2]}
}
