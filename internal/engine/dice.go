// Package engine provides the seeded random source shared by a single combat.
package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Dice is a seeded random source. It is not safe for concurrent use; each
// combat owns its own Dice so runs stay reproducible.
type Dice struct {
	seed int64
	rng  *rand.Rand
}

// NewDice creates a Dice for the given seed. A zero seed draws a fresh one
// from crypto/rand.
func NewDice(seed int64) (*Dice, error) {
	if seed == 0 {
		s, err := NewSeed()
		if err != nil {
			return nil, err
		}
		seed = s
	}
	return &Dice{seed: seed, rng: rand.New(rand.NewSource(seed))}, nil
}

// MustDice is NewDice for callers with a non-zero seed.
func MustDice(seed int64) *Dice {
	d, err := NewDice(seed)
	if err != nil {
		panic(err)
	}
	return d
}

// Seed returns the seed the Dice was created with.
func (d *Dice) Seed() int64 { return d.seed }

// Intn returns a value in [0, n).
func (d *Dice) Intn(n int) int { return d.rng.Intn(n) }

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	seed := int64(binary.LittleEndian.Uint64(b[:]))
	if seed == 0 {
		seed = 1
	}
	return seed, nil
}

// Source is the subset of a random generator the combat rules draw from.
type Source interface {
	Intn(n int) int
}

// Between draws uniformly from [lo, hi] inclusive. Swapped bounds are
// reordered.
func Between(src Source, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + src.Intn(hi-lo+1)
}

// RollDie rolls a die with the provided number of sides.
func RollDie(src Source, sides int) int {
	return src.Intn(sides) + 1
}
