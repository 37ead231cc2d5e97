package engine

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Rand is the deterministic shuffler behind every random decision the engine
// makes. Two Rands built from the same seed produce identical streams as long
// as the call sequence is identical, which is what makes seeded games
// replayable.
type Rand struct {
	rng *rand.Rand
}

// NewRand derives a Rand from an arbitrary seed string by hashing it down to
// a 64-bit source seed.
func NewRand(seed string) *Rand {
	sum := sha256.Sum256([]byte(seed))
	return &Rand{rng: rand.New(rand.NewSource(int64(binary.BigEndian.Uint64(sum[:8]))))}
}

// Shuffle returns a permuted copy of cards. The input is left untouched.
func (r *Rand) Shuffle(cards []Card) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	r.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// ShuffleStrings returns a permuted copy of values. The input is left untouched.
func (r *Rand) ShuffleStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	r.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// IntN returns a deterministic integer in [min, max].
func (r *Rand) IntN(min, max int) int {
	if max <= min {
		return min
	}
	return min + r.rng.Intn(max-min+1)
}

// String returns n deterministic characters from the card id alphabet.
func (r *Rand) String(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = idAlphabet[r.rng.Intn(len(idAlphabet))]
	}
	return string(buf)
}
