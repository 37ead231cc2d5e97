package random

import (
	"crypto/rand"
	"math/big"
)

const letters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const seedChars = "0123456789abcdefghijklmnopqrstuvwxyz"

// Code produces a short unambiguous room code.
func Code(length int) string {
	return pickFromSet(letters, length)
}

// Seed produces a fresh game seed. Unlike the engine's own shuffler this is
// crypto-random; determinism only matters once the seed is fixed.
func Seed(length int) string {
	return pickFromSet(seedChars, length)
}

func pickFromSet(set string, length int) string {
	if length <= 0 {
		return ""
	}
	max := big.NewInt(int64(len(set)))
	runes := make([]byte, length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			runes[i] = set[0]
			continue
		}
		runes[i] = set[n.Int64()]
	}
	return string(runes)
}
