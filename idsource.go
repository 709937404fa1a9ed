package pacx

import (
	"fmt"
	"math/rand/v2"
)

// IDSource supplies the random identifiers written into archives.
// *rand.Rand from math/rand/v2 satisfies it.
type IDSource interface {
	Uint32() uint32
}

type globalRand struct{}

func (globalRand) Uint32() uint32 { return rand.Uint32() }

// maxIDAttempts bounds the search for a non-zero identifier.
const maxIDAttempts = 64

func nonZeroID(src IDSource) (uint32, error) {
	for range maxIDAttempts {
		if id := src.Uint32(); id != 0 {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: id source returned only zeros", ErrMalformedInput)
}
