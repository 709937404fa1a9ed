// Package sizing provides overflow-checked conversions into the fixed-width
// fields of the archive format.
package sizing

import (
	"fmt"
	"math"

	"github.com/meigma/pacx/internal/pactype"
)

// U32 converts a non-negative length to uint32, failing with
// pactype.ErrSizeOverflow when it does not fit.
func U32[T int | int64 | uint64](n T, what string) (uint32, error) {
	if n < 0 || uint64(n) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %s %d exceeds 32 bits", pactype.ErrSizeOverflow, what, n)
	}
	return uint32(n), nil //nolint:gosec // checked above
}

// ToInt converts a wire length to int, failing with pactype.ErrCorrupt when
// it cannot be addressed on this platform.
func ToInt(n uint64) (int, error) {
	if n > uint64(math.MaxInt) {
		return 0, fmt.Errorf("%w: length %d not addressable", pactype.ErrCorrupt, n)
	}
	return int(n), nil
}

// AddUint64 adds two uint64 values, returning (result, false) on overflow.
func AddUint64(a, b uint64) (uint64, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}
