// Package safeconv converts between the int positions used by the pass and
// the unsigned positions used by wire protocols, clamping instead of
// wrapping.
package safeconv

import "math"

// MaxInt is the maximum value for int type (platform-dependent).
const MaxInt = int(^uint(0) >> 1)

// ClampToUint32 converts v to uint32. Negative values become 0 and values
// above math.MaxUint32 become math.MaxUint32.
func ClampToUint32(v int) uint32 {
	switch {
	case v < 0:
		return 0
	case uint64(v) > math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(v)
	}
}

// Uint32ToInt converts v to int, clamping at MaxInt on 32-bit platforms.
func Uint32ToInt(v uint32) int {
	if uint64(v) > uint64(MaxInt) {
		return MaxInt
	}

	return int(v)
}

// ZeroBased turns a 1-based line or column into a 0-based uint32, mapping
// anything below 1 to 0.
func ZeroBased(v int) uint32 {
	return ClampToUint32(v - 1)
}
