// Package safe provides saturating numeric conversions for daemon
// values persisted into fixed-width database columns.
package safe

import "math"

// Int32 narrows v to int32, clamping at the type bounds. Daemon fields
// such as block weight and confirmation counts are unbounded on the
// wire but stored as INT; clamping matches how oversized values are
// displayed rather than failing the block.
func Int32[T ~int | ~int32 | ~int64 | ~uint32 | ~uint64](v T) int32 {
	switch value := any(v).(type) {
	case int:
		if value > math.MaxInt32 {
			return math.MaxInt32
		}
		if value < math.MinInt32 {
			return math.MinInt32
		}
	case int64:
		if value > math.MaxInt32 {
			return math.MaxInt32
		}
		if value < math.MinInt32 {
			return math.MinInt32
		}
	case uint32:
		if value > math.MaxInt32 {
			return math.MaxInt32
		}
	case uint64:
		if value > math.MaxInt32 {
			return math.MaxInt32
		}
	}
	return int32(v)
}

// Int64 narrows an unsigned value to int64, clamping at MaxInt64.
// Monero encodes unlock times and output indices as uint64; values
// past the int64 range are sentinels, not real heights.
func Int64[T ~uint | ~uint64](v T) int64 {
	if uint64(v) > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
