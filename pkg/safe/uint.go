// Package safe provides helpers for checked integer arithmetic and conversions.
package safe

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrOverflow reports a value that does not fit the target type.
	ErrOverflow = errors.New("integer overflow")
	// ErrUnderflow reports a subtraction that would go below zero.
	ErrUnderflow = errors.New("integer underflow")
)

// Int64 converts an unsigned amount to int64, rejecting values above math.MaxInt64.
func Int64[T ~uint | ~uint32 | ~uint64](v T) (int64, error) {
	if uint64(v) > math.MaxInt64 {
		return 0, fmt.Errorf("value %d out of int64 range: %w", v, ErrOverflow)
	}
	return int64(v), nil
}

// Uint64 converts signed integers to uint64 while guarding against negatives.
func Uint64[T ~int | ~int32 | ~int64](v T) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("value %d out of uint64 range: %w", v, ErrOverflow)
	}
	return uint64(v), nil
}

// SubUint64 returns a-b and fails instead of wrapping when b > a.
func SubUint64(a, b uint64) (uint64, error) {
	if b > a {
		return 0, fmt.Errorf("%d - %d: %w", a, b, ErrUnderflow)
	}
	return a - b, nil
}
