// Package halfint implements exact half-integer arithmetic for track indices.
//
// Routing track indices are counted at half-track pitch: even values are
// physical track centers and odd values are midpoints between two adjacent
// tracks. Keeping the doubled numerator as an integer makes every index
// computation exact; no floating point is involved anywhere, so two indices
// derived through different paths always compare equal when they denote the
// same physical position.
package halfint

import (
	"fmt"
	"strconv"
)

// HalfInt is an exact half-integer represented by its doubled value.
// HalfInt{N: 4} is track 2; HalfInt{N: 5} is the midpoint between tracks
// 2 and 3. The zero value is track 0.
type HalfInt struct {
	N int // doubled value (numerator over 2)
}

// New returns the half-integer with the given doubled value.
func New(doubled int) HalfInt { return HalfInt{N: doubled} }

// FromInt returns the half-integer equal to the whole track index n.
func FromInt(n int) HalfInt { return HalfInt{N: 2 * n} }

// Mid returns the midpoint between whole track indices n and n+1.
func Mid(n int) HalfInt { return HalfInt{N: 2*n + 1} }

// Dbl returns the doubled value.
func (h HalfInt) Dbl() int { return h.N }

// IsHalf reports whether h lies between two whole tracks.
func (h HalfInt) IsHalf() bool { return h.N&1 != 0 }

// Int returns the whole track index and panics if h is a half track.
// Use Floor or Ceil when the index may be fractional.
func (h HalfInt) Int() int {
	if h.IsHalf() {
		panic(fmt.Sprintf("halfint: %s is not a whole track", h))
	}
	return h.N >> 1
}

// Floor returns the largest whole track index not greater than h.
func (h HalfInt) Floor() int {
	if h.N >= 0 {
		return h.N / 2
	}
	return (h.N - 1) / 2
}

// Ceil returns the smallest whole track index not less than h.
func (h HalfInt) Ceil() int {
	if h.N >= 0 {
		return (h.N + 1) / 2
	}
	return h.N / 2
}

// Add returns h + o.
func (h HalfInt) Add(o HalfInt) HalfInt { return HalfInt{N: h.N + o.N} }

// Sub returns h - o.
func (h HalfInt) Sub(o HalfInt) HalfInt { return HalfInt{N: h.N - o.N} }

// Neg returns -h.
func (h HalfInt) Neg() HalfInt { return HalfInt{N: -h.N} }

// AddInt returns h shifted by n whole tracks.
func (h HalfInt) AddInt(n int) HalfInt { return HalfInt{N: h.N + 2*n} }

// AddHalf returns h shifted by n half tracks.
func (h HalfInt) AddHalf(n int) HalfInt { return HalfInt{N: h.N + n} }

// MulInt returns h scaled by the integer factor n.
func (h HalfInt) MulInt(n int) HalfInt { return HalfInt{N: h.N * n} }

// Cmp returns -1, 0 or +1 as h is less than, equal to, or greater than o.
func (h HalfInt) Cmp(o HalfInt) int {
	switch {
	case h.N < o.N:
		return -1
	case h.N > o.N:
		return 1
	default:
		return 0
	}
}

// Less reports whether h < o.
func (h HalfInt) Less(o HalfInt) bool { return h.N < o.N }

// Min returns the smaller of h and o.
func Min(h, o HalfInt) HalfInt {
	if o.N < h.N {
		return o
	}
	return h
}

// Max returns the larger of h and o.
func Max(h, o HalfInt) HalfInt {
	if o.N > h.N {
		return o
	}
	return h
}

// Middle returns the midpoint of a and b, rounded down to the nearest half
// track. With roundUp set, ties round toward the larger index instead.
func Middle(a, b HalfInt, roundUp bool) HalfInt {
	sum := a.N + b.N
	if sum%2 == 0 {
		return HalfInt{N: sum / 2}
	}
	if roundUp {
		return HalfInt{N: (sum + 1) / 2}
	}
	return HalfInt{N: (sum - 1) / 2}
}

// String renders h as "3", "3.5" or "-1.5".
func (h HalfInt) String() string {
	if !h.IsHalf() {
		return strconv.Itoa(h.N / 2)
	}
	n := h.N
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.Itoa(n/2) + ".5"
	if neg {
		s = "-" + s
	}
	return s
}
