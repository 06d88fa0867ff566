// Package interval implements an ordered set of disjoint half-open integer
// intervals, each carrying an associated value.
//
// The set is the primitive beneath track occupancy bookkeeping: wire
// footprints are intervals perpendicular to the track direction, inserting an
// overlapping footprint merges it with what is already there, and carving out
// a blocked region splits the surrounding entries. Entries are kept sorted in
// a slice and located by binary search, so all operations are O(log n) plus
// the size of the affected range.
package interval

import (
	"fmt"
	"sort"

	"github.com/halfpitch/laygrid/pkg/errors"
)

// Interval is a half-open integer range [Lo, Hi).
type Interval struct {
	Lo int
	Hi int
}

// Len returns the length of the interval.
func (iv Interval) Len() int { return iv.Hi - iv.Lo }

// Empty reports whether the interval contains no points.
func (iv Interval) Empty() bool { return iv.Hi <= iv.Lo }

// Overlaps reports whether iv and o share at least one point.
func (iv Interval) Overlaps(o Interval) bool { return iv.Lo < o.Hi && o.Lo < iv.Hi }

// Contains reports whether o lies entirely inside iv.
func (iv Interval) Contains(o Interval) bool { return iv.Lo <= o.Lo && o.Hi <= iv.Hi }

// Intersect returns the common part of iv and o, which may be empty.
func (iv Interval) Intersect(o Interval) Interval {
	lo, hi := iv.Lo, iv.Hi
	if o.Lo > lo {
		lo = o.Lo
	}
	if o.Hi < hi {
		hi = o.Hi
	}
	return Interval{Lo: lo, Hi: hi}
}

// Transform maps the interval through x -> scale*x + shift.
// Scale must be +1 or -1; mirroring swaps and negates the endpoints so the
// result is again a valid half-open range.
func (iv Interval) Transform(scale, shift int) Interval {
	if scale < 0 {
		return Interval{Lo: shift - iv.Hi, Hi: shift - iv.Lo}
	}
	return Interval{Lo: iv.Lo + shift, Hi: iv.Hi + shift}
}

func (iv Interval) String() string { return fmt.Sprintf("[%d, %d)", iv.Lo, iv.Hi) }

// Entry is an interval together with its stored value.
type Entry[V any] struct {
	Interval
	Val V
}

// Set is an ordered collection of disjoint intervals with values.
// The zero value is an empty set ready for use. Set is not safe for
// concurrent use.
type Set[V any] struct {
	entries []Entry[V] // sorted by Lo, pairwise disjoint
}

// Len returns the number of disjoint intervals in the set.
func (s *Set[V]) Len() int { return len(s.entries) }

// Empty reports whether the set contains no intervals.
func (s *Set[V]) Empty() bool { return len(s.entries) == 0 }

// search returns the index of the first entry with Hi > x.
// All entries before it lie entirely to the left of x.
func (s *Set[V]) search(x int) int {
	return sort.Search(len(s.entries), func(i int) bool { return s.entries[i].Hi > x })
}

// Add inserts iv with the given value.
//
// With merge set, any entries overlapping iv are coalesced into a single
// entry spanning their union, and the merged entry takes the value supplied
// here (last write wins). With abut also set, entries that merely touch an
// endpoint of iv coalesce as well. Without merge, an overlap is rejected
// with an INVALID_INPUT error, the set is left unchanged and abut has no
// effect.
func (s *Set[V]) Add(iv Interval, val V, merge, abut bool) error {
	if iv.Empty() {
		return errors.New(errors.ErrCodeInvalidInput, "empty interval %v", iv)
	}
	abut = abut && merge
	startBnd := iv.Lo
	if abut {
		startBnd--
	}
	start := s.search(startBnd)
	end := start
	lo, hi := iv.Lo, iv.Hi
	for end < len(s.entries) && (s.entries[end].Lo < iv.Hi || (abut && s.entries[end].Lo == iv.Hi)) {
		if !merge {
			return errors.New(errors.ErrCodeInvalidInput,
				"interval %v overlaps existing %v", iv, s.entries[end].Interval)
		}
		if s.entries[end].Lo < lo {
			lo = s.entries[end].Lo
		}
		if s.entries[end].Hi > hi {
			hi = s.entries[end].Hi
		}
		end++
	}
	merged := Entry[V]{Interval: Interval{Lo: lo, Hi: hi}, Val: val}
	s.entries = append(s.entries[:start], append([]Entry[V]{merged}, s.entries[end:]...)...)
	return nil
}

// Remove deletes the entry exactly matching iv.
// It reports whether such an entry existed.
func (s *Set[V]) Remove(iv Interval) bool {
	i := s.search(iv.Lo)
	if i < len(s.entries) && s.entries[i].Interval == iv {
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
		return true
	}
	return false
}

// Subtract removes iv from every overlapping entry, splitting entries that
// extend past either end. It returns the fragments that survive from the
// affected entries, in order, so callers can apply minimum-length filtering.
func (s *Set[V]) Subtract(iv Interval) []Interval {
	if iv.Empty() {
		return nil
	}
	start := s.search(iv.Lo)
	end := start
	var fragments []Entry[V]
	for end < len(s.entries) && s.entries[end].Lo < iv.Hi {
		e := s.entries[end]
		if e.Lo < iv.Lo {
			fragments = append(fragments, Entry[V]{Interval: Interval{Lo: e.Lo, Hi: iv.Lo}, Val: e.Val})
		}
		if e.Hi > iv.Hi {
			fragments = append(fragments, Entry[V]{Interval: Interval{Lo: iv.Hi, Hi: e.Hi}, Val: e.Val})
		}
		end++
	}
	if start == end {
		return nil
	}
	s.entries = append(s.entries[:start], append(fragments, s.entries[end:]...)...)
	out := make([]Interval, len(fragments))
	for i, f := range fragments {
		out[i] = f.Interval
	}
	return out
}

// Overlaps reports whether any entry shares a point with iv.
func (s *Set[V]) Overlaps(iv Interval) bool {
	i := s.search(iv.Lo)
	return i < len(s.entries) && s.entries[i].Lo < iv.Hi
}

// Get returns the entry containing the point x, if any.
func (s *Set[V]) Get(x int) (Entry[V], bool) {
	i := s.search(x)
	if i < len(s.entries) && s.entries[i].Lo <= x {
		return s.entries[i], true
	}
	return Entry[V]{}, false
}

// Entries returns a copy of all entries in ascending order.
func (s *Set[V]) Entries() []Entry[V] {
	out := make([]Entry[V], len(s.entries))
	copy(out, s.entries)
	return out
}

// Intervals returns a copy of all intervals in ascending order.
func (s *Set[V]) Intervals() []Interval {
	out := make([]Interval, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Interval
	}
	return out
}

// Transform returns a new set with every interval mapped through
// x -> scale*x + shift. Values are carried over unchanged. Scale must be
// +1 or -1; mirroring reverses the entry order to keep the set sorted.
func (s *Set[V]) Transform(scale, shift int) *Set[V] {
	out := &Set[V]{entries: make([]Entry[V], len(s.entries))}
	if scale < 0 {
		for i, e := range s.entries {
			out.entries[len(s.entries)-1-i] = Entry[V]{
				Interval: e.Interval.Transform(scale, shift),
				Val:      e.Val,
			}
		}
	} else {
		for i, e := range s.entries {
			out.entries[i] = Entry[V]{
				Interval: e.Interval.Transform(scale, shift),
				Val:      e.Val,
			}
		}
	}
	return out
}

// Copy returns an independent copy of the set. Values are copied by
// assignment; pointer-typed values remain shared.
func (s *Set[V]) Copy() *Set[V] {
	return &Set[V]{entries: s.Entries()}
}
