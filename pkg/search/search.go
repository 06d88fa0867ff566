// Package search provides a binary search iterator over a monotone
// feasibility predicate.
//
// The widths and block counts computed by the grid all share one shape: a
// predicate that is infeasible below some threshold and feasible above it
// (or the reverse), where evaluating the predicate is the expensive part.
// The Iterator drives the search while the caller evaluates; the caller
// marks feasible points with Save, and the best saved point survives the
// search even when later probes fail.
//
//	it := search.NewRange(1, maxWidth+1)
//	for it.HasNext() {
//	    w := it.Next()
//	    if fits(w) {
//	        it.Save()
//	        it.Up()
//	    } else {
//	        it.Down()
//	    }
//	}
//	best, ok := it.LastSaved()
package search

// Iterator is a binary search over the integers. The zero value is not
// usable; construct with New or NewRange.
type Iterator struct {
	low     int
	high    int // exclusive, meaningful only when bounded
	bounded bool

	cur      int
	saved    int
	hasSaved bool
}

// New returns an open-ended iterator over [low, inf). Probes double away
// from low until the caller bounds the range with Down.
func New(low int) *Iterator {
	return &Iterator{low: low, cur: low}
}

// NewRange returns an iterator over the half-open range [low, high).
func NewRange(low, high int) *Iterator {
	it := &Iterator{low: low, high: high, bounded: true}
	it.step()
	return it
}

func (it *Iterator) step() {
	if it.bounded {
		it.cur = it.low + (it.high-it.low)/2
	}
}

// HasNext reports whether there is another candidate to probe.
// An open-ended iterator always has a next candidate.
func (it *Iterator) HasNext() bool {
	if it.bounded {
		return it.low < it.high
	}
	return true
}

// Next returns the current candidate. The caller decides feasibility and
// must then call Up or Down before the following Next.
func (it *Iterator) Next() int { return it.cur }

// Up moves the search above the current candidate.
func (it *Iterator) Up() {
	it.low = it.cur + 1
	if it.bounded {
		it.step()
		return
	}
	// open-ended: double away from the origin
	next := it.cur * 2
	if it.cur <= 0 {
		next = it.cur + 1
	}
	if next < it.low {
		next = it.low
	}
	it.cur = next
}

// Down moves the search below the current candidate, bounding an
// open-ended iterator in the process.
func (it *Iterator) Down() {
	it.high = it.cur
	it.bounded = true
	it.step()
}

// Save records the current candidate as the best known feasible point.
func (it *Iterator) Save() {
	it.saved = it.cur
	it.hasSaved = true
}

// LastSaved returns the most recently saved candidate. The second result
// is false when no candidate was ever saved, meaning the search found no
// feasible point.
func (it *Iterator) LastSaved() (int, bool) {
	return it.saved, it.hasSaved
}
