package grid

import (
	"github.com/halfpitch/laygrid/pkg/halfint"
)

// trackCenter returns the center coordinate of the half-track with doubled
// index n.
func (g *Grid) trackCenter(layerID, n int) int {
	l := g.mustLayer(layerID)
	return l.Pitch()/2*n + l.Offset
}

// TrackIndexRange returns the first and last track strictly inside
// [lower+edgeMargin, upper-edgeMargin], additionally reserving numSpace
// tracks between the result and the tracks just outside [lower, upper].
// The third result is false when the window cannot fit a single track.
func (g *Grid) TrackIndexRange(layerID, lower, upper int, numSpace halfint.HalfInt, edgeMargin int, allowHalf bool) (lo, hi halfint.HalfInt, ok bool) {
	wh := g.mustLayer(layerID).Width / 2

	lowerBnd := g.CoordToNearestTrack(layerID, lower, true, RoundFloor)
	start := g.CoordToNearestTrack(layerID, lower+edgeMargin, true, RoundCeilStrict)
	n0 := halfint.Max(start, lowerBnd.Add(numSpace)).Dbl()
	if g.trackCenter(layerID, n0)-wh < lower+edgeMargin {
		n0++
	}
	if !allowHalf && n0&1 != 0 {
		n0++
	}

	upperBnd := g.CoordToNearestTrack(layerID, upper, true, RoundCeil)
	end := g.CoordToNearestTrack(layerID, upper-edgeMargin, true, RoundFloorStrict)
	n1 := halfint.Min(end, upperBnd.Sub(numSpace)).Dbl()
	if g.trackCenter(layerID, n1)+wh > upper-edgeMargin {
		n1--
	}
	if !allowHalf && n1&1 != 0 {
		n1--
	}

	if n1 < n0 {
		return halfint.HalfInt{}, halfint.HalfInt{}, false
	}
	return halfint.New(n0), halfint.New(n1), true
}

// OverlapTracks returns the first and last track whose single-track wire
// footprint intersects the coordinate range [lower, upper). The third
// result is false when no track overlaps.
func (g *Grid) OverlapTracks(layerID, lower, upper int, allowHalf bool) (lo, hi halfint.HalfInt, ok bool) {
	wh := g.mustLayer(layerID).Width / 2

	n0 := g.CoordToNearestTrack(layerID, lower, true, RoundFloor).Dbl()
	if g.trackCenter(layerID, n0)+wh < lower {
		n0++
	}
	if !allowHalf && n0&1 != 0 {
		n0++
	}

	n1 := g.CoordToNearestTrack(layerID, upper, true, RoundCeil).Dbl()
	if g.trackCenter(layerID, n1)-wh > upper {
		n1--
	}
	if !allowHalf && n1&1 != 0 {
		n1--
	}

	if n1 < n0 {
		return halfint.HalfInt{}, halfint.HalfInt{}, false
	}
	return halfint.New(n0), halfint.New(n1), true
}

// NumSpaceTracks returns how many tracks must be left empty next to a wire
// widthNtr tracks wide so the technology spacing rule holds. Spacing grows
// with width, so wide wires reserve neighbor tracks. With allowHalf the
// answer may be a half track; otherwise it rounds up to a whole track.
func (g *Grid) NumSpaceTracks(layerID, widthNtr int, allowHalf bool) halfint.HalfInt {
	l := g.mustLayer(layerID)
	spMin := g.tech.MinSpace(layerID, l.WireWidth(widthNtr))
	halfPitch := l.Pitch() / 2
	need := spMin - l.Space
	if need <= 0 {
		return halfint.FromInt(0)
	}
	nhp := (need + halfPitch - 1) / halfPitch
	if nhp&1 == 0 {
		return halfint.FromInt(nhp / 2)
	}
	if allowHalf {
		return halfint.New(nhp)
	}
	return halfint.FromInt((nhp + 1) / 2)
}

// EvenlySpacedTracks places numTracks wires of the given width evenly
// across totSpace tracks and returns their center indices, which may be
// half tracks. With halfEndSpace the end gaps are half the inner gaps,
// which is correct for arrayed blocks or isolated track groups.
func EvenlySpacedTracks(numTracks, totSpace, trackWidth int, halfEndSpace bool) []halfint.HalfInt {
	var scale, offset, den int
	totHtr := 2 * totSpace
	if halfEndSpace {
		// half index = round((2k+1)*N / (2m)) = floor(((2k+1)*N + m) / (2m))
		scale = 2 * totHtr
		offset = totHtr + numTracks
		den = 2 * numTracks
	} else {
		wHtr := 2*trackWidth - 2
		scale = 2 * (totHtr + wHtr)
		offset = 2*totHtr - wHtr*(numTracks-1) + numTracks + 1
		den = 2 * (numTracks + 1)
	}
	out := make([]halfint.HalfInt, numTracks)
	for k := range out {
		hidx := (scale*k + offset) / den
		out[k] = halfint.New(hidx - 1)
	}
	return out
}
