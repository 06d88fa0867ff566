package grid

import (
	"github.com/halfpitch/laygrid/pkg/errors"
	"github.com/halfpitch/laygrid/pkg/halfint"
)

// RoundMode selects how CoordToNearestTrack resolves a coordinate that does
// not sit exactly on a track boundary, and which way an exact hit moves
// under the strict modes.
type RoundMode int

const (
	// RoundNearest picks the closest track, ties rounding up.
	RoundNearest RoundMode = iota
	// RoundFloor picks the nearest track at or below the coordinate.
	RoundFloor
	// RoundFloorStrict picks the nearest track strictly below.
	RoundFloorStrict
	// RoundCeil picks the nearest track at or above the coordinate.
	RoundCeil
	// RoundCeilStrict picks the nearest track strictly above.
	RoundCeilStrict
)

func floorDiv(a, b int) (q, r int) {
	q, r = a/b, a%b
	if r < 0 {
		q--
		r += b
	}
	return q, r
}

// CoordToTrack converts an exact coordinate to its track index. The
// coordinate must land precisely on a track center or on the midpoint
// between two tracks; anything else is an OFF_GRID error, never a silent
// round.
func (g *Grid) CoordToTrack(layerID, coord int) (halfint.HalfInt, error) {
	l := g.mustLayer(layerID)
	pitch := l.Pitch()
	q, r := floorDiv(coord-l.Offset, pitch)
	switch r {
	case 0:
		return halfint.FromInt(q), nil
	case pitch / 2:
		return halfint.Mid(q), nil
	default:
		return halfint.HalfInt{}, errors.New(errors.ErrCodeOffGrid,
			"coordinate %d is not on a track of layer %d", coord, layerID)
	}
}

// CoordToNearestTrack returns the track index nearest to the coordinate
// under the given rounding mode. With allowHalf the result may be a
// half-track index; otherwise rounding steps outward to a whole track in
// the requested direction. Every range and clamping computation in this
// package and in the fill engine goes through this single primitive so that
// boundary rounding is consistent everywhere.
func (g *Grid) CoordToNearestTrack(layerID, coord int, allowHalf bool, mode RoundMode) halfint.HalfInt {
	l := g.mustLayer(layerID)
	unit := l.Pitch()
	if allowHalf {
		unit /= 2
	}
	q, r := floorDiv(coord-l.Offset, unit)
	if r == 0 {
		switch mode {
		case RoundFloorStrict:
			q--
		case RoundCeilStrict:
			q++
		}
	} else {
		switch mode {
		case RoundCeil, RoundCeilStrict:
			q++
		case RoundNearest:
			if 2*r >= unit {
				q++
			}
		}
	}
	if allowHalf {
		return halfint.New(q)
	}
	return halfint.FromInt(q)
}

// TrackToCoord converts a track index back to its center coordinate.
// Exact inverse of CoordToTrack for all on-grid coordinates.
func (g *Grid) TrackToCoord(layerID int, idx halfint.HalfInt) int {
	l := g.mustLayer(layerID)
	return l.Pitch()/2*idx.Dbl() + l.Offset
}

// WireBounds returns the perpendicular extent [lower, upper) of a wire
// centered on the track, width tracks wide. Widths and spacings are even,
// so the extent endpoints are exact integers for whole and half tracks
// alike.
func (g *Grid) WireBounds(layerID int, idx halfint.HalfInt, width int) (lower, upper int) {
	l := g.mustLayer(layerID)
	center := g.TrackToCoord(layerID, idx)
	half := l.WireWidth(width) / 2
	return center - half, center + half
}

// IntervalToTrack converts a wire's perpendicular extent to its center
// track and width in tracks. The extent must be centered on a track or
// half track and its width must be grid-quantized.
func (g *Grid) IntervalToTrack(layerID, lower, upper int) (halfint.HalfInt, int, error) {
	l := g.mustLayer(layerID)
	idx, err := g.CoordToTrack(layerID, (lower+upper)/2)
	if err != nil {
		return halfint.HalfInt{}, 0, err
	}
	q, r := floorDiv(upper-lower-l.Width, l.Pitch())
	if r != 0 {
		return halfint.HalfInt{}, 0, errors.New(errors.ErrCodeOffGrid,
			"interval [%d, %d) width not quantized on layer %d", lower, upper, layerID)
	}
	return idx, q + 1, nil
}

// FindNextTrack returns the nearest track whose wire edges both lie on the
// requested side of the coordinate: at or above for RoundCeil modes, at or
// below for RoundFloor modes.
func (g *Grid) FindNextTrack(layerID, coord, trWidth int, allowHalf bool, mode RoundMode) halfint.HalfInt {
	half := g.mustLayer(layerID).WireWidth(trWidth) / 2
	switch mode {
	case RoundFloor, RoundFloorStrict:
		return g.CoordToNearestTrack(layerID, coord-half, allowHalf, mode)
	default:
		return g.CoordToNearestTrack(layerID, coord+half, allowHalf, mode)
	}
}

// MiddleTrack returns the half-track index midway between two indices,
// rounding down (or up when roundUp is set) when the midpoint falls
// between half tracks.
func (g *Grid) MiddleTrack(a, b halfint.HalfInt, roundUp bool) halfint.HalfInt {
	return halfint.Middle(a, b, roundUp)
}
