package fill

import (
	"github.com/halfpitch/laygrid/pkg/errors"
	"github.com/halfpitch/laygrid/pkg/grid"
	"github.com/halfpitch/laygrid/pkg/halfint"
	"github.com/halfpitch/laygrid/pkg/interval"
)

// BBox is the axis-aligned fill region, in layout units.
type BBox struct {
	Left   int
	Bottom int
	Right  int
	Top    int
}

// Width returns the horizontal extent.
func (b BBox) Width() int { return b.Right - b.Left }

// Height returns the vertical extent.
func (b BBox) Height() int { return b.Top - b.Bottom }

// AvailableTracks returns the candidate track indices still usable for
// width-wide wires spanning exactly [lower, upper], given the layer's
// occupancy. A candidate survives only if no occupied wire, expanded by the
// larger of the caller margin, the stored margin and the technology minimum
// space at the wire's drawn width, touches any part of its span.
func AvailableTracks(g *grid.Grid, layerID int, candidates []halfint.HalfInt,
	lower, upper, width, margin int, ts *TrackSet) ([]halfint.HalfInt, error) {

	if _, err := g.Layer(layerID); err != nil {
		return nil, err
	}

	// min length equal to the full span: any subtraction kills the track
	avail := NewTrackSet(upper - lower)
	span := interval.Interval{Lo: lower, Hi: upper}
	for _, idx := range candidates {
		avail.AddTrack(idx.Dbl(), span, width, 0, SupplyNone)
	}

	for _, n := range ts.Keys() {
		for _, e := range ts.Get(n).Entries() {
			cbeg, cend := g.WireBounds(layerID, halfint.HalfInt{N: n}, e.Val.Width)
			fm := max(margin, e.Val.Margin, g.Tech().MinSpace(layerID, cend-cbeg))

			subIv := interval.Interval{Lo: e.Lo - fm, Hi: e.Hi + fm}
			idx0, idx1, ok := g.OverlapTracks(layerID, cbeg-fm, cend+fm, true)
			if !ok {
				continue
			}
			// widen by the candidate wire width, since a candidate occupies
			// width-1 extra tracks on each side of its center
			n0 := idx0.Dbl() - 2*(width-1)
			n1 := idx1.Dbl() + 2*(width-1)
			for sub := n0; sub <= n1; sub++ {
				avail.Subtract(sub, subIv)
			}
		}
	}

	keys := avail.Keys()
	out := make([]halfint.HalfInt, len(keys))
	for i, n := range keys {
		out[i] = halfint.HalfInt{N: n}
	}
	return out, nil
}

// PowerFillTracks fills the unused tracks of a layer inside the bounding
// box with supply wires of supWidth tracks, split between VDD and VSS.
//
// Candidate tracks are laid out at a uniform pitch of supWidth plus the
// spacing (the minimum legal spacing unless supSpacing overrides it), then
// every occupied wire expanded by its fill margin is subtracted. Tracks
// overlapping a supply wire inherit its type, and so does the nearest
// surviving candidate on each side. The remaining unassigned tracks are
// split so the totals stay balanced, the minority type spread uniformly.
func PowerFillTracks(g *grid.Grid, box BBox, layerID int, ts *TrackSet,
	supWidth, fillMargin, edgeMargin, supSpacing int) (vdd, vss []WireArray, err error) {

	l, err := g.Layer(layerID)
	if err != nil {
		return nil, nil, err
	}
	lower := edgeMargin
	var upper, cupper int
	if l.Dir == grid.DirX {
		upper = box.Width() - edgeMargin
		cupper = box.Height()
	} else {
		upper = box.Height() - edgeMargin
		cupper = box.Width()
	}

	numSpace := g.NumSpaceTracks(layerID, supWidth, false).Int()
	if supSpacing >= 0 {
		if supSpacing < numSpace {
			return nil, nil, errors.New(errors.ErrCodeInvalidSpacing,
				"power fill spacing %d less than min spacing %d", supSpacing, numSpace)
		}
		numSpace = supSpacing
	}

	start, end, ok := g.TrackIndexRange(layerID, 0, cupper, halfint.FromInt(numSpace), edgeMargin, false)
	if !ok {
		return nil, nil, errors.New(errors.ErrCodeInfeasible,
			"no fill tracks fit on layer %d within %v", layerID, box)
	}

	firstN := start.Dbl() + (supWidth - 1)
	lastN := end.Dbl() - (supWidth - 1)
	step := 2 * (supWidth + numSpace)

	minLength := g.MinLength(layerID, supWidth)
	fillTS := NewTrackSet(minLength)
	span := interval.Interval{Lo: lower, Hi: upper}
	maxFillN := firstN
	for n := firstN; n <= lastN; n += step {
		fillTS.AddTrack(n, span, supWidth, 0, SupplyNone)
		maxFillN = n
	}
	if fillTS.Len() == 0 {
		return nil, nil, errors.New(errors.ErrCodeInfeasible,
			"no fill tracks fit on layer %d within %v", layerID, box)
	}

	// subtract occupied wires and propagate supply types
	supType := make(map[int]Supply)
	for _, n := range ts.Keys() {
		for _, e := range ts.Get(n).Entries() {
			fm := max(fillMargin, e.Val.Margin)
			subIv := interval.Interval{Lo: e.Lo - fm, Hi: e.Hi + fm}
			cbeg, cend := g.WireBounds(layerID, halfint.HalfInt{N: n}, e.Val.Width)
			idx0, idx1, ok := g.OverlapTracks(layerID, cbeg-fm, cend+fm, true)
			if !ok {
				continue
			}
			n0 := idx0.Dbl() - 2*(supWidth-1)
			n1 := idx1.Dbl() + 2*(supWidth-1)
			for sub := n0; sub <= n1; sub++ {
				fillTS.Subtract(sub, subIv)
				if _, seen := supType[sub]; !seen && e.Val.Supply != SupplyNone {
					supType[sub] = e.Val.Supply
				}
			}
			if e.Val.Supply == SupplyNone {
				continue
			}
			// nearest surviving candidate on each side inherits the type
			for sub := n0 - 1; sub >= 0; sub-- {
				if fillTS.Has(sub) {
					if _, seen := supType[sub]; !seen {
						supType[sub] = e.Val.Supply
					}
					break
				}
			}
			for sub := n1 + 1; sub <= maxFillN; sub++ {
				if fillTS.Has(sub) {
					if _, seen := supType[sub]; !seen {
						supType[sub] = e.Val.Supply
					}
					break
				}
			}
		}
	}

	// count surviving tracks per pre-assigned type
	fillNs := fillTS.Keys()
	totCnt := len(fillNs)
	vddCnt, vssCnt := 0, 0
	for _, n := range fillNs {
		switch supType[n] {
		case SupplyVDD:
			vddCnt++
		case SupplyVSS:
			vssCnt++
		}
	}

	// split the unassigned tracks so totals stay balanced, spreading the
	// VDD picks uniformly with a cumulative counter
	numVdd := totCnt / 2
	numVss := totCnt - numVdd
	remTot := totCnt - vddCnt - vssCnt
	remVss := max(numVss-vssCnt, 0)
	remVdd := remTot - remVss

	nextVdd := -1
	k := 0
	if remVdd > 0 {
		nextVdd = ((2*k+1)*remTot + remVdd) / (2 * remVdd)
	}
	curIdx := 0
	for _, n := range fillNs {
		cur, assigned := supType[n]
		if !assigned {
			if curIdx == nextVdd {
				cur = SupplyVDD
				k++
				nextVdd = ((2*k+1)*remTot + remVdd) / (2 * remVdd)
			} else {
				cur = SupplyVSS
			}
			curIdx++
		}

		for _, iv := range fillTS.Get(n).Intervals() {
			wa := WireArray{
				TrackID: TrackID{
					Layer: layerID,
					Base:  halfint.HalfInt{N: n},
					Width: supWidth,
					Num:   1,
					Pitch: halfint.FromInt(supWidth + numSpace),
				},
				Lower: iv.Lo,
				Upper: iv.Hi,
			}
			if cur == SupplyVDD {
				vdd = append(vdd, wa)
			} else {
				vss = append(vss, wa)
			}
		}
	}
	return groupWireArrays(vdd), groupWireArrays(vss), nil
}

// groupWireArrays merges runs of single wires on consecutive candidate
// tracks with identical spans into arrayed descriptors. The input is
// ordered by track index; wires whose index step matches the first pair's
// step and whose extent matches exactly join the same array.
func groupWireArrays(list []WireArray) []WireArray {
	if len(list) < 2 {
		return list
	}
	out := make([]WireArray, 0, len(list))
	cur := list[0]
	for _, wa := range list[1:] {
		if wa.Lower == cur.Lower && wa.Upper == cur.Upper && wa.Width == cur.Width {
			step := wa.Base.Sub(cur.Base.Add(cur.Pitch.MulInt(cur.Num - 1)))
			if cur.Num == 1 && step.N > 0 {
				cur.Pitch = step
				cur.Num = 2
				continue
			}
			if cur.Num > 1 && step == cur.Pitch {
				cur.Num++
				continue
			}
		}
		out = append(out, cur)
		cur = wa
	}
	return append(out, cur)
}
