// Package fill computes DRC-legal dummy-metal and power-rail fill on unused
// routing tracks.
//
// The package has three parts. TrackSet and UsedTracks form the occupancy
// ledger: a per-layer record of which track intervals are already taken,
// tagged with wire width, fill margin and supply type. The Symmetric*
// functions are a pure 1-D packing family that places fill blocks across a
// span so spacing stays near a target, lengths stay uniform, and the result
// is exactly symmetric about the span center. PowerFillTracks and
// AvailableTracks combine the two with the routing grid to turn unused
// tracks into balanced VDD/VSS fill wires.
package fill

import (
	"slices"

	"github.com/halfpitch/laygrid/pkg/errors"
	"github.com/halfpitch/laygrid/pkg/grid"
	"github.com/halfpitch/laygrid/pkg/halfint"
	"github.com/halfpitch/laygrid/pkg/interval"
)

// Supply tags an occupied or fill track with its electrical role.
type Supply int

const (
	// SupplyNone marks a signal wire or an unassigned fill track.
	SupplyNone Supply = iota
	// SupplyVDD marks a power wire.
	SupplyVDD
	// SupplyVSS marks a ground wire.
	SupplyVSS
)

func (s Supply) String() string {
	switch s {
	case SupplyVDD:
		return "VDD"
	case SupplyVSS:
		return "VSS"
	default:
		return "none"
	}
}

// Tag is the value stored with every occupied interval: the wire's width in
// tracks, the minimum margin fill must keep from it, and its supply type.
type Tag struct {
	Width  int
	Margin int
	Supply Supply
}

// Orient is a rigid transform applied when composing a sub-template's
// occupancy into a parent instance.
type Orient int

const (
	// R0 is the identity orientation.
	R0 Orient = iota
	// R180 rotates by 180 degrees.
	R180
	// MX mirrors about the X axis.
	MX
	// MY mirrors about the Y axis.
	MY
)

// TrackSet records occupied intervals on one layer, keyed by doubled track
// index (even keys are physical tracks, odd keys are half tracks).
// Intervals on the same track merge on overlap, the merged entry keeping
// the most recently inserted tag. Fragments shorter than the minimum
// length are dropped after subtraction, because a wire below technology
// minimum is not legal.
type TrackSet struct {
	minLen int
	tracks map[int]*interval.Set[Tag]
}

// NewTrackSet creates a TrackSet that drops intervals shorter than minLen.
func NewTrackSet(minLen int) *TrackSet {
	return &TrackSet{minLen: minLen, tracks: make(map[int]*interval.Set[Tag])}
}

// Len returns the number of tracks holding at least one interval.
func (ts *TrackSet) Len() int { return len(ts.tracks) }

// Has reports whether the doubled track index holds any interval.
func (ts *TrackSet) Has(n int) bool {
	_, ok := ts.tracks[n]
	return ok
}

// Get returns the interval set at the doubled track index, or nil.
func (ts *TrackSet) Get(n int) *interval.Set[Tag] { return ts.tracks[n] }

// Keys returns the doubled track indices in ascending order.
func (ts *TrackSet) Keys() []int {
	keys := make([]int, 0, len(ts.tracks))
	for n := range ts.tracks {
		keys = append(keys, n)
	}
	slices.Sort(keys)
	return keys
}

// AddTrack inserts an interval at the doubled track index. Intervals
// shorter than the minimum length are ignored. Overlapping intervals merge
// and the merged entry takes this call's tag.
func (ts *TrackSet) AddTrack(n int, iv interval.Interval, width, margin int, sup Supply) {
	if iv.Len() < ts.minLen {
		return
	}
	set, ok := ts.tracks[n]
	if !ok {
		set = &interval.Set[Tag]{}
		ts.tracks[n] = set
	}
	// merge cannot fail
	_ = set.Add(iv, Tag{Width: width, Margin: margin, Supply: sup}, true, false)
}

// Subtract removes the interval from the track at the doubled index.
// Fragments left shorter than the minimum length are dropped entirely, and
// the track is forgotten once empty.
func (ts *TrackSet) Subtract(n int, iv interval.Interval) {
	set, ok := ts.tracks[n]
	if !ok {
		return
	}
	for _, frag := range set.Subtract(iv) {
		if frag.Len() < ts.minLen {
			set.Remove(frag)
		}
	}
	if set.Empty() {
		delete(ts.tracks, n)
	}
}

// Merge adds every interval of the other TrackSet into this one, using the
// same merge-on-overlap rule as AddTrack.
func (ts *TrackSet) Merge(other *TrackSet) {
	for n, set := range other.tracks {
		for _, e := range set.Entries() {
			ts.AddTrack(n, e.Interval, e.Val.Width, e.Val.Margin, e.Val.Supply)
		}
	}
}

// Transform returns a new TrackSet re-keyed into a parent coordinate frame:
// the instance holding this layer is shifted by (dx, dy) and placed with
// the given orientation. Index keys transform along the layer's track axis
// and intervals along the perpendicular axis; mirroring about the axis
// matching the layer direction flips indices, the other axis flips
// intervals, and R180 flips both.
//
// The shift component along the track axis must land on a half-track
// boundary, otherwise the transformed tracks would be off-grid.
func (ts *TrackSet) Transform(g *grid.Grid, layerID, dx, dy int, o Orient) (*TrackSet, error) {
	l, err := g.Layer(layerID)
	if err != nil {
		return nil, err
	}
	isX := l.Dir == grid.DirX
	idxShiftCoord, intvShift := dy, dx
	if !isX {
		idxShiftCoord, intvShift = dx, dy
	}

	idxScale, intvScale := 1, 1
	switch o {
	case R180:
		idxScale, intvScale = -1, -1
	case MX:
		if isX {
			idxScale = -1
		} else {
			intvScale = -1
		}
	case MY:
		if isX {
			intvScale = -1
		} else {
			idxScale = -1
		}
	}

	// Doubled-index shift: a track at center c maps to idxScale*c + d, so
	// the new doubled index is idxScale*n + (2d - 2*offset*(1-idxScale))/pitch.
	pitch := l.Pitch()
	num := 2*idxShiftCoord - 2*l.Offset*(1-idxScale)
	if num%pitch != 0 {
		return nil, errors.New(errors.ErrCodeOffGrid,
			"shift %d on layer %d is not on a half-track boundary", idxShiftCoord, layerID)
	}
	idxShift := num / pitch

	out := NewTrackSet(ts.minLen)
	for n, set := range ts.tracks {
		out.tracks[idxScale*n+idxShift] = set.Transform(intvScale, intvShift)
	}
	return out, nil
}

// TrackID identifies a (possibly arrayed) wire: Num parallel wires of the
// same width starting at Base and stepping by Pitch track indices.
type TrackID struct {
	Layer int
	Base  halfint.HalfInt
	Width int
	Num   int
	Pitch halfint.HalfInt
}

// WireArray is a wire array together with its extent along the track
// direction.
type WireArray struct {
	TrackID
	Lower int
	Upper int
}

// UsedTracks is the per-layer occupancy ledger of one template. Zero value
// is not usable; construct with NewUsedTracks.
type UsedTracks struct {
	sets map[int]*TrackSet
}

// NewUsedTracks creates an empty ledger.
func NewUsedTracks() *UsedTracks {
	return &UsedTracks{sets: make(map[int]*TrackSet)}
}

// Layers returns the layer IDs holding occupancy, in ascending order.
func (u *UsedTracks) Layers() []int {
	ids := make([]int, 0, len(u.sets))
	for id := range u.sets {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// TrackSet returns the ledger for one layer, creating it when absent.
func (u *UsedTracks) TrackSet(layerID int) *TrackSet {
	ts, ok := u.sets[layerID]
	if !ok {
		ts = NewTrackSet(0)
		u.sets[layerID] = ts
	}
	return ts
}

// AddWireArray registers a wire array's footprint: one interval per arrayed
// wire, at base + k*pitch, tagged with the array's width, the fill margin
// and supply type.
func (u *UsedTracks) AddWireArray(wa WireArray, fillMargin int, sup Supply) {
	ts := u.TrackSet(wa.Layer)
	iv := interval.Interval{Lo: wa.Lower, Hi: wa.Upper}
	num := wa.Num
	if num <= 0 {
		num = 1
	}
	for k := 0; k < num; k++ {
		n := wa.Base.Dbl() + k*wa.Pitch.Dbl()
		ts.AddTrack(n, iv, wa.Width, fillMargin, sup)
	}
}

// Transform returns a new ledger for the layers in [botLayer, topLayer],
// re-keyed into a parent frame shifted by (dx, dy) with the given
// orientation.
func (u *UsedTracks) Transform(g *grid.Grid, botLayer, topLayer, dx, dy int, o Orient) (*UsedTracks, error) {
	out := NewUsedTracks()
	for id, ts := range u.sets {
		if id < botLayer || id > topLayer {
			continue
		}
		nts, err := ts.Transform(g, id, dx, dy, o)
		if err != nil {
			return nil, err
		}
		out.sets[id] = nts
	}
	return out, nil
}

// Merge adds every layer of the other ledger into this one.
func (u *UsedTracks) Merge(other *UsedTracks) {
	for id, ts := range other.sets {
		u.TrackSet(id).Merge(ts)
	}
}
