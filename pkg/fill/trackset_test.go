package fill

import (
	"reflect"
	"testing"

	"github.com/halfpitch/laygrid/pkg/errors"
	"github.com/halfpitch/laygrid/pkg/grid"
	"github.com/halfpitch/laygrid/pkg/halfint"
	"github.com/halfpitch/laygrid/pkg/interval"
	"github.com/halfpitch/laygrid/pkg/tech"
)

type stubTech struct{}

func (stubTech) Resolution() float64 { return 0.001 }

func (stubTech) MinSpace(layer, width int) int {
	if width >= 90 {
		return 48
	}
	return 32
}

func (stubTech) MinLength(layer, width int) int { return 40 }

func (stubTech) MetalEM(layer, width, length int) tech.EMCapacity {
	w := float64(width)
	return tech.EMCapacity{Idc: 0.05 * w, IacRms: 0.1 * w, IacPeak: 0.2 * w}
}

func (stubTech) ViaEM(botLayer, w, l int) tech.EMCapacity {
	n := float64((w / 32) * (l / 32))
	if n <= 0 {
		return tech.EMCapacity{}
	}
	return tech.EMCapacity{Idc: 0.1 * n, IacRms: 0.2 * n, IacPeak: 0.4 * n}
}

func (stubTech) ViaExtensions(botLayer, botWidth, topWidth int) (int, int) { return 10, 20 }

// testGrid is a two-layer X/Y stack with pitch 64 on both layers.
func testGrid(t *testing.T) *grid.Grid {
	t.Helper()
	g, err := grid.New(stubTech{}, []int{1, 2}, []int{32, 32}, []int{32, 32}, grid.DirX, 100)
	if err != nil {
		t.Fatalf("grid.New() error: %v", err)
	}
	return g
}

func TestTrackSetMinLength(t *testing.T) {
	ts := NewTrackSet(10)
	ts.AddTrack(0, interval.Interval{Lo: 0, Hi: 9}, 1, 0, SupplyNone)
	if ts.Has(0) {
		t.Error("interval below minimum length was kept")
	}
	ts.AddTrack(0, interval.Interval{Lo: 0, Hi: 10}, 1, 0, SupplyNone)
	if !ts.Has(0) {
		t.Error("interval at minimum length was dropped")
	}
}

func TestTrackSetIdempotent(t *testing.T) {
	ts := NewTrackSet(0)
	for i := 0; i < 2; i++ {
		ts.AddTrack(3, interval.Interval{Lo: 0, Hi: 100}, 2, 5, SupplyVSS)
	}
	set := ts.Get(3)
	if set == nil || set.Len() != 1 {
		t.Fatalf("double insert: Len() = %v, want 1", set.Len())
	}
	e := set.Entries()[0]
	if e.Interval != (interval.Interval{Lo: 0, Hi: 100}) || e.Val != (Tag{Width: 2, Margin: 5, Supply: SupplyVSS}) {
		t.Errorf("entry = %+v, want original footprint unchanged", e)
	}
}

func TestTrackSetMergeLastWriteWins(t *testing.T) {
	// two overlapping footprints of different widths on the same track must
	// merge to one interval carrying the later width
	ts := NewTrackSet(0)
	ts.AddTrack(1, interval.Interval{Lo: 0, Hi: 60}, 1, 0, SupplyNone)
	ts.AddTrack(1, interval.Interval{Lo: 40, Hi: 120}, 2, 8, SupplyVDD)
	set := ts.Get(1)
	if set.Len() != 1 {
		t.Fatalf("Len() = %v, want 1 merged interval", set.Len())
	}
	e := set.Entries()[0]
	if e.Interval != (interval.Interval{Lo: 0, Hi: 120}) {
		t.Errorf("merged interval = %v, want [0, 120)", e.Interval)
	}
	if e.Val != (Tag{Width: 2, Margin: 8, Supply: SupplyVDD}) {
		t.Errorf("merged tag = %+v, want the most recent insert's tag", e.Val)
	}
}

func TestTrackSetSubtract(t *testing.T) {
	ts := NewTrackSet(20)
	ts.AddTrack(0, interval.Interval{Lo: 0, Hi: 100}, 1, 0, SupplyNone)

	// split leaves one legal and one sub-minimum fragment
	ts.Subtract(0, interval.Interval{Lo: 50, Hi: 90})
	want := []interval.Interval{{Lo: 0, Hi: 50}}
	if got := ts.Get(0).Intervals(); !reflect.DeepEqual(got, want) {
		t.Errorf("Intervals() = %v, want %v (short fragment dropped)", got, want)
	}

	// removing the rest forgets the track
	ts.Subtract(0, interval.Interval{Lo: 0, Hi: 50})
	if ts.Has(0) {
		t.Error("track still present after all intervals removed")
	}
}

func TestTrackSetTransform(t *testing.T) {
	g := testGrid(t)
	ts := NewTrackSet(0)
	ts.AddTrack(0, interval.Interval{Lo: 0, Hi: 10}, 1, 0, SupplyVDD)

	tests := []struct {
		name   string
		dx, dy int
		o      Orient
		wantN  int
		wantIv interval.Interval
	}{
		// layer 1 runs in X: track keys shift with dy, intervals with dx
		{"R0 shift", 5, 64, R0, 2, interval.Interval{Lo: 5, Hi: 15}},
		{"R180", 0, 0, R180, -2, interval.Interval{Lo: -10, Hi: 0}},
		{"MX flips track axis", 0, 0, MX, -2, interval.Interval{Lo: 0, Hi: 10}},
		{"MY flips wire axis", 0, 0, MY, 0, interval.Interval{Lo: -10, Hi: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ts.Transform(g, 1, tt.dx, tt.dy, tt.o)
			if err != nil {
				t.Fatalf("Transform() error: %v", err)
			}
			if !got.Has(tt.wantN) {
				t.Fatalf("transformed set keys = %v, want key %d", got.Keys(), tt.wantN)
			}
			e := got.Get(tt.wantN).Entries()[0]
			if e.Interval != tt.wantIv {
				t.Errorf("transformed interval = %v, want %v", e.Interval, tt.wantIv)
			}
			if e.Val.Supply != SupplyVDD {
				t.Errorf("transformed tag supply = %v, want VDD", e.Val.Supply)
			}
		})
	}

	if _, err := ts.Transform(g, 1, 0, 33, R0); errors.GetCode(err) != errors.ErrCodeOffGrid {
		t.Errorf("Transform off half-track error code = %v, want %v",
			errors.GetCode(err), errors.ErrCodeOffGrid)
	}
}

func TestTrackSetTransformRoundTrip(t *testing.T) {
	g := testGrid(t)
	ts := NewTrackSet(0)
	ts.AddTrack(3, interval.Interval{Lo: 20, Hi: 80}, 1, 0, SupplyNone)
	ts.AddTrack(-2, interval.Interval{Lo: -40, Hi: 0}, 2, 4, SupplyVSS)

	once, err := ts.Transform(g, 1, 0, 0, R180)
	if err != nil {
		t.Fatalf("Transform() error: %v", err)
	}
	twice, err := once.Transform(g, 1, 0, 0, R180)
	if err != nil {
		t.Fatalf("Transform() error: %v", err)
	}
	if !reflect.DeepEqual(twice.Keys(), ts.Keys()) {
		t.Errorf("double R180 keys = %v, want %v", twice.Keys(), ts.Keys())
	}
	for _, n := range ts.Keys() {
		if !reflect.DeepEqual(twice.Get(n).Intervals(), ts.Get(n).Intervals()) {
			t.Errorf("double R180 track %d = %v, want %v", n, twice.Get(n).Intervals(), ts.Get(n).Intervals())
		}
	}
}

func TestUsedTracks(t *testing.T) {
	u := NewUsedTracks()
	u.AddWireArray(WireArray{
		TrackID: TrackID{Layer: 1, Base: halfint.FromInt(0), Width: 1, Num: 3, Pitch: halfint.FromInt(2)},
		Lower:   0,
		Upper:   100,
	}, 5, SupplyVSS)

	ts := u.TrackSet(1)
	for _, n := range []int{0, 4, 8} {
		if !ts.Has(n) {
			t.Errorf("missing arrayed wire at doubled index %d", n)
		}
	}
	if got := ts.Len(); got != 3 {
		t.Errorf("TrackSet(1).Len() = %v, want 3", got)
	}
	if got := u.Layers(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("Layers() = %v, want [1]", got)
	}
}

func TestUsedTracksTransformLayerRange(t *testing.T) {
	g := testGrid(t)
	u := NewUsedTracks()
	u.TrackSet(1).AddTrack(0, interval.Interval{Lo: 0, Hi: 10}, 1, 0, SupplyNone)
	u.TrackSet(2).AddTrack(0, interval.Interval{Lo: 0, Hi: 10}, 1, 0, SupplyNone)

	out, err := u.Transform(g, 2, 2, 0, 0, R0)
	if err != nil {
		t.Fatalf("Transform() error: %v", err)
	}
	if got := out.Layers(); !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("Layers() after ranged transform = %v, want [2]", got)
	}
}

func TestUsedTracksMerge(t *testing.T) {
	a, b := NewUsedTracks(), NewUsedTracks()
	a.TrackSet(1).AddTrack(0, interval.Interval{Lo: 0, Hi: 50}, 1, 0, SupplyNone)
	b.TrackSet(1).AddTrack(0, interval.Interval{Lo: 40, Hi: 100}, 2, 0, SupplyVDD)
	b.TrackSet(2).AddTrack(2, interval.Interval{Lo: 0, Hi: 30}, 1, 0, SupplyNone)

	a.Merge(b)
	if got := a.Layers(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("Layers() after merge = %v, want [1, 2]", got)
	}
	e := a.TrackSet(1).Get(0).Entries()[0]
	if e.Interval != (interval.Interval{Lo: 0, Hi: 100}) || e.Val.Width != 2 {
		t.Errorf("merged entry = %+v, want [0, 100) with incoming tag", e)
	}
}
