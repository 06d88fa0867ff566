package fill

import (
	"reflect"
	"testing"

	"github.com/halfpitch/laygrid/pkg/errors"
	"github.com/halfpitch/laygrid/pkg/halfint"
	"github.com/halfpitch/laygrid/pkg/interval"
)

func wholeTracks(ns ...int) []halfint.HalfInt {
	out := make([]halfint.HalfInt, len(ns))
	for i, n := range ns {
		out[i] = halfint.FromInt(n)
	}
	return out
}

func TestAvailableTracksNoOccupancy(t *testing.T) {
	g := testGrid(t)
	candidates := wholeTracks(0, 1, 2, 3, 4, 5)
	got, err := AvailableTracks(g, 1, candidates, 0, 400, 1, 0, NewTrackSet(0))
	if err != nil {
		t.Fatalf("AvailableTracks() error: %v", err)
	}
	if !reflect.DeepEqual(got, candidates) {
		t.Errorf("AvailableTracks(empty occupancy) = %v, want candidates unchanged %v", got, candidates)
	}
}

func TestAvailableTracksBlocked(t *testing.T) {
	g := testGrid(t)
	ts := NewTrackSet(0)
	// wire on track 2 spanning the whole window; tech min space 32 expands
	// its footprint over tracks 1 through 3
	ts.AddTrack(4, interval.Interval{Lo: 0, Hi: 400}, 1, 0, SupplyNone)

	got, err := AvailableTracks(g, 1, wholeTracks(0, 1, 2, 3, 4, 5), 0, 400, 1, 0, ts)
	if err != nil {
		t.Fatalf("AvailableTracks() error: %v", err)
	}
	if want := wholeTracks(0, 4, 5); !reflect.DeepEqual(got, want) {
		t.Errorf("AvailableTracks() = %v, want %v", got, want)
	}
}

func TestAvailableTracksPartialOverlapKills(t *testing.T) {
	g := testGrid(t)
	ts := NewTrackSet(0)
	// a short wire blocks the whole candidate because fill must span the
	// full window
	ts.AddTrack(4, interval.Interval{Lo: 100, Hi: 140}, 1, 0, SupplyNone)

	got, err := AvailableTracks(g, 1, wholeTracks(1, 2, 3), 0, 400, 1, 0, ts)
	if err != nil {
		t.Fatalf("AvailableTracks() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("AvailableTracks() = %v, want none", got)
	}
}

func TestPowerFillTracksEmpty(t *testing.T) {
	g := testGrid(t)
	box := BBox{Left: 0, Bottom: 0, Right: 400, Top: 400}
	vdd, vss, err := PowerFillTracks(g, box, 1, NewTrackSet(0), 1, 0, 0, -1)
	if err != nil {
		t.Fatalf("PowerFillTracks() error: %v", err)
	}

	// six candidate tracks split three and three, grouped into one array
	// per supply
	wantVdd := []WireArray{{
		TrackID: TrackID{Layer: 1, Base: halfint.FromInt(1), Width: 1, Num: 3, Pitch: halfint.FromInt(2)},
		Lower:   0, Upper: 400,
	}}
	wantVss := []WireArray{{
		TrackID: TrackID{Layer: 1, Base: halfint.FromInt(0), Width: 1, Num: 3, Pitch: halfint.FromInt(2)},
		Lower:   0, Upper: 400,
	}}
	if !reflect.DeepEqual(vdd, wantVdd) {
		t.Errorf("vdd = %+v, want %+v", vdd, wantVdd)
	}
	if !reflect.DeepEqual(vss, wantVss) {
		t.Errorf("vss = %+v, want %+v", vss, wantVss)
	}
}

func countWires(was []WireArray) int {
	n := 0
	for _, wa := range was {
		n += wa.Num
	}
	return n
}

func TestPowerFillTracksSupplyPropagation(t *testing.T) {
	g := testGrid(t)
	box := BBox{Left: 0, Bottom: 0, Right: 400, Top: 400}

	// existing VDD rail on track 0, near the bottom edge
	ts := NewTrackSet(0)
	ts.AddTrack(0, interval.Interval{Lo: 0, Hi: 400}, 1, 0, SupplyVDD)

	vdd, vss, err := PowerFillTracks(g, box, 1, ts, 1, 0, 0, -1)
	if err != nil {
		t.Fatalf("PowerFillTracks() error: %v", err)
	}

	// track 0 is consumed by the rail; track 1 inherits VDD and no track
	// beyond it does by propagation
	vddTracks := map[int]bool{}
	for _, wa := range vdd {
		for k := 0; k < wa.Num; k++ {
			vddTracks[wa.Base.Dbl()+k*wa.Pitch.Dbl()] = true
		}
	}
	if !vddTracks[2] {
		t.Errorf("nearest track above the VDD rail not tagged VDD: vdd = %+v", vdd)
	}
	if vddTracks[0] {
		t.Error("consumed rail track reappeared in the fill output")
	}

	// balance: five surviving tracks split 2/3
	nv, ns := countWires(vdd), countWires(vss)
	if nv+ns != 5 || nv-ns > 1 || ns-nv > 1 {
		t.Errorf("fill split = %d VDD, %d VSS, want 5 total within 1 of even", nv, ns)
	}
}

func TestPowerFillTracksBalance(t *testing.T) {
	g := testGrid(t)
	box := BBox{Left: 0, Bottom: 0, Right: 400, Top: 400}
	for _, sup := range []Supply{SupplyVDD, SupplyVSS} {
		ts := NewTrackSet(0)
		ts.AddTrack(0, interval.Interval{Lo: 0, Hi: 400}, 1, 0, sup)
		vdd, vss, err := PowerFillTracks(g, box, 1, ts, 1, 0, 0, -1)
		if err != nil {
			t.Fatalf("PowerFillTracks() error: %v", err)
		}
		nv, ns := countWires(vdd), countWires(vss)
		if d := nv - ns; d > 1 || d < -1 {
			t.Errorf("pre-assigned %v: split %d/%d not balanced", sup, nv, ns)
		}
	}
}

func TestPowerFillTracksSpacing(t *testing.T) {
	g := testGrid(t)
	box := BBox{Left: 0, Bottom: 0, Right: 400, Top: 400}

	// explicit spacing of one empty track halves the candidate count
	vdd, vss, err := PowerFillTracks(g, box, 1, NewTrackSet(0), 1, 0, 0, 1)
	if err != nil {
		t.Fatalf("PowerFillTracks() error: %v", err)
	}
	if got := countWires(vdd) + countWires(vss); got != 3 {
		t.Errorf("total fill wires = %d, want 3 at spacing 1", got)
	}
	for _, wa := range append(append([]WireArray{}, vdd...), vss...) {
		if wa.Num > 1 && wa.Pitch != halfint.FromInt(2) {
			t.Errorf("array pitch = %v, want 2 tracks at spacing 1", wa.Pitch)
		}
	}
}

func TestPowerFillTracksSpacingTooSmall(t *testing.T) {
	g := testGrid(t)
	// double-width supply wires need one space track; zero is below minimum
	box := BBox{Left: 0, Bottom: 0, Right: 400, Top: 400}
	_, _, err := PowerFillTracks(g, box, 1, NewTrackSet(0), 2, 0, 0, 0)
	if errors.GetCode(err) != errors.ErrCodeInvalidSpacing {
		t.Errorf("PowerFillTracks() error code = %v, want %v",
			errors.GetCode(err), errors.ErrCodeInvalidSpacing)
	}
}
