package grid

import (
	"testing"

	"github.com/halfpitch/laygrid/pkg/errors"
	"github.com/halfpitch/laygrid/pkg/halfint"
)

func TestCoordToTrack(t *testing.T) {
	g := testGrid(t)
	tests := []struct {
		name  string
		coord int
		want  halfint.HalfInt
	}{
		{"track 0", 32, halfint.FromInt(0)},
		{"track 1", 96, halfint.FromInt(1)},
		{"midpoint", 64, halfint.Mid(0)},
		{"track -1", -32, halfint.FromInt(-1)},
		{"midpoint below 0", 0, halfint.Mid(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.CoordToTrack(1, tt.coord)
			if err != nil {
				t.Fatalf("CoordToTrack(1, %d) error: %v", tt.coord, err)
			}
			if got != tt.want {
				t.Errorf("CoordToTrack(1, %d) = %v, want %v", tt.coord, got, tt.want)
			}
		})
	}

	// one unit off any track or midpoint must be rejected, never rounded
	for _, coord := range []int{33, 63, 65, 1} {
		_, err := g.CoordToTrack(1, coord)
		if errors.GetCode(err) != errors.ErrCodeOffGrid {
			t.Errorf("CoordToTrack(1, %d) error code = %v, want %v", coord, errors.GetCode(err), errors.ErrCodeOffGrid)
		}
	}
}

func TestTrackToCoordRoundTrip(t *testing.T) {
	g := testGrid(t)
	for n := -8; n <= 8; n++ {
		idx := halfint.New(n)
		coord := g.TrackToCoord(1, idx)
		back, err := g.CoordToTrack(1, coord)
		if err != nil {
			t.Fatalf("CoordToTrack(1, %d) error: %v", coord, err)
		}
		if back != idx {
			t.Errorf("round trip of %v through coord %d = %v", idx, coord, back)
		}
	}
}

func TestCoordToNearestTrack(t *testing.T) {
	g := testGrid(t)
	tests := []struct {
		name      string
		coord     int
		allowHalf bool
		mode      RoundMode
		want      halfint.HalfInt
	}{
		{"nearest below midpoint", 50, false, RoundNearest, halfint.FromInt(0)},
		{"nearest above midpoint", 70, false, RoundNearest, halfint.FromInt(1)},
		{"nearest tie rounds up", 64, false, RoundNearest, halfint.FromInt(1)},
		{"floor", 90, false, RoundFloor, halfint.FromInt(0)},
		{"ceil", 40, false, RoundCeil, halfint.FromInt(1)},
		{"floor exact stays", 96, false, RoundFloor, halfint.FromInt(1)},
		{"floor strict steps", 96, false, RoundFloorStrict, halfint.FromInt(0)},
		{"ceil exact stays", 96, false, RoundCeil, halfint.FromInt(1)},
		{"ceil strict steps", 96, false, RoundCeilStrict, halfint.FromInt(2)},
		{"half nearest", 50, true, RoundNearest, halfint.Mid(0)},
		{"half floor strict on midpoint", 64, true, RoundFloorStrict, halfint.FromInt(0)},
		{"half ceil strict on midpoint", 64, true, RoundCeilStrict, halfint.FromInt(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.CoordToNearestTrack(1, tt.coord, tt.allowHalf, tt.mode)
			if got != tt.want {
				t.Errorf("CoordToNearestTrack(1, %d, %v, %v) = %v, want %v",
					tt.coord, tt.allowHalf, tt.mode, got, tt.want)
			}
		})
	}
}

func TestCoordToNearestTrackMonotone(t *testing.T) {
	g := testGrid(t)
	for _, mode := range []RoundMode{RoundNearest, RoundFloor, RoundCeil} {
		prev := g.CoordToNearestTrack(1, -200, true, mode)
		for c := -199; c <= 200; c++ {
			cur := g.CoordToNearestTrack(1, c, true, mode)
			if cur.Less(prev) {
				t.Fatalf("mode %v not monotone at coord %d: %v after %v", mode, c, cur, prev)
			}
			prev = cur
		}
	}
}

func TestWireBounds(t *testing.T) {
	g := testGrid(t)
	tests := []struct {
		idx          halfint.HalfInt
		width        int
		lower, upper int
	}{
		{halfint.FromInt(0), 1, 16, 48},
		{halfint.FromInt(0), 2, -16, 80},
		{halfint.Mid(0), 1, 48, 80},
	}
	for _, tt := range tests {
		lo, hi := g.WireBounds(1, tt.idx, tt.width)
		if lo != tt.lower || hi != tt.upper {
			t.Errorf("WireBounds(1, %v, %d) = %v, %v, want %v, %v",
				tt.idx, tt.width, lo, hi, tt.lower, tt.upper)
		}
	}
}

func TestIntervalToTrack(t *testing.T) {
	g := testGrid(t)
	idx, w, err := g.IntervalToTrack(1, 16, 48)
	if err != nil || idx != halfint.FromInt(0) || w != 1 {
		t.Errorf("IntervalToTrack(1, 16, 48) = %v, %v, %v, want 0, 1, nil", idx, w, err)
	}
	idx, w, err = g.IntervalToTrack(1, -16, 80)
	if err != nil || idx != halfint.FromInt(0) || w != 2 {
		t.Errorf("IntervalToTrack(1, -16, 80) = %v, %v, %v, want 0, 2, nil", idx, w, err)
	}
	if _, _, err := g.IntervalToTrack(1, 16, 50); errors.GetCode(err) != errors.ErrCodeOffGrid {
		t.Errorf("IntervalToTrack unquantized error code = %v, want %v",
			errors.GetCode(err), errors.ErrCodeOffGrid)
	}
}

func TestFindNextTrack(t *testing.T) {
	g := testGrid(t)
	// single-track wire on track 1 spans [80, 112); its lower edge clears
	// coordinate 80 but not 81
	if got := g.FindNextTrack(1, 80, 1, false, RoundCeil); got != halfint.FromInt(1) {
		t.Errorf("FindNextTrack(1, 80, 1, ceil) = %v, want 1", got)
	}
	if got := g.FindNextTrack(1, 81, 1, false, RoundCeil); got != halfint.FromInt(2) {
		t.Errorf("FindNextTrack(1, 81, 1, ceil) = %v, want 2", got)
	}
	if got := g.FindNextTrack(1, 48, 1, false, RoundFloor); got != halfint.FromInt(0) {
		t.Errorf("FindNextTrack(1, 48, 1, floor) = %v, want 0", got)
	}
}
