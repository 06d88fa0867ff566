package interval

import (
	"reflect"
	"testing"

	"github.com/halfpitch/laygrid/pkg/errors"
)

func TestAddMerge(t *testing.T) {
	var s Set[string]
	for _, add := range []struct {
		iv  Interval
		val string
	}{
		{Interval{0, 10}, "a"},
		{Interval{20, 30}, "b"},
		{Interval{5, 25}, "c"}, // bridges both
	} {
		if err := s.Add(add.iv, add.val, true, false); err != nil {
			t.Fatalf("Add(%v) error: %v", add.iv, err)
		}
	}
	want := []Interval{{0, 30}}
	if got := s.Intervals(); !reflect.DeepEqual(got, want) {
		t.Errorf("Intervals() = %v, want %v", got, want)
	}
	e, ok := s.Get(15)
	if !ok || e.Val != "c" {
		t.Errorf("Get(15) = %v, %v, want merged value %q", e, ok, "c")
	}
}

func TestAddAbut(t *testing.T) {
	// Without abut, touching intervals stay separate entries.
	var s Set[string]
	_ = s.Add(Interval{0, 10}, "a", true, false)
	_ = s.Add(Interval{10, 20}, "b", true, false)
	if want := []Interval{{0, 10}, {10, 20}}; !reflect.DeepEqual(s.Intervals(), want) {
		t.Errorf("Intervals() without abut = %v, want %v", s.Intervals(), want)
	}

	// With abut, neighbors touching either endpoint coalesce too.
	var a Set[string]
	_ = a.Add(Interval{0, 10}, "a", true, false)
	_ = a.Add(Interval{20, 30}, "b", true, false)
	if err := a.Add(Interval{10, 20}, "c", true, true); err != nil {
		t.Fatalf("Add abut error: %v", err)
	}
	if want := []Interval{{0, 30}}; !reflect.DeepEqual(a.Intervals(), want) {
		t.Errorf("Intervals() with abut = %v, want %v", a.Intervals(), want)
	}
	if e, ok := a.Get(5); !ok || e.Val != "c" {
		t.Errorf("Get(5) = %v, %v, want merged value %q", e, ok, "c")
	}

	// A gap is still a gap: abut does not bridge disjoint entries.
	var g Set[string]
	_ = g.Add(Interval{0, 10}, "a", true, true)
	_ = g.Add(Interval{12, 20}, "b", true, true)
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (gap preserved)", g.Len())
	}
}

func TestAddNoMergeOverlap(t *testing.T) {
	var s Set[int]
	if err := s.Add(Interval{0, 10}, 1, false, false); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	err := s.Add(Interval{5, 15}, 2, false, false)
	if errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("Add overlap error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d after rejected add, want 1", s.Len())
	}
}

func TestSubtract(t *testing.T) {
	tests := []struct {
		name  string
		sub   Interval
		want  []Interval
		after []Interval
	}{
		{"middle", Interval{4, 6}, []Interval{{0, 4}, {6, 10}}, []Interval{{0, 4}, {6, 10}, {20, 30}}},
		{"left edge", Interval{0, 3}, []Interval{{3, 10}}, []Interval{{3, 10}, {20, 30}}},
		{"whole entry", Interval{0, 10}, nil, []Interval{{20, 30}}},
		{"spanning both", Interval{5, 25}, []Interval{{0, 5}, {25, 30}}, []Interval{{0, 5}, {25, 30}}},
		{"no overlap", Interval{12, 18}, nil, []Interval{{0, 10}, {20, 30}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Set[int]
			_ = s.Add(Interval{0, 10}, 0, false, false)
			_ = s.Add(Interval{20, 30}, 0, false, false)
			got := s.Subtract(tt.sub)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Subtract(%v) = %v, want %v", tt.sub, got, tt.want)
			}
			if after := s.Intervals(); !reflect.DeepEqual(after, tt.after) {
				t.Errorf("Intervals() after = %v, want %v", after, tt.after)
			}
		})
	}
}

func TestTransform(t *testing.T) {
	var s Set[int]
	_ = s.Add(Interval{0, 10}, 1, false, false)
	_ = s.Add(Interval{20, 30}, 2, false, false)

	fwd := s.Transform(1, 100)
	if want := []Interval{{100, 110}, {120, 130}}; !reflect.DeepEqual(fwd.Intervals(), want) {
		t.Errorf("Transform(1, 100) = %v, want %v", fwd.Intervals(), want)
	}

	// mirroring reverses entry order and keeps intervals well formed
	rev := s.Transform(-1, 0)
	if want := []Interval{{-30, -20}, {-10, 0}}; !reflect.DeepEqual(rev.Intervals(), want) {
		t.Errorf("Transform(-1, 0) = %v, want %v", rev.Intervals(), want)
	}
	e, ok := rev.Get(-25)
	if !ok || e.Val != 2 {
		t.Errorf("Get(-25) = %v, %v, want value 2", e, ok)
	}
}

func TestOverlapsGet(t *testing.T) {
	var s Set[int]
	_ = s.Add(Interval{10, 20}, 7, false, false)
	if !s.Overlaps(Interval{15, 25}) {
		t.Error("Overlaps(15, 25) = false, want true")
	}
	if s.Overlaps(Interval{20, 25}) {
		t.Error("Overlaps(20, 25) = true, want false (half-open)")
	}
	if _, ok := s.Get(20); ok {
		t.Error("Get(20) found an entry, want none (half-open)")
	}
}
