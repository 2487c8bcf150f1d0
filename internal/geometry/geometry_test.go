package geometry

import (
	"math"
	"testing"
)

const eps = 1e-9

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestRectangle(t *testing.T) {
	pts, out := Rectangle(20, 10)

	if len(pts) != 5 {
		t.Fatalf("expected 5 points (closed rectangle), got %d", len(pts))
	}
	if pts[0] != pts[len(pts)-1] {
		t.Errorf("rectangle not closed: first %v last %v", pts[0], pts[len(pts)-1])
	}
	if out.Perimeter != 60 {
		t.Errorf("perimeter = %v, want 60", out.Perimeter)
	}
	if out.Area != 200 {
		t.Errorf("area = %v, want 200", out.Area)
	}
	if out.Closure != 0 {
		t.Errorf("closure = %v, want 0", out.Closure)
	}
}

func TestRectangle_NonPositiveDimensions(t *testing.T) {
	cases := []struct {
		name string
		l, w float64
	}{
		{"zero length", 0, 10},
		{"zero width", 20, 0},
		{"negative length", -5, 10},
		{"both zero", 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pts, out := Rectangle(tc.l, tc.w)
			if len(pts) != 0 {
				t.Errorf("expected no points, got %d", len(pts))
			}
			if out != (Outputs{}) {
				t.Errorf("expected zero outputs, got %+v", out)
			}
		})
	}
}

func TestWalk_ClosedSquare(t *testing.T) {
	segs := []Segment{
		{Len: 10, TurnDeg: 90},
		{Len: 10, TurnDeg: 90},
		{Len: 10, TurnDeg: 90},
		{Len: 10, TurnDeg: 90},
	}
	pts, out := Walk(segs)

	if len(pts) != 5 {
		t.Fatalf("expected 5 points, got %d", len(pts))
	}
	if out.Perimeter != 40 {
		t.Errorf("perimeter = %v, want 40", out.Perimeter)
	}
	if !almostEqual(out.Area, 100, 1e-6) {
		t.Errorf("area = %v, want ~100", out.Area)
	}
	if !almostEqual(out.Closure, 0, 1e-6) {
		t.Errorf("closure = %v, want ~0 for a closed square", out.Closure)
	}
}

func TestWalk_OpenPath(t *testing.T) {
	// Three sides of a square: endpoint is one side-length from the origin.
	segs := []Segment{
		{Len: 10, TurnDeg: 90},
		{Len: 10, TurnDeg: 90},
		{Len: 10, TurnDeg: 90},
	}
	pts, out := Walk(segs)

	if out.Perimeter != 30 {
		t.Errorf("perimeter = %v, want 30", out.Perimeter)
	}
	if !almostEqual(out.Closure, 10, 1e-6) {
		t.Errorf("closure = %v, want ~10", out.Closure)
	}

	// Closure must equal the straight-line distance endpoint -> origin.
	end := pts[len(pts)-1]
	want := math.Hypot(end.X, end.Y)
	if !almostEqual(out.Closure, want, eps) {
		t.Errorf("closure = %v, endpoint distance = %v", out.Closure, want)
	}
}

func TestWalk_TurnAppliesAfterAdvance(t *testing.T) {
	// A single segment with a turn still travels straight along heading 0.
	pts, out := Walk([]Segment{{Len: 10, TurnDeg: 90}})
	if len(pts) != 2 {
		t.Fatalf("expected 2 points, got %d", len(pts))
	}
	end := pts[1]
	if !almostEqual(end.X, 10, eps) || !almostEqual(end.Y, 0, eps) {
		t.Errorf("endpoint = %v, want (10, 0)", end)
	}
	if out.Area != 0 {
		t.Errorf("area = %v, want 0 for fewer than 3 points", out.Area)
	}
}

func TestWalk_Empty(t *testing.T) {
	pts, out := Walk(nil)
	if len(pts) != 1 {
		t.Fatalf("expected origin point only, got %d points", len(pts))
	}
	if out.Perimeter != 0 || out.Area != 0 || out.Closure != 0 {
		t.Errorf("expected zero outputs, got %+v", out)
	}
}
