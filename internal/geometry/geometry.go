// Package geometry computes perimeter length, enclosed area, and closure
// error for a job's foundation footprint, described either as a rectangle
// or as a walked sequence of wall segments.
package geometry

import "math"

// Segment is one walked wall run: advance Len along the current heading,
// then turn TurnDeg degrees. The turn applies after advancing, so it
// affects the next segment only.
type Segment struct {
	Len     float64 `json:"len"`
	TurnDeg float64 `json:"turnDeg"`
}

// Point is a 2-D coordinate in the footprint plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Outputs are the derived perimeter measurements. Closure is the distance
// from the walked endpoint back to the start; zero for rectangles.
type Outputs struct {
	Perimeter float64 `json:"perimeter"`
	Area      float64 `json:"area"`
	Closure   float64 `json:"closure"`
}

// Rectangle returns the corner points (closed, first point repeated last)
// and outputs for an L-by-W rectangle. Non-positive dimensions yield no
// points and zero outputs.
func Rectangle(length, width float64) ([]Point, Outputs) {
	if length <= 0 || width <= 0 {
		return nil, Outputs{}
	}
	pts := []Point{
		{0, 0},
		{length, 0},
		{length, width},
		{0, width},
		{0, 0},
	}
	return pts, Outputs{
		Perimeter: 2 * (length + width),
		Area:      length * width,
		Closure:   0,
	}
}

// Walk traces the segments from the origin with an initial heading of 0°
// and returns the visited points plus derived outputs. Headings stay in
// degrees; conversion to radians happens only at the trig calls.
func Walk(segments []Segment) ([]Point, Outputs) {
	x, y, heading := 0.0, 0.0, 0.0
	pts := []Point{{0, 0}}
	var perimeter float64

	for _, s := range segments {
		rad := heading * math.Pi / 180
		x += s.Len * math.Cos(rad)
		y += s.Len * math.Sin(rad)
		pts = append(pts, Point{x, y})
		perimeter += s.Len
		heading += s.TurnDeg
	}

	return pts, Outputs{
		Perimeter: perimeter,
		Area:      polygonArea(pts),
		Closure:   math.Hypot(x, y),
	}
}

// polygonArea applies the shoelace formula over consecutive point pairs.
// Fewer than three points enclose nothing.
func polygonArea(pts []Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < len(pts)-1; i++ {
		sum += pts[i].X*pts[i+1].Y - pts[i+1].X*pts[i].Y
	}
	return math.Abs(sum) / 2
}
