// Package geom holds the small geometric value types shared by the
// schematic and board packages: positions, angles, and grid snapping.
// Grounded on pkg/kicad/sexp.Position/Angle in the teacher.
package geom

import "math"

// Point is a 2-D coordinate in document units (millimeters).
type Point struct {
	X, Y float64
}

// Grid is the schematic/board snap grid, spec.md §3 ("common value: 0.5
// length units").
const Grid = 0.5

// Snap rounds a coordinate to the nearest grid point, canceling the
// representation drift spec.md §4.5 calls out.
func Snap(p Point) Point {
	return Point{X: snap1(p.X), Y: snap1(p.Y)}
}

func snap1(v float64) float64 {
	return math.Round(v/Grid) * Grid
}

// Within reports whether two points coincide under the given tolerance
// (spec.md §4.7 uses 0.5 — one grid unit — for wire-endpoint coincidence).
func Within(a, b Point, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance && math.Abs(a.Y-b.Y) <= tolerance
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// RotateAbout rotates p by angleDegrees (counter-clockwise in the
// document's own coordinate convention, per DESIGN.md's open-question
// decision) about the origin.
func RotateAbout(p Point, angleDegrees float64) Point {
	rad := angleDegrees * math.Pi / 180.0
	sin, cos := math.Sin(rad), math.Cos(rad)
	return Point{
		X: p.X*cos - p.Y*sin,
		Y: p.X*sin + p.Y*cos,
	}
}

// NormalizeAngle reduces a, in degrees, to the half-open range [0,360).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}
