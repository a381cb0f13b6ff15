// Package geometry generates the vertices and radii of nested regular
// polygons centred on the origin.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"honnef.co/go/curve"
)

const (
	// RadiusMax is the circumradius of the outermost polygon.
	RadiusMax = 1.0
	// MinRadius is the cutoff below which a polygon is too small to draw.
	MinRadius = 0.001
)

var ErrTooFewSides = errors.New("geometry: a polygon needs at least 3 sides")

// Validate reports whether n is a usable side count.
func Validate(n int) error {
	if n < 3 {
		return fmt.Errorf("%w: got %d", ErrTooFewSides, n)
	}
	return nil
}

// Polygon is a regular polygon centred on the origin.
type Polygon struct {
	Sides    int
	Radius   float64 // circumradius
	Rotation float64 // radians, angle of the first vertex
}

// Vertices returns the polygon's corners in order.
func (p Polygon) Vertices() []curve.Point {
	return Vertices(p.Sides, p.Radius, p.Rotation)
}

// Path returns the polygon as a closed path.
func (p Polygon) Path() curve.BezPath {
	pts := p.Vertices()
	if len(pts) == 0 {
		return nil
	}
	path := make(curve.BezPath, 0, len(pts)+1)
	path.MoveTo(pts[0])
	for _, pt := range pts[1:] {
		path.LineTo(pt)
	}
	path.ClosePath()
	return path
}

// Vertices returns n points on the circle of the given radius, spaced
// 2π/n apart and starting at angle.
func Vertices(n int, radius, angle float64) []curve.Point {
	if n <= 0 {
		return nil
	}
	step := 2 * math.Pi / float64(n)
	pts := make([]curve.Point, n)
	for j := range pts {
		sin, cos := math.Sincos(angle + float64(j)*step)
		pts[j] = curve.Pt(radius*cos, radius*sin)
	}
	return pts
}

// ShrinkRatio is the circumradius ratio between a polygon and the
// same-sided polygon whose vertices sit on its edge midpoints.
func ShrinkRatio(n int) float64 {
	return math.Cos(math.Pi / float64(n))
}

// BuildStack returns the circumradii of the nesting stack, outermost
// first. It stops at maxLayers or once the radius drops to MinRadius.
func BuildStack(n int, outer float64, maxLayers int) []float64 {
	if maxLayers <= 0 || n < 3 {
		return nil
	}
	ratio := ShrinkRatio(n)
	var radii []float64
	for r := outer; r > MinRadius && len(radii) < maxLayers; r *= ratio {
		radii = append(radii, r)
	}
	return radii
}

// TouchingRadius returns the circumradius of a polygon rotated by rotation
// relative to a parent of radius outer, sized so its vertices touch the
// parent's edges. Rotations are taken modulo one vertex step.
func TouchingRadius(n int, rotation, outer float64) float64 {
	alpha := 2 * math.Pi / float64(n)
	phi := math.Mod(rotation, alpha)
	if phi < 0 {
		phi += alpha
	}
	t := math.Tan((math.Pi - alpha) / 2)
	sin, cos := math.Sincos(phi)
	return t * outer / (sin + t*cos)
}
