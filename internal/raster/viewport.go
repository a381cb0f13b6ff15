package raster

import (
	"math"

	"honnef.co/go/curve"
)

// Viewport maps data coordinates in [-1, 1]² with y pointing up onto a
// width x height pixel grid with y pointing down. The square data window
// is centred and scaled to fit the shorter side.
func Viewport(width, height int) curve.Affine {
	w, h := float64(width), float64(height)
	s := math.Min(w, h) / 2
	return curve.NewAffine([6]float64{s, 0, 0, -s, w / 2, h / 2})
}

// PointsToPixels converts typographic points to pixels at a given DPI.
func PointsToPixels(points float64, dpi int) float64 {
	return points * float64(dpi) / 72
}
