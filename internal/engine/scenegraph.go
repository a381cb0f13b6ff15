package engine

import (
	"image/color"

	"honnef.co/go/curve"

	"github.com/inamate/nestpoly/internal/geometry"
)

// SceneGraph is the evaluated, render-ready state of one frame.
// Layers are ordered outermost first, which is also painter's order.
type SceneGraph struct {
	Frame      int
	Angle      float64
	Background color.RGBA
	Layers     []*LayerNode
}

// LayerNode is a resolved layer ready for rendering.
type LayerNode struct {
	Index   int
	Polygon geometry.Polygon

	// Render data, resolved from the style
	Path        curve.BezPath // data space, y up
	Fill        color.RGBA
	Stroke      color.RGBA
	StrokeWidth float64 // pixels; zero disables the outline
}

// Vertices returns the layer's corners in data space.
func (n *LayerNode) Vertices() []curve.Point {
	return n.Polygon.Vertices()
}

// Bounds returns the axis-aligned bounding box of the layer in data space.
func (n *LayerNode) Bounds() curve.Rect {
	return n.Path.BoundingBox()
}
