// Package raster is the drawing surface frames are rendered onto.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"iter"

	"golang.org/x/image/vector"
	"honnef.co/go/curve"
)

// flattenTolerance is the maximum distance in pixels between a curve and
// its polyline approximation.
const flattenTolerance = 0.25

// miterLimit matches the default of most 2D plotting backends.
const miterLimit = 10

var ErrClosed = errors.New("raster: canvas is closed")

// Canvas owns an RGBA frame buffer and the rasterizer that fills it.
// Paths are given in pixel coordinates; see Viewport for mapping data
// coordinates onto the canvas.
type Canvas struct {
	img    *image.RGBA
	raster *vector.Rasterizer
	closed bool
}

// NewCanvas allocates a width x height canvas.
func NewCanvas(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster: invalid canvas size %dx%d", width, height)
	}
	return &Canvas{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		raster: vector.NewRasterizer(width, height),
	}, nil
}

// Bounds returns the pixel rectangle of the canvas.
func (c *Canvas) Bounds() image.Rectangle {
	if c.img == nil {
		return image.Rectangle{}
	}
	return c.img.Bounds()
}

// Clear paints the whole canvas with col.
func (c *Canvas) Clear(col color.RGBA) error {
	if c.closed {
		return ErrClosed
	}
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
	return nil
}

// FillPath fills the interior of path with col, anti-aliased.
func (c *Canvas) FillPath(path curve.BezPath, col color.RGBA) error {
	if c.closed {
		return ErrClosed
	}
	if len(path) == 0 {
		return nil
	}
	c.rasterize(curve.Flatten(path.Elements(), flattenTolerance), col)
	return nil
}

// StrokePath draws the outline of path with the given line width in
// pixels, using mitered joins.
func (c *Canvas) StrokePath(path curve.BezPath, width float64, col color.RGBA) error {
	if c.closed {
		return ErrClosed
	}
	if len(path) == 0 || width <= 0 {
		return nil
	}
	style := curve.DefaultStroke.
		WithWidth(width).
		WithJoin(curve.MiterJoin).
		WithMiterLimit(miterLimit)
	outline := curve.StrokePath(path.Elements(), style, curve.StrokeOpts{}, flattenTolerance)
	c.rasterize(curve.Flatten(outline, flattenTolerance), col)
	return nil
}

// Image returns the frame buffer. It is reused by later drawing calls.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Close releases the frame buffer. Closing twice is a no-op.
func (c *Canvas) Close() error {
	c.closed = true
	c.img = nil
	c.raster = nil
	return nil
}

// rasterize accumulates a flattened path and composites col over it.
func (c *Canvas) rasterize(seq iter.Seq[curve.PathElement], col color.RGBA) {
	b := c.img.Bounds()
	z := c.raster
	z.Reset(b.Dx(), b.Dy())
	z.DrawOp = draw.Over

	open := false
	for el := range seq {
		switch el.Kind {
		case curve.MoveToKind:
			if open {
				z.ClosePath()
			}
			z.MoveTo(float32(el.P0.X), float32(el.P0.Y))
			open = true
		case curve.LineToKind:
			z.LineTo(float32(el.P0.X), float32(el.P0.Y))
		case curve.QuadToKind:
			z.LineTo(float32(el.P1.X), float32(el.P1.Y))
		case curve.CubicToKind:
			z.LineTo(float32(el.P2.X), float32(el.P2.Y))
		case curve.ClosePathKind:
			z.ClosePath()
			open = false
		}
	}
	if open {
		z.ClosePath()
	}
	z.Draw(c.img, b, image.NewUniform(col), image.Point{})
}
