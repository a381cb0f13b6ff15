package engine

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/inamate/nestpoly/internal/geometry"
	"github.com/inamate/nestpoly/internal/palette"
	"github.com/inamate/nestpoly/internal/raster"
)

// Mode selects how nested layers move from frame to frame.
type Mode string

const (
	// ModeRigid turns the whole stack as one piece. Each layer sits half a
	// vertex step ahead of its parent so its corners touch the parent's
	// edge midpoints.
	ModeRigid Mode = "rigid"
	// ModeTwist rotates layer j by j times the frame angle and resizes it
	// so its corners keep touching the parent's edges. The layer count
	// varies per frame and frame 0 is blank.
	ModeTwist Mode = "twist"
)

var (
	ErrInvalidOptions = errors.New("engine: invalid options")
	ErrOverLimit      = errors.New("engine: options exceed limits")
)

// maxFrameSize bounds the frame edge so pixel counts stay within int.
const maxFrameSize = math.MaxInt32

// Options describes one animation.
type Options struct {
	Sides       int
	Frames      int
	Colors      []string
	MaxPolygons int
	Delay       time.Duration // interval between frames of a live preview
	FrameRate   int           // playback rate of the encoded video
	DPI         int
	FigureSize  float64 // inches; frames are square
	Mode        Mode
	EdgeColor   string
	LineWidth   float64 // points
	Background  string
}

// DefaultOptions returns the defaults of the command-line interface.
// Sides is left at zero and must be set by the caller.
func DefaultOptions() Options {
	return Options{
		Frames:      100,
		Colors:      append([]string(nil), palette.Default...),
		MaxPolygons: 1000,
		Delay:       20 * time.Millisecond,
		FrameRate:   30,
		DPI:         200,
		FigureSize:  8,
		Mode:        ModeRigid,
		EdgeColor:   "black",
		LineWidth:   1,
		Background:  "white",
	}
}

// Validate checks every field and reports the first problem found.
func (o Options) Validate() error {
	if err := geometry.Validate(o.Sides); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	switch {
	case o.Frames < 1:
		return fmt.Errorf("%w: frames must be positive, got %d", ErrInvalidOptions, o.Frames)
	case o.MaxPolygons < 0:
		return fmt.Errorf("%w: max polygons must not be negative, got %d", ErrInvalidOptions, o.MaxPolygons)
	case o.Delay < 0:
		return fmt.Errorf("%w: delay must not be negative, got %s", ErrInvalidOptions, o.Delay)
	case o.FrameRate < 1:
		return fmt.Errorf("%w: frame rate must be positive, got %d", ErrInvalidOptions, o.FrameRate)
	case o.DPI < 1:
		return fmt.Errorf("%w: dpi must be positive, got %d", ErrInvalidOptions, o.DPI)
	case !(o.FigureSize > 0) || math.IsInf(o.FigureSize, 0):
		return fmt.Errorf("%w: figure size must be positive, got %v", ErrInvalidOptions, o.FigureSize)
	case o.FigureSize*float64(o.DPI) > maxFrameSize:
		return fmt.Errorf("%w: frame of %v in at %d dpi is too large", ErrInvalidOptions, o.FigureSize, o.DPI)
	case o.LineWidth < 0:
		return fmt.Errorf("%w: line width must not be negative, got %v", ErrInvalidOptions, o.LineWidth)
	case o.Mode != ModeRigid && o.Mode != ModeTwist:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidOptions, o.Mode)
	}
	if _, err := o.style(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return nil
}

// Size returns the edge length of a frame in pixels. It is rounded down
// to an even number so frames fit 4:2:0 chroma subsampling.
func (o Options) Size() int {
	f := o.FigureSize * float64(o.DPI)
	if !(f < maxFrameSize) {
		f = maxFrameSize
	}
	px := int(f)
	px -= px % 2
	return max(px, 2)
}

// Limits caps the cost of a single animation. Zero fields are unlimited.
type Limits struct {
	MaxFrames   int
	MaxDPI      int
	MaxSize     int // frame edge in pixels
	MaxSides    int
	MaxPolygons int
}

// Check reports the first field of o that exceeds l.
func (l Limits) Check(o Options) error {
	switch {
	case l.MaxFrames > 0 && o.Frames > l.MaxFrames:
		return fmt.Errorf("%w: frames must be at most %d", ErrOverLimit, l.MaxFrames)
	case l.MaxDPI > 0 && o.DPI > l.MaxDPI:
		return fmt.Errorf("%w: dpi must be at most %d", ErrOverLimit, l.MaxDPI)
	case l.MaxSize > 0 && o.Size() > l.MaxSize:
		return fmt.Errorf("%w: frame size %dpx must be at most %dpx", ErrOverLimit, o.Size(), l.MaxSize)
	case l.MaxSides > 0 && o.Sides > l.MaxSides:
		return fmt.Errorf("%w: nsides must be at most %d", ErrOverLimit, l.MaxSides)
	case l.MaxPolygons > 0 && o.MaxPolygons > l.MaxPolygons:
		return fmt.Errorf("%w: maxPolygons must be at most %d", ErrOverLimit, l.MaxPolygons)
	}
	return nil
}

// Style holds the resolved colours and line width of an animation.
type Style struct {
	Palette    palette.Palette
	Edge       color.RGBA
	Background color.RGBA
	LineWidth  float64 // pixels
}

func (o Options) style() (Style, error) {
	pal, err := palette.New(o.Colors)
	if err != nil {
		return Style{}, err
	}
	edge, err := palette.Parse(o.EdgeColor)
	if err != nil {
		return Style{}, fmt.Errorf("edge color: %w", err)
	}
	bg, err := palette.Parse(o.Background)
	if err != nil {
		return Style{}, fmt.Errorf("background: %w", err)
	}
	return Style{
		Palette:    pal,
		Edge:       edge,
		Background: bg,
		LineWidth:  raster.PointsToPixels(o.LineWidth, o.DPI),
	}, nil
}
