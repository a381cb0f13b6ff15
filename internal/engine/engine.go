// Package engine animates a stack of nested regular polygons.
//
// An Animator owns the nesting stack, the rendering canvas and the frame
// counter. Frames are produced on demand and handed to a FrameWriter.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"iter"
	"log/slog"
	"time"

	"github.com/inamate/nestpoly/internal/geometry"
	"github.com/inamate/nestpoly/internal/raster"
)

var ErrBadState = errors.New("engine: invalid animator state")

// State is the lifecycle stage of an Animator.
type State int

const (
	StateUninitialized State = iota
	StateConfigured
	StateRendering
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConfigured:
		return "configured"
	case StateRendering:
		return "rendering"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// FrameWriter consumes rendered frames in order, typically by encoding
// them into a video.
type FrameWriter interface {
	WriteFrame(img image.Image) error
	Close() error
}

// Animator renders the frames of one animation.
type Animator struct {
	opts  Options
	style Style

	// Nesting stack, read-only once configured
	stack []float64

	canvas *raster.Canvas

	state State
	frame int
	err   error
}

// NewAnimator validates opts and returns an unconfigured animator.
func NewAnimator(opts Options) (*Animator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.Colors = append([]string(nil), opts.Colors...)
	return &Animator{opts: opts}, nil
}

// Configure builds the nesting stack and acquires the canvas.
func (a *Animator) Configure() error {
	if a.state != StateUninitialized {
		return fmt.Errorf("%w: configure while %s", ErrBadState, a.state)
	}

	style, err := a.opts.style()
	if err != nil {
		return err
	}

	size := a.opts.Size()
	canvas, err := raster.NewCanvas(size, size)
	if err != nil {
		return err
	}

	a.style = style
	a.stack = geometry.BuildStack(a.opts.Sides, geometry.RadiusMax, a.opts.MaxPolygons)
	a.canvas = canvas
	a.state = StateConfigured

	slog.Debug("animator configured",
		"sides", a.opts.Sides,
		"layers", len(a.stack),
		"size", size,
		"mode", a.opts.Mode,
	)
	return nil
}

// Scene returns the scene graph of a frame. The animator must be
// configured.
func (a *Animator) Scene(frame int) (*SceneGraph, error) {
	if a.state == StateUninitialized || a.state == StateFinished {
		return nil, fmt.Errorf("%w: scene while %s", ErrBadState, a.state)
	}
	return BuildSceneGraph(a.opts, a.style, a.stack, frame), nil
}

// RenderFrame draws a frame onto the canvas and returns the canvas image.
// The image is overwritten by the next call.
func (a *Animator) RenderFrame(frame int) (*image.RGBA, error) {
	sg, err := a.Scene(frame)
	if err != nil {
		return nil, err
	}
	if err := Execute(CompileDrawCommands(sg), a.canvas); err != nil {
		return nil, err
	}
	a.frame = frame
	return a.canvas.Image(), nil
}

// Frames returns the animation as a lazy sequence of (index, image)
// pairs. Every iteration starts again at frame 0. Each image is the
// canvas buffer and is only valid until the iteration continues. If a
// frame cannot be rendered the sequence stops early and Err reports why.
func (a *Animator) Frames() iter.Seq2[int, *image.RGBA] {
	return func(yield func(int, *image.RGBA) bool) {
		a.err = nil
		for i := 0; i < a.opts.Frames; i++ {
			img, err := a.RenderFrame(i)
			if err != nil {
				a.err = fmt.Errorf("render frame %d: %w", i, err)
				return
			}
			if !yield(i, img) {
				return
			}
		}
	}
}

// Err returns the error that stopped the last iteration of Frames.
func (a *Animator) Err() error {
	return a.err
}

// Run renders every frame into w and closes it. The canvas is released
// and the animator is finished when Run returns, whether or not it
// succeeded. Output already written by w is not cleaned up on failure.
func (a *Animator) Run(ctx context.Context, w FrameWriter) (err error) {
	if a.state == StateUninitialized {
		if err := a.Configure(); err != nil {
			w.Close()
			a.Close()
			return err
		}
	}
	if a.state != StateConfigured {
		w.Close()
		return fmt.Errorf("%w: run while %s", ErrBadState, a.state)
	}

	a.state = StateRendering
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close writer: %w", cerr)
		}
		a.Close()
	}()

	start := time.Now()
	slog.Info("render started",
		"sides", a.opts.Sides,
		"frames", a.opts.Frames,
		"layers", len(a.stack),
		"size", a.opts.Size(),
	)

	for i, img := range a.Frames() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.WriteFrame(img); err != nil {
			return fmt.Errorf("write frame %d: %w", i, err)
		}
		slog.Debug("frame written", "frame", i)
	}
	if a.err != nil {
		return a.err
	}

	slog.Info("render finished", "frames", a.opts.Frames, "elapsed", time.Since(start))
	return nil
}

// Close releases the canvas and finishes the animator. It is safe to call
// more than once.
func (a *Animator) Close() error {
	if a.canvas != nil {
		a.canvas.Close()
		a.canvas = nil
	}
	a.state = StateFinished
	return nil
}

// State returns the current lifecycle stage.
func (a *Animator) State() State { return a.state }

// Frame returns the index of the most recently rendered frame.
func (a *Animator) Frame() int { return a.frame }

// Options returns the options the animator was created with.
func (a *Animator) Options() Options { return a.opts }

// Stack returns a copy of the nesting stack radii.
func (a *Animator) Stack() []float64 { return append([]float64(nil), a.stack...) }

// Layers returns the number of layers in the rigid nesting stack. Rigid
// frames draw exactly this many; twist frames vary per frame.
func (a *Animator) Layers() int { return len(a.stack) }

// Size returns the frame edge length in pixels.
func (a *Animator) Size() int { return a.opts.Size() }

// Render renders a complete animation into w.
func Render(ctx context.Context, opts Options, w FrameWriter) error {
	a, err := NewAnimator(opts)
	if err != nil {
		w.Close()
		return err
	}
	return a.Run(ctx, w)
}
