package engine

import (
	"github.com/inamate/nestpoly/internal/geometry"
)

// BuildSceneGraph builds the scene of one frame from the nesting stack.
// Layer j takes palette colour j; every layer shares the edge style.
func BuildSceneGraph(opts Options, style Style, stack []float64, frame int) *SceneGraph {
	angle := FrameAngle(frame, opts.Frames, opts.Sides)
	sg := &SceneGraph{
		Frame:      frame,
		Angle:      angle,
		Background: style.Background,
	}

	states := EvaluateLayers(opts.Mode, opts.Sides, stack, opts.MaxPolygons, angle)
	sg.Layers = make([]*LayerNode, len(states))
	for j, st := range states {
		poly := geometry.Polygon{
			Sides:    opts.Sides,
			Radius:   st.Radius,
			Rotation: st.Rotation,
		}
		sg.Layers[j] = &LayerNode{
			Index:       j,
			Polygon:     poly,
			Path:        poly.Path(),
			Fill:        style.Palette.At(j),
			Stroke:      style.Edge,
			StrokeWidth: style.LineWidth,
		}
	}

	return sg
}

// SceneAt evaluates one frame of opts without an Animator or canvas.
func SceneAt(opts Options, frame int) (*SceneGraph, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	style, err := opts.style()
	if err != nil {
		return nil, err
	}
	stack := geometry.BuildStack(opts.Sides, geometry.RadiusMax, opts.MaxPolygons)
	return BuildSceneGraph(opts, style, stack, frame), nil
}
