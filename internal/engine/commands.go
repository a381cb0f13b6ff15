package engine

import (
	"encoding/json"
	"fmt"
	"image/color"

	"honnef.co/go/curve"

	"github.com/inamate/nestpoly/internal/palette"
	"github.com/inamate/nestpoly/internal/raster"
)

// Draw operations.
const (
	OpClear  = "clear"
	OpFill   = "fill"
	OpStroke = "stroke"
)

// DrawCommand is a single drawing operation. A list of them can be
// executed on a raster.Canvas or serialised for a browser canvas.
type DrawCommand struct {
	Op     string       `json:"op"`
	Layer  int          `json:"layer"`            // -1 for whole-canvas operations
	Points [][2]float64 `json:"points,omitempty"` // polygon vertices in data space
	Color  string       `json:"color"`            // "#rrggbb"
	Width  float64      `json:"width,omitempty"`  // stroke width in pixels

	rgba color.RGBA
}

// CompileDrawCommands generates a draw command buffer from a scene graph.
// Commands are in painter's order: the background, then each layer from
// the outermost inwards, fill before outline.
func CompileDrawCommands(sg *SceneGraph) []DrawCommand {
	if sg == nil {
		return nil
	}

	commands := make([]DrawCommand, 0, 1+2*len(sg.Layers))
	commands = append(commands, DrawCommand{
		Op:    OpClear,
		Layer: -1,
		Color: palette.Hex(sg.Background),
		rgba:  sg.Background,
	})

	for _, node := range sg.Layers {
		pts := node.Vertices()
		points := make([][2]float64, len(pts))
		for i, p := range pts {
			points[i] = [2]float64{p.X, p.Y}
		}

		commands = append(commands, DrawCommand{
			Op:     OpFill,
			Layer:  node.Index,
			Points: points,
			Color:  palette.Hex(node.Fill),
			rgba:   node.Fill,
		})
		if node.StrokeWidth > 0 {
			commands = append(commands, DrawCommand{
				Op:     OpStroke,
				Layer:  node.Index,
				Points: points,
				Color:  palette.Hex(node.Stroke),
				Width:  node.StrokeWidth,
				rgba:   node.Stroke,
			})
		}
	}

	return commands
}

// Execute runs commands against a canvas. Data coordinates are mapped
// onto the canvas with raster.Viewport.
func Execute(commands []DrawCommand, c *raster.Canvas) error {
	b := c.Bounds()
	viewport := raster.Viewport(b.Dx(), b.Dy())

	for i, cmd := range commands {
		var err error
		switch cmd.Op {
		case OpClear:
			err = c.Clear(cmd.rgba)
		case OpFill:
			err = c.FillPath(commandPath(cmd.Points, viewport), cmd.rgba)
		case OpStroke:
			err = c.StrokePath(commandPath(cmd.Points, viewport), cmd.Width, cmd.rgba)
		default:
			err = fmt.Errorf("unknown draw op %q", cmd.Op)
		}
		if err != nil {
			return fmt.Errorf("draw command %d (%s): %w", i, cmd.Op, err)
		}
	}
	return nil
}

// commandPath builds a closed path in pixel space.
func commandPath(points [][2]float64, aff curve.Affine) curve.BezPath {
	if len(points) == 0 {
		return nil
	}
	path := make(curve.BezPath, 0, len(points)+1)
	for i, p := range points {
		pt := curve.Pt(p[0], p[1]).Transform(aff)
		if i == 0 {
			path.MoveTo(pt)
		} else {
			path.LineTo(pt)
		}
	}
	path.ClosePath()
	return path
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
