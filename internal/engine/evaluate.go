package engine

import (
	"math"

	"github.com/inamate/nestpoly/internal/geometry"
)

// FrameAngle returns the base rotation of a frame in radians.
//
// The animation sweeps one symmetry period of the polygon, 2π/sides, over
// its frames. Frame `frames` of a continuation is therefore identical to
// frame 0 and the encoded video loops without a seam.
func FrameAngle(frame, frames, sides int) float64 {
	if frames <= 0 || sides <= 0 {
		return 0
	}
	return float64(frame) / float64(frames) * 2 * math.Pi / float64(sides)
}

// LayerState is the evaluated size and orientation of one layer.
type LayerState struct {
	Radius   float64
	Rotation float64
}

// twistEpsilon is how close to a whole vertex step a twist angle must be
// to count as no twist at all.
const twistEpsilon = 1e-9

// EvaluateLayers computes the layers of one frame at the given angle.
//
// Rigid layers follow the precomputed stack, so the count is len(stack)
// on every frame. Twist layers are generated outward in: each one is
// turned by angle relative to its parent and sized by TouchingRadius, and
// generation stops at maxPolygons or once a radius falls below
// geometry.MinRadius. A twist angle of a whole vertex step leaves every
// layer coincident with its parent, so that frame has no layers.
func EvaluateLayers(mode Mode, sides int, stack []float64, maxPolygons int, angle float64) []LayerState {
	if len(stack) == 0 {
		return nil
	}

	switch mode {
	case ModeTwist:
		return twistLayers(sides, stack[0], maxPolygons, angle)

	default:
		layers := make([]LayerState, len(stack))
		halfStep := math.Pi / float64(sides)
		for j, r := range stack {
			layers[j] = LayerState{
				Radius:   r,
				Rotation: angle + float64(j)*halfStep,
			}
		}
		return layers
	}
}

func twistLayers(sides int, outer float64, maxPolygons int, angle float64) []LayerState {
	step := 2 * math.Pi / float64(sides)
	phi := math.Mod(angle, step)
	if phi < 0 {
		phi += step
	}
	if phi < twistEpsilon || step-phi < twistEpsilon {
		return nil
	}

	layers := []LayerState{{Radius: outer}}
	for j := 1; j < maxPolygons; j++ {
		r := geometry.TouchingRadius(sides, angle, layers[j-1].Radius)
		if r < geometry.MinRadius {
			break
		}
		layers = append(layers, LayerState{Radius: r, Rotation: float64(j) * angle})
	}
	return layers
}
