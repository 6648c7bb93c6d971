package entity

import (
	"fmt"
	"strings"

	"github.com/opd-ai/go-lander/pkg/physics"
)

// WallKind selects how a wall moves with the animation phase
type WallKind string

const (
	WallStatic      WallKind = "static"
	WallOscillating WallKind = "oscillating"
	WallRotating    WallKind = "rotating"
)

// DegreesPerPhase is the angle advanced per step of the 30-step counter,
// so a wall with Speed 1 completes one cycle per counter period.
const DegreesPerPhase = 12

// Wall is an obstacle polygon. Static walls are used as given; animated
// walls are recomputed from the engine's step counter every tick.
type Wall struct {
	Kind      WallKind         `json:"kind,omitempty"`
	Points    physics.Polygon  `json:"points"`
	Amplitude float64          `json:"amplitude,omitempty"`
	Pivot     physics.Vector2D `json:"pivot,omitempty"`
	Speed     int              `json:"speed,omitempty"`
}

// ParseWallKind accepts the JSON names, case insensitive. Empty means static.
func ParseWallKind(s string) (WallKind, error) {
	switch WallKind(strings.ToLower(s)) {
	case "", WallStatic:
		return WallStatic, nil
	case WallOscillating:
		return WallOscillating, nil
	case WallRotating:
		return WallRotating, nil
	default:
		return "", fmt.Errorf("unknown wall kind %q", s)
	}
}

// Animated reports whether the wall changes with the step counter
func (w *Wall) Animated() bool {
	return w.Kind == WallOscillating || w.Kind == WallRotating
}

// Shape returns the wall outline for the given step counter value
func (w *Wall) Shape(step int, table *physics.AngleTable) physics.Polygon {
	deg := step * DegreesPerPhase * w.Speed
	switch w.Kind {
	case WallOscillating:
		return w.Points.Translate(physics.Vector2D{X: w.Amplitude * table.Cos(deg)})
	case WallRotating:
		out := make(physics.Polygon, len(w.Points))
		for i, p := range w.Points {
			out[i] = table.Transform(p.Sub(w.Pivot), deg, w.Pivot)
		}
		return out
	default:
		return w.Points
	}
}

func (w *Wall) Render(r Renderer, step int, table *physics.AngleTable) {
	r.RenderWall(w.Shape(step, table))
}
