package entity

import (
	"github.com/opd-ai/go-lander/pkg/physics"
)

// Wind is a static region that pushes the ship while its hull overlaps it
type Wind struct {
	shape     physics.Polygon
	power     float64
	direction int
	accel     physics.Vector2D
}

// NewWind creates a wind region. The per-tick acceleration is fixed here
// and never recomputed.
func NewWind(shape physics.Polygon, power float64, direction int, table *physics.AngleTable) *Wind {
	a := table.Angle(direction)
	return &Wind{
		shape:     shape,
		power:     power,
		direction: physics.NormalizeDegrees(direction),
		accel:     physics.Vector2D{X: power * a.Cos, Y: power * a.Sin},
	}
}

// Shape returns the region polygon
func (w *Wind) Shape() physics.Polygon {
	return w.shape
}

// Power returns the configured strength
func (w *Wind) Power() float64 {
	return w.power
}

// Direction returns the orientation in degrees, 0 pointing along +x
func (w *Wind) Direction() int {
	return w.direction
}

// Accel returns the velocity change applied per tick
func (w *Wind) Accel() physics.Vector2D {
	return w.accel
}

// Affects reports whether the wind region overlaps hull
func (w *Wind) Affects(hull physics.Polygon) bool {
	return physics.Collide(w.shape, hull)
}

func (w *Wind) Render(r Renderer, phase int) {
	r.RenderWind(w, phase)
}
