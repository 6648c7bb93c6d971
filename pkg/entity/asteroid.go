package entity

import (
	"github.com/opd-ai/go-lander/pkg/physics"
	"github.com/opd-ai/go-lander/pkg/random"
)

// AsteroidMargin is how far past the playfield an asteroid may drift
// before it turns back
const AsteroidMargin = 30

// Asteroid is a drifting, spinning polygon. It never expires.
type Asteroid struct {
	BaseEntity
	Vertices physics.Polygon // local space, around Position
	Rotation int
	Spin     int

	table *physics.AngleTable
}

// NewAsteroid creates an asteroid from local vertices
func NewAsteroid(table *physics.AngleTable, vertices physics.Polygon, position, velocity physics.Vector2D, spin int) *Asteroid {
	return &Asteroid{
		BaseEntity: BaseEntity{
			Position: position,
			Velocity: velocity,
		},
		Vertices: vertices,
		Spin:     spin,
		table:    table,
	}
}

// GenerateAsteroid builds a random asteroid inside the spawn area starting at origin
func GenerateAsteroid(rng *random.Random, table *physics.AngleTable, origin, area physics.Vector2D) *Asteroid {
	var verts physics.Polygon
	for deg := rng.NextBits(6); deg < 360; deg += rng.NextBits(5) + 30 {
		dist := float64(rng.NextBits(5) + 30)
		a := table.Angle(deg)
		verts = append(verts, physics.Vector2D{X: dist * a.Sin, Y: dist * a.Cos})
	}

	pos := physics.Vector2D{
		X: origin.X + float64(rng.Bounded(int(area.X))),
		Y: origin.Y + float64(rng.Bounded(int(area.Y))),
	}
	vel := physics.Vector2D{
		X: rng.NextFloat() + 0.2,
		Y: rng.NextFloat() + 0.2,
	}
	spin := rng.NextBits(3) - 4

	return NewAsteroid(table, verts, pos, vel, spin)
}

// Step drifts and spins the asteroid. Once it is past the margin and still
// heading outward, the offending velocity axis is reversed.
func (a *Asteroid) Step(area physics.Vector2D) {
	a.Move()
	a.Rotation = physics.NormalizeDegrees(a.Rotation + a.Spin)

	if (a.Position.X < -AsteroidMargin && a.Velocity.X < 0) ||
		(a.Position.X >= area.X+AsteroidMargin && a.Velocity.X > 0) {
		a.Velocity.FlipX()
	}
	if (a.Position.Y < -AsteroidMargin && a.Velocity.Y < 0) ||
		(a.Position.Y >= area.Y+AsteroidMargin && a.Velocity.Y > 0) {
		a.Velocity.FlipY()
	}
}

// Finished is always false
func (a *Asteroid) Finished() bool {
	return false
}

// Shape returns the world space outline
func (a *Asteroid) Shape() physics.Polygon {
	out := make(physics.Polygon, len(a.Vertices))
	for i, v := range a.Vertices {
		out[i] = a.table.Transform(v, a.Rotation, a.Position)
	}
	return out
}

// Hull returns the outline fanned from the centre and closed back on its
// first vertex, which is the form the collision test needs.
func (a *Asteroid) Hull() physics.Polygon {
	shape := a.Shape()
	if len(shape) == 0 {
		return nil
	}
	hull := make(physics.Polygon, 0, len(shape)+2)
	hull = append(hull, a.Position)
	hull = append(hull, shape...)
	return append(hull, shape[0])
}
