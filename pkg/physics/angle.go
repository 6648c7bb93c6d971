// pkg/physics/angle.go
package physics

import "math"

// Angle holds the precomputed trigonometry for one whole degree
type Angle struct {
	Radians float64
	Sin     float64
	Cos     float64
}

// AngleTable is a lookup table for integer degrees 0..359.
// It is read-only after construction and safe to share.
type AngleTable struct {
	angles [360]Angle
}

// NewAngleTable builds the table
func NewAngleTable() *AngleTable {
	t := &AngleTable{}
	for deg := range t.angles {
		rad := float64(deg) * math.Pi / 180
		t.angles[deg] = Angle{
			Radians: rad,
			Sin:     math.Sin(rad),
			Cos:     math.Cos(rad),
		}
	}
	return t
}

// NormalizeDegrees maps any integer degree value into [0, 360)
func NormalizeDegrees(deg int) int {
	for deg < 0 {
		deg += 360
	}
	return deg % 360
}

// Angle returns the entry for deg after normalization
func (t *AngleTable) Angle(deg int) Angle {
	return t.angles[NormalizeDegrees(deg)]
}

// Sin returns the sine of deg
func (t *AngleTable) Sin(deg int) float64 {
	return t.Angle(deg).Sin
}

// Cos returns the cosine of deg
func (t *AngleTable) Cos(deg int) float64 {
	return t.Angle(deg).Cos
}

// Radians returns deg in radians
func (t *AngleTable) Radians(deg int) float64 {
	return t.Angle(deg).Radians
}

// Rotate rotates p about the origin by deg
func (t *AngleTable) Rotate(p Vector2D, deg int) Vector2D {
	a := t.Angle(deg)
	return Vector2D{
		X: a.Cos*p.X - a.Sin*p.Y,
		Y: a.Sin*p.X + a.Cos*p.Y,
	}
}

// Transform rotates p by deg and then translates it by origin
func (t *AngleTable) Transform(p Vector2D, deg int, origin Vector2D) Vector2D {
	return t.Rotate(p, deg).Add(origin)
}
