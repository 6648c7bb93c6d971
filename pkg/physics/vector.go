// pkg/physics/vector.go
package physics

import (
	"log/slog"
	"math"
)

// Vector2D represents a 2D vector with x and y components
type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LogValue renders the vector as an {x, y} group in structured logs
func (v Vector2D) LogValue() slog.Value {
	return slog.GroupValue(slog.Float64("x", v.X), slog.Float64("y", v.Y))
}

// Add returns the sum of two vectors
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{
		X: v.X + other.X,
		Y: v.Y + other.Y,
	}
}

// Sub returns the difference between two vectors
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{
		X: v.X - other.X,
		Y: v.Y - other.Y,
	}
}

// Scale multiplies the vector by a scalar value
func (v Vector2D) Scale(factor float64) Vector2D {
	return Vector2D{
		X: v.X * factor,
		Y: v.Y * factor,
	}
}

// Accumulate adds other to v in place
func (v *Vector2D) Accumulate(other Vector2D) {
	v.X += other.X
	v.Y += other.Y
}

// Multiply scales v in place
func (v *Vector2D) Multiply(factor float64) {
	v.X *= factor
	v.Y *= factor
}

// FlipX negates the x component in place
func (v *Vector2D) FlipX() {
	v.X = -v.X
}

// FlipY negates the y component in place
func (v *Vector2D) FlipY() {
	v.Y = -v.Y
}

// IsZero reports whether both components are exactly zero
func (v Vector2D) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Length returns the magnitude of the vector
func (v Vector2D) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Distance returns the distance between two vectors
func (v Vector2D) Distance(other Vector2D) float64 {
	return v.Sub(other).Length()
}

// LengthSquared returns magnitude squared (optimization for comparisons)
func (v Vector2D) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}
