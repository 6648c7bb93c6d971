package physics

// Ship geometry in local space. Y grows downward, so the nose points up
// at rotation 0.
var (
	ShipNose      = Vector2D{X: 0, Y: -20}
	ShipRearLeft  = Vector2D{X: -10, Y: 10}
	ShipRearRight = Vector2D{X: 10, Y: 10}
	ShipTail      = Vector2D{X: 0, Y: 10}
	ShipLocalHull = Polygon{ShipNose, ShipRearLeft, ShipRearRight}
)

// ShipPoint maps a local ship point into world space
func ShipPoint(t *AngleTable, local Vector2D, position Vector2D, rotation int) Vector2D {
	return t.Transform(local, rotation, position)
}

// ShipHull returns the world space triangle for a ship at position and rotation
func ShipHull(t *AngleTable, position Vector2D, rotation int) Polygon {
	hull := make(Polygon, len(ShipLocalHull))
	for i, p := range ShipLocalHull {
		hull[i] = ShipPoint(t, p, position, rotation)
	}
	return hull
}

// ThrustVector is the velocity change produced by one tick of thrust
func ThrustVector(t *AngleTable, rotation int, power float64) Vector2D {
	a := t.Angle(rotation)
	return Vector2D{X: power * a.Sin, Y: -power * a.Cos}
}
