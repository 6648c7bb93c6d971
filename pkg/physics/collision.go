// pkg/physics/collision.go
package physics

import "math"

// Polygon is an ordered list of vertices. Collision treats it as a fan
// of triangles anchored at the first vertex, so it must be a simple
// polygon that is star-shaped from vertex 0.
type Polygon []Vector2D

// Translate returns a copy of the polygon moved by offset
func (p Polygon) Translate(offset Vector2D) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = v.Add(offset)
	}
	return out
}

// Bounds returns the axis aligned box enclosing the polygon
func (p Polygon) Bounds() (min, max Vector2D) {
	if len(p) == 0 {
		return Vector2D{}, Vector2D{}
	}
	min, max = p[0], p[0]
	for _, v := range p[1:] {
		min.X = math.Min(min.X, v.X)
		min.Y = math.Min(min.Y, v.Y)
		max.X = math.Max(max.X, v.X)
		max.Y = math.Max(max.Y, v.Y)
	}
	return min, max
}

// side classifies b against the directed line a1->a2. There is no zero
// case: points on the line report -1.
func side(a1, a2, b Vector2D) float64 {
	v := (a1.Y-a2.Y)*(b.X-a1.X) + (a2.X-a1.X)*(b.Y-a1.Y)
	if v > 0 {
		return 1
	}
	return -1
}

// separates reports whether the edge s1->s2 (with r the remaining vertex
// of its own triangle) has no vertex of the other triangle on r's side.
func separates(s1, s2, r Vector2D, other [3]Vector2D) bool {
	sr := side(s1, s2, r)
	for _, v := range other {
		if sr*side(s1, s2, v) > 0 {
			return false
		}
	}
	return true
}

func trianglesOverlap(t1, t2 [3]Vector2D) bool {
	for i := 0; i < 3; i++ {
		if separates(t1[i], t1[(i+1)%3], t1[(i+2)%3], t2) {
			return false
		}
	}
	for i := 0; i < 3; i++ {
		if separates(t2[i], t2[(i+1)%3], t2[(i+2)%3], t1) {
			return false
		}
	}
	return true
}

// Collide tests two polygons for overlap by triangulating both as fans
// around their first vertex. Polygons with fewer than 3 vertices never
// collide. Two triangles that only share an edge do not collide.
func Collide(a, b Polygon) bool {
	if len(a) < 3 || len(b) < 3 {
		return false
	}
	for i := 1; i < len(a)-1; i++ {
		ta := [3]Vector2D{a[0], a[i], a[i+1]}
		for j := 1; j < len(b)-1; j++ {
			if trianglesOverlap(ta, [3]Vector2D{b[0], b[j], b[j+1]}) {
				return true
			}
		}
	}
	return false
}

// Contains reports whether p lies inside the polygon using the same
// fan triangulation as Collide.
func Contains(poly Polygon, p Vector2D) bool {
	for i := 1; i < len(poly)-1; i++ {
		a, b, c := poly[0], poly[i], poly[i+1]
		d1 := cross(a, b, p)
		d2 := cross(b, c, p)
		d3 := cross(c, a, p)
		neg := d1 < 0 || d2 < 0 || d3 < 0
		pos := d1 > 0 || d2 > 0 || d3 > 0
		if !(neg && pos) {
			return true
		}
	}
	return false
}

func cross(a, b, p Vector2D) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// InsideRect reports whether p lies within [x0,x1]x[y0,y1], edges included
func InsideRect(p Vector2D, x0, y0, x1, y1 float64) bool {
	return p.X >= x0 && p.X <= x1 && p.Y >= y0 && p.Y <= y1
}

// Circle represents a circular collision shape
type Circle struct {
	Center Vector2D
	Radius float64
}

// Apart reports whether the circles are separated by a positive gap
func (c Circle) Apart(other Circle) bool {
	return c.Center.Distance(other.Center) > c.Radius+other.Radius
}

// BoundingCircle returns a circle enclosing every vertex, centred on the
// midpoint of the polygon's bounding box.
func BoundingCircle(p Polygon) Circle {
	min, max := p.Bounds()
	center := min.Add(max).Scale(0.5)
	var r2 float64
	for _, v := range p {
		r2 = math.Max(r2, v.Sub(center).LengthSquared())
	}
	return Circle{Center: center, Radius: math.Sqrt(r2)}
}

// Rect represents a rectangular area
type Rect struct {
	Center Vector2D
	Width  float64
	Height float64
}

// NewRect builds a Rect from its top-left corner and size
func NewRect(x, y, width, height float64) Rect {
	return Rect{
		Center: Vector2D{X: x + width/2, Y: y + height/2},
		Width:  width,
		Height: height,
	}
}

// Contains reports whether point lies in the half-open rectangle
func (r Rect) Contains(point Vector2D) bool {
	return point.X >= r.Center.X-r.Width/2 &&
		point.X < r.Center.X+r.Width/2 &&
		point.Y >= r.Center.Y-r.Height/2 &&
		point.Y < r.Center.Y+r.Height/2
}

// Min returns the top-left corner
func (r Rect) Min() Vector2D {
	return Vector2D{X: r.Center.X - r.Width/2, Y: r.Center.Y - r.Height/2}
}

// Polygon returns the rectangle's corners in clockwise screen order
func (r Rect) Polygon() Polygon {
	m := r.Min()
	return Polygon{
		{X: m.X, Y: m.Y},
		{X: m.X + r.Width, Y: m.Y},
		{X: m.X + r.Width, Y: m.Y + r.Height},
		{X: m.X, Y: m.Y + r.Height},
	}
}
