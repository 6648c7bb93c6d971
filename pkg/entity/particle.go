package entity

import (
	"github.com/opd-ai/go-lander/pkg/physics"
)

// ParticleLife is the number of ticks a particle survives
const ParticleLife = 20

// ParticleColor identifies the palette entry of a particle
type ParticleColor int

const (
	// ColorExhaust is used for thrust exhaust
	ColorExhaust ParticleColor = iota
	// ColorDebris is used for explosion fragments
	ColorDebris
)

// Hex returns the CSS style colour for the particle
func (c ParticleColor) Hex() string {
	switch c {
	case ColorExhaust:
		return "#fcdb03"
	case ColorDebris:
		return "#42a4f5"
	default:
		return "#ffffff"
	}
}

// RGB returns the colour components
func (c ParticleColor) RGB() (r, g, b uint8) {
	switch c {
	case ColorExhaust:
		return 0xfc, 0xdb, 0x03
	case ColorDebris:
		return 0x42, 0xa4, 0xf5
	default:
		return 0xff, 0xff, 0xff
	}
}

func (c ParticleColor) String() string {
	switch c {
	case ColorExhaust:
		return "exhaust"
	case ColorDebris:
		return "debris"
	default:
		return "unknown"
	}
}

// Particle is a short lived visual point
type Particle struct {
	BaseEntity
	Color ParticleColor
	Life  int
}

// NewParticle creates a particle with a full lifetime
func NewParticle(color ParticleColor, position, velocity physics.Vector2D) *Particle {
	return &Particle{
		BaseEntity: BaseEntity{
			Position: position,
			Velocity: velocity,
		},
		Color: color,
		Life:  ParticleLife,
	}
}

// Step moves the particle and consumes one tick of life
func (p *Particle) Step() {
	if p.Life > 0 {
		p.Move()
		p.Life--
	}
}

// Finished reports whether the particle has no life left
func (p *Particle) Finished() bool {
	return p.Life == 0
}

// Alpha is fully opaque for the first half of the lifetime, then fades linearly
func (p *Particle) Alpha() float64 {
	if p.Life > 10 {
		return 1.0
	}
	return float64(p.Life) / 10
}
