// pkg/render/engo/assets.go
package engo

import (
	"image/color"

	"github.com/opd-ai/go-lander/pkg/entity"
)

// Draw order of the sprite layers, lowest first
const (
	zWind float32 = iota
	zWall
	zPad
	zAsteroid
	zShip
	zParticle
	zHUD
)

// Palette holds the colours used for each kind of shape
type Palette struct {
	Background color.RGBA
	Wall       color.RGBA
	Wind       color.RGBA
	WindAlt    color.RGBA
	Pad        color.RGBA
	PadLevel   color.RGBA
	Asteroid   color.RGBA
	Ship       color.RGBA
	Thrust     color.RGBA
	Gauge      color.RGBA
	Fuel       color.RGBA
	Alert      color.RGBA
}

// DefaultPalette returns the standard colour scheme
func DefaultPalette() Palette {
	return Palette{
		Background: color.RGBA{0x05, 0x05, 0x10, 0xff},
		Wall:       color.RGBA{0x80, 0x80, 0x80, 0xff},
		Wind:       color.RGBA{0x20, 0x90, 0x90, 0x50},
		WindAlt:    color.RGBA{0x20, 0x90, 0x90, 0x30},
		Pad:        color.RGBA{0xd0, 0x30, 0x30, 0xff},
		PadLevel:   color.RGBA{0x30, 0xd0, 0x30, 0xff},
		Asteroid:   color.RGBA{0x8b, 0x73, 0x55, 0xff},
		Ship:       color.RGBA{0xff, 0xff, 0xff, 0xff},
		Thrust:     color.RGBA{0xff, 0xe0, 0x80, 0xff},
		Gauge:      color.RGBA{0x30, 0x30, 0x30, 0xc0},
		Fuel:       color.RGBA{0x42, 0xa4, 0xf5, 0xff},
		Alert:      color.RGBA{0xff, 0x30, 0x30, 0xff},
	}
}

// ParticleColor returns the colour of a particle with alpha taken from its
// remaining life
func (p Palette) ParticleColor(particle *entity.Particle) color.RGBA {
	r, g, b := particle.Color.RGB()
	return color.RGBA{R: r, G: g, B: b, A: uint8(255 * particle.Alpha())}
}

// faded scales the alpha of c by 1-fade
func faded(c color.RGBA, fade float64) color.RGBA {
	if fade <= 0 {
		return c
	}
	if fade >= 1 {
		c.A = 0
		return c
	}
	c.A = uint8(float64(c.A) * (1 - fade))
	return c
}
