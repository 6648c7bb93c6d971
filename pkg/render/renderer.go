// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-lander/pkg/entity"
	"github.com/opd-ai/go-lander/pkg/logging"
	"github.com/opd-ai/go-lander/pkg/physics"
)

// NullRenderer is an entity.Renderer that draws nothing and logs each
// frame at debug level. Headless runs use it.
type NullRenderer struct {
	logger *logging.Logger
	frame  frameStats
}

type frameStats struct {
	walls, winds, asteroids, particles int
	ship                               bool
}

// NewNullRenderer creates a new NullRenderer with structured logging.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &NullRenderer{logger: logger}
}

// Clear implements entity.Renderer.
func (d *NullRenderer) Clear() {
	d.frame = frameStats{}
}

// SetViewport implements entity.Renderer.
func (d *NullRenderer) SetViewport(view physics.Rect) {
	d.logger.Debug(context.Background(), "SetViewport called",
		"origin", view.Min(),
		"width", view.Width,
		"height", view.Height,
	)
}

// RenderWall implements entity.Renderer.
func (d *NullRenderer) RenderWall(shape physics.Polygon) {
	d.frame.walls++
}

// RenderWind implements entity.Renderer.
func (d *NullRenderer) RenderWind(wind *entity.Wind, phase int) {
	d.frame.winds++
}

// RenderLandingPad implements entity.Renderer.
func (d *NullRenderer) RenderLandingPad(shape physics.Polygon, level bool) {}

// RenderAsteroid implements entity.Renderer.
func (d *NullRenderer) RenderAsteroid(shape physics.Polygon) {
	d.frame.asteroids++
}

// RenderShip implements entity.Renderer.
func (d *NullRenderer) RenderShip(shape physics.Polygon, thrusting bool) {
	d.frame.ship = true
}

// RenderParticle implements entity.Renderer.
func (d *NullRenderer) RenderParticle(particle *entity.Particle) {
	d.frame.particles++
}

// RenderHUD implements entity.Renderer.
func (d *NullRenderer) RenderHUD(hud entity.HUD) {
	d.logger.Debug(context.Background(), "RenderHUD called",
		"fuel", hud.Fuel,
		"level", hud.Level,
		"landed", hud.Landed,
		"collided", hud.Collided,
		"rotation", hud.Rotation,
	)
}

// Present implements entity.Renderer.
func (d *NullRenderer) Present() {
	d.logger.Debug(context.Background(), "Present called",
		"walls", d.frame.walls,
		"winds", d.frame.winds,
		"asteroids", d.frame.asteroids,
		"particles", d.frame.particles,
		"ship", d.frame.ship,
	)
}
