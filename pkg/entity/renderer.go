package entity

import (
	"github.com/opd-ai/go-lander/pkg/physics"
)

// HUD is the per-frame status a renderer may draw on top of the world
type HUD struct {
	Fuel         int
	FuelFraction float64
	FuelLow      bool
	Level        bool
	Landed       bool
	Collided     bool
	Finished     bool
	Paused       bool
	Velocity     physics.Vector2D
	Rotation     int
	Fade         float64
}

// Renderer handles drawing one frame of the simulation.
// Shapes are in world coordinates; SetViewport tells the renderer which
// part of the world is visible.
type Renderer interface {
	Clear()
	SetViewport(view physics.Rect)
	RenderWall(shape physics.Polygon)
	RenderWind(wind *Wind, phase int)
	RenderLandingPad(shape physics.Polygon, level bool)
	RenderAsteroid(shape physics.Polygon)
	RenderShip(shape physics.Polygon, thrusting bool)
	RenderParticle(particle *Particle)
	RenderHUD(hud HUD)
	Present()
}
