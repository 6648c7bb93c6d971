// pkg/entity/entity.go
package entity

import (
	"github.com/opd-ai/go-lander/pkg/physics"
)

// Entity is anything the engine advances once per tick and drops when finished
type Entity interface {
	GetPosition() physics.Vector2D
	Finished() bool
	Render(r Renderer)
}

// BaseEntity contains the kinematic state shared by moving entities
type BaseEntity struct {
	Position physics.Vector2D
	Velocity physics.Vector2D
}

// GetPosition returns the entity's position
func (e *BaseEntity) GetPosition() physics.Vector2D {
	return e.Position
}

// Move integrates position by one tick of velocity
func (e *BaseEntity) Move() {
	e.Position.Accumulate(e.Velocity)
}

func (p *Particle) Render(r Renderer) {
	r.RenderParticle(p)
}

func (a *Asteroid) Render(r Renderer) {
	r.RenderAsteroid(a.Shape())
}
