// pkg/render/engo/renderer.go
package engo

import (
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-lander/pkg/entity"
	"github.com/opd-ai/go-lander/pkg/physics"
)

// particleSize is the on-screen diameter of a particle in pixels
const particleSize = 3

// SpriteSink receives newly created sprites. *common.RenderSystem
// satisfies it.
type SpriteSink interface {
	Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent)
}

// sprite is one drawable slot owned by the renderer
type sprite struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent

	base color.RGBA
}

// EngoRenderer implements entity.Renderer on top of the Engo render
// system. Shapes are drawn as triangle fans, matching the triangulation
// used for collisions. Sprites are pooled and reused from frame to frame;
// slots not drawn in a frame are hidden.
type EngoRenderer struct {
	sink    SpriteSink
	camera  *CameraSystem
	hud     *HUDSystem
	palette Palette

	sprites []*sprite
	used    int
	fade    float64
}

// NewEngoRenderer creates a renderer that adds its sprites to sink and
// positions them through camera
func NewEngoRenderer(sink SpriteSink, camera *CameraSystem, hud *HUDSystem) *EngoRenderer {
	return &EngoRenderer{
		sink:    sink,
		camera:  camera,
		hud:     hud,
		palette: DefaultPalette(),
	}
}

// Clear implements entity.Renderer
func (r *EngoRenderer) Clear() {
	r.used = 0
}

// SetViewport implements entity.Renderer
func (r *EngoRenderer) SetViewport(view physics.Rect) {
	r.camera.SetView(view)
}

// RenderWall implements entity.Renderer
func (r *EngoRenderer) RenderWall(shape physics.Polygon) {
	r.drawPolygon(shape, r.palette.Wall, zWall)
}

// RenderWind implements entity.Renderer. The region shimmers between two
// shades with the animation phase.
func (r *EngoRenderer) RenderWind(wind *entity.Wind, phase int) {
	c := r.palette.Wind
	if phase%2 == 1 {
		c = r.palette.WindAlt
	}
	r.drawPolygon(wind.Shape(), c, zWind)
}

// RenderLandingPad implements entity.Renderer
func (r *EngoRenderer) RenderLandingPad(shape physics.Polygon, level bool) {
	c := r.palette.Pad
	if level {
		c = r.palette.PadLevel
	}
	r.drawPolygon(shape, c, zPad)
}

// RenderAsteroid implements entity.Renderer
func (r *EngoRenderer) RenderAsteroid(shape physics.Polygon) {
	r.drawPolygon(shape, r.palette.Asteroid, zAsteroid)
}

// RenderShip implements entity.Renderer
func (r *EngoRenderer) RenderShip(shape physics.Polygon, thrusting bool) {
	c := r.palette.Ship
	if thrusting {
		c = r.palette.Thrust
	}
	r.drawPolygon(shape, c, zShip)
}

// RenderParticle implements entity.Renderer
func (r *EngoRenderer) RenderParticle(particle *entity.Particle) {
	s := r.acquire(r.palette.ParticleColor(particle), zParticle)
	pos := r.camera.WorldToScreen(particle.Position)
	s.Drawable = common.Circle{}
	s.Position = engo.Point{X: float32(pos.X) - particleSize/2.0, Y: float32(pos.Y) - particleSize/2.0}
	s.Width = particleSize
	s.Height = particleSize
}

// RenderHUD implements entity.Renderer
func (r *EngoRenderer) RenderHUD(hud entity.HUD) {
	r.fade = hud.Fade
	if r.hud != nil {
		r.hud.SetHUD(hud)
	}
}

// Present implements entity.Renderer. It applies the end of session fade
// and hides the slots left over from busier frames.
func (r *EngoRenderer) Present() {
	for i, s := range r.sprites {
		if i >= r.used {
			s.Hidden = true
			continue
		}
		s.Color = faded(s.base, r.fade)
	}
}

// acquire returns the next free sprite, creating one when the pool is
// exhausted
func (r *EngoRenderer) acquire(c color.RGBA, z float32) *sprite {
	if r.used == len(r.sprites) {
		s := &sprite{BasicEntity: ecs.NewBasic()}
		s.Scale = engo.Point{X: 1, Y: 1}
		r.sprites = append(r.sprites, s)
		r.sink.Add(&s.BasicEntity, &s.RenderComponent, &s.SpaceComponent)
	}
	s := r.sprites[r.used]
	r.used++

	s.Hidden = false
	s.base = c
	s.Color = c
	s.SetZIndex(z)
	return s
}

func (r *EngoRenderer) drawPolygon(poly physics.Polygon, c color.RGBA, z float32) {
	if len(poly) < 3 {
		return
	}
	lo, hi := poly.Bounds()
	screenLo := r.camera.WorldToScreen(lo)
	screenHi := r.camera.WorldToScreen(hi)

	s := r.acquire(c, z)
	s.Drawable = common.ComplexTriangles{Points: fanTriangles(poly, lo, hi)}
	s.Position = engo.Point{X: float32(screenLo.X), Y: float32(screenLo.Y)}
	s.Width = float32(screenHi.X - screenLo.X)
	s.Height = float32(screenHi.Y - screenLo.Y)
}

// fanTriangles splits poly into triangles around its first vertex. Points
// are relative to the bounding box [lo,hi], as ComplexTriangles expects.
func fanTriangles(poly physics.Polygon, lo, hi physics.Vector2D) []engo.Point {
	rel := func(v physics.Vector2D) engo.Point {
		var p engo.Point
		if w := hi.X - lo.X; w > 0 {
			p.X = float32((v.X - lo.X) / w)
		}
		if h := hi.Y - lo.Y; h > 0 {
			p.Y = float32((v.Y - lo.Y) / h)
		}
		return p
	}

	points := make([]engo.Point, 0, 3*(len(poly)-2))
	for i := 1; i < len(poly)-1; i++ {
		points = append(points, rel(poly[0]), rel(poly[i]), rel(poly[i+1]))
	}
	return points
}
