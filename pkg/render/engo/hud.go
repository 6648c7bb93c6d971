// pkg/render/engo/hud.go
package engo

import (
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-lander/pkg/entity"
)

// HUD layout in window pixels
const (
	hudMargin     = 10
	gaugeWidth    = 120
	gaugeHeight   = 10
	indicatorSize = 10
	indicatorGap  = 6
)

// HUDSystem draws the heads-up display as plain geometry: a fuel gauge
// and indicator lights for level, landed and destroyed.
type HUDSystem struct {
	palette Palette
	hud     entity.HUD

	gauge     *sprite
	fuel      *sprite
	level     *sprite
	landed    *sprite
	destroyed *sprite
}

// NewHUDSystem creates the HUD and adds its sprites to sink
func NewHUDSystem(sink SpriteSink) *HUDSystem {
	hud := &HUDSystem{palette: DefaultPalette()}

	y := float32(hudMargin)
	hud.gauge = hud.newSprite(sink, common.Rectangle{}, hudMargin, y, gaugeWidth, gaugeHeight)
	hud.fuel = hud.newSprite(sink, common.Rectangle{}, hudMargin, y, gaugeWidth, gaugeHeight)

	x := float32(hudMargin + gaugeWidth + indicatorGap)
	hud.level = hud.newSprite(sink, common.Circle{}, x, y, indicatorSize, indicatorSize)
	x += indicatorSize + indicatorGap
	hud.landed = hud.newSprite(sink, common.Circle{}, x, y, indicatorSize, indicatorSize)
	x += indicatorSize + indicatorGap
	hud.destroyed = hud.newSprite(sink, common.Circle{}, x, y, indicatorSize, indicatorSize)

	hud.gauge.Color = hud.palette.Gauge
	hud.SetHUD(entity.HUD{})
	return hud
}

func (hud *HUDSystem) newSprite(sink SpriteSink, d common.Drawable, x, y, w, h float32) *sprite {
	s := &sprite{BasicEntity: ecs.NewBasic()}
	s.Drawable = d
	s.Scale = engo.Point{X: 1, Y: 1}
	s.Position = engo.Point{X: x, Y: y}
	s.Width = w
	s.Height = h
	s.SetZIndex(zHUD)
	sink.Add(&s.BasicEntity, &s.RenderComponent, &s.SpaceComponent)
	return s
}

// Remove satisfies the ecs.System interface
func (hud *HUDSystem) Remove(basic ecs.BasicEntity) {}

// Update satisfies the ecs.System interface. The sprites change only
// when SetHUD is called.
func (hud *HUDSystem) Update(dt float32) {}

// SetHUD updates the display from the engine's status
func (hud *HUDSystem) SetHUD(status entity.HUD) {
	hud.hud = status

	fuelColor := hud.palette.Fuel
	if status.FuelLow {
		fuelColor = hud.palette.Alert
	}
	frac := max(0, min(1, status.FuelFraction))
	hud.fuel.Width = float32(frac * gaugeWidth)
	hud.fuel.Color = faded(fuelColor, status.Fade)

	hud.level.Color = hud.light(status.Level, hud.palette.PadLevel, status.Fade)
	hud.landed.Color = hud.light(status.Landed, hud.palette.PadLevel, status.Fade)
	hud.destroyed.Color = hud.light(status.Collided, hud.palette.Alert, status.Fade)
	hud.gauge.Color = faded(hud.palette.Gauge, status.Fade)
}

// light returns on when lit and a dim grey otherwise
func (hud *HUDSystem) light(lit bool, on color.RGBA, fade float64) color.RGBA {
	if !lit {
		on = hud.palette.Gauge
	}
	return faded(on, fade)
}

// Status returns the last HUD passed to SetHUD
func (hud *HUDSystem) Status() entity.HUD {
	return hud.hud
}
