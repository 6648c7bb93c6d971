package render

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-lander/pkg/entity"
	"github.com/opd-ai/go-lander/pkg/logging"
	"github.com/opd-ai/go-lander/pkg/physics"
)

// Glyphs used by the terminal renderer
const (
	GlyphWall     = '█'
	GlyphAsteroid = '#'
	GlyphShip     = 'A'
	GlyphPad      = '='
	GlyphExhaust  = '*'
	GlyphDebris   = '.'
)

var (
	styleWall     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleAsteroid = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleShip     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleThrust   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	stylePadLevel = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	stylePad      = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleWind     = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleHUD      = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleHUDAlert = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// TerminalRenderer rasterizes the world onto a tcell screen. The visible
// window is scaled to fill every row but the last, which holds the HUD.
type TerminalRenderer struct {
	screen tcell.Screen
	logger *logging.Logger

	width  int
	height int // rows available to the world
	view   physics.Rect
	scaleX float64
	scaleY float64
	culled int // particles skipped this frame
}

// NewTerminalRenderer creates a renderer drawing on an initialized screen
func NewTerminalRenderer(screen tcell.Screen, logger *logging.Logger) *TerminalRenderer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	r := &TerminalRenderer{
		screen: screen,
		logger: logger,
	}
	r.resize()
	return r
}

func (r *TerminalRenderer) resize() {
	w, h := r.screen.Size()
	r.width = max(w, 1)
	r.height = max(h-1, 1)
}

// Clear implements entity.Renderer
func (r *TerminalRenderer) Clear() {
	r.resize()
	r.culled = 0
	r.screen.Clear()
}

// SetViewport implements entity.Renderer
func (r *TerminalRenderer) SetViewport(view physics.Rect) {
	r.view = view
	r.scaleX = view.Width / float64(r.width)
	r.scaleY = view.Height / float64(r.height)
}

// worldToScreen converts world coordinates to a cell
func (r *TerminalRenderer) worldToScreen(p physics.Vector2D) (int, int) {
	m := r.view.Min()
	x := int(math.Floor((p.X - m.X) / r.scaleX))
	y := int(math.Floor((p.Y - m.Y) / r.scaleY))
	return x, y
}

// cellCenter converts a cell to the world point at its centre
func (r *TerminalRenderer) cellCenter(x, y int) physics.Vector2D {
	m := r.view.Min()
	return physics.Vector2D{
		X: m.X + (float64(x)+0.5)*r.scaleX,
		Y: m.Y + (float64(y)+0.5)*r.scaleY,
	}
}

func (r *TerminalRenderer) inWorld(x, y int) bool {
	return x >= 0 && x < r.width && y >= 0 && y < r.height
}

func (r *TerminalRenderer) set(x, y int, ch rune, style tcell.Style) {
	if r.inWorld(x, y) {
		r.screen.SetContent(x, y, ch, nil, style)
	}
}

// fillPolygon sets every cell whose centre lies inside poly, then traces
// the outline so shapes thinner than a cell still show up
func (r *TerminalRenderer) fillPolygon(poly physics.Polygon, glyph func(x, y int) (rune, bool), style tcell.Style) {
	if len(poly) == 0 || r.scaleX <= 0 || r.scaleY <= 0 {
		return
	}
	lo, hi := poly.Bounds()
	x0, y0 := r.worldToScreen(lo)
	x1, y1 := r.worldToScreen(hi)
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, r.width-1), min(y1, r.height-1)

	plot := func(x, y int) {
		if ch, ok := glyph(x, y); ok {
			r.set(x, y, ch, style)
		}
	}

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if physics.Contains(poly, r.cellCenter(x, y)) {
				plot(x, y)
			}
		}
	}

	for i, a := range poly {
		b := poly[(i+1)%len(poly)]
		ax, ay := r.worldToScreen(a)
		bx, by := r.worldToScreen(b)
		n := max(abs(bx-ax), abs(by-ay), 1)
		for s := 0; s <= n; s++ {
			t := float64(s) / float64(n)
			plot(ax+int(math.Round(t*float64(bx-ax))), ay+int(math.Round(t*float64(by-ay))))
		}
	}
}

func solid(ch rune) func(x, y int) (rune, bool) {
	return func(int, int) (rune, bool) { return ch, true }
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// RenderWall implements entity.Renderer
func (r *TerminalRenderer) RenderWall(shape physics.Polygon) {
	r.fillPolygon(shape, solid(GlyphWall), styleWall)
}

// windArrow picks an arrow for the closest of the four axis directions
func windArrow(direction int) rune {
	switch ((direction + 45) % 360) / 90 {
	case 0:
		return '>'
	case 1:
		return 'v'
	case 2:
		return '<'
	default:
		return '^'
	}
}

// RenderWind implements entity.Renderer. Arrows occupy alternating cells and
// swap with the animation phase.
func (r *TerminalRenderer) RenderWind(wind *entity.Wind, phase int) {
	arrow := windArrow(wind.Direction())
	r.fillPolygon(wind.Shape(), func(x, y int) (rune, bool) {
		return arrow, (x+y+phase)%2 == 0
	}, styleWind)
}

// RenderLandingPad implements entity.Renderer
func (r *TerminalRenderer) RenderLandingPad(shape physics.Polygon, level bool) {
	style := stylePad
	if level {
		style = stylePadLevel
	}
	r.fillPolygon(shape, solid(GlyphPad), style)
}

// RenderAsteroid implements entity.Renderer
func (r *TerminalRenderer) RenderAsteroid(shape physics.Polygon) {
	r.fillPolygon(shape, solid(GlyphAsteroid), styleAsteroid)
}

// RenderShip implements entity.Renderer
func (r *TerminalRenderer) RenderShip(shape physics.Polygon, thrusting bool) {
	style := styleShip
	if thrusting {
		style = styleThrust
	}
	r.fillPolygon(shape, solid(GlyphShip), style)
}

// RenderParticle implements entity.Renderer. Particles fade towards black
// over their last ticks; those outside the viewport are skipped.
func (r *TerminalRenderer) RenderParticle(particle *entity.Particle) {
	if !r.view.Contains(particle.Position) {
		r.culled++
		return
	}
	x, y := r.worldToScreen(particle.Position)
	red, green, blue := particle.Color.RGB()
	a := particle.Alpha()
	color := tcell.NewRGBColor(
		int32(float64(red)*a),
		int32(float64(green)*a),
		int32(float64(blue)*a),
	)
	glyph := GlyphExhaust
	if particle.Color == entity.ColorDebris {
		glyph = GlyphDebris
	}
	r.set(x, y, glyph, tcell.StyleDefault.Foreground(color))
}

// fuelGauge draws a fixed width bar for fraction in [0,1]
func fuelGauge(fraction float64, width int) string {
	filled := int(math.Round(math.Max(0, math.Min(1, fraction)) * float64(width)))
	return "[" + strings.Repeat("|", filled) + strings.Repeat(" ", width-filled) + "]"
}

// hudText formats the status line
func hudText(hud entity.HUD) string {
	status := "FLYING"
	switch {
	case hud.Paused:
		status = "PAUSED"
	case hud.Landed:
		status = "LANDED"
	case hud.Collided:
		status = "CRASHED"
	case hud.Finished:
		status = "STUCK"
	case hud.Level:
		status = "LEVEL"
	}
	return fmt.Sprintf("FUEL %s %4d  V %+5.2f %+5.2f  ROT %3d  %s",
		fuelGauge(hud.FuelFraction, 10), hud.Fuel,
		hud.Velocity.X, hud.Velocity.Y, hud.Rotation, status)
}

// RenderHUD implements entity.Renderer
func (r *TerminalRenderer) RenderHUD(hud entity.HUD) {
	style := styleHUD
	if hud.FuelLow || hud.Collided {
		style = styleHUDAlert
	}
	if hud.Fade > 0 {
		style = style.Dim(true)
	}
	row := r.height
	x := 0
	for _, ch := range hudText(hud) {
		if x >= r.width {
			break
		}
		r.screen.SetContent(x, row, ch, nil, style)
		x++
	}
}

// Present implements entity.Renderer
func (r *TerminalRenderer) Present() {
	r.screen.Show()
	r.logger.Debug(context.Background(), "frame presented",
		"columns", r.width,
		"rows", r.height,
		"culled_particles", r.culled,
	)
}
