// pkg/config/levels.go
package config

import (
	"fmt"
	"strings"

	"github.com/opd-ai/go-lander/pkg/entity"
	"github.com/opd-ai/go-lander/pkg/physics"
	"github.com/opd-ai/go-lander/pkg/random"
)

// Map identifies a built-in level layout
type Map int

const (
	MapSimple Map = iota
	MapCave
	MapWindyPillars
	MapTunnel
	MapShifted
	MapChoice
	MapUp
	MapHuge
	mapCount
)

var mapNames = [...]string{
	MapSimple:       "SIMPLE",
	MapCave:         "CAVE",
	MapWindyPillars: "WINDY PILLARS",
	MapTunnel:       "TUNNEL",
	MapShifted:      "SHIFTED",
	MapChoice:       "CHOICE",
	MapUp:           "UP",
	MapHuge:         "HUGE",
}

func (m Map) String() string {
	if m < 0 || m >= mapCount {
		return mapNames[MapSimple]
	}
	return mapNames[m]
}

// ParseMap matches a map name, ignoring case, spaces, dashes and underscores
func ParseMap(name string) (Map, error) {
	key := normalizeName(name)
	for m := MapSimple; m < mapCount; m++ {
		if normalizeName(mapNames[m]) == key {
			return m, nil
		}
	}
	return MapSimple, fmt.Errorf("unknown map %q", name)
}

func normalizeName(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToUpper(s))
}

// Maps lists every built-in map in menu order
func Maps() []Map {
	out := make([]Map, 0, mapCount)
	for m := MapSimple; m < mapCount; m++ {
		out = append(out, m)
	}
	return out
}

// Settings are the menu choices a level is built from. Each field is an
// index into the corresponding difficulty table.
type Settings struct {
	Map       Map `json:"map"`
	Asteroids int `json:"asteroids"`
	Gravity   int `json:"gravity"`
	Friction  int `json:"friction"`
	Fuel      int `json:"fuel"`
	Thrust    int `json:"thrust"`
}

// Option counts for each setting
const (
	AsteroidLevels = 5
	GravityLevels  = 5
	FrictionLevels = 5
	FuelLevels     = 4
	ThrustLevels   = 4
)

// DefaultSettings returns the menu defaults
func DefaultSettings() Settings {
	return Settings{
		Map:       MapSimple,
		Asteroids: 2,
		Gravity:   2,
		Friction:  1,
		Fuel:      2,
		Thrust:    1,
	}
}

// RandomSettings draws every option uniformly
func RandomSettings(rng *random.Random) Settings {
	return Settings{
		Map:       Map(choose(rng, int(mapCount))),
		Gravity:   choose(rng, GravityLevels),
		Friction:  choose(rng, FrictionLevels),
		Asteroids: choose(rng, AsteroidLevels),
		Fuel:      choose(rng, FuelLevels),
		Thrust:    choose(rng, ThrustLevels),
	}
}

// choose maps Bounded onto [0, n); Bounded itself may return n
func choose(rng *random.Random, n int) int {
	return min(rng.Bounded(n), n-1)
}

// NextMap and the other Next methods cycle one option, wrapping around
func (s *Settings) NextMap()       { s.Map = (s.Map + 1) % mapCount }
func (s *Settings) NextAsteroids() { s.Asteroids = (s.Asteroids + 1) % AsteroidLevels }
func (s *Settings) NextGravity()   { s.Gravity = (s.Gravity + 1) % GravityLevels }
func (s *Settings) NextFriction()  { s.Friction = (s.Friction + 1) % FrictionLevels }
func (s *Settings) NextFuel()      { s.Fuel = (s.Fuel + 1) % FuelLevels }
func (s *Settings) NextThrust()    { s.Thrust = (s.Thrust + 1) % ThrustLevels }

// Labels returns the human readable value of each option in menu order
func (s Settings) Labels() []string {
	return []string{
		"Map: " + s.Map.String(),
		"Asteroids: " + pick(s.Asteroids, 2, "OFF", "ONE", "FEW", "SOME", "A LOT"),
		"Gravity: " + pick(s.Gravity, 2, "OFF", "MOON", "NORMAL", "HEAVY", "INSANE"),
		"Friction: " + pick(s.Friction, 1, "SPACE", "AIR", "WATER", "OIL", "MERCURY"),
		"Fuel: " + pick(s.Fuel, 2, "PANIC", "LOW", "AVERAGE", "ENOUGH"),
		"Engine: " + pick(s.Thrust, 1, "POOR", "NORMAL", "GOOD", "AFTERBURN"),
	}
}

func pick[T any](i, fallback int, values ...T) T {
	if i < 0 || i >= len(values) {
		return values[fallback]
	}
	return values[i]
}

func (s Settings) asteroidCount() int { return pick(s.Asteroids, 2, 0, 1, 3, 5, 7) }
func (s Settings) fuel() int          { return pick(s.Fuel, 2, 150, 300, 500, 700) }
func (s Settings) fuelIncreased() int { return pick(s.Fuel, 2, 300, 500, 750, 1000) }
func (s Settings) friction() float64  { return pick(s.Friction, 1, 1.0, 0.996, 0.98, 0.97, 0.93) }
func (s Settings) thrust() float64    { return pick(s.Thrust, 1, 0.10, 0.12, 0.14, 0.24) }
func (s Settings) gravity() float64   { return pick(s.Gravity, 2, 0.0, 0.3, 1.0, 1.5, 1.8) }

// Build turns the settings into a complete configuration
func (s Settings) Build() *GameConfig {
	switch s.Map {
	case MapCave:
		return s.cave()
	case MapWindyPillars:
		return s.windyPillars()
	case MapTunnel:
		return s.tunnel()
	case MapShifted:
		return s.shifted()
	case MapChoice:
		return s.choice()
	case MapUp:
		return s.up()
	case MapHuge:
		return s.huge()
	default:
		return s.simple()
	}
}

// pts builds a polygon from x,y pairs
func pts(xy ...float64) physics.Polygon {
	out := make(physics.Polygon, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, physics.Vector2D{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func rect(x0, y0, x1, y1 float64) physics.Polygon {
	return physics.NewRect(x0, y0, x1-x0, y1-y0).Polygon()
}

func static(polys ...physics.Polygon) []entity.Wall {
	out := make([]entity.Wall, len(polys))
	for i, p := range polys {
		out[i] = entity.Wall{Kind: entity.WallStatic, Points: p}
	}
	return out
}

// base fills the fields every map shares
func (s Settings) base(w, h float64, increasedFuel bool) *GameConfig {
	fuel := s.fuel()
	full := max(fuel, 500)
	if increasedFuel {
		fuel = s.fuelIncreased()
		full = max(fuel, 750)
	}
	return &GameConfig{
		Name:     s.Map.String(),
		Area:     physics.Vector2D{X: w, Y: h},
		Leveling: LevelingConfig{Rotation: 15, SpeedX: 3.5, SpeedY: 2.5},
		Asteroids: AsteroidConfig{
			Count: s.asteroidCount(),
		},
		InitialFuel: fuel,
		FullFuel:    full,
		ThrustPower: s.thrust(),
		Gravity:     physics.Vector2D{X: 0, Y: 0.06 * s.gravity()},
		Friction:    s.friction(),
	}
}

func (s Settings) simple() *GameConfig {
	w, h := 320.0, 640.0
	c := s.base(w, h, false)
	c.ShipPos = physics.Vector2D{X: 160, Y: 50}
	c.Target = TargetConfig{X0: 100, X1: 220, Y: 600}
	c.Asteroids.Origin = physics.Vector2D{X: 0, Y: 120}
	c.Asteroids.Area = physics.Vector2D{X: w, Y: h - 120}
	return c
}

func (s Settings) up() *GameConfig {
	w, h := 360.0, 700.0
	c := s.base(w, h, true)
	c.ShipPos = physics.Vector2D{X: 180, Y: 650}
	c.Target = TargetConfig{X0: 150, X1: 210, Y: 100}
	c.Asteroids.Origin = physics.Vector2D{X: 0, Y: 0}
	c.Asteroids.Area = physics.Vector2D{X: w, Y: 580}
	c.Walls = static(
		pts(20, 40, 50, 50, 20, 60),
		pts(340, 40, 310, 50, 340, 60),
	)
	// rows of spikes, alternating two and three per row
	for row, y := 0, 160.0; y <= 560; row, y = row+1, y+100 {
		xs := []float64{80, 260}
		if row%2 == 1 {
			xs = []float64{20, 170, 320}
		}
		for _, x := range xs {
			c.Walls = append(c.Walls, static(pts(x, y, x+10, y-30, x+20, y))...)
		}
	}
	return c
}

func (s Settings) shifted() *GameConfig {
	c := s.simple()
	w := c.Area.X
	c.Winds = []WindConfig{
		{Shape: rect(0, 100, w, 200), Power: 0.06, Orientation: 0},
		{Shape: rect(0, 200, w, 300), Power: 0.06, Orientation: 180},
		{Shape: rect(0, 300, w, 400), Power: 0.055, Orientation: 0},
		{Shape: rect(0, 400, w, 500), Power: 0.055, Orientation: 180},
		{Shape: rect(0, 500, w, 600), Power: 0.055, Orientation: 90},
	}
	return c
}

func (s Settings) tunnel() *GameConfig {
	w, h := 350.0, 700.0
	c := s.base(w, h, true)
	c.ShipPos = physics.Vector2D{X: 40, Y: 30}
	c.Target = TargetConfig{X0: 200, X1: 350, Y: 650}
	c.Asteroids.Origin = physics.Vector2D{X: 60, Y: 60}
	c.Asteroids.Area = physics.Vector2D{X: w - 60, Y: h - 60}
	c.Walls = static(
		pts(0, 80, 10, 80, 10, 400, 0, 400),
		pts(10, 280, 280, 280, 290, 350, 10, 400),
		pts(75, 80, 75, 200, 100, 200, 100, 80),
		pts(100, 0, 100, 200, 150, 200, 170, 0),
		pts(215, 350, 240, 80, 260, 80, 290, 110, 290, 350),
		pts(350, 410, 85, 460, 85, 550, 350, 550),
		pts(85, 550, 100, 570, 190, 570, 200, 550),
		pts(0, 400, 10, 400, 30, 700, 0, 700),
		pts(10, 640, 200, 640, 200, 700, 10, 700),
	)
	return c
}

func (s Settings) windyPillars() *GameConfig {
	w, h := 300.0, 700.0
	c := s.base(w, h, false)
	c.ShipPos = physics.Vector2D{X: w / 2, Y: 30}
	c.Target = TargetConfig{X0: 50, X1: 250, Y: 650}
	c.Asteroids.Origin = physics.Vector2D{X: 0, Y: 150}
	c.Asteroids.Area = physics.Vector2D{X: w, Y: h - 150}
	c.Winds = []WindConfig{
		{Shape: rect(0, 320, w, 450), Power: 0.04, Orientation: 0},
	}
	c.Walls = static(
		pts(150, 310, 180, 340, 150, 370, 120, 340),
		pts(80, 410, 110, 440, 80, 470, 50, 440),
		pts(220, 410, 250, 440, 220, 470, 190, 440),
	)
	return c
}

func (s Settings) cave() *GameConfig {
	w, h := 320.0, 640.0
	c := s.base(w, h, false)
	c.ShipPos = physics.Vector2D{X: w / 2, Y: 30}
	c.Target = TargetConfig{X0: 130, X1: 190, Y: 600}
	c.Asteroids.Origin = physics.Vector2D{X: 0, Y: 150}
	c.Asteroids.Area = physics.Vector2D{X: w, Y: h - 150}
	c.Walls = static(
		pts(0, 50, 50, 90, 100, 80, 130, 90, 128, 100, 145, 115, 155, 145,
			175, 175, 215, 210, 180, 230, 120, 250, 80, 240, 0, 260),
		pts(w, 300, w-50, 320, w-100, 330, w-120, 350, w-175, 360,
			w-220, 370, w-205, 390, w-160, 400, w-50, 420, w, 425),
	)
	return c
}

func (s Settings) choice() *GameConfig {
	w, h := 300.0, 700.0
	c := s.base(w, h, false)
	c.ShipPos = physics.Vector2D{X: w / 2, Y: 30}
	c.Target = TargetConfig{X0: 30, X1: 270, Y: 660}
	c.Asteroids.Origin = physics.Vector2D{X: 0, Y: 150}
	c.Asteroids.Area = physics.Vector2D{X: w, Y: h - 150}
	c.Winds = []WindConfig{
		{Shape: rect(200, 250, 250, 570), Power: 0.04, Orientation: 180},
		{Shape: rect(250, 250, 300, 570), Power: 0.04, Orientation: 0},
		{Shape: rect(60, 400, 190, 500), Power: 0.14 + 0.06*s.gravity(), Orientation: 270},
		{Shape: rect(60, 500, 190, 570), Power: 0.08, Orientation: 90},
	}
	c.Walls = static(
		rect(50, 200, 60, 580),
		rect(190, 200, 200, 580),
	)
	return c
}

// huge is larger than the screen and scrolls; it also uses animated walls
func (s Settings) huge() *GameConfig {
	w, h := 960.0, 1280.0
	c := s.base(w, h, true)
	c.Viewport = &physics.Vector2D{X: 320, Y: 640}
	c.ViewportPos = &physics.Vector2D{X: 0, Y: 0}
	c.ShipPos = physics.Vector2D{X: 80, Y: 60}
	c.Target = TargetConfig{X0: 820, X1: 920, Y: 1220}
	c.Asteroids.Origin = physics.Vector2D{X: 0, Y: 150}
	c.Asteroids.Area = physics.Vector2D{X: w, Y: h - 150}
	c.Walls = static(
		rect(0, 300, 600, 330),
		rect(360, 600, w, 630),
		pts(0, h, 300, 1120, 600, h),
	)
	c.Walls = append(c.Walls,
		entity.Wall{
			Kind:      entity.WallOscillating,
			Points:    rect(200, 900, 440, 930),
			Amplitude: 120,
			Speed:     1,
		},
		entity.Wall{
			Kind:   entity.WallRotating,
			Points: rect(640, 415, 760, 425),
			Pivot:  physics.Vector2D{X: 700, Y: 420},
			Speed:  1,
		},
	)
	c.Winds = []WindConfig{
		{Shape: rect(600, 700, w, 880), Power: 0.05, Orientation: 180},
	}
	return c
}
