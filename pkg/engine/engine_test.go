package engine

import (
	"math"
	"sync"
	"testing"

	"github.com/opd-ai/go-lander/pkg/config"
	"github.com/opd-ai/go-lander/pkg/entity"
	"github.com/opd-ai/go-lander/pkg/event"
	"github.com/opd-ai/go-lander/pkg/physics"
	"github.com/opd-ai/go-lander/pkg/random"
)

// flatConfig is an empty 400x400 area with a pad at y=300 and no forces
func flatConfig() *config.GameConfig {
	return &config.GameConfig{
		Name:        "flat",
		Area:        physics.Vector2D{X: 400, Y: 400},
		ShipPos:     physics.Vector2D{X: 200, Y: 100},
		Target:      config.TargetConfig{X0: 150, X1: 250, Y: 300},
		Leveling:    config.LevelingConfig{Rotation: 15, SpeedX: 3.5, SpeedY: 2.5},
		InitialFuel: 100,
		FullFuel:    500,
		ThrustPower: 0.1,
		Friction:    1,
	}
}

func newTestEngine(cfg *config.GameConfig, opts ...Option) *Engine {
	opts = append([]Option{WithRandom(random.NewSeeded(1))}, opts...)
	return New(cfg, opts...)
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func approxVec(a, b physics.Vector2D) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y)
}

// recorder collects every published event
type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func record(bus *event.Bus, types ...event.Type) *recorder {
	r := &recorder{}
	for _, t := range types {
		bus.Subscribe(t, func(e event.Event) {
			r.mu.Lock()
			r.events = append(r.events, e)
			r.mu.Unlock()
		})
	}
	return r
}

func (r *recorder) count(t event.Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.GetType() == t {
			n++
		}
	}
	return n
}

func (r *recorder) last(t event.Type) event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].GetType() == t {
			return r.events[i]
		}
	}
	return nil
}

func TestNew_InitialState(t *testing.T) {
	cfg := flatConfig()
	cfg.ShipVelocity = physics.Vector2D{X: 1, Y: 2}
	cfg.Asteroids = config.AsteroidConfig{Count: 3, Area: physics.Vector2D{X: 400, Y: 100}}

	e := newTestEngine(cfg)

	if e.ShipPosition() != cfg.ShipPos {
		t.Errorf("expected position %v, got %v", cfg.ShipPos, e.ShipPosition())
	}
	if e.ShipVelocity() != cfg.ShipVelocity {
		t.Errorf("expected velocity %v, got %v", cfg.ShipVelocity, e.ShipVelocity())
	}
	if e.Rotation() != 0 {
		t.Errorf("expected rotation 0, got %d", e.Rotation())
	}
	if e.Fuel() != 100 {
		t.Errorf("expected fuel 100, got %d", e.Fuel())
	}
	if e.AsteroidCount() != 3 {
		t.Errorf("expected 3 asteroids, got %d", e.AsteroidCount())
	}
	if e.Landed() || e.Collided() || e.BlownUp() || e.Finished() {
		t.Error("fresh engine should be in flight")
	}
	if e.Name() != "flat" {
		t.Errorf("expected name flat, got %q", e.Name())
	}
	if len(e.ShipShape()) != 3 {
		t.Errorf("expected a 3 point ship, got %v", e.ShipShape())
	}
}

func TestNew_OwnsConfig(t *testing.T) {
	cfg := flatConfig()
	e := newTestEngine(cfg)

	cfg.Area.X = 10
	cfg.Target.X0 = 0
	cfg.Friction = 0

	if e.AreaWidth() != 400 {
		t.Errorf("engine area changed with caller config: %v", e.AreaWidth())
	}
	if e.LandingPad()[0].X != 150 {
		t.Errorf("engine pad changed with caller config: %v", e.LandingPad())
	}
}

func TestNew_PublishesSessionStarted(t *testing.T) {
	bus := event.NewEventBus()
	rec := record(bus, event.SessionStarted)

	newTestEngine(flatConfig(), WithEventBus(bus))

	if rec.count(event.SessionStarted) != 1 {
		t.Errorf("expected one session_started event, got %d", rec.count(event.SessionStarted))
	}
}

func TestStep_Motion(t *testing.T) {
	tests := []struct {
		name     string
		velocity physics.Vector2D
		gravity  physics.Vector2D
		friction float64
		wantPos  physics.Vector2D
		wantVel  physics.Vector2D
	}{
		{
			name:     "drift",
			velocity: physics.Vector2D{X: 1, Y: 0},
			friction: 1,
			wantPos:  physics.Vector2D{X: 201, Y: 100},
			wantVel:  physics.Vector2D{X: 1, Y: 0},
		},
		{
			name:     "gravity after move",
			gravity:  physics.Vector2D{X: 0, Y: 0.1},
			friction: 1,
			wantPos:  physics.Vector2D{X: 200, Y: 100},
			wantVel:  physics.Vector2D{X: 0, Y: 0.1},
		},
		{
			name:     "friction last",
			velocity: physics.Vector2D{X: 2, Y: -2},
			gravity:  physics.Vector2D{X: 0, Y: 1},
			friction: 0.5,
			wantPos:  physics.Vector2D{X: 202, Y: 98},
			wantVel:  physics.Vector2D{X: 1, Y: -0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := flatConfig()
			cfg.ShipVelocity = tt.velocity
			cfg.Gravity = tt.gravity
			cfg.Friction = tt.friction
			e := newTestEngine(cfg)

			e.Step()

			if !approxVec(e.ShipPosition(), tt.wantPos) {
				t.Errorf("position = %v, want %v", e.ShipPosition(), tt.wantPos)
			}
			if !approxVec(e.ShipVelocity(), tt.wantVel) {
				t.Errorf("velocity = %v, want %v", e.ShipVelocity(), tt.wantVel)
			}
		})
	}
}

func TestStep_Thrust(t *testing.T) {
	e := newTestEngine(flatConfig())
	e.SetThrust(true)

	if !e.Thrusting() {
		t.Fatal("expected Thrusting with fuel available")
	}
	e.Step()

	if e.Fuel() != 99 {
		t.Errorf("expected fuel 99, got %d", e.Fuel())
	}
	if !approxVec(e.ShipVelocity(), physics.Vector2D{X: 0, Y: -0.1}) {
		t.Errorf("expected upward velocity, got %v", e.ShipVelocity())
	}
	if e.ParticleCount() != 1 {
		t.Fatalf("expected one exhaust particle, got %d", e.ParticleCount())
	}
	for p := range e.Particles() {
		if p.Color != entity.ColorExhaust {
			t.Errorf("expected exhaust particle, got %v", p.Color)
		}
		if p.Life != entity.ParticleLife-1 {
			t.Errorf("expected particle stepped once, life %d", p.Life)
		}
		// tail is at (200,110); exhaust points down with a small spread
		if p.Position.Y <= 110 || math.Abs(p.Position.X-200) > 0.5 {
			t.Errorf("unexpected exhaust position %v", p.Position)
		}
	}
}

func TestStep_ThrustDirection(t *testing.T) {
	cfg := flatConfig()
	e := newTestEngine(cfg)
	e.Rotate(90)
	e.SetThrust(true)

	e.Step()

	if !approxVec(e.ShipVelocity(), physics.Vector2D{X: 0.1, Y: 0}) {
		t.Errorf("expected thrust to the right at 90 degrees, got %v", e.ShipVelocity())
	}
}

func TestStep_NoFuel(t *testing.T) {
	cfg := flatConfig()
	cfg.InitialFuel = 0
	cfg.Gravity = physics.Vector2D{Y: 0.1}
	e := newTestEngine(cfg)
	e.SetThrust(true)

	if e.Thrusting() {
		t.Error("Thrusting should be false with an empty tank")
	}
	e.Step()

	if e.Fuel() != 0 {
		t.Errorf("fuel went negative: %d", e.Fuel())
	}
	if e.ParticleCount() != 0 {
		t.Errorf("expected no exhaust, got %d particles", e.ParticleCount())
	}
}

func TestStep_LastFuelUnit(t *testing.T) {
	cfg := flatConfig()
	cfg.InitialFuel = 1
	e := newTestEngine(cfg)
	e.SetThrust(true)

	steps := []struct {
		name      string
		fuel      int
		velocity  physics.Vector2D
		particles int
	}{
		{"burns the last unit", 0, physics.Vector2D{X: 0, Y: -0.1}, 1},
		{"empty tank adds nothing", 0, physics.Vector2D{X: 0, Y: -0.1}, 1},
	}

	for _, st := range steps {
		e.Step()
		if e.Fuel() != st.fuel {
			t.Errorf("%s: fuel = %d, want %d", st.name, e.Fuel(), st.fuel)
		}
		if !approxVec(e.ShipVelocity(), st.velocity) {
			t.Errorf("%s: velocity = %v, want %v", st.name, e.ShipVelocity(), st.velocity)
		}
		if e.ParticleCount() != st.particles {
			t.Errorf("%s: particles = %d, want %d", st.name, e.ParticleCount(), st.particles)
		}
	}
	if e.Thrusting() {
		t.Error("Thrusting should be false once the tank is empty")
	}
}

func TestRotation(t *testing.T) {
	left, right, off := true, true, false

	t.Run("rotate wraps", func(t *testing.T) {
		e := newTestEngine(flatConfig())
		e.Rotate(-10)
		if e.Rotation() != 350 {
			t.Errorf("expected 350, got %d", e.Rotation())
		}
		e.Rotate(725)
		if e.Rotation() != 355 {
			t.Errorf("expected 355, got %d", e.Rotation())
		}
	})

	t.Run("held flags", func(t *testing.T) {
		e := newTestEngine(flatConfig())
		e.SetRotation(&left, nil)
		e.Step()
		if e.Rotation() != 354 {
			t.Errorf("expected 354 after left, got %d", e.Rotation())
		}

		e.SetRotation(nil, &right)
		e.Step()
		if e.Rotation() != 354 {
			t.Errorf("expected both held to cancel, got %d", e.Rotation())
		}

		e.SetRotation(&off, nil)
		e.Step()
		e.Step()
		if e.Rotation() != 6 {
			t.Errorf("expected 6 after two right steps, got %d", e.Rotation())
		}
	})
}

// descending places the ship so that after one step its tail is at y=300.5
func descending(x, vy float64) *config.GameConfig {
	cfg := flatConfig()
	cfg.ShipPos = physics.Vector2D{X: x, Y: 290.5 - vy}
	cfg.ShipVelocity = physics.Vector2D{X: 0, Y: vy}
	return cfg
}

func TestLanding(t *testing.T) {
	bus := event.NewEventBus()
	rec := record(bus, event.ShipLanded, event.SessionFinished, event.ShipDestroyed)
	e := newTestEngine(descending(200, 1.5), WithEventBus(bus))
	e.Rotate(5)

	e.Step()

	if !e.Landed() {
		t.Fatal("expected the ship to land")
	}
	if e.Collided() || e.BlownUp() {
		t.Error("landed ship must not be collided")
	}
	if e.Rotation() != 0 {
		t.Errorf("expected rotation reset, got %d", e.Rotation())
	}
	if !e.ShipVelocity().IsZero() {
		t.Errorf("expected velocity zeroed, got %v", e.ShipVelocity())
	}
	if !e.Finished() || e.Outcome() != event.OutcomeLanded {
		t.Errorf("expected finished with landed outcome, got %v", e.Outcome())
	}

	e.Rotate(30)
	if e.Rotation() != 0 {
		t.Errorf("rotate must be ignored once landed, got %d", e.Rotation())
	}

	e.Step()
	if rec.count(event.ShipLanded) != 1 {
		t.Errorf("expected one landed event, got %d", rec.count(event.ShipLanded))
	}
	if rec.count(event.SessionFinished) != 1 {
		t.Errorf("expected one finished event, got %d", rec.count(event.SessionFinished))
	}
	if rec.count(event.ShipDestroyed) != 0 {
		t.Error("unexpected destroyed event")
	}
	fin := rec.last(event.SessionFinished).(*event.SessionEvent)
	if fin.Outcome != event.OutcomeLanded || fin.Steps != 1 {
		t.Errorf("unexpected finished event %+v", fin)
	}
}

func TestLanding_Failures(t *testing.T) {
	tests := []struct {
		name   string
		cfg    *config.GameConfig
		rotate int
	}{
		{"too fast", descending(200, 3), 0},
		{"tilted", descending(200, 1.5), 20},
		{"tail beside pad", descending(145, 1.5), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := event.NewEventBus()
			rec := record(bus, event.ShipDestroyed)
			e := newTestEngine(tt.cfg, WithEventBus(bus))
			e.Rotate(tt.rotate)

			e.Step()

			if e.Landed() {
				t.Fatal("ship should not have landed")
			}
			if !e.BlownUp() || !e.Collided() {
				t.Fatal("expected the ship to hit the pad")
			}
			ev, ok := rec.last(event.ShipDestroyed).(*event.DestroyedEvent)
			if !ok {
				t.Fatal("expected a destroyed event")
			}
			if ev.Cause != event.CauseLandingPad {
				t.Errorf("expected landing pad cause, got %s", ev.Cause)
			}
		})
	}
}

func TestCollision_Causes(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.GameConfig)
		rng    *random.Random
		want   event.Cause
	}{
		{
			name: "left edge",
			modify: func(c *config.GameConfig) {
				c.ShipPos = physics.Vector2D{X: 12, Y: 100}
				c.ShipVelocity = physics.Vector2D{X: -3}
			},
			want: event.CauseBounds,
		},
		{
			name: "top edge",
			modify: func(c *config.GameConfig) {
				c.ShipPos = physics.Vector2D{X: 200, Y: 21}
				c.ShipVelocity = physics.Vector2D{Y: -2}
			},
			want: event.CauseBounds,
		},
		{
			name: "static wall",
			modify: func(c *config.GameConfig) {
				c.Walls = []entity.Wall{{
					Kind:   entity.WallStatic,
					Points: physics.NewRect(150, 105, 100, 10).Polygon(),
				}}
				c.ShipVelocity = physics.Vector2D{Y: 1}
			},
			want: event.CauseWall,
		},
		{
			name: "asteroid",
			modify: func(c *config.GameConfig) {
				c.Asteroids = config.AsteroidConfig{Count: 1, Origin: c.ShipPos}
			},
			rng:  random.NewFromBytes(nil),
			want: event.CauseAsteroid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := flatConfig()
			tt.modify(cfg)
			bus := event.NewEventBus()
			rec := record(bus, event.ShipDestroyed)

			opts := []Option{WithEventBus(bus)}
			if tt.rng != nil {
				opts = append(opts, WithRandom(tt.rng))
			}
			e := newTestEngine(cfg, opts...)
			e.Step()

			if !e.BlownUp() {
				t.Fatal("expected the ship to be destroyed")
			}
			ev, ok := rec.last(event.ShipDestroyed).(*event.DestroyedEvent)
			if !ok {
				t.Fatal("expected a destroyed event")
			}
			if ev.Cause != tt.want {
				t.Errorf("cause = %s, want %s", ev.Cause, tt.want)
			}
		})
	}
}

func TestBlowup(t *testing.T) {
	cfg := flatConfig()
	cfg.ShipPos = physics.Vector2D{X: 12, Y: 100}
	cfg.ShipVelocity = physics.Vector2D{X: -3}
	cfg.Gravity = physics.Vector2D{Y: 0.5}
	e := newTestEngine(cfg)
	e.SetThrust(true)

	e.Step()

	if e.ParticleCount() != DebrisCount {
		t.Fatalf("expected %d debris particles, got %d", DebrisCount, e.ParticleCount())
	}
	if len(e.ShipShape()) != 0 {
		t.Error("blown up ship should have no shape")
	}
	if e.Fuel() != 100 {
		t.Errorf("no thrust after collision, fuel %d", e.Fuel())
	}
	if !approxVec(e.ShipVelocity(), physics.Vector2D{X: -3}) {
		t.Errorf("no forces after collision, velocity %v", e.ShipVelocity())
	}
	if e.Thrusting() {
		t.Error("blown up ship cannot thrust")
	}
	base := e.ShipPosition()
	for p := range e.Particles() {
		if p.Color != entity.ColorDebris {
			t.Fatalf("expected debris colour, got %v", p.Color)
		}
		// spawned within [-15, 16] of the ship, then moved once by at most 3.2 + 3
		if math.Abs(p.Position.X-base.X) > 23 || math.Abs(p.Position.Y-base.Y) > 23 {
			t.Fatalf("debris %v too far from %v", p.Position, base)
		}
	}

	pos := e.ShipPosition()
	steps := 1
	for !e.Finished() && steps < 100 {
		e.Step()
		steps++
	}
	if steps != entity.ParticleLife {
		t.Errorf("expected finish after %d steps, got %d", entity.ParticleLife, steps)
	}
	if e.ShipPosition() != pos {
		t.Error("blown up ship must not move")
	}
	if e.Outcome() != event.OutcomeDestroyed {
		t.Errorf("expected destroyed outcome, got %v", e.Outcome())
	}
}

func TestWind(t *testing.T) {
	tests := []struct {
		orientation int
		want        physics.Vector2D
	}{
		{0, physics.Vector2D{X: 0.1}},
		{90, physics.Vector2D{Y: 0.1}},
		{180, physics.Vector2D{X: -0.1}},
	}

	for _, tt := range tests {
		cfg := flatConfig()
		cfg.Winds = []config.WindConfig{{
			Shape:       physics.NewRect(0, 0, 400, 200).Polygon(),
			Power:       0.1,
			Orientation: tt.orientation,
		}, {
			Shape:       physics.NewRect(0, 250, 400, 50).Polygon(),
			Power:       5,
			Orientation: tt.orientation,
		}}
		e := newTestEngine(cfg)

		e.Step()

		if !approxVec(e.ShipVelocity(), tt.want) {
			t.Errorf("orientation %d: velocity = %v, want %v", tt.orientation, e.ShipVelocity(), tt.want)
		}

		n := 0
		for range e.Winds() {
			n++
		}
		if n != 2 {
			t.Errorf("expected 2 winds, got %d", n)
		}
	}
}

func TestStuck(t *testing.T) {
	bus := event.NewEventBus()
	rec := record(bus, event.SessionFinished, event.FuelExhausted)
	cfg := flatConfig()
	cfg.InitialFuel = 0
	e := newTestEngine(cfg, WithEventBus(bus))

	if !e.Stuck() || !e.Finished() {
		t.Fatal("expected a stationary ship without fuel or gravity to be stuck")
	}
	e.Step()

	if fin, ok := rec.last(event.SessionFinished).(*event.SessionEvent); !ok || fin.Outcome != event.OutcomeStuck {
		t.Errorf("expected stuck outcome, got %v", rec.last(event.SessionFinished))
	}
	if rec.count(event.FuelExhausted) != 1 {
		t.Errorf("expected fuel exhausted event, got %d", rec.count(event.FuelExhausted))
	}

	cfg.Gravity = physics.Vector2D{Y: 0.01}
	if newTestEngine(cfg).Stuck() {
		t.Error("gravity can still move the ship")
	}
}

func TestFuelQueries(t *testing.T) {
	tests := []struct {
		fuel     int
		wantLow  bool
		wantFrac float64
	}{
		{500, false, 100},
		{101, false, 20.2},
		{100, true, 20},
		{0, true, 0},
	}

	for _, tt := range tests {
		cfg := flatConfig()
		cfg.InitialFuel = tt.fuel
		e := newTestEngine(cfg)

		if e.FuelLow() != tt.wantLow {
			t.Errorf("fuel %d: FuelLow = %v, want %v", tt.fuel, e.FuelLow(), tt.wantLow)
		}
		if !approx(e.FuelFraction(100), tt.wantFrac) {
			t.Errorf("fuel %d: FuelFraction(100) = %v, want %v", tt.fuel, e.FuelFraction(100), tt.wantFrac)
		}
	}
}

func TestIsLevel(t *testing.T) {
	tests := []struct {
		name     string
		rotation int
		velocity physics.Vector2D
		want     bool
	}{
		{"upright at rest", 0, physics.Vector2D{}, true},
		{"small tilt left", 350, physics.Vector2D{}, true},
		{"tilt at limit", 15, physics.Vector2D{}, false},
		{"tilt at right limit", 345, physics.Vector2D{}, false},
		{"sideways drift", 0, physics.Vector2D{X: 3.5}, false},
		{"slow descent", 0, physics.Vector2D{Y: 2.4}, true},
		{"fast descent", 0, physics.Vector2D{Y: -2.5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := flatConfig()
			cfg.ShipVelocity = tt.velocity
			e := newTestEngine(cfg)
			e.Rotate(tt.rotation)

			if got := e.IsLevel(); got != tt.want {
				t.Errorf("IsLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnimationPhase(t *testing.T) {
	cfg := flatConfig()
	cfg.Gravity = physics.Vector2D{Y: 0.0001}
	e := newTestEngine(cfg)

	if e.AnimationPhase() != 0 {
		t.Fatalf("expected phase 0 at start")
	}
	for i := 1; i <= 2*AnimationPeriod; i++ {
		e.Step()
		want := 0
		if i%AnimationPeriod >= AnimationPeriod/2 {
			want = 1
		}
		if got := e.AnimationPhase(); got != want {
			t.Fatalf("step %d: phase = %d, want %d", i, got, want)
		}
	}
}

func TestAnimatedWalls(t *testing.T) {
	cfg := flatConfig()
	cfg.Walls = []entity.Wall{{
		Kind:      entity.WallOscillating,
		Points:    physics.NewRect(0, 350, 20, 10).Polygon(),
		Amplitude: 10,
		Speed:     1,
	}}
	e := newTestEngine(cfg)

	start := e.WallShapes()[0][0]
	if start.X != 10 {
		t.Fatalf("expected wall offset by full amplitude at step 0, got %v", start)
	}
	e.Step()
	moved := e.WallShapes()[0][0]
	if moved.X == start.X {
		t.Error("oscillating wall did not move")
	}
	for range AnimationPeriod - 1 {
		e.Step()
	}
	if !approxVec(e.WallShapes()[0][0], start) {
		t.Errorf("wall did not return after a full period: %v", e.WallShapes()[0][0])
	}
}

func TestViewport(t *testing.T) {
	t.Run("fixed area", func(t *testing.T) {
		e := newTestEngine(flatConfig())
		e.Step()

		if e.Scrollable() {
			t.Error("flat config should not scroll")
		}
		if e.ViewportPosition() != (physics.Vector2D{}) {
			t.Errorf("expected origin viewport, got %v", e.ViewportPosition())
		}
		if e.ViewportWidth() != 400 || e.ViewportHeight() != 400 {
			t.Errorf("viewport should match area, got %vx%v", e.ViewportWidth(), e.ViewportHeight())
		}
	})

	tests := []struct {
		name string
		ship physics.Vector2D
		want physics.Vector2D
	}{
		{"clamped near origin", physics.Vector2D{X: 80, Y: 60}, physics.Vector2D{X: -30, Y: -30}},
		{"follows ship", physics.Vector2D{X: 500, Y: 700}, physics.Vector2D{X: 330, Y: 210}},
		{"clamped at far edge", physics.Vector2D{X: 940, Y: 1260}, physics.Vector2D{X: 670, Y: 670}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := flatConfig()
			cfg.Area = physics.Vector2D{X: 960, Y: 1280}
			cfg.Viewport = &physics.Vector2D{X: 320, Y: 640}
			cfg.ShipPos = tt.ship
			e := newTestEngine(cfg)

			if !e.Scrollable() {
				t.Fatal("expected scrollable")
			}
			e.Step()

			if got := e.ViewportPosition(); !approxVec(got, tt.want) {
				t.Errorf("viewport = %v, want %v", got, tt.want)
			}
			if e.ViewportWidth() != 320 || e.ViewportHeight() != 640 {
				t.Errorf("unexpected viewport size %vx%v", e.ViewportWidth(), e.ViewportHeight())
			}
		})
	}
}

func TestEvents_Transitions(t *testing.T) {
	bus := event.NewEventBus()
	rec := record(bus, event.ThrustEngaged, event.ThrustCut, event.FuelLow,
		event.FuelExhausted, event.StepCompleted)
	cfg := flatConfig()
	cfg.InitialFuel = 102
	cfg.Gravity = physics.Vector2D{Y: 0.05}
	e := newTestEngine(cfg, WithEventBus(bus))

	e.SetThrust(true)
	e.Step()
	e.Step()
	e.Step()
	e.SetThrust(false)
	e.Step()

	if rec.count(event.ThrustEngaged) != 1 {
		t.Errorf("expected one thrust engaged, got %d", rec.count(event.ThrustEngaged))
	}
	if rec.count(event.ThrustCut) != 1 {
		t.Errorf("expected one thrust cut, got %d", rec.count(event.ThrustCut))
	}
	if rec.count(event.FuelLow) != 1 {
		t.Errorf("expected one fuel low after crossing 100, got %d", rec.count(event.FuelLow))
	}
	if rec.count(event.FuelExhausted) != 0 {
		t.Error("fuel is not exhausted yet")
	}
	if rec.count(event.StepCompleted) != 4 {
		t.Errorf("expected 4 step events, got %d", rec.count(event.StepCompleted))
	}
	step := rec.last(event.StepCompleted).(*event.StepEvent)
	if step.Step != 4 || step.Fuel != 99 || step.Particles != 3 {
		t.Errorf("unexpected step event %+v", step)
	}
}

func TestSetBlockAlert(t *testing.T) {
	bus := event.NewEventBus()
	rec := record(bus, event.AlertChanged)
	e := newTestEngine(flatConfig(), WithEventBus(bus))

	e.SetBlockAlert(true)
	e.SetBlockAlert(true)
	if !e.BlockAlert() {
		t.Error("expected block alert set")
	}
	e.SetBlockAlert(false)

	if rec.count(event.AlertChanged) != 2 {
		t.Errorf("expected 2 alert changes, got %d", rec.count(event.AlertChanged))
	}
	if rec.last(event.AlertChanged).(*event.AlertEvent).Blocked {
		t.Error("last alert should clear the block")
	}
}

func TestDeterminism(t *testing.T) {
	run := func() (physics.Vector2D, int, int) {
		cfg := config.Settings{Map: config.MapCave, Asteroids: 3}.Build()
		e := New(cfg, WithRandom(random.NewSeeded(42)))
		e.SetThrust(true)
		left := true
		e.SetRotation(&left, nil)
		for range 50 {
			e.Step()
		}
		return e.ShipPosition(), e.ParticleCount(), e.Fuel()
	}

	p1, n1, f1 := run()
	p2, n2, f2 := run()
	if p1 != p2 || n1 != n2 || f1 != f2 {
		t.Errorf("seeded runs diverged: %v/%d/%d vs %v/%d/%d", p1, n1, f1, p2, n2, f2)
	}
}

func TestEngine_ConcurrentAccess(t *testing.T) {
	cfg := config.Settings{Map: config.MapHuge, Asteroids: 4}.Build()
	e := New(cfg, WithRandom(random.NewSeeded(3)), WithEventBus(event.NewEventBus()))

	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 200 {
			e.Step()
		}
		close(done)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		on := false
		for {
			select {
			case <-done:
				return
			default:
				on = !on
				e.SetThrust(on)
				e.SetRotation(&on, nil)
				e.Rotate(1)
				_ = e.ShipShape()
				_ = e.AsteroidShapes()
				_ = e.HUD()
				for range e.Particles() {
				}
				e.Render(&recordingRenderer{})
			}
		}
	}()

	wg.Wait()
}

func TestScenario_ControlledDescent(t *testing.T) {
	bus := event.NewEventBus()
	rec := record(bus, event.ShipLanded, event.ShipDestroyed, event.SessionFinished)
	cfg := flatConfig()
	cfg.ShipPos = physics.Vector2D{X: 200, Y: 180}
	cfg.Gravity = physics.Vector2D{Y: 0.06}
	cfg.Friction = 0.996
	cfg.ThrustPower = 0.12
	e := newTestEngine(cfg, WithEventBus(bus))

	for range 2000 {
		if e.Finished() {
			break
		}
		e.SetThrust(e.ShipVelocity().Y > 1.2)
		e.Step()
	}

	if !e.Landed() {
		t.Fatalf("expected a controlled descent to land, ship at %v moving %v", e.ShipPosition(), e.ShipVelocity())
	}
	if rec.count(event.ShipLanded) != 1 || rec.count(event.ShipDestroyed) != 0 {
		t.Errorf("unexpected events: landed %d destroyed %d",
			rec.count(event.ShipLanded), rec.count(event.ShipDestroyed))
	}
	if e.Fuel() >= 100 || e.Fuel() <= 0 {
		t.Errorf("expected some but not all fuel used, got %d", e.Fuel())
	}
	if fin := rec.last(event.SessionFinished).(*event.SessionEvent); fin.Outcome != event.OutcomeLanded {
		t.Errorf("expected landed outcome, got %v", fin.Outcome)
	}
}
