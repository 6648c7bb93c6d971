// pkg/engine/engine.go
package engine

import (
	"context"
	"iter"
	"sync"

	"github.com/opd-ai/go-lander/pkg/config"
	"github.com/opd-ai/go-lander/pkg/entity"
	"github.com/opd-ai/go-lander/pkg/event"
	"github.com/opd-ai/go-lander/pkg/logging"
	"github.com/opd-ai/go-lander/pkg/physics"
	"github.com/opd-ai/go-lander/pkg/random"
)

const (
	// RotationStep is the rotation applied per tick while a rotate key is held
	RotationStep = 6
	// AnimationPeriod is the length of the step counter cycle
	AnimationPeriod = 30
	// DebrisCount is the number of particles spawned when the ship blows up
	DebrisCount = 200
	// PadDepth is the height of the landing pad below its top edge
	PadDepth = 5.0

	viewportMargin = 150.0
	viewportSlack  = 30.0
)

// Engine owns one lander session: the ship, its surroundings and every
// rule that moves them forward one tick at a time.
type Engine struct {
	cfg    *config.GameConfig
	table  *physics.AngleTable
	rng    *random.Random
	bus    *event.Bus
	logger *logging.Logger
	ctx    context.Context

	rotation   int
	position   physics.Vector2D
	velocity   physics.Vector2D
	thrust     bool
	lrot, rrot bool
	fuel       int
	fuelWarn   int
	collided   bool
	landed     bool
	blownUp    bool
	blockAlert bool

	particles []*entity.Particle
	asteroids []*entity.Asteroid
	winds     []*entity.Wind

	drawStep    int
	steps       uint64
	viewportPos *physics.Vector2D

	// edge tracking for published events
	wasThrusting bool
	fuelLowSent  bool
	fuelOutSent  bool
	finishedSent bool

	mu sync.RWMutex
}

// Option customizes an Engine at construction
type Option func(*Engine)

// WithRandom replaces the entropy-seeded random source
func WithRandom(rng *random.Random) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithEventBus publishes state transitions to bus
func WithEventBus(bus *event.Bus) Option {
	return func(e *Engine) { e.bus = bus }
}

// WithLogger sets the logger; the default discards everything
func WithLogger(logger *logging.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithContext sets the context whose run ID is attached to log records
func WithContext(ctx context.Context) Option {
	return func(e *Engine) { e.ctx = ctx }
}

// New creates an engine from a copy of cfg and spawns its asteroids
func New(cfg *config.GameConfig, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg.Clone(),
		table:  physics.NewAngleTable(),
		logger: logging.NewNopLogger(),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = random.New()
	}

	e.position = e.cfg.ShipPos
	e.velocity = e.cfg.ShipVelocity
	e.fuel = e.cfg.InitialFuel
	e.fuelWarn = e.cfg.FullFuel / 5
	if e.cfg.ViewportPos != nil {
		v := *e.cfg.ViewportPos
		e.viewportPos = &v
	}

	e.initWinds()
	e.initAsteroids()

	e.logger.Info(e.ctx, "session started",
		"map", e.cfg.Name,
		"asteroids", len(e.asteroids),
		"fuel", e.fuel,
		"scrollable", e.cfg.Scrollable())
	e.publish(event.NewSessionEvent(event.SessionStarted, e, event.OutcomeNone, 0))

	return e
}

func (e *Engine) initWinds() {
	e.winds = make([]*entity.Wind, 0, len(e.cfg.Winds))
	for _, w := range e.cfg.Winds {
		e.winds = append(e.winds, entity.NewWind(w.Shape, w.Power, w.Orientation, e.table))
	}
}

func (e *Engine) initAsteroids() {
	a := e.cfg.Asteroids
	e.asteroids = make([]*entity.Asteroid, 0, a.Count)
	for range a.Count {
		ast := entity.GenerateAsteroid(e.rng, e.table, a.Origin, a.Area)
		e.asteroids = append(e.asteroids, ast)
		e.logger.Debug(e.ctx, "asteroid spawned",
			"position", ast.Position,
			"velocity", ast.Velocity,
			"vertices", len(ast.Vertices))
	}
}

// Step advances the simulation by one tick. Events are published after the
// engine lock is released, so handlers may query the engine.
func (e *Engine) Step() {
	e.mu.Lock()
	pending := e.step()
	e.mu.Unlock()

	for _, ev := range pending {
		e.publish(ev)
	}
}

func (e *Engine) step() []event.Event {
	var pending []event.Event
	e.steps++
	e.drawStep = (e.drawStep + 1) % AnimationPeriod

	e.stepAsteroids()

	if !e.blownUp {
		e.position.Accumulate(e.velocity)
		wasLanded := e.landed
		e.landed = e.landed || e.landing()

		if e.landed {
			e.collided = false
			e.rotation = 0
			e.velocity = physics.Vector2D{}
			if !wasLanded {
				e.logger.Info(e.ctx, "ship landed", "position", e.position, "fuel", e.fuel)
				pending = append(pending, event.NewShipEvent(event.ShipLanded, e,
					e.position, e.velocity, e.rotation, e.fuel))
			}
		} else {
			hull := physics.ShipHull(e.table, e.position, e.rotation)
			if cause, hit := e.collision(hull); hit {
				e.collided = true
				e.blownUp = true
				e.logger.Info(e.ctx, "ship destroyed", "cause", string(cause), "position", e.position)
				pending = append(pending, event.NewDestroyedEvent(e, cause,
					e.position, e.velocity, e.rotation, e.fuel))
				e.blowup()
			} else {
				e.velocity.Accumulate(e.cfg.Gravity)
				e.applyWind(hull)
				e.applyRotation()
				e.applyThrust()
				e.velocity.Multiply(e.cfg.Friction)
			}
		}
	}

	e.stepParticles()
	e.repositionViewport()

	return append(pending, e.transitions()...)
}

func (e *Engine) stepAsteroids() {
	live := e.asteroids[:0]
	for _, a := range e.asteroids {
		a.Step(e.cfg.Area)
		if !a.Finished() {
			live = append(live, a)
		}
	}
	clear(e.asteroids[len(live):])
	e.asteroids = live
}

func (e *Engine) stepParticles() {
	live := e.particles[:0]
	for _, p := range e.particles {
		p.Step()
		if !p.Finished() {
			live = append(live, p)
		}
	}
	clear(e.particles[len(live):])
	e.particles = live
}

func (e *Engine) applyWind(hull physics.Polygon) {
	for _, w := range e.winds {
		if w.Affects(hull) {
			e.velocity.Accumulate(w.Accel())
		}
	}
}

func (e *Engine) applyRotation() {
	delta := 0
	if e.lrot {
		delta -= RotationStep
	}
	if e.rrot {
		delta += RotationStep
	}
	e.rotate(delta)
}

func (e *Engine) applyThrust() {
	if e.blownUp || !e.thrust || e.fuel <= 0 {
		return
	}
	e.fuel--
	e.velocity.Accumulate(physics.ThrustVector(e.table, e.rotation, e.cfg.ThrustPower))

	drot := e.rotation - 31 + e.rng.NextBits(6)
	a := e.table.Angle(drot)
	vel := physics.Vector2D{X: -0.5 * a.Sin, Y: 0.5 * a.Cos}.Add(e.velocity)
	pos := physics.ShipPoint(e.table, physics.ShipTail, e.position, e.rotation)
	e.particles = append(e.particles, entity.NewParticle(entity.ColorExhaust, pos, vel))
}

// collision tests the ship hull against the playfield edges, walls,
// asteroids and the landing pad, in that order
func (e *Engine) collision(hull physics.Polygon) (event.Cause, bool) {
	for _, p := range hull {
		if !physics.InsideRect(p, 0, 0, e.cfg.Area.X, e.cfg.Area.Y) {
			return event.CauseBounds, true
		}
	}
	for i := range e.cfg.Walls {
		if physics.Collide(hull, e.cfg.Walls[i].Shape(e.drawStep, e.table)) {
			return event.CauseWall, true
		}
	}
	shipCircle := physics.BoundingCircle(hull)
	for _, a := range e.asteroids {
		ah := a.Hull()
		if shipCircle.Apart(physics.BoundingCircle(ah)) {
			continue
		}
		if physics.Collide(hull, ah) {
			return event.CauseAsteroid, true
		}
	}
	if physics.Collide(hull, e.landingPad()) {
		return event.CauseLandingPad, true
	}
	return "", false
}

func (e *Engine) onPad(p physics.Vector2D) bool {
	t := e.cfg.Target
	return physics.InsideRect(p, t.X0, t.Y, t.X1, t.Y+PadDepth)
}

func (e *Engine) landing() bool {
	if !e.isLevel() || e.blownUp {
		return false
	}
	touch := e.shipPoint(physics.ShipTail)
	if e.onPad(touch) {
		return true
	}
	t := e.cfg.Target
	if touch.X < t.X0 || touch.X > t.X1 {
		return false
	}
	return e.onPad(e.shipPoint(physics.ShipRearLeft)) || e.onPad(e.shipPoint(physics.ShipRearRight))
}

func (e *Engine) blowup() {
	base := e.shipPoint(physics.Vector2D{})
	for range DebrisCount {
		x := base.X - 15 + float64(e.rng.NextBits(5))
		y := base.Y - 15 + float64(e.rng.NextBits(5))
		dx := (x-base.X)/float64(e.rng.NextBits(3)+5) + e.velocity.X
		dy := (y-base.Y)/float64(e.rng.NextBits(3)+5) + e.velocity.Y
		e.particles = append(e.particles, entity.NewParticle(entity.ColorDebris,
			physics.Vector2D{X: x, Y: y}, physics.Vector2D{X: dx, Y: dy}))
	}
}

func (e *Engine) repositionViewport() {
	if e.cfg.Viewport == nil {
		return
	}
	aw, ah := e.cfg.Area.X, e.cfg.Area.Y
	vpw, vph := e.cfg.Viewport.X, e.cfg.Viewport.Y
	var vp physics.Vector2D
	if e.viewportPos != nil {
		vp = *e.viewportPos
	}

	vp.X = follow(vp.X, e.position.X, vpw, aw)
	vp.Y = follow(vp.Y, e.position.Y, vph, ah)
	e.viewportPos = &vp
}

// follow keeps ship within the margin of a window [pos, pos+size] and
// clamps the window to the area plus slack
func follow(pos, ship, size, area float64) float64 {
	pos = min(pos, ship-viewportMargin)
	pos = max(pos+size, ship+viewportMargin) - size
	pos = max(pos, -viewportSlack)
	return min(pos, area-size+viewportSlack)
}

// transitions compares the current state with what was last published
func (e *Engine) transitions() []event.Event {
	var out []event.Event

	thrusting := e.thrusting()
	if thrusting != e.wasThrusting {
		t := event.ThrustCut
		if thrusting {
			t = event.ThrustEngaged
		}
		out = append(out, event.NewShipEvent(t, e, e.position, e.velocity, e.rotation, e.fuel))
		e.wasThrusting = thrusting
	}

	if !e.blownUp && !e.landed {
		if !e.fuelLowSent && e.fuelLow() {
			e.fuelLowSent = true
			out = append(out, event.NewShipEvent(event.FuelLow, e, e.position, e.velocity, e.rotation, e.fuel))
		}
		if !e.fuelOutSent && e.fuel <= 0 {
			e.fuelOutSent = true
			e.logger.Info(e.ctx, "fuel exhausted", "position", e.position)
			out = append(out, event.NewShipEvent(event.FuelExhausted, e, e.position, e.velocity, e.rotation, e.fuel))
		}
	}

	out = append(out, event.NewStepEvent(e, e.steps, e.fuel, len(e.particles), len(e.asteroids)))

	if !e.finishedSent && e.finished() {
		e.finishedSent = true
		outcome := e.outcome()
		e.logger.Info(e.ctx, "session finished", "outcome", string(outcome), "steps", e.steps)
		out = append(out, event.NewSessionEvent(event.SessionFinished, e, outcome, e.steps))
	}

	return out
}

func (e *Engine) outcome() event.Outcome {
	switch {
	case e.landed:
		return event.OutcomeLanded
	case e.blownUp:
		return event.OutcomeDestroyed
	case e.stuck():
		return event.OutcomeStuck
	default:
		return event.OutcomeNone
	}
}

func (e *Engine) publish(ev event.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

func (e *Engine) shipPoint(local physics.Vector2D) physics.Vector2D {
	return physics.ShipPoint(e.table, local, e.position, e.rotation)
}

func (e *Engine) rotate(delta int) {
	if !e.landed {
		e.rotation = physics.NormalizeDegrees(e.rotation + delta)
	}
}

func (e *Engine) isLevel() bool {
	lr := e.cfg.Leveling
	return !e.blownUp &&
		(e.rotation < lr.Rotation || e.rotation > 360-lr.Rotation) &&
		abs(e.velocity.X) < lr.SpeedX &&
		abs(e.velocity.Y) < lr.SpeedY
}

func (e *Engine) thrusting() bool {
	return e.thrust && e.fuel > 0 && !e.blownUp && !e.landed
}

func (e *Engine) fuelLow() bool {
	return e.fuel <= e.fuelWarn
}

func (e *Engine) stuck() bool {
	return !e.landed && !e.blownUp && e.fuel == 0 &&
		e.velocity.IsZero() && e.cfg.Gravity.IsZero()
}

func (e *Engine) finished() bool {
	return (e.blownUp && len(e.particles) == 0) || e.stuck() || e.landed
}

func (e *Engine) landingPad() physics.Polygon {
	t := e.cfg.Target
	return physics.Polygon{
		{X: t.X0, Y: t.Y},
		{X: t.X1, Y: t.Y},
		{X: t.X1, Y: t.Y + PadDepth},
		{X: t.X0, Y: t.Y + PadDepth},
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// SetThrust sets whether the engine is firing
func (e *Engine) SetThrust(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.thrust = on
}

// Rotate turns the ship by delta degrees. Ignored once landed.
func (e *Engine) Rotate(delta int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rotate(delta)
}

// SetRotation updates the held rotate flags; nil leaves a flag unchanged
func (e *Engine) SetRotation(left, right *bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if left != nil {
		e.lrot = *left
	}
	if right != nil {
		e.rrot = *right
	}
}

// SetBlockAlert records the external pause request. The engine only stores
// it; drivers decide whether to stop stepping.
func (e *Engine) SetBlockAlert(blocked bool) {
	e.mu.Lock()
	changed := e.blockAlert != blocked
	e.blockAlert = blocked
	e.mu.Unlock()

	if changed {
		e.publish(event.NewAlertEvent(e, blocked))
	}
}

// BlockAlert reports the stored pause request
func (e *Engine) BlockAlert() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.blockAlert
}

// ShipShape returns the ship triangle in world space, empty once blown up
func (e *Engine) ShipShape() physics.Polygon {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.blownUp {
		return physics.Polygon{}
	}
	return physics.ShipHull(e.table, e.position, e.rotation)
}

func (e *Engine) ShipPosition() physics.Vector2D {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.position
}

func (e *Engine) ShipVelocity() physics.Vector2D {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.velocity
}

func (e *Engine) Rotation() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rotation
}

func (e *Engine) Fuel() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.fuel
}

// FuelFraction scales the remaining fuel against a full tank of maxRef
func (e *Engine) FuelFraction(maxRef float64) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return float64(e.fuel) * maxRef / float64(e.cfg.FullFuel)
}

// FuelLow reports whether fuel is at or below a fifth of a full tank
func (e *Engine) FuelLow() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.fuelLow()
}

// IsLevel reports whether the attitude and speed allow a landing
func (e *Engine) IsLevel() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.isLevel()
}

func (e *Engine) Landed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.landed
}

func (e *Engine) Collided() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.collided
}

func (e *Engine) BlownUp() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.blownUp
}

// Thrusting reports whether the engine fires on the next step
func (e *Engine) Thrusting() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.thrusting()
}

// Stuck reports a ship with no fuel, no speed and no gravity to move it
func (e *Engine) Stuck() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stuck()
}

// Finished reports whether the session is over
func (e *Engine) Finished() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.finished()
}

// Outcome returns how the session ended, or OutcomeNone while it runs
func (e *Engine) Outcome() event.Outcome {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.finished() {
		return event.OutcomeNone
	}
	return e.outcome()
}

// Steps returns the number of ticks simulated so far
func (e *Engine) Steps() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.steps
}

// AnimationPhase returns 0 for the first half of the step cycle, 1 for the second
func (e *Engine) AnimationPhase() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.animationPhase()
}

func (e *Engine) animationPhase() int {
	if e.drawStep < AnimationPeriod/2 {
		return 0
	}
	return 1
}

// WallShapes returns every wall at the current step
func (e *Engine) WallShapes() []physics.Polygon {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]physics.Polygon, len(e.cfg.Walls))
	for i := range e.cfg.Walls {
		out[i] = e.cfg.Walls[i].Shape(e.drawStep, e.table)
	}
	return out
}

// AsteroidShapes returns every asteroid outline in world space
func (e *Engine) AsteroidShapes() []physics.Polygon {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]physics.Polygon, len(e.asteroids))
	for i, a := range e.asteroids {
		out[i] = a.Shape()
	}
	return out
}

// LandingPad returns the pad rectangle
func (e *Engine) LandingPad() physics.Polygon {
	return e.landingPad()
}

// Winds iterates over the wind regions
func (e *Engine) Winds() iter.Seq[*entity.Wind] {
	return func(yield func(*entity.Wind) bool) {
		for _, w := range e.winds {
			if !yield(w) {
				return
			}
		}
	}
}

// Particles iterates over a snapshot of the live particles
func (e *Engine) Particles() iter.Seq[entity.Particle] {
	e.mu.RLock()
	snapshot := make([]entity.Particle, len(e.particles))
	for i, p := range e.particles {
		snapshot[i] = *p
	}
	e.mu.RUnlock()

	return func(yield func(entity.Particle) bool) {
		for _, p := range snapshot {
			if !yield(p) {
				return
			}
		}
	}
}

func (e *Engine) ParticleCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.particles)
}

func (e *Engine) AsteroidCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.asteroids)
}

// Scrollable reports whether the area is larger than the visible window
func (e *Engine) Scrollable() bool {
	return e.cfg.Viewport != nil
}

// ViewportPosition returns the top-left corner of the visible window
func (e *Engine) ViewportPosition() physics.Vector2D {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.viewportPos == nil {
		return physics.Vector2D{}
	}
	return *e.viewportPos
}

func (e *Engine) ViewportWidth() float64 {
	if e.cfg.Viewport != nil {
		return e.cfg.Viewport.X
	}
	return e.cfg.Area.X
}

func (e *Engine) ViewportHeight() float64 {
	if e.cfg.Viewport != nil {
		return e.cfg.Viewport.Y
	}
	return e.cfg.Area.Y
}

func (e *Engine) AreaWidth() float64 {
	return e.cfg.Area.X
}

func (e *Engine) AreaHeight() float64 {
	return e.cfg.Area.Y
}

// Viewport returns the visible window as a rectangle
func (e *Engine) Viewport() physics.Rect {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.viewport()
}

func (e *Engine) viewport() physics.Rect {
	var pos physics.Vector2D
	if e.viewportPos != nil {
		pos = *e.viewportPos
	}
	return physics.NewRect(pos.X, pos.Y, e.ViewportWidth(), e.ViewportHeight())
}

// Name returns the level name
func (e *Engine) Name() string {
	return e.cfg.Name
}

// Table returns the shared trigonometry table
func (e *Engine) Table() *physics.AngleTable {
	return e.table
}

// HUD returns the status line for the current state
func (e *Engine) HUD() entity.HUD {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hud()
}

func (e *Engine) hud() entity.HUD {
	return entity.HUD{
		Fuel:         e.fuel,
		FuelFraction: float64(e.fuel) / float64(e.cfg.FullFuel),
		FuelLow:      e.fuelLow(),
		Level:        e.isLevel(),
		Landed:       e.landed,
		Collided:     e.collided,
		Finished:     e.finished(),
		Paused:       e.blockAlert,
		Velocity:     e.velocity,
		Rotation:     e.rotation,
	}
}

// Render draws one frame
func (e *Engine) Render(r entity.Renderer) {
	e.RenderWithFade(r, 0)
}

// RenderWithFade draws one frame with the end-of-session fade level in the HUD
func (e *Engine) RenderWithFade(r entity.Renderer, fade float64) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	r.Clear()
	r.SetViewport(e.viewport())

	phase := e.animationPhase()
	for _, w := range e.winds {
		w.Render(r, phase)
	}
	for i := range e.cfg.Walls {
		e.cfg.Walls[i].Render(r, e.drawStep, e.table)
	}
	r.RenderLandingPad(e.landingPad(), e.isLevel())
	for _, a := range e.asteroids {
		a.Render(r)
	}
	if !e.blownUp {
		r.RenderShip(physics.ShipHull(e.table, e.position, e.rotation), e.thrusting())
	}
	for _, p := range e.particles {
		p.Render(r)
	}

	hud := e.hud()
	hud.Fade = fade
	r.RenderHUD(hud)
	r.Present()
}
