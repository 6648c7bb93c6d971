// pkg/render/engo/scene.go
package engo

import (
	"context"
	"time"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-lander/pkg/engine"
	"github.com/opd-ai/go-lander/pkg/logging"
)

// LanderScene runs one session in an Engo window
type LanderScene struct {
	runner *engine.Runner
	logger *logging.Logger

	renderer   *EngoRenderer
	camera     *CameraSystem
	input      *InputSystem
	hud        *HUDSystem
	simulation *simulationSystem
}

// NewLanderScene creates a scene driving runner
func NewLanderScene(runner *engine.Runner, logger *logging.Logger) *LanderScene {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &LanderScene{
		runner: runner,
		logger: logger,
	}
}

// Type returns the scene type (required by Engo)
func (scene *LanderScene) Type() string {
	return "LanderScene"
}

// Preload is called before the scene starts (required by Engo). All
// graphics are generated, so there is nothing to load.
func (scene *LanderScene) Preload() {}

// Setup is called when the scene starts (required by Engo)
func (scene *LanderScene) Setup(u engo.Updater) {
	world, _ := u.(*ecs.World)

	common.SetBackground(DefaultPalette().Background)
	SetupInputBindings()

	renderSystem := &common.RenderSystem{}
	world.AddSystem(renderSystem)

	scene.build(renderSystem, engo.GameWidth(), engo.GameHeight(), engoButtons{}, engo.Exit)
	world.AddSystem(scene.input)
	world.AddSystem(scene.camera)
	world.AddSystem(scene.simulation)
	world.AddSystem(scene.hud)

	scene.logger.Info(context.Background(), "engo scene ready",
		"width", engo.GameWidth(),
		"height", engo.GameHeight(),
	)
}

// build wires the systems without touching any Engo globals
func (scene *LanderScene) build(sink SpriteSink, width, height float32, buttons Buttons, exit func()) {
	scene.camera = NewCameraSystem(width, height)
	scene.hud = NewHUDSystem(sink)
	scene.renderer = NewEngoRenderer(sink, scene.camera, scene.hud)
	scene.input = NewInputSystem(scene.runner.Engine(), buttons, exit)
	scene.simulation = &simulationSystem{
		runner:   scene.runner,
		renderer: scene.renderer,
		logger:   scene.logger,
		done:     exit,
	}
}

// Exit is called when the scene is exiting (required by Engo)
func (scene *LanderScene) Exit() {
	scene.logger.Info(context.Background(), "engo scene closed",
		"outcome", scene.runner.Engine().Outcome(),
		"steps", scene.runner.Engine().Steps(),
	)
}

// simulationSystem advances the runner by the frame time and redraws
type simulationSystem struct {
	runner   *engine.Runner
	renderer *EngoRenderer
	logger   *logging.Logger
	done     func()
	finished bool
}

// Remove satisfies the ecs.System interface
func (s *simulationSystem) Remove(basic ecs.BasicEntity) {}

// Update satisfies the ecs.System interface
func (s *simulationSystem) Update(dt float32) {
	if s.finished {
		return
	}
	_, done := s.runner.Advance(time.Duration(float64(dt) * float64(time.Second)))
	s.runner.Render(s.renderer)

	if done {
		s.finished = true
		s.logger.Info(context.Background(), "session faded out",
			"outcome", s.runner.Engine().Outcome(),
		)
		if s.done != nil {
			s.done()
		}
	}
}

// Run opens a window and plays the session until it fades out or the
// window is closed
func Run(runner *engine.Runner, logger *logging.Logger, title string, width, height int) {
	engo.Run(engo.RunOptions{
		Title:    title,
		Width:    width,
		Height:   height,
		FPSLimit: 60,
	}, NewLanderScene(runner, logger))
}
