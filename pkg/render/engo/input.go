// pkg/render/engo/input.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
)

// Button names registered with engo.Input
const (
	ButtonThrust    = "thrust"
	ButtonTurnLeft  = "turnLeft"
	ButtonTurnRight = "turnRight"
	ButtonPause     = "pause"
	ButtonQuit      = "quit"
)

// Controls is the part of the engine the keyboard drives
type Controls interface {
	SetThrust(on bool)
	SetRotation(left, right *bool)
	SetBlockAlert(blocked bool)
	BlockAlert() bool
}

// Buttons reports the state of named buttons
type Buttons interface {
	Down(name string) bool
	JustPressed(name string) bool
}

// engoButtons reads buttons from engo.Input
type engoButtons struct{}

func (engoButtons) Down(name string) bool        { return engo.Input.Button(name).Down() }
func (engoButtons) JustPressed(name string) bool { return engo.Input.Button(name).JustPressed() }

// InputSystem turns keyboard state into engine controls
type InputSystem struct {
	controls Controls
	buttons  Buttons
	quit     func()

	thrustPressed    bool
	turnLeftPressed  bool
	turnRightPressed bool
}

// NewInputSystem creates an input system. quit is called when the quit
// button is pressed and may be nil.
func NewInputSystem(controls Controls, buttons Buttons, quit func()) *InputSystem {
	return &InputSystem{
		controls: controls,
		buttons:  buttons,
		quit:     quit,
	}
}

// Priority runs input handling first
func (is *InputSystem) Priority() int {
	return 20
}

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(basic ecs.BasicEntity) {}

// Update reads the buttons and forwards changes to the engine
func (is *InputSystem) Update(dt float32) {
	thrust := is.buttons.Down(ButtonThrust)
	if thrust != is.thrustPressed {
		is.thrustPressed = thrust
		is.controls.SetThrust(thrust)
	}

	left := is.buttons.Down(ButtonTurnLeft)
	right := is.buttons.Down(ButtonTurnRight)
	if left != is.turnLeftPressed || right != is.turnRightPressed {
		is.turnLeftPressed, is.turnRightPressed = left, right
		is.controls.SetRotation(&left, &right)
	}

	if is.buttons.JustPressed(ButtonPause) {
		is.controls.SetBlockAlert(!is.controls.BlockAlert())
	}
	if is.buttons.JustPressed(ButtonQuit) && is.quit != nil {
		is.quit()
	}
}

// SetupInputBindings registers the key bindings. engo.Input must exist,
// so call it from a scene's Setup.
func SetupInputBindings() {
	engo.Input.RegisterButton(ButtonThrust, engo.KeyW, engo.KeyArrowUp, engo.KeySpace)
	engo.Input.RegisterButton(ButtonTurnLeft, engo.KeyA, engo.KeyArrowLeft)
	engo.Input.RegisterButton(ButtonTurnRight, engo.KeyD, engo.KeyArrowRight)
	engo.Input.RegisterButton(ButtonPause, engo.KeyP)
	engo.Input.RegisterButton(ButtonQuit, engo.KeyEscape, engo.KeyQ)
}
