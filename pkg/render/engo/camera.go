// pkg/render/engo/camera.go
package engo

import (
	"math"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-lander/pkg/physics"
)

// CameraSystem maps world coordinates onto the window. It scales the
// engine's viewport to fit the window and glides towards the viewport
// origin when the engine scrolls.
type CameraSystem struct {
	// Target to follow
	target    physics.Vector2D
	targetSet bool

	// Camera properties
	zoom    float32
	minZoom float32
	maxZoom float32

	// Smooth following
	followSpeed float32
	smoothing   bool

	screenWidth  float32
	screenHeight float32

	// Current camera state
	currentPos physics.Vector2D
}

// NewCameraSystem creates a camera for a window of the given size
func NewCameraSystem(screenWidth, screenHeight float32) *CameraSystem {
	return &CameraSystem{
		zoom:         1.0,
		minZoom:      0.1,
		maxZoom:      3.0,
		followSpeed:  8.0,
		smoothing:    true,
		screenWidth:  screenWidth,
		screenHeight: screenHeight,
	}
}

// Priority runs the camera before the systems that draw through it
func (cs *CameraSystem) Priority() int {
	return 10
}

// Remove satisfies the ecs.System interface
func (cs *CameraSystem) Remove(basic ecs.BasicEntity) {}

// Update moves the camera towards its target
func (cs *CameraSystem) Update(dt float32) {
	if cs.targetSet {
		cs.updateCameraPosition(dt)
	}
}

// updateCameraPosition smoothly moves the camera toward the target
func (cs *CameraSystem) updateCameraPosition(dt float32) {
	if !cs.smoothing {
		cs.currentPos = cs.target
		return
	}
	factor := math.Min(float64(cs.followSpeed)*float64(dt), 1)
	cs.currentPos.X += (cs.target.X - cs.currentPos.X) * factor
	cs.currentPos.Y += (cs.target.Y - cs.currentPos.Y) * factor
}

// SetView points the camera at the engine's viewport and zooms so that it
// fills the window
func (cs *CameraSystem) SetView(view physics.Rect) {
	cs.SetTarget(view.Min())
	if view.Width > 0 && view.Height > 0 {
		fit := math.Min(float64(cs.screenWidth)/view.Width, float64(cs.screenHeight)/view.Height)
		cs.SetZoom(float32(fit))
	}
}

// SetTarget sets the target position for the camera to follow
func (cs *CameraSystem) SetTarget(target physics.Vector2D) {
	first := !cs.targetSet
	cs.target = target
	cs.targetSet = true

	if !cs.smoothing || first {
		cs.currentPos = target
	}
}

// ClearTarget clears the camera target
func (cs *CameraSystem) ClearTarget() {
	cs.targetSet = false
}

// SetZoom sets the camera zoom level
func (cs *CameraSystem) SetZoom(zoom float32) {
	cs.zoom = cs.clampZoom(zoom)
}

// GetZoom returns the current zoom level
func (cs *CameraSystem) GetZoom() float32 {
	return cs.zoom
}

func (cs *CameraSystem) clampZoom(zoom float32) float32 {
	if zoom < cs.minZoom {
		return cs.minZoom
	}
	if zoom > cs.maxZoom {
		return cs.maxZoom
	}
	return zoom
}

// SetZoomLimits sets the minimum and maximum zoom levels
func (cs *CameraSystem) SetZoomLimits(min, max float32) {
	cs.minZoom = min
	cs.maxZoom = max
	cs.zoom = cs.clampZoom(cs.zoom)
}

// SetFollowSpeed sets how quickly the camera catches up, per second
func (cs *CameraSystem) SetFollowSpeed(speed float32) {
	cs.followSpeed = speed
}

// EnableSmoothing enables or disables camera smoothing
func (cs *CameraSystem) EnableSmoothing(enabled bool) {
	cs.smoothing = enabled
}

// GetCurrentPosition returns the world point at the window's top-left corner
func (cs *CameraSystem) GetCurrentPosition() physics.Vector2D {
	return cs.currentPos
}

// WorldToScreen converts world coordinates to window coordinates
func (cs *CameraSystem) WorldToScreen(worldPos physics.Vector2D) physics.Vector2D {
	return worldPos.Sub(cs.currentPos).Scale(float64(cs.zoom))
}

// ScreenToWorld converts window coordinates to world coordinates
func (cs *CameraSystem) ScreenToWorld(screenPos physics.Vector2D) physics.Vector2D {
	return screenPos.Scale(1 / float64(cs.zoom)).Add(cs.currentPos)
}
