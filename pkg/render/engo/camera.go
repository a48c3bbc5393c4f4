// pkg/render/engo/camera.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"github.com/go-gl/mathgl/mgl64"
)

// CameraSystem follows the player's ship across the x/z plane and owns
// the world-to-screen projection.
type CameraSystem struct {
	// Target to follow
	target    mgl64.Vec2
	targetSet bool

	// Camera properties
	zoom    float32
	minZoom float32
	maxZoom float32
	// pixelsPerUnit is the screen size of one world unit at zoom 1.
	pixelsPerUnit float32

	// Smooth following
	followSpeed float32
	smoothing   bool

	// Current camera state
	currentPos mgl64.Vec2
	width      float32
	height     float32
}

// NewCameraSystem creates a new camera system
func NewCameraSystem() *CameraSystem {
	return &CameraSystem{
		zoom:          1.0,
		minZoom:       0.01,
		maxZoom:       10.0,
		pixelsPerUnit: 4.0,
		followSpeed:   2.0,
		smoothing:     true,
		width:         800,
		height:        600,
	}
}

// Add satisfies the ecs.System interface
func (cs *CameraSystem) Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent) {
}

// Remove satisfies the ecs.System interface
func (cs *CameraSystem) Remove(basic ecs.BasicEntity) {}

// Update applies zoom input and moves the camera toward its target
func (cs *CameraSystem) Update(dt float32) {
	cs.SetViewport(engo.GameWidth(), engo.GameHeight())
	cs.handleZoomInput()
	cs.Follow(dt)
}

func (cs *CameraSystem) handleZoomInput() {
	scrollY := engo.Input.Mouse.ScrollY
	if scrollY != 0 {
		cs.SetZoom(cs.zoom * (1.0 + scrollY*0.1))
	}

	if engo.Input.Button(buttonZoomIn).Down() {
		cs.SetZoom(cs.zoom * 1.02)
	}
	if engo.Input.Button(buttonZoomOut).Down() {
		cs.SetZoom(cs.zoom * 0.98)
	}
	if engo.Input.Button(buttonResetZoom).JustPressed() {
		cs.SetZoom(1.0)
	}
}

// Follow moves the camera toward the target. Without smoothing it snaps.
func (cs *CameraSystem) Follow(dt float32) {
	if !cs.targetSet {
		return
	}
	if !cs.smoothing {
		cs.currentPos = cs.target
		return
	}

	step := float64(cs.followSpeed * dt)
	if step > 1 {
		step = 1
	}
	cs.currentPos = cs.currentPos.Add(cs.target.Sub(cs.currentPos).Mul(step))
}

// SetTarget sets the world (x, z) position to follow
func (cs *CameraSystem) SetTarget(target mgl64.Vec2) {
	first := !cs.targetSet
	cs.target = target
	cs.targetSet = true

	if first || !cs.smoothing {
		cs.currentPos = target
	}
}

// ClearTarget stops following
func (cs *CameraSystem) ClearTarget() {
	cs.targetSet = false
}

// SetViewport sets the screen size in pixels. Zero sizes are ignored.
func (cs *CameraSystem) SetViewport(width, height float32) {
	if width > 0 && height > 0 {
		cs.width = width
		cs.height = height
	}
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

// GetZoomLimits returns the current zoom limits
func (cs *CameraSystem) GetZoomLimits() (float32, float32) {
	return cs.minZoom, cs.maxZoom
}

// SetFollowSpeed sets the camera follow speed
func (cs *CameraSystem) SetFollowSpeed(speed float32) {
	cs.followSpeed = speed
}

// EnableSmoothing enables or disables camera smoothing
func (cs *CameraSystem) EnableSmoothing(enabled bool) {
	cs.smoothing = enabled
}

// GetCurrentPosition returns the world (x, z) at the screen centre
func (cs *CameraSystem) GetCurrentPosition() mgl64.Vec2 {
	return cs.currentPos
}

// Scale returns pixels per world unit at the current zoom.
func (cs *CameraSystem) Scale() float32 {
	return cs.pixelsPerUnit * cs.zoom
}

// WorldToScreen projects a world position onto the screen. World X maps
// to screen X and world Z to screen Y; Y is flattened.
func (cs *CameraSystem) WorldToScreen(pos mgl64.Vec3) engo.Point {
	scale := float64(cs.Scale())
	return engo.Point{
		X: float32((pos.X()-cs.currentPos.X())*scale) + cs.width/2,
		Y: float32((pos.Z()-cs.currentPos.Y())*scale) + cs.height/2,
	}
}

// ScreenToWorld inverts WorldToScreen on the y = 0 plane.
func (cs *CameraSystem) ScreenToWorld(p engo.Point) mgl64.Vec3 {
	scale := float64(cs.Scale())
	return mgl64.Vec3{
		float64(p.X-cs.width/2)/scale + cs.currentPos.X(),
		0,
		float64(p.Y-cs.height/2)/scale + cs.currentPos.Y(),
	}
}
