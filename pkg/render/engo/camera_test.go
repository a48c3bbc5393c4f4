// pkg/render/engo/camera_test.go
package engo

import (
	"math"
	"testing"

	"github.com/EngoEngine/engo"
	"github.com/go-gl/mathgl/mgl64"
)

func TestNewCameraSystem(t *testing.T) {
	camera := NewCameraSystem()

	if camera.GetZoom() != 1.0 {
		t.Errorf("Expected default zoom 1.0, got %f", camera.GetZoom())
	}
	min, max := camera.GetZoomLimits()
	if min != 0.01 || max != 10.0 {
		t.Errorf("Unexpected zoom limits %f..%f", min, max)
	}
	if !camera.smoothing {
		t.Error("Expected smoothing to be enabled by default")
	}
	if camera.targetSet {
		t.Error("Expected targetSet to be false by default")
	}
}

func TestCameraSystem_SetTarget(t *testing.T) {
	camera := NewCameraSystem()

	camera.SetTarget(mgl64.Vec2{100, 200})
	if camera.GetCurrentPosition() != (mgl64.Vec2{100, 200}) {
		t.Errorf("First target should snap, got %v", camera.GetCurrentPosition())
	}

	camera.SetTarget(mgl64.Vec2{200, 200})
	if camera.GetCurrentPosition() != (mgl64.Vec2{100, 200}) {
		t.Errorf("Later targets should be approached smoothly, got %v", camera.GetCurrentPosition())
	}

	camera.Follow(0.25)
	if got := camera.GetCurrentPosition().X(); math.Abs(got-150) > 1e-6 {
		t.Errorf("Expected x=150 after half-way follow, got %f", got)
	}

	camera.Follow(10)
	if camera.GetCurrentPosition() != (mgl64.Vec2{200, 200}) {
		t.Errorf("Large dt should not overshoot, got %v", camera.GetCurrentPosition())
	}

	camera.ClearTarget()
	camera.SetTarget(mgl64.Vec2{-5, -5})
	if camera.GetCurrentPosition() != (mgl64.Vec2{-5, -5}) {
		t.Errorf("Target after clear should snap, got %v", camera.GetCurrentPosition())
	}
}

func TestCameraSystem_NoSmoothing(t *testing.T) {
	camera := NewCameraSystem()
	camera.EnableSmoothing(false)
	camera.SetTarget(mgl64.Vec2{1, 1})
	camera.SetTarget(mgl64.Vec2{9, 9})

	if camera.GetCurrentPosition() != (mgl64.Vec2{9, 9}) {
		t.Errorf("Expected immediate positioning, got %v", camera.GetCurrentPosition())
	}
}

func TestCameraSystem_ZoomClamping(t *testing.T) {
	tests := []struct {
		name string
		zoom float32
		want float32
	}{
		{"within", 2, 2},
		{"below", 0.001, 0.01},
		{"above", 50, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			camera := NewCameraSystem()
			camera.SetZoom(tt.zoom)
			if camera.GetZoom() != tt.want {
				t.Errorf("SetZoom(%f) = %f, want %f", tt.zoom, camera.GetZoom(), tt.want)
			}
		})
	}

	camera := NewCameraSystem()
	camera.SetZoom(5)
	camera.SetZoomLimits(0.5, 2)
	if camera.GetZoom() != 2 {
		t.Errorf("Narrowing limits should clamp current zoom, got %f", camera.GetZoom())
	}
}

func TestCameraSystem_WorldToScreen(t *testing.T) {
	camera := NewCameraSystem()
	camera.SetViewport(800, 600)
	camera.SetTarget(mgl64.Vec2{10, 20})

	tests := []struct {
		name  string
		world mgl64.Vec3
		want  engo.Point
	}{
		{"centre", mgl64.Vec3{10, 99, 20}, engo.Point{X: 400, Y: 300}},
		{"right", mgl64.Vec3{20, 0, 20}, engo.Point{X: 440, Y: 300}},
		{"down", mgl64.Vec3{10, 0, 30}, engo.Point{X: 400, Y: 340}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := camera.WorldToScreen(tt.world)
			if math.Abs(float64(got.X-tt.want.X)) > 1e-3 || math.Abs(float64(got.Y-tt.want.Y)) > 1e-3 {
				t.Errorf("WorldToScreen(%v) = %v, want %v", tt.world, got, tt.want)
			}

			back := camera.ScreenToWorld(got)
			if math.Abs(back.X()-tt.world.X()) > 1e-3 || math.Abs(back.Z()-tt.world.Z()) > 1e-3 {
				t.Errorf("ScreenToWorld round trip = %v, want x/z of %v", back, tt.world)
			}
		})
	}
}

func TestCameraSystem_SetViewportIgnoresZero(t *testing.T) {
	camera := NewCameraSystem()
	camera.SetViewport(0, 0)
	p := camera.WorldToScreen(mgl64.Vec3{})
	if p.X != 400 || p.Y != 300 {
		t.Errorf("Expected default viewport centre, got %v", p)
	}
}
