// pkg/render/engo/renderer_test.go
package engo

import (
	"image/color"
	"math"
	"testing"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo/common"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-flightsim/pkg/render"
)

// fakeRenderSystem records sprites the renderer registers.
type fakeRenderSystem struct {
	added   map[uint64]*common.RenderComponent
	removed int
}

func newFakeRenderSystem() *fakeRenderSystem {
	return &fakeRenderSystem{added: make(map[uint64]*common.RenderComponent)}
}

func (f *fakeRenderSystem) Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent) {
	f.added[basic.ID()] = render
}

func (f *fakeRenderSystem) Remove(basic ecs.BasicEntity) {
	delete(f.added, basic.ID())
	f.removed++
}

func instanceAt(x, z float64) render.Instance {
	return render.Instance{
		Model: mgl64.Translate3D(x, 0, z),
		Color: mgl64.Vec4{1, 0, 0, 1},
	}
}

func TestEngoRenderer_PoolsSprites(t *testing.T) {
	system := newFakeRenderSystem()
	r := NewEngoRenderer(system, NewCameraSystem())
	const mesh = render.MeshID("ship/shuttle")

	r.Clear()
	r.Submit(mesh, instanceAt(0, 0))
	r.Submit(mesh, instanceAt(1, 1))
	r.Present()
	if r.Sprites(mesh) != 2 || r.Visible(mesh) != 2 {
		t.Fatalf("Expected 2 sprites, got %d pooled %d visible", r.Sprites(mesh), r.Visible(mesh))
	}

	// A smaller frame reuses the pool and hides the spare sprite.
	r.Clear()
	r.Submit(mesh, instanceAt(2, 2))
	r.Present()
	if r.Sprites(mesh) != 2 {
		t.Errorf("Pool should not grow, got %d", r.Sprites(mesh))
	}
	if len(system.added) != 2 {
		t.Errorf("Expected 2 registered sprites, got %d", len(system.added))
	}
	pool := r.pools[mesh]
	if pool[0].render.Hidden {
		t.Error("First sprite should be visible")
	}
	if !pool[1].render.Hidden {
		t.Error("Unused sprite should be hidden")
	}

	r.Release()
	if system.removed != 2 || r.Sprites(mesh) != 0 {
		t.Errorf("Release should remove every sprite, removed %d", system.removed)
	}
}

func TestDrawableFor(t *testing.T) {
	tests := []struct {
		mesh render.MeshID
		want common.Drawable
	}{
		{"ship/albatross", common.Triangle{}},
		{"planet", common.Circle{}},
		{"debris", common.Rectangle{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mesh), func(t *testing.T) {
			if got := drawableFor(tt.mesh); got != tt.want {
				t.Errorf("drawableFor(%q) = %T", tt.mesh, got)
			}
		})
	}
}

func TestPlace(t *testing.T) {
	camera := NewCameraSystem()
	camera.SetViewport(800, 600)

	t.Run("scaled hull", func(t *testing.T) {
		var space common.SpaceComponent
		inst := render.Instance{Model: mgl64.Translate3D(10, 0, 0).Mul4(mgl64.Scale3D(5, 1, 2))}
		place(&space, inst, camera)

		if space.Width != 20 || space.Height != 8 {
			t.Errorf("Expected 20x8 sprite, got %fx%f", space.Width, space.Height)
		}
		if space.Position.X != 430 || space.Position.Y != 296 {
			t.Errorf("Expected top-left (430, 296), got %v", space.Position)
		}
		if space.Rotation != 0 {
			t.Errorf("Expected no rotation, got %f", space.Rotation)
		}
	})

	t.Run("minimum size", func(t *testing.T) {
		var space common.SpaceComponent
		inst := render.Instance{Model: mgl64.Scale3D(0.1, 0.1, 0.1)}
		place(&space, inst, camera)
		if space.Width != minSpriteSize || space.Height != minSpriteSize {
			t.Errorf("Expected minimum size, got %fx%f", space.Width, space.Height)
		}
	})
}

func TestHeading(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		want  float32
	}{
		{"forward", 0, 0},
		{"quarter turn", math.Pi / 2, 90},
		{"reverse", math.Pi, 180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := mgl64.QuatRotate(tt.angle, mgl64.Vec3{0, 1, 0}).Mat4()
			got := heading(model)
			if math.Abs(float64(got-tt.want)) > 1e-3 && math.Abs(float64(got+tt.want)) > 1e-3 {
				t.Errorf("heading = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestToColor(t *testing.T) {
	got := toColor(mgl64.Vec4{1, 0.5, 0, 2})
	want := color.RGBA{R: 255, G: 128, B: 0, A: 255}
	if got != want {
		t.Errorf("toColor = %v, want %v", got, want)
	}
}
