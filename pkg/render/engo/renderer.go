// pkg/render/engo/renderer.go
package engo

import (
	"image/color"
	"math"
	"strings"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-flightsim/pkg/render"
)

// minSpriteSize keeps far-away or tiny hulls visible.
const minSpriteSize = 4

// sprite is a pooled engo entity reused for one instance per frame.
type sprite struct {
	basic  ecs.BasicEntity
	render common.RenderComponent
	space  common.SpaceComponent
}

// spriteAdder is the part of common.RenderSystem the renderer needs.
type spriteAdder interface {
	Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent)
	Remove(basic ecs.BasicEntity)
}

// EngoRenderer implements render.Renderer by placing flat shapes for
// every instance, projected through the camera.
type EngoRenderer struct {
	system spriteAdder
	camera *CameraSystem

	// Sprite pools per mesh; used counts reset every frame.
	pools map[render.MeshID][]*sprite
	used  map[render.MeshID]int
}

var _ render.Renderer = (*EngoRenderer)(nil)

// NewEngoRenderer creates a renderer drawing into system.
func NewEngoRenderer(system spriteAdder, camera *CameraSystem) *EngoRenderer {
	return &EngoRenderer{
		system: system,
		camera: camera,
		pools:  make(map[render.MeshID][]*sprite),
		used:   make(map[render.MeshID]int),
	}
}

// Clear implements render.Renderer
func (r *EngoRenderer) Clear() {
	for mesh := range r.used {
		r.used[mesh] = 0
	}
}

// Submit implements render.Renderer
func (r *EngoRenderer) Submit(mesh render.MeshID, inst render.Instance) {
	s := r.acquire(mesh)
	place(&s.space, inst, r.camera)
	s.render.Color = toColor(inst.Color)
	s.render.Hidden = false
}

// Present hides the pooled sprites no instance claimed this frame.
func (r *EngoRenderer) Present() {
	for mesh, pool := range r.pools {
		for _, s := range pool[r.used[mesh]:] {
			s.render.Hidden = true
		}
	}
}

// Sprites returns the number of pooled sprites for a mesh.
func (r *EngoRenderer) Sprites(mesh render.MeshID) int {
	return len(r.pools[mesh])
}

// Visible returns how many sprites of a mesh are drawn this frame.
func (r *EngoRenderer) Visible(mesh render.MeshID) int {
	return r.used[mesh]
}

// Release removes every pooled sprite from the render system.
func (r *EngoRenderer) Release() {
	for mesh, pool := range r.pools {
		for _, s := range pool {
			r.system.Remove(s.basic)
		}
		delete(r.pools, mesh)
		delete(r.used, mesh)
	}
}

func (r *EngoRenderer) acquire(mesh render.MeshID) *sprite {
	pool := r.pools[mesh]
	n := r.used[mesh]
	r.used[mesh] = n + 1
	if n < len(pool) {
		return pool[n]
	}

	s := &sprite{
		basic:  ecs.NewBasic(),
		render: common.RenderComponent{Drawable: drawableFor(mesh)},
	}
	r.pools[mesh] = append(pool, s)
	r.system.Add(&s.basic, &s.render, &s.space)
	return s
}

// drawableFor picks a shape per mesh family.
func drawableFor(mesh render.MeshID) common.Drawable {
	switch {
	case strings.HasPrefix(string(mesh), "ship/"):
		return common.Triangle{}
	case mesh == "planet":
		return common.Circle{}
	default:
		return common.Rectangle{}
	}
}

// place sizes and positions a sprite from an instance's model matrix.
// The hull's x and z scale become the sprite width and height.
func place(space *common.SpaceComponent, inst render.Instance, camera *CameraSystem) {
	model := inst.Model
	sx := mgl64.Vec3{model[0], model[1], model[2]}.Len()
	sz := mgl64.Vec3{model[8], model[9], model[10]}.Len()

	scale := camera.Scale()
	width := float32(math.Max(sx*float64(scale), minSpriteSize))
	height := float32(math.Max(sz*float64(scale), minSpriteSize))

	center := camera.WorldToScreen(inst.Position())
	space.Width = width
	space.Height = height
	space.Position = engo.Point{X: center.X - width/2, Y: center.Y - height/2}
	space.Rotation = heading(model)
}

// heading is the yaw of the model's local +Z axis in degrees, measured
// from screen down (world +Z) toward world +X.
func heading(model mgl64.Mat4) float32 {
	fx, fz := model[8], model[10]
	if fx == 0 && fz == 0 {
		return 0
	}
	return float32(mgl64.RadToDeg(math.Atan2(fx, fz)))
}

func toColor(c mgl64.Vec4) color.RGBA {
	channel := func(v float64) uint8 {
		return uint8(mgl64.Clamp(v, 0, 1)*255 + 0.5)
	}
	return color.RGBA{R: channel(c[0]), G: channel(c[1]), B: channel(c[2]), A: channel(c[3])}
}
