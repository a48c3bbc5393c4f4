// pkg/entity/entity.go
package entity

import (
	"github.com/EngoEngine/ecs"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-flightsim/pkg/render"
)

// ID is the stable public identifier of a spawned object. It is the id of
// the object's ecs.BasicEntity and never reused within a process.
type ID uint64

// Kind distinguishes controllable ships from scenery.
type Kind int

const (
	KindShip Kind = iota
	KindBody
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindShip:
		return "ship"
	case KindBody:
		return "body"
	default:
		return "unknown"
	}
}

// Tag names an object and links it to the system scheduler.
type Tag struct {
	Basic ecs.BasicEntity
	Name  string
	Kind  Kind
	Class ShipClass
}

// NewTag allocates a fresh BasicEntity for the object.
func NewTag(name string, kind Kind, class ShipClass) Tag {
	return Tag{
		Basic: ecs.NewBasic(),
		Name:  name,
		Kind:  kind,
		Class: class,
	}
}

// ID returns the public identifier.
func (t *Tag) ID() ID {
	return ID(t.Basic.ID())
}

// Renderable is the mesh and color an object is drawn with.
type Renderable struct {
	Mesh  render.MeshID
	Color mgl64.Vec4
}
