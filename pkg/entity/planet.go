// pkg/entity/planet.go
package entity

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-flightsim/pkg/render"
)

// PlanetType defines the look of a planet
type PlanetType int

const (
	Rocky PlanetType = iota
	GasGiant
	Ice
)

// MeshPlanet is the shared sphere mesh for every planet.
const MeshPlanet render.MeshID = "planet"

// Planet is static scenery. It is drawn but never simulated.
type Planet struct {
	Name     string
	Type     PlanetType
	Position mgl64.Vec3
	Radius   float64
}

// NewPlanet creates a planet
func NewPlanet(name string, position mgl64.Vec3, radius float64, planetType PlanetType) Planet {
	return Planet{
		Name:     name,
		Type:     planetType,
		Position: position,
		Radius:   radius,
	}
}

// Color returns the display color of the planet type.
func (p Planet) Color() mgl64.Vec4 {
	switch p.Type {
	case GasGiant:
		return mgl64.Vec4{0.85, 0.6, 0.35, 1}
	case Ice:
		return mgl64.Vec4{0.8, 0.9, 1, 1}
	default:
		return mgl64.Vec4{0.5, 0.45, 0.4, 1}
	}
}

// Renderable returns the draw data for the planet.
func (p Planet) Renderable() Renderable {
	return Renderable{Mesh: MeshPlanet, Color: p.Color()}
}

// Scale is the uniform model scale that turns the unit sphere mesh into
// this planet.
func (p Planet) Scale() mgl64.Vec3 {
	return mgl64.Vec3{p.Radius, p.Radius, p.Radius}
}

// PlanetTypeFromString converts a string to a PlanetType, defaulting to Rocky.
func PlanetTypeFromString(s string) PlanetType {
	switch s {
	case "GasGiant":
		return GasGiant
	case "Ice":
		return Ice
	default:
		return Rocky
	}
}
