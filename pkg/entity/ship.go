// pkg/entity/ship.go
package entity

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-flightsim/pkg/render"
)

// ShipClass defines the type of ship and its capabilities
type ShipClass int

const (
	Albatross ShipClass = iota
	Shuttle
	Freighter
)

// ShipStats contains the physical properties of a ship class
type ShipStats struct {
	Mass float64
	// Extents are the full edge lengths of the hull box.
	Extents   mgl64.Vec3
	MaxForce  mgl64.Vec3
	MaxTorque mgl64.Vec3
	Mesh      render.MeshID
	Color     mgl64.Vec4
}

// Ship mesh identifiers.
const (
	MeshAlbatross render.MeshID = "ship/albatross"
	MeshShuttle   render.MeshID = "ship/shuttle"
	MeshFreighter render.MeshID = "ship/freighter"
)

// String returns the class name.
func (c ShipClass) String() string {
	switch c {
	case Albatross:
		return "Albatross"
	case Shuttle:
		return "Shuttle"
	case Freighter:
		return "Freighter"
	default:
		return "Unknown"
	}
}

// MarshalText lets ship classes appear by name in JSON configuration.
func (c ShipClass) MarshalText() ([]byte, error) {
	if c.String() == "Unknown" {
		return nil, fmt.Errorf("unknown ship class %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText parses a class name.
func (c *ShipClass) UnmarshalText(text []byte) error {
	class, ok := ParseShipClass(string(text))
	if !ok {
		return fmt.Errorf("unknown ship class %q", string(text))
	}
	*c = class
	return nil
}

// ParseShipClass converts a name to a ShipClass.
func ParseShipClass(s string) (ShipClass, bool) {
	switch s {
	case "Albatross":
		return Albatross, true
	case "Shuttle":
		return Shuttle, true
	case "Freighter":
		return Freighter, true
	default:
		return Albatross, false
	}
}

// ShipClassFromString converts a string to a ShipClass enum value,
// falling back to Albatross.
func ShipClassFromString(s string) ShipClass {
	class, _ := ParseShipClass(s)
	return class
}

// Stats returns the base statistics for a ship class
func (c ShipClass) Stats() ShipStats {
	switch c {
	case Shuttle:
		return ShipStats{
			Mass:      800,
			Extents:   mgl64.Vec3{3, 1.5, 5},
			MaxForce:  mgl64.Vec3{8000, 8000, 16000},
			MaxTorque: mgl64.Vec3{4000, 4000, 4000},
			Mesh:      MeshShuttle,
			Color:     mgl64.Vec4{0.9, 0.9, 0.3, 1},
		}
	case Freighter:
		return ShipStats{
			Mass:      40000,
			Extents:   mgl64.Vec3{20, 8, 60},
			MaxForce:  mgl64.Vec3{200000, 200000, 400000},
			MaxTorque: mgl64.Vec3{500000, 500000, 500000},
			Mesh:      MeshFreighter,
			Color:     mgl64.Vec4{0.6, 0.4, 0.3, 1},
		}
	default:
		return ShipStats{
			Mass:      5000,
			Extents:   mgl64.Vec3{9.5484, 1.28, 4.3138},
			MaxForce:  mgl64.Vec3{50000, 50000, 100000},
			MaxTorque: mgl64.Vec3{50000, 50000, 50000},
			Mesh:      MeshAlbatross,
			Color:     mgl64.Vec4{0.3, 0.6, 1, 1},
		}
	}
}
