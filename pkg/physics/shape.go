package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// BoxCollider describes a hull as an axis-aligned box in the local frame.
// Extents are full edge lengths, not half extents.
type BoxCollider struct {
	Extents mgl64.Vec3
}

// NewBoxCollider validates the extents.
func NewBoxCollider(extents mgl64.Vec3) (BoxCollider, error) {
	if !AllPositive(extents) {
		return BoxCollider{}, fmt.Errorf("%w: box extents %v", ErrInvalidShape, extents)
	}
	return BoxCollider{Extents: extents}, nil
}

// HalfExtents returns half of each edge length.
func (b BoxCollider) HalfExtents() mgl64.Vec3 {
	return b.Extents.Mul(0.5)
}

// Volume returns the box volume.
func (b BoxCollider) Volume() float64 {
	return b.Extents[0] * b.Extents[1] * b.Extents[2]
}

// Density returns the uniform density that gives the box the given mass.
func (b BoxCollider) Density(mass float64) float64 {
	v := b.Volume()
	if v <= 0 {
		return 0
	}
	return mass / v
}

// Inertia returns the solid-box inertia for the given mass.
func (b BoxCollider) Inertia(mass float64) (InertiaProperties, error) {
	return BoxInertia(mass, b.Extents)
}

// BoundingRadius is the radius of the sphere enclosing the box.
func (b BoxCollider) BoundingRadius() float64 {
	return b.HalfExtents().Len()
}
