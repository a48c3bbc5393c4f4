package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestNewMassProperties(t *testing.T) {
	tests := []struct {
		name    string
		mass    float64
		wantErr bool
	}{
		{"positive", 10, false},
		{"small positive", 1e-6, false},
		{"zero", 0, true},
		{"negative", -5, true},
		{"nan", math.NaN(), true},
		{"infinite", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMassProperties(tt.mass)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMass) {
					t.Fatalf("NewMassProperties(%v) error = %v, want ErrInvalidMass", tt.mass, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewMassProperties(%v) unexpected error: %v", tt.mass, err)
			}
			if m.Mass != tt.mass || !almostEqual(m.InverseMass*tt.mass, 1, 1e-12) {
				t.Errorf("NewMassProperties(%v) = %+v", tt.mass, m)
			}
		})
	}
}

func TestBoxInertia(t *testing.T) {
	inertia, err := BoxInertia(12, mgl64.Vec3{1, 2, 3})
	if err != nil {
		t.Fatalf("BoxInertia() error: %v", err)
	}
	want := mgl64.Vec3{13, 10, 5}
	if got := inertia.Tensor.Diag(); !vec3AlmostEqual(got, want, 1e-12) {
		t.Errorf("tensor diagonal = %v, want %v", got, want)
	}
	wantInv := mgl64.Vec3{1.0 / 13, 1.0 / 10, 1.0 / 5}
	if got := inertia.InverseDiagonal(); !vec3AlmostEqual(got, wantInv, 1e-12) {
		t.Errorf("inverse diagonal = %v, want %v", got, wantInv)
	}

	product := inertia.Tensor.Mul3(inertia.InverseTensor)
	identity := mgl64.Ident3()
	for i := range product {
		if !almostEqual(product[i], identity[i], 1e-12) {
			t.Fatalf("I·I⁻¹ = %v, want identity", product)
		}
	}
}

func TestBoxInertiaRejectsBadInput(t *testing.T) {
	if _, err := BoxInertia(0, mgl64.Vec3{1, 1, 1}); !errors.Is(err, ErrInvalidMass) {
		t.Errorf("zero mass error = %v, want ErrInvalidMass", err)
	}
	if _, err := BoxInertia(1, mgl64.Vec3{1, 0, 1}); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("flat box error = %v, want ErrInvalidShape", err)
	}
}

func TestSphereInertia(t *testing.T) {
	inertia, err := SphereInertia(5, 2)
	if err != nil {
		t.Fatalf("SphereInertia() error: %v", err)
	}
	want := mgl64.Vec3{8, 8, 8}
	if got := inertia.Tensor.Diag(); !vec3AlmostEqual(got, want, 1e-12) {
		t.Errorf("tensor diagonal = %v, want %v", got, want)
	}
	if _, err := SphereInertia(5, -1); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("negative radius error = %v, want ErrInvalidShape", err)
	}
}

func TestNewInertiaPropertiesRejectsNonPositive(t *testing.T) {
	if _, err := NewInertiaProperties(mgl64.Vec3{1, -1, 1}); !errors.Is(err, ErrInvalidInertia) {
		t.Errorf("error = %v, want ErrInvalidInertia", err)
	}
}

func TestTransformModelMatrix(t *testing.T) {
	tr := Transform{
		Position:    mgl64.Vec3{1, 2, 3},
		Orientation: mgl64.QuatRotate(math.Pi/2, AxisZ),
		Scale:       mgl64.Vec3{2, 2, 2},
	}
	m := tr.ModelMatrix()

	// scale (2,0,0) -> rotate (0,2,0) -> translate (1,4,3)
	got := m.Mul4x1(mgl64.Vec4{1, 0, 0, 1})
	want := mgl64.Vec4{1, 4, 3, 1}
	for i := range want {
		if !almostEqual(got[i], want[i], 1e-12) {
			t.Fatalf("model·p = %v, want %v", got, want)
		}
	}

	// Column-major: translation lives in the last column.
	if m[12] != 1 || m[13] != 2 || m[14] != 3 || m[15] != 1 {
		t.Errorf("translation column = %v", m.Col(3))
	}
}

func TestTransformFrames(t *testing.T) {
	tr := NewTransform(mgl64.Vec3{})
	tr.Orientation = mgl64.QuatRotate(math.Pi/2, AxisY)

	// +Z rotated a quarter turn about +Y points along +X.
	if got := tr.Forward(); !vec3AlmostEqual(got, AxisX, 1e-12) {
		t.Errorf("Forward() = %v, want %v", got, AxisX)
	}

	v := mgl64.Vec3{0.5, -3, 7}
	if got := tr.WorldToLocal(tr.LocalToWorld(v)); !vec3AlmostEqual(got, v, 1e-12) {
		t.Errorf("WorldToLocal(LocalToWorld(v)) = %v, want %v", got, v)
	}
}

func TestForcesAccumulateAndReset(t *testing.T) {
	var f Forces
	if !f.IsZero() {
		t.Fatal("zero-value Forces should be zero")
	}
	f.Add(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 2, 0})
	f.Add(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 2, 0})
	if f.Linear != (mgl64.Vec3{2, 0, 0}) || f.Torque != (mgl64.Vec3{0, 4, 0}) {
		t.Errorf("accumulated forces = %+v", f)
	}
	f.Reset()
	if !f.IsZero() {
		t.Errorf("Reset() left %+v", f)
	}
}

func TestBoxCollider(t *testing.T) {
	box, err := NewBoxCollider(mgl64.Vec3{2, 4, 8})
	if err != nil {
		t.Fatalf("NewBoxCollider() error: %v", err)
	}
	if box.Volume() != 64 {
		t.Errorf("Volume() = %v, want 64", box.Volume())
	}
	if box.HalfExtents() != (mgl64.Vec3{1, 2, 4}) {
		t.Errorf("HalfExtents() = %v", box.HalfExtents())
	}
	if box.Density(128) != 2 {
		t.Errorf("Density(128) = %v, want 2", box.Density(128))
	}
	if !almostEqual(box.BoundingRadius(), math.Sqrt(21), 1e-12) {
		t.Errorf("BoundingRadius() = %v", box.BoundingRadius())
	}
	if _, err := NewBoxCollider(mgl64.Vec3{1, 1, -1}); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("negative extent error = %v, want ErrInvalidShape", err)
	}
}
