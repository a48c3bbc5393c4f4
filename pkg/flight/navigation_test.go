// pkg/flight/navigation_test.go
package flight

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-flightsim/pkg/physics"
)

type navFixture struct {
	mass    physics.MassProperties
	inertia physics.InertiaProperties
	limits  ThrusterLimits
}

func newNavFixture(t *testing.T) navFixture {
	t.Helper()
	mass, err := physics.NewMassProperties(10)
	if err != nil {
		t.Fatal(err)
	}
	inertia, err := physics.NewInertiaProperties(mgl64.Vec3{2, 4, 8})
	if err != nil {
		t.Fatal(err)
	}
	return navFixture{
		mass:    mass,
		inertia: inertia,
		limits:  mustLimits(t, mgl64.Vec3{100, 100, 100}, mgl64.Vec3{8, 8, 8}),
	}
}

func TestNewNavigationTarget(t *testing.T) {
	for _, threshold := range []float64{0, 2, 1e6} {
		if _, err := NewNavigationTarget(mgl64.Vec3{}, threshold); err != nil {
			t.Errorf("threshold %v: unexpected error %v", threshold, err)
		}
	}
	for _, threshold := range []float64{-1, math.NaN(), math.Inf(1)} {
		if _, err := NewNavigationTarget(mgl64.Vec3{}, threshold); !errors.Is(err, ErrInvalidThreshold) {
			t.Errorf("threshold %v: error = %v, want ErrInvalidThreshold", threshold, err)
		}
	}
}

func TestResolveArrivalGivesExactZero(t *testing.T) {
	f := newNavFixture(t)
	tests := []struct {
		name     string
		position mgl64.Vec3
		want     bool
	}{
		{"on target", mgl64.Vec3{10, 0, 0}, true},
		{"just inside", mgl64.Vec3{10, 0, 1.999}, true},
		{"on the boundary", mgl64.Vec3{10, 0, 2}, false},
		{"far away", mgl64.Vec3{-40, 3, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := TargetVelocity{Linear: mgl64.Vec3{9, 9, 9}}
			target := NavigationTarget{Position: mgl64.Vec3{10, 0, 0}, ArrivalThreshold: 2}
			arrived := ResolveNavigation(physics.NewTransform(tt.position), target, f.limits, f.mass, f.inertia, &out)
			if arrived != tt.want {
				t.Fatalf("arrived = %v, want %v", arrived, tt.want)
			}
			if arrived && out.Linear != (mgl64.Vec3{}) {
				t.Errorf("arrived but linear setpoint = %v", out.Linear)
			}
			if !arrived && out.Linear.Len() == 0 {
				t.Error("not arrived but setpoint is zero")
			}
		})
	}
}

func TestResolveBrakingLaw(t *testing.T) {
	f := newNavFixture(t)
	var out TargetVelocity
	target := NavigationTarget{Position: mgl64.Vec3{0, 0, 50}, ArrivalThreshold: 2}

	ResolveNavigation(physics.NewTransform(mgl64.Vec3{}), target, f.limits, f.mass, f.inertia, &out)

	// a = 100/10, v = sqrt(2·10·50)
	want := mgl64.Vec3{0, 0, math.Sqrt(1000)}
	if !vec3AlmostEqual(out.Linear, want, 1e-9) {
		t.Errorf("linear setpoint = %v, want %v", out.Linear, want)
	}
	if out.Angular != (mgl64.Vec3{}) {
		t.Errorf("position-only target produced angular setpoint %v", out.Angular)
	}
}

func TestResolveZeroThresholdOnTarget(t *testing.T) {
	f := newNavFixture(t)
	out := TargetVelocity{Linear: mgl64.Vec3{1, 1, 1}}
	target := NavigationTarget{Position: mgl64.Vec3{3, 3, 3}}

	arrived := ResolveNavigation(physics.NewTransform(mgl64.Vec3{3, 3, 3}), target, f.limits, f.mass, f.inertia, &out)

	if !physics.IsFinite(out.Linear) || out.Linear != (mgl64.Vec3{}) {
		t.Errorf("linear setpoint = %v, want zero", out.Linear)
	}
	if !arrived {
		t.Error("ship on a zero-radius target should count as arrived")
	}
}

func TestResolveAngularSetpoint(t *testing.T) {
	f := newNavFixture(t)

	tests := []struct {
		name    string
		current mgl64.Quat
		target  mgl64.Quat
		want    mgl64.Vec3
	}{
		{
			name:    "aligned",
			current: mgl64.QuatRotate(0.4, physics.AxisY),
			target:  mgl64.QuatRotate(0.4, physics.AxisY),
			want:    mgl64.Vec3{},
		},
		{
			// alpha_z = 8/8 = 1, v = sqrt(2·1·0.5)
			name:    "positive z",
			current: mgl64.QuatIdent(),
			target:  mgl64.QuatRotate(0.5, physics.AxisZ),
			want:    mgl64.Vec3{0, 0, 1},
		},
		{
			// alpha_x = 8/2 = 4, v = -sqrt(2·4·0.5)
			name:    "negative x",
			current: mgl64.QuatIdent(),
			target:  mgl64.QuatRotate(-0.5, physics.AxisX),
			want:    mgl64.Vec3{-2, 0, 0},
		},
		{
			// 3π/2 the long way round is π/2 the short way, about -Z.
			name:    "shortest path",
			current: mgl64.QuatIdent(),
			target:  mgl64.QuatRotate(3*math.Pi/2, physics.AxisZ),
			want:    mgl64.Vec3{0, 0, -math.Sqrt(math.Pi)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := physics.NewTransform(mgl64.Vec3{})
			tr.Orientation = tt.current
			target := NavigationTarget{Position: mgl64.Vec3{0, 0, 100}, ArrivalThreshold: 1}.WithOrientation(tt.target)

			var out TargetVelocity
			ResolveNavigation(tr, target, f.limits, f.mass, f.inertia, &out)
			if !vec3AlmostEqual(out.Angular, tt.want, 1e-6) {
				t.Errorf("angular setpoint = %v, want %v", out.Angular, tt.want)
			}
		})
	}
}

func TestResolverCapabilityOverride(t *testing.T) {
	f := newNavFixture(t)
	f.limits = mustLimits(t, mgl64.Vec3{30, 40, 10}, mgl64.Vec3{1, 1, 1})
	target := NavigationTarget{Position: mgl64.Vec3{10, 10, 0}, ArrivalThreshold: 1}
	tr := physics.NewTransform(mgl64.Vec3{})

	var ellipsoid, box TargetVelocity
	Resolver{}.Resolve(tr, target, f.limits, f.mass, f.inertia, &ellipsoid)
	Resolver{Capability: BoxMaxAccelerationInDirection}.Resolve(tr, target, f.limits, f.mass, f.inertia, &box)

	if !(box.Linear.Len() > ellipsoid.Linear.Len()) {
		t.Errorf("box setpoint %v should exceed ellipsoid %v off-axis", box.Linear, ellipsoid.Linear)
	}
}

func TestNavigationQueue(t *testing.T) {
	var q NavigationQueue
	if _, ok := q.Pop(); ok {
		t.Fatal("Pop() on empty queue returned a waypoint")
	}

	for i := 1; i <= 3; i++ {
		q.Push(NavigationTarget{Position: mgl64.Vec3{float64(i), 0, 0}})
	}
	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}
	for i := 1; i <= 3; i++ {
		next, ok := q.Pop()
		if !ok || next.Position.X() != float64(i) {
			t.Fatalf("Pop() #%d = %v, %v", i, next.Position, ok)
		}
	}

	q.Push(NavigationTarget{})
	q.Clear()
	if q.Len() != 0 {
		t.Errorf("Len() after Clear = %d", q.Len())
	}
}
