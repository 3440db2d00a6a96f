package model

import (
	"math"
	"testing"
)

func TestFixedOrbit(t *testing.T) {
	o := FixedOrbit{Offset: Vec3{X: 5, Z: -2}}
	if got := o.PositionAt(j2000jd + 1000); got != o.Offset {
		t.Errorf("PositionAt = %v, want %v", got, o.Offset)
	}
	if o.PeriodDays() != 0 {
		t.Errorf("PeriodDays = %v, want 0", o.PeriodDays())
	}
}

func TestCircularOrbitEpochAndQuarterPeriod(t *testing.T) {
	o := CircularOrbit{RadiusKm: 1000, Period: 100}

	if got := o.PositionAt(j2000jd); !vecClose(got, Vec3{X: 1000}, 1e-6) {
		t.Errorf("position at epoch = %v, want +X", got)
	}
	if got := o.PositionAt(j2000jd + 25); !vecClose(got, Vec3{Z: 1000}, 1e-6) {
		t.Errorf("position at quarter period = %v, want +Z", got)
	}
	if got := o.PositionAt(j2000jd + 100); !vecClose(got, Vec3{X: 1000}, 1e-6) {
		t.Errorf("position after a full period = %v, want +X", got)
	}
}

func TestCircularOrbitPhaseAndInclination(t *testing.T) {
	quarter := CircularOrbit{RadiusKm: 1000, Period: 100, PhaseDeg: 90}
	if got := quarter.PositionAt(j2000jd); !vecClose(got, Vec3{Z: 1000}, 1e-6) {
		t.Errorf("phase 90 at epoch = %v, want +Z", got)
	}

	// A 90 degree inclination folds the in-plane Z excursion onto -Y.
	polar := CircularOrbit{RadiusKm: 1000, Period: 100, Inclination: 90}
	if got := polar.PositionAt(j2000jd + 25); !vecClose(got, Vec3{Y: -1000}, 1e-6) {
		t.Errorf("polar orbit at quarter period = %v, want -Y", got)
	}
}

func TestEllipticalOrbitApsides(t *testing.T) {
	o := EllipticalOrbit{SemiMajorKm: 1000, Eccentricity: 0.3, Period: 50}

	peri := o.PositionAt(j2000jd).Norm()
	if math.Abs(peri-700) > 1e-6 {
		t.Errorf("periapsis distance = %v, want 700", peri)
	}
	apo := o.PositionAt(j2000jd + 25).Norm()
	if math.Abs(apo-1300) > 1e-6 {
		t.Errorf("apoapsis distance = %v, want 1300", apo)
	}
}

func TestEllipticalOrbitCustomEpoch(t *testing.T) {
	epoch := j2000jd + 12345.0
	o := EllipticalOrbit{SemiMajorKm: 500, Period: 10, EpochJD: epoch}
	if got := o.PositionAt(epoch); !vecClose(got, Vec3{X: 500}, 1e-6) {
		t.Fatalf("position at custom epoch = %v, want +X", got)
	}
}

func TestEllipticalOrbitZeroPeriodIsPinned(t *testing.T) {
	o := EllipticalOrbit{SemiMajorKm: 42}
	if got := o.PositionAt(j2000jd + 999); got != (Vec3{X: 42}) {
		t.Fatalf("zero-period position = %v, want pinned at +X", got)
	}
}

func TestUniformRotationSpin(t *testing.T) {
	r := UniformRotation{Period: 4}

	// A quarter revolution spins body-fixed +X to universal -Z.
	got := r.OrientationAt(j2000jd + 1).Rotate(Vec3{X: 1})
	if !vecClose(got, Vec3{Z: -1}, 1e-9) {
		t.Errorf("quarter revolution of +X = %v, want -Z", got)
	}

	// Whole revolutions return to the epoch orientation.
	if got := r.OrientationAt(j2000jd + 8).Rotate(Vec3{X: 1}); !vecClose(got, Vec3{X: 1}, 1e-9) {
		t.Errorf("two full revolutions of +X = %v, want +X", got)
	}
}

func TestUniformRotationObliquity(t *testing.T) {
	r := UniformRotation{Obliquity: 90}
	// Without spin the orientation is just the axial tilt about X.
	got := r.OrientationAt(j2000jd).Rotate(Vec3{Y: 1})
	if !vecClose(got, Vec3{Z: 1}, 1e-12) {
		t.Fatalf("tilted pole = %v, want +Z", got)
	}
	if r.PeriodDays() != 0 {
		t.Errorf("PeriodDays = %v, want 0", r.PeriodDays())
	}
}
