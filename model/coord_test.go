package model

import (
	"math"
	"testing"
)

func TestUniversalCoordKeepsSubKmPrecisionFarOut(t *testing.T) {
	// 100 ly from the origin a float64 ulp is on the order of 0.1 km, so
	// plain float64 subtraction would shred a millimetre-scale offset.
	base := UniversalCoordFromLy(Vec3{X: 100})
	moved := base.AddKm(Vec3{X: 1.25e-6})

	got := moved.OffsetFromKm(base)
	if math.Abs(got.X-1.25e-6) > 1e-18 || got.Y != 0 || got.Z != 0 {
		t.Fatalf("OffsetFromKm = %v, want {1.25e-6 0 0}", got)
	}
}

func TestUniversalCoordOffsetSign(t *testing.T) {
	a := UniversalCoordFromKm(Vec3{X: 10, Y: -4})
	b := UniversalCoordFromKm(Vec3{X: 3, Y: 2})

	got := a.OffsetFromKm(b)
	want := Vec3{X: 7, Y: -6}
	if got != want {
		t.Fatalf("a - b = %v, want %v", got, want)
	}
}

func TestUniversalCoordAddSub(t *testing.T) {
	a := UniversalCoordFromLy(Vec3{X: 100}).AddKm(Vec3{Y: 0.25})
	b := UniversalCoordFromLy(Vec3{X: 99.5, Z: -2})

	if got, want := a.Sub(b).ToKm(), a.OffsetFromKm(b); got != want {
		t.Errorf("Sub = %v, want %v", got, want)
	}
	// b - b is exactly zero, and adding zero must not perturb a.
	if d := a.Add(b.Sub(b)).DistanceFromKm(a); d != 0 {
		t.Errorf("a + (b - b) off by %v km, want exact", d)
	}
}

func TestUniversalCoordDistance(t *testing.T) {
	a := UniversalCoordFromLy(Vec3{X: 1})
	b := UniversalCoordFromLy(Vec3{X: 4})

	if d := a.DistanceFromLy(b); math.Abs(d-3) > 1e-12 {
		t.Errorf("DistanceFromLy = %v, want 3", d)
	}
	if d := a.DistanceFromKm(b); math.Abs(d-3*KmPerLy) > 1 {
		t.Errorf("DistanceFromKm = %v, want %v", d, 3*KmPerLy)
	}
}

func TestUniversalCoordMidpoint(t *testing.T) {
	a := UniversalCoordFromKm(Vec3{X: -100})
	b := UniversalCoordFromKm(Vec3{X: 300, Z: 50})

	mid := a.MidpointKm(b)
	want := Vec3{X: 100, Z: 25}
	if got := mid.ToKm(); got.Sub(want).Norm() > 1e-9 {
		t.Fatalf("MidpointKm = %v, want %v", got, want)
	}
}

func TestUniversalCoordLyRoundTrip(t *testing.T) {
	v := Vec3{X: 4.37, Y: -1.2, Z: 0.03}
	got := UniversalCoordFromLy(v).ToLy()
	if got.Sub(v).Norm() > 1e-12 {
		t.Fatalf("ToLy round trip = %v, want %v", got, v)
	}
}

func TestUniversalCoordIsNaN(t *testing.T) {
	if UniversalCoordFromKm(Vec3{X: 1}).IsNaN() {
		t.Error("finite coordinate reported NaN")
	}
	if !UniversalCoordFromKm(Vec3{Y: math.NaN()}).IsNaN() {
		t.Error("NaN coordinate not detected")
	}
}

func TestTwoSumIsErrorFree(t *testing.T) {
	a, b := 1e16, 1.0
	s, e := twoSum(a, b)
	if s != 1e16 || e != 1 {
		t.Fatalf("twoSum(1e16, 1) = (%v, %v), want (1e16, 1)", s, e)
	}
}
