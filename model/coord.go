package model

import "math"

// KmPerLy is the number of kilometres in one light-year.
const KmPerLy = 9.4607304725808e12

// highDouble is a double-double value: an unevaluated sum hi + lo where
// |lo| <= ulp(hi)/2. It gives roughly 32 significant decimal digits,
// enough that the difference of two positions keeps full float64
// precision relative to their separation even at interstellar magnitudes.
type highDouble struct {
	hi, lo float64
}

// twoSum is Knuth's error-free transform: s + e == a + b exactly.
func twoSum(a, b float64) (s, e float64) {
	s = a + b
	bb := s - a
	e = (a - (s - bb)) + (b - bb)
	return s, e
}

func quickTwoSum(a, b float64) (s, e float64) {
	s = a + b
	e = b - (s - a)
	return s, e
}

func highDoubleFromFloat(v float64) highDouble {
	return highDouble{hi: v}
}

func (d highDouble) add(other highDouble) highDouble {
	s, e := twoSum(d.hi, other.hi)
	e += d.lo + other.lo
	hi, lo := quickTwoSum(s, e)
	return highDouble{hi: hi, lo: lo}
}

func (d highDouble) neg() highDouble {
	return highDouble{hi: -d.hi, lo: -d.lo}
}

func (d highDouble) sub(other highDouble) highDouble {
	return d.add(other.neg())
}

func (d highDouble) float() float64 {
	return d.hi + d.lo
}

// UniversalCoord is a high precision position in kilometres from the
// universe origin. Plain float64 coordinates lose metre-scale precision
// beyond a few light-years from the origin; UniversalCoord arithmetic
// does not, so an observer parked above a planetary surface hundreds of
// parsecs out keeps a stable pose.
type UniversalCoord struct {
	x, y, z highDouble
}

// UniversalCoordFromKm builds a coordinate from a kilometre-scale vector.
func UniversalCoordFromKm(v Vec3) UniversalCoord {
	return UniversalCoord{
		x: highDoubleFromFloat(v.X),
		y: highDoubleFromFloat(v.Y),
		z: highDoubleFromFloat(v.Z),
	}
}

// UniversalCoordFromLy builds a coordinate from a light-year-scale vector.
func UniversalCoordFromLy(v Vec3) UniversalCoord {
	return UniversalCoordFromKm(v.Scale(KmPerLy))
}

// AddKm returns the coordinate displaced by a kilometre-scale offset.
func (u UniversalCoord) AddKm(v Vec3) UniversalCoord {
	return UniversalCoord{
		x: u.x.add(highDoubleFromFloat(v.X)),
		y: u.y.add(highDoubleFromFloat(v.Y)),
		z: u.z.add(highDoubleFromFloat(v.Z)),
	}
}

// Add returns u + other in extended precision.
func (u UniversalCoord) Add(other UniversalCoord) UniversalCoord {
	return UniversalCoord{
		x: u.x.add(other.x),
		y: u.y.add(other.y),
		z: u.z.add(other.z),
	}
}

// Sub returns u - other in extended precision.
func (u UniversalCoord) Sub(other UniversalCoord) UniversalCoord {
	return UniversalCoord{
		x: u.x.sub(other.x),
		y: u.y.sub(other.y),
		z: u.z.sub(other.z),
	}
}

// OffsetFromKm returns u - other as a kilometre-scale vector. The
// subtraction happens in extended precision, so the result is accurate
// relative to the separation regardless of the absolute magnitudes.
func (u UniversalCoord) OffsetFromKm(other UniversalCoord) Vec3 {
	return Vec3{
		X: u.x.sub(other.x).float(),
		Y: u.y.sub(other.y).float(),
		Z: u.z.sub(other.z).float(),
	}
}

// DistanceFromKm returns the distance between two coordinates in km.
func (u UniversalCoord) DistanceFromKm(other UniversalCoord) float64 {
	d := u.OffsetFromKm(other)
	return d.Norm()
}

// DistanceFromLy returns the distance between two coordinates in
// light-years.
func (u UniversalCoord) DistanceFromLy(other UniversalCoord) float64 {
	return u.DistanceFromKm(other) / KmPerLy
}

// ToLy returns the coordinate as a light-year-scale vector. This is a
// lossy conversion intended for catalog-scale queries and display.
func (u UniversalCoord) ToLy() Vec3 {
	return Vec3{
		X: u.x.float() / KmPerLy,
		Y: u.y.float() / KmPerLy,
		Z: u.z.float() / KmPerLy,
	}
}

// ToKm returns the coordinate as a kilometre-scale vector, losing the
// extended precision. Useful only near the origin or for rendering math
// that is relative anyway.
func (u UniversalCoord) ToKm() Vec3 {
	return Vec3{X: u.x.float(), Y: u.y.float(), Z: u.z.float()}
}

// MidpointKm returns the point halfway between u and other.
func (u UniversalCoord) MidpointKm(other UniversalCoord) UniversalCoord {
	half := other.OffsetFromKm(u).Scale(0.5)
	return u.AddKm(half)
}

// IsNaN reports whether any component is NaN.
func (u UniversalCoord) IsNaN() bool {
	return math.IsNaN(u.x.hi) || math.IsNaN(u.y.hi) || math.IsNaN(u.z.hi)
}
