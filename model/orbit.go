package model

import "math"

// Orbit computes a body's position relative to its parent at a given
// Julian date, in kilometres.
type Orbit interface {
	PositionAt(jd float64) Vec3
	// PeriodDays returns the orbital period in days, or 0 for
	// non-periodic (fixed) orbits.
	PeriodDays() float64
}

// RotationModel computes a body's spin orientation at a given Julian
// date, as a rotation from body-fixed axes to universal axes.
type RotationModel interface {
	OrientationAt(jd float64) Quaternion
	PeriodDays() float64
}

// FixedOrbit pins a body at a constant offset from its parent.
type FixedOrbit struct {
	Offset Vec3
}

func (o FixedOrbit) PositionAt(jd float64) Vec3 { return o.Offset }
func (o FixedOrbit) PeriodDays() float64        { return 0 }

// EllipticalOrbit is a simple Keplerian orbit in the parent's equatorial
// plane, tilted by inclination about the X axis. Angles are in degrees,
// distances in kilometres, the period in days.
type EllipticalOrbit struct {
	SemiMajorKm  float64
	Eccentricity float64
	Period       float64
	Inclination  float64
	PhaseDeg     float64 // mean anomaly at the J2000 epoch
	EpochJD      float64 // defaults to J2000 when zero
}

const j2000jd = 2451545.0

func (o EllipticalOrbit) PeriodDays() float64 { return o.Period }

func (o EllipticalOrbit) PositionAt(jd float64) Vec3 {
	epoch := o.EpochJD
	if epoch == 0 {
		epoch = j2000jd
	}
	if o.Period <= 0 {
		return Vec3{X: o.SemiMajorKm}
	}

	meanAnomaly := o.PhaseDeg*math.Pi/180 + 2*math.Pi*(jd-epoch)/o.Period
	ecc := o.Eccentricity

	// Newton iteration for the eccentric anomaly; a handful of steps is
	// plenty at the eccentricities that show up in catalogs.
	e := meanAnomaly
	for i := 0; i < 8; i++ {
		e -= (e - ecc*math.Sin(e) - meanAnomaly) / (1 - ecc*math.Cos(e))
	}

	x := o.SemiMajorKm * (math.Cos(e) - ecc)
	z := o.SemiMajorKm * math.Sqrt(1-ecc*ecc) * math.Sin(e)

	inc := o.Inclination * math.Pi / 180
	return Vec3{
		X: x,
		Y: -z * math.Sin(inc),
		Z: z * math.Cos(inc),
	}
}

// CircularOrbit is the zero-eccentricity special case, kept as its own
// type because most catalog entries use it.
type CircularOrbit struct {
	RadiusKm    float64
	Period      float64
	Inclination float64
	PhaseDeg    float64
}

func (o CircularOrbit) PeriodDays() float64 { return o.Period }

func (o CircularOrbit) PositionAt(jd float64) Vec3 {
	return EllipticalOrbit{
		SemiMajorKm: o.RadiusKm,
		Period:      o.Period,
		Inclination: o.Inclination,
		PhaseDeg:    o.PhaseDeg,
	}.PositionAt(jd)
}

// UniformRotation spins a body at a constant rate about an axis obtained
// by tilting +Y by Obliquity degrees about X.
type UniformRotation struct {
	Period    float64 // days per revolution; 0 means no spin
	Obliquity float64 // degrees
	EpochJD   float64
}

func (r UniformRotation) PeriodDays() float64 { return r.Period }

func (r UniformRotation) OrientationAt(jd float64) Quaternion {
	tilt := QuaternionFromAxisAngle(Vec3{X: 1}, r.Obliquity*math.Pi/180)
	if r.Period == 0 {
		return tilt
	}
	epoch := r.EpochJD
	if epoch == 0 {
		epoch = j2000jd
	}
	spinAngle := 2 * math.Pi * math.Mod((jd-epoch)/r.Period, 1)
	spin := QuaternionFromAxisAngle(Vec3{Y: 1}, spinAngle)
	return tilt.Mul(spin)
}
