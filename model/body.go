package model

import (
	"math"
	"strings"
)

// Star is a catalog star. Position is heliocentric-universal in
// light-years and fixed for the lifetime of the catalog (no proper
// motion model).
type Star struct {
	Name          string
	CatalogNumber uint32
	Position      Vec3 // light-years from the universe origin
	RadiusKm      float64
	AbsMag        float64
	SpectralType  string
}

// PositionAt returns the star's position. The Julian date is accepted
// for symmetry with bodies; stars do not move.
func (s *Star) PositionAt(jd float64) UniversalCoord {
	return UniversalCoordFromLy(s.Position)
}

// BodyClass is a rough taxonomy used by pickers and the UI.
type BodyClass int

const (
	ClassPlanet BodyClass = iota
	ClassMoon
	ClassAsteroid
	ClassComet
	ClassSpacecraft
)

// Body is a planet, moon, minor body, or spacecraft. A body always
// belongs to exactly one PlanetarySystem and may carry its own system of
// satellites.
type Body struct {
	Name       string
	Class      BodyClass
	RadiusKm   float64
	Orbit      Orbit
	Rotation   RotationModel
	Locations  []*Location
	system     *PlanetarySystem
	satellites *PlanetarySystem
}

// System returns the planetary system the body belongs to, or nil for a
// detached body.
func (b *Body) System() *PlanetarySystem { return b.system }

// Satellites returns the body's satellite system, or nil.
func (b *Body) Satellites() *PlanetarySystem { return b.satellites }

// Star walks up the system chain to the star the body ultimately orbits.
func (b *Body) Star() *Star {
	for sys := b.system; sys != nil; {
		if sys.star != nil {
			return sys.star
		}
		if sys.primary == nil {
			return nil
		}
		sys = sys.primary.system
	}
	return nil
}

// PositionAt returns the body's universal position at jd by composing
// orbit offsets up the parent chain.
func (b *Body) PositionAt(jd float64) UniversalCoord {
	offset := Vec3{}
	cur := b
	for cur != nil {
		if cur.Orbit != nil {
			offset = offset.Add(cur.Orbit.PositionAt(jd))
		}
		sys := cur.system
		if sys == nil {
			break
		}
		if sys.star != nil {
			return sys.star.PositionAt(jd).AddKm(offset)
		}
		cur = sys.primary
	}
	return UniversalCoordFromKm(offset)
}

// VelocityAt estimates the body's orbital velocity in km/day by central
// difference. Chase frames need a direction, not an ephemeris-grade
// value.
func (b *Body) VelocityAt(jd float64) Vec3 {
	const h = 1.0 / 1440 // one minute in days
	p0 := b.PositionAt(jd - h)
	p1 := b.PositionAt(jd + h)
	return p1.OffsetFromKm(p0).Scale(1 / (2 * h))
}

// OrientationAt returns the body's spin orientation at jd, identity when
// no rotation model is attached.
func (b *Body) OrientationAt(jd float64) Quaternion {
	if b.Rotation == nil {
		return IdentityQuaternion()
	}
	return b.Rotation.OrientationAt(jd)
}

// SurfacePointAt returns the universal position of a planetographic
// latitude/longitude (degrees) at the given altitude above the surface.
func (b *Body) SurfacePointAt(jd, latDeg, lonDeg, altKm float64) UniversalCoord {
	lat := latDeg * math.Pi / 180
	lon := lonDeg * math.Pi / 180
	r := b.RadiusKm + altKm
	local := Vec3{
		X: r * math.Cos(lat) * math.Cos(lon),
		Y: r * math.Sin(lat),
		Z: -r * math.Cos(lat) * math.Sin(lon),
	}
	return b.PositionAt(jd).AddKm(b.OrientationAt(jd).Rotate(local))
}

// PlanetarySystem is an ordered collection of bodies orbiting either a
// star or a primary body (for satellite systems). Order is catalog
// insertion order, which selectPlanet-style indexing relies on.
type PlanetarySystem struct {
	star    *Star
	primary *Body
	bodies  []*Body
}

// NewPlanetarySystem creates a star-centred system.
func NewPlanetarySystem(star *Star) *PlanetarySystem {
	return &PlanetarySystem{star: star}
}

// NewSatelliteSystem creates a body-centred satellite system and links it
// to the primary.
func NewSatelliteSystem(primary *Body) *PlanetarySystem {
	sys := &PlanetarySystem{primary: primary}
	primary.satellites = sys
	return sys
}

// Star returns the central star, or nil for a satellite system.
func (p *PlanetarySystem) Star() *Star { return p.star }

// Primary returns the central body, or nil for a star-centred system.
func (p *PlanetarySystem) Primary() *Body { return p.primary }

// Size returns the number of direct members.
func (p *PlanetarySystem) Size() int { return len(p.bodies) }

// Body returns the i-th member, or nil when out of range.
func (p *PlanetarySystem) Body(i int) *Body {
	if i < 0 || i >= len(p.bodies) {
		return nil
	}
	return p.bodies[i]
}

// Bodies returns the member slice; callers must not mutate it.
func (p *PlanetarySystem) Bodies() []*Body { return p.bodies }

// Add appends a body to the system and records the membership on the
// body itself.
func (p *PlanetarySystem) Add(b *Body) {
	b.system = p
	p.bodies = append(p.bodies, b)
}

// Find returns the direct member with the given name (case-insensitive),
// or nil.
func (p *PlanetarySystem) Find(name string) *Body {
	for _, b := range p.bodies {
		if strings.EqualFold(b.Name, name) {
			return b
		}
	}
	return nil
}

// DeepSkyObject is a galaxy, nebula, or cluster. Position and radius are
// in light-years.
type DeepSkyObject struct {
	Name     string
	Type     string // "Galaxy", "Nebula", "OpenCluster", "Globular"
	Position Vec3   // light-years
	RadiusLy float64
}

// PositionAt returns the object's position; deep-sky objects are static.
func (d *DeepSkyObject) PositionAt(jd float64) UniversalCoord {
	return UniversalCoordFromLy(d.Position)
}

// Location is a named point on a body's surface.
type Location struct {
	Name   string
	LatDeg float64
	LonDeg float64
	AltKm  float64
	parent *Body
}

// NewLocation attaches a surface location to a body.
func NewLocation(parent *Body, name string, latDeg, lonDeg, altKm float64) *Location {
	loc := &Location{Name: name, LatDeg: latDeg, LonDeg: lonDeg, AltKm: altKm, parent: parent}
	parent.Locations = append(parent.Locations, loc)
	return loc
}

// ParentBody returns the body the location sits on.
func (l *Location) ParentBody() *Body { return l.parent }

// PositionAt returns the location's universal position at jd, tracking
// the parent body's orbit and spin.
func (l *Location) PositionAt(jd float64) UniversalCoord {
	return l.parent.SurfacePointAt(jd, l.LatDeg, l.LonDeg, l.AltKm)
}

// SolarSystem pairs a star with its planetary system.
type SolarSystem struct {
	star    *Star
	planets *PlanetarySystem
}

// NewSolarSystem creates an empty solar system around star.
func NewSolarSystem(star *Star) *SolarSystem {
	return &SolarSystem{star: star, planets: NewPlanetarySystem(star)}
}

// Star returns the system's star.
func (s *SolarSystem) Star() *Star { return s.star }

// Planets returns the system's planetary system.
func (s *SolarSystem) Planets() *PlanetarySystem { return s.planets }
