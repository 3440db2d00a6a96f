package model

// SelectionType tags which variant a Selection holds.
type SelectionType int

const (
	SelectionNone SelectionType = iota
	SelectionStar
	SelectionBody
	SelectionDeepSky
	SelectionLocation
)

// Selection is a value-type reference to exactly one catalog entity, or
// nothing. It never owns the entity it points at; the catalog does.
// Equality is identity of the referenced entity, not content.
type Selection struct {
	Type     SelectionType
	Star     *Star
	Body     *Body
	DeepSky  *DeepSkyObject
	Location *Location
}

// EmptySelection is the explicit "no match" value.
func EmptySelection() Selection { return Selection{} }

// SelectStar wraps a star; a nil star yields the empty selection.
func SelectStar(s *Star) Selection {
	if s == nil {
		return Selection{}
	}
	return Selection{Type: SelectionStar, Star: s}
}

// SelectBody wraps a body; a nil body yields the empty selection.
func SelectBody(b *Body) Selection {
	if b == nil {
		return Selection{}
	}
	return Selection{Type: SelectionBody, Body: b}
}

// SelectDeepSky wraps a deep-sky object; nil yields the empty selection.
func SelectDeepSky(d *DeepSkyObject) Selection {
	if d == nil {
		return Selection{}
	}
	return Selection{Type: SelectionDeepSky, DeepSky: d}
}

// SelectLocation wraps a surface location; nil yields the empty selection.
func SelectLocation(l *Location) Selection {
	if l == nil {
		return Selection{}
	}
	return Selection{Type: SelectionLocation, Location: l}
}

// Empty reports whether the selection references nothing.
func (s Selection) Empty() bool { return s.Type == SelectionNone }

// Equal reports whether both selections reference the same entity.
func (s Selection) Equal(other Selection) bool {
	if s.Type != other.Type {
		return false
	}
	switch s.Type {
	case SelectionStar:
		return s.Star == other.Star
	case SelectionBody:
		return s.Body == other.Body
	case SelectionDeepSky:
		return s.DeepSky == other.DeepSky
	case SelectionLocation:
		return s.Location == other.Location
	default:
		return true
	}
}

// Name returns the referenced entity's catalog name, or "" when empty.
func (s Selection) Name() string {
	switch s.Type {
	case SelectionStar:
		return s.Star.Name
	case SelectionBody:
		return s.Body.Name
	case SelectionDeepSky:
		return s.DeepSky.Name
	case SelectionLocation:
		return s.Location.Name
	default:
		return ""
	}
}

// RadiusKm returns the physical radius of the referenced entity in km.
// Locations report zero; camera math treats them as points.
func (s Selection) RadiusKm() float64 {
	switch s.Type {
	case SelectionStar:
		return s.Star.RadiusKm
	case SelectionBody:
		return s.Body.RadiusKm
	case SelectionDeepSky:
		return s.DeepSky.RadiusLy * KmPerLy
	default:
		return 0
	}
}

// PositionAt returns the referenced entity's universal position at jd.
// The empty selection sits at the origin; callers check Empty first.
func (s Selection) PositionAt(jd float64) UniversalCoord {
	switch s.Type {
	case SelectionStar:
		return s.Star.PositionAt(jd)
	case SelectionBody:
		return s.Body.PositionAt(jd)
	case SelectionDeepSky:
		return s.DeepSky.PositionAt(jd)
	case SelectionLocation:
		return s.Location.PositionAt(jd)
	default:
		return UniversalCoord{}
	}
}

// VelocityAt returns the entity's velocity in km/day. Only bodies move in
// this catalog model.
func (s Selection) VelocityAt(jd float64) Vec3 {
	if s.Type == SelectionBody {
		return s.Body.VelocityAt(jd)
	}
	return Vec3{}
}

// OrientationAt returns the entity's spin orientation at jd; identity for
// everything that has no rotation model.
func (s Selection) OrientationAt(jd float64) Quaternion {
	if s.Type == SelectionBody {
		return s.Body.OrientationAt(jd)
	}
	return IdentityQuaternion()
}
