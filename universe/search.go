package universe

import (
	"math"
	"strings"

	"github.com/signalsfoundry/starview-simulator/model"
)

// Find resolves a single object name to a Selection. Resolution order:
//
//  1. the star catalog
//  2. the deep-sky catalog
//  3. child objects of the context path entries (satellites, locations)
//  4. bodies of any solar system within NearbySearchRadiusLy of the
//     first context entry's position
//
// The context path is the caller's disambiguation hint, normally
// [current selection, nearest system's star]. An unresolvable name
// returns the empty Selection.
func (u *Universe) Find(name string, context []model.Selection, jd float64) model.Selection {
	if name == "" {
		return model.EmptySelection()
	}

	u.mu.RLock()
	star := u.starsByName[strings.ToLower(name)]
	dso := u.dsosByName[strings.ToLower(name)]
	u.mu.RUnlock()

	if star != nil {
		return model.SelectStar(star)
	}
	if dso != nil {
		return model.SelectDeepSky(dso)
	}

	for _, ctx := range context {
		if sel := u.findChild(ctx, name); !sel.Empty() {
			return sel
		}
	}

	if len(context) > 0 && !context[0].Empty() {
		origin := context[0].PositionAt(jd)
		for _, sys := range u.systemsWithin(origin, NearbySearchRadiusLy) {
			if b := sys.Planets().Find(name); b != nil {
				return model.SelectBody(b)
			}
		}
	}

	return model.EmptySelection()
}

// FindPath resolves a slash-separated object path such as Sol/Earth/Moon
// or Sol/Mars/Olympus Mons. The first segment goes through Find; each
// further segment names a child of the previous one (planet of a star,
// satellite or surface location of a body). Any unresolvable segment
// yields the empty Selection.
func (u *Universe) FindPath(path string, context []model.Selection, jd float64) model.Selection {
	segments := strings.Split(path, "/")
	sel := u.Find(strings.TrimSpace(segments[0]), context, jd)
	for _, seg := range segments[1:] {
		if sel.Empty() {
			return model.EmptySelection()
		}
		sel = u.findChild(sel, strings.TrimSpace(seg))
	}
	return sel
}

// findChild resolves name among the direct children of parent.
func (u *Universe) findChild(parent model.Selection, name string) model.Selection {
	switch parent.Type {
	case model.SelectionStar:
		if sys := u.SolarSystem(parent.Star); sys != nil {
			if b := sys.Planets().Find(name); b != nil {
				return model.SelectBody(b)
			}
		}
	case model.SelectionBody:
		if sats := parent.Body.Satellites(); sats != nil {
			if b := sats.Find(name); b != nil {
				return model.SelectBody(b)
			}
		}
		for _, loc := range parent.Body.Locations {
			if strings.EqualFold(loc.Name, name) {
				return model.SelectLocation(loc)
			}
		}
	case model.SelectionLocation:
		// Locations have no children; resolve against the parent body
		// so "Earth/Greenwich/Moon"-style mistakes still fail softly.
		return u.findChild(model.SelectBody(parent.Location.ParentBody()), name)
	}
	return model.EmptySelection()
}

// Completion returns catalog names beginning with prefix
// (case-insensitive): stars, deep-sky objects, and children of the
// context entries. Locations are included only when withLocations is
// set. The result is unsorted; the caller owns ordering.
func (u *Universe) Completion(prefix string, context []model.Selection, withLocations bool) []string {
	var out []string
	lower := strings.ToLower(prefix)
	match := func(name string) bool {
		return strings.HasPrefix(strings.ToLower(name), lower)
	}

	u.mu.RLock()
	for _, s := range u.stars {
		if match(s.Name) {
			out = append(out, s.Name)
		}
	}
	for _, d := range u.dsos {
		if match(d.Name) {
			out = append(out, d.Name)
		}
	}
	u.mu.RUnlock()

	seen := make(map[string]bool, len(out))
	for _, name := range out {
		seen[name] = true
	}
	appendUnique := func(name string) {
		if match(name) && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}

	for _, ctx := range context {
		switch ctx.Type {
		case model.SelectionStar:
			if sys := u.SolarSystem(ctx.Star); sys != nil {
				for _, b := range sys.Planets().Bodies() {
					appendUnique(b.Name)
				}
			}
		case model.SelectionBody:
			if sats := ctx.Body.Satellites(); sats != nil {
				for _, b := range sats.Bodies() {
					appendUnique(b.Name)
				}
			}
			if withLocations {
				for _, loc := range ctx.Body.Locations {
					appendUnique(loc.Name)
				}
			}
		}
	}

	return out
}

// Pick returns the catalog object closest to the given view ray, or the
// empty Selection when nothing lies within tolerance radians of it.
// Bodies of the nearest solar system are tested against their true
// angular size; stars fainter than faintestMag are skipped.
func (u *Universe) Pick(origin model.UniversalCoord, direction model.Vec3, jd, faintestMag, tolerance float64) model.Selection {
	dir := direction.Normalized()
	if dir.IsZero() {
		return model.EmptySelection()
	}

	best := model.EmptySelection()
	bestAngle := math.Inf(1)

	consider := func(sel model.Selection, angularRadius float64) {
		offset := sel.PositionAt(jd).OffsetFromKm(origin)
		dist := offset.Norm()
		if dist == 0 {
			return
		}
		cos := offset.Dot(dir) / dist
		angle := math.Acos(math.Max(-1, math.Min(1, cos)))
		if angle <= angularRadius+tolerance && angle < bestAngle {
			best = sel
			bestAngle = angle
		}
	}

	if sys := u.NearestSolarSystem(origin); sys != nil {
		var walk func(ps *model.PlanetarySystem)
		walk = func(ps *model.PlanetarySystem) {
			for _, b := range ps.Bodies() {
				dist := b.PositionAt(jd).DistanceFromKm(origin)
				angularRadius := 0.0
				if dist > 0 {
					angularRadius = math.Asin(math.Min(1, b.RadiusKm/dist))
				}
				consider(model.SelectBody(b), angularRadius)
				if sats := b.Satellites(); sats != nil {
					walk(sats)
				}
			}
		}
		walk(sys.Planets())
	}

	originLy := origin.ToLy()
	u.mu.RLock()
	stars := u.stars
	u.mu.RUnlock()
	for _, s := range stars {
		distLy := s.Position.DistanceTo(originLy)
		if apparentMagnitude(s.AbsMag, distLy) > faintestMag {
			continue
		}
		consider(model.SelectStar(s), 0)
	}

	return best
}

// systemsWithin returns solar systems whose star lies within radiusLy of
// pos.
func (u *Universe) systemsWithin(pos model.UniversalCoord, radiusLy float64) []*model.SolarSystem {
	u.mu.RLock()
	defer u.mu.RUnlock()

	posLy := pos.ToLy()
	var out []*model.SolarSystem
	for star, sys := range u.systems {
		if star.Position.DistanceTo(posLy) <= radiusLy {
			out = append(out, sys)
		}
	}
	return out
}
