// Package universe is the in-memory catalog store: stars, solar systems,
// deep-sky objects, and the spatial/name queries the simulation core
// runs against them. Catalog data is loaded once at startup and treated
// as read-only by the core afterwards.
package universe

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/signalsfoundry/starview-simulator/model"
)

// NearbySearchRadiusLy bounds the "objects near the current system"
// fallback used by name resolution.
const NearbySearchRadiusLy = 0.1

// NearestSystemRangeLy bounds the nearest-solar-system query; beyond this
// an observer is considered to be in interstellar space with no
// contextual system.
const NearestSystemRangeLy = 100.0

// Universe is a thread-safe catalog store. The simulation core only ever
// reads it; writes happen during catalog loading.
type Universe struct {
	mu sync.RWMutex

	stars       []*model.Star
	starsByName map[string]*model.Star

	dsos       []*model.DeepSkyObject
	dsosByName map[string]*model.DeepSkyObject

	systems map[*model.Star]*model.SolarSystem
}

// New constructs an empty universe.
func New() *Universe {
	return &Universe{
		starsByName: make(map[string]*model.Star),
		dsosByName:  make(map[string]*model.DeepSkyObject),
		systems:     make(map[*model.Star]*model.SolarSystem),
	}
}

// AddStar registers a star. It returns an error if the name is already
// taken.
func (u *Universe) AddStar(s *model.Star) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	key := strings.ToLower(s.Name)
	if _, exists := u.starsByName[key]; exists {
		return fmt.Errorf("star %q already exists", s.Name)
	}
	u.stars = append(u.stars, s)
	u.starsByName[key] = s
	return nil
}

// AddDeepSky registers a deep-sky object. It returns an error if the
// name is already taken.
func (u *Universe) AddDeepSky(d *model.DeepSkyObject) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	key := strings.ToLower(d.Name)
	if _, exists := u.dsosByName[key]; exists {
		return fmt.Errorf("deep-sky object %q already exists", d.Name)
	}
	u.dsos = append(u.dsos, d)
	u.dsosByName[key] = d
	return nil
}

// CreateSolarSystem attaches an empty solar system to a previously added
// star and returns it. Calling it again for the same star returns the
// existing system.
func (u *Universe) CreateSolarSystem(star *model.Star) *model.SolarSystem {
	u.mu.Lock()
	defer u.mu.Unlock()

	if sys, ok := u.systems[star]; ok {
		return sys
	}
	sys := model.NewSolarSystem(star)
	u.systems[star] = sys
	return sys
}

// SolarSystem returns the solar system around star, or nil.
func (u *Universe) SolarSystem(star *model.Star) *model.SolarSystem {
	if star == nil {
		return nil
	}
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.systems[star]
}

// SolarSystemOf returns the solar system a selection belongs to, or nil.
func (u *Universe) SolarSystemOf(sel model.Selection) *model.SolarSystem {
	switch sel.Type {
	case model.SelectionStar:
		return u.SolarSystem(sel.Star)
	case model.SelectionBody:
		return u.SolarSystem(sel.Body.Star())
	case model.SelectionLocation:
		return u.SolarSystem(sel.Location.ParentBody().Star())
	default:
		return nil
	}
}

// StarCount returns the number of catalog stars.
func (u *Universe) StarCount() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.stars)
}

// Stars returns a snapshot of the star catalog.
func (u *Universe) Stars() []*model.Star {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]*model.Star, len(u.stars))
	copy(out, u.stars)
	return out
}

// DeepSkyObjects returns a snapshot of the deep-sky catalog.
func (u *Universe) DeepSkyObjects() []*model.DeepSkyObject {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]*model.DeepSkyObject, len(u.dsos))
	copy(out, u.dsos)
	return out
}

// NearestSolarSystem returns the solar system whose star is closest to
// pos, or nil when none lies within NearestSystemRangeLy.
func (u *Universe) NearestSolarSystem(pos model.UniversalCoord) *model.SolarSystem {
	u.mu.RLock()
	defer u.mu.RUnlock()

	posLy := pos.ToLy()
	var best *model.SolarSystem
	bestDist := NearestSystemRangeLy
	for star, sys := range u.systems {
		if d := star.Position.DistanceTo(posLy); d <= bestDist {
			best = sys
			bestDist = d
		}
	}
	return best
}

// apparentMagnitude converts absolute magnitude to apparent at a
// distance in light-years.
func apparentMagnitude(absMag, distLy float64) float64 {
	if distLy <= 0 {
		return absMag
	}
	const lyPerParsec = 3.26156
	return absMag + 5*math.Log10(distLy/lyPerParsec) - 5
}
