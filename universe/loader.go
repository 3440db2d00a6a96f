package universe

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/signalsfoundry/starview-simulator/model"
)

// CatalogSummary reports what a load pulled in. Mainly useful for
// logging from main().
type CatalogSummary struct {
	Stars      int
	Systems    int
	Bodies     int
	Locations  int
	DeepSky    int
	Spacecraft int
}

// internal JSON shapes – unexported so the on-disk format can evolve
// without touching the public API.
type catalogJSON struct {
	Stars   []starJSON    `json:"stars"`
	DeepSky []deepSkyJSON `json:"deep_sky"`
}

type starJSON struct {
	Name         string   `json:"name"`
	PositionLy   vec3JSON `json:"position_ly"`
	RadiusKm     float64  `json:"radius_km"`
	AbsMag       float64  `json:"abs_mag"`
	SpectralType string   `json:"spectral_type"`

	Planets []bodyJSON `json:"planets"`
}

type bodyJSON struct {
	Name     string  `json:"name"`
	Class    string  `json:"class"` // planet | moon | asteroid | comet | spacecraft
	RadiusKm float64 `json:"radius_km"`

	// Keplerian elements; omitted for TLE-driven spacecraft.
	SemiMajorKm  float64 `json:"semi_major_km"`
	Eccentricity float64 `json:"eccentricity"`
	PeriodDays   float64 `json:"period_days"`
	Inclination  float64 `json:"inclination_deg"`
	PhaseDeg     float64 `json:"phase_deg"`

	RotationPeriodDays float64 `json:"rotation_period_days"`
	ObliquityDeg       float64 `json:"obliquity_deg"`

	TLE1 string `json:"tle1"`
	TLE2 string `json:"tle2"`

	Satellites []bodyJSON     `json:"satellites"`
	Locations  []locationJSON `json:"locations"`
}

type locationJSON struct {
	Name   string  `json:"name"`
	LatDeg float64 `json:"lat_deg"`
	LonDeg float64 `json:"lon_deg"`
	AltKm  float64 `json:"alt_km"`
}

type deepSkyJSON struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	PositionLy vec3JSON `json:"position_ly"`
	RadiusLy   float64  `json:"radius_ly"`
}

type vec3JSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// LoadCatalog reads a JSON catalog from r and populates the universe.
// It fails only on JSON/structural errors; duplicate names surface the
// same errors the direct Add*() calls produce.
func LoadCatalog(u *Universe, r io.Reader) (*CatalogSummary, error) {
	if u == nil {
		return nil, fmt.Errorf("LoadCatalog: universe is nil")
	}

	var payload catalogJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadCatalog: decode failed: %w", err)
	}

	summary := &CatalogSummary{}

	for _, js := range payload.Stars {
		if js.Name == "" {
			return nil, fmt.Errorf("LoadCatalog: star with empty name")
		}
		star := &model.Star{
			Name:         js.Name,
			Position:     model.Vec3{X: js.PositionLy.X, Y: js.PositionLy.Y, Z: js.PositionLy.Z},
			RadiusKm:     js.RadiusKm,
			AbsMag:       js.AbsMag,
			SpectralType: js.SpectralType,
		}
		if err := u.AddStar(star); err != nil {
			return nil, fmt.Errorf("LoadCatalog: %w", err)
		}
		summary.Stars++

		if len(js.Planets) == 0 {
			continue
		}
		sys := u.CreateSolarSystem(star)
		summary.Systems++
		for _, jb := range js.Planets {
			if err := loadBody(sys.Planets(), jb, summary); err != nil {
				return nil, fmt.Errorf("LoadCatalog: star %q: %w", js.Name, err)
			}
		}
	}

	for _, jd := range payload.DeepSky {
		if jd.Name == "" {
			return nil, fmt.Errorf("LoadCatalog: deep-sky object with empty name")
		}
		d := &model.DeepSkyObject{
			Name:     jd.Name,
			Type:     jd.Type,
			Position: model.Vec3{X: jd.PositionLy.X, Y: jd.PositionLy.Y, Z: jd.PositionLy.Z},
			RadiusLy: jd.RadiusLy,
		}
		if err := u.AddDeepSky(d); err != nil {
			return nil, fmt.Errorf("LoadCatalog: %w", err)
		}
		summary.DeepSky++
	}

	return summary, nil
}

func loadBody(sys *model.PlanetarySystem, jb bodyJSON, summary *CatalogSummary) error {
	if jb.Name == "" {
		return fmt.Errorf("body with empty name")
	}

	body := &model.Body{
		Name:     jb.Name,
		Class:    bodyClass(jb.Class),
		RadiusKm: jb.RadiusKm,
	}

	switch {
	case jb.TLE1 != "" && jb.TLE2 != "":
		body.Orbit = NewSGP4OrbitFromTLE(jb.TLE1, jb.TLE2)
		summary.Spacecraft++
	case jb.SemiMajorKm > 0:
		body.Orbit = model.EllipticalOrbit{
			SemiMajorKm:  jb.SemiMajorKm,
			Eccentricity: jb.Eccentricity,
			Period:       jb.PeriodDays,
			Inclination:  jb.Inclination,
			PhaseDeg:     jb.PhaseDeg,
		}
	default:
		return fmt.Errorf("body %q has neither orbital elements nor a TLE", jb.Name)
	}

	if jb.RotationPeriodDays != 0 || jb.ObliquityDeg != 0 {
		body.Rotation = model.UniformRotation{
			Period:    jb.RotationPeriodDays,
			Obliquity: jb.ObliquityDeg,
		}
	}

	sys.Add(body)
	summary.Bodies++

	for _, jl := range jb.Locations {
		model.NewLocation(body, jl.Name, jl.LatDeg, jl.LonDeg, jl.AltKm)
		summary.Locations++
	}

	if len(jb.Satellites) > 0 {
		sats := model.NewSatelliteSystem(body)
		for _, js := range jb.Satellites {
			if err := loadBody(sats, js, summary); err != nil {
				return fmt.Errorf("body %q: %w", jb.Name, err)
			}
		}
	}

	return nil
}

func bodyClass(s string) model.BodyClass {
	switch s {
	case "moon":
		return model.ClassMoon
	case "asteroid":
		return model.ClassAsteroid
	case "comet":
		return model.ClassComet
	case "spacecraft":
		return model.ClassSpacecraft
	default:
		return model.ClassPlanet
	}
}
