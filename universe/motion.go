package universe

import (
	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/starview-simulator/model"
	"github.com/signalsfoundry/starview-simulator/timectrl"
)

// SGP4Orbit propagates an Earth-orbiting spacecraft from its TLE. It
// implements model.Orbit, positioned relative to the parent body's
// centre in its equatorial frame.
type SGP4Orbit struct {
	sat satellite.Satellite
}

// NewSGP4OrbitFromTLE constructs an orbit from the two TLE lines.
func NewSGP4OrbitFromTLE(line1, line2 string) *SGP4Orbit {
	return &SGP4Orbit{sat: satellite.TLEToSat(line1, line2, satellite.GravityWGS72)}
}

// PeriodDays reports zero; frame math that needs a period treats SGP4
// trajectories as aperiodic and falls back to finite differences.
func (o *SGP4Orbit) PeriodDays() float64 { return 0 }

// PositionAt propagates the spacecraft to the given Julian date.
// go-satellite works in kilometres in the parent-centred inertial frame,
// which matches the model's body-relative convention.
func (o *SGP4Orbit) PositionAt(jd float64) model.Vec3 {
	t := timectrl.JDToTime(jd)
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	pos, _ := satellite.Propagate(o.sat, year, int(month), day, hour, min, sec)
	return model.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z}
}
