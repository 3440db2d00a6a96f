// Package core is the observer navigation and time-synchronization
// engine: observers with their goto state machines, the reference frame
// model, the simulation orchestrator, and the view tree that maps
// observers onto screen regions.
package core

import (
	"math"

	"github.com/signalsfoundry/starview-simulator/model"
)

// CoordinateSystem names the basis a Frame defines.
type CoordinateSystem int

const (
	// Universal axes, universe origin.
	Universal CoordinateSystem = iota
	// Ecliptical follows a reference object with inertial axes.
	Ecliptical
	// BodyFixed rotates with the reference body ("sync orbit").
	BodyFixed
	// PhaseLock keeps the X axis on the reference→target line.
	PhaseLock
	// Chase aligns with the reference body's velocity vector.
	Chase
	// ObserverLocal is the observer's own camera basis; used
	// transiently for up-vector math, never as a travel frame.
	ObserverLocal
)

func (c CoordinateSystem) String() string {
	switch c {
	case Universal:
		return "universal"
	case Ecliptical:
		return "follow"
	case BodyFixed:
		return "sync orbit"
	case PhaseLock:
		return "phase lock"
	case Chase:
		return "chase"
	case ObserverLocal:
		return "observer"
	default:
		return "unknown"
	}
}

// Frame is an immutable coordinate-system definition: what "stationary"
// means for an observer. Frames are shared by pointer between observers
// and history entries; they never reference observers back, so no cycles
// are possible.
type Frame struct {
	System    CoordinateSystem
	Reference model.Selection
	Target    model.Selection // PhaseLock only
}

// UniversalFrame is the default inertial frame.
func UniversalFrame() *Frame {
	return &Frame{System: Universal}
}

// NewFrame builds a frame around a reference object.
func NewFrame(system CoordinateSystem, reference model.Selection) *Frame {
	return &Frame{System: system, Reference: reference}
}

// NewPhaseLockFrame builds a phase-lock frame between a reference and a
// target object.
func NewPhaseLockFrame(reference, target model.Selection) *Frame {
	return &Frame{System: PhaseLock, Reference: reference, Target: target}
}

// OriginAt returns the frame origin's universal position at jd.
func (f *Frame) OriginAt(jd float64) model.UniversalCoord {
	if f.System == Universal || f.Reference.Empty() {
		return model.UniversalCoord{}
	}
	return f.Reference.PositionAt(jd)
}

// RotationAt returns the rotation mapping frame-basis vectors to
// universal vectors at jd.
func (f *Frame) RotationAt(jd float64) model.Quaternion {
	switch f.System {
	case BodyFixed:
		return f.Reference.OrientationAt(jd)

	case Chase:
		vel := f.Reference.VelocityAt(jd)
		if vel.Norm() < 1e-9 {
			return model.IdentityQuaternion()
		}
		up := radialDirection(f.Reference, jd)
		return basisRotation(vel.Normalized(), up)

	case PhaseLock:
		if f.Target.Empty() {
			return model.IdentityQuaternion()
		}
		line := f.Target.PositionAt(jd).OffsetFromKm(f.Reference.PositionAt(jd))
		if line.Norm() < 1e-9 {
			return model.IdentityQuaternion()
		}
		up := radialDirection(f.Reference, jd)
		return basisRotation(line.Normalized(), up)

	default:
		// Universal, Ecliptical, ObserverLocal: inertial axes.
		return model.IdentityQuaternion()
	}
}

// PositionToUniversal converts a frame-relative position to a universal
// one at jd. Frames with inertial axes translate in extended precision;
// rotating frames rotate the offset in plain float64, which keeps full
// relative precision because the offset is measured from the frame
// origin, not the universe origin.
func (f *Frame) PositionToUniversal(framePos model.UniversalCoord, jd float64) model.UniversalCoord {
	rot := f.RotationAt(jd)
	if rot == model.IdentityQuaternion() {
		return f.OriginAt(jd).Add(framePos)
	}
	return f.OriginAt(jd).AddKm(rot.Rotate(framePos.ToKm()))
}

// PositionFromUniversal converts a universal position to a
// frame-relative one at jd.
func (f *Frame) PositionFromUniversal(pos model.UniversalCoord, jd float64) model.UniversalCoord {
	rot := f.RotationAt(jd)
	if rot == model.IdentityQuaternion() {
		return pos.Sub(f.OriginAt(jd))
	}
	offset := pos.OffsetFromKm(f.OriginAt(jd))
	return model.UniversalCoordFromKm(rot.Conjugate().Rotate(offset))
}

// OrientationToUniversal converts a camera orientation expressed against
// the frame basis into one expressed against universal axes.
func (f *Frame) OrientationToUniversal(frameOrient model.Quaternion, jd float64) model.Quaternion {
	// frameOrient maps frame→camera; composing with universal→frame
	// yields universal→camera.
	return frameOrient.Mul(f.RotationAt(jd).Conjugate()).Normalized()
}

// OrientationFromUniversal converts a universal camera orientation into
// one expressed against the frame basis.
func (f *Frame) OrientationFromUniversal(orient model.Quaternion, jd float64) model.Quaternion {
	return orient.Mul(f.RotationAt(jd)).Normalized()
}

// basisRotation builds the frame→universal rotation whose X axis is
// primary and whose Y axis is as close to up as orthogonality allows.
func basisRotation(primary, up model.Vec3) model.Quaternion {
	x := primary.Normalized()
	z := x.Cross(up)
	if z.Norm() < 1e-9 {
		alt := model.Vec3{Y: 1}
		if math.Abs(x.Y) > 0.9 {
			alt = model.Vec3{Z: 1}
		}
		z = x.Cross(alt)
	}
	z = z.Normalized()
	y := z.Cross(x)
	// Rows are universal-frame coordinates of the frame axes; the
	// conjugate maps frame→universal.
	return model.QuaternionFromBasis(x, y, z).Conjugate()
}

// radialDirection is the unit vector from the reference body's parent
// toward the body, a natural "up" for chase and phase-lock bases.
func radialDirection(sel model.Selection, jd float64) model.Vec3 {
	if sel.Type == model.SelectionBody {
		if orbit := sel.Body.Orbit; orbit != nil {
			if dir := orbit.PositionAt(jd).Normalized(); !dir.IsZero() {
				return dir
			}
		}
	}
	return model.Vec3{Y: 1}
}
