package core

import (
	"math"

	"github.com/signalsfoundry/starview-simulator/model"
	"github.com/signalsfoundry/starview-simulator/timectrl"
)

// ObserverMode is the travel state of an observer.
type ObserverMode int

const (
	// Free means user-controlled motion.
	Free ObserverMode = iota
	// Travelling means in transit along a computed goto trajectory.
	Travelling
)

// Camera defaults, tuned for interactive feel rather than physical
// meaning.
const (
	// DefaultGotoDistanceFactor sets the standard viewing distance for
	// gotoSelection, in multiples of the target's radius.
	DefaultGotoDistanceFactor = 5.0

	// SurfaceAltitudeFactor keeps gotoSurface just above the terrain.
	SurfaceAltitudeFactor = 1.001

	// MinOrbitDistanceFactor is the surface-contact threshold the
	// exponential dolly converges toward.
	MinOrbitDistanceFactor = 1.05

	// dollyCoeff scales ChangeOrbitDistance steps; the rate of approach
	// is proportional to the remaining distance, which keeps the control
	// feel constant from interstellar range down to surface skimming.
	dollyCoeff = 0.5

	defaultFOV = 45.0 * math.Pi / 180
)

// journey holds the parameters of an in-flight goto transition. Both
// poses are universal; interpolation happens in universal coordinates
// and the result is re-expressed in the observer's frame afterwards.
type journey struct {
	from, to               model.UniversalCoord
	initialOrientation     model.Quaternion
	finalOrientation       model.Quaternion
	startRealTime          float64
	duration               float64
	startInterp, endInterp float64 // orientation slerp window as fractions
}

// Observer is one camera: a frame-relative pose, a clock, and a travel
// state machine. Observers are created and owned by a Simulation; views
// reference them without owning them.
//
// Pose is stored relative to the observer's frame, so an observer
// following a body stays put in that frame for free; universal-space
// accessors convert on demand at the observer's current time.
type Observer struct {
	frame *Frame

	// position stays in extended precision even frame-relative: in the
	// Universal frame the frame origin is the universe origin, so a
	// float64 pose would shed sub-ulp structure light-years out.
	position    model.UniversalCoord // frame-relative, km
	orientation model.Quaternion     // frame basis → camera

	velocity        model.Vec3 // frame-relative, km/s
	angularVelocity model.Vec3 // camera-local axis, rad/s
	targetSpeed     float64    // km/s along the facing direction

	fov  float64
	zoom float64

	time     float64 // Julian date
	realTime float64 // seconds since creation, wall-clock

	mode    ObserverMode
	journey journey

	trackedObject model.Selection
}

// NewObserver returns a free observer at the universe origin at J2000.
func NewObserver() *Observer {
	return &Observer{
		frame:       UniversalFrame(),
		orientation: model.IdentityQuaternion(),
		fov:         defaultFOV,
		zoom:        1,
		time:        timectrl.J2000,
	}
}

// Clone returns a deep copy sharing only the (immutable) frame.
func (o *Observer) Clone() *Observer {
	dup := *o
	return &dup
}

// Time returns the observer's clock as a Julian date.
func (o *Observer) Time() float64 { return o.time }

// SetTime sets the observer's clock. The frame-relative pose is kept, so
// an observer parked over a rotating body stays parked as time jumps.
func (o *Observer) SetTime(jd float64) { o.time = jd }

// RealTime returns wall-clock seconds accumulated since creation.
func (o *Observer) RealTime() float64 { return o.realTime }

// ArrivalTime returns the real-time instant the current journey
// completes, or the current real time when not travelling.
func (o *Observer) ArrivalTime() float64 {
	if o.mode != Travelling {
		return o.realTime
	}
	return o.journey.startRealTime + o.journey.duration
}

// Mode returns the travel state.
func (o *Observer) Mode() ObserverMode { return o.mode }

// Frame returns the observer's current reference frame.
func (o *Observer) Frame() *Frame { return o.frame }

// FOV returns the field of view in radians.
func (o *Observer) FOV() float64 { return o.fov }

// SetFOV sets the field of view in radians.
func (o *Observer) SetFOV(fov float64) { o.fov = fov }

// Zoom returns the zoom factor applied on top of the base FOV.
func (o *Observer) Zoom() float64 { return o.zoom }

// SetZoom sets the zoom factor.
func (o *Observer) SetZoom(zoom float64) { o.zoom = zoom }

// TrackedObject returns the selection the observer keeps facing, which
// is independent of the simulation's main selection.
func (o *Observer) TrackedObject() model.Selection { return o.trackedObject }

// SetTrackedObject sets (or, with an empty selection, clears) the
// tracked object.
func (o *Observer) SetTrackedObject(sel model.Selection) { o.trackedObject = sel }

// Position returns the observer's universal position at its current
// time.
func (o *Observer) Position() model.UniversalCoord {
	return o.frame.PositionToUniversal(o.position, o.time)
}

// Orientation returns the observer's universal camera orientation.
func (o *Observer) Orientation() model.Quaternion {
	return o.frame.OrientationToUniversal(o.orientation, o.time)
}

// SetPosition places the observer at a universal position. Meaningful in
// Free mode; while Travelling the next interpolation step overwrites it.
func (o *Observer) SetPosition(pos model.UniversalCoord) {
	o.position = o.frame.PositionFromUniversal(pos, o.time)
}

// SetOrientation sets the universal camera orientation.
func (o *Observer) SetOrientation(q model.Quaternion) {
	o.orientation = o.frame.OrientationFromUniversal(q.Normalized(), o.time)
}

// ReverseOrientation turns the camera 180° about its up axis.
func (o *Observer) ReverseOrientation() {
	flip := model.QuaternionFromAxisAngle(model.Vec3{Y: 1}, math.Pi)
	o.orientation = flip.Mul(o.orientation).Normalized()
}

// Facing returns the camera's forward direction in universal space.
func (o *Observer) Facing() model.Vec3 {
	return o.Orientation().Conjugate().Rotate(model.Vec3{Z: -1})
}

// TargetSpeed returns the cruising speed in km/s.
func (o *Observer) TargetSpeed() float64 { return o.targetSpeed }

// SetTargetSpeed sets a cruising speed along the current facing
// direction.
func (o *Observer) SetTargetSpeed(speed float64) {
	o.targetSpeed = speed
	o.alignVelocityToFacing()
}

// SetAngularVelocity sets the camera-local rotation rate in rad/s.
func (o *Observer) SetAngularVelocity(w model.Vec3) { o.angularVelocity = w }

// AngularVelocity returns the camera-local rotation rate.
func (o *Observer) AngularVelocity() model.Vec3 { return o.angularVelocity }

func (o *Observer) alignVelocityToFacing() {
	facingFrame := o.orientation.Conjugate().Rotate(model.Vec3{Z: -1})
	o.velocity = facingFrame.Scale(o.targetSpeed)
}

// SetFrame switches the observer to a new reference frame, re-expressing
// the current pose so the universal-space position and orientation are
// unchanged at the moment of the switch.
func (o *Observer) SetFrame(f *Frame) {
	if f == nil {
		f = UniversalFrame()
	}
	pos := o.Position()
	orient := o.Orientation()
	o.frame = f
	o.position = f.PositionFromUniversal(pos, o.time)
	o.orientation = f.OrientationFromUniversal(orient, o.time)
}

// Update advances the observer by dt wall-clock seconds at the given
// time scale: clock first, then travel interpolation or free motion
// integration, then tracking.
func (o *Observer) Update(dt, timeScale float64) {
	o.realTime += dt
	o.time += timectrl.SecondsToDays(dt * timeScale)

	if o.mode == Travelling {
		o.updateJourney()
		return
	}

	// Linear motion in frame coordinates.
	if !o.velocity.IsZero() {
		o.position = o.position.AddKm(o.velocity.Scale(dt))
	}

	// Orientation integration about camera-local axes.
	if !o.angularVelocity.IsZero() {
		w := o.angularVelocity.Scale(dt)
		dq := model.QuaternionFromAxisAngle(w, w.Norm())
		if w.Norm() > 0 {
			o.orientation = dq.Mul(o.orientation).Normalized()
		}
		// Keep speed and heading coupled while rotating.
		if o.targetSpeed != 0 {
			o.alignVelocityToFacing()
		}
	}

	if !o.trackedObject.Empty() {
		o.lookToward(o.trackedObject.PositionAt(o.time))
	}
}

// updateJourney samples the in-flight trajectory at the current real
// time and completes the journey once the arrival time has passed.
func (o *Observer) updateJourney() {
	j := &o.journey

	var t float64
	if j.duration <= 0 {
		t = 1
	} else {
		t = (o.realTime - j.startRealTime) / j.duration
	}

	if t >= 1 {
		// Snap exactly; no residual drift.
		o.setUniversalPose(j.to, j.finalOrientation)
		o.mode = Free
		o.velocity = model.Vec3{}
		o.targetSpeed = 0
		return
	}
	if t < 0 {
		t = 0
	}

	// Ease-in/ease-out position spline.
	u := smoothStep(t)
	offset := j.to.OffsetFromKm(j.from)
	pos := j.from.AddKm(offset.Scale(u))

	// Orientation slerps over the middle of the journey so the view
	// settles before arrival.
	var s float64
	if j.endInterp > j.startInterp {
		s = (t - j.startInterp) / (j.endInterp - j.startInterp)
	} else {
		s = 1
	}
	s = math.Max(0, math.Min(1, s))
	orient := j.initialOrientation.Slerp(j.finalOrientation, smoothStep(s))

	o.setUniversalPose(pos, orient)
}

func (o *Observer) setUniversalPose(pos model.UniversalCoord, orient model.Quaternion) {
	o.position = o.frame.PositionFromUniversal(pos, o.time)
	o.orientation = o.frame.OrientationFromUniversal(orient, o.time)
}

// CancelMotion drops back to Free at the current interpolated pose.
func (o *Observer) CancelMotion() {
	o.mode = Free
	o.velocity = model.Vec3{}
	o.targetSpeed = 0
}

func smoothStep(t float64) float64 {
	return t * t * (3 - 2*t)
}

// beginJourney installs the travel parameters and flips to Travelling.
func (o *Observer) beginJourney(to model.UniversalCoord, finalOrient model.Quaternion, duration float64) {
	o.journey = journey{
		from:               o.Position(),
		to:                 to,
		initialOrientation: o.Orientation(),
		finalOrientation:   finalOrient.Normalized(),
		startRealTime:      o.realTime,
		duration:           duration,
		startInterp:        0.25,
		endInterp:          0.75,
	}
	o.mode = Travelling
}

// GotoSelection travels to the standard viewing distance from sel: a
// multiple of its radius, approached along the current direction from
// the object to the observer.
func (o *Observer) GotoSelection(sel model.Selection, duration float64, up model.Vec3) {
	if sel.Empty() {
		return
	}
	distance := sel.RadiusKm() * DefaultGotoDistanceFactor
	if distance <= 0 {
		distance = 1000
	}
	o.GotoSelectionDistance(sel, duration, distance, up)
}

// GotoSelectionDistance travels to an explicit distance (km, from the
// object's centre) from sel.
func (o *Observer) GotoSelectionDistance(sel model.Selection, duration, distance float64, up model.Vec3) {
	if sel.Empty() {
		return
	}
	center := sel.PositionAt(o.time)
	approach := o.Position().OffsetFromKm(center).Normalized()
	if approach.IsZero() {
		approach = model.Vec3{Z: 1}
	}
	// Never target the inside of the body.
	minDist := sel.RadiusKm() * MinOrbitDistanceFactor
	if distance < minDist {
		distance = minDist
	}
	to := center.AddKm(approach.Scale(distance))
	orient := o.lookAtOrientation(to, center, up)
	o.beginJourney(to, orient, duration)
}

// GotoSelectionLongLat travels to a point above planetocentric
// longitude/latitude (degrees) on sel at the given distance from its
// centre.
func (o *Observer) GotoSelectionLongLat(sel model.Selection, duration, distance, lonDeg, latDeg float64, up model.Vec3) {
	if sel.Type != model.SelectionBody {
		o.GotoSelectionDistance(sel, duration, distance, up)
		return
	}
	body := sel.Body
	center := body.PositionAt(o.time)
	surface := body.SurfacePointAt(o.time, latDeg, lonDeg, 0)
	dir := surface.OffsetFromKm(center).Normalized()
	if dir.IsZero() {
		dir = model.Vec3{Z: 1}
	}
	minDist := body.RadiusKm * MinOrbitDistanceFactor
	if distance < minDist {
		distance = minDist
	}
	to := center.AddKm(dir.Scale(distance))
	orient := o.lookAtOrientation(to, center, up)
	o.beginJourney(to, orient, duration)
}

// GotoSurface descends to just above the surface of sel, keeping the
// current approach direction and levelling the view toward the horizon.
func (o *Observer) GotoSurface(sel model.Selection, duration float64) {
	if sel.Empty() || sel.RadiusKm() <= 0 {
		return
	}
	center := sel.PositionAt(o.time)
	dir := o.Position().OffsetFromKm(center).Normalized()
	if dir.IsZero() {
		dir = model.Vec3{Z: 1}
	}
	to := center.AddKm(dir.Scale(sel.RadiusKm() * SurfaceAltitudeFactor))

	// Level the camera: keep the current facing projected onto the
	// local horizon, with up along the radial.
	facing := o.Facing()
	horizon := facing.Sub(dir.Scale(facing.Dot(dir)))
	if horizon.Norm() < 1e-9 {
		horizon = dir.Cross(model.Vec3{Y: 1})
		if horizon.Norm() < 1e-9 {
			horizon = dir.Cross(model.Vec3{X: 1})
		}
	}
	orient := model.LookAt(horizon.Normalized(), dir)
	o.beginJourney(to, orient, duration)
}

// GotoSelectionGC approaches a surface location along a great-circle
// route: the destination hovers above the location, with the approach
// arcing over the surface rather than cutting through the body.
func (o *Observer) GotoSelectionGC(sel model.Selection, duration float64, up model.Vec3) {
	if sel.Type != model.SelectionLocation {
		o.GotoSelection(sel, duration, up)
		return
	}
	loc := sel.Location
	body := loc.ParentBody()
	distance := body.RadiusKm*MinOrbitDistanceFactor + loc.AltKm + 10
	o.GotoSelectionLongLat(model.SelectBody(body), duration, distance, loc.LonDeg, loc.LatDeg, up)
}

// GotoLocation travels to an explicit universal pose, bypassing the
// selection entirely.
func (o *Observer) GotoLocation(pos model.UniversalCoord, orient model.Quaternion, duration float64) {
	o.beginJourney(pos, orient, duration)
}

// CenterSelection slews the orientation toward sel over duration without
// moving the observer.
func (o *Observer) CenterSelection(sel model.Selection, duration float64) {
	if sel.Empty() {
		return
	}
	orient := o.lookAtOrientation(o.Position(), sel.PositionAt(o.time), o.upDirection())
	o.beginJourney(o.Position(), orient, duration)
}

// Orbit rotates the observer around sel by q (a camera-local rotation),
// preserving distance.
func (o *Observer) Orbit(sel model.Selection, q model.Quaternion) {
	if sel.Empty() {
		return
	}
	center := sel.PositionAt(o.time)
	pos := o.Position()
	rel := pos.OffsetFromKm(center)
	if rel.IsZero() {
		return
	}

	// Express the camera-local rotation in universal axes, swing the
	// position vector with it, and turn the camera the same amount so
	// the object stays centred.
	orient := o.Orientation()
	universalQ := orient.Conjugate().Mul(q).Mul(orient)
	newRel := universalQ.Rotate(rel)

	o.SetPosition(center.AddKm(newRel))
	o.SetOrientation(q.Mul(orient).Normalized())
}

// Rotate turns the observer in place by a camera-local rotation.
func (o *Observer) Rotate(q model.Quaternion) {
	o.orientation = q.Mul(o.orientation).Normalized()
}

// ChangeOrbitDistance dollies toward (positive d) or away from
// (negative d) sel exponentially: each step scales the distance above
// the surface-contact threshold, so repeated approach converges on the
// threshold without ever crossing it.
func (o *Observer) ChangeOrbitDistance(sel model.Selection, d float64) {
	if sel.Empty() {
		return
	}
	center := sel.PositionAt(o.time)
	pos := o.Position()
	rel := pos.OffsetFromKm(center)
	dist := rel.Norm()
	if dist == 0 {
		return
	}

	minDist := sel.RadiusKm() * MinOrbitDistanceFactor
	if minDist <= 0 {
		minDist = 1e-3
	}
	span := dist - minDist
	if span < 0 {
		span = 0
	}
	newDist := minDist + span*math.Exp(-d*dollyCoeff)
	o.SetPosition(center.AddKm(rel.Normalized().Scale(newDist)))
}

// Follow sets an inertial frame centred on sel.
func (o *Observer) Follow(sel model.Selection) {
	if sel.Empty() {
		return
	}
	o.SetFrame(NewFrame(Ecliptical, sel))
}

// GeosynchronousFollow sets a body-fixed frame on sel.
func (o *Observer) GeosynchronousFollow(sel model.Selection) {
	if sel.Empty() {
		return
	}
	o.SetFrame(NewFrame(BodyFixed, sel))
}

// PhaseLockOn sets a phase-lock frame keeping the observer on the line
// between sel and the previous frame's reference object.
func (o *Observer) PhaseLockOn(sel model.Selection) {
	if sel.Empty() {
		return
	}
	target := o.frame.Reference
	if target.Equal(sel) {
		target = o.trackedObject
	}
	if target.Empty() {
		return
	}
	o.SetFrame(NewPhaseLockFrame(sel, target))
}

// Chase sets a velocity-aligned frame on sel.
func (o *Observer) Chase(sel model.Selection) {
	if sel.Empty() {
		return
	}
	o.SetFrame(NewFrame(Chase, sel))
}

// SelectionLongLat reports the observer's planetocentric distance (km),
// longitude, and latitude (degrees) relative to sel. Zeroes when sel is
// not a body.
func (o *Observer) SelectionLongLat(sel model.Selection) (distance, lonDeg, latDeg float64) {
	if sel.Type != model.SelectionBody {
		return 0, 0, 0
	}
	body := sel.Body
	rel := o.Position().OffsetFromKm(body.PositionAt(o.time))
	local := body.OrientationAt(o.time).Conjugate().Rotate(rel)
	distance = local.Norm()
	if distance == 0 {
		return 0, 0, 0
	}
	latDeg = math.Asin(local.Y/distance) * 180 / math.Pi
	lonDeg = math.Atan2(-local.Z, local.X) * 180 / math.Pi
	return distance, lonDeg, latDeg
}

// lookToward snaps the orientation to face a universal position, keeping
// the current up direction.
func (o *Observer) lookToward(target model.UniversalCoord) {
	dir := target.OffsetFromKm(o.Position())
	if dir.Norm() < 1e-9 {
		return
	}
	o.SetOrientation(model.LookAt(dir, o.upDirection()))
}

// upDirection is the camera's current up axis in universal space.
func (o *Observer) upDirection() model.Vec3 {
	return o.Orientation().Conjugate().Rotate(model.Vec3{Y: 1})
}

func (o *Observer) lookAtOrientation(eye, target model.UniversalCoord, up model.Vec3) model.Quaternion {
	dir := target.OffsetFromKm(eye)
	if dir.Norm() < 1e-9 {
		return o.Orientation()
	}
	if up.IsZero() {
		up = model.Vec3{Y: 1}
	}
	return model.LookAt(dir, up)
}
