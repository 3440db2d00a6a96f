package core

import (
	"math"
	"testing"

	"github.com/signalsfoundry/starview-simulator/model"
	"github.com/signalsfoundry/starview-simulator/timectrl"
)

func fixedBody(name string, radiusKm float64, offset model.Vec3) *model.Body {
	return &model.Body{
		Name:     name,
		Class:    model.ClassPlanet,
		RadiusKm: radiusKm,
		Orbit:    model.FixedOrbit{Offset: offset},
	}
}

func TestObserverClockFollowsTimeScale(t *testing.T) {
	o := NewObserver()
	o.Update(86400, 1)
	if got, want := o.Time(), timectrl.J2000+1; math.Abs(got-want) > 1e-12 {
		t.Fatalf("time after one scaled day = %v, want %v", got, want)
	}
	o.Update(864, 100)
	if got, want := o.Time(), timectrl.J2000+2; math.Abs(got-want) > 1e-12 {
		t.Fatalf("time after accelerated day = %v, want %v", got, want)
	}
	if got := o.RealTime(); got != 86400+864 {
		t.Fatalf("real time = %v, want %v", got, 86400+864)
	}
}

func TestJourneyCompletesAtExactDestination(t *testing.T) {
	o := NewObserver()
	dest := model.UniversalCoordFromKm(model.Vec3{X: 1e7, Y: -3e6, Z: 4.5e5})
	orient := model.QuaternionFromAxisAngle(model.Vec3{Y: 1}, 0.7)

	o.GotoLocation(dest, orient, 10)
	if got := o.Mode(); got != Travelling {
		t.Fatalf("mode after goto = %v, want Travelling", got)
	}

	// Partway there the observer is strictly between the endpoints.
	o.Update(5, 1)
	mid := o.Position()
	if mid.DistanceFromKm(model.UniversalCoord{}) == 0 || mid.DistanceFromKm(dest) == 0 {
		t.Fatal("no interpolation at journey midpoint")
	}

	o.Update(5.5, 1)
	if got := o.Mode(); got != Free {
		t.Fatalf("mode after arrival = %v, want Free", got)
	}
	if d := o.Position().DistanceFromKm(dest); d != 0 {
		t.Fatalf("arrival position off by %v km, want exact", d)
	}
	if dot := math.Abs(o.Orientation().Dot(orient)); dot < 1-1e-12 {
		t.Fatalf("arrival orientation dot = %v, want 1", dot)
	}
	if speed := o.TargetSpeed(); speed != 0 {
		t.Fatalf("target speed after arrival = %v, want 0", speed)
	}
}

func TestZeroDurationJourneyCompletesOnFirstUpdate(t *testing.T) {
	o := NewObserver()
	dest := model.UniversalCoordFromKm(model.Vec3{Z: 5000})
	o.GotoLocation(dest, model.IdentityQuaternion(), 0)

	o.Update(0.001, 1)
	if got := o.Mode(); got != Free {
		t.Fatalf("mode = %v, want Free", got)
	}
	if d := o.Position().DistanceFromKm(dest); d != 0 {
		t.Fatalf("position off by %v km, want exact", d)
	}
}

func TestPoseKeepsPrecisionFarFromOrigin(t *testing.T) {
	// 100 ly out a float64 kilometre grid is ~125 m coarse; the pose
	// must hold sub-kilometre offsets anyway.
	anchor := model.UniversalCoordFromLy(model.Vec3{X: 100})
	dest := anchor.AddKm(model.Vec3{X: 0.3})

	o := NewObserver()
	o.SetPosition(dest)
	if d := o.Position().DistanceFromKm(dest); d != 0 {
		t.Fatalf("pose round trip off by %v km, want exact", d)
	}
	if off := o.Position().OffsetFromKm(anchor); math.Abs(off.X-0.3) > 1e-12 {
		t.Fatalf("offset from anchor = %v km, want 0.3", off.X)
	}
}

func TestJourneyArrivesExactlyFarFromOrigin(t *testing.T) {
	dest := model.UniversalCoordFromLy(model.Vec3{X: 100}).AddKm(model.Vec3{X: 0.3})

	o := NewObserver()
	o.GotoLocation(dest, model.IdentityQuaternion(), 0)
	o.Update(0.001, 1)
	if got := o.Mode(); got != Free {
		t.Fatalf("mode = %v, want Free", got)
	}
	if d := o.Position().DistanceFromKm(dest); d != 0 {
		t.Fatalf("arrival position off by %v km, want exact", d)
	}
}

func TestManualPoseDuringJourneyIsOverwritten(t *testing.T) {
	o := NewObserver()
	dest := model.UniversalCoordFromKm(model.Vec3{X: 1e6})
	o.GotoLocation(dest, model.IdentityQuaternion(), 10)
	o.Update(2, 1)

	o.SetPosition(model.UniversalCoordFromKm(model.Vec3{Y: 9e9}))
	o.Update(9, 1)

	if d := o.Position().DistanceFromKm(dest); d != 0 {
		t.Fatalf("journey did not reclaim the pose, off by %v km", d)
	}
}

func TestCancelMotionHoldsCurrentPose(t *testing.T) {
	o := NewObserver()
	dest := model.UniversalCoordFromKm(model.Vec3{X: 1e6})
	o.GotoLocation(dest, model.IdentityQuaternion(), 10)
	o.Update(4, 1)

	held := o.Position()
	o.CancelMotion()
	if got := o.Mode(); got != Free {
		t.Fatalf("mode after cancel = %v, want Free", got)
	}
	o.Update(5, 1)
	if d := o.Position().DistanceFromKm(held); d != 0 {
		t.Fatalf("observer drifted %v km after cancel", d)
	}
}

func TestCenterSelectionOnlyRotates(t *testing.T) {
	body := fixedBody("Vesta", 260, model.Vec3{X: 5e5, Y: 2e5})
	o := NewObserver()
	start := o.Position()

	o.CenterSelection(model.SelectBody(body), 2)
	o.Update(1, 1)
	if d := o.Position().DistanceFromKm(start); d != 0 {
		t.Fatalf("center moved the observer by %v km", d)
	}

	o.Update(1.5, 1)
	facing := o.Facing()
	want := body.PositionAt(o.Time()).OffsetFromKm(o.Position()).Normalized()
	if dot := facing.Dot(want); dot < 1-1e-9 {
		t.Fatalf("facing dot target direction = %v, want 1", dot)
	}
}

func TestGotoSelectionStopsAtViewingDistance(t *testing.T) {
	body := fixedBody("Ceres", 470, model.Vec3{X: 4e8})
	o := NewObserver()

	o.GotoSelection(model.SelectBody(body), 8, model.Vec3{Y: 1})
	o.Update(9, 1)

	dist := o.Position().DistanceFromKm(body.PositionAt(o.Time()))
	want := body.RadiusKm * DefaultGotoDistanceFactor
	if math.Abs(dist-want) > 1e-6*want {
		t.Fatalf("arrival distance = %v km, want %v", dist, want)
	}

	facing := o.Facing()
	toBody := body.PositionAt(o.Time()).OffsetFromKm(o.Position()).Normalized()
	if dot := facing.Dot(toBody); dot < 1-1e-9 {
		t.Fatalf("arrival facing dot = %v, want 1", dot)
	}
}

func TestGotoSelectionDistanceClampsAboveSurface(t *testing.T) {
	body := fixedBody("Ceres", 470, model.Vec3{X: 4e8})
	o := NewObserver()

	// Asking to stop inside the body is clamped to the contact threshold.
	o.GotoSelectionDistance(model.SelectBody(body), 3, 10, model.Vec3{Y: 1})
	o.Update(4, 1)

	dist := o.Position().DistanceFromKm(body.PositionAt(o.Time()))
	want := body.RadiusKm * MinOrbitDistanceFactor
	if math.Abs(dist-want) > 1e-6*want {
		t.Fatalf("clamped distance = %v km, want %v", dist, want)
	}
}

func TestOrbitPreservesDistance(t *testing.T) {
	body := fixedBody("Mars", 3390, model.Vec3{})
	sel := model.SelectBody(body)

	o := NewObserver()
	o.SetPosition(model.UniversalCoordFromKm(model.Vec3{X: 20000}))
	before := o.Position().DistanceFromKm(body.PositionAt(o.Time()))

	q := model.QuaternionFromAxisAngle(model.Vec3{Y: 1}, 0.3)
	for i := 0; i < 12; i++ {
		o.Orbit(sel, q)
	}

	after := o.Position().DistanceFromKm(body.PositionAt(o.Time()))
	if math.Abs(after-before) > 1e-6*before {
		t.Fatalf("orbit changed distance: %v -> %v km", before, after)
	}
}

func TestDollyConvergesOnContactThreshold(t *testing.T) {
	body := fixedBody("Mars", 3390, model.Vec3{})
	sel := model.SelectBody(body)
	minDist := body.RadiusKm * MinOrbitDistanceFactor

	o := NewObserver()
	o.SetPosition(model.UniversalCoordFromKm(model.Vec3{X: 1e6}))

	prev := o.Position().DistanceFromKm(body.PositionAt(o.Time()))
	for i := 0; i < 50; i++ {
		o.ChangeOrbitDistance(sel, 1)
		d := o.Position().DistanceFromKm(body.PositionAt(o.Time()))
		if d >= prev {
			t.Fatalf("step %d: distance did not shrink: %v -> %v", i, prev, d)
		}
		if d < minDist {
			t.Fatalf("step %d: distance %v crossed the threshold %v", i, d, minDist)
		}
		prev = d
	}
	if math.Abs(prev-minDist) > 1e-3*minDist {
		t.Fatalf("distance after 50 approach steps = %v, want near %v", prev, minDist)
	}

	// Backing off moves away again.
	o.ChangeOrbitDistance(sel, -2)
	if d := o.Position().DistanceFromKm(body.PositionAt(o.Time())); d <= prev {
		t.Fatalf("dolly out did not retreat: %v -> %v", prev, d)
	}
}

func TestSetFramePreservesUniversalPose(t *testing.T) {
	body := fixedBody("Earth", 6378, model.Vec3{X: 1.496e8})
	body.Rotation = model.UniformRotation{Period: 0.997, Obliquity: 23.4}

	o := NewObserver()
	o.SetPosition(model.UniversalCoordFromKm(model.Vec3{X: 1.496e8 + 42164}))
	o.SetOrientation(model.QuaternionFromAxisAngle(model.Vec3{Z: 1}, 1.1))

	pos := o.Position()
	orient := o.Orientation()

	o.SetFrame(NewFrame(BodyFixed, model.SelectBody(body)))
	if d := o.Position().DistanceFromKm(pos); d > 1e-6 {
		t.Fatalf("frame switch moved the observer by %v km", d)
	}
	if dot := math.Abs(o.Orientation().Dot(orient)); dot < 1-1e-9 {
		t.Fatalf("frame switch turned the camera, dot = %v", dot)
	}

	o.SetFrame(nil)
	if d := o.Position().DistanceFromKm(pos); d > 1e-6 {
		t.Fatalf("switch back moved the observer by %v km", d)
	}
}

func TestBodyFixedFrameHoldsStationOverSpin(t *testing.T) {
	body := fixedBody("Earth", 6378, model.Vec3{X: 1.496e8})
	body.Rotation = model.UniformRotation{Period: 1}

	o := NewObserver()
	o.SetFrame(NewFrame(BodyFixed, model.SelectBody(body)))
	o.SetPosition(body.SurfacePointAt(o.Time(), 0, 0, 400))

	rel := o.Position().OffsetFromKm(body.PositionAt(o.Time()))
	local := body.OrientationAt(o.Time()).Conjugate().Rotate(rel)

	// A quarter revolution later the observer still hovers over the same
	// body-fixed point.
	o.Update(21600, 1)
	rel2 := o.Position().OffsetFromKm(body.PositionAt(o.Time()))
	local2 := body.OrientationAt(o.Time()).Conjugate().Rotate(rel2)
	if d := local.Sub(local2).Norm(); d > 1e-5 {
		t.Fatalf("body-fixed station drifted %v km over a quarter spin", d)
	}
}

func TestReverseOrientationIsInvolution(t *testing.T) {
	o := NewObserver()
	o.SetOrientation(model.QuaternionFromAxisAngle(model.Vec3{X: 1, Y: 2, Z: -1}.Normalized(), 0.9))
	before := o.Orientation()

	o.ReverseOrientation()
	if dot := before.Conjugate().Rotate(model.Vec3{Z: -1}).Dot(o.Facing()); dot > -1+1e-9 {
		t.Fatalf("reverse did not flip the facing, dot = %v", dot)
	}
	o.ReverseOrientation()
	if dot := math.Abs(o.Orientation().Dot(before)); dot < 1-1e-9 {
		t.Fatalf("double reverse dot = %v, want 1", dot)
	}
}

func TestTrackedObjectKeepsFacing(t *testing.T) {
	body := fixedBody("Io", 1821, model.Vec3{X: 4.2e5, Z: 1e5})
	o := NewObserver()
	o.SetTrackedObject(model.SelectBody(body))

	o.Update(1, 1)
	want := body.PositionAt(o.Time()).OffsetFromKm(o.Position()).Normalized()
	if dot := o.Facing().Dot(want); dot < 1-1e-9 {
		t.Fatalf("tracking facing dot = %v, want 1", dot)
	}
}

func TestTargetSpeedMovesAlongFacing(t *testing.T) {
	o := NewObserver()
	o.SetOrientation(model.LookAt(model.Vec3{X: 1}, model.Vec3{Y: 1}))
	o.SetTargetSpeed(10)

	o.Update(5, 1)
	offset := o.Position().OffsetFromKm(model.UniversalCoord{})
	if math.Abs(offset.X-50) > 1e-6 || math.Abs(offset.Y) > 1e-6 || math.Abs(offset.Z) > 1e-6 {
		t.Fatalf("position after cruise = %+v, want 50 km along +X", offset)
	}
}

func TestPhaseLockFallsBackToTrackedObject(t *testing.T) {
	a := fixedBody("Earth", 6378, model.Vec3{X: 1.496e8})
	b := fixedBody("Moon", 1737, model.Vec3{X: 1.496e8 + 3.844e5})

	o := NewObserver()
	o.Follow(model.SelectBody(a))
	o.PhaseLockOn(model.SelectBody(b))
	f := o.Frame()
	if f.System != PhaseLock || f.Reference.Body != b || f.Target.Body != a {
		t.Fatalf("phase lock frame = %+v, want Moon locked to Earth", f)
	}

	// Locking onto the frame's own reference needs the tracked object as
	// the far end.
	o2 := NewObserver()
	o2.Follow(model.SelectBody(a))
	o2.SetTrackedObject(model.SelectBody(b))
	o2.PhaseLockOn(model.SelectBody(a))
	f2 := o2.Frame()
	if f2.System != PhaseLock || f2.Target.Body != b {
		t.Fatalf("phase lock fallback frame = %+v, want target Moon", f2)
	}
}
