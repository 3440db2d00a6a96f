package core

import (
	"sort"

	"github.com/signalsfoundry/starview-simulator/model"
	"github.com/signalsfoundry/starview-simulator/timectrl"
	"github.com/signalsfoundry/starview-simulator/universe"
)

// Universe is the catalog query surface the simulation depends on. All
// methods are pure reads against externally loaded, externally owned
// catalog data. *universe.Universe implements it.
type Universe interface {
	Find(name string, context []model.Selection, jd float64) model.Selection
	FindPath(path string, context []model.Selection, jd float64) model.Selection
	Completion(prefix string, context []model.Selection, withLocations bool) []string
	Pick(origin model.UniversalCoord, direction model.Vec3, jd, faintestMag, tolerance float64) model.Selection
	NearestSolarSystem(pos model.UniversalCoord) *model.SolarSystem
	SolarSystem(star *model.Star) *model.SolarSystem
	SolarSystemOf(sel model.Selection) *model.SolarSystem
}

// Renderer consumes a read-only snapshot per view per frame. The call is
// one-way: nothing the renderer does feeds back into simulation state.
type Renderer interface {
	Render(observer *Observer, u Universe, faintestVisible float64, sel model.Selection)
}

// TickRecorder receives per-tick observations; the observability
// collector implements it. A nil recorder disables recording.
type TickRecorder interface {
	RecordTick(dt float64, observers int)
	RecordTravelStart(op string)
}

// Notifier receives change notifications for UI layers to drain. A nil
// notifier drops them.
type Notifier interface {
	SelectionChanged(sel model.Selection)
	TimeChanged(jd float64)
	FrameChanged(f *Frame)
	Flash(message string)
}

// Simulation tracks observers moving through the star catalog: their
// clocks, the shared selection, and the lookup context derived from
// where the active observer currently is.
//
// All mutation happens synchronously on the tick-and-input goroutine —
// input handlers, script ticks, and Update run in sequence, never
// concurrently — so the struct carries no lock.
type Simulation struct {
	universe Universe
	clock    *timectrl.State

	observers      []*Observer
	activeObserver *Observer

	selection model.Selection

	realTime        float64
	faintestVisible float64

	// Invalidated each tick, recomputed lazily on first query.
	nearestSystem      *model.SolarSystem
	nearestSystemValid bool

	recorder TickRecorder
	notifier Notifier
}

// NewSimulation creates a simulation over the given universe with one
// default observer.
func NewSimulation(u Universe) *Simulation {
	obs := NewObserver()
	return &Simulation{
		universe:        u,
		clock:           timectrl.NewState(),
		observers:       []*Observer{obs},
		activeObserver:  obs,
		faintestVisible: 5.0,
	}
}

// SetRecorder attaches a tick recorder; nil detaches.
func (s *Simulation) SetRecorder(r TickRecorder) { s.recorder = r }

// SetNotifier attaches a change notifier; nil detaches.
func (s *Simulation) SetNotifier(n Notifier) { s.notifier = n }

// Universe returns the catalog the simulation runs against.
func (s *Simulation) Universe() Universe { return s.universe }

// Clock returns the shared time-scale/pause state.
func (s *Simulation) Clock() *timectrl.State { return s.clock }

// Time returns the active observer's clock as a Julian date.
func (s *Simulation) Time() float64 { return s.activeObserver.Time() }

// SetTime sets the clock: every observer's when sync-time is on,
// otherwise only the active observer's.
func (s *Simulation) SetTime(jd float64) {
	if s.clock.SyncTime() {
		for _, o := range s.observers {
			o.SetTime(jd)
		}
	} else {
		s.activeObserver.SetTime(jd)
	}
	if s.notifier != nil {
		s.notifier.TimeChanged(jd)
	}
}

// RealTime returns wall-clock seconds accumulated since creation.
func (s *Simulation) RealTime() float64 { return s.realTime }

// ArrivalTime returns the active observer's journey arrival time.
func (s *Simulation) ArrivalTime() float64 { return s.activeObserver.ArrivalTime() }

// Update ticks the simulation by dt wall-clock seconds: accumulate real
// time, advance every observer, and invalidate the nearest-system memo
// so the next query recomputes it against fresh positions.
func (s *Simulation) Update(dt float64) {
	s.realTime += dt

	scale := s.clock.EffectiveScale()
	for _, o := range s.observers {
		o.Update(dt, scale)
	}

	s.nearestSystem = nil
	s.nearestSystemValid = false

	if s.recorder != nil {
		s.recorder.RecordTick(dt, len(s.observers))
	}
}

// Render draws the active observer's view.
func (s *Simulation) Render(r Renderer) {
	r.Render(s.activeObserver, s.universe, s.faintestVisible, s.selection)
}

// RenderObserver draws a specific observer's view.
func (s *Simulation) RenderObserver(r Renderer, o *Observer) {
	r.Render(o, s.universe, s.faintestVisible, s.selection)
}

// Selection returns the current global selection.
func (s *Simulation) Selection() model.Selection { return s.selection }

// SetSelection replaces the global selection.
func (s *Simulation) SetSelection(sel model.Selection) {
	s.selection = sel
	if s.notifier != nil {
		s.notifier.SelectionChanged(sel)
	}
}

// TrackedObject returns the active observer's tracked object.
func (s *Simulation) TrackedObject() model.Selection {
	return s.activeObserver.TrackedObject()
}

// SetTrackedObject sets the active observer's tracked object.
func (s *Simulation) SetTrackedObject(sel model.Selection) {
	s.activeObserver.SetTrackedObject(sel)
}

// PickObject casts a pick ray (camera-local) from the active observer.
func (s *Simulation) PickObject(pickRay model.Vec3, tolerance float64) model.Selection {
	o := s.activeObserver
	dir := o.Orientation().Conjugate().Rotate(pickRay)
	return s.universe.Pick(o.Position(), dir, o.Time(), s.faintestVisible, tolerance)
}

// Observer returns the active observer.
func (s *Simulation) Observer() *Observer { return s.activeObserver }

// AddObserver creates, registers, and returns a fresh observer.
func (s *Simulation) AddObserver() *Observer {
	o := NewObserver()
	s.observers = append(s.observers, o)
	return o
}

// AddObserverClone registers and returns a copy of the active observer;
// used when splitting a view.
func (s *Simulation) AddObserverClone() *Observer {
	o := s.activeObserver.Clone()
	s.observers = append(s.observers, o)
	return o
}

// RemoveObserver drops an observer by identity. Unknown observers are
// ignored. Observer counts are bounded by split views, so the linear
// scan is fine.
func (s *Simulation) RemoveObserver(o *Observer) {
	for i, cur := range s.observers {
		if cur == o {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

// ActiveObserver returns the observer driving context queries.
func (s *Simulation) ActiveObserver() *Observer { return s.activeObserver }

// SetActiveObserver switches the active observer, but only to one that
// is registered; anything else is silently ignored.
func (s *Simulation) SetActiveObserver(o *Observer) {
	for _, cur := range s.observers {
		if cur == o {
			s.activeObserver = o
			return
		}
	}
}

// ObserverCount returns the number of registered observers.
func (s *Simulation) ObserverCount() int { return len(s.observers) }

// Observers returns the registry in creation order. Callers must not
// mutate the slice.
func (s *Simulation) Observers() []*Observer { return s.observers }

// TimeScale returns the user-visible time rate.
func (s *Simulation) TimeScale() float64 { return s.clock.TimeScale() }

// SetTimeScale sets the time rate; while paused it updates the rate
// that will resume. Clamping to the legal range is the caller's job.
func (s *Simulation) SetTimeScale(scale float64) { s.clock.SetTimeScale(scale) }

// PauseState reports whether simulated time is frozen.
func (s *Simulation) PauseState() bool { return s.clock.Paused() }

// SetPauseState freezes or resumes simulated time.
func (s *Simulation) SetPauseState(paused bool) { s.clock.SetPaused(paused) }

// SyncTime reports whether SetTime broadcasts to all observers.
func (s *Simulation) SyncTime() bool { return s.clock.SyncTime() }

// SetSyncTime toggles SetTime broadcast.
func (s *Simulation) SetSyncTime(sync bool) { s.clock.SetSyncTime(sync) }

// SynchronizeTime one-shot copies the active observer's clock to every
// observer, regardless of the sync-time flag.
func (s *Simulation) SynchronizeTime() {
	jd := s.activeObserver.Time()
	for _, o := range s.observers {
		o.SetTime(jd)
	}
}

// FaintestVisible returns the magnitude cutoff passed to renders and
// picks.
func (s *Simulation) FaintestVisible() float64 { return s.faintestVisible }

// SetFaintestVisible sets the magnitude cutoff.
func (s *Simulation) SetFaintestVisible(mag float64) { s.faintestVisible = mag }

// NearestSolarSystem returns the solar system closest to the active
// observer, memoized until the next Update. May be nil when nothing is
// in range.
func (s *Simulation) NearestSolarSystem() *model.SolarSystem {
	if !s.nearestSystemValid {
		s.nearestSystem = s.universe.NearestSolarSystem(s.activeObserver.Position())
		s.nearestSystemValid = true
	}
	return s.nearestSystem
}

// contextPath builds the 2-entry disambiguation path for name lookups:
// the current selection (if any) and the nearest system's star (if any).
func (s *Simulation) contextPath() []model.Selection {
	path := make([]model.Selection, 0, 2)
	if !s.selection.Empty() {
		path = append(path, s.selection)
	}
	if sys := s.NearestSolarSystem(); sys != nil {
		path = append(path, model.SelectStar(sys.Star()))
	}
	return path
}

// FindObject resolves a single object name, preferring matches near the
// observer's current context. An unresolvable name yields the empty
// Selection.
func (s *Simulation) FindObject(name string) model.Selection {
	return s.universe.Find(name, s.contextPath(), s.Time())
}

// FindObjectFromPath resolves a slash path such as Sol/Earth/Moon.
func (s *Simulation) FindObjectFromPath(path string) model.Selection {
	return s.universe.FindPath(path, s.contextPath(), s.Time())
}

// ObjectCompletion returns catalog names completing the given prefix,
// naturally sorted. A Location selection contributes its parent body to
// the context (locations aren't separately completable), and the
// nearest system is skipped when it is the selection's own system.
func (s *Simulation) ObjectCompletion(prefix string, withLocations bool) []string {
	path := make([]model.Selection, 0, 2)
	if !s.selection.Empty() {
		if s.selection.Type == model.SelectionLocation {
			path = append(path, model.SelectBody(s.selection.Location.ParentBody()))
		} else {
			path = append(path, s.selection)
		}
	}

	if sys := s.NearestSolarSystem(); sys != nil && sys != s.universe.SolarSystemOf(s.selection) {
		path = append(path, model.SelectStar(sys.Star()))
	}

	completion := s.universe.Completion(prefix, path, withLocations)
	sort.Slice(completion, func(i, j int) bool {
		return universe.NaturalLess(completion[i], completion[j])
	})
	return completion
}

// SelectPlanet selects a member of the contextual solar system by index.
// A negative index selects the parent star of the currently selected
// body; out-of-range indices are no-ops.
func (s *Simulation) SelectPlanet(index int) {
	if index < 0 {
		if s.selection.Type == model.SelectionBody {
			if star := s.selection.Body.Star(); star != nil {
				s.SetSelection(model.SelectStar(star))
			}
		}
		return
	}

	var star *model.Star
	switch s.selection.Type {
	case model.SelectionStar:
		star = s.selection.Star
	case model.SelectionBody:
		star = s.selection.Body.Star()
	}

	var system *model.SolarSystem
	if star != nil {
		system = s.universe.SolarSystem(star)
	} else {
		system = s.NearestSolarSystem()
	}

	if system != nil && index < system.Planets().Size() {
		s.SetSelection(model.SelectBody(system.Planets().Body(index)))
	}
}

// travel wraps an observer goto and records/notifies it.
func (s *Simulation) travel(op string, fn func(o *Observer)) {
	fn(s.activeObserver)
	if s.recorder != nil && s.activeObserver.Mode() == Travelling {
		s.recorder.RecordTravelStart(op)
	}
}

// GotoSelection travels to the standard viewing distance from the
// current selection. A Location selection takes the great-circle
// approach over the parent body's surface.
func (s *Simulation) GotoSelection(duration float64, up model.Vec3) {
	s.travel("goto", func(o *Observer) {
		if s.selection.Type == model.SelectionLocation {
			o.GotoSelectionGC(s.selection, duration, up)
		} else {
			o.GotoSelection(s.selection, duration, up)
		}
	})
}

// GotoSelectionDistance travels to an explicit distance from the current
// selection.
func (s *Simulation) GotoSelectionDistance(duration, distance float64, up model.Vec3) {
	s.travel("goto", func(o *Observer) {
		o.GotoSelectionDistance(s.selection, duration, distance, up)
	})
}

// GotoSelectionLongLat travels to a planetocentric longitude/latitude
// above the current selection.
func (s *Simulation) GotoSelectionLongLat(duration, distance, lonDeg, latDeg float64, up model.Vec3) {
	s.travel("goto-longlat", func(o *Observer) {
		o.GotoSelectionLongLat(s.selection, duration, distance, lonDeg, latDeg, up)
	})
}

// GotoSurface descends to just above the current selection's surface.
func (s *Simulation) GotoSurface(duration float64) {
	s.travel("goto-surface", func(o *Observer) {
		o.GotoSurface(s.selection, duration)
	})
}

// GotoLocation travels to an explicit universal pose.
func (s *Simulation) GotoLocation(pos model.UniversalCoord, orient model.Quaternion, duration float64) {
	s.travel("goto-location", func(o *Observer) {
		o.GotoLocation(pos, orient, duration)
	})
}

// CenterSelection slews the view toward the current selection.
func (s *Simulation) CenterSelection(duration float64) {
	s.travel("center", func(o *Observer) {
		o.CenterSelection(s.selection, duration)
	})
}

// CancelMotion aborts any in-flight travel at the current pose.
func (s *Simulation) CancelMotion() { s.activeObserver.CancelMotion() }

// SelectionLongLat reports the active observer's planetocentric
// position relative to the current selection.
func (s *Simulation) SelectionLongLat() (distance, lonDeg, latDeg float64) {
	return s.activeObserver.SelectionLongLat(s.selection)
}

// Orbit rotates the active observer around the current selection.
func (s *Simulation) Orbit(q model.Quaternion) { s.activeObserver.Orbit(s.selection, q) }

// Rotate turns the active observer in place.
func (s *Simulation) Rotate(q model.Quaternion) { s.activeObserver.Rotate(q) }

// ChangeOrbitDistance applies the exponential dolly toward the current
// selection.
func (s *Simulation) ChangeOrbitDistance(d float64) {
	s.activeObserver.ChangeOrbitDistance(s.selection, d)
}

// SetTargetSpeed sets the active observer's cruising speed.
func (s *Simulation) SetTargetSpeed(speed float64) { s.activeObserver.SetTargetSpeed(speed) }

// TargetSpeed returns the active observer's cruising speed.
func (s *Simulation) TargetSpeed() float64 { return s.activeObserver.TargetSpeed() }

// SetObserverPosition places the active observer at a universal
// position.
func (s *Simulation) SetObserverPosition(pos model.UniversalCoord) {
	s.activeObserver.SetPosition(pos)
}

// SetObserverOrientation sets the active observer's universal camera
// orientation.
func (s *Simulation) SetObserverOrientation(q model.Quaternion) {
	s.activeObserver.SetOrientation(q)
}

// ReverseObserverOrientation turns the active camera around.
func (s *Simulation) ReverseObserverOrientation() { s.activeObserver.ReverseOrientation() }

// ObserverMode returns the active observer's travel state.
func (s *Simulation) ObserverMode() ObserverMode { return s.activeObserver.Mode() }

// SetFrameSystem rebases the active observer on a new frame around the
// given reference (and target, for phase lock).
func (s *Simulation) SetFrameSystem(system CoordinateSystem, ref, target model.Selection) {
	var f *Frame
	if system == PhaseLock {
		f = NewPhaseLockFrame(ref, target)
	} else {
		f = NewFrame(system, ref)
	}
	s.activeObserver.SetFrame(f)
	if s.notifier != nil {
		s.notifier.FrameChanged(f)
	}
}

// Frame returns the active observer's reference frame.
func (s *Simulation) Frame() *Frame { return s.activeObserver.Frame() }

// Follow rebases on an inertial frame around the current selection.
func (s *Simulation) Follow() {
	s.activeObserver.Follow(s.selection)
	s.notifyFrame()
}

// GeosynchronousFollow rebases on a body-fixed frame around the current
// selection.
func (s *Simulation) GeosynchronousFollow() {
	s.activeObserver.GeosynchronousFollow(s.selection)
	s.notifyFrame()
}

// PhaseLock rebases on a phase-lock frame between the current selection
// and the previous reference object.
func (s *Simulation) PhaseLock() {
	s.activeObserver.PhaseLockOn(s.selection)
	s.notifyFrame()
}

// Chase rebases on a velocity-aligned frame around the current
// selection.
func (s *Simulation) Chase() {
	s.activeObserver.Chase(s.selection)
	s.notifyFrame()
}

func (s *Simulation) notifyFrame() {
	if s.notifier != nil {
		s.notifier.FrameChanged(s.activeObserver.Frame())
	}
}
