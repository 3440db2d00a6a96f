// Package timectrl is the simulation time model: Julian-date conversion
// helpers and the time-scale/pause state shared by all observers.
package timectrl

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// J2000 is the Julian date of the J2000.0 epoch (2000 Jan 1.5 TT).
const J2000 = 2451545.0

// SecondsPerDay converts between tick deltas (seconds) and Julian days.
const SecondsPerDay = 86400.0

// Time-rate clamp bounds. The clock itself never clamps; interactive
// callers (UI key bindings, script commands) clamp before calling
// SetTimeScale so the stored-rate semantics stay exact.
const (
	MinimumTimeRate = 1e-15
	MaximumTimeRate = 1e15
)

// TimeToJD converts a wall-clock instant to a Julian date.
func TimeToJD(t time.Time) float64 {
	return julian.TimeToJD(t.UTC())
}

// JDToTime converts a Julian date to a wall-clock instant in UTC.
func JDToTime(jd float64) time.Time {
	return julian.JDToTime(jd).UTC()
}

// SecondsToDays converts a span of simulated seconds to Julian days.
func SecondsToDays(s float64) float64 {
	return s / SecondsPerDay
}

// State holds the time-scale, pause, and sync-time flags for a
// simulation session. It is mutated only from the tick-and-input
// goroutine, so it carries no lock.
//
// Pausing forces the live scale to zero while caching the previous value;
// un-pausing restores it exactly. SetTimeScale during a pause updates the
// cached value instead, so the rate reported to the user is always the
// rate that will resume.
type State struct {
	timeScale       float64
	storedTimeScale float64
	paused          bool
	syncTime        bool
}

// NewState returns a running clock state at 1x with time sync enabled.
func NewState() *State {
	return &State{timeScale: 1, storedTimeScale: 1, syncTime: true}
}

// TimeScale returns the effective user-visible rate: the live scale when
// running, the stored scale when paused.
func (s *State) TimeScale() float64 {
	if s.paused {
		return s.storedTimeScale
	}
	return s.timeScale
}

// SetTimeScale sets the rate. While paused only the stored value changes.
func (s *State) SetTimeScale(scale float64) {
	if s.paused {
		s.storedTimeScale = scale
	} else {
		s.timeScale = scale
	}
}

// Paused reports the pause state.
func (s *State) Paused() bool { return s.paused }

// SetPaused toggles the pause state, caching and restoring the live
// scale. Setting the current state again is a no-op.
func (s *State) SetPaused(paused bool) {
	if s.paused == paused {
		return
	}
	s.paused = paused
	if paused {
		s.storedTimeScale = s.timeScale
		s.timeScale = 0
	} else {
		s.timeScale = s.storedTimeScale
	}
}

// SyncTime reports whether SetTime broadcasts to every observer.
func (s *State) SyncTime() bool { return s.syncTime }

// SetSyncTime toggles broadcast behaviour. It is orthogonal to a one-shot
// synchronize, which copies clocks once regardless of this flag.
func (s *State) SetSyncTime(sync bool) { s.syncTime = sync }

// EffectiveScale returns the rate applied to tick deltas: zero while
// paused, the live scale otherwise.
func (s *State) EffectiveScale() float64 { return s.timeScale }
