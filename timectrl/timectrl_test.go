package timectrl

import (
	"math"
	"testing"
	"time"
)

func TestPauseResumeRoundTrip(t *testing.T) {
	rates := []float64{1, -1, 1000, 1e-6, -2.5e8}
	for _, r := range rates {
		s := NewState()
		s.SetTimeScale(r)
		s.SetPaused(true)
		if s.EffectiveScale() != 0 {
			t.Fatalf("rate %g: effective scale while paused = %g, want 0", r, s.EffectiveScale())
		}
		s.SetPaused(false)
		if got := s.TimeScale(); got != r {
			t.Fatalf("rate %g: TimeScale after resume = %g", r, got)
		}
	}
}

func TestSetTimeScaleWhilePausedUpdatesStoredRate(t *testing.T) {
	s := NewState()
	s.SetTimeScale(10)
	s.SetPaused(true)

	s.SetTimeScale(500)
	if got := s.TimeScale(); got != 500 {
		t.Fatalf("TimeScale while paused = %g, want the pending rate 500", got)
	}
	if s.EffectiveScale() != 0 {
		t.Fatalf("effective scale while paused = %g, want 0", s.EffectiveScale())
	}

	s.SetPaused(false)
	if got := s.TimeScale(); got != 500 {
		t.Fatalf("TimeScale after resume = %g, want 500", got)
	}
}

func TestSetPausedSameStateIsNoOp(t *testing.T) {
	s := NewState()
	s.SetTimeScale(7)
	s.SetPaused(true)
	s.SetPaused(true)
	s.SetPaused(false)
	if got := s.TimeScale(); got != 7 {
		t.Fatalf("TimeScale after redundant pause = %g, want 7", got)
	}
}

func TestJulianDateRoundTrip(t *testing.T) {
	instant := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)
	jd := TimeToJD(instant)
	back := JDToTime(jd)
	if diff := back.Sub(instant); diff > time.Millisecond || diff < -time.Millisecond {
		t.Fatalf("JD round trip drifted by %v", diff)
	}
}

func TestJ2000Epoch(t *testing.T) {
	epoch := time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)
	if jd := TimeToJD(epoch); math.Abs(jd-J2000) > 1e-6 {
		t.Fatalf("TimeToJD(J2000 epoch) = %f, want %f", jd, J2000)
	}
}
