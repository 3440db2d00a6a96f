package universe

import (
	"math"
	"testing"

	"github.com/signalsfoundry/starview-simulator/model"
	"github.com/signalsfoundry/starview-simulator/timectrl"
)

func TestFindResolvesStarsWithoutContext(t *testing.T) {
	u, sol, _ := newTestUniverse(t)

	sel := u.Find("Sol", nil, timectrl.J2000)
	if sel.Type != model.SelectionStar || sel.Star != sol {
		t.Fatalf("Find(Sol) = %v, want the star", sel)
	}

	if sel := u.Find("sOL", nil, timectrl.J2000); sel.Star != sol {
		t.Fatal("star lookup should be case-insensitive")
	}
}

func TestFindBodyNeedsContext(t *testing.T) {
	u, sol, _ := newTestUniverse(t)

	if sel := u.Find("Earth", nil, timectrl.J2000); !sel.Empty() {
		t.Fatalf("Find(Earth) without context = %v, want empty", sel)
	}

	ctx := []model.Selection{model.SelectStar(sol)}
	sel := u.Find("Earth", ctx, timectrl.J2000)
	if sel.Type != model.SelectionBody || sel.Body.Name != "Earth" {
		t.Fatalf("Find(Earth) with star context = %v, want the body", sel)
	}
}

func TestFindFallsBackToNearbySystems(t *testing.T) {
	u, _, earth := newTestUniverse(t)
	moon := earth.Satellites().Bodies()[0]

	// Mars is neither a satellite nor a location of the Moon, but the
	// Moon sits inside the Sol system, which is within search radius.
	ctx := []model.Selection{model.SelectBody(moon)}
	sel := u.Find("Mars", ctx, timectrl.J2000)
	if sel.Type != model.SelectionBody || sel.Body.Name != "Mars" {
		t.Fatalf("Find(Mars) from lunar context = %v, want the body", sel)
	}
}

func TestFindPath(t *testing.T) {
	u, _, _ := newTestUniverse(t)

	tests := []struct {
		path string
		want string
	}{
		{"Sol", "Sol"},
		{"Sol/Earth", "Earth"},
		{"Sol/Earth/Moon", "Moon"},
		{"sol/earth/moon", "Moon"},
		{"Sol/Earth/Mauna Kea", "Mauna Kea"},
		{"Sol / Earth / Moon", "Moon"},
		{"Sol/Venus", ""},
		{"Sol/Earth/Moon/Tycho", ""},
		{"Vulcan/Earth", ""},
	}

	for _, tt := range tests {
		sel := u.FindPath(tt.path, nil, timectrl.J2000)
		got := ""
		if !sel.Empty() {
			got = sel.Name()
		}
		if got != tt.want {
			t.Errorf("FindPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestFindPathThroughLocationFails(t *testing.T) {
	u, _, _ := newTestUniverse(t)

	// A location has no children of its own; the segment resolves
	// against the parent body instead, so a sibling location still works
	// but nonsense stays empty.
	if sel := u.FindPath("Sol/Earth/Mauna Kea/Moon", nil, timectrl.J2000); sel.Name() != "Moon" {
		t.Fatalf("path through location = %q, want Moon via the parent body", sel.Name())
	}
	if sel := u.FindPath("Sol/Earth/Mauna Kea/Crater", nil, timectrl.J2000); !sel.Empty() {
		t.Fatal("unknown child of a location should stay empty")
	}
}

func TestCompletion(t *testing.T) {
	u, sol, earth := newTestUniverse(t)

	got := u.Completion("M", []model.Selection{model.SelectStar(sol)}, false)
	want := map[string]bool{"Mars": true}
	for _, name := range got {
		if !want[name] {
			t.Errorf("Completion included %q unexpectedly", name)
		}
		delete(want, name)
	}
	for name := range want {
		t.Errorf("Completion missing %q", name)
	}

	// Location names appear only when asked for.
	ctx := []model.Selection{model.SelectBody(earth)}
	if got := u.Completion("Mauna", ctx, false); len(got) != 0 {
		t.Fatalf("Completion without locations = %v, want none", got)
	}
	if got := u.Completion("Mauna", ctx, true); len(got) != 1 || got[0] != "Mauna Kea" {
		t.Fatalf("Completion with locations = %v, want [Mauna Kea]", got)
	}
}

func TestCompletionDeduplicates(t *testing.T) {
	u, sol, _ := newTestUniverse(t)

	// The same star appears once even when two context entries would
	// both contribute its planets.
	ctx := []model.Selection{model.SelectStar(sol), model.SelectStar(sol)}
	got := u.Completion("Earth", ctx, false)
	if len(got) != 1 {
		t.Fatalf("Completion = %v, want exactly one entry", got)
	}
}

func TestPickSelectsBodyUnderRay(t *testing.T) {
	u, _, earth := newTestUniverse(t)
	jd := timectrl.J2000

	// Stand one million km from Earth and look straight at it.
	earthPos := earth.PositionAt(jd)
	origin := earthPos.AddKm(model.Vec3{X: 1e6})
	dir := earthPos.OffsetFromKm(origin).Normalized()

	sel := u.Pick(origin, dir, jd, 6.0, 1e-4)
	if sel.Type != model.SelectionBody || sel.Body != earth {
		t.Fatalf("Pick = %v, want Earth", sel)
	}
}

func TestPickRespectsTolerance(t *testing.T) {
	u, _, earth := newTestUniverse(t)
	jd := timectrl.J2000

	earthPos := earth.PositionAt(jd)
	origin := earthPos.AddKm(model.Vec3{X: 1e6})
	dir := earthPos.OffsetFromKm(origin).Normalized()

	// Rotate the ray a degree off target; Earth subtends far less than
	// that at this range, so nothing should match.
	off := model.QuaternionFromAxisAngle(model.Vec3{Z: 1}, math.Pi/180).Rotate(dir)
	if sel := u.Pick(origin, off, jd, 6.0, 1e-4); !sel.Empty() {
		t.Fatalf("Pick a degree off target = %v, want empty", sel)
	}
}

func TestPickSkipsFaintStars(t *testing.T) {
	u, sol, _ := newTestUniverse(t)
	jd := timectrl.J2000

	// Look at Sol from a light-year out, approaching perpendicular to
	// the ecliptic plane so the planets sit slightly off the ray.
	origin := model.UniversalCoordFromLy(model.Vec3{Y: 1})
	dir := sol.PositionAt(jd).OffsetFromKm(origin).Normalized()

	if sel := u.Pick(origin, dir, jd, 10.0, 1e-3); sel.Star != sol {
		t.Fatalf("bright pick = %v, want Sol", sel)
	}

	// An impossible magnitude limit hides the star; the pick falls
	// through to the nearest planet inside the tolerance cone.
	sel := u.Pick(origin, dir, jd, -20.0, 1e-3)
	if sel.Type != model.SelectionBody || sel.Body.Name != "Earth" {
		t.Fatalf("faint-limited pick = %v, want Earth", sel)
	}
}
