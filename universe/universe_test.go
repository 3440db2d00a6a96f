package universe

import (
	"testing"

	"github.com/signalsfoundry/starview-simulator/model"
)

// newTestUniverse builds a two-system catalog: Sol with Earth/Moon and
// Mars, plus a bare companion star within nearest-system range.
func newTestUniverse(t *testing.T) (*Universe, *model.Star, *model.Body) {
	t.Helper()

	u := New()
	sol := &model.Star{Name: "Sol", RadiusKm: 696000, AbsMag: 4.83}
	if err := u.AddStar(sol); err != nil {
		t.Fatalf("AddStar(Sol): %v", err)
	}
	far := &model.Star{Name: "Wolf 359", Position: model.Vec3{X: 7.9}, RadiusKm: 110000, AbsMag: 16.6}
	if err := u.AddStar(far); err != nil {
		t.Fatalf("AddStar(Wolf 359): %v", err)
	}
	u.CreateSolarSystem(far)

	sys := u.CreateSolarSystem(sol)
	earth := &model.Body{
		Name:     "Earth",
		Class:    model.ClassPlanet,
		RadiusKm: 6378,
		Orbit:    model.CircularOrbit{RadiusKm: 1.496e8, Period: 365.25},
	}
	sys.Planets().Add(earth)
	moon := &model.Body{
		Name:     "Moon",
		Class:    model.ClassMoon,
		RadiusKm: 1737,
		Orbit:    model.CircularOrbit{RadiusKm: 3.844e5, Period: 27.32},
	}
	model.NewSatelliteSystem(earth).Add(moon)
	model.NewLocation(earth, "Mauna Kea", 19.8, -155.5, 4.2)

	sys.Planets().Add(&model.Body{
		Name:     "Mars",
		Class:    model.ClassPlanet,
		RadiusKm: 3396,
		Orbit:    model.CircularOrbit{RadiusKm: 2.2794e8, Period: 686.98},
	})

	return u, sol, earth
}

func TestAddStarRejectsDuplicateNames(t *testing.T) {
	u := New()
	if err := u.AddStar(&model.Star{Name: "Sol"}); err != nil {
		t.Fatalf("first AddStar: %v", err)
	}
	if err := u.AddStar(&model.Star{Name: "sol"}); err == nil {
		t.Fatal("duplicate name should be rejected regardless of case")
	}
}

func TestCreateSolarSystemIsIdempotent(t *testing.T) {
	u, sol, _ := newTestUniverse(t)
	if got := u.CreateSolarSystem(sol); got != u.SolarSystem(sol) {
		t.Fatal("second CreateSolarSystem should return the existing system")
	}
}

func TestNearestSolarSystemPrefersClosest(t *testing.T) {
	u, sol, _ := newTestUniverse(t)

	near := model.UniversalCoordFromLy(model.Vec3{X: 0.1})
	if sys := u.NearestSolarSystem(near); sys == nil || sys.Star() != sol {
		t.Fatal("position near the origin should resolve to Sol")
	}

	offWolf := model.UniversalCoordFromLy(model.Vec3{X: 7.5})
	if sys := u.NearestSolarSystem(offWolf); sys == nil || sys.Star().Name != "Wolf 359" {
		t.Fatal("position near Wolf 359 should resolve to its system")
	}
}

func TestNearestSolarSystemRangeLimit(t *testing.T) {
	u := New()
	remote := &model.Star{Name: "Deneb", Position: model.Vec3{X: 1500}}
	if err := u.AddStar(remote); err != nil {
		t.Fatalf("AddStar: %v", err)
	}
	u.CreateSolarSystem(remote)

	origin := model.UniversalCoordFromKm(model.Vec3{})
	if sys := u.NearestSolarSystem(origin); sys != nil {
		t.Fatalf("system %s lies beyond the search range, want nil", sys.Star().Name)
	}
}

func TestSolarSystemOf(t *testing.T) {
	u, sol, earth := newTestUniverse(t)
	want := u.SolarSystem(sol)

	if got := u.SolarSystemOf(model.SelectStar(sol)); got != want {
		t.Error("star selection should resolve to its own system")
	}
	if got := u.SolarSystemOf(model.SelectBody(earth)); got != want {
		t.Error("body selection should resolve through its star")
	}
	loc := earth.Locations[0]
	if got := u.SolarSystemOf(model.SelectLocation(loc)); got != want {
		t.Error("location selection should resolve through its parent body")
	}
	if got := u.SolarSystemOf(model.EmptySelection()); got != nil {
		t.Error("empty selection has no system")
	}
}

func TestStarsReturnsSnapshot(t *testing.T) {
	u, _, _ := newTestUniverse(t)

	stars := u.Stars()
	if len(stars) != u.StarCount() {
		t.Fatalf("snapshot has %d stars, count reports %d", len(stars), u.StarCount())
	}
	stars[0] = nil
	if u.Stars()[0] == nil {
		t.Fatal("mutating the snapshot must not affect the catalog")
	}
}
