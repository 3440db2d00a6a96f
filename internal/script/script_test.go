package script

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/signalsfoundry/starview-simulator/core"
	"github.com/signalsfoundry/starview-simulator/internal/logging"
	"github.com/signalsfoundry/starview-simulator/internal/observability"
	"github.com/signalsfoundry/starview-simulator/model"
	"github.com/signalsfoundry/starview-simulator/timectrl"
	"github.com/signalsfoundry/starview-simulator/universe"
)

func newTestSim(t *testing.T) *core.Simulation {
	t.Helper()

	u := universe.New()
	sol := &model.Star{Name: "Sol", RadiusKm: 696000, AbsMag: 4.83}
	if err := u.AddStar(sol); err != nil {
		t.Fatalf("AddStar: %v", err)
	}
	sys := u.CreateSolarSystem(sol)
	sys.Planets().Add(&model.Body{
		Name:     "Earth",
		Class:    model.ClassPlanet,
		RadiusKm: 6378,
		Orbit:    model.CircularOrbit{RadiusKm: 1.496e8, Period: 365.25},
	})
	return core.NewSimulation(u)
}

func mustLoad(t *testing.T, r *Runner, src string) {
	t.Helper()
	if err := r.Load(strings.NewReader(src)); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestRunnerExecutesUntilWait(t *testing.T) {
	sim := newTestSim(t)
	r := NewRunner(sim, nil, logging.Noop())
	mustLoad(t, r, `
# simple tour
select Sol/Earth
goto 5
wait 2
timerate 100
`)

	ctx := context.Background()
	r.Tick(ctx)
	if sim.Selection().Empty() || sim.Selection().Name() != "Earth" {
		t.Fatalf("selection after first tick = %q, want Earth", sim.Selection().Name())
	}
	if sim.ObserverMode() != core.Travelling {
		t.Fatal("goto did not start travelling")
	}
	if sim.TimeScale() != 1 {
		t.Fatalf("timerate ran before the wait elapsed, scale = %v", sim.TimeScale())
	}

	// One second of wall clock is not enough; the script stays blocked.
	sim.Update(1)
	r.Tick(ctx)
	if sim.TimeScale() != 1 {
		t.Fatalf("timerate ran too early, scale = %v", sim.TimeScale())
	}

	sim.Update(1.5)
	r.Tick(ctx)
	if sim.TimeScale() != 100 {
		t.Fatalf("timerate after wait = %v, want 100", sim.TimeScale())
	}
	if !r.Done() {
		t.Fatal("script should have finished")
	}
}

func TestRunnerClampsTimeRate(t *testing.T) {
	sim := newTestSim(t)
	r := NewRunner(sim, nil, logging.Noop())
	mustLoad(t, r, "timerate 1e20")

	r.Tick(context.Background())
	if got := sim.TimeScale(); got != timectrl.MaximumTimeRate {
		t.Fatalf("clamped rate = %v, want %v", got, timectrl.MaximumTimeRate)
	}
}

func TestRunnerPauseAndResume(t *testing.T) {
	sim := newTestSim(t)
	r := NewRunner(sim, nil, logging.Noop())
	mustLoad(t, r, `
timerate 50
pause
wait 1
resume
`)

	ctx := context.Background()
	r.Tick(ctx)
	if !sim.PauseState() {
		t.Fatal("script did not pause")
	}
	if got := sim.TimeScale(); got != 50 {
		t.Fatalf("stored rate while paused = %v, want 50", got)
	}

	sim.Update(1.5)
	r.Tick(ctx)
	if sim.PauseState() {
		t.Fatal("script did not resume")
	}
	if got := sim.TimeScale(); got != 50 {
		t.Fatalf("rate after resume = %v, want 50", got)
	}
}

func TestRunnerViewCommands(t *testing.T) {
	sim := newTestSim(t)
	views := core.NewViewSet(sim)
	r := NewRunner(sim, views, logging.Noop())
	mustLoad(t, r, `
split v
split h
wait 1
singleview
`)

	ctx := context.Background()
	r.Tick(ctx)
	if got := len(views.Leaves()); got != 3 {
		t.Fatalf("leaves after splits = %d, want 3", got)
	}

	sim.Update(2)
	r.Tick(ctx)
	if got := len(views.Leaves()); got != 1 {
		t.Fatalf("leaves after singleview = %d, want 1", got)
	}
}

func TestRunnerFailedLookupContinues(t *testing.T) {
	sim := newTestSim(t)
	r := NewRunner(sim, nil, logging.Noop())
	mustLoad(t, r, `
select Nonexistent
timerate 7
`)

	r.Tick(context.Background())
	if got := sim.TimeScale(); got != 7 {
		t.Fatalf("script aborted on bad lookup, scale = %v, want 7", got)
	}
}

func TestRunnerActiveGaugeLifecycle(t *testing.T) {
	sim := newTestSim(t)
	r := NewRunner(sim, nil, logging.Noop())

	reg := prometheus.NewRegistry()
	sc, err := observability.NewScriptCollector(reg)
	if err != nil {
		t.Fatalf("NewScriptCollector: %v", err)
	}
	r.SetMetrics(sc)

	if got := testutil.ToFloat64(sc.ScriptsActive); got != 0 {
		t.Fatalf("active gauge before load = %v, want 0", got)
	}

	// Load alone marks the script active, exactly once.
	mustLoad(t, r, "timerate 10")
	if got := testutil.ToFloat64(sc.ScriptsActive); got != 1 {
		t.Fatalf("active gauge after load = %v, want 1", got)
	}

	r.Tick(context.Background())
	if !r.Done() {
		t.Fatal("script should have finished")
	}
	if got := testutil.ToFloat64(sc.ScriptsActive); got != 0 {
		t.Fatalf("active gauge after completion = %v, want 0", got)
	}
}

func TestLoadRejectsMalformedScripts(t *testing.T) {
	sim := newTestSim(t)
	r := NewRunner(sim, nil, logging.Noop())

	// Unknown verb, non-numeric argument, missing argument, extra
	// argument.
	cases := []string{"warp 9", "timerate fast", "gotodist 5", "wait 1 2"}
	for _, src := range cases {
		if err := r.Load(strings.NewReader(src)); err == nil {
			t.Fatalf("Load(%q) accepted a malformed script", src)
		}
	}
}

func TestRunnerSetTime(t *testing.T) {
	sim := newTestSim(t)
	r := NewRunner(sim, nil, logging.Noop())
	mustLoad(t, r, "settime 2460000.5")

	r.Tick(context.Background())
	if got := sim.Time(); got != 2460000.5 {
		t.Fatalf("time = %v, want 2460000.5", got)
	}
}
