// Package script runs line-oriented command scripts against a
// simulation. Commands execute cooperatively on the tick goroutine: each
// Tick drains commands until the script blocks on a wait or ends, so a
// script never races the interactive controls.
package script

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/signalsfoundry/starview-simulator/core"
	"github.com/signalsfoundry/starview-simulator/internal/logging"
	"github.com/signalsfoundry/starview-simulator/internal/observability"
	"github.com/signalsfoundry/starview-simulator/model"
	"github.com/signalsfoundry/starview-simulator/timectrl"
)

// command is one parsed script line.
type command struct {
	verb string
	args []string
	line int
}

// Runner executes a parsed script against a simulation, one cooperative
// step per tick.
type Runner struct {
	sim   *core.Simulation
	views *core.ViewSet
	log   logging.Logger

	metrics *observability.ScriptCollector

	commands  []command
	pc        int
	waitUntil float64 // sim real-time deadline, seconds
}

// NewRunner creates a runner bound to a simulation and its view set. The
// view set and metrics collector may be nil; view commands and metrics
// then become no-ops.
func NewRunner(sim *core.Simulation, views *core.ViewSet, log logging.Logger) *Runner {
	if log == nil {
		log = logging.Noop()
	}
	return &Runner{sim: sim, views: views, log: log}
}

// SetMetrics attaches a script metrics collector; nil detaches.
func (r *Runner) SetMetrics(m *observability.ScriptCollector) { r.metrics = m }

// Load parses a script. Blank lines and lines starting with # are
// skipped. Arity and numeric arguments are checked here so a broken
// script fails before it starts mutating the simulation.
func (r *Runner) Load(src io.Reader) error {
	var cmds []command
	scanner := bufio.NewScanner(src)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		cmd := command{verb: strings.ToLower(fields[0]), args: fields[1:], line: lineNo}
		if err := checkCommand(cmd); err != nil {
			return fmt.Errorf("Load: line %d: %w", lineNo, err)
		}
		cmds = append(cmds, cmd)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("Load: read failed: %w", err)
	}
	r.commands = cmds
	r.pc = 0
	r.waitUntil = 0
	if r.metrics != nil {
		r.metrics.SetActiveScripts(1)
	}
	return nil
}

// Done reports whether the script has run to completion.
func (r *Runner) Done() bool { return r.pc >= len(r.commands) }

// Tick runs script commands until the script blocks or finishes. Call it
// once per simulation tick, after Simulation.Update. A session-scoped
// logger on ctx takes precedence over the runner's own.
func (r *Runner) Tick(ctx context.Context) {
	if r.Done() {
		return
	}
	log := r.log
	if l := logging.LoggerFromContext(ctx); l != nil {
		log = l
	}
	for !r.Done() {
		if r.sim.RealTime() < r.waitUntil {
			return
		}
		cmd := r.commands[r.pc]
		r.pc++

		start := time.Now()
		err := r.execute(cmd)
		if r.metrics != nil {
			r.metrics.ObserveCommand(cmd.verb, time.Since(start))
		}
		if err != nil {
			if r.metrics != nil {
				r.metrics.IncCommandErrors()
			}
			log.Warn(ctx, "script command failed",
				logging.Int("line", cmd.line),
				logging.String("command", cmd.verb),
				logging.String("error", err.Error()),
			)
			continue
		}
		log.Debug(ctx, "script command",
			logging.Int("line", cmd.line),
			logging.String("command", cmd.verb),
		)
	}
	if r.metrics != nil {
		r.metrics.SetActiveScripts(0)
	}
}

// checkCommand validates verb, arity, and numeric arguments.
func checkCommand(cmd command) error {
	argc, ok := arities[cmd.verb]
	if !ok {
		return fmt.Errorf("unknown command %q", cmd.verb)
	}
	if len(cmd.args) < argc.min || (argc.max >= 0 && len(cmd.args) > argc.max) {
		return fmt.Errorf("%s takes %s arguments, got %d", cmd.verb, argc, len(cmd.args))
	}
	for _, i := range argc.numeric {
		if i < len(cmd.args) {
			if _, err := strconv.ParseFloat(cmd.args[i], 64); err != nil {
				return fmt.Errorf("%s: argument %d is not a number: %q", cmd.verb, i+1, cmd.args[i])
			}
		}
	}
	return nil
}

type arity struct {
	min, max int // max < 0 means unbounded
	numeric  []int
}

func (a arity) String() string {
	if a.min == a.max {
		return strconv.Itoa(a.min)
	}
	if a.max < 0 {
		return fmt.Sprintf("at least %d", a.min)
	}
	return fmt.Sprintf("%d to %d", a.min, a.max)
}

var arities = map[string]arity{
	"select":      {min: 1, max: -1},
	"goto":        {min: 0, max: 1, numeric: []int{0}},
	"gotodist":    {min: 2, max: 2, numeric: []int{0, 1}},
	"gotolonglat": {min: 4, max: 4, numeric: []int{0, 1, 2, 3}},
	"gotosurface": {min: 0, max: 1, numeric: []int{0}},
	"center":      {min: 0, max: 1, numeric: []int{0}},
	"follow":      {min: 0, max: 0},
	"synchronous": {min: 0, max: 0},
	"lock":        {min: 0, max: 0},
	"chase":       {min: 0, max: 0},
	"track":       {min: 0, max: 0},
	"cleartrack":  {min: 0, max: 0},
	"cancel":      {min: 0, max: 0},
	"settime":     {min: 1, max: 1},
	"timerate":    {min: 1, max: 1, numeric: []int{0}},
	"pause":       {min: 0, max: 0},
	"resume":      {min: 0, max: 0},
	"synctime":    {min: 1, max: 1},
	"wait":        {min: 1, max: 1, numeric: []int{0}},
	"speed":       {min: 1, max: 1, numeric: []int{0}},
	"orbit":       {min: 4, max: 4, numeric: []int{0, 1, 2, 3}},
	"split":       {min: 1, max: 1},
	"singleview":  {min: 0, max: 0},
	"deleteview":  {min: 0, max: 0},
	"cycleview":   {min: 0, max: 0},
}

func (r *Runner) execute(cmd command) error {
	num := func(i int) float64 {
		v, _ := strconv.ParseFloat(cmd.args[i], 64)
		return v
	}

	switch cmd.verb {
	case "select":
		name := strings.Join(cmd.args, " ")
		var sel model.Selection
		if strings.Contains(name, "/") {
			sel = r.sim.FindObjectFromPath(name)
		} else {
			sel = r.sim.FindObject(name)
		}
		if sel.Empty() {
			return fmt.Errorf("object %q not found", name)
		}
		r.sim.SetSelection(sel)

	case "goto":
		duration := 5.0
		if len(cmd.args) == 1 {
			duration = num(0)
		}
		if r.sim.Selection().Empty() {
			return fmt.Errorf("goto with nothing selected")
		}
		r.sim.GotoSelection(duration, model.Vec3{Y: 1})

	case "gotodist":
		if r.sim.Selection().Empty() {
			return fmt.Errorf("gotodist with nothing selected")
		}
		r.sim.GotoSelectionDistance(num(0), num(1), model.Vec3{Y: 1})

	case "gotolonglat":
		if r.sim.Selection().Empty() {
			return fmt.Errorf("gotolonglat with nothing selected")
		}
		r.sim.GotoSelectionLongLat(num(0), num(1), num(2), num(3), model.Vec3{Y: 1})

	case "gotosurface":
		duration := 5.0
		if len(cmd.args) == 1 {
			duration = num(0)
		}
		if r.sim.Selection().Empty() {
			return fmt.Errorf("gotosurface with nothing selected")
		}
		r.sim.GotoSurface(duration)

	case "center":
		duration := 1.0
		if len(cmd.args) == 1 {
			duration = num(0)
		}
		r.sim.CenterSelection(duration)

	case "follow":
		r.sim.Follow()
	case "synchronous":
		r.sim.GeosynchronousFollow()
	case "lock":
		r.sim.PhaseLock()
	case "chase":
		r.sim.Chase()
	case "track":
		r.sim.SetTrackedObject(r.sim.Selection())
	case "cleartrack":
		r.sim.SetTrackedObject(model.EmptySelection())
	case "cancel":
		r.sim.CancelMotion()

	case "settime":
		if strings.EqualFold(cmd.args[0], "now") {
			r.sim.SetTime(timectrl.TimeToJD(time.Now()))
			return nil
		}
		jd, err := strconv.ParseFloat(cmd.args[0], 64)
		if err != nil {
			return fmt.Errorf("settime: bad Julian date %q", cmd.args[0])
		}
		r.sim.SetTime(jd)

	case "timerate":
		r.sim.SetTimeScale(clampTimeRate(num(0)))

	case "pause":
		r.sim.SetPauseState(true)
	case "resume":
		r.sim.SetPauseState(false)

	case "synctime":
		switch strings.ToLower(cmd.args[0]) {
		case "on", "true":
			r.sim.SetSyncTime(true)
		case "off", "false":
			r.sim.SetSyncTime(false)
		default:
			return fmt.Errorf("synctime: want on or off, got %q", cmd.args[0])
		}

	case "wait":
		r.waitUntil = r.sim.RealTime() + num(0)

	case "speed":
		r.sim.SetTargetSpeed(num(0))

	case "orbit":
		axis := model.Vec3{X: num(0), Y: num(1), Z: num(2)}
		if axis.IsZero() {
			return fmt.Errorf("orbit: zero axis")
		}
		angle := num(3) * math.Pi / 180
		r.sim.Orbit(model.QuaternionFromAxisAngle(axis.Normalized(), angle))

	case "split":
		if r.views == nil {
			return fmt.Errorf("split: no view set attached")
		}
		switch strings.ToLower(cmd.args[0]) {
		case "h", "horizontal":
			r.views.SplitActive(core.HorizontalSplit, 0.5)
		case "v", "vertical":
			r.views.SplitActive(core.VerticalSplit, 0.5)
		default:
			return fmt.Errorf("split: want h or v, got %q", cmd.args[0])
		}
	case "singleview":
		if r.views == nil {
			return fmt.Errorf("singleview: no view set attached")
		}
		r.views.SingleView()
	case "deleteview":
		if r.views == nil {
			return fmt.Errorf("deleteview: no view set attached")
		}
		r.views.DeleteActive()
	case "cycleview":
		if r.views == nil {
			return fmt.Errorf("cycleview: no view set attached")
		}
		r.views.CycleActive()

	default:
		return fmt.Errorf("unknown command %q", cmd.verb)
	}
	return nil
}

// clampTimeRate keeps the rate inside the legal range, preserving sign.
func clampTimeRate(rate float64) float64 {
	mag := rate
	neg := false
	if mag < 0 {
		mag, neg = -mag, true
	}
	if mag != 0 && mag < timectrl.MinimumTimeRate {
		mag = timectrl.MinimumTimeRate
	}
	if mag > timectrl.MaximumTimeRate {
		mag = timectrl.MaximumTimeRate
	}
	if neg {
		return -mag
	}
	return mag
}
