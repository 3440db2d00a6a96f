// Package ui is the terminal front end: a Bubble Tea model that drives
// the simulation clock, maps key presses onto navigation operations,
// and draws every view pane of the split tree as a star field.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/signalsfoundry/starview-simulator/core"
	"github.com/signalsfoundry/starview-simulator/internal/events"
	"github.com/signalsfoundry/starview-simulator/internal/favorites"
	"github.com/signalsfoundry/starview-simulator/internal/logging"
	"github.com/signalsfoundry/starview-simulator/model"
	"github.com/signalsfoundry/starview-simulator/timectrl"
)

const (
	frameInterval = 33 * time.Millisecond

	// Orbit step per arrow key press.
	orbitStepRad = 0.02
	// Dolly step per Home/End press.
	dollyStep = 0.5
	// Target speed multiplier per A/Z press.
	speedFactor = 10.0
)

// TickMsg advances the simulation one frame.
type TickMsg time.Time

// inputPurpose says what the text prompt collects.
type inputPurpose int

const (
	inputNone inputPurpose = iota
	inputTarget
	inputBookmarkName
	inputBookmarkApply
)

// Model is the root Bubble Tea model. It owns the frame loop: every
// TickMsg advances the simulation by the real elapsed time, then View
// redraws each leaf of the split tree.
type Model struct {
	sim       *core.Simulation
	views     *core.ViewSet
	queue     *events.Queue
	bookmarks *favorites.Store
	log       logging.Logger

	width  int
	height int
	ready  bool

	lastTick time.Time

	statusMsg  string
	showLabels bool
	showHelp   bool

	input         inputPurpose
	inputBuf      string
	completions   []string
	completionIdx int
}

// New creates the root model. The queue must be the simulation's
// notifier so flash messages reach the status bar.
func New(sim *core.Simulation, views *core.ViewSet, queue *events.Queue, bookmarks *favorites.Store, log logging.Logger) Model {
	return Model{
		sim:        sim,
		views:      views,
		queue:      queue,
		bookmarks:  bookmarks,
		log:        log,
		showLabels: true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case TickMsg:
		now := time.Time(msg)
		if !m.lastTick.IsZero() {
			m.sim.Update(now.Sub(m.lastTick).Seconds())
		}
		m.lastTick = now
		m.drainEvents()
		return m, tickCmd()

	case tea.KeyMsg:
		if m.input != inputNone {
			return m.updatePrompt(msg), nil
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) drainEvents() {
	for _, e := range m.queue.Drain() {
		if e.Kind == events.FlashMessage {
			m.statusMsg = e.Message
		}
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp

	case "enter":
		m.input = inputTarget
		m.inputBuf = ""
		m.completions = nil

	// Selection.
	case "0":
		m.sim.SelectPlanet(-1)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.sim.SelectPlanet(int(key[0]-'0') - 1)
	case "h":
		m.selectHomeStar()

	// Travel.
	case "g":
		m.sim.GotoSelection(5, model.Vec3{Y: 1})
	case "ctrl+g":
		m.sim.GotoSurface(5)
	case "c":
		m.sim.CenterSelection(1)
	case "esc":
		m.sim.CancelMotion()
		m.sim.SetTrackedObject(model.EmptySelection())

	// Frames.
	case "f":
		m.sim.Follow()
	case "y":
		m.sim.GeosynchronousFollow()
	case ":":
		m.sim.PhaseLock()
	case "\"":
		m.sim.Chase()
	case "t":
		m.toggleTrack()
	case "*":
		m.sim.ReverseObserverOrientation()

	// Camera motion.
	case "up":
		m.orbit(model.Vec3{X: 1}, -orbitStepRad)
	case "down":
		m.orbit(model.Vec3{X: 1}, orbitStepRad)
	case "left":
		m.orbit(model.Vec3{Y: 1}, -orbitStepRad)
	case "right":
		m.orbit(model.Vec3{Y: 1}, orbitStepRad)
	case "home":
		m.sim.ChangeOrbitDistance(-dollyStep)
	case "end":
		m.sim.ChangeOrbitDistance(dollyStep)
	case "a":
		m.changeSpeed(speedFactor)
	case "z":
		m.changeSpeed(1 / speedFactor)
	case "s":
		m.sim.SetTargetSpeed(0)

	// Time.
	case " ":
		m.sim.SetPauseState(!m.sim.PauseState())
	case "l":
		m.scaleTime(10)
	case "k":
		m.scaleTime(0.1)
	case "j":
		m.sim.SetTimeScale(-m.sim.TimeScale())
	case "\\":
		m.sim.SetTimeScale(1)
	case "!":
		m.sim.SetTime(timectrl.TimeToJD(time.Now()))

	// Views.
	case "ctrl+r":
		m.views.SplitActive(core.VerticalSplit, 0.5)
	case "ctrl+u":
		m.views.SplitActive(core.HorizontalSplit, 0.5)
	case "tab":
		m.views.CycleActive()
	case "delete":
		m.views.DeleteActive()
	case "ctrl+d":
		m.views.SingleView()
	case ",":
		m.views.ResizeActiveSplit(-0.05)
	case ".":
		m.views.ResizeActiveSplit(0.05)

	// Display.
	case "n":
		m.showLabels = !m.showLabels
	case "[":
		m.sim.SetFaintestVisible(m.sim.FaintestVisible() - 0.5)
	case "]":
		m.sim.SetFaintestVisible(m.sim.FaintestVisible() + 0.5)

	// Bookmarks.
	case "ctrl+b":
		m.input = inputBookmarkName
		m.inputBuf = defaultBookmarkName(m.sim.Selection())
	case "'":
		m.input = inputBookmarkApply
		m.inputBuf = ""
	}

	return m, nil
}

func (m *Model) selectHomeStar() {
	system := m.sim.NearestSolarSystem()
	if system == nil {
		m.statusMsg = "No nearby star"
		return
	}
	m.sim.SetSelection(model.SelectStar(system.Star()))
}

func (m *Model) toggleTrack() {
	if !m.sim.TrackedObject().Empty() {
		m.sim.SetTrackedObject(model.EmptySelection())
		return
	}
	m.sim.SetTrackedObject(m.sim.Selection())
}

func (m *Model) orbit(axis model.Vec3, angle float64) {
	m.sim.Orbit(model.QuaternionFromAxisAngle(axis, angle))
}

func (m *Model) changeSpeed(factor float64) {
	speed := m.sim.TargetSpeed()
	if speed == 0 {
		speed = 1 // km/s seed
		if factor < 1 {
			return
		}
	} else {
		speed *= factor
	}
	m.sim.SetTargetSpeed(speed)
}

func (m *Model) scaleTime(factor float64) {
	scale := m.sim.TimeScale() * factor
	if scale > timectrl.MaximumTimeRate {
		scale = timectrl.MaximumTimeRate
	}
	if scale != 0 && scale > -timectrl.MinimumTimeRate && scale < timectrl.MinimumTimeRate {
		if scale < 0 {
			scale = -timectrl.MinimumTimeRate
		} else {
			scale = timectrl.MinimumTimeRate
		}
	}
	if scale < -timectrl.MaximumTimeRate {
		scale = -timectrl.MaximumTimeRate
	}
	m.sim.SetTimeScale(scale)
}

// updatePrompt handles key input while the text prompt is open.
func (m Model) updatePrompt(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.input = inputNone
		m.inputBuf = ""
		m.completions = nil

	case "enter":
		m.commitPrompt()

	case "tab":
		if m.input == inputTarget {
			m.cycleCompletion()
		}

	case "backspace":
		if len(m.inputBuf) > 0 {
			runes := []rune(m.inputBuf)
			m.inputBuf = string(runes[:len(runes)-1])
		}
		m.completions = nil

	default:
		if msg.Type == tea.KeyRunes {
			m.inputBuf += string(msg.Runes)
			m.completions = nil
		} else if msg.Type == tea.KeySpace {
			m.inputBuf += " "
			m.completions = nil
		}
	}
	return m
}

func (m *Model) commitPrompt() {
	purpose, text := m.input, strings.TrimSpace(m.inputBuf)
	m.input = inputNone
	m.inputBuf = ""
	m.completions = nil

	if text == "" {
		return
	}

	switch purpose {
	case inputTarget:
		var sel model.Selection
		if strings.Contains(text, "/") {
			sel = m.sim.FindObjectFromPath(text)
		} else {
			sel = m.sim.FindObject(text)
		}
		if sel.Empty() {
			m.statusMsg = fmt.Sprintf("%q not found", text)
			return
		}
		m.sim.SetSelection(sel)

	case inputBookmarkName:
		m.bookmarks.Capture(m.sim, text)
		m.statusMsg = fmt.Sprintf("Bookmarked %q", text)

	case inputBookmarkApply:
		if err := m.bookmarks.Apply(m.sim, text); err != nil {
			m.statusMsg = err.Error()
			m.log.Warn(context.Background(), "bookmark apply failed",
				logging.String("name", text), logging.Any("error", err))
			return
		}
		m.statusMsg = fmt.Sprintf("Restored %q", text)
	}
}

// cycleCompletion replaces the last path segment of the prompt with the
// next match from the catalog.
func (m *Model) cycleCompletion() {
	if m.completions == nil {
		m.completions = m.sim.ObjectCompletion(m.inputBuf, true)
		m.completionIdx = 0
	} else if len(m.completions) > 0 {
		m.completionIdx = (m.completionIdx + 1) % len(m.completions)
	}
	if len(m.completions) == 0 {
		return
	}

	prefix := ""
	if i := strings.LastIndex(m.inputBuf, "/"); i >= 0 {
		prefix = m.inputBuf[:i+1]
	}
	m.inputBuf = prefix + m.completions[m.completionIdx]
}

func defaultBookmarkName(sel model.Selection) string {
	if sel.Empty() {
		return ""
	}
	return sel.Name()
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.width < 20 || m.height < 8 {
		return "Terminal too small"
	}

	canvasHeight := m.height - 3 // header and two status lines
	canvas := NewCanvas(m.width, canvasHeight)
	renderer := NewStarfieldRenderer(canvas)
	renderer.SetShowLabels(m.showLabels)

	leaves := m.views.Leaves()
	for _, leaf := range leaves {
		x, y, w, h := cellRect(leaf, m.width, canvasHeight)
		renderer.SetRegion(x, y, w, h)
		m.sim.RenderObserver(renderer, leaf.Observer)
	}
	if len(leaves) > 1 {
		drawPaneBorder(canvas, m.views.Active(), m.width, canvasHeight)
	}

	if m.showHelp {
		drawHelp(canvas)
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(canvas.String())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

// cellRect maps a leaf's fractional rectangle to canvas cells.
func cellRect(v *core.View, width, height int) (x, y, w, h int) {
	x = int(v.X * float64(width))
	y = int(v.Y * float64(height))
	w = int(v.Width * float64(width))
	h = int(v.Height * float64(height))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return x, y, w, h
}

// drawPaneBorder outlines the active pane so the focus is visible when
// the screen is split.
func drawPaneBorder(canvas *Canvas, active *core.View, width, height int) {
	if active == nil {
		return
	}
	x, y, w, h := cellRect(active, width, height)
	border := lipgloss.Color("135")
	for i := x; i < x+w; i++ {
		canvas.Set(i, y, '─', border)
		canvas.Set(i, y+h-1, '─', border)
	}
	for j := y; j < y+h; j++ {
		canvas.Set(x, j, '│', border)
		canvas.Set(x+w-1, j, '│', border)
	}
	canvas.Set(x, y, '┌', border)
	canvas.Set(x+w-1, y, '┐', border)
	canvas.Set(x, y+h-1, '└', border)
	canvas.Set(x+w-1, y+h-1, '┘', border)
}

func drawHelp(canvas *Canvas) {
	lines := []string{
		" enter: select object   g: goto   c: center   esc: cancel ",
		" f: follow  y: sync orbit  \": chase  :: lock  t: track    ",
		" space: pause  l/k: time x10/÷10  j: reverse  !: now       ",
		" ctrl+r/u: split  tab: cycle  del: close  ctrl+d: single   ",
		" ctrl+b: bookmark  ': restore bookmark  ?: close help      ",
	}
	color := lipgloss.Color("252")
	for i, line := range lines {
		canvas.Text(2, 1+i, line, color)
	}
}

func (m Model) renderHeader() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	title := titleStyle.Render("STARVIEW")
	when := timectrl.JDToTime(m.sim.Time()).UTC().Format("2006-01-02 15:04:05 UTC")

	rate := fmt.Sprintf("%gx", m.sim.TimeScale())
	if m.sim.PauseState() {
		rate = "paused"
	}

	return fmt.Sprintf("  %s  %s  %s  %s",
		title,
		dimStyle.Render(when),
		dimStyle.Render(rate),
		dimStyle.Render(fmt.Sprintf("mag %.1f", m.sim.FaintestVisible())))
}

func (m Model) renderStatus() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229"))

	if m.input != inputNone {
		var label string
		switch m.input {
		case inputTarget:
			label = "Target"
		case inputBookmarkName:
			label = "Bookmark"
		case inputBookmarkApply:
			label = "Restore"
		}
		return "  " + accentStyle.Render(fmt.Sprintf("%s: %s▌", label, m.inputBuf)) +
			"\n  " + dimStyle.Render("enter: confirm | tab: complete | esc: cancel")
	}

	line1 := m.selectionLine(accentStyle, dimStyle)

	hint := "enter: select | g: goto | tab: view | ?: help | q: quit"
	line2 := "  " + dimStyle.Render(hint)
	if m.statusMsg != "" {
		line2 = "  " + accentStyle.Render(m.statusMsg) + "  " + dimStyle.Render("|")
		line2 += "  " + dimStyle.Render(hint)
	}

	return line1 + "\n" + line2
}

func (m Model) selectionLine(accent, dim lipgloss.Style) string {
	sel := m.sim.Selection()
	if sel.Empty() {
		return "  " + dim.Render("No selection")
	}

	o := m.sim.ActiveObserver()
	dist := sel.PositionAt(o.Time()).DistanceFromKm(o.Position())

	parts := []string{
		accent.Render(">>> " + sel.Name()),
		dim.Render(formatDistance(dist)),
		dim.Render("frame: " + m.sim.Frame().System.String()),
	}
	if !m.sim.TrackedObject().Empty() {
		parts = append(parts, dim.Render("tracking "+m.sim.TrackedObject().Name()))
	}
	if speed := m.sim.TargetSpeed(); speed != 0 {
		parts = append(parts, dim.Render(fmt.Sprintf("%.3g km/s", speed)))
	}
	return "  " + strings.Join(parts, "  ")
}

// formatDistance picks the unit a navigator would read: km close in,
// AU inside a system, light-years between stars.
func formatDistance(km float64) string {
	const (
		kmPerAU = 1.495978707e8
		auPerLy = 63241.1
	)
	switch {
	case km < 1e7:
		return fmt.Sprintf("%.0f km", km)
	case km < kmPerAU*auPerLy/10:
		return fmt.Sprintf("%.3f AU", km/kmPerAU)
	default:
		return fmt.Sprintf("%.3f ly", km/model.KmPerLy)
	}
}
