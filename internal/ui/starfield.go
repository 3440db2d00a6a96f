package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/signalsfoundry/starview-simulator/core"
	"github.com/signalsfoundry/starview-simulator/model"
)

// Terminal cells are roughly twice as tall as wide; the horizontal
// projection scale compensates so circles look circular.
const cellAspect = 0.5

const (
	glyphStarBright = '✶' // appMag < 1.5
	glyphStarMedium = '✸' // appMag 1.5-3.0
	glyphStarDim    = '·'

	glyphPlanet     = '●'
	glyphMoon       = 'o'
	glyphMinor      = '·'
	glyphSpacecraft = '✦'

	colorStarBright = "255"
	colorStarMedium = "250"
	colorStarDim    = "244"
	colorBody       = "#d0c8ff"
	colorSelection  = "229" // bright gold
	colorBackground = "236"
)

// Canvas is a colored character grid shared by every view pane of a
// frame. Panes write into disjoint regions; the whole grid is rendered
// to a string once per frame.
type Canvas struct {
	width  int
	height int
	cells  [][]rune
	colors [][]lipgloss.Color
}

// NewCanvas returns a cleared canvas of the given cell size.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{width: width, height: height}
	c.cells = make([][]rune, height)
	c.colors = make([][]lipgloss.Color, height)
	for y := 0; y < height; y++ {
		c.cells[y] = make([]rune, width)
		c.colors[y] = make([]lipgloss.Color, width)
		for x := 0; x < width; x++ {
			c.cells[y][x] = ' '
			c.colors[y][x] = colorBackground
		}
	}
	return c
}

// Set writes one cell. Out-of-range coordinates are dropped.
func (c *Canvas) Set(x, y int, r rune, color lipgloss.Color) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return
	}
	c.cells[y][x] = r
	c.colors[y][x] = color
}

// Text writes a string starting at (x, y), clipped to the canvas.
func (c *Canvas) Text(x, y int, s string, color lipgloss.Color) {
	for i, r := range []rune(s) {
		c.Set(x+i, y, r, color)
	}
}

// String renders the grid with per-cell foreground colors.
func (c *Canvas) String() string {
	var b strings.Builder
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			style := lipgloss.NewStyle().Foreground(c.colors[y][x])
			b.WriteString(style.Render(string(c.cells[y][x])))
		}
		if y < c.height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// StarfieldRenderer projects the catalog through an observer's camera
// into a rectangular canvas region. One renderer is reused across view
// panes; SetRegion repositions it before each Render call.
type StarfieldRenderer struct {
	canvas *Canvas

	x, y          int
	width, height int

	showLabels bool
}

// NewStarfieldRenderer returns a renderer targeting the full canvas.
func NewStarfieldRenderer(canvas *Canvas) *StarfieldRenderer {
	return &StarfieldRenderer{
		canvas:     canvas,
		width:      canvas.width,
		height:     canvas.height,
		showLabels: true,
	}
}

// SetRegion restricts drawing to a cell rectangle of the canvas.
func (r *StarfieldRenderer) SetRegion(x, y, width, height int) {
	r.x, r.y, r.width, r.height = x, y, width, height
}

// SetShowLabels toggles object name labels.
func (r *StarfieldRenderer) SetShowLabels(show bool) { r.showLabels = show }

// Render draws stars, the nearest system's bodies, and the selection
// marker as seen by the observer.
func (r *StarfieldRenderer) Render(o *core.Observer, u core.Universe, faintestVisible float64, sel model.Selection) {
	if r.width < 2 || r.height < 2 {
		return
	}

	jd := o.Time()
	pos := o.Position()
	orient := o.Orientation()
	fov := o.FOV() / o.Zoom()

	for _, s := range starsOf(u) {
		sp := s.PositionAt(jd)
		distLy := sp.DistanceFromLy(pos)
		appMag := apparentMagnitude(s.AbsMag, distLy)
		if appMag > faintestVisible {
			continue
		}
		x, y, visible := r.project(pos, orient, fov, sp)
		if !visible {
			continue
		}
		glyph, color := starGlyph(appMag)
		if sel.Type == model.SelectionStar && sel.Star == s {
			color = colorSelection
		}
		r.canvas.Set(r.x+x, r.y+y, glyph, color)
	}

	system := u.NearestSolarSystem(pos)
	if system != nil {
		r.renderSystem(system.Planets(), pos, orient, fov, jd, sel)
	}

	r.renderSelectionLabel(pos, orient, fov, jd, sel)
}

func (r *StarfieldRenderer) renderSystem(ps *model.PlanetarySystem, pos model.UniversalCoord, orient model.Quaternion, fov, jd float64, sel model.Selection) {
	if ps == nil {
		return
	}
	for _, b := range ps.Bodies() {
		x, y, visible := r.project(pos, orient, fov, b.PositionAt(jd))
		if visible {
			glyph := bodyGlyph(b.Class)
			color := lipgloss.Color(colorBody)
			if sel.Type == model.SelectionBody && sel.Body == b {
				color = colorSelection
			}
			r.canvas.Set(r.x+x, r.y+y, glyph, color)
		}
		r.renderSystem(b.Satellites(), pos, orient, fov, jd, sel)
	}
}

func (r *StarfieldRenderer) renderSelectionLabel(pos model.UniversalCoord, orient model.Quaternion, fov, jd float64, sel model.Selection) {
	if !r.showLabels || sel.Empty() {
		return
	}
	x, y, visible := r.project(pos, orient, fov, sel.PositionAt(jd))
	if !visible {
		return
	}
	label := "◄ " + sel.Name()
	for i, ch := range []rune(label) {
		lx := x + 2 + i
		if lx >= r.width {
			break
		}
		r.canvas.Set(r.x+lx, r.y+y, ch, colorSelection)
	}
}

// project maps a universal position onto the region. The camera looks
// down -Z with +Y up; the vertical field of view spans the region
// height.
func (r *StarfieldRenderer) project(pos model.UniversalCoord, orient model.Quaternion, fov float64, target model.UniversalCoord) (x, y int, visible bool) {
	dir := target.OffsetFromKm(pos)
	if dir.IsZero() {
		return 0, 0, false
	}
	v := orient.Rotate(dir.Normalized())
	if v.Z >= 0 {
		return 0, 0, false
	}

	tanV := math.Tan(fov / 2)
	tanH := tanV * float64(r.width) * cellAspect / float64(r.height)

	px := v.X / (-v.Z) / tanH
	py := v.Y / (-v.Z) / tanV
	if px < -1 || px > 1 || py < -1 || py > 1 {
		return 0, 0, false
	}

	x = int((px + 1) / 2 * float64(r.width))
	y = int((1 - py) / 2 * float64(r.height))
	if x >= r.width {
		x = r.width - 1
	}
	if y >= r.height {
		y = r.height - 1
	}
	return x, y, true
}

func starGlyph(appMag float64) (rune, lipgloss.Color) {
	switch {
	case appMag < 1.5:
		return glyphStarBright, colorStarBright
	case appMag < 3.0:
		return glyphStarMedium, colorStarMedium
	default:
		return glyphStarDim, colorStarDim
	}
}

func bodyGlyph(class model.BodyClass) rune {
	switch class {
	case model.ClassPlanet:
		return glyphPlanet
	case model.ClassMoon:
		return glyphMoon
	case model.ClassSpacecraft:
		return glyphSpacecraft
	default:
		return glyphMinor
	}
}

// apparentMagnitude converts absolute magnitude to apparent at a
// distance in light-years.
func apparentMagnitude(absMag, distLy float64) float64 {
	if distLy <= 0 {
		return absMag
	}
	const lyPerParsec = 3.26156
	return absMag + 5*math.Log10(distLy/lyPerParsec) - 5
}

// starsOf reaches through the narrow query interface for the star list
// when the concrete catalog is available.
func starsOf(u core.Universe) []*model.Star {
	type starLister interface {
		Stars() []*model.Star
	}
	if sl, ok := u.(starLister); ok {
		return sl.Stars()
	}
	return nil
}
