package ui

import (
	"math"
	"testing"

	"github.com/signalsfoundry/starview-simulator/model"
)

func TestProjectCenterOfView(t *testing.T) {
	canvas := NewCanvas(100, 50)
	r := NewStarfieldRenderer(canvas)

	// Identity orientation looks down -Z from the origin.
	pos := model.UniversalCoordFromKm(model.Vec3{})
	orient := model.IdentityQuaternion()
	target := model.UniversalCoordFromKm(model.Vec3{Z: -1e6})

	x, y, visible := r.project(pos, orient, math.Pi/4, target)
	if !visible {
		t.Fatal("object on the optical axis should be visible")
	}
	if x < 45 || x > 55 {
		t.Errorf("center x = %d, expected near 50", x)
	}
	if y < 20 || y > 30 {
		t.Errorf("center y = %d, expected near 25", y)
	}
}

func TestProjectVisibility(t *testing.T) {
	canvas := NewCanvas(80, 40)
	r := NewStarfieldRenderer(canvas)

	pos := model.UniversalCoordFromKm(model.Vec3{})
	orient := model.IdentityQuaternion()
	fov := math.Pi / 4

	tests := []struct {
		target  model.Vec3
		visible bool
		desc    string
	}{
		{model.Vec3{Z: -1e6}, true, "straight ahead"},
		{model.Vec3{Z: 1e6}, false, "behind the camera"},
		{model.Vec3{Y: 1e6}, false, "directly overhead"},
		{model.Vec3{Y: 1e5, Z: -1e6}, true, "slightly above center"},
		{model.Vec3{Y: 1e6, Z: -1e6}, false, "outside the vertical field"},
	}

	for _, tt := range tests {
		_, _, visible := r.project(pos, orient, fov, model.UniversalCoordFromKm(tt.target))
		if visible != tt.visible {
			t.Errorf("project(%v) visible = %v, want %v (%s)", tt.target, visible, tt.visible, tt.desc)
		}
	}
}

func TestProjectHigherObjectsDrawHigher(t *testing.T) {
	canvas := NewCanvas(80, 40)
	r := NewStarfieldRenderer(canvas)

	pos := model.UniversalCoordFromKm(model.Vec3{})
	orient := model.IdentityQuaternion()
	fov := math.Pi / 2

	_, yHigh, ok1 := r.project(pos, orient, fov, model.UniversalCoordFromKm(model.Vec3{Y: 3e5, Z: -1e6}))
	_, yLow, ok2 := r.project(pos, orient, fov, model.UniversalCoordFromKm(model.Vec3{Y: -3e5, Z: -1e6}))
	if !ok1 || !ok2 {
		t.Fatal("both probe points should be visible")
	}
	if yHigh >= yLow {
		t.Errorf("higher object drew at row %d, lower at row %d; rows grow downward", yHigh, yLow)
	}
}

func TestApparentMagnitude(t *testing.T) {
	// At 10 parsecs the apparent magnitude equals the absolute one.
	const tenParsecsLy = 32.6156
	if got := apparentMagnitude(4.83, tenParsecsLy); math.Abs(got-4.83) > 0.001 {
		t.Errorf("apparentMagnitude at 10 pc = %v, want 4.83", got)
	}

	// Closer objects appear brighter.
	if near, far := apparentMagnitude(4.83, 1), apparentMagnitude(4.83, 100); near >= far {
		t.Errorf("magnitude at 1 ly (%v) should be less than at 100 ly (%v)", near, far)
	}

	// Zero distance falls back to the absolute magnitude.
	if got := apparentMagnitude(4.83, 0); got != 4.83 {
		t.Errorf("apparentMagnitude at 0 ly = %v, want 4.83", got)
	}
}

func TestStarGlyphByMagnitude(t *testing.T) {
	tests := []struct {
		mag   float64
		glyph rune
	}{
		{-1.4, glyphStarBright},
		{1.0, glyphStarBright},
		{2.5, glyphStarMedium},
		{5.0, glyphStarDim},
	}
	for _, tt := range tests {
		if got, _ := starGlyph(tt.mag); got != tt.glyph {
			t.Errorf("starGlyph(%v) = %q, want %q", tt.mag, got, tt.glyph)
		}
	}
}

func TestCanvasClipsOutOfRange(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(-1, 0, 'x', "255")
	c.Set(4, 0, 'x', "255")
	c.Set(0, 2, 'x', "255")
	c.Set(1, 1, '*', "255")

	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			want := ' '
			if x == 1 && y == 1 {
				want = '*'
			}
			if c.cells[y][x] != want {
				t.Errorf("cell (%d,%d) = %q, want %q", x, y, c.cells[y][x], want)
			}
		}
	}
}
