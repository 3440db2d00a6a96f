// Package favorites saves and restores named observer bookmarks: the
// selection, reference frame, and frame-relative pose, serialised as
// JSON.
package favorites

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/signalsfoundry/starview-simulator/core"
	"github.com/signalsfoundry/starview-simulator/model"
)

// Favorite is one bookmark. The pose is stored relative to the frame, so
// a bookmark above a planet restores to the same spot over the ground
// regardless of where the planet has orbited in the meantime.
type Favorite struct {
	Name        string     `json:"name"`
	Selection   string     `json:"selection,omitempty"` // slash path, e.g. Sol/Earth
	FrameSystem string     `json:"frame"`
	FrameTarget string     `json:"frameTarget,omitempty"` // phase lock only
	Position    model.Vec3 `json:"position"`              // frame-relative, km
	Orientation [4]float64 `json:"orientation"`           // w, x, y, z
	JD          float64    `json:"jd"`
	FOV         float64    `json:"fov"`
}

// Store is an ordered collection of bookmarks.
type Store struct {
	favorites []Favorite
}

// NewStore returns an empty bookmark store.
func NewStore() *Store { return &Store{} }

// All returns the bookmarks in insertion order. Callers must not mutate
// the slice.
func (s *Store) All() []Favorite { return s.favorites }

// Find returns the bookmark with the given name (case-insensitive).
func (s *Store) Find(name string) (Favorite, bool) {
	for _, f := range s.favorites {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return Favorite{}, false
}

// Remove deletes the named bookmark, reporting whether it existed.
func (s *Store) Remove(name string) bool {
	for i, f := range s.favorites {
		if strings.EqualFold(f.Name, name) {
			s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
			return true
		}
	}
	return false
}

// Capture records the simulation's current selection, frame, and active
// observer pose under the given name, replacing any bookmark with that
// name.
func (s *Store) Capture(sim *core.Simulation, name string) Favorite {
	o := sim.ActiveObserver()
	frame := o.Frame()
	jd := o.Time()

	rel := frame.PositionFromUniversal(o.Position(), jd).ToKm()
	orient := frame.OrientationFromUniversal(o.Orientation(), jd)

	fav := Favorite{
		Name:        name,
		Selection:   PathOf(sim.Selection()),
		FrameSystem: frame.System.String(),
		FrameTarget: PathOf(frame.Target),
		Position:    rel,
		Orientation: [4]float64{orient.W, orient.X, orient.Y, orient.Z},
		JD:          jd,
		FOV:         o.FOV(),
	}

	s.Remove(name)
	s.favorites = append(s.favorites, fav)
	return fav
}

// Apply restores the named bookmark onto the simulation's active
// observer.
func (s *Store) Apply(sim *core.Simulation, name string) error {
	fav, ok := s.Find(name)
	if !ok {
		return fmt.Errorf("Apply: no favorite named %q", name)
	}

	sel := model.EmptySelection()
	if fav.Selection != "" {
		sel = sim.FindObjectFromPath(fav.Selection)
		if sel.Empty() {
			return fmt.Errorf("Apply: favorite %q references unknown object %q", name, fav.Selection)
		}
	}
	sim.SetSelection(sel)
	sim.SetTime(fav.JD)

	system, err := frameSystem(fav.FrameSystem)
	if err != nil {
		return fmt.Errorf("Apply: favorite %q: %w", name, err)
	}
	target := model.EmptySelection()
	if fav.FrameTarget != "" {
		target = sim.FindObjectFromPath(fav.FrameTarget)
	}
	sim.SetFrameSystem(system, sel, target)

	// Re-express the stored frame-relative pose in universal space at
	// the restored time, then push it through the standard setters.
	o := sim.ActiveObserver()
	frame := o.Frame()
	q := model.Quaternion{W: fav.Orientation[0], X: fav.Orientation[1], Y: fav.Orientation[2], Z: fav.Orientation[3]}
	sim.SetObserverPosition(frame.PositionToUniversal(model.UniversalCoordFromKm(fav.Position), fav.JD))
	sim.SetObserverOrientation(frame.OrientationToUniversal(q, fav.JD))
	if fav.FOV > 0 {
		o.SetFOV(fav.FOV)
	}
	return nil
}

// Save writes the store as indented JSON.
func (s *Store) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.favorites); err != nil {
		return fmt.Errorf("Save: encode failed: %w", err)
	}
	return nil
}

// Load replaces the store's contents from JSON.
func (s *Store) Load(r io.Reader) error {
	var favs []Favorite
	if err := json.NewDecoder(r).Decode(&favs); err != nil {
		return fmt.Errorf("Load: decode failed: %w", err)
	}
	s.favorites = favs
	return nil
}

// PathOf renders a selection as a slash path resolvable by the catalog,
// or "" for the empty selection.
func PathOf(sel model.Selection) string {
	switch sel.Type {
	case model.SelectionStar:
		return sel.Star.Name
	case model.SelectionDeepSky:
		return sel.DeepSky.Name
	case model.SelectionBody:
		return bodyPath(sel.Body)
	case model.SelectionLocation:
		return bodyPath(sel.Location.ParentBody()) + "/" + sel.Location.Name
	default:
		return ""
	}
}

func bodyPath(b *model.Body) string {
	segments := []string{b.Name}
	cur := b
	for {
		sys := cur.System()
		if sys == nil {
			break
		}
		if star := sys.Star(); star != nil {
			segments = append(segments, star.Name)
			break
		}
		primary := sys.Primary()
		if primary == nil {
			break
		}
		segments = append(segments, primary.Name)
		cur = primary
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, "/")
}

func frameSystem(name string) (core.CoordinateSystem, error) {
	for _, system := range []core.CoordinateSystem{
		core.Universal, core.Ecliptical, core.BodyFixed, core.PhaseLock, core.Chase, core.ObserverLocal,
	} {
		if strings.EqualFold(system.String(), name) {
			return system, nil
		}
	}
	return core.Universal, fmt.Errorf("unknown frame system %q", name)
}
