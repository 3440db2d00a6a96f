package core

import "math"

// ViewKind distinguishes leaf viewports from split nodes.
type ViewKind int

const (
	// ViewWindow is a leaf bound to one observer.
	ViewWindow ViewKind = iota
	// HorizontalSplit stacks child1 above child2.
	HorizontalSplit
	// VerticalSplit puts child1 left of child2.
	VerticalSplit
)

// MinViewSize is the smallest normalized width/height a leaf may have;
// splits and resizes that would go below it are rejected.
const MinViewSize = 0.2

// View is a node in the binary-split view tree. A leaf covers a
// normalized screen rectangle and references one observer (owned by the
// Simulation, not the view); an internal node covers the union of its
// two children. Leaf rectangles under one root always tile that root's
// rectangle exactly.
type View struct {
	Kind                ViewKind
	X, Y, Width, Height float64

	Observer *Observer // leaves only

	parent, child1, child2 *View
}

// NewRootView creates a full-screen leaf for the given observer.
func NewRootView(o *Observer) *View {
	return &View{Kind: ViewWindow, Width: 1, Height: 1, Observer: o}
}

// Parent returns the enclosing split node, or nil at the root.
func (v *View) Parent() *View { return v.parent }

// Child1 returns the first child of a split node.
func (v *View) Child1() *View { return v.child1 }

// Child2 returns the second child of a split node.
func (v *View) Child2() *View { return v.child2 }

// IsRoot reports whether the view has no parent.
func (v *View) IsRoot() bool { return v.parent == nil }

// IsSplittable reports whether a leaf has room for another split of the
// given kind.
func (v *View) IsSplittable(kind ViewKind) bool {
	if v.Kind != ViewWindow {
		return false
	}
	switch kind {
	case HorizontalSplit:
		return v.Height >= MinViewSize*2
	case VerticalSplit:
		return v.Width >= MinViewSize*2
	default:
		return false
	}
}

// Split replaces the leaf's content with a split node at splitPos (the
// fraction given to the first child) and hangs the original observer
// and the new one under it. It returns the two new leaves: the first
// keeps the original observer.
func (v *View) Split(kind ViewKind, newObserver *Observer, splitPos float64) (kept, added *View) {
	if splitPos <= 0 || splitPos >= 1 {
		splitPos = 0.5
	}

	// Clamp so neither half lands under MinViewSize. On a leaf too small
	// to split at all, fall back to an even split.
	size := v.Height
	if kind == VerticalSplit {
		size = v.Width
	}
	if minFrac := MinViewSize / size; minFrac <= 0.5 {
		splitPos = math.Min(math.Max(splitPos, minFrac), 1-minFrac)
	} else {
		splitPos = 0.5
	}

	kept = &View{Kind: ViewWindow, Observer: v.Observer, parent: v}
	added = &View{Kind: ViewWindow, Observer: newObserver, parent: v}

	switch kind {
	case HorizontalSplit:
		kept.X, kept.Width = v.X, v.Width
		kept.Y, kept.Height = v.Y, v.Height*splitPos
		added.X, added.Width = v.X, v.Width
		added.Y, added.Height = v.Y+v.Height*splitPos, v.Height*(1-splitPos)
	case VerticalSplit:
		kept.Y, kept.Height = v.Y, v.Height
		kept.X, kept.Width = v.X, v.Width*splitPos
		added.Y, added.Height = v.Y, v.Height
		added.X, added.Width = v.X+v.Width*splitPos, v.Width*(1-splitPos)
	}

	v.Kind = kind
	v.Observer = nil
	v.child1 = kept
	v.child2 = added
	return kept, added
}

// FirstLeaf descends child1 links to the first leaf under v.
func (v *View) FirstLeaf() *View {
	cur := v
	for cur.Kind != ViewWindow {
		cur = cur.child1
	}
	return cur
}

// Leaves appends all leaves under v, in-order.
func (v *View) Leaves(out []*View) []*View {
	if v.Kind == ViewWindow {
		return append(out, v)
	}
	out = v.child1.Leaves(out)
	return v.child2.Leaves(out)
}

// Sibling returns the other child of v's parent, or nil for the root.
func (v *View) Sibling() *View {
	if v.parent == nil {
		return nil
	}
	if v.parent.child1 == v {
		return v.parent.child2
	}
	return v.parent.child1
}

// resizeDelta grows or shrinks the subtree by delta along the parent's
// split axis, scaling every descendant rectangle proportionally. With
// check set nothing is mutated; it only reports whether every affected
// leaf stays above the minimum size. Callers run the check pass on both
// children before applying, so a rejected resize leaves the tree
// untouched.
func (v *View) resizeDelta(delta float64, horizontal bool, check bool) bool {
	var scale float64
	if horizontal {
		if v.Height+delta < 0 {
			return false
		}
		scale = (v.Height + delta) / v.Height
	} else {
		if v.Width+delta < 0 {
			return false
		}
		scale = (v.Width + delta) / v.Width
	}

	return v.scaleAlong(horizontal, scale, check)
}

func (v *View) scaleAlong(horizontal bool, scale float64, check bool) bool {
	newW, newH := v.Width, v.Height
	if horizontal {
		newH = v.Height * scale
	} else {
		newW = v.Width * scale
	}
	if v.Kind == ViewWindow && (newW < MinViewSize || newH < MinViewSize) {
		return false
	}
	if !check {
		if horizontal {
			v.Height = newH
		} else {
			v.Width = newW
		}
	}
	if v.Kind != ViewWindow {
		if !v.child1.scaleAlong(horizontal, scale, check) {
			return false
		}
		if !v.child2.scaleAlong(horizontal, scale, check) {
			return false
		}
	}
	return true
}

// layout recomputes the absolute rectangles of v's descendants from its
// own rectangle, preserving each split's current proportions.
func (v *View) layout() {
	if v.Kind == ViewWindow {
		return
	}
	c1, c2 := v.child1, v.child2
	switch v.Kind {
	case HorizontalSplit:
		total := c1.Height + c2.Height
		ratio := 0.5
		if total > 0 {
			ratio = c1.Height / total
		}
		c1.X, c1.Width = v.X, v.Width
		c1.Y, c1.Height = v.Y, v.Height*ratio
		c2.X, c2.Width = v.X, v.Width
		c2.Y, c2.Height = v.Y+v.Height*ratio, v.Height*(1-ratio)
	case VerticalSplit:
		total := c1.Width + c2.Width
		ratio := 0.5
		if total > 0 {
			ratio = c1.Width / total
		}
		c1.Y, c1.Height = v.Y, v.Height
		c1.X, c1.Width = v.X, v.Width*ratio
		c2.Y, c2.Height = v.Y, v.Height
		c2.X, c2.Width = v.X+v.Width*ratio, v.Width*(1-ratio)
	}
	c1.layout()
	c2.layout()
}

// ViewSet manages the tree, the active leaf, and observer lifecycle
// against its simulation. It mirrors the silent no-op error philosophy:
// invalid operations leave the tree untouched and at most flash an
// advisory message through the simulation's notifier.
type ViewSet struct {
	sim    *Simulation
	root   *View
	active *View
}

// NewViewSet creates a single full-screen view bound to the simulation's
// active observer.
func NewViewSet(sim *Simulation) *ViewSet {
	root := NewRootView(sim.ActiveObserver())
	return &ViewSet{sim: sim, root: root, active: root}
}

// Root returns the tree root.
func (vs *ViewSet) Root() *View { return vs.root }

// Active returns the active leaf.
func (vs *ViewSet) Active() *View { return vs.active }

// Leaves returns all leaves in layout order.
func (vs *ViewSet) Leaves() []*View { return vs.root.Leaves(nil) }

// SetActive makes v the active leaf and its observer the simulation's
// active observer. Non-leaves and foreign views are ignored.
func (vs *ViewSet) SetActive(v *View) {
	if v == nil || v.Kind != ViewWindow {
		return
	}
	for _, leaf := range vs.Leaves() {
		if leaf == v {
			vs.active = v
			vs.sim.SetActiveObserver(v.Observer)
			return
		}
	}
}

// CycleActive advances the active view to the next leaf in layout
// order.
func (vs *ViewSet) CycleActive() {
	leaves := vs.Leaves()
	for i, leaf := range leaves {
		if leaf == vs.active {
			vs.SetActive(leaves[(i+1)%len(leaves)])
			return
		}
	}
}

// SplitActive splits the active view, cloning the active observer's
// full state into the new leaf. Views too small to split are left
// alone, with an advisory flash.
func (vs *ViewSet) SplitActive(kind ViewKind, splitPos float64) {
	av := vs.active
	if !av.IsSplittable(kind) {
		vs.flash("View too small to be split")
		return
	}

	clone := vs.sim.AddObserverClone()
	kept, _ := av.Split(kind, clone, splitPos)
	vs.active = kept
	vs.sim.SetActiveObserver(kept.Observer)
	vs.flash("Added view")
}

// SingleView collapses the tree back to the active view alone,
// destroying every other leaf's observer.
func (vs *ViewSet) SingleView() {
	keep := vs.active
	if keep.Kind != ViewWindow {
		keep = vs.root.FirstLeaf()
	}
	for _, leaf := range vs.Leaves() {
		if leaf != keep {
			vs.sim.RemoveObserver(leaf.Observer)
		}
	}

	root := NewRootView(keep.Observer)
	vs.root = root
	vs.active = root
	vs.sim.SetActiveObserver(root.Observer)
}

// DeleteActive removes the active view. Its sibling subtree takes the
// parent's place and rectangle, and the first leaf under it becomes
// active. Deleting the root view is a no-op.
func (vs *ViewSet) DeleteActive() { vs.Delete(vs.active) }

// Delete removes a leaf from the tree, re-parenting its sibling.
func (vs *ViewSet) Delete(v *View) {
	if v == nil || v.Kind != ViewWindow || v.IsRoot() {
		return
	}

	parent := v.parent
	sibling := v.Sibling()
	vs.sim.RemoveObserver(v.Observer)

	// The sibling subtree takes over the parent's place in the tree
	// and its rectangle.
	grand := parent.parent
	sibling.parent = grand
	if grand != nil {
		if grand.child1 == parent {
			grand.child1 = sibling
		} else {
			grand.child2 = sibling
		}
	} else {
		vs.root = sibling
	}
	sibling.X, sibling.Y = parent.X, parent.Y
	sibling.Width, sibling.Height = parent.Width, parent.Height
	sibling.layout()

	next := sibling.FirstLeaf()
	vs.active = next
	vs.sim.SetActiveObserver(next.Observer)
}

// ResizeActiveSplit moves the split line enclosing the active view by
// delta (normalized units): the active view's side grows by delta, the
// sibling shrinks. The whole resize is validated on both children
// before anything is mutated; an invalid resize is a silent no-op.
func (vs *ViewSet) ResizeActiveSplit(delta float64) {
	v := vs.active
	if v.IsRoot() {
		return
	}
	parent := v.parent
	horizontal := parent.Kind == HorizontalSplit

	first := parent.child1
	second := parent.child2
	d1, d2 := delta, -delta
	if v == second {
		d1, d2 = -delta, delta
	}

	if first.resizeDelta(d1, horizontal, true) && second.resizeDelta(d2, horizontal, true) {
		first.resizeDelta(d1, horizontal, false)
		second.resizeDelta(d2, horizontal, false)
		parent.layout()
	}
}

func (vs *ViewSet) flash(msg string) {
	if vs.sim.notifier != nil {
		vs.sim.notifier.Flash(msg)
	}
}
