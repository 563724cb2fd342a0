package glint

import "fmt"

// Region is a rectangular mount area on the backend surface.
type Region struct {
	X, Y, Width, Height int
}

// RowLayout is the layout metadata the terminal backend understands: how
// many surface rows a component occupies.
type RowLayout struct {
	Rows int
}

// TermBackend renders a component tree onto a cell Surface. It is the
// reference Backend implementation: adapters are chosen by the component's
// kind property, mounted into regions and drawn with lipgloss styles.
type TermBackend struct {
	surface *Surface
	theme   Theme

	// focusedPeer is the adapter currently holding visual focus, by peer
	// id. Zero means no pending focus.
	focusedPeer uint64
}

// NewTermBackend creates a backend drawing onto a fresh surface.
func NewTermBackend(width, height int) *TermBackend {
	return &TermBackend{
		surface: NewSurface(width, height),
		theme:   ThemeDark,
	}
}

// SetTheme replaces the backend styles.
func (b *TermBackend) SetTheme(t Theme) { b.theme = t }

// Surface exposes the draw target.
func (b *TermBackend) Surface() *Surface { return b.surface }

// View flushes the surface for the host.
func (b *TermBackend) View() string { return b.surface.String() }

// Resize grows or shrinks the surface. The caller should request a full
// refresh afterwards; the old contents are discarded.
func (b *TermBackend) Resize(width, height int) {
	b.surface.Resize(width, height)
}

// RootMount implements Backend.
func (b *TermBackend) RootMount() Mount {
	return Region{X: 0, Y: 0, Width: b.surface.Width(), Height: b.surface.Height()}
}

// CancelFocus implements Backend.
func (b *TermBackend) CancelFocus() { b.focusedPeer = 0 }

// AdapterFor implements AdapterFactory, keyed by the kind property.
func (b *TermBackend) AdapterFor(c *Component) (Adapter, error) {
	switch kind := c.PropertyString(PropKind); kind {
	case KindRoot:
		return &rootAdapter{containerAdapter{termAdapter: termAdapter{backend: b}}}, nil
	case KindPanel:
		return &panelAdapter{containerAdapter{termAdapter: termAdapter{backend: b}}}, nil
	case KindLabel:
		return &labelAdapter{termAdapter: termAdapter{backend: b}}, nil
	case KindButton:
		return &buttonAdapter{termAdapter: termAdapter{backend: b}}, nil
	default:
		return nil, fmt.Errorf("glint: no terminal adapter for kind %q", kind)
	}
}

// regioned lets container adapters hand regions to their children without
// knowing the concrete adapter type.
type regioned interface {
	setRegion(Region)
}

// termAdapter is the base for all terminal adapters.
type termAdapter struct {
	AdapterCore
	backend *TermBackend
	region  Region
}

func (t *termAdapter) Core() *AdapterCore { return &t.AdapterCore }

func (t *termAdapter) setRegion(r Region) { t.region = r }

func (t *termAdapter) Attach(rec *UpdateRecord, mount Mount) error {
	if r, ok := mount.(Region); ok {
		t.region = r
	}
	return nil
}

// Dispose releases the mount region. Safe to call repeatedly and after the
// adapter is no longer attached.
func (t *termAdapter) Dispose(rec *UpdateRecord) error {
	t.region = Region{}
	return nil
}

// subtreeRows returns the surface rows a component's subtree occupies:
// explicit RowLayout metadata wins, containers sum their children, leaves
// take one row.
func subtreeRows(c *Component) int {
	if rl, ok := c.LayoutData().(RowLayout); ok && rl.Rows > 0 {
		return rl.Rows
	}
	if c.ChildCount() == 0 {
		return 1
	}
	rows := 0
	for _, child := range c.Children() {
		rows += subtreeRows(child)
	}
	if rows == 0 {
		rows = 1
	}
	return rows
}

// containerAdapter mounts child subtrees and stacks them vertically.
type containerAdapter struct {
	termAdapter
}

// Update mounts adapters for children added in this batch. A full refresh
// rebuilds the whole subtree and reports it so the engine invalidates
// queued descendant records. A batch that only touched child layout
// metadata restricts the display pass to those children.
func (ca *containerAdapter) Update(rec *UpdateRecord) (bool, error) {
	if rec.FullRefresh() {
		if err := ca.mountChildren(ca.component); err != nil {
			return false, err
		}
		return true, nil
	}
	for _, child := range rec.AddedChildren() {
		if child.Application() == nil {
			// Added and removed again within the batch; nothing to mount.
			continue
		}
		if err := ca.mountSubtree(child); err != nil {
			return false, err
		}
	}
	if layoutOnly(rec) {
		rec.RestrictDisplay(rec.UpdatedLayoutDataChildIDs()...)
	}
	return false, nil
}

func layoutOnly(rec *UpdateRecord) bool {
	return len(rec.UpdatedLayoutDataChildIDs()) > 0 &&
		len(rec.AddedChildIDs()) == 0 &&
		len(rec.RemovedChildIDs()) == 0 &&
		len(rec.PropertyDeltas()) == 0
}

// mountChildren (re)mounts every current child subtree.
func (ca *containerAdapter) mountChildren(c *Component) error {
	for _, child := range c.Children() {
		if err := ca.mountSubtree(child); err != nil {
			return err
		}
	}
	return nil
}

// mountSubtree binds an adapter to the component and its descendants. A
// still-bound adapter is reused and revived: a component disposed earlier
// in this pass and re-attached keeps its one live adapter.
func (ca *containerAdapter) mountSubtree(c *Component) error {
	a := c.Adapter()
	if a == nil {
		var err error
		a, err = ca.backend.AdapterFor(c)
		if err != nil {
			return err
		}
		BindAdapter(c, a)
	} else {
		a.Core().disposed = false
	}
	if err := a.Attach(nil, ca.region); err != nil {
		return err
	}
	for _, child := range c.Children() {
		if err := ca.mountSubtree(child); err != nil {
			return err
		}
	}
	return nil
}

// Display stacks child regions top to bottom inside the container's own
// region. Children draw themselves when the pass recurses into them.
func (ca *containerAdapter) Display() error {
	y := ca.region.Y
	for _, child := range ca.component.Children() {
		rows := subtreeRows(child)
		if a := child.Adapter(); a != nil {
			if r, ok := a.(regioned); ok {
				r.setRegion(Region{X: ca.region.X, Y: y, Width: ca.region.Width, Height: rows})
			}
		}
		y += rows
	}
	return nil
}

// rootAdapter is the container attached to the application root. It owns
// the whole surface and clears it before laying out.
type rootAdapter struct {
	containerAdapter
}

func (ra *rootAdapter) Display() error {
	ra.backend.surface.Clear()
	ra.region = Region{X: 0, Y: 0, Width: ra.backend.surface.Width(), Height: ra.backend.surface.Height()}
	return ra.containerAdapter.Display()
}

// panelAdapter is a plain vertical stack container.
type panelAdapter struct {
	containerAdapter
}

// labelAdapter draws one line of text.
type labelAdapter struct {
	termAdapter
	text string
}

func (la *labelAdapter) Attach(rec *UpdateRecord, mount Mount) error {
	la.text = la.component.PropertyString(PropText)
	return la.termAdapter.Attach(rec, mount)
}

func (la *labelAdapter) Update(rec *UpdateRecord) (bool, error) {
	if d, ok := rec.PropertyDeltas()[PropText]; ok {
		s, _ := d.New.(string)
		la.text = s
	}
	return false, nil
}

func (la *labelAdapter) Display() error {
	s := la.backend.surface
	s.FillRect(la.region.X, la.region.Y, la.region.Width, 1, EmptyCell())
	s.WriteString(la.region.X, la.region.Y, la.text, la.backend.theme.Base, la.region.Width)
	return nil
}

// buttonAdapter draws an activatable, focusable line.
type buttonAdapter struct {
	termAdapter
	text string
}

func (ba *buttonAdapter) Attach(rec *UpdateRecord, mount Mount) error {
	ba.text = ba.component.PropertyString(PropText)
	return ba.termAdapter.Attach(rec, mount)
}

func (ba *buttonAdapter) Update(rec *UpdateRecord) (bool, error) {
	if d, ok := rec.PropertyDeltas()[PropText]; ok {
		s, _ := d.New.(string)
		ba.text = s
	}
	return false, nil
}

func (ba *buttonAdapter) Display() error {
	style := ba.backend.theme.Accent
	if ba.backend.focusedPeer == ba.peer {
		style = ba.backend.theme.Focused
	}
	s := ba.backend.surface
	s.FillRect(ba.region.X, ba.region.Y, ba.region.Width, 1, EmptyCell())
	s.WriteString(ba.region.X, ba.region.Y, "[ "+ba.text+" ]", style, ba.region.Width)
	return nil
}

// Focus implements Focuser: the button takes visual focus on the next draw.
func (ba *buttonAdapter) Focus() error {
	ba.backend.focusedPeer = ba.peer
	return nil
}
