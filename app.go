package glint

// PropFocus is the root property recording focus handoffs, so that a focus
// change alone is enough to schedule a render pass.
const PropFocus = "focus"

// Application owns one component tree: the root, the id registry, focus
// state and the UpdateManager every mutation is funneled into. Components
// never talk to the UpdateManager directly.
type Application struct {
	root     *Component
	registry map[string]*Component
	focused  *Component
	active   bool

	updates   *UpdateManager
	onPending []func()
}

// NewApplication creates an active application with a registered root
// component.
func NewApplication() *Application {
	a := &Application{
		registry: make(map[string]*Component),
		active:   true,
	}
	a.updates = newUpdateManager(a)
	root := NewComponent()
	root.properties = map[string]any{PropKind: KindRoot}
	root.assignID()
	root.app = a
	a.registry[root.id] = root
	a.root = root
	return a
}

// Root returns the root component.
func (a *Application) Root() *Component { return a.root }

// Updates returns the application's update manager.
func (a *Application) Updates() *UpdateManager { return a.updates }

// Active reports whether the application is still running.
func (a *Application) Active() bool { return a.active }

// Close deactivates the application. Subsequent render passes no-op.
func (a *Application) Close() { a.active = false }

// Lookup resolves an external id to its live component, or nil.
func (a *Application) Lookup(id string) *Component { return a.registry[id] }

// Focused returns the currently focused component, or nil.
func (a *Application) Focused() *Component { return a.focused }

// SetFocus moves focus to c, or clears it when c is nil. Focusing a
// component owned by another application is a protocol violation. The
// change is recorded as a root property delta so the next pass reapplies
// focus through the component's adapter.
func (a *Application) SetFocus(c *Component) {
	if c != nil && c.app != a {
		protocolViolation("SetFocus", "component does not belong to this application")
	}
	old := a.focused
	if old == c {
		return
	}
	a.focused = c
	a.updates.Record(Mutation{
		Kind:   PropertyChanged,
		Parent: a.root,
		Name:   PropFocus,
		Old:    componentID(old),
		New:    componentID(c),
	})
}

// RequestFullRefresh discards fine-grained tracking and forces a complete
// rebuild from the root on the next pass.
func (a *Application) RequestFullRefresh() {
	a.updates.RecordFullRefresh()
}

// OnPendingChange registers a hook fired on every successful recording.
// Hosts use it to schedule a render pass on the next loop turn.
func (a *Application) OnPendingChange(fn func()) {
	if fn != nil {
		a.onPending = append(a.onPending, fn)
	}
}

func (a *Application) notifyPendingChange() {
	for _, fn := range a.onPending {
		fn()
	}
}

// attach registers a subtree that was just parented under a live component:
// ids are assigned, the registry is populated and the application pointer
// is set on every node.
func (a *Application) attach(c *Component) {
	c.walk(func(n *Component) {
		n.assignID()
		if existing, ok := a.registry[n.id]; ok && existing != n {
			protocolViolation("attach", "id %s is already registered", n.id)
		}
		if n.app != nil && n.app != a {
			protocolViolation("attach", "component %s belongs to another application", n.id)
		}
		a.registry[n.id] = n
		n.app = a
	})
}

// detach unregisters a removed subtree. Each node keeps its id and its own
// children (the engine still walks them to dispose adapters), loses its
// application pointer and has its detach listeners notified.
func (a *Application) detach(c *Component) {
	c.walk(func(n *Component) {
		if a.registry[n.id] == n {
			delete(a.registry, n.id)
		}
		if a.focused == n {
			a.focused = nil
		}
		n.app = nil
		n.Fire(EventDetach, nil)
	})
}

// Mutation funnel, called from Component operations.

func (a *Application) recordProperty(c *Component, name string, old, new any) {
	a.checkOwned("Set", c)
	a.updates.Record(Mutation{Kind: PropertyChanged, Parent: c, Name: name, Old: old, New: new})
}

func (a *Application) recordListener(c *Component, eventType string) {
	a.checkOwned("AddListener", c)
	a.updates.Record(Mutation{Kind: ListenerChanged, Parent: c, Name: eventType})
}

func (a *Application) recordLayoutData(parent, child *Component) {
	a.checkOwned("SetLayoutData", parent)
	a.updates.Record(Mutation{Kind: LayoutDataChanged, Parent: parent, Child: child})
}

func (a *Application) recordAddition(parent, child *Component) {
	a.checkOwned("Insert", parent)
	a.updates.Record(Mutation{Kind: StructuralAdd, Parent: parent, Child: child})
}

func (a *Application) recordRemoval(parent, child *Component) {
	a.checkOwned("Remove", parent)
	a.updates.Record(Mutation{Kind: StructuralRemove, Parent: parent, Child: child})
}

func (a *Application) checkOwned(op string, c *Component) {
	if c.app != a {
		protocolViolation(op, "component is not registered with this application")
	}
}

func componentID(c *Component) any {
	if c == nil {
		return nil
	}
	return c.id
}
