package glint

import (
	"slices"

	"github.com/google/uuid"
)

// Event is delivered to listeners registered on a Component.
type Event struct {
	Type    string
	Source  *Component
	Payload any
}

// EventDetach is fired on a component when it is detached from its application.
const EventDetach = "detach"

// Listener handles an event fired on a component.
type Listener func(Event)

// ListenerHandle identifies a registered listener so it can be removed later.
type ListenerHandle struct {
	eventType string
	seq       int
}

type listenerEntry struct {
	seq int
	fn  Listener
}

// Component is a node in the live application tree. It has a stable external
// id (assigned on attach), an exclusive parent, an ordered child list, a
// property map, optional layout metadata and an optional listener registry.
//
// All mutations are funneled through the owning Application into its
// UpdateManager; a detached component mutates freely without recording.
type Component struct {
	id          string
	app         *Application
	parent      *Component
	children    []*Component
	properties  map[string]any
	layoutData  any
	listeners   map[string][]listenerEntry
	listenerSeq int
	adapter     Adapter
}

// NewComponent creates a detached component with no id. The id is assigned
// when the component is first attached to an application tree.
func NewComponent() *Component {
	return &Component{}
}

// ID returns the component's external id, or "" if it was never attached.
func (c *Component) ID() string { return c.id }

// SetID assigns an explicit external id. Only allowed before first attach.
func (c *Component) SetID(id string) {
	if c.app != nil {
		protocolViolation("SetID", "component %s is attached", c.id)
	}
	c.id = id
}

// Application returns the owning application, or nil while detached.
func (c *Component) Application() *Application { return c.app }

// Parent returns the parent component, or nil for the root and for detached
// components.
func (c *Component) Parent() *Component { return c.parent }

// Adapter returns the rendering adapter bound to this component, or nil if
// it has not been rendered yet.
func (c *Component) Adapter() Adapter { return c.adapter }

// Children returns a copy of the ordered child list.
func (c *Component) Children() []*Component {
	out := make([]*Component, len(c.children))
	copy(out, c.children)
	return out
}

// ChildCount returns the number of children.
func (c *Component) ChildCount() int { return len(c.children) }

// ChildAt returns the child at index i, or nil if out of range.
func (c *Component) ChildAt(i int) *Component {
	if i < 0 || i >= len(c.children) {
		return nil
	}
	return c.children[i]
}

// Append adds children to the end of the child list. A child that already
// has a parent is removed from it first.
func (c *Component) Append(children ...*Component) *Component {
	for _, child := range children {
		c.Insert(len(c.children), child)
	}
	return c
}

// Insert adds a child at the given position. The index is clamped to the
// valid range. A child that already has a parent is removed from it first.
func (c *Component) Insert(i int, child *Component) {
	if child == nil {
		protocolViolation("Insert", "nil child")
	}
	if child == c || descendantOf(c, child) {
		protocolViolation("Insert", "component %s cannot contain itself", c.id)
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	if i < 0 {
		i = 0
	}
	if i > len(c.children) {
		i = len(c.children)
	}
	c.children = slices.Insert(c.children, i, child)
	child.parent = c
	if c.app != nil {
		c.app.attach(child)
		c.app.recordAddition(c, child)
	}
}

// Remove detaches a child from this component. Removing a component that is
// not a child is a protocol violation.
func (c *Component) Remove(child *Component) {
	if child == nil || child.parent != c {
		protocolViolation("Remove", "component is not a child of %s", c.id)
	}
	i := slices.Index(c.children, child)
	c.children = slices.Delete(c.children, i, i+1)
	child.parent = nil
	if c.app != nil {
		app := c.app
		app.detach(child)
		app.recordRemoval(c, child)
	}
}

// RemoveAll removes every child.
func (c *Component) RemoveAll() {
	for len(c.children) > 0 {
		c.Remove(c.children[len(c.children)-1])
	}
}

// Set assigns a property value and records the delta.
func (c *Component) Set(name string, value any) *Component {
	if c.properties == nil {
		c.properties = make(map[string]any)
	}
	old := c.properties[name]
	c.properties[name] = value
	if c.app != nil {
		c.app.recordProperty(c, name, old, value)
	}
	return c
}

// Property returns the value of a property, or nil if unset.
func (c *Component) Property(name string) any {
	return c.properties[name]
}

// PropertyString returns a property coerced to string, or "" when unset or
// of another type.
func (c *Component) PropertyString(name string) string {
	s, _ := c.properties[name].(string)
	return s
}

// LayoutData returns the layout metadata attached to this component.
func (c *Component) LayoutData() any { return c.layoutData }

// SetLayoutData assigns layout metadata and records the change against the
// parent's update record.
func (c *Component) SetLayoutData(data any) {
	c.layoutData = data
	if c.app != nil && c.parent != nil {
		c.app.recordLayoutData(c.parent, c)
	}
}

// AddListener registers a handler for an event type. The returned handle
// removes exactly that handler. Registering with an empty event type is a
// protocol violation.
func (c *Component) AddListener(eventType string, fn Listener) ListenerHandle {
	if eventType == "" {
		protocolViolation("AddListener", "empty event type")
	}
	if fn == nil {
		protocolViolation("AddListener", "nil listener")
	}
	if c.listeners == nil {
		c.listeners = make(map[string][]listenerEntry)
	}
	c.listenerSeq++
	h := ListenerHandle{eventType: eventType, seq: c.listenerSeq}
	c.listeners[eventType] = append(c.listeners[eventType], listenerEntry{seq: h.seq, fn: fn})
	if c.app != nil {
		c.app.recordListener(c, eventType)
	}
	return h
}

// RemoveListener removes a previously registered handler. Unknown handles
// are ignored.
func (c *Component) RemoveListener(h ListenerHandle) {
	entries := c.listeners[h.eventType]
	for i, e := range entries {
		if e.seq == h.seq {
			c.listeners[h.eventType] = slices.Delete(entries, i, i+1)
			if c.app != nil {
				c.app.recordListener(c, h.eventType)
			}
			return
		}
	}
}

// HasListeners reports whether any handler is registered for the event type.
func (c *Component) HasListeners(eventType string) bool {
	return len(c.listeners[eventType]) > 0
}

// Fire delivers an event to this component's listeners in registration
// order. Firing an event without a type is a protocol violation.
func (c *Component) Fire(eventType string, payload any) {
	if eventType == "" {
		protocolViolation("Fire", "empty event type")
	}
	ev := Event{Type: eventType, Source: c, Payload: payload}
	for _, e := range slices.Clone(c.listeners[eventType]) {
		e.fn(ev)
	}
}

// Depth returns the distance from the tree root (root = 0).
func (c *Component) Depth() int {
	d := 0
	for p := c.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// walk applies fn to c and every descendant, depth first.
func (c *Component) walk(fn func(*Component)) {
	fn(c)
	for _, child := range c.children {
		child.walk(fn)
	}
}

// descendantOf reports whether c sits strictly below ancestor.
func descendantOf(c, ancestor *Component) bool {
	for p := c.parent; p != nil; p = p.parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// assignID gives the component its permanent external id if it has none.
func (c *Component) assignID() {
	if c.id == "" {
		c.id = uuid.NewString()
	}
}
