package glint

import "sync/atomic"

// Mount is the backend-specific location an adapter materializes under.
// Each backend defines its own concrete mount type.
type Mount = any

// peerCounter issues process-unique adapter identities. The peer id is
// deliberately distinct from the component's external id: an external id
// can be reassigned across a detach/reattach cycle, a peer id never is.
var peerCounter atomic.Uint64

// Adapter is the per-component rendering peer. Exactly one adapter is
// bound to a component for its rendered lifetime. Implementations embed
// AdapterCore and add their backend behavior.
type Adapter interface {
	// Core exposes the engine-owned bookkeeping state.
	Core() *AdapterCore

	// Attach materializes the component's visual representation under the
	// mount point. The record is nil when bootstrapping the root.
	Attach(rec *UpdateRecord, mount Mount) error

	// Dispose releases resources not owned by the host rendering tree.
	// Must be idempotent and callable after detach. The record is nil when
	// disposal happens outside a pass.
	Dispose(rec *UpdateRecord) error

	// Update applies the described delta. Returning rebuilt=true signals
	// that the adapter tore down and recreated its entire descendant
	// subtree, invalidating queued descendant records.
	Update(rec *UpdateRecord) (rebuilt bool, err error)
}

// Displayer is implemented by adapters that need a layout-settle pass once
// their subtree is confirmed mounted and sized.
type Displayer interface {
	Display() error
}

// Focuser is implemented by adapters that can take input focus.
type Focuser interface {
	Focus() error
}

// AdapterCore is the embeddable bookkeeping state shared by all adapters.
// The zero value is ready to use; the peer id is assigned on first bind.
type AdapterCore struct {
	peer      uint64
	component *Component
	disposed  bool
	displayed bool
}

// PeerID returns the process-unique adapter identity.
func (c *AdapterCore) PeerID() uint64 { return c.peer }

// Component returns the bound component, or nil after unload.
func (c *AdapterCore) Component() *Component { return c.component }

// Disposed reports whether the adapter is currently marked disposed.
func (c *AdapterCore) Disposed() bool { return c.disposed }

// Displayed reports whether a display pass has reached this adapter.
func (c *AdapterCore) Displayed() bool { return c.displayed }

// BindAdapter attaches an adapter to a component, wiring both directions.
// Binding over a live adapter or binding one adapter to two components is
// a protocol violation.
func BindAdapter(c *Component, a Adapter) {
	if c == nil || a == nil {
		protocolViolation("BindAdapter", "nil component or adapter")
	}
	core := a.Core()
	if core.peer == 0 {
		core.peer = peerCounter.Add(1)
	}
	if c.adapter != nil && c.adapter != a {
		protocolViolation("BindAdapter", "component %s already has an adapter", c.id)
	}
	if core.component != nil && core.component != c {
		protocolViolation("BindAdapter", "adapter %d is bound to another component", core.peer)
	}
	c.adapter = a
	core.component = c
}

// unbindAdapter severs both directions of the adapter/component reference.
func unbindAdapter(c *Component, a Adapter) {
	core := a.Core()
	if c.adapter == a {
		c.adapter = nil
	}
	core.component = nil
}

// AdapterFactory creates adapters for components. The engine uses it to
// bootstrap the root; container adapters use it for their children.
type AdapterFactory interface {
	AdapterFor(c *Component) (Adapter, error)
}

// Backend is the rendering side the engine drives: an adapter factory plus
// the root mount and the focus hooks the pass tail uses.
type Backend interface {
	AdapterFactory

	// RootMount is where the root adapter attaches.
	RootMount() Mount

	// CancelFocus drops any pending focus request when no component is
	// focused at the end of a pass.
	CancelFocus()
}
