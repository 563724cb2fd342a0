package glint

import (
	"fmt"
	"sort"
)

// Engine executes render passes: it drains the UpdateManager, orders the
// records by tree depth and drives adapter lifecycle through the dispose,
// update and display phases, then unloads adapters that stayed disposed.
//
// A pass runs to completion on the caller's goroutine. Adapter errors abort
// the pass and propagate: a partially applied pass leaves bookkeeping state
// that is unsafe to resume, so the host must treat the session as failed.
type Engine struct {
	app     *Application
	backend Backend
}

// NewEngine creates an engine for an application and a rendering backend.
func NewEngine(app *Application, backend Backend) *Engine {
	if app == nil || backend == nil {
		protocolViolation("NewEngine", "nil application or backend")
	}
	return &Engine{app: app, backend: backend}
}

// passEntry is one sorted slot of the pass snapshot. The record pointer is
// nilled when a prior step invalidates it.
type passEntry struct {
	rec    *UpdateRecord
	parent *Component
	depth  int
}

// disposedEntry tracks an adapter marked disposed during this pass, keyed
// by peer identity in the bookkeeping map.
type disposedEntry struct {
	adapter   Adapter
	component *Component
}

// ProcessPendingUpdates runs one render pass. No-op when nothing is
// pending. Mutations recorded re-entrantly by adapter code land in a fresh
// batch and are picked up by a later pass.
func (e *Engine) ProcessPendingUpdates() error {
	if !e.app.updates.HasPendingChanges() {
		return nil
	}

	entries := e.snapshot()
	logger.Debug("render pass", "records", len(entries))

	if err := e.bootstrapRoot(); err != nil {
		return err
	}

	disposed := make(map[uint64]disposedEntry)

	if err := e.disposePhase(entries, disposed); err != nil {
		return err
	}
	if err := e.updatePhase(entries, disposed); err != nil {
		return err
	}
	if e.app.Active() {
		if err := e.displayPhase(entries); err != nil {
			return err
		}
	}

	// Deferred unload: an adapter disposed and resurrected within the same
	// pass must keep its binding; only those still marked disposed go.
	for _, d := range disposed {
		if d.adapter.Core().disposed {
			unbindAdapter(d.component, d.adapter)
		}
	}

	e.app.updates.Purge()

	if e.app.Active() {
		return e.reapplyFocus()
	}
	return nil
}

// snapshot seals the pending batch and sorts it ascending by the depth of
// each record's parent. The engine iterates this stable snapshot; the live
// pending map is free to accumulate the next batch.
func (e *Engine) snapshot() []*passEntry {
	records := e.app.updates.PendingUpdates()
	entries := make([]*passEntry, 0, len(records))
	for _, rec := range records {
		parent := rec.Parent()
		if parent == nil {
			resolutionMiss("snapshot", "record parent %s is unresolvable", rec.ParentID())
			continue
		}
		entries = append(entries, &passEntry{rec: rec, parent: parent, depth: parent.Depth()})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].depth < entries[j].depth })
	return entries
}

// bootstrapRoot creates and attaches the root adapter on the very first
// pass.
func (e *Engine) bootstrapRoot() error {
	root := e.app.root
	if root.adapter != nil {
		return nil
	}
	a, err := e.backend.AdapterFor(root)
	if err != nil {
		return fmt.Errorf("render pass: root adapter: %w", err)
	}
	BindAdapter(root, a)
	if err := a.Attach(nil, e.backend.RootMount()); err != nil {
		return fmt.Errorf("render pass: attach root: %w", err)
	}
	return nil
}

// disposePhase walks the snapshot deepest-first and recursively disposes
// the adapters of every removed child and removed descendant.
func (e *Engine) disposePhase(entries []*passEntry, disposed map[uint64]disposedEntry) error {
	for i := len(entries) - 1; i >= 0; i-- {
		rec := entries[i].rec
		if rec == nil {
			continue
		}
		for _, c := range rec.RemovedChildren() {
			if err := e.disposeRecursive(c, rec, disposed); err != nil {
				return err
			}
		}
		for _, c := range rec.RemovedDescendants() {
			if err := e.disposeRecursive(c, rec, disposed); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) disposeRecursive(c *Component, rec *UpdateRecord, disposed map[uint64]disposedEntry) error {
	if a := c.adapter; a != nil {
		core := a.Core()
		if core.disposed {
			// Already handled, subtree included.
			return nil
		}
		core.disposed = true
		if err := a.Dispose(rec); err != nil {
			return fmt.Errorf("render pass: dispose %s: %w", c.id, err)
		}
		disposed[core.peer] = disposedEntry{adapter: a, component: c}
	}
	for _, child := range c.children {
		if err := e.disposeRecursive(child, rec, disposed); err != nil {
			return err
		}
	}
	return nil
}

// updatePhase walks the snapshot shallowest-first and applies each record
// through its parent's adapter. An adapter reporting a subtree rebuild
// invalidates every still-pending record below it. The updated parent's
// adapter is unconditionally resurrected: it may have disposed and
// recreated itself while rebuilding and must not be unloaded at pass end.
func (e *Engine) updatePhase(entries []*passEntry, disposed map[uint64]disposedEntry) error {
	for i, entry := range entries {
		if entry.rec == nil {
			continue
		}
		a := entry.parent.adapter
		if a == nil {
			resolutionMiss("update", "component %s has no adapter", entry.parent.id)
			continue
		}
		rebuilt, err := a.Update(entry.rec)
		if err != nil {
			return fmt.Errorf("render pass: update %s: %w", entry.parent.id, err)
		}
		core := a.Core()
		core.disposed = false
		delete(disposed, core.peer)
		if rebuilt {
			e.invalidateDescendants(entries, i, entry.parent)
		}
	}
	return nil
}

func (e *Engine) invalidateDescendants(entries []*passEntry, from int, parent *Component) {
	for j := range entries {
		if j == from || entries[j].rec == nil {
			continue
		}
		if descendantOf(entries[j].parent, parent) {
			logger.Debug("record invalidated by subtree rebuild",
				"parent", entries[j].parent.id, "rebuilt", parent.id)
			entries[j].rec = nil
		}
	}
}

// displayPhase walks the snapshot shallowest-first, invoking the display
// operation once per affected subtree. A record whose parent already sits
// inside a displayed subtree is skipped; a record carrying a display
// restriction hint displays only the named descendants.
func (e *Engine) displayPhase(entries []*passEntry) error {
	var covered []*Component
	for _, entry := range entries {
		if entry.rec == nil {
			continue
		}
		if coveredBy(covered, entry.parent) {
			continue
		}
		if hint := entry.rec.DisplayRestriction(); len(hint) > 0 {
			for _, id := range hint {
				c := entry.rec.Resolve(id)
				if c == nil {
					resolutionMiss("display", "restricted id %s is unresolvable", id)
					continue
				}
				if coveredBy(covered, c) {
					continue
				}
				if err := e.display(c, false); err != nil {
					return err
				}
				covered = append(covered, c)
			}
			continue
		}
		if err := e.display(entry.parent, true); err != nil {
			return err
		}
		covered = append(covered, entry.parent)
	}
	return nil
}

func (e *Engine) display(c *Component, recurse bool) error {
	if a := c.adapter; a != nil {
		if d, ok := a.(Displayer); ok {
			if err := d.Display(); err != nil {
				return fmt.Errorf("render pass: display %s: %w", c.id, err)
			}
		}
		a.Core().displayed = true
	}
	if recurse {
		for _, child := range c.children {
			if err := e.display(child, true); err != nil {
				return err
			}
		}
	}
	return nil
}

// reapplyFocus pushes the application's focus state to the focused
// component's adapter, or cancels any pending focus request.
func (e *Engine) reapplyFocus() error {
	f := e.app.Focused()
	if f == nil {
		e.backend.CancelFocus()
		return nil
	}
	if a := f.adapter; a != nil {
		if fo, ok := a.(Focuser); ok {
			if err := fo.Focus(); err != nil {
				return fmt.Errorf("render pass: focus %s: %w", f.id, err)
			}
		}
	}
	return nil
}

// coveredBy reports whether c equals or sits below any already-displayed
// component.
func coveredBy(covered []*Component, c *Component) bool {
	for _, cov := range covered {
		if c == cov || descendantOf(c, cov) {
			return true
		}
	}
	return false
}
