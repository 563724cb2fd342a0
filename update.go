package glint

import "slices"

// MutationKind classifies a recorded mutation. The kind is decided once at
// the call site; the UpdateManager never re-derives it from property names.
type MutationKind int

const (
	// StructuralAdd records a child added to a parent's child list.
	StructuralAdd MutationKind = iota
	// StructuralRemove records a child removed from a parent's child list.
	StructuralRemove
	// LayoutDataChanged records new layout metadata on a child.
	LayoutDataChanged
	// ListenerChanged records a listener registry change on the component.
	ListenerChanged
	// PropertyChanged records a generic property delta on the component.
	PropertyChanged
)

func (k MutationKind) String() string {
	switch k {
	case StructuralAdd:
		return "add"
	case StructuralRemove:
		return "remove"
	case LayoutDataChanged:
		return "layoutData"
	case ListenerChanged:
		return "listener"
	case PropertyChanged:
		return "property"
	}
	return "unknown"
}

// Mutation describes one recorded change. Parent is the component that owns
// the update record: for structural and layout mutations it is the parent
// whose child list or child metadata changed, for property and listener
// mutations it is the component itself.
type Mutation struct {
	Kind   MutationKind
	Parent *Component
	Child  *Component // structural and layout mutations
	Name   string     // property name or event type
	Old    any
	New    any
}

// PropertyDelta holds the value of a property before the batch started and
// its final value. Intermediate values are not retained.
type PropertyDelta struct {
	Old any
	New any
}

// UpdateRecord accumulates every change made beneath one parent component
// since the last render pass. Records are created lazily on first mutation
// and destroyed on purge, or earlier when absorbed by a removal or
// superseded by a full refresh.
type UpdateRecord struct {
	batch    *recordBatch
	parentID string

	addedChildIDs             []string // insertion order is replay order
	removedChildIDs           []string
	removedDescendantIDs      []string
	updatedLayoutDataChildIDs []string

	propertyDeltas    map[string]PropertyDelta
	listenerTypeFlags map[string]bool

	fullRefresh bool

	// displayRestriction is set by the parent's adapter during the update
	// phase to limit the display phase to specific descendants.
	displayRestriction []string
}

func newUpdateRecord(b *recordBatch, parentID string) *UpdateRecord {
	return &UpdateRecord{batch: b, parentID: parentID}
}

// ParentID returns the id of the component this record is scoped to.
func (r *UpdateRecord) ParentID() string { return r.parentID }

// Parent resolves the record's parent component.
func (r *UpdateRecord) Parent() *Component { return r.batch.resolve(r.parentID) }

// FullRefresh reports whether this record demands a complete rebuild from
// its parent down.
func (r *UpdateRecord) FullRefresh() bool { return r.fullRefresh }

// AddedChildIDs returns the ids of children added in this batch, in the
// order they were added.
func (r *UpdateRecord) AddedChildIDs() []string { return slices.Clone(r.addedChildIDs) }

// RemovedChildIDs returns the ids of children removed in this batch.
func (r *UpdateRecord) RemovedChildIDs() []string { return slices.Clone(r.removedChildIDs) }

// RemovedDescendantIDs returns ids of components below removed children
// that had pending state of their own when their subtree was removed.
func (r *UpdateRecord) RemovedDescendantIDs() []string { return slices.Clone(r.removedDescendantIDs) }

// UpdatedLayoutDataChildIDs returns ids of children whose layout metadata
// changed in this batch.
func (r *UpdateRecord) UpdatedLayoutDataChildIDs() []string {
	return slices.Clone(r.updatedLayoutDataChildIDs)
}

// AddedChildren resolves the added child ids to component instances.
func (r *UpdateRecord) AddedChildren() []*Component { return r.batch.resolveAll(r.addedChildIDs) }

// RemovedChildren resolves the removed child ids. The instances are already
// detached but remain resolvable for the duration of the batch.
func (r *UpdateRecord) RemovedChildren() []*Component { return r.batch.resolveAll(r.removedChildIDs) }

// RemovedDescendants resolves the removed descendant ids.
func (r *UpdateRecord) RemovedDescendants() []*Component {
	return r.batch.resolveAll(r.removedDescendantIDs)
}

// HasAddedChild reports whether the id is recorded as added.
func (r *UpdateRecord) HasAddedChild(id string) bool {
	return slices.Contains(r.addedChildIDs, id)
}

// HasRemovedChild reports whether the id is recorded as removed.
func (r *UpdateRecord) HasRemovedChild(id string) bool {
	return slices.Contains(r.removedChildIDs, id)
}

// PropertyDeltas returns the accumulated property deltas, keyed by name.
func (r *UpdateRecord) PropertyDeltas() map[string]PropertyDelta {
	out := make(map[string]PropertyDelta, len(r.propertyDeltas))
	for k, v := range r.propertyDeltas {
		out[k] = v
	}
	return out
}

// ListenerChanged reports whether the listener registry for the event type
// changed in this batch.
func (r *UpdateRecord) ListenerChanged(eventType string) bool {
	return r.listenerTypeFlags[eventType]
}

// ListenerTypes returns the event types whose registries changed.
func (r *UpdateRecord) ListenerTypes() []string {
	out := make([]string, 0, len(r.listenerTypeFlags))
	for t := range r.listenerTypeFlags {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// RestrictDisplay is called by the parent's adapter during the update phase
// to limit the display phase to the named descendants instead of the whole
// subtree.
func (r *UpdateRecord) RestrictDisplay(ids ...string) {
	r.displayRestriction = append(r.displayRestriction, ids...)
}

// DisplayRestriction returns the adapter-supplied display hint, or nil for
// a full subtree display.
func (r *UpdateRecord) DisplayRestriction() []string { return r.displayRestriction }

// Resolve maps an id named by this record to a live or just-detached
// component instance.
func (r *UpdateRecord) Resolve(id string) *Component { return r.batch.resolve(id) }

// addChild records an addition. A child removed earlier in the batch stays
// recorded as removed.
func (r *UpdateRecord) addChild(id string) {
	if !slices.Contains(r.addedChildIDs, id) {
		r.addedChildIDs = append(r.addedChildIDs, id)
	}
}

// removeChild records a removal, striking the child from the added and
// layout-updated lists. An add+remove within one batch nets to removed.
func (r *UpdateRecord) removeChild(id string) {
	if i := slices.Index(r.addedChildIDs, id); i >= 0 {
		r.addedChildIDs = slices.Delete(r.addedChildIDs, i, i+1)
	}
	if i := slices.Index(r.updatedLayoutDataChildIDs, id); i >= 0 {
		r.updatedLayoutDataChildIDs = slices.Delete(r.updatedLayoutDataChildIDs, i, i+1)
	}
	if !slices.Contains(r.removedChildIDs, id) {
		r.removedChildIDs = append(r.removedChildIDs, id)
	}
}

func (r *UpdateRecord) addRemovedDescendant(id string) {
	if !slices.Contains(r.removedDescendantIDs, id) {
		r.removedDescendantIDs = append(r.removedDescendantIDs, id)
	}
}

// absorb folds a stale record for a removed subtree into this removal
// record. strict says whether the stale record's parent sits strictly below
// the removed child (and so must itself be listed as a removed descendant).
func (r *UpdateRecord) absorb(stale *UpdateRecord, strict bool) {
	if strict {
		r.addRemovedDescendant(stale.parentID)
	}
	for _, id := range stale.removedChildIDs {
		r.addRemovedDescendant(id)
	}
	for _, id := range stale.removedDescendantIDs {
		r.addRemovedDescendant(id)
	}
}

func (r *UpdateRecord) updateLayoutData(id string) {
	if !slices.Contains(r.updatedLayoutDataChildIDs, id) {
		r.updatedLayoutDataChildIDs = append(r.updatedLayoutDataChildIDs, id)
	}
}

// updateProperty merges a delta: the first recorded old value and the most
// recent new value win.
func (r *UpdateRecord) updateProperty(name string, old, new any) {
	if r.propertyDeltas == nil {
		r.propertyDeltas = make(map[string]PropertyDelta)
	}
	if prev, ok := r.propertyDeltas[name]; ok {
		r.propertyDeltas[name] = PropertyDelta{Old: prev.Old, New: new}
		return
	}
	r.propertyDeltas[name] = PropertyDelta{Old: old, New: new}
}

func (r *UpdateRecord) flagListener(eventType string) {
	if r.listenerTypeFlags == nil {
		r.listenerTypeFlags = make(map[string]bool)
	}
	r.listenerTypeFlags[eventType] = true
}

// recordBatch holds one generation of pending records plus the id map that
// keeps removed components resolvable until the batch is purged. The maps
// are owned by the UpdateManager, never by individual records.
type recordBatch struct {
	app        *Application
	records    map[string]*UpdateRecord
	components map[string]*Component
}

func newRecordBatch(app *Application) *recordBatch {
	return &recordBatch{
		app:        app,
		records:    make(map[string]*UpdateRecord),
		components: make(map[string]*Component),
	}
}

// resolve prefers the batch map, which covers just-detached components,
// and falls back to the live registry for ids the batch never touched
// (display restriction hints may name untouched children).
func (b *recordBatch) resolve(id string) *Component {
	if c := b.components[id]; c != nil {
		return c
	}
	return b.app.Lookup(id)
}

func (b *recordBatch) resolveAll(ids []string) []*Component {
	out := make([]*Component, 0, len(ids))
	for _, id := range ids {
		c := b.resolve(id)
		if c == nil {
			resolutionMiss("resolve", "no component for id %s", id)
			continue
		}
		out = append(out, c)
	}
	return out
}

func (b *recordBatch) remember(c *Component) {
	if c != nil && c.id != "" {
		b.components[c.id] = c
	}
}
