package glint

// UpdateManager accumulates mutations into per-parent UpdateRecords,
// coalescing them so a render pass does the minimum correct work. It is
// owned by an Application and driven only through the Application's
// mutation funnel.
//
// Batches are generational: PendingUpdates seals the current batch and
// mutations recorded while a pass is running land in a fresh one, so
// re-entrant mutations from adapter code survive the end-of-pass Purge and
// schedule a follow-up pass.
type UpdateManager struct {
	app *Application

	cur    *recordBatch
	sealed *recordBatch

	fullRefreshRequired bool

	// noAddedAncestor caches negative ancestor-add checks keyed by the
	// record parent's id. Cleared on every structural addition and on
	// purge so it can never mask a positive.
	noAddedAncestor map[string]bool
}

func newUpdateManager(app *Application) *UpdateManager {
	return &UpdateManager{
		app:             app,
		cur:             newRecordBatch(app),
		noAddedAncestor: make(map[string]bool),
	}
}

// HasPendingChanges reports whether any record is waiting for a pass.
func (m *UpdateManager) HasPendingChanges() bool {
	return len(m.cur.records) > 0
}

// FullRefreshRequired reports whether a full refresh supersedes all
// incremental recording until the next purge.
func (m *UpdateManager) FullRefreshRequired() bool {
	return m.fullRefreshRequired
}

// Record folds one mutation into the pending set. No-op once a full
// refresh is required. Mutations beneath a subtree that is itself newly
// added in this batch are redundant and dropped: the ancestor's eventual
// full render includes them.
func (m *UpdateManager) Record(mut Mutation) {
	if m.fullRefreshRequired {
		return
	}
	if mut.Parent == nil {
		resolutionMiss("record", "mutation %s without parent", mut.Kind)
		return
	}

	switch mut.Kind {
	case StructuralAdd:
		// A new addition can invalidate cached negatives anywhere below it.
		clear(m.noAddedAncestor)
		if m.isAncestorBeingAdded(mut.Parent) {
			return
		}
		rec := m.recordFor(mut.Parent)
		rec.addChild(mut.Child.id)
		m.cur.remember(mut.Child)

	case StructuralRemove:
		if m.isAncestorBeingAdded(mut.Parent) {
			return
		}
		rec := m.recordFor(mut.Parent)
		rec.removeChild(mut.Child.id)
		m.cur.remember(mut.Child)
		m.absorbStaleRecords(rec, mut.Child)

	case LayoutDataChanged:
		if m.isAncestorBeingAdded(mut.Child) {
			return
		}
		rec := m.recordFor(mut.Parent)
		rec.updateLayoutData(mut.Child.id)
		m.cur.remember(mut.Child)

	case ListenerChanged:
		if m.isAncestorBeingAdded(mut.Parent) {
			return
		}
		m.recordFor(mut.Parent).flagListener(mut.Name)

	case PropertyChanged:
		if m.isAncestorBeingAdded(mut.Parent) {
			return
		}
		m.recordFor(mut.Parent).updateProperty(mut.Name, mut.Old, mut.New)
	}

	logger.Debug("recorded mutation", "kind", mut.Kind.String(), "parent", mut.Parent.id)
	m.changed()
}

// RecordFullRefresh escalates to a complete rebuild: a synthetic removal of
// every current root child is recorded, the root record is marked as a full
// refresh and all further incremental recording is suppressed until purge.
// Idempotent within a batch.
func (m *UpdateManager) RecordFullRefresh() {
	if m.fullRefreshRequired {
		return
	}
	root := m.app.root
	rec := m.recordFor(root)
	for _, child := range root.children {
		rec.removeChild(child.id)
		m.cur.remember(child)
	}
	for id, other := range m.cur.records {
		if other == rec {
			continue
		}
		rec.absorb(other, !rec.HasRemovedChild(other.parentID))
		delete(m.cur.records, id)
	}
	rec.fullRefresh = true
	m.fullRefreshRequired = true
	logger.Debug("full refresh recorded", "root", root.id)
	m.changed()
}

// PendingUpdates seals the current batch and returns its records in
// unspecified order. The render engine owns the returned records until it
// calls Purge; sealing again before then would silently lose the in-flight
// batch and is a protocol violation.
func (m *UpdateManager) PendingUpdates() []*UpdateRecord {
	if m.sealed != nil {
		protocolViolation("PendingUpdates", "previous batch was never purged")
	}
	b := m.cur
	m.cur = newRecordBatch(m.app)
	m.sealed = b
	out := make([]*UpdateRecord, 0, len(b.records))
	for _, rec := range b.records {
		out = append(out, rec)
	}
	return out
}

// Purge drops the sealed batch, the full-refresh latch and the ancestor
// cache. Records created since the seal are untouched.
func (m *UpdateManager) Purge() {
	m.sealed = nil
	m.fullRefreshRequired = false
	clear(m.noAddedAncestor)
}

// recordFor returns the single record for the parent, creating it lazily.
func (m *UpdateManager) recordFor(parent *Component) *UpdateRecord {
	rec := m.cur.records[parent.id]
	if rec == nil {
		rec = newUpdateRecord(m.cur, parent.id)
		m.cur.records[parent.id] = rec
		m.cur.remember(parent)
	}
	return rec
}

// absorbStaleRecords folds pending records that target the removed child's
// subtree into the removal record and deletes them: they describe a subtree
// that is about to vanish.
func (m *UpdateManager) absorbStaleRecords(rec *UpdateRecord, removed *Component) {
	for id, other := range m.cur.records {
		if other == rec {
			continue
		}
		q := m.cur.resolve(other.parentID)
		if q == nil {
			continue
		}
		switch {
		case q == removed:
			rec.absorb(other, false)
		case descendantOf(q, removed):
			rec.absorb(other, true)
		default:
			continue
		}
		delete(m.cur.records, id)
		logger.Debug("absorbed stale record", "parent", other.parentID, "into", rec.parentID)
	}
}

// isAncestorBeingAdded walks parent pointers from c, checking whether c or
// any ancestor appears in its own parent's pending addedChildIDs. The
// negative cache is a shortcut only; positives are always re-derived.
func (m *UpdateManager) isAncestorBeingAdded(c *Component) bool {
	if c == nil {
		return false
	}
	if m.noAddedAncestor[c.id] {
		return false
	}
	child := c
	for parent := c.parent; parent != nil; parent = parent.parent {
		if rec := m.cur.records[parent.id]; rec != nil && rec.HasAddedChild(child.id) {
			return true
		}
		child = parent
	}
	m.noAddedAncestor[c.id] = true
	return false
}

func (m *UpdateManager) changed() {
	m.app.notifyPendingChange()
}
