package glint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flush simulates a pass boundary: seal the current batch and purge it.
func flush(app *Application) {
	app.Updates().PendingUpdates()
	app.Updates().Purge()
}

// seal drains the pending set for inspection.
func seal(app *Application) []*UpdateRecord {
	return app.Updates().PendingUpdates()
}

func findRecord(records []*UpdateRecord, parentID string) *UpdateRecord {
	for _, rec := range records {
		if rec.ParentID() == parentID {
			return rec
		}
	}
	return nil
}

func TestPropertyDeltaCoalescing(t *testing.T) {
	app := NewApplication()
	label := NewLabel("original")
	app.Root().Append(label)
	flush(app)

	label.Set(PropText, "first")
	label.Set(PropText, "second")

	records := seal(app)
	rec := findRecord(records, label.ID())
	require.NotNil(t, rec)

	d, ok := rec.PropertyDeltas()[PropText]
	require.True(t, ok)
	assert.Equal(t, "original", d.Old, "old value must be the value prior to the batch")
	assert.Equal(t, "second", d.New, "new value must be the final value")
}

func TestAddRemoveCancelsStructuralAdd(t *testing.T) {
	app := NewApplication()
	flush(app)

	b := NewLabel("b")
	app.Root().Append(b)
	b.Set(PropText, "hi")
	app.Root().Remove(b)

	records := seal(app)
	rec := findRecord(records, app.Root().ID())
	require.NotNil(t, rec)

	assert.Empty(t, rec.AddedChildIDs())
	assert.Equal(t, []string{b.ID()}, rec.RemovedChildIDs())
	assert.Empty(t, rec.PropertyDeltas(), "no property delta recorded against the root")

	// The property change on b itself was suppressed while b was a
	// freshly added child.
	assert.Nil(t, findRecord(records, b.ID()))
}

func TestRemoveThenAddStaysRemoved(t *testing.T) {
	app := NewApplication()
	c := NewLabel("c")
	app.Root().Append(c)
	flush(app)

	app.Root().Remove(c)
	app.Root().Append(c)

	rec := findRecord(seal(app), app.Root().ID())
	require.NotNil(t, rec)
	assert.True(t, rec.HasRemovedChild(c.ID()), "a net removed entry survives re-addition")
	assert.True(t, rec.HasAddedChild(c.ID()))
}

func TestAncestorAddSuppression(t *testing.T) {
	app := NewApplication()
	flush(app)

	panel := NewPanel()
	app.Root().Append(panel)

	inner := NewLabel("inner")
	panel.Append(inner)
	inner.Set(PropText, "changed")
	inner.SetLayoutData(RowLayout{Rows: 2})

	records := seal(app)
	root := findRecord(records, app.Root().ID())
	require.NotNil(t, root)
	assert.Equal(t, []string{panel.ID()}, root.AddedChildIDs())

	assert.Nil(t, findRecord(records, panel.ID()),
		"mutations beneath a freshly added subtree are redundant")
	assert.Nil(t, findRecord(records, inner.ID()))
	assert.Len(t, records, 1)
}

func TestRemovalAbsorbsDescendantUpdates(t *testing.T) {
	app := NewApplication()
	x := NewPanel()
	d := NewPanel()
	leaf := NewLabel("leaf")
	d.Append(leaf)
	x.Append(d)
	app.Root().Append(x)
	flush(app)

	d.Set("badge", 3) // pending record keyed by d
	app.Root().Remove(x)

	records := seal(app)
	rec := findRecord(records, app.Root().ID())
	require.NotNil(t, rec)
	assert.Equal(t, []string{x.ID()}, rec.RemovedChildIDs())
	assert.Contains(t, rec.RemovedDescendantIDs(), d.ID())
	assert.Nil(t, findRecord(records, d.ID()), "stale record deleted")
	assert.Len(t, records, 1)
}

func TestRemovalAbsorbsRecordOfRemovedChildItself(t *testing.T) {
	app := NewApplication()
	x := NewPanel()
	y := NewLabel("y")
	x.Append(y)
	app.Root().Append(x)
	flush(app)

	x.Remove(y) // record keyed by x: removed=[y]
	app.Root().Remove(x)

	records := seal(app)
	rec := findRecord(records, app.Root().ID())
	require.NotNil(t, rec)
	assert.Equal(t, []string{x.ID()}, rec.RemovedChildIDs())
	assert.Contains(t, rec.RemovedDescendantIDs(), y.ID(),
		"the absorbed record's removed children become removed descendants")
	assert.NotContains(t, rec.RemovedDescendantIDs(), x.ID())
	assert.Len(t, records, 1)
}

func TestRemovalStrikesLayoutData(t *testing.T) {
	app := NewApplication()
	c := NewLabel("c")
	app.Root().Append(c)
	flush(app)

	c.SetLayoutData(RowLayout{Rows: 2})
	rec := findRecord(seal(app), app.Root().ID())
	require.NotNil(t, rec)
	assert.Equal(t, []string{c.ID()}, rec.UpdatedLayoutDataChildIDs())
	flushSealed(app)

	c.SetLayoutData(RowLayout{Rows: 3})
	app.Root().Remove(c)
	rec = findRecord(seal(app), app.Root().ID())
	require.NotNil(t, rec)
	assert.Empty(t, rec.UpdatedLayoutDataChildIDs(), "removal strikes the layout entry")
	assert.True(t, rec.HasRemovedChild(c.ID()))
}

// flushSealed purges a batch that was already sealed by the test.
func flushSealed(app *Application) {
	app.Updates().Purge()
}

func TestListenerFlags(t *testing.T) {
	app := NewApplication()
	button := NewButton("b")
	app.Root().Append(button)
	flush(app)

	h := button.AddListener(EventActivate, func(Event) {})
	rec := findRecord(seal(app), button.ID())
	require.NotNil(t, rec)
	assert.True(t, rec.ListenerChanged(EventActivate))
	assert.False(t, rec.ListenerChanged("other"))
	flushSealed(app)

	button.RemoveListener(h)
	rec = findRecord(seal(app), button.ID())
	require.NotNil(t, rec)
	assert.True(t, rec.ListenerChanged(EventActivate))
}

func TestFullRefreshIdempotence(t *testing.T) {
	app := NewApplication()
	a := NewLabel("a")
	b := NewLabel("b")
	app.Root().Append(a, b)
	flush(app)

	app.RequestFullRefresh()
	app.RequestFullRefresh()

	require.True(t, app.Updates().FullRefreshRequired())

	// Incremental recordings are now no-ops until purge.
	a.Set(PropText, "lost")

	records := seal(app)
	require.Len(t, records, 1)
	rec := findRecord(records, app.Root().ID())
	require.NotNil(t, rec)
	assert.True(t, rec.FullRefresh())
	assert.ElementsMatch(t, []string{a.ID(), b.ID()}, rec.RemovedChildIDs())
	assert.Empty(t, rec.PropertyDeltas())

	// Purge releases the latch.
	app.Updates().Purge()
	a.Set(PropText, "recorded")
	assert.NotNil(t, findRecord(seal(app), a.ID()))
}

func TestFullRefreshAbsorbsPendingRecords(t *testing.T) {
	app := NewApplication()
	panel := NewPanel()
	inner := NewLabel("inner")
	panel.Append(inner)
	app.Root().Append(panel)
	flush(app)

	inner.Set(PropText, "dirty")
	app.RequestFullRefresh()

	records := seal(app)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, app.Root().ID(), rec.ParentID())
	assert.Contains(t, rec.RemovedDescendantIDs(), inner.ID())
}

func TestSealIsolatesMidPassRecordings(t *testing.T) {
	app := NewApplication()
	a := NewLabel("a")
	app.Root().Append(a)
	flush(app)

	a.Set(PropText, "one")
	sealed := seal(app)
	require.Len(t, sealed, 1)

	// Recorded "during the pass": must survive the end-of-pass purge.
	a.Set(PropText, "two")
	app.Updates().Purge()

	require.True(t, app.Updates().HasPendingChanges())
	rec := findRecord(seal(app), a.ID())
	require.NotNil(t, rec)
	assert.Equal(t, "two", rec.PropertyDeltas()[PropText].New)
}

func TestSealWhileSealedPanics(t *testing.T) {
	app := NewApplication()
	a := NewLabel("a")
	app.Root().Append(a)

	app.Updates().PendingUpdates()
	require.Panics(t, func() { app.Updates().PendingUpdates() },
		"sealing over an unpurged batch would lose its records")

	app.Updates().Purge()
	a.Set(PropText, "x")
	require.NotPanics(t, func() { app.Updates().PendingUpdates() })
}

func TestPendingChangeNotification(t *testing.T) {
	app := NewApplication()
	a := NewLabel("a")
	app.Root().Append(a)
	flush(app)

	notified := 0
	app.OnPendingChange(func() { notified++ })

	a.Set(PropText, "x")
	a.Set(PropText, "y")
	assert.Equal(t, 2, notified, "every successful recording notifies")

	// Suppressed recordings do not notify.
	panel := NewPanel()
	app.Root().Append(panel)
	before := notified
	child := NewLabel("child")
	panel.Append(child)
	assert.Equal(t, before, notified, "the suppressed nested addition is silent")
}

func TestRemovedChildrenResolveAfterDetach(t *testing.T) {
	app := NewApplication()
	c := NewLabel("c")
	app.Root().Append(c)
	flush(app)

	app.Root().Remove(c)
	require.Nil(t, app.Lookup(c.ID()), "detached components leave the registry")

	rec := findRecord(seal(app), app.Root().ID())
	require.NotNil(t, rec)
	removed := rec.RemovedChildren()
	require.Len(t, removed, 1)
	assert.Same(t, c, removed[0], "records resolve just-detached instances")
}
