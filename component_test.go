package glint

import "testing"

func expectPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("expected a protocol violation panic")
		}
	}()
	fn()
}

func TestComponentTree(t *testing.T) {
	t.Run("AppendSetsParent", func(t *testing.T) {
		p := NewComponent()
		a, b := NewComponent(), NewComponent()
		p.Append(a, b)

		if p.ChildCount() != 2 {
			t.Errorf("expected 2 children, got %d", p.ChildCount())
		}
		if a.Parent() != p || b.Parent() != p {
			t.Errorf("parent pointer and child list must agree")
		}
		if p.ChildAt(0) != a || p.ChildAt(1) != b {
			t.Errorf("child order not preserved")
		}
	})

	t.Run("InsertClampsIndex", func(t *testing.T) {
		p := NewComponent()
		mid := NewComponent()
		p.Append(mid)

		first, last := NewComponent(), NewComponent()
		p.Insert(-5, first)
		p.Insert(99, last)

		if p.ChildAt(0) != first || p.ChildAt(2) != last {
			t.Errorf("insert indexes must clamp to the valid range")
		}
	})

	t.Run("ReparentRemovesFromOldParent", func(t *testing.T) {
		p1, p2 := NewComponent(), NewComponent()
		c := NewComponent()
		p1.Append(c)
		p2.Append(c)

		if p1.ChildCount() != 0 {
			t.Errorf("old parent still holds the child")
		}
		if c.Parent() != p2 {
			t.Errorf("child not owned by new parent")
		}
	})

	t.Run("RemoveForeignChildPanics", func(t *testing.T) {
		p := NewComponent()
		expectPanic(t, func() { p.Remove(NewComponent()) })
	})

	t.Run("CycleInsertPanics", func(t *testing.T) {
		p := NewComponent()
		c := NewComponent()
		p.Append(c)
		expectPanic(t, func() { c.Append(p) })
	})

	t.Run("Depth", func(t *testing.T) {
		a, b, c := NewComponent(), NewComponent(), NewComponent()
		a.Append(b)
		b.Append(c)
		if d := c.Depth(); d != 2 {
			t.Errorf("expected depth 2, got %d", d)
		}
	})
}

func TestAttachDetach(t *testing.T) {
	t.Run("AttachAssignsIDsAndRegisters", func(t *testing.T) {
		app := NewApplication()
		panel := NewPanel(NewLabel("x"))
		app.Root().Append(panel)

		if panel.ID() == "" {
			t.Errorf("attach must assign an external id")
		}
		if app.Lookup(panel.ID()) != panel {
			t.Errorf("attached component missing from the registry")
		}
		inner := panel.ChildAt(0)
		if inner.Application() != app || app.Lookup(inner.ID()) != inner {
			t.Errorf("attach must recurse over the subtree")
		}
	})

	t.Run("DetachUnregistersAndNotifies", func(t *testing.T) {
		app := NewApplication()
		c := NewLabel("c")
		app.Root().Append(c)

		detached := false
		c.AddListener(EventDetach, func(ev Event) {
			if ev.Source != c {
				t.Errorf("detach event source mismatch")
			}
			detached = true
		})
		app.Root().Remove(c)

		if !detached {
			t.Errorf("detach listeners must be notified")
		}
		if app.Lookup(c.ID()) != nil {
			t.Errorf("detached component still registered")
		}
		if c.Application() != nil {
			t.Errorf("application pointer must clear on detach")
		}
		if c.ID() == "" {
			t.Errorf("external id survives detach")
		}
	})

	t.Run("DuplicateIDPanics", func(t *testing.T) {
		app := NewApplication()
		a := NewComponent()
		a.SetID("dup")
		app.Root().Append(a)

		b := NewComponent()
		b.SetID("dup")
		expectPanic(t, func() { app.Root().Append(b) })
	})

	t.Run("SetIDAfterAttachPanics", func(t *testing.T) {
		app := NewApplication()
		c := NewComponent()
		app.Root().Append(c)
		expectPanic(t, func() { c.SetID("late") })
	})

	t.Run("DetachClearsFocus", func(t *testing.T) {
		app := NewApplication()
		b := NewButton("b")
		app.Root().Append(b)
		app.SetFocus(b)
		app.Root().Remove(b)
		if app.Focused() != nil {
			t.Errorf("focus must clear when the focused subtree detaches")
		}
	})
}

func TestListeners(t *testing.T) {
	t.Run("FireInRegistrationOrder", func(t *testing.T) {
		c := NewComponent()
		var got []int
		c.AddListener("ev", func(Event) { got = append(got, 1) })
		c.AddListener("ev", func(Event) { got = append(got, 2) })
		c.Fire("ev", nil)

		if len(got) != 2 || got[0] != 1 || got[1] != 2 {
			t.Errorf("expected [1 2], got %v", got)
		}
	})

	t.Run("RemoveByHandle", func(t *testing.T) {
		c := NewComponent()
		fired := 0
		h := c.AddListener("ev", func(Event) { fired++ })
		c.RemoveListener(h)
		c.Fire("ev", nil)
		if fired != 0 {
			t.Errorf("removed listener still fired")
		}
	})

	t.Run("EmptyEventTypePanics", func(t *testing.T) {
		c := NewComponent()
		expectPanic(t, func() { c.Fire("", nil) })
		expectPanic(t, func() { c.AddListener("", func(Event) {}) })
	})
}

func TestForeignMutationPanics(t *testing.T) {
	app1 := NewApplication()
	app2 := NewApplication()
	c := NewLabel("c")
	app1.Root().Append(c)

	expectPanic(t, func() { app2.SetFocus(c) })
}
