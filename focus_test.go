package glint

import "testing"

func TestFocusManager(t *testing.T) {
	newRig := func() (*Application, *FocusManager, *Component, *Component) {
		app := NewApplication()
		b1, b2 := NewButton("one"), NewButton("two")
		app.Root().Append(NewLabel("plain"), b1, NewPanel(b2))
		return app, NewFocusManager(app), b1, b2
	}

	t.Run("NextCyclesInTreeOrder", func(t *testing.T) {
		app, fm, b1, b2 := newRig()
		fm.Next()
		if app.Focused() != b1 {
			t.Errorf("first stop not focused")
		}
		fm.Next()
		if app.Focused() != b2 {
			t.Errorf("nested stop not reached")
		}
		fm.Next()
		if app.Focused() != b1 {
			t.Errorf("traversal must wrap around")
		}
	})

	t.Run("PrevWraps", func(t *testing.T) {
		app, fm, _, b2 := newRig()
		fm.Prev()
		if app.Focused() != b2 {
			t.Errorf("prev from nothing must land on the last stop")
		}
	})

	t.Run("NoStopsClearsFocus", func(t *testing.T) {
		app := NewApplication()
		app.Root().Append(NewLabel("only"))
		fm := NewFocusManager(app)
		fm.Next()
		if app.Focused() != nil {
			t.Errorf("focus must clear when nothing is focusable")
		}
	})

	t.Run("ActivateFiresOnFocused", func(t *testing.T) {
		app, fm, b1, _ := newRig()
		fired := false
		b1.AddListener(EventActivate, func(Event) { fired = true })
		app.SetFocus(b1)
		fm.Activate()
		if !fired {
			t.Errorf("activate must fire on the focused component")
		}
	})

	t.Run("FocusChangeSchedulesPass", func(t *testing.T) {
		app, fm, _, _ := newRig()
		flush(app)
		fm.Next()
		if !app.Updates().HasPendingChanges() {
			t.Errorf("a focus change alone must schedule a render pass")
		}
	})
}
