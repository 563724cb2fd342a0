package glint

import "slices"

// FocusManager cycles keyboard focus across focusable components in
// document order. It only moves the Application's focus state; the render
// pass reapplies it through the focused component's adapter.
type FocusManager struct {
	app *Application
}

// NewFocusManager creates a focus manager for the application.
func NewFocusManager(app *Application) *FocusManager {
	return &FocusManager{app: app}
}

// stops collects the current traversal ring: every attached component with
// a true focusable property, in tree order.
func (fm *FocusManager) stops() []*Component {
	var out []*Component
	fm.app.root.walk(func(c *Component) {
		if f, _ := c.Property(PropFocusable).(bool); f {
			out = append(out, c)
		}
	})
	return out
}

// Next moves focus to the following stop, wrapping around. With no stops,
// focus is cleared.
func (fm *FocusManager) Next() { fm.move(1) }

// Prev moves focus to the preceding stop, wrapping around.
func (fm *FocusManager) Prev() { fm.move(-1) }

func (fm *FocusManager) move(dir int) {
	stops := fm.stops()
	if len(stops) == 0 {
		fm.app.SetFocus(nil)
		return
	}
	i := slices.Index(stops, fm.app.Focused())
	if i < 0 {
		if dir > 0 {
			fm.app.SetFocus(stops[0])
		} else {
			fm.app.SetFocus(stops[len(stops)-1])
		}
		return
	}
	fm.app.SetFocus(stops[((i+dir)%len(stops)+len(stops))%len(stops)])
}

// Activate fires the activate event on the focused component. No-op when
// nothing is focused.
func (fm *FocusManager) Activate() {
	if f := fm.app.Focused(); f != nil {
		f.Fire(EventActivate, nil)
	}
}
