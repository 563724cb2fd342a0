package glint

import "github.com/charmbracelet/lipgloss"

// Well-known component properties consumed by the terminal backend.
const (
	// PropKind selects the adapter the backend creates for a component.
	PropKind = "kind"
	// PropText is the visible text of labels and buttons.
	PropText = "text"
	// PropFocusable marks a component as a focus traversal stop.
	PropFocusable = "focusable"
)

// Component kinds understood by the terminal backend.
const (
	KindRoot   = "root"
	KindPanel  = "panel"
	KindLabel  = "label"
	KindButton = "button"
)

// EventActivate is fired on a button when it is activated.
const EventActivate = "activate"

// NewPanel creates a vertical stack container.
func NewPanel(children ...*Component) *Component {
	p := NewComponent().Set(PropKind, KindPanel)
	return p.Append(children...)
}

// NewLabel creates a single-line text component.
func NewLabel(text string) *Component {
	return NewComponent().Set(PropKind, KindLabel).Set(PropText, text)
}

// NewButton creates a focusable, activatable text component.
func NewButton(text string) *Component {
	return NewComponent().
		Set(PropKind, KindButton).
		Set(PropText, text).
		Set(PropFocusable, true)
}

// Theme bundles the lipgloss styles the terminal backend renders with.
type Theme struct {
	Base    lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Focused lipgloss.Style
}

// ThemeDark is the default theme: light text, cyan accents, reverse video
// for the focused component.
var ThemeDark = Theme{
	Base:    lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	Focused: lipgloss.NewStyle().Reverse(true),
}
