package glint

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// renderPassMsg asks the loop to run one render pass.
type renderPassMsg struct{}

// tickMsg carries the periodic mutation hook.
type tickMsg time.Time

// Program hosts an application inside a bubbletea loop. The loop is the
// cooperative scheduler: every recorded mutation schedules at most one
// renderPassMsg, and the pass runs to completion inside a single Update
// turn, so recording and rendering never interleave.
type Program struct {
	app     *Application
	backend *TermBackend
	engine  *Engine
	focus   *FocusManager

	prog      *tea.Program
	scheduled atomic.Bool

	tickEvery time.Duration
	onTick    func(*Application)
	onKey     func(*Application, tea.KeyMsg) bool

	err error
}

// ProgramOption configures a Program.
type ProgramOption func(*Program)

// WithTick invokes fn on the application every interval, inside the loop
// turn, so its mutations batch into one pass.
func WithTick(interval time.Duration, fn func(*Application)) ProgramOption {
	return func(p *Program) {
		p.tickEvery = interval
		p.onTick = fn
	}
}

// WithKeyHandler installs a fallback key handler. It runs after the
// built-in bindings and reports whether it consumed the key.
func WithKeyHandler(fn func(*Application, tea.KeyMsg) bool) ProgramOption {
	return func(p *Program) { p.onKey = fn }
}

// NewProgram wires an application and a terminal backend into a bubbletea
// program.
func NewProgram(app *Application, backend *TermBackend, opts ...ProgramOption) *Program {
	p := &Program{
		app:     app,
		backend: backend,
		engine:  NewEngine(app, backend),
		focus:   NewFocusManager(app),
	}
	for _, o := range opts {
		o(p)
	}
	p.prog = tea.NewProgram(&programModel{p: p}, tea.WithAltScreen())
	app.OnPendingChange(p.schedule)
	return p
}

// Engine exposes the render engine, mainly for hosts driving passes
// manually.
func (p *Program) Engine() *Engine { return p.engine }

// Focus exposes the focus manager.
func (p *Program) Focus() *FocusManager { return p.focus }

// Run blocks until the program exits and returns the first render pass
// error, if any.
func (p *Program) Run() error {
	_, err := p.prog.Run()
	p.app.Close()
	if p.err != nil {
		return p.err
	}
	return err
}

// schedule coalesces pending-change notifications into one render pass per
// loop turn.
func (p *Program) schedule() {
	if p.scheduled.CompareAndSwap(false, true) {
		go p.prog.Send(renderPassMsg{})
	}
}

type programModel struct {
	p *Program
}

func (m *programModel) Init() tea.Cmd {
	cmds := []tea.Cmd{func() tea.Msg { return renderPassMsg{} }}
	if m.p.onTick != nil {
		cmds = append(cmds, tick(m.p.tickEvery))
	}
	return tea.Batch(cmds...)
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *programModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	p := m.p
	switch msg := msg.(type) {
	case renderPassMsg:
		p.scheduled.Store(false)
		if err := p.engine.ProcessPendingUpdates(); err != nil {
			// A failed pass leaves the update log inconsistent; the only
			// safe move is to fail the session.
			p.err = err
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		if p.onTick != nil {
			p.onTick(p.app)
			return m, tick(p.tickEvery)
		}
		return m, nil

	case tea.WindowSizeMsg:
		p.backend.Resize(msg.Width, msg.Height)
		p.app.RequestFullRefresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab":
			p.focus.Next()
		case "shift+tab":
			p.focus.Prev()
		case "enter", " ":
			p.focus.Activate()
		default:
			if p.onKey != nil {
				p.onKey(p.app, msg)
			}
		}
		return m, nil
	}
	return m, nil
}

func (m *programModel) View() string {
	return m.p.backend.View()
}
