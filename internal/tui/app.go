// internal/tui/app.go
//
// Terminal front end for the weekly schedule board. The bubbletea model only
// tracks the cursor and the staff id input; everything else comes from the
// controller's Board snapshot, so rendering is a pure function of it.

package tui

import (
	"context"
	"errors"
	"sync"

	"github.com/arnavshah/shiftboard/pkg/controller"
	"github.com/arnavshah/shiftboard/pkg/engine"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// StatusSink collects status channel messages from the controller so the
// model can show the latest one.
type StatusSink struct {
	mu   sync.Mutex
	last string
}

func NewStatusSink() *StatusSink { return &StatusSink{} }

// Push records msg. It is safe to call from any goroutine.
func (s *StatusSink) Push(msg string) {
	s.mu.Lock()
	s.last = msg
	s.mu.Unlock()
}

// Last returns the most recent message.
func (s *StatusSink) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// doneMsg reports the end of an async controller call.
type doneMsg struct {
	op  string
	err error
}

// App is the bubbletea model.
type App struct {
	ctrl   *controller.Controller
	status *StatusSink

	day, slot int
	entry     int
	editing   bool
	input     textinput.Model
	busy      int
	lastErr   string

	width  int
	height int
}

// New builds the model. status should be the sink wired into the
// controller's WithStatus option.
func New(ctrl *controller.Controller, status *StatusSink) *App {
	ti := textinput.New()
	ti.Placeholder = "staff id"
	ti.CharLimit = 12
	ti.Width = 14
	ti.Cursor.SetMode(cursor.CursorStatic)
	if status == nil {
		status = NewStatusSink()
	}
	return &App{ctrl: ctrl, status: status, input: ti}
}

// Init loads the current week.
func (a *App) Init() tea.Cmd {
	return a.run("load", a.ctrl.Load)
}

func (a *App) run(op string, fn func(context.Context) error) tea.Cmd {
	a.busy++
	return func() tea.Msg {
		return doneMsg{op: op, err: fn(context.Background())}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case doneMsg:
		if a.busy > 0 {
			a.busy--
		}
		a.lastErr = ""
		if msg.err != nil && !errors.Is(msg.err, controller.ErrStaleWeek) && !errors.Is(msg.err, engine.ErrPending) {
			a.lastErr = msg.err.Error()
		}
		a.clampCursor()
		return a, nil

	case tea.KeyMsg:
		if a.editing {
			return a.updateInput(msg)
		}
		return a.handleKey(msg)
	}
	return a, nil
}

func (a *App) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	date, slot, ok := a.selected()
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.editing = false
		a.input.Blur()
		return a, nil
	case "enter":
		a.editing = false
		a.input.Blur()
		if !ok {
			return a, nil
		}
		a.ctrl.SetInput(date, slot, a.input.Value())
		if !enabled(a.ctrl.Board().Cell(date, slot).Assign) {
			return a, nil
		}
		return a, a.run("assign", func(ctx context.Context) error {
			return a.ctrl.AssignFromInput(ctx, date, slot)
		})
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if ok {
		a.ctrl.SetInput(date, slot, a.input.Value())
	}
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	board := a.ctrl.Board()
	switch msg.String() {
	case "ctrl+c", "q":
		return a, tea.Quit
	case "left", "h":
		if a.day > 0 {
			a.day--
			a.entry = 0
		}
	case "right", "l":
		if a.day < len(board.Days)-1 {
			a.day++
			a.entry = 0
		}
	case "up", "k":
		if a.slot > 0 {
			a.slot--
			a.entry = 0
		}
	case "down", "j":
		if a.slot < len(board.Slots)-1 {
			a.slot++
			a.entry = 0
		}
	case "tab":
		if date, slot, ok := a.selected(); ok {
			if n := len(board.Cell(date, slot).Entries); n > 0 {
				a.entry = (a.entry + 1) % n
			}
		}
	case "[":
		return a, a.run("load", a.ctrl.PreviousWeek)
	case "]":
		return a, a.run("load", a.ctrl.NextWeek)
	case "t":
		return a, a.run("load", a.ctrl.Today)
	case "r":
		return a, a.run("load", a.ctrl.Load)
	case "c":
		if date, slot, ok := a.selected(); ok && enabled(board.Cell(date, slot).Claim) {
			return a, a.run("claim", func(ctx context.Context) error {
				return a.ctrl.Claim(ctx, date, slot)
			})
		}
	case "m":
		if date, slot, ok := a.selected(); ok && enabled(board.Cell(date, slot).AssignMe) {
			return a, a.run("assign", func(ctx context.Context) error {
				return a.ctrl.AssignMe(ctx, date, slot)
			})
		}
	case "a":
		if date, slot, ok := a.selected(); ok && enabled(board.Cell(date, slot).Assign) {
			a.editing = true
			a.input.SetValue(board.Input(date, slot))
			return a, a.input.Focus()
		}
	case "x":
		if date, slot, ok := a.selected(); ok {
			entries := board.Cell(date, slot).Entries
			if a.entry < len(entries) && enabled(entries[a.entry].Remove) {
				target := entries[a.entry].Assignment
				return a, a.run("remove", func(ctx context.Context) error {
					return a.ctrl.Remove(ctx, target)
				})
			}
		}
	}
	return a, nil
}

// enabled reports whether a cell offers btn and it can be pressed.
func enabled(btn *engine.Button) bool {
	return btn != nil && !btn.Disabled
}

// selected returns the date and slot under the cursor.
func (a *App) selected() (string, string, bool) {
	board := a.ctrl.Board()
	if a.day >= len(board.Days) || a.slot >= len(board.Slots) {
		return "", "", false
	}
	return board.Days[a.day].ISO, board.Slots[a.slot].Key, true
}

func (a *App) clampCursor() {
	board := a.ctrl.Board()
	if a.day >= len(board.Days) {
		a.day = max(0, len(board.Days)-1)
	}
	if a.slot >= len(board.Slots) {
		a.slot = max(0, len(board.Slots)-1)
	}
	if date, slot, ok := a.selected(); ok {
		if n := len(board.Cell(date, slot).Entries); a.entry >= n {
			a.entry = 0
		}
	}
}
