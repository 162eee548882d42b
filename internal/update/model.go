package update

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/sandeepkv93/vtodo/internal/app"
	"github.com/sandeepkv93/vtodo/internal/executor"
)

type PromptKind string

const (
	PromptAdd     PromptKind = "add"
	PromptEdit    PromptKind = "edit"
	PromptCommand PromptKind = "command"
)

// PromptState is the single-line input opened by a, e and :.
type PromptState struct {
	Active bool
	Kind   PromptKind
	// Target is the name being renamed by an edit prompt.
	Target string
}

type GlobalKeyMap struct {
	Add     string
	Edit    string
	Delete  string
	Open    string
	Toggle  string
	Undo    string
	Back    string
	Command string
	Help    string
	Quit    string
}

type Model struct {
	Snapshot    executor.Snapshot
	Cursor      int
	Prompt      PromptState
	HelpVisible bool
	Status      string
	Transcript  string
	Keys        GlobalKeyMap
	Quitting    bool

	ctrl      *app.Controller
	ctx       context.Context
	input     textinput.Model
	helpModel help.Model
}

// StatusMsg carries a status board change into the program.
type StatusMsg app.Update

// RefreshMsg reloads the snapshot from the executor.
type RefreshMsg struct{}

func DefaultKeys() GlobalKeyMap {
	return GlobalKeyMap{
		Add:     "a",
		Edit:    "e",
		Delete:  "d",
		Open:    "enter",
		Toggle:  " ",
		Undo:    "u",
		Back:    "b",
		Command: ":",
		Help:    "?",
		Quit:    "q",
	}
}

// NewModel builds the TUI over ctrl. ctx bounds every store call made from
// key handlers.
func NewModel(ctx context.Context, ctrl *app.Controller) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	m := Model{
		Keys: DefaultKeys(),
		ctrl: ctrl,
		ctx:  ctx,
	}
	m.initBubbleComponents()
	m.refresh()
	return m
}

func (m *Model) initBubbleComponents() {
	ti := textinput.New()
	ti.CharLimit = 120
	ti.Width = 40
	m.input = ti
	m.helpModel = help.New()
}

func (m *Model) refresh() {
	m.Snapshot = m.ctrl.Executor().Snapshot()
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := m.rowCount()
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m Model) rowCount() int {
	if m.Snapshot.View.Kind == executor.ItemsView {
		return len(m.Snapshot.Items)
	}
	return len(m.Snapshot.Categories)
}

// selected returns the name under the cursor in the current screen.
func (m Model) selected() (string, bool) {
	if m.Snapshot.View.Kind == executor.ItemsView {
		if m.Cursor < len(m.Snapshot.Items) {
			return m.Snapshot.Items[m.Cursor].Name, true
		}
		return "", false
	}
	if m.Cursor < len(m.Snapshot.Categories) {
		return m.Snapshot.Categories[m.Cursor].Name, true
	}
	return "", false
}
