package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/vtodo/internal/app"
	"github.com/sandeepkv93/vtodo/internal/commands"
	"github.com/sandeepkv93/vtodo/internal/executor"
	"github.com/sandeepkv93/vtodo/internal/views"
)

func (m Model) Init() tea.Cmd {
	return waitForStatusCmd(m.ctrl.Board().Updates())
}

func waitForStatusCmd(ch <-chan app.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return nil
		}
		return StatusMsg(u)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Prompt.Active {
			if typed.String() == "ctrl+c" {
				m.Quitting = true
				return m, tea.Quit
			}
			return m.handlePromptKey(typed)
		}
		return m.handleBrowseKey(typed)
	case StatusMsg:
		switch typed.Line {
		case app.TranscriptLine:
			m.Transcript = typed.Message
		default:
			m.Status = typed.Message
		}
		// Expiry notices arrive here, so the undo hint must be refreshed.
		m.refresh()
		return m, waitForStatusCmd(m.ctrl.Board().Updates())
	case RefreshMsg:
		m.refresh()
		return m, nil
	}
	return m, nil
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	inItems := m.Snapshot.View.Kind == executor.ItemsView
	switch keyStr := msg.String(); keyStr {
	case "ctrl+c", m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < m.rowCount()-1 {
			m.Cursor++
		}
	case m.Keys.Add:
		m.openPrompt(PromptAdd, "", "")
	case m.Keys.Edit:
		if name, ok := m.selected(); ok {
			m.openPrompt(PromptEdit, name, name)
		}
	case m.Keys.Command:
		m.openPrompt(PromptCommand, "", "")
	case m.Keys.Delete:
		if name, ok := m.selected(); ok {
			intent := commands.IntentDeleteCategory
			if inItems {
				intent = commands.IntentDeleteItem
			}
			m.apply(m.ctrl.HandleCommand(m.ctx, commands.Command{Intent: intent, Primary: name}))
		}
	case m.Keys.Open:
		if !inItems {
			if name, ok := m.selected(); ok {
				m.apply(m.ctrl.HandleCommand(m.ctx, commands.Command{Intent: commands.IntentEnterCategory, Primary: name}))
				m.Cursor = 0
				m.clampCursor()
			}
		}
	case m.Keys.Toggle, "space":
		if inItems {
			if name, ok := m.selected(); ok {
				m.apply(m.ctrl.Toggle(m.ctx, name))
			}
		}
	case m.Keys.Undo:
		m.apply(m.ctrl.HandleCommand(m.ctx, commands.Command{Intent: commands.IntentUndoLastAction}))
	case "esc", m.Keys.Back:
		if inItems {
			m.apply(m.ctrl.HandleCommand(m.ctx, commands.Command{Intent: commands.IntentReturnToCategories}))
			m.Cursor = 0
		}
	}
	return m, nil
}

// apply shows an outcome immediately; the status board delivers the same
// text asynchronously and later dismisses it.
func (m *Model) apply(out app.Outcome) {
	if msg := out.Message(); msg != "" {
		m.Status = msg
	}
	if out.Transcript != "" {
		m.Transcript = out.Transcript
	}
	m.refresh()
}

func (m Model) View() string {
	left := m.renderScreen()
	if m.Prompt.Active {
		left += "\n\n" + views.RenderPrompt(views.PromptData{Label: m.promptLabel(), InputView: m.input.View()})
	}
	right := ""
	if m.HelpVisible {
		right = m.renderHelpView()
	}

	status := ""
	if m.Status != "" {
		status = "status: " + m.Status
	}
	if hint := m.undoHint(); hint != "" {
		if status != "" {
			status += " | "
		}
		status += hint
	}
	transcript := ""
	if m.Transcript != "" {
		transcript = "heard: " + m.Transcript
	}

	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("vtodo | %s", m.Snapshot.View),
		LeftPane:   left,
		RightPane:  right,
		StatusLine: status,
		Transcript: transcript,
		Footer: fmt.Sprintf("keys: %s add | %s edit | %s delete | enter open | space toggle | %s undo | esc back | %s command | %s help | %s quit",
			m.Keys.Add, m.Keys.Edit, m.Keys.Delete, m.Keys.Undo, m.Keys.Command, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderScreen() string {
	if m.Snapshot.View.Kind == executor.ItemsView {
		rows := make([]views.Row, 0, len(m.Snapshot.Items))
		for i, it := range m.Snapshot.Items {
			rows = append(rows, views.Row{Name: it.Name, Completed: it.Completed, Selected: i == m.Cursor})
		}
		return views.RenderListPanel(views.ListPanelData{
			Title:      fmt.Sprintf("items in %s", m.Snapshot.View.CategoryName),
			Rows:       rows,
			Checkboxes: true,
			Actions:    "[a]dd [e]dit [d]elete [space]toggle [esc]back",
		})
	}
	rows := make([]views.Row, 0, len(m.Snapshot.Categories))
	for i, c := range m.Snapshot.Categories {
		rows = append(rows, views.Row{Name: c.Name, Selected: i == m.Cursor})
	}
	return views.RenderListPanel(views.ListPanelData{
		Title:   "categories",
		Rows:    rows,
		Actions: "[a]dd [e]dit [d]elete [enter]open",
	})
}

func (m Model) undoHint() string {
	if m.Snapshot.Undo == nil {
		return ""
	}
	return views.RenderUndoHint(views.UndoData{
		Description: m.Snapshot.Undo.Description,
		Remaining:   m.Snapshot.Undo.Remaining,
	})
}
