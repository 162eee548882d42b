package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/vtodo/internal/commands"
	"github.com/sandeepkv93/vtodo/internal/executor"
)

func (m *Model) openPrompt(kind PromptKind, target, initial string) {
	m.Prompt = PromptState{Active: true, Kind: kind, Target: target}
	m.input.SetValue(initial)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) closePrompt() {
	m.Prompt = PromptState{}
	m.input.SetValue("")
	m.input.Blur()
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePrompt()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		prompt := m.Prompt
		m.closePrompt()
		if value != "" {
			m.submitPrompt(prompt, value)
		}
		return m, nil
	}
	if msg.Type == tea.KeyRunes {
		m.input.SetValue(m.input.Value() + string(msg.Runes))
		m.input.CursorEnd()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submitPrompt(p PromptState, value string) {
	inItems := m.Snapshot.View.Kind == executor.ItemsView
	switch p.Kind {
	case PromptAdd:
		intent := commands.IntentAddCategory
		if inItems {
			intent = commands.IntentAddItem
		}
		m.apply(m.ctrl.HandleCommand(m.ctx, commands.Command{Intent: intent, Primary: value, Raw: value}))
	case PromptEdit:
		if value == p.Target {
			return
		}
		intent := commands.IntentEditCategory
		if inItems {
			intent = commands.IntentEditItem
		}
		m.apply(m.ctrl.HandleCommand(m.ctx, commands.Command{Intent: intent, Primary: p.Target, Secondary: value, Raw: value}))
	case PromptCommand:
		m.apply(m.ctrl.HandleTranscript(m.ctx, value))
	}
}

func (m Model) promptLabel() string {
	inItems := m.Snapshot.View.Kind == executor.ItemsView
	switch m.Prompt.Kind {
	case PromptAdd:
		if inItems {
			return "new item:"
		}
		return "new category:"
	case PromptEdit:
		return "rename " + m.Prompt.Target + " to:"
	default:
		return "say:"
	}
}
