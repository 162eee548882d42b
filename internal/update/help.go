package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/vtodo/internal/executor"
	"github.com/sandeepkv93/vtodo/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.screenBindings() {
		plain = append(plain, fmt.Sprintf("`%s` %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		Screen:   m.Snapshot.View.String(),
		Bindings: plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Undo, Action: "undo the last change"},
		{Key: m.Keys.Command, Action: "type a spoken command"},
		{Key: m.Keys.Help, Action: "toggle help"},
		{Key: m.Keys.Quit, Action: "quit"},
	}
}

func (m Model) screenBindings() []KeyBinding {
	if m.Snapshot.View.Kind == executor.ItemsView {
		return []KeyBinding{
			{Key: m.Keys.Add, Action: "add item"},
			{Key: m.Keys.Edit, Action: "rename item"},
			{Key: m.Keys.Delete, Action: "delete item"},
			{Key: "space", Action: "toggle done"},
			{Key: "esc/" + m.Keys.Back, Action: "back to categories"},
			{Key: "j/k", Action: "move cursor"},
		}
	}
	return []KeyBinding{
		{Key: m.Keys.Add, Action: "add category"},
		{Key: m.Keys.Edit, Action: "rename category"},
		{Key: m.Keys.Delete, Action: "delete category"},
		{Key: "enter", Action: "open category"},
		{Key: "j/k", Action: "move cursor"},
	}
}

func (m Model) helpBindings() []key.Binding {
	all := append(m.screenBindings(), m.globalBindings()...)
	out := make([]key.Binding, 0, len(all))
	for _, kb := range all {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
