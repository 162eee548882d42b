package views

import (
	"fmt"
	"strings"
	"time"
)

type Row struct {
	Name      string
	Completed bool
	Selected  bool
}

type ListPanelData struct {
	Title string
	Rows  []Row
	// Checkboxes renders the completion flag of each row.
	Checkboxes bool
	Actions    string
}

type PromptData struct {
	Label     string
	InputView string
}

type HelpPanelData struct {
	Screen   string
	Bindings []string
	HelpView string
}

type UndoData struct {
	Description string
	Remaining   time.Duration
}

func RenderListPanel(data ListPanelData) string {
	var b strings.Builder
	b.WriteString(data.Title + ":\n")
	if data.Actions != "" {
		b.WriteString("actions: " + data.Actions + "\n")
	}
	if len(data.Rows) == 0 {
		b.WriteString("  (empty)")
		return b.String()
	}
	for _, row := range data.Rows {
		cursor := " "
		if row.Selected {
			cursor = ">"
		}
		name := row.Name
		if data.Checkboxes {
			box := "[ ]"
			if row.Completed {
				box = "[x]"
				name = doneStyle.Render(name)
			}
			b.WriteString(fmt.Sprintf("%s %s %s\n", cursor, box, name))
			continue
		}
		b.WriteString(fmt.Sprintf("%s %s\n", cursor, name))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderPrompt(data PromptData) string {
	return fmt.Sprintf("%s %s", data.Label, data.InputView)
}

func RenderUndoHint(data UndoData) string {
	if data.Description == "" {
		return ""
	}
	secs := int(data.Remaining.Round(time.Second) / time.Second)
	return fmt.Sprintf("undo: %s (%ds left, press u)", data.Description, secs)
}

// RenderHelpPanel lists the bindings for the current screen as markdown.
func RenderHelpPanel(data HelpPanelData) string {
	var md strings.Builder
	md.WriteString(fmt.Sprintf("## %s\n\n", data.Screen))
	for _, line := range data.Bindings {
		md.WriteString("- " + line + "\n")
	}
	out := RenderMarkdown(md.String())
	if data.HelpView != "" {
		out += "\n" + data.HelpView
	}
	return out
}
