package views

import (
	"strings"
	"testing"
	"time"
)

func TestRenderListPanel(t *testing.T) {
	out := RenderListPanel(ListPanelData{
		Title: "categories",
		Rows:  []Row{{Name: "Work"}, {Name: "Home", Selected: true}},
	})
	if !strings.Contains(out, "  Work") || !strings.Contains(out, "> Home") {
		t.Fatalf("unexpected panel:\n%s", out)
	}

	out = RenderListPanel(ListPanelData{
		Title:      "items",
		Rows:       []Row{{Name: "milk"}, {Name: "bread", Completed: true}},
		Checkboxes: true,
	})
	if !strings.Contains(out, "[ ] milk") || !strings.Contains(out, "[x]") {
		t.Fatalf("unexpected checkboxes:\n%s", out)
	}

	if out := RenderListPanel(ListPanelData{Title: "items"}); !strings.Contains(out, "(empty)") {
		t.Fatalf("expected empty marker, got %q", out)
	}
}

func TestRenderUndoHint(t *testing.T) {
	if got := RenderUndoHint(UndoData{}); got != "" {
		t.Fatalf("expected no hint, got %q", got)
	}
	got := RenderUndoHint(UndoData{Description: `add category "Work"`, Remaining: 9600 * time.Millisecond})
	if got != `undo: add category "Work" (10s left, press u)` {
		t.Fatalf("unexpected hint %q", got)
	}
}

func TestRenderAppOmitsEmptyTranscript(t *testing.T) {
	out := RenderApp(AppData{Header: "vtodo", LeftPane: "x", StatusLine: "status: ok"})
	if !strings.Contains(out, "vtodo") || !strings.Contains(out, "status: ok") {
		t.Fatalf("unexpected app view:\n%s", out)
	}
	if isErrorStatus("status: ok") || !isErrorStatus(`item "x" not found`) {
		t.Fatal("error status detection mismatch")
	}
}
