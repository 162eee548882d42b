package app

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sandeepkv93/vtodo/internal/commands"
	"github.com/sandeepkv93/vtodo/internal/executor"
)

// These run the production zh-TW pipeline: OpenCC s2t conversion and the
// gse dictionary segmenter seeded with the command vocabulary.

func TestChinesePipelineNormalizesSimplifiedInput(t *testing.T) {
	n, p := NewPipeline("zh-TW", nil, nil)

	// s2t maps 为 to 爲; the parser unifies 爲 with the 為 connector.
	if got := n.Normalize("修改分類購物为食物"); got != "修改分類購物爲食物" {
		t.Fatalf("unexpected canonical text %q", got)
	}
	cmd := p.Parse(n.Tokens("修改分類購物为食物"))
	if cmd.Intent != commands.IntentEditCategory || cmd.Primary != "購物" || cmd.Secondary != "食物" {
		t.Fatalf("unexpected edit command %s", cmd)
	}

	// gse keeps 買三瓶 as one word, so the numeral inside it is not a token
	// of its own and stays as spoken.
	tokens := n.Tokens("新增项目买三瓶牛奶")
	want := []string{"新增", "項目", "買三瓶", "牛奶"}
	if diff := cmp.Diff(want, tokens); diff != "" {
		t.Fatalf("unexpected tokens (-want +got):\n%s", diff)
	}
	cmd = p.Parse(tokens)
	if cmd.Intent != commands.IntentAddItem || cmd.Primary != "買三瓶牛奶" {
		t.Fatalf("unexpected add item command %s", cmd)
	}

	// Clock phrases collapse before segmentation, whatever the cut.
	if got := n.Normalize("新增项目四点三十分开会"); got != "新增項目4:30開會" {
		t.Fatalf("unexpected canonical time %q", got)
	}
	cmd = p.Parse(n.Tokens("新增项目四点三十分开会"))
	if cmd.Intent != commands.IntentAddItem || cmd.Primary != "4:30開會" {
		t.Fatalf("unexpected time item command %s", cmd)
	}
}

func TestChinesePipelineDrivesExecutor(t *testing.T) {
	n, p := NewPipeline("zh-TW", nil, nil)
	f := setupController(t, n, p)
	ctx := context.Background()

	steps := []struct {
		spoken string
		intent commands.Intent
	}{
		{"新增分类购物", commands.IntentAddCategory},
		{"进入分类购物", commands.IntentEnterCategory},
		{"新增项目四点三十分开会", commands.IntentAddItem},
		{"返回首页", commands.IntentReturnToCategories},
		{"修改分類購物为食物", commands.IntentEditCategory},
	}
	for _, step := range steps {
		out := f.ctrl.HandleTranscript(ctx, step.spoken)
		if out.Err != nil {
			t.Fatalf("%s: %v", step.spoken, out.Err)
		}
		if out.Command.Intent != step.intent {
			t.Fatalf("%s: got intent %s want %s", step.spoken, out.Command.Intent, step.intent)
		}
	}

	snap := f.exec.Snapshot()
	if snap.View.Kind != executor.CategoriesView {
		t.Fatalf("expected categories view, got %s", snap.View)
	}
	if len(snap.Categories) != 1 || snap.Categories[0].Name != "食物" {
		t.Fatalf("unexpected categories %+v", snap.Categories)
	}

	out := f.ctrl.HandleTranscript(ctx, "撤销")
	if out.Err != nil || out.Command.Intent != commands.IntentUndoLastAction {
		t.Fatalf("undo: cmd=%s err=%v", out.Command, out.Err)
	}
	if name := f.exec.Snapshot().Categories[0].Name; name != "購物" {
		t.Fatalf("expected rename undone, got %q", name)
	}
}
