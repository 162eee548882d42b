package app

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sandeepkv93/vtodo/internal/commands"
	"github.com/sandeepkv93/vtodo/internal/executor"
	"github.com/sandeepkv93/vtodo/internal/normalize"
	"github.com/sandeepkv93/vtodo/internal/scheduler"
	"github.com/sandeepkv93/vtodo/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var epoch = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

type fixture struct {
	ctrl  *Controller
	board *StatusBoard
	exec  *executor.Executor
	clock *scheduler.ManualClock
}

func setupController(t *testing.T, n *normalize.Normalizer, p *commands.Parser) fixture {
	t.Helper()
	repo, err := storage.Open(storage.DriverCGO, filepath.Join(t.TempDir(), "app-test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	clock := scheduler.NewManualClock(epoch)
	exec := executor.New(repo, executor.WithClock(clock), executor.WithUndoWindow(15*time.Second))
	t.Cleanup(exec.Close)
	if err := exec.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	board := NewStatusBoard(clock, 2*time.Second, 16)
	t.Cleanup(board.Close)

	return fixture{ctrl: NewController(n, p, exec, board), board: board, exec: exec, clock: clock}
}

func englishController(t *testing.T) fixture {
	t.Helper()
	n, p := NewPipeline("en", nil, nil)
	return setupController(t, n, p)
}

// runForwarder starts the status forwarder and stops it at cleanup.
func runForwarder(t *testing.T, ctrl *Controller) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctrl.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
}

func waitUpdate(t *testing.T, b *StatusBoard, match func(Update) bool) Update {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case u := <-b.Updates():
			if match(u) {
				return u
			}
		case <-timeout:
			t.Fatal("timed out waiting for status update")
		}
	}
}

func TestHandleTranscriptDispatches(t *testing.T) {
	f := englishController(t)
	runForwarder(t, f.ctrl)

	out := f.ctrl.HandleTranscript(context.Background(), "  add category Groceries ")
	if out.Err != nil {
		t.Fatalf("unexpected error: %v", out.Err)
	}
	if out.Transcript != "add category Groceries" {
		t.Fatalf("unexpected canonical transcript %q", out.Transcript)
	}
	want := commands.Command{Intent: commands.IntentAddCategory, Primary: "Groceries", Raw: "add category Groceries"}
	if diff := cmp.Diff(want, out.Command); diff != "" {
		t.Fatalf("command mismatch (-want +got):\n%s", diff)
	}
	if got := f.board.Current(TranscriptLine); got != "add category Groceries" {
		t.Fatalf("expected transcript echoed, got %q", got)
	}

	waitUpdate(t, f.board, func(u Update) bool {
		return u.Line == StatusLine && u.Message == `added category "Groceries"`
	})
	if out.Message() != `added category "Groceries"` {
		t.Fatalf("unexpected outcome message %q", out.Message())
	}
}

func TestEmptyTranscriptSkipsExecutor(t *testing.T) {
	f := englishController(t)

	out := f.ctrl.HandleTranscript(context.Background(), " \t ")
	if commands.CodeOf(out.Err) != commands.ErrCodeRecognitionEmpty {
		t.Fatalf("expected recognition empty, got %v", out.Err)
	}
	if got := f.board.Current(StatusLine); got != "no speech recognised" {
		t.Fatalf("unexpected status %q", got)
	}
	select {
	case st := <-f.exec.Events():
		t.Fatalf("executor must not run for empty input, got %+v", st)
	default:
	}
}

func TestUnrecognizedTranscriptIsReported(t *testing.T) {
	f := englishController(t)
	out := f.ctrl.HandleTranscript(context.Background(), "hello there")
	if commands.CodeOf(out.Err) != commands.ErrCodeUnrecognized {
		t.Fatalf("expected unrecognized, got %v", out.Err)
	}
	if !strings.Contains(out.Message(), "hello there") {
		t.Fatalf("expected raw text in message, got %q", out.Message())
	}
}

func TestChineseTranscript(t *testing.T) {
	vocab := commands.Chinese()
	n := normalize.New(normalize.WithSegmenter(normalize.NewGreedy(vocab.Words()...)))
	f := setupController(t, n, commands.NewParser(vocab))
	ctx := context.Background()

	out := f.ctrl.HandleTranscript(ctx, "新增分類購物")
	if out.Err != nil {
		t.Fatalf("add: %v", out.Err)
	}
	if out.Command.Intent != commands.IntentAddCategory || out.Command.Primary != "購物" {
		t.Fatalf("unexpected command %+v", out.Command)
	}

	out = f.ctrl.HandleTranscript(ctx, "進入分類購物")
	if out.Err != nil || out.Effect.View.Kind != executor.ItemsView {
		t.Fatalf("enter: view=%s err=%v", out.Effect.View, out.Err)
	}
	out = f.ctrl.HandleTranscript(ctx, "新增項目牛奶")
	if out.Err != nil || out.Command.Primary != "牛奶" {
		t.Fatalf("add item: cmd=%+v err=%v", out.Command, out.Err)
	}
	out = f.ctrl.HandleTranscript(ctx, "撤銷")
	if out.Err != nil || out.Command.Intent != commands.IntentUndoLastAction {
		t.Fatalf("undo: cmd=%+v err=%v", out.Command, out.Err)
	}
	if items := f.exec.Snapshot().Items; len(items) != 0 {
		t.Fatalf("expected undo to remove the item, got %+v", items)
	}
}

func TestHandleCommandAndToggle(t *testing.T) {
	f := englishController(t)
	ctx := context.Background()
	for _, cmd := range []commands.Command{
		{Intent: commands.IntentAddCategory, Primary: "Work"},
		{Intent: commands.IntentEnterCategory, Primary: "Work"},
		{Intent: commands.IntentAddItem, Primary: "report"},
	} {
		if out := f.ctrl.HandleCommand(ctx, cmd); out.Err != nil {
			t.Fatalf("%s: %v", cmd, out.Err)
		}
	}
	out := f.ctrl.Toggle(ctx, "report")
	if out.Err != nil || !f.exec.Snapshot().Items[0].Completed {
		t.Fatalf("toggle failed: %+v", out)
	}
}

func TestUndoExpiryReachesStatusLine(t *testing.T) {
	f := englishController(t)
	runForwarder(t, f.ctrl)

	if out := f.ctrl.HandleTranscript(context.Background(), "add category Work"); out.Err != nil {
		t.Fatalf("add: %v", out.Err)
	}
	waitUpdate(t, f.board, func(u Update) bool { return u.Message == `added category "Work"` })

	f.clock.Advance(15 * time.Second)
	u := waitUpdate(t, f.board, func(u Update) bool {
		return u.Line == StatusLine && strings.Contains(u.Message, "can no longer be undone")
	})
	if !strings.Contains(u.Message, `add category "Work"`) {
		t.Fatalf("expected expiry to name the action, got %q", u.Message)
	}
}

func TestTransientStatusDismissed(t *testing.T) {
	clock := scheduler.NewManualClock(epoch)
	b := NewStatusBoard(clock, 2*time.Second, 8)
	defer b.Close()

	b.Show(StatusLine, "first", true)
	clock.Advance(time.Second)
	b.Show(StatusLine, "second", true)
	clock.Advance(time.Second)
	if got := b.Current(StatusLine); got != "second" {
		t.Fatalf("replacement must restart the dismiss delay, got %q", got)
	}
	clock.Advance(time.Second)
	if got := b.Current(StatusLine); got != "" {
		t.Fatalf("expected status dismissed, got %q", got)
	}

	var got []Update
	for len(b.Updates()) > 0 {
		got = append(got, <-b.Updates())
	}
	want := []Update{
		{Line: StatusLine, Message: "first"},
		{Line: StatusLine, Message: "second"},
		{Line: StatusLine},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("updates mismatch (-want +got):\n%s", diff)
	}
}

func TestPersistentStatusAndIndependentLines(t *testing.T) {
	clock := scheduler.NewManualClock(epoch)
	b := NewStatusBoard(clock, 2*time.Second, 8)
	defer b.Close()

	b.Show(StatusLine, "recording...", false)
	b.Show(TranscriptLine, "add category work", true)
	clock.Advance(5 * time.Second)

	if got := b.Current(StatusLine); got != "recording..." {
		t.Fatalf("persistent status dismissed: %q", got)
	}
	if got := b.Current(TranscriptLine); got != "" {
		t.Fatalf("expected transcript dismissed, got %q", got)
	}
}

func TestBoardDropsWhenFull(t *testing.T) {
	b := NewStatusBoard(scheduler.NewManualClock(epoch), time.Second, 1)
	defer b.Close()
	b.Show(StatusLine, "a", false)
	b.Show(StatusLine, "b", false)
	if b.Dropped() != 1 {
		t.Fatalf("expected one dropped update, got %d", b.Dropped())
	}
	if b.Current(StatusLine) != "b" {
		t.Fatal("current text must not depend on delivery")
	}
}

func TestBoardLogsUnscheduledDismissal(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	b := NewStatusBoard(scheduler.NewManualClock(epoch), time.Second, 4, WithBoardLogger(zap.New(core)))
	defer b.Close()
	b.delay = 0

	b.Show(StatusLine, "added category \"Work\"", true)
	if got := b.Current(StatusLine); got != `added category "Work"` {
		t.Fatalf("status must still be shown, got %q", got)
	}
	entries := logs.FilterMessage("app: status dismissal not scheduled").All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d", len(entries))
	}
	if line := entries[0].ContextMap()["line"]; line != "status" {
		t.Fatalf("unexpected line field %v", line)
	}
}
