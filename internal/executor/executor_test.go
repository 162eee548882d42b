package executor

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/sandeepkv93/vtodo/internal/commands"
	"github.com/sandeepkv93/vtodo/internal/scheduler"
	"github.com/sandeepkv93/vtodo/internal/storage"
	"github.com/sandeepkv93/vtodo/internal/undo"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var epoch = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

// countingRepo counts every repository call so tests can assert that
// pre-checks reject commands before the store is touched.
type countingRepo struct {
	storage.Repository
	mu    sync.Mutex
	calls int
}

func (r *countingRepo) count() {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
}

func (r *countingRepo) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *countingRepo) CreateCategory(ctx context.Context, name string) (string, error) {
	r.count()
	return r.Repository.CreateCategory(ctx, name)
}

func (r *countingRepo) RenameCategory(ctx context.Context, id, name string) error {
	r.count()
	return r.Repository.RenameCategory(ctx, id, name)
}

func (r *countingRepo) DeleteCategory(ctx context.Context, id string) error {
	r.count()
	return r.Repository.DeleteCategory(ctx, id)
}

func (r *countingRepo) ReinsertCategory(ctx context.Context, id, name string) error {
	r.count()
	return r.Repository.ReinsertCategory(ctx, id, name)
}

func (r *countingRepo) ListCategories(ctx context.Context) ([]storage.Category, error) {
	r.count()
	return r.Repository.ListCategories(ctx)
}

func (r *countingRepo) CreateItem(ctx context.Context, categoryID, name string) (string, error) {
	r.count()
	return r.Repository.CreateItem(ctx, categoryID, name)
}

func (r *countingRepo) RenameItem(ctx context.Context, id, name string) error {
	r.count()
	return r.Repository.RenameItem(ctx, id, name)
}

func (r *countingRepo) DeleteItem(ctx context.Context, id string) error {
	r.count()
	return r.Repository.DeleteItem(ctx, id)
}

func (r *countingRepo) SetCompleted(ctx context.Context, id string, completed bool) error {
	r.count()
	return r.Repository.SetCompleted(ctx, id, completed)
}

func (r *countingRepo) ReinsertItem(ctx context.Context, id, categoryID, name string, completed bool) error {
	r.count()
	return r.Repository.ReinsertItem(ctx, id, categoryID, name, completed)
}

func (r *countingRepo) ListItems(ctx context.Context, categoryID string) ([]storage.Item, error) {
	r.count()
	return r.Repository.ListItems(ctx, categoryID)
}

type harness struct {
	exec  *Executor
	repo  *countingRepo
	store *storage.SQLiteRepository
	clock *scheduler.ManualClock
}

func setupExecutor(t *testing.T, opts ...Option) harness {
	t.Helper()
	store, err := storage.Open(storage.DriverCGO, filepath.Join(t.TempDir(), "executor-test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	repo := &countingRepo{Repository: store}
	clock := scheduler.NewManualClock(epoch)
	opts = append([]Option{WithClock(clock), WithUndoWindow(15 * time.Second)}, opts...)
	exec := New(repo, opts...)
	t.Cleanup(exec.Close)
	if err := exec.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return harness{exec: exec, repo: repo, store: store, clock: clock}
}

func (h harness) dispatch(t *testing.T, cmd commands.Command) Effect {
	t.Helper()
	eff, err := h.exec.Dispatch(context.Background(), cmd)
	if err != nil {
		t.Fatalf("dispatch %s: %v", cmd, err)
	}
	return eff
}

func cmdOf(intent commands.Intent, targets ...string) commands.Command {
	c := commands.Command{Intent: intent}
	if len(targets) > 0 {
		c.Primary = targets[0]
	}
	if len(targets) > 1 {
		c.Secondary = targets[1]
	}
	return c
}

func categoryNames(s Snapshot) []string {
	out := make([]string, 0, len(s.Categories))
	for _, c := range s.Categories {
		out = append(out, c.Name)
	}
	return out
}

func storedCategoryNames(t *testing.T, store storage.Repository) []string {
	t.Helper()
	cats, err := store.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		out = append(out, c.Name)
	}
	return out
}

func TestParsedAddCategoryRecordsUndo(t *testing.T) {
	h := setupExecutor(t)
	cmd := commands.NewParser(commands.English()).Parse([]string{"add", "category", "Groceries"})

	eff := h.dispatch(t, cmd)
	if eff.Intent != commands.IntentAddCategory || !strings.Contains(eff.Message, "Groceries") {
		t.Fatalf("unexpected effect: %+v", eff)
	}
	snap := h.exec.Snapshot()
	if snap.Undo == nil || snap.Undo.Kind != undo.KindAddedCategory {
		t.Fatalf("expected AddedCategory in undo slot, got %+v", snap.Undo)
	}
	if diff := cmp.Diff([]string{"Groceries"}, storedCategoryNames(t, h.store)); diff != "" {
		t.Fatalf("store mismatch (-want +got):\n%s", diff)
	}
}

func TestAddUndoRoundTrip(t *testing.T) {
	h := setupExecutor(t)
	h.dispatch(t, cmdOf(commands.IntentAddCategory, "Work"))
	h.clock.Advance(20 * time.Second)

	before := h.exec.Snapshot()
	beforeStore := storedCategoryNames(t, h.store)

	h.dispatch(t, cmdOf(commands.IntentAddCategory, "Groceries"))
	eff := h.dispatch(t, cmdOf(commands.IntentUndoLastAction))
	if eff.Undone == nil || eff.Undone.Kind() != undo.KindAddedCategory {
		t.Fatalf("expected undone AddedCategory, got %+v", eff.Undone)
	}

	after := h.exec.Snapshot()
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("session not restored (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(beforeStore, storedCategoryNames(t, h.store)); diff != "" {
		t.Fatalf("store not restored (-before +after):\n%s", diff)
	}

	if _, err := h.exec.Dispatch(context.Background(), cmdOf(commands.IntentUndoLastAction)); commands.CodeOf(err) != commands.ErrCodeUndoUnavailable {
		t.Fatalf("undo must not be undoable, got %v", err)
	}
}

func TestEditCategoryAndUndo(t *testing.T) {
	h := setupExecutor(t)
	h.dispatch(t, cmdOf(commands.IntentAddCategory, "Groceries"))

	cmd := commands.NewParser(commands.English()).Parse([]string{"edit", "category", "Groceries", "as", "Food"})
	h.dispatch(t, cmd)
	if diff := cmp.Diff([]string{"Food"}, categoryNames(h.exec.Snapshot())); diff != "" {
		t.Fatalf("rename not applied (-want +got):\n%s", diff)
	}

	h.dispatch(t, cmdOf(commands.IntentUndoLastAction))
	if diff := cmp.Diff([]string{"Groceries"}, categoryNames(h.exec.Snapshot())); diff != "" {
		t.Fatalf("rename not reverted (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Groceries"}, storedCategoryNames(t, h.store)); diff != "" {
		t.Fatalf("store rename not reverted (-want +got):\n%s", diff)
	}
}

func TestSingleSlotOverwrite(t *testing.T) {
	h := setupExecutor(t)
	h.dispatch(t, cmdOf(commands.IntentAddCategory, "Groceries"))
	h.dispatch(t, cmdOf(commands.IntentEnterCategory, "Groceries"))
	h.dispatch(t, cmdOf(commands.IntentAddItem, "milk"))
	h.dispatch(t, cmdOf(commands.IntentDeleteItem, "milk"))
	h.dispatch(t, cmdOf(commands.IntentAddCategory, "Work"))

	eff := h.dispatch(t, cmdOf(commands.IntentUndoLastAction))
	if eff.Undone.Kind() != undo.KindAddedCategory {
		t.Fatalf("expected only the category add to be undone, got %s", eff.Undone.Kind())
	}
	snap := h.exec.Snapshot()
	if diff := cmp.Diff([]string{"Groceries"}, categoryNames(snap)); diff != "" {
		t.Fatalf("unexpected categories (-want +got):\n%s", diff)
	}
	if len(snap.Items) != 0 {
		t.Fatalf("deleted item must stay deleted, got %+v", snap.Items)
	}
	if _, err := h.exec.Dispatch(context.Background(), cmdOf(commands.IntentUndoLastAction)); commands.CodeOf(err) != commands.ErrCodeUndoUnavailable {
		t.Fatalf("expected nothing left to undo, got %v", err)
	}
}

func TestUndoExpires(t *testing.T) {
	h := setupExecutor(t)
	h.dispatch(t, cmdOf(commands.IntentAddCategory, "Groceries"))
	drain(h.exec)

	h.clock.Advance(15 * time.Second)
	if h.exec.Snapshot().Undo != nil {
		t.Fatal("expected undo slot cleared after the window")
	}
	select {
	case st := <-h.exec.Events():
		if !strings.Contains(st.Message, "can no longer be undone") || !st.Transient {
			t.Fatalf("unexpected expiry status: %+v", st)
		}
	default:
		t.Fatal("expected an expiry notification")
	}

	_, err := h.exec.Dispatch(context.Background(), cmdOf(commands.IntentUndoLastAction))
	if commands.CodeOf(err) != commands.ErrCodeUndoUnavailable {
		t.Fatalf("expected undo unavailable after expiry, got %v", err)
	}
	if diff := cmp.Diff([]string{"Groceries"}, storedCategoryNames(t, h.store)); diff != "" {
		t.Fatalf("expired undo must not touch the store (-want +got):\n%s", diff)
	}
}

func TestUndoWindowRestartsOnEachMutation(t *testing.T) {
	h := setupExecutor(t)
	h.dispatch(t, cmdOf(commands.IntentAddCategory, "a"))
	h.clock.Advance(10 * time.Second)
	h.dispatch(t, cmdOf(commands.IntentAddCategory, "b"))
	h.clock.Advance(10 * time.Second)

	eff := h.dispatch(t, cmdOf(commands.IntentUndoLastAction))
	if eff.Undone.(undo.AddedCategory).Name != "b" {
		t.Fatalf("expected latest add to be undone, got %+v", eff.Undone)
	}
	if h.clock.Pending() != 0 {
		t.Fatalf("expected expiry timer cancelled by undo, pending=%d", h.clock.Pending())
	}
}

func TestDuplicateAddItemTouchesNoStore(t *testing.T) {
	h := setupExecutor(t)
	h.dispatch(t, cmdOf(commands.IntentAddCategory, "Groceries"))
	h.dispatch(t, cmdOf(commands.IntentEnterCategory, "Groceries"))
	h.dispatch(t, cmdOf(commands.IntentAddItem, "milk"))

	before := h.repo.Calls()
	_, err := h.exec.Dispatch(context.Background(), cmdOf(commands.IntentAddItem, "milk"))
	if commands.CodeOf(err) != commands.ErrCodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if got := h.repo.Calls() - before; got != 0 {
		t.Fatalf("expected zero store calls, got %d", got)
	}

	before = h.repo.Calls()
	if _, err := h.exec.Dispatch(context.Background(), cmdOf(commands.IntentAddCategory, "Groceries")); commands.CodeOf(err) != commands.ErrCodeConflict {
		t.Fatalf("expected category conflict, got %v", err)
	}
	if got := h.repo.Calls() - before; got != 0 {
		t.Fatalf("expected zero store calls for duplicate category, got %d", got)
	}
}

func TestItemIntentsRequireItemView(t *testing.T) {
	h := setupExecutor(t)
	h.dispatch(t, cmdOf(commands.IntentAddCategory, "Groceries"))

	for _, cmd := range []commands.Command{
		cmdOf(commands.IntentAddItem, "milk"),
		cmdOf(commands.IntentDeleteItem, "milk"),
		cmdOf(commands.IntentEditItem, "milk", "oat milk"),
		cmdOf(commands.IntentCompleteItem, "milk"),
	} {
		if _, err := h.exec.Dispatch(context.Background(), cmd); commands.CodeOf(err) != commands.ErrCodeScopeViolation {
			t.Fatalf("expected scope violation for %s, got %v", cmd, err)
		}
	}

	// Navigation and undo are accepted from either view.
	h.dispatch(t, cmdOf(commands.IntentReturnToCategories))
	h.dispatch(t, cmdOf(commands.IntentUndoLastAction))
}

func TestMissingTargetsAreUnrecognized(t *testing.T) {
	h := setupExecutor(t)
	for _, cmd := range []commands.Command{
		{Intent: commands.IntentAddCategory, Primary: "  "},
		{Intent: commands.IntentEditCategory, Primary: "Groceries"},
		{Intent: commands.IntentUnrecognized, Raw: "hello"},
	} {
		if _, err := h.exec.Dispatch(context.Background(), cmd); commands.CodeOf(err) != commands.ErrCodeUnrecognized {
			t.Fatalf("expected unrecognized for %+v, got %v", cmd, err)
		}
	}
}

func TestNotFound(t *testing.T) {
	h := setupExecutor(t, WithFuzzyThreshold(0))
	h.dispatch(t, cmdOf(commands.IntentAddCategory, "Groceries"))

	for _, cmd := range []commands.Command{
		cmdOf(commands.IntentDeleteCategory, "Work"),
		cmdOf(commands.IntentEnterCategory, "Grocerie"),
		cmdOf(commands.IntentEditCategory, "Work", "Play"),
	} {
		if _, err := h.exec.Dispatch(context.Background(), cmd); commands.CodeOf(err) != commands.ErrCodeNotFound {
			t.Fatalf("expected not found for %s, got %v", cmd, err)
		}
	}
}

func TestItemEditCompleteDeleteUndo(t *testing.T) {
	h := setupExecutor(t)
	ctx := context.Background()
	h.dispatch(t, cmdOf(commands.IntentAddCategory, "Groceries"))
	h.dispatch(t, cmdOf(commands.IntentEnterCategory, "Groceries"))
	h.dispatch(t, cmdOf(commands.IntentAddItem, "milk"))
	milkID := h.exec.Snapshot().Items[0].ID

	h.dispatch(t, cmdOf(commands.IntentEditItem, "milk", "oat milk"))
	eff := h.dispatch(t, cmdOf(commands.IntentUndoLastAction))
	renamed := eff.Undone.(undo.RenamedItem)
	if renamed.ID != milkID || renamed.Old != "milk" || renamed.New != "oat milk" {
		t.Fatalf("unexpected renamed action: %+v", renamed)
	}
	if got, _ := h.store.GetItem(ctx, milkID); got.Name != "milk" {
		t.Fatalf("expected rename reverted in store, got %q", got.Name)
	}

	h.dispatch(t, cmdOf(commands.IntentCompleteItem, "milk"))
	if !h.exec.Snapshot().Items[0].Completed {
		t.Fatal("expected item completed")
	}
	eff = h.dispatch(t, cmdOf(commands.IntentUndoLastAction))
	if eff.Undone.(undo.CompletionToggled).Previous {
		t.Fatal("expected previous completion false")
	}
	if got, _ := h.store.GetItem(ctx, milkID); got.Completed {
		t.Fatal("expected completion reverted in store")
	}

	h.dispatch(t, cmdOf(commands.IntentCompleteItem, "milk"))
	h.dispatch(t, cmdOf(commands.IntentDeleteItem, "milk"))
	if len(h.exec.Snapshot().Items) != 0 {
		t.Fatal("expected item removed from cache")
	}
	h.dispatch(t, cmdOf(commands.IntentUndoLastAction))
	got, err := h.store.GetItem(ctx, milkID)
	if err != nil {
		t.Fatalf("expected item reinserted: %v", err)
	}
	if !got.Completed || got.Name != "milk" {
		t.Fatalf("expected reinserted item to keep its flag, got %+v", got)
	}
	want := []ItemEntry{{Name: "milk", ID: milkID, Completed: true}}
	if diff := cmp.Diff(want, h.exec.Snapshot().Items); diff != "" {
		t.Fatalf("cache mismatch (-want +got):\n%s", diff)
	}
}

func TestToggleItem(t *testing.T) {
	h := setupExecutor(t)
	ctx := context.Background()
	if _, err := h.exec.ToggleItem(ctx, "milk"); commands.CodeOf(err) != commands.ErrCodeScopeViolation {
		t.Fatalf("expected scope violation outside item view, got %v", err)
	}

	h.dispatch(t, cmdOf(commands.IntentAddCategory, "Groceries"))
	h.dispatch(t, cmdOf(commands.IntentEnterCategory, "Groceries"))
	h.dispatch(t, cmdOf(commands.IntentAddItem, "milk"))

	eff, err := h.exec.ToggleItem(ctx, "milk")
	if err != nil || !strings.Contains(eff.Message, "done") {
		t.Fatalf("toggle on: eff=%+v err=%v", eff, err)
	}
	eff, err = h.exec.ToggleItem(ctx, "milk")
	if err != nil || !strings.Contains(eff.Message, "not done") {
		t.Fatalf("toggle off: eff=%+v err=%v", eff, err)
	}
	snap := h.exec.Snapshot()
	if snap.Items[0].Completed || snap.Undo == nil || snap.Undo.Kind != undo.KindCompletionToggled {
		t.Fatalf("unexpected snapshot after toggles: %+v", snap)
	}

	h.dispatch(t, cmdOf(commands.IntentUndoLastAction))
	if !h.exec.Snapshot().Items[0].Completed {
		t.Fatal("expected undo to restore the completed flag")
	}
}

func TestDeletingOpenCategoryReturnsToList(t *testing.T) {
	h := setupExecutor(t)
	h.dispatch(t, cmdOf(commands.IntentAddCategory, "Groceries"))
	h.dispatch(t, cmdOf(commands.IntentEnterCategory, "Groceries"))
	h.dispatch(t, cmdOf(commands.IntentAddItem, "milk"))

	eff := h.dispatch(t, cmdOf(commands.IntentDeleteCategory, "Groceries"))
	if eff.View.Kind != CategoriesView {
		t.Fatalf("expected categories view, got %s", eff.View)
	}

	h.dispatch(t, cmdOf(commands.IntentUndoLastAction))
	h.dispatch(t, cmdOf(commands.IntentEnterCategory, "Groceries"))
	if items := h.exec.Snapshot().Items; len(items) != 0 {
		t.Fatalf("category undo restores only the category row, got %+v", items)
	}
}

func TestUndoAddOfOpenCategoryLeavesItemView(t *testing.T) {
	h := setupExecutor(t)
	h.dispatch(t, cmdOf(commands.IntentAddCategory, "Groceries"))
	h.dispatch(t, cmdOf(commands.IntentEnterCategory, "Groceries"))

	eff := h.dispatch(t, cmdOf(commands.IntentUndoLastAction))
	if eff.View.Kind != CategoriesView || len(h.exec.Snapshot().Categories) != 0 {
		t.Fatalf("unexpected state after undoing add of the open category: %+v", h.exec.Snapshot())
	}
}

func TestRenamingOpenCategoryUpdatesView(t *testing.T) {
	h := setupExecutor(t)
	h.dispatch(t, cmdOf(commands.IntentAddCategory, "Groceries"))
	h.dispatch(t, cmdOf(commands.IntentEnterCategory, "Groceries"))
	eff := h.dispatch(t, cmdOf(commands.IntentEditCategory, "Groceries", "Food"))
	if eff.View.CategoryName != "Food" {
		t.Fatalf("expected view to follow the rename, got %s", eff.View)
	}
}

func TestFuzzyResolution(t *testing.T) {
	h := setupExecutor(t)
	h.dispatch(t, cmdOf(commands.IntentAddCategory, "Groceries"))
	h.dispatch(t, cmdOf(commands.IntentAddCategory, "Work"))

	eff := h.dispatch(t, cmdOf(commands.IntentEnterCategory, "Grocerys"))
	if eff.View.CategoryName != "Groceries" {
		t.Fatalf("expected fuzzy match to Groceries, got %s", eff.View)
	}

	// A fuzzy match never counts as a conflict for new names.
	h.dispatch(t, cmdOf(commands.IntentReturnToCategories))
	h.dispatch(t, cmdOf(commands.IntentAddCategory, "Grocerys"))

	h.dispatch(t, cmdOf(commands.IntentAddCategory, "project1"))
	h.dispatch(t, cmdOf(commands.IntentAddCategory, "project2"))
	_, err := h.exec.Dispatch(context.Background(), cmdOf(commands.IntentEnterCategory, "project3"))
	if commands.CodeOf(err) != commands.ErrCodeNotFound {
		t.Fatalf("expected not found on a tie, got %v", err)
	}
	if !strings.Contains(err.Error(), `did you mean "project1" or "project2"?`) {
		t.Fatalf("expected tied candidates offered, got %q", err.Error())
	}
}

func TestMutationsRequireExactNames(t *testing.T) {
	h := setupExecutor(t)
	h.dispatch(t, cmdOf(commands.IntentAddCategory, "Groceries"))
	before := h.repo.Calls()

	for _, cmd := range []commands.Command{
		cmdOf(commands.IntentDeleteCategory, "Grocery"),
		cmdOf(commands.IntentEditCategory, "Grocery", "Food"),
	} {
		_, err := h.exec.Dispatch(context.Background(), cmd)
		if commands.CodeOf(err) != commands.ErrCodeNotFound {
			t.Fatalf("%s: expected not found, got %v", cmd, err)
		}
		if !strings.Contains(err.Error(), `did you mean "Groceries"?`) {
			t.Fatalf("%s: expected suggestion, got %q", cmd, err.Error())
		}
	}
	if got := h.repo.Calls() - before; got != 0 {
		t.Fatalf("expected no store calls, got %d", got)
	}
	snap := h.exec.Snapshot()
	if len(snap.Categories) != 1 || snap.Categories[0].Name != "Groceries" {
		t.Fatalf("category changed by a near miss: %+v", snap.Categories)
	}

	h.dispatch(t, cmdOf(commands.IntentEnterCategory, "Groceries"))
	h.dispatch(t, cmdOf(commands.IntentAddItem, "bananas"))
	before = h.repo.Calls()
	for _, cmd := range []commands.Command{
		cmdOf(commands.IntentDeleteItem, "banana"),
		cmdOf(commands.IntentEditItem, "banana", "apples"),
		cmdOf(commands.IntentCompleteItem, "banana"),
	} {
		if _, err := h.exec.Dispatch(context.Background(), cmd); commands.CodeOf(err) != commands.ErrCodeNotFound {
			t.Fatalf("%s: expected not found, got %v", cmd, err)
		}
	}
	if _, err := h.exec.ToggleItem(context.Background(), "banana"); commands.CodeOf(err) != commands.ErrCodeNotFound {
		t.Fatalf("toggle: expected not found, got %v", err)
	}
	if got := h.repo.Calls() - before; got != 0 {
		t.Fatalf("expected no store calls, got %d", got)
	}
	if snap := h.exec.Snapshot(); len(snap.Items) != 1 || snap.Items[0].Completed {
		t.Fatalf("item changed by a near miss: %+v", snap.Items)
	}
}

func TestResolverThreshold(t *testing.T) {
	r := resolver{threshold: 0.88}
	if _, ok := r.resolve("Play", []string{"Groceries", "Work"}); ok {
		t.Fatal("expected no match below threshold")
	}
	res, ok := r.resolve("Work", []string{"Groceries", "Work"})
	if !ok || !res.Exact || res.Name != "Work" {
		t.Fatalf("expected exact match, got %+v ok=%v", res, ok)
	}
	if _, ok := (resolver{}).resolve("Wrk", []string{"Work"}); ok {
		t.Fatal("expected fuzzy matching disabled at zero threshold")
	}
}

func TestStoreFailureLeavesCacheUntouched(t *testing.T) {
	h := setupExecutor(t)
	h.exec.repo = failingRepo{Repository: h.repo}

	_, err := h.exec.Dispatch(context.Background(), cmdOf(commands.IntentAddCategory, "Groceries"))
	if err == nil || commands.CodeOf(err) != "" {
		t.Fatalf("expected infrastructure error, got %v", err)
	}
	snap := h.exec.Snapshot()
	if len(snap.Categories) != 0 || snap.Undo != nil {
		t.Fatalf("cache or slot changed after a failed write: %+v", snap)
	}
}

type failingRepo struct {
	storage.Repository
}

func (failingRepo) CreateCategory(context.Context, string) (string, error) {
	return "", errors.New("disk full")
}

func TestLoadRebuildsFromStore(t *testing.T) {
	h := setupExecutor(t)
	ctx := context.Background()
	if _, err := h.store.CreateCategory(ctx, "Work"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := h.store.CreateCategory(ctx, "Home"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := h.exec.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"Work", "Home"}, categoryNames(h.exec.Snapshot())); diff != "" {
		t.Fatalf("unexpected categories (-want +got):\n%s", diff)
	}
}

func TestEventsDropWhenFull(t *testing.T) {
	h := setupExecutor(t, WithStatusBuffer(1))
	for _, name := range []string{"a", "b", "c"} {
		h.dispatch(t, cmdOf(commands.IntentAddCategory, name))
	}
	if got := h.exec.Dropped(); got != 2 {
		t.Fatalf("expected 2 dropped statuses, got %d", got)
	}
	st := <-h.exec.Events()
	if st.Message != `added category "a"` {
		t.Fatalf("unexpected first status: %+v", st)
	}
}

func TestErrorsBecomeStatusMessages(t *testing.T) {
	h := setupExecutor(t)
	drain(h.exec)
	_, _ = h.exec.Dispatch(context.Background(), cmdOf(commands.IntentUndoLastAction))
	st := <-h.exec.Events()
	if st.Message != "nothing to undo" || !st.Transient {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func drain(e *Executor) {
	for {
		select {
		case <-e.Events():
		default:
			return
		}
	}
}
