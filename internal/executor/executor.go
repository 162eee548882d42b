// Package executor applies parsed commands to the store and the in-memory
// session, and keeps the single-slot undo log.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/vtodo/internal/commands"
	"github.com/sandeepkv93/vtodo/internal/observe"
	"github.com/sandeepkv93/vtodo/internal/scheduler"
	"github.com/sandeepkv93/vtodo/internal/storage"
	"github.com/sandeepkv93/vtodo/internal/undo"
)

const (
	DefaultFuzzyThreshold = 0.88
	DefaultStatusBuffer   = 64
)

// Status is a user-facing message. Transient messages are dismissed after a
// fixed delay by the presentation layer.
type Status struct {
	Message   string
	Transient bool
}

// Effect describes what a successful dispatch did.
type Effect struct {
	Intent  commands.Intent
	Message string
	View    View
	// Undone is the action reverted by an undo command.
	Undone undo.Action
}

// PendingUndo describes the action currently held in the undo slot.
type PendingUndo struct {
	Kind        undo.Kind
	Description string
	Remaining   time.Duration
}

type Snapshot struct {
	View       View
	Categories []CategoryEntry
	Items      []ItemEntry
	Undo       *PendingUndo
}

type Executor struct {
	mu      sync.Mutex
	repo    storage.Repository
	session Session
	slot    *undo.Slot

	clock    scheduler.Clock
	window   time.Duration
	resolver resolver
	logger   *zap.Logger
	metrics  *observe.Metrics

	events  chan Status
	dropped uint64
}

type Option func(*Executor)

func WithClock(c scheduler.Clock) Option {
	return func(e *Executor) {
		if c != nil {
			e.clock = c
		}
	}
}

func WithUndoWindow(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.window = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithMetrics(m *observe.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score for resolving a
// spoken name to an existing one. Zero disables fuzzy resolution.
func WithFuzzyThreshold(t float64) Option {
	return func(e *Executor) {
		if t >= 0 {
			e.resolver.threshold = t
		}
	}
}

func WithStatusBuffer(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.events = make(chan Status, n)
		}
	}
}

func New(repo storage.Repository, opts ...Option) *Executor {
	e := &Executor{
		repo:     repo,
		session:  newSession(),
		clock:    scheduler.SystemClock{},
		window:   undo.DefaultWindow,
		resolver: resolver{threshold: DefaultFuzzyThreshold},
		logger:   zap.NewNop(),
		events:   make(chan Status, DefaultStatusBuffer),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.slot = undo.NewSlot(e.window, e.clock, e.expire)
	return e
}

// Events delivers status messages for every dispatch outcome and undo
// expiry. Messages are dropped when the buffer is full.
func (e *Executor) Events() <-chan Status {
	return e.events
}

func (e *Executor) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

// Load rebuilds the category cache from the store and returns to the
// category list. Any pending undo is discarded.
func (e *Executor) Load(ctx context.Context) error {
	cats, err := e.repo.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = newSession()
	for _, c := range cats {
		e.session.categories.set(c.Name, c.ID)
	}
	e.slot.Clear()
	e.logger.Debug("executor: loaded", zap.Int("categories", len(cats)))
	return nil
}

// Close cancels the pending undo expiry.
func (e *Executor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.slot.Clear()
}

func (e *Executor) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.view
}

func (e *Executor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{View: e.session.view}
	for _, name := range e.session.categories.order {
		id, _ := e.session.categories.get(name)
		snap.Categories = append(snap.Categories, CategoryEntry{Name: name, ID: id})
	}
	for _, name := range e.session.items.order {
		ref, _ := e.session.items.get(name)
		snap.Items = append(snap.Items, ItemEntry{Name: name, ID: ref.ID, Completed: ref.Completed})
	}
	if a, ok := e.slot.Peek(); ok {
		snap.Undo = &PendingUndo{Kind: a.Kind(), Description: a.Describe(), Remaining: e.slot.Remaining()}
	}
	return snap
}

// Dispatch runs cmd against the session. Item-scoped intents are rejected
// outside the item view; commands missing a target are reported as
// unrecognized. Pre-checks run before any store write, and the store is
// written before the cache.
func (e *Executor) Dispatch(ctx context.Context, cmd commands.Command) (Effect, error) {
	start := time.Now()
	e.mu.Lock()
	eff, err := e.dispatchLocked(ctx, cmd)
	e.mu.Unlock()

	e.finish(ctx, cmd.Intent, eff, err, start)
	return eff, err
}

// ToggleItem flips the completion flag of an item in the open category. It
// backs the checkbox of the typed UI and is undoable like CompleteItem.
func (e *Executor) ToggleItem(ctx context.Context, name string) (Effect, error) {
	start := time.Now()
	e.mu.Lock()
	eff, err := e.toggleLocked(ctx, strings.TrimSpace(name))
	e.mu.Unlock()

	e.finish(ctx, commands.IntentCompleteItem, eff, err, start)
	return eff, err
}

func (e *Executor) dispatchLocked(ctx context.Context, cmd commands.Command) (Effect, error) {
	if cmd.Intent.ItemScoped() && e.session.view.Kind != ItemsView {
		return Effect{}, commands.ScopeViolation(cmd.Intent)
	}
	cmd.Primary = strings.TrimSpace(cmd.Primary)
	cmd.Secondary = strings.TrimSpace(cmd.Secondary)

	eff := Effect{Intent: cmd.Intent}
	res, err := commands.Route(cmd, e.handlers(ctx, &eff))
	if err != nil {
		return Effect{}, err
	}
	eff.Message = res.Message
	eff.View = e.session.view
	return eff, nil
}

func (e *Executor) handlers(ctx context.Context, eff *Effect) commands.Handlers {
	return commands.Handlers{
		AddCategory:    func(c commands.Command) (commands.Result, error) { return e.addCategory(ctx, c.Primary) },
		DeleteCategory: func(c commands.Command) (commands.Result, error) { return e.deleteCategory(ctx, c.Primary) },
		EditCategory: func(c commands.Command) (commands.Result, error) {
			return e.renameCategory(ctx, c.Primary, c.Secondary)
		},
		EnterCategory: func(c commands.Command) (commands.Result, error) { return e.enterCategory(ctx, c.Primary) },
		AddItem:       func(c commands.Command) (commands.Result, error) { return e.addItem(ctx, c.Primary) },
		DeleteItem:    func(c commands.Command) (commands.Result, error) { return e.deleteItem(ctx, c.Primary) },
		EditItem: func(c commands.Command) (commands.Result, error) {
			return e.renameItem(ctx, c.Primary, c.Secondary)
		},
		CompleteItem:       func(c commands.Command) (commands.Result, error) { return e.completeItem(ctx, c.Primary) },
		ReturnToCategories: func(commands.Command) (commands.Result, error) { return e.returnToCategories() },
		UndoLastAction: func(commands.Command) (commands.Result, error) {
			res, undone, err := e.undoLast(ctx)
			eff.Undone = undone
			return res, err
		},
	}
}

func (e *Executor) finish(ctx context.Context, intent commands.Intent, eff Effect, err error, start time.Time) {
	outcome := "ok"
	if err != nil {
		outcome = string(commands.CodeOf(err))
		if outcome == "" {
			outcome = "error"
		}
		e.logger.Warn("executor: dispatch failed",
			zap.String("intent", string(intent)),
			zap.String("outcome", outcome),
			zap.Error(err),
		)
		e.emit(Status{Message: StatusText(err), Transient: true})
	} else {
		e.logger.Info("executor: dispatched",
			zap.String("intent", string(intent)),
			zap.String("view", eff.View.String()),
		)
		e.emit(Status{Message: eff.Message, Transient: true})
	}
	e.metrics.RecordDispatch(ctx, string(intent), outcome, time.Since(start))
}

// StatusText renders err for the status line.
func StatusText(err error) string {
	var ce *commands.CommandError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return "error: " + err.Error()
}

func (e *Executor) emit(s Status) {
	select {
	case e.events <- s:
	default:
		atomic.AddUint64(&e.dropped, 1)
		e.metrics.RecordStatusDropped(context.Background())
	}
}

func (e *Executor) record(a undo.Action) {
	if _, err := e.slot.Record(a); err != nil {
		e.logger.Warn("executor: undo expiry not armed",
			zap.String("action", string(a.Kind())),
			zap.Error(err),
		)
	}
	e.metrics.RecordUndo(context.Background(), "recorded")
}

// expire runs on the timer goroutine when the undo window closes.
func (e *Executor) expire(gen uint64) {
	e.mu.Lock()
	a, ok := e.slot.Expire(gen)
	e.mu.Unlock()
	if !ok {
		return
	}
	e.logger.Debug("executor: undo window closed", zap.String("action", string(a.Kind())))
	e.metrics.RecordUndo(context.Background(), "expired")
	e.emit(Status{Message: "undo window closed; " + a.Describe() + " can no longer be undone", Transient: true})
}

// lookupCategory finds the category called name. Only navigation may land
// on a close match; every mutation needs the exact name and gets the close
// matches back as suggestions.
func (e *Executor) lookupCategory(name string, lenient bool) (string, string, error) {
	res, ok := e.resolver.resolve(name, e.session.categories.order)
	if !ok || (!res.Exact && !lenient) {
		return "", "", notFound("category", name, res.Suggestions())
	}
	id, _ := e.session.categories.get(res.Name)
	return res.Name, id, nil
}

// lookupItem finds an item of the open category by its exact name.
func (e *Executor) lookupItem(name string) (string, ItemRef, error) {
	res, ok := e.resolver.resolve(name, e.session.items.order)
	if !ok || !res.Exact {
		return "", ItemRef{}, notFound("item", name, res.Suggestions())
	}
	ref, _ := e.session.items.get(res.Name)
	return res.Name, ref, nil
}

func notFound(kind, name string, suggestions []string) error {
	if len(suggestions) == 0 {
		return commands.NotFound(kind, name)
	}
	quoted := make([]string, len(suggestions))
	for i, s := range suggestions {
		quoted[i] = strconv.Quote(s)
	}
	return &commands.CommandError{
		Code:    commands.ErrCodeNotFound,
		Message: fmt.Sprintf("%s %q not found; did you mean %s?", kind, name, strings.Join(quoted, " or ")),
	}
}

// storeErr maps repository sentinels onto the command error taxonomy.
func storeErr(op, kind, name string, err error) error {
	switch {
	case errors.Is(err, storage.ErrConflict):
		return commands.Conflict(kind, name)
	case errors.Is(err, storage.ErrNotFound):
		return commands.NotFound(kind, name)
	default:
		return fmt.Errorf("%s %s %q: %w", op, kind, name, err)
	}
}
