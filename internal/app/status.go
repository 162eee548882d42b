package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/vtodo/internal/executor"
	"github.com/sandeepkv93/vtodo/internal/scheduler"
)

const DefaultDismiss = 2 * time.Second

// Line identifies one of the two status lines shown to the user.
type Line int

const (
	// StatusLine carries command outcomes and undo expiry notices.
	StatusLine Line = iota
	// TranscriptLine echoes the canonical text of the last utterance.
	TranscriptLine
)

func (l Line) String() string {
	if l == TranscriptLine {
		return "transcript"
	}
	return "status"
}

// Update announces that a line changed. An empty Message means the line
// was dismissed.
type Update struct {
	Line    Line
	Message string
}

type lineState struct {
	text    string
	gen     uint64
	dismiss *scheduler.Deferred
}

// StatusBoard holds the visible status lines. Transient messages clear
// themselves after the dismiss delay unless replaced first.
type StatusBoard struct {
	mu      sync.Mutex
	lines   [2]lineState
	delay   time.Duration
	updates chan Update
	dropped uint64
	logger  *zap.Logger
}

type BoardOption func(*StatusBoard)

func WithBoardLogger(l *zap.Logger) BoardOption {
	return func(b *StatusBoard) {
		if l != nil {
			b.logger = l
		}
	}
}

func NewStatusBoard(clock scheduler.Clock, dismiss time.Duration, buffer int, opts ...BoardOption) *StatusBoard {
	if dismiss <= 0 {
		dismiss = DefaultDismiss
	}
	if buffer <= 0 {
		buffer = executor.DefaultStatusBuffer
	}
	b := &StatusBoard{delay: dismiss, updates: make(chan Update, buffer), logger: zap.NewNop()}
	for i := range b.lines {
		b.lines[i].dismiss = scheduler.NewDeferred(clock)
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Updates delivers line changes. Updates are dropped when nobody reads.
func (b *StatusBoard) Updates() <-chan Update {
	return b.updates
}

func (b *StatusBoard) Dropped() uint64 {
	return atomic.LoadUint64(&b.dropped)
}

// Show replaces the text of line. A transient message is dismissed after
// the board's delay; a persistent one stays until replaced.
func (b *StatusBoard) Show(line Line, msg string, transient bool) {
	b.mu.Lock()
	st := &b.lines[line]
	st.text = msg
	st.gen++
	gen := st.gen
	if transient && msg != "" {
		if _, err := st.dismiss.Schedule(b.delay, func() { b.clear(line, gen) }); err != nil {
			b.logger.Warn("app: status dismissal not scheduled",
				zap.Stringer("line", line),
				zap.Error(err),
			)
		}
	} else {
		st.dismiss.Cancel()
	}
	b.mu.Unlock()

	b.notify(Update{Line: line, Message: msg})
}

func (b *StatusBoard) Current(line Line) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lines[line].text
}

// Forward shows every executor status on the status line until events is
// closed or ctx is done.
func (b *StatusBoard) Forward(ctx context.Context, events <-chan executor.Status) {
	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-events:
			if !ok {
				return
			}
			b.Show(StatusLine, st.Message, st.Transient)
		}
	}
}

// Close cancels pending dismissals.
func (b *StatusBoard) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.lines {
		b.lines[i].dismiss.Cancel()
	}
}

// clear dismisses line unless it was replaced after the dismissal was
// scheduled.
func (b *StatusBoard) clear(line Line, gen uint64) {
	b.mu.Lock()
	st := &b.lines[line]
	if st.gen != gen {
		b.mu.Unlock()
		return
	}
	st.text = ""
	st.gen++
	b.mu.Unlock()
	b.notify(Update{Line: line})
}

func (b *StatusBoard) notify(u Update) {
	select {
	case b.updates <- u:
	default:
		atomic.AddUint64(&b.dropped, 1)
	}
}
