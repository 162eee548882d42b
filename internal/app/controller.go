// Package app wires transcripts and typed UI actions through the
// normalizer, parser and executor, and owns the status lines shown to the
// user.
package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/sandeepkv93/vtodo/internal/commands"
	"github.com/sandeepkv93/vtodo/internal/executor"
	"github.com/sandeepkv93/vtodo/internal/normalize"
	"github.com/sandeepkv93/vtodo/internal/observe"
)

// Outcome reports what one transcript or typed command did.
type Outcome struct {
	Transcript string
	Tokens     []string
	Command    commands.Command
	Effect     executor.Effect
	Err        error
}

// Message is the status text for the outcome.
func (o Outcome) Message() string {
	if o.Err != nil {
		return executor.StatusText(o.Err)
	}
	return o.Effect.Message
}

type Controller struct {
	normalizer *normalize.Normalizer
	parser     *commands.Parser
	exec       *executor.Executor
	board      *StatusBoard
	logger     *zap.Logger
	metrics    *observe.Metrics
}

type ControllerOption func(*Controller)

func WithControllerLogger(l *zap.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithControllerMetrics(m *observe.Metrics) ControllerOption {
	return func(c *Controller) { c.metrics = m }
}

func NewController(n *normalize.Normalizer, p *commands.Parser, exec *executor.Executor, board *StatusBoard, opts ...ControllerOption) *Controller {
	c := &Controller{
		normalizer: n,
		parser:     p,
		exec:       exec,
		board:      board,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Executor() *executor.Executor { return c.exec }

func (c *Controller) Board() *StatusBoard { return c.board }

// Run forwards executor status messages to the board until ctx is done.
func (c *Controller) Run(ctx context.Context) {
	c.board.Forward(ctx, c.exec.Events())
}

// HandleTranscript normalizes raw, echoes the canonical text on the
// transcript line, and dispatches the parsed command. Empty recognition is
// reported without touching the executor.
func (c *Controller) HandleTranscript(ctx context.Context, raw string) Outcome {
	canonical := c.normalizer.Normalize(raw)
	if canonical == "" {
		err := commands.RecognitionEmpty()
		c.metrics.RecordTranscript(ctx, "empty")
		c.logger.Debug("app: empty transcript")
		c.board.Show(StatusLine, executor.StatusText(err), true)
		return Outcome{Err: err}
	}
	c.board.Show(TranscriptLine, canonical, true)

	tokens := c.normalizer.Tokens(raw)
	cmd := c.parser.Parse(tokens)
	c.logger.Info("app: transcript parsed",
		zap.String("canonical", canonical),
		zap.Strings("tokens", tokens),
		zap.String("command", cmd.String()),
	)

	out := c.dispatch(ctx, cmd)
	out.Transcript = canonical
	out.Tokens = tokens
	result := "dispatched"
	if out.Err != nil {
		result = "rejected"
	}
	c.metrics.RecordTranscript(ctx, result)
	return out
}

// HandleCommand dispatches a command built by the typed UI.
func (c *Controller) HandleCommand(ctx context.Context, cmd commands.Command) Outcome {
	return c.dispatch(ctx, cmd)
}

// Toggle flips an item's completion flag in the open category.
func (c *Controller) Toggle(ctx context.Context, name string) Outcome {
	eff, err := c.exec.ToggleItem(ctx, name)
	return Outcome{
		Command: commands.Command{Intent: commands.IntentCompleteItem, Primary: name},
		Effect:  eff,
		Err:     err,
	}
}

func (c *Controller) dispatch(ctx context.Context, cmd commands.Command) Outcome {
	eff, err := c.exec.Dispatch(ctx, cmd)
	return Outcome{Command: cmd, Effect: eff, Err: err}
}
