package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sandeepkv93/vtodo/internal/app"
	"github.com/sandeepkv93/vtodo/internal/config"
	"github.com/sandeepkv93/vtodo/internal/executor"
	"github.com/sandeepkv93/vtodo/internal/logging"
	"github.com/sandeepkv93/vtodo/internal/observe"
	"github.com/sandeepkv93/vtodo/internal/scheduler"
	"github.com/sandeepkv93/vtodo/internal/storage"
)

var version = "dev"

// runtime carries what PersistentPreRunE resolved for the subcommands.
type runtime struct {
	configPath string
	logLevel   string
	dbPath     string
	language   string

	cfg     config.Config
	logger  *zap.Logger
	metrics *observe.Metrics
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "vtodo failed: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rt := &runtime{}
	root := &cobra.Command{
		Use:   "vtodo",
		Short: "Voice-driven two-level todo list",
		Long: `vtodo keeps categories of todo items and accepts spoken commands such as
"新增分類購物" or "add category Groceries". The last change can be undone
for a short while after it was made.

Run without arguments to start the terminal UI.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), rt)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&rt.configPath, "config", "", "config file (default "+config.DefaultPath+")")
	flags.StringVar(&rt.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	flags.StringVar(&rt.dbPath, "db", "", "override database path")
	flags.StringVar(&rt.language, "lang", "", "override recognition language (zh-TW, en)")

	root.AddCommand(
		newTUICmd(rt),
		newSayCmd(rt),
		newNormalizeCmd(rt),
		newParseCmd(rt),
		newListCmd(rt),
		newMigrateCmd(rt),
		newTranscribeCmd(rt),
	)
	return root
}

func (rt *runtime) init(cmd *cobra.Command) error {
	cfg, err := config.Load(rt.configPath)
	if err != nil {
		return err
	}
	if rt.logLevel != "" {
		cfg.Log.Level = config.LogLevel(rt.logLevel)
	}
	if rt.dbPath != "" {
		cfg.Database.Path = rt.dbPath
	}
	if rt.language != "" {
		cfg.Language = rt.language
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	rt.cfg = cfg

	// The TUI owns the terminal; without a log file it runs silent.
	if interactive(cmd) && cfg.Log.File == "" {
		rt.logger = zap.NewNop()
	} else {
		rt.logger, err = logging.New(logging.Options{Level: string(cfg.Log.Level), File: cfg.Log.File})
		if err != nil {
			return err
		}
	}
	return nil
}

func interactive(cmd *cobra.Command) bool {
	return cmd.Name() == "vtodo" || cmd.Name() == "tui"
}

// initMetrics installs the Prometheus-backed meter provider when a listen
// address is configured. Without one, instruments are recorded against the
// global no-op provider.
func (rt *runtime) initMetrics(ctx context.Context) (func(context.Context) error, error) {
	shutdown := func(context.Context) error { return nil }
	if rt.cfg.Metrics.ListenAddr != "" {
		var err error
		shutdown, err = observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
		if err != nil {
			return nil, fmt.Errorf("init metrics: %w", err)
		}
	}
	rt.metrics = observe.DefaultMetrics()
	return shutdown, nil
}

func (rt *runtime) openStore() (*storage.SQLiteRepository, error) {
	repo, err := storage.Open(rt.cfg.Database.Driver, rt.cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	rt.logger.Debug("store opened",
		zap.String("driver", rt.cfg.Database.Driver),
		zap.String("path", rt.cfg.Database.Path),
	)
	return repo, nil
}

// session is the fully wired pipeline over an open store.
type session struct {
	repo *storage.SQLiteRepository
	exec *executor.Executor
	ctrl *app.Controller
}

func (s *session) Close() error {
	s.ctrl.Board().Close()
	s.exec.Close()
	return s.repo.Close()
}

func (rt *runtime) openSession(ctx context.Context) (*session, error) {
	repo, err := rt.openStore()
	if err != nil {
		return nil, err
	}

	clock := scheduler.SystemClock{}
	exec := executor.New(repo,
		executor.WithClock(clock),
		executor.WithUndoWindow(rt.cfg.UndoWindow()),
		executor.WithFuzzyThreshold(rt.cfg.Matching.FuzzyThreshold),
		executor.WithStatusBuffer(rt.cfg.Status.Buffer),
		executor.WithLogger(rt.logger.Named("executor")),
		executor.WithMetrics(rt.metrics),
	)
	if err := exec.Load(ctx); err != nil {
		_ = repo.Close()
		return nil, err
	}

	board := app.NewStatusBoard(clock, rt.cfg.StatusDismiss(), rt.cfg.Status.Buffer,
		app.WithBoardLogger(rt.logger.Named("status")),
	)
	n, p := app.NewPipeline(rt.cfg.Language, rt.logger.Named("normalize"), rt.metrics)
	ctrl := app.NewController(n, p, exec, board,
		app.WithControllerLogger(rt.logger.Named("app")),
		app.WithControllerMetrics(rt.metrics),
	)
	rt.logger.Info("session ready",
		zap.String("language", rt.cfg.Language),
		zap.Duration("undo_window", rt.cfg.UndoWindow()),
		zap.Duration("status_dismiss", rt.cfg.StatusDismiss()),
	)
	return &session{repo: repo, exec: exec, ctrl: ctrl}, nil
}

func shutdownWithTimeout(fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return fn(ctx)
}
