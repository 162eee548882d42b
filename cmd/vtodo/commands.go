package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sandeepkv93/vtodo/internal/app"
	"github.com/sandeepkv93/vtodo/internal/commands"
	"github.com/sandeepkv93/vtodo/internal/observe"
	"github.com/sandeepkv93/vtodo/internal/storage"
	"github.com/sandeepkv93/vtodo/internal/update"
	"github.com/sandeepkv93/vtodo/internal/voice"
	"github.com/sandeepkv93/vtodo/internal/voice/whisper"
)

func newTUICmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), rt)
		},
	}
}

func runTUI(ctx context.Context, rt *runtime) error {
	shutdown, err := rt.initMetrics(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownWithTimeout(shutdown) }()

	sess, err := rt.openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sess.ctrl.Run(gctx)
		return nil
	})
	if addr := rt.cfg.Metrics.ListenAddr; addr != "" {
		g.Go(func() error {
			rt.logger.Info("serving metrics", zap.String("addr", addr))
			return observe.Serve(gctx, addr)
		})
	}
	g.Go(func() error {
		defer cancel()
		program := tea.NewProgram(update.NewModel(gctx, sess.ctrl), tea.WithContext(gctx))
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) && gctx.Err() != nil {
			return nil
		}
		return err
	})
	return g.Wait()
}

func newSayCmd(rt *runtime) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "say <transcript...>",
		Short: "Run one transcript through the normalizer, parser and executor",
		Example: `  vtodo say 新增分類購物
  vtodo say --in 購物 新增項目牛奶
  vtodo --lang en say add category Groceries`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := rt.initMetrics(ctx); err != nil {
				return err
			}
			sess, err := rt.openSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			out := cmd.OutOrStdout()
			if in != "" {
				enter := sess.ctrl.HandleCommand(ctx, commands.Command{Intent: commands.IntentEnterCategory, Primary: in})
				if enter.Err != nil {
					printOutcome(out, enter)
					return infraErr(enter.Err)
				}
			}
			outcome := sess.ctrl.HandleTranscript(ctx, strings.Join(args, " "))
			printOutcome(out, outcome)
			return infraErr(outcome.Err)
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "open this category before running the transcript")
	return cmd
}

// infraErr keeps command rejections (not found, conflicts, ...) out of the
// exit status; they are already printed as status text.
func infraErr(err error) error {
	if err == nil || commands.CodeOf(err) != "" {
		return nil
	}
	return err
}

func newNormalizeCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <text...>",
		Short: "Print the canonical text and tokens for a transcript",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, _ := app.NewPipeline(rt.cfg.Language, rt.logger, nil)
			raw := strings.Join(args, " ")
			printNormalized(cmd.OutOrStdout(), n.Normalize(raw), n.Tokens(raw))
			return nil
		},
	}
}

func newParseCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <text...>",
		Short: "Normalize and parse a transcript without executing it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, p := app.NewPipeline(rt.cfg.Language, rt.logger, nil)
			tokens := n.Tokens(strings.Join(args, " "))
			printCommand(cmd.OutOrStdout(), tokens, p.Parse(tokens))
			return nil
		},
	}
}

func newListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list [category]",
		Short: "List categories, or the items of one category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, err := rt.openStore()
			if err != nil {
				return err
			}
			defer repo.Close()

			cats, err := repo.ListCategories(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				counts := make([][2]int, len(cats))
				for i, c := range cats {
					items, err := repo.ListItems(ctx, c.ID)
					if err != nil {
						return err
					}
					for _, it := range items {
						counts[i][0]++
						if it.Completed {
							counts[i][1]++
						}
					}
				}
				printCategories(out, cats, counts)
				return nil
			}
			for _, c := range cats {
				if c.Name == args[0] {
					items, err := repo.ListItems(ctx, c.ID)
					if err != nil {
						return err
					}
					printItems(out, c.Name, items)
					return nil
				}
			}
			return fmt.Errorf("category %q not found", args[0])
		},
	}
}

func newMigrateCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert the database schema",
	}
	run := func(name string, fn func(*storage.SQLiteRepository) error) *cobra.Command {
		return &cobra.Command{
			Use:   name,
			Short: name + " migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				repo, err := rt.openStore()
				if err != nil {
					return err
				}
				defer repo.Close()
				if err := fn(repo); err != nil {
					return fmt.Errorf("migrate %s: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: ok\n", name)
				return nil
			},
		}
	}
	cmd.AddCommand(
		run("up", func(r *storage.SQLiteRepository) error { return storage.MigrateUp(r.DB()) }),
		run("down", func(r *storage.SQLiteRepository) error { return storage.MigrateDown(r.DB()) }),
	)
	return cmd
}

func newTranscribeCmd(rt *runtime) *cobra.Command {
	var (
		pcmPath  string
		model    string
		dispatch bool
	)
	cmd := &cobra.Command{
		Use:   "transcribe --pcm file",
		Short: "Recognise a raw 16 kHz mono PCM recording with whisper.cpp",
		Long: `Streams a raw signed 16-bit little-endian 16 kHz mono recording through the
capture buffer and whisper.cpp, then prints the transcript. With --dispatch
the transcript is also run as a command. Requires a build with -tags whisper.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if model == "" {
				model = rt.cfg.Voice.WhisperModel
			}
			rec, err := whisper.New(model, rt.cfg.Language, rt.logger.Named("whisper"))
			if err != nil {
				return err
			}
			defer rec.Close()

			f, err := os.Open(pcmPath)
			if err != nil {
				return fmt.Errorf("open pcm: %w", err)
			}
			defer f.Close()

			capture := voice.NewCapture(rec, rt.logger.Named("voice"))
			if _, err := voice.ReadPCM(f, rt.cfg.Voice.ChunkBytes, capture); err != nil {
				return err
			}
			text, err := capture.Finalize(true)
			if err != nil {
				rt.logger.Warn("some audio could not be decoded", zap.Error(err))
			}

			out := cmd.OutOrStdout()
			if !dispatch {
				fmt.Fprintln(out, text)
				return nil
			}
			ctx := cmd.Context()
			sess, err := rt.openSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()
			outcome := sess.ctrl.HandleTranscript(ctx, text)
			printOutcome(out, outcome)
			return infraErr(outcome.Err)
		},
	}
	cmd.Flags().StringVar(&pcmPath, "pcm", "", "raw PCM file to transcribe")
	cmd.Flags().StringVar(&model, "model", "", "whisper model path (default voice.whisper_model)")
	cmd.Flags().BoolVar(&dispatch, "dispatch", false, "run the transcript as a command")
	_ = cmd.MarkFlagRequired("pcm")
	return cmd
}
