package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/sadopc/dayball/internal/ball"
	"github.com/sadopc/dayball/internal/store"
	"github.com/sadopc/dayball/internal/tui"
	"github.com/spf13/cobra"
)

type options struct {
	dataPath string
	seed     uint64
	logPath  string
	focus    int
	verbose  bool
	dryRun   bool

	closeLog func() error
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	dataPath := os.Getenv("DAYBALL_DATA")
	if dataPath == "" {
		dataPath = store.DefaultPath
	}

	cmd := &cobra.Command{
		Use:           "dayball",
		Short:         "Floating focus ball with a day calendar and to-do list",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			closeLog, err := setupLogging(opts)
			if err != nil {
				return err
			}
			opts.closeLog = closeLog
			return nil
		},
		RunE: withLog(opts, func(cmd *cobra.Command) error {
			if !isInteractive() {
				return printToday(cmd.OutOrStdout(), opts)
			}
			return runTUI(opts)
		}),
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.dataPath, "data", dataPath, "data file (env DAYBALL_DATA)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "keep everything in memory, never write the data file")
	f.StringVar(&opts.logPath, "log", "", "write debug log to this file")
	f.BoolVar(&opts.verbose, "verbose", false, "log at debug level")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "seed for the ball animation (0 = random)")
	cmd.Flags().IntVar(&opts.focus, "focus", 25, "preset focus length in minutes")

	cmd.AddCommand(&cobra.Command{
		Use:   "today",
		Short: "Print today's tasks and work time",
		Args:  cobra.NoArgs,
		RunE: withLog(opts, func(cmd *cobra.Command) error {
			return printToday(cmd.OutOrStdout(), opts)
		}),
	})

	return cmd
}

// withLog runs fn and then closes the log file opened by the pre-run hook,
// whether or not fn failed. Post-run hooks are skipped on error.
func withLog(opts *options, fn func(cmd *cobra.Command) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer func() {
			if opts.closeLog == nil {
				return
			}
			if err := opts.closeLog(); err != nil {
				fmt.Fprintf(os.Stderr, "Error closing log file: %v\n", err)
			}
			opts.closeLog = nil
		}()
		return fn(cmd)
	}
}

// isInteractive reports whether both ends of the terminal are a TTY.
func isInteractive() bool {
	in, out := os.Stdin.Fd(), os.Stdout.Fd()
	return (isatty.IsTerminal(in) || isatty.IsCygwinTerminal(in)) &&
		(isatty.IsTerminal(out) || isatty.IsCygwinTerminal(out))
}

// setupLogging installs the default slog logger and returns the func that
// closes its output. Without --log the output is discarded so nothing
// writes over the alt screen.
func setupLogging(opts *options) (func() error, error) {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = io.Discard
	closeLog := func() error { return nil }
	if opts.logPath != "" {
		f, err := tea.LogToFile(opts.logPath, "dayball")
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeLog = func() error {
			slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
			return f.Close()
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return closeLog, nil
}

func openStore(opts *options) (*store.Store, error) {
	if opts.dryRun {
		slog.Info("dry run, data file untouched", "path", opts.dataPath)
		return store.NewMemory(), nil
	}
	s, err := store.New(opts.dataPath)
	if err != nil {
		return nil, fmt.Errorf("opening data file: %w", err)
	}
	return s, nil
}

func runTUI(opts *options) error {
	if opts.focus < 1 {
		return fmt.Errorf("--focus must be at least 1 minute, got %d", opts.focus)
	}
	s, err := openStore(opts)
	if err != nil {
		return err
	}

	var ballOpts []ball.Option
	if opts.seed != 0 {
		ballOpts = append(ballOpts, ball.WithSeed(opts.seed))
	}
	b := ball.New(s, ballOpts...)

	slog.Info("starting", "data", s.Path(), "focus", opts.focus)
	app := tui.NewApp(s, b, opts.focus)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, runErr := p.Run()

	// Quitting ends a running work session like the stop key does.
	if b.Mode() == ball.Work {
		secs, err := b.StopAll()
		if err != nil {
			slog.Error("record work time on exit", "error", err)
			fmt.Fprintf(os.Stderr, "Error saving work time: %v\n", err)
		} else if secs > 0 {
			slog.Info("work session recorded on exit", "seconds", secs)
		}
	}
	return runErr
}

func printToday(w io.Writer, opts *options) error {
	s, err := openStore(opts)
	if err != nil {
		return err
	}

	now := time.Now()
	date := now.Format(store.DateLayout)
	tasks := s.GetTasks(date)
	work := s.GetWorkTime(date)

	fmt.Fprintf(w, "%s  worked %dh %dm\n", now.Format("Mon Jan 2 2006"), work/3600, work%3600/60)
	if len(tasks) == 0 {
		fmt.Fprintln(w, "  no tasks")
		return nil
	}
	for _, t := range tasks {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		fmt.Fprintf(w, "  %s %s\n", box, t.Text)
	}
	return nil
}
