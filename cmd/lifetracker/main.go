package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/lifetracker/internal/application"
	"github.com/example/lifetracker/internal/calendar"
	"github.com/example/lifetracker/internal/config"
	"github.com/example/lifetracker/internal/dateparse"
	"github.com/example/lifetracker/internal/logging"
	"github.com/example/lifetracker/internal/parser"
	"github.com/example/lifetracker/internal/persistence/sqlite"
)

const prompt = "> "

const usage = `Commands:
  [add] <name> [by <when>] [from <when> [to <when>]] [every <duration>] [for <n> times | until <when>]
  edit <id> [<name>] [by|from|to|every|for|until ...] [stop] [forever] [force]
  delete <id>          remove an entry
  mark <id>            complete, reopen, or advance a recurring task
  find|findold|findall <words>
  today                entries due or happening today
  list                 show every entry, open ones first
  agenda [<duration>]  upcoming occurrences, one week by default
  history [<n>]        latest commands
  export <file>        write an iCalendar file
  undo                 revert the last command
  help | exit`

// options are the flags shared by every command.
type options struct {
	configPath string
	dbPath     string
	now        func() time.Time
}

// session is an opened tracker together with what must be released after use.
type session struct {
	tracker  *application.Tracker
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger
	close    func() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI with the given arguments and streams and returns the
// process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(stdin, stdout, stderr, &options{now: time.Now})
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer, opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lifetracker",
		Short:         "A personal task and event tracker",
		Long:          "lifetracker keeps tasks and events from short typed commands. Without a subcommand it reads commands from standard input.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), opts, stderr)
			if err != nil {
				return err
			}
			defer s.release()
			return repl(cmd.Context(), s, stdin, stdout)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database file")

	cmd.AddCommand(newDoCmd(stdout, stderr, opts))
	cmd.AddCommand(newAgendaCmd(stdout, stderr, opts))
	cmd.AddCommand(newExportCmd(stdout, stderr, opts))
	cmd.AddCommand(newHistoryCmd(stdout, stderr, opts))
	return cmd
}

func newDoCmd(stdout, stderr io.Writer, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "do <command>",
		Short: "Run a single command and print the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts, stderr)
			if err != nil {
				return err
			}
			defer s.release()
			result, err := s.tracker.Handle(cmd.Context(), strings.Join(args, " "))
			printResult(stdout, result, s.location, s.now())
			return err
		},
	}
}

func newAgendaCmd(stdout, stderr io.Writer, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "agenda [duration]",
		Short: "List upcoming occurrences",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			window := calendar.Weeks(1)
			if len(args) == 1 {
				parsed, err := dateparse.ParseDuration(args[0])
				if err != nil {
					return err
				}
				window = parsed
			}
			s, err := openSession(cmd.Context(), opts, stderr)
			if err != nil {
				return err
			}
			defer s.release()
			result, err := s.tracker.Agenda(cmd.Context(), window)
			printResult(stdout, result, s.location, s.now())
			return err
		},
	}
}

func newExportCmd(stdout, stderr io.Writer, opts *options) *cobra.Command {
	var archived bool
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write entries as iCalendar, to standard output without a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts, stderr)
			if err != nil {
				return err
			}
			defer s.release()

			if len(args) == 0 {
				return s.tracker.Export(cmd.Context(), stdout, archived)
			}
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := s.tracker.Export(cmd.Context(), f, archived); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().BoolVar(&archived, "archived", false, "Include completed entries")
	return cmd
}

func newHistoryCmd(stdout, stderr io.Writer, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history [n]",
		Short: "Show the latest commands",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := parser.DefaultHistoryCount
			if len(args) == 1 {
				parsed, err := strconv.Atoi(args[0])
				if err != nil || parsed <= 0 {
					return fmt.Errorf("history needs a positive count, got %q", args[0])
				}
				n = parsed
			}
			s, err := openSession(cmd.Context(), opts, stderr)
			if err != nil {
				return err
			}
			defer s.release()
			result, err := s.tracker.History(cmd.Context(), n)
			printResult(stdout, result, s.location, s.now())
			return err
		},
	}
}

// repl reads commands line by line until exit or end of input. Rejected
// commands are reported and the loop goes on.
func repl(ctx context.Context, s *session, stdin io.Reader, stdout io.Writer) error {
	printResult(stdout, s.tracker.List(ctx), s.location, s.now())

	scanner := bufio.NewScanner(stdin)
	for {
		_, _ = fmt.Fprint(stdout, prompt)
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(stdout)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		result, err := s.tracker.Handle(ctx, line)
		if errors.Is(err, application.ErrStorage) {
			s.logger.ErrorContext(ctx, "command not saved", "error", err, "error_kind", application.ErrorKind(err))
		}
		switch result.Action {
		case parser.ActionExit:
			return nil
		case parser.ActionHelp:
			_, _ = fmt.Fprintln(stdout, usage)
			continue
		}
		printResult(stdout, result, s.location, s.now())
	}
}

func openSession(ctx context.Context, opts *options, stderr io.Writer) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Writer: stderr})
	if err != nil {
		return nil, err
	}
	ctx = logging.ContextWithLogger(ctx, logger)

	storage, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		logger.ErrorContext(ctx, "failed to open storage", "error", err, "db_path", cfg.DBPath)
		return nil, err
	}
	if err := storage.Migrate(ctx); err != nil {
		logger.ErrorContext(ctx, "failed to apply migrations", "error", err)
		_ = storage.Close()
		return nil, err
	}

	now := opts.now
	if now == nil {
		now = time.Now
	}
	tracker := application.NewTrackerWithLogger(
		storage,
		storage,
		application.TrackerOptions{HistoryLimit: cfg.HistoryLimit, Location: cfg.Location},
		uuid.NewString,
		now,
		logger,
	)
	if err := tracker.Load(ctx); err != nil {
		_ = storage.Close()
		return nil, err
	}

	return &session{
		tracker:  tracker,
		location: cfg.Location,
		now:      now,
		logger:   logger,
		close:    storage.Close,
	}, nil
}

func (s *session) release() {
	if err := s.close(); err != nil {
		s.logger.Error("failed to close storage", "error", err)
	}
}

func loadConfig(opts *options) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return config.Config{}, err
	}
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}
	return cfg, nil
}
