package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/qpeep/qpeep/internal/gates"
	"github.com/qpeep/qpeep/internal/optimizer"
	"github.com/qpeep/qpeep/internal/qir"
	"github.com/qpeep/qpeep/internal/testutil"
	"github.com/qpeep/qpeep/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	File    string
	Window  int
	Rules   string
	TraceDB string
}

// RunReport is the run command's JSON payload.
type RunReport struct {
	Program   string   `json:"program"`
	Window    int      `json:"window"`
	RunID     string   `json:"run_id,omitempty"`
	Forwarded []string `json:"forwarded"`
	Buffered  int      `json:"buffered"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a program through the optimizer",
		Long: `Run a YAML program through the streaming optimizer and print the
forwarded instruction stream.

Example:
  qpeep run -f program.yaml
  qpeep run -f program.yaml --window 3 --rules rules.cue --trace-db trace.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "path to program YAML (required)")
	cmd.Flags().IntVar(&opts.Window, "window", 0, "window size override (0 defers to the ruleset)")
	cmd.Flags().StringVar(&opts.Rules, "rules", "", "path to CUE ruleset")
	cmd.Flags().StringVar(&opts.TraceDB, "trace-db", "", "record the forwarded stream to this SQLite database")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// multiConsumer fans a forwarded batch out to several consumers.
type multiConsumer []optimizer.Consumer

func (m multiConsumer) Receive(batch []*qir.Instruction) error {
	for _, c := range m {
		if err := c.Receive(batch); err != nil {
			return err
		}
	}
	return nil
}

func runProgram(opts *RunOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := commandLogger(cmd, opts.Verbose)

	rs, err := loadRuleset(opts.Rules)
	if err != nil {
		_ = formatter.Error(classifyRulesetError(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading ruleset", err)
	}
	window := rs.Window
	if opts.Window > 0 {
		window = opts.Window
	}

	set := gates.NewSet(rs.Registry)
	prog, err := loadProgram(opts.File, set)
	if err != nil {
		code, exit := classifyProgramError(err)
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(exit, "loading program", err)
	}
	insts, err := prog.Build(set)
	if err != nil {
		_ = formatter.Error(ErrCodeBadProgram, err.Error(), nil)
		return WrapExitError(ExitFailure, "building program", err)
	}

	rec := &testutil.Recorder{}
	downstream := multiConsumer{rec}

	var runID string
	if opts.TraceDB != "" {
		store, err := trace.Open(opts.TraceDB)
		if err != nil {
			_ = formatter.Error(ErrCodeTraceStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "opening trace store", err)
		}
		defer store.Close()

		recorder, err := store.BeginRun(context.Background(), prog.Name, window)
		if err != nil {
			_ = formatter.Error(ErrCodeTraceStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "starting trace run", err)
		}
		runID = recorder.RunID()
		downstream = append(downstream, recorder)
	}

	engine, err := optimizer.New(downstream,
		optimizer.WithWindowSize(window),
		optimizer.WithLogger(logger),
	)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "constructing optimizer", err)
	}

	formatter.VerboseLog("running %s (window %d, %d instruction(s))", prog.Name, window, len(insts))
	if err := engine.Receive(insts); err != nil {
		_ = formatter.Error(ErrCodeRunFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "running program", err)
	}

	buffered := 0
	for _, n := range engine.Pending() {
		buffered += n
	}
	report := RunReport{
		Program:   prog.Name,
		Window:    window,
		RunID:     runID,
		Forwarded: rec.Labels(),
		Buffered:  buffered,
	}

	formatter.Text(func(w io.Writer) {
		for _, label := range report.Forwarded {
			fmt.Fprintln(w, label)
		}
		fmt.Fprintf(w, "forwarded %d instruction(s), %d still buffered (window %d)\n",
			len(report.Forwarded), report.Buffered, report.Window)
		if report.RunID != "" {
			fmt.Fprintf(w, "recorded run %s\n", report.RunID)
		}
	})
	return formatter.JSON(report)
}

// commandLogger builds the engine logger: warnings only by default, debug
// when verbose. Logs go to stderr so JSON output stays parseable.
func commandLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
