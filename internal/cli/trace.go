package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/qpeep/qpeep/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	DB  string
	Run string
}

// TraceRunInfo is one run in the trace command's JSON payload.
type TraceRunInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Window    int    `json:"window"`
	CreatedAt string `json:"created_at"`
	Events    int    `json:"events"`
}

// TraceEventInfo is one forwarded instruction in the JSON payload.
type TraceEventInfo struct {
	Seq       int    `json:"seq"`
	Gate      string `json:"gate"`
	Params    string `json:"params"`
	Resources string `json:"resources"`
	Terminal  bool   `json:"terminal"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded optimizer runs",
		Long: `List the runs recorded in a trace database, or print one run's
forwarded stream.

Example:
  qpeep trace --db trace.db
  qpeep trace --db trace.db --run 0190a6e2-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "path to trace database (required)")
	cmd.Flags().StringVar(&opts.Run, "run", "", "print this run id instead of listing runs")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	store, err := trace.Open(opts.DB)
	if err != nil {
		_ = formatter.Error(ErrCodeTraceStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening trace store", err)
	}
	defer store.Close()

	ctx := context.Background()
	if opts.Run == "" {
		return listRuns(ctx, store, formatter)
	}
	return showRun(ctx, store, formatter, opts.Run)
}

func listRuns(ctx context.Context, store *trace.Store, formatter *OutputFormatter) error {
	runs, err := store.ListRuns(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeTraceStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "listing runs", err)
	}

	infos := make([]TraceRunInfo, len(runs))
	for i, r := range runs {
		infos[i] = TraceRunInfo{ID: r.ID, Name: r.Name, Window: r.Window, CreatedAt: r.CreatedAt, Events: r.Events}
	}

	formatter.Text(func(w io.Writer) {
		if len(infos) == 0 {
			fmt.Fprintln(w, "no recorded runs")
			return
		}
		for _, r := range infos {
			fmt.Fprintf(w, "%s  %s  window=%d  events=%d  %s\n", r.ID, r.Name, r.Window, r.Events, r.CreatedAt)
		}
	})
	return formatter.JSON(infos)
}

func showRun(ctx context.Context, store *trace.Store, formatter *OutputFormatter, runID string) error {
	events, err := store.ReadRun(ctx, runID)
	if err != nil {
		code := ErrCodeTraceStore
		if errors.Is(err, trace.ErrRunNotFound) {
			code = ErrCodeNotFound
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, "reading run", err)
	}

	infos := make([]TraceEventInfo, len(events))
	for i, ev := range events {
		infos[i] = TraceEventInfo{Seq: ev.Seq, Gate: ev.Gate, Params: ev.Params, Resources: ev.Resources, Terminal: ev.Terminal}
	}

	formatter.Text(func(w io.Writer) {
		for _, ev := range infos {
			marker := ""
			if ev.Terminal {
				marker = "  (terminal)"
			}
			fmt.Fprintf(w, "[%d] %s %s %s%s\n", ev.Seq, ev.Gate, ev.Params, ev.Resources, marker)
		}
	})
	return formatter.JSON(infos)
}
