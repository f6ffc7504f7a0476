package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/qpeep/qpeep/internal/gates"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	File  string
	Rules string
}

// ValidateReport is the validate command's JSON payload.
type ValidateReport struct {
	Program string `json:"program"`
	Ops     int    `json:"ops"`
	Valid   bool   `json:"valid"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a program without running it",
		Long: `Parse and validate a YAML program against the gate set, without
pushing it through the optimizer.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "path to program YAML (required)")
	cmd.Flags().StringVar(&opts.Rules, "rules", "", "path to CUE ruleset")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	rs, err := loadRuleset(opts.Rules)
	if err != nil {
		_ = formatter.Error(classifyRulesetError(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading ruleset", err)
	}

	prog, err := loadProgram(opts.File, gates.NewSet(rs.Registry))
	if err != nil {
		code, exit := classifyProgramError(err)
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(exit, "validating program", err)
	}

	report := ValidateReport{Program: prog.Name, Ops: len(prog.Ops), Valid: true}
	formatter.Text(func(w io.Writer) {
		fmt.Fprintf(w, "program %q valid (%d op(s))\n", report.Program, report.Ops)
	})
	return formatter.JSON(report)
}
