package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KromDaniel/regtag/internal/compiler"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	Threshold int
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "analyze <pattern>",
		Short:         "Report pattern features and automaton statistics",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Threshold, "threshold", compiler.DefaultTDFAThreshold, "maximum number of TDFA states")

	return cmd
}

func runAnalyze(opts *AnalyzeOptions, pattern string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	res, err := compiler.AnalyzePattern(pattern, opts.Threshold)
	if err != nil {
		return formatter.Fail(errorCode(err), err)
	}
	if formatter.Format == "json" {
		return formatter.Success(res)
	}

	fmt.Fprintf(formatter.Writer, "Pattern:   %s\n", pattern)
	fmt.Fprintf(formatter.Writer, "Features:  %s\n", strings.Join(res.FeatureLabels, ", "))
	if len(res.Warnings) > 0 {
		fmt.Fprintf(formatter.Writer, "Warnings:  %s\n", strings.Join(res.Warnings, ", "))
	}
	if !res.Supported {
		fmt.Fprintf(formatter.Writer, "Supported: no (%s)\n", res.Reason)
		return nil
	}
	s := res.TDFA
	fmt.Fprintln(formatter.Writer, "Supported: yes")
	fmt.Fprintf(formatter.Writer, "States:    %d\n", s.States)
	fmt.Fprintf(formatter.Writer, "Registers: %d\n", s.Registers)
	fmt.Fprintf(formatter.Writer, "Blocks:    %d (%d save lists, %d copy lists)\n", s.Blocks, s.SaveLists, s.CopyLists)
	fmt.Fprintf(formatter.Writer, "Ranges:    %d\n", s.Ranges)
	return nil
}
