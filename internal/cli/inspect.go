package cli

import (
	"bytes"

	"github.com/spf13/cobra"

	"github.com/KromDaniel/regtag/internal/compiler"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Threshold int
}

// InspectResult is the JSON payload of the inspect command.
type InspectResult struct {
	Pattern string             `json:"pattern"`
	TDFA    compiler.TDFAStats `json:"tdfa"`
	Listing string             `json:"listing"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <pattern>",
		Short: "Print the automaton and its command lists",
		Long: `Print the states, byte ranges and final blocks of the tagged DFA
built for a pattern, followed by the distinct save and copy lists and the
list each block was mapped to.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Threshold, "threshold", compiler.DefaultTDFAThreshold, "maximum number of TDFA states")

	return cmd
}

func runInspect(opts *InspectOptions, pattern string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	logger := compiler.NewLogger(opts.Verbose)
	logger.SetOutput(formatter.GetErrWriter())

	p, err := compiler.CompileProgram(pattern, opts.Threshold, logger)
	if err != nil {
		return formatter.Fail(errorCode(err), err)
	}

	if formatter.Format != "json" {
		return p.Dump(formatter.Writer)
	}

	var listing bytes.Buffer
	if err := p.Dump(&listing); err != nil {
		return formatter.Fail(ErrCodeGeneric, err)
	}
	return formatter.Success(InspectResult{
		Pattern: pattern,
		TDFA:    p.Stats(),
		Listing: listing.String(),
	})
}
