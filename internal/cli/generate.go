package cli

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KromDaniel/regtag/internal/compiler"
	"github.com/KromDaniel/regtag/internal/warn"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Name      string
	Output    string
	Package   string
	Threshold int
	Warnings  []string
}

// GenerateResult describes one generated file.
type GenerateResult struct {
	Name    string             `json:"name"`
	Pattern string             `json:"pattern"`
	Output  string             `json:"output"`
	Package string             `json:"package"`
	TDFA    compiler.TDFAStats `json:"tdfa"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <pattern>",
		Short: "Generate a Go matcher for a pattern",
		Long: `Compile a pattern into a tagged DFA, share identical command lists
between transitions and write the matcher as Go source.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "generated type name (required)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (default <name>.go)")
	cmd.Flags().StringVarP(&opts.Package, "package", "p", "main", "package name of the generated file")
	cmd.Flags().IntVar(&opts.Threshold, "threshold", compiler.DefaultTDFAThreshold, "maximum number of TDFA states")
	cmd.Flags().StringArrayVarP(&opts.Warnings, "warn", "W", nil, "warning flag: all, <name>, no-<name>, error, error=<name>")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runGenerate(opts *GenerateOptions, pattern string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if !token.IsIdentifier(opts.Name) || !token.IsExported(opts.Name) {
		return formatter.Fail(ErrCodeInvalidConfig, fmt.Errorf("name %q must be an exported identifier", opts.Name))
	}
	if !token.IsIdentifier(opts.Package) {
		return formatter.Fail(ErrCodeInvalidConfig, fmt.Errorf("package %q is not a valid identifier", opts.Package))
	}

	w := warn.New(formatter.GetErrWriter())
	if err := w.ApplyAll(opts.Warnings); err != nil {
		return formatter.Fail(ErrCodeInvalidConfig, err)
	}

	output := opts.Output
	if output == "" {
		output = strings.ToLower(opts.Name) + ".go"
	}

	logger := compiler.NewLogger(opts.Verbose)
	logger.SetOutput(formatter.GetErrWriter())

	c := compiler.New(compiler.Config{
		Pattern:       pattern,
		Name:          opts.Name,
		OutputFile:    output,
		Package:       opts.Package,
		TDFAThreshold: opts.Threshold,
		Logger:        logger,
		Warnings:      w,
	})
	if err := c.Generate(); err != nil {
		return formatter.Fail(errorCode(err), err)
	}

	result := GenerateResult{
		Name:    opts.Name,
		Pattern: pattern,
		Output:  output,
		Package: opts.Package,
		TDFA:    c.Program().Stats(),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	s := result.TDFA
	fmt.Fprintf(formatter.Writer, "✓ Generated %s -> %s\n", result.Name, result.Output)
	fmt.Fprintf(formatter.Writer, "  %d states, %d registers, %d save lists, %d copy lists\n",
		s.States, s.Registers, s.SaveLists, s.CopyLists)
	return nil
}
