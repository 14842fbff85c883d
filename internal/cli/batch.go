package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KromDaniel/regtag/internal/compiler"
	"github.com/KromDaniel/regtag/internal/config"
	"github.com/KromDaniel/regtag/internal/warn"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	Jobs int // concurrent compilations, GOMAXPROCS when 0
}

// BatchResult lists the files generated from a batch file.
type BatchResult struct {
	Package   string           `json:"package"`
	OutputDir string           `json:"output_dir"`
	Generated []GenerateResult `json:"generated"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <config.yaml>",
		Short: "Generate every pattern listed in a batch file",
		Long: `Generate one Go file per pattern listed in a YAML batch file.

Patterns are compiled concurrently. The first failure stops the batch.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "concurrent compilations (default GOMAXPROCS)")

	return cmd
}

func runBatch(opts *BatchOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	b, err := config.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return formatter.Fail(ErrCodeNotFound, err)
		}
		return formatter.Fail(ErrCodeInvalidConfig, err)
	}
	formatter.VerboseLog("Loaded %d pattern(s) from %s", len(b.Patterns), path)

	if err := os.MkdirAll(b.OutputDir, 0755); err != nil {
		return formatter.Fail(ErrCodeWriteFailed, fmt.Errorf("creating output directory: %w", err))
	}

	diag := &lockedWriter{w: formatter.GetErrWriter()}
	logger := compiler.NewLogger(opts.Verbose)
	logger.SetOutput(diag)

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	results := make([]GenerateResult, len(b.Patterns))
	for i, e := range b.Patterns {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			w := warn.New(diag)
			w.SetPrefix("regtag: " + e.Name)
			if err := w.ApplyAll(b.Warnings); err != nil {
				return err
			}

			output := filepath.Join(b.OutputDir, e.OutputFile())
			c := compiler.New(compiler.Config{
				Pattern:       e.Pattern,
				Name:          e.Name,
				OutputFile:    output,
				Package:       b.Package,
				TDFAThreshold: b.Threshold,
				Logger:        logger.Named(e.Name),
				Warnings:      w,
			})
			if err := c.Generate(); err != nil {
				return fmt.Errorf("%s: %w", e.Name, err)
			}

			results[i] = GenerateResult{
				Name:    e.Name,
				Pattern: e.Pattern,
				Output:  output,
				Package: b.Package,
				TDFA:    c.Program().Stats(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return formatter.Fail(errorCode(err), err)
	}

	result := BatchResult{
		Package:   b.Package,
		OutputDir: b.OutputDir,
		Generated: results,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Generated %d pattern(s) into %s\n\n", len(results), result.OutputDir)
	for _, r := range results {
		fmt.Fprintf(formatter.Writer, "  %s: %d states, %d save lists, %d copy lists -> %s\n",
			r.Name, r.TDFA.States, r.TDFA.SaveLists, r.TDFA.CopyLists, filepath.Base(r.Output))
	}
	return nil
}
