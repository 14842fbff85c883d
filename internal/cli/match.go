package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KromDaniel/regtag/internal/compiler"
)

// MatchOptions holds flags for the match command.
type MatchOptions struct {
	*RootOptions
	All       bool
	Threshold int
}

// Group is one capture group of a match.
type Group struct {
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// MatchResult holds the matches found in one input.
type MatchResult struct {
	Input   string    `json:"input"`
	Matches [][]Group `json:"matches"`
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "match <pattern> <input>...",
		Short: "Run the automaton of a pattern on inputs",
		Long: `Build the tagged DFA of a pattern and run it on each input without
generating code. Unset groups are omitted. Exits with status 1 when no
input matches.`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "report every non-overlapping match")
	cmd.Flags().IntVar(&opts.Threshold, "threshold", compiler.DefaultTDFAThreshold, "maximum number of TDFA states")

	return cmd
}

func runMatch(opts *MatchOptions, pattern string, inputs []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	logger := compiler.NewLogger(opts.Verbose)
	logger.SetOutput(formatter.GetErrWriter())

	p, err := compiler.CompileProgram(pattern, opts.Threshold, logger)
	if err != nil {
		return formatter.Fail(errorCode(err), err)
	}

	results := make([]MatchResult, 0, len(inputs))
	matched := false
	for _, input := range inputs {
		var locs [][]int
		if opts.All {
			locs = p.FindAllSubmatchIndex(input, -1)
		} else if loc := p.FindSubmatchIndex(input); loc != nil {
			locs = [][]int{loc}
		}

		r := MatchResult{Input: input, Matches: make([][]Group, 0, len(locs))}
		for _, loc := range locs {
			r.Matches = append(r.Matches, groups(p, input, loc))
		}
		matched = matched || len(locs) > 0
		results = append(results, r)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if len(r.Matches) == 0 {
				fmt.Fprintf(formatter.Writer, "%q: no match\n", r.Input)
				continue
			}
			fmt.Fprintf(formatter.Writer, "%q: %d match(es)\n", r.Input, len(r.Matches))
			for _, m := range r.Matches {
				for _, g := range m {
					label := fmt.Sprint(g.Index)
					if g.Name != "" {
						label += " " + g.Name
					}
					fmt.Fprintf(formatter.Writer, "  [%s] %d-%d %q\n", label, g.Start, g.End, g.Text)
				}
			}
		}
	}

	if !matched {
		return NewExitError(ExitFailure, "no match")
	}
	return nil
}

func groups(p *compiler.Program, input string, loc []int) []Group {
	var out []Group
	for i := 0; i < len(loc)/2; i++ {
		start, end := loc[2*i], loc[2*i+1]
		if start < 0 {
			continue
		}
		g := Group{Index: i, Start: start, End: end, Text: input[start:end]}
		if i < len(p.CaptureNames) {
			g.Name = p.CaptureNames[i]
		}
		out = append(out, g)
	}
	return out
}
