// Package regtag generates Go matchers for regular expressions. Each
// pattern is compiled to a tagged DFA whose register commands are
// canonicalized and shared, then emitted as table driven Go code.
package regtag

import (
	"fmt"
	"go/token"
	"io"

	"github.com/KromDaniel/regtag/internal/compiler"
	"github.com/KromDaniel/regtag/internal/warn"
)

// Options configures the regex compilation process.
type Options struct {
	// Pattern is the regular expression to compile
	Pattern string

	// Name is the generated type name (e.g., "Email" generates "CompiledEmail")
	Name string

	// OutputFile is the path where generated code will be written
	OutputFile string

	// Package is the Go package name for the generated code
	Package string

	// TDFAThreshold is the maximum number of automaton states (0 = default 500)
	TDFAThreshold int

	// Verbose logs analysis decisions to Log
	Verbose bool

	// Log receives verbose output and warnings, os.Stderr when nil
	Log io.Writer

	// Warnings are -W flag values such as "all", "no-non-ascii" or "error=match-empty-string"
	Warnings []string
}

// Validate checks if the options are valid.
func (o Options) Validate() error {
	if o.Pattern == "" {
		return fmt.Errorf("pattern cannot be empty")
	}
	if o.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if !token.IsIdentifier(o.Name) || !token.IsExported(o.Name) {
		return fmt.Errorf("name %q must be an exported identifier", o.Name)
	}
	if o.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if o.Package == "" {
		return fmt.Errorf("package cannot be empty")
	}
	if !token.IsIdentifier(o.Package) {
		return fmt.Errorf("package %q is not a valid identifier", o.Package)
	}
	if o.TDFAThreshold < 0 {
		return fmt.Errorf("threshold cannot be negative")
	}
	return nil
}

// Compile generates Go code for the given regex pattern.
// It returns an error if the pattern is invalid or code generation fails.
func Compile(opts Options) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	logger := compiler.NewLogger(opts.Verbose)
	if opts.Log != nil {
		logger.SetOutput(opts.Log)
	}
	w := warn.New(opts.Log)
	if err := w.ApplyAll(opts.Warnings); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	c := compiler.New(compiler.Config{
		Pattern:       opts.Pattern,
		Name:          opts.Name,
		OutputFile:    opts.OutputFile,
		Package:       opts.Package,
		TDFAThreshold: opts.TDFAThreshold,
		Logger:        logger,
		Warnings:      w,
	})
	if err := c.Generate(); err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	return nil
}
