// Package compiler builds Tagged DFAs from regex patterns and generates Go
// matchers from them.
package compiler

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"regexp/syntax"

	"github.com/KromDaniel/regtag/internal/codegen"
	"github.com/KromDaniel/regtag/internal/warn"
	"github.com/dave/jennifer/jen"
)

// Config holds the configuration for code generation.
type Config struct {
	Pattern       string
	Name          string
	OutputFile    string
	Package       string
	Program       *syntax.Prog   // optional, parsed from Pattern when nil
	RegexAST      *syntax.Regexp // For extracting capture group names
	TDFAThreshold int            // Max DFA states (0 = use default 500)
	Verbose       bool           // Enable verbose logging of analysis decisions
	Logger        *Logger        // optional, overrides Verbose
	Warnings      *warn.Warn     // optional, warnings are not checked when nil
}

// Compiler generates Go code from regex patterns.
type Compiler struct {
	config               Config
	file                 *jen.File
	logger               *Logger
	program              *Program
	captureNames         []string // Capture group names (empty string for unnamed groups)
	fields               []string // Result struct field per capture group after the match
	hasRepeatingCaptures bool     // True if any capture groups are in repeating context
}

// New creates a new compiler instance.
func New(config Config) *Compiler {
	logger := config.Logger
	if logger == nil {
		logger = NewLogger(config.Verbose)
	}
	return &Compiler{
		config: config,
		logger: logger,
	}
}

// SetOutputFile sets the output file path.
func (c *Compiler) SetOutputFile(path string) {
	c.config.OutputFile = path
}

// Program returns the compiled program, nil before Build.
func (c *Compiler) Program() *Program {
	return c.program
}

// Build parses the pattern when needed, constructs the automaton and
// indexes its commands. It is called by Generate and Source.
func (c *Compiler) Build() error {
	if c.program != nil {
		return nil
	}

	if c.config.Program == nil {
		regexAST, prog, err := ParsePattern(c.config.Pattern)
		if err != nil {
			return err
		}
		c.config.RegexAST, c.config.Program = regexAST, prog
	}
	prog := c.config.Program

	if c.config.RegexAST != nil {
		c.captureNames = extractCaptureNames(c.config.RegexAST)
		c.hasRepeatingCaptures = hasRepeatingCaptures(c.config.RegexAST)
	} else {
		c.captureNames = make([]string, prog.NumCap/2)
	}
	c.fields = codegen.FieldNames(c.captureNames)

	c.logger.Section("Pattern Analysis")
	c.logger.Log("Pattern: %s", c.config.Pattern)
	c.logger.Log("NFA states: %d", len(prog.Inst))
	c.logger.Log("Capture groups: %d", prog.NumCap/2-1)
	c.logger.Log("Is anchored: %v", isAnchored(prog))
	c.logger.Log("Repeating captures: %v", c.hasRepeatingCaptures)

	program, err := buildProgram(c.config.Pattern, c.config.RegexAST, prog, c.config.TDFAThreshold, c.logger)
	if err != nil {
		return fmt.Errorf("failed to build TDFA: %w", err)
	}
	program.CaptureNames = c.captureNames
	c.program = program

	return c.checkWarnings()
}

// checkWarnings raises the pattern level warnings.
func (c *Compiler) checkWarnings() error {
	w := c.config.Warnings
	if w == nil {
		return nil
	}
	if hasEmptyClass(c.config.RegexAST) {
		w.EmptyClass(c.config.Pattern)
	}
	if c.program.MatchString("") {
		w.MatchEmpty(c.config.Pattern)
	}
	if canMatchNonASCII(c.config.Program) {
		w.NonASCIIRunes(c.config.Pattern)
	}
	if w.Error() {
		return fmt.Errorf("%w: pattern %q", ErrWarningsAsErrors, c.config.Pattern)
	}
	return nil
}

// method returns a jen.Statement for declaring a method on the generated struct.
func (c *Compiler) method(name string) *jen.Statement {
	return c.file.Func().
		Params(jen.Id(c.config.Name)).
		Id(name)
}

// render builds the program and emits the generated file.
func (c *Compiler) render() error {
	if err := c.Build(); err != nil {
		return err
	}
	c.file = jen.NewFile(c.config.Package)
	c.file.HeaderComment(fmt.Sprintf("Code generated by regtag for pattern: %s", c.config.Pattern))
	c.file.HeaderComment("DO NOT EDIT.")

	c.logger.Section("Code Generation")
	if err := c.emit(); err != nil {
		return fmt.Errorf("failed to emit code: %w", err)
	}
	return nil
}

// Source returns the formatted generated code.
func (c *Compiler) Source() ([]byte, error) {
	if err := c.render(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.file.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render file: %w", err)
	}
	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format file: %w", err)
	}
	return formatted, nil
}

// Generate generates the Go code and writes it to the output file.
func (c *Compiler) Generate() error {
	if err := c.render(); err != nil {
		return err
	}

	// Save to file
	if err := c.file.Save(c.config.OutputFile); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}

	// Format the generated file
	if err := formatFile(c.config.OutputFile); err != nil {
		return fmt.Errorf("failed to format file: %w", err)
	}

	c.logger.Log("Wrote %s", c.config.OutputFile)
	return nil
}

// formatFile reads a file, formats it with go/format, and writes it back.
func formatFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	formatted, err := format.Source(src)
	if err != nil {
		return err
	}

	return os.WriteFile(path, formatted, 0644)
}
