// Package config loads batch generation files: one YAML document listing
// the patterns to compile into a single output package.
package config

import (
	"bytes"
	"fmt"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KromDaniel/regtag/internal/warn"
)

// Batch describes a set of patterns generated into one package.
type Batch struct {
	// Package is the Go package name of every generated file.
	Package string `yaml:"package"`

	// OutputDir receives the generated files. Relative paths are resolved
	// against the directory of the batch file.
	OutputDir string `yaml:"output_dir"`

	// Threshold bounds the TDFA state count of each pattern (0 = default).
	Threshold int `yaml:"threshold,omitempty"`

	// Warnings are -W flag values applied to every pattern.
	Warnings []string `yaml:"warnings,omitempty"`

	Patterns []Entry `yaml:"patterns"`
}

// Entry is one pattern of a batch.
type Entry struct {
	// Name is the generated type name; it must be an exported identifier.
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`

	// Output is the file name inside OutputDir, lower case Name + ".go"
	// when empty.
	Output string `yaml:"output,omitempty"`
}

// OutputFile returns the file name of e.
func (e Entry) OutputFile() string {
	if e.Output != "" {
		return e.Output
	}
	return strings.ToLower(e.Name) + ".go"
}

// Load reads and validates the batch file at path.
func Load(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes a batch document. baseDir resolves a relative OutputDir.
func Parse(data []byte, baseDir string) (*Batch, error) {
	var b Batch
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if b.OutputDir == "" {
		b.OutputDir = "."
	}
	if !filepath.IsAbs(b.OutputDir) && baseDir != "" {
		b.OutputDir = filepath.Join(baseDir, b.OutputDir)
	}

	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid batch: %w", err)
	}
	return &b, nil
}

// Validate checks that required fields are present and consistent.
func (b *Batch) Validate() error {
	if b.Package == "" {
		return fmt.Errorf("package is required")
	}
	if !token.IsIdentifier(b.Package) {
		return fmt.Errorf("package %q is not a valid identifier", b.Package)
	}
	if b.Threshold < 0 {
		return fmt.Errorf("threshold must not be negative")
	}
	if err := warn.New(io.Discard).ApplyAll(b.Warnings); err != nil {
		return fmt.Errorf("warnings: %w", err)
	}
	if len(b.Patterns) == 0 {
		return fmt.Errorf("patterns list is required and must be non-empty")
	}

	names := make(map[string]bool)
	outputs := make(map[string]string)
	for i, e := range b.Patterns {
		if e.Name == "" {
			return fmt.Errorf("patterns[%d]: name is required", i)
		}
		if !token.IsIdentifier(e.Name) || !token.IsExported(e.Name) {
			return fmt.Errorf("patterns[%d]: name %q must be an exported identifier", i, e.Name)
		}
		if names[e.Name] {
			return fmt.Errorf("patterns[%d]: duplicate name %q", i, e.Name)
		}
		names[e.Name] = true

		if e.Pattern == "" {
			return fmt.Errorf("patterns[%d]: pattern is required", i)
		}

		out := e.OutputFile()
		if prev, ok := outputs[out]; ok {
			return fmt.Errorf("patterns[%d]: output %q already used by %s", i, out, prev)
		}
		outputs[out] = e.Name
	}
	return nil
}
