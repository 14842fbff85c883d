package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBatch = `
package: patterns
output_dir: gen
threshold: 200
warnings: [all, error=match-empty-string]
patterns:
  - name: Email
    pattern: '([\w.]+)@([\w.]+)'
  - name: Date
    pattern: '(\d{4})-(\d{2})-(\d{2})'
    output: date_gen.go
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "regtag.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validBatch), 0644))

	b, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "patterns", b.Package)
	assert.Equal(t, filepath.Join(dir, "gen"), b.OutputDir)
	assert.Equal(t, 200, b.Threshold)
	assert.Equal(t, []string{"all", "error=match-empty-string"}, b.Warnings)
	require.Len(t, b.Patterns, 2)
	assert.Equal(t, `([\w.]+)@([\w.]+)`, b.Patterns[0].Pattern)
	assert.Equal(t, "email.go", b.Patterns[0].OutputFile())
	assert.Equal(t, "date_gen.go", b.Patterns[1].OutputFile())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read batch file")
}

func TestParseDefaults(t *testing.T) {
	b, err := Parse([]byte("package: p\npatterns:\n  - name: A\n    pattern: a\n"), "")
	require.NoError(t, err)
	assert.Equal(t, ".", b.OutputDir)
	assert.Zero(t, b.Threshold)

	abs := filepath.Join(t.TempDir(), "out")
	b, err = Parse([]byte("package: p\noutput_dir: "+abs+"\npatterns:\n  - name: A\n    pattern: a\n"), "/elsewhere")
	require.NoError(t, err)
	assert.Equal(t, abs, b.OutputDir)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"unknown field", "package: p\npaterns: []\n", "failed to parse YAML"},
		{"missing package", "patterns:\n  - name: A\n    pattern: a\n", "package is required"},
		{"bad package", "package: 1p\npatterns:\n  - name: A\n    pattern: a\n", "not a valid identifier"},
		{"no patterns", "package: p\n", "patterns list is required"},
		{"negative threshold", "package: p\nthreshold: -1\npatterns:\n  - name: A\n    pattern: a\n", "threshold"},
		{"unknown warning", "package: p\nwarnings: [bogus]\npatterns:\n  - name: A\n    pattern: a\n", "unknown warning"},
		{"unexported name", "package: p\npatterns:\n  - name: email\n    pattern: a\n", "exported identifier"},
		{"missing name", "package: p\npatterns:\n  - pattern: a\n", "name is required"},
		{"duplicate name", "package: p\npatterns:\n  - name: A\n    pattern: a\n  - name: A\n    pattern: b\n", "duplicate name"},
		{"missing pattern", "package: p\npatterns:\n  - name: A\n", "pattern is required"},
		{"duplicate output", "package: p\npatterns:\n  - name: A\n    pattern: a\n  - name: B\n    pattern: b\n    output: a.go\n", "already used by A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
