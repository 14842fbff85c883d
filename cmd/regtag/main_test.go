package main

import (
	"bytes"
	"testing"

	"github.com/KromDaniel/regtag/internal/cli"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "match",
			args:       []string{"match", `(\d+)-(\d+)`, "10-20"},
			wantCode:   cli.ExitSuccess,
			wantStdout: `[2] 3-5 "20"`,
		},
		{
			name:       "no match",
			args:       []string{"match", `x`, "abc"},
			wantCode:   cli.ExitFailure,
			wantStdout: "no match",
		},
		{
			name:       "unsupported",
			args:       []string{"inspect", `\bx`},
			wantCode:   cli.ExitCommandError,
			wantStdout: "Error [E003]",
		},
		{
			name:       "unknown command",
			args:       []string{"frobnicate"},
			wantCode:   cli.ExitCommandError,
			wantStderr: `unknown command "frobnicate"`,
		},
		{
			name:       "missing argument",
			args:       []string{"analyze"},
			wantCode:   cli.ExitCommandError,
			wantStderr: "accepts 1 arg(s), received 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)
			if code != tt.wantCode {
				t.Errorf("run() = %d, want %d (stdout %q, stderr %q)", code, tt.wantCode, stdout.String(), stderr.String())
			}
			if !bytes.Contains(stdout.Bytes(), []byte(tt.wantStdout)) {
				t.Errorf("stdout = %q, want it to contain %q", stdout.String(), tt.wantStdout)
			}
			if !bytes.Contains(stderr.Bytes(), []byte(tt.wantStderr)) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}
