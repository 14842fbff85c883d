// Command regtag generates tagged DFA matchers for regular expressions.
//
// Usage:
//
//	regtag generate '(?P<user>\w+)@(\w+)' --name Email --package patterns
//	regtag batch regtag.yaml
//	regtag inspect '(a|ab)(c|bcd)(d*)'
//	regtag match '(\d+)-(\d+)' 10-20
//	regtag analyze '(a+)+b'
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/KromDaniel/regtag/internal/cli"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := cli.NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return cli.ExitSuccess
	}

	// commands report their own failures; usage errors come from cobra
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return cli.ExitCommandError
	}
	return exitErr.Code
}
