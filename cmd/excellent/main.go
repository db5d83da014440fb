// Command excellent renders message templates and evaluates expressions
// from the command line.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

func main() {
	exitCode := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	os.Exit(exitCode)
}

// run is the main entry point for the CLI, separated for testing
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}
	root := c.newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if c.logger != nil {
		_ = c.logger.Sync()
	}
	if err == nil {
		return ExitCodeSuccess
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		switch {
		case exitErr.err != nil:
			fmt.Fprintf(stderr, FmtErrorWithCause, exitErr.msg, exitErr.err)
		case exitErr.msg != "":
			fmt.Fprintf(stderr, FmtErrorLine, exitErr.msg)
		}
		return exitErr.code
	}

	// cobra reports flag and argument problems as plain errors
	fmt.Fprintf(stderr, FmtErrorLine, err)
	return ExitCodeUsageError
}

// exitError carries a specific exit code out of a command
type exitError struct {
	code int
	msg  string
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func newExitError(code int, msg string, err error) *exitError {
	return &exitError{code: code, msg: msg, err: err}
}
