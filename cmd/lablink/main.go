package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Exit codes.
const (
	exitOK       = 0
	exitAPIError = 1
	exitSystem   = 2
)

// apiFailure marks a command that reached the emulator and got an error back.
type apiFailure struct {
	err error
}

func (f *apiFailure) Error() string { return f.err.Error() }
func (f *apiFailure) Unwrap() error { return f.err }

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return exitOK
	}

	var failure *apiFailure
	if errors.As(err, &failure) {
		return exitAPIError
	}
	fmt.Fprintf(stderr, "lablink: %v\n", err)
	return exitSystem
}
