// Package brew talks to the Homebrew command line and the files it keeps on
// disk. Everything that starts an external process goes through a
// CommandRunner so tests can replace it.
package brew

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	bferrors "github.com/adamancini/brewfile/internal/errors"
	"github.com/adamancini/brewfile/internal/logging"
)

// CommandRunner is an interface for running external commands.
// This allows for mocking in tests.
type CommandRunner interface {
	Run(name string, args ...string) ([]byte, error)
}

// DefaultCommandRunner uses os/exec to run commands with auto update disabled.
// When Stream is set, output is copied to it while the command runs and the
// command is attached to the terminal's stdin.
type DefaultCommandRunner struct {
	Stream io.Writer
	Env    []string
}

func (r *DefaultCommandRunner) Run(name string, args ...string) ([]byte, error) {
	logging.LogCommand(name, args)

	cmd := exec.Command(name, args...)
	cmd.Env = append(os.Environ(), "HOMEBREW_NO_AUTO_UPDATE=1")
	cmd.Env = append(cmd.Env, r.Env...)

	var buf bytes.Buffer
	if r.Stream != nil {
		w := io.MultiWriter(&buf, r.Stream)
		cmd.Stdout, cmd.Stderr = w, w
		cmd.Stdin = os.Stdin
	} else {
		cmd.Stdout, cmd.Stderr = &buf, &buf
	}
	err := cmd.Run()
	return buf.Bytes(), err
}

// Result is the exit code and output lines of a finished command.
type Result struct {
	Command string
	Code    int
	Lines   []string
}

// OK reports whether the command exited with status zero.
func (r Result) OK() bool {
	return r.Code == 0
}

// First returns the first output line, or "".
func (r Result) First() string {
	if len(r.Lines) == 0 {
		return ""
	}
	return r.Lines[0]
}

// ExitError aborts a run when a fatal command fails. The process exits with Code.
type ExitError struct {
	Command string
	Code    int
	Lines   []string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command failed with exit code %d: %s", e.Code, e.Command)
}

// Unwrap exposes the failure as a COMMAND_FAILED error.
func (e *ExitError) Unwrap() error {
	return bferrors.New(bferrors.ErrCommandFailed, e.Command).WithDetail("code", e.Code)
}

// Check converts a failed result into an ExitError.
func (r Result) Check() error {
	if r.OK() {
		return nil
	}
	code := r.Code
	if code < 0 {
		code = 1
	}
	return &ExitError{Command: r.Command, Code: code, Lines: r.Lines}
}

// execute runs name through runner and never fails: start errors become a
// result with code -1 and the error text as output.
func execute(runner CommandRunner, name string, args ...string) Result {
	res := Result{Command: strings.TrimSpace(name + " " + strings.Join(args, " "))}

	out, err := runner.Run(name, args...)
	res.Lines = splitLines(out)
	if err == nil {
		return res
	}

	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) && coder.ExitCode() >= 0 {
		res.Code = coder.ExitCode()
		if res.Code == 0 {
			res.Code = 1
		}
		return res
	}
	res.Code = -1
	if len(res.Lines) == 0 {
		res.Lines = []string{fmt.Sprintf("%s: %v", name, err)}
	}
	return res
}

func splitLines(out []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), " \t\r"))
	}
	return lines
}
