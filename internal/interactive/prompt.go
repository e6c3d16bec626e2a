// Package interactive provides interactive prompts for user confirmation.
package interactive

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Response represents the user's response to a yes/no prompt.
type Response int

const (
	ResponseYes     Response = iota // Empty input also means yes
	ResponseNo                      // Decline
	ResponseInvalid                 // Ask again
)

// Prompter asks yes/no questions and reads free-form answers.
type Prompter struct {
	in      io.Reader
	out     io.Writer
	scanner *bufio.Scanner
	// assumeYes answers every yes/no question with yes without reading.
	assumeYes bool
}

// NewPrompter creates a prompter with stdin/stdout.
func NewPrompter(assumeYes bool) *Prompter {
	p := NewPrompterWithIO(os.Stdin, os.Stdout)
	p.assumeYes = assumeYes
	return p
}

// NewPrompterWithIO creates a prompter with custom input/output (for testing).
func NewPrompterWithIO(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:      in,
		out:     out,
		scanner: bufio.NewScanner(in),
	}
}

// SetAssumeYes toggles automatic yes answers.
func (p *Prompter) SetAssumeYes(yes bool) {
	p.assumeYes = yes
}

// IsTerminal checks if stdin is a terminal (TTY).
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func parseYN(input string) Response {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "y", "yes":
		return ResponseYes
	case "n", "no":
		return ResponseNo
	default:
		return ResponseInvalid
	}
}

// AskYN asks question until it gets a yes or no. Closed input counts as no.
func (p *Prompter) AskYN(question string) bool {
	if p.assumeYes {
		_, _ = fmt.Fprintln(p.out, question+" [y/n]: y")
		return true
	}

	_, _ = fmt.Fprint(p.out, question+" [y/n]: ")
	for {
		if !p.scanner.Scan() {
			_, _ = fmt.Fprintln(p.out)
			return false
		}
		switch parseYN(p.scanner.Text()) {
		case ResponseYes:
			return true
		case ResponseNo:
			return false
		}
		_, _ = fmt.Fprint(p.out, "Answer with yes (y) or no (n): ")
	}
}

// Ask prints question and returns the trimmed answer, or "" on closed input.
func (p *Prompter) Ask(question string) string {
	_, _ = fmt.Fprint(p.out, question)
	if !p.scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(p.scanner.Text())
}
