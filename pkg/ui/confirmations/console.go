// Package confirmations provides UI implementations for confirmation dialogs.
package confirmations

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// Confirmer asks a yes/no question. Declining is the default.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(question string) (bool, error)

func (f ConfirmFunc) Confirm(question string) (bool, error) { return f(question) }

// Always answers every question with answer.
func Always(answer bool) Confirmer {
	return ConfirmFunc(func(string) (bool, error) { return answer, nil })
}

// ConsoleDialog implements Confirmer for console interaction
type ConsoleDialog struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewConsoleDialog creates a console dialog on stdin/stdout. On a terminal
// it uses pterm's interactive confirm; otherwise it reads one line.
func NewConsoleDialog() *ConsoleDialog {
	interactive := isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
	return &ConsoleDialog{in: bufio.NewReader(os.Stdin), out: os.Stdout, interactive: interactive}
}

// NewLineDialog reads answers line by line from in, writing prompts to out.
func NewLineDialog(in io.Reader, out io.Writer) *ConsoleDialog {
	return &ConsoleDialog{in: bufio.NewReader(in), out: out}
}

// Confirm shows question and waits for the answer.
func (d *ConsoleDialog) Confirm(question string) (bool, error) {
	if d.interactive {
		return pterm.DefaultInteractiveConfirm.
			WithDefaultValue(false).
			Show(question)
	}

	fmt.Fprintf(d.out, "%s (y/N) ", question)
	line, err := d.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read user input: %w", err)
	}
	return ParseAnswer(line), nil
}

// ParseAnswer reports whether a typed answer means yes.
func ParseAnswer(answer string) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
