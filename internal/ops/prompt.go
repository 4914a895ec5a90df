package ops

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNoInput is returned when the operator's input ends mid-prompt.
var ErrNoInput = errors.New("no input")

// Prompter asks the operator questions on a terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a Prompter reading answers from in.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", ErrNoInput
		}
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question. An empty answer means yes; anything other
// than y/yes/n/no is asked again.
func (p *Prompter) Confirm(question string) (bool, error) {
	for {
		fmt.Fprintf(p.out, "%s [Y/n] ", question)
		answer, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "", "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "I didn't understand you. Please specify '(y)es' or '(n)o'.")
	}
}

// Prompt asks for free text, returning def when the answer is empty.
func (p *Prompter) Prompt(question, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s] ", question, def)
	} else {
		fmt.Fprintf(p.out, "%s ", question)
	}
	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Choose lists options by index and asks until a valid index is given.
func (p *Prompter) Choose(options []string, question string) (int, error) {
	var menu strings.Builder
	for i, o := range options {
		fmt.Fprintf(&menu, "[%d] %s\n", i, o)
	}
	menu.WriteString("\n" + question)

	for {
		fmt.Fprintf(p.out, "%s ", menu.String())
		answer, err := p.readLine()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 0 && n < len(options) {
			return n, nil
		}
		fmt.Fprintln(p.out, "Not a valid option.")
	}
}
