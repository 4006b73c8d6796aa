package auth

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// Prompter supplies interactive input. The scraper never reads stdin
// directly, so tests can script every prompt.
type Prompter interface {
	// ReadLine prints the prompt and reads one trimmed line.
	ReadLine(prompt string) (string, error)

	// ReadSecret prints the prompt and reads one line without echoing
	// when the terminal supports it.
	ReadSecret(prompt string) (string, error)
}

// TerminalPrompter reads from stdin, masking secrets on a real terminal.
type TerminalPrompter struct {
	reader *bufio.Reader
}

// NewTerminalPrompter creates a prompter bound to stdin.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{reader: bufio.NewReader(os.Stdin)}
}

// ReadLine prints the prompt and reads one trimmed line from stdin.
func (t *TerminalPrompter) ReadLine(prompt string) (string, error) {
	fmt.Print(prompt)
	input, err := t.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// ReadSecret reads a line without echo when stdin is a terminal, falling
// back to a regular read otherwise.
func (t *TerminalPrompter) ReadSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println() // New line after the hidden input
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}
	return t.ReadLine("")
}

// ScriptedPrompter returns canned answers in order; for tests.
type ScriptedPrompter struct {
	Answers []string
	Prompts []string
	next    int
}

// ReadLine returns the next scripted answer, recording the prompt.
func (s *ScriptedPrompter) ReadLine(prompt string) (string, error) {
	s.Prompts = append(s.Prompts, prompt)
	if s.next >= len(s.Answers) {
		return "", io.EOF
	}
	answer := s.Answers[s.next]
	s.next++
	return answer, nil
}

// ReadSecret behaves like ReadLine; scripted input has nothing to mask.
func (s *ScriptedPrompter) ReadSecret(prompt string) (string, error) {
	return s.ReadLine(prompt)
}
