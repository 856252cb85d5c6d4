package host

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Terminal implements Capabilities over a line-oriented reader/writer so
// the engine can run outside a real chat-platform webview.
type Terminal struct {
	user   User
	hasID  bool
	reader *bufio.Reader
	writer io.Writer
}

// TerminalConfig describes the identity and streams for a Terminal host.
type TerminalConfig struct {
	User   User
	HasID  bool
	Input  io.Reader
	Output io.Writer
}

// NewTerminal constructs a Terminal host.
func NewTerminal(cfg TerminalConfig) *Terminal {
	return &Terminal{
		user:   cfg.User,
		hasID:  cfg.HasID,
		reader: bufio.NewReader(cfg.Input),
		writer: cfg.Output,
	}
}

// Ready is a no-op for a terminal host.
func (t *Terminal) Ready() {}

// Expand is a no-op for a terminal host.
func (t *Terminal) Expand() {}

// CurrentUser returns the identity supplied at construction.
func (t *Terminal) CurrentUser() (User, bool) {
	return t.user, t.hasID
}

// Alert prints the notification.
func (t *Terminal) Alert(message string) {
	fmt.Fprintf(t.writer, "! %s\n", message)
}

// Confirm asks for y/n and treats anything but an explicit yes as decline.
func (t *Terminal) Confirm(message string) bool {
	fmt.Fprintf(t.writer, "%s [y/N] ", message)
	line, err := t.reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// ReadLine reads one raw input line. It is not part of Capabilities; the
// command loop in cmd/planner uses it to share the terminal's reader.
func (t *Terminal) ReadLine() (string, error) {
	line, err := t.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Prompt reads a single line; a blank line counts as dismissal.
func (t *Terminal) Prompt(message string) (string, bool) {
	fmt.Fprintf(t.writer, "%s ", message)
	line, err := t.reader.ReadString('\n')
	if err != nil {
		return "", false
	}
	value := strings.TrimSpace(line)
	if value == "" {
		return "", false
	}
	return value, true
}
