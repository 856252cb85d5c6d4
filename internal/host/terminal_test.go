package host

import (
	"strings"
	"testing"
)

func newTestTerminal(input string) (*Terminal, *strings.Builder) {
	output := &strings.Builder{}
	terminal := NewTerminal(TerminalConfig{
		User:   User{ID: 9, FirstName: "Olena"},
		HasID:  true,
		Input:  strings.NewReader(input),
		Output: output,
	})
	return terminal, output
}

func TestCurrentUserReturnsConfiguredIdentity(t *testing.T) {
	terminal, _ := newTestTerminal("")
	user, ok := terminal.CurrentUser()
	if !ok || user.ID != 9 || user.FirstName != "Olena" {
		t.Fatalf("unexpected identity: %+v %v", user, ok)
	}
}

func TestCurrentUserWithoutIdentity(t *testing.T) {
	terminal := NewTerminal(TerminalConfig{Input: strings.NewReader(""), Output: &strings.Builder{}})
	if _, ok := terminal.CurrentUser(); ok {
		t.Fatalf("expected no identity")
	}
}

func TestConfirmAcceptsExplicitYes(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"sure\n", false},
	}
	for _, test := range tests {
		terminal, _ := newTestTerminal(test.input)
		if answer := terminal.Confirm("Delete?"); answer != test.expected {
			t.Fatalf("expected %v for %q, got %v", test.expected, test.input, answer)
		}
	}
}

func TestConfirmOnClosedInputDeclines(t *testing.T) {
	terminal, _ := newTestTerminal("")
	if terminal.Confirm("Delete?") {
		t.Fatalf("expected decline on closed input")
	}
}

func TestPromptReturnsTrimmedValue(t *testing.T) {
	terminal, output := newTestTerminal("  42  \n")
	value, ok := terminal.Prompt("Enter the user ID to add:")
	if !ok || value != "42" {
		t.Fatalf("unexpected prompt result: %q %v", value, ok)
	}
	if !strings.Contains(output.String(), "Enter the user ID to add:") {
		t.Fatalf("expected the prompt message written, got %q", output.String())
	}
}

func TestPromptBlankLineIsDismissal(t *testing.T) {
	terminal, _ := newTestTerminal("\n")
	if _, ok := terminal.Prompt("Enter the user ID to add:"); ok {
		t.Fatalf("expected a blank line to dismiss the prompt")
	}
}

func TestAlertWritesNotification(t *testing.T) {
	terminal, output := newTestTerminal("")
	terminal.Alert("Event created!")
	if output.String() != "! Event created!\n" {
		t.Fatalf("unexpected output: %q", output.String())
	}
}

func TestReadLineTrimsAndPropagatesEOF(t *testing.T) {
	terminal, _ := newTestTerminal("  edit 5  \n")
	line, err := terminal.ReadLine()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line != "edit 5" {
		t.Fatalf("unexpected line: %q", line)
	}
	if _, err := terminal.ReadLine(); err == nil {
		t.Fatalf("expected an error at end of input")
	}
}
