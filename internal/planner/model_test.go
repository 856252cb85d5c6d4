package planner

import (
	"errors"
	"testing"
	"time"
)

func TestParseEventTimeAcceptsBothLayouts(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
	}{
		{"2024-01-01T09:00", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)},
		{"2024-01-01T09:00:30", time.Date(2024, 1, 1, 9, 0, 30, 0, time.UTC)},
	}
	for _, test := range tests {
		parsed, err := ParseEventTime(test.input)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", test.input, err)
		}
		if !parsed.Equal(test.expected) {
			t.Fatalf("expected %v for %q, got %v", test.expected, test.input, parsed)
		}
	}
}

func TestParseEventTimeRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{"", "yesterday", "2024-01-01", "09:00"} {
		if _, err := ParseEventTime(input); !errors.Is(err, ErrInvalidEventTime) {
			t.Fatalf("expected ErrInvalidEventTime for %q, got %v", input, err)
		}
	}
}

func TestFormatEventTimeUsesCanonicalLayout(t *testing.T) {
	formatted := FormatEventTime(time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC))
	if formatted != "2024-01-01T09:05" {
		t.Fatalf("unexpected format: %q", formatted)
	}
}

func TestNewGroupIDDerivesFromOwnerAndInstant(t *testing.T) {
	createdAt := time.UnixMilli(1700000000123).UTC()
	groupID := NewGroupID(42, createdAt)
	if groupID != "group_42_1700000000123" {
		t.Fatalf("unexpected group id: %q", groupID)
	}
}

func TestGroupCloneIsIndependent(t *testing.T) {
	original := Group{ID: "group-1", Name: "Team", Members: []int64{1, 2}, OwnerID: 1}
	copied := original.Clone()
	copied.Members = AddMember(copied.Members, 3)

	if len(original.Members) != 2 {
		t.Fatalf("clone mutation leaked into the original: %v", original.Members)
	}
	if len(copied.Members) != 3 {
		t.Fatalf("unexpected clone members: %v", copied.Members)
	}
}
