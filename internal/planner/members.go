package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidMemberID indicates member-id input that is not an integer.
	ErrInvalidMemberID = errors.New("planner: member id must be an integer")
	// ErrInvalidMemberSet indicates a wire value that is not a JSON array
	// of integers.
	ErrInvalidMemberSet = errors.New("planner: invalid member set")
)

// ParseMemberID parses raw user input into a member identifier.
func ParseMemberID(rawInput string) (int64, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidMemberID)
	}
	memberID, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMemberID, trimmed)
	}
	return memberID, nil
}

// ParseMemberList parses a comma-separated list of member identifiers,
// skipping entries that are not integers and collapsing duplicates.
func ParseMemberList(rawInput string) []int64 {
	members := make([]int64, 0)
	for _, part := range strings.Split(rawInput, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		memberID, err := ParseMemberID(part)
		if err != nil {
			continue
		}
		members = AddMember(members, memberID)
	}
	return members
}

// AddMember appends memberID unless it is already present.
func AddMember(members []int64, memberID int64) []int64 {
	if ContainsMember(members, memberID) {
		return members
	}
	return append(members, memberID)
}

// RemoveMember drops every occurrence of memberID.
func RemoveMember(members []int64, memberID int64) []int64 {
	filtered := make([]int64, 0, len(members))
	for _, existing := range members {
		if existing != memberID {
			filtered = append(filtered, existing)
		}
	}
	return filtered
}

// ContainsMember reports whether memberID is present.
func ContainsMember(members []int64, memberID int64) bool {
	for _, existing := range members {
		if existing == memberID {
			return true
		}
	}
	return false
}

// EncodeMembers serializes a member set to the wire form: a JSON array of
// integers carried inside a string field.
func EncodeMembers(members []int64) string {
	if members == nil {
		members = []int64{}
	}
	encoded, err := json.Marshal(members)
	if err != nil {
		// A []int64 cannot fail to marshal.
		return "[]"
	}
	return string(encoded)
}

// DecodeMembers parses the wire form back into a member set. The empty
// string decodes to an empty set; duplicates are collapsed so callers
// never observe a set that violates the uniqueness invariant.
func DecodeMembers(encoded string) ([]int64, error) {
	if strings.TrimSpace(encoded) == "" {
		return []int64{}, nil
	}
	var raw []int64
	if err := json.Unmarshal([]byte(encoded), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMemberSet, err)
	}
	members := make([]int64, 0, len(raw))
	for _, memberID := range raw {
		members = AddMember(members, memberID)
	}
	return members, nil
}
