package session

import (
	"github.com/MarcoPoloResearchLab/planner/internal/planner"
	"go.uber.org/zap"
)

// AddMember parses rawInput and appends the resulting member id to the
// active group edit buffer. Non-integer input and duplicates are silent
// no-ops: the prompt step already constrains what arrives here, and set
// semantics forbid re-insertion. Nothing is persisted until the edit is
// committed.
func (s *Session) AddMember(groupID string, rawInput string) {
	if s.editingGroup == nil || s.editingGroup.ID != groupID {
		return
	}
	memberID, err := planner.ParseMemberID(rawInput)
	if err != nil {
		s.logger.Debug("ignoring invalid member id input",
			zap.String("group_id", groupID), zap.String("input", rawInput))
		return
	}
	s.editingGroup.Members = planner.AddMember(s.editingGroup.Members, memberID)
}

// RemoveMember drops every occurrence of memberID from the active group
// edit buffer. Nothing is persisted until the edit is committed.
func (s *Session) RemoveMember(groupID string, memberID int64) {
	if s.editingGroup == nil || s.editingGroup.ID != groupID {
		return
	}
	s.editingGroup.Members = planner.RemoveMember(s.editingGroup.Members, memberID)
}

// PromptAddMember asks the host for a user id and feeds it to AddMember.
func (s *Session) PromptAddMember(groupID string) {
	value, ok := s.host.Prompt("Enter the user ID to add:")
	if !ok {
		return
	}
	s.AddMember(groupID, value)
}

// SetNewGroupMembers replaces the new-group draft's member set from a
// comma-separated list, skipping invalid entries and duplicates.
func (s *Session) SetNewGroupMembers(rawInput string) {
	s.newGroup.Members = planner.ParseMemberList(rawInput)
}
