package session

import "github.com/MarcoPoloResearchLab/planner/internal/planner"

// Screen identifies the single renderable surface derived from session
// state.
type Screen string

const (
	// ScreenEventList lists the user's events.
	ScreenEventList Screen = "event-list"
	// ScreenGroupList lists the user's groups.
	ScreenGroupList Screen = "group-list"
	// ScreenCreateEvent is the new-event form.
	ScreenCreateEvent Screen = "create-event"
	// ScreenCreateGroup is the new-group form.
	ScreenCreateGroup Screen = "create-group"
	// ScreenEditEvent is the event edit form.
	ScreenEditEvent Screen = "edit-event"
	// ScreenEditGroup is the group edit form.
	ScreenEditGroup Screen = "edit-group"
)

// Screen derives the renderable screen from session state alone. An
// active edit buffer overrides the navigation view; unrecognized views
// fall back to the event list.
func (s *Session) Screen() Screen {
	if s.editingEvent != nil {
		return ScreenEditEvent
	}
	if s.editingGroup != nil {
		return ScreenEditGroup
	}
	switch s.view {
	case planner.ViewGroups:
		return ScreenGroupList
	case planner.ViewCreateEvent:
		return ScreenCreateEvent
	case planner.ViewCreateGroup:
		return ScreenCreateGroup
	default:
		return ScreenEventList
	}
}
