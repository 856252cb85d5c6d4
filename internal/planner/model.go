package planner

import (
	"errors"
	"fmt"
	"time"
)

// View enumerates the navigation targets a user can select directly.
type View string

const (
	// ViewEvents shows the event list.
	ViewEvents View = "events"
	// ViewGroups shows the group list.
	ViewGroups View = "groups"
	// ViewCreateEvent shows the new-event form.
	ViewCreateEvent View = "create-event"
	// ViewCreateGroup shows the new-group form.
	ViewCreateGroup View = "create-group"
)

// Wire layouts for event and reminder times. The host platform submits
// datetime-local values without a zone; the short layout is canonical and
// the long layout tolerates seconds.
const (
	EventTimeLayout     = "2006-01-02T15:04"
	EventTimeLayoutLong = "2006-01-02T15:04:05"
)

// ErrInvalidEventTime indicates a timestamp string that matches neither
// accepted layout.
var ErrInvalidEventTime = errors.New("planner: invalid event time")

// Event is a user-owned calendar entry. Times stay in their wire string
// form inside the client; the server parses them at its boundary.
type Event struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	EventTime    string `json:"event_time"`
	ReminderTime string `json:"reminder_time"`
	GroupID      string `json:"group_id,omitempty"`
}

// Group is a named collection of member user identifiers. Members is a
// set: no duplicates, iteration order preserved for display.
type Group struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Members []int64 `json:"members"`
	OwnerID int64   `json:"owner_id"`
}

// Clone returns a value copy safe to mutate without touching g.
func (g Group) Clone() Group {
	copied := g
	copied.Members = append([]int64(nil), g.Members...)
	return copied
}

// ParseEventTime parses a wire timestamp in either accepted layout.
func ParseEventTime(value string) (time.Time, error) {
	if parsed, err := time.Parse(EventTimeLayout, value); err == nil {
		return parsed, nil
	}
	if parsed, err := time.Parse(EventTimeLayoutLong, value); err == nil {
		return parsed, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidEventTime, value)
}

// FormatEventTime renders a timestamp in the canonical wire layout.
func FormatEventTime(value time.Time) string {
	return value.Format(EventTimeLayout)
}

// NewGroupID derives the client-assigned group identifier from the owner
// and the creation instant.
func NewGroupID(ownerID int64, createdAt time.Time) string {
	return fmt.Sprintf("group_%d_%d", ownerID, createdAt.UnixMilli())
}
