// Package session holds the mini-app's only mutable state: the entity
// collections mirrored from the remote store, the single active draft,
// and the selected navigation view. Transitions are synchronous; the
// remote store is the sole source of suspension.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MarcoPoloResearchLab/planner/internal/host"
	"github.com/MarcoPoloResearchLab/planner/internal/planner"
	"go.uber.org/zap"
)

var (
	errMissingStore = errors.New("session: store client is required")
	errMissingHost  = errors.New("session: host capabilities are required")

	// ErrNoIdentity indicates the host platform did not supply a user.
	ErrNoIdentity = errors.New("session: host provided no user identity")
	// ErrNotStarted indicates a transition fired before Start resolved
	// the user identity.
	ErrNotStarted = errors.New("session: not started")
	// ErrUnknownEvent indicates an edit or delete target missing from the
	// event collection.
	ErrUnknownEvent = errors.New("session: unknown event")
	// ErrUnknownGroup indicates an edit or delete target missing from the
	// group collection.
	ErrUnknownGroup = errors.New("session: unknown group")
	// ErrNoActiveEdit indicates a commit with no edit buffer present.
	ErrNoActiveEdit = errors.New("session: no active edit")
)

// ValidationError reports a draft that must not be submitted. It is
// raised before any remote call is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("session: invalid draft: %s %s", e.Field, e.Reason)
}

// Store abstracts the remote CRUD surface the session commits through.
type Store interface {
	ListEvents(ctx context.Context, userID int64) ([]planner.Event, error)
	CreateEvent(ctx context.Context, event planner.Event) (planner.Event, error)
	UpdateEvent(ctx context.Context, eventID int64, event planner.Event) (planner.Event, error)
	DeleteEvent(ctx context.Context, eventID int64, userID int64) error
	ListGroups(ctx context.Context, userID int64) ([]planner.Group, error)
	CreateGroup(ctx context.Context, group planner.Group) (planner.Group, error)
	UpdateGroup(ctx context.Context, groupID string, group planner.Group) (planner.Group, error)
	DeleteGroup(ctx context.Context, groupID string, ownerID int64) error
}

// Config describes the dependencies for a Session.
type Config struct {
	Store  Store
	Host   host.Capabilities
	Logger *zap.Logger
	Clock  func() time.Time
}

// Session is not safe for concurrent use; the host event loop drives it
// from a single goroutine, mirroring the webview it stands in for.
type Session struct {
	store  Store
	host   host.Capabilities
	logger *zap.Logger
	clock  func() time.Time

	user    host.User
	started bool

	view   planner.View
	events []planner.Event
	groups []planner.Group

	newEvent planner.Event
	newGroup planner.Group

	editingEvent *planner.Event
	editingGroup *planner.Group
}

// NewSession constructs a session browsing the event list.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Store == nil {
		return nil, errMissingStore
	}
	if cfg.Host == nil {
		return nil, errMissingHost
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Session{
		store:    cfg.Store,
		host:     cfg.Host,
		logger:   logger,
		clock:    clock,
		view:     planner.ViewEvents,
		events:   []planner.Event{},
		groups:   []planner.Group{},
		newGroup: planner.Group{Members: []int64{}},
	}, nil
}

// Start signals readiness to the host, resolves the user identity and
// loads both collections. Load failures are surfaced but non-fatal.
func (s *Session) Start(ctx context.Context) error {
	s.host.Ready()
	s.host.Expand()

	user, ok := s.host.CurrentUser()
	if !ok {
		return ErrNoIdentity
	}
	s.user = user
	s.started = true
	s.logger.Info("session started", zap.Int64("user_id", user.ID))

	if err := s.RefreshEvents(ctx); err != nil {
		s.logger.Warn("initial event load failed", zap.Error(err))
	}
	if err := s.RefreshGroups(ctx); err != nil {
		s.logger.Warn("initial group load failed", zap.Error(err))
	}
	return nil
}

// User returns the identity the session operates under.
func (s *Session) User() host.User {
	return s.user
}

// View returns the selected navigation view. The edit buffers override it
// for rendering; see Screen.
func (s *Session) View() planner.View {
	return s.view
}

// Events returns a copy of the event collection.
func (s *Session) Events() []planner.Event {
	return append([]planner.Event(nil), s.events...)
}

// Groups returns a copy of the group collection.
func (s *Session) Groups() []planner.Group {
	copied := make([]planner.Group, 0, len(s.groups))
	for _, group := range s.groups {
		copied = append(copied, group.Clone())
	}
	return copied
}

// NewEventDraft exposes the new-event buffer for form edits.
func (s *Session) NewEventDraft() *planner.Event {
	return &s.newEvent
}

// NewGroupDraft exposes the new-group buffer for form edits.
func (s *Session) NewGroupDraft() *planner.Group {
	return &s.newGroup
}

// EditingEvent returns the active event edit buffer, or nil.
func (s *Session) EditingEvent() *planner.Event {
	return s.editingEvent
}

// EditingGroup returns the active group edit buffer, or nil.
func (s *Session) EditingGroup() *planner.Group {
	return s.editingGroup
}

// ShowEvents navigates to the event list.
func (s *Session) ShowEvents() {
	s.view = planner.ViewEvents
}

// ShowGroups navigates to the group list.
func (s *Session) ShowGroups() {
	s.view = planner.ViewGroups
}

// ComposeEvent opens the new-event form.
func (s *Session) ComposeEvent() {
	s.view = planner.ViewCreateEvent
}

// ComposeGroup opens the new-group form.
func (s *Session) ComposeGroup() {
	s.view = planner.ViewCreateGroup
}

// RefreshEvents replaces the event collection with the store's current
// contents. On failure the previous contents stay in place.
func (s *Session) RefreshEvents(ctx context.Context) error {
	if !s.started {
		return ErrNotStarted
	}
	events, err := s.store.ListEvents(ctx, s.user.ID)
	if err != nil {
		s.reportFailure("refresh_events", "Failed to load events.", err)
		return err
	}
	s.events = events
	return nil
}

// RefreshGroups replaces the group collection with the store's current
// contents. On failure the previous contents stay in place.
func (s *Session) RefreshGroups(ctx context.Context) error {
	if !s.started {
		return ErrNotStarted
	}
	groups, err := s.store.ListGroups(ctx, s.user.ID)
	if err != nil {
		s.reportFailure("refresh_groups", "Failed to load groups.", err)
		return err
	}
	s.groups = groups
	return nil
}

// SubmitNewEvent validates and persists the new-event draft. The draft
// survives any failure so the user can retry without re-entering data.
func (s *Session) SubmitNewEvent(ctx context.Context) error {
	if !s.started {
		return ErrNotStarted
	}
	draft := s.newEvent
	draft.UserID = s.user.ID
	if err := validateEventDraft(draft); err != nil {
		return err
	}
	if _, err := s.store.CreateEvent(ctx, draft); err != nil {
		s.reportFailure("create_event", "Failed to create the event.", err)
		return err
	}
	if err := s.RefreshEvents(ctx); err != nil {
		s.logger.Warn("event refresh after create failed", zap.Error(err))
	}
	s.newEvent = planner.Event{}
	s.view = planner.ViewEvents
	s.host.Alert("Event created!")
	return nil
}

// EditEvent copies the identified event into the edit buffer. Mutating
// the buffer never affects the collection until commit.
func (s *Session) EditEvent(eventID int64) error {
	for _, event := range s.events {
		if event.ID == eventID {
			buffer := event
			s.editingEvent = &buffer
			s.editingGroup = nil
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownEvent, eventID)
}

// SubmitEventEdit commits the event edit buffer via a full-replace
// update. On failure the buffer stays active for retry.
func (s *Session) SubmitEventEdit(ctx context.Context) error {
	if !s.started {
		return ErrNotStarted
	}
	if s.editingEvent == nil {
		return ErrNoActiveEdit
	}
	draft := *s.editingEvent
	draft.UserID = s.user.ID
	if err := validateEventDraft(draft); err != nil {
		return err
	}
	if _, err := s.store.UpdateEvent(ctx, draft.ID, draft); err != nil {
		s.reportFailure("update_event", "Failed to update the event.", err)
		return err
	}
	if err := s.RefreshEvents(ctx); err != nil {
		s.logger.Warn("event refresh after update failed", zap.Error(err))
	}
	s.editingEvent = nil
	s.view = planner.ViewEvents
	s.host.Alert("Event updated!")
	return nil
}

// CancelEventEdit discards the event edit buffer without a remote call.
func (s *Session) CancelEventEdit() {
	s.editingEvent = nil
	s.view = planner.ViewEvents
}

// DeleteEvent asks the host for confirmation, then deletes and refreshes.
// Declining leaves the session untouched.
func (s *Session) DeleteEvent(ctx context.Context, eventID int64) error {
	if !s.started {
		return ErrNotStarted
	}
	if !s.host.Confirm("Are you sure you want to delete this event?") {
		return nil
	}
	if err := s.store.DeleteEvent(ctx, eventID, s.user.ID); err != nil {
		s.reportFailure("delete_event", "Failed to delete the event.", err)
		return err
	}
	if err := s.RefreshEvents(ctx); err != nil {
		s.logger.Warn("event refresh after delete failed", zap.Error(err))
	}
	s.host.Alert("Event deleted!")
	return nil
}

// SubmitNewGroup assigns the client-side identifier, then persists the
// new-group draft. The draft survives any failure.
func (s *Session) SubmitNewGroup(ctx context.Context) error {
	if !s.started {
		return ErrNotStarted
	}
	draft := s.newGroup.Clone()
	draft.ID = planner.NewGroupID(s.user.ID, s.clock())
	draft.OwnerID = s.user.ID
	if err := validateGroupDraft(draft); err != nil {
		return err
	}
	if _, err := s.store.CreateGroup(ctx, draft); err != nil {
		s.reportFailure("create_group", "Failed to create the group.", err)
		return err
	}
	if err := s.RefreshGroups(ctx); err != nil {
		s.logger.Warn("group refresh after create failed", zap.Error(err))
	}
	s.newGroup = planner.Group{Members: []int64{}}
	s.view = planner.ViewGroups
	s.host.Alert(fmt.Sprintf("Group %q created!", draft.Name))
	return nil
}

// EditGroup copies the identified group into the edit buffer, member set
// included.
func (s *Session) EditGroup(groupID string) error {
	for _, group := range s.groups {
		if group.ID == groupID {
			buffer := group.Clone()
			s.editingGroup = &buffer
			s.editingEvent = nil
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownGroup, groupID)
}

// SubmitGroupEdit commits the group edit buffer via a full-replace
// update. On failure the buffer stays active for retry.
func (s *Session) SubmitGroupEdit(ctx context.Context) error {
	if !s.started {
		return ErrNotStarted
	}
	if s.editingGroup == nil {
		return ErrNoActiveEdit
	}
	draft := s.editingGroup.Clone()
	draft.OwnerID = s.user.ID
	if err := validateGroupDraft(draft); err != nil {
		return err
	}
	if _, err := s.store.UpdateGroup(ctx, draft.ID, draft); err != nil {
		s.reportFailure("update_group", "Failed to update the group.", err)
		return err
	}
	if err := s.RefreshGroups(ctx); err != nil {
		s.logger.Warn("group refresh after update failed", zap.Error(err))
	}
	s.editingGroup = nil
	s.view = planner.ViewGroups
	s.host.Alert("Group updated!")
	return nil
}

// CancelGroupEdit discards the group edit buffer without a remote call.
func (s *Session) CancelGroupEdit() {
	s.editingGroup = nil
	s.view = planner.ViewGroups
}

// DeleteGroup asks the host for confirmation, then deletes and refreshes.
func (s *Session) DeleteGroup(ctx context.Context, groupID string) error {
	if !s.started {
		return ErrNotStarted
	}
	if !s.host.Confirm("Are you sure you want to delete this group?") {
		return nil
	}
	if err := s.store.DeleteGroup(ctx, groupID, s.user.ID); err != nil {
		s.reportFailure("delete_group", "Failed to delete the group.", err)
		return err
	}
	if err := s.RefreshGroups(ctx); err != nil {
		s.logger.Warn("group refresh after delete failed", zap.Error(err))
	}
	s.host.Alert("Group deleted!")
	return nil
}

func (s *Session) reportFailure(operation, message string, err error) {
	s.logger.Warn("store call failed", zap.String("op", operation), zap.Error(err))
	s.host.Alert(message)
}

func validateEventDraft(draft planner.Event) error {
	if draft.Title == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if draft.EventTime == "" {
		return &ValidationError{Field: "event_time", Reason: "is required"}
	}
	if _, err := planner.ParseEventTime(draft.EventTime); err != nil {
		return &ValidationError{Field: "event_time", Reason: "is not a valid timestamp"}
	}
	if draft.ReminderTime == "" {
		return &ValidationError{Field: "reminder_time", Reason: "is required"}
	}
	if _, err := planner.ParseEventTime(draft.ReminderTime); err != nil {
		return &ValidationError{Field: "reminder_time", Reason: "is not a valid timestamp"}
	}
	return nil
}

func validateGroupDraft(draft planner.Group) error {
	if draft.Name == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	return nil
}
