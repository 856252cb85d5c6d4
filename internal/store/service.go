package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MarcoPoloResearchLab/planner/internal/planner"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase = errors.New("store: database handle is required")

	// ErrNotFound indicates the record does not exist under the given
	// owner scope.
	ErrNotFound = errors.New("store: record not found")
)

// ServiceConfig describes the dependencies for the store service.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service executes owner-scoped CRUD over events and groups.
type Service struct {
	db     *gorm.DB
	clock  func() time.Time
	logger *zap.Logger
}

// NewService constructs the store service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: cfg.Database, clock: clock, logger: logger}, nil
}

// ListEvents returns the user's events ordered by event time.
func (s *Service) ListEvents(ctx context.Context, userID int64) ([]Event, error) {
	var events []Event
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("event_time").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("store: list events: %w", err)
	}
	return events, nil
}

// CreateEvent inserts a new event and returns it with the assigned id.
func (s *Service) CreateEvent(ctx context.Context, event Event) (Event, error) {
	event.ID = 0
	event.CreatedAtSeconds = s.clock().UTC().Unix()
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return Event{}, fmt.Errorf("store: create event: %w", err)
	}
	return event, nil
}

// UpdateEvent replaces every caller-editable field of the event scoped to
// its owning user.
func (s *Service) UpdateEvent(ctx context.Context, eventID int64, userID int64, event Event) (Event, error) {
	result := s.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ? AND user_id = ?", eventID, userID).
		Updates(map[string]any{
			"title":         event.Title,
			"description":   event.Description,
			"event_time":    event.EventTime,
			"reminder_time": event.ReminderTime,
			"group_id":      event.GroupID,
		})
	if result.Error != nil {
		return Event{}, fmt.Errorf("store: update event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return Event{}, ErrNotFound
	}
	var updated Event
	if err := s.db.WithContext(ctx).Where("id = ?", eventID).Take(&updated).Error; err != nil {
		return Event{}, fmt.Errorf("store: reload event: %w", err)
	}
	return updated, nil
}

// DeleteEvent removes the event scoped to its owning user.
func (s *Service) DeleteEvent(ctx context.Context, eventID int64, userID int64) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", eventID, userID).
		Delete(&Event{})
	if result.Error != nil {
		return fmt.Errorf("store: delete event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListGroups returns the groups the user owns or belongs to. Membership
// is verified by decoding the stored member set; the LIKE clause only
// prefilters candidate rows.
func (s *Service) ListGroups(ctx context.Context, userID int64) ([]Group, error) {
	pattern := "%" + strconv.FormatInt(userID, 10) + "%"
	var candidates []Group
	err := s.db.WithContext(ctx).
		Where("owner_id = ? OR members LIKE ?", userID, pattern).
		Order("created_at_s").
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("store: list groups: %w", err)
	}

	groups := make([]Group, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.OwnerID == userID {
			groups = append(groups, candidate)
			continue
		}
		members, err := planner.DecodeMembers(candidate.MembersJSON)
		if err != nil {
			s.logger.Warn("skipping group with malformed member set",
				zap.String("group_id", candidate.ID), zap.Error(err))
			continue
		}
		if planner.ContainsMember(members, userID) {
			groups = append(groups, candidate)
		}
	}
	return groups, nil
}

// CreateGroup inserts a group under its client-assigned identifier.
func (s *Service) CreateGroup(ctx context.Context, group Group) (Group, error) {
	group.CreatedAtSeconds = s.clock().UTC().Unix()
	if group.MembersJSON == "" {
		group.MembersJSON = "[]"
	}
	if err := s.db.WithContext(ctx).Create(&group).Error; err != nil {
		return Group{}, fmt.Errorf("store: create group: %w", err)
	}
	return group, nil
}

// UpdateGroup replaces name and member set, scoped to the owner.
func (s *Service) UpdateGroup(ctx context.Context, groupID string, ownerID int64, group Group) (Group, error) {
	membersJSON := group.MembersJSON
	if membersJSON == "" {
		membersJSON = "[]"
	}
	result := s.db.WithContext(ctx).
		Model(&Group{}).
		Where("id = ? AND owner_id = ?", groupID, ownerID).
		Updates(map[string]any{
			"name":    group.Name,
			"members": membersJSON,
		})
	if result.Error != nil {
		return Group{}, fmt.Errorf("store: update group: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return Group{}, ErrNotFound
	}
	var updated Group
	if err := s.db.WithContext(ctx).Where("id = ?", groupID).Take(&updated).Error; err != nil {
		return Group{}, fmt.Errorf("store: reload group: %w", err)
	}
	return updated, nil
}

// DeleteGroup removes the group scoped to its owner.
func (s *Service) DeleteGroup(ctx context.Context, groupID string, ownerID int64) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", groupID, ownerID).
		Delete(&Group{})
	if result.Error != nil {
		return fmt.Errorf("store: delete group: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
