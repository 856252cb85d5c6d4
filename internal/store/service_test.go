package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:planner_store_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&Event{}, &Group{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	service, err := NewService(ServiceConfig{
		Database: db,
		Clock:    func() time.Time { return time.Unix(1700000000, 0).UTC() },
	})
	if err != nil {
		t.Fatalf("failed to construct service: %v", err)
	}
	return service
}

func sampleEvent(userID int64) Event {
	return Event{
		UserID:       userID,
		Title:        "Standup",
		Description:  "Daily sync",
		EventTime:    time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		ReminderTime: time.Date(2024, 1, 1, 8, 45, 0, 0, time.UTC),
	}
}

func TestNewServiceRequiresDatabase(t *testing.T) {
	if _, err := NewService(ServiceConfig{}); err == nil {
		t.Fatalf("expected error without database")
	}
}

func TestCreateEventAssignsIDAndStampsCreation(t *testing.T) {
	service := newTestService(t)

	created, err := service.CreateEvent(context.Background(), sampleEvent(9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected an assigned id")
	}
	if created.CreatedAtSeconds != 1700000000 {
		t.Fatalf("unexpected creation stamp: %d", created.CreatedAtSeconds)
	}
}

func TestListEventsScopesToUserAndOrdersByEventTime(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	later := sampleEvent(9)
	later.Title = "Review"
	later.EventTime = time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	if _, err := service.CreateEvent(ctx, later); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.CreateEvent(ctx, sampleEvent(9)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.CreateEvent(ctx, sampleEvent(11)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events, err := service.ListEvents(ctx, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected two events for user 9, got %d", len(events))
	}
	if events[0].Title != "Standup" || events[1].Title != "Review" {
		t.Fatalf("expected ordering by event time, got %q then %q", events[0].Title, events[1].Title)
	}
}

func TestUpdateEventReplacesEditableFields(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	created, err := service.CreateEvent(ctx, sampleEvent(9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	replacement := created
	replacement.Title = "Renamed"
	replacement.Description = ""
	replacement.GroupID = "group_9_1"

	updated, err := service.UpdateEvent(ctx, created.ID, 9, replacement)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Title != "Renamed" || updated.Description != "" || updated.GroupID != "group_9_1" {
		t.Fatalf("unexpected updated record: %+v", updated)
	}
}

func TestUpdateEventScopeMissIsNotFound(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	created, err := service.CreateEvent(ctx, sampleEvent(9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := service.UpdateEvent(ctx, created.ID, 11, created); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a foreign user, got %v", err)
	}
	if _, err := service.UpdateEvent(ctx, created.ID+100, 9, created); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a missing id, got %v", err)
	}
}

func TestDeleteEventScopesToUser(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	created, err := service.CreateEvent(ctx, sampleEvent(9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := service.DeleteEvent(ctx, created.ID, 11); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a foreign user, got %v", err)
	}
	if err := service.DeleteEvent(ctx, created.ID, 9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events, err := service.ListEvents(ctx, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events left, got %d", len(events))
	}
}

func TestListGroupsReturnsOwnedAndMemberGroups(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	owned := Group{ID: "group_9_1", Name: "Mine", MembersJSON: "[]", OwnerID: 9}
	joined := Group{ID: "group_11_1", Name: "Theirs", MembersJSON: "[9,12]", OwnerID: 11}
	unrelated := Group{ID: "group_11_2", Name: "Other", MembersJSON: "[12]", OwnerID: 11}
	for _, group := range []Group{owned, joined, unrelated} {
		if _, err := service.CreateGroup(ctx, group); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	groups, err := service.ListGroups(ctx, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected owned plus joined groups, got %d", len(groups))
	}
	seen := map[string]bool{}
	for _, group := range groups {
		seen[group.ID] = true
	}
	if !seen["group_9_1"] || !seen["group_11_1"] {
		t.Fatalf("unexpected group ids: %v", seen)
	}
}

func TestListGroupsIgnoresPrefilterFalsePositives(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	// Member 90 matches a LIKE pattern for user 9; decoding must reject it.
	falsePositive := Group{ID: "group_11_1", Name: "Noise", MembersJSON: "[90]", OwnerID: 11}
	if _, err := service.CreateGroup(ctx, falsePositive); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	groups, err := service.ListGroups(ctx, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("expected no groups, got %v", groups)
	}
}

func TestListGroupsSkipsMalformedMemberSets(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	malformed := Group{ID: "group_11_1", Name: "Broken", MembersJSON: "not 9 json", OwnerID: 11}
	if _, err := service.CreateGroup(ctx, malformed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	groups, err := service.ListGroups(ctx, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("expected the malformed group skipped, got %v", groups)
	}
}

func TestCreateGroupDefaultsEmptyMemberSet(t *testing.T) {
	service := newTestService(t)

	created, err := service.CreateGroup(context.Background(), Group{ID: "group_9_1", Name: "Team", OwnerID: 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.MembersJSON != "[]" {
		t.Fatalf("expected an empty member set, got %q", created.MembersJSON)
	}
	if created.CreatedAtSeconds != 1700000000 {
		t.Fatalf("unexpected creation stamp: %d", created.CreatedAtSeconds)
	}
}

func TestUpdateGroupReplacesNameAndMembers(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	if _, err := service.CreateGroup(ctx, Group{ID: "group_9_1", Name: "Team", MembersJSON: "[1]", OwnerID: 9}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := service.UpdateGroup(ctx, "group_9_1", 9, Group{Name: "Renamed", MembersJSON: "[1,2]"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Renamed" || updated.MembersJSON != "[1,2]" {
		t.Fatalf("unexpected updated record: %+v", updated)
	}
}

func TestUpdateGroupScopeMissIsNotFound(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	if _, err := service.CreateGroup(ctx, Group{ID: "group_9_1", Name: "Team", OwnerID: 9}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := service.UpdateGroup(ctx, "group_9_1", 11, Group{Name: "Hijack"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a foreign owner, got %v", err)
	}
}

func TestDeleteGroupScopesToOwner(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	if _, err := service.CreateGroup(ctx, Group{ID: "group_9_1", Name: "Team", OwnerID: 9}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := service.DeleteGroup(ctx, "group_9_1", 11); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a foreign owner, got %v", err)
	}
	if err := service.DeleteGroup(ctx, "group_9_1", 9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	groups, err := service.ListGroups(ctx, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("expected no groups left, got %d", len(groups))
	}
}
