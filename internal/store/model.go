// Package store persists events and groups for the planner API server.
package store

import "time"

// Event is the persisted calendar entry. Wire timestamps are parsed at
// the server boundary; the store keeps real time values.
type Event struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID           int64     `gorm:"column:user_id;not null;index:idx_events_user_time,priority:1"`
	Title            string    `gorm:"column:title;type:text;not null"`
	Description      string    `gorm:"column:description;type:text;not null;default:''"`
	EventTime        time.Time `gorm:"column:event_time;not null;index:idx_events_user_time,priority:2"`
	ReminderTime     time.Time `gorm:"column:reminder_time;not null;index:idx_events_reminder"`
	GroupID          string    `gorm:"column:group_id;size:190;not null;default:''"`
	CreatedAtSeconds int64     `gorm:"column:created_at_s;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Event) TableName() string {
	return "events"
}

// Group is the persisted member collection. The member set is stored in
// its wire form: a JSON-encoded integer array in a text column.
type Group struct {
	ID               string `gorm:"column:id;primaryKey;size:190"`
	Name             string `gorm:"column:name;type:text;not null"`
	MembersJSON      string `gorm:"column:members;type:text;not null;default:'[]'"`
	OwnerID          int64  `gorm:"column:owner_id;not null;index:idx_groups_owner"`
	CreatedAtSeconds int64  `gorm:"column:created_at_s;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Group) TableName() string {
	return "groups"
}
