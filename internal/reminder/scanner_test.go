package reminder

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/planner/internal/store"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	delivered []int64
	failFor   map[int64]error
}

func (n *recordingNotifier) Notify(_ context.Context, event store.Event) error {
	if err, exists := n.failFor[event.ID]; exists {
		return err
	}
	n.delivered = append(n.delivered, event.ID)
	return nil
}

func newTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:planner_reminder_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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

	if err := db.AutoMigrate(&store.Event{}, &Delivery{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

func insertEvent(t *testing.T, db *gorm.DB, reminderTime time.Time) store.Event {
	t.Helper()
	event := store.Event{
		UserID:       9,
		Title:        "Standup",
		EventTime:    reminderTime.Add(15 * time.Minute),
		ReminderTime: reminderTime,
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("failed to insert event: %v", err)
	}
	return event
}

func newTestScanner(t *testing.T, db *gorm.DB, notifier Notifier, now time.Time) *Scanner {
	t.Helper()
	scanner, err := NewScanner(ScannerConfig{
		Database: db,
		Notifier: notifier,
		Clock:    func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("failed to construct scanner: %v", err)
	}
	return scanner
}

func TestNewScannerRequiresDependencies(t *testing.T) {
	db := newTestDatabase(t)
	if _, err := NewScanner(ScannerConfig{Notifier: &recordingNotifier{}}); err == nil {
		t.Fatalf("expected error without database")
	}
	if _, err := NewScanner(ScannerConfig{Database: db}); err == nil {
		t.Fatalf("expected error without notifier")
	}
}

func TestScanNotifiesDueEventsOnce(t *testing.T) {
	db := newTestDatabase(t)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	due := insertEvent(t, db, now.Add(-time.Minute))
	insertEvent(t, db, now.Add(time.Hour))

	notifier := &recordingNotifier{}
	scanner := newTestScanner(t, db, notifier, now)

	if err := scanner.Scan(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.delivered) != 1 || notifier.delivered[0] != due.ID {
		t.Fatalf("expected only the due event delivered, got %v", notifier.delivered)
	}

	// A second scan must not re-deliver.
	if err := scanner.Scan(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.delivered) != 1 {
		t.Fatalf("expected no re-delivery, got %v", notifier.delivered)
	}
}

func TestScanRecordsDelivery(t *testing.T) {
	db := newTestDatabase(t)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	due := insertEvent(t, db, now.Add(-time.Minute))

	scanner := newTestScanner(t, db, &recordingNotifier{}, now)
	if err := scanner.Scan(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var deliveries []Delivery
	if err := db.Find(&deliveries).Error; err != nil {
		t.Fatalf("failed to read deliveries: %v", err)
	}
	if len(deliveries) != 1 {
		t.Fatalf("expected one delivery record, got %d", len(deliveries))
	}
	if deliveries[0].EventID != due.ID || deliveries[0].UserID != 9 {
		t.Fatalf("unexpected delivery record: %+v", deliveries[0])
	}
	if deliveries[0].DeliveryID == "" {
		t.Fatalf("expected a delivery identifier")
	}
	if deliveries[0].SentAtSeconds != now.Unix() {
		t.Fatalf("unexpected sent stamp: %d", deliveries[0].SentAtSeconds)
	}
}

func TestScanKeepsFailedDeliveriesDue(t *testing.T) {
	db := newTestDatabase(t)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	failing := insertEvent(t, db, now.Add(-2*time.Minute))
	healthy := insertEvent(t, db, now.Add(-time.Minute))

	notifier := &recordingNotifier{failFor: map[int64]error{failing.ID: errors.New("channel down")}}
	scanner := newTestScanner(t, db, notifier, now)

	if err := scanner.Scan(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.delivered) != 1 || notifier.delivered[0] != healthy.ID {
		t.Fatalf("expected only the healthy event delivered, got %v", notifier.delivered)
	}

	// Once the channel recovers the failed event goes out.
	notifier.failFor = nil
	if err := scanner.Scan(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.delivered) != 2 || notifier.delivered[1] != failing.ID {
		t.Fatalf("expected the failed event retried, got %v", notifier.delivered)
	}
}

func TestRunRejectsInvalidSchedule(t *testing.T) {
	db := newTestDatabase(t)
	scanner := newTestScanner(t, db, &recordingNotifier{}, time.Now())

	if _, err := scanner.Run(context.Background(), "not a schedule"); err == nil {
		t.Fatalf("expected error for an invalid schedule")
	}
}

func TestRunStartsAndStops(t *testing.T) {
	db := newTestDatabase(t)
	scanner := newTestScanner(t, db, &recordingNotifier{}, time.Now())

	stop, err := scanner.Run(context.Background(), "@every 1h")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stop()
}
