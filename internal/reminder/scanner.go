// Package reminder scans for events whose reminder time has arrived and
// notifies their owners exactly once, keeping a delivery log so restarts
// never re-send.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MarcoPoloResearchLab/planner/internal/store"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase = errors.New("reminder: database handle is required")
	errMissingNotifier = errors.New("reminder: notifier is required")
)

// Delivery records a reminder that was handed to the notifier. EventID is
// unique: each event's reminder fires at most once.
type Delivery struct {
	DeliveryID    string `gorm:"column:delivery_id;primaryKey;size:190"`
	EventID       int64  `gorm:"column:event_id;not null;uniqueIndex:idx_deliveries_event"`
	UserID        int64  `gorm:"column:user_id;not null"`
	SentAtSeconds int64  `gorm:"column:sent_at_s;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Delivery) TableName() string {
	return "reminder_deliveries"
}

// Notifier delivers a due reminder to the event's owner.
type Notifier interface {
	Notify(ctx context.Context, event store.Event) error
}

// LogNotifier writes reminders to the log; it stands in for a real
// chat-platform delivery channel.
type LogNotifier struct {
	Logger *zap.Logger
}

// Notify logs the due reminder.
func (n *LogNotifier) Notify(_ context.Context, event store.Event) error {
	logger := n.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("reminder due",
		zap.Int64("event_id", event.ID),
		zap.Int64("user_id", event.UserID),
		zap.String("title", event.Title),
		zap.Time("event_time", event.EventTime))
	return nil
}

// ScannerConfig describes the dependencies for a Scanner.
type ScannerConfig struct {
	Database *gorm.DB
	Notifier Notifier
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Scanner finds events with a reminder time at or before now that have
// no delivery record yet.
type Scanner struct {
	db       *gorm.DB
	notifier Notifier
	clock    func() time.Time
	logger   *zap.Logger
}

// NewScanner constructs a reminder scanner.
func NewScanner(cfg ScannerConfig) (*Scanner, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	if cfg.Notifier == nil {
		return nil, errMissingNotifier
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{db: cfg.Database, notifier: cfg.Notifier, clock: clock, logger: logger}, nil
}

// Scan notifies every due, undelivered reminder and records a delivery
// per success. Notifier failures leave the event due for the next scan.
func (s *Scanner) Scan(ctx context.Context) error {
	now := s.clock().UTC()
	var dueEvents []store.Event
	err := s.db.WithContext(ctx).
		Where("reminder_time <= ? AND id NOT IN (?)",
			now,
			s.db.Model(&Delivery{}).Select("event_id")).
		Order("reminder_time").
		Find(&dueEvents).Error
	if err != nil {
		return fmt.Errorf("reminder: scan query: %w", err)
	}

	for _, event := range dueEvents {
		if err := s.notifier.Notify(ctx, event); err != nil {
			s.logger.Warn("reminder delivery failed",
				zap.Int64("event_id", event.ID), zap.Error(err))
			continue
		}
		deliveryID, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("reminder: delivery id: %w", err)
		}
		delivery := Delivery{
			DeliveryID:    deliveryID.String(),
			EventID:       event.ID,
			UserID:        event.UserID,
			SentAtSeconds: now.Unix(),
		}
		if err := s.db.WithContext(ctx).Create(&delivery).Error; err != nil {
			return fmt.Errorf("reminder: record delivery: %w", err)
		}
		s.logger.Info("reminder delivered",
			zap.Int64("event_id", event.ID), zap.String("delivery_id", delivery.DeliveryID))
	}
	return nil
}

// Run registers the scanner on a cron schedule and starts it. The
// returned stop function halts scheduling and waits for a running scan.
func (s *Scanner) Run(ctx context.Context, schedule string) (func(), error) {
	runner := cron.New()
	_, err := runner.AddFunc(schedule, func() {
		if err := s.Scan(ctx); err != nil {
			s.logger.Warn("reminder scan failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("reminder: invalid schedule %q: %w", schedule, err)
	}
	runner.Start()
	return func() {
		stopCtx := runner.Stop()
		<-stopCtx.Done()
	}, nil
}
