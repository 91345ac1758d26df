package models

import (
	"context"
	"fmt"
	"time"

	"github.com/cyberbun/cyberbun/internal/database/dbretry"
	"github.com/cyberbun/cyberbun/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ReminderModel handles database operations for scheduled reminders.
type ReminderModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewReminder creates a new reminder model instance.
func NewReminder(db *bun.DB, logger *zap.Logger) *ReminderModel {
	return &ReminderModel{
		db:     db,
		logger: logger.Named("db_reminder"),
	}
}

// CreateReminder stores a new pending reminder and fills in its assigned ID.
func (m *ReminderModel) CreateReminder(ctx context.Context, reminder *types.Reminder) error {
	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewInsert().
			Model(reminder).
			Returning("id").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create reminder: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Debug("Created reminder",
		zap.Int64("id", reminder.ID),
		zap.Uint64("userID", uint64(reminder.UserID)),
		zap.Time("fireAt", reminder.FireAt))

	return nil
}

// GetDueReminders fetches all pending reminders whose fire time has passed.
func (m *ReminderModel) GetDueReminders(ctx context.Context, now time.Time) ([]*types.Reminder, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Reminder, error) {
		var reminders []*types.Reminder

		err := m.db.NewSelect().
			Model(&reminders).
			Where("completed = FALSE").
			Where("fire_at <= ?", now).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get due reminders: %w", err)
		}

		return reminders, nil
	})
}

// MarkCompleted records that a reminder has been delivered. The transition
// is one-way; completed rows are kept for audit purposes.
func (m *ReminderModel) MarkCompleted(ctx context.Context, id int64) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewUpdate().
			Model((*types.Reminder)(nil)).
			Set("completed = TRUE").
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to mark reminder completed: %w", err)
		}

		return nil
	})
}
