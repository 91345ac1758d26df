package models

import (
	"context"
	"fmt"
	"time"

	"github.com/cyberbun/cyberbun/internal/database/dbretry"
	"github.com/cyberbun/cyberbun/internal/database/types"
	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// StarboardModel handles database operations for the promoted-message seen-set.
type StarboardModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewStarboard creates a new starboard model instance.
func NewStarboard(db *bun.DB, logger *zap.Logger) *StarboardModel {
	return &StarboardModel{
		db:     db,
		logger: logger.Named("db_starboard"),
	}
}

// IsStarred reports whether a message has already been promoted.
func (m *StarboardModel) IsStarred(ctx context.Context, messageID snowflake.ID) (bool, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (bool, error) {
		exists, err := m.db.NewSelect().
			Model((*types.StarredMessage)(nil)).
			Where("message_id = ?", messageID).
			Exists(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to check starred message: %w", err)
		}

		return exists, nil
	})
}

// MarkStarred records a message as promoted using a conditional insert.
// Returns true only for the caller that created the row, making this the
// single race-resolution point for concurrent reaction events on the same
// message.
func (m *StarboardModel) MarkStarred(ctx context.Context, messageID snowflake.ID) (bool, error) {
	created, err := dbretry.Operation(ctx, func(ctx context.Context) (bool, error) {
		res, err := m.db.NewInsert().
			Model(&types.StarredMessage{
				MessageID: messageID,
				StarredAt: time.Now(),
			}).
			On("CONFLICT (message_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to mark message starred: %w", err)
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("failed to read affected rows: %w", err)
		}

		return rows > 0, nil
	})
	if err != nil {
		return false, err
	}

	if created {
		m.logger.Debug("Marked message as starred",
			zap.Uint64("messageID", uint64(messageID)))
	}

	return created, nil
}
