package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cyberbun/cyberbun/internal/database/dbretry"
	"github.com/cyberbun/cyberbun/internal/database/types"
	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ColorModel handles database operations for personal color roles.
type ColorModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewColor creates a new color model instance.
func NewColor(db *bun.DB, logger *zap.Logger) *ColorModel {
	return &ColorModel{
		db:     db,
		logger: logger.Named("db_color"),
	}
}

// GetColorRole retrieves a member's color role in a guild.
// Returns nil without error when the member has no stored role.
func (m *ColorModel) GetColorRole(
	ctx context.Context, userID, guildID snowflake.ID,
) (*types.ColorRole, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.ColorRole, error) {
		var role types.ColorRole

		err := m.db.NewSelect().
			Model(&role).
			Where("user_id = ?", userID).
			Where("guild_id = ?", guildID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil
			}

			return nil, fmt.Errorf("failed to get color role: %w", err)
		}

		return &role, nil
	})
}

// UpsertColorRole inserts or updates a member's color role record.
func (m *ColorModel) UpsertColorRole(ctx context.Context, role *types.ColorRole) error {
	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewInsert().
			Model(role).
			On("CONFLICT (role_id) DO UPDATE").
			Set("color = EXCLUDED.color").
			Set("role_name = EXCLUDED.role_name").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to upsert color role: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Debug("Saved color role",
		zap.Uint64("roleID", uint64(role.RoleID)),
		zap.Uint64("userID", uint64(role.UserID)),
		zap.Int("color", role.Color))

	return nil
}
