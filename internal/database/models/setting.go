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

// SettingModel handles database operations for per-guild starboard settings.
type SettingModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewSetting creates a new setting model instance.
func NewSetting(db *bun.DB, logger *zap.Logger) *SettingModel {
	return &SettingModel{
		db:     db,
		logger: logger.Named("db_setting"),
	}
}

// GetGuildSettings retrieves the settings row for a guild.
// Returns nil without error when the guild has never been configured.
func (m *SettingModel) GetGuildSettings(
	ctx context.Context, guildID snowflake.ID,
) (*types.GuildSettings, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.GuildSettings, error) {
		var settings types.GuildSettings

		err := m.db.NewSelect().
			Model(&settings).
			Where("guild_id = ?", guildID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil
			}

			return nil, fmt.Errorf("failed to get guild settings: %w", err)
		}

		return &settings, nil
	})
}

// UpsertGuildSettings inserts or replaces the settings row for a guild.
func (m *SettingModel) UpsertGuildSettings(ctx context.Context, settings *types.GuildSettings) error {
	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewInsert().
			Model(settings).
			On("CONFLICT (guild_id) DO UPDATE").
			Set("starboard_enabled = EXCLUDED.starboard_enabled").
			Set("starboard_channel = EXCLUDED.starboard_channel").
			Set("starboard_min = EXCLUDED.starboard_min").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to upsert guild settings: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Debug("Saved guild settings",
		zap.Uint64("guildID", uint64(settings.GuildID)),
		zap.Bool("enabled", settings.StarboardEnabled))

	return nil
}

// ToggleStarboard flips the starboard switch for a guild.
// Returns false when the guild has no settings row to update.
func (m *SettingModel) ToggleStarboard(
	ctx context.Context, guildID snowflake.ID, enabled bool,
) (bool, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (bool, error) {
		res, err := m.db.NewUpdate().
			Model((*types.GuildSettings)(nil)).
			Set("starboard_enabled = ?", enabled).
			Where("guild_id = ?", guildID).
			Exec(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to toggle starboard: %w", err)
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("failed to read affected rows: %w", err)
		}

		return rows > 0, nil
	})
}

// SetStarboardThreshold updates the star count a message needs before promotion.
// Returns false when the guild has no settings row to update.
func (m *SettingModel) SetStarboardThreshold(
	ctx context.Context, guildID snowflake.ID, minStars int,
) (bool, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (bool, error) {
		res, err := m.db.NewUpdate().
			Model((*types.GuildSettings)(nil)).
			Set("starboard_min = ?", minStars).
			Where("guild_id = ?", guildID).
			Exec(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to set starboard threshold: %w", err)
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("failed to read affected rows: %w", err)
		}

		return rows > 0, nil
	})
}
