package migrations

import (
	"context"
	"fmt"

	"github.com/cyberbun/cyberbun/internal/database/types"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.GuildSettings)(nil),
			(*types.StarredMessage)(nil),
			(*types.Reminder)(nil),
			(*types.ColorRole)(nil),
		}

		for _, model := range models {
			_, err := db.NewCreateTable().
				Model(model).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to create table for %T: %w", model, err)
			}
		}

		// The scheduler scans pending reminders every tick; index only the
		// rows it can ever match.
		_, err := db.NewRaw(
			"CREATE INDEX IF NOT EXISTS idx_reminders_pending ON reminders (fire_at) WHERE NOT completed",
		).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create pending reminders index: %w", err)
		}

		_, err = db.NewRaw(
			"CREATE INDEX IF NOT EXISTS idx_color_roles_user_guild ON color_roles (user_id, guild_id)",
		).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create color roles index: %w", err)
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		tables := []string{"guild_settings", "starred_messages", "reminders", "color_roles"}
		for _, table := range tables {
			_, err := db.NewRaw(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)).Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to drop table %s: %w", table, err)
			}
		}

		return nil
	})
}
