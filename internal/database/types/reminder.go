package types

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Reminder is a user-scheduled one-shot notification. Completed transitions
// false to true exactly once after a successful delivery and never reverses.
// Rows are retained after firing for audit purposes.
type Reminder struct {
	ID        int64        `bun:",pk,autoincrement"`
	FireAt    time.Time    `bun:",notnull"`
	Message   string       `bun:",notnull"`
	UserID    snowflake.ID `bun:",notnull"`
	ChannelID snowflake.ID `bun:",notnull"`
	Private   bool         `bun:",notnull"`
	Completed bool         `bun:",notnull"`
}
