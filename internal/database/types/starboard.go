package types

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// StarredMessage records a message that has already been promoted to a
// guild's starboard. Membership is monotonic: once inserted a row is never
// removed, so the table acts purely as a seen-set.
type StarredMessage struct {
	MessageID snowflake.ID `bun:",pk"`
	StarredAt time.Time    `bun:",notnull"`
}
