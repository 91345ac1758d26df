package types

import (
	"github.com/disgoorg/snowflake/v2"
)

// DefaultStarboardMin is the star count a message needs before promotion
// when a guild has not configured its own threshold.
const DefaultStarboardMin = 3

// GuildSettings stores per-guild starboard configuration. A row may exist
// with the starboard disabled; enabling without a channel is allowed but
// promotion never fires until a channel is set. Rows are never deleted.
type GuildSettings struct {
	GuildID          snowflake.ID  `bun:",pk"`
	StarboardEnabled bool          `bun:",notnull"`
	StarboardChannel *snowflake.ID `bun:",nullzero"`
	StarboardMin     int           `bun:",notnull,default:3"`
}
