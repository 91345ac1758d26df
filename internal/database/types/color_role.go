package types

import (
	"github.com/disgoorg/snowflake/v2"
)

// ColorRole maps a guild member to their personal color role. At most one
// role exists per (user, guild) pair; the color is updated in place.
type ColorRole struct {
	RoleID   snowflake.ID `bun:",pk"`
	UserID   snowflake.ID `bun:",notnull"`
	GuildID  snowflake.ID `bun:",notnull"`
	Color    int          `bun:",notnull"`
	RoleName string       `bun:",notnull"`
}
