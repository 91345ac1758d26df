package bot

import (
	"context"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// restAdapter narrows the disgo REST client to the context-taking interfaces
// the engines accept, so they stay testable with plain fakes.
type restAdapter struct {
	client bot.Client
}

func (r *restAdapter) GetMessage(
	ctx context.Context, channelID, messageID snowflake.ID,
) (*discord.Message, error) {
	return r.client.Rest().GetMessage(channelID, messageID, rest.WithCtx(ctx))
}

func (r *restAdapter) GetMember(
	ctx context.Context, guildID, userID snowflake.ID,
) (*discord.Member, error) {
	return r.client.Rest().GetMember(guildID, userID, rest.WithCtx(ctx))
}

func (r *restAdapter) CreateMessage(
	ctx context.Context, channelID snowflake.ID, message discord.MessageCreate,
) (*discord.Message, error) {
	return r.client.Rest().CreateMessage(channelID, message, rest.WithCtx(ctx))
}

func (r *restAdapter) CreateRole(
	ctx context.Context, guildID snowflake.ID, role discord.RoleCreate,
) (*discord.Role, error) {
	return r.client.Rest().CreateRole(guildID, role, rest.WithCtx(ctx))
}

func (r *restAdapter) UpdateRole(
	ctx context.Context, guildID, roleID snowflake.ID, role discord.RoleUpdate,
) (*discord.Role, error) {
	return r.client.Rest().UpdateRole(guildID, roleID, role, rest.WithCtx(ctx))
}

func (r *restAdapter) AddMemberRole(ctx context.Context, guildID, userID, roleID snowflake.ID) error {
	return r.client.Rest().AddMemberRole(guildID, userID, roleID, rest.WithCtx(ctx))
}

// statusAdapter publishes activity status through the gateway presence update.
type statusAdapter struct {
	client bot.Client
}

func (s *statusAdapter) SetWatching(ctx context.Context, text string) error {
	return s.client.SetPresence(ctx, gateway.WithWatchingActivity(text))
}
