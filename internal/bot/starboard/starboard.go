package starboard

import (
	"context"
	"fmt"
	"time"

	"github.com/cyberbun/cyberbun/internal/database/types"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"
)

// StarEmoji is the reaction glyph that feeds the starboard.
const StarEmoji = "⭐"

// EmbedFooter is shown on every promoted message.
const EmbedFooter = "CyberBun - " + StarEmoji

// SettingsStore provides per-guild starboard configuration.
type SettingsStore interface {
	// GetGuildSettings returns nil when the guild was never configured.
	GetGuildSettings(ctx context.Context, guildID snowflake.ID) (*types.GuildSettings, error)
}

// Ledger is the durable seen-set of promoted messages. MarkStarred must be
// an atomic conditional insert: it reports true only for the caller that
// created the row, which makes it the single race-resolution point when
// concurrent reaction events qualify the same message.
type Ledger interface {
	IsStarred(ctx context.Context, messageID snowflake.ID) (bool, error)
	MarkStarred(ctx context.Context, messageID snowflake.ID) (bool, error)
}

// Transport is the slice of the Discord REST API the engine needs.
type Transport interface {
	GetMessage(ctx context.Context, channelID, messageID snowflake.ID) (*discord.Message, error)
	GetMember(ctx context.Context, guildID, userID snowflake.ID) (*discord.Member, error)
	CreateMessage(ctx context.Context, channelID snowflake.ID, message discord.MessageCreate) (*discord.Message, error)
}

// Cache is an advisory fast path in front of the ledger; it may answer
// stale and the engine never depends on it for correctness.
type Cache interface {
	Contains(ctx context.Context, messageID snowflake.ID) bool
	Add(ctx context.Context, messageID snowflake.ID)
}

// ReactionEvent carries the fields of a gateway reaction-add the engine
// cares about. GuildID is nil for reactions in direct messages.
type ReactionEvent struct {
	GuildID   *snowflake.ID
	ChannelID snowflake.ID
	MessageID snowflake.ID
	Emoji     string
}

// Engine decides, per qualifying reaction event, whether a message should be
// promoted to the guild's starboard channel.
type Engine struct {
	settings SettingsStore
	ledger   Ledger
	rest     Transport
	cache    Cache
	logger   *zap.Logger
}

// New creates a curation engine. cache may be nil.
func New(settings SettingsStore, ledger Ledger, rest Transport, cache Cache, logger *zap.Logger) *Engine {
	return &Engine{
		settings: settings,
		ledger:   ledger,
		rest:     rest,
		cache:    cache,
		logger:   logger.Named("starboard"),
	}
}

// HandleReactionAdd processes one reaction-add event. Every early exit is a
// normal outcome, not an error; errors are returned only for transport or
// store failures, in which case the event is dropped by the caller and the
// message stays eligible for the next qualifying reaction.
func (e *Engine) HandleReactionAdd(ctx context.Context, event ReactionEvent) error {
	// Reactions in DMs have no guild and can never hit a starboard.
	if event.GuildID == nil {
		return nil
	}

	if event.Emoji != StarEmoji {
		return nil
	}

	if e.cache != nil && e.cache.Contains(ctx, event.MessageID) {
		return nil
	}

	starred, err := e.ledger.IsStarred(ctx, event.MessageID)
	if err != nil {
		return fmt.Errorf("failed to check starred ledger: %w", err)
	}

	if starred {
		e.remember(ctx, event.MessageID)
		return nil
	}

	settings, err := e.settings.GetGuildSettings(ctx, *event.GuildID)
	if err != nil {
		return fmt.Errorf("failed to load guild settings: %w", err)
	}

	if settings == nil || !settings.StarboardEnabled || settings.StarboardChannel == nil {
		return nil
	}

	// Never re-promote out of the starboard channel itself.
	if *settings.StarboardChannel == event.ChannelID {
		return nil
	}

	// The count is always read fresh from the API; several reactions may
	// have landed before this event was processed.
	message, err := e.rest.GetMessage(ctx, event.ChannelID, event.MessageID)
	if err != nil {
		return fmt.Errorf("failed to fetch message: %w", err)
	}

	if starCount(message) < settings.StarboardMin {
		return nil
	}

	// The conditional insert gates the post: only the caller that created
	// the row posts, so concurrent qualifying events yield one promotion.
	created, err := e.ledger.MarkStarred(ctx, event.MessageID)
	if err != nil {
		return fmt.Errorf("failed to mark message starred: %w", err)
	}

	if !created {
		e.remember(ctx, event.MessageID)
		return nil
	}

	embed := e.buildEmbed(ctx, message, event)

	_, err = e.rest.CreateMessage(ctx, *settings.StarboardChannel,
		discord.NewMessageCreateBuilder().SetEmbeds(embed).Build())
	if err != nil {
		return fmt.Errorf("failed to post starboard message: %w", err)
	}

	e.remember(ctx, event.MessageID)
	e.logger.Info("Promoted message to starboard",
		zap.Uint64("guildID", uint64(*event.GuildID)),
		zap.Uint64("messageID", uint64(event.MessageID)),
		zap.Uint64("starboardChannel", uint64(*settings.StarboardChannel)))

	return nil
}

// buildEmbed composes the starboard display record for a promoted message.
func (e *Engine) buildEmbed(ctx context.Context, message *discord.Message, event ReactionEvent) discord.Embed {
	author := message.Author

	// Prefer the author's guild nickname; fall back to their username.
	displayName := author.EffectiveName()

	if member, err := e.rest.GetMember(ctx, *event.GuildID, author.ID); err == nil && member != nil {
		if member.Nick != nil && *member.Nick != "" {
			displayName = *member.Nick
		}
	}

	builder := discord.NewEmbedBuilder().
		SetTitle(displayName).
		SetURL(messageLink(*event.GuildID, event.ChannelID, event.MessageID)).
		SetDescription(message.Content).
		SetFooterText(EmbedFooter).
		SetTimestamp(time.Now())

	// Avatar is optional; users without one simply get no thumbnail.
	if avatarURL := author.AvatarURL(); avatarURL != nil {
		builder.SetThumbnail(*avatarURL)
	}

	return builder.Build()
}

// remember adds a message to the advisory seen-cache.
func (e *Engine) remember(ctx context.Context, messageID snowflake.ID) {
	if e.cache != nil {
		e.cache.Add(ctx, messageID)
	}
}

// starCount returns the current number of star reactions on a message.
func starCount(message *discord.Message) int {
	for _, reaction := range message.Reactions {
		if reaction.Emoji.Name == StarEmoji {
			return reaction.Count
		}
	}

	return 0
}

// messageLink builds the permalink shown on the starboard embed.
func messageLink(guildID, channelID, messageID snowflake.ID) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}
