package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cyberbun/cyberbun/internal/bot/colors"
	"github.com/cyberbun/cyberbun/internal/database/types"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"
)

// ErrInvalidOffset marks a reminder offset the user got wrong.
var ErrInvalidOffset = errors.New("invalid reminder offset")

// SettingsStore is the guild settings persistence the handler needs.
type SettingsStore interface {
	GetGuildSettings(ctx context.Context, guildID snowflake.ID) (*types.GuildSettings, error)
	UpsertGuildSettings(ctx context.Context, settings *types.GuildSettings) error
	ToggleStarboard(ctx context.Context, guildID snowflake.ID, enabled bool) (bool, error)
	SetStarboardThreshold(ctx context.Context, guildID snowflake.ID, minStars int) (bool, error)
}

// ReminderStore enqueues reminders for the scheduler.
type ReminderStore interface {
	CreateReminder(ctx context.Context, reminder *types.Reminder) error
}

// ColorService applies color role changes.
type ColorService interface {
	SetColor(ctx context.Context, guildID, userID snowflake.ID, userName string, color int) (bool, error)
}

// Handler resolves slash command interactions into store and service calls.
// Each command method returns the reply text shown to the invoking user;
// invalid input becomes a polite reply, never an error.
type Handler struct {
	settings  SettingsStore
	reminders ReminderStore
	colors    ColorService
	now       func() time.Time
	logger    *zap.Logger
}

// NewHandler creates a command handler.
func NewHandler(
	settings SettingsStore, reminders ReminderStore, colorSvc ColorService, logger *zap.Logger,
) *Handler {
	return &Handler{
		settings:  settings,
		reminders: reminders,
		colors:    colorSvc,
		now:       time.Now,
		logger:    logger.Named("commands"),
	}
}

// ReminderOffset combines the day/hour/minute options into a single duration.
// Negative components and an all-zero offset are rejected.
func ReminderOffset(days, hours, minutes int) (time.Duration, error) {
	if days < 0 || hours < 0 || minutes < 0 {
		return 0, fmt.Errorf("%w: offsets must not be negative", ErrInvalidOffset)
	}

	offset := time.Duration(days)*24*time.Hour +
		time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute
	if offset == 0 {
		return 0, fmt.Errorf("%w: give at least one of days, hours or minutes", ErrInvalidOffset)
	}

	return offset, nil
}

// StarboardSetup points the guild's starboard at a channel and enables it.
// An existing threshold is kept; a fresh guild starts at the default.
func (h *Handler) StarboardSetup(ctx context.Context, guildID, channelID snowflake.ID) (string, error) {
	settings, err := h.settings.GetGuildSettings(ctx, guildID)
	if err != nil {
		return "", fmt.Errorf("failed to load guild settings: %w", err)
	}

	if settings == nil {
		settings = &types.GuildSettings{
			GuildID:      guildID,
			StarboardMin: types.DefaultStarboardMin,
		}
	}

	settings.StarboardChannel = &channelID
	settings.StarboardEnabled = true

	if err := h.settings.UpsertGuildSettings(ctx, settings); err != nil {
		return "", fmt.Errorf("failed to save guild settings: %w", err)
	}

	h.logger.Info("Starboard configured",
		zap.Uint64("guildID", uint64(guildID)),
		zap.Uint64("channelID", uint64(channelID)))

	return fmt.Sprintf("Starboard messages will be posted to %s.", discord.ChannelMention(channelID)), nil
}

// StarboardEnabled flips the starboard on or off for a configured guild.
func (h *Handler) StarboardEnabled(ctx context.Context, guildID snowflake.ID, enabled bool) (string, error) {
	updated, err := h.settings.ToggleStarboard(ctx, guildID, enabled)
	if err != nil {
		return "", fmt.Errorf("failed to toggle starboard: %w", err)
	}

	if !updated {
		return "The starboard has not been set up yet. Run `/starboard setup` first.", nil
	}

	if enabled {
		return "Starboard enabled.", nil
	}

	return "Starboard disabled.", nil
}

// StarboardThreshold sets the star count a message needs to be promoted.
func (h *Handler) StarboardThreshold(ctx context.Context, guildID snowflake.ID, minStars int) (string, error) {
	if minStars < 1 {
		return "The threshold must be at least 1.", nil
	}

	updated, err := h.settings.SetStarboardThreshold(ctx, guildID, minStars)
	if err != nil {
		return "", fmt.Errorf("failed to set starboard threshold: %w", err)
	}

	if !updated {
		return "The starboard has not been set up yet. Run `/starboard setup` first.", nil
	}

	return fmt.Sprintf("Messages now need %d star(s) to reach the starboard.", minStars), nil
}

// RemindMe stores a reminder firing after the given offset, delivered back to
// the channel the command was used in.
func (h *Handler) RemindMe(
	ctx context.Context, userID, channelID snowflake.ID, days, hours, minutes int, message string,
) (string, error) {
	offset, err := ReminderOffset(days, hours, minutes)
	if err != nil {
		return "That doesn't look like a valid time. Give at least one of days, hours or minutes.", nil
	}

	fireAt := h.now().Add(offset)
	reminder := &types.Reminder{
		FireAt:    fireAt,
		Message:   message,
		UserID:    userID,
		ChannelID: channelID,
	}

	if err := h.reminders.CreateReminder(ctx, reminder); err != nil {
		return "", fmt.Errorf("failed to create reminder: %w", err)
	}

	h.logger.Info("Reminder created",
		zap.Int64("id", reminder.ID),
		zap.Uint64("userID", uint64(userID)),
		zap.Time("fireAt", fireAt))

	return fmt.Sprintf("Got it. I will remind you %s.",
		discord.FormattedTimestampMention(fireAt.Unix(), discord.TimestampStyleRelative)), nil
}

// ColorSet parses the hex code and applies it as the member's color role.
func (h *Handler) ColorSet(
	ctx context.Context, guildID, userID snowflake.ID, userName, code string,
) (string, error) {
	color, err := colors.ParseColor(code)
	if err != nil {
		return fmt.Sprintf("`%s` is not a valid hex color. Try something like `#ffaa99`.", code), nil
	}

	created, err := h.colors.SetColor(ctx, guildID, userID, userName, color)
	if err != nil {
		return "", fmt.Errorf("failed to set color: %w", err)
	}

	if created {
		return fmt.Sprintf("Created your color role with `#%06x`.", color), nil
	}

	return fmt.Sprintf("Updated your color to `#%06x`.", color), nil
}

// OnCommand dispatches a slash command interaction. Unknown commands get a
// generic reply so the interaction never times out.
func (h *Handler) OnCommand(event *events.ApplicationCommandInteractionCreate) {
	go func() {
		ctx := context.Background()
		data := event.SlashCommandInteractionData()

		start := time.Now()
		defer func() {
			h.logger.Debug("Command handled",
				zap.String("command", data.CommandName()),
				zap.Duration("duration", time.Since(start)))
		}()

		reply, err := h.dispatch(ctx, event, data)
		if err != nil {
			h.logger.Error("Command failed",
				zap.String("command", data.CommandName()),
				zap.Error(err))

			reply = "Something went wrong. Please try again later."
		}

		if err := event.CreateMessage(discord.NewMessageCreateBuilder().
			SetContent(reply).
			SetEphemeral(true).
			Build(),
		); err != nil {
			h.logger.Error("Failed to respond to command", zap.Error(err))
		}
	}()
}

func (h *Handler) dispatch(
	ctx context.Context,
	event *events.ApplicationCommandInteractionCreate,
	data discord.SlashCommandInteractionData,
) (string, error) {
	switch data.CommandName() {
	case StarboardCommandName:
		guildID := event.GuildID()
		if guildID == nil {
			return "This command only works in a server.", nil
		}

		switch *data.SubCommandName {
		case StarboardSetupSubcommand:
			return h.StarboardSetup(ctx, *guildID, data.Snowflake("channel"))
		case StarboardEnabledSubcommand:
			return h.StarboardEnabled(ctx, *guildID, data.Bool("value"))
		case StarboardThresholdSubcommand:
			return h.StarboardThreshold(ctx, *guildID, data.Int("value"))
		}

	case RemindMeCommandName:
		days, _ := data.OptInt("days")
		hours, _ := data.OptInt("hours")
		minutes, _ := data.OptInt("minutes")

		return h.RemindMe(ctx, event.User().ID, event.Channel().ID(),
			days, hours, minutes, data.String("message"))

	case ColorCommandName:
		guildID := event.GuildID()
		if guildID == nil {
			return "This command only works in a server.", nil
		}

		if *data.SubCommandName == ColorSetSubcommand {
			userName := event.User().EffectiveName()
			if member := event.Member(); member != nil && member.Nick != nil {
				userName = *member.Nick
			}

			return h.ColorSet(ctx, *guildID, event.User().ID, userName, data.String("code"))
		}
	}

	return "This command is not available.", nil
}
