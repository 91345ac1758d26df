package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/cyberbun/cyberbun/internal/bot/colors"
	"github.com/cyberbun/cyberbun/internal/bot/commands"
	"github.com/cyberbun/cyberbun/internal/bot/presence"
	"github.com/cyberbun/cyberbun/internal/bot/reminder"
	"github.com/cyberbun/cyberbun/internal/bot/starboard"
	"github.com/cyberbun/cyberbun/internal/database"
	"github.com/cyberbun/cyberbun/internal/redis"
	"github.com/cyberbun/cyberbun/internal/setup/config"
	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"go.uber.org/zap"
)

// Bot owns the Discord client and wires gateway events into the curation
// engine, the reminder scheduler, the guild tracker and the command handler.
type Bot struct {
	client    bot.Client
	engine    *starboard.Engine
	scheduler *reminder.Scheduler
	tracker   *presence.Tracker
	colors    *colors.Service
	handler   *commands.Handler
	logger    *zap.Logger
}

// New builds the bot and all its engines from the loaded configuration.
func New(
	cfg *config.Config,
	db database.Client,
	redisManager *redis.Manager,
	logger *zap.Logger,
) (*Bot, error) {
	b := &Bot{logger: logger.Named("bot")}

	client, err := disgo.New(cfg.Bot.Discord.Token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildMembers,
				gateway.IntentGuildMessages,
				gateway.IntentGuildMessageReactions,
			),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnReady:                         b.handleReady,
			OnGuildsReady:                   b.handleGuildsReady,
			OnGuildJoin:                     b.handleGuildJoin,
			OnGuildLeave:                    b.handleGuildLeave,
			OnGuildMemberJoin:               b.handleGuildMemberJoin,
			OnMessageReactionAdd:            b.handleMessageReactionAdd,
			OnApplicationCommandInteraction: b.handleApplicationCommandInteraction,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord client: %w", err)
	}

	b.client = client
	rest := &restAdapter{client: client}

	cacheClient, err := redisManager.GetClient(redis.CacheDBIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to create seen-cache client: %w", err)
	}

	seenCache := starboard.NewSeenCache(cacheClient,
		time.Duration(cfg.Bot.Starboard.SeenCacheTTLHours)*time.Hour, logger)

	b.engine = starboard.New(db.Model().Setting(), db.Model().Starboard(), rest, seenCache, logger)
	b.scheduler = reminder.New(db.Model().Reminder(), rest, logger,
		reminder.WithInterval(time.Duration(cfg.Bot.Reminder.PollIntervalSeconds)*time.Second))
	b.tracker = presence.NewTracker(&statusAdapter{client: client}, logger)
	b.colors = colors.New(db.Model().Color(), rest, logger)
	b.handler = commands.NewHandler(db.Model().Setting(), db.Model().Reminder(), b.colors, logger)

	return b, nil
}

// Start registers the global command set and opens the gateway connection.
func (b *Bot) Start() error {
	b.logger.Info("Registering commands")

	_, err := b.client.Rest().SetGlobalCommands(b.client.ApplicationID(), commands.Definitions())
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	b.logger.Info("Starting bot")

	return b.client.OpenGateway(context.Background())
}

// Close stops the scheduler and shuts down the gateway connection.
func (b *Bot) Close() {
	b.logger.Info("Closing bot")
	b.scheduler.Stop()
	b.client.Close(context.Background())
}

// handleReady seeds the guild counter from the gateway's initial guild list.
func (b *Bot) handleReady(event *events.Ready) {
	b.tracker.Init(context.Background(), len(event.Guilds))
}

// handleGuildsReady starts the reminder loop once the shard has settled.
// Start is idempotent, so gateway resumes are harmless.
func (b *Bot) handleGuildsReady(*events.GuildsReady) {
	b.scheduler.Start()
}

func (b *Bot) handleGuildJoin(*events.GuildJoin) {
	b.tracker.Join(context.Background())
}

func (b *Bot) handleGuildLeave(*events.GuildLeave) {
	b.tracker.Leave(context.Background())
}

func (b *Bot) handleGuildMemberJoin(event *events.GuildMemberJoin) {
	go func() {
		ctx := context.Background()

		if err := b.colors.HandleMemberJoin(ctx, event.GuildID, event.Member.User.ID); err != nil {
			b.logger.Error("Failed to handle member join",
				zap.Uint64("guildID", uint64(event.GuildID)),
				zap.Uint64("userID", uint64(event.Member.User.ID)),
				zap.Error(err))
		}
	}()
}

// handleMessageReactionAdd feeds reaction events to the curation engine. Each
// event runs in its own goroutine; the engine resolves races at the store.
func (b *Bot) handleMessageReactionAdd(event *events.MessageReactionAdd) {
	go func() {
		ctx := context.Background()

		var emoji string
		if event.Emoji.Name != nil {
			emoji = *event.Emoji.Name
		}

		err := b.engine.HandleReactionAdd(ctx, starboard.ReactionEvent{
			GuildID:   event.GuildID,
			ChannelID: event.ChannelID,
			MessageID: event.MessageID,
			Emoji:     emoji,
		})
		if err != nil {
			b.logger.Error("Failed to handle reaction",
				zap.Uint64("messageID", uint64(event.MessageID)),
				zap.Error(err))
		}
	}()
}

func (b *Bot) handleApplicationCommandInteraction(event *events.ApplicationCommandInteractionCreate) {
	b.handler.OnCommand(event)
}
