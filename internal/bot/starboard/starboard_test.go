package starboard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cyberbun/cyberbun/internal/bot/starboard"
	"github.com/cyberbun/cyberbun/internal/database/types"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errUnavailable = errors.New("service unavailable")

const (
	testGuildID     = snowflake.ID(100)
	testChannelID   = snowflake.ID(200)
	testStarboardID = snowflake.ID(300)
	testMessageID   = snowflake.ID(400)
	testAuthorID    = snowflake.ID(500)
)

type fakeSettings struct {
	settings *types.GuildSettings
	err      error
}

func (f *fakeSettings) GetGuildSettings(_ context.Context, _ snowflake.ID) (*types.GuildSettings, error) {
	return f.settings, f.err
}

type fakeLedger struct {
	starred    map[snowflake.ID]bool
	checkCalls int
	markCalls  int
	checkErr   error
	markErr    error
	// loseRace simulates another handler winning the conditional insert.
	loseRace bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{starred: make(map[snowflake.ID]bool)}
}

func (f *fakeLedger) IsStarred(_ context.Context, messageID snowflake.ID) (bool, error) {
	f.checkCalls++
	return f.starred[messageID], f.checkErr
}

func (f *fakeLedger) MarkStarred(_ context.Context, messageID snowflake.ID) (bool, error) {
	f.markCalls++

	if f.markErr != nil {
		return false, f.markErr
	}

	if f.loseRace || f.starred[messageID] {
		f.starred[messageID] = true
		return false, nil
	}

	f.starred[messageID] = true

	return true, nil
}

type fakeTransport struct {
	message    *discord.Message
	member     *discord.Member
	getErr     error
	memberErr  error
	createErr  error
	posts      int
	lastTarget snowflake.ID
	lastCreate discord.MessageCreate
}

func (f *fakeTransport) GetMessage(_ context.Context, _, _ snowflake.ID) (*discord.Message, error) {
	return f.message, f.getErr
}

func (f *fakeTransport) GetMember(_ context.Context, _, _ snowflake.ID) (*discord.Member, error) {
	if f.memberErr != nil {
		return nil, f.memberErr
	}

	return f.member, nil
}

func (f *fakeTransport) CreateMessage(
	_ context.Context, channelID snowflake.ID, message discord.MessageCreate,
) (*discord.Message, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}

	f.posts++
	f.lastTarget = channelID
	f.lastCreate = message

	return &discord.Message{}, nil
}

func starMessage(count int) *discord.Message {
	return &discord.Message{
		ID:        testMessageID,
		ChannelID: testChannelID,
		Content:   "a genuinely great post",
		Author: discord.User{
			ID:       testAuthorID,
			Username: "someone",
		},
		Reactions: []discord.MessageReaction{
			{Count: count, Emoji: discord.Emoji{Name: starboard.StarEmoji}},
		},
	}
}

func enabledSettings() *types.GuildSettings {
	channel := testStarboardID

	return &types.GuildSettings{
		GuildID:          testGuildID,
		StarboardEnabled: true,
		StarboardChannel: &channel,
		StarboardMin:     3,
	}
}

func starEvent() starboard.ReactionEvent {
	guild := testGuildID

	return starboard.ReactionEvent{
		GuildID:   &guild,
		ChannelID: testChannelID,
		MessageID: testMessageID,
		Emoji:     starboard.StarEmoji,
	}
}

func newEngine(settings *fakeSettings, ledger *fakeLedger, rest *fakeTransport) *starboard.Engine {
	return starboard.New(settings, ledger, rest, nil, zap.NewNop())
}

func TestIgnoresDirectMessages(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	rest := &fakeTransport{message: starMessage(5)}
	engine := newEngine(&fakeSettings{settings: enabledSettings()}, ledger, rest)

	event := starEvent()
	event.GuildID = nil

	require.NoError(t, engine.HandleReactionAdd(t.Context(), event))
	assert.Zero(t, ledger.checkCalls)
	assert.Zero(t, rest.posts)
}

func TestIgnoresOtherEmoji(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	rest := &fakeTransport{message: starMessage(5)}
	engine := newEngine(&fakeSettings{settings: enabledSettings()}, ledger, rest)

	event := starEvent()
	event.Emoji = "🔥"

	require.NoError(t, engine.HandleReactionAdd(t.Context(), event))
	assert.Zero(t, ledger.checkCalls)
	assert.Zero(t, rest.posts)
}

func TestIgnoresAlreadyPromotedMessage(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	ledger.starred[testMessageID] = true

	rest := &fakeTransport{message: starMessage(5)}
	engine := newEngine(&fakeSettings{settings: enabledSettings()}, ledger, rest)

	require.NoError(t, engine.HandleReactionAdd(t.Context(), starEvent()))
	assert.Zero(t, rest.posts)
	assert.Zero(t, ledger.markCalls)
}

func TestIgnoresUnconfiguredGuild(t *testing.T) {
	t.Parallel()

	rest := &fakeTransport{message: starMessage(5)}
	engine := newEngine(&fakeSettings{settings: nil}, newFakeLedger(), rest)

	require.NoError(t, engine.HandleReactionAdd(t.Context(), starEvent()))
	assert.Zero(t, rest.posts)
}

func TestIgnoresDisabledStarboard(t *testing.T) {
	t.Parallel()

	settings := enabledSettings()
	settings.StarboardEnabled = false

	rest := &fakeTransport{message: starMessage(5)}
	engine := newEngine(&fakeSettings{settings: settings}, newFakeLedger(), rest)

	require.NoError(t, engine.HandleReactionAdd(t.Context(), starEvent()))
	assert.Zero(t, rest.posts)
}

func TestIgnoresMissingStarboardChannel(t *testing.T) {
	t.Parallel()

	settings := enabledSettings()
	settings.StarboardChannel = nil

	rest := &fakeTransport{message: starMessage(5)}
	engine := newEngine(&fakeSettings{settings: settings}, newFakeLedger(), rest)

	require.NoError(t, engine.HandleReactionAdd(t.Context(), starEvent()))
	assert.Zero(t, rest.posts)
}

func TestIgnoresReactionInsideStarboardChannel(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	rest := &fakeTransport{message: starMessage(5)}
	engine := newEngine(&fakeSettings{settings: enabledSettings()}, ledger, rest)

	event := starEvent()
	event.ChannelID = testStarboardID

	require.NoError(t, engine.HandleReactionAdd(t.Context(), event))
	assert.Zero(t, rest.posts)
	assert.Zero(t, ledger.markCalls)
}

func TestBelowThresholdNotPromoted(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	rest := &fakeTransport{message: starMessage(2)}
	engine := newEngine(&fakeSettings{settings: enabledSettings()}, ledger, rest)

	require.NoError(t, engine.HandleReactionAdd(t.Context(), starEvent()))
	assert.Zero(t, rest.posts)
	assert.Zero(t, ledger.markCalls)
	assert.False(t, ledger.starred[testMessageID])
}

func TestPromotesAtExactThreshold(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	rest := &fakeTransport{message: starMessage(3)}
	engine := newEngine(&fakeSettings{settings: enabledSettings()}, ledger, rest)

	require.NoError(t, engine.HandleReactionAdd(t.Context(), starEvent()))
	assert.Equal(t, 1, rest.posts)
	assert.Equal(t, testStarboardID, rest.lastTarget)
	assert.True(t, ledger.starred[testMessageID])
}

func TestPromotesAboveThreshold(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	rest := &fakeTransport{message: starMessage(7)}
	engine := newEngine(&fakeSettings{settings: enabledSettings()}, ledger, rest)

	require.NoError(t, engine.HandleReactionAdd(t.Context(), starEvent()))
	assert.Equal(t, 1, rest.posts)
}

func TestRedeliveryAfterPromotionIsIdempotent(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	rest := &fakeTransport{message: starMessage(4)}
	engine := newEngine(&fakeSettings{settings: enabledSettings()}, ledger, rest)

	require.NoError(t, engine.HandleReactionAdd(t.Context(), starEvent()))
	require.NoError(t, engine.HandleReactionAdd(t.Context(), starEvent()))

	assert.Equal(t, 1, rest.posts)
	assert.Equal(t, 1, ledger.markCalls)
}

func TestLostConditionalInsertSkipsPost(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	ledger.loseRace = true

	rest := &fakeTransport{message: starMessage(5)}
	engine := newEngine(&fakeSettings{settings: enabledSettings()}, ledger, rest)

	require.NoError(t, engine.HandleReactionAdd(t.Context(), starEvent()))
	assert.Zero(t, rest.posts)
}

func TestEmbedUsesNicknameWhenAvailable(t *testing.T) {
	t.Parallel()

	nick := "the nickname"
	rest := &fakeTransport{
		message: starMessage(3),
		member:  &discord.Member{Nick: &nick},
	}
	engine := newEngine(&fakeSettings{settings: enabledSettings()}, newFakeLedger(), rest)

	require.NoError(t, engine.HandleReactionAdd(t.Context(), starEvent()))
	require.Len(t, rest.lastCreate.Embeds, 1)
	assert.Equal(t, nick, rest.lastCreate.Embeds[0].Title)
}

func TestEmbedFallsBackToUsername(t *testing.T) {
	t.Parallel()

	rest := &fakeTransport{
		message:   starMessage(3),
		memberErr: errUnavailable,
	}
	engine := newEngine(&fakeSettings{settings: enabledSettings()}, newFakeLedger(), rest)

	require.NoError(t, engine.HandleReactionAdd(t.Context(), starEvent()))
	require.Len(t, rest.lastCreate.Embeds, 1)
	assert.Equal(t, "someone", rest.lastCreate.Embeds[0].Title)
}

func TestEmbedHandlesMissingMember(t *testing.T) {
	t.Parallel()

	// A member lookup can come back empty without an error; promotion still
	// goes through with the username.
	rest := &fakeTransport{message: starMessage(3)}
	engine := newEngine(&fakeSettings{settings: enabledSettings()}, newFakeLedger(), rest)

	require.NoError(t, engine.HandleReactionAdd(t.Context(), starEvent()))
	require.Equal(t, 1, rest.posts)
	require.Len(t, rest.lastCreate.Embeds, 1)
	assert.Equal(t, "someone", rest.lastCreate.Embeds[0].Title)
}

func TestMessageFetchFailureIsSurfaced(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	rest := &fakeTransport{getErr: errUnavailable}
	engine := newEngine(&fakeSettings{settings: enabledSettings()}, ledger, rest)

	err := engine.HandleReactionAdd(t.Context(), starEvent())
	require.ErrorIs(t, err, errUnavailable)
	assert.Zero(t, ledger.markCalls)
}

func TestSettingsFailureIsSurfaced(t *testing.T) {
	t.Parallel()

	rest := &fakeTransport{message: starMessage(5)}
	engine := newEngine(&fakeSettings{err: errUnavailable}, newFakeLedger(), rest)

	err := engine.HandleReactionAdd(t.Context(), starEvent())
	require.ErrorIs(t, err, errUnavailable)
	assert.Zero(t, rest.posts)
}

func TestPostFailureIsSurfaced(t *testing.T) {
	t.Parallel()

	ledger := newFakeLedger()
	rest := &fakeTransport{message: starMessage(5), createErr: errUnavailable}
	engine := newEngine(&fakeSettings{settings: enabledSettings()}, ledger, rest)

	err := engine.HandleReactionAdd(t.Context(), starEvent())
	require.ErrorIs(t, err, errUnavailable)
}
