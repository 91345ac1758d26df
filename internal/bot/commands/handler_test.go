package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cyberbun/cyberbun/internal/bot/commands"
	"github.com/cyberbun/cyberbun/internal/database/types"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errDBDown = errors.New("db down")

type fakeSettings struct {
	settings   map[snowflake.ID]*types.GuildSettings
	upsertErr  error
	lastUpsert *types.GuildSettings
}

func (f *fakeSettings) GetGuildSettings(
	_ context.Context, guildID snowflake.ID,
) (*types.GuildSettings, error) {
	return f.settings[guildID], nil
}

func (f *fakeSettings) UpsertGuildSettings(_ context.Context, settings *types.GuildSettings) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}

	if f.settings == nil {
		f.settings = make(map[snowflake.ID]*types.GuildSettings)
	}

	f.settings[settings.GuildID] = settings
	f.lastUpsert = settings

	return nil
}

func (f *fakeSettings) ToggleStarboard(
	_ context.Context, guildID snowflake.ID, enabled bool,
) (bool, error) {
	settings, ok := f.settings[guildID]
	if !ok {
		return false, nil
	}

	settings.StarboardEnabled = enabled

	return true, nil
}

func (f *fakeSettings) SetStarboardThreshold(
	_ context.Context, guildID snowflake.ID, minStars int,
) (bool, error) {
	settings, ok := f.settings[guildID]
	if !ok {
		return false, nil
	}

	settings.StarboardMin = minStars

	return true, nil
}

type fakeReminders struct {
	created []*types.Reminder
	err     error
}

func (f *fakeReminders) CreateReminder(_ context.Context, reminder *types.Reminder) error {
	if f.err != nil {
		return f.err
	}

	f.created = append(f.created, reminder)

	return nil
}

type fakeColorSvc struct {
	created   bool
	err       error
	lastColor int
}

func (f *fakeColorSvc) SetColor(
	_ context.Context, _, _ snowflake.ID, _ string, color int,
) (bool, error) {
	if f.err != nil {
		return false, f.err
	}

	f.lastColor = color

	return f.created, nil
}

func setupHandler(settings *fakeSettings) (*commands.Handler, *fakeReminders, *fakeColorSvc) {
	reminders := &fakeReminders{}
	colorSvc := &fakeColorSvc{}

	return commands.NewHandler(settings, reminders, colorSvc, zap.NewNop()), reminders, colorSvc
}

func TestReminderOffset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		days    int
		hours   int
		minutes int
		want    time.Duration
		wantErr bool
	}{
		{name: "minutes only", minutes: 30, want: 30 * time.Minute},
		{name: "all components", days: 1, hours: 2, minutes: 3, want: 26*time.Hour + 3*time.Minute},
		{name: "zero offset", wantErr: true},
		{name: "negative component", hours: -1, minutes: 90, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := commands.ReminderOffset(tt.days, tt.hours, tt.minutes)
			if tt.wantErr {
				require.ErrorIs(t, err, commands.ErrInvalidOffset)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStarboardSetupFreshGuild(t *testing.T) {
	t.Parallel()

	settings := &fakeSettings{}
	handler, _, _ := setupHandler(settings)

	reply, err := handler.StarboardSetup(t.Context(), snowflake.ID(1), snowflake.ID(55))
	require.NoError(t, err)
	assert.Contains(t, reply, "<#55>")

	saved := settings.lastUpsert
	require.NotNil(t, saved)
	assert.True(t, saved.StarboardEnabled)
	require.NotNil(t, saved.StarboardChannel)
	assert.Equal(t, snowflake.ID(55), *saved.StarboardChannel)
	assert.Equal(t, types.DefaultStarboardMin, saved.StarboardMin)
}

func TestStarboardSetupKeepsExistingThreshold(t *testing.T) {
	t.Parallel()

	settings := &fakeSettings{settings: map[snowflake.ID]*types.GuildSettings{
		1: {GuildID: snowflake.ID(1), StarboardMin: 7},
	}}
	handler, _, _ := setupHandler(settings)

	_, err := handler.StarboardSetup(t.Context(), snowflake.ID(1), snowflake.ID(55))
	require.NoError(t, err)
	assert.Equal(t, 7, settings.lastUpsert.StarboardMin)
}

func TestStarboardEnabledBeforeSetup(t *testing.T) {
	t.Parallel()

	handler, _, _ := setupHandler(&fakeSettings{})

	reply, err := handler.StarboardEnabled(t.Context(), snowflake.ID(1), true)
	require.NoError(t, err)
	assert.Contains(t, reply, "not been set up")
}

func TestStarboardEnabledToggles(t *testing.T) {
	t.Parallel()

	settings := &fakeSettings{settings: map[snowflake.ID]*types.GuildSettings{
		1: {GuildID: snowflake.ID(1), StarboardEnabled: true},
	}}
	handler, _, _ := setupHandler(settings)

	reply, err := handler.StarboardEnabled(t.Context(), snowflake.ID(1), false)
	require.NoError(t, err)
	assert.Equal(t, "Starboard disabled.", reply)
	assert.False(t, settings.settings[1].StarboardEnabled)
}

func TestStarboardThresholdRejectsBelowOne(t *testing.T) {
	t.Parallel()

	settings := &fakeSettings{settings: map[snowflake.ID]*types.GuildSettings{
		1: {GuildID: snowflake.ID(1), StarboardMin: 3},
	}}
	handler, _, _ := setupHandler(settings)

	reply, err := handler.StarboardThreshold(t.Context(), snowflake.ID(1), 0)
	require.NoError(t, err)
	assert.Contains(t, reply, "at least 1")
	assert.Equal(t, 3, settings.settings[1].StarboardMin)
}

func TestStarboardThresholdUpdates(t *testing.T) {
	t.Parallel()

	settings := &fakeSettings{settings: map[snowflake.ID]*types.GuildSettings{
		1: {GuildID: snowflake.ID(1), StarboardMin: 3},
	}}
	handler, _, _ := setupHandler(settings)

	reply, err := handler.StarboardThreshold(t.Context(), snowflake.ID(1), 5)
	require.NoError(t, err)
	assert.Contains(t, reply, "5 star(s)")
	assert.Equal(t, 5, settings.settings[1].StarboardMin)
}

func TestRemindMeStoresReminder(t *testing.T) {
	t.Parallel()

	handler, reminders, _ := setupHandler(&fakeSettings{})
	before := time.Now()

	reply, err := handler.RemindMe(t.Context(), snowflake.ID(42), snowflake.ID(7), 0, 1, 30, "stretch")
	require.NoError(t, err)
	assert.Contains(t, reply, "remind you")

	require.Len(t, reminders.created, 1)
	created := reminders.created[0]
	assert.Equal(t, snowflake.ID(42), created.UserID)
	assert.Equal(t, snowflake.ID(7), created.ChannelID)
	assert.Equal(t, "stretch", created.Message)
	assert.False(t, created.Completed)
	assert.WithinDuration(t, before.Add(90*time.Minute), created.FireAt, 5*time.Second)
}

func TestRemindMeRejectsZeroOffset(t *testing.T) {
	t.Parallel()

	handler, reminders, _ := setupHandler(&fakeSettings{})

	reply, err := handler.RemindMe(t.Context(), snowflake.ID(42), snowflake.ID(7), 0, 0, 0, "stretch")
	require.NoError(t, err)
	assert.Contains(t, reply, "valid time")
	assert.Empty(t, reminders.created)
}

func TestRemindMeSurfacesStoreFailure(t *testing.T) {
	t.Parallel()

	handler, reminders, _ := setupHandler(&fakeSettings{})
	reminders.err = errDBDown

	_, err := handler.RemindMe(t.Context(), snowflake.ID(42), snowflake.ID(7), 0, 0, 5, "stretch")
	require.ErrorIs(t, err, errDBDown)
}

func TestColorSetRejectsInvalidHex(t *testing.T) {
	t.Parallel()

	handler, _, colorSvc := setupHandler(&fakeSettings{})

	reply, err := handler.ColorSet(t.Context(), snowflake.ID(1), snowflake.ID(42), "alice", "mauve")
	require.NoError(t, err)
	assert.Contains(t, reply, "not a valid hex color")
	assert.Zero(t, colorSvc.lastColor)
}

func TestColorSetReportsCreatedAndUpdated(t *testing.T) {
	t.Parallel()

	handler, _, colorSvc := setupHandler(&fakeSettings{})
	colorSvc.created = true

	reply, err := handler.ColorSet(t.Context(), snowflake.ID(1), snowflake.ID(42), "alice", "#ffaa99")
	require.NoError(t, err)
	assert.Contains(t, reply, "Created")
	assert.Equal(t, 0xFFAA99, colorSvc.lastColor)

	colorSvc.created = false

	reply, err = handler.ColorSet(t.Context(), snowflake.ID(1), snowflake.ID(42), "alice", "0x123abc")
	require.NoError(t, err)
	assert.Contains(t, reply, "Updated")
	assert.Contains(t, reply, "#123abc")
}
