package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/json"
)

// Command and option names shared between registration and dispatch.
const (
	StarboardCommandName = "starboard"
	RemindMeCommandName  = "remindme"
	ColorCommandName     = "color"

	StarboardSetupSubcommand     = "setup"
	StarboardEnabledSubcommand   = "enabled"
	StarboardThresholdSubcommand = "threshold"
	ColorSetSubcommand           = "set"
)

// Definitions returns the full global command set registered on startup.
func Definitions() []discord.ApplicationCommandCreate {
	return []discord.ApplicationCommandCreate{
		discord.SlashCommandCreate{
			Name:                     StarboardCommandName,
			Description:              "Configure the starboard for this server",
			DefaultMemberPermissions: json.NewNullablePtr(discord.PermissionManageGuild),
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionSubCommand{
					Name:        StarboardSetupSubcommand,
					Description: "Pick the channel starred messages are posted to",
					Options: []discord.ApplicationCommandOption{
						discord.ApplicationCommandOptionChannel{
							Name:        "channel",
							Description: "Destination channel for starred messages",
							Required:    true,
							ChannelTypes: []discord.ChannelType{
								discord.ChannelTypeGuildText,
							},
						},
					},
				},
				discord.ApplicationCommandOptionSubCommand{
					Name:        StarboardEnabledSubcommand,
					Description: "Turn the starboard on or off",
					Options: []discord.ApplicationCommandOption{
						discord.ApplicationCommandOptionBool{
							Name:        "value",
							Description: "Whether the starboard is active",
							Required:    true,
						},
					},
				},
				discord.ApplicationCommandOptionSubCommand{
					Name:        StarboardThresholdSubcommand,
					Description: "Set how many star reactions promote a message",
					Options: []discord.ApplicationCommandOption{
						discord.ApplicationCommandOptionInt{
							Name:        "value",
							Description: "Minimum star reactions",
							Required:    true,
						},
					},
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        RemindMeCommandName,
			Description: "Set a reminder delivered in this channel",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "message",
					Description: "What to remind you about",
					Required:    true,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "days",
					Description: "Days from now",
				},
				discord.ApplicationCommandOptionInt{
					Name:        "hours",
					Description: "Hours from now",
				},
				discord.ApplicationCommandOptionInt{
					Name:        "minutes",
					Description: "Minutes from now",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        ColorCommandName,
			Description: "Manage your personal name color",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionSubCommand{
					Name:        ColorSetSubcommand,
					Description: "Set your name color from a hex code",
					Options: []discord.ApplicationCommandOption{
						discord.ApplicationCommandOptionString{
							Name:        "code",
							Description: "Hex color such as #ffaa99",
							Required:    true,
						},
					},
				},
			},
		},
	}
}
