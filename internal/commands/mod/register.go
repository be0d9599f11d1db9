// Package mod provides moderation commands organized as subcommands under /mod
// Each command is in its own file for better organization
package mod

import (
	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
)

// RegisterModCommands registers all moderation commands as /mod subcommands
func RegisterModCommands(client *discord.ExtendedClient, engine *moderation.Engine) {
	modGroup := client.CommandHandler.BuildCommandGroup(
		"mod",
		"Comandos de moderación",
		createWarnCommand(engine),
		createCheckCommand(engine),
		createResetCommand(engine),
		createWarningsCommand(engine),
		createPurgeCommand(engine),
		createBanCommand(engine),
		createLogChannelCommand(engine),
	)

	client.CommandHandler.AddGlobalCommand(modGroup)
}

func mention(userID string) string {
	return "<@" + userID + ">"
}
