// Package utils provides the /utils command group: latency, status, help
// and statistics.
package utils

import (
	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
)

// Deps is what the utility commands report on
type Deps struct {
	Engine *moderation.Engine
	// StoreBackend is the configured backend name (file, mongo, memory).
	StoreBackend string
	// DBStatus reports the document database state; nil when unused.
	DBStatus func() (string, bool)
}

// RegisterUtilsCommands registers all utility commands as /utils subcommands
func RegisterUtilsCommands(client *discord.ExtendedClient, deps Deps) {
	group := client.CommandHandler.BuildCommandGroup(
		"utils",
		"Comandos de utilidad",
		createPingCommand(),
		createStatusCommand(deps),
		createHelpCommand(),
		createStatsCommand(deps),
	)

	client.CommandHandler.AddGlobalCommand(group)
}
