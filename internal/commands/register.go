// Package commands provides a registry for organizing bot commands.
// Commands are organized in subdirectories by category (mod, policy, roles, utils)
package commands

import (
	"github.com/PancyStudios/PancyGuard/internal/commands/mod"
	"github.com/PancyStudios/PancyGuard/internal/commands/policy"
	"github.com/PancyStudios/PancyGuard/internal/commands/roles"
	"github.com/PancyStudios/PancyGuard/internal/commands/utils"
	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
	"github.com/PancyStudios/PancyGuard/pkg/reactionrole"
)

// Deps is everything the command handlers drive
type Deps struct {
	Engine       *moderation.Engine
	Roles        *reactionrole.Mapper
	StoreBackend string
	DBStatus     func() (string, bool)
}

// RegisterAll registers all commands with the Discord client
func RegisterAll(client *discord.ExtendedClient, deps Deps) {
	// Utility commands (/utils ping, /utils status, /utils help, /utils stats)
	utils.RegisterUtilsCommands(client, utils.Deps{
		Engine:       deps.Engine,
		StoreBackend: deps.StoreBackend,
		DBStatus:     deps.DBStatus,
	})

	// Moderation commands (/mod warn, /mod check, /mod reset, /mod purge, ...)
	mod.RegisterModCommands(client, deps.Engine)

	// Policy configuration (/policy word|channel|invite|ext ...)
	policy.RegisterPolicyCommands(client, deps.Engine.Policies())

	// Reaction roles (/reactionrole bind|unbind|list)
	roles.RegisterReactionRoleCommands(client, deps.Roles)
}
