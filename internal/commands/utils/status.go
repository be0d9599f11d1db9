package utils

import (
	"fmt"

	"github.com/PancyStudios/PancyGuard/pkg/discord"
)

// createStatusCommand creates the /utils status subcommand
func createStatusCommand(deps Deps) *discord.Command {
	return discord.NewCommand(
		"status",
		"Muestra el estado del bot",
		"utils",
		statusHandler(deps),
	)
}

func statusText(deps Deps, guilds int, logChannel string) string {
	dbStatus := "⚪ | No configurada"
	if deps.DBStatus != nil {
		dbStatus, _ = deps.DBStatus()
	}

	logs := "⚪ | Sin configurar"
	if logChannel != "" {
		logs = "<#" + logChannel + ">"
	}

	return fmt.Sprintf(
		"📊 **Estado del Bot**\n"+
			"• Bot: 🟢 Online\n"+
			"• Almacenamiento: %s\n"+
			"• Base de datos: %s\n"+
			"• Canal de logs: %s\n"+
			"• Servidores: %d",
		deps.StoreBackend,
		dbStatus,
		logs,
		guilds,
	)
}

// statusHandler handles the /utils status command
func statusHandler(deps Deps) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		logChannel := ""
		if ctx.GuildID() != "" {
			reqCtx, cancel := ctx.RequestContext()
			defer cancel()

			var err error
			if logChannel, err = deps.Engine.LogChannels().Get(reqCtx, ctx.GuildID()); err != nil {
				return err
			}
		}
		return ctx.Reply(statusText(deps, ctx.Client.GuildCount(), logChannel))
	}
}
