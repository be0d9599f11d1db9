package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// createCheckCommand creates the /mod check subcommand
func createCheckCommand(engine *moderation.Engine) *discord.Command {
	return discord.NewCommand(
		"check",
		"Muestra las advertencias de un usuario",
		"mod",
		checkHandler(engine),
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a consultar",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).InGuild()
}

func checkText(userID string, count, remaining int) string {
	if count == 0 {
		return fmt.Sprintf("✅ %s no tiene advertencias.", mention(userID))
	}
	return fmt.Sprintf("📋 %s tiene **%d** advertencias. Le quedan **%d** antes del baneo.", mention(userID), count, remaining)
}

func checkHandler(engine *moderation.Engine) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		userID := ctx.GetOptionID("usuario")

		reqCtx, cancel := ctx.RequestContext()
		defer cancel()

		count, remaining, err := engine.CheckWarning(reqCtx, ctx.GuildID(), userID)
		if err != nil {
			return err
		}
		return ctx.ReplyEphemeral(checkText(userID, count, remaining))
	}
}
