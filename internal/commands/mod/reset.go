package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// createResetCommand creates the /mod reset subcommand
func createResetCommand(engine *moderation.Engine) *discord.Command {
	return discord.NewCommand(
		"reset",
		"Reinicia las advertencias de un usuario",
		"mod",
		resetHandler(engine),
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a reiniciar",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón del reinicio",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionAdministrator).InGuild()
}

func resetText(userID string, outcome moderation.Outcome) string {
	if outcome == moderation.OutcomeNoop {
		return fmt.Sprintf("ℹ️ %s no tenía advertencias.", mention(userID))
	}
	return fmt.Sprintf("♻️ Las advertencias de %s fueron reiniciadas.", mention(userID))
}

func resetHandler(engine *moderation.Engine) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		userID := ctx.GetOptionID("usuario")

		reqCtx, cancel := ctx.RequestContext()
		defer cancel()

		outcome, err := engine.ResetWarning(reqCtx, ctx.GuildID(), userID, ctx.User().ID, ctx.GetStringOption("razon"))
		if err != nil {
			return err
		}
		return ctx.ReplyEphemeral(resetText(userID, outcome))
	}
}
