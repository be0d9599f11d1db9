// Package mod - /mod ban command
package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// createBanCommand creates the /mod ban subcommand
func createBanCommand(engine *moderation.Engine) *discord.Command {
	return discord.NewCommand(
		"ban",
		"Banea a un usuario del servidor",
		"mod",
		banHandler(engine),
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a banear",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón del ban",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionBanMembers).
		WithBotPermissions(discordgo.PermissionBanMembers).
		InGuild()
}

// banHandler handles the /mod ban command
func banHandler(engine *moderation.Engine) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		userID := ctx.GetOptionID("usuario")
		reason := ctx.GetStringOption("razon")

		reqCtx, cancel := ctx.RequestContext()
		defer cancel()

		if err := engine.Ban(reqCtx, ctx.GuildID(), userID, ctx.User().ID, reason); err != nil {
			return err
		}

		if reason == "" {
			reason = "Sin razón especificada"
		}
		return ctx.Reply(fmt.Sprintf("🔨 %s ha sido baneado.\n**Razón:** %s", mention(userID), reason))
	}
}
