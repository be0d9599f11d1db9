// Package mod - /mod warn command
package mod

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// createWarnCommand creates the /mod warn subcommand
func createWarnCommand(engine *moderation.Engine) *discord.Command {
	return discord.NewCommand(
		"warn",
		"Advierte a un usuario",
		"mod",
		warnHandler(engine),
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a advertir",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón de la advertencia",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).InGuild()
}

// warnEmbed describes the outcome of a manual warning
func warnEmbed(userID, reason string, res moderation.Escalation, limit int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Timestamp: time.Now().Format(time.RFC3339),
	}

	switch {
	case res.Banned():
		embed.Title = "🔨 Usuario baneado"
		embed.Description = fmt.Sprintf("%s alcanzó %d advertencias y fue baneado.\n**Razón:** %s", mention(userID), res.Count, reason)
		embed.Color = 0xFF0000
	case res.BanTriggered:
		embed.Title = "❌ Baneo fallido"
		embed.Description = fmt.Sprintf("%s alcanzó %d advertencias pero no se pudo banear. Sus advertencias fueron reiniciadas.", mention(userID), res.Count)
		embed.Color = 0xFF8800
	default:
		embed.Title = "⚠️ Advertencia registrada"
		embed.Description = fmt.Sprintf("%s tiene ahora **%d/%d** advertencias.\n**Razón:** %s", mention(userID), res.Count, limit, reason)
		embed.Color = 0xFFFF00
	}
	return embed
}

// warnHandler handles the /mod warn command
func warnHandler(engine *moderation.Engine) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		userID := ctx.GetOptionID("usuario")
		reason := ctx.GetStringOption("razon")
		if reason == "" {
			reason = "Sin razón especificada"
		}

		reqCtx, cancel := ctx.RequestContext()
		defer cancel()

		res, err := engine.ManualWarn(reqCtx, ctx.GuildID(), userID, ctx.User().ID, "", reason)
		if err != nil {
			return err
		}

		return ctx.ReplyEmbed(warnEmbed(userID, reason, res, engine.Ledger().Limit()))
	}
}
