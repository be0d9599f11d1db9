package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/errors"
	"github.com/PancyStudios/PancyGuard/pkg/logger"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// createPurgeCommand creates the /mod purge subcommand
func createPurgeCommand(engine *moderation.Engine) *discord.Command {
	minAmount := 1.0
	return discord.NewCommand(
		"purge",
		"Elimina mensajes recientes del canal (máximo 100)",
		"mod",
		purgeHandler(engine),
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "cantidad",
			Description: "Cantidad de mensajes a eliminar (1-100)",
			Required:    true,
			MinValue:    &minAmount,
			MaxValue:    100,
		},
	).WithUserPermissions(discordgo.PermissionManageMessages).
		WithBotPermissions(discordgo.PermissionManageMessages).
		InGuild()
}

// purgeHandler answers through a deferred reply since fetching and
// deleting can take longer than the interaction window.
func purgeHandler(engine *moderation.Engine) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		if err := ctx.DeferEphemeral(); err != nil {
			return err
		}

		reqCtx, cancel := ctx.RequestContext()
		defer cancel()

		deleted, err := engine.Purge(reqCtx, ctx.GuildID(), ctx.ChannelID(), ctx.User().ID, int(ctx.GetIntOption("cantidad")))
		if err != nil {
			if !errors.IsValidation(err) {
				logger.Error(fmt.Sprintf("Error en purge: %v", err), "CMD-Purge")
			}
			return ctx.EditReply("❌ " + errors.UserMessage(err))
		}
		return ctx.EditReply(fmt.Sprintf("🧹 Se eliminaron %d mensajes.", deleted))
	}
}
