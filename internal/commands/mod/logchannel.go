package mod

import (
	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// createLogChannelCommand creates the /mod logchannel subcommand
func createLogChannelCommand(engine *moderation.Engine) *discord.Command {
	return discord.NewCommand(
		"logchannel",
		"Define el canal de logs de moderación (vacío para desactivar)",
		"mod",
		logChannelHandler(engine),
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionChannel,
			Name:         "canal",
			Description:  "Canal de logs",
			Required:     false,
			ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
		},
	).WithUserPermissions(discordgo.PermissionManageGuild).InGuild()
}

func logChannelText(channelID string, outcome moderation.Outcome) string {
	switch {
	case outcome == moderation.OutcomeNoop:
		return "ℹ️ No hubo cambios en el canal de logs."
	case channelID == "":
		return "🔕 Canal de logs desactivado."
	default:
		return "📝 Los logs de moderación se enviarán a <#" + channelID + ">."
	}
}

func logChannelHandler(engine *moderation.Engine) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		channelID := ctx.GetOptionID("canal")

		reqCtx, cancel := ctx.RequestContext()
		defer cancel()

		outcome, err := engine.LogChannels().Set(reqCtx, ctx.GuildID(), channelID)
		if err != nil {
			return err
		}
		return ctx.ReplyEphemeral(logChannelText(channelID, outcome))
	}
}
