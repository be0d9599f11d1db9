package policy

import (
	"sort"

	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/models"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

func channelPolicyOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "regla",
		Description: "Regla del canal",
		Required:    true,
		Choices: []*discordgo.ApplicationCommandOptionChoice{
			{Name: "Sin enlaces", Value: string(models.ChannelPolicyLinkBan)},
			{Name: "Solo imágenes", Value: string(models.ChannelPolicyImageOnly)},
			{Name: "Ninguna", Value: string(models.ChannelPolicyNone)},
		},
	}
}

func channelPoliciesText(policies map[string]models.ChannelPolicy) string {
	items := make([]string, 0, len(policies))
	for channelID, kind := range policies {
		items = append(items, "<#"+channelID+">: "+string(kind))
	}
	sort.Strings(items)

	if len(items) == 0 {
		return "No hay reglas por canal."
	}
	text := "📜 **Reglas por canal:**\n"
	for _, item := range items {
		text += "• " + item + "\n"
	}
	return text
}

func channelCommands(policies *moderation.Policies) []*discord.Command {
	return []*discord.Command{
		command("set", "Asigna una regla a un canal", func(ctx *discord.CommandContext) error {
			channelID := ctx.GetOptionID("canal")
			kind := models.ChannelPolicy(ctx.GetStringOption("regla"))
			reqCtx, cancel := ctx.RequestContext()
			defer cancel()

			outcome, err := policies.SetChannelPolicy(reqCtx, ctx.GuildID(), channelID, kind)
			if err != nil {
				return err
			}
			return ctx.ReplyEphemeral(outcomeText(outcome,
				"Regla de <#"+channelID+"> actualizada a `"+string(kind)+"`.",
				"<#"+channelID+"> ya tenía esa regla."))
		}, channelOption(), channelPolicyOption()),

		command("unset", "Quita la regla de un canal", func(ctx *discord.CommandContext) error {
			channelID := ctx.GetOptionID("canal")
			reqCtx, cancel := ctx.RequestContext()
			defer cancel()

			outcome, err := policies.UnsetChannelPolicy(reqCtx, ctx.GuildID(), channelID)
			if err != nil {
				return err
			}
			return ctx.ReplyEphemeral(outcomeText(outcome,
				"Regla de <#"+channelID+"> eliminada.",
				"<#"+channelID+"> no tenía regla."))
		}, channelOption()),

		command("list", "Lista las reglas por canal", func(ctx *discord.CommandContext) error {
			reqCtx, cancel := ctx.RequestContext()
			defer cancel()

			current, err := policies.ChannelPolicies(reqCtx, ctx.GuildID())
			if err != nil {
				return err
			}
			return ctx.ReplyEphemeral(channelPoliciesText(current))
		}),
	}
}
