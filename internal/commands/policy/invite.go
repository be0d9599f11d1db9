package policy

import (
	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
)

func inviteCommands(policies *moderation.Policies) []*discord.Command {
	return []*discord.Command{
		command("allow", "Permite una invitación", func(ctx *discord.CommandContext) error {
			code := ctx.GetStringOption("codigo")
			reqCtx, cancel := ctx.RequestContext()
			defer cancel()

			outcome, err := policies.AllowInvite(reqCtx, ctx.GuildID(), code)
			if err != nil {
				return err
			}
			return ctx.ReplyEphemeral(outcomeText(outcome, "Invitación permitida.", "La invitación ya estaba permitida."))
		}, stringOption("codigo", "Código o enlace de la invitación")),

		command("disallow", "Deja de permitir una invitación", func(ctx *discord.CommandContext) error {
			code := ctx.GetStringOption("codigo")
			reqCtx, cancel := ctx.RequestContext()
			defer cancel()

			outcome, err := policies.DisallowInvite(reqCtx, ctx.GuildID(), code)
			if err != nil {
				return err
			}
			return ctx.ReplyEphemeral(outcomeText(outcome, "Invitación retirada de la lista.", "La invitación no estaba permitida."))
		}, stringOption("codigo", "Código o enlace de la invitación")),

		command("list", "Lista las invitaciones permitidas", func(ctx *discord.CommandContext) error {
			reqCtx, cancel := ctx.RequestContext()
			defer cancel()

			codes, err := policies.AllowedInvites(reqCtx, ctx.GuildID())
			if err != nil {
				return err
			}
			return ctx.ReplyEphemeral(listText("🔗 **Invitaciones permitidas:**", codes, "No hay invitaciones permitidas."))
		}),
	}
}
