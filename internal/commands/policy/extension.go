package policy

import (
	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
)

func extensionCommands(policies *moderation.Policies) []*discord.Command {
	return []*discord.Command{
		command("block", "Bloquea una extensión de archivo", func(ctx *discord.CommandContext) error {
			ext := ctx.GetStringOption("extension")
			reqCtx, cancel := ctx.RequestContext()
			defer cancel()

			outcome, err := policies.BlockExtension(reqCtx, ctx.GuildID(), ext)
			if err != nil {
				return err
			}
			return ctx.ReplyEphemeral(outcomeText(outcome, "Extensión bloqueada.", "La extensión ya estaba bloqueada."))
		}, stringOption("extension", "Extensión, por ejemplo exe")),

		command("unblock", "Desbloquea una extensión de archivo", func(ctx *discord.CommandContext) error {
			ext := ctx.GetStringOption("extension")
			reqCtx, cancel := ctx.RequestContext()
			defer cancel()

			outcome, err := policies.UnblockExtension(reqCtx, ctx.GuildID(), ext)
			if err != nil {
				return err
			}
			return ctx.ReplyEphemeral(outcomeText(outcome, "Extensión desbloqueada.", "La extensión no estaba bloqueada."))
		}, stringOption("extension", "Extensión, por ejemplo exe")),

		command("list", "Lista las extensiones bloqueadas", func(ctx *discord.CommandContext) error {
			reqCtx, cancel := ctx.RequestContext()
			defer cancel()

			exts, err := policies.BlockedExtensions(reqCtx, ctx.GuildID())
			if err != nil {
				return err
			}
			return ctx.ReplyEphemeral(listText("📎 **Extensiones bloqueadas:**", exts, "No hay extensiones bloqueadas."))
		}),
	}
}
