package policy

import (
	"fmt"

	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
)

func wordCommands(policies *moderation.Policies) []*discord.Command {
	return []*discord.Command{
		command("add", "Añade una palabra prohibida", func(ctx *discord.CommandContext) error {
			word := ctx.GetStringOption("palabra")
			reqCtx, cancel := ctx.RequestContext()
			defer cancel()

			outcome, err := policies.AddBannedWord(reqCtx, ctx.GuildID(), word)
			if err != nil {
				return err
			}
			return ctx.ReplyEphemeral(outcomeText(outcome,
				fmt.Sprintf("Palabra prohibida «%s» añadida.", word),
				fmt.Sprintf("«%s» ya estaba registrada.", word)))
		}, stringOption("palabra", "Palabra a prohibir")),

		command("remove", "Quita una palabra prohibida", func(ctx *discord.CommandContext) error {
			word := ctx.GetStringOption("palabra")
			reqCtx, cancel := ctx.RequestContext()
			defer cancel()

			outcome, err := policies.RemoveBannedWord(reqCtx, ctx.GuildID(), word)
			if err != nil {
				return err
			}
			return ctx.ReplyEphemeral(outcomeText(outcome,
				fmt.Sprintf("Palabra prohibida «%s» eliminada.", word),
				fmt.Sprintf("«%s» no estaba registrada.", word)))
		}, stringOption("palabra", "Palabra a permitir de nuevo")),

		command("list", "Lista las palabras prohibidas", func(ctx *discord.CommandContext) error {
			reqCtx, cancel := ctx.RequestContext()
			defer cancel()

			words, err := policies.BannedWords(reqCtx, ctx.GuildID())
			if err != nil {
				return err
			}
			return ctx.ReplyEphemeral(listText("🚫 **Palabras prohibidas:**", words, "No hay palabras prohibidas."))
		}),
	}
}
