package mod

import (
	"fmt"
	"strings"

	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// maxListed keeps the reply under Discord's message size limit.
const maxListed = 50

// createWarningsCommand creates the /mod warnings subcommand
func createWarningsCommand(engine *moderation.Engine) *discord.Command {
	return discord.NewCommand(
		"warnings",
		"Lista a todos los usuarios con advertencias",
		"mod",
		warningsHandler(engine),
	).WithUserPermissions(discordgo.PermissionAdministrator).InGuild()
}

func warningsText(entries []moderation.LedgerEntry) string {
	if len(entries) == 0 {
		return "✅ Ningún usuario tiene advertencias."
	}

	var b strings.Builder
	b.WriteString("📋 **Advertencias activas:**\n")
	for i, entry := range entries {
		if i == maxListed {
			fmt.Fprintf(&b, "… y %d más", len(entries)-maxListed)
			break
		}
		fmt.Fprintf(&b, "%s: %d\n", mention(entry.UserID), entry.Warnings)
	}
	return b.String()
}

func warningsHandler(engine *moderation.Engine) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		reqCtx, cancel := ctx.RequestContext()
		defer cancel()

		entries, err := engine.ListWarnings(reqCtx, ctx.GuildID())
		if err != nil {
			return err
		}
		return ctx.ReplyEphemeral(warningsText(entries))
	}
}
