package utils

import (
	"sort"
	"strings"

	"github.com/PancyStudios/PancyGuard/pkg/discord"
)

// createHelpCommand creates the /utils help subcommand
func createHelpCommand() *discord.Command {
	return discord.NewCommand(
		"help",
		"Muestra información de ayuda",
		"utils",
		helpHandler,
	)
}

// helpText lists every registered command as "/group sub - description"
func helpText(commands map[string]*discord.Command) string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("📖 **Ayuda de PancyGuard**\n\n**Comandos disponibles:**\n")
	for _, name := range names {
		b.WriteString("• `/" + strings.ReplaceAll(name, ".", " ") + "` - " + commands[name].Description + "\n")
	}
	return b.String()
}

// helpHandler handles the /utils help command
func helpHandler(ctx *discord.CommandContext) error {
	return ctx.ReplyEphemeral(helpText(ctx.Client.Commands.All()))
}
