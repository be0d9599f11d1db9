package discord

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancyGuard/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// hasPermissions reports whether granted covers every bit in required.
// Administrator covers everything.
func hasPermissions(granted, required int64) bool {
	if required == 0 {
		return true
	}
	if granted&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return granted&required == required
}

// PermissionMiddleware checks that the command runs inside a guild and that
// the invoking member holds the command's user permissions.
func (c *ExtendedClient) PermissionMiddleware(ctx *CommandContext, cmd *Command) error {
	member := ctx.Member()

	if cmd.GuildOnly && (ctx.Interaction.GuildID == "" || member == nil) {
		ctx.ReplyEphemeral("❌ Este comando solo puede usarse dentro de un servidor.")
		return fmt.Errorf("command %s used outside a guild", cmd.Name)
	}

	if cmd.UserPermissions == 0 {
		return nil
	}

	var granted int64
	if member != nil {
		granted = member.Permissions
	}
	if hasPermissions(granted, cmd.UserPermissions) {
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🚫 Acceso Denegado",
		Description: "No tienes los permisos necesarios para usar este comando.",
		Color:       0xFF0000,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	ctx.ReplyEphemeralEmbed(embed)

	userID := ""
	if u := ctx.User(); u != nil {
		userID = u.ID
	}
	logger.Warn(fmt.Sprintf("Usuario %s sin permisos intentó usar %s", userID, cmd.Name), "PermissionMiddleware")
	return fmt.Errorf("missing permissions for %s", cmd.Name)
}
