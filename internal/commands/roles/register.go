// Package roles provides the /reactionrole command
package roles

import (
	"fmt"
	"strings"

	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/reactionrole"
	"github.com/bwmarrin/discordgo"
)

// RegisterReactionRoleCommands registers /reactionrole bind|unbind|list
func RegisterReactionRoleCommands(client *discord.ExtendedClient, mapper *reactionrole.Mapper) {
	group := client.CommandHandler.BuildCommandGroup(
		"reactionrole",
		"Roles por reacción",
		createBindCommand(mapper),
		createUnbindCommand(mapper),
		createListCommand(mapper),
	)
	client.CommandHandler.AddGlobalCommand(group)
}

func messageOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "mensaje",
		Description: "ID del mensaje",
		Required:    required,
	}
}

func emojiOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "emoji",
		Description: "Emoji de la reacción",
		Required:    true,
	}
}

// emojiDisplay turns a stored key back into something Discord renders
func emojiDisplay(key string) string {
	if strings.Contains(key, ":") {
		return "<:" + key + ">"
	}
	return key
}

func createBindCommand(mapper *reactionrole.Mapper) *discord.Command {
	return discord.NewCommand("bind", "Asocia un emoji de un mensaje a un rol", "roles", func(ctx *discord.CommandContext) error {
		messageID := ctx.GetStringOption("mensaje")
		emoji := ctx.GetStringOption("emoji")
		roleID := ctx.GetOptionID("rol")

		reqCtx, cancel := ctx.RequestContext()
		defer cancel()

		previous, err := mapper.Bind(reqCtx, ctx.GuildID(), messageID, emoji, roleID)
		if err != nil {
			return err
		}

		text := fmt.Sprintf("✅ %s en `%s` ahora da <@&%s>.", emojiDisplay(reactionrole.EmojiKey(emoji)), messageID, roleID)
		if previous != "" && previous != roleID {
			text += fmt.Sprintf(" (antes <@&%s>)", previous)
		}
		return ctx.ReplyEphemeral(text)
	}).WithOptions(
		messageOption(true),
		emojiOption(),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "rol",
			Description: "Rol a otorgar",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionManageRoles).
		WithBotPermissions(discordgo.PermissionManageRoles).
		InGuild()
}

func createUnbindCommand(mapper *reactionrole.Mapper) *discord.Command {
	return discord.NewCommand("unbind", "Elimina un rol por reacción", "roles", func(ctx *discord.CommandContext) error {
		messageID := ctx.GetStringOption("mensaje")
		emoji := ctx.GetStringOption("emoji")

		reqCtx, cancel := ctx.RequestContext()
		defer cancel()

		removed, err := mapper.Unbind(reqCtx, ctx.GuildID(), messageID, emoji)
		if err != nil {
			return err
		}
		if !removed {
			return ctx.ReplyEphemeral("ℹ️ Ese emoji no tenía un rol asociado.")
		}
		return ctx.ReplyEphemeral("✅ Rol por reacción eliminado.")
	}).WithOptions(messageOption(true), emojiOption()).
		WithUserPermissions(discordgo.PermissionManageRoles).
		InGuild()
}

func bindingsText(bindings []reactionrole.Binding) string {
	if len(bindings) == 0 {
		return "No hay roles por reacción configurados."
	}
	var b strings.Builder
	b.WriteString("🎭 **Roles por reacción:**\n")
	for _, binding := range bindings {
		fmt.Fprintf(&b, "• `%s` %s → <@&%s>\n", binding.MessageID, emojiDisplay(binding.EmojiKey), binding.RoleID)
	}
	return b.String()
}

func createListCommand(mapper *reactionrole.Mapper) *discord.Command {
	return discord.NewCommand("list", "Lista los roles por reacción", "roles", func(ctx *discord.CommandContext) error {
		reqCtx, cancel := ctx.RequestContext()
		defer cancel()

		bindings, err := mapper.List(reqCtx, ctx.GuildID(), ctx.GetStringOption("mensaje"))
		if err != nil {
			return err
		}
		return ctx.ReplyEphemeral(bindingsText(bindings))
	}).WithOptions(messageOption(false)).
		WithUserPermissions(discordgo.PermissionManageRoles).
		InGuild()
}
