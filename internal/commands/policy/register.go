// Package policy provides the /policy command: banned words, channel
// policies, the invite allow-list and blocked attachment extensions.
package policy

import (
	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

const permission = discordgo.PermissionAdministrator

// RegisterPolicyCommands registers /policy and its subcommand groups
func RegisterPolicyCommands(client *discord.ExtendedClient, policies *moderation.Policies) {
	h := client.CommandHandler

	group := h.BuildCommandGroup("policy", "Configura la política de moderación del servidor")
	group.Options = append(group.Options,
		h.BuildSubcommandGroup("policy", "word", "Palabras prohibidas", wordCommands(policies)...),
		h.BuildSubcommandGroup("policy", "channel", "Reglas por canal", channelCommands(policies)...),
		h.BuildSubcommandGroup("policy", "invite", "Invitaciones permitidas", inviteCommands(policies)...),
		h.BuildSubcommandGroup("policy", "ext", "Extensiones de archivo bloqueadas", extensionCommands(policies)...),
	)

	perms := int64(permission)
	dm := false
	group.DefaultMemberPermissions = &perms
	group.DMPermission = &dm

	h.AddGlobalCommand(group)
}

func command(name, description string, run discord.CommandRunFunc, opts ...*discordgo.ApplicationCommandOption) *discord.Command {
	return discord.NewCommand(name, description, "policy", run).
		WithOptions(opts...).
		WithUserPermissions(permission).
		InGuild()
}

func stringOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    true,
	}
}

func channelOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionChannel,
		Name:         "canal",
		Description:  "Canal",
		Required:     true,
		ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
	}
}

// outcomeText picks the reply for an applied or no-op mutation
func outcomeText(outcome moderation.Outcome, applied, noop string) string {
	if outcome == moderation.OutcomeNoop {
		return "ℹ️ " + noop
	}
	return "✅ " + applied
}

// listText renders a list reply, or empty when there is nothing
func listText(title string, items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	text := title + "\n"
	for _, item := range items {
		text += "• `" + item + "`\n"
	}
	return text
}
