// Package discord provides the command handler for loading and registering commands.
package discord

import (
	"fmt"

	"github.com/PancyStudios/PancyGuard/pkg/config"
	"github.com/PancyStudios/PancyGuard/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// CommandHandler manages command loading and registration
type CommandHandler struct {
	client        *ExtendedClient
	slashCommands []*discordgo.ApplicationCommand
}

// NewCommandHandler creates a new CommandHandler
func NewCommandHandler(client *ExtendedClient) *CommandHandler {
	return &CommandHandler{
		client:        client,
		slashCommands: make([]*discordgo.ApplicationCommand, 0),
	}
}

func subcommandOption(cmd *Command) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        cmd.Name,
		Description: cmd.Description,
		Options:     cmd.Options,
	}
}

// groupAccess folds the subcommands' requirements into the top level
// command, which is the only place Discord accepts them. Only bits shared by
// every subcommand are kept; the rest is enforced by PermissionMiddleware.
func groupAccess(appCmd *discordgo.ApplicationCommand, subcommands []*Command) {
	var perms int64
	guildOnly := false
	for i, cmd := range subcommands {
		if i == 0 {
			perms = cmd.UserPermissions
		} else {
			perms &= cmd.UserPermissions
		}
		guildOnly = guildOnly || cmd.GuildOnly
	}
	if perms != 0 {
		appCmd.DefaultMemberPermissions = &perms
	}
	if guildOnly {
		dm := false
		appCmd.DMPermission = &dm
	}
}

// BuildCommandGroup creates a command group with subcommands. Extra
// subcommand groups built with BuildSubcommandGroup can be appended to the
// returned command's Options.
func (ch *CommandHandler) BuildCommandGroup(name, description string, subcommands ...*Command) *discordgo.ApplicationCommand {
	options := make([]*discordgo.ApplicationCommandOption, 0, len(subcommands))

	for _, cmd := range subcommands {
		fullName := name + "." + cmd.Name
		ch.client.Commands.Set(fullName, cmd)
		options = append(options, subcommandOption(cmd))
	}

	appCmd := &discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
		Options:     options,
	}
	groupAccess(appCmd, subcommands)
	return appCmd
}

// BuildSubcommandGroup creates a subcommand group
func (ch *CommandHandler) BuildSubcommandGroup(groupName, name, description string, subcommands ...*Command) *discordgo.ApplicationCommandOption {
	options := make([]*discordgo.ApplicationCommandOption, 0, len(subcommands))

	for _, cmd := range subcommands {
		fullName := groupName + "." + name + "." + cmd.Name
		ch.client.Commands.Set(fullName, cmd)
		options = append(options, subcommandOption(cmd))
	}

	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

// RegisterCommands pushes every slash command to Discord. With devGuildId
// set they go to that guild only, where changes show up immediately.
func (ch *CommandHandler) RegisterCommands() {
	guildID := config.Get().DevGuildID

	if guildID != "" {
		logger.Info("🔄 Registrando comandos en el servidor de desarrollo "+guildID+"...", "CommandHandler")
	} else {
		logger.Info("🔄 Registrando comandos globales...", "CommandHandler")
	}

	if err := ch.Sync(ch.client.Session.State.User.ID, guildID); err != nil {
		logger.Error("Error registrando comandos: "+err.Error(), "CommandHandler")
		return
	}
	logger.Success(fmt.Sprintf("✅ %d comandos registrados.", len(ch.slashCommands)), "CommandHandler")
}

// Sync overwrites the application's commands in guildID (global when
// empty) in bulk, so stale ones disappear.
func (ch *CommandHandler) Sync(appID, guildID string) error {
	_, err := ch.client.Session.ApplicationCommandBulkOverwrite(appID, guildID, ch.slashCommands)
	return err
}

// Registered lists the commands Discord currently has for guildID
func (ch *CommandHandler) Registered(appID, guildID string) ([]*discordgo.ApplicationCommand, error) {
	return ch.client.Session.ApplicationCommands(appID, guildID)
}

// Clear removes every command from guildID (global when empty)
func (ch *CommandHandler) Clear(appID, guildID string) error {
	_, err := ch.client.Session.ApplicationCommandBulkOverwrite(appID, guildID, []*discordgo.ApplicationCommand{})
	return err
}

// AddGlobalCommand adds a command to the command list
func (ch *CommandHandler) AddGlobalCommand(cmd *discordgo.ApplicationCommand) {
	ch.slashCommands = append(ch.slashCommands, cmd)
}

// Global returns the global commands queued so far
func (ch *CommandHandler) Global() []*discordgo.ApplicationCommand {
	return ch.slashCommands
}
