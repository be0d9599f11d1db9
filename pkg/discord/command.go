package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
)

// requestTimeout bounds the work a command does before answering.
const requestTimeout = 15 * time.Second

// CommandContext is what a command handler receives for one interaction
type CommandContext struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate
	Client      *ExtendedClient
}

// Command is one slash command or subcommand. Moderation commands call a
// single engine operation from Run and render its result.
type Command struct {
	Name            string
	Description     string
	Category        string
	Options         []*discordgo.ApplicationCommandOption
	UserPermissions int64
	BotPermissions  int64
	GuildOnly       bool
	Run             CommandRunFunc
}

// CommandRunFunc handles one invocation
type CommandRunFunc func(ctx *CommandContext) error

// NewCommand creates a new Command with required fields
func NewCommand(name, description, category string, run CommandRunFunc) *Command {
	return &Command{
		Name:        name,
		Description: description,
		Category:    category,
		Run:         run,
	}
}

// WithOptions sets the command options
func (c *Command) WithOptions(opts ...*discordgo.ApplicationCommandOption) *Command {
	c.Options = opts
	return c
}

// WithUserPermissions sets the permissions a member needs to see and run it
func (c *Command) WithUserPermissions(perms int64) *Command {
	c.UserPermissions = perms
	return c
}

// WithBotPermissions sets the permissions the bot needs in the channel
func (c *Command) WithBotPermissions(perms int64) *Command {
	c.BotPermissions = perms
	return c
}

// InGuild marks the command as usable only inside a guild
func (c *Command) InGuild() *Command {
	c.GuildOnly = true
	return c
}

// ToApplicationCommand converts the command to a Discord application command
func (c *Command) ToApplicationCommand() *discordgo.ApplicationCommand {
	appCmd := &discordgo.ApplicationCommand{
		Name:        c.Name,
		Description: c.Description,
		Options:     c.Options,
	}
	if c.UserPermissions != 0 {
		perms := c.UserPermissions
		appCmd.DefaultMemberPermissions = &perms
	}
	if c.GuildOnly {
		dm := false
		appCmd.DMPermission = &dm
	}
	return appCmd
}

func (ctx *CommandContext) respond(typ discordgo.InteractionResponseType, data *discordgo.InteractionResponseData) error {
	return ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: typ,
		Data: data,
	})
}

// Reply answers in the channel
func (ctx *CommandContext) Reply(content string) error {
	return ctx.respond(discordgo.InteractionResponseChannelMessageWithSource,
		&discordgo.InteractionResponseData{Content: content})
}

// ReplyEmbed answers in the channel with an embed
func (ctx *CommandContext) ReplyEmbed(embed *discordgo.MessageEmbed) error {
	return ctx.respond(discordgo.InteractionResponseChannelMessageWithSource,
		&discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}})
}

// ReplyEphemeral answers only to the invoking user
func (ctx *CommandContext) ReplyEphemeral(content string) error {
	return ctx.respond(discordgo.InteractionResponseChannelMessageWithSource,
		&discordgo.InteractionResponseData{Content: content, Flags: discordgo.MessageFlagsEphemeral})
}

// ReplyEphemeralEmbed answers only to the invoking user with an embed
func (ctx *CommandContext) ReplyEphemeralEmbed(embed *discordgo.MessageEmbed) error {
	return ctx.respond(discordgo.InteractionResponseChannelMessageWithSource,
		&discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}, Flags: discordgo.MessageFlagsEphemeral})
}

// DeferEphemeral acknowledges the interaction without a visible message;
// the answer comes later through EditReply.
func (ctx *CommandContext) DeferEphemeral() error {
	return ctx.respond(discordgo.InteractionResponseDeferredChannelMessageWithSource,
		&discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral})
}

// EditReply replaces the content of the original response
func (ctx *CommandContext) EditReply(content string) error {
	_, err := ctx.Session.InteractionResponseEdit(ctx.Interaction.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	})
	return err
}

// RequestContext returns a context bounding the command's backend calls
func (ctx *CommandContext) RequestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// option finds a named option at any depth below the subcommand tree
func (ctx *CommandContext) option(name string) *discordgo.ApplicationCommandInteractionDataOption {
	return findOption(ctx.Interaction.ApplicationCommandData().Options, name)
}

func findOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range options {
		if opt.Name == name {
			return opt
		}
		if found := findOption(opt.Options, name); found != nil {
			return found
		}
	}
	return nil
}

// GetStringOption returns a string option, "" when absent
func (ctx *CommandContext) GetStringOption(name string) string {
	if opt := ctx.option(name); opt != nil {
		return opt.StringValue()
	}
	return ""
}

// GetIntOption returns an integer option, 0 when absent
func (ctx *CommandContext) GetIntOption(name string) int64 {
	if opt := ctx.option(name); opt != nil {
		return opt.IntValue()
	}
	return 0
}

// GetOptionID returns the raw snowflake of a user, channel or role option
// without resolving it through the state cache.
func (ctx *CommandContext) GetOptionID(name string) string {
	opt := ctx.option(name)
	if opt == nil {
		return ""
	}
	id, _ := opt.Value.(string)
	return id
}

// User returns the user who triggered the interaction
func (ctx *CommandContext) User() *discordgo.User {
	if ctx.Interaction.Member != nil {
		return ctx.Interaction.Member.User
	}
	return ctx.Interaction.User
}

// Member returns the invoking member, nil outside a guild
func (ctx *CommandContext) Member() *discordgo.Member {
	return ctx.Interaction.Member
}

// GuildID returns the id of the guild where the interaction occurred
func (ctx *CommandContext) GuildID() string {
	return ctx.Interaction.GuildID
}

// ChannelID returns the id of the channel where the interaction occurred
func (ctx *CommandContext) ChannelID() string {
	return ctx.Interaction.ChannelID
}
