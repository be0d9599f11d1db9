package discord

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyGuard/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// bulkDeleteWindow is how old a message may be for bulk deletion.
const bulkDeleteWindow = 14 * 24 * time.Hour

// LogChannelResolver returns the audit channel configured for a guild, or
// "" when there is none.
type LogChannelResolver func(ctx context.Context, guildID string) (string, error)

// Gateway performs enforcement actions through a discordgo session.
type Gateway struct {
	session    *discordgo.Session
	logChannel LogChannelResolver
	now        func() time.Time
}

// NewGateway returns a gateway over s. resolve may be nil, in which case
// audit posts are dropped.
func NewGateway(s *discordgo.Session, resolve LogChannelResolver) *Gateway {
	return &Gateway{session: s, logChannel: resolve, now: time.Now}
}

// isDiscordCode reports whether err is a REST error with one of codes.
func isDiscordCode(err error, codes ...int) bool {
	var restErr *discordgo.RESTError
	if !stderrors.As(err, &restErr) || restErr.Message == nil {
		return false
	}
	for _, code := range codes {
		if restErr.Message.Code == code {
			return true
		}
	}
	return false
}

// DeleteMessage removes a message. A message that is already gone counts
// as deleted.
func (g *Gateway) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	err := g.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil && isDiscordCode(err, discordgo.ErrCodeUnknownMessage) {
		return nil
	}
	return err
}

// BanUser bans a user without deleting their message history.
func (g *Gateway) BanUser(ctx context.Context, guildID, userID, reason string) error {
	return g.session.GuildBanCreateWithReason(guildID, userID, reason, 0, discordgo.WithContext(ctx))
}

// memberHasRole looks the member up in the state cache. known is false
// when the member is not cached.
func (g *Gateway) memberHasRole(guildID, userID, roleID string) (has, known bool) {
	if g.session.State == nil {
		return false, false
	}
	member, err := g.session.State.Member(guildID, userID)
	if err != nil || member == nil {
		return false, false
	}
	return containsRole(member.Roles, roleID), true
}

func containsRole(roles []string, roleID string) bool {
	for _, r := range roles {
		if r == roleID {
			return true
		}
	}
	return false
}

// GrantRole adds a role. Granting a role the member already has is a no-op.
func (g *Gateway) GrantRole(ctx context.Context, guildID, userID, roleID string) error {
	if has, known := g.memberHasRole(guildID, userID, roleID); known && has {
		return nil
	}
	return g.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

// RevokeRole removes a role. Revoking from a member who left is a no-op.
func (g *Gateway) RevokeRole(ctx context.Context, guildID, userID, roleID string) error {
	if has, known := g.memberHasRole(guildID, userID, roleID); known && !has {
		return nil
	}
	err := g.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
	if err != nil && isDiscordCode(err, discordgo.ErrCodeUnknownMember) {
		return nil
	}
	return err
}

// PostMessage sends text to a channel and returns the new message id.
func (g *Gateway) PostMessage(ctx context.Context, channelID, text string) (string, error) {
	msg, err := g.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

// PostAuditLog sends text as an embed to the guild's log channel.
func (g *Gateway) PostAuditLog(ctx context.Context, guildID, text string) error {
	if g.logChannel == nil {
		return nil
	}
	channelID, err := g.logChannel(ctx, guildID)
	if err != nil {
		return fmt.Errorf("resolviendo canal de logs: %w", err)
	}
	if channelID == "" {
		logger.Debug("Sin canal de logs para "+guildID, "Gateway")
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Description: text,
		Color:       0x5865F2,
		Timestamp:   g.now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "PancyGuard",
		},
	}
	_, err = g.session.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx))
	return err
}

// NotifyUser sends a direct message.
func (g *Gateway) NotifyUser(ctx context.Context, userID, text string) error {
	channel, err := g.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	_, err = g.session.ChannelMessageSend(channel.ID, text, discordgo.WithContext(ctx))
	return err
}

// purgeable keeps the ids of messages young enough for bulk deletion.
func purgeable(messages []*discordgo.Message, now time.Time) []string {
	ids := make([]string, 0, len(messages))
	for _, m := range messages {
		if now.Sub(m.Timestamp) >= bulkDeleteWindow {
			continue
		}
		ids = append(ids, m.ID)
	}
	return ids
}

// PurgeMessages deletes up to amount of the channel's latest messages.
// Messages older than two weeks are skipped.
func (g *Gateway) PurgeMessages(ctx context.Context, channelID string, amount int) (int, error) {
	messages, err := g.session.ChannelMessages(channelID, amount, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return 0, err
	}

	ids := purgeable(messages, g.now())
	switch len(ids) {
	case 0:
		return 0, nil
	case 1:
		if err := g.DeleteMessage(ctx, channelID, ids[0]); err != nil {
			return 0, err
		}
		return 1, nil
	}

	if err := g.session.ChannelMessagesBulkDelete(channelID, ids, discordgo.WithContext(ctx)); err != nil {
		return 0, err
	}
	return len(ids), nil
}
