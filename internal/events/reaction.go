package events

import (
	"fmt"

	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/errors"
	"github.com/PancyStudios/PancyGuard/pkg/logger"
	"github.com/PancyStudios/PancyGuard/pkg/reactionrole"
	"github.com/bwmarrin/discordgo"
)

func (h *handlers) registerReactionEvents(client *discord.ExtendedClient) {
	client.EventHandler.OnMessageReactionAdd(h.onReactionAdd)
	client.EventHandler.OnMessageReactionRemove(h.onReactionRemove)
}

// reaction converts a gateway reaction. Only the add event carries the
// member, so bot detection on removal relies on the bot's own id.
func reaction(kind reactionrole.Kind, r *discordgo.MessageReaction, member *discordgo.Member, self string) reactionrole.Reaction {
	isBot := r.UserID != "" && r.UserID == self
	if member != nil && member.User != nil && member.User.Bot {
		isBot = true
	}
	return reactionrole.Reaction{
		Kind:      kind,
		GuildID:   r.GuildID,
		MessageID: r.MessageID,
		EmojiKey:  reactionrole.EmojiKey(r.Emoji.APIName()),
		UserID:    r.UserID,
		IsBot:     isBot,
	}
}

func (h *handlers) reactionChanged(r reactionrole.Reaction) {
	defer errors.RecoverMiddleware()()

	if r.GuildID == "" {
		return
	}

	ctx, cancel := h.context()
	defer cancel()

	if err := h.engine.OnReactionChange(ctx, r); err != nil {
		logger.Warn(fmt.Sprintf("Rol por reacción fallido en %s: %v", r.MessageID, err), "Reaction")
	}
}

func (h *handlers) onReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.MessageReaction == nil {
		return
	}
	h.reactionChanged(reaction(reactionrole.Added, r.MessageReaction, r.Member, selfID(s)))
}

func (h *handlers) onReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if r.MessageReaction == nil {
		return
	}
	h.reactionChanged(reaction(reactionrole.Removed, r.MessageReaction, nil, selfID(s)))
}
