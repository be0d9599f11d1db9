package events

import (
	"fmt"

	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/errors"
	"github.com/PancyStudios/PancyGuard/pkg/logger"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

func (h *handlers) registerMemberEvents(client *discord.ExtendedClient) {
	client.EventHandler.OnGuildMemberAdd(h.onGuildMemberAdd)
	client.EventHandler.OnGuildMemberRemove(h.onGuildMemberRemove)
}

func memberEvent(change moderation.MemberChange, m *discordgo.Member) (moderation.MemberEvent, bool) {
	if m == nil || m.User == nil {
		return moderation.MemberEvent{}, false
	}
	return moderation.MemberEvent{
		Change:   change,
		GuildID:  m.GuildID,
		UserID:   m.User.ID,
		Username: m.User.Username,
	}, true
}

func (h *handlers) memberChanged(change moderation.MemberChange, m *discordgo.Member) {
	defer errors.RecoverMiddleware()()

	ev, ok := memberEvent(change, m)
	if !ok {
		return
	}

	ctx, cancel := h.context()
	defer cancel()

	if err := h.engine.OnMemberChange(ctx, ev); err != nil {
		logger.Error(fmt.Sprintf("Error registrando cambio de miembro %s: %v", ev.UserID, err), "Member")
	}
}

// onGuildMemberAdd is called when a new member joins the server
func (h *handlers) onGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	h.memberChanged(moderation.MemberJoined, m.Member)
}

// onGuildMemberRemove is called when a member leaves the server
func (h *handlers) onGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	h.memberChanged(moderation.MemberLeft, m.Member)
}
