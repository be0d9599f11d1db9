package events

import (
	"fmt"

	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/errors"
	"github.com/PancyStudios/PancyGuard/pkg/logger"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

func (h *handlers) registerMessageEvents(client *discord.ExtendedClient) {
	client.EventHandler.OnMessageCreate(h.onMessageCreate)
	client.EventHandler.OnMessageUpdate(h.onMessageUpdate)
	client.EventHandler.OnMessageDelete(h.onMessageDelete)
}

// messageEvent converts a gateway message. Webhook posts count as bots.
func messageEvent(m *discordgo.Message) moderation.MessageEvent {
	ev := moderation.MessageEvent{
		GuildID:     m.GuildID,
		ChannelID:   m.ChannelID,
		MessageID:   m.ID,
		Content:     m.Content,
		AuthorIsBot: m.WebhookID != "",
	}
	if m.Author != nil {
		ev.AuthorID = m.Author.ID
		ev.AuthorIsBot = ev.AuthorIsBot || m.Author.Bot
	}
	for _, a := range m.Attachments {
		ev.Attachments = append(ev.Attachments, a.Filename)
	}
	return ev
}

// editEvent converts an update. ok is false when the old content is not
// cached, the author is a bot or the text did not change (embed unfurls).
func editEvent(m *discordgo.MessageUpdate) (moderation.MessageEditEvent, bool) {
	if m.Message == nil || m.BeforeUpdate == nil || m.Author == nil || m.Author.Bot {
		return moderation.MessageEditEvent{}, false
	}
	if m.BeforeUpdate.Content == m.Content {
		return moderation.MessageEditEvent{}, false
	}
	return moderation.MessageEditEvent{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MessageID: m.ID,
		AuthorID:  m.Author.ID,
		Before:    m.BeforeUpdate.Content,
		After:     m.Content,
	}, true
}

// deleteEvent converts a delete. Author and content come from the state
// cache and are empty when the message was not cached.
func deleteEvent(m *discordgo.MessageDelete) (moderation.MessageDeleteEvent, bool) {
	if m.Message == nil {
		return moderation.MessageDeleteEvent{}, false
	}
	ev := moderation.MessageDeleteEvent{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MessageID: m.ID,
	}
	if before := m.BeforeDelete; before != nil {
		if before.Author != nil {
			if before.Author.Bot {
				return moderation.MessageDeleteEvent{}, false
			}
			ev.AuthorID = before.Author.ID
		}
		ev.Content = before.Content
	}
	return ev, true
}

// onMessageCreate runs every guild message through the classifier
func (h *handlers) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	defer errors.RecoverMiddleware()()

	if m.Message == nil || m.Author == nil || m.GuildID == "" {
		return
	}
	if m.Author.ID == selfID(s) {
		return
	}

	ctx, cancel := h.context()
	defer cancel()

	if err := h.engine.OnMessage(ctx, messageEvent(m.Message)); err != nil {
		logger.Error(fmt.Sprintf("Error moderando mensaje %s: %v", m.ID, err), "Message")
	}
}

// onMessageUpdate is called when a message is edited
func (h *handlers) onMessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	defer errors.RecoverMiddleware()()

	ev, ok := editEvent(m)
	if !ok {
		return
	}

	ctx, cancel := h.context()
	defer cancel()

	if err := h.engine.OnMessageEdit(ctx, ev); err != nil {
		logger.Error(fmt.Sprintf("Error registrando edición %s: %v", ev.MessageID, err), "Message")
	}
}

// onMessageDelete is called when a message is deleted
func (h *handlers) onMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	defer errors.RecoverMiddleware()()

	ev, ok := deleteEvent(m)
	if !ok {
		return
	}

	ctx, cancel := h.context()
	defer cancel()

	if err := h.engine.OnMessageDelete(ctx, ev); err != nil {
		logger.Error(fmt.Sprintf("Error registrando borrado %s: %v", ev.MessageID, err), "Message")
	}
}
