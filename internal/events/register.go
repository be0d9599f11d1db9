// Package events connects Discord gateway events to the moderation engine.
// Events are organized by category (guild, member, message, reaction).
package events

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/logger"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
	"github.com/PancyStudios/PancyGuard/pkg/reactionrole"
	"github.com/bwmarrin/discordgo"
)

// eventTimeout bounds the engine work done for a single gateway event.
const eventTimeout = 30 * time.Second

// Ingest is the part of the engine gateway events are fed into.
type Ingest interface {
	OnMessage(ctx context.Context, ev moderation.MessageEvent) error
	OnReactionChange(ctx context.Context, r reactionrole.Reaction) error
	OnMemberChange(ctx context.Context, ev moderation.MemberEvent) error
	OnMessageDelete(ctx context.Context, ev moderation.MessageDeleteEvent) error
	OnMessageEdit(ctx context.Context, ev moderation.MessageEditEvent) error
	Warmup(ctx context.Context, guildIDs []string) error
}

type handlers struct {
	engine  Ingest
	timeout time.Duration
}

func newHandlers(engine Ingest) *handlers {
	return &handlers{engine: engine, timeout: eventTimeout}
}

func (h *handlers) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), h.timeout)
}

// selfID returns the bot's own user id, or "" before Ready.
func selfID(s *discordgo.Session) string {
	if s == nil || s.State == nil || s.State.User == nil {
		return ""
	}
	return s.State.User.ID
}

// RegisterAll registers all events with the Discord client
func RegisterAll(client *discord.ExtendedClient, engine Ingest) {
	logger.System("📋 Registrando eventos del bot...", "Events")

	h := newHandlers(engine)

	// Ready, disconnect and resume
	h.registerReadyEvents(client)

	// Guild events (server join/leave)
	h.registerGuildEvents(client)

	// Member events (join/leave)
	h.registerMemberEvents(client)

	// Message events (create/update/delete)
	h.registerMessageEvents(client)

	// Reaction roles
	h.registerReactionEvents(client)

	logger.Success("✅ Todos los eventos registrados correctamente", "Events")
}
