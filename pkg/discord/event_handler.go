package discord

import (
	"sync"

	"github.com/PancyStudios/PancyGuard/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// EventHandler registers gateway handlers on the client's session and
// keeps track of which events are being listened to.
type EventHandler struct {
	client *ExtendedClient
	mu     sync.RWMutex
	names  []string
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(client *ExtendedClient) *EventHandler {
	return &EventHandler{client: client}
}

// register adds fn to the session. discordgo picks the event by the exact
// func type of fn, so the typed On* methods are the only callers.
func (eh *EventHandler) register(name string, fn interface{}) {
	eh.client.Session.AddHandler(fn)

	eh.mu.Lock()
	eh.names = append(eh.names, name)
	eh.mu.Unlock()

	logger.Debug("Evento '"+name+"' registrado", "EventHandler")
}

// Count returns how many handlers have been registered
func (eh *EventHandler) Count() int {
	eh.mu.RLock()
	defer eh.mu.RUnlock()
	return len(eh.names)
}

// Events returns the registered event names in registration order
func (eh *EventHandler) Events() []string {
	eh.mu.RLock()
	defer eh.mu.RUnlock()
	return append([]string(nil), eh.names...)
}

func (eh *EventHandler) OnReady(fn func(*discordgo.Session, *discordgo.Ready)) {
	eh.register("Ready", fn)
}

func (eh *EventHandler) OnGuildCreate(fn func(*discordgo.Session, *discordgo.GuildCreate)) {
	eh.register("GuildCreate", fn)
}

func (eh *EventHandler) OnGuildDelete(fn func(*discordgo.Session, *discordgo.GuildDelete)) {
	eh.register("GuildDelete", fn)
}

// OnMessageCreate feeds the classifier.
func (eh *EventHandler) OnMessageCreate(fn func(*discordgo.Session, *discordgo.MessageCreate)) {
	eh.register("MessageCreate", fn)
}

func (eh *EventHandler) OnMessageUpdate(fn func(*discordgo.Session, *discordgo.MessageUpdate)) {
	eh.register("MessageUpdate", fn)
}

func (eh *EventHandler) OnMessageDelete(fn func(*discordgo.Session, *discordgo.MessageDelete)) {
	eh.register("MessageDelete", fn)
}

func (eh *EventHandler) OnGuildMemberAdd(fn func(*discordgo.Session, *discordgo.GuildMemberAdd)) {
	eh.register("GuildMemberAdd", fn)
}

func (eh *EventHandler) OnGuildMemberRemove(fn func(*discordgo.Session, *discordgo.GuildMemberRemove)) {
	eh.register("GuildMemberRemove", fn)
}

// OnMessageReactionAdd and OnMessageReactionRemove feed the reaction-role mapper.
func (eh *EventHandler) OnMessageReactionAdd(fn func(*discordgo.Session, *discordgo.MessageReactionAdd)) {
	eh.register("MessageReactionAdd", fn)
}

func (eh *EventHandler) OnMessageReactionRemove(fn func(*discordgo.Session, *discordgo.MessageReactionRemove)) {
	eh.register("MessageReactionRemove", fn)
}
