package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestEventHandlerRegistersTypedHandlers(t *testing.T) {
	c, err := NewClient("test-token")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	c.EventHandler.OnReady(func(s *discordgo.Session, r *discordgo.Ready) {})
	c.EventHandler.OnMessageCreate(func(s *discordgo.Session, m *discordgo.MessageCreate) {})
	c.EventHandler.OnMessageReactionAdd(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {})

	if got := c.EventHandler.Count(); got != 3 {
		t.Errorf("Count() = %v, want %v", got, 3)
	}

	want := []string{"Ready", "MessageCreate", "MessageReactionAdd"}
	got := c.EventHandler.Events()
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("Events() = %v, want %v", got, want)
		}
	}
}

func TestNewClientIntents(t *testing.T) {
	c, err := NewClient("test-token")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	for _, intent := range []discordgo.Intent{
		discordgo.IntentGuildMessages,
		discordgo.IntentMessageContent,
		discordgo.IntentGuildMessageReactions,
		discordgo.IntentGuildMembers,
	} {
		if c.Session.Identify.Intents&intent == 0 {
			t.Errorf("intent %v not requested", intent)
		}
	}

	if c.IsReady() {
		t.Error("client should not be ready before Start")
	}
	if c.GuildCount() != 0 || len(c.GuildIDs()) != 0 {
		t.Error("fresh client should not know any guild")
	}
}
