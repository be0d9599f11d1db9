package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/PancyGuard/pkg/moderation"
	"github.com/PancyStudios/PancyGuard/pkg/reactionrole"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIngest struct {
	mu        sync.Mutex
	messages  []moderation.MessageEvent
	reactions []reactionrole.Reaction
	members   []moderation.MemberEvent
	deletes   []moderation.MessageDeleteEvent
	edits     []moderation.MessageEditEvent
	warmed    chan []string
}

func newFakeIngest() *fakeIngest {
	return &fakeIngest{warmed: make(chan []string, 4)}
}

func (f *fakeIngest) OnMessage(_ context.Context, ev moderation.MessageEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, ev)
	return nil
}

func (f *fakeIngest) OnReactionChange(_ context.Context, r reactionrole.Reaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions = append(f.reactions, r)
	return nil
}

func (f *fakeIngest) OnMemberChange(_ context.Context, ev moderation.MemberEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members = append(f.members, ev)
	return nil
}

func (f *fakeIngest) OnMessageDelete(_ context.Context, ev moderation.MessageDeleteEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, ev)
	return nil
}

func (f *fakeIngest) OnMessageEdit(_ context.Context, ev moderation.MessageEditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, ev)
	return nil
}

func (f *fakeIngest) Warmup(_ context.Context, ids []string) error {
	f.warmed <- ids
	return nil
}

func TestMessageEvent(t *testing.T) {
	ev := messageEvent(&discordgo.Message{
		ID:        "m1",
		GuildID:   "g1",
		ChannelID: "c1",
		Content:   "hola",
		Author:    &discordgo.User{ID: "u1"},
		Attachments: []*discordgo.MessageAttachment{
			{Filename: "setup.exe"},
			{Filename: "foto.png"},
		},
	})

	assert.Equal(t, moderation.MessageEvent{
		GuildID:     "g1",
		ChannelID:   "c1",
		MessageID:   "m1",
		AuthorID:    "u1",
		Content:     "hola",
		Attachments: []string{"setup.exe", "foto.png"},
	}, ev)

	webhook := messageEvent(&discordgo.Message{ID: "m2", WebhookID: "w1", Author: &discordgo.User{ID: "w1"}})
	assert.True(t, webhook.AuthorIsBot)
}

func TestOnMessageCreate(t *testing.T) {
	f := newFakeIngest()
	h := newHandlers(f)

	h.onMessageCreate(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		ID: "m1", GuildID: "g1", ChannelID: "c1", Content: "discord.gg/abc", Author: &discordgo.User{ID: "u1"},
	}})
	// DMs never reach the engine.
	h.onMessageCreate(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		ID: "m2", ChannelID: "dm", Author: &discordgo.User{ID: "u1"},
	}})

	require.Len(t, f.messages, 1)
	assert.Equal(t, "m1", f.messages[0].MessageID)
}

func TestOnMessageCreateSkipsSelf(t *testing.T) {
	f := newFakeIngest()
	h := newHandlers(f)

	s := &discordgo.Session{State: discordgo.NewState()}
	s.State.User = &discordgo.User{ID: "bot"}

	h.onMessageCreate(s, &discordgo.MessageCreate{Message: &discordgo.Message{
		ID: "m1", GuildID: "g1", ChannelID: "c1", Author: &discordgo.User{ID: "bot"},
	}})
	assert.Empty(t, f.messages)
}

func TestEditEvent(t *testing.T) {
	author := &discordgo.User{ID: "u1"}

	tests := []struct {
		name   string
		update *discordgo.MessageUpdate
		ok     bool
	}{
		{
			name: "changed",
			update: &discordgo.MessageUpdate{
				Message:      &discordgo.Message{ID: "m1", GuildID: "g1", Author: author, Content: "después"},
				BeforeUpdate: &discordgo.Message{ID: "m1", Content: "antes"},
			},
			ok: true,
		},
		{
			name: "not cached",
			update: &discordgo.MessageUpdate{
				Message: &discordgo.Message{ID: "m1", GuildID: "g1", Author: author, Content: "después"},
			},
		},
		{
			name: "unchanged",
			update: &discordgo.MessageUpdate{
				Message:      &discordgo.Message{ID: "m1", GuildID: "g1", Author: author, Content: "igual"},
				BeforeUpdate: &discordgo.Message{ID: "m1", Content: "igual"},
			},
		},
		{
			name: "bot",
			update: &discordgo.MessageUpdate{
				Message:      &discordgo.Message{ID: "m1", GuildID: "g1", Author: &discordgo.User{ID: "b", Bot: true}, Content: "b"},
				BeforeUpdate: &discordgo.Message{ID: "m1", Content: "a"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := editEvent(tt.update)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, "antes", ev.Before)
				assert.Equal(t, "después", ev.After)
				assert.Equal(t, "u1", ev.AuthorID)
			}
		})
	}
}

func TestDeleteEvent(t *testing.T) {
	ev, ok := deleteEvent(&discordgo.MessageDelete{
		Message:      &discordgo.Message{ID: "m1", GuildID: "g1", ChannelID: "c1"},
		BeforeDelete: &discordgo.Message{ID: "m1", Content: "hola", Author: &discordgo.User{ID: "u1"}},
	})
	require.True(t, ok)
	assert.Equal(t, "u1", ev.AuthorID)
	assert.Equal(t, "hola", ev.Content)

	ev, ok = deleteEvent(&discordgo.MessageDelete{Message: &discordgo.Message{ID: "m2", GuildID: "g1"}})
	require.True(t, ok)
	assert.Empty(t, ev.Content)

	_, ok = deleteEvent(&discordgo.MessageDelete{
		Message:      &discordgo.Message{ID: "m3", GuildID: "g1"},
		BeforeDelete: &discordgo.Message{Author: &discordgo.User{ID: "b", Bot: true}},
	})
	assert.False(t, ok)
}

func TestMemberEvents(t *testing.T) {
	f := newFakeIngest()
	h := newHandlers(f)

	member := &discordgo.Member{GuildID: "g1", User: &discordgo.User{ID: "u1", Username: "pancy"}}
	h.onGuildMemberAdd(nil, &discordgo.GuildMemberAdd{Member: member})
	h.onGuildMemberRemove(nil, &discordgo.GuildMemberRemove{Member: member})
	h.onGuildMemberRemove(nil, &discordgo.GuildMemberRemove{Member: &discordgo.Member{GuildID: "g1"}})

	require.Len(t, f.members, 2)
	assert.Equal(t, moderation.MemberJoined, f.members[0].Change)
	assert.Equal(t, moderation.MemberLeft, f.members[1].Change)
	assert.Equal(t, "pancy", f.members[1].Username)
}

func TestReaction(t *testing.T) {
	r := &discordgo.MessageReaction{
		GuildID:   "g1",
		MessageID: "m1",
		UserID:    "u1",
		Emoji:     discordgo.Emoji{Name: "pancy", ID: "123"},
	}

	got := reaction(reactionrole.Added, r, nil, "bot")
	assert.Equal(t, "pancy:123", got.EmojiKey)
	assert.False(t, got.IsBot)

	got = reaction(reactionrole.Added, r, &discordgo.Member{User: &discordgo.User{ID: "u1", Bot: true}}, "bot")
	assert.True(t, got.IsBot)

	got = reaction(reactionrole.Removed, r, nil, "u1")
	assert.True(t, got.IsBot)
	assert.Equal(t, reactionrole.Removed, got.Kind)

	unicode := reaction(reactionrole.Added, &discordgo.MessageReaction{GuildID: "g1", Emoji: discordgo.Emoji{Name: "✅"}}, nil, "")
	assert.Equal(t, "✅", unicode.EmojiKey)
}

func TestOnReactionHandlers(t *testing.T) {
	f := newFakeIngest()
	h := newHandlers(f)

	r := &discordgo.MessageReaction{GuildID: "g1", MessageID: "m1", UserID: "u1", Emoji: discordgo.Emoji{Name: "✅"}}
	h.onReactionAdd(nil, &discordgo.MessageReactionAdd{MessageReaction: r})
	h.onReactionRemove(nil, &discordgo.MessageReactionRemove{MessageReaction: r})

	require.Len(t, f.reactions, 2)
	assert.Equal(t, reactionrole.Added, f.reactions[0].Kind)
	assert.Equal(t, reactionrole.Removed, f.reactions[1].Kind)
}

func TestOnReadyWarmsGuilds(t *testing.T) {
	f := newFakeIngest()
	h := newHandlers(f)

	h.onReady(nil, &discordgo.Ready{
		User:   &discordgo.User{ID: "bot", Username: "PancyGuard"},
		Guilds: []*discordgo.Guild{{ID: "g1"}, {ID: "g2"}},
	})

	select {
	case ids := <-f.warmed:
		assert.Equal(t, []string{"g1", "g2"}, ids)
	case <-time.After(time.Second):
		t.Fatal("Warmup was not called")
	}
}

func TestJoinedRecently(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	assert.True(t, joinedRecently(now.Add(-2*time.Second), now))
	assert.False(t, joinedRecently(now.Add(-time.Hour), now))
}
