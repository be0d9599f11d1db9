package discord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

func TestPurgeableSkipsOldMessages(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	messages := []*discordgo.Message{
		{ID: "1", Timestamp: now.Add(-time.Minute)},
		{ID: "2", Timestamp: now.Add(-15 * 24 * time.Hour)},
		{ID: "3", Timestamp: now.Add(-13 * 24 * time.Hour)},
	}

	ids := purgeable(messages, now)
	if len(ids) != 2 || ids[0] != "1" || ids[1] != "3" {
		t.Errorf("purgeable() = %v, want [1 3]", ids)
	}
}

func TestContainsRole(t *testing.T) {
	if !containsRole([]string{"a", "b"}, "b") {
		t.Error("expected role b to be found")
	}
	if containsRole(nil, "b") {
		t.Error("expected no role in empty list")
	}
}

func TestIsDiscordCode(t *testing.T) {
	restErr := &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMessage}}

	if !isDiscordCode(restErr, discordgo.ErrCodeUnknownMessage) {
		t.Error("expected unknown message code to match")
	}
	if isDiscordCode(restErr, discordgo.ErrCodeUnknownMember) {
		t.Error("unexpected match on a different code")
	}
	if isDiscordCode(errors.New("boom"), discordgo.ErrCodeUnknownMessage) {
		t.Error("plain errors never match")
	}
	if isDiscordCode(&discordgo.RESTError{}, discordgo.ErrCodeUnknownMessage) {
		t.Error("REST errors without a body never match")
	}
}

func TestPostAuditLogWithoutChannel(t *testing.T) {
	g := NewGateway(nil, nil)
	if err := g.PostAuditLog(context.Background(), "g1", "hola"); err != nil {
		t.Errorf("PostAuditLog() without resolver = %v, want nil", err)
	}

	g = NewGateway(nil, func(ctx context.Context, guildID string) (string, error) {
		return "", nil
	})
	if err := g.PostAuditLog(context.Background(), "g1", "hola"); err != nil {
		t.Errorf("PostAuditLog() without channel = %v, want nil", err)
	}

	g = NewGateway(nil, func(ctx context.Context, guildID string) (string, error) {
		return "", errors.New("store down")
	})
	if err := g.PostAuditLog(context.Background(), "g1", "hola"); err == nil {
		t.Error("PostAuditLog() should surface resolver failures")
	}
}
