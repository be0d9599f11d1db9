// Package reactionrole grants and revokes roles when members react to bound messages.
package reactionrole

import (
	"context"
	"sort"
	"strings"

	"github.com/PancyStudios/PancyGuard/pkg/errors"
	"github.com/PancyStudios/PancyGuard/pkg/models"
	"github.com/PancyStudios/PancyGuard/pkg/store"
)

// RoleGateway changes member roles. Both calls must be idempotent.
type RoleGateway interface {
	GrantRole(ctx context.Context, guildID, userID, roleID string) error
	RevokeRole(ctx context.Context, guildID, userID, roleID string) error
}

// Kind is whether a reaction was added or removed.
type Kind int

const (
	Added Kind = iota
	Removed
)

// Reaction is one reaction add/remove event.
type Reaction struct {
	Kind      Kind
	GuildID   string
	MessageID string
	EmojiKey  string
	UserID    string
	IsBot     bool
}

// Result says what Handle did.
type Result int

const (
	ResultGranted Result = iota
	ResultRevoked
	ResultNoBinding
	ResultIgnored
)

func (r Result) String() string {
	switch r {
	case ResultGranted:
		return "granted"
	case ResultRevoked:
		return "revoked"
	case ResultNoBinding:
		return "no-binding"
	default:
		return "ignored"
	}
}

// Binding ties a message and emoji to a role.
type Binding struct {
	MessageID string `json:"messageId"`
	EmojiKey  string `json:"emoji"`
	RoleID    string `json:"roleId"`
}

// Mapper holds every guild's bindings.
type Mapper struct {
	records *store.Records[models.BindingsRecord]
	gw      RoleGateway
}

// NewMapper returns a mapper persisting bindings in s.
func NewMapper(s store.Store, gw RoleGateway) *Mapper {
	return &Mapper{
		records: store.NewRecords[models.BindingsRecord](s, func(rec *models.BindingsRecord) {
			if rec.Messages == nil {
				rec.Messages = make(map[string]map[string]string)
			}
		}),
		gw: gw,
	}
}

// EmojiKey normalises the ways an emoji can be written to one key:
// unicode emoji stay as they are, custom emoji become "name:id".
func EmojiKey(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "<") && strings.HasSuffix(raw, ">") {
		raw = strings.TrimPrefix(raw[1:len(raw)-1], "a")
	}
	return strings.TrimPrefix(raw, ":")
}

func validate(messageID, emojiKey string) error {
	if messageID == "" {
		return errors.Validation("mensaje", "Debes especificar el ID del mensaje.")
	}
	if emojiKey == "" {
		return errors.Validation("emoji", "Debes especificar un emoji.")
	}
	return nil
}

// Bind sets the role for (messageID, emoji), replacing only that pair.
// The previously bound role, if any, is returned.
func (m *Mapper) Bind(ctx context.Context, guildID, messageID, emoji, roleID string) (string, error) {
	emoji = EmojiKey(emoji)
	if err := validate(messageID, emoji); err != nil {
		return "", err
	}
	if roleID == "" {
		return "", errors.Validation("rol", "Debes especificar un rol.")
	}

	var previous string
	_, err := m.records.Update(ctx, models.BindingsKey(guildID), func(cur *models.BindingsRecord) (*models.BindingsRecord, error) {
		previous = cur.Messages[messageID][emoji]
		if previous == roleID {
			return nil, nil
		}
		next := cur.Clone()
		if next.Messages[messageID] == nil {
			next.Messages[messageID] = make(map[string]string)
		}
		next.Messages[messageID][emoji] = roleID
		return next, nil
	})
	return previous, err
}

// Unbind removes the (messageID, emoji) pair. Reports false when it was not bound.
func (m *Mapper) Unbind(ctx context.Context, guildID, messageID, emoji string) (bool, error) {
	emoji = EmojiKey(emoji)
	if err := validate(messageID, emoji); err != nil {
		return false, err
	}

	removed := false
	_, err := m.records.Update(ctx, models.BindingsKey(guildID), func(cur *models.BindingsRecord) (*models.BindingsRecord, error) {
		if _, ok := cur.Messages[messageID][emoji]; !ok {
			return nil, nil
		}
		next := cur.Clone()
		delete(next.Messages[messageID], emoji)
		if len(next.Messages[messageID]) == 0 {
			delete(next.Messages, messageID)
		}
		removed = true
		return next, nil
	})
	return removed, err
}

// List returns the guild's bindings, optionally limited to one message.
func (m *Mapper) List(ctx context.Context, guildID, messageID string) ([]Binding, error) {
	rec, err := m.records.Get(ctx, models.BindingsKey(guildID))
	if err != nil {
		return nil, err
	}

	var out []Binding
	for msg, emojis := range rec.Messages {
		if messageID != "" && msg != messageID {
			continue
		}
		for emoji, role := range emojis {
			out = append(out, Binding{MessageID: msg, EmojiKey: emoji, RoleID: role})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MessageID != out[j].MessageID {
			return out[i].MessageID < out[j].MessageID
		}
		return out[i].EmojiKey < out[j].EmojiKey
	})
	return out, nil
}

// Lookup returns the role bound to (messageID, emoji).
func (m *Mapper) Lookup(ctx context.Context, guildID, messageID, emoji string) (string, bool, error) {
	rec, err := m.records.Get(ctx, models.BindingsKey(guildID))
	if err != nil {
		return "", false, err
	}
	role, ok := rec.Messages[messageID][EmojiKey(emoji)]
	return role, ok, nil
}

// Handle applies a reaction event: grant on add, revoke on remove.
// Bot reactions and unbound pairs are no-ops.
func (m *Mapper) Handle(ctx context.Context, r Reaction) (Result, error) {
	if r.IsBot || r.GuildID == "" || r.UserID == "" {
		return ResultIgnored, nil
	}

	roleID, ok, err := m.Lookup(ctx, r.GuildID, r.MessageID, r.EmojiKey)
	if err != nil {
		return ResultIgnored, err
	}
	if !ok {
		return ResultNoBinding, nil
	}

	if r.Kind == Removed {
		if err := m.gw.RevokeRole(ctx, r.GuildID, r.UserID, roleID); err != nil {
			return ResultIgnored, errors.Transient("revoke-role", err)
		}
		return ResultRevoked, nil
	}

	if err := m.gw.GrantRole(ctx, r.GuildID, r.UserID, roleID); err != nil {
		return ResultIgnored, errors.Transient("grant-role", err)
	}
	return ResultGranted, nil
}
