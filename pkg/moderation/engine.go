// Package moderation is the policy engine: it classifies inbound messages,
// keeps the per-user warning ledger and drives enforcement through a Gateway.
package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyGuard/pkg/logger"
	"github.com/PancyStudios/PancyGuard/pkg/reactionrole"
	"github.com/PancyStudios/PancyGuard/pkg/store"
	"golang.org/x/sync/errgroup"
)

// Config holds the engine's tunables.
type Config struct {
	// WarningLimit is the single ban threshold for every entry point.
	WarningLimit int
	// NoticeDuration is how long channel notices stay up.
	NoticeDuration time.Duration
	// ActionTimeout bounds each gateway call.
	ActionTimeout time.Duration
	Defaults      PolicyDefaults
}

// EventKind tags inbound events for dispatch.
type EventKind string

const (
	EventMessage       EventKind = "message"
	EventReaction      EventKind = "reaction"
	EventMember        EventKind = "member"
	EventMessageDelete EventKind = "message_delete"
	EventMessageEdit   EventKind = "message_edit"
)

// Event is anything the ingestion layer hands to Handle.
type Event interface {
	Kind() EventKind
}

// MessageEvent is a newly created message.
type MessageEvent struct {
	GuildID     string
	ChannelID   string
	MessageID   string
	AuthorID    string
	AuthorIsBot bool
	Content     string
	Attachments []string
}

func (MessageEvent) Kind() EventKind { return EventMessage }

// ReactionEvent is a reaction add or remove.
type ReactionEvent struct {
	reactionrole.Reaction
}

func (ReactionEvent) Kind() EventKind { return EventReaction }

// MemberChange is join or leave.
type MemberChange int

const (
	MemberJoined MemberChange = iota
	MemberLeft
)

// MemberEvent is a member joining or leaving a guild.
type MemberEvent struct {
	Change   MemberChange
	GuildID  string
	UserID   string
	Username string
}

func (MemberEvent) Kind() EventKind { return EventMember }

// MessageDeleteEvent is a message removed by someone. Content is empty when
// the message was not cached.
type MessageDeleteEvent struct {
	GuildID   string
	ChannelID string
	MessageID string
	AuthorID  string
	Content   string
}

func (MessageDeleteEvent) Kind() EventKind { return EventMessageDelete }

// MessageEditEvent is a message whose content changed.
type MessageEditEvent struct {
	GuildID   string
	ChannelID string
	MessageID string
	AuthorID  string
	Before    string
	After     string
}

func (MessageEditEvent) Kind() EventKind { return EventMessageEdit }

// RoleMapper is the reaction-role side of the engine.
type RoleMapper interface {
	Handle(ctx context.Context, r reactionrole.Reaction) (reactionrole.Result, error)
}

// Engine wires the classifier, ledger and actuator together.
type Engine struct {
	cfg         Config
	policies    *Policies
	ledger      *Ledger
	actuator    *Actuator
	logChannels *LogChannels
	roles       RoleMapper
	handlers    map[EventKind]func(ctx context.Context, ev Event) error
}

// NewEngine builds an engine persisting everything in s.
func NewEngine(cfg Config, s store.Store, gw Gateway, roles RoleMapper) *Engine {
	if cfg.NoticeDuration <= 0 {
		cfg.NoticeDuration = 5 * time.Second
	}

	e := &Engine{
		cfg:         cfg,
		policies:    NewPolicies(s, cfg.Defaults),
		ledger:      NewLedger(s, cfg.WarningLimit),
		actuator:    NewActuator(gw, cfg.ActionTimeout),
		logChannels: NewLogChannels(s),
		roles:       roles,
	}

	e.handlers = map[EventKind]func(ctx context.Context, ev Event) error{
		EventMessage:       func(ctx context.Context, ev Event) error { return e.onMessage(ctx, ev.(MessageEvent)) },
		EventReaction:      func(ctx context.Context, ev Event) error { return e.onReaction(ctx, ev.(ReactionEvent)) },
		EventMember:        func(ctx context.Context, ev Event) error { return e.onMember(ctx, ev.(MemberEvent)) },
		EventMessageDelete: func(ctx context.Context, ev Event) error { return e.onMessageDelete(ctx, ev.(MessageDeleteEvent)) },
		EventMessageEdit:   func(ctx context.Context, ev Event) error { return e.onMessageEdit(ctx, ev.(MessageEditEvent)) },
	}

	return e
}

// Policies exposes the policy service for the operator surface.
func (e *Engine) Policies() *Policies { return e.policies }

// Ledger exposes the warning ledger.
func (e *Engine) Ledger() *Ledger { return e.ledger }

// Actuator exposes the actuator, mostly to register audit sinks and to Wait.
func (e *Engine) Actuator() *Actuator { return e.actuator }

// LogChannels exposes the log channel registry.
func (e *Engine) LogChannels() *LogChannels { return e.logChannels }

// Handle dispatches ev to its handler. Unknown kinds are ignored.
func (e *Engine) Handle(ctx context.Context, ev Event) error {
	handler, ok := e.handlers[ev.Kind()]
	if !ok {
		logger.Debug(fmt.Sprintf("Evento sin handler: %s", ev.Kind()), "Engine")
		return nil
	}
	eventsHandled.WithLabelValues(string(ev.Kind())).Inc()
	return handler(ctx, ev)
}

// OnMessage classifies a message and enforces the result.
func (e *Engine) OnMessage(ctx context.Context, ev MessageEvent) error {
	return e.Handle(ctx, ev)
}

// OnReactionChange feeds a reaction into the reaction-role mapper.
func (e *Engine) OnReactionChange(ctx context.Context, r reactionrole.Reaction) error {
	return e.Handle(ctx, ReactionEvent{Reaction: r})
}

// OnMemberChange audits joins and leaves.
func (e *Engine) OnMemberChange(ctx context.Context, ev MemberEvent) error {
	return e.Handle(ctx, ev)
}

// OnMessageDelete audits a deleted message.
func (e *Engine) OnMessageDelete(ctx context.Context, ev MessageDeleteEvent) error {
	return e.Handle(ctx, ev)
}

// OnMessageEdit audits an edited message.
func (e *Engine) OnMessageEdit(ctx context.Context, ev MessageEditEvent) error {
	return e.Handle(ctx, ev)
}

func (e *Engine) onMessage(ctx context.Context, ev MessageEvent) error {
	if ev.AuthorIsBot || ev.GuildID == "" {
		return nil
	}

	policy, err := e.policies.Snapshot(ctx, ev.GuildID)
	if err != nil {
		return fmt.Errorf("cargando política de %s: %w", ev.GuildID, err)
	}

	result := Classify(Message{
		AuthorID:    ev.AuthorID,
		ChannelID:   ev.ChannelID,
		Content:     ev.Content,
		Attachments: ev.Attachments,
	}, policy)
	if result.Empty() {
		return nil
	}

	if result.MustDelete() {
		e.actuator.Go(ev.GuildID, "delete-message", func(ctx context.Context, gw Gateway) error {
			return gw.DeleteMessage(ctx, ev.ChannelID, ev.MessageID)
		})
	}

	v := result.Verdict
	if v == nil {
		return nil
	}
	verdictsIssued.WithLabelValues(string(v.Rule)).Inc()

	e.actuator.Audit(ev.GuildID, AuditMessageRemoved, ev.AuthorID, fmt.Sprintf(
		"🗑️ Mensaje de <@%s> eliminado en <#%s> (%s)\n%s",
		ev.AuthorID, ev.ChannelID, v.RuleMatched(), quote(ev.Content),
	))

	if v.Severity.Has(SeverityNotice) {
		e.postNotice(ev.GuildID, ev.ChannelID, fmt.Sprintf("<@%s> %s", ev.AuthorID, v.Reason))
	}

	if v.Severity.Has(SeverityEscalate) {
		_, err := e.escalate(ctx, violation{
			guildID:   ev.GuildID,
			userID:    ev.AuthorID,
			channelID: ev.ChannelID,
			messageID: ev.MessageID,
			deleted:   result.MustDelete(),
			reason:    v.Reason,
			source:    "auto",
		})
		return err
	}
	return nil
}

// postNotice posts text and removes it again after NoticeDuration.
func (e *Engine) postNotice(guildID, channelID, text string) {
	e.actuator.Go(guildID, "notice", func(ctx context.Context, gw Gateway) error {
		id, err := gw.PostMessage(ctx, channelID, text)
		if err != nil || id == "" {
			return err
		}
		e.actuator.After(e.cfg.NoticeDuration, guildID, "delete-notice", func(ctx context.Context, gw Gateway) error {
			return gw.DeleteMessage(ctx, channelID, id)
		})
		return nil
	})
}

func (e *Engine) onReaction(ctx context.Context, ev ReactionEvent) error {
	if e.roles == nil || ev.IsBot {
		return nil
	}

	result, err := e.roles.Handle(ctx, ev.Reaction)
	if err != nil {
		e.actuator.Audit(ev.GuildID, AuditActionFailed, ev.UserID, fmt.Sprintf(
			"⚠️ No se pudo actualizar el rol por reacción de <@%s>: %v", ev.UserID, err))
		return err
	}

	switch result {
	case reactionrole.ResultGranted, reactionrole.ResultRevoked:
		logger.Debug(fmt.Sprintf("Rol por reacción %s para %s en %s", result, ev.UserID, ev.MessageID), "ReactionRole")
	}
	return nil
}

func (e *Engine) onMember(_ context.Context, ev MemberEvent) error {
	name := ev.Username
	if name == "" {
		name = ev.UserID
	}

	if ev.Change == MemberJoined {
		e.actuator.Audit(ev.GuildID, AuditMemberJoin, ev.UserID, fmt.Sprintf("📥 <@%s> (%s) se unió al servidor", ev.UserID, name))
	} else {
		e.actuator.Audit(ev.GuildID, AuditMemberLeave, ev.UserID, fmt.Sprintf("📤 %s (%s) salió del servidor", name, ev.UserID))
	}
	return nil
}

func (e *Engine) onMessageDelete(_ context.Context, ev MessageDeleteEvent) error {
	if ev.GuildID == "" {
		return nil
	}

	author := "desconocido"
	if ev.AuthorID != "" {
		author = "<@" + ev.AuthorID + ">"
	}
	e.actuator.Audit(ev.GuildID, AuditMessageDeleted, ev.AuthorID, fmt.Sprintf(
		"🗑️ Mensaje de %s eliminado en <#%s>\n%s", author, ev.ChannelID, quote(ev.Content)))
	return nil
}

func (e *Engine) onMessageEdit(_ context.Context, ev MessageEditEvent) error {
	if ev.GuildID == "" || ev.Before == ev.After {
		return nil
	}

	e.actuator.Audit(ev.GuildID, AuditMessageEdited, ev.AuthorID, fmt.Sprintf(
		"✏️ <@%s> editó un mensaje en <#%s>\n**Antes:** %s\n**Después:** %s",
		ev.AuthorID, ev.ChannelID, quote(ev.Before), quote(ev.After)))
	return nil
}

// Warmup loads policy and ledger records for guilds up front so the first
// message in each guild does not pay for the store round trip.
func (e *Engine) Warmup(ctx context.Context, guildIDs []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, id := range guildIDs {
		id := id
		g.Go(func() error {
			if _, err := e.policies.Snapshot(ctx, id); err != nil {
				return fmt.Errorf("política %s: %w", id, err)
			}
			if err := e.ledger.warm(ctx, id); err != nil {
				return fmt.Errorf("advertencias %s: %w", id, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Wait blocks until every enforcement task started so far has finished.
func (e *Engine) Wait() {
	e.actuator.Wait()
}

const maxQuoted = 900

// quote renders user content for an audit line.
func quote(content string) string {
	if content == "" {
		return "*(sin contenido)*"
	}
	runes := []rune(content)
	if len(runes) > maxQuoted {
		content = string(runes[:maxQuoted]) + "…"
	}
	return "```" + content + "```"
}
