package moderation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancyGuard/pkg/errors"
	"github.com/PancyStudios/PancyGuard/pkg/logger"
)

// Gateway is the platform side of enforcement.
type Gateway interface {
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	BanUser(ctx context.Context, guildID, userID, reason string) error
	GrantRole(ctx context.Context, guildID, userID, roleID string) error
	RevokeRole(ctx context.Context, guildID, userID, roleID string) error
	// PostMessage returns the id of the posted message.
	PostMessage(ctx context.Context, channelID, text string) (string, error)
	// PostAuditLog writes to the guild's log channel, if one is set.
	PostAuditLog(ctx context.Context, guildID, text string) error
	// NotifyUser sends a direct message.
	NotifyUser(ctx context.Context, userID, text string) error
	// PurgeMessages deletes up to amount recent messages and returns how many went.
	PurgeMessages(ctx context.Context, channelID string, amount int) (int, error)
}

// AuditKind classifies audit events for external consumers.
type AuditKind string

const (
	AuditMessageRemoved AuditKind = "message_removed"
	AuditWarning        AuditKind = "warning"
	AuditBan            AuditKind = "ban"
	AuditBanFailed      AuditKind = "ban_failed"
	AuditReset          AuditKind = "reset"
	AuditPurge          AuditKind = "purge"
	AuditMemberJoin     AuditKind = "member_join"
	AuditMemberLeave    AuditKind = "member_leave"
	AuditMessageDeleted AuditKind = "message_deleted"
	AuditMessageEdited  AuditKind = "message_edited"
	AuditRoleChange     AuditKind = "role_change"
	AuditActionFailed   AuditKind = "action_failed"
)

// AuditEvent mirrors every audit log line for sinks outside the platform.
type AuditEvent struct {
	GuildID string    `json:"guildId"`
	Kind    AuditKind `json:"kind"`
	UserID  string    `json:"userId,omitempty"`
	Text    string    `json:"text"`
	Time    time.Time `json:"time"`
}

// AuditSink receives audit events. Publish must not block for long.
type AuditSink interface {
	Publish(ev AuditEvent)
}

// Actuator runs gateway calls as tracked tasks. Every task gets a timeout,
// recovers from panics, and has its failure logged and audited.
type Actuator struct {
	gw      Gateway
	timeout time.Duration
	wg      sync.WaitGroup

	mu    sync.RWMutex
	sinks []AuditSink
}

// NewActuator returns an actuator that bounds each gateway call by timeout.
func NewActuator(gw Gateway, timeout time.Duration) *Actuator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Actuator{gw: gw, timeout: timeout}
}

// AddSink registers an extra audit destination.
func (a *Actuator) AddSink(sink AuditSink) {
	a.mu.Lock()
	a.sinks = append(a.sinks, sink)
	a.mu.Unlock()
}

// Do runs fn synchronously under the action timeout. A failure comes back
// as a TransientActionError.
func (a *Actuator) Do(ctx context.Context, action string, fn func(ctx context.Context, gw Gateway) error) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx, a.gw)
	actionDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())

	if err != nil {
		actionsExecuted.WithLabelValues(action, "failed").Inc()
		return errors.Transient(action, err)
	}
	actionsExecuted.WithLabelValues(action, "ok").Inc()
	return nil
}

// Go runs fn in the background. Failures are logged and sent to the
// guild's audit log; they never reach the caller.
func (a *Actuator) Go(guildID, action string, fn func(ctx context.Context, gw Gateway) error) {
	a.wg.Add(1)
	go a.run(guildID, action, fn)
}

// After is Go delayed by d. Wait covers the delay.
func (a *Actuator) After(d time.Duration, guildID, action string, fn func(ctx context.Context, gw Gateway) error) {
	a.wg.Add(1)
	time.AfterFunc(d, func() {
		a.run(guildID, action, fn)
	})
}

func (a *Actuator) run(guildID, action string, fn func(ctx context.Context, gw Gateway) error) {
	defer a.wg.Done()
	defer errors.RecoverWith(func(r interface{}) {
		a.reportFailure(guildID, action, fmt.Errorf("panic: %v", r))
	})()

	if err := a.Do(context.Background(), action, fn); err != nil {
		a.reportFailure(guildID, action, err)
	}
}

func (a *Actuator) reportFailure(guildID, action string, err error) {
	logger.Error(fmt.Sprintf("Acción '%s' fallida en %s: %v", action, guildID, err), "Actuator")
	a.Audit(guildID, AuditActionFailed, "", fmt.Sprintf("⚠️ La acción `%s` falló: %v", action, err))
}

// Audit posts text to the guild's log channel in the background and fans it
// out to every sink. A failed audit post is only logged.
func (a *Actuator) Audit(guildID string, kind AuditKind, userID, text string) {
	ev := AuditEvent{GuildID: guildID, Kind: kind, UserID: userID, Text: text, Time: time.Now().UTC()}

	a.mu.RLock()
	sinks := append([]AuditSink(nil), a.sinks...)
	a.mu.RUnlock()
	for _, sink := range sinks {
		sink.Publish(ev)
	}

	if guildID == "" {
		return
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer errors.RecoverMiddleware()()

		if err := a.Do(context.Background(), "audit", func(ctx context.Context, gw Gateway) error {
			return gw.PostAuditLog(ctx, guildID, text)
		}); err != nil {
			logger.Warn(fmt.Sprintf("No se pudo escribir el log de auditoría en %s: %v", guildID, err), "Actuator")
		}
	}()
}

// Wait blocks until every task started so far has finished.
func (a *Actuator) Wait() {
	a.wg.Wait()
}
