package moderation

import (
	"context"
	"fmt"

	"github.com/PancyStudios/PancyGuard/pkg/errors"
	"github.com/PancyStudios/PancyGuard/pkg/logger"
)

const (
	minPurge = 1
	maxPurge = 100
)

// Escalation is the result of one ledger increment.
type Escalation struct {
	// Count is the warning count after the increment.
	Count int
	// BanTriggered is set when Count reached the limit. The entry is gone.
	BanTriggered bool
	// BanErr is the gateway failure of the ban, if any. The ledger is not
	// rolled back when it is set.
	BanErr error
}

// Banned reports whether the ban went through.
func (e Escalation) Banned() bool {
	return e.BanTriggered && e.BanErr == nil
}

type violation struct {
	guildID   string
	userID    string
	channelID string // where to post the warning; empty for none
	messageID string // offending message; empty for manual warnings
	deleted   bool   // the message is already being deleted
	reason    string
	moderator string
	source    string // "auto" or "manual"
}

// RecordViolation adds a warning for a classifier verdict.
func (e *Engine) RecordViolation(ctx context.Context, guildID, userID, channelID, messageID, reason string) (Escalation, error) {
	return e.escalate(ctx, violation{
		guildID:   guildID,
		userID:    userID,
		channelID: channelID,
		messageID: messageID,
		reason:    reason,
		source:    "auto",
	})
}

// ManualWarn adds a warning on behalf of a moderator. It shares the
// increment and threshold path with RecordViolation.
func (e *Engine) ManualWarn(ctx context.Context, guildID, userID, moderatorID, channelID, reason string) (Escalation, error) {
	if userID == "" {
		return Escalation{}, errors.Validation("usuario", "Debes especificar un usuario.")
	}
	if reason == "" {
		reason = "Sin razón especificada"
	}
	return e.escalate(ctx, violation{
		guildID:   guildID,
		userID:    userID,
		channelID: channelID,
		reason:    reason,
		moderator: moderatorID,
		source:    "manual",
	})
}

// escalate holds the user's lock across increment, persist and enforcement,
// so two violations for the same user always add two.
func (e *Engine) escalate(ctx context.Context, v violation) (Escalation, error) {
	unlock := e.ledger.lockUser(v.guildID, v.userID)
	defer unlock()

	count, err := e.ledger.increment(ctx, v.guildID, v.userID)
	if err != nil {
		logger.Error(fmt.Sprintf("No se pudo registrar la advertencia de %s en %s: %v", v.userID, v.guildID, err), "Ledger")
		return Escalation{}, err
	}
	warningsRecorded.WithLabelValues(v.source).Inc()

	limit := e.ledger.Limit()
	if count < limit {
		e.warn(v, count, limit)
		return Escalation{Count: count}, nil
	}

	return e.ban(ctx, v, count)
}

func (e *Engine) warn(v violation, count, limit int) {
	if v.messageID != "" && !v.deleted {
		e.actuator.Go(v.guildID, "delete-message", func(ctx context.Context, gw Gateway) error {
			return gw.DeleteMessage(ctx, v.channelID, v.messageID)
		})
	}

	if v.channelID != "" {
		text := fmt.Sprintf("⚠️ <@%s> has recibido una advertencia (%d/%d). Razón: %s", v.userID, count, limit, v.reason)
		e.actuator.Go(v.guildID, "post-warning", func(ctx context.Context, gw Gateway) error {
			_, err := gw.PostMessage(ctx, v.channelID, text)
			return err
		})
	}

	by := "AutoMod"
	if v.moderator != "" {
		by = "<@" + v.moderator + ">"
	}
	e.actuator.Audit(v.guildID, AuditWarning, v.userID, fmt.Sprintf(
		"⚠️ Advertencia %d/%d para <@%s> por %s. Razón: %s", count, limit, v.userID, by, v.reason))
}

// ban runs the threshold ban synchronously, then drops the entry whatever
// the ban's outcome.
func (e *Engine) ban(ctx context.Context, v violation, count int) (Escalation, error) {
	reason := fmt.Sprintf("Baneo automático: %d advertencias acumuladas (%s)", count, v.reason)

	banErr := e.actuator.Do(ctx, "ban", func(ctx context.Context, gw Gateway) error {
		return gw.BanUser(ctx, v.guildID, v.userID, reason)
	})

	result := Escalation{Count: count, BanTriggered: true, BanErr: banErr}

	if banErr != nil {
		bansIssued.WithLabelValues("failed").Inc()
		logger.Error(fmt.Sprintf("Fallo al banear a %s en %s: %v", v.userID, v.guildID, banErr), "Ledger")
		e.actuator.Audit(v.guildID, AuditBanFailed, v.userID, fmt.Sprintf(
			"❌ No se pudo banear a <@%s> tras %d advertencias: %v", v.userID, count, banErr))
	} else {
		bansIssued.WithLabelValues("ok").Inc()
		e.actuator.Audit(v.guildID, AuditBan, v.userID, fmt.Sprintf(
			"🔨 <@%s> fue baneado automáticamente tras %d advertencias. Última razón: %s", v.userID, count, v.reason))
	}

	if v.messageID != "" && !v.deleted {
		e.actuator.Go(v.guildID, "delete-message", func(ctx context.Context, gw Gateway) error {
			return gw.DeleteMessage(ctx, v.channelID, v.messageID)
		})
	}

	if _, err := e.ledger.remove(ctx, v.guildID, v.userID); err != nil {
		logger.Error(fmt.Sprintf("No se pudo limpiar la entrada de %s en %s: %v", v.userID, v.guildID, err), "Ledger")
		return result, err
	}
	return result, nil
}

// Ban bans a user on a moderator's behalf. The user's warnings are left
// as they are.
func (e *Engine) Ban(ctx context.Context, guildID, userID, moderatorID, reason string) error {
	if userID == "" {
		return errors.Validation("usuario", "Debes especificar un usuario.")
	}
	if reason == "" {
		reason = "Sin razón especificada"
	}

	if err := e.actuator.Do(ctx, "ban", func(ctx context.Context, gw Gateway) error {
		return gw.BanUser(ctx, guildID, userID, reason)
	}); err != nil {
		bansIssued.WithLabelValues("failed").Inc()
		return err
	}
	bansIssued.WithLabelValues("ok").Inc()

	e.actuator.Audit(guildID, AuditBan, userID, fmt.Sprintf(
		"⛔ <@%s> baneó a <@%s>. Razón: %s", moderatorID, userID, reason))
	return nil
}

// ResetWarning clears a user's warnings. A user without warnings is a no-op
// and nothing is written.
func (e *Engine) ResetWarning(ctx context.Context, guildID, userID, moderatorID, reason string) (Outcome, error) {
	if userID == "" {
		return OutcomeNoop, errors.Validation("usuario", "Debes especificar un usuario.")
	}
	if reason == "" {
		reason = "Sin razón especificada"
	}

	unlock := e.ledger.lockUser(guildID, userID)
	defer unlock()

	removed, err := e.ledger.remove(ctx, guildID, userID)
	if err != nil {
		return OutcomeNoop, err
	}
	if !removed {
		return OutcomeNoop, nil
	}

	e.actuator.Audit(guildID, AuditReset, userID, fmt.Sprintf(
		"♻️ <@%s> reinició las advertencias de <@%s>. Razón: %s", moderatorID, userID, reason))

	e.actuator.Go(guildID, "notify-user", func(ctx context.Context, gw Gateway) error {
		return gw.NotifyUser(ctx, userID, fmt.Sprintf("Tus advertencias han sido reiniciadas. Razón: %s", reason))
	})

	return OutcomeApplied, nil
}

// CheckWarning returns the user's count and how many more warnings until a ban.
func (e *Engine) CheckWarning(ctx context.Context, guildID, userID string) (count, remaining int, err error) {
	count, err = e.ledger.Count(ctx, guildID, userID)
	if err != nil {
		return 0, 0, err
	}
	remaining = e.ledger.Limit() - count
	if remaining < 0 {
		remaining = 0
	}
	return count, remaining, nil
}

// ListWarnings returns every user with active warnings, highest first.
func (e *Engine) ListWarnings(ctx context.Context, guildID string) ([]LedgerEntry, error) {
	return e.ledger.List(ctx, guildID)
}

// Purge bulk deletes recent messages in a channel.
func (e *Engine) Purge(ctx context.Context, guildID, channelID, moderatorID string, amount int) (int, error) {
	if amount < minPurge || amount > maxPurge {
		return 0, errors.Validation("cantidad", "La cantidad debe estar entre %d y %d.", minPurge, maxPurge)
	}
	if channelID == "" {
		return 0, errors.Validation("canal", "Debes especificar un canal.")
	}

	var deleted int
	err := e.actuator.Do(ctx, "purge", func(ctx context.Context, gw Gateway) error {
		n, err := gw.PurgeMessages(ctx, channelID, amount)
		deleted = n
		return err
	})
	if err != nil {
		return deleted, err
	}

	e.actuator.Audit(guildID, AuditPurge, moderatorID, fmt.Sprintf(
		"🧹 <@%s> eliminó %d mensajes en <#%s>", moderatorID, deleted, channelID))
	return deleted, nil
}
