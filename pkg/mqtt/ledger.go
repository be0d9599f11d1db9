package mqtt

import (
	"context"

	"github.com/PancyStudios/PancyGuard/pkg/errors"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
	"github.com/goccy/go-json"
)

// LedgerReader is the read side of the warning ledger
type LedgerReader interface {
	CheckWarning(ctx context.Context, guildID, userID string) (count, remaining int, err error)
	ListWarnings(ctx context.Context, guildID string) ([]moderation.LedgerEntry, error)
}

// LedgerQuery is the payload of ledger requests
type LedgerQuery struct {
	GuildID string `json:"guildId"`
	UserID  string `json:"userId,omitempty"`
}

// WarningStatus answers "ledger/check"
type WarningStatus struct {
	GuildID   string `json:"guildId"`
	UserID    string `json:"userId"`
	Warnings  int    `json:"warnings"`
	Remaining int    `json:"remaining"`
}

// RegisterLedgerHandlers answers "ledger/check" and "ledger/list" requests
func RegisterLedgerHandlers(mc *Communicator, ledger LedgerReader) error {
	if err := mc.On("ledger/check", func(ctx context.Context, _ string, payload json.RawMessage) (interface{}, error) {
		q, err := decodeQuery(payload)
		if err != nil {
			return nil, err
		}
		if q.UserID == "" {
			return nil, errors.Validation("userId", "Falta userId.")
		}

		count, remaining, err := ledger.CheckWarning(ctx, q.GuildID, q.UserID)
		if err != nil {
			return nil, err
		}
		return WarningStatus{GuildID: q.GuildID, UserID: q.UserID, Warnings: count, Remaining: remaining}, nil
	}); err != nil {
		return err
	}

	return mc.On("ledger/list", func(ctx context.Context, _ string, payload json.RawMessage) (interface{}, error) {
		q, err := decodeQuery(payload)
		if err != nil {
			return nil, err
		}
		return ledger.ListWarnings(ctx, q.GuildID)
	})
}

func decodeQuery(payload json.RawMessage) (LedgerQuery, error) {
	var q LedgerQuery
	if len(payload) == 0 {
		return q, errors.Validation("payload", "La petición no tiene payload.")
	}
	if err := json.Unmarshal(payload, &q); err != nil {
		return q, errors.Validation("payload", "Payload inválido.")
	}
	if q.GuildID == "" {
		return q, errors.Validation("guildId", "Falta guildId.")
	}
	return q, nil
}
